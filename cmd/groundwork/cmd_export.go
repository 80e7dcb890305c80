package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"groundwork/internal/manifest"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the workspace to a versioned manifest",
	Long: `Writes the workspace's sources, artifacts, and claims to a single
manifest file that "groundwork import" can load into another workspace.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		path := exportOut
		if path == "" {
			name := fmt.Sprintf("%s_%s.json", sess.ws.ID, time.Now().Format("20060102_150405"))
			path = filepath.Join(sess.ws.ExportsDir(), name)
		}

		if err := manifest.Export(sess.store, sess.ws, path); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [manifest]",
	Short: "Import a manifest into this workspace",
	Long: `Loads an exported manifest. Import refuses manifests from an
incompatible major schema version and warns when the manifest was written
by a newer minor version. Claims are re-validated on the way in, so a
manifest cannot introduce a fact without sources.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		warning, err := manifest.Import(sess.store, args[0])
		if warning != "" {
			fmt.Println(skipStyle.Render("Warning: " + warning))
		}
		if err != nil {
			return err
		}
		fmt.Printf("Imported %s\n", args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path (default under .groundwork/exports)")
	rootCmd.AddCommand(exportCmd, importCmd)
}
