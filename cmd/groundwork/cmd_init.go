package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"groundwork/internal/config"
	"groundwork/internal/workspace"
)

var initName string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a workspace in the current directory",
	Long: `Creates the .groundwork directory with a workspace identity, a default
config.yaml, and the runs/exports layout. Safe to re-run: an existing
workspace is left untouched.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot()
	if err != nil {
		return err
	}

	name := initName
	if name == "" {
		name = filepath.Base(root)
	}

	ws, err := workspace.LoadOrCreate(name, root)
	if err != nil {
		return err
	}

	cfgPath := config.Path(root)
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.DefaultConfig().Save(cfgPath); err != nil {
			return err
		}
	}

	for _, dir := range []string{ws.RunsDir(), ws.ExportsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	fmt.Printf("Workspace %q ready (%s)\n", ws.Name, ws.ID)
	fmt.Printf("  config: %s\n", cfgPath)
	fmt.Println("  set GEMINI_API_KEY to enable generation")
	return nil
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "Workspace name (defaults to directory name)")
	rootCmd.AddCommand(initCmd)
}
