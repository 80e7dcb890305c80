package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"groundwork/internal/ingest"
)

var ingestMeta map[string]string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Add sources to workspace memory",
	Long: `Sources are the evidence pool skills ground their output in. Source IDs
derive from the locator, so re-ingesting the same file or URL updates the
existing row instead of duplicating it.`,
}

var ingestTextCmd = &cobra.Command{
	Use:   "text [title]",
	Short: "Ingest text from stdin under a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}

		id, err := ingest.New(sess.store).IngestText(args[0], string(content), ingestMeta)
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %s\n", id)
		return nil
	},
}

var ingestFileCmd = &cobra.Command{
	Use:   "file [path...]",
	Short: "Ingest local files (HTML is stripped to text)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		ing := ingest.New(sess.store)
		for _, path := range args {
			id, err := ing.IngestFile(path, ingestMeta)
			if err != nil {
				return err
			}
			fmt.Printf("Ingested %s as %s\n", path, id)
		}
		return nil
	},
}

var ingestURLCmd = &cobra.Command{
	Use:   "url [url...]",
	Short: "Fetch and ingest web pages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		ing := ingest.New(sess.store, ingest.WithMaxParallel(sess.cfg.Ingest.MaxParallel))
		ids, err := ing.IngestURLs(cmd.Context(), args, ingestMeta)
		if err != nil {
			return err
		}
		for i, id := range ids {
			fmt.Printf("Ingested %s as %s\n", args[i], id)
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and auto-ingest dropped files",
	Long: `Watches the given directory (or ingest.watch_dir from config) and ingests
every textual file created or written there. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		dir := sess.cfg.Ingest.WatchDir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			return fmt.Errorf("no directory given and ingest.watch_dir not configured")
		}

		fmt.Printf("Watching %s (ctrl-c to stop)\n", dir)
		err = ingest.New(sess.store).Watch(cmd.Context(), dir)
		if err == cmd.Context().Err() {
			return nil
		}
		return err
	},
}

func init() {
	ingestCmd.PersistentFlags().StringToStringVar(&ingestMeta, "meta", nil, "Metadata key=value pairs to attach")
	ingestCmd.AddCommand(ingestTextCmd, ingestFileCmd, ingestURLCmd)
	rootCmd.AddCommand(ingestCmd, watchCmd)
}
