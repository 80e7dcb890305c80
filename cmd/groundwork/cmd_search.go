package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	searchKind  string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search workspace memory",
	Long: `Keyword search over the workspace's sources or generated artifacts.
Results never cross workspaces: the search runs scoped to the workspace
this store belongs to.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		limit := searchLimit
		if limit <= 0 {
			limit = sess.cfg.Memory.SearchLimit
		}

		var hits []struct {
			ID, Title, Excerpt string
		}
		switch searchKind {
		case "source", "sources":
			found, err := sess.memory.SearchSources(sess.ws.ID, args[0], limit)
			if err != nil {
				return err
			}
			for _, h := range found {
				hits = append(hits, struct{ ID, Title, Excerpt string }{h.ID, h.Title, h.Excerpt})
			}
		case "artifact", "artifacts":
			found, err := sess.memory.SearchArtifacts(sess.ws.ID, args[0], limit)
			if err != nil {
				return err
			}
			for _, h := range found {
				hits = append(hits, struct{ ID, Title, Excerpt string }{h.ID, h.Title, h.Excerpt})
			}
		default:
			return fmt.Errorf("unknown kind %q (want source or artifact)", searchKind)
		}

		if len(hits) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, h := range hits {
			title := h.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%s  %s\n", h.ID, titleStyle.Render(title))
			fmt.Printf("    %s\n", dimStyle.Render(h.Excerpt))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchKind, "kind", "source", "What to search: source or artifact")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Max hits (default from config)")
	rootCmd.AddCommand(searchCmd)
}
