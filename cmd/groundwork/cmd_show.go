package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"groundwork/internal/evidence"
)

var showRaw bool

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Display an artifact or source",
	Long: `Renders an artifact (art_...) or source (src_...) by ID. Markdown
artifacts are rendered for the terminal unless --raw is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		id := args[0]
		switch {
		case strings.HasPrefix(id, "src_"):
			src, err := sess.store.GetSource(id)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s (%s)\n\n", src.ID, titleStyle.Render(src.Title), src.Type)
			fmt.Println(src.Content)
			return nil
		default:
			a, err := sess.store.GetArtifact(id)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s  %s\n\n", a.ID, titleStyle.Render(a.Name), dimStyle.Render("run "+a.RunID))
			if a.Type == evidence.ArtifactMarkdown && !showRaw {
				rendered, err := glamour.Render(a.Content, "auto")
				if err == nil {
					fmt.Print(rendered)
					return nil
				}
			}
			fmt.Println(a.Content)
			return nil
		}
	},
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print raw content without rendering")
	rootCmd.AddCommand(showCmd)
}
