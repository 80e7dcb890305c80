package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"groundwork/internal/memory"
)

var evidenceCmd = &cobra.Command{
	Use:   "evidence [claim-id | artifact-id]",
	Short: "Show the evidence backing a claim or artifact",
	Long: `Resolves claims to the full content of the sources they cite. Give a
numeric claim ID for one claim, or an artifact ID (art_...) for every
claim attached to that artifact. Assumptions carry no sources and are
flagged as such.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		arg := args[0]
		if strings.HasPrefix(arg, "art_") {
			bundles, err := sess.memory.RetrieveArtifactContext(sess.ws.ID, arg)
			if err != nil {
				return err
			}
			if len(bundles) == 0 {
				fmt.Println("No claims attached to this artifact.")
				return nil
			}
			for i := range bundles {
				printBundle(&bundles[i])
			}
			return nil
		}

		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("expected a numeric claim ID or an art_ artifact ID, got %q", arg)
		}
		bundle, err := sess.memory.RetrieveContext(sess.ws.ID, id)
		if err != nil {
			return err
		}
		printBundle(bundle)
		return nil
	},
}

func printBundle(b *memory.EvidenceBundle) {
	tag := okStyle.Render(b.Kind)
	if b.Assumption {
		tag = skipStyle.Render("assumption (no sources)")
	}
	fmt.Printf("claim %d [%s]\n  %s\n", b.ClaimID, tag, b.ClaimText)
	for _, src := range b.Sources {
		title := src.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("  cites %s  %s\n", src.ID, title)
	}
	for _, id := range b.Missing {
		fmt.Printf("  %s %s\n", failStyle.Render("missing"), id)
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(evidenceCmd)
}
