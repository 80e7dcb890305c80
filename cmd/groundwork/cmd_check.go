package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkRebuild bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify workspace integrity",
	Long: `Reports row counts, scans every claim for citations of sources that do
not exist, and with --rebuild regenerates the search index from the base
tables. The index is derived state, so a rebuild is always safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		fmt.Printf("Workspace %s (%s)\n", sess.ws.Name, sess.ws.ID)

		stats, err := sess.store.Stats()
		if err != nil {
			return err
		}
		for _, table := range []string{"sources", "companies", "artifacts", "claims", "search_index"} {
			fmt.Printf("  %-13s %d\n", table, stats[table])
		}

		if checkRebuild {
			if err := sess.store.RebuildIndex(); err != nil {
				return err
			}
			fmt.Println(okStyle.Render("Search index rebuilt."))
		}

		defects, err := sess.store.CheckEvidence()
		if err != nil {
			return err
		}
		if len(defects) == 0 {
			fmt.Println(okStyle.Render("Evidence chain intact."))
			return nil
		}
		for _, d := range defects {
			fmt.Printf("%s claim %d cites missing source %s\n", failStyle.Render("defect:"), d.ClaimID, d.SourceID)
		}
		return fmt.Errorf("%d evidence defect(s) found", len(defects))
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkRebuild, "rebuild", false, "Rebuild the search index from base tables")
	rootCmd.AddCommand(checkCmd)
}
