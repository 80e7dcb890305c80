package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"groundwork/internal/approval"
	"groundwork/internal/crm"
)

var (
	approveCategory string
	approveTTL      time.Duration
	approveBy       string
)

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Issue an approval token for a gated operation",
	Long: `Gated operations (CRM writes, external file writes) refuse to run
without a valid token. Tokens are time-boxed and category-bound; the
token file this writes is what you hand to the gated command. A token
stays valid until it expires.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot()
		if err != nil {
			return err
		}

		cat := approval.Category(approveCategory)
		switch cat {
		case approval.CategoryCRMWrite, approval.CategoryCRMRead, approval.CategoryFileWrite:
		default:
			return fmt.Errorf("unknown category %q", approveCategory)
		}

		by := approveBy
		if by == "" {
			by = os.Getenv("USER")
		}
		if by == "" {
			by = "operator"
		}

		tok := approval.CreateToken(cat, by, approveTTL)

		dir := filepath.Join(root, ".groundwork", "approvals")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		data, err := json.MarshalIndent(tok, "", "  ")
		if err != nil {
			return err
		}
		path := filepath.Join(dir, tok.ID+".json")
		if err := os.WriteFile(path, data, 0600); err != nil {
			return err
		}

		fmt.Printf("Token %s (%s) expires %s\n", tok.ID, tok.Category, tok.ExpiresAt.Format(time.RFC3339))
		fmt.Printf("  %s\n", path)
		return nil
	},
}

var crmTokenPath string

var crmCmd = &cobra.Command{
	Use:   "crm",
	Short: "Gated CRM operations",
}

var crmPushCmd = &cobra.Command{
	Use:   "push [artifact-id]",
	Short: "Push an artifact to the CRM exporter (requires a crm_write token)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		tok, err := loadToken(crmTokenPath)
		if err != nil {
			return err
		}

		a, err := sess.store.GetArtifact(args[0])
		if err != nil {
			return err
		}

		client := crm.NewClient(&crm.FileExporter{Dir: sess.ws.ExportsDir()}, logger)
		rec := crm.Record{
			Company: defaultCompany(sess),
			Summary: a.Content,
			RunID:   a.RunID,
		}
		if rec.Company == "" {
			rec.Company = a.Name
		}
		if err := client.PushRecord(cmd.Context(), tok, rec); err != nil {
			return err
		}
		fmt.Printf("Pushed %s to %s\n", a.ID, sess.ws.ExportsDir())
		return nil
	},
}

func loadToken(path string) (*approval.Token, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	var tok approval.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return &tok, nil
}

// defaultCompany picks the record's company when the workspace tracks
// exactly one. Companies are first-writer-wins, so a single-account
// workspace has an unambiguous answer.
func defaultCompany(sess *session) string {
	companies, err := sess.store.GetCompanies()
	if err != nil || len(companies) != 1 {
		return ""
	}
	return companies[0].Name
}

func init() {
	approveCmd.Flags().StringVar(&approveCategory, "category", string(approval.CategoryCRMWrite), "Side-effect category: crm_write, crm_read, file_write")
	approveCmd.Flags().DurationVar(&approveTTL, "ttl", 15*time.Minute, "Token lifetime")
	approveCmd.Flags().StringVar(&approveBy, "by", "", "Who granted the approval (defaults to $USER)")

	crmPushCmd.Flags().StringVar(&crmTokenPath, "token", "", "Path to an approval token file")
	crmCmd.AddCommand(crmPushCmd)

	rootCmd.AddCommand(approveCmd, crmCmd)
}
