// Package crm is the outbound adapter for pushing pipeline output to a
// CRM. Every write is structurally gated: the exporter is private and the
// only path to it runs through approval validation, so an unapproved write
// cannot be expressed with this API.
package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"groundwork/internal/approval"
)

// Record is the shape pushed to the CRM.
type Record struct {
	Company   string    `json:"company"`
	Contact   string    `json:"contact,omitempty"`
	Summary   string    `json:"summary"`
	RunID     string    `json:"run_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Exporter performs the actual external write. Implementations are
// vendor-specific; the gate logic above them is not.
type Exporter interface {
	Write(ctx context.Context, rec Record) error
}

// Client wraps an exporter behind the approval gate.
type Client struct {
	exporter Exporter
	logger   *zap.Logger
}

// NewClient creates a gated CRM client.
func NewClient(exporter Exporter, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{exporter: exporter, logger: logger}
}

// PushRecord writes a record to the CRM. The write only happens after the
// token validates for the crm_write category; a missing, expired, or
// mismatched token returns ApprovalRequiredError and nothing is sent.
func (c *Client) PushRecord(ctx context.Context, tok *approval.Token, rec Record) error {
	const operation = "crm.push_record"

	if _, err := approval.Validate(tok, approval.CategoryCRMWrite, operation); err != nil {
		c.logger.Warn("crm write refused",
			zap.String("operation", operation),
			zap.String("company", rec.Company),
			zap.Error(err))
		return err
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if err := c.exporter.Write(ctx, rec); err != nil {
		return fmt.Errorf("crm write failed: %w", err)
	}

	c.logger.Info("crm record pushed",
		zap.String("company", rec.Company),
		zap.String("token", tok.ID))
	return nil
}

// FileExporter writes records as JSON files into a directory. It stands
// in for a vendor adapter during development and in tests.
type FileExporter struct {
	Dir string
}

// Write lands the record as <dir>/<company>_<timestamp>.json.
func (f *FileExporter) Write(ctx context.Context, rec Record) error {
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	name := fmt.Sprintf("%s_%d.json", sanitize(rec.Company), time.Now().UnixMilli())
	if err := os.WriteFile(filepath.Join(f.Dir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "record"
	}
	return string(out)
}
