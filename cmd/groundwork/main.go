// Command groundwork is the CLI for the workflow kernel: deterministic
// pipeline runs, evidence-scoped workspace memory, and gated exports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"groundwork/internal/config"
	"groundwork/internal/logging"
	"groundwork/internal/memory"
	"groundwork/internal/store"
	"groundwork/internal/workspace"
)

var (
	// Global flags
	verbose       bool
	workspaceRoot string

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "groundwork",
	Short: "groundwork - evidence-grounded account pipeline runner",
	Long: `groundwork runs deterministic skill pipelines against a workspace of
ingested sources. Every generated artifact carries claims that cite the
sources it was grounded in, and every external write is gated behind an
explicit approval token.

Start with "groundwork init", feed the workspace with "groundwork ingest",
then "groundwork run <company>" to produce the pipeline artifacts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		root, err := resolveRoot()
		if err != nil {
			return err
		}
		if err := logging.Initialize(root); err != nil {
			logger.Warn("debug logging unavailable", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func resolveRoot() (string, error) {
	root, err := filepath.Abs(workspaceRoot)
	if err != nil {
		return "", fmt.Errorf("bad workspace path %q: %w", workspaceRoot, err)
	}
	return root, nil
}

// session bundles the open handles most commands need.
type session struct {
	root   string
	cfg    *config.Config
	ws     *workspace.Context
	store  *store.Store
	memory *memory.API
}

// openSession loads the workspace under the --workspace root. It fails if
// the workspace was never initialized; commands that create workspaces go
// through init instead.
func openSession() (*session, error) {
	root, err := resolveRoot()
	if err != nil {
		return nil, err
	}

	ws, err := workspace.Load(root)
	if err != nil {
		return nil, fmt.Errorf("no workspace at %s (run \"groundwork init\" first): %w", root, err)
	}

	cfg, err := config.Load(config.Path(root))
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ws.DBPath(), ws.ID, ws.Name)
	if err != nil {
		return nil, err
	}

	return &session{
		root:   root,
		cfg:    cfg,
		ws:     ws,
		store:  st,
		memory: memory.New(st),
	}, nil
}

func (s *session) Close() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVarP(&workspaceRoot, "workspace", "w", ".", "Workspace root directory")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
