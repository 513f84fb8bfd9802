package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsawler/scribe/config"
	"github.com/tsawler/scribe/session"
	"github.com/tsawler/scribe/store"
)

var rootCmd = &cobra.Command{
	Use:   "scribe",
	Short: "Structural PDF editing",
	Long: `scribe stores PDF documents as versioned blobs, parses them into
addressable text and image elements, and edits them in place by id.`,
	SilenceUsage: true,
}

var (
	flagConfig  string
	flagDataDir string
	flagVerbose bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
}

// env is everything an invocation needs: config, logger, the store, and
// the session arena.
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
	arena *session.Arena
}

// openEnv wires the stack for one command invocation.
func openEnv() (*env, error) {
	cfg, err := config.Load(flagConfig, flagDataDir)
	if err != nil {
		return nil, err
	}

	log := zap.NewNop()
	if flagVerbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}

	st, err := store.Open(store.Options{
		Dir:         cfg.Storage.DataDir,
		MaxBlobSize: cfg.Storage.MaxBlobSize,
		LockWait:    cfg.Storage.LockWait,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}
	if err := st.Ping(); err != nil {
		st.Close()
		return nil, fmt.Errorf("store not ready: %w", err)
	}

	return &env{
		cfg:   cfg,
		log:   log,
		store: st,
		arena: session.New(st, cfg.Session.ArenaSize, log),
	}, nil
}

func (e *env) close() {
	e.store.Close()
	e.log.Sync()
}
