// Package cli implements the convo-notes CLI commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/convo-notes/internal/config"
	"github.com/rcliao/convo-notes/internal/model"
	"github.com/rcliao/convo-notes/internal/store"
)

var (
	configPath string
	dbPath     string
	formatFlag string
	verbose    bool
	noLedger   bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "convo-notes",
	Short: "Turn chat exports into tagged markdown notes",
	Long: "Convert a chat export into one markdown file per conversation, then add topic tags " +
		"with an external tool while guarding the conversation text against modification.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $CONVO_NOTES_CONFIG or ~/.convo-notes/config.toml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Ledger database path (default: $CONVO_NOTES_DB or ~/.convo-notes/ledger.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	RootCmd.PersistentFlags().BoolVar(&noLedger, "no-ledger", false, "Do not record runs in the ledger")
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	return cfg
}

func getDBPath(cfg *config.Config) string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("CONVO_NOTES_DB"); env != "" {
		return env
	}
	if cfg != nil && cfg.DBPath != "" {
		return cfg.DBPath
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".convo-notes", "ledger.db")
}

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath(cfg))
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// ledgerRun is an open ledger run; the zero value records nothing.
type ledgerRun struct {
	store *store.SQLiteStore
	run   *model.Run
	log   *slog.Logger
}

// beginRun starts a ledger run. Ledger problems are logged and the batch
// proceeds without recording.
func beginRun(cmd *cobra.Command, cfg *config.Config, kind, source string, log *slog.Logger) *ledgerRun {
	lr := &ledgerRun{log: log}
	if noLedger {
		return lr
	}
	s, err := openStore(cfg)
	if err != nil {
		log.Warn("ledger unavailable", "error", err)
		return lr
	}
	run, err := s.StartRun(cmd.Context(), kind, source)
	if err != nil {
		log.Warn("ledger unavailable", "error", err)
		s.Close()
		return lr
	}
	lr.store, lr.run = s, run
	log.Debug("ledger run started", "run", run.ID, "db", getDBPath(cfg))
	return lr
}

// recorder returns the run's recorder, or nil when recording is off.
func (lr *ledgerRun) recorder() *store.RunRecorder {
	if lr.store == nil {
		return nil
	}
	return lr.store.Recorder(lr.run.ID)
}

func (lr *ledgerRun) finish(cmd *cobra.Command, summary any) {
	if lr.store == nil {
		return
	}
	defer lr.store.Close()
	if err := lr.store.FinishRun(cmd.Context(), lr.run.ID, summary); err != nil {
		lr.log.Warn("ledger finish failed", "run", lr.run.ID, "error", err)
	}
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
