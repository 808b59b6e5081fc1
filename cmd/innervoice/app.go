package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/unowned-ai/innervoice/pkg/config"
	pkgdb "github.com/unowned-ai/innervoice/pkg/db"
	"github.com/unowned-ai/innervoice/pkg/journal"
	"github.com/unowned-ai/innervoice/pkg/llm"
	"github.com/unowned-ai/innervoice/pkg/notes"
	"github.com/unowned-ai/innervoice/pkg/utils"
)

// app bundles what every command needs once the database is open.
type app struct {
	cfg    config.Config
	db     *sql.DB
	svc    *journal.Service
	logger *slog.Logger
	dbPath string
}

// loadConfig reads the config file. A broken file is reported and defaults are used.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	return config.Normalize(cfg)
}

// resolveDBPath picks --db, then the config file, then the default location.
func resolveDBPath() (string, error) {
	path := dbPath
	if path == "" {
		path = loadConfig().DBPath
	}
	return utils.ResolveAndEnsureDBPath(path)
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openApp opens and migrates the database and builds the journal service.
// Without an API key the service runs on the rule-based analyzer alone.
func openApp(ctx context.Context, logger *slog.Logger) (*app, error) {
	cfg := loadConfig()
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	path, err := utils.ResolveAndEnsureDBPath(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	conn, err := pkgdb.Open(driver, path, walMode, syncMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var model llm.Completer
	if cfg.APIKey != "" {
		gemini, err := llm.NewGemini(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			conn.Close()
			return nil, err
		}
		model = llm.RequireText(gemini)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	svc := journal.NewService(notes.NewStore(conn), model,
		journal.WithLogger(logger),
		journal.WithModelTimeout(cfg.Timeout()),
		journal.WithMaxContentLength(cfg.MaxContentLength),
		journal.WithRecentContext(cfg.RecentContext),
		journal.WithCache(journal.DefaultCacheSize),
	)

	return &app{cfg: cfg, db: conn, svc: svc, logger: logger, dbPath: path}, nil
}

func (a *app) Close() error {
	if walMode {
		if err := pkgdb.Checkpoint(a.db); err != nil {
			a.logger.Warn("wal checkpoint failed", slog.Any("err", err))
		}
	}
	return a.db.Close()
}

func (a *app) modelName() string {
	if a.cfg.APIKey == "" {
		return "none (rule-based analysis)"
	}
	return a.cfg.Model
}
