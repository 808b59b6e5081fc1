package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/innervoice/pkg/httpapi"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the journal over HTTP",
	Long: `Start the JSON HTTP API.

Routes:
  GET    /api/notes            list notes (?limit=&offset=)
  POST   /api/notes            create a note {"content": "...", "userProfile": {...}}
  GET    /api/notes/{id}       get a note
  PUT    /api/notes/{id}       update a note
  DELETE /api/notes/{id}       delete a note
  GET    /api/notes/related    ?emotion=&exclude=
  GET    /api/notes/search     ?q=&emotions=&from=&to=&limit=&offset=
  GET    /api/stats            mood and emotion summary`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(os.Stderr)
		a, err := openApp(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer a.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = a.cfg.ListenAddr
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           httpapi.New(a.svc, logger).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server starting", slog.String("addr", addr), slog.String("db", a.dbPath), slog.String("model", a.modelName()))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (defaults to listenAddr from the config file)")
}
