package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	salesdockadapter "github.com/jdewinter/leadsync/internal/adapter/driven/salesdock"
	sqliteadapter "github.com/jdewinter/leadsync/internal/adapter/driven/sqlite"
	zohoadapter "github.com/jdewinter/leadsync/internal/adapter/driven/zoho"
	httphandler "github.com/jdewinter/leadsync/internal/adapter/driving/http"
	"github.com/jdewinter/leadsync/internal/application"
	"github.com/jdewinter/leadsync/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"zoho_api_url", cfg.ZohoAPIBaseURL,
		"salesdock_url", cfg.SalesdockBaseURL,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire store adapters.
	credentialStore := sqliteadapter.NewCredentialRepo(db)
	ledgerStore := sqliteadapter.NewLedgerRepo(db)
	auditSink := sqliteadapter.NewAuditRepo(db)

	// 6. Create vendor clients. The Zoho client serves both the CRM read
	// path and the token refresh path; its reads go through a caching
	// transport.
	zohoClient, err := zohoadapter.NewClient(cfg.ZohoAPIBaseURL, cfg.ZohoAccountsURL)
	if err != nil {
		return err
	}
	salesdockClient := salesdockadapter.NewClient(cfg.SalesdockBaseURL)

	// 7. Create the sync service.
	syncSvc := application.NewSyncService(
		credentialStore,
		zohoClient,
		zohoClient,
		salesdockClient,
		ledgerStore,
		auditSink,
		slog.Default(),
	)

	// 8. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(syncSvc, credentialStore, ledgerStore, auditSink, slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, apiHandler)
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	// 9. Log startup complete and wait for shutdown signal.
	slog.Info("leadsync started", "listen_addr", cfg.ListenAddr)
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout to drain in-flight events.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
