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

	pushadapter "github.com/subcircle/subcircle/internal/adapter/driven/push"
	sqliteadapter "github.com/subcircle/subcircle/internal/adapter/driven/sqlite"
	httphandler "github.com/subcircle/subcircle/internal/adapter/driving/http"
	"github.com/subcircle/subcircle/internal/application"
	"github.com/subcircle/subcircle/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"push_configured", cfg.VAPIDPublicKey != "",
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

	// 5. Wire adapters.
	serviceStore := sqliteadapter.NewServiceRepo(db)
	subscriptionStore := sqliteadapter.NewSubscriptionRepo(db)
	credentialStore := sqliteadapter.NewCredentialRepo(db)
	partnerStore := sqliteadapter.NewPartnerRepo(db)
	notificationStore := sqliteadapter.NewNotificationRepo(db)
	pushStore := sqliteadapter.NewPushRepo(db)
	notifier := pushadapter.NewLogNotifier(slog.Default())

	// 6. Wire application services.
	notificationSvc := application.NewNotificationService(notificationStore, pushStore, notifier, slog.Default())
	credentialSvc := application.NewCredentialService(subscriptionStore, credentialStore, slog.Default())
	sharingSvc := application.NewSharingService(subscriptionStore, credentialStore, partnerStore, credentialSvc, notificationSvc, slog.Default())
	partnerSvc := application.NewPartnerService(partnerStore, notificationSvc, slog.Default())

	// 7. Create HTTP handler and register routes.
	apiHandler := httphandler.NewHandler(
		serviceStore,
		subscriptionStore,
		pushStore,
		credentialSvc,
		sharingSvc,
		partnerSvc,
		notificationSvc,
		cfg.VAPIDPublicKey,
		slog.Default(),
	)
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

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

	slog.Info("subcircle started", "listen_addr", cfg.ListenAddr)

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
