package app

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

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/orbitview/spacedata-server/internal/analytics"
	"github.com/orbitview/spacedata-server/internal/api"
	"github.com/orbitview/spacedata-server/internal/config"
	"github.com/orbitview/spacedata-server/internal/httpclient"
	"github.com/orbitview/spacedata-server/internal/store"
	"github.com/orbitview/spacedata-server/internal/store/inmemory"
	"github.com/orbitview/spacedata-server/internal/store/postgres"
	"github.com/orbitview/spacedata-server/internal/sync"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the spacedata API server",
	Long: `Start the HTTP server exposing dataset CRUD, sync control and
analytics endpoints. Without --config the server runs with defaults
(in-memory storage, public upstream).`,
	RunE: runServe,
}

const (
	defaultGracefulTimeout = 30 * time.Second
	serverReadTimeout      = 10 * time.Second
	// Sync requests block on the upstream fetch including its backoff
	// sleeps, so the write timeout must cover a full retry cycle.
	serverWriteTimeout = 2 * time.Minute
	serverIdleTimeout  = 60 * time.Second
)

func init() {
	serveCmd.Flags().String("config", "", "Path to configuration file (YAML format)")

	if err := viper.BindPFlag("config", serveCmd.Flags().Lookup("config")); err != nil {
		slog.Error("Failed to bind config flag", "error", err)
		os.Exit(1)
	}
}

// newStore builds the persistence backend the configuration selects.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Type {
	case config.StorageTypePostgres:
		db := cfg.Storage.Database
		password, err := db.GetPassword()
		if err != nil {
			return nil, err
		}

		st, err := postgres.New(ctx, postgres.Options{
			Host:     db.Host,
			Port:     db.Port,
			User:     db.User,
			Password: password,
			Database: db.Database,
			SSLMode:  db.SSLMode,
			MaxConns: db.MaxOpenConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := st.EnsureSchema(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	default:
		return inmemory.New(), nil
	}
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	var opts []config.Option
	if configPath := viper.GetString("config"); configPath != "" {
		opts = append(opts, config.WithConfigPath(configPath))
	}
	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Starting spacedata API server",
		"address", cfg.ListenAddr,
		"storage", cfg.Storage.Type,
		"upstream", cfg.Upstream.BaseURL)

	st, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	client := httpclient.New(cfg.Upstream.MaxAttempts, cfg.Upstream.AttemptTimeout)
	coordinator := sync.NewCoordinator(st, client, cfg.Upstream.BaseURL)
	engine := analytics.New(st)

	router := api.NewServer(st, coordinator, engine,
		api.WithMiddlewares(
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			api.LoggingMiddleware,
		),
	)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	go func() {
		slog.Info("Server listening", "address", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return err
	}

	slog.Info("Server shutdown complete")
	return nil
}
