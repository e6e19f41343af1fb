package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/teamdash/roadmap-service/internal/azdo"
	"github.com/teamdash/roadmap-service/internal/config"
	"github.com/teamdash/roadmap-service/internal/db"
	"github.com/teamdash/roadmap-service/internal/logging"
	"github.com/teamdash/roadmap-service/internal/server"
	"github.com/teamdash/roadmap-service/internal/service"
	"github.com/teamdash/roadmap-service/internal/storage"
)

var flagLogLevel string

var rootCmd = &cobra.Command{
	Use:   "roadmapd",
	Short: "Roadmap planning dashboard API over Azure DevOps work items",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(flagLogLevel)
		return serve()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	teams, err := cfg.Teams()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("init database pool: %w", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	tracker, err := azdo.NewClient(azdo.Options{
		OrgURL:           cfg.AzDoOrgURL,
		Project:          cfg.AzDoProject,
		PAT:              cfg.AzDoPAT,
		APIVersion:       cfg.AzDoAPIVersion,
		Timeout:          cfg.HTTPTimeout,
		RevisionTimeout:  cfg.RevisionTimeout,
		RetryAttempts:    cfg.RetryAttempts,
		RetryBaseDelay:   cfg.RetryBaseDelay,
		WorkItemBatchCap: cfg.WorkItemBatchCap,
	})
	if err != nil {
		return err
	}

	repo := storage.NewRepository(pool)
	svc := service.New(tracker, repo, service.Options{
		Project:   cfg.AzDoProject,
		Teams:     teams,
		BatchSize: cfg.RevisionBatchSize,
	})
	router := server.NewRouter(server.NewHandler(svc))

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("HTTP shutdown error", "error", err.Error())
		}
	}()

	logging.Info("roadmap service listening", "addr", cfg.Addr(), "project", cfg.AzDoProject)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
