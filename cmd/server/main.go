package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pos-sync-service/internal/api"
	"pos-sync-service/internal/config"
	"pos-sync-service/internal/connectivity"
	"pos-sync-service/internal/database"
	"pos-sync-service/internal/logger"
	"pos-sync-service/internal/queue"
	"pos-sync-service/internal/remote"
	"pos-sync-service/internal/store"
	"pos-sync-service/internal/sync"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	ConfigPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "pos-sync",
		Short:         "Offline-first data sync engine for the POS terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "config.yaml", "path to config file")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the sync engine and its HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "drain",
		Short: "Push queued transactions to the remote once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrain(opts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "pending",
		Short: "Print queued transactions as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPending(opts, cmd)
		},
	})

	return cmd
}

// app holds the wired engine. close releases everything in reverse order.
type app struct {
	cfg          *config.Config
	local        store.Store
	gateway      remote.Gateway
	queue        *queue.Queue
	monitor      *connectivity.Monitor
	orchestrator *sync.Orchestrator
	feed         *remote.ChangeFeed
	closers      []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, path string) (*app, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.InitLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	a := &app{cfg: cfg}
	a.closers = append(a.closers, logger.Sync)

	switch cfg.Local.Type {
	case "memory":
		a.local = store.NewMemoryStore()
	default:
		s, err := store.NewSQLiteStore(cfg.Local.FilePath)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to open local store: %w", err)
		}
		a.local = s
	}
	a.closers = append(a.closers, func() { a.local.Close() })

	switch cfg.Remote.Type {
	case "mysql":
		db, err := database.OpenMySQL(cfg.Remote.MySQL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to open remote database: %w", err)
		}
		a.closers = append(a.closers, func() { db.Close() })
		gw := remote.NewMySQLGateway(db)
		if err := gw.EnsureSchema(ctx); err != nil {
			logger.Log.Warn("Failed to ensure remote schema", zap.Error(err))
		}
		a.gateway = gw
	default:
		gw, err := remote.NewPostgRESTClient(cfg.Remote.PostgREST)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to init remote gateway: %w", err)
		}
		a.gateway = gw
	}

	a.queue = queue.New(a.local)
	a.monitor = connectivity.NewMonitor()
	a.orchestrator = sync.NewOrchestrator(cfg.Sync, a.local, a.queue, a.gateway, a.monitor)

	if cfg.Remote.Type == "mysql" && cfg.Remote.MySQL.ChangeFeed {
		o := a.orchestrator
		feed, err := remote.NewChangeFeed(cfg.Remote.MySQL, func(context.Context) {
			o.RefreshInBackground()
		})
		if err != nil {
			logger.Log.Warn("Change feed disabled", zap.Error(err))
		} else {
			a.feed = feed
		}
	}
	return a, nil
}

func runServe(opts *rootOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}
	defer a.close()
	cfg := a.cfg

	logger.Log.Info("Starting POS sync service",
		zap.String("local", cfg.Local.Type),
		zap.String("remote", cfg.Remote.Type),
	)

	if err := a.orchestrator.Start(ctx); err != nil {
		return err
	}
	defer a.orchestrator.Stop()

	if cfg.Connectivity.ProbeEnabled {
		prober := connectivity.NewProber(cfg.Connectivity, a.gateway, a.monitor)
		prober.Start()
		defer prober.Stop()
	}

	reconciler := sync.NewReconciler(cfg.Scheduler, a.orchestrator)
	if err := reconciler.Start(); err != nil {
		logger.Log.Error("Failed to start reconciler", zap.Error(err))
	}
	defer reconciler.Stop()

	if a.feed != nil {
		go func() {
			if err := a.feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.Error("Change feed stopped", zap.Error(err))
			}
		}()
		defer a.feed.Close()
	}

	handler := api.NewHandler(cfg.Server, a.orchestrator, a.monitor)
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.GetReadTimeout(),
		WriteTimeout: cfg.Server.GetWriteTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server listening", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn("Server shutdown incomplete", zap.Error(err))
	}
	return nil
}

// runDrain probes the remote once and, if reachable, refreshes and drains.
func runDrain(opts *rootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := buildApp(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}
	defer a.close()

	prober := connectivity.NewProber(a.cfg.Connectivity, a.gateway, a.monitor)
	if !prober.Probe(ctx) {
		return fmt.Errorf("remote is unreachable")
	}
	a.orchestrator.Refresh(ctx)
	res := a.orchestrator.Drain(ctx)
	return printJSON(cmd, res)
}

func runPending(opts *rootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := buildApp(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}
	defer a.close()

	txs, err := a.orchestrator.Pending(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd, txs)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
