package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"enigma/internal/config"
	"enigma/internal/handler"
	"enigma/internal/hub"
	"enigma/internal/metrics"
	"enigma/internal/repository/sqlite"
	"enigma/internal/service"
	"enigma/internal/watcher"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		addr          string
		dbPath        string
		enableMetrics bool
		noWatch       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cipher API over HTTP",
		Long: `Start the HTTP API.

Endpoints:
  POST /api/encipher              stateless encipher
  GET  /api/catalog               built-in rotors and wheels
  /api/settings/{name}            stored settings (GET, PUT, DELETE)
  /api/sessions[/{id}[/type|/reset|/messages]]
  POST /api/import/{yaml|json}    import a key sheet
  GET  /api/export/{yaml|json}    export stored settings
  GET  /events                    server-sent events
  GET  /metrics                   Prometheus metrics (when enabled)

The config file, if one was found, is watched and the default machine is
reloaded when it changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = dbPath
			}
			if cmd.Flags().Changed("metrics") {
				cfg.Metrics.Enabled = enableMetrics
			}
			if noWatch {
				path = ""
			}
			return serve(cfg, path)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":3000", "HTTP listen address")
	cmd.Flags().StringVar(&dbPath, "db", "./enigma.db", "SQLite database path")
	cmd.Flags().BoolVar(&enableMetrics, "metrics", false, "expose Prometheus metrics")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the config file on change")
	return cmd
}

func serve(cfg *config.Config, configPath string) error {
	if configPath != "" {
		log.Printf("Loaded config from %s", configPath)
	} else {
		log.Printf("No config file found, using defaults")
	}

	settings, err := cfg.Machine.Settings()
	if err != nil {
		return fmt.Errorf("default machine: %w", err)
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()
	log.Printf("Database: %s", cfg.Database.Path)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	eventBus := service.NewEventBus()
	svc, err := service.NewCipherService(repo, eventBus, m, settings)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// SSE hub fed from the event bus
	sseHub := hub.New(m)
	go sseHub.Run(ctx)
	sseHub.Attach(ctx, eventBus)

	if configPath != "" {
		w := watcher.New(configPath, svc.ReloadDefault)
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Config watcher stopped: %v", err)
			}
		}()
	}

	mux := http.NewServeMux()
	handler.NewCipherHandler(svc).Register(mux)
	mux.Handle("GET /events", sseHub)
	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		log.Printf("Metrics at %s", cfg.Metrics.Path)
	}

	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
		handler.Instrument(m),
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		IdleTimeout:  cfg.Server.IdleTimeout.Duration(),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	log.Println("Shutting down server...")

	// Stop the hub first so open event streams end and Shutdown can finish
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	return nil
}
