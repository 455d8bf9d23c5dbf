package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dgallion1/doxyrst/internal/api"
	"github.com/dgallion1/doxyrst/internal/metrics"
	"github.com/dgallion1/doxyrst/internal/pipeline"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port string `help:"Listen port (overrides PORT)."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, log, err := setup(cli)
	if err != nil {
		return err
	}
	if c.Port != "" {
		cfg.Port = c.Port
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewPrometheusRecorder(reg)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(newRunner(cfg, log, rec), cfg.BuildWorkers, cfg.MaxQueueSize, cfg.JobTTL, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, metrics.HTTPHandler(reg), log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		// No more submissions once the listener is closed.
		orch.Stop()
	}()

	log.Info("starting doxyrst build service", "port", cfg.Port, "build_workers", cfg.BuildWorkers)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
