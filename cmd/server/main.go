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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"sirene/internal/extraction/extractor"
	extractionMetrics "sirene/internal/extraction/metrics"
	"sirene/internal/extraction/orchestrator"
	"sirene/internal/extraction/publisher"
	"sirene/internal/extraction/transform"
	"sirene/internal/platform/config"
	"sirene/internal/platform/httpserver"
	"sirene/internal/platform/logger"
	httpMetrics "sirene/internal/platform/metrics"
	"sirene/internal/registry/sirene"
	httptransport "sirene/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	extractionM := extractionMetrics.New(reg)

	client, err := sirene.New(cfg.APIBaseURL,
		sirene.WithAPIKey(cfg.APIKey),
		sirene.WithMaxRetries(cfg.Extraction.MaxRetries),
		sirene.WithTimeout(cfg.Extraction.Timeout()),
		sirene.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("registry client: %w", err)
	}

	ext, err := extractor.New(client,
		extractor.WithLogger(log),
		extractor.WithMetrics(extractionM),
	)
	if err != nil {
		return fmt.Errorf("extractor: %w", err)
	}

	orchOpts := []orchestrator.Option{
		orchestrator.WithLogger(log),
		orchestrator.WithMetrics(extractionM),
	}
	if cfg.ActivityLabelsFile != "" {
		labels, err := loadActivityLabels(cfg.ActivityLabelsFile)
		if err != nil {
			return err
		}
		orchOpts = append(orchOpts, orchestrator.WithActivityLabeler(labels.Labeler()))
		log.Info("activity labels loaded", "file", cfg.ActivityLabelsFile, "count", len(labels))
	}
	checks := map[string]httptransport.HealthCheck{}
	if cfg.PublishEnabled() {
		pub, err := publisher.New(cfg.KafkaBrokers, cfg.KafkaTopic, publisher.WithLogger(log))
		if err != nil {
			return fmt.Errorf("publisher: %w", err)
		}
		defer pub.Close()
		if err := pub.EnsureTopic(ctx, 1, 1); err != nil {
			return fmt.Errorf("ensure topic %s: %w", cfg.KafkaTopic, err)
		}
		orchOpts = append(orchOpts, orchestrator.WithSink(pub))
		checks["kafka"] = pub.Health
		log.Info("publishing results", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	orch, err := orchestrator.New(ext, cfg.Extraction, orchOpts...)
	if err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}

	router := httptransport.NewRouter(httptransport.NewExtractionHandler(orch, log), httptransport.RouterConfig{
		Logger:         log,
		Metrics:        httpMetrics.New(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		HealthChecks:   checks,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting sirene", "addr", cfg.Addr, "validation_mode", cfg.Extraction.ValidationMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func loadActivityLabels(path string) (transform.ActivityLabels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open activity labels: %w", err)
	}
	defer f.Close()
	return transform.LoadActivityLabels(f)
}
