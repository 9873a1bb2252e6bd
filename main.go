package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"rockmass/config"
	rhttp "rockmass/http"
	"rockmass/logger"
	"rockmass/metrics"
	"rockmass/ml"
)

func main() {
	// 1. Load config
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Printf("Exiting with error: %v", err)
		stop()
		os.Exit(1)
	}
}

// run serves the dashboard until ctx is done or the server fails. A serve
// failure is returned so the process exits non-zero.
func run(ctx context.Context, cfg *config.Config) error {
	// 2. Initialize logger
	lg, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	zap.ReplaceGlobals(lg)

	// 3. Load the model once; without it the dashboard does not start
	classifier, err := loadClassifier(cfg.Model, lg)
	if err != nil {
		lg.Error("Failed to load model", zap.String("path", cfg.Model.ArtifactPath), zap.Error(err))
		return multierr.Append(err, syncLogger(lg))
	}

	// 4. Start HTTP server
	dashboard, err := rhttp.NewDashboard(classifier, lg, cfg.HTTP.AllowedOrigins)
	if err != nil {
		return multierr.Append(err, syncLogger(lg))
	}
	server := rhttp.NewServer(serverConfig(cfg), dashboard, lg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// 5. Handle graceful shutdown
	var serveErr error
	select {
	case <-ctx.Done():
		lg.Info("Shutting down")
	case serveErr = <-errCh:
		if serveErr != nil {
			lg.Error("HTTP server failed", zap.Error(serveErr))
		}
	}

	return multierr.Combine(serveErr, server.Stop(), syncLogger(lg))
}

func loadClassifier(cfg config.ModelConfig, lg *zap.Logger) (*ml.Classifier, error) {
	loader, err := ml.NewLoader(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	model, err := loader.Load(ml.ArtifactConfig{Path: cfg.ArtifactPath})
	if err != nil {
		return nil, err
	}
	classifier, err := ml.NewClassifier(model)
	if err != nil {
		return nil, err
	}
	metrics.ModelInfo.WithLabelValues(model.Kind, model.Path, strings.Join(classifier.Labels(), ",")).Set(1)
	lg.Info("Model loaded",
		zap.String("estimator", model.Kind),
		zap.String("path", model.Path),
		zap.Strings("classes", classifier.Labels()),
	)
	return classifier, nil
}

func serverConfig(cfg *config.Config) rhttp.ServerConfig {
	sc := rhttp.DefaultServerConfig()
	sc.Port = cfg.HTTP.Port
	sc.Timeout = cfg.HTTP.Timeout
	sc.AllowedOrigins = cfg.HTTP.AllowedOrigins
	sc.MetricsPath = ""
	if cfg.Metrics.Enabled {
		sc.MetricsPath = cfg.Metrics.Path
	}
	return sc
}

// configPath honours ROCKMASS_CONFIG and otherwise looks for config.yaml in
// the working directory.
func configPath() string {
	if path := os.Getenv("ROCKMASS_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}

// syncLogger flushes lg, ignoring the EINVAL/ENOTTY that fsync returns for a
// terminal or pipe.
func syncLogger(lg *zap.Logger) error {
	err := lg.Sync()
	for _, e := range multierr.Errors(err) {
		if !strings.Contains(e.Error(), "sync /dev/stdout") && !strings.Contains(e.Error(), "sync /dev/stderr") {
			return err
		}
	}
	return nil
}
