package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"rockmass/config"
)

func TestNewWritesJSONToFile(t *testing.T) {
	cfg := config.Default().Log
	cfg.Format = "json"
	cfg.Output = filepath.Join(t.TempDir(), "rockmass.log")

	log, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Info("model loaded", zap.String("estimator", "xgboost"))
	log.Debug("filtered out")
	_ = log.Sync()

	data, err := os.ReadFile(cfg.Output)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, `"message":"model loaded"`) || !strings.Contains(out, `"estimator":"xgboost"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
	if strings.Contains(out, "filtered out") {
		t.Fatal("debug entry written at info level")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	cfg := config.Default().Log
	cfg.Level = "loud"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error")
	}
}
