package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/config"
	"fintrack/internal/log"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("FINTRACK_TEST_A=from-file\nFINTRACK_TEST_B=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("FINTRACK_TEST_A", "")
	os.Unsetenv("FINTRACK_TEST_A")
	t.Setenv("FINTRACK_TEST_B", "from-env")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("FINTRACK_TEST_A") })

	if got := os.Getenv("FINTRACK_TEST_A"); got != "from-file" {
		t.Fatalf("FINTRACK_TEST_A = %q", got)
	}
	if got := os.Getenv("FINTRACK_TEST_B"); got != "from-env" {
		t.Fatalf("FINTRACK_TEST_B = %q, environment should win", got)
	}
}

func TestLoadEnvFileMissing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing file should be ignored, got %v", err)
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")

	cfg, err := LoadAndValidateConfig(func(c *config.Config) { c.MonthWindow = 12 })
	if err != nil {
		t.Fatalf("LoadAndValidateConfig() error = %v", err)
	}
	if cfg.DataBackend != "memory" || cfg.MonthWindow != 12 {
		t.Fatalf("unexpected config %+v", cfg)
	}

	_, err = LoadAndValidateConfig(func(c *config.Config) { c.DataBackend = "tape" })
	if err == nil || !strings.Contains(err.Error(), "invalid data backend") {
		t.Fatalf("expected backend validation error, got %v", err)
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger("debug", &buf)
	logger.Debug("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("debug message not written: %q", buf.String())
	}

	buf.Reset()
	SetupLogger("loud", &buf)
	if !strings.Contains(buf.String(), "Unknown log level") {
		t.Fatalf("expected warning for unknown level: %q", buf.String())
	}
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATA_BACKEND", "file")
	t.Setenv("DATA_DIR", dir)

	cfg, err := LoadAndValidateConfig(nil)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	rt, err := OpenStore(ctx, cfg, log.Discard())
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	if n := len(rt.Store.List()); n != 6 {
		t.Fatalf("fresh store should hold the seed, got %d", n)
	}
	if !rt.Store.Delete(ctx, "tx-1") {
		t.Fatal("delete tx-1 failed")
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	rt, err = OpenStore(ctx, cfg, log.Discard())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer rt.Close()
	if n := len(rt.Store.List()); n != 5 {
		t.Fatalf("reopened store len = %d, want 5", n)
	}
}
