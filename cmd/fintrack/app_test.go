package main

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"

	"github.com/google/subcommands"

	"fintrack/internal/config"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("DATA_BACKEND", "file")
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("AMQP_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	var stdout, stderr bytes.Buffer
	return &app{plain: true, stdout: &stdout, stderr: &stderr}, &stdout, &stderr
}

func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return c.Execute(context.Background(), f)
}

func TestOverride(t *testing.T) {
	a := &app{backend: "sqlite", currency: "eur", dataDir: "/tmp/x"}
	cfg := &config.Config{DataBackend: "file", Currency: "USD", DataDir: "./data", StorageKey: "k"}
	a.override(cfg)
	if cfg.DataBackend != "sqlite" || cfg.Currency != "EUR" || cfg.DataDir != "/tmp/x" || cfg.StorageKey != "k" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestListAddDelete(t *testing.T) {
	a, stdout, stderr := newTestApp(t)

	if got := run(t, &listCmd{app: a}); got != subcommands.ExitSuccess {
		t.Fatalf("list exit=%v stderr=%s", got, stderr)
	}
	if !strings.Contains(stdout.String(), "6 transaction(s)") {
		t.Fatalf("list output:\n%s", stdout)
	}

	stdout.Reset()
	if got := run(t, &addCmd{app: a}, "-merchant", "Bakery", "-amount", "3,20", "-category", "Food"); got != subcommands.ExitSuccess {
		t.Fatalf("add exit=%v stderr=%s", got, stderr)
	}
	if !strings.Contains(stdout.String(), "Added **Bakery** (Food) -$3.20") {
		t.Fatalf("add output:\n%s", stdout)
	}

	stdout.Reset()
	run(t, &listCmd{app: a}, "-q", "bakery")
	if !strings.Contains(stdout.String(), "1 transaction(s)") {
		t.Fatalf("filtered list output:\n%s", stdout)
	}

	stdout.Reset()
	stderr.Reset()
	if got := run(t, &deleteCmd{app: a}, "tx-1", "nope"); got != subcommands.ExitSuccess {
		t.Fatalf("delete exit=%v", got)
	}
	if !strings.Contains(stdout.String(), "Deleted 1 transaction(s)") || !strings.Contains(stderr.String(), `"nope"`) {
		t.Fatalf("delete stdout=%q stderr=%q", stdout, stderr)
	}

	stdout.Reset()
	run(t, &listCmd{app: a})
	if !strings.Contains(stdout.String(), "6 transaction(s)") {
		t.Fatalf("list after add and delete:\n%s", stdout)
	}
}

func TestAddValidation(t *testing.T) {
	a, _, stderr := newTestApp(t)
	if got := run(t, &addCmd{app: a}, "-merchant", "Shop", "-amount", "0", "-category", "Misc"); got != subcommands.ExitUsageError {
		t.Fatalf("exit=%v want usage error", got)
	}
	if !strings.Contains(stderr.String(), "invalid amount") {
		t.Fatalf("stderr=%q", stderr)
	}
}

func TestDeleteRequiresIDs(t *testing.T) {
	a, _, _ := newTestApp(t)
	if got := run(t, &deleteCmd{app: a}); got != subcommands.ExitUsageError {
		t.Fatalf("exit=%v want usage error", got)
	}
}

func TestReports(t *testing.T) {
	a, stdout, stderr := newTestApp(t)

	tests := []struct {
		cmd  subcommands.Command
		args []string
		want string
	}{
		{&summaryCmd{app: a}, nil, "$5,200.00"},
		{&monthlyCmd{app: a}, []string{"-months", "3"}, "# Last 3 months"},
		{&categoriesCmd{app: a}, nil, "Top category: **Housing**"},
		{&dashboardCmd{app: a}, nil, "# Spending by category"},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.Name(), func(t *testing.T) {
			stdout.Reset()
			if got := run(t, tt.cmd, tt.args...); got != subcommands.ExitSuccess {
				t.Fatalf("exit=%v stderr=%s", got, stderr)
			}
			if !strings.Contains(stdout.String(), tt.want) {
				t.Fatalf("output missing %q:\n%s", tt.want, stdout)
			}
		})
	}

	for _, months := range []string{"30", "0", "-1"} {
		for _, cmd := range []subcommands.Command{&monthlyCmd{app: a}, &dashboardCmd{app: a}} {
			stderr.Reset()
			if got := run(t, cmd, "-months", months); got != subcommands.ExitUsageError {
				t.Fatalf("%s -months %s exit=%v", cmd.Name(), months, got)
			}
			if !strings.Contains(stderr.String(), "between 1 and 24") {
				t.Fatalf("%s -months %s stderr=%q", cmd.Name(), months, stderr)
			}
		}
	}
}

func TestWatchRequiresAMQP(t *testing.T) {
	a, _, stderr := newTestApp(t)
	if got := run(t, &watchCmd{app: a}); got != subcommands.ExitUsageError {
		t.Fatalf("exit=%v want usage error", got)
	}
	if !strings.Contains(stderr.String(), "AMQP_URL") {
		t.Fatalf("stderr=%q", stderr)
	}
}
