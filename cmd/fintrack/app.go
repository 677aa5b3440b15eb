package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
)

// app holds the global flags shared by every command. Empty values leave the
// environment configuration untouched.
type app struct {
	envFile     string
	backend     string
	dataDir     string
	sqlitePath  string
	postgresURL string
	storageKey  string
	currency    string
	logLevel    string
	plain       bool

	stdout io.Writer
	stderr io.Writer
}

func (a *app) SetFlags(f *flag.FlagSet) {
	f.StringVar(&a.envFile, "env", ".env", "Environment file to load before reading configuration")
	f.StringVar(&a.backend, "backend", "", "Storage backend: memory, none, file, sqlite or postgres (default $DATA_BACKEND)")
	f.StringVar(&a.dataDir, "data-dir", "", "Directory of the file backend (default $DATA_DIR)")
	f.StringVar(&a.sqlitePath, "sqlite-path", "", "Database file of the sqlite backend (default $SQLITE_DB_PATH)")
	f.StringVar(&a.postgresURL, "postgres-url", "", "Connection URL of the postgres backend (default $POSTGRES_URL)")
	f.StringVar(&a.storageKey, "key", "", "Storage key of the transaction record (default $STORAGE_KEY)")
	f.StringVar(&a.currency, "currency", "", "ISO currency used to display amounts (default $CURRENCY)")
	f.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error (default $LOG_LEVEL)")
	f.BoolVar(&a.plain, "plain", false, "Print raw markdown instead of rendering it")
}

func (a *app) commands() []subcommands.Command {
	return []subcommands.Command{
		&listCmd{app: a},
		&addCmd{app: a},
		&deleteCmd{app: a},
		&summaryCmd{app: a},
		&monthlyCmd{app: a},
		&categoriesCmd{app: a},
		&dashboardCmd{app: a},
	}
}

func (a *app) out() io.Writer {
	if a.stdout != nil {
		return a.stdout
	}
	return os.Stdout
}

func (a *app) errOut() io.Writer {
	if a.stderr != nil {
		return a.stderr
	}
	return os.Stderr
}

// override applies the global flags on top of the environment.
func (a *app) override(c *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.DataBackend, a.backend)
	set(&c.DataDir, a.dataDir)
	set(&c.SQLiteDBPath, a.sqlitePath)
	set(&c.PostgresURL, a.postgresURL)
	set(&c.StorageKey, a.storageKey)
	set(&c.LogLevel, a.logLevel)
	if a.currency != "" {
		c.Currency = strings.ToUpper(a.currency)
	}
}

// config loads the environment and configuration and builds the logger.
// Logs go to stderr so reports on stdout stay clean.
func (a *app) config() (*config.Config, *log.Logger, error) {
	if a.envFile != "" {
		if err := cli.LoadEnvFile(a.envFile); err != nil {
			return nil, nil, err
		}
	}
	cfg, err := cli.LoadAndValidateConfig(a.override)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cli.SetupLogger(cfg.LogLevel, a.errOut()), nil
}

// open loads configuration and the store.
func (a *app) open(ctx context.Context) (*cli.Runtime, error) {
	cfg, logger, err := a.config()
	if err != nil {
		return nil, err
	}
	return cli.OpenStore(ctx, cfg, logger)
}

// printMarkdown renders md for the terminal, or prints it verbatim with -plain.
func (a *app) printMarkdown(md string) {
	if !a.plain {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err == nil {
			if out, err := r.Render(md); err == nil {
				fmt.Fprint(a.out(), out)
				return
			}
		}
	}
	fmt.Fprint(a.out(), md)
}

func (a *app) fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(a.errOut(), "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}
