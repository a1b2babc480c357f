// Package main provides catalogctl, a command-line client that builds a
// catalog snapshot once and queries, exports, or saves it.
//
// Usage:
//
//	catalogctl [global flags] build   -out snapshot.json
//	catalogctl [global flags] query   -kind creatures -where '{"template":"PIKACHU"}'
//	catalogctl [global flags] suggest -limit 5 pikchu
//	catalogctl [global flags] export  -out ./export
//	catalogctl [global flags] enum    -message PokemonDisplayProto Costume
//	catalogctl [global flags] locale  pokemon_name_0025
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pogodata/internal/catalog"
	"github.com/cory-johannsen/pogodata/internal/config"
	"github.com/cory-johannsen/pogodata/internal/fetch"
	"github.com/cory-johannsen/pogodata/internal/observability"
	"github.com/cory-johannsen/pogodata/internal/source"
	"github.com/cory-johannsen/pogodata/internal/storage/postgres"
)

type globals struct {
	configPath string
	envFile    string
	snapshot   string
	fromDB     bool
	timeout    time.Duration
}

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, env *env, args []string) error
}

var commands = []command{
	{"build", "build a snapshot and optionally save it to a file", runBuild},
	{"query", "print the entities of one kind matching a JSON constraint object", runQuery},
	{"suggest", "rank creature names resembling the argument", runSuggest},
	{"export", "write every kind as a YAML file", runExport},
	{"enum", "print the members of a protocol enumeration", runEnum},
	{"locale", "print the localized text for each key", runLocale},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var g globals
	fs := flag.NewFlagSet("catalogctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&g.configPath, "config", "", "path to configuration file; empty uses defaults and POGODATA_* variables")
	fs.StringVar(&g.envFile, "env", ".env", "optional dotenv file loaded before configuration")
	fs.StringVar(&g.snapshot, "snapshot", "", "build from a saved snapshot file instead of upstream")
	fs.BoolVar(&g.fromDB, "db", false, "build from the newest snapshot stored in the database")
	fs.DurationVar(&g.timeout, "timeout", 10*time.Minute, "bound on loading and building the snapshot")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: catalogctl [flags] <command> [command flags]")
		fs.PrintDefaults()
		fmt.Fprintln(stderr, "\ncommands:")
		for _, c := range commands {
			fmt.Fprintf(stderr, "  %-8s %s\n", c.name, c.usage)
		}
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == fs.Arg(0) {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		fs.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := newEnv(g, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "catalogctl: %v\n", err)
		return 1
	}
	defer func() { _ = e.logger.Sync() }()

	if err := cmd.run(ctx, e, fs.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintf(stderr, "catalogctl %s: %v\n", cmd.name, err)
		return 1
	}
	return 0
}

// env carries what every command needs to obtain a snapshot.
type env struct {
	g      globals
	cfg    config.Config
	logger *zap.Logger
	out    io.Writer
}

func newEnv(g globals, out io.Writer) (*env, error) {
	if g.snapshot != "" && g.fromDB {
		return nil, errors.New("-snapshot and -db are mutually exclusive")
	}
	if g.envFile != "" {
		if err := godotenv.Load(g.envFile); err != nil && g.envFile != ".env" {
			return nil, fmt.Errorf("loading %s: %w", g.envFile, err)
		}
	}
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging, "catalogctl")
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return &env{g: g, cfg: cfg, logger: logger, out: out}, nil
}

// load returns the bundle selected by the global flags.
func (e *env) load(ctx context.Context) (*source.Bundle, error) {
	switch {
	case e.g.snapshot != "":
		data, err := os.ReadFile(e.g.snapshot)
		if err != nil {
			return nil, err
		}
		return source.Decode(data)
	case e.g.fromDB:
		pool, err := postgres.NewPool(ctx, e.cfg.Database)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		stored, err := postgres.NewSnapshotRepository(pool.DB()).Latest(ctx)
		if err != nil {
			return nil, err
		}
		e.logger.Info("loaded stored snapshot",
			zap.String("stored_id", stored.ID.String()),
			zap.Time("built_at", stored.BuiltAt),
		)
		return source.Decode(stored.Data)
	default:
		client := fetch.New(e.cfg.Fetch, fetch.WithLogger(e.logger))
		return source.NewLoader(client, e.cfg.Sources, e.logger).Load(ctx)
	}
}

// snapshot loads and builds one snapshot within the global timeout.
func (e *env) snapshot(ctx context.Context) (*catalog.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, e.g.timeout)
	defer cancel()
	bundle, err := e.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}
	snap, err := catalog.Build(ctx, bundle, e.logger)
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}
	return snap, nil
}
