// Package main implements the reference-data ingest CLI.
//
// It converts the municipal CSV exports into the JSON files the API loads at
// startup, and can optionally replace the PostgreSQL reference tables in the
// same run.
//
// Usage:
//
//	go run ./cmd/ingest patterns -in enforcement.csv -out data/patterns.json.zst
//	go run ./cmd/ingest lots -in registry.csv -out data/parking_lots.json
//	go run ./cmd/ingest lots -in registry.csv -out lots.json -geocode -database-url=postgres://...
//
// Output paths ending in .zst are written zstd-compressed. Input files may be
// UTF-8 or EUC-KR.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5"

	"parkingpass/internal/db"
	"parkingpass/internal/ingest"
	"parkingpass/internal/refdata"
)

const usage = `parkingpass ingest

Usage:
  ingest patterns -in <enforcement.csv> -out <patterns.json[.zst]> [-database-url URL]
  ingest lots -in <registry.csv> -out <parking_lots.json[.zst]> [-geocode] [-database-url URL]
`

// errUsage marks argument errors that should print the usage text.
var errUsage = errors.New("invalid usage")

// newGeocoder is replaced in tests.
var newGeocoder = func(apiKey string) (ingest.Geocoder, error) {
	g, err := ingest.NewMapsGeocoder(apiKey)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stderr, logger); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		logger.Error("ingest failed", "error", err)
		os.Exit(1)
	}
}

// run dispatches to the subcommand named by args[0].
func run(ctx context.Context, args []string, stderr io.Writer, logger *slog.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing subcommand", errUsage)
	}
	switch args[0] {
	case "patterns":
		return runPatterns(ctx, args[1:], stderr, logger)
	case "lots":
		return runLots(ctx, args[1:], stderr, logger)
	default:
		return fmt.Errorf("%w: unknown subcommand %q", errUsage, args[0])
	}
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	in           string
	out          string
	databaseURL  string
	createSchema bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.in, "in", "", "input CSV path [required]")
	fs.StringVar(&c.out, "out", "", "output JSON path, .zst for compressed output [required]")
	fs.StringVar(&c.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "also replace the PostgreSQL reference tables")
	fs.BoolVar(&c.createSchema, "create-schema", false, "create the reference tables before writing")
}

func (c *commonFlags) check() error {
	if c.in == "" || c.out == "" {
		return fmt.Errorf("%w: -in and -out are required", errUsage)
	}
	return nil
}

func runPatterns(ctx context.Context, args []string, stderr io.Writer, logger *slog.Logger) error {
	var flags commonFlags
	fs := flag.NewFlagSet("patterns", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags.register(fs)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if err := flags.check(); err != nil {
		return err
	}

	f, err := os.Open(flags.in)
	if err != nil {
		return err
	}
	defer f.Close()

	sum, err := ingest.ReadPatterns(f, logger)
	if err != nil {
		return err
	}
	if err := refdata.WriteJSON(flags.out, sum); err != nil {
		return err
	}
	logger.Info("patterns written", "path", flags.out, "total", sum.TotalCount, "dongs", len(sum.ByDong))

	if flags.databaseURL == "" {
		return nil
	}
	return withTx(ctx, flags.databaseURL, flags.createSchema, func(tx pgx.Tx) error {
		return db.NewPatternRepository(tx).ReplaceSummary(ctx, sum)
	})
}

func runLots(ctx context.Context, args []string, stderr io.Writer, logger *slog.Logger) error {
	var (
		flags   commonFlags
		geocode bool
		apiKey  string
	)
	fs := flag.NewFlagSet("lots", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags.register(fs)
	fs.BoolVar(&geocode, "geocode", false, "geocode rows without coordinates")
	fs.StringVar(&apiKey, "maps-api-key", os.Getenv("GOOGLE_MAPS_API_KEY"), "Google Maps API key for -geocode")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if err := flags.check(); err != nil {
		return err
	}

	opts := ingest.LotOptions{Logger: logger}
	if geocode {
		if apiKey == "" {
			return fmt.Errorf("%w: -geocode needs -maps-api-key or GOOGLE_MAPS_API_KEY", errUsage)
		}
		g, err := newGeocoder(apiKey)
		if err != nil {
			return err
		}
		opts.Geocoder = g
	}

	f, err := os.Open(flags.in)
	if err != nil {
		return err
	}
	defer f.Close()

	list, stats, err := ingest.ReadLots(ctx, f, opts)
	if err != nil {
		return err
	}
	if err := refdata.WriteJSON(flags.out, list); err != nil {
		return err
	}
	logger.Info("parking lots written",
		"path", flags.out,
		"rows", stats.Rows,
		"kept", stats.Kept,
		"geocoded", stats.Geocoded,
		"skipped", stats.Skipped,
		"encoding", stats.Encoding,
	)

	if flags.databaseURL == "" {
		return nil
	}
	return withTx(ctx, flags.databaseURL, flags.createSchema, func(tx pgx.Tx) error {
		return db.NewLotRepository(tx).ReplaceAll(ctx, list)
	})
}

// withTx runs fn in a single transaction so the API never reads a half
// replaced table.
func withTx(ctx context.Context, databaseURL string, createSchema bool, fn func(pgx.Tx) error) error {
	pool, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if createSchema {
			if err := db.EnsureSchema(ctx, tx); err != nil {
				return err
			}
		}
		return fn(tx)
	})
}
