// Package main is the bulk airport directory loader. It replaces the entire
// Airports sheet from a CSV dataset keyed by 3-letter code, then invalidates
// the directory's ephemeral cache. This is the one path allowed to fail
// hard: a partial directory is worse than retrying the whole load.
//
// Expected CSV columns (with header): code,name,lat,lng. Rows without a
// valid 3-letter code are skipped with a warning — third-party datasets
// list many airfields that have no IATA code.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mwhitfield/tripatlas/backend/internal/config"
	"github.com/mwhitfield/tripatlas/backend/internal/directory"
	"github.com/mwhitfield/tripatlas/backend/internal/domain"
	"github.com/mwhitfield/tripatlas/backend/internal/rowstore"
)

func main() {
	path := flag.String("csv", "", "path to the airports CSV (code,name,lat,lng with header)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *path == "" {
		slog.Error("-csv is required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	records, err := readAirports(*path)
	if err != nil {
		slog.Error("failed to read dataset", "error", err)
		os.Exit(1)
	}
	slog.Info("dataset parsed", "airports", len(records))

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := rowstore.NewPostgres(pool)
	if err := rowstore.CheckSheets(ctx, store); err != nil {
		slog.Error("row store not bootstrapped", "error", err)
		os.Exit(1)
	}

	if err := directory.New(store).ReplaceAll(ctx, records); err != nil {
		slog.Error("bulk load failed", "error", err)
		os.Exit(1)
	}
	slog.Info("directory replaced", "airports", len(records))
}

// readAirports parses and validates the CSV dataset.
func readAirports(path string) ([]domain.Airport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 4

	if _, err := r.Read(); err != nil { // header
		return nil, err
	}

	var out []domain.Airport
	seen := make(map[string]bool)
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		code := strings.ToUpper(strings.TrimSpace(rec[0]))
		if len(code) != 3 {
			slog.Warn("skipping row without 3-letter code", "line", line, "code", rec[0])
			continue
		}
		if seen[code] {
			slog.Warn("skipping duplicate code", "line", line, "code", code)
			continue
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			slog.Warn("skipping row with bad latitude", "line", line, "code", code)
			continue
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		if err != nil {
			slog.Warn("skipping row with bad longitude", "line", line, "code", code)
			continue
		}

		seen[code] = true
		out = append(out, domain.Airport{Code: code, Name: strings.TrimSpace(rec[1]), Lat: lat, Lng: lng})
	}
	return out, nil
}
