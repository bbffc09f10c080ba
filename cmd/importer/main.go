// Command importer copies the trip statistics and congestion index CSV files
// into a SQLite database that the server can read with DATA_SOURCE=sqlite.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/taxiluck/tli-backend-go/internal/database"
	"github.com/taxiluck/tli-backend-go/internal/repository"
)

func main() {
	trips := flag.String("trips", "./data/TLI_FINAL_output.csv", "trip statistics CSV")
	ci := flag.String("ci", "./data/CI_output.csv", "congestion index CSV (empty to skip)")
	dbPath := flag.String("db", "./data/tli.db", "SQLite database to write")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(context.Background(), *trips, *ci, *dbPath, logger); err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, tripsPath, ciPath, dbPath string, logger *slog.Logger) error {
	db, err := database.Open(database.Config{Path: dbPath})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db, logger); err != nil {
		return fmt.Errorf("migrating %s: %w", dbPath, err)
	}

	src := repository.NewCSVSource(tripsPath, ciPath, logger)
	store := repository.NewSQLiteStore(db, dbPath)

	tripRows, err := src.TripStats(ctx)
	if err != nil {
		return err
	}
	if err := store.ReplaceTripStats(ctx, tripRows); err != nil {
		return err
	}
	logger.Info("imported trip statistics", "rows", len(tripRows), "db", dbPath)

	if ciPath == "" {
		return nil
	}
	ciRows, err := src.Congestion(ctx)
	if err != nil {
		return err
	}
	if err := store.ReplaceCongestion(ctx, ciRows); err != nil {
		return err
	}
	logger.Info("imported congestion index", "rows", len(ciRows), "db", dbPath)
	return nil
}
