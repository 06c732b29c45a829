package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dvloznov/seller-analytics/internal/infra/bigquery"
	"github.com/dvloznov/seller-analytics/internal/infra/memory"
	"github.com/dvloznov/seller-analytics/internal/logger"
	"github.com/dvloznov/seller-analytics/internal/reports"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	source := flag.String("source", "", "seed JSON file: local path or GCS URI (e.g. gs://bucket/seed.json)")
	projectID := flag.String("project", os.Getenv("GCP_PROJECT"), "GCP project ID (or set GCP_PROJECT env)")
	datasetID := flag.String("dataset", envOr("BQ_DATASET", "sales"), "BigQuery dataset (or set BQ_DATASET env)")
	dryRun := flag.Bool("dry-run", false, "validate the seed without inserting")
	flag.Parse()

	if *source == "" {
		log.Fatal().Msg("Error: --source is required")
	}
	if *projectID == "" && !*dryRun {
		log.Fatal().Msg("Error: --project is required")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Add logger to context
	ctx = logger.WithContext(ctx, log)

	log.Info().Str("source", *source).Msg("Starting ingestion")

	data, err := readSource(ctx, *source)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read seed")
	}

	st, err := memory.Decode(data)
	if err != nil {
		log.Fatal().Err(err).Msg("Seed failed validation")
	}
	seed := st.Snapshot()

	log.Info().
		Int("sellers", len(seed.Sellers)).
		Int("transactions", len(seed.Transactions)).
		Msg("Seed validated")

	if *dryRun {
		log.Info().Msg("Dry run, nothing inserted")
		return
	}

	repo, err := bigquery.NewRepository(ctx, *projectID, *datasetID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}
	defer repo.Close()

	if err := repo.InsertSellers(ctx, seed.Sellers); err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}
	if err := repo.InsertTransactions(ctx, seed.Transactions); err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	fmt.Println("Ingestion completed successfully.")
}

// readSource loads seed bytes from a local file or a gs:// object.
func readSource(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "gs://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("readSource: %w", err)
		}
		return data, nil
	}

	bucket, _, err := reports.ParseGCSURI(source)
	if err != nil {
		return nil, fmt.Errorf("readSource: %w", err)
	}
	gcs, err := reports.NewGCSWriter(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("readSource: %w", err)
	}
	defer gcs.Close()

	data, err := gcs.Read(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("readSource: %w", err)
	}
	return data, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
