package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/config"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/data"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/store/duckdb"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	barsCSV := flag.String("bars", "", "Path to price bars CSV")
	attentionCSV := flag.String("attention", "", "Path to attention features CSV")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg.Logging.Level)

	if *barsCSV == "" && *attentionCSV == "" {
		fmt.Println("Usage: backfill -bars <path> [-attention <path>] [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx := context.Background()

	log.Info().Str("path", cfg.Storage.DuckDBPath).Msg("connecting to DuckDB")
	client, err := duckdb.NewClient(cfg.Storage.DuckDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DuckDB")
	}
	defer client.Close()

	if err := duckdb.InitializeSchema(client); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize schema")
	}

	if *barsCSV != "" {
		backfillBars(ctx, client, *barsCSV)
	}
	if *attentionCSV != "" {
		backfillAttention(ctx, client, *attentionCSV)
	}

	log.Info().Msg("backfill completed")
}

func backfillBars(ctx context.Context, client *duckdb.Client, path string) {
	log.Info().Str("path", path).Msg("loading price bars")
	bars, err := data.LoadBarsCSV(path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load bars CSV")
	}

	repo := duckdb.NewBarRepo(client)
	if err := repo.InsertBatch(ctx, bars); err != nil {
		log.Fatal().Err(err).Msg("failed to insert bars")
	}

	catalog := duckdb.NewCatalogRepo(client)
	seen := make(map[string]bool)
	for _, b := range bars {
		if seen[b.Symbol] {
			continue
		}
		seen[b.Symbol] = true
		if err := catalog.Add(ctx, b.Symbol); err != nil {
			log.Warn().Err(err).Str("symbol", b.Symbol).Msg("failed to register symbol")
		}
	}

	log.Info().Int("bars", len(bars)).Int("symbols", len(seen)).Msg("stored price bars")
}

func backfillAttention(ctx context.Context, client *duckdb.Client, path string) {
	log.Info().Str("path", path).Msg("loading attention features")
	rows, err := data.LoadAttentionCSV(path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load attention CSV")
	}

	repo := duckdb.NewAttentionRepo(client)
	if err := repo.InsertBatch(ctx, rows); err != nil {
		log.Fatal().Err(err).Msg("failed to insert attention rows")
	}

	log.Info().Int("rows", len(rows)).Msg("stored attention features")
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
