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
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/scenario"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/search"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/snapshot"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/store/duckdb"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	symbol := flag.String("symbol", "", "Target symbol (required)")
	asOfStr := flag.String("asof", "", "Target as-of time, RFC3339 (default now)")
	topK := flag.Int("topk", 0, "Override top K results")
	metric := flag.String("metric", "", "Override distance metric (euclidean|cosine)")
	sameSymbol := flag.Bool("same-symbol", false, "Allow matches from the target's own symbol")
	details := flag.Bool("details", false, "Include per-sample detail in scenario output")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg.Logging.Level)

	if *symbol == "" {
		fmt.Println("Usage: analog -symbol <SYMBOL> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	asOf := time.Now().UTC()
	if *asOfStr != "" {
		asOf, err = time.Parse(time.RFC3339, *asOfStr)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid -asof value")
		}
	}
	if *topK > 0 {
		cfg.Search.TopK = *topK
	}
	if *metric != "" {
		cfg.Search.Metric = *metric
	}

	ctx := context.Background()

	log.Info().Str("path", cfg.Storage.DuckDBPath).Msg("connecting to DuckDB")
	client, err := duckdb.NewClient(cfg.Storage.DuckDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DuckDB")
	}
	defer client.Close()

	bars := duckdb.NewBarRepo(client)
	attn := duckdb.NewAttentionRepo(client)
	catalog := duckdb.NewCatalogRepo(client)

	// Build the target state snapshot
	svc := snapshot.NewService(bars, attn)
	target, err := svc.ComputeStateSnapshot(ctx, *symbol, asOf, cfg.Search.Timeframe, cfg.Search.WindowDays)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to compute target snapshot")
	}
	if target == nil {
		log.Fatal().Str("symbol", *symbol).Time("as_of", asOf).Msg("no price data for target")
	}
	log.Info().Str("symbol", target.Symbol).Time("as_of", target.AsOf).Msg("built target snapshot")

	// Search the cross-symbol history for analogs
	parsedMetric, err := search.ParseMetric(cfg.Search.Metric)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid metric")
	}

	engine := search.NewEngine(bars, attn, catalog, snapshot.NewSeriesCache())
	opts := search.DefaultOptions()
	opts.TopK = cfg.Search.TopK
	opts.MaxCandidates = cfg.Search.MaxCandidates
	opts.MaxHistoryDays = cfg.Search.MaxHistoryDays
	opts.ExclusionDays = cfg.Search.ExclusionDays
	opts.Metric = parsedMetric
	opts.IncludeSameSymbol = *sameSymbol

	matches, err := engine.FindSimilar(ctx, target, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("similarity search failed")
	}
	if len(matches) == 0 {
		log.Info().Msg("no similar states found")
		return
	}

	fmt.Printf("\n=== Similar States (%s) ===\n", parsedMetric)
	fmt.Printf("%-5s %-12s %-12s %-10s %-8s\n", "Rank", "Symbol", "Date", "Distance", "Sim%")
	for i, m := range matches {
		fmt.Printf("%-5d %-12s %-12s %-10.4f %-.1f%%\n",
			i+1, m.Symbol, m.Datetime.Format("2006-01-02"), m.Distance, m.Similarity*100)
	}

	// Project forward behavior of the matched analogs
	analyzer := scenario.NewAnalyzer(bars)
	summaries, err := analyzer.Analyze(ctx, target, matches, cfg.Search.LookaheadDays, *details)
	if err != nil {
		log.Fatal().Err(err).Msg("scenario analysis failed")
	}
	if len(summaries) == 0 {
		log.Info().Msg("no matched analog had usable forward data")
		return
	}

	fmt.Printf("\n=== Scenarios (%dd lookahead) ===\n", cfg.Search.LookaheadDays)
	for _, s := range summaries {
		fmt.Printf("%-18s p=%.2f n=%d  %s\n", s.Label, s.Probability, s.SampleCount, s.Description)
		for _, h := range scenario.Horizons(cfg.Search.LookaheadDays) {
			ret, hasRet := s.AvgReturns[h]
			dd, hasDD := s.AvgMaxDrawdowns[h]
			if !hasRet && !hasDD {
				continue
			}
			fmt.Printf("    %3dd: avg_ret=%+.2f%%  avg_mdd=%.2f%%\n", h, ret*100, dd*100)
		}
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
