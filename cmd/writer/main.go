package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/config"
	natsq "github.com/Bachopin/crypto-attention-lab-sub000/pkg/queue/nats"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/store/duckdb"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg.Logging.Level)

	log.Info().Str("nats", cfg.Queue.URL).Str("duckdb", cfg.Storage.DuckDBPath).Msg("starting writer worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := duckdb.NewClient(cfg.Storage.DuckDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DuckDB")
	}
	defer client.Close()

	if err := duckdb.InitializeSchema(client); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize schema")
	}

	barRepo := duckdb.NewBarRepo(client)
	attnRepo := duckdb.NewAttentionRepo(client)
	catalog := duckdb.NewCatalogRepo(client)

	queueCfg := natsq.DefaultConfig()
	queueCfg.URL = cfg.Queue.URL
	queueCfg.StreamName = cfg.Queue.StreamName
	queue, err := natsq.NewClient(queueCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to NATS")
	}
	defer queue.Close()

	subjects := []string{natsq.SubjectBarWrite, natsq.SubjectAttentionWrite}
	if err := queue.CreateStream(ctx, subjects); err != nil {
		log.Fatal().Err(err).Msg("failed to create stream")
	}

	barConsumer, err := queue.Subscribe(ctx, natsq.SubjectBarWrite, "bar-writer", func(msg jetstream.Msg) error {
		batch, err := natsq.DecodeBarBatch(msg.Data())
		if err != nil {
			log.Error().Err(err).Msg("failed to decode bar batch")
			return err
		}
		if len(batch.Bars) == 0 {
			return nil
		}

		if err := barRepo.InsertBatch(ctx, batch.Bars); err != nil {
			log.Error().Err(err).Msg("failed to insert bars")
			return err
		}
		for _, b := range batch.Bars {
			if err := catalog.Add(ctx, b.Symbol); err != nil {
				log.Warn().Err(err).Str("symbol", b.Symbol).Msg("failed to register symbol")
			}
		}

		log.Info().Int("bars", len(batch.Bars)).Msg("inserted bars")
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe to bar writes")
	}
	defer barConsumer.Stop()

	attnConsumer, err := queue.Subscribe(ctx, natsq.SubjectAttentionWrite, "attention-writer", func(msg jetstream.Msg) error {
		batch, err := natsq.DecodeAttentionBatch(msg.Data())
		if err != nil {
			log.Error().Err(err).Msg("failed to decode attention batch")
			return err
		}
		if len(batch.Rows) == 0 {
			return nil
		}

		if err := attnRepo.InsertBatch(ctx, batch.Rows); err != nil {
			log.Error().Err(err).Msg("failed to insert attention rows")
			return err
		}

		log.Info().Int("rows", len(batch.Rows)).Msg("inserted attention rows")
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to subscribe to attention writes")
	}
	defer attnConsumer.Stop()

	log.Info().Msg("writer worker started, waiting for messages")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down writer worker")
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
