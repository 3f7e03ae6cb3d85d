// Package main provides the raidloot binary: it loads the loot database and
// generates the static containers and loose loot of one or more raids.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/config"
	"github.com/cory-johannsen/raidloot/internal/observability"
	"github.com/cory-johannsen/raidloot/internal/raid"
	"github.com/cory-johannsen/raidloot/internal/storage/postgres"
)

// summary is one line of output per generated raid.
type summary struct {
	Map        string `json:"map"`
	Run        int    `json:"run"`
	Containers int    `json:"containers"`
	Items      int    `json:"items"`
	Total      int    `json:"total"`
	Randomised bool   `json:"randomised"`
	Truncated  bool   `json:"truncated"`
	LooseItems int    `json:"loose_items,omitempty"`
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	mapID := flag.String("map", "", "map id or display name; empty = every loaded map")
	record := flag.Bool("record", false, "record a generation report per raid in PostgreSQL")
	runs := flag.Int("runs", 1, "number of raids to generate per map")
	loose := flag.Bool("loose", false, "also spawn loose loot")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if *runs < 1 {
		logger.Fatal("runs must be >= 1", zap.Int("runs", *runs))
	}

	var sink raid.ReportSink
	if *record {
		pool, err := postgres.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		sink = postgres.NewReportRepository(pool.DB())
	}

	svc, err := initializeService(cfg, sink, logger)
	if err != nil {
		logger.Fatal("initializing loot service", zap.Error(err))
	}
	logger.Info("loot service ready", zap.Duration("elapsed", time.Since(start)))

	maps := svc.MapIDs()
	if *mapID != "" {
		maps = []string{*mapID}
	}

	out := json.NewEncoder(os.Stdout)
	for _, m := range maps {
		for run := 1; run <= *runs; run++ {
			res, err := svc.StaticContainers(ctx, m)
			if err != nil {
				logger.Fatal("generating static containers", zap.String("map", m), zap.Error(err))
			}
			line := summary{
				Map:        res.MapID,
				Run:        run,
				Containers: res.ContainerCount,
				Items:      res.ItemCount,
				Total:      len(res.Containers),
				Randomised: res.Randomised,
				Truncated:  res.Truncated,
			}
			if *loose {
				items, err := svc.SpawnLooseLoot(m)
				if err != nil {
					logger.Fatal("spawning loose loot", zap.String("map", m), zap.Error(err))
				}
				line.LooseItems = len(items)
			}
			if err := out.Encode(line); err != nil {
				fmt.Fprintf(os.Stderr, "writing summary: %v\n", err)
				os.Exit(1)
			}
		}
	}

	logger.Info("generation complete",
		zap.Int("maps", len(maps)),
		zap.Int("runs", *runs),
		zap.Duration("elapsed", time.Since(start)),
	)
}
