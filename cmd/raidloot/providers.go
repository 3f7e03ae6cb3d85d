package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/config"
	"github.com/cory-johannsen/raidloot/internal/game/blacklist"
	"github.com/cory-johannsen/raidloot/internal/game/container"
	"github.com/cory-johannsen/raidloot/internal/game/dice"
	"github.com/cory-johannsen/raidloot/internal/game/item"
	"github.com/cory-johannsen/raidloot/internal/game/location"
	"github.com/cory-johannsen/raidloot/internal/game/looseloot"
	"github.com/cory-johannsen/raidloot/internal/raid"
)

// itemsFile holds the item template database under the loot data directory.
const itemsFile = "items.json"

// lootSet provides everything between configuration and the raid service.
var lootSet = wire.NewSet(
	provideLootConfig,
	provideBlacklist,
	provideStore,
	provideSource,
	dice.NewRoller,
	provideRegistry,
	provideItemSettings,
	item.NewFactory,
	provideStaticAmmo,
	container.NewEngine,
	container.NewLootHydrator,
	container.NewPlan,
	looseloot.NewCreator,
	raid.NewService,
	wire.Bind(new(container.CatalogSource), new(*location.Store)),
	wire.Bind(new(container.SelectionEngine), new(*container.Engine)),
	wire.Bind(new(container.Hydrator), new(*container.LootHydrator)),
	wire.Bind(new(container.RandomisationPolicy), new(config.LootConfig)),
	wire.Bind(new(raid.Generator), new(*container.Plan)),
)

func provideLootConfig(cfg config.Config) config.LootConfig {
	return cfg.Loot
}

// provideBlacklist merges the blacklist file with the inline ids.
func provideBlacklist(loot config.LootConfig, logger *zap.Logger) (*blacklist.Blacklist, error) {
	ids := append([]string(nil), loot.Blacklist...)
	if loot.BlacklistFile != "" {
		fromFile, err := blacklist.LoadFile(loot.BlacklistFile)
		if err != nil {
			return nil, err
		}
		ids = append(ids, fromFile...)
	}
	bl := blacklist.New(logger.Named("blacklist"), ids...)
	logger.Info("blacklist loaded", zap.Int("items", bl.Size()))
	return bl, nil
}

func provideStore(bl *blacklist.Blacklist, loot config.LootConfig, logger *zap.Logger) (*location.Store, error) {
	start := time.Now()
	store := location.NewStore(bl, logger.Named("store"))
	n, err := location.LoadAll(loot.DataDir, store, logger)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("no maps found in %s", loot.DataDir)
	}
	logger.Info("loot database ready",
		zap.Strings("maps", store.MapIDs()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return store, nil
}

func provideSource(loot config.LootConfig) dice.Source {
	return dice.NewSource(loot.Seed)
}

func provideRegistry(loot config.LootConfig, logger *zap.Logger) (*item.Registry, error) {
	reg, err := item.LoadTemplates(filepath.Join(loot.DataDir, itemsFile))
	if err != nil {
		return nil, err
	}
	logger.Info("item templates loaded", zap.Int("templates", reg.Len()))
	return reg, nil
}

func provideItemSettings(loot config.LootConfig) item.Settings {
	return item.Settings{
		MagazineAmmoChancePercent: loot.StaticMagazineAmmoChancePercent,
		MinFillMagazinePercent:    loot.MinFillLooseMagazinePercent,
	}
}

func provideStaticAmmo(loot config.LootConfig) (location.StaticAmmoDistribution, error) {
	return location.LoadStaticAmmo(filepath.Join(loot.DataDir, location.StaticAmmoFile))
}
