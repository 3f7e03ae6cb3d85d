// Package raid is the per-raid loot entry point the host's map instantiation
// pipeline calls into.
package raid

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/config"
	"github.com/cory-johannsen/raidloot/internal/game/container"
	"github.com/cory-johannsen/raidloot/internal/game/location"
	"github.com/cory-johannsen/raidloot/internal/game/looseloot"
	"github.com/cory-johannsen/raidloot/internal/observability"
)

// Report summarises one static-container generation.
type Report struct {
	ID             uuid.UUID
	MapID          string
	ContainerCount int
	ItemCount      int
	Randomised     bool
	GeneratedAt    time.Time
}

// ReportSink receives a Report after every generation.
type ReportSink interface {
	Record(ctx context.Context, r Report) error
}

// Generator produces a map's static containers.
type Generator interface {
	Generate(mapID string, staticLoot location.StaticLootDistribution, staticAmmo location.StaticAmmoDistribution) container.Result
}

// Service serves static containers and loose loot for raids.
type Service struct {
	cfg     config.LootConfig
	store   *location.Store
	plan    Generator
	creator *looseloot.Creator
	ammo    location.StaticAmmoDistribution
	sink    ReportSink
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a Service. sink may be nil, in which case reports are only logged.
//
// Precondition: store, plan, creator, and logger must be non-nil.
func NewService(
	cfg config.LootConfig,
	store *location.Store,
	plan Generator,
	creator *looseloot.Creator,
	ammo location.StaticAmmoDistribution,
	sink ReportSink,
	logger *zap.Logger,
) *Service {
	return &Service{
		cfg:     cfg,
		store:   store,
		plan:    plan,
		creator: creator,
		ammo:    ammo,
		sink:    sink,
		logger:  logger,
		now:     time.Now,
	}
}

// StaticContainers returns the static containers of one raid on mapID.
//
// With regeneration disabled the authored catalog is returned as is. Otherwise
// the map's static loot distribution drives a fresh generation and a Report is
// handed to the sink. A sink failure is logged and does not fail the call.
//
// Postcondition: returns an error wrapping location.ErrLocationNotFound for an
// unloaded map.
func (s *Service) StaticContainers(ctx context.Context, mapID string) (container.Result, error) {
	id := location.CanonicalID(mapID)
	logger := observability.ForMap(s.logger, id)

	staticLoot, err := s.store.StaticLoot(id)
	if err != nil {
		return container.Result{}, fmt.Errorf("static containers: %w", err)
	}

	if !s.cfg.RegenerateStaticContainers {
		catalog, _ := s.store.Catalog(id)
		catalog = catalog.Clone()
		res := container.Result{MapID: id, Containers: catalog.Weapons}
		for _, c := range catalog.Containers {
			res.Containers = append(res.Containers, c.Template)
		}
		res.ContainerCount = len(catalog.Containers)
		logger.Info("static container regeneration disabled, using authored layout",
			zap.Int("containers", res.ContainerCount),
		)
		return res, nil
	}

	res := s.plan.Generate(id, staticLoot, s.ammo)

	if s.sink != nil {
		report := Report{
			ID:             uuid.New(),
			MapID:          id,
			ContainerCount: res.ContainerCount,
			ItemCount:      res.ItemCount,
			Randomised:     res.Randomised,
			GeneratedAt:    s.now().UTC(),
		}
		if err := s.sink.Record(ctx, report); err != nil {
			logger.Error("recording generation report", zap.Error(err))
		}
	}
	return res, nil
}

// MapIDs returns the canonical ids of every loaded map.
func (s *Service) MapIDs() []string {
	return s.store.MapIDs()
}

// LooseLoot returns a copy of the filtered loose-loot table of mapID.
func (s *Service) LooseLoot(mapID string) (location.LooseLoot, error) {
	return s.store.LooseLoot(mapID)
}

// LooseLootItem creates the item chosen by key at sp.
func (s *Service) LooseLootItem(key location.ComposedKey, sp location.SpawnPoint) (looseloot.Result, error) {
	return s.creator.Create(key, sp, s.ammo)
}

// SpawnLooseLoot rolls every spawn point of mapID and creates the items that spawn.
// Forced spawn points are copied with fresh ids.
func (s *Service) SpawnLooseLoot(mapID string) ([]looseloot.Result, error) {
	table, err := s.store.LooseLoot(mapID)
	if err != nil {
		return nil, err
	}
	var out []looseloot.Result
	for _, fp := range table.SpawnpointsForced {
		root, ok := fp.Template.RootItem()
		if !ok {
			continue
		}
		res, err := s.creator.Create(location.ComposedKey{Key: root.ID}, location.SpawnPoint{
			LocationID: fp.LocationID,
			Template:   fp.Template,
		}, s.ammo)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	for _, sp := range table.Spawnpoints {
		if res, ok := s.creator.Spawn(sp, s.ammo); ok {
			out = append(out, res)
		}
	}
	observability.ForMap(s.logger, location.CanonicalID(mapID)).Info("loose loot spawned",
		zap.Int("forced", len(table.SpawnpointsForced)),
		zap.Int("spawnpoints", len(table.Spawnpoints)),
		zap.Int("spawned", len(out)),
	)
	return out, nil
}
