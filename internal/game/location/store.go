package location

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"
)

// ErrLocationNotFound is returned when no tables were loaded for a map.
var ErrLocationNotFound = errors.New("location not loaded")

// suggestDistance is the largest edit distance offered as a "did you mean" hint.
const suggestDistance = 3

// Filter removes forbidden items from loot tables at load time.
type Filter interface {
	FilterLooseLoot(table LooseLoot) LooseLoot
	FilterStaticDistribution(table StaticLootDistribution) StaticLootDistribution
}

// Store holds the filtered loot tables of every loaded map, keyed by canonical id.
// It is populated before generation starts and read concurrently afterwards.
type Store struct {
	mu        sync.RWMutex
	locations map[string]*Location
	filter    Filter
	logger    *zap.Logger
}

// NewStore creates an empty Store that filters every table through filter.
//
// Precondition: filter and logger must be non-nil.
func NewStore(filter Filter, logger *zap.Logger) *Store {
	return &Store{
		locations: make(map[string]*Location),
		filter:    filter,
		logger:    logger,
	}
}

// Load filters looseLoot and staticLoot and stores all four tables under the
// canonical form of mapID, replacing any earlier load.
//
// Postcondition: returns the canonical id the tables are stored under.
func (s *Store) Load(mapID string, looseLoot LooseLoot, catalog StaticCatalog, staticLoot StaticLootDistribution, groups *GroupMetadata) string {
	id := CanonicalID(mapID)
	if staticLoot == nil {
		staticLoot = StaticLootDistribution{}
	}
	loc := &Location{
		ID:         id,
		LooseLoot:  s.filter.FilterLooseLoot(looseLoot),
		Catalog:    catalog,
		StaticLoot: s.filter.FilterStaticDistribution(staticLoot),
		Groups:     groups,
	}

	s.mu.Lock()
	s.locations[id] = loc
	s.mu.Unlock()

	s.logger.Debug("location loot loaded",
		zap.String("map", id),
		zap.Int("spawnpoints", len(loc.LooseLoot.Spawnpoints)),
		zap.Int("forced_spawnpoints", len(loc.LooseLoot.SpawnpointsForced)),
		zap.Int("containers", len(catalog.Containers)),
		zap.Int("container_types", len(loc.StaticLoot)),
		zap.Bool("has_groups", groups != nil),
	)
	return id
}

func (s *Store) get(mapID string) (*Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.locations[CanonicalID(mapID)]
	return loc, ok
}

// StaticLoot returns the filtered static loot distribution of mapID.
//
// Postcondition: a loaded map always yields a non-nil (possibly empty)
// distribution and nil error; an unknown map yields an error wrapping
// ErrLocationNotFound.
func (s *Store) StaticLoot(mapID string) (StaticLootDistribution, error) {
	loc, ok := s.get(mapID)
	if !ok {
		return nil, s.notFound(mapID)
	}
	return loc.StaticLoot, nil
}

// Catalog returns the static-container catalog of mapID. The slices are shared
// with the store and must be cloned before mutation.
func (s *Store) Catalog(mapID string) (StaticCatalog, bool) {
	loc, ok := s.get(mapID)
	if !ok {
		return StaticCatalog{}, false
	}
	return loc.Catalog, true
}

// Groups returns the container group metadata of mapID.
//
// Postcondition: ok is false when the map is unknown or has no group metadata.
func (s *Store) Groups(mapID string) (*GroupMetadata, bool) {
	loc, ok := s.get(mapID)
	if !ok || loc.Groups == nil {
		return nil, false
	}
	return loc.Groups, true
}

// LooseLoot returns a copy of the filtered loose-loot table of mapID.
func (s *Store) LooseLoot(mapID string) (LooseLoot, error) {
	loc, ok := s.get(mapID)
	if !ok {
		return LooseLoot{}, s.notFound(mapID)
	}
	return loc.LooseLoot.Clone(), nil
}

// MapIDs returns the canonical ids of all loaded maps in sorted order.
func (s *Store) MapIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.locations))
	for id := range s.locations {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Store) notFound(mapID string) error {
	id := CanonicalID(mapID)
	best, bestDist := "", suggestDistance+1
	for _, known := range s.MapIDs() {
		if d := levenshtein.ComputeDistance(id, known); d < bestDist {
			best, bestDist = known, d
		}
	}
	if best != "" {
		return fmt.Errorf("%w: %q (did you mean %q?)", ErrLocationNotFound, id, best)
	}
	return fmt.Errorf("%w: %q", ErrLocationNotFound, id)
}
