// Package looseloot creates the concrete items spawned at loose-loot spawn points.
package looseloot

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/game/dice"
	"github.com/cory-johannsen/raidloot/internal/game/item"
	"github.com/cory-johannsen/raidloot/internal/game/location"
)

// ErrDanglingKey is returned when a composed key names no item of its spawn point template.
var ErrDanglingKey = errors.New("composed key not found in spawn point template")

// ErrNoCandidates is returned when a spawn point has nothing left to pick.
var ErrNoCandidates = errors.New("spawn point has no weighted items")

// Result is one spawned loose item tree and its inventory footprint.
type Result struct {
	Items  []location.Item
	Width  int
	Height int
}

// Creator builds loose-loot items through the item Factory.
type Creator struct {
	factory *item.Factory
	roller  *dice.Roller
	logger  *zap.Logger
}

// NewCreator creates a Creator.
//
// Precondition: factory, roller, and logger must be non-nil.
func NewCreator(factory *item.Factory, roller *dice.Roller, logger *zap.Logger) *Creator {
	return &Creator{factory: factory, roller: roller, logger: logger}
}

// Create builds the item chosen by key at sp. Money, ammo, ammo boxes, and
// magazines are generated fresh; anything else copies the authored item and its
// children with new ids.
//
// Postcondition: on success Items[0] is the root and every id is fresh. Returns
// an error wrapping ErrDanglingKey when key does not resolve.
func (c *Creator) Create(key location.ComposedKey, sp location.SpawnPoint, ammo location.StaticAmmoDistribution) (Result, error) {
	chosen, ok := sp.Template.FindItem(key.Key)
	if !ok {
		return Result{}, fmt.Errorf("%w: spawn point %q key %q", ErrDanglingKey, sp.LocationID, key.Key)
	}

	tree := item.WithChildren(sp.Template.Items, chosen.ID)
	items, err := c.factory.Create(chosen.Tpl, tree, ammo)
	if errors.Is(err, item.ErrTemplateNotFound) {
		c.logger.Warn("loose loot item has no template, copying authored tree",
			zap.String("spawnpoint", sp.LocationID),
			zap.String("composed_key", key.Key),
			zap.String("item", chosen.Tpl),
		)
		items = item.Reparent(tree)
	} else if err != nil {
		return Result{}, fmt.Errorf("creating loose loot item %q: %w", chosen.Tpl, err)
	}

	w, h := c.factory.Registry().Size(items[0].Tpl)
	return Result{Items: items, Width: w, Height: h}, nil
}

// Pick draws one composed key from sp's item distribution by relative probability.
func (c *Creator) Pick(sp location.SpawnPoint) (location.ComposedKey, error) {
	weights := make([]float64, len(sp.ItemDistribution))
	for i, d := range sp.ItemDistribution {
		weights[i] = d.RelativeProbability
	}
	idx := c.roller.WeightedIndex(weights)
	if idx < 0 {
		return location.ComposedKey{}, fmt.Errorf("%w: %q", ErrNoCandidates, sp.LocationID)
	}
	return sp.ItemDistribution[idx].ComposedKey, nil
}

// Spawn rolls sp's own probability and, on success, picks and creates an item.
// Dangling keys are logged and reported as no spawn.
//
// Postcondition: ok is false when the roll failed or nothing could be created.
func (c *Creator) Spawn(sp location.SpawnPoint, ammo location.StaticAmmoDistribution) (Result, bool) {
	if !sp.Template.IsAlwaysSpawn && !c.roller.Chance(sp.Probability) {
		return Result{}, false
	}
	key, err := c.Pick(sp)
	if err != nil {
		c.logger.Debug("spawn point skipped", zap.String("spawnpoint", sp.LocationID), zap.Error(err))
		return Result{}, false
	}
	res, err := c.Create(key, sp, ammo)
	if err != nil {
		c.logger.Warn("spawn point skipped",
			zap.String("spawnpoint", sp.LocationID),
			zap.String("composed_key", key.Key),
			zap.Error(err),
		)
		return Result{}, false
	}
	return res, true
}
