package container

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/game/dice"
	"github.com/cory-johannsen/raidloot/internal/game/item"
	"github.com/cory-johannsen/raidloot/internal/game/location"
)

// containerSlot is the slot id loot occupies inside a static container.
const containerSlot = "main"

// LootHydrator is the default hydrator: it fills a container with its forced
// items followed by weighted draws from the container type's distribution.
type LootHydrator struct {
	factory *item.Factory
	roller  *dice.Roller
	logger  *zap.Logger
}

// NewLootHydrator creates a LootHydrator.
//
// Precondition: factory, roller, and logger must be non-nil.
func NewLootHydrator(factory *item.Factory, roller *dice.Roller, logger *zap.Logger) *LootHydrator {
	return &LootHydrator{factory: factory, roller: roller, logger: logger}
}

// Hydrate returns a filled copy of tmpl; tmpl itself is not modified.
// Forced items reserved for this container are placed first and count toward
// the drawn item count; random draws only fill the remaining slots.
//
// Postcondition: result.Items[0] is the container root; every other item
// descends from it.
func (h *LootHydrator) Hydrate(
	tmpl location.Template,
	forced []location.ForcedItem,
	staticLoot location.StaticLootDistribution,
	staticAmmo location.StaticAmmoDistribution,
	mapID string,
) location.Template {
	out := tmpl.Clone()
	root, ok := out.RootItem()
	if !ok {
		h.logger.Warn("static container has no root item",
			zap.String("map", mapID),
			zap.String("container", tmpl.ID),
		)
		return out
	}
	out.Root = root.ID
	out.Items = []location.Item{root}

	placed := 0
	for _, f := range forced {
		if f.ContainerID != tmpl.ID {
			continue
		}
		out.Items = append(out.Items, h.create(f.ItemTpl, root.ID, staticAmmo, mapID)...)
		placed++
	}

	loot, ok := staticLoot[root.Tpl]
	if !ok {
		h.logger.Debug("no loot distribution for container type",
			zap.String("map", mapID),
			zap.String("container", tmpl.ID),
			zap.String("container_type", root.Tpl),
		)
		return out
	}

	countWeights := make([]float64, len(loot.ItemCountDistribution))
	for i, c := range loot.ItemCountDistribution {
		countWeights[i] = c.RelativeProbability
	}
	target := 0
	if idx := h.roller.WeightedIndex(countWeights); idx >= 0 {
		target = loot.ItemCountDistribution[idx].Count
	}

	itemWeights := make([]float64, len(loot.ItemDistribution))
	for i, w := range loot.ItemDistribution {
		itemWeights[i] = w.RelativeProbability
	}
	for ; placed < target; placed++ {
		idx := h.roller.WeightedIndex(itemWeights)
		if idx < 0 {
			break
		}
		out.Items = append(out.Items, h.create(loot.ItemDistribution[idx].Tpl, root.ID, staticAmmo, mapID)...)
	}
	return out
}

// create builds one item tree and attaches its root to the container.
// Unknown templates are placed bare so reserved items are never lost.
func (h *LootHydrator) create(tpl, parentID string, ammo location.StaticAmmoDistribution, mapID string) []location.Item {
	items, err := h.factory.Create(tpl, nil, ammo)
	if err != nil {
		h.logger.Warn("creating container item",
			zap.String("map", mapID),
			zap.String("item", tpl),
			zap.Error(err),
		)
		items = []location.Item{{ID: item.NewID(), Tpl: tpl}}
	}
	items[0].ParentID = parentID
	items[0].SlotID = containerSlot
	return items
}
