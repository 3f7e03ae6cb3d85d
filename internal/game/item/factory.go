package item

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/game/dice"
	"github.com/cory-johannsen/raidloot/internal/game/location"
)

// cartridgeSlot is the slot id cartridges occupy in magazines and ammo boxes.
const cartridgeSlot = "cartridges"

// NewID returns a fresh 24-hex-digit item id.
func NewID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:12])
}

// Settings tunes magazine filling.
type Settings struct {
	// MagazineAmmoChancePercent is the chance a spawned magazine holds cartridges.
	MagazineAmmoChancePercent int
	// MinFillMagazinePercent is the lowest share of capacity a filled magazine holds.
	MinFillMagazinePercent int
}

// Factory creates concrete item trees from templates.
type Factory struct {
	registry *Registry
	roller   *dice.Roller
	settings Settings
	logger   *zap.Logger
}

// NewFactory creates a Factory.
//
// Precondition: registry, roller, and logger must be non-nil.
func NewFactory(registry *Registry, roller *dice.Roller, settings Settings, logger *zap.Logger) *Factory {
	return &Factory{registry: registry, roller: roller, settings: settings, logger: logger}
}

// Registry returns the template registry the factory reads.
func (f *Factory) Registry() *Registry {
	return f.registry
}

// Create builds the item tree for tpl. authored, when non-empty, is the
// authored tree rooted at its first element; it is copied with fresh ids for
// templates that carry no generated contents.
//
// Postcondition: result[0] is the root item with Tpl == tpl; every id is fresh.
// Returns an error wrapping ErrTemplateNotFound for an unknown tpl.
func (f *Factory) Create(tpl string, authored []location.Item, ammo location.StaticAmmoDistribution) ([]location.Item, error) {
	t, ok := f.registry.Get(tpl)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, tpl)
	}

	switch {
	case f.registry.IsOfBaseClass(tpl, BaseClassMoney, BaseClassAmmo):
		return []location.Item{{ID: NewID(), Tpl: tpl, Upd: &location.Upd{StackObjectsCount: f.stackCount(t)}}}, nil
	case f.registry.IsOfBaseClass(tpl, BaseClassAmmoBox):
		return f.ammoBox(t), nil
	case f.registry.IsOfBaseClass(tpl, BaseClassMagazine):
		root := location.Item{ID: NewID(), Tpl: tpl}
		if !f.roller.Percent(f.settings.MagazineAmmoChancePercent) {
			return []location.Item{root}, nil
		}
		return append([]location.Item{root}, f.cartridges(root.ID, t, ammo)...), nil
	case len(authored) > 0:
		return Reparent(authored), nil
	default:
		return []location.Item{{ID: NewID(), Tpl: tpl}}, nil
	}
}

func (f *Factory) stackCount(t *Template) int {
	if t.Props.StackMaxSize <= 1 {
		return 1
	}
	return max(f.roller.IntRange(t.Props.StackMinRandom, t.Props.StackMaxRandom), 1)
}

func (f *Factory) ammoBox(t *Template) []location.Item {
	root := location.Item{ID: NewID(), Tpl: t.ID}
	if len(t.Props.StackSlots) == 0 {
		return []location.Item{root}
	}
	slot := t.Props.StackSlots[0]
	accepts := slot.Accepts()
	if len(accepts) == 0 || slot.MaxCount <= 0 {
		return []location.Item{root}
	}
	return []location.Item{root, {
		ID:       NewID(),
		Tpl:      accepts[0],
		ParentID: root.ID,
		SlotID:   cartridgeSlot,
		Location: json.RawMessage("0"),
		Upd:      &location.Upd{StackObjectsCount: slot.MaxCount},
	}}
}

// cartridges fills a magazine with one weighted cartridge type of its caliber.
func (f *Factory) cartridges(parentID string, mag *Template, ammo location.StaticAmmoDistribution) []location.Item {
	if len(mag.Props.Cartridges) == 0 {
		return nil
	}
	slot := mag.Props.Cartridges[0]
	compatible := slot.Accepts()
	if slot.MaxCount <= 0 || len(compatible) == 0 {
		return nil
	}

	cartridge := compatible[0]
	if first, ok := f.registry.Get(compatible[0]); ok {
		var options []location.ItemWeight
		for _, w := range ammo[first.Props.Caliber] {
			if slices.Contains(compatible, w.Tpl) {
				options = append(options, w)
			}
		}
		weights := make([]float64, len(options))
		for i, o := range options {
			weights[i] = o.RelativeProbability
		}
		if idx := f.roller.WeightedIndex(weights); idx >= 0 {
			cartridge = options[idx].Tpl
		} else {
			f.logger.Debug("no ammo distribution for magazine caliber",
				zap.String("item", mag.ID),
				zap.String("caliber", first.Props.Caliber),
			)
		}
	}

	minCount := max((slot.MaxCount*f.settings.MinFillMagazinePercent+99)/100, 1)
	count := f.roller.IntRange(min(minCount, slot.MaxCount), slot.MaxCount)
	return []location.Item{{
		ID:       NewID(),
		Tpl:      cartridge,
		ParentID: parentID,
		SlotID:   cartridgeSlot,
		Location: json.RawMessage("0"),
		Upd:      &location.Upd{StackObjectsCount: count},
	}}
}

// WithChildren returns the item with id rootID followed by all its descendants,
// in breadth-first order.
//
// Postcondition: empty when rootID is not present in items.
func WithChildren(items []location.Item, rootID string) []location.Item {
	var out []location.Item
	for _, it := range items {
		if it.ID == rootID {
			out = append(out, it.Clone())
			break
		}
	}
	for i := 0; i < len(out); i++ {
		for _, it := range items {
			if it.ParentID == out[i].ID && it.ID != rootID {
				out = append(out, it.Clone())
			}
		}
	}
	return out
}

// Reparent copies items giving every item a fresh id and remapping parent
// references inside the tree. References to items outside the tree are kept.
func Reparent(items []location.Item) []location.Item {
	ids := make(map[string]string, len(items))
	for _, it := range items {
		ids[it.ID] = NewID()
	}
	out := make([]location.Item, len(items))
	for i, it := range items {
		c := it.Clone()
		c.ID = ids[it.ID]
		if p, ok := ids[it.ParentID]; ok {
			c.ParentID = p
		}
		out[i] = c
	}
	return out
}
