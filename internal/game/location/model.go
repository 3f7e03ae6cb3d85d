// Package location provides the per-map loot data model: loose-loot spawn
// tables, static-container catalogs, container group metadata, and static
// loot distribution tables.
package location

import (
	"encoding/json"
	"slices"
)

// Upd carries the mutable state of a concrete item.
type Upd struct {
	StackObjectsCount int `json:"StackObjectsCount,omitempty"`
}

// Item is one node of an item tree. Children reference their parent by ParentID.
type Item struct {
	ID       string          `json:"_id"`
	Tpl      string          `json:"_tpl"`
	ParentID string          `json:"parentId,omitempty"`
	SlotID   string          `json:"slotId,omitempty"`
	Location json.RawMessage `json:"location,omitempty"`
	Upd      *Upd            `json:"upd,omitempty"`
}

// Clone returns a deep copy of it.
func (it Item) Clone() Item {
	out := it
	out.Location = slices.Clone(it.Location)
	if it.Upd != nil {
		upd := *it.Upd
		out.Upd = &upd
	}
	return out
}

// Template is a placeable world object: a spawn point, a static container, or
// a mounted weapon. Position and Rotation are carried through untouched.
type Template struct {
	ID            string          `json:"Id"`
	IsContainer   bool            `json:"IsContainer"`
	IsAlwaysSpawn bool            `json:"IsAlwaysSpawn"`
	Root          string          `json:"Root"`
	Position      json.RawMessage `json:"Position,omitempty"`
	Rotation      json.RawMessage `json:"Rotation,omitempty"`
	Items         []Item          `json:"Items"`
}

// Clone returns a deep copy of t.
func (t Template) Clone() Template {
	out := t
	out.Position = slices.Clone(t.Position)
	out.Rotation = slices.Clone(t.Rotation)
	if t.Items != nil {
		out.Items = make([]Item, len(t.Items))
		for i, it := range t.Items {
			out.Items[i] = it.Clone()
		}
	}
	return out
}

// FindItem returns the item with the given id.
//
// Postcondition: ok is true iff an item with that id exists.
func (t Template) FindItem(id string) (Item, bool) {
	for _, it := range t.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// RootItem returns the item named by Root, falling back to the first item.
//
// Postcondition: ok is false iff the template has no items.
func (t Template) RootItem() (Item, bool) {
	if it, ok := t.FindItem(t.Root); ok {
		return it, true
	}
	if len(t.Items) == 0 {
		return Item{}, false
	}
	return t.Items[0], true
}

// ComposedKey references one item of a spawn point template by id.
type ComposedKey struct {
	Key string `json:"key"`
}

// ItemDistribution is one weighted row of a spawn point's distribution.
type ItemDistribution struct {
	ComposedKey         ComposedKey `json:"composedKey"`
	RelativeProbability float64     `json:"relativeProbability"`
}

// ForcedSpawnPoint always spawns its template.
type ForcedSpawnPoint struct {
	LocationID  string   `json:"locationId"`
	Probability float64  `json:"probability"`
	Template    Template `json:"template"`
}

// SpawnPoint spawns one item drawn from ItemDistribution with chance Probability.
type SpawnPoint struct {
	LocationID       string             `json:"locationId"`
	Probability      float64            `json:"probability"`
	Template         Template           `json:"template"`
	ItemDistribution []ItemDistribution `json:"itemDistribution"`
}

// ResolveTpl returns the template id of the item that key refers to.
//
// Postcondition: ok is false iff key does not match any template item.
func (sp SpawnPoint) ResolveTpl(key ComposedKey) (string, bool) {
	it, ok := sp.Template.FindItem(key.Key)
	if !ok {
		return "", false
	}
	return it.Tpl, true
}

// Clone returns a deep copy of sp.
func (sp SpawnPoint) Clone() SpawnPoint {
	out := sp
	out.Template = sp.Template.Clone()
	out.ItemDistribution = slices.Clone(sp.ItemDistribution)
	return out
}

// LooseLoot is a map's loose-loot spawn table.
type LooseLoot struct {
	SpawnpointCount   json.RawMessage    `json:"spawnpointCount,omitempty"`
	SpawnpointsForced []ForcedSpawnPoint `json:"spawnpointsForced"`
	Spawnpoints       []SpawnPoint       `json:"spawnpoints"`
}

// Clone returns a deep copy of ll.
func (ll LooseLoot) Clone() LooseLoot {
	out := LooseLoot{SpawnpointCount: slices.Clone(ll.SpawnpointCount)}
	if ll.SpawnpointsForced != nil {
		out.SpawnpointsForced = make([]ForcedSpawnPoint, len(ll.SpawnpointsForced))
		for i, fp := range ll.SpawnpointsForced {
			fp.Template = fp.Template.Clone()
			out.SpawnpointsForced[i] = fp
		}
	}
	if ll.Spawnpoints != nil {
		out.Spawnpoints = make([]SpawnPoint, len(ll.Spawnpoints))
		for i, sp := range ll.Spawnpoints {
			out.Spawnpoints[i] = sp.Clone()
		}
	}
	return out
}

// StaticContainer is a candidate container with its spawn probability.
type StaticContainer struct {
	Probability float64  `json:"probability"`
	Template    Template `json:"template"`
}

// ForcedItem reserves an item template inside a specific container.
type ForcedItem struct {
	ContainerID string `json:"containerId"`
	ItemTpl     string `json:"itemTpl"`
}

// StaticCatalog is a map's static-container catalog.
//
// A nil slice means the category was absent from the source data; an empty
// non-nil slice means it was present but empty.
type StaticCatalog struct {
	Weapons    []Template        `json:"staticWeapons"`
	Containers []StaticContainer `json:"staticContainers"`
	Forced     []ForcedItem      `json:"staticForced"`
}

// Clone returns a deep copy of c, preserving nil versus empty categories.
func (c StaticCatalog) Clone() StaticCatalog {
	out := StaticCatalog{Forced: slices.Clone(c.Forced)}
	if c.Weapons != nil {
		out.Weapons = make([]Template, len(c.Weapons))
		for i, w := range c.Weapons {
			out.Weapons[i] = w.Clone()
		}
	}
	if c.Containers != nil {
		out.Containers = make([]StaticContainer, len(c.Containers))
		for i, sc := range c.Containers {
			out.Containers[i] = StaticContainer{Probability: sc.Probability, Template: sc.Template.Clone()}
		}
	}
	return out
}

// ItemCountWeight is one weighted row of a container's item-count distribution.
type ItemCountWeight struct {
	Count               int     `json:"count"`
	RelativeProbability float64 `json:"relativeProbability"`
}

// ItemWeight is one weighted item template row.
type ItemWeight struct {
	Tpl                 string  `json:"tpl"`
	RelativeProbability float64 `json:"relativeProbability"`
}

// ContainerLoot is the loot distribution for one container type.
type ContainerLoot struct {
	ItemCountDistribution []ItemCountWeight `json:"itemcountDistribution"`
	ItemDistribution      []ItemWeight      `json:"itemDistribution"`
}

// StaticLootDistribution maps container type id to its loot distribution.
type StaticLootDistribution map[string]ContainerLoot

// Clone returns a deep copy of d. A nil distribution clones to nil.
func (d StaticLootDistribution) Clone() StaticLootDistribution {
	if d == nil {
		return nil
	}
	out := make(StaticLootDistribution, len(d))
	for k, v := range d {
		out[k] = ContainerLoot{
			ItemCountDistribution: slices.Clone(v.ItemCountDistribution),
			ItemDistribution:      slices.Clone(v.ItemDistribution),
		}
	}
	return out
}

// StaticAmmoDistribution maps an ammunition caliber to weighted cartridge templates.
type StaticAmmoDistribution map[string][]ItemWeight

// GroupSettings bounds how many containers of one group spawn.
type GroupSettings struct {
	ID            string
	MinContainers int
	MaxContainers int
}

// GroupMetadata is a map's raw container group data ("statics").
type GroupMetadata struct {
	// Groups lists the named groups in document order.
	Groups []GroupSettings
	// Membership maps a container id to its group id.
	Membership map[string]string
}

// GroupOf returns the group id the container belongs to, or "" when ungrouped.
func (g *GroupMetadata) GroupOf(containerID string) string {
	if g == nil {
		return ""
	}
	return g.Membership[containerID]
}

// Location is everything loaded for one map.
type Location struct {
	ID         string
	LooseLoot  LooseLoot
	Catalog    StaticCatalog
	StaticLoot StaticLootDistribution
	Groups     *GroupMetadata
}
