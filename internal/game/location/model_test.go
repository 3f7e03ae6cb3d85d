package location_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/raidloot/internal/game/location"
)

func crate(id, tpl string) location.Template {
	return location.Template{
		ID:          id,
		IsContainer: true,
		Root:        id + "_root",
		Position:    []byte(`{"x":1,"y":2,"z":3}`),
		Items: []location.Item{
			{ID: id + "_root", Tpl: tpl},
			{ID: id + "_ammo", Tpl: "ammo", ParentID: id + "_root", SlotID: "main", Upd: &location.Upd{StackObjectsCount: 30}},
		},
	}
}

func TestTemplate_CloneIsDeep(t *testing.T) {
	orig := crate("c1", "box")
	clone := orig.Clone()

	clone.Items[0].Tpl = "changed"
	clone.Items[1].Upd.StackObjectsCount = 1
	clone.Position[0] = '['

	assert.Equal(t, "box", orig.Items[0].Tpl)
	assert.Equal(t, 30, orig.Items[1].Upd.StackObjectsCount)
	assert.Equal(t, byte('{'), orig.Position[0])
}

func TestTemplate_RootItem(t *testing.T) {
	tmpl := crate("c1", "box")
	root, ok := tmpl.RootItem()
	require.True(t, ok)
	assert.Equal(t, "box", root.Tpl)

	tmpl.Root = "missing"
	root, ok = tmpl.RootItem()
	require.True(t, ok, "falls back to the first item")
	assert.Equal(t, "c1_root", root.ID)

	_, ok = location.Template{}.RootItem()
	assert.False(t, ok)
}

func TestSpawnPoint_ResolveTpl(t *testing.T) {
	sp := location.SpawnPoint{Template: crate("sp", "box")}
	tpl, ok := sp.ResolveTpl(location.ComposedKey{Key: "sp_ammo"})
	require.True(t, ok)
	assert.Equal(t, "ammo", tpl)

	_, ok = sp.ResolveTpl(location.ComposedKey{Key: "dangling"})
	assert.False(t, ok)
}

func TestStaticCatalog_ClonePreservesNilCategories(t *testing.T) {
	c := location.StaticCatalog{
		Containers: []location.StaticContainer{{Probability: 0.5, Template: crate("c1", "box")}},
		Forced:     []location.ForcedItem{},
	}
	clone := c.Clone()
	assert.Nil(t, clone.Weapons)
	assert.NotNil(t, clone.Forced)
	assert.Empty(t, clone.Forced)

	clone.Containers[0].Template.Items[0].Tpl = "changed"
	assert.Equal(t, "box", c.Containers[0].Template.Items[0].Tpl)
}

func TestLooseLoot_CloneIsDeep(t *testing.T) {
	ll := location.LooseLoot{
		Spawnpoints: []location.SpawnPoint{{
			Probability:      0.4,
			Template:         crate("sp", "box"),
			ItemDistribution: []location.ItemDistribution{{ComposedKey: location.ComposedKey{Key: "sp_root"}, RelativeProbability: 1}},
		}},
	}
	clone := ll.Clone()
	clone.Spawnpoints[0].ItemDistribution[0].RelativeProbability = 9
	clone.Spawnpoints[0].Probability = 0
	assert.Equal(t, 1.0, ll.Spawnpoints[0].ItemDistribution[0].RelativeProbability)
	assert.Equal(t, 0.4, ll.Spawnpoints[0].Probability)
}

func TestStaticLootDistribution_Clone(t *testing.T) {
	var nilDist location.StaticLootDistribution
	assert.Nil(t, nilDist.Clone())

	d := location.StaticLootDistribution{"box": {ItemDistribution: []location.ItemWeight{{Tpl: "a", RelativeProbability: 1}}}}
	clone := d.Clone()
	clone["box"].ItemDistribution[0].Tpl = "b"
	assert.Equal(t, "a", d["box"].ItemDistribution[0].Tpl)
}

func TestCanonicalID(t *testing.T) {
	assert.Equal(t, location.Factory, location.CanonicalID("Factory"))
	assert.Equal(t, location.Streets, location.CanonicalID("Streets of Tarkov"))
	assert.Equal(t, location.Reserve, location.CanonicalID("ReserveBase"))
	assert.Equal(t, location.FactoryNight, location.CanonicalID("Factory4_Night"))
	assert.Equal(t, "custommap", location.CanonicalID("  CustomMap "))
}
