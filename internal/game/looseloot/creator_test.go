package looseloot_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/raidloot/internal/game/dice"
	"github.com/cory-johannsen/raidloot/internal/game/item"
	"github.com/cory-johannsen/raidloot/internal/game/location"
	"github.com/cory-johannsen/raidloot/internal/game/looseloot"
)

const (
	rouble  = "5449016a4bdc2d6f028b456f"
	m855    = "54527a984bdc2d4e668b4567"
	stanag  = "55d4887d4bdc2d962f8b4570"
	rifle   = "5447a9cd4bdc2dbd208b4567"
	scope   = "544a3a774bdc2d3a388b4567"
	unknown = "000000000000000000000000"
)

func newCreator(t *testing.T, logger *zap.Logger) *looseloot.Creator {
	t.Helper()
	reg := item.NewRegistry()
	for _, tmpl := range []*item.Template{
		{ID: item.BaseClassMoney, Type: "Node"},
		{ID: item.BaseClassAmmo, Type: "Node"},
		{ID: item.BaseClassMagazine, Type: "Node"},
		{ID: rouble, Parent: item.BaseClassMoney, Props: item.Props{StackMaxSize: 500000, StackMinRandom: 50, StackMaxRandom: 60}},
		{ID: m855, Parent: item.BaseClassAmmo, Props: item.Props{StackMaxSize: 60, StackMinRandom: 5, StackMaxRandom: 10, Caliber: "Caliber556x45NATO"}},
		{ID: stanag, Parent: item.BaseClassMagazine, Props: item.Props{Width: 1, Height: 2, Cartridges: []item.Slot{{Name: "cartridges", MaxCount: 30, Props: item.SlotProps{Filters: []item.SlotFilter{{Filter: []string{m855}}}}}}}},
		{ID: rifle, Props: item.Props{Width: 5, Height: 2}},
		{ID: scope},
	} {
		require.NoError(t, reg.Register(tmpl))
	}
	roller := dice.NewRoller(dice.NewSeededSource(11), zap.NewNop())
	factory := item.NewFactory(reg, roller, item.Settings{MagazineAmmoChancePercent: 100, MinFillMagazinePercent: 50}, zap.NewNop())
	return looseloot.NewCreator(factory, roller, logger)
}

func spawnPoint() location.SpawnPoint {
	return location.SpawnPoint{
		LocationID:  "loot_shelf_1",
		Probability: 0.5,
		Template: location.Template{
			ID:   "loot_shelf_1",
			Root: "k-rifle",
			Items: []location.Item{
				{ID: "k-rifle", Tpl: rifle},
				{ID: "k-scope", Tpl: scope, ParentID: "k-rifle", SlotID: "mod_scope"},
				{ID: "k-money", Tpl: rouble},
				{ID: "k-mag", Tpl: stanag},
				{ID: "k-unknown", Tpl: unknown},
			},
		},
		ItemDistribution: []location.ItemDistribution{
			{ComposedKey: location.ComposedKey{Key: "k-rifle"}, RelativeProbability: 1},
			{ComposedKey: location.ComposedKey{Key: "k-money"}, RelativeProbability: 1},
		},
	}
}

func TestCreate_DanglingKeyIsError(t *testing.T) {
	c := newCreator(t, zap.NewNop())
	_, err := c.Create(location.ComposedKey{Key: "missing"}, spawnPoint(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, looseloot.ErrDanglingKey))
}

func TestCreate_MoneyIsRandomised(t *testing.T) {
	c := newCreator(t, zap.NewNop())
	res, err := c.Create(location.ComposedKey{Key: "k-money"}, spawnPoint(), nil)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, rouble, res.Items[0].Tpl)
	assert.NotEqual(t, "k-money", res.Items[0].ID)
	assert.GreaterOrEqual(t, res.Items[0].Upd.StackObjectsCount, 50)
	assert.LessOrEqual(t, res.Items[0].Upd.StackObjectsCount, 60)
}

func TestCreate_MagazineFilledFromAmmoDistribution(t *testing.T) {
	c := newCreator(t, zap.NewNop())
	ammo := location.StaticAmmoDistribution{"Caliber556x45NATO": {{Tpl: m855, RelativeProbability: 1}}}
	res, err := c.Create(location.ComposedKey{Key: "k-mag"}, spawnPoint(), ammo)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, m855, res.Items[1].Tpl)
	assert.GreaterOrEqual(t, res.Items[1].Upd.StackObjectsCount, 15)
	assert.Equal(t, 1, res.Width)
	assert.Equal(t, 2, res.Height)
}

func TestCreate_AuthoredTreeReparented(t *testing.T) {
	c := newCreator(t, zap.NewNop())
	res, err := c.Create(location.ComposedKey{Key: "k-rifle"}, spawnPoint(), nil)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, rifle, res.Items[0].Tpl)
	assert.Equal(t, scope, res.Items[1].Tpl)
	assert.Equal(t, res.Items[0].ID, res.Items[1].ParentID)
	assert.NotEqual(t, "k-rifle", res.Items[0].ID)
	assert.Equal(t, 5, res.Width)
	assert.Equal(t, 2, res.Height)
}

func TestCreate_UnknownTemplateCopiesAuthoredItem(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := newCreator(t, zap.New(core))
	res, err := c.Create(location.ComposedKey{Key: "k-unknown"}, spawnPoint(), nil)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, unknown, res.Items[0].Tpl)
	assert.Equal(t, 1, logs.Len())
}

func TestCreate_DoesNotMutateSpawnPoint(t *testing.T) {
	c := newCreator(t, zap.NewNop())
	sp := spawnPoint()
	_, err := c.Create(location.ComposedKey{Key: "k-rifle"}, sp, nil)
	require.NoError(t, err)
	assert.Equal(t, spawnPoint(), sp)
}

func TestPick_NoWeightsIsError(t *testing.T) {
	c := newCreator(t, zap.NewNop())
	sp := spawnPoint()
	sp.ItemDistribution = nil
	_, err := c.Pick(sp)
	assert.True(t, errors.Is(err, looseloot.ErrNoCandidates))
}

func TestSpawn_ZeroedSpawnPointNeverSpawns(t *testing.T) {
	c := newCreator(t, zap.NewNop())
	sp := spawnPoint()
	sp.Probability = 0
	for i := 0; i < 100; i++ {
		_, ok := c.Spawn(sp, nil)
		assert.False(t, ok)
	}
}

func TestSpawn_DanglingRowIsSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := newCreator(t, zap.New(core))
	sp := spawnPoint()
	sp.Template.IsAlwaysSpawn = true
	sp.ItemDistribution = []location.ItemDistribution{{ComposedKey: location.ComposedKey{Key: "gone"}, RelativeProbability: 1}}

	_, ok := c.Spawn(sp, nil)
	assert.False(t, ok)
	entries := logs.FilterMessage("spawn point skipped").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "gone", entries[0].ContextMap()["composed_key"])
}

// Property-based tests

func TestPropertyPickedKeyComesFromDistribution(t *testing.T) {
	c := newCreator(t, zap.NewNop())
	rapid.Check(t, func(t *rapid.T) {
		sp := spawnPoint()
		sp.ItemDistribution[0].RelativeProbability = rapid.Float64Range(0, 10).Draw(t, "w0")
		sp.ItemDistribution[1].RelativeProbability = rapid.Float64Range(0.001, 10).Draw(t, "w1")
		key, err := c.Pick(sp)
		if err != nil {
			t.Fatalf("pick: %v", err)
		}
		if key.Key != "k-rifle" && key.Key != "k-money" {
			t.Fatalf("unexpected key %q", key.Key)
		}
		if sp.ItemDistribution[0].RelativeProbability == 0 && key.Key != "k-money" {
			t.Fatalf("zero-weight row picked")
		}
	})
}
