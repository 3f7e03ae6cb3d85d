package container_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/raidloot/internal/game/container"
	"github.com/cory-johannsen/raidloot/internal/game/dice"
	"github.com/cory-johannsen/raidloot/internal/game/location"
)

func newEngine(seed int64) *container.Engine {
	return container.NewEngine(dice.NewRoller(dice.NewSeededSource(seed), zap.NewNop()), zap.NewNop())
}

func staticContainer(id string, p float64) location.StaticContainer {
	return location.StaticContainer{
		Probability: p,
		Template: location.Template{
			ID:          id,
			IsContainer: true,
			Root:        id + "-root",
			Items:       []location.Item{{ID: id + "-root", Tpl: crateTpl}},
		},
	}
}

func TestEngine_Classify(t *testing.T) {
	e := newEngine(1)
	guaranteed, randomisable := e.Classify([]location.StaticContainer{
		staticContainer("a", 1),
		staticContainer("b", 0.4),
		staticContainer("c", 1.5),
		staticContainer("d", 0),
	})
	require.Len(t, guaranteed, 2)
	require.Len(t, randomisable, 2)
	assert.Equal(t, "a", guaranteed[0].Template.ID)
	assert.Equal(t, "c", guaranteed[1].Template.ID)
	assert.Equal(t, "b", randomisable[0].Template.ID)
	assert.Equal(t, "d", randomisable[1].Template.ID)
}

func TestEngine_BuildGroupsOrderAndMembership(t *testing.T) {
	e := newEngine(1)
	meta := &location.GroupMetadata{
		Groups: []location.GroupSettings{
			{ID: "g2", MinContainers: 1, MaxContainers: 1},
			{ID: "g1", MinContainers: 5, MaxContainers: 5},
		},
		Membership: map[string]string{"a": "g1", "b": "g2", "c": "missing"},
	}
	gm := e.BuildGroups(meta, []location.StaticContainer{
		staticContainer("a", 0.5),
		staticContainer("b", 0.5),
		staticContainer("c", 0.5),
		staticContainer("d", 0.5),
	})

	assert.Equal(t, []string{container.Ungrouped, "g2", "g1"}, gm.Order)

	ungrouped := gm.Groups[container.Ungrouped]
	require.Len(t, ungrouped.Candidates, 2, "unknown group and no group both land in the ungrouped bucket")
	assert.Equal(t, 2, ungrouped.DesiredCount)

	g1 := gm.Groups["g1"]
	require.Len(t, g1.Candidates, 1)
	assert.Equal(t, 1, g1.DesiredCount, "quota is clamped to pool size")
	assert.Equal(t, 1, gm.Groups["g2"].DesiredCount)
}

func TestEngine_BuildGroupsNilMetadata(t *testing.T) {
	e := newEngine(1)
	gm := e.BuildGroups(nil, []location.StaticContainer{staticContainer("a", 0.5)})
	assert.Equal(t, []string{container.Ungrouped}, gm.Order)
	assert.Len(t, gm.Groups[container.Ungrouped].Candidates, 1)
}

func TestEngine_RealizeSkipsZeroWeights(t *testing.T) {
	e := newEngine(3)
	got := e.Realize(&container.ContainerGroup{
		ID:           "g",
		Candidates:   []container.Candidate{{ContainerID: "a", Probability: 0}, {ContainerID: "b", Probability: 0.2}},
		DesiredCount: 2,
	})
	assert.Equal(t, []string{"b"}, got)
}

func TestEngine_RealizeFavoursHeavierCandidates(t *testing.T) {
	e := newEngine(7)
	g := &container.ContainerGroup{
		ID:           "g",
		Candidates:   []container.Candidate{{ContainerID: "light", Probability: 0.1}, {ContainerID: "heavy", Probability: 0.9}},
		DesiredCount: 1,
	}
	heavy := 0
	const trials = 5000
	for i := 0; i < trials; i++ {
		if e.Realize(g)[0] == "heavy" {
			heavy++
		}
	}
	assert.InDelta(t, 0.9, float64(heavy)/trials, 0.03)
}

func TestEngine_RealizeDoesNotMutateGroup(t *testing.T) {
	e := newEngine(9)
	g := &container.ContainerGroup{
		ID:           "g",
		Candidates:   []container.Candidate{{ContainerID: "a", Probability: 0.5}, {ContainerID: "b", Probability: 0.5}, {ContainerID: "c", Probability: 0.5}},
		DesiredCount: 2,
	}
	before := append([]container.Candidate(nil), g.Candidates...)
	e.Realize(g)
	assert.Equal(t, before, g.Candidates)
}

// Property-based tests

func TestPropertyRealizeDrawsExactQuota(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(t, "pool")
		candidates := make([]container.Candidate, n)
		ids := make(map[string]bool, n)
		for i := range candidates {
			id := fmt.Sprintf("c%d", i)
			ids[id] = true
			candidates[i] = container.Candidate{
				ContainerID: id,
				Probability: rapid.Float64Range(0.01, 0.99).Draw(t, "p"),
			}
		}
		want := rapid.IntRange(0, n).Draw(t, "want")
		e := newEngine(rapid.Int64().Draw(t, "seed"))

		got := e.Realize(&container.ContainerGroup{ID: "g", Candidates: candidates, DesiredCount: want})
		if len(got) != want {
			t.Fatalf("want %d containers, got %d", want, len(got))
		}
		seen := make(map[string]bool, len(got))
		for _, id := range got {
			if !ids[id] {
				t.Fatalf("container %q not in pool", id)
			}
			if seen[id] {
				t.Fatalf("container %q drawn twice", id)
			}
			seen[id] = true
		}
	})
}

func TestPropertyBuildGroupsQuotaWithinBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lo := rapid.IntRange(0, 5).Draw(t, "min")
		hi := rapid.IntRange(lo, 10).Draw(t, "max")
		n := rapid.IntRange(0, 8).Draw(t, "pool")
		meta := &location.GroupMetadata{
			Groups:     []location.GroupSettings{{ID: "g", MinContainers: lo, MaxContainers: hi}},
			Membership: map[string]string{},
		}
		var pool []location.StaticContainer
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("c%d", i)
			meta.Membership[id] = "g"
			pool = append(pool, staticContainer(id, 0.5))
		}
		gm := newEngine(rapid.Int64().Draw(t, "seed")).BuildGroups(meta, pool)
		g := gm.Groups["g"]
		if g.DesiredCount < 0 || g.DesiredCount > len(g.Candidates) {
			t.Fatalf("quota %d outside [0, %d]", g.DesiredCount, len(g.Candidates))
		}
		if g.DesiredCount > hi {
			t.Fatalf("quota %d above max %d", g.DesiredCount, hi)
		}
		if len(g.Candidates) >= lo && g.DesiredCount < lo {
			t.Fatalf("quota %d below min %d with pool %d", g.DesiredCount, lo, len(g.Candidates))
		}
	})
}
