// Package container decides which static containers spawn in a raid and fills
// them with loot.
package container

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/game/dice"
	"github.com/cory-johannsen/raidloot/internal/game/location"
)

// Ungrouped is the id of the bucket holding containers that belong to no group.
// Its containers are rolled independently instead of drawn by quota.
const Ungrouped = ""

// Candidate is a randomisable container and its spawn probability.
type Candidate struct {
	ContainerID string
	Probability float64
}

// ContainerGroup is one group's candidate pool and quota.
//
// Invariant: 0 <= DesiredCount <= len(Candidates).
type ContainerGroup struct {
	ID           string
	Candidates   []Candidate
	DesiredCount int
}

// GroupMap holds a map's container groups in iteration order.
type GroupMap struct {
	Order  []string
	Groups map[string]*ContainerGroup
}

// Engine is the default group selection engine.
type Engine struct {
	roller *dice.Roller
	logger *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: roller and logger must be non-nil.
func NewEngine(roller *dice.Roller, logger *zap.Logger) *Engine {
	return &Engine{roller: roller, logger: logger}
}

// Classify splits containers into guaranteed (probability >= 1) and
// randomisable subsets, preserving order.
func (e *Engine) Classify(containers []location.StaticContainer) (guaranteed, randomisable []location.StaticContainer) {
	for _, c := range containers {
		if c.Probability >= 1 {
			guaranteed = append(guaranteed, c)
		} else {
			randomisable = append(randomisable, c)
		}
	}
	return guaranteed, randomisable
}

// BuildGroups assigns every randomisable container to its group. The ungrouped
// bucket comes first, followed by the named groups in metadata order.
// Containers naming an unknown group fall into the ungrouped bucket.
//
// Postcondition: every group satisfies the ContainerGroup invariant; the
// ungrouped bucket's DesiredCount equals its pool size.
func (e *Engine) BuildGroups(meta *location.GroupMetadata, randomisable []location.StaticContainer) *GroupMap {
	gm := &GroupMap{
		Order:  []string{Ungrouped},
		Groups: map[string]*ContainerGroup{Ungrouped: {ID: Ungrouped}},
	}
	var settings []location.GroupSettings
	if meta != nil {
		settings = meta.Groups
	}
	for _, s := range settings {
		if _, dup := gm.Groups[s.ID]; dup {
			continue
		}
		gm.Order = append(gm.Order, s.ID)
		gm.Groups[s.ID] = &ContainerGroup{ID: s.ID}
	}

	for _, c := range randomisable {
		groupID := meta.GroupOf(c.Template.ID)
		g, ok := gm.Groups[groupID]
		if !ok {
			e.logger.Debug("container references unknown group",
				zap.String("container", c.Template.ID),
				zap.String("group", groupID),
			)
			g = gm.Groups[Ungrouped]
		}
		g.Candidates = append(g.Candidates, Candidate{ContainerID: c.Template.ID, Probability: c.Probability})
	}

	gm.Groups[Ungrouped].DesiredCount = len(gm.Groups[Ungrouped].Candidates)
	for _, s := range settings {
		if s.ID == Ungrouped {
			continue
		}
		g := gm.Groups[s.ID]
		g.DesiredCount = min(e.roller.IntRange(s.MinContainers, s.MaxContainers), len(g.Candidates))
	}
	return gm
}

// Realize draws DesiredCount distinct container ids from the group's pool,
// weighted by probability, without replacement.
//
// Postcondition: every id is unique and drawn from g.Candidates; the result has
// min(DesiredCount, len(Candidates)) ids unless the remaining pool has no
// positive weight.
func (e *Engine) Realize(g *ContainerGroup) []string {
	pool := append([]Candidate(nil), g.Candidates...)
	want := min(g.DesiredCount, len(pool))
	chosen := make([]string, 0, want)
	weights := make([]float64, 0, len(pool))
	for len(chosen) < want {
		weights = weights[:0]
		for _, c := range pool {
			weights = append(weights, c.Probability)
		}
		idx := e.roller.WeightedIndex(weights)
		if idx < 0 {
			e.logger.Warn("container group has no positive weights left",
				zap.String("group", g.ID),
				zap.Int("wanted", want),
				zap.Int("chosen", len(chosen)),
			)
			break
		}
		chosen = append(chosen, pool[idx].ContainerID)
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return chosen
}
