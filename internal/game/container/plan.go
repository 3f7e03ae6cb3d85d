package container

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/raidloot/internal/game/dice"
	"github.com/cory-johannsen/raidloot/internal/game/location"
	"github.com/cory-johannsen/raidloot/internal/observability"
)

// SelectionEngine classifies candidates, groups them, and draws group quotas.
type SelectionEngine interface {
	Classify(containers []location.StaticContainer) (guaranteed, randomisable []location.StaticContainer)
	BuildGroups(meta *location.GroupMetadata, randomisable []location.StaticContainer) *GroupMap
	Realize(g *ContainerGroup) []string
}

// Hydrator fills one container template with concrete items. It must not keep
// state across calls and must never replace an item reserved by forced.
type Hydrator interface {
	Hydrate(
		tmpl location.Template,
		forced []location.ForcedItem,
		staticLoot location.StaticLootDistribution,
		staticAmmo location.StaticAmmoDistribution,
		mapID string,
	) location.Template
}

// CatalogSource provides the read-only static-container data of a map.
type CatalogSource interface {
	Catalog(mapID string) (location.StaticCatalog, bool)
	Groups(mapID string) (*location.GroupMetadata, bool)
}

// RandomisationPolicy reports whether quota-based selection applies to a map.
type RandomisationPolicy interface {
	RandomisationEnabled(mapID string) bool
}

// Result is the outcome of one generation call.
type Result struct {
	MapID string
	// Containers holds mounted weapons, then guaranteed containers, then the
	// containers drawn per group in group order.
	Containers []location.Template
	// ItemCount counts loot items placed inside hydrated containers.
	ItemCount int
	// ContainerCount counts hydrated containers; mounted weapons are excluded.
	ContainerCount int
	// Randomised is true when group selection ran.
	Randomised bool
	// Truncated is true when group metadata was missing and only the
	// guaranteed containers were produced.
	Truncated bool
}

func (r *Result) add(tmpl location.Template) {
	r.Containers = append(r.Containers, tmpl)
	r.ContainerCount++
	if len(tmpl.Items) > 1 {
		r.ItemCount += len(tmpl.Items) - 1
	}
}

// Plan produces the static-container list of one raid.
// Generate only reads the source and works on clones, so concurrent calls are safe.
type Plan struct {
	source   CatalogSource
	engine   SelectionEngine
	hydrator Hydrator
	policy   RandomisationPolicy
	roller   *dice.Roller
	logger   *zap.Logger
}

// NewPlan creates a Plan.
//
// Precondition: all arguments must be non-nil.
func NewPlan(source CatalogSource, engine SelectionEngine, hydrator Hydrator, policy RandomisationPolicy, roller *dice.Roller, logger *zap.Logger) *Plan {
	return &Plan{
		source:   source,
		engine:   engine,
		hydrator: hydrator,
		policy:   policy,
		roller:   roller,
		logger:   logger,
	}
}

// Generate builds the static containers of mapID.
//
// Missing catalog categories are logged and treated as empty. Missing group
// metadata on the randomised path truncates the result to mounted weapons and
// guaranteed containers. No condition aborts the call.
//
// Postcondition: every guaranteed container is present; the stored catalog is
// not modified.
func (p *Plan) Generate(mapID string, staticLoot location.StaticLootDistribution, staticAmmo location.StaticAmmoDistribution) Result {
	logger := observability.ForMap(p.logger, mapID)
	result := Result{MapID: mapID}

	stored, ok := p.source.Catalog(mapID)
	if !ok {
		logger.Error("no static container catalog for map")
	}
	catalog := stored.Clone()
	if catalog.Weapons == nil {
		logger.Error("static weapons missing for map")
	}
	if catalog.Containers == nil {
		logger.Error("static containers missing for map")
	}
	if catalog.Forced == nil {
		logger.Error("static forced items missing for map")
	}

	result.Containers = append(result.Containers, catalog.Weapons...)

	guaranteed, randomisable := p.engine.Classify(catalog.Containers)
	for _, c := range guaranteed {
		result.add(p.hydrator.Hydrate(c.Template, catalog.Forced, staticLoot, staticAmmo, mapID))
	}

	if !p.policy.RandomisationEnabled(mapID) {
		for _, c := range randomisable {
			result.add(p.hydrator.Hydrate(c.Template, catalog.Forced, staticLoot, staticAmmo, mapID))
		}
		p.logSummary(logger, result)
		return result
	}

	result.Randomised = true
	meta, ok := p.source.Groups(mapID)
	if !ok {
		logger.Warn("container group metadata missing, spawning guaranteed containers only",
			zap.Int("guaranteed", len(guaranteed)),
		)
		result.Truncated = true
		p.logSummary(logger, result)
		return result
	}

	byID := make(map[string]location.StaticContainer, len(randomisable))
	for _, c := range randomisable {
		byID[c.Template.ID] = c
	}

	groups := p.engine.BuildGroups(meta, randomisable)
	for _, groupID := range groups.Order {
		g := groups.Groups[groupID]
		if g == nil || g.DesiredCount == 0 || len(g.Candidates) == 0 {
			continue
		}

		var chosen []string
		if groupID == Ungrouped {
			chosen = p.rollUngrouped(g)
			if len(chosen) == 0 {
				continue
			}
		} else {
			chosen = p.engine.Realize(g)
		}

		for _, id := range chosen {
			c, ok := byID[id]
			if !ok {
				logger.Error("chosen container not found in candidate pool",
					zap.String("group", groupID),
					zap.String("container", id),
				)
				continue
			}
			result.add(p.hydrator.Hydrate(c.Template, catalog.Forced, staticLoot, staticAmmo, mapID))
		}
	}

	p.logSummary(logger, result)
	return result
}

// rollUngrouped keeps each candidate with its own probability.
func (p *Plan) rollUngrouped(g *ContainerGroup) []string {
	var kept []string
	for _, c := range g.Candidates {
		if p.roller.Chance(c.Probability) {
			kept = append(kept, c.ContainerID)
		}
	}
	return kept
}

func (p *Plan) logSummary(logger *zap.Logger, r Result) {
	logger.Info("static containers generated",
		zap.Int("containers", r.ContainerCount),
		zap.Int("items", r.ItemCount),
		zap.Int("total", len(r.Containers)),
		zap.Bool("randomised", r.Randomised),
		zap.Bool("truncated", r.Truncated),
	)
}
