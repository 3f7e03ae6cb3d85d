// Package blacklist removes reserved item templates from loot tables so they
// never spawn outside their intended quest context.
package blacklist

import (
	"fmt"
	"os"
	"strings"

	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/raidloot/internal/game/location"
)

// Blacklist is an immutable set of forbidden item template ids.
type Blacklist struct {
	ids    mapset.Set[string]
	logger *zap.Logger
}

// New builds a Blacklist from ids. Blank ids are ignored.
//
// Precondition: logger must be non-nil.
func New(logger *zap.Logger, ids ...string) *Blacklist {
	set := mapset.New[string]()
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			set.Put(id)
		}
	}
	return &Blacklist{ids: set, logger: logger}
}

// Contains reports whether tpl is blacklisted.
func (b *Blacklist) Contains(tpl string) bool {
	return b.ids.Has(tpl)
}

// Size returns the number of blacklisted ids.
func (b *Blacklist) Size() int {
	return b.ids.Size()
}

// yamlBlacklistFile is the on-disk blacklist schema.
type yamlBlacklistFile struct {
	Blacklist []string `yaml:"blacklist"`
}

// LoadFile reads blacklisted ids from a YAML file of the form
//
//	blacklist:
//	  - 5c94bbff86f7747ee735c08f
//
// Precondition: path must point to a readable YAML file.
// Postcondition: Returns the listed ids or a non-nil error.
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading blacklist file %s: %w", path, err)
	}
	var file yamlBlacklistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing blacklist YAML: %w", err)
	}
	return file.Blacklist, nil
}

// FilterLooseLoot returns a filtered copy of table; table itself is not modified.
//
// Forced spawn points holding any blacklisted item are removed. Spawn points
// lose their blacklisted distribution rows; a spawn point emptied by the removal
// stays in place with IsAlwaysSpawn cleared and zero probability. A row whose
// composed key matches no template item is kept and reported.
//
// Postcondition: FilterLooseLoot(FilterLooseLoot(t)) equals FilterLooseLoot(t).
func (b *Blacklist) FilterLooseLoot(table location.LooseLoot) location.LooseLoot {
	out := table.Clone()

	if out.SpawnpointsForced != nil {
		kept := out.SpawnpointsForced[:0]
		for _, fp := range out.SpawnpointsForced {
			if tpl, bad := b.firstBlacklisted(fp.Template.Items); bad {
				b.logger.Debug("removing forced spawn point",
					zap.String("spawnpoint", fp.LocationID),
					zap.String("item", tpl),
				)
				continue
			}
			kept = append(kept, fp)
		}
		out.SpawnpointsForced = kept
	}

	for i := range out.Spawnpoints {
		sp := &out.Spawnpoints[i]
		kept := sp.ItemDistribution[:0]
		removed := 0
		for _, row := range sp.ItemDistribution {
			tpl, ok := sp.ResolveTpl(row.ComposedKey)
			if !ok {
				b.logger.Warn("item distribution references missing template item",
					zap.String("spawnpoint", sp.LocationID),
					zap.String("composed_key", row.ComposedKey.Key),
				)
				kept = append(kept, row)
				continue
			}
			if b.Contains(tpl) {
				removed++
				continue
			}
			kept = append(kept, row)
		}
		sp.ItemDistribution = kept
		if removed > 0 && len(kept) == 0 {
			sp.Template.IsAlwaysSpawn = false
			sp.Probability = 0
			b.logger.Debug("disabled emptied spawn point",
				zap.String("spawnpoint", sp.LocationID),
				zap.Int("removed", removed),
			)
		}
	}
	return out
}

// FilterStaticDistribution returns a copy of table without blacklisted item rows.
//
// Postcondition: FilterStaticDistribution(FilterStaticDistribution(t)) equals
// FilterStaticDistribution(t); container types are never removed.
func (b *Blacklist) FilterStaticDistribution(table location.StaticLootDistribution) location.StaticLootDistribution {
	out := table.Clone()
	for containerType, loot := range out {
		if loot.ItemDistribution == nil {
			continue
		}
		kept := loot.ItemDistribution[:0]
		for _, row := range loot.ItemDistribution {
			if !b.Contains(row.Tpl) {
				kept = append(kept, row)
			}
		}
		loot.ItemDistribution = kept
		out[containerType] = loot
	}
	return out
}

func (b *Blacklist) firstBlacklisted(items []location.Item) (string, bool) {
	for _, it := range items {
		if b.Contains(it.Tpl) {
			return it.Tpl, true
		}
	}
	return "", false
}
