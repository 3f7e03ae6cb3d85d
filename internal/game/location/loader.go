package location

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Per-map table file names.
const (
	LooseLootFile        = "looseLoot.json"
	StaticContainersFile = "staticContainers.json"
	StaticsFile          = "statics.json"
	StaticLootFile       = "staticLoot.json"
	StaticAmmoFile       = "staticAmmo.json"
)

// Tables holds the raw, unfiltered tables read from one map directory.
type Tables struct {
	LooseLoot  LooseLoot
	Catalog    StaticCatalog
	HasCatalog bool
	StaticLoot StaticLootDistribution
	Groups     *GroupMetadata
}

// readJSON decodes path into v. A missing file is not an error.
//
// Postcondition: found is false iff the file does not exist.
func readJSON(path string, v any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}
	return true, nil
}

// ReadTables reads every table present in dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the tables found (missing files leave zero values) or
// the first read/parse error.
func ReadTables(dir string) (Tables, error) {
	var t Tables
	if _, err := readJSON(filepath.Join(dir, LooseLootFile), &t.LooseLoot); err != nil {
		return Tables{}, err
	}
	found, err := readJSON(filepath.Join(dir, StaticContainersFile), &t.Catalog)
	if err != nil {
		return Tables{}, err
	}
	t.HasCatalog = found
	if _, err := readJSON(filepath.Join(dir, StaticLootFile), &t.StaticLoot); err != nil {
		return Tables{}, err
	}

	data, err := os.ReadFile(filepath.Join(dir, StaticsFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Tables{}, fmt.Errorf("reading %s: %w", StaticsFile, err)
	default:
		groups, err := ParseGroupMetadata(data)
		if err != nil {
			return Tables{}, fmt.Errorf("%s: %w", dir, err)
		}
		t.Groups = groups
	}
	return t, nil
}

// LoadAll reads every map directory under dataDir and loads it into store.
// Directory names are matched case-insensitively; a map without its own
// static-container catalog inherits the catalog, groups, and static loot of the
// map it shares statics with.
//
// Precondition: dataDir must be a readable directory.
// Postcondition: Returns the number of maps loaded or the first error.
func LoadAll(dataDir string, store *Store, logger *zap.Logger) (int, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return 0, fmt.Errorf("reading loot directory %s: %w", dataDir, err)
	}

	tables := make(map[string]Tables)
	var order []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		id := CanonicalID(entry.Name())
		if _, dup := tables[id]; dup {
			return 0, fmt.Errorf("duplicate map directory for %q in %s", id, dataDir)
		}
		if !slices.Contains(KnownMaps, id) {
			logger.Warn("loading unrecognised map directory", zap.String("map", id))
		}
		t, err := ReadTables(filepath.Join(dataDir, entry.Name()))
		if err != nil {
			return 0, fmt.Errorf("loading map %q: %w", id, err)
		}
		tables[id] = t
		order = append(order, id)
	}

	for _, id := range order {
		t := tables[id]
		if src, ok := sharedStatics[id]; ok && !t.HasCatalog {
			if shared, ok := tables[src]; ok {
				t.Catalog = shared.Catalog.Clone()
				t.HasCatalog = shared.HasCatalog
				if t.Groups == nil {
					t.Groups = shared.Groups
				}
				if t.StaticLoot == nil {
					t.StaticLoot = shared.StaticLoot.Clone()
				}
				logger.Debug("sharing static containers",
					zap.String("map", id),
					zap.String("source", src),
				)
			}
		}
		store.Load(id, t.LooseLoot, t.Catalog, t.StaticLoot, t.Groups)
	}

	logger.Info("location loot loaded",
		zap.String("dir", dataDir),
		zap.Int("maps", len(order)),
	)
	return len(order), nil
}

// LoadStaticAmmo reads the caliber to cartridge distribution at path.
//
// Postcondition: a missing file yields an empty distribution and nil error.
func LoadStaticAmmo(path string) (StaticAmmoDistribution, error) {
	dist := StaticAmmoDistribution{}
	if _, err := readJSON(path, &dist); err != nil {
		return nil, err
	}
	return dist, nil
}
