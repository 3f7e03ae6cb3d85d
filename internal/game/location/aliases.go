package location

import "strings"

// Canonical map identifiers.
const (
	Factory      = "factory4_day"
	FactoryNight = "factory4_night"
	Customs      = "bigmap"
	Woods        = "woods"
	Shoreline    = "shoreline"
	Interchange  = "interchange"
	Laboratory   = "laboratory"
	Reserve      = "rezervbase"
	Lighthouse   = "lighthouse"
	Streets      = "tarkovstreets"
	GroundZero   = "sandbox"
)

// displayNames maps the player-facing map names to canonical ids.
var displayNames = map[string]string{
	"factory":           Factory,
	"customs":           Customs,
	"woods":             Woods,
	"shoreline":         Shoreline,
	"interchange":       Interchange,
	"laboratory":        Laboratory,
	"reservebase":       Reserve,
	"lighthouse":        Lighthouse,
	"streets of tarkov": Streets,
	"sandbox":           GroundZero,
}

// KnownMaps lists every canonical map id in load order.
var KnownMaps = []string{
	Factory, FactoryNight, Customs, Woods, Shoreline, Interchange,
	Laboratory, Reserve, Lighthouse, Streets, GroundZero,
}

// sharedStatics names maps that reuse another map's static-container catalog.
var sharedStatics = map[string]string{
	FactoryNight: Factory,
}

// CanonicalID normalises a map identifier to its in-memory form: display names
// resolve to canonical ids and letter case is folded.
func CanonicalID(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := displayNames[key]; ok {
		return id
	}
	return key
}
