// Package item provides item template definitions, the base-class hierarchy,
// and the factory that turns a template id into a concrete item tree.
package item

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
)

// Base class template ids.
const (
	BaseClassMoney    = "543be5dd4bdc2deb348b4569"
	BaseClassAmmo     = "5485a8684bdc2da71d8b4567"
	BaseClassAmmoBox  = "543be5cb4bdc2deb348b4568"
	BaseClassMagazine = "5448bc234bdc2d3c308b4569"
)

// SlotFilter lists template ids accepted by a slot.
type SlotFilter struct {
	Filter []string `json:"Filter"`
}

// SlotProps holds the filters of a slot.
type SlotProps struct {
	Filters []SlotFilter `json:"filters"`
}

// Slot is a cartridge or stack slot on a template.
type Slot struct {
	Name     string    `json:"_name"`
	MaxCount int       `json:"_max_count"`
	Props    SlotProps `json:"_props"`
}

// Accepts returns the template ids the slot's first filter accepts.
func (s Slot) Accepts() []string {
	if len(s.Props.Filters) == 0 {
		return nil
	}
	return s.Props.Filters[0].Filter
}

// Props holds the template properties loot generation reads.
type Props struct {
	StackMaxSize   int    `json:"StackMaxSize"`
	StackMinRandom int    `json:"StackMinRandom"`
	StackMaxRandom int    `json:"StackMaxRandom"`
	Width          int    `json:"Width"`
	Height         int    `json:"Height"`
	Caliber        string `json:"Caliber"`
	Cartridges     []Slot `json:"Cartridges"`
	StackSlots     []Slot `json:"StackSlots"`
}

// Template is one item template ("Item") or hierarchy node ("Node").
type Template struct {
	ID     string `json:"_id"`
	Name   string `json:"_name"`
	Parent string `json:"_parent"`
	Type   string `json:"_type"`
	Props  Props  `json:"_props"`
}

// Validate checks that the template satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid.
func (t *Template) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if t.ID != "" && t.Parent == t.ID {
		errs = append(errs, fmt.Errorf("template %q is its own parent", t.ID))
	}
	if t.Props.StackMinRandom > t.Props.StackMaxRandom && t.Props.StackMaxRandom > 0 {
		errs = append(errs, fmt.Errorf("StackMinRandom (%d) must be <= StackMaxRandom (%d)", t.Props.StackMinRandom, t.Props.StackMaxRandom))
	}
	for _, s := range slices.Concat(t.Props.Cartridges, t.Props.StackSlots) {
		if s.MaxCount < 0 {
			errs = append(errs, fmt.Errorf("slot %q max count must be >= 0", s.Name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("item template validation failed: %v", errs)
	}
	return nil
}

// LoadTemplates reads an items document (template id -> template) from path.
//
// Precondition: path must point to a readable JSON object of templates.
// Postcondition: returns a Registry holding every valid template or the first error.
func LoadTemplates(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading item templates %s: %w", path, err)
	}
	var raw map[string]*Template
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing item templates: %w", err)
	}

	reg := NewRegistry()
	for id, t := range raw {
		if t == nil {
			continue
		}
		if t.ID == "" {
			t.ID = id
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("item template %q: %w", id, err)
		}
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
