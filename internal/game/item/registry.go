package item

import (
	"errors"
	"fmt"
	"slices"
)

// ErrTemplateNotFound is returned when an item template id is not registered.
var ErrTemplateNotFound = errors.New("item template not found")

// maxHierarchyDepth bounds parent-chain walks so a malformed cycle terminates.
const maxHierarchyDepth = 64

// Registry holds item templates indexed by id.
// It is read-only once loading finishes and safe for concurrent reads.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry returns an empty Registry.
//
// Postcondition: the internal map is initialised.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

// Register adds t to the registry.
//
// Precondition:  t must not be nil.
// Postcondition: Get(t.ID) returns (t, true); returns error if t.ID already registered.
func (r *Registry) Register(t *Template) error {
	if _, exists := r.templates[t.ID]; exists {
		return fmt.Errorf("item: Registry.Register: template ID %q already registered", t.ID)
	}
	r.templates[t.ID] = t
	return nil
}

// Get returns the template for the given id and whether it was found.
func (r *Registry) Get(id string) (*Template, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	return len(r.templates)
}

// IsOfBaseClass reports whether tpl is, or descends from, any of bases.
func (r *Registry) IsOfBaseClass(tpl string, bases ...string) bool {
	id := tpl
	for depth := 0; id != "" && depth < maxHierarchyDepth; depth++ {
		if slices.Contains(bases, id) {
			return true
		}
		t, ok := r.templates[id]
		if !ok {
			return false
		}
		id = t.Parent
	}
	return false
}

// Size returns the inventory footprint of tpl, defaulting to 1x1.
func (r *Registry) Size(tpl string) (width, height int) {
	width, height = 1, 1
	if t, ok := r.templates[tpl]; ok {
		width = max(t.Props.Width, 1)
		height = max(t.Props.Height, 1)
	}
	return width, height
}
