package templates

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrymomot/dealdocs/pkg/deal"
	"github.com/dmitrymomot/dealdocs/pkg/doctree"
)

var (
	ErrMissingField    = errors.New("templates: required field missing")
	ErrUnknownTemplate = errors.New("templates: unknown document kind")
	ErrDuplicateKind   = errors.New("templates: duplicate document kind")
)

// Template renders one document type.
type Template interface {
	Kind() string
	Title() string
	Render(r deal.Record) (doctree.Document, error)
}

// Registry looks templates up by kind. It is read-only after construction.
type Registry struct {
	byKind map[string]Template
	order  []string
}

// NewRegistry registers templates in the given order.
func NewRegistry(ts ...Template) (*Registry, error) {
	reg := &Registry{byKind: make(map[string]Template, len(ts))}
	for _, t := range ts {
		if _, dup := reg.byKind[t.Kind()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKind, t.Kind())
		}
		reg.byKind[t.Kind()] = t
		reg.order = append(reg.order, t.Kind())
	}
	return reg, nil
}

// Default returns a registry with every shipped template.
func Default() *Registry {
	reg, err := NewRegistry(
		SettlementStatement{},
		AgentLetter{},
		ImportantDates{},
		AdResults{},
	)
	if err != nil {
		panic(err)
	}
	return reg
}

// Lookup returns the template for kind.
func (r *Registry) Lookup(kind string) (Template, error) {
	t, ok := r.byKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, kind)
	}
	return t, nil
}

// Kinds returns registered kinds in registration order.
func (r *Registry) Kinds() []string {
	return slices.Clone(r.order)
}

// Templates returns registered templates in registration order.
func (r *Registry) Templates() []Template {
	out := make([]Template, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.byKind[k])
	}
	return out
}

// Render looks up kind and renders r with it.
func (r *Registry) Render(kind string, rec deal.Record) (doctree.Document, error) {
	t, err := r.Lookup(kind)
	if err != nil {
		return doctree.Document{}, err
	}
	return t.Render(rec)
}
