package transport

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dmitrymomot/dealdocs/pkg/doctree"
)

// Decl is a single inline CSS declaration.
type Decl struct {
	Prop  string
	Value string
}

// Style is an ordered list of declarations.
type Style []Decl

// String renders the style attribute value.
func (s Style) String() string {
	parts := make([]string, 0, len(s))
	for _, d := range s {
		parts = append(parts, d.Prop+": "+d.Value)
	}
	return strings.Join(parts, "; ")
}

// merge overrides declarations of s with o. Overridden properties keep
// their position; new ones are appended.
func (s Style) merge(o Style) Style {
	out := slices.Clone(s)
	for _, d := range o {
		i := slices.IndexFunc(out, func(x Decl) bool { return x.Prop == d.Prop })
		if i >= 0 {
			out[i] = d
		} else {
			out = append(out, d)
		}
	}
	return out
}

// Rule maps one block kind to its inline style. Base applies to every block
// of the kind; ByRole overrides by the role attribute; ByAttr overrides by
// attribute value, applied in sorted attribute-key order.
type Rule struct {
	Kind   doctree.Kind
	Base   Style
	ByRole map[doctree.Role]Style
	ByAttr map[string]map[string]Style
}

func (r Rule) style(b *doctree.Block) Style {
	s := slices.Clone(r.Base)
	if role := b.Role(); role != "" {
		s = s.merge(r.ByRole[role])
	}
	for _, key := range slices.Sorted(maps.Keys(r.ByAttr)) {
		if v := b.Attr(key); v != "" {
			s = s.merge(r.ByAttr[key][v])
		}
	}
	return s
}

// Table is a declarative mapping from block kind to inline style. It is
// read-only after construction.
type Table struct {
	rules map[doctree.Kind]Rule
}

// NewTable builds a table. Each kind may appear in exactly one rule.
func NewTable(rules ...Rule) (*Table, error) {
	t := &Table{rules: make(map[doctree.Kind]Rule, len(rules))}
	for _, r := range rules {
		if r.Kind == "" {
			return nil, fmt.Errorf("%w: empty kind", ErrInvalidRule)
		}
		if _, dup := t.rules[r.Kind]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, r.Kind)
		}
		t.rules[r.Kind] = r
	}
	return t, nil
}

// MustNewTable is like NewTable but panics on error.
func MustNewTable(rules ...Rule) *Table {
	t, err := NewTable(rules...)
	if err != nil {
		panic(err)
	}
	return t
}

// Has reports whether kind has a rule.
func (t *Table) Has(kind doctree.Kind) bool {
	_, ok := t.rules[kind]
	return ok
}

// Kinds returns the mapped kinds in sorted order.
func (t *Table) Kinds() []doctree.Kind {
	return slices.Sorted(maps.Keys(t.rules))
}

// Validate returns ErrStyleMapping naming every kind without a rule.
func (t *Table) Validate(kinds ...doctree.Kind) error {
	var missing []string
	for _, k := range kinds {
		if !t.Has(k) && !slices.Contains(missing, string(k)) {
			missing = append(missing, string(k))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrStyleMapping, strings.Join(missing, ", "))
	}
	return nil
}

// Style computes the inline style of b. ok is false when b.Kind is unmapped.
func (t *Table) Style(b *doctree.Block) (Style, bool) {
	r, ok := t.rules[b.Kind]
	if !ok {
		return nil, false
	}
	return r.style(b), true
}
