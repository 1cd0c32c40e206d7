// This file defines the category registry: the stable identity scheme for
// puzzle values. Every value gets a qualified name "<category>:<literal>"
// and an index within its category; bare literals resolve through the
// registry, which detects cross-category ambiguity instead of guessing.
package logicgrid

import (
	"fmt"
	"strings"
)

// Value is one literal member of a category.
type Value struct {
	Category string
	Literal  string
	Index    int
}

// QualifiedName returns the unique "<category>:<literal>" identifier.
func (v Value) QualifiedName() string {
	return v.Category + ":" + v.Literal
}

func (v Value) String() string {
	return v.QualifiedName()
}

// CategorySpec names one category and its ordered, distinct literals.
// Order is display-only, except that index 0 of the first category anchors
// solution-table reconstruction.
type CategorySpec struct {
	Name     string
	Literals []string
}

// Registry assigns each (category, value) a qualified name and index and
// resolves literals back to values. It is built once and read-only after.
type Registry struct {
	categories []string
	size       int
	domains    map[string][]Value
	// lookup maps both qualified names (single candidate) and bare
	// literals (possibly several candidates, one per category using the
	// literal) to their values.
	lookup map[string][]Value
}

// NewRegistry builds a registry from ordered category specs. Categories
// are given as a slice because their order is meaningful; at least two
// categories of one common size are required, and literals must be
// distinct within each category. Names and literals must not contain ':',
// which is reserved for qualified names.
func NewRegistry(specs []CategorySpec) (*Registry, error) {
	if len(specs) < 2 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("need at least two categories, got %d", len(specs))}
	}
	r := &Registry{
		domains: make(map[string][]Value, len(specs)),
		lookup:  make(map[string][]Value),
	}
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, &ConfigurationError{Reason: "category name must not be empty"}
		}
		if strings.Contains(spec.Name, ":") {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("category name %q must not contain ':'", spec.Name)}
		}
		if _, dup := r.domains[spec.Name]; dup {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate category %q", spec.Name)}
		}
		if len(spec.Literals) == 0 {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("category %q has no values", spec.Name)}
		}
		if r.size == 0 {
			r.size = len(spec.Literals)
		} else if len(spec.Literals) != r.size {
			return nil, &ConfigurationError{Reason: fmt.Sprintf(
				"category %q has %d values, want %d", spec.Name, len(spec.Literals), r.size)}
		}
		domain := make([]Value, 0, len(spec.Literals))
		seen := make(map[string]bool, len(spec.Literals))
		for idx, lit := range spec.Literals {
			if strings.Contains(lit, ":") {
				return nil, &ConfigurationError{Reason: fmt.Sprintf("literal %q must not contain ':'", lit)}
			}
			if seen[lit] {
				return nil, &ConfigurationError{Reason: fmt.Sprintf(
					"duplicate literal %q in category %q", lit, spec.Name)}
			}
			seen[lit] = true
			v := Value{Category: spec.Name, Literal: lit, Index: idx}
			domain = append(domain, v)
			r.lookup[v.QualifiedName()] = []Value{v}
			r.lookup[lit] = append(r.lookup[lit], v)
		}
		r.categories = append(r.categories, spec.Name)
		r.domains[spec.Name] = domain
	}
	return r, nil
}

// Categories returns the category names in registration order.
func (r *Registry) Categories() []string {
	return append([]string(nil), r.categories...)
}

// Size returns the common number of values per category.
func (r *Registry) Size() int {
	return r.size
}

// HasCategory reports whether the registry knows the named category.
func (r *Registry) HasCategory(name string) bool {
	_, ok := r.domains[name]
	return ok
}

// Domain returns the ordered values of a category.
func (r *Registry) Domain(category string) ([]Value, error) {
	domain, ok := r.domains[category]
	if !ok {
		return nil, &NotFoundError{Literal: category}
	}
	return append([]Value(nil), domain...), nil
}

// Resolve maps a literal to its value. The literal may be bare or
// qualified as "category:literal". A bare literal matching more than one
// category fails with an AmbiguityError listing every candidate; an
// unknown literal fails with a NotFoundError.
func (r *Registry) Resolve(literal string) (Value, error) {
	return r.resolve(literal, "")
}

// ResolveIn resolves like Resolve, but when the bare literal is ambiguous
// it returns the candidate from the hinted category if one exists. A
// unique match is returned directly regardless of the hint.
func (r *Registry) ResolveIn(literal, category string) (Value, error) {
	return r.resolve(literal, category)
}

func (r *Registry) resolve(literal, hint string) (Value, error) {
	candidates, ok := r.lookup[literal]
	if !ok {
		if hint != "" {
			if vs, ok := r.lookup[hint+":"+literal]; ok {
				return vs[0], nil
			}
		}
		return Value{}, &NotFoundError{Literal: literal}
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	if hint != "" {
		for _, v := range candidates {
			if v.Category == hint {
				return v, nil
			}
		}
	}
	names := make([]string, len(candidates))
	for i, v := range candidates {
		names[i] = v.QualifiedName()
	}
	return Value{}, &AmbiguityError{Literal: literal, Candidates: names}
}

// resolveAll resolves a list of literals, stopping at the first failure.
func (r *Registry) resolveAll(literals []string) ([]Value, error) {
	values := make([]Value, len(literals))
	for i, lit := range literals {
		v, err := r.Resolve(lit)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
