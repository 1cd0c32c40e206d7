// This file defines the domain descriptors for extra categories:
// auxiliary per-value attributes that are not part of the bijective grid,
// such as an age, a flag, or a uniquely-held role.
package logicgrid

import "fmt"

// Domain describes the value space of an extra category. Implementations
// are the descriptor types below; the constraint model interprets them
// when creating variables and emitting domain constraints.
type Domain interface {
	validate() error
}

// IntDomain is a bounded integer attribute over the inclusive range
// [Low, High]. With Distinct set, no two values of a base category may
// share the attribute value.
type IntDomain struct {
	Low      int
	High     int
	Distinct bool
}

func (d IntDomain) validate() error {
	if d.Low > d.High {
		return &ConfigurationError{Reason: fmt.Sprintf("integer domain has empty range [%d,%d]", d.Low, d.High)}
	}
	return nil
}

// BoolDomain is a free boolean attribute.
type BoolDomain struct{}

func (BoolDomain) validate() error { return nil }

// UniqueBoolDomain is a boolean attribute held by exactly one value per
// base category. The coherence constraints make every category agree on
// the holder, so the attribute singles out one entity of the puzzle.
type UniqueBoolDomain struct{}

func (UniqueBoolDomain) validate() error { return nil }

// ExtraCategory attaches a named domain to every value of the puzzle.
type ExtraCategory struct {
	Name   string
	Domain Domain
}
