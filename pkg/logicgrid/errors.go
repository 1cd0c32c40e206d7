// Package logicgrid models and solves logic grid puzzles. This file
// defines the error taxonomy surfaced by the package. All errors are
// synchronous and final; constraint encoding has no transient failure
// mode, so nothing here is ever retried.
package logicgrid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInterrupted reports that the solver stopped before reaching a
// verdict, typically because a deadline expired or the context was
// cancelled. It is a distinct outcome from "no solution".
var ErrInterrupted = errors.New("logicgrid: solver stopped before reaching a verdict")

// ErrFrozen reports a mutation attempted on a constraint model after its
// constraint set has been computed.
var ErrFrozen = errors.New("logicgrid: constraint model is frozen")

// ErrEnumerationConsumed reports a second enumeration on a solver session
// whose blocking clauses have already been spent. Enumerating again
// requires a fresh model and session.
var ErrEnumerationConsumed = errors.New("logicgrid: enumeration already consumed for this session")

// NotFoundError reports a literal that no category contains.
type NotFoundError struct {
	Literal string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("logicgrid: no category contains %q", e.Literal)
}

// AmbiguityError reports a bare literal matching values in more than one
// category. Candidates holds every matching qualified name.
type AmbiguityError struct {
	Literal    string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("logicgrid: %q could be any of: %s", e.Literal, strings.Join(e.Candidates, ", "))
}

// ConflictError reports a clue that cannot be encoded, such as requiring
// two values of the same category to go together.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "logicgrid: " + e.Reason
}

// ConfigurationError reports malformed puzzle structure: bad categories,
// bad extra-category domains, or misuse of the model's variable lookups.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "logicgrid: " + e.Reason
}

// NoSolutionError reports an unsatisfiable puzzle when at least one
// solution was expected.
type NoSolutionError struct{}

func (e *NoSolutionError) Error() string {
	return "logicgrid: no solution satisfies the given constraints"
}

// MultipleSolutionsError reports that a puzzle expected to have a unique
// solution has at least two. Both witnesses are carried.
type MultipleSolutionsError struct {
	First  *Solution
	Second *Solution
}

func (e *MultipleSolutionsError) Error() string {
	return "logicgrid: puzzle has more than one solution"
}
