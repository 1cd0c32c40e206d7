// This file drives the solve/enumerate protocol: check satisfiability,
// snapshot the model, assert a blocking clause forbidding that exact
// assignment, and repeat. Blocking clauses accumulate in the solver
// session, so one session supports exactly one enumeration.
package logicgrid

import (
	"context"
	"fmt"

	"github.com/dplepage/puztool/pkg/solver"
)

// Enumerator drives the external solver over a frozen constraint model.
// It is single-use: SolveOne and Enumerate each consume the session's one
// enumeration; solving again needs a fresh model on a fresh session.
type Enumerator struct {
	model   *ConstraintModel
	started bool
}

// NewEnumerator prepares an enumerator over the model's session.
func NewEnumerator(m *ConstraintModel) *Enumerator {
	return &Enumerator{model: m}
}

// SolveOne solves the puzzle once. With requireUnique it re-solves under
// a blocking clause against the first model and fails with a
// MultipleSolutionsError carrying both witnesses if a second solution
// exists. An unsatisfiable puzzle fails with a NoSolutionError.
func (e *Enumerator) SolveOne(ctx context.Context, requireUnique bool) (*Solution, error) {
	it, err := e.Enumerate(2)
	if err != nil {
		return nil, err
	}
	if !it.Next(ctx) {
		if err := it.Err(); err != nil {
			return nil, err
		}
		return nil, &NoSolutionError{}
	}
	first := it.Solution()
	if !requireUnique {
		return first, nil
	}
	if it.Next(ctx) {
		return nil, &MultipleSolutionsError{First: first, Second: it.Solution()}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return first, nil
}

// Enumerate returns an iterator over distinct solutions, at most limit of
// them. The sequence is lazy and non-restartable; a second enumeration on
// the same enumerator fails with ErrEnumerationConsumed.
func (e *Enumerator) Enumerate(limit int) (*SolutionIter, error) {
	if limit < 1 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("enumeration limit must be positive, got %d", limit)}
	}
	if e.started {
		return nil, ErrEnumerationConsumed
	}
	e.started = true
	sess := e.model.Session()
	sess.Add(e.model.Constraints()...)
	return &SolutionIter{model: e.model, sess: sess, limit: limit}, nil
}

// SolutionIter yields solutions one at a time:
//
//	it, _ := enum.Enumerate(10)
//	for it.Next(ctx) {
//		use(it.Solution())
//	}
//	if err := it.Err(); err != nil { ... }
//	if it.Truncated() { ... } // limit hit; more solutions may exist
type SolutionIter struct {
	model     *ConstraintModel
	sess      solver.Session
	limit     int
	count     int
	cur       *Solution
	err       error
	done      bool
	truncated bool
}

// Next advances to the next solution. It reports false when the sequence
// ends: cleanly on unsat, with Truncated set when the limit was reached,
// or with Err set when the solver could not decide.
func (it *SolutionIter) Next(ctx context.Context) bool {
	if it.done || it.err != nil {
		return false
	}
	if it.count >= it.limit {
		it.truncated = true
		it.done = true
		return false
	}
	status, err := it.sess.Check(ctx)
	if err != nil {
		it.err = fmt.Errorf("logicgrid: solver check failed: %w", err)
		return false
	}
	switch status {
	case solver.StatusUnsat:
		it.done = true
		return false
	case solver.StatusUnknown:
		if cause := ctx.Err(); cause != nil {
			it.err = fmt.Errorf("%w: %v", ErrInterrupted, cause)
		} else {
			it.err = ErrInterrupted
		}
		return false
	}
	mdl, err := it.sess.Model()
	if err != nil {
		it.err = fmt.Errorf("logicgrid: reading model: %w", err)
		return false
	}
	// Snapshot before blocking: adding the clause invalidates the model.
	it.cur = newSolution(it.model, mdl)
	it.sess.Add(it.blockingClause(mdl))
	it.count++
	return true
}

// blockingClause asserts that at least one solution-identity variable
// differs from the given model.
func (it *SolutionIter) blockingClause(mdl solver.Model) solver.Expr {
	bools, ints := it.model.Uniques()
	diffs := make([]solver.Expr, 0, len(bools)+len(ints))
	for _, v := range bools {
		if mdl.Bool(v) {
			diffs = append(diffs, it.sess.Not(v))
		} else {
			diffs = append(diffs, v)
		}
	}
	for _, v := range ints {
		diffs = append(diffs, it.sess.Not(it.sess.IntEqConst(v, mdl.Int(v))))
	}
	return it.sess.Or(diffs...)
}

// Solution returns the solution found by the last successful Next.
func (it *SolutionIter) Solution() *Solution {
	return it.cur
}

// Err returns the failure that ended the sequence, if any. A clean unsat
// end and a truncated end both leave Err nil.
func (it *SolutionIter) Err() error {
	return it.err
}

// Truncated reports whether the sequence stopped because the limit was
// reached rather than because the constraints ran out of solutions.
func (it *SolutionIter) Truncated() bool {
	return it.truncated
}
