// Package solver defines the boolean/bounded-integer constraint capability
// consumed by the logic-grid core, together with two interchangeable
// backends (gini and gophersat).
//
// The core never talks to a SAT solver directly. It builds expressions
// through a Session, asserts them, and asks for a verdict; which engine
// decides satisfiability is an implementation detail behind this package.
// Expressions are built with explicit constructor calls rather than
// operator overloading, so no third-party types are ever mutated.
//
// A Session is single-threaded: one goroutine builds expressions, asserts
// them, and alternates Check/Model calls. Independent problems need
// independent sessions.
package solver

import "context"

// Status is the outcome of a satisfiability check.
type Status int

const (
	// StatusUnknown means the solver stopped before reaching a verdict,
	// typically because a deadline expired. It must never be treated as
	// unsatisfiable.
	StatusUnknown Status = iota
	// StatusSat means a model satisfying all asserted expressions exists.
	StatusSat
	// StatusUnsat means no model satisfies the asserted expressions.
	StatusUnsat
)

func (s Status) String() string {
	switch s {
	case StatusSat:
		return "sat"
	case StatusUnsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Expr is an opaque boolean expression handle. Expressions are owned by
// the Session that built them and must not be mixed across sessions.
type Expr interface {
	boolExpr()
}

// IntExpr is an opaque bounded-integer expression handle.
type IntExpr interface {
	intExpr()
}

// Model evaluates variables against a satisfying assignment. Handles
// passed in must be variables created by the session's Bool or Int calls;
// evaluating composite expressions is not part of the capability.
type Model interface {
	// Bool reports the value of a boolean variable in the model.
	Bool(x Expr) bool
	// Int reports the value of a bounded-integer variable in the model.
	Int(x IntExpr) int
}

// Session is one solver session: a variable factory, an expression
// builder, and an incremental satisfiability checker.
//
// Variables are identified by name within a session; requesting the same
// name twice returns the same variable. Names chosen by the caller must
// therefore be unique per logical variable.
type Session interface {
	// Bool returns the boolean variable with the given name, creating it
	// on first use.
	Bool(name string) Expr

	// Int returns the bounded-integer variable with the given name and
	// inclusive range [low, high], creating it on first use. low must not
	// exceed high.
	Int(name string, low, high int) IntExpr

	// True and False are the constant expressions.
	True() Expr
	False() Expr

	// Boolean connectives. And of nothing is True, Or of nothing is False.
	And(xs ...Expr) Expr
	Or(xs ...Expr) Expr
	Not(x Expr) Expr
	Implies(a, b Expr) Expr
	Xor(a, b Expr) Expr
	Iff(a, b Expr) Expr

	// IntEq holds when two bounded-integer expressions take the same value.
	IntEq(a, b IntExpr) Expr
	// IntEqConst holds when x takes the value v. Always false when v lies
	// outside x's range.
	IntEqConst(x IntExpr, v int) Expr

	// Cardinality constraints.
	ExactlyOne(xs ...Expr) Expr
	AtMost(k int, xs ...Expr) Expr
	AllDistinct(xs ...IntExpr) Expr

	// Add asserts expressions. Assertions accumulate for the lifetime of
	// the session; there is no retraction.
	Add(xs ...Expr)

	// Check decides satisfiability of everything asserted so far. A
	// context deadline is passed through to the backend where supported;
	// an undecided check reports StatusUnknown. The returned error is
	// reserved for backend failures, not for unsat results.
	Check(ctx context.Context) (Status, error)

	// Model returns the satisfying assignment found by the most recent
	// Check. It errors unless that check reported StatusSat.
	Model() (Model, error)
}
