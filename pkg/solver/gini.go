// Package solver implements the solver capability on concrete SAT engines.
// This file provides the gini backend: expressions become nodes in a
// go-air/gini logic circuit, bounded integers use a one-hot encoding, and
// cardinality constraints go through the circuit's sorting networks.
package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

type giniExpr struct {
	m z.Lit
}

func (giniExpr) boolExpr() {}

// giniInt is a one-hot encoded bounded integer: lits[i] holds exactly when
// the variable takes the value low+i. The exactly-one constraint over lits
// is asserted at creation.
type giniInt struct {
	low  int
	lits []z.Lit
}

func (*giniInt) intExpr() {}

// GiniSession implements Session on the go-air/gini SAT solver.
//
// Expressions accumulate in a single logic.C circuit. Each Check emits the
// circuit's CNF into a fresh gini solver, assumes every asserted root, and
// solves; the solver instance is kept only long enough to serve Model
// calls. When the context carries a deadline, solving runs on a background
// goroutine with a time budget and an expired budget yields StatusUnknown.
type GiniSession struct {
	c       *logic.C
	bools   map[string]z.Lit
	ints    map[string]*giniInt
	asserts []z.Lit
	g       *gini.Gini
	status  Status
}

var _ Session = (*GiniSession)(nil)

// NewGini returns an empty gini-backed session.
func NewGini() *GiniSession {
	return &GiniSession{
		c:      logic.NewC(),
		bools:  make(map[string]z.Lit),
		ints:   make(map[string]*giniInt),
		status: StatusUnknown,
	}
}

func (s *GiniSession) Bool(name string) Expr {
	if m, ok := s.bools[name]; ok {
		return giniExpr{m}
	}
	m := s.c.Lit()
	s.bools[name] = m
	return giniExpr{m}
}

func (s *GiniSession) Int(name string, low, high int) IntExpr {
	if v, ok := s.ints[name]; ok {
		return v
	}
	if low > high {
		panic(fmt.Sprintf("solver: integer %q has empty range [%d,%d]", name, low, high))
	}
	v := &giniInt{low: low, lits: make([]z.Lit, high-low+1)}
	for i := range v.lits {
		v.lits[i] = s.c.Lit()
	}
	s.ints[name] = v
	s.Add(s.exactlyOne(v.lits))
	return v
}

func (s *GiniSession) True() Expr  { return giniExpr{s.c.T} }
func (s *GiniSession) False() Expr { return giniExpr{s.c.F} }

func lits(xs []Expr) []z.Lit {
	ms := make([]z.Lit, len(xs))
	for i, x := range xs {
		ms[i] = x.(giniExpr).m
	}
	return ms
}

func (s *GiniSession) And(xs ...Expr) Expr {
	return giniExpr{s.c.Ands(lits(xs)...)}
}

func (s *GiniSession) Or(xs ...Expr) Expr {
	return giniExpr{s.c.Ors(lits(xs)...)}
}

func (s *GiniSession) Not(x Expr) Expr {
	return giniExpr{x.(giniExpr).m.Not()}
}

func (s *GiniSession) Implies(a, b Expr) Expr {
	return giniExpr{s.c.Or(a.(giniExpr).m.Not(), b.(giniExpr).m)}
}

func (s *GiniSession) Xor(a, b Expr) Expr {
	am, bm := a.(giniExpr).m, b.(giniExpr).m
	return giniExpr{s.c.Or(s.c.And(am, bm.Not()), s.c.And(am.Not(), bm))}
}

func (s *GiniSession) Iff(a, b Expr) Expr {
	return s.Not(s.Xor(a, b))
}

// litFor returns the one-hot literal selecting value v, or the constant
// false literal when v is out of range.
func (s *GiniSession) litFor(x *giniInt, v int) z.Lit {
	if v < x.low || v >= x.low+len(x.lits) {
		return s.c.F
	}
	return x.lits[v-x.low]
}

func (s *GiniSession) IntEq(a, b IntExpr) Expr {
	av, bv := a.(*giniInt), b.(*giniInt)
	lo, hi := av.low, av.low+len(av.lits)-1
	if bv.low < lo {
		lo = bv.low
	}
	if h := bv.low + len(bv.lits) - 1; h > hi {
		hi = h
	}
	ms := make([]z.Lit, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		la, lb := s.litFor(av, v), s.litFor(bv, v)
		ms = append(ms, s.Iff(giniExpr{la}, giniExpr{lb}).(giniExpr).m)
	}
	return giniExpr{s.c.Ands(ms...)}
}

func (s *GiniSession) IntEqConst(x IntExpr, v int) Expr {
	return giniExpr{s.litFor(x.(*giniInt), v)}
}

func (s *GiniSession) exactlyOne(ms []z.Lit) Expr {
	switch len(ms) {
	case 0:
		return giniExpr{s.c.F}
	case 1:
		return giniExpr{ms[0]}
	}
	cs := s.c.CardSort(ms)
	return giniExpr{s.c.And(cs.Leq(1), cs.Geq(1))}
}

func (s *GiniSession) ExactlyOne(xs ...Expr) Expr {
	return s.exactlyOne(lits(xs))
}

func (s *GiniSession) AtMost(k int, xs ...Expr) Expr {
	if k < 0 {
		return giniExpr{s.c.F}
	}
	if k >= len(xs) {
		return giniExpr{s.c.T}
	}
	return giniExpr{s.c.CardSort(lits(xs)).Leq(k)}
}

func (s *GiniSession) AllDistinct(xs ...IntExpr) Expr {
	if len(xs) < 2 {
		return giniExpr{s.c.T}
	}
	lo, hi := xs[0].(*giniInt).low, xs[0].(*giniInt).low
	for _, x := range xs {
		v := x.(*giniInt)
		if v.low < lo {
			lo = v.low
		}
		if h := v.low + len(v.lits) - 1; h > hi {
			hi = h
		}
	}
	var parts []z.Lit
	for v := lo; v <= hi; v++ {
		var takers []Expr
		for _, x := range xs {
			if m := s.litFor(x.(*giniInt), v); m != s.c.F {
				takers = append(takers, giniExpr{m})
			}
		}
		if len(takers) > 1 {
			parts = append(parts, s.AtMost(1, takers...).(giniExpr).m)
		}
	}
	return giniExpr{s.c.Ands(parts...)}
}

func (s *GiniSession) Add(xs ...Expr) {
	s.asserts = append(s.asserts, lits(xs)...)
	s.status = StatusUnknown
	s.g = nil
}

func (s *GiniSession) Check(ctx context.Context) (Status, error) {
	if err := ctx.Err(); err != nil {
		s.g = nil
		s.status = StatusUnknown
		return StatusUnknown, nil
	}
	g := gini.New()
	s.c.ToCnfFrom(g, s.asserts...)
	g.Assume(s.asserts...)

	var res int
	if deadline, ok := ctx.Deadline(); ok {
		res = g.GoSolve().Try(time.Until(deadline))
	} else {
		res = g.Solve()
	}
	switch res {
	case 1:
		s.g = g
		s.status = StatusSat
	case -1:
		s.g = nil
		s.status = StatusUnsat
	default:
		s.g = nil
		s.status = StatusUnknown
	}
	return s.status, nil
}

func (s *GiniSession) Model() (Model, error) {
	if s.status != StatusSat || s.g == nil {
		return nil, fmt.Errorf("solver: no model available (last check: %s)", s.status)
	}
	return &giniModel{g: s.g}, nil
}

type giniModel struct {
	g *gini.Gini
}

func (m *giniModel) Bool(x Expr) bool {
	return m.g.Value(x.(giniExpr).m)
}

func (m *giniModel) Int(x IntExpr) int {
	v := x.(*giniInt)
	for i, lit := range v.lits {
		if m.g.Value(lit) {
			return v.low + i
		}
	}
	return v.low
}
