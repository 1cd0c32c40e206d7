// This file provides the gophersat backend: expressions are
// crillab/gophersat boolean formulas, accumulated and re-solved from
// scratch on every Check. It exists to keep the capability boundary
// honest; the logic-grid core runs unmodified on either engine.
package solver

import (
	"context"
	"fmt"

	"github.com/crillab/gophersat/bf"
)

type bfExpr struct {
	f bf.Formula
	// name is set only for variable handles, so models can evaluate them.
	name string
}

func (bfExpr) boolExpr() {}

// bfInt is a one-hot encoded bounded integer over named boolean variables:
// vars[i] (named "<name>=<low+i>") holds exactly when the variable takes
// the value low+i.
type bfInt struct {
	low  int
	vars []string
}

func (*bfInt) intExpr() {}

// GophersatSession implements Session on the crillab/gophersat solver's
// boolean-formula layer.
//
// gophersat's formula API is not incremental, so every Check conjoins all
// assertions and solves from scratch. There is no mid-solve interruption:
// a context cancelled before Check reports StatusUnknown, but a running
// solve blocks until decided. Cardinality constraints use pairwise and
// subset expansions, which is fine at logic-grid sizes.
type GophersatSession struct {
	ints     map[string]*bfInt
	asserts  []bf.Formula
	model    map[string]bool
	hasModel bool
	checked  bool
}

var _ Session = (*GophersatSession)(nil)

// NewGophersat returns an empty gophersat-backed session.
func NewGophersat() *GophersatSession {
	return &GophersatSession{ints: make(map[string]*bfInt)}
}

func (s *GophersatSession) Bool(name string) Expr {
	return bfExpr{f: bf.Var(name), name: name}
}

func (s *GophersatSession) Int(name string, low, high int) IntExpr {
	if v, ok := s.ints[name]; ok {
		return v
	}
	if low > high {
		panic(fmt.Sprintf("solver: integer %q has empty range [%d,%d]", name, low, high))
	}
	v := &bfInt{low: low, vars: make([]string, high-low+1)}
	onehot := make([]Expr, len(v.vars))
	for i := range v.vars {
		v.vars[i] = fmt.Sprintf("%s=%d", name, low+i)
		onehot[i] = bfExpr{f: bf.Var(v.vars[i]), name: v.vars[i]}
	}
	s.ints[name] = v
	s.Add(s.ExactlyOne(onehot...))
	return v
}

func (s *GophersatSession) True() Expr  { return bfExpr{f: bf.True} }
func (s *GophersatSession) False() Expr { return bfExpr{f: bf.False} }

func formulas(xs []Expr) []bf.Formula {
	fs := make([]bf.Formula, len(xs))
	for i, x := range xs {
		fs[i] = x.(bfExpr).f
	}
	return fs
}

func (s *GophersatSession) And(xs ...Expr) Expr {
	if len(xs) == 0 {
		return s.True()
	}
	return bfExpr{f: bf.And(formulas(xs)...)}
}

func (s *GophersatSession) Or(xs ...Expr) Expr {
	if len(xs) == 0 {
		return s.False()
	}
	return bfExpr{f: bf.Or(formulas(xs)...)}
}

func (s *GophersatSession) Not(x Expr) Expr {
	return bfExpr{f: bf.Not(x.(bfExpr).f)}
}

func (s *GophersatSession) Implies(a, b Expr) Expr {
	return s.Or(s.Not(a), b)
}

func (s *GophersatSession) Xor(a, b Expr) Expr {
	return s.Or(s.And(a, s.Not(b)), s.And(s.Not(a), b))
}

func (s *GophersatSession) Iff(a, b Expr) Expr {
	return s.Not(s.Xor(a, b))
}

// varFor returns the expression selecting value v, or False when v is out
// of range.
func (s *GophersatSession) varFor(x *bfInt, v int) Expr {
	if v < x.low || v >= x.low+len(x.vars) {
		return s.False()
	}
	name := x.vars[v-x.low]
	return bfExpr{f: bf.Var(name), name: name}
}

func (s *GophersatSession) IntEq(a, b IntExpr) Expr {
	av, bv := a.(*bfInt), b.(*bfInt)
	lo, hi := av.low, av.low+len(av.vars)-1
	if bv.low < lo {
		lo = bv.low
	}
	if h := bv.low + len(bv.vars) - 1; h > hi {
		hi = h
	}
	parts := make([]Expr, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		parts = append(parts, s.Iff(s.varFor(av, v), s.varFor(bv, v)))
	}
	return s.And(parts...)
}

func (s *GophersatSession) IntEqConst(x IntExpr, v int) Expr {
	return s.varFor(x.(*bfInt), v)
}

func (s *GophersatSession) ExactlyOne(xs ...Expr) Expr {
	if len(xs) == 0 {
		return s.False()
	}
	parts := []Expr{s.Or(xs...)}
	for i := 0; i < len(xs); i++ {
		for j := i + 1; j < len(xs); j++ {
			parts = append(parts, s.Not(s.And(xs[i], xs[j])))
		}
	}
	return s.And(parts...)
}

// AtMost forbids every (k+1)-subset from holding simultaneously. The
// expansion is combinatorial; callers here only use k=1 and k=len-1.
func (s *GophersatSession) AtMost(k int, xs ...Expr) Expr {
	if k < 0 {
		return s.False()
	}
	if k >= len(xs) {
		return s.True()
	}
	var parts []Expr
	subset := make([]Expr, 0, k+1)
	var walk func(start int)
	walk = func(start int) {
		if len(subset) == k+1 {
			parts = append(parts, s.Not(s.And(append([]Expr(nil), subset...)...)))
			return
		}
		for i := start; i <= len(xs)-(k+1-len(subset)); i++ {
			subset = append(subset, xs[i])
			walk(i + 1)
			subset = subset[:len(subset)-1]
		}
	}
	walk(0)
	return s.And(parts...)
}

func (s *GophersatSession) AllDistinct(xs ...IntExpr) Expr {
	if len(xs) < 2 {
		return s.True()
	}
	lo, hi := xs[0].(*bfInt).low, xs[0].(*bfInt).low
	for _, x := range xs {
		v := x.(*bfInt)
		if v.low < lo {
			lo = v.low
		}
		if h := v.low + len(v.vars) - 1; h > hi {
			hi = h
		}
	}
	var parts []Expr
	for v := lo; v <= hi; v++ {
		var takers []Expr
		for _, x := range xs {
			iv := x.(*bfInt)
			if v >= iv.low && v < iv.low+len(iv.vars) {
				takers = append(takers, s.varFor(iv, v))
			}
		}
		if len(takers) > 1 {
			parts = append(parts, s.AtMost(1, takers...))
		}
	}
	return s.And(parts...)
}

func (s *GophersatSession) Add(xs ...Expr) {
	s.asserts = append(s.asserts, formulas(xs)...)
	s.hasModel = false
	s.checked = false
}

func (s *GophersatSession) Check(ctx context.Context) (Status, error) {
	if err := ctx.Err(); err != nil {
		s.hasModel = false
		s.checked = false
		return StatusUnknown, nil
	}
	var f bf.Formula = bf.True
	if len(s.asserts) > 0 {
		f = bf.And(s.asserts...)
	}
	s.model = bf.Solve(f)
	s.hasModel = s.model != nil
	s.checked = true
	if !s.hasModel {
		return StatusUnsat, nil
	}
	return StatusSat, nil
}

func (s *GophersatSession) Model() (Model, error) {
	if !s.checked || !s.hasModel {
		return nil, fmt.Errorf("solver: no model available")
	}
	return &bfModel{m: s.model}, nil
}

type bfModel struct {
	m map[string]bool
}

func (m *bfModel) Bool(x Expr) bool {
	e := x.(bfExpr)
	if e.name == "" {
		panic("solver: model evaluation requires a variable handle")
	}
	return m.m[e.name]
}

func (m *bfModel) Int(x IntExpr) int {
	v := x.(*bfInt)
	for i, name := range v.vars {
		if m.m[name] {
			return v.low + i
		}
	}
	return v.low
}
