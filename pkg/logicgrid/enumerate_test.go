package logicgrid

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/dplepage/puztool/pkg/solver"
)

var sessions = map[string]func() solver.Session{
	"gini":      func() solver.Session { return solver.NewGini() },
	"gophersat": func() solver.Session { return solver.NewGophersat() },
}

func solveUnique(t *testing.T, m *ConstraintModel) *Solution {
	t.Helper()
	sol, err := NewEnumerator(m).SolveOne(context.Background(), true)
	if err != nil {
		t.Fatalf("SolveOne error: %v", err)
	}
	return sol
}

func TestSolveUniquePuzzle(t *testing.T) {
	for name, newSession := range sessions {
		t.Run(name, func(t *testing.T) {
			g := NewRelationGrid(twoByTwo(t))
			if err := g.Exclude("Ann", "Coffee"); err != nil {
				t.Fatalf("Exclude error: %v", err)
			}
			m, err := NewConstraintModel(newSession(), g)
			if err != nil {
				t.Fatalf("NewConstraintModel error: %v", err)
			}
			sol := solveUnique(t, m)
			rows := sol.Rows()
			if len(rows) != 2 {
				t.Fatalf("rows = %v", rows)
			}
			if rows[0].Literals["drink"] != "Tea" || rows[1].Literals["drink"] != "Coffee" {
				t.Fatalf("rows = %v", rows)
			}
		})
	}
}

func TestEnumerateStopsCleanly(t *testing.T) {
	g := NewRelationGrid(twoByTwo(t))
	if err := g.Require("Ann", "Tea"); err != nil {
		t.Fatalf("Require error: %v", err)
	}
	m, err := NewConstraintModel(solver.NewGini(), g)
	if err != nil {
		t.Fatalf("NewConstraintModel error: %v", err)
	}
	it, err := NewEnumerator(m).Enumerate(5)
	if err != nil {
		t.Fatalf("Enumerate error: %v", err)
	}
	ctx := context.Background()
	var count int
	for it.Next(ctx) {
		count++
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if it.Truncated() {
		t.Fatalf("sequence should not be truncated")
	}
}

func TestEnumerateTruncates(t *testing.T) {
	g := NewRelationGrid(twoByTwo(t))
	m, err := NewConstraintModel(solver.NewGini(), g)
	if err != nil {
		t.Fatalf("NewConstraintModel error: %v", err)
	}
	it, err := NewEnumerator(m).Enumerate(1)
	if err != nil {
		t.Fatalf("Enumerate error: %v", err)
	}
	ctx := context.Background()
	if !it.Next(ctx) {
		t.Fatalf("expected a first solution, err = %v", it.Err())
	}
	if it.Next(ctx) {
		t.Fatalf("limit 1 should stop after one solution")
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}
	if !it.Truncated() {
		t.Fatalf("sequence should be truncated")
	}
}

func TestEnumerateDistinctSolutions(t *testing.T) {
	g := NewRelationGrid(twoByTwo(t))
	m, err := NewConstraintModel(solver.NewGini(), g)
	if err != nil {
		t.Fatalf("NewConstraintModel error: %v", err)
	}
	it, err := NewEnumerator(m).Enumerate(10)
	if err != nil {
		t.Fatalf("Enumerate error: %v", err)
	}
	ctx := context.Background()
	seen := make(map[string]bool)
	for it.Next(ctx) {
		key := it.Solution().Rows()[0].Literals["drink"]
		if seen[key] {
			t.Fatalf("solution repeated: Ann drinks %s twice", key)
		}
		seen[key] = true
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}
	// An unconstrained 2x2 grid has exactly two pairings.
	if len(seen) != 2 {
		t.Fatalf("found %d solutions, want 2", len(seen))
	}
}

func TestSolveOneMultipleSolutions(t *testing.T) {
	for name, newSession := range sessions {
		t.Run(name, func(t *testing.T) {
			g := NewRelationGrid(twoByTwo(t))
			m, err := NewConstraintModel(newSession(), g)
			if err != nil {
				t.Fatalf("NewConstraintModel error: %v", err)
			}
			_, err = NewEnumerator(m).SolveOne(context.Background(), true)
			var multi *MultipleSolutionsError
			if !errors.As(err, &multi) {
				t.Fatalf("SolveOne error = %v, want MultipleSolutionsError", err)
			}
			a := multi.First.Rows()[0].Literals["drink"]
			b := multi.Second.Rows()[0].Literals["drink"]
			if a == b {
				t.Fatalf("witnesses agree: Ann drinks %s in both", a)
			}
		})
	}
}

func TestSolveOneWithoutUniqueness(t *testing.T) {
	g := NewRelationGrid(twoByTwo(t))
	m, err := NewConstraintModel(solver.NewGini(), g)
	if err != nil {
		t.Fatalf("NewConstraintModel error: %v", err)
	}
	sol, err := NewEnumerator(m).SolveOne(context.Background(), false)
	if err != nil {
		t.Fatalf("SolveOne error: %v", err)
	}
	if sol == nil {
		t.Fatalf("SolveOne returned no solution")
	}
}

func TestContradictionIsUnsat(t *testing.T) {
	g := NewRelationGrid(twoByTwo(t))
	if err := g.Require("Ann", "Tea"); err != nil {
		t.Fatalf("Require error: %v", err)
	}
	if err := g.Exclude("Ann", "Tea"); err != nil {
		t.Fatalf("Exclude error: %v", err)
	}
	m, err := NewConstraintModel(solver.NewGini(), g)
	if err != nil {
		t.Fatalf("NewConstraintModel error: %v", err)
	}
	_, err = NewEnumerator(m).SolveOne(context.Background(), false)
	var none *NoSolutionError
	if !errors.As(err, &none) {
		t.Fatalf("SolveOne error = %v, want NoSolutionError", err)
	}
}

func TestTransitiveContradictionIsUnsat(t *testing.T) {
	g := NewRelationGrid(threeByThree(t))
	// Ann-Tea and Tea-Cat force Ann-Cat through transitivity, which the
	// exclusion forbids. No single cell is marked both ways.
	if err := g.Require("Ann", "Tea"); err != nil {
		t.Fatalf("Require error: %v", err)
	}
	if err := g.Require("Tea", "Cat"); err != nil {
		t.Fatalf("Require error: %v", err)
	}
	if err := g.Exclude("Ann", "Cat"); err != nil {
		t.Fatalf("Exclude error: %v", err)
	}
	m, err := NewConstraintModel(solver.NewGini(), g)
	if err != nil {
		t.Fatalf("NewConstraintModel error: %v", err)
	}
	_, err = NewEnumerator(m).SolveOne(context.Background(), false)
	var none *NoSolutionError
	if !errors.As(err, &none) {
		t.Fatalf("SolveOne error = %v, want NoSolutionError", err)
	}
}

func TestEnumeratorSingleUse(t *testing.T) {
	g := NewRelationGrid(twoByTwo(t))
	m, err := NewConstraintModel(solver.NewGini(), g)
	if err != nil {
		t.Fatalf("NewConstraintModel error: %v", err)
	}
	enum := NewEnumerator(m)
	if _, err := enum.Enumerate(1); err != nil {
		t.Fatalf("first Enumerate error: %v", err)
	}
	if _, err := enum.Enumerate(1); !errors.Is(err, ErrEnumerationConsumed) {
		t.Fatalf("second Enumerate error = %v, want ErrEnumerationConsumed", err)
	}

	var cfg *ConfigurationError
	if _, err := NewEnumerator(m).Enumerate(0); !errors.As(err, &cfg) {
		t.Fatalf("Enumerate(0) error = %v, want ConfigurationError", err)
	}
}

func TestCancelledSolveIsInterrupted(t *testing.T) {
	g := NewRelationGrid(twoByTwo(t))
	m, err := NewConstraintModel(solver.NewGini(), g)
	if err != nil {
		t.Fatalf("NewConstraintModel error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewEnumerator(m).SolveOne(ctx, false)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("SolveOne error = %v, want ErrInterrupted", err)
	}
}

func TestSolutionsSatisfyStructure(t *testing.T) {
	g := NewRelationGrid(threeByThree(t))
	m, err := NewConstraintModel(solver.NewGini(), g)
	if err != nil {
		t.Fatalf("NewConstraintModel error: %v", err)
	}
	it, err := NewEnumerator(m).Enumerate(40)
	if err != nil {
		t.Fatalf("Enumerate error: %v", err)
	}
	ctx := context.Background()
	var count int
	cats := []string{"person", "drink", "pet"}
	for it.Next(ctx) {
		count++
		sol := it.Solution()
		for a := 0; a < len(cats); a++ {
			for b := a + 1; b < len(cats); b++ {
				for i := 0; i < 3; i++ {
					var inRow int
					for j := 0; j < 3; j++ {
						if sol.paired(cats[a], i, cats[b], j) {
							inRow++
						}
					}
					if inRow != 1 {
						t.Fatalf("%s[%d] pairs with %d values of %s", cats[a], i, inRow, cats[b])
					}
				}
			}
		}
		// Pairings compose across the triple.
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				for k := 0; k < 3; k++ {
					if sol.paired("person", i, "drink", j) &&
						sol.paired("drink", j, "pet", k) &&
						!sol.paired("person", i, "pet", k) {
						t.Fatalf("pairings do not compose: person[%d]-drink[%d]-pet[%d]", i, j, k)
					}
				}
			}
		}
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}
	// 3x3 grids have 3! x 3! = 36 full pairings.
	if count != 36 {
		t.Fatalf("count = %d, want 36", count)
	}
}

func TestRequireOneOfSolved(t *testing.T) {
	g := NewRelationGrid(threeByThree(t))
	if err := g.RequireOneOf("Ann", "Tea", "Juice"); err != nil {
		t.Fatalf("RequireOneOf error: %v", err)
	}
	if err := g.Exclude("Ann", "Tea"); err != nil {
		t.Fatalf("Exclude error: %v", err)
	}
	m, err := NewConstraintModel(solver.NewGini(), g)
	if err != nil {
		t.Fatalf("NewConstraintModel error: %v", err)
	}
	sol, err := NewEnumerator(m).SolveOne(context.Background(), false)
	if err != nil {
		t.Fatalf("SolveOne error: %v", err)
	}
	if got := sol.Rows()[0].Literals["drink"]; got != "Juice" {
		t.Fatalf("Ann drinks %s, want Juice", got)
	}
}

func TestIntExtraCoherence(t *testing.T) {
	g := NewRelationGrid(twoByTwo(t))
	if err := g.Require("Ann", "Tea"); err != nil {
		t.Fatalf("Require error: %v", err)
	}
	m, err := NewConstraintModel(solver.NewGini(), g,
		ExtraCategory{Name: "age", Domain: IntDomain{Low: 30, High: 31, Distinct: true}})
	if err != nil {
		t.Fatalf("NewConstraintModel error: %v", err)
	}
	age, err := m.XInt("age", "Ann")
	if err != nil {
		t.Fatalf("XInt error: %v", err)
	}
	if err := m.Add(m.Session().IntEqConst(age, 30)); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	sol := solveUnique(t, m)
	rows := sol.Rows()
	if rows[0].Extras["age"] != 30 || rows[1].Extras["age"] != 31 {
		t.Fatalf("ages = %v, %v", rows[0].Extras["age"], rows[1].Extras["age"])
	}
}

func TestUniqueBoolExtra(t *testing.T) {
	g := NewRelationGrid(twoByTwo(t))
	if err := g.Require("Ann", "Tea"); err != nil {
		t.Fatalf("Require error: %v", err)
	}
	m, err := NewConstraintModel(solver.NewGini(), g,
		ExtraCategory{Name: "host", Domain: UniqueBoolDomain{}})
	if err != nil {
		t.Fatalf("NewConstraintModel error: %v", err)
	}
	host, err := m.XBool("host", "Tea")
	if err != nil {
		t.Fatalf("XBool error: %v", err)
	}
	if err := m.Add(host); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	sol := solveUnique(t, m)
	rows := sol.Rows()
	// Coherence carries the flag from Tea to its drinker.
	if rows[0].Extras["host"] != true {
		t.Fatalf("Ann should host: %v", rows[0].Extras)
	}
	if rows[1].Extras["host"] != false {
		t.Fatalf("Ben should not host: %v", rows[1].Extras)
	}
}

func TestPredicateConstraintSolved(t *testing.T) {
	for name, newSession := range sessions {
		t.Run(name, func(t *testing.T) {
			reg := mustRegistry(t, []CategorySpec{
				{Name: "person", Literals: []string{"Ann", "Ben"}},
				{Name: "floor", Literals: []string{"1", "2"}},
			})
			g := NewRelationGrid(reg)
			m, err := NewConstraintModel(newSession(), g)
			if err != nil {
				t.Fatalf("NewConstraintModel error: %v", err)
			}
			err = m.AddConstraint(func(choices ...string) bool {
				a, _ := strconv.Atoi(choices[0])
				b, _ := strconv.Atoi(choices[1])
				return a > b
			}, Term{Literal: "Ann", Over: "floor"}, Term{Literal: "Ben", Over: "floor"})
			if err != nil {
				t.Fatalf("AddConstraint error: %v", err)
			}
			sol := solveUnique(t, m)
			rows := sol.Rows()
			if rows[0].Literals["floor"] != "2" || rows[1].Literals["floor"] != "1" {
				t.Fatalf("rows = %v", rows)
			}
		})
	}
}
