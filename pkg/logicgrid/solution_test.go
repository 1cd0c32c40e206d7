package logicgrid

import (
	"context"
	"strings"
	"testing"

	"github.com/dplepage/puztool/pkg/solver"
)

func solvedThreeByThree(t *testing.T, extras ...ExtraCategory) *Solution {
	t.Helper()
	g := NewRelationGrid(threeByThree(t))
	for _, clue := range [][]string{
		{"Ann", "Tea"}, {"Ben", "Coffee"},
		{"Tea", "Cat"}, {"Coffee", "Dog"},
	} {
		if err := g.Require(clue...); err != nil {
			t.Fatalf("Require(%v) error: %v", clue, err)
		}
	}
	m, err := NewConstraintModel(solver.NewGini(), g, extras...)
	if err != nil {
		t.Fatalf("NewConstraintModel error: %v", err)
	}
	sol, err := NewEnumerator(m).SolveOne(context.Background(), false)
	if err != nil {
		t.Fatalf("SolveOne error: %v", err)
	}
	return sol
}

func TestSolutionRows(t *testing.T) {
	sol := solvedThreeByThree(t)
	rows := sol.Rows()
	want := []map[string]string{
		{"person": "Ann", "drink": "Tea", "pet": "Cat"},
		{"person": "Ben", "drink": "Coffee", "pet": "Dog"},
		{"person": "Cal", "drink": "Juice", "pet": "Fish"},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v", rows)
	}
	for i, w := range want {
		for cat, lit := range w {
			if rows[i].Literals[cat] != lit {
				t.Fatalf("row %d: %v, want %v", i, rows[i].Literals, w)
			}
		}
	}
}

func TestSolutionTable(t *testing.T) {
	sol := solvedThreeByThree(t)
	table := sol.Table()
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("table has %d lines:\n%s", len(lines), table)
	}
	if !strings.HasPrefix(lines[0], "person") {
		t.Fatalf("header = %q", lines[0])
	}
	for _, lit := range []string{"Ann", "Coffee", "Fish"} {
		if !strings.Contains(table, lit) {
			t.Fatalf("table missing %q:\n%s", lit, table)
		}
	}
}

func TestSolutionGridRoundTrip(t *testing.T) {
	sol := solvedThreeByThree(t)
	grid, err := sol.Grid()
	if err != nil {
		t.Fatalf("Grid error: %v", err)
	}
	// Every base-category cell is decided and agrees with the snapshot.
	cats := []string{"person", "drink", "pet"}
	for a := 0; a < len(cats); a++ {
		for b := a + 1; b < len(cats); b++ {
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					state, err := grid.Cell(cats[a], i, cats[b], j)
					if err != nil {
						t.Fatalf("Cell error: %v", err)
					}
					if state == CellUnknown {
						t.Fatalf("%s[%d]/%s[%d] left unknown", cats[a], i, cats[b], j)
					}
					paired := sol.paired(cats[a], i, cats[b], j)
					if paired != (state == CellTrue) {
						t.Fatalf("%s[%d]/%s[%d]: grid %v, solution %v", cats[a], i, cats[b], j, state, paired)
					}
				}
			}
		}
	}
}

func mustLiteral(t *testing.T, g *RelationGrid, cat string, idx int) string {
	t.Helper()
	domain, err := g.Registry().Domain(cat)
	if err != nil {
		t.Fatalf("Domain error: %v", err)
	}
	return domain[idx].Literal
}

func TestSolutionGridMangledDuplicates(t *testing.T) {
	sol := solvedThreeByThree(t, ExtraCategory{Name: "tall", Domain: BoolDomain{}})
	grid, err := sol.Grid()
	if err != nil {
		t.Fatalf("Grid error: %v", err)
	}
	domain, err := grid.Registry().Domain("tall")
	if err != nil {
		t.Fatalf("Domain error: %v", err)
	}
	// Three boolean values over two spellings always repeat, so at least
	// one literal carries a mangling prefix, and all three are distinct.
	seen := make(map[string]bool)
	var mangled bool
	for _, v := range domain {
		if seen[v.Literal] {
			t.Fatalf("duplicate literal %q in display registry", v.Literal)
		}
		seen[v.Literal] = true
		if strings.HasPrefix(v.Literal, "_") {
			mangled = true
		}
	}
	if !mangled {
		t.Fatalf("expected a mangled literal, got %v", domain)
	}
	// The display grid is a real grid, so it exports, mangled literals
	// included (underscores survive sanitizing).
	if !strings.Contains(grid.ExportLink(), "_") {
		t.Fatalf("export link missing mangled literals: %s", grid.ExportLink())
	}
}

func TestSolutionGridWithIntExtras(t *testing.T) {
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
	sol, err := NewEnumerator(m).SolveOne(context.Background(), true)
	if err != nil {
		t.Fatalf("SolveOne error: %v", err)
	}
	grid, err := sol.Grid()
	if err != nil {
		t.Fatalf("Grid error: %v", err)
	}
	state, err := grid.Cell("person", 0, "age", 0)
	if err != nil {
		t.Fatalf("Cell error: %v", err)
	}
	if state != CellTrue {
		t.Fatalf("Ann/30 = %v, want true", state)
	}
	if got := mustLiteral(t, grid, "age", 0); got != "30" {
		t.Fatalf("age[0] = %q, want 30", got)
	}
}
