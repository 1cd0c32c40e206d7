// This file reconstructs caller-facing views from a raw solver model: the
// row table anchored on the first category, a rebuilt display grid for
// the visualizer, and a rendered text table.
package logicgrid

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dplepage/puztool/pkg/solver"
)

// Row is one line of a solved puzzle: the pairing of a first-category
// value with its partner literal in every other category, plus its
// extra-category values (int or bool).
type Row struct {
	Literals map[string]string
	Extras   map[string]any
}

// Solution is an immutable snapshot of one satisfying assignment. It
// copies everything it needs out of the solver model at creation and
// never touches the live grid or constraint model.
type Solution struct {
	reg   *Registry
	order map[string]int
	xcats []ExtraCategory
	pairs []pairKey
	rel   map[pairKey][]bool
	// extras maps extra category -> base category -> per-index value.
	extras map[string]map[string][]any

	rows []Row
}

func newSolution(m *ConstraintModel, mdl solver.Model) *Solution {
	s := &Solution{
		reg:    m.reg,
		order:  m.grid.order,
		xcats:  m.xcats,
		pairs:  m.grid.pairs,
		rel:    make(map[pairKey][]bool, len(m.rel)),
		extras: make(map[string]map[string][]any, len(m.xcats)),
	}
	for key, vars := range m.rel {
		vals := make([]bool, len(vars))
		for i, v := range vars {
			vals[i] = mdl.Bool(v)
		}
		s.rel[key] = vals
	}
	for _, xcat := range m.xcats {
		perCat := make(map[string][]any, len(m.reg.categories))
		for _, cat := range m.reg.categories {
			vals := make([]any, m.reg.Size())
			if intVars, ok := m.xi[xcat.Name]; ok {
				for i, v := range intVars[cat] {
					vals[i] = mdl.Int(v)
				}
			} else {
				for i, v := range m.xb[xcat.Name][cat] {
					vals[i] = mdl.Bool(v)
				}
			}
			perCat[cat] = vals
		}
		s.extras[xcat.Name] = perCat
	}
	return s
}

// paired reports whether the snapshot pairs cat1[idx1] with cat2[idx2].
func (s *Solution) paired(cat1 string, idx1 int, cat2 string, idx2 int) bool {
	key := pairKey{a: cat1, b: cat2}
	row, col := idx1, idx2
	if s.order[cat1] > s.order[cat2] {
		key = pairKey{a: cat2, b: cat1}
		row, col = idx2, idx1
	}
	return s.rel[key][row*s.reg.Size()+col]
}

// Rows returns one row per first-category value, in domain order. Each
// partner literal is found by scanning the relevant matrix for the true
// cell.
func (s *Solution) Rows() []Row {
	if s.rows != nil {
		return s.rows
	}
	cats := s.reg.categories
	first, _ := s.reg.Domain(cats[0])
	rows := make([]Row, 0, len(first))
	for _, anchor := range first {
		row := Row{
			Literals: map[string]string{cats[0]: anchor.Literal},
			Extras:   make(map[string]any, len(s.xcats)),
		}
		for _, cat := range cats[1:] {
			domain, _ := s.reg.Domain(cat)
			for _, v := range domain {
				if s.paired(cats[0], anchor.Index, cat, v.Index) {
					row.Literals[cat] = v.Literal
					break
				}
			}
		}
		for _, xcat := range s.xcats {
			row.Extras[xcat.Name] = s.extras[xcat.Name][cats[0]][anchor.Index]
		}
		rows = append(rows, row)
	}
	s.rows = rows
	return s.rows
}

func formatExtra(v any) string {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// Grid rebuilds a display RelationGrid from Rows, with extra categories
// promoted to real categories so the visualizer can show them. Duplicate
// literals within a column are mangled with '_' prefixes until unique,
// since the display registry insists on distinct literals even where
// attribute values repeat.
func (s *Solution) Grid() (*RelationGrid, error) {
	rows := s.Rows()
	cats := s.reg.categories
	cols := append(append([]string(nil), cats...), xcatNames(s.xcats)...)

	// Column-stringified row values, duplicates mangled.
	cells := make([]map[string]string, len(rows))
	for i := range rows {
		cells[i] = make(map[string]string, len(cols))
	}
	for _, col := range cols {
		seen := make(map[string]bool, len(rows))
		for i, row := range rows {
			var val string
			if lit, ok := row.Literals[col]; ok {
				val = lit
			} else {
				val = formatExtra(row.Extras[col])
			}
			for seen[val] {
				val = "_" + val
			}
			seen[val] = true
			cells[i][col] = val
		}
	}

	specs := make([]CategorySpec, 0, len(cols))
	for _, cat := range cats {
		domain, _ := s.reg.Domain(cat)
		literals := make([]string, len(domain))
		for i, v := range domain {
			literals[i] = v.Literal
		}
		specs = append(specs, CategorySpec{Name: cat, Literals: literals})
	}
	for _, xcat := range s.xcats {
		literals := make([]string, len(rows))
		for i := range rows {
			literals[i] = cells[i][xcat.Name]
		}
		specs = append(specs, CategorySpec{Name: xcat.Name, Literals: literals})
	}

	reg, err := NewRegistry(specs)
	if err != nil {
		return nil, err
	}
	grid := NewRelationGrid(reg)
	for _, key := range grid.pairs {
		mat := grid.mats[key]
		for i := range mat.cells {
			mat.cells[i].mark = CellFalse
		}
	}
	for i := range rows {
		for a := 0; a < len(cols); a++ {
			for b := a + 1; b < len(cols); b++ {
				va, err := reg.ResolveIn(cells[i][cols[a]], cols[a])
				if err != nil {
					return nil, err
				}
				vb, err := reg.ResolveIn(cells[i][cols[b]], cols[b])
				if err != nil {
					return nil, err
				}
				mat, err := grid.Matrix(va.Category, vb.Category)
				if err != nil {
					return nil, err
				}
				r, c, _ := mat.coords(va.Category, va.Index, vb.Category, vb.Index)
				mat.at(r, c).mark = CellTrue
			}
		}
	}
	return grid, nil
}

// Table renders Rows as a text table whose columns are the categories
// followed by the extra categories.
func (s *Solution) Table() string {
	cats := s.reg.categories
	cols := append(append([]string(nil), cats...), xcatNames(s.xcats)...)
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(cols, "\t"))
	for _, row := range s.Rows() {
		fields := make([]string, len(cols))
		for i, col := range cols {
			if lit, ok := row.Literals[col]; ok {
				fields[i] = lit
			} else {
				fields[i] = formatExtra(row.Extras[col])
			}
		}
		fmt.Fprintln(w, strings.Join(fields, "\t"))
	}
	w.Flush()
	return b.String()
}

func xcatNames(xcats []ExtraCategory) []string {
	names := make([]string, len(xcats))
	for i, x := range xcats {
		names[i] = x.Name
	}
	return names
}
