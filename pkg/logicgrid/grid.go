// This file defines the relation grid: one tri-state N×N matrix per
// category pair, recording which pairings are known true, known false, or
// still open. A RelationMatrix canonicalizes the category order of its
// addresses, so the two directional views of a pair are the same cells by
// construction and transpose consistency cannot drift.
package logicgrid

import "fmt"

// Tristate is the state of one relation cell.
type Tristate uint8

const (
	CellUnknown Tristate = iota
	CellTrue
	CellFalse
)

func (t Tristate) String() string {
	switch t {
	case CellTrue:
		return "true"
	case CellFalse:
		return "false"
	default:
		return "unknown"
	}
}

// cell records the latest mark plus whether two mutators ever disagreed
// about it. Conflicted cells pin both polarities at solve time, so a
// contradictory grid surfaces as UNSAT instead of being silently
// overwritten or eagerly rejected (which could not see contradictions
// introduced via transitive closure anyway).
type cell struct {
	mark       Tristate
	conflicted bool
}

func (c *cell) set(v Tristate) {
	if c.mark != CellUnknown && c.mark != v {
		c.conflicted = true
	}
	c.mark = v
}

// pairKey identifies an unordered category pair in canonical order: a
// precedes b in registry order.
type pairKey struct {
	a, b string
}

// RelationMatrix is the N×N tri-state matrix between two categories. Rows
// are indexed by the canonical first category, columns by the second;
// Get/set accept either orientation and translate.
type RelationMatrix struct {
	rowCat, colCat string
	n              int
	cells          []cell
}

func (m *RelationMatrix) at(row, col int) *cell {
	return &m.cells[row*m.n+col]
}

// coords translates an address in either orientation to canonical
// row/column indices.
func (m *RelationMatrix) coords(cat1 string, idx1 int, cat2 string, idx2 int) (int, int, error) {
	switch {
	case cat1 == m.rowCat && cat2 == m.colCat:
		return idx1, idx2, nil
	case cat1 == m.colCat && cat2 == m.rowCat:
		return idx2, idx1, nil
	}
	return 0, 0, &ConfigurationError{Reason: fmt.Sprintf(
		"matrix %s/%s does not relate %s and %s", m.rowCat, m.colCat, cat1, cat2)}
}

// Get returns the cell state for the pairing (cat1[idx1], cat2[idx2]).
func (m *RelationMatrix) Get(cat1 string, idx1 int, cat2 string, idx2 int) (Tristate, error) {
	row, col, err := m.coords(cat1, idx1, cat2, idx2)
	if err != nil {
		return CellUnknown, err
	}
	return m.at(row, col).mark, nil
}

// RelationGrid holds the relation matrices for every category pair and
// the clue-encoding mutators. It is built once, mutated by clue encoding,
// and then read by the constraint model.
type RelationGrid struct {
	reg   *Registry
	order map[string]int
	pairs []pairKey
	mats  map[pairKey]*RelationMatrix
}

// NewRelationGrid builds an all-unknown grid over the registry's
// categories.
func NewRelationGrid(reg *Registry) *RelationGrid {
	cats := reg.Categories()
	g := &RelationGrid{
		reg:   reg,
		order: make(map[string]int, len(cats)),
		mats:  make(map[pairKey]*RelationMatrix),
	}
	for i, cat := range cats {
		g.order[cat] = i
	}
	n := reg.Size()
	for i := 0; i < len(cats); i++ {
		for j := i + 1; j < len(cats); j++ {
			key := pairKey{a: cats[i], b: cats[j]}
			g.pairs = append(g.pairs, key)
			g.mats[key] = &RelationMatrix{
				rowCat: key.a,
				colCat: key.b,
				n:      n,
				cells:  make([]cell, n*n),
			}
		}
	}
	return g
}

// Registry returns the registry the grid was built over.
func (g *RelationGrid) Registry() *Registry {
	return g.reg
}

// Matrix returns the relation matrix between two categories, in either
// order.
func (g *RelationGrid) Matrix(cat1, cat2 string) (*RelationMatrix, error) {
	key := pairKey{a: cat1, b: cat2}
	if g.order[cat1] > g.order[cat2] {
		key = pairKey{a: cat2, b: cat1}
	}
	m, ok := g.mats[key]
	if !ok {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("no relation between %q and %q", cat1, cat2)}
	}
	return m, nil
}

// Cell returns the state of the pairing (cat1[idx1], cat2[idx2]).
func (g *RelationGrid) Cell(cat1 string, idx1 int, cat2 string, idx2 int) (Tristate, error) {
	m, err := g.Matrix(cat1, cat2)
	if err != nil {
		return CellUnknown, err
	}
	return m.Get(cat1, idx1, cat2, idx2)
}

func (g *RelationGrid) setCell(a, b Value, v Tristate) {
	m, err := g.Matrix(a.Category, b.Category)
	if err != nil {
		// Both values came from the registry; missing matrices cannot
		// happen outside package bugs.
		panic(err)
	}
	row, col, _ := m.coords(a.Category, a.Index, b.Category, b.Index)
	m.at(row, col).set(v)
}

// Exclude records that the given values are mutually exclusive: every
// cross-category pairing among them is marked false. Same-category pairs
// are skipped.
func (g *RelationGrid) Exclude(literals ...string) error {
	values, err := g.reg.resolveAll(literals)
	if err != nil {
		return err
	}
	for i := 0; i < len(values); i++ {
		for j := i + 1; j < len(values); j++ {
			if values[i].Category == values[j].Category {
				continue
			}
			g.setCell(values[i], values[j], CellFalse)
		}
	}
	return nil
}

// Require records that the given values must go together: every pairing
// among them is marked true. Two values from the same category cannot go
// together, so that is a ConflictError.
func (g *RelationGrid) Require(literals ...string) error {
	values, err := g.reg.resolveAll(literals)
	if err != nil {
		return err
	}
	for i := 0; i < len(values); i++ {
		for j := i + 1; j < len(values); j++ {
			if values[i].Category == values[j].Category {
				return &ConflictError{Reason: fmt.Sprintf(
					"cannot require both %s and %s", values[i], values[j])}
			}
			g.setCell(values[i], values[j], CellTrue)
		}
	}
	return nil
}

// RequireOneOf records that the anchor goes with one of the options. The
// options must all belong to one category different from the anchor's.
// Cells outside the option set in the anchor's row are marked false;
// option cells keep their prior value; a candidate is never forced true.
func (g *RelationGrid) RequireOneOf(anchor string, options ...string) error {
	if len(options) == 0 {
		return &ConflictError{Reason: "requireOneOf needs at least one option"}
	}
	av, err := g.reg.Resolve(anchor)
	if err != nil {
		return err
	}
	optValues, err := g.reg.resolveAll(options)
	if err != nil {
		return err
	}
	optCat := optValues[0].Category
	keep := make(map[int]bool, len(optValues))
	for _, v := range optValues {
		if v.Category != optCat {
			return &ConflictError{Reason: "requireOneOf options must be in a single category"}
		}
		keep[v.Index] = true
	}
	if optCat == av.Category {
		return &ConflictError{Reason: fmt.Sprintf(
			"requireOneOf options must differ in category from anchor %s", av)}
	}
	m, err := g.Matrix(av.Category, optCat)
	if err != nil {
		return err
	}
	for j := 0; j < m.n; j++ {
		if keep[j] {
			continue
		}
		row, col, _ := m.coords(av.Category, av.Index, optCat, j)
		m.at(row, col).set(CellFalse)
	}
	return nil
}

// conflicted reports whether any mutator disagreed about the given cell.
func (g *RelationGrid) conflicted(key pairKey, row, col int) bool {
	return g.mats[key].at(row, col).conflicted
}
