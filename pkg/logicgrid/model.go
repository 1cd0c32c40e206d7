// This file builds the constraint encoding: one solver variable per
// relation cell and per (value, extra-category), plus the structural,
// transitivity, coherence, known-fact, domain and user constraints that
// make a satisfying model a valid puzzle solution.
package logicgrid

import (
	"fmt"

	"github.com/dplepage/puztool/pkg/solver"
)

// ConstraintModel owns the solver variables for one puzzle and produces
// its constraint set. It starts in a building state where user
// constraints may still be added; the first Constraints call freezes it.
// All variables are created once, at construction, and persist for the
// model's lifetime.
type ConstraintModel struct {
	grid  *RelationGrid
	reg   *Registry
	sess  solver.Session
	xcats []ExtraCategory

	// rel holds one boolean variable per canonical relation cell, row
	// major, keyed like the grid's matrices.
	rel map[pairKey][]solver.Expr
	// xb and xi hold the extra-category variables, per extra category and
	// base category, indexed by value. Exactly one of the two maps has an
	// entry for a given extra category, depending on its domain.
	xb map[string]map[string][]solver.Expr
	xi map[string]map[string][]solver.IntExpr

	user   []solver.Expr
	frozen bool
	cache  []solver.Expr
}

// NewConstraintModel creates every variable for the grid and the given
// extra categories on the session. The grid may still be mutated by clue
// encoding afterwards; the model reads it when Constraints is called.
func NewConstraintModel(sess solver.Session, grid *RelationGrid, extras ...ExtraCategory) (*ConstraintModel, error) {
	m := &ConstraintModel{
		grid: grid,
		reg:  grid.Registry(),
		sess: sess,
		rel:  make(map[pairKey][]solver.Expr),
		xb:   make(map[string]map[string][]solver.Expr),
		xi:   make(map[string]map[string][]solver.IntExpr),
	}
	n := m.reg.Size()
	for _, key := range grid.pairs {
		domA, _ := m.reg.Domain(key.a)
		domB, _ := m.reg.Domain(key.b)
		vars := make([]solver.Expr, n*n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				name := domA[i].QualifiedName() + "_" + domB[j].QualifiedName()
				vars[i*n+j] = sess.Bool(name)
			}
		}
		m.rel[key] = vars
	}
	for _, xcat := range extras {
		if xcat.Name == "" {
			return nil, &ConfigurationError{Reason: "extra category name must not be empty"}
		}
		if m.reg.HasCategory(xcat.Name) {
			return nil, &ConfigurationError{Reason: fmt.Sprintf(
				"extra category %q shadows a base category", xcat.Name)}
		}
		if _, dup := m.xb[xcat.Name]; dup {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate extra category %q", xcat.Name)}
		}
		if _, dup := m.xi[xcat.Name]; dup {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("duplicate extra category %q", xcat.Name)}
		}
		if xcat.Domain == nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("extra category %q has no domain", xcat.Name)}
		}
		if err := xcat.Domain.validate(); err != nil {
			return nil, err
		}
		switch d := xcat.Domain.(type) {
		case IntDomain:
			perCat := make(map[string][]solver.IntExpr, len(m.reg.categories))
			for _, cat := range m.reg.categories {
				domain, _ := m.reg.Domain(cat)
				vars := make([]solver.IntExpr, n)
				for i, v := range domain {
					vars[i] = sess.Int(v.QualifiedName()+"_"+xcat.Name, d.Low, d.High)
				}
				perCat[cat] = vars
			}
			m.xi[xcat.Name] = perCat
		case BoolDomain, UniqueBoolDomain:
			perCat := make(map[string][]solver.Expr, len(m.reg.categories))
			for _, cat := range m.reg.categories {
				domain, _ := m.reg.Domain(cat)
				vars := make([]solver.Expr, n)
				for i, v := range domain {
					vars[i] = sess.Bool(v.QualifiedName() + "_" + xcat.Name)
				}
				perCat[cat] = vars
			}
			m.xb[xcat.Name] = perCat
		default:
			return nil, &ConfigurationError{Reason: fmt.Sprintf(
				"extra category %q has unsupported domain %T", xcat.Name, xcat.Domain)}
		}
		m.xcats = append(m.xcats, xcat)
	}
	return m, nil
}

// Session returns the solver session the model builds on, for callers
// composing their own constraint expressions.
func (m *ConstraintModel) Session() solver.Session {
	return m.sess
}

// varFor returns the relation variable linking two resolved values of
// different categories.
func (m *ConstraintModel) varFor(a, b Value) solver.Expr {
	key := pairKey{a: a.Category, b: b.Category}
	row, col := a.Index, b.Index
	if m.grid.order[a.Category] > m.grid.order[b.Category] {
		key = pairKey{a: b.Category, b: a.Category}
		row, col = b.Index, a.Index
	}
	return m.rel[key][row*m.reg.Size()+col]
}

// Var returns the boolean variable that is true when the two literals are
// paired. The literals must resolve to values of different categories.
func (m *ConstraintModel) Var(litA, litB string) (solver.Expr, error) {
	a, err := m.reg.Resolve(litA)
	if err != nil {
		return nil, err
	}
	b, err := m.reg.Resolve(litB)
	if err != nil {
		return nil, err
	}
	if a.Category == b.Category {
		return nil, &ConflictError{Reason: fmt.Sprintf(
			"%s and %s share a category and have no relation variable", a, b)}
	}
	return m.varFor(a, b), nil
}

// XBool returns the boolean extra-category variable attached to a
// literal. The extra category must have a boolean domain.
func (m *ConstraintModel) XBool(xcat, literal string) (solver.Expr, error) {
	v, err := m.reg.Resolve(literal)
	if err != nil {
		return nil, err
	}
	perCat, ok := m.xb[xcat]
	if !ok {
		if _, isInt := m.xi[xcat]; isInt {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("extra category %q is integer-valued", xcat)}
		}
		return nil, &NotFoundError{Literal: xcat}
	}
	return perCat[v.Category][v.Index], nil
}

// XInt returns the integer extra-category variable attached to a literal.
// The extra category must have an integer domain.
func (m *ConstraintModel) XInt(xcat, literal string) (solver.IntExpr, error) {
	v, err := m.reg.Resolve(literal)
	if err != nil {
		return nil, err
	}
	perCat, ok := m.xi[xcat]
	if !ok {
		if _, isBool := m.xb[xcat]; isBool {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("extra category %q is boolean-valued", xcat)}
		}
		return nil, &NotFoundError{Literal: xcat}
	}
	return perCat[v.Category][v.Index], nil
}

// Add records user constraints built against this model's session.
// It fails once the model is frozen.
func (m *ConstraintModel) Add(constraints ...solver.Expr) error {
	if m.frozen {
		return ErrFrozen
	}
	m.user = append(m.user, constraints...)
	return nil
}

// Term names one slot of a predicate constraint: an anchor literal and
// the category whose domain the slot ranges over.
type Term struct {
	Literal string
	Over    string
}

// Predicate decides whether one combination of ranged literals is
// allowed. It receives one literal per Term, in Term order.
type Predicate func(choices ...string) bool

// AddConstraint evaluates the predicate over every combination drawn from
// the terms' ranged categories and forbids each failing combination: the
// relation variables linking every anchor to its chosen literal may not
// all hold at once. This is the general mechanism for clue logic beyond
// exclude/require.
func (m *ConstraintModel) AddConstraint(pred Predicate, terms ...Term) error {
	if m.frozen {
		return ErrFrozen
	}
	if len(terms) == 0 {
		return &ConfigurationError{Reason: "predicate constraint needs at least one term"}
	}
	anchors := make([]Value, len(terms))
	domains := make([][]Value, len(terms))
	for i, term := range terms {
		a, err := m.reg.Resolve(term.Literal)
		if err != nil {
			return err
		}
		domain, err := m.reg.Domain(term.Over)
		if err != nil {
			return err
		}
		if a.Category == term.Over {
			return &ConflictError{Reason: fmt.Sprintf(
				"anchor %s cannot range over its own category %q", a, term.Over)}
		}
		anchors[i] = a
		domains[i] = domain
	}
	choice := make([]int, len(terms))
	literals := make([]string, len(terms))
	for {
		for i, c := range choice {
			literals[i] = domains[i][c].Literal
		}
		if !pred(literals...) {
			vars := make([]solver.Expr, len(terms))
			for i, c := range choice {
				vars[i] = m.varFor(anchors[i], domains[i][c])
			}
			m.user = append(m.user, m.sess.AtMost(len(vars)-1, vars...))
		}
		// Advance the odometer.
		i := len(choice) - 1
		for ; i >= 0; i-- {
			choice[i]++
			if choice[i] < len(domains[i]) {
				break
			}
			choice[i] = 0
		}
		if i < 0 {
			return nil
		}
	}
}

// Constraints computes and caches the full constraint set, freezing the
// model. Order: structural, transitivity, extra-category coherence,
// known-fact pinning, domain constraints, user constraints.
func (m *ConstraintModel) Constraints() []solver.Expr {
	if m.cache != nil {
		return m.cache
	}
	m.frozen = true
	var out []solver.Expr
	out = append(out, m.structural()...)
	out = append(out, m.transitivity()...)
	out = append(out, m.coherence()...)
	out = append(out, m.knownFacts()...)
	out = append(out, m.domains()...)
	out = append(out, m.user...)
	m.cache = out
	return m.cache
}

// structural requires exactly one true cell per row and per column of
// every relation matrix: the pairings are bijections.
func (m *ConstraintModel) structural() []solver.Expr {
	n := m.reg.Size()
	var out []solver.Expr
	for _, key := range m.grid.pairs {
		vars := m.rel[key]
		for i := 0; i < n; i++ {
			row := make([]solver.Expr, n)
			col := make([]solver.Expr, n)
			for j := 0; j < n; j++ {
				row[j] = vars[i*n+j]
				col[j] = vars[j*n+i]
			}
			out = append(out, m.sess.ExactlyOne(row...), m.sess.ExactlyOne(col...))
		}
	}
	return out
}

// transitivity requires pairings to compose across every category triple:
// AB[i,j] and BC[j,k] imply AC[i,k]. One orientation per triple suffices
// once the structural constraints hold.
func (m *ConstraintModel) transitivity() []solver.Expr {
	cats := m.reg.categories
	n := m.reg.Size()
	var out []solver.Expr
	for a := 0; a < len(cats); a++ {
		for b := a + 1; b < len(cats); b++ {
			for c := b + 1; c < len(cats); c++ {
				ab := m.rel[pairKey{a: cats[a], b: cats[b]}]
				bc := m.rel[pairKey{a: cats[b], b: cats[c]}]
				ac := m.rel[pairKey{a: cats[a], b: cats[c]}]
				for i := 0; i < n; i++ {
					for j := 0; j < n; j++ {
						for k := 0; k < n; k++ {
							out = append(out, m.sess.Implies(
								m.sess.And(ab[i*n+j], bc[j*n+k]),
								ac[i*n+k]))
						}
					}
				}
			}
		}
	}
	return out
}

// coherence ties extra-category variables together: when two values are
// paired, their attribute values agree.
func (m *ConstraintModel) coherence() []solver.Expr {
	n := m.reg.Size()
	var out []solver.Expr
	for _, xcat := range m.xcats {
		for _, key := range m.grid.pairs {
			vars := m.rel[key]
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					var eq solver.Expr
					if perCat, ok := m.xi[xcat.Name]; ok {
						eq = m.sess.IntEq(perCat[key.a][i], perCat[key.b][j])
					} else {
						perCat := m.xb[xcat.Name]
						eq = m.sess.Iff(perCat[key.a][i], perCat[key.b][j])
					}
					out = append(out, m.sess.Implies(vars[i*n+j], eq))
				}
			}
		}
	}
	return out
}

// knownFacts pins every non-unknown grid cell to its recorded value. A
// cell two mutators disagreed about pins both polarities, so the
// contradiction surfaces as UNSAT at solve time.
func (m *ConstraintModel) knownFacts() []solver.Expr {
	n := m.reg.Size()
	var out []solver.Expr
	for _, key := range m.grid.pairs {
		vars := m.rel[key]
		mat := m.grid.mats[key]
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				c := mat.at(i, j)
				v := vars[i*n+j]
				if c.conflicted {
					out = append(out, v, m.sess.Not(v))
					continue
				}
				switch c.mark {
				case CellTrue:
					out = append(out, v)
				case CellFalse:
					out = append(out, m.sess.Not(v))
				}
			}
		}
	}
	return out
}

// domains emits the per-domain constraints of every extra category. Range
// bounds are intrinsic to the integer variables; what remains is
// distinctness and unique holders.
func (m *ConstraintModel) domains() []solver.Expr {
	var out []solver.Expr
	for _, xcat := range m.xcats {
		switch d := xcat.Domain.(type) {
		case IntDomain:
			if !d.Distinct {
				continue
			}
			for _, cat := range m.reg.categories {
				out = append(out, m.sess.AllDistinct(m.xi[xcat.Name][cat]...))
			}
		case UniqueBoolDomain:
			for _, cat := range m.reg.categories {
				out = append(out, m.sess.ExactlyOne(m.xb[xcat.Name][cat]...))
			}
		}
	}
	return out
}

// Uniques returns every variable that identifies a solution: all relation
// cell variables and all extra-category variables. Two solutions are
// distinct exactly when they disagree on one of these.
func (m *ConstraintModel) Uniques() ([]solver.Expr, []solver.IntExpr) {
	var bools []solver.Expr
	var ints []solver.IntExpr
	for _, key := range m.grid.pairs {
		bools = append(bools, m.rel[key]...)
	}
	for _, xcat := range m.xcats {
		for _, cat := range m.reg.categories {
			if perCat, ok := m.xi[xcat.Name]; ok {
				ints = append(ints, perCat[cat]...)
			} else {
				bools = append(bools, m.xb[xcat.Name][cat]...)
			}
		}
	}
	return bools, ints
}
