// This file builds the compact coordinate-encoded export string consumed
// by the jsingler.de logic grid visualizer, and the link wrapping it.
package logicgrid

import (
	"fmt"
	"regexp"
	"strings"
)

const exportBase = "http://www.jsingler.de/apps/logikloeser/?language=en#(%s)"

// The visualizer's own escaping is odd, so literals are sanitized the
// blunt way: any character that would break the link is stripped, not
// escaped. Word characters (letters, digits, underscore) survive.
var nonWord = regexp.MustCompile(`\W+`)

func sanitizeLiteral(s string) string {
	return nonWord.ReplaceAllString(s, "")
}

// encl wraps a comma-joined list in the visualizer's !(...) group syntax.
func encl(items []string) string {
	return "!(" + strings.Join(items, ",") + ")"
}

// categoryLetter maps the i-th category to its export letter.
func categoryLetter(i int) string {
	return string(rune('a' + i))
}

// encodedCells lists every cell in the given state as "<la><i><lb><j>",
// with categories lettered in registration order.
func (g *RelationGrid) encodedCells(state Tristate) []string {
	letter := make(map[string]string, len(g.order))
	for cat, i := range g.order {
		letter[cat] = categoryLetter(i)
	}
	var out []string
	for _, key := range g.pairs {
		m := g.mats[key]
		for i := 0; i < m.n; i++ {
			for j := 0; j < m.n; j++ {
				if m.at(i, j).mark == state {
					out = append(out, fmt.Sprintf("%s%d%s%d", letter[key.a], i, letter[key.b], j))
				}
			}
		}
	}
	return out
}

// ExportParams renders the grid as the visualizer's "key:value,..."
// parameter string: mode flags, category/item counts, the sanitized
// literal lists, and the known-false ("n") and known-true ("p") cells.
func (g *RelationGrid) ExportParams() string {
	cats := g.reg.Categories()
	items := make([]string, 0, len(cats))
	for _, cat := range cats {
		domain, _ := g.reg.Domain(cat)
		literals := make([]string, len(domain))
		for i, v := range domain {
			literals[i] = sanitizeLiteral(v.Literal)
		}
		items = append(items, encl(literals))
	}
	parts := []string{
		"at:s",
		"ms:s",
		fmt.Sprintf("nc:%d", len(cats)),
		fmt.Sprintf("ni:%d", g.reg.Size()),
		"v:0",
		"items:" + encl(items),
		"n:" + encl(g.encodedCells(CellFalse)),
		"p:" + encl(g.encodedCells(CellTrue)),
	}
	return strings.Join(parts, ",")
}

// ExportLink returns a URL that displays this grid on jsingler.de.
func (g *RelationGrid) ExportLink() string {
	return fmt.Sprintf(exportBase, g.ExportParams())
}
