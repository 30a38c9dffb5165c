package convert

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rohmanhakim/richtext-converter/internal/document"
	"github.com/rohmanhakim/richtext-converter/internal/quarantine"
	"github.com/rohmanhakim/richtext-converter/internal/report"
	"github.com/rohmanhakim/richtext-converter/internal/walker"
	"golang.org/x/net/html"
)

// tableNestingOverhead accounts for the elements between a table and
// its cell content: table > (section) > tr > td.
const tableNestingOverhead = 4

// cellConsumed names the attributes the table converter accounts for
// itself on td/th elements.
var cellConsumed = map[string]struct{}{
	"class":   {},
	"colspan": {},
	"rowspan": {},
}

// convertTable converts one table element into a rectangular grid,
// re-entering the block-conversion entry point for every cell so cell
// content follows exactly the same semantics as top-level content,
// nested tables included.
func (c Converter) convertTable(el walker.Element, remaining int, rec report.AuditSink) (document.Block, error) {
	cls := c.blockRules.Classify(el.Node)

	attrMap, _, err := c.extractAttrs(el.Node, el.Path, blockConsumed, cls.RuleMatched, rec)
	if err != nil {
		return document.Block{}, err
	}

	typ := document.BlockTable
	if cls.RuleMatched {
		// Project rules may refine the table into a custom grid type;
		// the row structure is kept either way.
		typ = cls.Type
		for k, v := range cls.Attrs {
			attrMap.Set(k, v)
		}
	}

	cellBudget := remaining - tableNestingOverhead
	if cellBudget <= 0 {
		return document.Block{}, &ConversionError{
			Message: "table nesting exceeds remaining depth budget",
			Cause:   ErrCauseStructuralLimit,
		}
	}

	if caption := captionText(el.Node); caption != "" {
		attrMap.Set("caption", caption)
	}

	trs, err := c.tableRows(el.Node, el.Path, rec)
	if err != nil {
		return document.Block{}, err
	}

	var rows []document.TableRow
	rowPaths := make([][]int, 0, len(trs))
	cellCount := 0

	for _, tr := range trs {
		rowAttrs, _, err := c.extractAttrs(tr.node, tr.path, blockConsumed, false, rec)
		if err != nil {
			return document.Block{}, err
		}
		row := document.TableRow{Attrs: rowAttrs}

		cells, err := c.rowCells(tr.node, tr.path, rec)
		if err != nil {
			return document.Block{}, err
		}
		for _, cellNode := range cells {
			cellCount++
			if cellCount > c.bundle.MaxTableCells() {
				return document.Block{}, &ConversionError{
					Message: fmt.Sprintf("table exceeds %d cells", c.bundle.MaxTableCells()),
					Cause:   ErrCauseStructuralLimit,
				}
			}

			cell, err := c.convertCell(cellNode.node, cellNode.path, cellBudget, rec)
			if err != nil {
				return document.Block{}, err
			}
			row.Cells = append(row.Cells, cell)
		}

		rows = append(rows, row)
		rowPaths = append(rowPaths, tr.path)
	}

	rows = padRows(rows, rowPaths, rec)

	return document.Block{Type: typ, Attrs: attrMap, Rows: rows}, nil
}

func (c Converter) convertCell(n *html.Node, cellPath []int, budget int, rec report.AuditSink) (document.TableCell, error) {
	cellAttrs, _, err := c.extractAttrs(n, cellPath, cellConsumed, false, rec)
	if err != nil {
		return document.TableCell{}, err
	}

	cell := document.TableCell{
		ColSpan: spanValue(n, "colspan", cellPath, rec),
		RowSpan: spanValue(n, "rowspan", cellPath, rec),
		Header:  n.Data == "th",
		Attrs:   cellAttrs,
	}

	blocks, err := c.convertFragment(childNodes(n), budget, rec)
	if err != nil {
		return document.TableCell{}, err
	}
	cell.Blocks = blocks
	return cell, nil
}

// padRows enforces the rectangular-grid invariant: every row of a
// converted table holds the same number of cells, shorter rows padded
// with empty paragraph cells.
func padRows(rows []document.TableRow, rowPaths [][]int, rec report.AuditSink) []document.TableRow {
	width := 0
	for _, r := range rows {
		if len(r.Cells) > width {
			width = len(r.Cells)
		}
	}
	for i := range rows {
		if len(rows[i].Cells) == width {
			continue
		}
		rec.RecordNormalization(report.EventIrregularTableGrid, rowPaths[i],
			fmt.Sprintf("row %d padded from %d to %d cells", i, len(rows[i].Cells), width))
		for len(rows[i].Cells) < width {
			rows[i].Cells = append(rows[i].Cells, document.EmptyCell())
		}
	}
	return rows
}

// positioned pairs a structural table node with its child-index trail,
// so audits raised inside the grid point at the actual node.
type positioned struct {
	node *html.Node
	path []int
}

// tableRows collects tr elements from the table itself and from its
// thead/tbody/tfoot sections, tolerating both shapes in one table.
// The parser keeps denied tags such as <script> as direct children of
// the table, so every element that is not row structure goes through
// interceptStray rather than being dropped on the floor.
func (c Converter) tableRows(table *html.Node, tablePath []int, rec report.AuditSink) ([]positioned, error) {
	var out []positioned
	i := 0
	for n := table.FirstChild; n != nil; n = n.NextSibling {
		path := extendPath(tablePath, i)
		i++
		if n.Type != html.ElementNode {
			continue
		}
		switch n.Data {
		case "tr":
			out = append(out, positioned{node: n, path: path})
		case "thead", "tbody", "tfoot":
			j := 0
			for s := n.FirstChild; s != nil; s = s.NextSibling {
				sectionPath := extendPath(path, j)
				j++
				if s.Type != html.ElementNode {
					continue
				}
				if s.Data == "tr" {
					out = append(out, positioned{node: s, path: sectionPath})
					continue
				}
				if err := c.interceptStray(s, sectionPath, rec); err != nil {
					return nil, err
				}
			}
		case "caption":
			// Consumed into the table attrs by captionText.
		default:
			if err := c.interceptStray(n, path, rec); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (c Converter) rowCells(tr *html.Node, rowPath []int, rec report.AuditSink) ([]positioned, error) {
	var out []positioned
	i := 0
	for n := tr.FirstChild; n != nil; n = n.NextSibling {
		path := extendPath(rowPath, i)
		i++
		if n.Type != html.ElementNode {
			continue
		}
		if n.Data == "td" || n.Data == "th" {
			out = append(out, positioned{node: n, path: path})
			continue
		}
		if err := c.interceptStray(n, path, rec); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// interceptStray handles an element that has no place in the grid:
// denied tags are quarantined exactly as they would be in the normal
// event stream, anything else leaves a normalization entry.
func (c Converter) interceptStray(n *html.Node, path []int, rec report.AuditSink) error {
	if c.denylist.Denied(n.Data) {
		rec.RecordQuarantine(quarantine.CaptureNode(n, path, quarantine.ReasonDeniedTag))
		if c.bundle.StrictQuarantine() {
			return &ConversionError{
				Message: "denied tag <" + n.Data + "> in table structure",
				Cause:   ErrCauseStrictQuarantine,
			}
		}
		return nil
	}
	rec.RecordNormalization(report.EventMalformedNesting, path,
		fmt.Sprintf("element <%s> dropped from table structure", n.Data))
	return nil
}

func extendPath(base []int, i int) []int {
	return append(append([]int(nil), base...), i)
}

// spanValue parses colspan/rowspan with default 1. A malformed span is
// normalized to 1 and logged; the raw value stays visible in the audit
// trail.
func spanValue(n *html.Node, key string, tablePath []int, rec report.AuditSink) int {
	raw := attrValue(n, key)
	if raw == "" {
		return 1
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 1 {
		rec.RecordNormalization(report.EventIrregularTableGrid, tablePath,
			fmt.Sprintf("invalid %s %q normalized to 1", key, raw))
		return 1
	}
	return v
}

func captionText(table *html.Node) string {
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "caption" {
			return strings.TrimSpace(walker.CollapseWhitespace(textContent(c)))
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
