package convert_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/richtext-converter/internal/config"
	"github.com/rohmanhakim/richtext-converter/internal/convert"
	"github.com/rohmanhakim/richtext-converter/internal/document"
	"github.com/rohmanhakim/richtext-converter/internal/quarantine"
	"github.com/rohmanhakim/richtext-converter/internal/report"
)

func cellText(t *testing.T, cell document.TableCell) string {
	t.Helper()

	require.NotEmpty(t, cell.Blocks)
	run, ok := cell.Blocks[0].Children[0].(document.TextRun)
	require.True(t, ok)
	return run.Text
}

func TestConvert_SimpleTable(t *testing.T) {
	// Arrange
	conv := defaultConverter(t)

	// Act
	res := mustConvert(t, conv,
		`<table><tr><th>Key</th><th>Value</th></tr><tr><td>a</td><td>b</td></tr></table>`)

	// Assert
	blk := onlyBlock(t, res)
	assert.Equal(t, document.BlockTable, blk.Type)
	require.Len(t, blk.Rows, 2)

	header := blk.Rows[0]
	require.Len(t, header.Cells, 2)
	assert.True(t, header.Cells[0].Header)
	assert.Equal(t, "Key", cellText(t, header.Cells[0]))

	data := blk.Rows[1]
	assert.False(t, data.Cells[0].Header)
	assert.Equal(t, "a", cellText(t, data.Cells[0]))
	assert.Equal(t, 1, data.Cells[0].ColSpan)
	assert.Equal(t, 1, data.Cells[0].RowSpan)
}

func TestConvert_RaggedTablePaddedRectangular(t *testing.T) {
	// Arrange
	conv := defaultConverter(t)

	// Act
	res := mustConvert(t, conv,
		`<table><tr><td>a</td><td>b</td><td>c</td></tr><tr><td>d</td><td>e</td></tr></table>`)

	// Assert
	blk := onlyBlock(t, res)
	require.Len(t, blk.Rows, 2)
	assert.Len(t, blk.Rows[0].Cells, 3)
	require.Len(t, blk.Rows[1].Cells, 3, "shorter rows are padded to the widest row")

	padded := blk.Rows[1].Cells[2]
	require.Len(t, padded.Blocks, 1)
	assert.Equal(t, document.BlockParagraph, padded.Blocks[0].Type)
	assert.Empty(t, padded.Blocks[0].Children)

	var kinds []report.EventKind
	for _, n := range res.Normalizations {
		kinds = append(kinds, n.Kind)
	}
	assert.Contains(t, kinds, report.EventIrregularTableGrid)
}

func TestConvert_TableSectionsAndSpans(t *testing.T) {
	// Arrange
	conv := defaultConverter(t)

	// Act
	res := mustConvert(t, conv, `<table>
		<thead><tr><th colspan="2">Header</th></tr></thead>
		<tbody><tr><td rowspan="2">tall</td><td>x</td></tr></tbody>
	</table>`)

	// Assert
	blk := onlyBlock(t, res)
	require.Len(t, blk.Rows, 2, "rows collect from thead and tbody alike")
	assert.Equal(t, 2, blk.Rows[0].Cells[0].ColSpan)
	assert.Equal(t, 2, blk.Rows[1].Cells[0].RowSpan)
}

func TestConvert_InvalidSpanNormalizedToOne(t *testing.T) {
	// Arrange
	conv := defaultConverter(t)

	// Act
	res := mustConvert(t, conv, `<table><tr><td colspan="banana">x</td></tr></table>`)

	// Assert
	blk := onlyBlock(t, res)
	assert.Equal(t, 1, blk.Rows[0].Cells[0].ColSpan)

	var kinds []report.EventKind
	for _, n := range res.Normalizations {
		kinds = append(kinds, n.Kind)
	}
	assert.Contains(t, kinds, report.EventIrregularTableGrid, "the malformed span leaves an audit trail")
}

func TestConvert_TableCaption(t *testing.T) {
	// Arrange
	conv := defaultConverter(t)

	// Act
	res := mustConvert(t, conv,
		`<table><caption> Quarterly results </caption><tr><td>x</td></tr></table>`)

	// Assert
	blk := onlyBlock(t, res)
	assert.Equal(t, "Quarterly results", blk.Attrs.String("caption"))
	require.Len(t, blk.Rows, 1, "the caption does not become a row")
}

func TestConvert_CellContentFullSemantics(t *testing.T) {
	// Arrange: cell content must convert exactly like top-level
	// content, marks and classification included.
	conv := defaultConverter(t)

	// Act
	res := mustConvert(t, conv,
		`<table><tr><td><p>plain <b>bold</b></p><ul><li>item</li></ul></td></tr></table>`)

	// Assert
	blk := onlyBlock(t, res)
	cell := blk.Rows[0].Cells[0]
	require.Len(t, cell.Blocks, 2)
	assert.Equal(t, document.BlockParagraph, cell.Blocks[0].Type)
	assert.Equal(t, document.BlockList, cell.Blocks[1].Type)

	bold, ok := cell.Blocks[0].Children[1].(document.TextRun)
	require.True(t, ok)
	assert.Equal(t, []document.Mark{{Kind: "bold"}}, bold.Marks)
}

func TestConvert_NestedTable(t *testing.T) {
	// Arrange
	conv := defaultConverter(t)

	// Act
	res := mustConvert(t, conv,
		`<table><tr><td><table><tr><td>inner</td></tr></table></td></tr></table>`)

	// Assert
	outer := onlyBlock(t, res)
	cell := outer.Rows[0].Cells[0]
	require.Len(t, cell.Blocks, 1)

	inner := cell.Blocks[0]
	assert.Equal(t, document.BlockTable, inner.Type)
	assert.Equal(t, "inner", cellText(t, inner.Rows[0].Cells[0]))
}

func TestConvert_NestedTableDepthBudgetShared(t *testing.T) {
	// Arrange: the outer table consumes nesting budget; a deep inner
	// table must exhaust it instead of recursing unbounded.
	conv := converterWith(t, func(b *config.Bundle) *config.Bundle {
		return b.WithMaxDepth(6)
	})

	// Act
	res := conv.Convert(parseDoc(t,
		`<table><tr><td><table><tr><td><table><tr><td>deep</td></tr></table></td></tr></table></td></tr></table>`))

	// Assert
	assert.Equal(t, convert.StatusFailure, res.Status)
	assert.Nil(t, res.Document)

	var convErr *convert.ConversionError
	require.True(t, errors.As(res.Failure, &convErr))
	assert.Equal(t, convert.ErrCauseStructuralLimit, convErr.Cause)
}

func TestConvert_TableCellLimit(t *testing.T) {
	// Arrange
	conv := converterWith(t, func(b *config.Bundle) *config.Bundle {
		return b.WithMaxTableCells(2)
	})

	// Act
	res := conv.Convert(parseDoc(t,
		`<table><tr><td>a</td><td>b</td><td>c</td></tr></table>`))

	// Assert
	assert.Equal(t, convert.StatusFailure, res.Status)
	var convErr *convert.ConversionError
	require.True(t, errors.As(res.Failure, &convErr))
	assert.Equal(t, convert.ErrCauseStructuralLimit, convErr.Cause)
}

func TestConvert_ScriptInsideTableStructureQuarantined(t *testing.T) {
	// Arrange: the parser keeps <script> as a direct child of <table>,
	// so the grid collection must consult the denylist itself.
	conv := defaultConverter(t)

	// Act
	res := mustConvert(t, conv,
		`<table><script>alert(1)</script><tr><td>x</td></tr></table>`)

	// Assert
	require.Len(t, res.Quarantined, 1)
	entry := res.Quarantined[0]
	assert.Equal(t, quarantine.ReasonDeniedTag, entry.Reason)
	assert.Contains(t, entry.RawMarkup, "alert(1)")
	assert.NotEmpty(t, entry.Hash)

	blk := onlyBlock(t, res)
	require.Len(t, blk.Rows, 1, "the grid is unaffected by the excised script")
	assert.Equal(t, "x", cellText(t, blk.Rows[0].Cells[0]))
}

func TestConvert_ScriptInsideTableStructureStrict(t *testing.T) {
	// Arrange
	conv := converterWith(t, func(b *config.Bundle) *config.Bundle {
		return b.WithStrictQuarantine(true)
	})

	// Act
	res := conv.Convert(parseDoc(t,
		`<table><script>alert(1)</script><tr><td>x</td></tr></table>`))

	// Assert
	assert.Equal(t, convert.StatusFailure, res.Status)
	assert.Nil(t, res.Document)
	require.Len(t, res.Quarantined, 1, "the finding is kept for diagnosis")

	var convErr *convert.ConversionError
	require.True(t, errors.As(res.Failure, &convErr))
	assert.Equal(t, convert.ErrCauseStrictQuarantine, convErr.Cause)
}

func TestConvert_StrayElementInTableStructureAudited(t *testing.T) {
	// Arrange: an element that is neither row structure nor denied must
	// still leave a trace when the grid collection drops it.
	conv := defaultConverter(t)

	// Act
	res := mustConvert(t, conv,
		`<table><style>td{color:red}</style><tr><td>x</td></tr></table>`)

	// Assert
	assert.Empty(t, res.Quarantined)
	found := false
	for _, n := range res.Normalizations {
		if n.Kind == report.EventMalformedNesting {
			assert.Contains(t, n.Detail, "style")
			assert.NotEmpty(t, n.Path)
			found = true
		}
	}
	assert.True(t, found, "dropping the element must be audited")
}

func TestConvert_TableAuditPathsIdentifyNodes(t *testing.T) {
	// Arrange: the parser wraps rows in an implied tbody, so the second
	// row sits at [0,0,1] and its cell at [0,0,1,0].
	conv := defaultConverter(t)

	// Act
	res := mustConvert(t, conv,
		`<table><tr><td>a</td><td>b</td></tr><tr><td colspan="nope">c</td></tr></table>`)

	// Assert
	var spanPath, padPath []int
	for _, n := range res.Normalizations {
		if n.Kind != report.EventIrregularTableGrid {
			continue
		}
		switch {
		case strings.Contains(n.Detail, "colspan"):
			spanPath = n.Path
		case strings.Contains(n.Detail, "padded"):
			padPath = n.Path
		}
	}
	assert.Equal(t, []int{0, 0, 1, 0}, spanPath, "the span audit points at the cell")
	assert.Equal(t, []int{0, 0, 1}, padPath, "the padding audit points at the row")
}

func TestConvert_CellAttrsPreserved(t *testing.T) {
	// Arrange
	conv := defaultConverter(t)

	// Act
	res := mustConvert(t, conv,
		`<table><tr data-band="even"><td data-region="north">x</td></tr></table>`)

	// Assert
	blk := onlyBlock(t, res)
	band, ok := blk.Rows[0].Attrs.Extra("data-band")
	assert.True(t, ok)
	assert.Equal(t, "even", band)

	region, ok := blk.Rows[0].Cells[0].Attrs.Extra("data-region")
	assert.True(t, ok)
	assert.Equal(t, "north", region)
}
