package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rohmanhakim/richtext-converter/internal/document"
)

func TestAllowsInline(t *testing.T) {
	cases := []struct {
		blockType document.BlockType
		expected  bool
	}{
		{document.BlockParagraph, true},
		{document.BlockHeading, true},
		{document.BlockCode, true},
		{document.BlockListItem, true},
		{document.BlockUnknown, true},
		{document.BlockQuote, false},
		{document.BlockTable, false},
		{document.BlockList, false},
		{document.BlockImage, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.blockType), func(t *testing.T) {
			assert.Equal(t, tc.expected, document.AllowsInline(tc.blockType))
		})
	}
}

func TestIsVoid(t *testing.T) {
	cases := []struct {
		blockType document.BlockType
		expected  bool
	}{
		{document.BlockImage, true},
		{document.BlockEmbed, true},
		{document.BlockRule, true},
		{document.BlockParagraph, false},
		{document.BlockTable, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.blockType), func(t *testing.T) {
			assert.Equal(t, tc.expected, document.IsVoid(tc.blockType))
		})
	}
}

func TestEmptyCell(t *testing.T) {
	// Act
	cell := document.EmptyCell()

	// Assert
	assert.Equal(t, 1, cell.ColSpan)
	assert.Equal(t, 1, cell.RowSpan)
	assert.False(t, cell.Header)
	assert.Len(t, cell.Blocks, 1)
	assert.Equal(t, document.BlockParagraph, cell.Blocks[0].Type)
	assert.Empty(t, cell.Blocks[0].Children)
}

func TestAttrMap_SetAndValue(t *testing.T) {
	// Arrange
	var m document.AttrMap

	// Act
	m.Set("level", 2)
	m.Set("src", "https://example.com/a.png")
	m.SetExtra("data-track", "hero")

	// Assert
	assert.Equal(t, 2, m.Int("level"))
	assert.Equal(t, "https://example.com/a.png", m.String("src"))
	extra, ok := m.Extra("data-track")
	assert.True(t, ok)
	assert.Equal(t, "hero", extra)
}

func TestAttrMap_IntHandlesDeserializedNumbers(t *testing.T) {
	// JSON decoding yields float64 for numbers; Int must still read them.
	var m document.AttrMap
	m.Set("level", float64(3))

	assert.Equal(t, 3, m.Int("level"))
}

func TestAttrMap_IsZero(t *testing.T) {
	var empty document.AttrMap
	assert.True(t, empty.IsZero())

	var withValue document.AttrMap
	withValue.Set("level", 1)
	assert.False(t, withValue.IsZero())

	var withExtra document.AttrMap
	withExtra.SetExtra("data-x", "y")
	assert.False(t, withExtra.IsZero())
}

func TestAttrMap_ValuesReturnsCopy(t *testing.T) {
	// Arrange
	var m document.AttrMap
	m.Set("level", 1)

	// Act
	values := m.Values()
	values["level"] = 99

	// Assert
	assert.Equal(t, 1, m.Int("level"), "mutating the returned map must not affect the AttrMap")
}

func TestSortMarks_CanonicalOrder(t *testing.T) {
	// Arrange
	marks := []document.Mark{
		{Kind: "link", Attrs: map[string]string{"href": "https://example.com"}},
		{Kind: "bold"},
		{Kind: "italic"},
	}

	// Act
	document.SortMarks(marks)

	// Assert
	assert.Equal(t, "bold", marks[0].Kind)
	assert.Equal(t, "italic", marks[1].Kind)
	assert.Equal(t, "link", marks[2].Kind)
}

func TestMarksEqual(t *testing.T) {
	cases := []struct {
		name     string
		a, b     []document.Mark
		expected bool
	}{
		{
			name:     "both empty",
			expected: true,
		},
		{
			name:     "same kinds and attrs",
			a:        []document.Mark{{Kind: "link", Attrs: map[string]string{"href": "x"}}},
			b:        []document.Mark{{Kind: "link", Attrs: map[string]string{"href": "x"}}},
			expected: true,
		},
		{
			name:     "different attrs",
			a:        []document.Mark{{Kind: "link", Attrs: map[string]string{"href": "x"}}},
			b:        []document.Mark{{Kind: "link", Attrs: map[string]string{"href": "y"}}},
			expected: false,
		},
		{
			name:     "different lengths",
			a:        []document.Mark{{Kind: "bold"}},
			b:        []document.Mark{{Kind: "bold"}, {Kind: "italic"}},
			expected: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, document.MarksEqual(tc.a, tc.b))
		})
	}
}
