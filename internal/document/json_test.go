package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/richtext-converter/internal/document"
)

func sampleDocument() document.Document {
	var headingAttrs document.AttrMap
	headingAttrs.Set("level", 2)
	headingAttrs.Set("id", "intro")

	var imageAttrs document.AttrMap
	imageAttrs.Set("src", "https://example.com/a.png")
	imageAttrs.Set("alt", "diagram")
	imageAttrs.SetExtra("data-track", "hero")

	var cellAttrs document.AttrMap
	cellAttrs.SetExtra("data-region", "north")

	return document.Document{
		Blocks: []document.Block{
			{
				Type:  document.BlockHeading,
				Attrs: headingAttrs,
				Children: []document.Node{
					document.TextRun{Text: "Introduction"},
				},
			},
			{
				Type: document.BlockParagraph,
				Children: []document.Node{
					document.TextRun{Text: "plain "},
					document.TextRun{
						Text: "emphasized",
						Marks: []document.Mark{
							{Kind: "bold"},
							{Kind: "link", Attrs: map[string]string{"href": "https://example.com"}},
						},
					},
				},
			},
			{
				Type:  document.BlockImage,
				Attrs: imageAttrs,
			},
			{
				Type: document.BlockTable,
				Rows: []document.TableRow{
					{
						Cells: []document.TableCell{
							{
								ColSpan: 2,
								RowSpan: 1,
								Header:  true,
								Attrs:   cellAttrs,
								Blocks: []document.Block{
									{
										Type: document.BlockParagraph,
										Children: []document.Node{
											document.TextRun{Text: "Region"},
										},
									},
								},
							},
							document.EmptyCell(),
						},
					},
				},
			},
		},
	}
}

func TestDocument_CanonicalIsByteStable(t *testing.T) {
	// Arrange
	doc := sampleDocument()

	// Act
	first, err := doc.Canonical()
	require.NoError(t, err)
	second, err := doc.Canonical()
	require.NoError(t, err)

	// Assert
	assert.Equal(t, first, second, "serializing the same document twice must yield identical bytes")
}

func TestDocument_RoundTripIsLossless(t *testing.T) {
	// Arrange
	doc := sampleDocument()
	data, err := doc.Canonical()
	require.NoError(t, err)

	// Act
	var decoded document.Document
	require.NoError(t, decoded.UnmarshalJSON(data))

	// Assert
	assert.True(t, doc.Equal(decoded), "round-tripped document must equal the original")

	reencoded, err := decoded.Canonical()
	require.NoError(t, err)
	assert.Equal(t, data, reencoded, "re-serializing a decoded document must be byte-identical")
}

func TestDocument_MarshalShape(t *testing.T) {
	// Arrange
	var attrs document.AttrMap
	attrs.Set("level", 1)
	doc := document.Document{
		Blocks: []document.Block{
			{
				Type:  document.BlockHeading,
				Attrs: attrs,
				Children: []document.Node{
					document.TextRun{
						Text: "Title",
						Marks: []document.Mark{
							{Kind: "bold"},
						},
					},
				},
			},
		},
	}

	// Act
	data, err := doc.Canonical()
	require.NoError(t, err)

	// Assert
	expected := `[{"type":"heading","attrs":{"level":1},"children":[{"text":"Title","marks":[{"kind":"bold"}]}]}]`
	assert.JSONEq(t, expected, string(data))
	assert.Equal(t, expected, string(data), "key order and omissions must match the canonical form exactly")
}

func TestDocument_MarshalOmitsEmptyCollections(t *testing.T) {
	// Arrange
	doc := document.Document{
		Blocks: []document.Block{
			{
				Type: document.BlockParagraph,
				Children: []document.Node{
					document.TextRun{Text: "bare"},
				},
			},
		},
	}

	// Act
	data, err := doc.Canonical()
	require.NoError(t, err)

	// Assert
	assert.NotContains(t, string(data), `"attrs"`)
	assert.NotContains(t, string(data), `"marks"`)
	assert.NotContains(t, string(data), `"rows"`)
}

func TestDocument_UnmarshalRestoresIntAttrs(t *testing.T) {
	// Arrange
	data := []byte(`[{"type":"heading","attrs":{"level":3},"children":[{"text":"H"}]}]`)

	// Act
	var doc document.Document
	require.NoError(t, doc.UnmarshalJSON(data))

	// Assert
	require.Len(t, doc.Blocks, 1)
	level, ok := doc.Blocks[0].Attrs.Value("level")
	require.True(t, ok)
	assert.Equal(t, 3, level, "integral attr values must decode as int, not float64")
}

func TestDocument_UnmarshalExtrasBucket(t *testing.T) {
	// Arrange
	data := []byte(`[{"type":"image","attrs":{"src":"a.png","extra":{"data-x":"y"}}}]`)

	// Act
	var doc document.Document
	require.NoError(t, doc.UnmarshalJSON(data))

	// Assert
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "a.png", doc.Blocks[0].Attrs.String("src"))
	extra, ok := doc.Blocks[0].Attrs.Extra("data-x")
	assert.True(t, ok)
	assert.Equal(t, "y", extra)
}

func TestDocument_EqualDistinguishesContent(t *testing.T) {
	a := document.Document{Blocks: []document.Block{
		{Type: document.BlockParagraph, Children: []document.Node{document.TextRun{Text: "one"}}},
	}}
	b := document.Document{Blocks: []document.Block{
		{Type: document.BlockParagraph, Children: []document.Node{document.TextRun{Text: "two"}}},
	}}

	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b))
}
