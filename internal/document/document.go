/*
Package document holds the canonical rich-text document model.

Design Principles
- Blocks of inline runs carrying composable formatting marks
- Deterministic serialization: equal documents marshal byte-identically
- Immutable once assembled; nothing here outlives one conversion
- No markup awareness: this package never sees an HTML node

The shape mirrors portable rich-text formats: a document is an ordered
sequence of blocks; a block carries a type, an attribute map, and either
child nodes (blocks and/or text runs) or, for tables, a row grid.
*/
package document

type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockHeading   BlockType = "heading"
	BlockQuote     BlockType = "quote"
	BlockTable     BlockType = "table"
	BlockImage     BlockType = "image"
	BlockEmbed     BlockType = "embed"
	BlockList      BlockType = "list"
	BlockListItem  BlockType = "list_item"
	BlockCode      BlockType = "code"
	BlockRule      BlockType = "rule"
	BlockUnknown   BlockType = "unknown"
)

// Well-known attribute keys. Heading level and quote kind live in the
// attribute map rather than in the type so the BlockType set stays
// closed while remaining extensible through classification rules.
const (
	AttrLevel     = "level"
	AttrQuoteKind = "kind"
	AttrTag       = "tag"
	AttrEmbedType = "embedType"
	AttrOrdered   = "ordered"
)

const (
	QuoteKindBlock = "block"
	QuoteKindPull  = "pull"
)

// Node is either a Block or a TextRun. The interface is closed: no
// other implementations exist.
type Node interface {
	isNode()
}

// Document is the root of one converted document. It owns everything
// beneath it exclusively.
type Document struct {
	Blocks []Block
}

// Block is a structural content unit. Exactly one of Children and Rows
// is populated: Rows only when Type is BlockTable, Children otherwise.
type Block struct {
	Type     BlockType
	Attrs    AttrMap
	Children []Node
	Rows     []TableRow
}

func (Block) isNode() {}

// TextRun is a run of text with a canonical, kind-sorted mark set.
type TextRun struct {
	Text  string
	Marks []Mark
}

func (TextRun) isNode() {}

// Mark is a named formatting attribute attached to a run of text.
type Mark struct {
	Kind  string
	Attrs map[string]string
}

type TableRow struct {
	Attrs AttrMap
	Cells []TableCell
}

// TableCell holds explicit span integers instead of duplicating cell
// content across the grid. Spans default to 1.
type TableCell struct {
	ColSpan int
	RowSpan int
	Header  bool
	Attrs   AttrMap
	Blocks  []Block
}

// EmptyCell returns the padding cell used to rectangularize irregular
// grids: a 1x1 cell holding a single empty paragraph.
func EmptyCell() TableCell {
	return TableCell{
		ColSpan: 1,
		RowSpan: 1,
		Blocks:  []Block{{Type: BlockParagraph}},
	}
}

// AllowsInline reports whether a block type may hold text runs as
// direct children. Every other type holds blocks only; bare runs inside
// them are wrapped in a paragraph during assembly.
func AllowsInline(t BlockType) bool {
	switch t {
	case BlockParagraph, BlockHeading, BlockCode, BlockListItem, BlockUnknown:
		return true
	default:
		return false
	}
}

// IsVoid reports whether a block type is legitimately childless
// (it carries its content in attributes).
func IsVoid(t BlockType) bool {
	switch t {
	case BlockImage, BlockEmbed, BlockRule:
		return true
	default:
		return false
	}
}
