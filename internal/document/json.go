package document

import (
	"bytes"
	"encoding/json"
	"fmt"
)

/*
Canonical serialization

- A document is an ordered JSON array of block objects.
- Block: {"type", "attrs", "children"}; tables carry "rows" instead of
  "children".
- Text run: {"text", "marks"} with marks sorted by kind.
- Empty attrs, children, marks and rows are omitted.

encoding/json emits map keys sorted, so together with SortMarks the
output is byte-stable: converting the same input twice produces
identical bytes. The reverse direction is lossless; round-tripping a
canonical document yields an equal document.
*/

type blockDTO struct {
	Type     BlockType         `json:"type"`
	Attrs    json.RawMessage   `json:"attrs,omitempty"`
	Children []json.RawMessage `json:"children,omitempty"`
	Rows     []rowDTO          `json:"rows,omitempty"`
}

type runDTO struct {
	Text  string    `json:"text"`
	Marks []markDTO `json:"marks,omitempty"`
}

type markDTO struct {
	Kind  string            `json:"kind"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

type rowDTO struct {
	Attrs json.RawMessage `json:"attrs,omitempty"`
	Cells []cellDTO       `json:"cells"`
}

type cellDTO struct {
	ColSpan int             `json:"colspan"`
	RowSpan int             `json:"rowspan"`
	Header  bool            `json:"header,omitempty"`
	Attrs   json.RawMessage `json:"attrs,omitempty"`
	Blocks  json.RawMessage `json:"blocks,omitempty"`
}

func (d Document) MarshalJSON() ([]byte, error) {
	return marshalBlocks(d.Blocks)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	blocks, err := unmarshalBlocks(data)
	if err != nil {
		return err
	}
	d.Blocks = blocks
	return nil
}

// Canonical returns the byte-stable serialized form of the document.
func (d Document) Canonical() ([]byte, error) {
	return json.Marshal(d)
}

// Equal compares two documents by their canonical serialization.
func (d Document) Equal(other Document) bool {
	a, errA := d.Canonical()
	b, errB := other.Canonical()
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(a, b)
}

func (b Block) MarshalJSON() ([]byte, error) {
	dto := blockDTO{Type: b.Type}

	if !b.Attrs.IsZero() {
		raw, err := b.Attrs.MarshalJSON()
		if err != nil {
			return nil, err
		}
		dto.Attrs = raw
	}

	for _, child := range b.Children {
		raw, err := marshalNode(child)
		if err != nil {
			return nil, err
		}
		dto.Children = append(dto.Children, raw)
	}

	for _, row := range b.Rows {
		r := rowDTO{Cells: []cellDTO{}}
		if !row.Attrs.IsZero() {
			raw, err := row.Attrs.MarshalJSON()
			if err != nil {
				return nil, err
			}
			r.Attrs = raw
		}
		for _, cell := range row.Cells {
			blocks, err := marshalBlocks(cell.Blocks)
			if err != nil {
				return nil, err
			}
			c := cellDTO{
				ColSpan: cell.ColSpan,
				RowSpan: cell.RowSpan,
				Header:  cell.Header,
				Blocks:  blocks,
			}
			if !cell.Attrs.IsZero() {
				raw, err := cell.Attrs.MarshalJSON()
				if err != nil {
					return nil, err
				}
				c.Attrs = raw
			}
			r.Cells = append(r.Cells, c)
		}
		dto.Rows = append(dto.Rows, r)
	}

	return json.Marshal(dto)
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var dto blockDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	out := Block{Type: dto.Type}

	if len(dto.Attrs) > 0 {
		if err := out.Attrs.UnmarshalJSON(dto.Attrs); err != nil {
			return err
		}
	}

	for _, raw := range dto.Children {
		node, err := unmarshalNode(raw)
		if err != nil {
			return err
		}
		out.Children = append(out.Children, node)
	}

	for _, r := range dto.Rows {
		row := TableRow{}
		if len(r.Attrs) > 0 {
			if err := row.Attrs.UnmarshalJSON(r.Attrs); err != nil {
				return err
			}
		}
		for _, c := range r.Cells {
			cell := TableCell{ColSpan: c.ColSpan, RowSpan: c.RowSpan, Header: c.Header}
			if len(c.Attrs) > 0 {
				if err := cell.Attrs.UnmarshalJSON(c.Attrs); err != nil {
					return err
				}
			}
			if len(c.Blocks) > 0 {
				blocks, err := unmarshalBlocks(c.Blocks)
				if err != nil {
					return err
				}
				cell.Blocks = blocks
			}
			row.Cells = append(row.Cells, cell)
		}
		out.Rows = append(out.Rows, row)
	}

	*b = out
	return nil
}

func (r TextRun) MarshalJSON() ([]byte, error) {
	dto := runDTO{Text: r.Text}
	for _, m := range r.Marks {
		dto.Marks = append(dto.Marks, markDTO{Kind: m.Kind, Attrs: m.Attrs})
	}
	return json.Marshal(dto)
}

func (r *TextRun) UnmarshalJSON(data []byte) error {
	var dto runDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	out := TextRun{Text: dto.Text}
	for _, m := range dto.Marks {
		out.Marks = append(out.Marks, Mark{Kind: m.Kind, Attrs: m.Attrs})
	}
	*r = out
	return nil
}

func (m AttrMap) MarshalJSON() ([]byte, error) {
	merged := make(map[string]any, len(m.values)+1)
	for k, v := range m.values {
		merged[k] = v
	}
	if len(m.extra) > 0 {
		merged["extra"] = m.extra
	}
	return json.Marshal(merged)
}

func (m *AttrMap) UnmarshalJSON(data []byte) error {
	var merged map[string]any
	if err := json.Unmarshal(data, &merged); err != nil {
		return err
	}
	out := AttrMap{}
	for k, v := range merged {
		if k == "extra" {
			bucket, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("attrs: malformed extra bucket")
			}
			for ek, ev := range bucket {
				s, ok := ev.(string)
				if !ok {
					return fmt.Errorf("attrs: non-string extra value for %q", ek)
				}
				out.SetExtra(ek, s)
			}
			continue
		}
		// Re-materialize integral numbers as int so round-tripped
		// documents compare equal to freshly converted ones.
		if f, ok := v.(float64); ok && f == float64(int(f)) {
			out.Set(k, int(f))
			continue
		}
		out.Set(k, v)
	}
	*m = out
	return nil
}

func marshalBlocks(blocks []Block) ([]byte, error) {
	raws := make([]json.RawMessage, 0, len(blocks))
	for _, b := range blocks {
		raw, err := b.MarshalJSON()
		if err != nil {
			return nil, err
		}
		raws = append(raws, raw)
	}
	return json.Marshal(raws)
}

func unmarshalBlocks(data []byte) ([]Block, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	var blocks []Block
	for _, raw := range raws {
		var b Block
		if err := b.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func marshalNode(n Node) (json.RawMessage, error) {
	switch v := n.(type) {
	case Block:
		return v.MarshalJSON()
	case TextRun:
		return v.MarshalJSON()
	default:
		return nil, fmt.Errorf("document: unknown node type %T", n)
	}
}

// unmarshalNode discriminates block objects from text runs by the
// presence of a "text" key.
func unmarshalNode(raw json.RawMessage) (Node, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	if _, ok := probe["text"]; ok {
		var r TextRun
		if err := r.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		return r, nil
	}
	var b Block
	if err := b.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return b, nil
}
