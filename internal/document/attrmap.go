package document

import "maps"

// AttrMap separates typed, recognized attribute values from the "extra"
// bucket holding data-bearing attributes preserved verbatim. Nothing is
// ever silently dropped: an input attribute is either typed here,
// bucketed here, or present in a side-channel report.
//
// The zero value is ready to use.
type AttrMap struct {
	values map[string]any
	extra  map[string]string
}

func (m *AttrMap) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	m.values[key] = value
}

// SetExtra preserves an unrecognized data-bearing attribute verbatim.
func (m *AttrMap) SetExtra(key, value string) {
	if m.extra == nil {
		m.extra = make(map[string]string)
	}
	m.extra[key] = value
}

func (m AttrMap) Value(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// String returns the typed value for key when it is a string.
func (m AttrMap) String(key string) string {
	if v, ok := m.values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Int returns the typed value for key when it is an int, else 0.
func (m AttrMap) Int(key string) int {
	if v, ok := m.values[key]; ok {
		if n, ok := v.(int); ok {
			return n
		}
		// JSON round-trips integers as float64
		if f, ok := v.(float64); ok {
			return int(f)
		}
	}
	return 0
}

func (m AttrMap) Extra(key string) (string, bool) {
	v, ok := m.extra[key]
	return v, ok
}

func (m AttrMap) Values() map[string]any {
	return maps.Clone(m.values)
}

func (m AttrMap) Extras() map[string]string {
	return maps.Clone(m.extra)
}

// IsZero reports whether the map carries no attribute of note; the
// assembler uses it when deciding whether an empty block may be
// dropped.
func (m AttrMap) IsZero() bool {
	return len(m.values) == 0 && len(m.extra) == 0
}
