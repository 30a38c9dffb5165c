package document

import (
	"maps"
	"sort"
)

// SortMarks orders a mark set canonically: lexicographic by kind, with
// insertion order preserved among marks of the same kind (multi-valued
// kinds). Two semantically equal runs therefore serialize identically.
func SortMarks(marks []Mark) {
	sort.SliceStable(marks, func(i, j int) bool {
		return marks[i].Kind < marks[j].Kind
	})
}

// MarkEqual compares kind and attributes.
func MarkEqual(a, b Mark) bool {
	if a.Kind != b.Kind || len(a.Attrs) != len(b.Attrs) {
		return false
	}
	return maps.Equal(a.Attrs, b.Attrs)
}

// MarksEqual compares two canonical (sorted) mark sets element-wise.
func MarksEqual(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !MarkEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
