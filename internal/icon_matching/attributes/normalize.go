// Package attributes turns raw extractor output into canonical records.
package attributes

import (
	"strings"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
)

// noneSentinel is what the vision model writes for an attribute it did not detect.
const noneSentinel = "None"

var allFields = append(append([]string{}, domain.VisualFields...), domain.FieldDescription)

// Normalize builds an AttributeRecord from a raw attribute map. Absent,
// blank and "None" values become empty strings; other values are trimmed and
// otherwise kept verbatim.
func Normalize(raw map[string]string) domain.AttributeRecord {
	var rec domain.AttributeRecord
	for _, f := range allFields {
		rec.Set(f, clean(raw[f]))
	}
	return rec
}

// Merge returns next with every empty field filled from prev.
func Merge(prev, next domain.AttributeRecord) domain.AttributeRecord {
	out := next
	for _, f := range allFields {
		if out.Get(f) == "" {
			out.Set(f, prev.Get(f))
		}
	}
	return out
}

// ToMap is the inverse of Normalize for a canonical record.
func ToMap(rec domain.AttributeRecord) map[string]string {
	m := make(map[string]string, len(allFields))
	for _, f := range allFields {
		m[f] = rec.Get(f)
	}
	return m
}

func clean(v string) string {
	v = strings.TrimSpace(v)
	if v == noneSentinel {
		return ""
	}
	return v
}
