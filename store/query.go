package store

import (
	"sort"
	"strconv"
	"strings"
)

// Conditions is an exact-match conjunction over field values. A record
// matches when every listed field is present and equal; a missing field never
// matches a required value.
type Conditions map[string]any

type queryOptions struct {
	limit   int
	orderBy string
}

// QueryOption adjusts a Select call.
type QueryOption func(*queryOptions)

// Limit caps the number of returned records. Zero or negative means no limit.
func Limit(n int) QueryOption {
	return func(o *queryOptions) {
		o.limit = n
	}
}

// OrderBy sorts results by a single field, ascending by default. A leading
// "-" sorts descending. Records missing the field sort as the empty string.
func OrderBy(field string) QueryOption {
	return func(o *queryOptions) {
		o.orderBy = field
	}
}

func matches(r Record, conds Conditions) bool {
	for field, want := range conds {
		got, ok := r[field]
		if !ok {
			return false
		}
		if !valueEqual(got, want) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	a = normalizeValue(a)
	b = normalizeValue(b)

	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if aNum && bNum {
		return af == bf
	}
	if aNum != bNum {
		return false
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func sortRecords(records []Record, orderBy string) {
	if orderBy == "" {
		return
	}
	field := orderBy
	descending := false
	if strings.HasPrefix(field, "-") {
		descending = true
		field = field[1:]
	}

	sort.SliceStable(records, func(i, j int) bool {
		cmp := compareValues(records[i][field], records[j][field])
		if descending {
			return cmp > 0
		}
		return cmp < 0
	})
}

// compareValues orders two field values: numbers numerically, everything else
// by string form. Absent values (nil) compare as "".
func compareValues(a, b any) int {
	a = normalizeValue(a)
	b = normalizeValue(b)

	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(stringify(a), stringify(b))
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int64:
		return formatInt(t)
	case float64:
		return formatFloat(t)
	default:
		return ""
	}
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
