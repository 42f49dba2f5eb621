package store

import "encoding/json"

// Record is a single row in a table: a mapping from field name to value.
// Every stored Record carries "id" plus the _created_at*/_modified_at*
// metadata fields stamped by the store.
type Record map[string]any

// Reserved metadata field names stamped by the store on insert/update.
const (
	FieldID                = "id"
	FieldCreatedAt         = "_created_at"
	FieldCreatedAtDisplay  = "_created_at_formatted"
	FieldModifiedAt        = "_modified_at"
	FieldModifiedAtDisplay = "_modified_at_formatted"
)

// ID returns the record identifier, or 0 when absent.
func (r Record) ID() int64 {
	return r.Int64(FieldID)
}

// Int64 returns the named field coerced to int64, or 0 when the field is
// absent or not numeric.
func (r Record) Int64(field string) int64 {
	switch v := r[field].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Float64 returns the named field coerced to float64, or 0 when the field is
// absent or not numeric.
func (r Record) Float64(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// String returns the named field as a string, or "" when absent or not a string.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Bool returns the named field as a bool, or false when absent or not a bool.
func (r Record) Bool(field string) bool {
	b, _ := r[field].(bool)
	return b
}

// Has reports whether the named field is present.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Clone returns a deep copy of the record. Mutating the copy never affects
// stored state.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = cloneValue(inner)
		}
		return out
	case Record:
		return map[string]any(t.Clone())
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}

// normalizeValue collapses the zoo of Go numeric types (and json.Number from
// reload) into int64/float64 so that equality and ordering behave identically
// before and after a persistence round trip.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case float32:
		return float64(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = normalizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = normalizeValue(inner)
		}
		return out
	default:
		return v
	}
}

func normalizeRecord(r Record) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = normalizeValue(v)
	}
	return out
}
