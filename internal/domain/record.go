package domain

import (
	"reflect"
)

// Record is a JSON object as returned by the Business Profile API. Records are
// passed through without normalisation.
type Record map[string]any

// Keys stamped on locations by the manager. They are local annotations and are
// never sent back to the API.
const (
	AccountNameKey = "_account_name"
	AccountTypeKey = "_account_type"
)

// Name returns the resource name, e.g. "accounts/123/locations/456".
func (r Record) Name() string {
	return r.String("name")
}

// String returns the value at key if it is a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Sub returns the nested object at key, or nil.
func (r Record) Sub(key string) Record {
	sub, _ := asRecord(r[key])
	return sub
}

func asRecord(v any) (Record, bool) {
	switch v := v.(type) {
	case Record:
		return v, true
	case map[string]any:
		return Record(v), true
	}
	return nil, false
}

// Strings returns the value at key as a string slice, skipping non-string items.
func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Present reports whether key holds a non-empty value. Nil, empty strings,
// empty lists and objects, false and zero are all treated as absent.
func (r Record) Present(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return rv.Len() > 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
