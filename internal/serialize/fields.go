package serialize

import (
	"reflect"
	"strings"
	"sync"
)

// fieldNameCache memoizes the declared JSON field names of a struct type so
// repeated partitioning calls for the same resource type schema don't pay
// reflection cost on every save. This is the "compile-time schema
// registry" Design Notes calls for: each resource type's typed-fields
// struct is introspected exactly once per process.
var fieldNameCache sync.Map // map[reflect.Type]map[string]struct{}

// TypedFieldNames returns the set of JSON field names declared directly on
// typedFields (a resource type's own typed-fields struct, not its
// embedded envelope). Adding a field to that struct changes this set with
// no change required anywhere else.
func TypedFieldNames(typedFields any) map[string]struct{} {
	t := reflect.TypeOf(typedFields)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if cached, ok := fieldNameCache.Load(t); ok {
		return cached.(map[string]struct{})
	}

	names := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		name := strings.Split(tag, ",")[0]
		if name == "" || name == "-" {
			name = f.Name
		}
		names[name] = struct{}{}
	}

	fieldNameCache.Store(t, names)
	return names
}

// PartitionMetadata splits a caller-supplied metadata bag into the subset
// recognized by typedFields' own JSON field names and the remaining
// generic overflow. The overflow is what belongs in a document's free-form
// metadata map; the typed subset is decoded onto typedFields by the
// caller via the standard json package.
func PartitionMetadata(typedFields any, bag map[string]any) (typedSubset, overflow map[string]any) {
	names := TypedFieldNames(typedFields)
	typedSubset = make(map[string]any)
	overflow = make(map[string]any)

	for k, v := range bag {
		if _, isTyped := names[k]; isTyped {
			typedSubset[k] = v
		} else {
			overflow[k] = v
		}
	}
	return typedSubset, overflow
}
