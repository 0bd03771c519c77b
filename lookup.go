package columnar

import (
	"fmt"
	"reflect"
	"strings"
)

// Accessor resolves named fields itself. Records implementing it bypass
// reflection entirely. Implementations should return an error wrapping
// [ErrUnknownField] for keys they do not know.
type Accessor interface {
	Field(key string) (any, error)
}

var errorType = reflect.TypeFor[error]()

// Lookup resolves key on a raw record. Resolution order:
//
//  1. [Accessor] records answer for themselves.
//  2. Maps with string keys are indexed directly; a missing key is an error.
//  3. Structs (or pointers to them) match an exported field tagged
//     `column:"key"`, then an exported field whose name equals the key
//     ignoring case and underscores ("created_at" finds CreatedAt).
//  4. Otherwise an exported method with no arguments matched the same way,
//     returning a value and optionally an error.
//
// Anything else fails with [ErrUnknownField].
func Lookup(record any, key string) (any, error) {
	if a, ok := record.(Accessor); ok {
		return a.Field(key)
	}
	if m, ok := record.(map[string]any); ok {
		v, found := m[key]
		if !found {
			return nil, unknownField(record, key)
		}
		return v, nil
	}

	rv := reflect.ValueOf(record)
	if !rv.IsValid() {
		return nil, unknownField(record, key)
	}

	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, unknownField(record, key)
		}
		return v.Interface(), nil
	}

	if v, ok := structField(rv, key); ok {
		return v, nil
	}
	if v, ok, err := callMethod(rv, key); ok {
		return v, err
	}
	return nil, unknownField(record, key)
}

func unknownField(record any, key string) error {
	return fmt.Errorf("%w: %q on %T", ErrUnknownField, key, record)
}

func structField(rv reflect.Value, key string) (any, bool) {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	rt := rv.Type()
	for i := range rt.NumField() {
		f := rt.Field(i)
		if tag := f.Tag.Get("column"); f.IsExported() && tag != "" && tag == key {
			return rv.Field(i).Interface(), true
		}
	}
	for i := range rt.NumField() {
		f := rt.Field(i)
		if f.IsExported() && matchName(f.Name, key) {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}

func callMethod(rv reflect.Value, key string) (any, bool, error) {
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, false, nil
	}
	rt := rv.Type()
	for i := range rt.NumMethod() {
		m := rt.Method(i)
		if !matchName(m.Name, key) {
			continue
		}
		mt := m.Type
		// The receiver counts as the first input.
		if mt.NumIn() != 1 {
			continue
		}
		switch {
		case mt.NumOut() == 1:
			out := rv.Method(i).Call(nil)
			return out[0].Interface(), true, nil
		case mt.NumOut() == 2 && mt.Out(1) == errorType:
			out := rv.Method(i).Call(nil)
			err, _ := out[1].Interface().(error)
			return out[0].Interface(), true, err
		}
	}
	return nil, false, nil
}

func matchName(name, key string) bool {
	return strings.EqualFold(name, strings.ReplaceAll(key, "_", ""))
}
