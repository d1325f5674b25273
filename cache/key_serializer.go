package cache

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// defaultKeySerializer implements KeySerializer using reflection.
// Strings nested inside slices, maps or structs are quoted so a separator inside a
// search term cannot make two different argument lists collide.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds a cache key from a name and args.
func (s *defaultKeySerializer) SerializeKey(name string, args ...any) string {
	if len(args) == 0 {
		return name
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg, false))
	}

	return strings.Join(parts, KeySeparator)
}

func (s *defaultKeySerializer) serializeValue(v any, nested bool) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface(), nested)
	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return "slice" + s.serializeElems(rv)
	case reflect.Array:
		return "array" + s.serializeElems(rv)
	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return s.serializeMap(rv)
	case reflect.Struct:
		return s.serializeStruct(rv)
	case reflect.String:
		if nested {
			return strconv.Quote(rv.String())
		}
		return rv.String()
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		// only stable for the lifetime of the process
		return fmt.Sprintf("%s:%p", rv.Kind(), v)
	}

	return fmt.Sprintf("%v", v)
}

func (s *defaultKeySerializer) serializeElems(rv reflect.Value) string {
	parts := make([]string, rv.Len())
	for i := range parts {
		parts[i] = s.serializeValue(rv.Index(i).Interface(), true)
	}
	return fmt.Sprintf("[%d]:{%s}", len(parts), strings.Join(parts, ","))
}

// serializeMap sorts pairs by serialized key so iteration order never leaks into the key.
func (s *defaultKeySerializer) serializeMap(rv reflect.Value) string {
	pairs := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, s.serializeValue(iter.Key().Interface(), true)+"="+
			s.serializeValue(iter.Value().Interface(), true))
	}
	sort.Strings(pairs)
	return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(pairs, ","))
}

func (s *defaultKeySerializer) serializeStruct(rv reflect.Value) string {
	rt := rv.Type()
	parts := make([]string, 0, rv.NumField())

	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		parts = append(parts, field.Name+":"+s.serializeValue(rv.Field(i).Interface(), true))
	}

	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
}
