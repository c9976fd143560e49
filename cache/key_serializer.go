package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// KeySeparator is the delimiter between cache key segments.
const KeySeparator = "::"

// defaultKeySerializer renders scalar arguments with %v, dereferences
// pointers, expands slices element by element and falls back to JSON for
// anything else.
type defaultKeySerializer struct {
	namespace string
}

// NewDefaultKeySerializer returns the default serializer. A non-empty
// namespace is prepended to every key.
func NewDefaultKeySerializer(namespace ...string) KeySerializer {
	s := &defaultKeySerializer{}
	if len(namespace) > 0 {
		s.namespace = namespace[0]
	}
	return s
}

func (s *defaultKeySerializer) SerializeKey(method string, args ...any) string {
	parts := make([]string, 0, len(args)+2)
	if s.namespace != "" {
		parts = append(parts, s.namespace)
	}
	parts = append(parts, method)
	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg))
	}
	return strings.Join(parts, KeySeparator)
}

// Prefix returns the key prefix shared by every key built for method.
func Prefix(serializer KeySerializer, method string) string {
	return serializer.SerializeKey(method) + KeySeparator
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		fallthrough
	case reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = s.serializeValue(rv.Index(i).Interface())
		}
		return fmt.Sprintf("[%s]", strings.Join(parts, ","))
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%v", v)
	}

	// map keys are sorted by encoding/json, so the fallback is deterministic
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%T", v)
	}
	return "json:" + string(data)
}
