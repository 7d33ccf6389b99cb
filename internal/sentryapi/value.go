package sentryapi

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

// Value is a tagged union over the JSON types the Sentry API returns in
// schemaless positions (stack frame vars, context blocks, extra data).
// Modeling these explicitly keeps the formatting rules exhaustive instead
// of switching on interface{} shapes at every call site.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	Arr  []Value
	Obj  map[string]Value
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = fromAny(raw)
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return []byte(formatNumber(v.Num)), nil
	case KindBool:
		return json.Marshal(v.Bool)
	case KindArray:
		if v.Arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Arr)
	case KindObject:
		if v.Obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.Obj)
	default:
		return []byte("null"), nil
	}
}

func fromAny(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Value{Kind: KindNull}
	case string:
		return Value{Kind: KindString, Str: x}
	case bool:
		return Value{Kind: KindBool, Bool: x}
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{Kind: KindString, Str: x.String()}
		}
		return Value{Kind: KindNumber, Num: f}
	case float64:
		return Value{Kind: KindNumber, Num: x}
	case []any:
		arr := make([]Value, len(x))
		for i, el := range x {
			arr[i] = fromAny(el)
		}
		return Value{Kind: KindArray, Arr: arr}
	case map[string]any:
		obj := make(map[string]Value, len(x))
		for k, el := range x {
			obj[k] = fromAny(el)
		}
		return Value{Kind: KindObject, Obj: obj}
	default:
		return Value{Kind: KindString, Str: fmt.Sprint(x)}
	}
}

// Field looks up a key on an object value. The zero Value (null) is
// returned for non-objects and missing keys.
func (v Value) Field(key string) (Value, bool) {
	if v.Kind != KindObject {
		return Value{}, false
	}
	f, ok := v.Obj[key]
	return f, ok
}

// StringOr returns the string payload, or def for any other kind.
func (v Value) StringOr(def string) string {
	if v.Kind == KindString {
		return v.Str
	}
	return def
}

// IntOr returns the numeric payload truncated to int64, or def.
func (v Value) IntOr(def int64) int64 {
	if v.Kind == KindNumber {
		return int64(v.Num)
	}
	return def
}

// BoolOr returns the boolean payload, or def for any other kind.
func (v Value) BoolOr(def bool) bool {
	if v.Kind == KindBool {
		return v.Bool
	}
	return def
}

// Keys returns the object keys in sorted order so that rendered output is
// deterministic. Non-objects yield nil.
func (v Value) Keys() []string {
	if v.Kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.Obj))
	for k := range v.Obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// JSON renders the value back to compact JSON text.
func (v Value) JSON() string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

// formatNumber matches encoding/json's default float formatting but keeps
// integral values free of a trailing ".0" so 123 round-trips as "123".
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
