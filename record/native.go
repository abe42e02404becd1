// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package record

import (
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// NewNative is New for plain Go values. Each value is converted with
// ToValue first.
func (m *Model) NewNative(values map[string]any) (*Record, error) {
	converted := make(map[string]cty.Value, len(values))
	for name, v := range values {
		val, err := ToValue(v)
		if err != nil {
			return nil, fmt.Errorf("model %q, attribute %q: %w", m.name, name, err)
		}
		converted[name] = val
	}
	return m.New(converted), nil
}

// ToValue converts a native Go value into a cty.Value. Generic containers as
// produced by YAML or JSON decoders ([]any, map[string]any) become tuples
// and objects; nil becomes a dynamically typed null. Anything else is
// handed to gocty using its implied type.
func ToValue(v any) (cty.Value, error) {
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return x, nil
	case string:
		return cty.StringVal(x), nil
	case bool:
		return cty.BoolVal(x), nil
	case int:
		return cty.NumberIntVal(int64(x)), nil
	case int64:
		return cty.NumberIntVal(x), nil
	case uint64:
		return cty.NumberUIntVal(x), nil
	case float64:
		return cty.NumberFloatVal(x), nil
	case []any:
		if len(x) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(x))
		for i, e := range x {
			val, err := ToValue(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = val
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		if len(x) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(x))
		for k, e := range x {
			val, err := ToValue(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", k, err)
			}
			attrs[k] = val
		}
		return cty.ObjectVal(attrs), nil
	}

	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}

// FromValue is the reverse of ToValue. Null becomes nil, whole numbers
// become int and other numbers float64, lists, sets and tuples become []any
// and maps and objects become map[string]any.
func FromValue(v cty.Value) (any, error) {
	if IsAbsent(v) || !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value must be known")
	}
	if v.IsNull() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return int(i), nil
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		elems := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, e := it.Element()
			native, err := FromValue(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", len(elems), err)
			}
			elems = append(elems, native)
		}
		return elems, nil
	case ty.IsMapType() || ty.IsObjectType():
		attrs := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, e := it.Element()
			native, err := FromValue(e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k.AsString(), err)
			}
			attrs[k.AsString()] = native
		}
		return attrs, nil
	}
	return nil, fmt.Errorf("cannot convert %s to a native value", ty.FriendlyName())
}
