// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package record

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vk/avery/internal/snapshot"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Absent is what Get returns for a name that is neither stored nor virtual.
var Absent = cty.NilVal

// IsAbsent reports whether v is the Absent sentinel.
func IsAbsent(v cty.Value) bool {
	return v.Type() == cty.NilType
}

// Record is one immutable snapshot of a model's stored attributes together
// with its own virtual and validity caches. A Record is safe for concurrent
// use and must not be copied; always handle it through *Record.
type Record struct {
	model *Model
	snap  snapshot.Snapshot

	// virtuals memoizes computed virtual attributes by name. Entries are
	// only ever added.
	virtuals sync.Map
	// verdict is nil until the schema has been consulted, then set once.
	verdict atomic.Pointer[verdict]
}

func newRecord(m *Model, snap snapshot.Snapshot) *Record {
	return &Record{model: m, snap: snap}
}

// Model returns the definition this record belongs to.
func (r *Record) Model() *Model { return r.model }

// Has reports whether key is a stored or a virtual attribute of the model.
func (r *Record) Has(key string) bool {
	return r.model.Has(key)
}

// Get returns the value of a stored or virtual attribute, or Absent for any
// other name. Virtual attributes are computed on first access and memoized
// for the lifetime of the record.
//
// Get panics with an *InvariantViolation wrapping ErrVirtualCycle if a
// virtual attribute ends up reading itself.
func (r *Record) Get(key string) cty.Value {
	return r.get(key, nil)
}

// Lookup is Get with an explicit presence flag.
func (r *Record) Lookup(key string) (cty.Value, bool) {
	if !r.Has(key) {
		return Absent, false
	}
	return r.Get(key), true
}

func (r *Record) get(key string, chain []string) cty.Value {
	if fn, ok := r.model.virtuals[key]; ok {
		return r.virtual(key, fn, chain)
	}
	if v, ok := r.snap.Get(key); ok {
		return v
	}
	return Absent
}

// Set returns a new record with key bound to value. The receiver is not
// modified. Virtual attributes cannot be set and the stored attribute set is
// fixed by the model, so both fail with an *InvariantViolation.
func (r *Record) Set(key string, value cty.Value) (*Record, error) {
	if err := r.checkWritable(key, ErrCannotSetVirtual); err != nil {
		return nil, err
	}
	if IsAbsent(value) {
		return nil, r.violation(key, ErrInvalidValue)
	}
	return newRecord(r.model, r.snap.With(key, value)), nil
}

// Remove returns a new record with key reset to the model's default value.
// The attribute itself stays part of the record; Has(key) remains true.
func (r *Record) Remove(key string) (*Record, error) {
	if err := r.checkWritable(key, ErrCannotRemoveVirtual); err != nil {
		return nil, err
	}
	def, _ := r.model.Default(key)
	return newRecord(r.model, r.snap.With(key, def)), nil
}

// Merge returns a new record with every binding in values applied in a
// single step. If any key is virtual or unknown, or any value is cty.NilVal,
// nothing is applied and the first offending key (in sorted order) is
// reported.
func (r *Record) Merge(values map[string]cty.Value) (*Record, error) {
	for _, key := range sortedKeys(values) {
		if err := r.checkWritable(key, ErrCannotSetVirtual); err != nil {
			return nil, err
		}
		if IsAbsent(values[key]) {
			return nil, r.violation(key, ErrInvalidValue)
		}
	}
	return newRecord(r.model, r.snap.WithAll(values)), nil
}

func (r *Record) checkWritable(key string, virtualReason error) error {
	if r.model.IsVirtual(key) {
		return r.violation(key, virtualReason)
	}
	if !r.model.IsStored(key) {
		return r.violation(key, ErrUnknownAttribute)
	}
	return nil
}

func (r *Record) violation(key string, reason error) *InvariantViolation {
	return &InvariantViolation{Model: r.model.name, Attribute: key, Reason: reason}
}

// Decode converts the value of key into the Go value pointed to by target,
// applying cty's implicit conversions where the target type calls for them.
func (r *Record) Decode(key string, target any) error {
	val, ok := r.Lookup(key)
	if !ok {
		return r.violation(key, ErrUnknownAttribute)
	}

	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
		return fmt.Errorf("target for decoding %q must be a non-nil pointer, got %T", key, target)
	}

	if elem := ptr.Elem(); elem.Kind() == reflect.Interface {
		return decodeInterface(key, val, elem)
	}

	impliedType, err := gocty.ImpliedType(ptr.Elem().Interface())
	if err != nil {
		return gocty.FromCtyValue(val, target)
	}
	converted, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %q from %s to %s: %w", key, val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}
	return gocty.FromCtyValue(converted, target)
}

func decodeInterface(key string, val cty.Value, elem reflect.Value) error {
	native, err := FromValue(val)
	if err != nil {
		return fmt.Errorf("cannot decode %q: %w", key, err)
	}
	if native == nil {
		elem.Set(reflect.Zero(elem.Type()))
		return nil
	}
	nv := reflect.ValueOf(native)
	if !nv.Type().AssignableTo(elem.Type()) {
		return fmt.Errorf("cannot decode %q: %T is not assignable to %s", key, native, elem.Type())
	}
	elem.Set(nv)
	return nil
}

// ToObject returns the stored attributes as a cty object value. Virtual
// attributes are not included.
func (r *Record) ToObject() cty.Value {
	return cty.ObjectVal(r.snap.Map())
}

// Each calls fn for every stored attribute in name order until fn returns
// false.
func (r *Record) Each(fn func(key string, value cty.Value) bool) {
	r.snap.Each(fn)
}

// Equal reports whether other belongs to the same model and holds exactly
// the same stored values.
func (r *Record) Equal(other *Record) bool {
	if other == nil || r.model != other.model {
		return false
	}
	if r == other || r.snap.Same(other.snap) {
		return true
	}
	return r.ToObject().RawEquals(other.ToObject())
}

// String renders the record for logs and debugging.
func (r *Record) String() string {
	var sb strings.Builder
	sb.WriteString(r.model.name)
	sb.WriteByte('{')
	first := true
	r.snap.Each(func(key string, v cty.Value) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(FormatValue(v))
		return true
	})
	sb.WriteByte('}')
	return sb.String()
}

// FormatValue renders a single attribute value in a compact, HCL-like form.
// Collections and structural values are rendered as JSON.
func FormatValue(v cty.Value) string {
	switch {
	case IsAbsent(v):
		return "(absent)"
	case !v.IsKnown():
		return "(unknown)"
	case v.IsNull():
		return "null"
	case v.Type() == cty.String:
		return fmt.Sprintf("%q", v.AsString())
	case v.Type() == cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case v.Type() == cty.Bool:
		return fmt.Sprintf("%t", v.True())
	}
	if b, err := ctyjson.Marshal(v, v.Type()); err == nil {
		return string(b)
	}
	return v.GoString()
}
