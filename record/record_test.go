package record

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/avery/schema"
	"github.com/zclconf/go-cty/cty"
)

// spy counts how often a virtual function runs.
type spy struct {
	calls atomic.Int32
	fn    VirtualFunc
}

func (s *spy) virtual() VirtualFunc {
	return func(r Reader) cty.Value {
		s.calls.Add(1)
		return s.fn(r)
	}
}

// concat renders each attribute like the default string conversion of a
// dynamic language would, so "1" + "MyValue" gives "1MyValue".
func concat(keys ...string) VirtualFunc {
	return func(r Reader) cty.Value {
		out := ""
		for _, key := range keys {
			v := r.Get(key)
			switch {
			case v.IsNull():
				out += "null"
			case v.Type() == cty.String:
				out += v.AsString()
			default:
				out += FormatValue(v)
			}
		}
		return cty.StringVal(out)
	}
}

type widgetFixture struct {
	model     *Model
	idValue   *spy
	nameValue *spy
	schema    *countingSchema
}

type countingSchema struct {
	calls atomic.Int32
	inner Schema
}

func (c *countingSchema) Validate(obj cty.Value) error {
	c.calls.Add(1)
	return c.inner.Validate(obj)
}

func newWidget(t *testing.T) *widgetFixture {
	t.Helper()

	f := &widgetFixture{
		idValue:   &spy{fn: concat("id", "value")},
		nameValue: &spy{fn: concat("name", "value")},
		schema: &countingSchema{inner: &schema.Object{
			Attributes: map[string]*schema.Attribute{
				"id":    {Type: cty.Number, Checks: []schema.Check{schema.Integer()}},
				"name":  {Type: cty.String},
				"value": {Type: cty.DynamicPseudoType},
			},
		}},
	}

	m, err := Define(Config{
		Name: "widget",
		Defaults: map[string]cty.Value{
			"id":    cty.NullVal(cty.DynamicPseudoType),
			"name":  cty.NullVal(cty.DynamicPseudoType),
			"value": cty.NullVal(cty.DynamicPseudoType),
		},
		Validate: f.schema,
		Virtuals: map[string]VirtualFunc{
			"idValue":   f.idValue.virtual(),
			"nameValue": f.nameValue.virtual(),
		},
	})
	require.NoError(t, err)
	f.model = m
	return f
}

func (f *widgetFixture) sample() *Record {
	return f.model.New(map[string]cty.Value{
		"id":    cty.NumberIntVal(1),
		"name":  cty.StringVal("Name"),
		"value": cty.StringVal("MyValue"),
	})
}

func TestRecord_Scenario(t *testing.T) {
	f := newWidget(t)

	valid := f.sample()
	assert.True(t, valid.IsValid())
	assert.Equal(t, "1MyValue", valid.Get("idValue").AsString())

	invalid := f.model.New(map[string]cty.Value{
		"id":    cty.NumberIntVal(1),
		"name":  cty.NumberIntVal(5),
		"value": cty.NumberIntVal(4),
	})
	assert.False(t, invalid.IsValid())
	assert.Error(t, invalid.ValidationError())

	next, err := valid.Set("id", cty.NumberIntVal(2))
	require.NoError(t, err)
	assert.Equal(t, "2MyValue", next.Get("idValue").AsString())
	assert.Equal(t, "1MyValue", valid.Get("idValue").AsString())
}

func TestRecord_SetsAndGets(t *testing.T) {
	r := newWidget(t).sample()

	assert.True(t, r.Get("id").RawEquals(cty.NumberIntVal(1)))
	assert.Equal(t, "Name", r.Get("name").AsString())
	assert.Equal(t, "MyValue", r.Get("value").AsString())
}

func TestRecord_DefaultsFillMissingValues(t *testing.T) {
	f := newWidget(t)
	r := f.model.New(map[string]cty.Value{
		"id":        cty.NumberIntVal(1),
		"undefined": cty.True,                // ignored: not an attribute
		"idValue":   cty.StringVal("forged"), // ignored: virtual
		"name":      cty.NilVal,              // ignored: absent
	})

	assert.True(t, r.Get("name").IsNull())
	assert.True(t, r.Get("value").IsNull())
	assert.True(t, IsAbsent(r.Get("undefined")))
	assert.Equal(t, "1null", r.Get("idValue").AsString())
}

func TestRecord_Immutable(t *testing.T) {
	r := newWidget(t).sample()

	r2, err := r.Set("name", cty.StringVal("not name"))
	require.NoError(t, err)
	assert.Equal(t, "Name", r.Get("name").AsString())
	assert.Equal(t, "not name", r2.Get("name").AsString())
	assert.NotSame(t, r, r2)

	r3, err := r.Remove("name")
	require.NoError(t, err)
	assert.Equal(t, "Name", r.Get("name").AsString())
	assert.NotSame(t, r, r3)
	assert.True(t, r3.Get("name").IsNull(), "remove resets to the default")
	assert.True(t, r3.Has("name"))
}

func TestRecord_Has(t *testing.T) {
	r := newWidget(t).sample()

	for _, key := range []string{"id", "name", "value", "idValue", "nameValue"} {
		assert.True(t, r.Has(key), key)
	}
	for _, key := range []string{"", "ID", "missing", "toObject"} {
		assert.False(t, r.Has(key), key)
	}
}

func TestRecord_GetUnknownIsAbsent(t *testing.T) {
	r := newWidget(t).sample()

	assert.True(t, IsAbsent(r.Get("missing")))

	v, ok := r.Lookup("missing")
	assert.False(t, ok)
	assert.True(t, IsAbsent(v))

	v, ok = r.Lookup("idValue")
	assert.True(t, ok)
	assert.Equal(t, "1MyValue", v.AsString())
}

func TestRecord_VirtualsAreReadOnly(t *testing.T) {
	f := newWidget(t)
	r := f.sample()
	before := r.ToObject()

	next, err := r.Set("idValue", cty.StringVal("x"))
	assert.Nil(t, next)
	assert.ErrorIs(t, err, ErrCannotSetVirtual)

	var violation *InvariantViolation
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, "widget", violation.Model)
	assert.Equal(t, "idValue", violation.Attribute)

	next, err = r.Remove("idValue")
	assert.Nil(t, next)
	assert.ErrorIs(t, err, ErrCannotRemoveVirtual)

	assert.True(t, before.RawEquals(r.ToObject()), "receiver is unchanged")
	assert.Equal(t, int32(0), f.idValue.calls.Load())
}

func TestRecord_UnknownAttributesCannotBeWritten(t *testing.T) {
	r := newWidget(t).sample()

	_, err := r.Set("missing", cty.True)
	assert.ErrorIs(t, err, ErrUnknownAttribute)

	_, err = r.Remove("missing")
	assert.ErrorIs(t, err, ErrUnknownAttribute)

	_, err = r.Set("id", cty.NilVal)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestRecord_Merge(t *testing.T) {
	f := newWidget(t)
	r := f.sample()

	merged, err := r.Merge(map[string]cty.Value{
		"id":   cty.NumberIntVal(9),
		"name": cty.StringVal("Nine"),
	})
	require.NoError(t, err)
	assert.Equal(t, "9MyValue", merged.Get("idValue").AsString())
	assert.Equal(t, "NineMyValue", merged.Get("nameValue").AsString())
	assert.Equal(t, "1MyValue", r.Get("idValue").AsString())

	_, err = r.Merge(map[string]cty.Value{
		"id":      cty.NumberIntVal(9),
		"idValue": cty.StringVal("x"),
	})
	assert.ErrorIs(t, err, ErrCannotSetVirtual)

	_, err = r.Merge(map[string]cty.Value{"id": cty.NilVal})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestRecord_Equal(t *testing.T) {
	f := newWidget(t)
	a := f.sample()
	b := f.sample()

	assert.True(t, a.Equal(a))
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(nil))

	c, err := a.Set("name", cty.StringVal("Other"))
	require.NoError(t, err)
	assert.False(t, a.Equal(c))

	back, err := c.Set("name", cty.StringVal("Name"))
	require.NoError(t, err)
	assert.True(t, a.Equal(back))

	other := newWidget(t)
	assert.False(t, a.Equal(other.sample()), "records of different models are never equal")
}

func TestRecord_ToObjectExcludesVirtuals(t *testing.T) {
	obj := newWidget(t).sample().ToObject()

	assert.True(t, obj.Type().HasAttribute("id"))
	assert.False(t, obj.Type().HasAttribute("idValue"))
	assert.Len(t, obj.Type().AttributeTypes(), 3)
}

func TestRecord_Each(t *testing.T) {
	r := newWidget(t).sample()

	var keys []string
	r.Each(func(key string, _ cty.Value) bool {
		keys = append(keys, key)
		return true
	})
	assert.Equal(t, []string{"id", "name", "value"}, keys)
}

func TestRecord_Decode(t *testing.T) {
	r := newWidget(t).sample()

	var id int
	require.NoError(t, r.Decode("id", &id))
	assert.Equal(t, 1, id)

	var idValue string
	require.NoError(t, r.Decode("idValue", &idValue))
	assert.Equal(t, "1MyValue", idValue)

	var idString string
	require.NoError(t, r.Decode("id", &idString), "numbers convert to strings")
	assert.Equal(t, "1", idString)

	var anyID any
	require.NoError(t, r.Decode("id", &anyID))
	assert.Equal(t, 1, anyID)

	var anyLabel any
	require.NoError(t, r.Decode("idValue", &anyLabel))
	assert.Equal(t, "1MyValue", anyLabel)

	var stringer fmt.Stringer
	assert.Error(t, r.Decode("id", &stringer))

	var wrong bool
	assert.Error(t, r.Decode("name", &wrong))
	assert.ErrorIs(t, r.Decode("missing", &wrong), ErrUnknownAttribute)
	assert.Error(t, r.Decode("id", id))
}

func TestRecord_String(t *testing.T) {
	r := newWidget(t).sample()
	assert.Equal(t, `widget{id: 1, name: "Name", value: "MyValue"}`, r.String())
}

func TestRecord_ConcurrentReads(t *testing.T) {
	f := newWidget(t)
	r := f.sample()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "1MyValue", r.Get("idValue").AsString())
			assert.True(t, r.IsValid())
		}()
	}
	wg.Wait()

	assert.Equal(t, "1MyValue", r.Get("idValue").AsString())
	assert.GreaterOrEqual(t, f.idValue.calls.Load(), int32(1))
}

func TestModel_NewNative(t *testing.T) {
	f := newWidget(t)

	r, err := f.model.NewNative(map[string]any{
		"id":    1,
		"name":  "Name",
		"value": nil,
	})
	require.NoError(t, err)
	assert.True(t, r.IsValid())
	assert.Equal(t, "1null", r.Get("idValue").AsString())

	_, err = f.model.NewNative(map[string]any{"id": make(chan int)})
	assert.Error(t, err)
}

func ExampleRecord_Set() {
	widget, _ := Define(Config{
		Name: "widget",
		Defaults: map[string]cty.Value{
			"id":    cty.NullVal(cty.Number),
			"value": cty.StringVal(""),
		},
		Virtuals: map[string]VirtualFunc{
			"idValue": concat("id", "value"),
		},
	})

	r := widget.New(map[string]cty.Value{
		"id":    cty.NumberIntVal(1),
		"value": cty.StringVal("MyValue"),
	})
	r2, _ := r.Set("id", cty.NumberIntVal(2))

	fmt.Println(r.Get("idValue").AsString())
	fmt.Println(r2.Get("idValue").AsString())
	// Output:
	// 1MyValue
	// 2MyValue
}

func TestFormatValue(t *testing.T) {
	testCases := []struct {
		value cty.Value
		want  string
	}{
		{value: Absent, want: "(absent)"},
		{value: cty.UnknownVal(cty.String), want: "(unknown)"},
		{value: cty.NullVal(cty.Number), want: "null"},
		{value: cty.StringVal("a\"b"), want: `"a\"b"`},
		{value: cty.NumberFloatVal(1.5), want: "1.5"},
		{value: cty.True, want: "true"},
		{value: cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}), want: `["a","b"]`},
		{value: cty.ObjectVal(map[string]cty.Value{"n": cty.NumberIntVal(1)}), want: `{"n":1}`},
	}
	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatValue(tc.value))
		})
	}
}

func TestFromValue(t *testing.T) {
	testCases := []struct {
		name  string
		value cty.Value
		want  any
	}{
		{name: "null", value: cty.NullVal(cty.String), want: nil},
		{name: "string", value: cty.StringVal("a"), want: "a"},
		{name: "whole number", value: cty.NumberIntVal(2), want: 2},
		{name: "fraction", value: cty.NumberFloatVal(1.5), want: 1.5},
		{name: "bool", value: cty.False, want: false},
		{
			name:  "list",
			value: cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}),
			want:  []any{"a", "b"},
		},
		{
			name:  "object",
			value: cty.ObjectVal(map[string]cty.Value{"n": cty.NumberIntVal(1), "s": cty.NullVal(cty.String)}),
			want:  map[string]any{"n": 1, "s": nil},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromValue(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := FromValue(cty.UnknownVal(cty.String))
	assert.Error(t, err)
	_, err = FromValue(Absent)
	assert.Error(t, err)
}
