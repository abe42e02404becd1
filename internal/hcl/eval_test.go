package hcl

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func parse(t *testing.T, src string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), "expr.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return expr
}

func TestVariables(t *testing.T) {
	assert.Nil(t, Variables(nil))
	assert.Empty(t, Variables(parse(t, `upper("x")`)))
	assert.Equal(t, []string{"a", "b"}, Variables(parse(t, `"${b}-${a}-${b.c}"`)))
	assert.Equal(t, []string{"id"}, Variables(parse(t, `try(id + 1, id)`)))
}

func TestNewEvalContext(t *testing.T) {
	vars := map[string]cty.Value{
		"id":    cty.NumberIntVal(1),
		"value": cty.StringVal("MyValue"),
		"name":  cty.NullVal(cty.String),
	}

	testCases := []struct {
		src  string
		want cty.Value
	}{
		{src: `"${id}${value}"`, want: cty.StringVal("1MyValue")},
		{src: `upper(value)`, want: cty.StringVal("MYVALUE")},
		{src: `format("%s-%03d", value, id)`, want: cty.StringVal("MyValue-001")},
		{src: `coalesce(name, "anon")`, want: cty.StringVal("anon")},
		{src: `try(upper(name), "none")`, want: cty.StringVal("none")},
		{src: `can(upper(name))`, want: cty.False},
		{src: `strlen(value)`, want: cty.NumberIntVal(7)},
		{src: `max(id, 3)`, want: cty.NumberIntVal(3)},
	}

	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			got, diags := parse(t, tc.src).Value(NewEvalContext(vars))
			require.False(t, diags.HasErrors(), diags.Error())
			assert.True(t, tc.want.RawEquals(got), "want %#v, got %#v", tc.want, got)
		})
	}

	t.Run("functions are fresh", func(t *testing.T) {
		a := Functions()
		delete(a, "upper")
		assert.Contains(t, Functions(), "upper")
	})
}

func TestEvalBool(t *testing.T) {
	vars := map[string]cty.Value{"id": cty.NumberIntVal(1), "flag": cty.StringVal("true")}

	ok, err := EvalBool(parse(t, `id >= 0`), vars)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = EvalBool(parse(t, `id > 5`), vars)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = EvalBool(parse(t, `flag`), vars)
	require.NoError(t, err)
	assert.True(t, ok, "strings convert to bool")

	_, err = EvalBool(parse(t, `null`), vars)
	assert.ErrorContains(t, err, "known, non-null bool")

	_, err = EvalBool(parse(t, `"yes"`), vars)
	assert.ErrorContains(t, err, "condition must be a bool")

	_, err = EvalBool(parse(t, `missing > 1`), vars)
	assert.Error(t, err)
}
