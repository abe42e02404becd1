// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// This file parses attribute type expressions such as `string`,
// `list(number)` or `object({ id = number })` into cty types.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/avery/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

var primitiveTypes = map[string]cty.Type{
	"string": cty.String,
	"number": cty.Number,
	"bool":   cty.Bool,
	"any":    cty.DynamicPseudoType,
}

// typeExprToCtyType converts an attribute type expression into a cty.Type.
// A nil expression means the attribute accepts any value.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	if expr == nil {
		return cty.DynamicPseudoType, nil
	}

	switch v := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return cty.NilType, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		name := v.Traversal.RootName()
		ty, ok := primitiveTypes[name]
		if !ok {
			return cty.NilType, fmt.Errorf("unknown primitive type %q", name)
		}
		return ty, nil

	case *hclsyntax.FunctionCallExpr:
		ctxlog.FromContext(ctx).Debug("Parsing type constructor.", "call", v.Name)
		if len(v.Args) != 1 {
			return cty.NilType, fmt.Errorf("type constructor %s requires exactly one argument, got %d", v.Name, len(v.Args))
		}
		switch v.Name {
		case "list", "map", "set":
			return collectionType(ctx, v.Name, v.Args[0])
		case "object":
			return objectType(ctx, v.Args[0])
		case "tuple":
			return tupleType(ctx, v.Args[0])
		default:
			return cty.NilType, fmt.Errorf("unknown type constructor function %q", v.Name)
		}

	default:
		return cty.NilType, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

func collectionType(ctx context.Context, kind string, arg hcl.Expression) (cty.Type, error) {
	elem, err := typeExprToCtyType(ctx, arg)
	if err != nil {
		return cty.NilType, err
	}
	switch kind {
	case "list":
		return cty.List(elem), nil
	case "map":
		return cty.Map(elem), nil
	}
	if elem.HasDynamicTypes() {
		return cty.NilType, fmt.Errorf("set types cannot contain type 'any'")
	}
	return cty.Set(elem), nil
}

func objectType(ctx context.Context, arg hcl.Expression) (cty.Type, error) {
	obj, ok := arg.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return cty.NilType, fmt.Errorf("object type constructor requires an object of attribute types, e.g. object({ id = number })")
	}
	attrs := make(map[string]cty.Type, len(obj.Items))
	for _, item := range obj.Items {
		name := hcl.ExprAsKeyword(item.KeyExpr)
		if name == "" {
			return cty.NilType, fmt.Errorf("object type attribute names must be bare identifiers")
		}
		if _, exists := attrs[name]; exists {
			return cty.NilType, fmt.Errorf("object type attribute %q is declared more than once", name)
		}
		ty, err := typeExprToCtyType(ctx, item.ValueExpr)
		if err != nil {
			return cty.NilType, fmt.Errorf("object type attribute %q: %w", name, err)
		}
		attrs[name] = ty
	}
	return cty.Object(attrs), nil
}

func tupleType(ctx context.Context, arg hcl.Expression) (cty.Type, error) {
	tuple, ok := arg.(*hclsyntax.TupleConsExpr)
	if !ok {
		return cty.NilType, fmt.Errorf("tuple type constructor requires a list of element types, e.g. tuple([string, number])")
	}
	elems := make([]cty.Type, len(tuple.Exprs))
	for i, e := range tuple.Exprs {
		ty, err := typeExprToCtyType(ctx, e)
		if err != nil {
			return cty.NilType, fmt.Errorf("tuple element %d: %w", i, err)
		}
		elems[i] = ty
	}
	return cty.Tuple(elems), nil
}
