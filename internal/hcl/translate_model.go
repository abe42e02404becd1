// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// This file contains the logic for translating HCL schema structs (from
// schema.go) into the format-agnostic manifest model defined in the config
// package.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/avery/internal/config"
	"github.com/vk/avery/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// translateModel converts one `model` block into a config.ModelDefinition.
func translateModel(ctx context.Context, file string, b *modelBlock) (*config.ModelDefinition, error) {
	logger := ctxlog.FromContext(ctx)

	def := &config.ModelDefinition{
		Name:        b.Name,
		Description: b.Description,
		Source:      file,
		Attributes:  make(map[string]*config.AttributeDefinition, len(b.Attributes)),
		Virtuals:    make(map[string]*config.VirtualDefinition, len(b.Virtuals)),
	}

	for _, attr := range b.Attributes {
		if _, dup := def.Attributes[attr.Name]; dup {
			return nil, fmt.Errorf("in model '%s', attribute '%s' is declared more than once", b.Name, attr.Name)
		}
		translated, err := translateAttribute(ctx, attr, b.Name)
		if err != nil {
			return nil, err
		}
		def.Attributes[attr.Name] = translated
	}

	for _, v := range b.Virtuals {
		if _, dup := def.Virtuals[v.Name]; dup {
			return nil, fmt.Errorf("in model '%s', virtual '%s' is declared more than once", b.Name, v.Name)
		}
		translated, err := translateVirtual(ctx, v, b.Name)
		if err != nil {
			return nil, err
		}
		def.Virtuals[v.Name] = translated
	}

	for _, rule := range b.Validations {
		def.Validations = append(def.Validations, &config.ValidationRule{
			Condition:    rule.Condition,
			ErrorMessage: rule.ErrorMessage,
		})
	}

	logger.Debug("Translated model block.",
		"model", def.Name,
		"file", file,
		"attributes", len(def.Attributes),
		"virtuals", len(def.Virtuals),
		"validations", len(def.Validations),
	)
	return def, nil
}

// translateAttribute processes a single attribute block, handling its type
// and default value. The default is evaluated without variables but with
// the manifest functions available.
func translateAttribute(ctx context.Context, b *attributeBlock, modelName string) (*config.AttributeDefinition, error) {
	parsedType, err := typeExprToCtyType(ctx, typeExpr(b.Type))
	if err != nil {
		return nil, fmt.Errorf("in model '%s', attribute '%s': %w", modelName, b.Name, err)
	}

	var defaultVal *cty.Value
	if b.Default != nil {
		val, diags := b.Default.Value(NewEvalContext(nil))
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid default value for attribute '%s' in model '%s': %w", b.Name, modelName, diags)
		}
		if !val.IsNull() {
			defaultVal = &val
		}
	}

	return &config.AttributeDefinition{
		Name:        b.Name,
		Type:        parsedType,
		Description: b.Description,
		Default:     defaultVal,
		Required:    b.Required,
	}, nil
}

func translateVirtual(ctx context.Context, b *virtualBlock, modelName string) (*config.VirtualDefinition, error) {
	def := &config.VirtualDefinition{
		Name:        b.Name,
		Description: b.Description,
		Handler:     b.Handler,
		Type:        cty.NilType,
		DependsOn:   append([]string(nil), b.DependsOn...),
	}
	if b.Expr != nil {
		def.Expr = b.Expr.Expr
	}
	if b.Type != nil {
		parsedType, err := typeExprToCtyType(ctx, b.Type.Expr)
		if err != nil {
			return nil, fmt.Errorf("in model '%s', virtual '%s': %w", modelName, b.Name, err)
		}
		def.Type = parsedType
	}
	return def, nil
}

func typeExpr(attr *hcl.Attribute) hcl.Expression {
	if attr == nil {
		return nil
	}
	return attr.Expr
}
