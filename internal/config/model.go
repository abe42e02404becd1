// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package config

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Manifest is the unified representation of every model declared across
// all loaded manifest files.
type Manifest struct {
	Models map[string]*ModelDefinition
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{Models: make(map[string]*ModelDefinition)}
}

// Add registers def, rejecting a second model with the same name.
func (m *Manifest) Add(def *ModelDefinition) error {
	if prev, ok := m.Models[def.Name]; ok {
		return fmt.Errorf("model %q declared in %s is already declared in %s", def.Name, def.Source, prev.Source)
	}
	m.Models[def.Name] = def
	return nil
}

// Names returns the model names in sorted order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Models))
	for name := range m.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModelDefinition is the format-agnostic representation of a `model` block.
type ModelDefinition struct {
	Name        string
	Description string
	// Source is the file the model was declared in.
	Source      string
	Attributes  map[string]*AttributeDefinition
	Virtuals    map[string]*VirtualDefinition
	Validations []*ValidationRule
}

// AttributeDefinition declares one stored attribute.
type AttributeDefinition struct {
	Name        string
	Type        cty.Type
	Description string
	// Default is the attribute's default. A nil Default means null of Type.
	Default  *cty.Value
	Required bool
}

// DefaultValue returns the declared default, or a typed null.
func (a *AttributeDefinition) DefaultValue() cty.Value {
	if a.Default != nil {
		return *a.Default
	}
	return cty.NullVal(a.Type)
}

// VirtualDefinition declares one virtual attribute. Exactly one of Expr and
// Handler is set.
type VirtualDefinition struct {
	Name        string
	Description string
	Expr        hcl.Expression
	Handler     string
	// Type, when not cty.NilType, is the type the computed value is
	// converted to.
	Type      cty.Type
	DependsOn []string
}

// ValidationRule is a boolean condition over the stored attributes.
type ValidationRule struct {
	Condition    hcl.Expression
	ErrorMessage string
}
