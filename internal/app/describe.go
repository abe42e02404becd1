// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vk/avery/internal/config"
	"github.com/vk/avery/record"
	"github.com/zclconf/go-cty/cty"
)

// Describe prints every model with its attributes, virtuals and
// validations.
func (a *App) Describe() error {
	if err := a.LoadModels(); err != nil {
		return err
	}

	for i, name := range a.manifest.Names() {
		if i > 0 {
			fmt.Fprintln(a.outW)
		}
		describeModel(a, a.manifest.Models[name], a.models[name])
	}
	return nil
}

func describeModel(a *App, def *config.ModelDefinition, m *record.Model) {
	w := a.outW
	fmt.Fprintf(w, "model %s (%s)\n", def.Name, def.Source)
	if def.Description != "" {
		fmt.Fprintf(w, "  %s\n", def.Description)
	}

	for _, name := range m.StoredNames() {
		attr := def.Attributes[name]
		parts := []string{typeName(attr.Type)}
		if attr.Required {
			parts = append(parts, "required")
		}
		value, _ := m.Default(name)
		parts = append(parts, "default "+record.FormatValue(value))
		fmt.Fprintf(w, "  attribute %s: %s\n", name, strings.Join(parts, ", "))
	}

	for _, name := range m.VirtualNames() {
		v := def.Virtuals[name]
		source := "expr"
		if v.Handler != "" {
			source = "handler " + v.Handler
		}
		parts := []string{source}
		if v.Type != cty.NilType {
			parts = append(parts, typeName(v.Type))
		}
		if deps := m.DependsOn(name); len(deps) > 0 {
			sort.Strings(deps)
			parts = append(parts, "depends on "+strings.Join(deps, ", "))
		}
		fmt.Fprintf(w, "  virtual %s: %s\n", name, strings.Join(parts, ", "))
	}

	for _, rule := range def.Validations {
		fmt.Fprintf(w, "  validation: %s\n", rule.ErrorMessage)
	}
}

func typeName(ty cty.Type) string {
	if ty == cty.DynamicPseudoType {
		return "any"
	}
	return ty.FriendlyNameForConstraint()
}
