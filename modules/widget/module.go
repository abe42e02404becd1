// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package widget registers the virtual handlers used by widget manifests.
package widget

import (
	"regexp"
	"strings"

	"github.com/vk/avery/record"
	"github.com/vk/avery/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Label is the handler for "widget.label". It reads "name" and "id" and
// renders them as `Name (#1)`. A widget without a name is "unnamed".
func Label(r record.Reader) cty.Value {
	name := "unnamed"
	if v := r.Get("name"); isString(v) && v.AsString() != "" {
		name = v.AsString()
	}
	id := r.Get("id")
	if record.IsAbsent(id) || id.IsNull() {
		return cty.StringVal(name)
	}
	return cty.StringVal(name + " (#" + record.FormatValue(id) + ")")
}

// Slug is the handler for "widget.slug". It reads "name" and returns it
// lower-cased with every run of other characters replaced by a dash, or
// null when there is no name.
func Slug(r record.Reader) cty.Value {
	v := r.Get("name")
	if !isString(v) {
		return cty.NullVal(cty.String)
	}
	slug := nonSlug.ReplaceAllString(strings.ToLower(v.AsString()), "-")
	return cty.StringVal(strings.Trim(slug, "-"))
}

func isString(v cty.Value) bool {
	return !record.IsAbsent(v) && v.IsKnown() && !v.IsNull() && v.Type() == cty.String
}

// Register registers the handlers with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register("widget.label", Label)
	r.Register("widget.slug", Slug)
}
