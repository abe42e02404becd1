// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package record

import (
	"log/slog"
	"slices"

	"github.com/vk/avery/internal/snapshot"
	"github.com/zclconf/go-cty/cty"
)

// Model is the immutable definition of one kind of record. It is created by
// Define and never modified afterwards; every Record of the model holds a
// pointer to it.
type Model struct {
	name     string
	defaults map[string]cty.Value
	// base is the snapshot of the defaults. Each record's first snapshot is
	// derived from it and shares its nodes.
	base         snapshot.Snapshot
	stored       []string
	virtuals     map[string]VirtualFunc
	virtualNames []string
	dependsOn    map[string][]string
	schema       Schema
	logger       *slog.Logger
}

func newBase(defaults map[string]cty.Value) snapshot.Snapshot {
	return snapshot.FromMap(defaults)
}

// Name returns the model's name.
func (m *Model) Name() string { return m.name }

// Schema returns the validation schema, or nil.
func (m *Model) Schema() Schema { return m.schema }

// StoredNames returns the stored attribute names in sorted order.
func (m *Model) StoredNames() []string { return slices.Clone(m.stored) }

// VirtualNames returns the virtual attribute names. When dependencies were
// declared, each virtual comes after the virtuals it reads; otherwise the
// names are sorted.
func (m *Model) VirtualNames() []string { return slices.Clone(m.virtualNames) }

// DependsOn returns the declared dependencies of a virtual attribute.
func (m *Model) DependsOn(name string) []string { return slices.Clone(m.dependsOn[name]) }

// Default returns the default value of a stored attribute.
func (m *Model) Default(name string) (cty.Value, bool) {
	v, ok := m.defaults[name]
	return v, ok
}

// IsStored reports whether name is a stored attribute.
func (m *Model) IsStored(name string) bool {
	_, ok := m.defaults[name]
	return ok
}

// IsVirtual reports whether name is a virtual attribute.
func (m *Model) IsVirtual(name string) bool {
	_, ok := m.virtuals[name]
	return ok
}

// Has reports whether name is a stored or a virtual attribute.
func (m *Model) Has(name string) bool {
	return m.IsStored(name) || m.IsVirtual(name)
}

// New creates a record whose stored attributes are the defaults overlaid
// with values. Entries for names that are not stored attributes, including
// virtual names, are ignored, as are cty.NilVal entries.
func (m *Model) New(values map[string]cty.Value) *Record {
	if len(values) == 0 {
		return newRecord(m, m.base)
	}

	overrides := make(map[string]cty.Value, len(values))
	for name, value := range values {
		if !m.IsStored(name) {
			m.logger.Debug("Ignoring value for undeclared attribute.", "model", m.name, "attribute", name)
			continue
		}
		if IsAbsent(value) {
			continue
		}
		overrides[name] = value
	}
	return newRecord(m, m.base.WithAll(overrides))
}
