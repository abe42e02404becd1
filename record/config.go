// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package record

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/vk/avery/internal/dag"
	"github.com/zclconf/go-cty/cty"
)

// Schema decides whether a full stored-attribute mapping is valid. The
// object passed to Validate is a cty object holding every stored attribute;
// virtual attributes are never part of it. Validate must be deterministic.
type Schema interface {
	Validate(obj cty.Value) error
}

// schemaChecker is implemented by schemas that can verify their own
// construction, such as schema.Object.
type schemaChecker interface {
	Check() error
}

// Reader is the read capability handed to a VirtualFunc. It resolves
// attributes against the record the virtual is being computed for, so a
// virtual may read stored attributes and other virtuals alike.
type Reader interface {
	Get(key string) cty.Value
	Has(key string) bool
}

// VirtualFunc computes a virtual attribute. It must be a pure function of
// what it reads through r.
type VirtualFunc func(r Reader) cty.Value

// Config is the input to Define.
type Config struct {
	// Name identifies the model kind. Required.
	Name string

	// Defaults maps every stored attribute name to its default value. The
	// key set is fixed for the lifetime of the model. Required; use an
	// empty, non-nil map for a model without stored attributes.
	Defaults map[string]cty.Value

	// Validate is the optional validation schema. A nil schema means every
	// record is valid.
	Validate Schema

	// Virtuals maps virtual attribute names to their functions.
	Virtuals map[string]VirtualFunc

	// DependsOn optionally declares, per virtual, the attributes it reads.
	// Declared dependencies are checked for unknown names and cycles when
	// the model is defined.
	DependsOn map[string][]string

	// Logger receives debug output from Define and Model.New. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Define validates cfg and returns the resulting Model. Checks run in a
// fixed order and the first failure is returned as a *ConfigurationError.
func Define(cfg Config) (*Model, error) {
	if cfg.Name == "" {
		return nil, &ConfigurationError{Reason: ErrMissingName}
	}
	fail := func(attr string, reason error, detail string) (*Model, error) {
		return nil, &ConfigurationError{Model: cfg.Name, Attribute: attr, Reason: reason, Detail: detail}
	}

	if cfg.Defaults == nil {
		return fail("", ErrInvalidDefaults, "defaults is nil")
	}
	stored := sortedKeys(cfg.Defaults)
	for _, name := range stored {
		value := cfg.Defaults[name]
		switch {
		case name == "":
			return fail(name, ErrInvalidDefaults, "attribute name is empty")
		case IsAbsent(value):
			return fail(name, ErrInvalidDefaults, "default is cty.NilVal")
		case !value.IsWhollyKnown():
			return fail(name, ErrInvalidDefaults, "default is not a known value")
		}
	}

	if cfg.Validate != nil {
		if isNilInterface(cfg.Validate) {
			return fail("", ErrInvalidValidationSchema, fmt.Sprintf("%T is nil", cfg.Validate))
		}
		if checker, ok := cfg.Validate.(schemaChecker); ok {
			if err := checker.Check(); err != nil {
				return fail("", ErrInvalidValidationSchema, err.Error())
			}
		}
	}

	virtualNames := sortedKeys(cfg.Virtuals)
	for _, name := range virtualNames {
		if _, ok := cfg.Defaults[name]; ok {
			return fail(name, ErrVirtualNameCollision, "")
		}
	}
	for _, name := range virtualNames {
		if name == "" {
			return fail(name, ErrNonFunctionVirtual, "virtual name is empty")
		}
		if cfg.Virtuals[name] == nil {
			return fail(name, ErrNonFunctionVirtual, "")
		}
	}

	order, err := virtualOrder(cfg, stored, virtualNames)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Model{
		name:         cfg.Name,
		defaults:     make(map[string]cty.Value, len(cfg.Defaults)),
		stored:       stored,
		virtuals:     make(map[string]VirtualFunc, len(cfg.Virtuals)),
		virtualNames: order,
		dependsOn:    make(map[string][]string, len(cfg.DependsOn)),
		schema:       cfg.Validate,
		logger:       logger,
	}
	for name, value := range cfg.Defaults {
		m.defaults[name] = value
	}
	for name, fn := range cfg.Virtuals {
		m.virtuals[name] = fn
	}
	for name, deps := range cfg.DependsOn {
		m.dependsOn[name] = append([]string(nil), deps...)
	}
	m.base = newBase(m.defaults)

	logger.Debug("Model defined.",
		"model", m.name,
		"stored", len(m.stored),
		"virtuals", len(m.virtualNames),
		"schema", m.schema != nil,
	)
	return m, nil
}

// virtualOrder checks the declared dependencies and returns the virtual
// names ordered so that each virtual follows the virtuals it reads.
func virtualOrder(cfg Config, stored, virtualNames []string) ([]string, error) {
	if len(cfg.DependsOn) == 0 {
		return virtualNames, nil
	}

	g := dag.New()
	for _, name := range stored {
		g.AddNode(name)
	}
	for _, name := range virtualNames {
		g.AddNode(name)
	}

	for _, name := range sortedKeys(cfg.DependsOn) {
		if _, ok := cfg.Virtuals[name]; !ok {
			return nil, &ConfigurationError{
				Model: cfg.Name, Attribute: name, Reason: ErrUnknownDependency,
				Detail: "dependencies can only be declared for virtual attributes",
			}
		}
		for _, dep := range cfg.DependsOn[name] {
			if !g.HasNode(dep) {
				return nil, &ConfigurationError{
					Model: cfg.Name, Attribute: name, Reason: ErrUnknownDependency,
					Detail: fmt.Sprintf("%q is not an attribute of the model", dep),
				}
			}
			if err := g.AddEdge(dep, name); err != nil {
				return nil, cycleError(cfg.Name, name, err)
			}
		}
	}

	all, err := g.TopologicalOrder()
	if err != nil {
		return nil, cycleError(cfg.Name, "", err)
	}
	order := make([]string, 0, len(virtualNames))
	for _, name := range all {
		if _, ok := cfg.Virtuals[name]; ok {
			order = append(order, name)
		}
	}
	return order, nil
}

func cycleError(model, attr string, err error) error {
	var cycle *dag.CycleError
	if !errors.As(err, &cycle) {
		return err
	}
	if attr == "" {
		attr = cycle.Path[0]
	}
	return &ConfigurationError{Model: model, Attribute: attr, Reason: ErrVirtualCycle, Detail: cycle.Error()}
}

// isNilInterface reports whether v holds a typed nil pointer, map, func or
// similar.
func isNilInterface(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
