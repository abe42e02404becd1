// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/vk/avery/internal/config"
	"github.com/vk/avery/internal/ctxlog"
	avhcl "github.com/vk/avery/internal/hcl"
	"github.com/vk/avery/record"
	"github.com/vk/avery/schema"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Build loads the manifests found under paths and builds every declared
// model. Any load failure or *record.ConfigurationError aborts the build.
func (r *Registry) Build(ctx context.Context, paths ...string) (map[string]*record.Model, error) {
	manifest, err := r.loader.Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifests: %w", err)
	}
	return r.BuildManifest(ctx, manifest)
}

// BuildManifest builds every model of an already loaded manifest.
func (r *Registry) BuildManifest(ctx context.Context, manifest *config.Manifest) (map[string]*record.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building models.", "models", len(manifest.Models), "handlers", r.Names())

	models := make(map[string]*record.Model, len(manifest.Models))
	used := make(map[string]struct{})
	for _, name := range manifest.Names() {
		def := manifest.Models[name]
		m, err := r.buildModel(logger, def)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.Source, err)
		}
		models[name] = m
		for _, v := range def.Virtuals {
			if v.Handler != "" {
				used[v.Handler] = struct{}{}
			}
		}
	}

	for _, name := range r.Names() {
		if _, ok := used[name]; !ok {
			logger.Debug("Registered virtual handler is not used by any model.", "handler", name)
		}
	}

	logger.Info("Models built.", "count", len(models))
	return models, nil
}

func (r *Registry) buildModel(logger *slog.Logger, def *config.ModelDefinition) (*record.Model, error) {
	fail := func(attr string, reason error, detail string) (*record.Model, error) {
		return nil, &record.ConfigurationError{Model: def.Name, Attribute: attr, Reason: reason, Detail: detail}
	}

	defaults := make(map[string]cty.Value, len(def.Attributes))
	obj := &schema.Object{Attributes: make(map[string]*schema.Attribute, len(def.Attributes))}
	for name, attr := range def.Attributes {
		value, err := defaultValue(attr)
		if err != nil {
			return fail(name, record.ErrInvalidDefaults, err.Error())
		}
		defaults[name] = value
		obj.Attributes[name] = &schema.Attribute{Type: attr.Type, Required: attr.Required}
	}

	for i, rule := range def.Validations {
		for _, name := range avhcl.Variables(rule.Condition) {
			if _, ok := def.Attributes[name]; !ok {
				return fail("", record.ErrInvalidValidationSchema,
					fmt.Sprintf("validation %d refers to %q, which is not a stored attribute", i, name))
			}
		}
		obj.Rules = append(obj.Rules, validationRule(rule))
	}

	virtuals := make(map[string]record.VirtualFunc, len(def.Virtuals))
	dependsOn := make(map[string][]string, len(def.Virtuals))
	problems := make(map[string]string)
	for name, v := range def.Virtuals {
		fn, deps, problem := r.virtual(logger, def.Name, v)
		virtuals[name] = fn
		if problem != "" {
			problems[name] = problem
		}
		if len(deps) > 0 {
			dependsOn[name] = deps
		}
	}

	m, err := record.Define(record.Config{
		Name:      def.Name,
		Defaults:  defaults,
		Validate:  obj,
		Virtuals:  virtuals,
		DependsOn: dependsOn,
		Logger:    logger,
	})
	if err != nil {
		var cfgErr *record.ConfigurationError
		if errors.As(err, &cfgErr) && errors.Is(cfgErr.Reason, record.ErrNonFunctionVirtual) && cfgErr.Detail == "" {
			cfgErr.Detail = problems[cfgErr.Attribute]
		}
		return nil, err
	}
	return m, nil
}

// defaultValue returns the attribute's default converted to its declared
// type. A missing default becomes a null of that type.
func defaultValue(attr *config.AttributeDefinition) (cty.Value, error) {
	value := attr.DefaultValue()
	if value.IsNull() {
		return cty.NullVal(attr.Type), nil
	}
	converted, err := convert.Convert(value, attr.Type)
	if err != nil {
		return cty.NilVal, fmt.Errorf("default does not conform to %s: %w", attr.Type.FriendlyName(), err)
	}
	return converted, nil
}

// virtual resolves one virtual definition into its function and the
// attributes it depends on. A nil function comes with a description of why
// none could be produced.
func (r *Registry) virtual(logger *slog.Logger, model string, v *config.VirtualDefinition) (record.VirtualFunc, []string, string) {
	deps := slices.Clone(v.DependsOn)

	switch {
	case v.Expr != nil && v.Handler != "":
		return nil, nil, "expr and handler are mutually exclusive"
	case v.Expr != nil:
		vars := avhcl.Variables(v.Expr)
		for _, name := range vars {
			if !slices.Contains(deps, name) {
				deps = append(deps, name)
			}
		}
		return typed(logger, model, v, expressionVirtual(logger, model, v, vars)), deps, ""
	case v.Handler != "":
		fn, ok := r.Handler(v.Handler)
		if !ok {
			return nil, nil, fmt.Sprintf("handler %q is not registered", v.Handler)
		}
		return typed(logger, model, v, fn), deps, ""
	default:
		return nil, nil, "one of expr or handler is required"
	}
}

// expressionVirtual evaluates v.Expr with every variable it names bound to
// the record's value of that attribute. An evaluation failure yields null.
func expressionVirtual(logger *slog.Logger, model string, v *config.VirtualDefinition, vars []string) record.VirtualFunc {
	return func(rd record.Reader) cty.Value {
		bound := make(map[string]cty.Value, len(vars))
		for _, name := range vars {
			bound[name] = rd.Get(name)
		}
		value, diags := v.Expr.Value(avhcl.NewEvalContext(bound))
		if diags.HasErrors() {
			logger.Warn("Virtual expression failed to evaluate.", "model", model, "virtual", v.Name, "error", diags.Error())
			return cty.NullVal(resultType(v))
		}
		return value
	}
}

// typed converts the result of fn to the virtual's declared type, if any.
func typed(logger *slog.Logger, model string, v *config.VirtualDefinition, fn record.VirtualFunc) record.VirtualFunc {
	if v.Type == cty.NilType || v.Type == cty.DynamicPseudoType {
		return fn
	}
	return func(rd record.Reader) cty.Value {
		value := fn(rd)
		if record.IsAbsent(value) {
			return cty.NullVal(v.Type)
		}
		converted, err := convert.Convert(value, v.Type)
		if err != nil {
			logger.Warn("Virtual result does not conform to its type.", "model", model, "virtual", v.Name, "type", v.Type.FriendlyName(), "error", err)
			return cty.NullVal(v.Type)
		}
		return converted
	}
}

func resultType(v *config.VirtualDefinition) cty.Type {
	if v.Type == cty.NilType {
		return cty.DynamicPseudoType
	}
	return v.Type
}

// validationRule turns a manifest condition into a schema rule over the
// stored attribute object. A rule whose referenced attributes are all null
// is skipped; requiring a value is the job of `required`.
func validationRule(rule *config.ValidationRule) schema.Rule {
	refs := avhcl.Variables(rule.Condition)
	return func(obj cty.Value) error {
		vars := make(map[string]cty.Value)
		for name := range obj.Type().AttributeTypes() {
			vars[name] = obj.GetAttr(name)
		}
		if allNull(vars, refs) {
			return nil
		}
		ok, err := avhcl.EvalBool(rule.Condition, vars)
		if err != nil {
			return fmt.Errorf("validation condition failed: %w", err)
		}
		if !ok {
			return errors.New(rule.ErrorMessage)
		}
		return nil
	}
}

func allNull(vars map[string]cty.Value, refs []string) bool {
	if len(refs) == 0 {
		return false
	}
	for _, name := range refs {
		if v, ok := vars[name]; ok && !v.IsNull() {
			return false
		}
	}
	return true
}
