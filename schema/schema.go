// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Check validates a single, known, non-null attribute value.
type Check func(v cty.Value) error

// Rule validates the whole attribute object. Rules run only when every
// attribute on its own is valid, so a rule may rely on declared types.
type Rule func(obj cty.Value) error

// Attribute constrains one attribute of an Object.
type Attribute struct {
	// Type is the required type. The zero Type and cty.DynamicPseudoType
	// accept any value.
	Type cty.Type
	// Required rejects null values.
	Required bool
	// Checks run in order after the type has been confirmed.
	Checks []Check
}

// Object is a schema for a full attribute object.
type Object struct {
	Attributes map[string]*Attribute
	Rules      []Rule
	// AllowUnknown accepts attributes that have no entry in Attributes.
	AllowUnknown bool
}

// Func adapts an ordinary function to a schema.
type Func func(obj cty.Value) error

// Validate calls f(obj).
func (f Func) Validate(obj cty.Value) error { return f(obj) }

// Check reports construction mistakes in the schema itself.
func (o *Object) Check() error {
	if o == nil {
		return errors.New("schema object is nil")
	}
	var errs []error
	for _, name := range o.names() {
		attr := o.Attributes[name]
		switch {
		case name == "":
			errs = append(errs, errors.New("attribute name is empty"))
		case attr == nil:
			errs = append(errs, fmt.Errorf("attribute %q has no definition", name))
		default:
			for i, check := range attr.Checks {
				if check == nil {
					errs = append(errs, fmt.Errorf("attribute %q: check %d is nil", name, i))
				}
			}
		}
	}
	for i, rule := range o.Rules {
		if rule == nil {
			errs = append(errs, fmt.Errorf("rule %d is nil", i))
		}
	}
	return errors.Join(errs...)
}

// Validate checks obj against every attribute constraint, then, if those
// all pass, against every rule. All problems found are joined into one
// error; each attribute problem is a cty.PathError.
func (o *Object) Validate(obj cty.Value) error {
	if obj.IsNull() || !obj.IsKnown() {
		return errors.New("value must be a known object")
	}
	if !obj.Type().IsObjectType() {
		return fmt.Errorf("value must be an object, got %s", obj.Type().FriendlyName())
	}

	var errs []error
	for _, name := range o.names() {
		if err := o.Attributes[name].validate(obj, name); err != nil {
			errs = append(errs, err)
		}
	}

	if !o.AllowUnknown {
		present := make([]string, 0, len(obj.Type().AttributeTypes()))
		for name := range obj.Type().AttributeTypes() {
			present = append(present, name)
		}
		sort.Strings(present)
		for _, name := range present {
			if _, ok := o.Attributes[name]; !ok {
				errs = append(errs, cty.GetAttrPath(name).NewErrorf("attribute is not allowed"))
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for _, rule := range o.Rules {
		if err := rule(obj); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Attribute) validate(obj cty.Value, name string) error {
	path := cty.GetAttrPath(name)

	if !obj.Type().HasAttribute(name) {
		if a.Required {
			return path.NewErrorf("attribute is required")
		}
		return nil
	}

	v := obj.GetAttr(name)
	if !v.IsKnown() {
		return path.NewErrorf("value must be known")
	}
	if v.IsNull() {
		if a.Required {
			return path.NewErrorf("attribute is required")
		}
		return nil
	}

	want := a.Type
	if want == cty.NilType {
		want = cty.DynamicPseudoType
	}
	if errs := v.Type().TestConformance(want); len(errs) > 0 {
		return path.NewErrorf("%s required, got %s", want.FriendlyName(), v.Type().FriendlyName())
	}

	for _, check := range a.Checks {
		if err := check(v); err != nil {
			return path.NewError(err)
		}
	}
	return nil
}

func (o *Object) names() []string {
	names := make([]string, 0, len(o.Attributes))
	for name := range o.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
