// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package record

import (
	"errors"
	"fmt"
)

// Reasons reported by Define through *ConfigurationError.
var (
	ErrMissingName             = errors.New("model name is required")
	ErrInvalidDefaults         = errors.New("defaults must be a mapping of attribute names to known values")
	ErrInvalidValidationSchema = errors.New("validate is not a usable schema")
	ErrVirtualNameCollision    = errors.New("attribute is declared both as stored and as virtual")
	ErrNonFunctionVirtual      = errors.New("virtual attribute has no function")
	ErrUnknownDependency       = errors.New("virtual depends on an undeclared attribute")
)

// Reasons reported by Record operations through *InvariantViolation.
var (
	ErrCannotSetVirtual    = errors.New("cannot set virtual attribute")
	ErrCannotRemoveVirtual = errors.New("cannot remove virtual attribute")
	ErrUnknownAttribute    = errors.New("unknown attribute")
	ErrInvalidValue        = errors.New("attribute value must not be cty.NilVal")
)

// ErrVirtualCycle is reported by Define as a *ConfigurationError when
// declared dependencies form a cycle, and raised by Get as a panic carrying
// an *InvariantViolation when a virtual reads itself back at runtime.
var ErrVirtualCycle = errors.New("virtual attributes depend on each other in a cycle")

// ConfigurationError is returned by Define when a Config cannot produce a
// model. No partial model is ever returned alongside it.
type ConfigurationError struct {
	Model     string
	Attribute string
	Reason    error
	Detail    string
}

func (e *ConfigurationError) Error() string {
	msg := "invalid model"
	if e.Model != "" {
		msg = fmt.Sprintf("invalid model %q", e.Model)
	}
	if e.Attribute != "" {
		msg = fmt.Sprintf("%s, attribute %q", msg, e.Attribute)
	}
	msg = fmt.Sprintf("%s: %v", msg, e.Reason)
	if e.Detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Detail)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Reason }

// InvariantViolation is returned when an operation on a Record would break
// one of the model's invariants. The receiver is left unchanged and no new
// record is produced.
type InvariantViolation struct {
	Model     string
	Attribute string
	Reason    error
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("%v %q on model %q", e.Reason, e.Attribute, e.Model)
}

func (e *InvariantViolation) Unwrap() error { return e.Reason }
