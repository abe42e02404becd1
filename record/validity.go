// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package record

// Validity is the state of a record's validity cache.
type Validity int

const (
	// ValidityUnknown means the schema has not been consulted yet.
	ValidityUnknown Validity = iota
	ValidityValid
	ValidityInvalid
)

func (v Validity) String() string {
	switch v {
	case ValidityValid:
		return "valid"
	case ValidityInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// verdict is the cached outcome of validating one record.
type verdict struct {
	err error
}

// IsValid reports whether the record's stored attributes satisfy the
// model's schema. The schema is consulted at most once per record; a model
// without a schema is always valid.
func (r *Record) IsValid() bool {
	return r.evaluate().err == nil
}

// ValidationError returns the schema's reason for rejecting the record, or
// nil if the record is valid. It shares the cached verdict with IsValid.
func (r *Record) ValidationError() error {
	return r.evaluate().err
}

// Validity reports the cache state without triggering validation.
func (r *Record) Validity() Validity {
	v := r.verdict.Load()
	switch {
	case v == nil:
		return ValidityUnknown
	case v.err == nil:
		return ValidityValid
	default:
		return ValidityInvalid
	}
}

func (r *Record) evaluate() *verdict {
	if v := r.verdict.Load(); v != nil {
		return v
	}

	v := &verdict{}
	if r.model.schema != nil {
		v.err = r.model.schema.Validate(r.ToObject())
	}
	if r.verdict.CompareAndSwap(nil, v) {
		return v
	}
	return r.verdict.Load()
}
