// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package record

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// reader is the Reader handed to a VirtualFunc. chain lists the virtuals
// currently being computed on this goroutine's path through the record,
// outermost first.
type reader struct {
	record *Record
	chain  []string
}

func (rd *reader) Get(key string) cty.Value { return rd.record.get(key, rd.chain) }

func (rd *reader) Has(key string) bool { return rd.record.Has(key) }

// virtual returns the memoized value of a virtual attribute, computing it
// on first access. Two goroutines racing on the first access may both run
// fn; only the first stored result is ever returned.
func (r *Record) virtual(key string, fn VirtualFunc, chain []string) cty.Value {
	if cached, ok := r.virtuals.Load(key); ok {
		return cached.(cty.Value)
	}

	if slices.Contains(chain, key) {
		path := append(slices.Clone(chain), key)
		panic(&InvariantViolation{
			Model:     r.model.name,
			Attribute: key,
			Reason:    fmt.Errorf("%w: %s", ErrVirtualCycle, strings.Join(path, " -> ")),
		})
	}

	next := make([]string, len(chain), len(chain)+1)
	copy(next, chain)
	next = append(next, key)

	value := fn(&reader{record: r, chain: next})
	if IsAbsent(value) {
		value = cty.NullVal(cty.DynamicPseudoType)
	}

	actual, _ := r.virtuals.LoadOrStore(key, value)
	return actual.(cty.Value)
}
