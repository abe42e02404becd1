// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Integer accepts whole numbers only.
func Integer() Check {
	return func(v cty.Value) error {
		if v.Type() != cty.Number {
			return errors.New("must be a number")
		}
		if !v.AsBigFloat().IsInt() {
			return errors.New("must be an integer")
		}
		return nil
	}
}

// NotEmpty rejects empty strings and empty collections.
func NotEmpty() Check {
	return func(v cty.Value) error {
		switch {
		case v.Type() == cty.String:
			if v.AsString() == "" {
				return errors.New("must not be empty")
			}
		case v.CanIterateElements():
			if v.LengthInt() == 0 {
				return errors.New("must not be empty")
			}
		}
		return nil
	}
}

// OneOf accepts only values equal to one of allowed.
func OneOf(allowed ...cty.Value) Check {
	return func(v cty.Value) error {
		for _, a := range allowed {
			if eq := v.Equals(a); eq.IsKnown() && eq.True() {
				return nil
			}
		}
		opts := make([]string, len(allowed))
		for i, a := range allowed {
			opts[i] = a.GoString()
		}
		return fmt.Errorf("must be one of %s", strings.Join(opts, ", "))
	}
}

// Between accepts numbers in the closed range [lo, hi].
func Between(lo, hi float64) Check {
	return func(v cty.Value) error {
		if v.Type() != cty.Number {
			return errors.New("must be a number")
		}
		n := v.AsBigFloat()
		if n.Cmp(big.NewFloat(lo)) < 0 || n.Cmp(big.NewFloat(hi)) > 0 {
			return fmt.Errorf("must be between %g and %g", lo, hi)
		}
		return nil
	}
}

// Matches accepts strings matching pattern. It panics if pattern does not
// compile, like regexp.MustCompile.
func Matches(pattern string) Check {
	re := regexp.MustCompile(pattern)
	return func(v cty.Value) error {
		if v.Type() != cty.String {
			return errors.New("must be a string")
		}
		if !re.MatchString(v.AsString()) {
			return fmt.Errorf("must match %q", pattern)
		}
		return nil
	}
}
