// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vk/avery/internal/seed"
	"github.com/vk/avery/record"
	"github.com/zclconf/go-cty/cty"
)

// ErrInvalidRecords is returned by Check when at least one seeded record
// fails validation.
var ErrInvalidRecords = errors.New("invalid records found")

// Check builds a record from every seed under RecordsPath and prints its
// validity, stored attributes and virtual attributes.
func (a *App) Check() error {
	if a.config.RecordsPath == "" {
		return errors.New("RecordsPath is a required configuration field for check")
	}
	if err := a.LoadModels(); err != nil {
		return err
	}

	seeds, err := seed.Load(a.ctx, a.config.RecordsPath)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	a.logger.Debug("Seeds loaded.", "count", len(seeds))

	invalid := 0
	for _, s := range seeds {
		r, err := s.Build(a.models)
		if err != nil {
			return err
		}
		if !r.IsValid() {
			invalid++
		}
		printRecord(a.outW, s.ID(), r)
	}

	a.logger.Info("Records checked.", "total", len(seeds), "invalid", invalid)
	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidRecords, invalid, len(seeds))
	}
	return nil
}

func printRecord(w io.Writer, id string, r *record.Record) {
	if r.IsValid() {
		fmt.Fprintf(w, "%s: valid\n", id)
	} else {
		fmt.Fprintf(w, "%s: invalid (%s)\n", id, reasons(r.ValidationError()))
	}

	r.Each(func(key string, value cty.Value) bool {
		fmt.Fprintf(w, "  %s = %s\n", key, record.FormatValue(value))
		return true
	})
	for _, key := range r.Model().VirtualNames() {
		value, err := virtualValue(r, key)
		if err != nil {
			fmt.Fprintf(w, "  %s (virtual) error: %v\n", key, err)
			continue
		}
		fmt.Fprintf(w, "  %s (virtual) = %s\n", key, record.FormatValue(value))
	}
}

// reasons flattens a validation error into one line, naming the attribute
// each cty.PathError refers to.
func reasons(err error) string {
	var parts []string
	var walk func(error)
	walk = func(err error) {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				walk(e)
			}
			return
		}
		var pathErr cty.PathError
		if errors.As(err, &pathErr) && len(pathErr.Path) > 0 {
			parts = append(parts, formatPath(pathErr.Path)+": "+err.Error())
			return
		}
		parts = append(parts, strings.ReplaceAll(err.Error(), "\n", "; "))
	}
	walk(err)
	return strings.Join(parts, "; ")
}

func formatPath(path cty.Path) string {
	var sb strings.Builder
	for _, step := range path {
		switch s := step.(type) {
		case cty.GetAttrStep:
			if sb.Len() > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(s.Name)
		case cty.IndexStep:
			sb.WriteString("[" + record.FormatValue(s.Key) + "]")
		}
	}
	return sb.String()
}

// virtualValue reads a virtual attribute, turning the panic raised for a
// dependency cycle back into an error.
func virtualValue(r *record.Record, key string) (value cty.Value, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			violation, ok := rec.(*record.InvariantViolation)
			if !ok {
				panic(rec)
			}
			err = violation
		}
	}()
	return r.Get(key), nil
}
