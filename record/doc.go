// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package record implements immutable, schema-validated records with lazily
// computed, memoized virtual attributes.
//
// # Core Concepts
//
//   - Model: the immutable definition of one kind of record, built once by
//     Define. It holds the stored attributes with their defaults, the
//     virtual attribute functions and an optional validation Schema. All
//     records of a model share it by reference.
//
//   - Record: one immutable snapshot of stored attribute values plus two
//     private caches, one for virtual attribute values and one for the
//     validity verdict. Set, Remove and Merge never touch the receiver; they
//     return a new Record whose caches start empty.
//
//   - Virtual attribute: a read-only value derived by a VirtualFunc from the
//     record's other attributes. It is computed on first Get and remembered
//     for the lifetime of that Record.
//
// Attribute values are cty.Values. Unknown attribute names read as Absent.
//
// Usage:
//
//	widget, err := record.Define(record.Config{
//	    Name: "widget",
//	    Defaults: map[string]cty.Value{
//	        "id":   cty.NullVal(cty.Number),
//	        "name": cty.NullVal(cty.String),
//	    },
//	    Virtuals: map[string]record.VirtualFunc{
//	        "label": func(r record.Reader) cty.Value { ... },
//	    },
//	})
//	r := widget.New(map[string]cty.Value{"id": cty.NumberIntVal(1)})
//	r2, err := r.Set("name", cty.StringVal("Name"))
package record
