// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package snapshot provides the persistent attribute store behind every
// record. A Snapshot is an immutable radix tree of attribute name to
// cty.Value. Every write returns a new Snapshot that shares all untouched
// nodes with its parent; the parent stays valid and unchanged.
package snapshot

import (
	iradix "github.com/hashicorp/go-immutable-radix"
	"github.com/zclconf/go-cty/cty"
)

// Snapshot is one immutable version of a set of attribute bindings.
// The zero value is an empty snapshot and is ready to use.
type Snapshot struct {
	tree *iradix.Tree
}

// New returns an empty snapshot.
func New() Snapshot {
	return Snapshot{tree: iradix.New()}
}

// FromMap builds a snapshot holding every binding in values, using a single
// transaction.
func FromMap(values map[string]cty.Value) Snapshot {
	return New().WithAll(values)
}

func (s Snapshot) root() *iradix.Tree {
	if s.tree == nil {
		return iradix.New()
	}
	return s.tree
}

// Get returns the value bound to key and whether it was present.
func (s Snapshot) Get(key string) (cty.Value, bool) {
	raw, ok := s.root().Get([]byte(key))
	if !ok {
		return cty.NilVal, false
	}
	return raw.(cty.Value), true
}

// With returns a new snapshot with key bound to value.
func (s Snapshot) With(key string, value cty.Value) Snapshot {
	tree, _, _ := s.root().Insert([]byte(key), value)
	return Snapshot{tree: tree}
}

// WithAll returns a new snapshot with every binding in values applied.
// All writes go through one transaction so intermediate trees are never
// materialized.
func (s Snapshot) WithAll(values map[string]cty.Value) Snapshot {
	txn := s.root().Txn()
	for key, value := range values {
		txn.Insert([]byte(key), value)
	}
	return Snapshot{tree: txn.Commit()}
}

// Len returns the number of bindings.
func (s Snapshot) Len() int {
	return s.root().Len()
}

// Each calls fn for every binding in ascending key order until fn returns
// false.
func (s Snapshot) Each(fn func(key string, value cty.Value) bool) {
	s.root().Root().Walk(func(k []byte, v interface{}) bool {
		return !fn(string(k), v.(cty.Value))
	})
}

// Map copies the bindings into a plain map.
func (s Snapshot) Map() map[string]cty.Value {
	out := make(map[string]cty.Value, s.Len())
	s.Each(func(key string, value cty.Value) bool {
		out[key] = value
		return true
	})
	return out
}

// Same reports whether both snapshots point at the same tree version.
func (s Snapshot) Same(other Snapshot) bool {
	return s.tree != nil && s.tree == other.tree
}
