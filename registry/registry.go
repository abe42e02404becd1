// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vk/avery/internal/config"
	avhcl "github.com/vk/avery/internal/hcl"
	"github.com/vk/avery/record"
)

// Module is the interface that handler packages implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the registered virtual handlers for a single application
// instance.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]record.VirtualFunc
	loader   config.Loader
}

// New creates a Registry and registers every given module with it.
func New(modules ...Module) *Registry {
	r := &Registry{
		handlers: make(map[string]record.VirtualFunc),
		loader:   avhcl.NewLoader(),
	}
	for _, mod := range modules {
		mod.Register(r)
	}
	return r
}

// Register makes fn available to manifests under name. Registering the same
// name twice, an empty name or a nil function is a programming error and
// panics.
func (r *Registry) Register(name string, fn record.VirtualFunc) {
	if name == "" {
		panic("virtual handler name must not be empty")
	}
	if fn == nil {
		panic(fmt.Sprintf("virtual handler '%s' is nil", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("virtual handler with name '%s' already registered", name))
	}
	r.handlers[name] = fn
}

// Handler returns the function registered under name.
func (r *Registry) Handler(name string) (record.VirtualFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[name]
	return fn, ok
}

// Names returns the registered handler names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
