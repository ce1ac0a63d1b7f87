// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package eval implements the pygen statement executor and block interpreter.
package eval

import (
	"sort"
	"sync"

	"nickandperla.net/pygen/internal/value"
)

// Namespace is the variable store of one interpreter session.
type Namespace struct {
	mu    sync.RWMutex
	store map[string]value.Value
}

// NewNamespace creates a new empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{
		store: make(map[string]value.Value),
	}
}

// Get retrieves a variable by name.
func (n *Namespace) Get(name string) (value.Value, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.store[name]
	return v, ok
}

// Set binds name to v, replacing any previous value and type.
func (n *Namespace) Set(name string, v value.Value) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.store[name] = v
}

// Has returns true if the name is bound.
func (n *Namespace) Has(name string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.store[name]
	return ok
}

// Names returns the bound names in sorted order.
func (n *Namespace) Names() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	names := make([]string, 0, len(n.store))
	for k := range n.store {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of all bindings.
func (n *Namespace) Snapshot() map[string]value.Value {
	n.mu.RLock()
	defer n.mu.RUnlock()
	snap := make(map[string]value.Value, len(n.store))
	for k, v := range n.store {
		snap[k] = v
	}
	return snap
}

// Merge binds every entry of vars, keeping unrelated bindings.
func (n *Namespace) Merge(vars map[string]value.Value) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for k, v := range vars {
		n.store[k] = v
	}
}

// Clear removes every binding.
func (n *Namespace) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.store = make(map[string]value.Value)
}
