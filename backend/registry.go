// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/photon"
)

// Config carries the parameters shared by every device factory.
type Config struct {
	Width  int
	Height int
	Title  string
}

// Factory creates a device.
type Factory func(cfg Config) (photon.Device, error)

// Entry describes a registered backend.
type Entry struct {
	// Name is the unique identifier, e.g. "wgpu" or "software".
	Name string

	// Priority orders OpenBest; higher is tried first.
	Priority int

	// Factory creates device instances.
	Factory Factory

	// Available reports whether the backend can run on this system.
	Available func() bool
}

// ErrNoBackendAvailable is returned by OpenBest when nothing is registered
// or available.
var ErrNoBackendAvailable = errors.New("backend: no backend available")

// NotFoundError indicates a named backend is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string { return "backend: not registered: " + e.Name }

// UnavailableError indicates a backend is registered but cannot run here.
type UnavailableError struct {
	Name string
}

func (e *UnavailableError) Error() string { return "backend: unavailable: " + e.Name }

// Registry holds named device factories.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewRegistry returns an empty registry. Most code uses the package-level
// functions, which share a global registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

var global = NewRegistry()

// Register adds a backend to the global registry. A nil available means
// always available. Registering an existing name replaces it.
func Register(name string, priority int, factory Factory, available func() bool) {
	global.Register(name, priority, factory, available)
}

// Unregister removes a backend from the global registry.
func Unregister(name string) { global.Unregister(name) }

// List returns every registered name, highest priority first.
func List() []string { return global.List() }

// Available returns the names of available backends, highest priority first.
func Available() []string { return global.Available() }

// Get returns a copy of the entry for name.
func Get(name string) (Entry, bool) { return global.Get(name) }

// Open creates a device with the named backend.
func Open(name string, cfg Config) (photon.Device, error) { return global.Open(name, cfg) }

// OpenBest creates a device with the first available backend that succeeds.
func OpenBest(cfg Config) (photon.Device, error) { return global.OpenBest(cfg) }

// Register adds a backend to r.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if available == nil {
		available = func() bool { return true }
	}
	r.entries[name] = &Entry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a backend from r.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// List returns every registered name, highest priority first.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames(false)
}

// Available returns the names of available backends, highest priority
// first.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames(true)
}

// Get returns a copy of the entry for name.
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Open creates a device with the named backend.
func (r *Registry) Open(name string, cfg Config) (photon.Device, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	if !e.Available() {
		return nil, &UnavailableError{Name: name}
	}
	dev, err := e.Factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", name, err)
	}
	photon.Logger().Info("backend: device opened", "backend", name, "width", cfg.Width, "height", cfg.Height)
	return dev, nil
}

// OpenBest tries the available backends in priority order and returns the
// first device that opens. When all fail, the errors are joined.
func (r *Registry) OpenBest(cfg Config) (photon.Device, error) {
	names := r.Available()
	if len(names) == 0 {
		return nil, ErrNoBackendAvailable
	}

	var errs []error
	for _, name := range names {
		dev, err := r.Open(name, cfg)
		if err == nil {
			return dev, nil
		}
		photon.Logger().Warn("backend: open failed, trying next", "backend", name, "err", err)
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// sortedNames must be called with r.mu held. Equal priorities sort by name.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	entries := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
