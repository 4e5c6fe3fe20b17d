// Package registry holds the datasets currently loaded into the UI, keyed
// by a generated id. Uploads and files discovered in the datasets directory
// both land here; saved chart configurations regenerate against whichever
// entry a session has active.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/chartsmith/internal/dataset"
)

// Entry is one loaded dataset.
type Entry struct {
	ID       string
	Name     string
	Dataset  *dataset.Dataset
	LoadedAt time.Time
}

// Registry is a concurrency-safe dataset table. Entries are immutable once
// added; reloading a file with the same name replaces its entry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	byName  map[string]string // name -> id
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
		byName:  make(map[string]string),
	}
}

// Put adds a dataset under a fresh id, replacing any previous entry with
// the same name. Returns the new entry.
func (r *Registry) Put(name string, ds *dataset.Dataset) *Entry {
	entry := &Entry{
		ID:       uuid.New().String(),
		Name:     name,
		Dataset:  ds,
		LoadedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if oldID, ok := r.byName[name]; ok {
		delete(r.entries, oldID)
	}
	r.entries[entry.ID] = entry
	r.byName[name] = entry.ID
	return entry
}

// Get returns the entry for id.
func (r *Registry) Get(id string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Latest returns the most recently loaded entry.
func (r *Registry) Latest() (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *Entry
	for _, e := range r.entries {
		if latest == nil || e.LoadedAt.After(latest.LoadedAt) {
			latest = e
		}
	}
	return latest, latest != nil
}

// List returns all entries, newest first.
func (r *Registry) List() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LoadedAt.Equal(out[j].LoadedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].LoadedAt.After(out[j].LoadedAt)
	})
	return out
}

// Remove deletes an entry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		delete(r.byName, e.Name)
		delete(r.entries, id)
	}
}

// Len returns the number of loaded datasets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
