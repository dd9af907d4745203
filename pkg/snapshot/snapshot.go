// Package snapshot accumulates decoded record fields into the merged state
// view of one session.
//
// Every successfully decoded record contributes its exported fields under
// their field names; on a name collision the record merged later wins, so
// merge order must follow arrival order.
package snapshot

import (
	"reflect"
	"sync"
)

// Fielder lets a record override the default field harvesting, e.g. to
// prefix its fields with a slot index so that repeated per-slot records do
// not clobber each other.
type Fielder interface {
	SnapshotFields() map[string]any
}

// Snapshot is the mutable aggregate of all fields observed in one session.
// It is safe for a decoder goroutine to merge while readers take copies.
type Snapshot struct {
	mu     sync.RWMutex
	fields map[string]any
}

// New returns an empty snapshot.
func New() *Snapshot {
	return &Snapshot{fields: make(map[string]any)}
}

// Merge folds the fields of a decoded record into the snapshot,
// last-writer-wins. Records implementing Fielder choose their own keys;
// for plain structs every exported field is merged under its field name.
func (s *Snapshot) Merge(record any) {
	var fields map[string]any
	if f, ok := record.(Fielder); ok {
		fields = f.SnapshotFields()
	} else {
		fields = structFields(record)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range fields {
		s.fields[k] = v
	}
}

// Get returns a single merged field.
func (s *Snapshot) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.fields[name]
	return v, ok
}

// Fields returns a copy of the merged field map.
func (s *Snapshot) Fields() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}

// Len returns the number of merged fields.
func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fields)
}

// structFields harvests the exported fields of a struct (or pointer to
// struct) into a field map. Non-struct values merge nothing.
func structFields(record any) map[string]any {
	v := reflect.ValueOf(record)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	out := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		out[f.Name] = v.Field(i).Interface()
	}
	return out
}
