package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is a process-local Store, used for development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	items   map[string]string
	imports []ImportRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]string{}}
}

// NewMemoryStoreFromFile seeds the store from a JSON object of key to
// value, such as a browser localStorage export. Values may be JSON strings
// or inline JSON documents. A missing file yields an empty store.
func NewMemoryStoreFromFile(path string) (*MemoryStore, error) {
	s := NewMemoryStore()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for k, v := range raw {
		var str string
		if err := json.Unmarshal(v, &str); err == nil {
			s.items[k] = str
			continue
		}
		s.items[k] = string(v)
	}
	return s, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for k := range s.items {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) RecordImport(_ context.Context, rec ImportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imports = append(s.imports, rec)
	return nil
}

// ImportHistory returns the newest records first.
func (s *MemoryStore) ImportHistory(_ context.Context, scope Scope, limit int) ([]ImportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ImportRecord
	for i := len(s.imports) - 1; i >= 0 && len(out) < limit; i-- {
		if s.imports[i].Scope == scope {
			out = append(out, s.imports[i])
		}
	}
	return out, nil
}

var (
	_ Store     = (*MemoryStore)(nil)
	_ ImportLog = (*MemoryStore)(nil)
)
