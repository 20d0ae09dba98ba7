package taskengine

import (
	"encoding/json"
	"strings"
	"sync"
)

// WildcardKey resolves to a snapshot of the whole store
const WildcardKey = "*"

// KV is a single store write produced by a node
type KV struct {
	Key   string
	Value any
}

// StoreKey builds the conventional `<purpose>_<nodeId>` key
func StoreKey(purpose, nodeID string) string {
	return purpose + "_" + nodeID
}

// Store is the run-scoped key/value table shared by node runners. Keys keep
// their first insertion position; overwriting a key replaces its value only.
type Store struct {
	mu      sync.RWMutex
	values  map[string]any
	order   []string
	lastKey string
}

func NewStore() *Store {
	return &Store{
		values: make(map[string]any),
	}
}

func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		s.order = append(s.order, key)
	}
	s.values[key] = value
	s.lastKey = key
}

func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok
}

func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Keys returns the keys in insertion order
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.order)
}

// Last returns the most recently written entry
func (s *Store) Last() (string, any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastKey == "" {
		return "", nil, false
	}
	return s.lastKey, s.values[s.lastKey], true
}

// Snapshot returns a deep copy of every entry. Later writes to the store, or
// to values nested inside stored maps and slices, are not visible in it.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = deepCopy(v)
	}
	return out
}

// FindBySourceNode returns the first key, in insertion order, whose name
// contains nodeID
func (s *Store) FindBySourceNode(nodeID string) (string, any, bool) {
	if nodeID == "" {
		return "", nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, k := range s.order {
		if strings.Contains(k, nodeID) {
			return k, s.values[k], true
		}
	}
	return "", nil, false
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopy(item)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case string, bool, float64, float32, int, int64, int32, uint64, uint32, nil, json.Number:
		return t
	}

	// Anything else goes through a json round trip
	body, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(body, &out); err != nil {
		return v
	}
	return out
}
