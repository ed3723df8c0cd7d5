package memory

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"

	"github.com/custodia-labs/dpres-cli/internal/core/domain"
	"github.com/custodia-labs/dpres-cli/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in memory. The CLI falls back to it when there
// is no configuration directory, so values come from flags and DPRES_*
// variables only.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(map[string]any)}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) GetString(key string) string {
	return lookup[string](s, key)
}

func (s *ConfigStore) GetInt(key string) int {
	return lookup[int](s, key)
}

func (s *ConfigStore) GetBool(key string) bool {
	return lookup[bool](s, key)
}

// lookup returns the value under key when it has type T, else T's zero value.
func lookup[T any](s *ConfigStore, key string) T {
	val, _ := s.Get(key)
	t, _ := val.(T)
	return t
}

// Keys returns the set keys in sorted order.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

// Set stores value under key. Whole numbers of any numeric type are kept
// as int, matching what the TOML store hands back after a reload.
func (s *ConfigStore) Set(key string, value any) error {
	if key == "" {
		return fmt.Errorf("%w: empty config key", domain.ErrInvalidInput)
	}

	switch v := value.(type) {
	case int64:
		value = int(v)
	case float64:
		if v == math.Trunc(v) {
			value = int(v)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Load is a no-op; there is nothing to read back.
func (s *ConfigStore) Load() error {
	return nil
}

// Path names the store in messages.
func (s *ConfigStore) Path() string {
	return ":memory:"
}
