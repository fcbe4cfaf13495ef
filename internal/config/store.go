package config

import (
	"sync"
	"sync/atomic"
)

// Watcher observes committed config updates. changed holds the keys that
// differ from the previous snapshot.
type Watcher func(newCfg *Config, changed map[string]bool)

// Validator can veto a pending update by returning an error.
type Validator func(newCfg *Config, changed map[string]bool) error

type watcherEntry struct {
	id int
	fn Watcher
}

type validatorEntry struct {
	id int
	fn Validator
}

// Store holds the live *Config snapshot. Reads are lock-free; dynamic
// sources (Apollo) push replacements through UpdateValidated.
type Store struct {
	v  atomic.Value // *Config
	mu sync.Mutex

	nextID     int
	watchers   []watcherEntry
	validators []validatorEntry
}

func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.v.Store(cfg)
	return s
}

// Get returns the current snapshot. Callers must not mutate it.
func (s *Store) Get() *Config {
	return s.v.Load().(*Config)
}

// Update commits newCfg and notifies watchers. Most callers want
// UpdateValidated instead.
func (s *Store) Update(newCfg *Config, changed map[string]bool) {
	s.v.Store(newCfg)
	s.mu.Lock()
	ws := make([]watcherEntry, len(s.watchers))
	copy(ws, s.watchers)
	s.mu.Unlock()
	for _, w := range ws {
		w.fn(newCfg, changed)
	}
}

// Watch registers a watcher and returns its removal function.
func (s *Store) Watch(w Watcher) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.watchers = append(s.watchers, watcherEntry{id: id, fn: w})
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.watchers {
			if e.id == id {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				return
			}
		}
	}
}

// AddValidator registers a validator and returns its removal function. If
// any validator rejects an update the update is discarded.
func (s *Store) AddValidator(v Validator) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.validators = append(s.validators, validatorEntry{id: id, fn: v})
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.validators {
			if e.id == id {
				s.validators = append(s.validators[:i], s.validators[i+1:]...)
				return
			}
		}
	}
}

// UpdateValidated runs validators before committing. Returns false (and
// keeps the old snapshot) when any validator rejects the change.
func (s *Store) UpdateValidated(newCfg *Config, changed map[string]bool) bool {
	s.mu.Lock()
	vals := make([]validatorEntry, len(s.validators))
	copy(vals, s.validators)
	s.mu.Unlock()
	for _, v := range vals {
		if err := v.fn(newCfg, changed); err != nil {
			return false
		}
	}
	s.Update(newCfg, changed)
	return true
}

func cloneConfig(in *Config) *Config {
	out := *in
	return &out
}
