package channel

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrChannelNotFound is returned when a key has no stored history.
var ErrChannelNotFound = errors.New("channel not found")

// Store holds the ordered history of every channel. Sequences are only ever
// appended to; nothing is evicted.
type Store struct {
	mu       sync.RWMutex
	channels map[Key][]*Message
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		channels: make(map[Key][]*Message),
	}
}

// Append adds msg to the end of key's history, creating it if needed.
func (s *Store) Append(key Key, msg *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[key] = append(s.channels[key], msg)
}

// Get returns a copy of key's history, oldest first.
func (s *Store) Get(key Key) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs, ok := s.channels[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, key)
	}
	out := make([]*Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Has reports whether key has any history.
func (s *Store) Has(key Key) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.channels[key]
	return ok
}

// Len returns the number of messages stored under key.
func (s *Store) Len(key Key) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels[key])
}

// Last returns the newest message under key.
func (s *Store) Last(key Key) (*Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.channels[key]
	if len(msgs) == 0 {
		return nil, false
	}
	return msgs[len(msgs)-1], true
}

// Keys returns the known keys: reserved ones in tab order, then private
// conversations sorted by name.
func (s *Store) Keys() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]Key, 0, len(s.channels))
	for _, k := range Reserved {
		if _, ok := s.channels[k]; ok {
			keys = append(keys, k)
		}
	}

	var private []Key
	for k := range s.channels {
		if !k.IsReserved() {
			private = append(private, k)
		}
	}
	sort.Slice(private, func(i, j int) bool { return private[i] < private[j] })

	return append(keys, private...)
}
