package gllcms

import (
	"sync"
)

// Store holds the current Settings. It is safe for concurrent use: any
// goroutine may write while the render goroutine takes snapshots.
type Store struct {
	mu        sync.Mutex
	current   Settings
	listeners map[uint64]func(old, new Settings)
	next_id   uint64
}

// NewStore returns a Store holding DefaultSettings.
func NewStore() *Store {
	return &Store{current: DefaultSettings()}
}

// Snapshot returns a copy of the current settings.
func (s *Store) Snapshot() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set replaces the settings. Invalid settings are rejected and leave the
// store unchanged.
func (s *Store) Set(val Settings) error {
	return s.Update(func(cur *Settings) { *cur = val })
}

// Update applies f to a copy of the current settings and stores the result
// if it is valid. Listeners are called after the lock is released and only
// if the value changed.
func (s *Store) Update(f func(*Settings)) error {
	s.mu.Lock()
	old := s.current
	val := old
	f(&val)
	if err := val.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	if val == old {
		s.mu.Unlock()
		return nil
	}
	s.current = val
	listeners := make([]func(old, new Settings), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()
	for _, l := range listeners {
		l(old, val)
	}
	return nil
}

func (s *Store) SetICCProfilePath(path string) error {
	return s.Update(func(cur *Settings) { cur.ICCProfilePath = path })
}

func (s *Store) SetBrightness(val float64) error {
	return s.Update(func(cur *Settings) { cur.Brightness = val })
}

func (s *Store) SetContrast(val float64) error {
	return s.Update(func(cur *Settings) { cur.Contrast = val })
}

func (s *Store) SetHue(val float64) error {
	return s.Update(func(cur *Settings) { cur.Hue = val })
}

func (s *Store) SetSaturation(val float64) error {
	return s.Update(func(cur *Settings) { cur.Saturation = val })
}

// OnChange registers f to be called with the previous and new value
// whenever the settings change. Call the returned function to unregister.
func (s *Store) OnChange(f func(old, new Settings)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listeners == nil {
		s.listeners = make(map[uint64]func(old, new Settings))
	}
	id := s.next_id
	s.next_id++
	s.listeners[id] = f
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
