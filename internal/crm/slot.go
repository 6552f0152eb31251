package crm

import "sync"

// Slot holds the process-wide toolkit API once it has been loaded.
type Slot struct {
	mu  sync.RWMutex
	api API
}

// NewSlot returns an empty Slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Get returns the loaded API, if any.
func (s *Slot) Get() (API, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.api, s.api != nil
}

// Set installs api, replacing any previous value.
func (s *Slot) Set(api API) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.api = api
}

// Clear removes the loaded API.
func (s *Slot) Clear() {
	s.Set(nil)
}
