package annotation

import (
	"fmt"
	"slices"
)

// Buses returns the power bus table.
func (s *Store) Buses() []PowerBus {
	return slices.Clone(s.buses)
}

// Bus returns the bus with the given id.
func (s *Store) Bus(id string) (PowerBus, bool) {
	for _, b := range s.buses {
		if b.ID == id {
			return b, true
		}
	}
	return PowerBus{}, false
}

// AddBus appends a power bus.
func (s *Store) AddBus(b PowerBus) (*Store, error) {
	if b.ID == "" {
		return s, fmt.Errorf("annotation: add bus %q: empty id", b.Name)
	}
	if _, ok := s.Bus(b.ID); ok {
		return s, fmt.Errorf("annotation: add bus %s: %w", b.ID, ErrDuplicateID)
	}
	next := s.shallow()
	next.buses = appendCopy(s.buses, b)
	return next, nil
}

// UpdateBus replaces the bus with the same id.
func (s *Store) UpdateBus(b PowerBus) (*Store, error) {
	for i, old := range s.buses {
		if old.ID == b.ID {
			next := s.shallow()
			next.buses = replaceAt(s.buses, i, b)
			return next, nil
		}
	}
	return s, fmt.Errorf("annotation: update bus %s: %w", b.ID, ErrNotFound)
}

// RemoveBus deletes a bus. Power nodes that referenced it keep their BusID
// and fall back to their own Type label when resolved.
func (s *Store) RemoveBus(id string) (*Store, error) {
	for i, old := range s.buses {
		if old.ID == id {
			next := s.shallow()
			next.buses = removeAt(s.buses, i)
			return next, nil
		}
	}
	return s, fmt.Errorf("annotation: remove bus %s: %w", id, ErrNotFound)
}

// SetBuses replaces the whole bus table.
func (s *Store) SetBuses(buses []PowerBus) *Store {
	next := s.shallow()
	next.buses = slices.Clone(buses)
	return next
}
