package selection

import (
	"fmt"
	"strings"

	"github.com/quadra-hq/quadra/api/internal/models"
)

// EventKind tags a selection mutation for subscribers.
type EventKind string

const (
	EventCleared = EventKind("cleared")
	EventResults = EventKind("results")
	EventAdded   = EventKind("added")
	EventRemoved = EventKind("removed")
)

// Event describes one selection mutation. IPTU is set for add/remove.
type Event struct {
	Kind EventKind
	IPTU string
}

// Set holds the current working selection: at most one primary parcel
// plus a relevance-ordered list of additional parcels. Membership is by
// derived identifier, never by object identity. The set is not safe for
// concurrent use; the owning session serialises access.
type Set struct {
	primary     *models.Parcel
	additionals []*models.Parcel
	subscribers []func(Event)
}

// New creates an empty selection set.
func New() *Set {
	return &Set{}
}

// Subscribe registers a callback invoked once per mutation. Dependents use
// it to recompute map highlighting and summary text instead of polling.
func (s *Set) Subscribe(fn func(Event)) {
	s.subscribers = append(s.subscribers, fn)
}

func (s *Set) notify(e Event) {
	for _, fn := range s.subscribers {
		fn(e)
	}
}

// StartNewQuery clears the primary and additional parcels. Commercial
// state tied to them is cleared by the session reacting to the event.
func (s *Set) StartNewQuery() {
	s.primary = nil
	s.additionals = nil
	s.notify(Event{Kind: EventCleared})
}

// SetResults assigns the first result as primary and the remainder as
// additionals, preserving query order.
func (s *Set) SetResults(parcels []*models.Parcel) {
	if len(parcels) == 0 {
		return
	}
	s.primary = parcels[0]
	s.additionals = append([]*models.Parcel(nil), parcels[1:]...)
	s.notify(Event{Kind: EventResults})
}

// AddAdditional appends a parcel unless its identifier already matches the
// primary or any additional entry. Adding an existing parcel is a no-op
// and leaves the order unchanged.
func (s *Set) AddAdditional(p *models.Parcel) bool {
	if p == nil || s.Contains(p.IPTU()) {
		return false
	}
	s.additionals = append(s.additionals, p)
	s.notify(Event{Kind: EventAdded, IPTU: p.IPTU()})
	return true
}

// RemoveAdditional removes an additional parcel by identifier. The primary
// cannot be removed this way; it is only replaced by a fresh query.
func (s *Set) RemoveAdditional(iptu string) bool {
	for i, p := range s.additionals {
		if p.IPTU() == iptu {
			s.additionals = append(s.additionals[:i], s.additionals[i+1:]...)
			s.notify(Event{Kind: EventRemoved, IPTU: iptu})
			return true
		}
	}
	return false
}

// Contains reports membership by derived identifier.
func (s *Set) Contains(iptu string) bool {
	if s.primary != nil && s.primary.IPTU() == iptu {
		return true
	}
	for _, p := range s.additionals {
		if p.IPTU() == iptu {
			return true
		}
	}
	return false
}

// Primary returns the primary parcel, or nil when nothing is selected.
func (s *Set) Primary() *models.Parcel {
	return s.primary
}

// Parcels returns primary followed by the additionals in order.
func (s *Set) Parcels() []*models.Parcel {
	out := make([]*models.Parcel, 0, 1+len(s.additionals))
	if s.primary != nil {
		out = append(out, s.primary)
	}
	return append(out, s.additionals...)
}

// Count is the number of selected parcels including the primary.
func (s *Set) Count() int {
	return len(s.Parcels())
}

// TotalArea sums the land area across primary and additionals. Missing or
// zero area contributes nothing.
func (s *Set) TotalArea() float64 {
	var total float64
	for _, p := range s.Parcels() {
		if p.Area > 0 {
			total += p.Area
		}
	}
	return total
}

// Summary renders the status line shown next to the map.
func (s *Set) Summary() string {
	parcels := s.Parcels()
	if len(parcels) == 0 {
		return "Nenhum lote selecionado."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d lote(s) selecionado(s). Área total: %.2f m²", len(parcels), s.TotalArea())
	for _, p := range parcels {
		fmt.Fprintf(&b, "\nLote: %s (%.2f m²)", p.IPTU(), p.Area)
	}
	return b.String()
}
