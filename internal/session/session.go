package session

import (
	"fmt"
	"sync"

	"github.com/quadra-hq/quadra/api/internal/commercial"
	"github.com/quadra-hq/quadra/api/internal/logger"
	"github.com/quadra-hq/quadra/api/internal/models"
	"github.com/quadra-hq/quadra/api/internal/resolver"
	"github.com/quadra-hq/quadra/api/internal/selection"
)

// Session owns the mutable working state of one analyst: the selection
// set, the commercial engine, overlay visibility, and the query
// generation. Every mutation is serialised behind one mutex, so the
// selection set and deal-terms map only ever change from one logical
// thread at a time.
type Session struct {
	mu sync.Mutex

	generation uint64
	sel        *selection.Set
	engine     *commercial.Engine
	visible    map[string]bool
	res        *resolver.Resolver
	identity   *IdentityStore
	log        *logger.Logger

	Broker   string
	DealCode string
}

// New creates a session. Overlays start disabled, matching a freshly
// opened map.
func New(engine *commercial.Engine, res *resolver.Resolver, identity *IdentityStore, log *logger.Logger) *Session {
	s := &Session{
		sel:      selection.New(),
		engine:   engine,
		visible:  make(map[string]bool),
		res:      res,
		identity: identity,
		log:      log,
	}

	// Commercial state follows the selection: removing a lot drops its
	// deal terms, clearing the selection resets the engine.
	s.sel.Subscribe(func(e selection.Event) {
		switch e.Kind {
		case selection.EventCleared:
			s.engine.Reset()
		case selection.EventRemoved:
			s.engine.Remove(e.IPTU)
		}
	})

	return s
}

// Enabled implements resolver.Visibility.
func (s *Session) Enabled(overlayName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible[overlayName]
}

// SetLayerVisible toggles one overlay. Disabling the layer that produced
// the current highlight removes that highlight.
func (s *Session) SetLayerVisible(overlayName string, on bool) error {
	if !knownOverlay(overlayName) {
		return fmt.Errorf("unknown overlay %q", overlayName)
	}

	s.mu.Lock()
	s.visible[overlayName] = on
	s.mu.Unlock()

	if !on {
		s.res.OnLayerDisabled(overlayName)
	}
	return nil
}

// LayerVisibility reports every overlay with its current state, in
// precedence order.
func (s *Session) LayerVisibility() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.visible))
	for _, name := range resolver.OverlayNames() {
		out[name] = s.visible[name]
	}
	return out
}

// StartNewQuery clears the selection and all commercial state, bumps the
// query generation, and returns the new generation token. Results of any
// still-in-flight lookups from an earlier generation are discarded when
// they try to apply.
func (s *Session) StartNewQuery() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.sel.StartNewQuery()
	s.log.Debug("New query generation", map[string]interface{}{
		"generation": s.generation,
	})
	return s.generation
}

// Generation returns the current query generation token.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// ApplyResults installs lookup results as the new selection, unless the
// generation is stale. Returns false for a discarded stale apply.
func (s *Session) ApplyResults(generation uint64, parcels []*models.Parcel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		s.log.Info("Discarding stale query results", map[string]interface{}{
			"stale_generation": generation,
			"generation":       s.generation,
			"count":            len(parcels),
		})
		return false
	}
	s.sel.SetResults(parcels)
	return true
}

// AddParcel appends a parcel to the selection; a no-op when already
// selected.
func (s *Session) AddParcel(p *models.Parcel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.AddAdditional(p)
}

// RemoveParcel removes an additional parcel by identifier.
func (s *Session) RemoveParcel(iptu string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.RemoveAdditional(iptu)
}

// Selection exposes the selection set for read paths and the report
// builder. Callers must not retain it across mutations.
func (s *Session) Selection() *selection.Set {
	return s.sel
}

// Engine exposes the commercial engine.
func (s *Session) Engine() *commercial.Engine {
	return s.engine
}

// Identity returns the cached analyst identity.
func (s *Session) Identity() Identity {
	return s.identity.Get()
}

// SetIdentity updates and persists the analyst identity.
func (s *Session) SetIdentity(id Identity) error {
	return s.identity.Set(id)
}

// WithLock runs fn with the session lock held, for compound read-modify
// operations on the selection and engine.
func (s *Session) WithLock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func knownOverlay(name string) bool {
	for _, n := range resolver.OverlayNames() {
		if n == name {
			return true
		}
	}
	return false
}
