package manager

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"synthmind/internal/acquire"
	"synthmind/pkg/types"
)

type Manager struct {
	mu        sync.RWMutex
	tables    map[acquire.Category]map[string]*entry
	resolver  Resolver
	flight    singleflight.Group
	publisher EventPublisher
	log       zerolog.Logger
	runtimes  []types.RuntimeCheck
	lastErr   string
	loads     uint64
	closed    bool
	startTime time.Time

	// life bounds shared constructions; Close cancels it.
	life     context.Context
	stopLife context.CancelFunc

	// Queue config
	maxQueueDepth int
	maxWait       time.Duration
}

// New returns a manager that acquires artifacts through r with default limits.
func New(r Resolver) *Manager {
	return NewWithConfig(ManagerConfig{Resolver: r})
}

// SetEventPublisher replaces the event sink. nil restores the no-op publisher.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		p = noopPublisher{}
	}
	m.publisher = p
}

func (m *Manager) publish(e Event) {
	m.mu.RLock()
	p := m.publisher
	m.mu.RUnlock()
	p.Publish(e)
}

// Ready reports whether at least one instance is cached.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false
	}
	for _, t := range m.tables {
		if len(t) > 0 {
			return true
		}
	}
	return false
}

// Cached lists the cached models, ordered by category then id.
func (m *Manager) Cached() []types.ModelRef {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.ModelRef
	for c, t := range m.tables {
		for id, e := range t {
			out = append(out, types.ModelRef{ID: id, Category: string(c), Path: e.dir, Local: true})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ID < out[j].ID
	})
	return out
}
