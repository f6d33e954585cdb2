package manager

import (
	"context"
	"fmt"
	"io"
	"time"

	"synthmind/internal/acquire"
)

// GetOrCreate returns the cached instance for (c, id), building it with
// factory on first use. Concurrent first uses share one acquisition and one
// construction; each caller still stops waiting when its own ctx is done.
// The shared work runs until it finishes or the manager is closed.
// Failures are returned to every waiter and are not cached.
func GetOrCreate[T any](ctx context.Context, m *Manager, c acquire.Category, id string, factory Factory[T]) (T, error) {
	var zero T
	k := key{category: c, id: id}
	if v, ok, err := m.lookup(k); err != nil {
		return zero, err
	} else if ok {
		return assertInstance[T](k, v)
	}

	ch := m.flight.DoChan(k.String(), func() (any, error) {
		if v, ok := m.peek(k); ok {
			return v, nil
		}
		return m.construct(m.life, k, func(ctx context.Context, dir string) (any, error) {
			return factory(ctx, dir)
		})
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return assertInstance[T](k, res.Val)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func assertInstance[T any](k key, v any) (T, error) {
	inst, ok := v.(T)
	if !ok {
		var zero T
		return zero, ErrConstructionFailure(k.category, k.id, fmt.Errorf("cached instance is %T, not %T", v, zero))
	}
	return inst, nil
}

// lookup is the fast path: a hit bumps usage counters.
func (m *Manager) lookup(k key) (any, bool, error) {
	m.mu.RLock()
	closed := m.closed
	_, ok := m.tables[k.category][k.id]
	m.mu.RUnlock()
	if closed {
		return nil, false, ErrClosed
	}
	if !ok {
		return nil, false, nil
	}
	m.mu.Lock()
	e, ok := m.tables[k.category][k.id]
	if ok {
		e.lastUsed = time.Now()
		e.uses++
	}
	m.mu.Unlock()
	if !ok {
		return nil, false, nil
	}
	cacheHitsTotal.WithLabelValues(string(k.category)).Inc()
	return e.instance, true, nil
}

func (m *Manager) peek(k key) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.tables[k.category][k.id]
	if !ok {
		return nil, false
	}
	return e.instance, true
}

func (m *Manager) construct(ctx context.Context, k key, build func(context.Context, string) (any, error)) (any, error) {
	start := time.Now()
	log := m.log.With().Str("category", string(k.category)).Str("model", k.id).Logger()
	m.publish(Event{Name: "ensure_start", Category: string(k.category), ModelID: k.id})
	if m.resolver == nil {
		return nil, fmt.Errorf("manager has no resolver")
	}

	dir, err := m.resolver.EnsureLocal(ctx, k.id, k.category)
	if err != nil {
		constructionsTotal.WithLabelValues(string(k.category), "acquire_error").Inc()
		m.fail(k, "acquire_error", err)
		log.Error().Err(err).Msg("acquire failed")
		return nil, err
	}

	inst, err := build(ctx, dir)
	if err == nil && inst == nil {
		err = fmt.Errorf("factory returned nil instance")
	}
	if err != nil {
		cerr := ErrConstructionFailure(k.category, k.id, err)
		constructionsTotal.WithLabelValues(string(k.category), "error").Inc()
		m.fail(k, "construct_error", cerr)
		log.Error().Err(err).Str("dir", dir).Msg("construct failed")
		return nil, cerr
	}

	now := time.Now()
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		if c, ok := inst.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, ErrClosed
	}
	if m.tables[k.category] == nil {
		m.tables[k.category] = make(map[string]*entry)
	}
	m.tables[k.category][k.id] = &entry{
		instance:  inst,
		dir:       dir,
		createdAt: now,
		lastUsed:  now,
		uses:      1,
		genCh:     make(chan struct{}, 1),
		queueCh:   make(chan struct{}, m.maxQueueDepth),
	}
	m.loads++
	m.mu.Unlock()

	constructionsTotal.WithLabelValues(string(k.category), "ok").Inc()
	dur := time.Since(start)
	log.Info().Str("dir", dir).Dur("dur", dur).Msg("instance ready")
	m.publish(Event{Name: "ensure_ready", Category: string(k.category), ModelID: k.id, Fields: map[string]any{"dur_ms": int(dur / time.Millisecond)}})
	return inst, nil
}

func (m *Manager) fail(k key, name string, err error) {
	m.mu.Lock()
	m.lastErr = err.Error()
	m.mu.Unlock()
	m.publish(Event{Name: name, Category: string(k.category), ModelID: k.id, Fields: map[string]any{"error": err.Error()}})
}

// Acquire runs only the acquisition step for (c, id) and returns the local
// directory. It never constructs an instance.
func (m *Manager) Acquire(ctx context.Context, c acquire.Category, id string) (string, error) {
	if m.resolver == nil {
		return "", fmt.Errorf("manager has no resolver")
	}
	return m.resolver.EnsureLocal(ctx, id, c)
}

// Close releases every cached instance that implements io.Closer. Later
// GetOrCreate calls fail with ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.stopLife()
	tables := m.tables
	m.tables = make(map[acquire.Category]map[string]*entry)
	m.mu.Unlock()

	var firstErr error
	for c, t := range tables {
		for id, e := range t {
			cl, ok := e.instance.(io.Closer)
			if !ok {
				continue
			}
			if err := cl.Close(); err != nil {
				m.log.Warn().Err(err).Str("category", string(c)).Str("model", id).Msg("close instance")
				if firstErr == nil {
					firstErr = err
				}
			}
			m.publish(Event{Name: "instance_closed", Category: string(c), ModelID: id})
		}
	}
	return firstErr
}
