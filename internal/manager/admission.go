package manager

import (
	"context"
	"time"

	"synthmind/internal/acquire"
)

// Exclusive reserves a queue slot and then the single in-flight slot of the
// cached instance (c, id). Runtimes are not safe for concurrent calls, so
// every inference runs between Exclusive and the returned release.
func (m *Manager) Exclusive(ctx context.Context, c acquire.Category, id string) (func(), error) {
	k := key{category: c, id: id}
	m.mu.RLock()
	e := m.tables[c][id]
	m.mu.RUnlock()
	if e == nil {
		return func() {}, notCachedError{key: k}
	}

	// Fast path: respect an already-canceled context
	if err := ctx.Err(); err != nil {
		return func() {}, err
	}
	start := time.Now()
	defer func() { admissionWaitSeconds.WithLabelValues(string(c)).Observe(time.Since(start).Seconds()) }()

	// One deadline covers both waits.
	timer := time.NewTimer(m.maxWait)
	defer timer.Stop()
	select {
	case e.queueCh <- struct{}{}:
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, ErrTooBusy(k.String())
	}

	acquired := false
	defer func() {
		if !acquired {
			<-e.queueCh
		}
	}()
	select {
	case e.genCh <- struct{}{}:
		acquired = true
		m.mu.Lock()
		e.lastUsed = time.Now()
		m.mu.Unlock()
		return func() { <-e.genCh; <-e.queueCh }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, ErrTooBusy(k.String())
	}
}
