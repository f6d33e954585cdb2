package manager

import (
	"sort"
	"time"

	"synthmind/pkg/types"
)

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	resp := types.StatusResponse{
		LastError:      m.lastErr,
		UptimeSeconds:  int64(now.Sub(m.startTime) / time.Second),
		ServerTimeUnix: now.Unix(),
		LoadsTotal:     m.loads,
		Runtimes:       append([]types.RuntimeCheck(nil), m.runtimes...),
	}
	if m.resolver != nil {
		resp.Offline = m.resolver.Offline()
	}
	resp.Instances = make([]types.InstanceStatus, 0)
	for c, t := range m.tables {
		for id, e := range t {
			resp.Instances = append(resp.Instances, types.InstanceStatus{
				Category:      string(c),
				ModelID:       id,
				Dir:           e.dir,
				CreatedAt:     e.createdAt.Unix(),
				LastUsed:      e.lastUsed.Unix(),
				Uses:          e.uses,
				QueueLen:      len(e.queueCh),
				Inflight:      len(e.genCh),
				MaxQueueDepth: cap(e.queueCh),
			})
		}
	}
	sort.Slice(resp.Instances, func(i, j int) bool {
		a, b := resp.Instances[i], resp.Instances[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.ModelID < b.ModelID
	})
	return resp
}
