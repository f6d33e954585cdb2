package manager

import (
	"strings"

	"synthmind/pkg/types"
)

// SanityReport describes runtime checks for external dependencies.
type SanityReport struct {
	Offline  bool                 `json:"offline"`
	Runtimes []types.RuntimeCheck `json:"runtimes"`
	OK       bool                 `json:"ok"`
	Error    string               `json:"error,omitempty"`
}

// SanityCheck reports whether downloads are possible and which runtimes are
// usable. It does not mutate state and is safe to call at any time.
func (m *Manager) SanityCheck() SanityReport {
	m.mu.RLock()
	r := SanityReport{Runtimes: append([]types.RuntimeCheck(nil), m.runtimes...)}
	res := m.resolver
	m.mu.RUnlock()
	if res != nil {
		r.Offline = res.Offline()
	}
	var bad []string
	if res == nil {
		bad = append(bad, "no model resolver")
	}
	for _, c := range r.Runtimes {
		if !c.OK {
			msg := c.Name
			if c.Detail != "" {
				msg += ": " + c.Detail
			}
			bad = append(bad, msg)
		}
	}
	r.OK = len(bad) == 0
	r.Error = strings.Join(bad, "; ")
	return r
}
