package manager

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"synthmind/internal/acquire"
	"synthmind/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Resolver      Resolver
	MaxQueueDepth int
	MaxWait       time.Duration
	Publisher     EventPublisher
	Logger        *zerolog.Logger
	// Runtimes is reported verbatim by SanityCheck.
	Runtimes []types.RuntimeCheck
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		resolver:  cfg.Resolver,
		tables:    make(map[acquire.Category]map[string]*entry),
		publisher: cfg.Publisher,
		log:       zerolog.Nop(),
		runtimes:  append([]types.RuntimeCheck(nil), cfg.Runtimes...),
		startTime: time.Now(),
	}
	m.life, m.stopLife = context.WithCancel(context.Background())
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Logger()
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if cfg.MaxQueueDepth <= 0 {
		m.maxQueueDepth = defaultMaxQueueDepth
	} else {
		m.maxQueueDepth = cfg.MaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		m.maxWait = defaultMaxWait
	} else {
		m.maxWait = cfg.MaxWait
	}
	return m
}
