package manager

import "github.com/rs/zerolog"

// LogPublisher writes events to a zerolog logger at debug level. Failure
// events are logged at warn.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(l zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: l.With().Str("component", "events").Logger()}
}

func (p *LogPublisher) Publish(e Event) {
	ev := p.log.Debug()
	if _, failed := e.Fields["error"]; failed {
		ev = p.log.Warn()
	}
	ev.Str("event", e.Name).Str("category", e.Category).Str("model", e.ModelID).Fields(e.Fields).Msg("manager event")
}
