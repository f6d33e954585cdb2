package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger of the HTTP layer.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l.With().Str("component", "http").Logger() }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("SYNTHMIND_HTTP_LOG"))

// SetRequestLogLevel overrides the default per-request log level.
func SetRequestLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// requestLog brackets one generation call with "start" and "end" lines.
type requestLog struct {
	r     *http.Request
	op    string
	model string
	lvl   LogLevel
	start time.Time
}

func startRequestLog(r *http.Request, op, model string) *requestLog {
	rl := &requestLog{r: r, op: op, model: model, lvl: requestLogLevel(r), start: time.Now()}
	if rl.lvl >= LevelInfo {
		rl.event(zlog.Info()).Msg(op + " start")
	}
	return rl
}

func (rl *requestLog) event(e *zerolog.Event) *zerolog.Event {
	e = e.Str("path", rl.r.URL.Path)
	if rl.model != "" {
		e = e.Str("model", rl.model)
	}
	if rid := middleware.GetReqID(rl.r.Context()); rid != "" {
		e = e.Str("request_id", rid)
	}
	return e
}

func (rl *requestLog) end(status int, err error) {
	switch {
	case rl.lvl >= LevelInfo:
		rl.event(zlog.Info()).Int("status", status).Dur("dur", time.Since(rl.start)).Err(err).Msg(rl.op + " end")
	case rl.lvl >= LevelError && err != nil:
		rl.event(zlog.Error()).Int("status", status).Dur("dur", time.Since(rl.start)).Err(err).Msg(rl.op + " failed")
	}
}

// debug returns a nil event unless the request asked for debug logging.
func (rl *requestLog) debug() *zerolog.Event {
	if rl.lvl < LevelDebug {
		return nil
	}
	return rl.event(zlog.Debug())
}
