package audit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/auth"
	"github.com/rs/zerolog"
)

// Entry is one audit record for a state-changing operation.
type Entry struct {
	Timestamp    time.Time
	Action       string
	ActorID      int64
	ActorRole    auth.Role
	ResourceType string
	ResourceID   int64
	IPAddress    string
	Status       string // "success" or "failure"
	Details      map[string]string
}

// Logger writes audit entries as structured log lines on a dedicated
// "audit" channel. A nil *Logger discards entries.
type Logger struct {
	output zerolog.Logger
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{output: logger.With().Str("channel", "audit").Logger()}
}

func (l *Logger) Log(entry Entry) {
	if l == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	event := l.output.Info().
		Time("at", entry.Timestamp).
		Str("action", entry.Action).
		Int64("actor_id", entry.ActorID).
		Str("actor_role", string(entry.ActorRole)).
		Str("status", entry.Status)
	if entry.ResourceType != "" {
		event = event.Str("resource_type", entry.ResourceType).
			Str("resource_id", strconv.FormatInt(entry.ResourceID, 10))
	}
	if entry.IPAddress != "" {
		event = event.Str("ip_address", entry.IPAddress)
	}
	if len(entry.Details) > 0 {
		dict := zerolog.Dict()
		for key, value := range entry.Details {
			dict = dict.Str(key, value)
		}
		event = event.Dict("details", dict)
	}
	event.Msg("audit")
}

// LogFromRequest records a successful action by actor on a resource,
// taking the client address from the request.
func (l *Logger) LogFromRequest(r *http.Request, actor auth.Actor, action, resourceType string, resourceID int64, details map[string]string) {
	l.Log(Entry{
		Action:       action,
		ActorID:      actor.UserID,
		ActorRole:    actor.Role,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    clientIP(r),
		Status:       "success",
		Details:      details,
	})
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// peer address without its port.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
