package audit

import (
	"context"
	"time"
)

// EventType categorizes an audit event.
type EventType string

const (
	EventSessionLogin       EventType = "session.login"
	EventSessionLoginFailed EventType = "session.login_failed"
	EventSessionLogout      EventType = "session.logout"
	EventAccessDenied       EventType = "access.denied"
	EventTabsCleared        EventType = "tabs.cleared"
	EventSnapshotInvalidate EventType = "principal.invalidated"
)

// Event is a single audit record. Time and RequestID are filled by the
// recorder when left empty.
type Event struct {
	Time      time.Time `json:"time"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	Path      string    `json:"path,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Recorder persists audit events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Record(ctx context.Context, event Event) error
	Close() error
}

// NopRecorder discards every event. Used when auditing is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) error { return nil }
func (NopRecorder) Close() error                        { return nil }
