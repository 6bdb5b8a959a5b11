// Package audit records security-relevant console events: logins, logouts,
// failed logins and denied route access. Events are append-only JSON lines,
// one object per line, so they can be shipped to a log pipeline unchanged.
//
// The API server takes a Recorder and emits events from the session and
// access handlers. Auditing is optional; a nil or NopRecorder disables it
// without branching at every call site.
//
// Example:
//
//	recorder, err := audit.NewFileRecorder("/var/log/console/audit.log")
//	if err != nil {
//		return err
//	}
//	defer recorder.Close()
//
//	recorder.Record(ctx, audit.Event{
//		Type:   audit.EventSessionLogin,
//		UserID: "alice",
//	})
package audit
