package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freebsdly/ops-console/pkg/contextkeys"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		events = append(events, e)
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestFileRecorder_Record(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	recorder, err := NewFileRecorder(path)
	require.NoError(t, err)
	defer recorder.Close()

	fixed := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	recorder.now = func() time.Time { return fixed }

	ctx := contextkeys.WithRequestID(context.Background(), "req-1")
	require.NoError(t, recorder.Record(ctx, Event{
		Type:   EventSessionLogin,
		UserID: "alice",
	}))
	require.NoError(t, recorder.Record(context.Background(), Event{
		Type:   EventAccessDenied,
		UserID: "bob",
		Path:   "/configuration/resources/hosts",
		Detail: "no matching permission",
	}))

	events := readEvents(t, path)
	require.Len(t, events, 2)

	assert.Equal(t, EventSessionLogin, events[0].Type)
	assert.Equal(t, "alice", events[0].UserID)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, fixed, events[0].Time)

	assert.Equal(t, EventAccessDenied, events[1].Type)
	assert.Equal(t, "/configuration/resources/hosts", events[1].Path)
	assert.Empty(t, events[1].RequestID)
}

func TestFileRecorder_AppendsAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	first, err := NewFileRecorder(path)
	require.NoError(t, err)
	require.NoError(t, first.Record(context.Background(), Event{Type: EventSessionLogin, UserID: "alice"}))
	require.NoError(t, first.Close())

	second, err := NewFileRecorder(path)
	require.NoError(t, err)
	require.NoError(t, second.Record(context.Background(), Event{Type: EventSessionLogout, UserID: "alice"}))
	require.NoError(t, second.Close())

	events := readEvents(t, path)
	require.Len(t, events, 2)
	assert.Equal(t, EventSessionLogout, events[1].Type)
}

func TestFileRecorder_RecordAfterClose(t *testing.T) {
	recorder, err := NewFileRecorder(filepath.Join(t.TempDir(), "audit.log"))
	require.NoError(t, err)
	require.NoError(t, recorder.Close())
	require.NoError(t, recorder.Close())

	err = recorder.Record(context.Background(), Event{Type: EventSessionLogin})
	assert.Error(t, err)
}

type failingRecorder struct {
	err error
}

func (f failingRecorder) Record(context.Context, Event) error { return f.err }
func (f failingRecorder) Close() error                        { return f.err }

type countingRecorder struct {
	records int
}

func (c *countingRecorder) Record(context.Context, Event) error {
	c.records++
	return nil
}
func (c *countingRecorder) Close() error { return nil }

func TestMultiRecorder(t *testing.T) {
	boom := errors.New("disk full")
	counter := &countingRecorder{}
	multi := NewMultiRecorder(failingRecorder{err: boom}, counter)

	err := multi.Record(context.Background(), Event{Type: EventSessionLogin})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, counter.records, "later recorders still run after a failure")

	assert.ErrorIs(t, multi.Close(), boom)
}

func TestNopRecorder(t *testing.T) {
	var r NopRecorder
	assert.NoError(t, r.Record(context.Background(), Event{Type: EventSessionLogin}))
	assert.NoError(t, r.Close())
}
