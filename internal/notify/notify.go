package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nodedge/nodedge/internal/scene"
)

// Kind names an event.
type Kind string

const (
	KindModified        Kind = "modified"
	KindSelected        Kind = "selected"
	KindDeselected      Kind = "deselected"
	KindHistoryStored   Kind = "history.stored"
	KindHistoryRestored Kind = "history.restored"
	KindEvaluated       Kind = "evaluated"
	KindSimulated       Kind = "simulated"
)

// Event is one notification.
type Event struct {
	ID      string        `json:"id"`
	Kind    Kind          `json:"kind"`
	SceneID scene.ID      `json:"sceneId"`
	Time    time.Time     `json:"time"`
	Desc    string        `json:"desc,omitempty"`
	Digest  string        `json:"digest,omitempty"`
	NodeID  scene.ID      `json:"nodeId,omitempty"`
	Elapsed time.Duration `json:"elapsed,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// NewEvent returns an event of kind k for scene id with a fresh event id.
func NewEvent(k Kind, id scene.ID) Event {
	return Event{ID: uuid.NewString(), Kind: k, SceneID: id, Time: time.Now().UTC()}
}

// Payload returns the event as a plain map for transports that encode
// their arguments themselves.
func (e Event) Payload() map[string]any {
	p := map[string]any{
		"id":      e.ID,
		"kind":    string(e.Kind),
		"sceneId": uint64(e.SceneID),
		"time":    e.Time.Format(time.RFC3339Nano),
	}
	if e.Desc != "" {
		p["desc"] = e.Desc
	}
	if e.Digest != "" {
		p["digest"] = e.Digest
	}
	if e.NodeID != 0 {
		p["nodeId"] = uint64(e.NodeID)
	}
	if e.Elapsed != 0 {
		p["elapsedMs"] = float64(e.Elapsed) / float64(time.Millisecond)
	}
	if e.Error != "" {
		p["error"] = e.Error
	}
	return p
}

// Sink receives events. Notify must not block for long: it runs inside
// scene callbacks.
type Sink interface {
	Notify(ctx context.Context, e Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, e Event)

func (f SinkFunc) Notify(ctx context.Context, e Event) { f(ctx, e) }

// Multi fans events out to several sinks in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, e Event) {
		for _, s := range sinks {
			s.Notify(ctx, e)
		}
	})
}

// LogSink logs every event.
type LogSink struct {
	Logger *slog.Logger
	Level  slog.Level
}

func (l *LogSink) Notify(ctx context.Context, e Event) {
	attrs := []any{"event_id", e.ID, "kind", e.Kind, "scene_id", e.SceneID}
	if e.Desc != "" {
		attrs = append(attrs, "desc", e.Desc)
	}
	if e.NodeID != 0 {
		attrs = append(attrs, "node_id", e.NodeID)
	}
	if e.Error != "" {
		attrs = append(attrs, "error", e.Error)
	}
	l.Logger.Log(ctx, l.Level, "Scene event.", attrs...)
}

// Attach forwards the notifications of s to sink.
func Attach(ctx context.Context, s *scene.Scene, sink Sink) {
	send := func(e Event) { sink.Notify(ctx, e) }

	s.AddModifiedListener(func() {
		send(NewEvent(KindModified, s.ID()))
	})
	s.AddItemSelectedListener(func() {
		send(NewEvent(KindSelected, s.ID()))
	})
	s.AddItemsDeselectedListener(func() {
		send(NewEvent(KindDeselected, s.ID()))
	})
	s.History().AddStoredListener(func(st scene.Stamp) {
		e := NewEvent(KindHistoryStored, s.ID())
		e.Desc, e.Digest = st.Desc, st.Digest
		send(e)
	})
	s.History().AddRestoredListener(func(st scene.Stamp) {
		e := NewEvent(KindHistoryRestored, s.ID())
		e.Desc, e.Digest = st.Desc, st.Digest
		send(e)
	})
	s.AddEvaluatedListener(func(n *scene.Node, elapsed time.Duration, err error) {
		e := NewEvent(KindEvaluated, s.ID())
		e.NodeID, e.Desc, e.Elapsed = n.ID(), n.Title(), elapsed
		if err != nil {
			e.Error = err.Error()
		}
		send(e)
	})
}
