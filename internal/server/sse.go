package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/menuboard/internal/store"
)

// HeartbeatInterval keeps idle streams open through proxies.
var HeartbeatInterval = 25 * time.Second

// Mailbox holds at most one pending value. A newer value replaces one the
// reader has not taken yet, so a slow client never blocks the writer.
type Mailbox[T any] struct {
	ch chan T
}

func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{ch: make(chan T, 1)}
}

// Put stores v, dropping any value still pending.
func (m *Mailbox[T]) Put(v T) {
	for {
		select {
		case m.ch <- v:
			return
		default:
		}
		select {
		case <-m.ch:
		default:
		}
	}
}

// C receives the pending value.
func (m *Mailbox[T]) C() <-chan T { return m.ch }

// eventStream writes text/event-stream frames.
type eventStream struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	s := &eventStream{w: w, rc: http.NewResponseController(w)}
	if err := s.rc.Flush(); err != nil {
		return nil, fmt.Errorf("streaming unsupported: %w", err)
	}
	return s, nil
}

// Send writes one event. Multi-line data is split over several data lines.
func (s *eventStream) Send(ev store.Event) error {
	var b strings.Builder
	if ev.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", ev.ID)
	}
	if ev.Name != "" {
		fmt.Fprintf(&b, "event: %s\n", ev.Name)
	}
	for _, line := range strings.Split(ev.Data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")

	if _, err := s.w.Write([]byte(b.String())); err != nil {
		return err
	}
	return s.rc.Flush()
}

func (s *eventStream) heartbeat() error {
	if _, err := s.w.Write([]byte(": ping\n\n")); err != nil {
		return err
	}
	return s.rc.Flush()
}

// pump sends every value taken from box until ctx is done or a write fails.
func pump[T any](ctx context.Context, s *eventStream, box *Mailbox[T], encode func(T) (store.Event, error), logger *log.Logger) {
	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.heartbeat(); err != nil {
				logger.Debug("stream closed", "error", err)
				return
			}
		case v := <-box.C():
			ev, err := encode(v)
			if err != nil {
				logger.Error("failed to encode event", "error", err)
				continue
			}
			if err := s.Send(ev); err != nil {
				logger.Debug("stream closed", "error", err)
				return
			}
		}
	}
}
