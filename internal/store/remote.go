package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/menuboard/internal/models"
	"github.com/desertthunder/menuboard/internal/shared"
	"golang.org/x/time/rate"
)

// SnapshotEvent is the SSE event name carrying a JSON [Snapshot].
const SnapshotEvent = "snapshot"

// Remote is a [Store] backed by a menuboard server.
//
// Subscriptions hold one event stream each and reconnect after failures at
// the configured pace. Every subscription paces its own reconnects.
type Remote struct {
	baseURL        string
	token          string
	client         *http.Client
	stream         *http.Client
	logger         *log.Logger
	reconnectEvery time.Duration
	reconnectBurst int
}

// RemoteOption configures a [Remote].
type RemoteOption func(*Remote)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) RemoteOption {
	return func(r *Remote) { r.token = token }
}

// WithHTTPClient replaces the client used for requests and streams.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) {
		r.client = c
		r.stream = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) RemoteOption {
	return func(r *Remote) { r.logger = l }
}

// WithReconnectRate sets how often a broken stream may be reopened.
func WithReconnectRate(every time.Duration, burst int) RemoteOption {
	return func(r *Remote) {
		r.reconnectEvery = every
		r.reconnectBurst = max(burst, 1)
	}
}

func NewRemote(baseURL string, opts ...RemoteOption) *Remote {
	r := &Remote{
		baseURL:        strings.TrimRight(baseURL, "/"),
		client:         &http.Client{Timeout: 15 * time.Second},
		stream:         &http.Client{},
		reconnectEvery: 2 * time.Second,
		reconnectBurst: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = shared.NewLogger(nil)
	}
	r.logger = shared.WithLogger(r.logger, "component", "store", "remote", r.baseURL)
	return r
}

func (r *Remote) documentURL(key models.DocumentKey) string {
	return r.baseURL + "/api/documents/" + string(key)
}

func (r *Remote) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	return req, nil
}

func (r *Remote) do(req *http.Request) (Snapshot, error) {
	resp, err := r.client.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Snapshot{}, shared.ErrNotAuthenticated
	case resp.StatusCode >= 400:
		return Snapshot{}, fmt.Errorf("%w: %s %s: %d %s", shared.ErrAPIRequest, req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Data == nil {
		snap.Data = models.Document{}
	}
	return snap, nil
}

// Get fetches the current snapshot.
func (r *Remote) Get(ctx context.Context, key models.DocumentKey) (Snapshot, error) {
	req, err := r.newRequest(ctx, http.MethodGet, r.documentURL(key), nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")
	return r.do(req)
}

// Apply sends patch as a merge write and returns the merged snapshot.
func (r *Remote) Apply(ctx context.Context, key models.DocumentKey, patch models.Document) (Snapshot, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to encode patch: %w", err)
	}

	req, err := r.newRequest(ctx, http.MethodPatch, r.documentURL(key), bytes.NewReader(body))
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	snap, err := r.do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %w", shared.ErrStoreWrite, key, err)
	}
	return snap, nil
}

// Write is [Remote.Apply] with failures logged instead of returned.
func (r *Remote) Write(ctx context.Context, key models.DocumentKey, patch models.Document) {
	if _, err := r.Apply(ctx, key, patch); err != nil {
		r.logger.Error("write failed", "key", key, "error", err)
	}
}

// Subscribe opens an event stream in the background. The initial snapshot
// arrives as the first event of each connection.
func (r *Remote) Subscribe(key models.DocumentKey, onChange func(Snapshot)) Unsubscribe {
	ctx, cancel := context.WithCancel(context.Background())
	sub := newSubscription(onChange)

	limiter := rate.NewLimiter(rate.Every(r.reconnectEvery), r.reconnectBurst)
	go r.follow(ctx, key, sub, limiter)

	return once(func() {
		sub.close()
		cancel()
	})
}

func (r *Remote) follow(ctx context.Context, key models.DocumentKey, sub *subscription, limiter *rate.Limiter) {
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		// each connection starts with the authoritative current state
		sub.reset()
		err := r.streamOnce(ctx, key, sub)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			r.logger.Warn("stream interrupted, reconnecting", "key", key, "error", err)
		} else {
			r.logger.Debug("stream closed by server, reconnecting", "key", key)
		}
	}
}

func (r *Remote) streamOnce(ctx context.Context, key models.DocumentKey, sub *subscription) error {
	req, err := r.newRequest(ctx, http.MethodGet, r.documentURL(key)+"/stream", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := r.stream.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: stream %s: status %d", shared.ErrAPIRequest, key, resp.StatusCode)
	}

	return ReadEvents(resp.Body, func(ev Event) error {
		if ev.Name != "" && ev.Name != SnapshotEvent {
			return nil
		}
		var snap Snapshot
		if err := json.Unmarshal([]byte(ev.Data), &snap); err != nil {
			r.logger.Warn("dropping malformed snapshot", "key", key, "error", err)
			return nil
		}
		if snap.Data == nil {
			snap.Data = models.Document{}
		}
		snap.Key = key
		sub.deliver(snap)
		return nil
	})
}
