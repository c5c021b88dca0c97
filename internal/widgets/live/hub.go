// Package live pushes "something changed" signals to open calendar pages.
// Mutations publish on a per-project Redis channel so every server
// instance hears them; each instance fans the signal out to its own
// websocket clients.
package live

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix = "project:"
	channelSuffix = ":refresh"
)

// Channel returns the pub/sub channel for a project.
func Channel(projectID string) string {
	return channelPrefix + projectID + channelSuffix
}

// projectFromChannel is the inverse of Channel.
func projectFromChannel(ch string) (string, bool) {
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return "", false
	}
	id := ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
	return id, id != ""
}

// Notifier is what mutating plugins call after a successful change.
type Notifier interface {
	ProjectChanged(ctx context.Context, projectID string)
}

// Nop is a Notifier that does nothing.
type Nop struct{}

// ProjectChanged implements Notifier.
func (Nop) ProjectChanged(context.Context, string) {}

// Hub tracks local subscribers per project.
type Hub struct {
	rdb *redis.Client

	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}

	ready     chan struct{}
	readyOnce sync.Once
}

// NewHub creates a hub. Call Run to start receiving.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		rdb:   rdb,
		subs:  make(map[string]map[chan struct{}]struct{}),
		ready: make(chan struct{}),
	}
}

// Ready is closed once Run's pattern subscription is confirmed.
func (h *Hub) Ready() <-chan struct{} { return h.ready }

// Run listens for refresh messages until ctx is done. go-redis reconnects
// the subscription on its own, so Run only returns on shutdown or if the
// initial subscribe fails.
func (h *Hub) Run(ctx context.Context) error {
	pubsub := h.rdb.PSubscribe(ctx, Channel("*"))
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to refresh channels: %w", err)
	}
	h.readyOnce.Do(func() { close(h.ready) })
	slog.Info("live refresh hub started")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if id, ok := projectFromChannel(msg.Channel); ok {
				h.fanout(id)
			}
		}
	}
}

// ProjectChanged publishes a refresh for projectID. Failures are logged;
// a missed refresh only means clients see the change on their next load.
func (h *Hub) ProjectChanged(ctx context.Context, projectID string) {
	if err := h.rdb.Publish(ctx, Channel(projectID), "refresh").Err(); err != nil {
		slog.Warn("publishing project refresh failed",
			slog.String("project_id", projectID),
			slog.Any("error", err),
		)
	}
}

// Subscribe registers for refreshes of projectID. The returned channel has
// a buffer of one and signals are coalesced, so a slow client sees at
// most one pending refresh. Call cancel to unsubscribe.
func (h *Hub) Subscribe(projectID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	set := h.subs[projectID]
	if set == nil {
		set = make(map[chan struct{}]struct{})
		h.subs[projectID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[projectID], ch)
			if len(h.subs[projectID]) == 0 {
				delete(h.subs, projectID)
			}
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// Subscribers returns the local subscriber count for a project.
func (h *Hub) Subscribers(projectID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[projectID])
}

func (h *Hub) fanout(projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[projectID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
