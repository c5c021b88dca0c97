package preferences

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

// Store is the preferences repository: get, set, and subscribe to changes
// for one client.
type Store interface {
	// Get returns the saved prefs, or Default() when none exist.
	Get(ctx context.Context, clientID string) (Prefs, error)

	// Set saves prefs and notifies subscribers. The notification carries
	// OriginFrom(ctx).
	Set(ctx context.Context, clientID string, prefs Prefs) error

	// Subscribe delivers every subsequent Set for clientID until the
	// returned cancel func is called or ctx ends.
	Subscribe(ctx context.Context, clientID string) (<-chan Change, func(), error)
}

// redisStore implements Store on Redis: one JSON value per client and a
// pub/sub channel for change notifications.
type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a Store backed by the given Redis client. Saved
// prefs expire after ttl without writes; zero keeps them forever.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) Store {
	return &redisStore{rdb: rdb, ttl: ttl}
}

func prefsKey(clientID string) string {
	return "prefs:" + clientID
}

func prefsChannel(clientID string) string {
	return "prefs:" + clientID + ":changed"
}

func (s *redisStore) Get(ctx context.Context, clientID string) (Prefs, error) {
	data, err := s.rdb.Get(ctx, prefsKey(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("reading prefs: %w", err)
	}

	var p Prefs
	if err := sonic.Unmarshal(data, &p); err != nil {
		// A corrupt value is dropped rather than blocking every page load.
		_ = s.rdb.Del(ctx, prefsKey(clientID)).Err()
		return Default(), nil
	}
	if p.Hide == nil {
		p.Hide = map[string]bool{}
	}
	p.Theme = p.Theme.Normalize()
	return p, nil
}

func (s *redisStore) Set(ctx context.Context, clientID string, prefs Prefs) error {
	data, err := sonic.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encoding prefs: %w", err)
	}
	note, err := sonic.Marshal(Change{Prefs: prefs, Origin: OriginFrom(ctx)})
	if err != nil {
		return fmt.Errorf("encoding prefs change: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, prefsKey(clientID), data, s.ttl)
		pipe.Publish(ctx, prefsChannel(clientID), note)
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving prefs: %w", err)
	}
	return nil
}

func (s *redisStore) Subscribe(ctx context.Context, clientID string) (<-chan Change, func(), error) {
	sub := s.rdb.Subscribe(ctx, prefsChannel(clientID))
	// Wait for the subscription to be confirmed so no Set issued after
	// Subscribe returns can be missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("subscribing to prefs: %w", err)
	}

	out := make(chan Change, 1)
	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ch Change
				if err := sonic.UnmarshalString(msg.Payload, &ch); err != nil {
					slog.Warn("dropping malformed prefs notification",
						slog.String("client_id", clientID),
						slog.Any("error", err),
					)
					continue
				}
				ch.Prefs.Theme = ch.Prefs.Theme.Normalize()
				select {
				case out <- ch:
				default:
					// Subscribers only need the latest state; drop if busy.
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}
	return out, cancel, nil
}
