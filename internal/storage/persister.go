package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zhuiying-client/internal/logging"
	"github.com/zhuiying-client/internal/store"
)

// Keys of the persisted blobs
const (
	TrackerStoreKey = "tracker-store"
	UserStoreKey    = "user-store"
	TokenKey        = "token"
)

const defaultWriteTimeout = 3 * time.Second

// blob is the on-disk wrapper around a store snapshot
type blob[S any] struct {
	State   S   `json:"state"`
	Version int `json:"version"`
}

// Persister mirrors store snapshots into a KeyValueStore. Write failures
// are logged and never reach the code that mutated the store.
type Persister struct {
	kv           KeyValueStore
	logger       *logging.Logger
	writeTimeout time.Duration

	mu      sync.Mutex
	written map[string]uint64
	unsubs  []func()
}

// NewPersister creates a persister writing to kv
func NewPersister(kv KeyValueStore, logger *logging.Logger) *Persister {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Persister{
		kv:           kv,
		logger:       logger.WithComponent("persister"),
		writeTimeout: defaultWriteTimeout,
		written:      map[string]uint64{},
	}
}

// Attach subscribes to both stores; every applied change is written through
func (p *Persister) Attach(trackers *store.TrackerStore, users *store.UserStore) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unsubs = append(p.unsubs,
		trackers.Subscribe(func(c store.Change[store.TrackerState]) {
			p.write(TrackerStoreKey, c.Version, c.State.Snapshot())
		}),
		users.Subscribe(func(c store.Change[store.UserState]) {
			p.write(UserStoreKey, c.Version, c.State.Snapshot())
		}),
	)
}

// Detach removes the store subscriptions
func (p *Persister) Detach() {
	p.mu.Lock()
	unsubs := p.unsubs
	p.unsubs = nil
	p.mu.Unlock()
	for _, unsubscribe := range unsubs {
		unsubscribe()
	}
}

func (p *Persister) write(key string, version uint64, snapshot interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// listeners of concurrent mutations may arrive out of order
	if version <= p.written[key] {
		return
	}

	data, err := json.Marshal(blob[interface{}]{State: snapshot})
	if err != nil {
		p.logger.WithError(err).WithField("key", key).Error("Failed to encode snapshot")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()
	if err := p.kv.Set(ctx, key, data); err != nil {
		p.logger.WithError(err).WithField("key", key).Warn("Failed to persist snapshot")
		return
	}
	p.written[key] = version
}

// Restore loads both blobs into the stores. Missing blobs are skipped and
// unreadable ones are logged and ignored; only backend failures are returned.
func (p *Persister) Restore(ctx context.Context, trackers *store.TrackerStore, users *store.UserStore) error {
	var ts blob[store.TrackerSnapshot]
	found, err := p.load(ctx, TrackerStoreKey, &ts)
	if err != nil {
		return err
	}
	if found {
		trackers.Restore(ts.State)
	}

	var us blob[store.UserSnapshot]
	found, err = p.load(ctx, UserStoreKey, &us)
	if err != nil {
		return err
	}
	if found {
		users.Restore(us.State)
	}
	return nil
}

func (p *Persister) load(ctx context.Context, key string, into interface{}) (bool, error) {
	data, err := p.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, into); err != nil {
		p.logger.WithError(err).WithField("key", key).Warn("Discarding unreadable snapshot")
		return false, nil
	}
	return true, nil
}

// TokenStore keeps the session token next to the state blobs
type TokenStore struct {
	kv KeyValueStore
}

// NewTokenStore creates a token store backed by kv
func NewTokenStore(kv KeyValueStore) *TokenStore {
	return &TokenStore{kv: kv}
}

// Token returns the saved token, or "" when logged out
func (t *TokenStore) Token(ctx context.Context) (string, error) {
	v, err := t.kv.Get(ctx, TokenKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// SetToken saves the session token
func (t *TokenStore) SetToken(ctx context.Context, token string) error {
	return t.kv.Set(ctx, TokenKey, []byte(token))
}

// ClearToken removes the session token
func (t *TokenStore) ClearToken(ctx context.Context) error {
	return t.kv.Delete(ctx, TokenKey)
}
