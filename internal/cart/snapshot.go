package cart

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	pkgerrors "github.com/pdv-commerce/storefront/pkg/errors"
	"github.com/pdv-commerce/storefront/pkg/redis"
)

// Snapshot is the serialized form of a cart, persisted between CLI
// invocations. Concurrent writers follow last-write-wins; there is no
// cross-process coordination.
type Snapshot struct {
	Lines   []Line    `json:"lines"`
	SavedAt time.Time `json:"saved_at"`
}

// SnapshotStore persists cart snapshots keyed by user.
type SnapshotStore interface {
	Save(ctx context.Context, userID string, snap Snapshot) error
	Load(ctx context.Context, userID string) (Snapshot, bool, error)
	Clear(ctx context.Context, userID string) error
}

// MemorySnapshotStore keeps snapshots in-process; used when no redis backend
// is configured and in tests.
type MemorySnapshotStore struct {
	mu    sync.Mutex
	snaps map[string]Snapshot
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{snaps: make(map[string]Snapshot)}
}

func (m *MemorySnapshotStore) Save(ctx context.Context, userID string, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[userID] = snap
	return nil
}

func (m *MemorySnapshotStore) Load(ctx context.Context, userID string) (Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[userID]
	return snap, ok, nil
}

func (m *MemorySnapshotStore) Clear(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, userID)
	return nil
}

// FileSnapshotStore keeps one JSON file per user under dir. It is the
// fallback when no redis backend is configured.
type FileSnapshotStore struct {
	mu  sync.Mutex
	dir string
}

func NewFileSnapshotStore(dir string) (*FileSnapshotStore, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve config dir")
		}
		dir = filepath.Join(base, "storefront", "carts")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create snapshot dir")
	}
	return &FileSnapshotStore{dir: dir}, nil
}

func (f *FileSnapshotStore) path(userID string) string {
	return filepath.Join(f.dir, "cart_"+userID+".json")
}

func (f *FileSnapshotStore) Save(_ context.Context, userID string, snap Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	payload, err := json.Marshal(snap)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart snapshot")
	}
	if err := os.WriteFile(f.path(userID), payload, 0o600); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write cart snapshot")
	}
	return nil
}

func (f *FileSnapshotStore) Load(_ context.Context, userID string) (Snapshot, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	payload, err := os.ReadFile(f.path(userID))
	if os.IsNotExist(err) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read cart snapshot")
	}

	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cart snapshot")
	}
	return snap, true, nil
}

func (f *FileSnapshotStore) Clear(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(userID)); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart snapshot")
	}
	return nil
}

// RedisSnapshotStore persists snapshots in redis with a TTL.
type RedisSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSnapshotStore(client *redis.Client, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, ttl: ttl}
}

func (r *RedisSnapshotStore) Save(ctx context.Context, userID string, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart snapshot")
	}
	key := r.client.CartSnapshotKey(userID)
	if err := r.client.Set(ctx, key, string(payload), r.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart snapshot")
	}
	return nil
}

func (r *RedisSnapshotStore) Load(ctx context.Context, userID string) (Snapshot, bool, error) {
	key := r.client.CartSnapshotKey(userID)
	raw, err := r.client.Get(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart snapshot")
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cart snapshot")
	}
	return snap, true, nil
}

func (r *RedisSnapshotStore) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.client.CartSnapshotKey(userID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart snapshot")
	}
	return nil
}
