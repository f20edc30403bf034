package vault

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/flecs-run/edge-core/internal/model"
)

// record is the wire shape persisted by Snapshot/Restore. It exists only
// to decouple the snapshot format from the in-memory pouch representation;
// the persistence adapter owns what happens to the encoded bytes.
type record struct {
	Apps      []*model.App
	Manifests []*model.Manifest
	Instances []*model.Instance
	SessionID *model.SessionId
}

// Snapshot serializes apps, instances and the captured session id under
// a single shared reservation of the app, manifest, instance and secret
// pouches, so the result is always a consistent point in time. Manifests
// and deployments are not included. The format is opaque to callers.
func (v *Vault) Snapshot() ([]byte, error) {
	g := v.Reservation().
		ReserveAppPouch().
		ReserveManifestPouch().
		ReserveInstancePouch().
		ReserveSecretPouch().
		Grab()
	defer g.Release()

	rec := record{}
	for _, key := range g.Apps.Keys() {
		app, _ := g.Apps.Get(key)
		rec.Apps = append(rec.Apps, app)
	}
	for _, i := range g.Instances.All() {
		rec.Instances = append(rec.Instances, i)
	}
	if sid, ok := g.Secrets.SessionID(); ok {
		rec.SessionID = &sid
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Restore replaces apps, instances and the captured session id with the
// contents of a previously taken Snapshot. Manifests are not restored:
// they are re-declared by whatever process re-installs each app.
func (v *Vault) Restore(data []byte) error {
	var rec record
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	g := v.Reservation().
		ReserveAppPouchMut().
		ReserveInstancePouchMut().
		ReserveSecretPouchMut().
		Grab()
	defer g.Release()

	for _, app := range rec.Apps {
		g.Apps.Set(app.Key, app)
	}
	for _, inst := range rec.Instances {
		g.Instances.Set(inst)
	}
	if rec.SessionID != nil {
		g.Secrets.SetSessionID(*rec.SessionID)
	}
	return nil
}

// SnapshotStore persists opaque vault snapshots outside the process.
// RedisSnapshotStore is the reference implementation; any key/value
// backend can implement the same two methods.
type SnapshotStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
}

// RedisSnapshotStore backs SnapshotStore with a Redis string value. It
// does not interpret the bytes it stores.
type RedisSnapshotStore struct {
	client *redis.Client
}

func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client}
}

func (s *RedisSnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, key, data, 0).Err()
}

func (s *RedisSnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}
