package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type memStore struct {
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (m *memStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.values[key] = value.(string)
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return "", redislib.Nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

type passthroughKeyer struct{}

func (passthroughKeyer) SessionKey(accessID string) string { return "tollnet:session:" + accessID }

func TestSessionLifecycle(t *testing.T) {
	m := &Manager{store: newMemStore(), keyer: passthroughKeyer{}, ttl: time.Hour}
	ctx := context.Background()

	if err := m.Register(ctx, "jti-1", "EG"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	ok, err := m.HasSession(ctx, "jti-1")
	if err != nil || !ok {
		t.Fatalf("HasSession = %v, %v; want true, nil", ok, err)
	}

	if err := m.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	ok, err = m.HasSession(ctx, "jti-1")
	if err != nil {
		t.Fatalf("HasSession after revoke error: %v", err)
	}
	if ok {
		t.Fatal("session should be gone after revoke")
	}
}

func TestRegisterValidation(t *testing.T) {
	m := &Manager{store: newMemStore(), keyer: passthroughKeyer{}, ttl: time.Hour}
	if err := m.Register(context.Background(), "", "EG"); err == nil {
		t.Fatal("expected error for empty access id")
	}
	if err := m.Register(context.Background(), "jti", ""); err == nil {
		t.Fatal("expected error for empty operator id")
	}
}
