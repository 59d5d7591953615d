package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type memoryStore struct {
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (s *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.values[key] = "1"
	_ = value
	return nil
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

type plainKeyer struct{}

func (plainKeyer) AccessSessionKey(accessID string) string { return "session:" + accessID }

func newTestManager() (*Manager, *memoryStore) {
	store := newMemoryStore()
	return &Manager{store: store, keyer: plainKeyer{}, ttl: time.Minute}, store
}

func TestSessionLifecycle(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	accessID := NewAccessID()
	if err := m.Start(ctx, accessID); err != nil {
		t.Fatalf("start: %v", err)
	}

	ok, err := m.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if !ok {
		t.Fatal("expected session to exist after start")
	}

	if err := m.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	ok, err = m.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has after revoke: %v", err)
	}
	if ok {
		t.Fatal("expected session to be gone after revoke")
	}
}

func TestHasSessionBlankID(t *testing.T) {
	m, _ := newTestManager()
	ok, err := m.HasSession(context.Background(), " ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("blank access id should never have a session")
	}
}

func TestStartRequiresAccessID(t *testing.T) {
	m, _ := newTestManager()
	if err := m.Start(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty access id")
	}
}
