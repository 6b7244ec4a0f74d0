package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiznight/internal/domain"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

	if _, err := store.Get(ctx, "v1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	state := domain.SessionState{Name: "Ana", Order: []int64{3, 1, 2}, Position: 1, Score: 1}
	if err := store.Put(ctx, "v1", state); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !mr.Exists("quiz:session:v1") {
		t.Fatalf("expected redis key to be set")
	}

	got, err := store.Get(ctx, "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Ana" || got.Position != 1 || got.Score != 1 || len(got.Order) != 3 {
		t.Fatalf("state did not round-trip: %+v", got)
	}

	if err := store.Delete(ctx, "v1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("quiz:session:v1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestSessionStoreExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

	if err := store.Put(ctx, "v1", domain.SessionState{Name: "Ana"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "v1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}
