package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-savestate/pkg/store"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	if _, ok, err := s.Load(ctx, "SaveGame"); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	payload := []byte(`{"version":1}`)
	if err := s.Save(ctx, "SaveGame", payload); err != nil {
		t.Fatalf("save: %v", err)
	}
	payload[0] = 'X'

	got, ok, err := s.Load(ctx, "SaveGame")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(got) != `{"version":1}` {
		t.Fatalf("store kept caller slice: %q", got)
	}

	got[0] = 'Y'
	again, _, _ := s.Load(ctx, "SaveGame")
	if string(again) != `{"version":1}` {
		t.Fatalf("store returned shared slice: %q", again)
	}
}

func TestMemoryStoreValidatesNames(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	if err := s.Save(ctx, "", nil); !errors.Is(err, store.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if err := s.Save(ctx, "../escape", nil); !errors.Is(err, store.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, _, err := s.Load(ctx, " padded"); !errors.Is(err, store.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestMemoryStoreHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := store.NewMemoryStore()
	if err := s.Save(ctx, "SaveGame", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	s.Put("SaveGame", []byte("x"))
	if _, _, err := s.Load(ctx, "SaveGame"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMemoryStorePutAndDelete(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	s.Put("SaveGame", []byte("raw"))
	if got, ok, _ := s.Load(ctx, "SaveGame"); !ok || string(got) != "raw" {
		t.Fatalf("unexpected payload %q ok=%v", got, ok)
	}
	s.Delete("SaveGame")
	if _, ok, _ := s.Load(ctx, "SaveGame"); ok {
		t.Fatalf("expected payload removed")
	}
}
