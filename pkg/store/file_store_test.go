package store_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-savestate/pkg/store"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := store.NewFileStore(filepath.Join(dir, "saves"))

	if _, ok, err := s.Load(ctx, "SaveGame"); err != nil || ok {
		t.Fatalf("expected missing file, got ok=%v err=%v", ok, err)
	}

	if err := s.Save(ctx, "SaveGame", []byte("first")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, "SaveGame", []byte("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, ok, err := s.Load(ctx, "SaveGame")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(got) != "second" {
		t.Fatalf("expected overwritten payload, got %q", got)
	}

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "SaveGame" {
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		t.Fatalf("expected only the save file, got %v", names)
	}
}

func TestFileStoreFailedSaveKeepsPreviousFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := store.NewFileStore(dir)

	if err := s.Save(ctx, "SaveGame", []byte("good")); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A directory in the way of the rename makes the commit step fail.
	blocked := filepath.Join(dir, "Blocked")
	if err := os.MkdirAll(filepath.Join(blocked, "child"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := s.Save(ctx, "Blocked", []byte("bad")); err == nil {
		t.Fatalf("expected rename over non-empty dir to fail")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
	got, ok, err := s.Load(ctx, "SaveGame")
	if err != nil || !ok || string(got) != "good" {
		t.Fatalf("previous save disturbed: %q ok=%v err=%v", got, ok, err)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	s := store.NewFileStore(t.TempDir())
	if err := s.Save(context.Background(), "../SaveGame", []byte("x")); err == nil {
		t.Fatalf("expected traversal name to be rejected")
	}
}
