package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ShayCichocki/paperbar/pkg/models"
)

func TestWatch_FiresOnSave(t *testing.T) {
	s, err := OpenJSON(filepath.Join(t.TempDir(), "data.json"))
	if err != nil {
		t.Fatalf("OpenJSON failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, s.Path(), func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	p := models.NewPaper("Watched", models.NewDate(2025, 5, 10))
	if err := s.CreatePaper(&p); err != nil {
		t.Fatalf("CreatePaper failed: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("onChange was not called after a save")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "data.json"), func() {})
	if err == nil {
		t.Error("expected error watching a missing directory")
	}
}
