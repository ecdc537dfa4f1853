package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func waitForFile(t *testing.T, path, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if data, err := os.ReadFile(path); err == nil && string(data) == want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s = %q", path, want)
}

func TestWatchTranslatesExistingAndNewFiles(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, in, "existing.srt", "first")

	r := NewRunner(upper(), nil, Options{
		InputDir:    in,
		OutputDir:   out,
		Extensions:  []string{".srt"},
		Suffix:      "_heb",
		SettleDelay: 40 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type result struct {
		report *Report
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := r.Watch(ctx)
		done <- result{report, err}
	}()

	waitForFile(t, filepath.Join(out, "existing_heb.srt"), "FIRST")

	writeFile(t, in, "ignored.txt", "not a subtitle")
	writeFile(t, in, "new.srt", "second")
	waitForFile(t, filepath.Join(out, "new_heb.srt"), "SECOND")

	cancel()
	select {
	case res := <-done:
		if !errors.Is(res.err, context.Canceled) {
			t.Errorf("Watch error = %v, want context.Canceled", res.err)
		}
		if len(res.report.Files) < 2 {
			t.Errorf("expected at least 2 file reports, got %d", len(res.report.Files))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}

	if _, err := os.Stat(filepath.Join(out, "ignored_heb.txt")); !os.IsNotExist(err) {
		t.Errorf("non-subtitle file translated, stat err = %v", err)
	}
}

func TestWatchMissingInputDirectory(t *testing.T) {
	r := NewRunner(upper(), nil, Options{
		InputDir:   filepath.Join(t.TempDir(), "missing"),
		OutputDir:  t.TempDir(),
		Extensions: []string{".srt"},
	})
	if _, err := r.Watch(context.Background()); err == nil {
		t.Error("expected error for missing input directory")
	}
}

func TestSettled(t *testing.T) {
	now := time.Now()
	pending := map[string]time.Time{
		"b.srt": now.Add(-time.Second),
		"a.srt": now.Add(-time.Second),
		"c.srt": now.Add(-10 * time.Millisecond),
	}

	got := settled(pending, now, 500*time.Millisecond)
	want := []string{"a.srt", "b.srt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("settled() = %v, want %v", got, want)
	}
}
