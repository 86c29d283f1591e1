package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestDiscoverMedia(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "control_b.mkv", "control_a.MP4", "control_notes.txt", "reference_x.mov", "other.mp4")
	if err := os.Mkdir(filepath.Join(dir, "control_dir.mp4"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := discoverMedia(dir, "control_")
	if err != nil {
		t.Fatalf("discoverMedia: %v", err)
	}
	want := []string{filepath.Join(dir, "control_a.MP4"), filepath.Join(dir, "control_b.mkv")}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolveMediaByPrefix(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "control_film.mp4", "reference_game.mov")

	control, reference, err := resolveMedia(nil, dir, "control_", "reference_")
	if err != nil {
		t.Fatalf("resolveMedia: %v", err)
	}
	if control != filepath.Join(dir, "control_film.mp4") {
		t.Fatalf("control = %q", control)
	}
	if reference != filepath.Join(dir, "reference_game.mov") {
		t.Fatalf("reference = %q", reference)
	}
}

func TestResolveMediaMissing(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "control_film.mp4")

	_, _, err := resolveMedia(nil, dir, "control_", "reference_")
	if !errors.Is(err, ErrMissingInputFiles) {
		t.Fatalf("expected ErrMissingInputFiles, got %v", err)
	}
}

func TestResolveMediaArgs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp4", "b.avi", "notes.txt")
	a := filepath.Join(dir, "a.mp4")
	b := filepath.Join(dir, "b.avi")

	control, reference, err := resolveMedia([]string{a, b}, "/nonexistent", "control_", "reference_")
	if err != nil {
		t.Fatalf("resolveMedia: %v", err)
	}
	if control != a || reference != b {
		t.Fatalf("got %q, %q", control, reference)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing", []string{a, filepath.Join(dir, "nope.mp4")}, "does not exist"},
		{"not video", []string{filepath.Join(dir, "notes.txt"), b}, "not a valid video"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := resolveMedia(tt.args, dir, "control_", "reference_")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestStyleOutput(t *testing.T) {
	out := styleOutput([]string{"one", "two"})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out)
	}
	if !strings.Contains(lines[0], "├") || !strings.Contains(lines[1], "└") {
		t.Fatalf("unexpected bullets: %q", out)
	}
}
