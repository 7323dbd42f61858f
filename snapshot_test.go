package storyboard

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func stubCommand(t *testing.T) string {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	return "go run " + filepath.Join(cwd, "testdata", "html2img", "main.go")
}

func TestSnapshotWithCommand(t *testing.T) {
	ctx := context.Background()
	stub := stubCommand(t)

	tests := []struct {
		name    string
		command string
		wantErr bool
	}{
		{
			name:    "output to stdout",
			command: stub + " < {{html}}",
		},
		{
			name:    "output to file using {{output}}",
			command: stub + " < {{html}} > {{output}}",
		},
		{
			name:    "command failure",
			command: "false",
			wantErr: true,
		},
		{
			name:    "invalid command",
			command: "this-command-does-not-exist",
			wantErr: true,
		},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSnapshotter(WithSnapshotCommand(tt.command))
			// distinct markup per case keeps the snapshot cache out of the way
			slide := &Slide{ID: i + 1, HTML: fmt.Sprintf("<h1>case %d</h1>", i)}
			b, err := s.Snapshot(ctx, slide)
			if (err != nil) != tt.wantErr {
				t.Errorf("Snapshot() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if len(b) < len(pngHeader) || !bytes.Equal(b[:len(pngHeader)], pngHeader) {
				t.Error("Snapshot() did not produce a PNG")
			}
			img, err := png.Decode(bytes.NewReader(b))
			if err != nil {
				t.Fatalf("failed to decode snapshot: %v", err)
			}
			bounds := img.Bounds()
			if bounds.Dx() != CanvasWidth || bounds.Dy() != CanvasHeight {
				t.Errorf("snapshot size = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), CanvasWidth, CanvasHeight)
			}
		})
	}
}

func TestSnapshotCache(t *testing.T) {
	ctx := context.Background()
	slide := &Slide{ID: 1, HTML: "<h1>cached slide</h1>"}

	s := NewSnapshotter(WithSnapshotCommand(stubCommand(t) + " < {{html}}"))
	first, err := s.Snapshot(ctx, slide)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	// same markup through a broken command must come from the cache
	broken := NewSnapshotter(WithSnapshotCommand("false"))
	second, err := broken.Snapshot(ctx, slide)
	if err != nil {
		t.Fatalf("Snapshot() cache miss: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("cached snapshot differs")
	}
}

func TestSnapshotAllKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := NewSnapshotter(WithSnapshotCommand(stubCommand(t) + " < {{html}} > {{output}}"))
	slides := Slides{
		{ID: 1, HTML: "<h1>first unique body</h1>"},
		{ID: 2, HTML: "<h1>second unique body</h1>"},
	}
	images, err := s.SnapshotAll(ctx, slides)
	if err != nil {
		t.Fatalf("SnapshotAll() error = %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("len(images) = %d, want 2", len(images))
	}
	for i, b := range images {
		if !bytes.Equal(b[:len(pngHeader)], pngHeader) {
			t.Errorf("images[%d] is not a PNG", i)
		}
	}
}

func TestSnapshotsEquivalent(t *testing.T) {
	ctx := context.Background()
	s := NewSnapshotter(WithSnapshotCommand(stubCommand(t) + " < {{html}}"))
	a, err := s.Snapshot(ctx, &Slide{ID: 1, HTML: "<h1>same text</h1>"})
	if err != nil {
		t.Fatal(err)
	}
	// different markup, same visible text
	b, err := s.Snapshot(ctx, &Slide{ID: 2, HTML: "<h1 class=\"x\">same text</h1>"})
	if err != nil {
		t.Fatal(err)
	}
	if !SnapshotsEquivalent(a, b) {
		t.Error("visually identical snapshots reported different")
	}
	if SnapshotsEquivalent(a, []byte("not a png")) {
		t.Error("junk bytes reported equivalent")
	}
}
