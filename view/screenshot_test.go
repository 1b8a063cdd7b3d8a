package view

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phanxgames/marionette"
)

func TestFileSafe(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"pose", "pose"},
		{"t12.50", "t12.50"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"special!@#", "special___"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
	}
	for _, tt := range tests {
		if got := fileSafe(tt.in); got != tt.want {
			t.Errorf("fileSafe(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShotFilename(t *testing.T) {
	now := time.Date(2026, 3, 1, 14, 5, 9, 0, time.UTC)
	got := shot{label: "big jump", at: 1.5}.filename(now)
	if want := "big_jump_t001.500_20260301_140509.png"; got != want {
		t.Errorf("filename = %q, want %q", got, want)
	}
}

func TestStraightAlpha(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 3, 1))
	copy(frame.Pix, []byte{
		255, 0, 0, 255, // opaque red
		64, 32, 0, 128, // half-transparent
		0, 0, 0, 0, // clear
	})
	img := straightAlpha(frame)

	want := []byte{
		255, 0, 0, 255,
		127, 63, 0, 128,
		0, 0, 0, 0,
	}
	for i, v := range want {
		if img.Pix[i] != v {
			t.Fatalf("Pix[%d] = %d, want %d (pix %v)", i, img.Pix[i], v, img.Pix)
		}
	}
}

func TestScreenshotRecordsPlaybackTime(t *testing.T) {
	bones, _, _ := newArm(t)
	p := marionette.NewPlayer(marionette.NewBinder(bones), 1, false)
	g := New(p, Options{})
	if g.opts.ScreenshotDir != "screenshots" {
		t.Errorf("ScreenshotDir = %q, want screenshots", g.opts.ScreenshotDir)
	}

	g.Screenshot("a")
	if _, err := p.Seek(0.25); err != nil {
		t.Fatal(err)
	}
	g.Screenshot("b")
	if len(g.shots) != 2 || g.shots[0].label != "a" || g.shots[1].label != "b" {
		t.Fatalf("queue = %+v, want [a b]", g.shots)
	}
	if g.shots[0].at != 0 || g.shots[1].at != 0.25 {
		t.Errorf("times = %v, %v, want 0, 0.25", g.shots[0].at, g.shots[1].at)
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := savePNG(path, image.NewNRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("savePNG: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("png not written: %v", err)
	}
}
