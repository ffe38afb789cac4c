package ebitenhost

import (
	"testing"

	"github.com/phanxgames/bramble"
)

func TestFileLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"after-click", "after-click"},
		{"frame.01", "frame.01"},
		{"has spaces", "has_spaces"},
		{"path/to/thing", "path_to_thing"},
		{"special!@#", "special___"},
		{"é", "_"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
	}
	for _, tt := range tests {
		if got := fileLabel(tt.in); got != tt.want {
			t.Errorf("fileLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStraightAlpha(t *testing.T) {
	pixels := []byte{
		255, 0, 0, 255, // opaque
		64, 32, 0, 128, // half alpha, premultiplied
		0, 0, 0, 0, // transparent
	}
	img := straightAlpha(pixels, 3, 1)

	want := []byte{
		255, 0, 0, 255,
		127, 63, 0, 128,
		0, 0, 0, 0,
	}
	for i, w := range want {
		if img.Pix[i] != w {
			t.Errorf("Pix[%d] = %d, want %d", i, img.Pix[i], w)
		}
	}
	if pixels[4] != 64 {
		t.Error("straightAlpha modified its input")
	}
}

func TestGameScreenshotQueue(t *testing.T) {
	g := NewGame(bramble.New(nil, bramble.Config{}), nil, RunConfig{})
	g.Screenshot("a")
	g.Screenshot("b")
	if len(g.shots) != 2 || g.shots[0] != "a" || g.shots[1] != "b" {
		t.Errorf("queue = %v, want [a b]", g.shots)
	}
}

func TestNewGameDefaults(t *testing.T) {
	ui := bramble.New(nil, bramble.Config{})
	g := NewGame(ui, nil, RunConfig{})
	if g.cfg.Width != 640 || g.cfg.Height != 480 {
		t.Errorf("size = %dx%d, want 640x480", g.cfg.Width, g.cfg.Height)
	}
	if g.cfg.ScreenshotDir != DefaultScreenshotDir {
		t.Errorf("ScreenshotDir = %q, want %q", g.cfg.ScreenshotDir, DefaultScreenshotDir)
	}
	if g.Renderer() == nil {
		t.Fatal("Renderer = nil")
	}

	r := NewRenderer(ui.Assets())
	g = NewGame(ui, nil, RunConfig{Width: 800, Height: 600, Renderer: r})
	if g.Renderer() != r {
		t.Error("NewGame ignored the configured Renderer")
	}

	if w, h := g.Layout(320, 200); w != 320 || h != 200 {
		t.Errorf("Layout = %dx%d, want 320x200", w, h)
	}
	if vp := ui.Viewport(); vp.Width != 320 || vp.Height != 200 {
		t.Errorf("Viewport = %+v, want 320x200", vp)
	}
}
