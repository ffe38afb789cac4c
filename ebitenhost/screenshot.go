package ebitenhost

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// DefaultScreenshotDir is where captures go when RunConfig.ScreenshotDir is
// empty.
const DefaultScreenshotDir = "screenshots"

// Screenshot queues a capture of the next drawn frame under label. Each
// capture is written as <dir>/<timestamp>_<label>.png once Draw finishes.
// Safe to call from widget callbacks.
func (g *Game) Screenshot(label string) {
	g.shots = append(g.shots, label)
}

// flushScreenshots writes every queued capture of screen.
func (g *Game) flushScreenshots(screen *ebiten.Image) {
	if len(g.shots) == 0 {
		return
	}
	defer func() { g.shots = g.shots[:0] }()

	dir := g.cfg.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "[bramble] screenshot: mkdir %s: %v\n", dir, err)
		return
	}

	b := screen.Bounds()
	pixels := make([]byte, 4*b.Dx()*b.Dy())
	screen.ReadPixels(pixels)
	img := straightAlpha(pixels, b.Dx(), b.Dy())

	stamp := time.Now().Format("20060102_150405")
	for _, label := range g.shots {
		path := filepath.Join(dir, stamp+"_"+fileLabel(label)+".png")
		if err := writePNG(path, img); err != nil {
			fmt.Fprintf(os.Stderr, "[bramble] screenshot: %v\n", err)
		}
	}
}

// straightAlpha converts premultiplied RGBA pixels to an NRGBA image.
func straightAlpha(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, pixels)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := int(img.Pix[i+3])
		if a == 0 || a == 255 {
			continue
		}
		for c := 0; c < 3; c++ {
			img.Pix[i+c] = uint8(min(int(img.Pix[i+c])*255/a, 255))
		}
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// fileLabel maps label to a file-name-safe string. Anything outside
// [A-Za-z0-9.-] becomes an underscore; blank labels become "unlabeled".
func fileLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
