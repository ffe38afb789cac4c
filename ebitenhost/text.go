package ebitenhost

import (
	"bytes"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/phanxgames/bramble"
)

// LoadFontSource parses TrueType or OpenType data for drawing with
// Ebitengine's text/v2. Bind the result to the handle of the matching
// bramble.LoadTTF face with Renderer.SetFontSource.
func LoadFontSource(ttfData []byte) (*text.GoTextFaceSource, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("ebitenhost: failed to parse TTF data: %w", err)
	}
	return src, nil
}

type faceKey struct {
	font bramble.FontHandle
	size float64
}

// SetFontSource binds a text/v2 face source to the face font under h.
// Glyphs of that font are then shaped and drawn by text/v2 instead of being
// rasterized from the face's masks. A nil src removes the binding.
func (r *Renderer) SetFontSource(h bramble.FontHandle, src *text.GoTextFaceSource) {
	for k := range r.faces {
		if k.font == h {
			delete(r.faces, k)
		}
	}
	if src == nil {
		delete(r.sources, h)
		return
	}
	r.sources[h] = src
}

func (r *Renderer) face(h bramble.FontHandle, size float64) *text.GoTextFace {
	k := faceKey{h, size}
	if f, ok := r.faces[k]; ok {
		return f
	}
	f := &text.GoTextFace{Source: r.sources[h], Size: size}
	r.faces[k] = f
	return f
}

// drawSourceGlyph draws a glyph of a face font through text/v2. It reports
// false when h has no bound source, leaving the mask path to draw it.
func (r *Renderer) drawSourceGlyph(dst *ebiten.Image, p *bramble.Primitive, f *bramble.FaceMetrics) bool {
	if _, ok := r.sources[p.Glyph.Font]; !ok {
		return false
	}
	gm, ok := f.Glyph(p.Glyph.Rune)
	if !ok {
		return false
	}
	scale := p.Glyph.Size / f.Size()
	face := r.face(p.Glyph.Font, p.Glyph.Size)
	baseline := p.Rect.Y - gm.Bounds.Y*scale + f.Ascent()*scale

	r.flush(dst)
	op := &text.DrawOptions{}
	op.GeoM.Translate(p.Rect.X-gm.Bounds.X*scale, baseline-face.Metrics().HAscent)
	op.ColorScale.Scale(premultiply(p.Color))
	text.Draw(dst, string(p.Glyph.Rune), face, op)
	r.stats.DrawCalls++
	return true
}
