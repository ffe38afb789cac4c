package ebitenhost

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/bramble"
)

// maxBatchQuads caps the quads coalesced into one DrawTriangles32 call.
const maxBatchQuads = 1 << 14

var (
	whiteImage    *ebiten.Image
	whiteSubImage *ebiten.Image
)

// ensureWhiteImage returns a single opaque white pixel cut from the middle
// of a 3x3 image so linear filtering never samples past its edge. Quads and
// paths are drawn from it with vertex colors.
func ensureWhiteImage() *ebiten.Image {
	if whiteSubImage == nil {
		whiteImage = ebiten.NewImage(3, 3)
		whiteImage.Fill(color.White)
		whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteSubImage
}

// whiteSrc is the source rect of the white pixel.
var whiteSrc = bramble.Rect{X: 1, Y: 1, Width: 1, Height: 1}

// RenderStats counts the work done by one Draw call.
type RenderStats struct {
	Primitives int // primitives drawn
	Skipped    int // primitives whose texture or glyph was not available
	DrawCalls  int // DrawTriangles submissions
}

type glyphKey struct {
	font bramble.FontHandle
	r    rune
}

// rasterGlyph is a face glyph rasterized into its own image. rect is the
// mask's position relative to the pen at the top of the line, in the
// face's native pixels.
type rasterGlyph struct {
	img  *ebiten.Image
	rect image.Rectangle
}

// Renderer draws bramble primitives onto an ebiten.Image. Glyphs of face
// fonts with a bound text/v2 source are drawn by text/v2. Consecutive
// primitives that sample the same source image are coalesced into one
// DrawTriangles32 call; paths and rounded quads are tessellated with the
// vector package.
type Renderer struct {
	assets bramble.Assets

	textures  map[bramble.ImageHandle]*ebiten.Image
	fontPages map[bramble.FontHandle][]*ebiten.Image
	glyphs    map[glyphKey]*rasterGlyph
	sources   map[bramble.FontHandle]*text.GoTextFaceSource
	faces     map[faceKey]*text.GoTextFace

	batchSrc   *ebiten.Image
	batchVerts []ebiten.Vertex
	batchInds  []uint32
	pathVerts  []ebiten.Vertex
	pathInds   []uint16

	stats RenderStats
}

// NewRenderer creates a renderer resolving fonts through assets.
func NewRenderer(assets bramble.Assets) *Renderer {
	return &Renderer{
		assets:    assets,
		textures:  make(map[bramble.ImageHandle]*ebiten.Image),
		fontPages: make(map[bramble.FontHandle][]*ebiten.Image),
		glyphs:    make(map[glyphKey]*rasterGlyph),
		sources:   make(map[bramble.FontHandle]*text.GoTextFaceSource),
		faces:     make(map[faceKey]*text.GoTextFace),
	}
}

// SetTexture binds img to the texture handle h. Image primitives whose
// texture is h sample it; atlas regions share their page's handle.
func (r *Renderer) SetTexture(h bramble.ImageHandle, img *ebiten.Image) {
	if img == nil {
		delete(r.textures, h)
		return
	}
	r.textures[h] = img
}

// SetFontPages binds the atlas page images of the bitmap font under h,
// indexed like BitmapFont.Pages.
func (r *Renderer) SetFontPages(h bramble.FontHandle, pages []*ebiten.Image) {
	r.fontPages[h] = pages
}

// Stats returns the counters of the last Draw.
func (r *Renderer) Stats() RenderStats {
	return r.stats
}

// Draw renders prims onto dst in order.
func (r *Renderer) Draw(dst *ebiten.Image, prims []bramble.Primitive) {
	r.stats = RenderStats{}
	r.batchSrc = nil
	r.batchVerts = r.batchVerts[:0]
	r.batchInds = r.batchInds[:0]

	for i := range prims {
		p := &prims[i]
		switch p.Kind {
		case bramble.PrimitiveQuad:
			if p.CornerRadius > 0 {
				r.flush(dst)
				r.fillPath(dst, roundedRectPath(p.Rect, p.CornerRadius), p.Color)
				break
			}
			r.appendQuad(dst, ensureWhiteImage(), p.Rect, whiteSrc, p.Color)

		case bramble.PrimitiveGlyph:
			if f, ok := r.assets.Font(p.Glyph.Font); ok {
				if face, ok := f.(*bramble.FaceMetrics); ok && r.drawSourceGlyph(dst, p, face) {
					break
				}
			}
			src, dr, sr, ok := r.glyphSource(p)
			if !ok {
				r.stats.Skipped++
				continue
			}
			r.appendQuad(dst, src, dr, sr, p.Color)

		case bramble.PrimitiveImage:
			tex, ok := r.textures[p.Image.Texture]
			if !ok {
				r.stats.Skipped++
				continue
			}
			sr := p.Image.Src
			if sr.Empty() {
				b := tex.Bounds()
				sr = bramble.Rect{X: float64(b.Min.X), Y: float64(b.Min.Y), Width: float64(b.Dx()), Height: float64(b.Dy())}
			}
			r.appendQuad(dst, tex, p.Rect, sr, p.Color)

		case bramble.PrimitivePath:
			r.flush(dst)
			r.fillPath(dst, commandPath(p.Path), p.Color)
		}
		r.stats.Primitives++
	}
	r.flush(dst)
}

// glyphSource returns the image, destination rect and source rect for a
// glyph primitive.
func (r *Renderer) glyphSource(p *bramble.Primitive) (*ebiten.Image, bramble.Rect, bramble.Rect, bool) {
	m, ok := r.assets.Font(p.Glyph.Font)
	if !ok {
		return nil, bramble.Rect{}, bramble.Rect{}, false
	}
	switch f := m.(type) {
	case *bramble.BitmapFont:
		pages := r.fontPages[p.Glyph.Font]
		if p.Glyph.Page < 0 || p.Glyph.Page >= len(pages) || pages[p.Glyph.Page] == nil {
			return nil, bramble.Rect{}, bramble.Rect{}, false
		}
		return pages[p.Glyph.Page], p.Rect, p.Glyph.Src, true

	case *bramble.FaceMetrics:
		g := r.rasterize(p.Glyph.Font, f, p.Glyph.Rune)
		if g == nil {
			return nil, bramble.Rect{}, bramble.Rect{}, false
		}
		gm, _ := f.Glyph(p.Glyph.Rune)
		scale := p.Glyph.Size / f.Size()
		// Pen position at the top of the line, recovered from the
		// primitive's metric bounds.
		penX := p.Rect.X - gm.Bounds.X*scale
		penY := p.Rect.Y - gm.Bounds.Y*scale
		dr := bramble.Rect{
			X:      penX + float64(g.rect.Min.X)*scale,
			Y:      penY + float64(g.rect.Min.Y)*scale,
			Width:  float64(g.rect.Dx()) * scale,
			Height: float64(g.rect.Dy()) * scale,
		}
		b := g.img.Bounds()
		return g.img, dr, bramble.Rect{Width: float64(b.Dx()), Height: float64(b.Dy())}, true
	}
	return nil, bramble.Rect{}, bramble.Rect{}, false
}

// rasterize returns the cached image of r in face f, rasterizing it on first
// use. Glyphs without a mask are cached as nil.
func (r *Renderer) rasterize(h bramble.FontHandle, f *bramble.FaceMetrics, ch rune) *rasterGlyph {
	key := glyphKey{h, ch}
	if g, ok := r.glyphs[key]; ok {
		return g
	}
	var g *rasterGlyph
	if mask, rect, ok := f.GlyphMask(ch); ok {
		g = &rasterGlyph{img: ebiten.NewImageFromImage(mask), rect: rect}
	}
	r.glyphs[key] = g
	return g
}

// premultiply converts c to premultiplied float32 components.
func premultiply(c bramble.Color) (r, g, b, a float32) {
	a = float32(c.A)
	return float32(c.R) * a, float32(c.G) * a, float32(c.B) * a, a
}

// appendQuad coalesces a textured quad into the current batch, flushing
// first if the source image changes or the batch is full.
func (r *Renderer) appendQuad(dst, src *ebiten.Image, dr, sr bramble.Rect, c bramble.Color) {
	if (r.batchSrc != nil && r.batchSrc != src) || len(r.batchVerts) >= maxBatchQuads*4 {
		r.flush(dst)
	}
	r.batchSrc = src
	r.batchVerts, r.batchInds = appendQuadVertices(r.batchVerts, r.batchInds, dr, sr, c)
}

// appendQuadVertices appends 4 vertices and 6 indices mapping sr on the
// source image to dr on the target.
func appendQuadVertices(verts []ebiten.Vertex, inds []uint32, dr, sr bramble.Rect, c bramble.Color) ([]ebiten.Vertex, []uint32) {
	cr, cg, cb, ca := premultiply(c)

	// TL, TR, BL, BR
	dx := [4]float32{float32(dr.X), float32(dr.X + dr.Width), float32(dr.X), float32(dr.X + dr.Width)}
	dy := [4]float32{float32(dr.Y), float32(dr.Y), float32(dr.Y + dr.Height), float32(dr.Y + dr.Height)}
	sx := [4]float32{float32(sr.X), float32(sr.X + sr.Width), float32(sr.X), float32(sr.X + sr.Width)}
	sy := [4]float32{float32(sr.Y), float32(sr.Y), float32(sr.Y + sr.Height), float32(sr.Y + sr.Height)}

	base := uint32(len(verts))
	for i := 0; i < 4; i++ {
		verts = append(verts, ebiten.Vertex{
			DstX:   dx[i],
			DstY:   dy[i],
			SrcX:   sx[i],
			SrcY:   sy[i],
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
	}
	// Two triangles: TL-TR-BL, TR-BR-BL
	inds = append(inds,
		base+0, base+1, base+2,
		base+1, base+3, base+2,
	)
	return verts, inds
}

// flush submits the accumulated batch as a single DrawTriangles32 call.
func (r *Renderer) flush(dst *ebiten.Image) {
	if len(r.batchVerts) == 0 {
		return
	}
	var op ebiten.DrawTrianglesOptions
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	dst.DrawTriangles32(r.batchVerts, r.batchInds, r.batchSrc, &op)
	r.stats.DrawCalls++

	r.batchSrc = nil
	r.batchVerts = r.batchVerts[:0]
	r.batchInds = r.batchInds[:0]
}

// fillPath tessellates path and fills it with c.
func (r *Renderer) fillPath(dst *ebiten.Image, path *vector.Path, c bramble.Color) {
	r.pathVerts, r.pathInds = path.AppendVerticesAndIndicesForFilling(r.pathVerts[:0], r.pathInds[:0])
	if len(r.pathInds) == 0 {
		return
	}
	cr, cg, cb, ca := premultiply(c)
	for i := range r.pathVerts {
		v := &r.pathVerts[i]
		v.SrcX, v.SrcY = 1, 1
		v.ColorR, v.ColorG, v.ColorB, v.ColorA = cr, cg, cb, ca
	}
	var op ebiten.DrawTrianglesOptions
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	op.FillRule = ebiten.FillRuleNonZero
	op.AntiAlias = true
	dst.DrawTriangles(r.pathVerts, r.pathInds, ensureWhiteImage(), &op)
	r.stats.DrawCalls++
}

// commandPath converts screen-space path commands to a vector.Path.
func commandPath(cmds []bramble.PathCommand) *vector.Path {
	var p vector.Path
	for _, c := range cmds {
		pt := c.Points
		switch c.Op {
		case bramble.PathMoveTo:
			p.MoveTo(float32(pt[0].X), float32(pt[0].Y))
		case bramble.PathLineTo:
			p.LineTo(float32(pt[0].X), float32(pt[0].Y))
		case bramble.PathQuadTo:
			p.QuadTo(float32(pt[0].X), float32(pt[0].Y), float32(pt[1].X), float32(pt[1].Y))
		case bramble.PathCubicTo:
			p.CubicTo(float32(pt[0].X), float32(pt[0].Y), float32(pt[1].X), float32(pt[1].Y), float32(pt[2].X), float32(pt[2].Y))
		case bramble.PathClose:
			p.Close()
		}
	}
	return &p
}

// roundedRectPath outlines rc with corners of the given radius, clamped to
// half the shorter side.
func roundedRectPath(rc bramble.Rect, radius float64) *vector.Path {
	rad := float32(math.Min(radius, math.Min(rc.Width, rc.Height)/2))
	x0, y0 := float32(rc.X), float32(rc.Y)
	x1, y1 := float32(rc.X+rc.Width), float32(rc.Y+rc.Height)

	var p vector.Path
	p.MoveTo(x0+rad, y0)
	p.LineTo(x1-rad, y0)
	p.ArcTo(x1, y0, x1, y0+rad, rad)
	p.LineTo(x1, y1-rad)
	p.ArcTo(x1, y1, x1-rad, y1, rad)
	p.LineTo(x0+rad, y1)
	p.ArcTo(x0, y1, x0, y1-rad, rad)
	p.LineTo(x0, y0+rad)
	p.ArcTo(x0, y0, x0+rad, y0, rad)
	p.Close()
	return &p
}

// toRGBA converts c to the non-premultiplied 8-bit color screen fills use.
func toRGBA(c bramble.Color) color.NRGBA {
	clamp := func(v float64) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return color.NRGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
