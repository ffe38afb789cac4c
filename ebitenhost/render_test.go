package ebitenhost

import (
	"image/color"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/phanxgames/bramble"
)

var white = bramble.Color{R: 1, G: 1, B: 1, A: 1}

func quad(x float64) bramble.Primitive {
	return bramble.Primitive{
		Kind:  bramble.PrimitiveQuad,
		Rect:  bramble.Rect{X: x, Y: 0, Width: 10, Height: 10},
		Color: white,
	}
}

func TestRendererCoalescesQuads(t *testing.T) {
	r := NewRenderer(bramble.NewAssetStore())
	screen := ebiten.NewImage(64, 64)

	r.Draw(screen, []bramble.Primitive{quad(0), quad(10), quad(20)})
	st := r.Stats()
	if st.Primitives != 3 {
		t.Errorf("Primitives = %d, want 3", st.Primitives)
	}
	if st.DrawCalls != 1 {
		t.Errorf("DrawCalls = %d, want 1", st.DrawCalls)
	}
}

func TestRendererBreaksBatchOnSourceChange(t *testing.T) {
	assets := bramble.NewAssetStore()
	tex := assets.AddImage(8, 8)
	r := NewRenderer(assets)
	r.SetTexture(tex, ebiten.NewImage(8, 8))
	screen := ebiten.NewImage(64, 64)

	img := bramble.Primitive{
		Kind:  bramble.PrimitiveImage,
		Rect:  bramble.Rect{X: 0, Y: 20, Width: 8, Height: 8},
		Color: white,
		Image: bramble.ImageRef{Handle: tex, Texture: tex},
	}
	r.Draw(screen, []bramble.Primitive{quad(0), img, img, quad(10)})
	st := r.Stats()
	if st.DrawCalls != 3 {
		t.Errorf("DrawCalls = %d, want 3", st.DrawCalls)
	}
	if st.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", st.Skipped)
	}
}

func TestRendererSkipsMissingSources(t *testing.T) {
	assets := bramble.NewAssetStore()
	font := assets.AddFont(bramble.BasicFont())
	r := NewRenderer(assets)
	screen := ebiten.NewImage(64, 64)

	prims := []bramble.Primitive{
		{Kind: bramble.PrimitiveImage, Rect: bramble.Rect{Width: 4, Height: 4}, Color: white, Image: bramble.ImageRef{Texture: 99}},
		{Kind: bramble.PrimitiveGlyph, Rect: bramble.Rect{Width: 4, Height: 4}, Color: white, Glyph: bramble.GlyphRef{Font: 77, Rune: 'a', Size: 13}},
		{Kind: bramble.PrimitiveGlyph, Rect: bramble.Rect{Width: 4, Height: 4}, Color: white, Glyph: bramble.GlyphRef{Font: font, Rune: 'a', Size: 13}},
	}
	r.Draw(screen, prims)
	st := r.Stats()
	if st.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", st.Skipped)
	}
	if st.Primitives != 1 {
		t.Errorf("Primitives = %d, want 1", st.Primitives)
	}
	if len(r.glyphs) != 1 {
		t.Errorf("cached glyphs = %d, want 1", len(r.glyphs))
	}
}

func TestRendererBitmapFontPages(t *testing.T) {
	assets := bramble.NewAssetStore()
	bf, err := bramble.LoadBitmapFont([]byte(bmfData))
	if err != nil {
		t.Fatal(err)
	}
	font := assets.AddFont(bf)
	r := NewRenderer(assets)
	screen := ebiten.NewImage(64, 64)

	g := bramble.Primitive{
		Kind:  bramble.PrimitiveGlyph,
		Rect:  bramble.Rect{Width: 8, Height: 8},
		Color: white,
		Glyph: bramble.GlyphRef{Font: font, Rune: 'A', Size: 16, Page: 0, Src: bramble.Rect{Width: 8, Height: 8}},
	}

	r.Draw(screen, []bramble.Primitive{g})
	if st := r.Stats(); st.Skipped != 1 {
		t.Errorf("without pages Skipped = %d, want 1", st.Skipped)
	}

	r.SetFontPages(font, []*ebiten.Image{ebiten.NewImage(32, 32)})
	r.Draw(screen, []bramble.Primitive{g, g})
	st := r.Stats()
	if st.Skipped != 0 || st.DrawCalls != 1 {
		t.Errorf("with pages = %+v, want no skips and 1 draw call", st)
	}
}

func TestRendererFontSource(t *testing.T) {
	face, err := bramble.LoadTTF(goregular.TTF, 16)
	if err != nil {
		t.Fatal(err)
	}
	src, err := LoadFontSource(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	assets := bramble.NewAssetStore()
	font := assets.AddFont(face)
	r := NewRenderer(assets)
	r.SetFontSource(font, src)
	screen := ebiten.NewImage(64, 64)

	gm, _ := face.Glyph('A')
	g := bramble.Primitive{
		Kind:  bramble.PrimitiveGlyph,
		Rect:  gm.Bounds,
		Color: white,
		Glyph: bramble.GlyphRef{Font: font, Rune: 'A', Size: 16},
	}
	r.Draw(screen, []bramble.Primitive{quad(0), g, g})
	st := r.Stats()
	// The quad batch flushes before the first glyph; each glyph is a draw.
	if st.DrawCalls != 3 || st.Skipped != 0 || st.Primitives != 3 {
		t.Errorf("stats = %+v, want 3 draw calls, 3 primitives, no skips", st)
	}
	if len(r.glyphs) != 0 {
		t.Errorf("rasterized glyphs = %d, want 0", len(r.glyphs))
	}
	if len(r.faces) != 1 {
		t.Errorf("faces = %d, want 1", len(r.faces))
	}

	r.SetFontSource(font, nil)
	r.Draw(screen, []bramble.Primitive{g})
	if len(r.glyphs) != 1 || len(r.faces) != 0 {
		t.Errorf("after unbinding: glyphs %d faces %d, want 1 and 0", len(r.glyphs), len(r.faces))
	}
}

func TestLoadFontSourceError(t *testing.T) {
	if _, err := LoadFontSource([]byte("not a font")); err == nil {
		t.Error("LoadFontSource of garbage returned no error")
	}
}

func TestRendererPaths(t *testing.T) {
	r := NewRenderer(bramble.NewAssetStore())
	screen := ebiten.NewImage(64, 64)

	tri := bramble.Primitive{
		Kind:  bramble.PrimitivePath,
		Color: white,
		Path: []bramble.PathCommand{
			{Op: bramble.PathMoveTo, Points: [3]bramble.Vec2{{X: 0, Y: 0}}},
			{Op: bramble.PathLineTo, Points: [3]bramble.Vec2{{X: 10, Y: 0}}},
			{Op: bramble.PathLineTo, Points: [3]bramble.Vec2{{X: 5, Y: 8}}},
			{Op: bramble.PathClose},
		},
	}
	rounded := quad(20)
	rounded.CornerRadius = 3

	r.Draw(screen, []bramble.Primitive{quad(0), tri, rounded, quad(40)})
	st := r.Stats()
	// quad, path, rounded quad, quad: the paths split the batch.
	if st.DrawCalls != 4 {
		t.Errorf("DrawCalls = %d, want 4", st.DrawCalls)
	}
	if st.Primitives != 4 {
		t.Errorf("Primitives = %d, want 4", st.Primitives)
	}
}

func TestAppendQuadVertices(t *testing.T) {
	c := bramble.Color{R: 1, G: 0.5, B: 0, A: 0.5}
	verts, inds := appendQuadVertices(nil, nil,
		bramble.Rect{X: 10, Y: 20, Width: 30, Height: 40},
		bramble.Rect{X: 1, Y: 2, Width: 3, Height: 4}, c)

	if len(verts) != 4 || len(inds) != 6 {
		t.Fatalf("got %d verts, %d indices, want 4, 6", len(verts), len(inds))
	}
	br := verts[3]
	if br.DstX != 40 || br.DstY != 60 {
		t.Errorf("BR dst = (%v, %v), want (40, 60)", br.DstX, br.DstY)
	}
	if br.SrcX != 4 || br.SrcY != 6 {
		t.Errorf("BR src = (%v, %v), want (4, 6)", br.SrcX, br.SrcY)
	}
	// Colors are premultiplied.
	if br.ColorR != 0.5 || br.ColorG != 0.25 || br.ColorB != 0 || br.ColorA != 0.5 {
		t.Errorf("color = (%v, %v, %v, %v), want (0.5, 0.25, 0, 0.5)", br.ColorR, br.ColorG, br.ColorB, br.ColorA)
	}

	verts, inds = appendQuadVertices(verts, inds, bramble.Rect{}, bramble.Rect{}, c)
	if inds[6] != 4 {
		t.Errorf("second quad base index = %d, want 4", inds[6])
	}
}

func TestToRGBA(t *testing.T) {
	tests := []struct {
		in   bramble.Color
		want color.NRGBA
	}{
		{bramble.Color{}, color.NRGBA{}},
		{bramble.Color{R: 1, G: 0.5, B: 2, A: 1}, color.NRGBA{R: 255, G: 128, B: 255, A: 255}},
		{bramble.Color{R: -1, A: 0.2}, color.NRGBA{A: 51}},
	}
	for _, tt := range tests {
		if got := toRGBA(tt.in); got != tt.want {
			t.Errorf("toRGBA(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

const bmfData = `info face="Test" size=16
common lineHeight=20 base=15 scaleW=32 scaleH=32 pages=1
page id=0 file="test.png"
chars count=1
char id=65 x=0 y=0 width=8 height=8 xoffset=0 yoffset=4 xadvance=9 page=0
`
