package bramble

import (
	"fmt"
	"reflect"
	"testing"
)

var (
	red   = Color{1, 0, 0, 1}
	green = Color{0, 1, 0, 1}
	blue  = Color{0, 0, 1, 1}
)

type panicky struct{}

func (panicky) Kind() Kind { return "panicky" }

func (panicky) Render(rc *RenderContext) {
	rc.Quad(rc.Bounds, ColorWhite)
	panic("boom")
}

func extractTree(t *testing.T, decl Element, assets Assets) (*Store, NodeID, []Primitive, ExtractStats) {
	t.Helper()
	s, root, _ := layoutTree(t, decl, Size{200, 200}, LayoutOptions{Assets: assets})
	e := NewExtractor()
	prims := e.Extract(s, root, assets, ExtractOptions{})
	return s, root, prims, e.Stats
}

func countKind(prims []Primitive, k PrimitiveKind, node NodeID) int {
	n := 0
	for _, p := range prims {
		if p.Kind == k && (node == NoNode || p.Node == node) {
			n++
		}
	}
	return n
}

func TestExtractUnloadedFontYieldsNothing(t *testing.T) {
	assets := NewAssetStore()
	font := assets.ReserveFont()
	s, root, prims, stats := extractTree(t, El(Panel{}, Style{Width: Pixels(100), Height: Pixels(100), Background: red},
		El(Text{Content: "hello", Font: font, Size: 10, Color: ColorBlack}, Style{Background: blue, Height: Pixels(20)}),
	), assets)

	text := s.MustGet(root).Children()[0]
	for _, p := range prims {
		if p.Node == text {
			t.Errorf("unloaded text emitted %v", p.Kind)
		}
	}
	if len(prims) != 1 || prims[0].Node != root {
		t.Errorf("primitives = %d, want only the root background", len(prims))
	}
	if stats.Unavailable != 1 || stats.Panics != 0 {
		t.Errorf("stats = %v, want 1 unavailable and no panics", stats)
	}
}

func TestExtractGlyphPerVisibleRune(t *testing.T) {
	assets, font := testAssets()
	s, root, prims, _ := extractTree(t, El(Panel{}, Style{Width: Pixels(100), Height: Pixels(100), Padding: All(Pixels(10))},
		El(Text{Content: "a b\nc", Font: font, Size: 10, Color: ColorBlack}, Style{}),
	), assets)
	text := s.MustGet(root).Children()[0]

	var glyphs []Primitive
	for _, p := range prims {
		if p.Kind == PrimitiveGlyph {
			glyphs = append(glyphs, p)
		}
	}
	if len(glyphs) != 3 {
		t.Fatalf("glyphs = %d, want 3 (whitespace emits nothing)", len(glyphs))
	}
	want := []struct {
		r    rune
		x, y float64
	}{
		{'a', 10, 10},
		{'b', 20, 10},
		{'c', 10, 22},
	}
	for i, g := range glyphs {
		if g.Node != text {
			t.Errorf("glyph %d Node = %v, want %v", i, g.Node, text)
		}
		if g.Glyph.Rune != want[i].r || g.Rect.X != want[i].x || !almostEqual(g.Rect.Y, want[i].y) {
			t.Errorf("glyph %d = %q at (%v, %v), want %q at (%v, %v)",
				i, g.Glyph.Rune, g.Rect.X, g.Rect.Y, want[i].r, want[i].x, want[i].y)
		}
		if g.Glyph.Font != font || g.Glyph.Size != 10 {
			t.Errorf("glyph %d ref = %+v", i, g.Glyph)
		}
	}
}

func TestExtractLineHeightOverride(t *testing.T) {
	assets, font := testAssets()
	_, _, prims, _ := extractTree(t, El(Text{Content: "a\nb", Font: font, Size: 10, Color: ColorBlack, LineHeight: 30}, Style{}), assets)
	if len(prims) != 2 || prims[1].Rect.Y != 30 {
		t.Fatalf("prims = %+v, want second line at Y 30", prims)
	}
}

func TestExtractPaintOrder(t *testing.T) {
	s, root, prims, _ := extractTree(t, El(Panel{}, Style{Width: Pixels(100), Height: Pixels(100), Background: red},
		El(Panel{}, func() Style { st := overlay(0, 0, 20, 20, 5); st.Background = green; return st }(),
			El(nil, Style{Width: Pixels(5), Height: Pixels(5), Background: blue}),
		),
		El(nil, Style{Width: Pixels(10), Height: Pixels(10), Background: blue}),
	), nil)

	kids := s.MustGet(root).Children()
	overlayID := kids[0]
	inner := s.MustGet(overlayID).Children()[0]
	later := kids[1]
	var order []NodeID
	for _, p := range prims {
		order = append(order, p.Node)
	}
	want := []NodeID{root, later, overlayID, inner}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("paint order = %v, want %v", order, want)
	}
	if prims[3].ZIndex != 5 {
		t.Errorf("inherited ZIndex = %d, want 5", prims[3].ZIndex)
	}
}

func TestExtractRecoversRenderPanic(t *testing.T) {
	s, root, prims, stats := extractTree(t, El(Panel{}, Style{Width: Pixels(100), Height: Pixels(100), Background: red},
		El(panicky{}, Style{Width: Pixels(10), Height: Pixels(10)}),
		El(nil, Style{Width: Pixels(10), Height: Pixels(10), Background: blue}),
	), nil)

	bad := s.MustGet(root).Children()[0]
	if n := countKind(prims, PrimitiveQuad, bad); n != 0 {
		t.Errorf("panicking node kept %d primitives", n)
	}
	if len(prims) != 2 {
		t.Errorf("primitives = %d, want 2", len(prims))
	}
	if stats.Panics != 1 {
		t.Errorf("Panics = %d, want 1", stats.Panics)
	}
}

func TestExtractHiddenSubtree(t *testing.T) {
	_, _, prims, stats := extractTree(t, El(Panel{}, Style{Width: Pixels(100), Height: Pixels(100)},
		El(nil, Style{Height: Pixels(10), Background: red, Hidden: true},
			El(nil, Style{Height: Pixels(5), Background: blue}),
		),
	), nil)
	if len(prims) != 0 {
		t.Errorf("primitives = %d, want 0", len(prims))
	}
	if stats.Nodes != 1 {
		t.Errorf("Nodes = %d, want 1", stats.Nodes)
	}
}

func TestExtractBackgroundAndBorder(t *testing.T) {
	_, _, prims, _ := extractTree(t, El(Panel{}, Style{
		Width: Pixels(40), Height: Pixels(20), Background: red,
		Border: Border{Width: 2, Color: blue}, CornerRadius: 4,
	}), nil)
	if len(prims) != 5 {
		t.Fatalf("primitives = %d, want 5 (background and four edges)", len(prims))
	}
	if prims[0].Color != red || prims[0].CornerRadius != 4 || prims[0].Rect != (Rect{0, 0, 40, 20}) {
		t.Errorf("background = %+v", prims[0])
	}
	if got, want := prims[1].Rect, (Rect{0, 0, 40, 2}); got != want {
		t.Errorf("top border = %v, want %v", got, want)
	}
	if got, want := prims[4].Rect, (Rect{38, 2, 2, 16}); got != want {
		t.Errorf("right border = %v, want %v", got, want)
	}
}

func TestExtractOpacityAndOffset(t *testing.T) {
	s := NewStore()
	_, a := reconcile(t, s, NoNode, El(Panel{}, Style{Width: Pixels(100), Height: Pixels(100), Background: red},
		El(nil, Style{Width: Pixels(10), Height: Pixels(10), Background: blue}),
	))
	Compute(s, a.Root, Size{200, 200}, LayoutOptions{})
	root := s.MustGet(a.Root)
	root.Opacity = 0.5
	root.Offset = Vec2{7, 3}

	prims := Extract(s, a.Root, nil, ExtractOptions{})
	if len(prims) != 2 {
		t.Fatalf("primitives = %d, want 2", len(prims))
	}
	child := prims[1]
	if !almostEqual(child.Color.A, 0.5) {
		t.Errorf("child alpha = %v, want 0.5", child.Color.A)
	}
	if child.Rect.X != 7 || child.Rect.Y != 3 {
		t.Errorf("child at (%v, %v), want (7, 3)", child.Rect.X, child.Rect.Y)
	}

	root.Opacity = 0
	if prims := Extract(s, a.Root, nil, ExtractOptions{}); len(prims) != 0 {
		t.Errorf("transparent subtree emitted %d primitives", len(prims))
	}
}

func TestExtractImage(t *testing.T) {
	assets := NewAssetStore()
	h := assets.ReserveImage()
	decl := El(Image{Handle: h}, Style{Width: Pixels(32), Height: Pixels(16)})

	_, _, prims, stats := extractTree(t, decl, assets)
	if len(prims) != 0 || stats.Unavailable != 1 {
		t.Errorf("unloaded image: %d primitives, %d unavailable; want 0 and 1", len(prims), stats.Unavailable)
	}

	page := assets.AddImage(256, 256)
	assets.SetImage(h, ImageInfo{Width: 32, Height: 16, Texture: page, Src: Rect{64, 0, 32, 16}})
	_, _, prims, _ = extractTree(t, decl, assets)
	if len(prims) != 1 {
		t.Fatalf("primitives = %d, want 1", len(prims))
	}
	p := prims[0]
	if p.Kind != PrimitiveImage || p.Image.Texture != page || p.Image.Src != (Rect{64, 0, 32, 16}) {
		t.Errorf("image primitive = %+v", p)
	}
	if p.Color != ColorWhite {
		t.Errorf("tint = %v, want white", p.Color)
	}
}

func TestExtractVectorPath(t *testing.T) {
	assets := NewAssetStore()
	tri := assets.AddPath([]PathCommand{
		{Op: PathMoveTo, Points: [3]Vec2{{0, 0}}},
		{Op: PathLineTo, Points: [3]Vec2{{10, 0}}},
		{Op: PathLineTo, Points: [3]Vec2{{5, 8}}},
		{Op: PathClose},
	})
	_, _, prims, _ := extractTree(t, El(Panel{}, Style{Width: Pixels(100), Height: Pixels(100), Padding: All(Pixels(4))},
		El(Vector{Path: tri, Fill: green, Scale: 2}, Style{}),
	), assets)
	if len(prims) != 1 {
		t.Fatalf("primitives = %d, want 1", len(prims))
	}
	p := prims[0]
	if p.Kind != PrimitivePath || len(p.Path) != 4 {
		t.Fatalf("primitive = %+v", p)
	}
	if got := p.Path[2].Points[0]; got != (Vec2{14, 20}) {
		t.Errorf("third point = %v, want {14 20}", got)
	}
	if want := (Rect{4, 4, 20, 16}); p.Rect != want {
		t.Errorf("bounds = %v, want %v", p.Rect, want)
	}
}

func TestExtractParallelMatchesSequential(t *testing.T) {
	assets, font := testAssets()
	var rows []Element
	for i := 0; i < 40; i++ {
		row := El(Panel{}, Style{Direction: Row, Height: Pixels(12), Background: Color{0, 0, float64(i) / 40, 1}},
			El(Text{Content: fmt.Sprintf("row %d", i), Font: font, Size: 10, Color: ColorBlack}, Style{}),
			El(nil, Style{Width: Stretch(1), Background: red, ZIndex: i % 3}),
		)
		if i == 7 {
			row.Children = append(row.Children, El(panicky{}, Style{}))
		}
		rows = append(rows, row)
	}
	s, root, _ := layoutTree(t, El(Panel{}, Style{Width: Pixels(300)}, rows...), Size{300, 600}, LayoutOptions{Assets: assets})

	seq := NewExtractor()
	want := append([]Primitive(nil), seq.Extract(s, root, assets, ExtractOptions{})...)
	par := NewExtractor()
	got := par.Extract(s, root, assets, ExtractOptions{Parallel: true})

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("parallel output differs: %d primitives vs %d", len(got), len(want))
	}
	if par.Stats != seq.Stats {
		t.Errorf("parallel stats = %v, want %v", par.Stats, seq.Stats)
	}
}

func TestMergeSortStable(t *testing.T) {
	type item struct{ key, seq int }
	items := []item{{3, 0}, {1, 1}, {3, 2}, {2, 3}, {1, 4}, {2, 5}, {3, 6}}
	mergeSort(items, nil, func(a, b *item) bool { return a.key <= b.key })
	for i := 1; i < len(items); i++ {
		a, b := items[i-1], items[i]
		if a.key > b.key || (a.key == b.key && a.seq > b.seq) {
			t.Fatalf("not stably sorted: %v", items)
		}
	}
}
