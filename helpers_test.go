package bramble

import "testing"

// monoFont is a fixed-advance font: every glyph is advance wide and size
// tall, natively at size pixels. Runes in missing have no glyph.
type monoFont struct {
	size    float64
	advance float64
	missing map[rune]bool
}

func (f monoFont) Size() float64   { return f.size }
func (f monoFont) Ascent() float64 { return f.size * 0.8 }

func (f monoFont) Glyph(r rune) (GlyphMetrics, bool) {
	if f.missing[r] {
		return GlyphMetrics{}, false
	}
	return GlyphMetrics{
		Advance: f.advance,
		Bounds:  Rect{Width: f.advance, Height: f.size},
	}, true
}

func (monoFont) Kern(a, b rune) float64 { return 0 }

// testAssets returns a store holding a 10px monoFont with 5px advances.
func testAssets() (*AssetStore, FontHandle) {
	assets := NewAssetStore()
	return assets, assets.AddFont(monoFont{size: 10, advance: 5})
}

// buildTree inserts el under parent directly, bypassing the diff engine.
func buildTree(s *Store, parent NodeID, el Element) NodeID {
	id := s.Insert(parent, el.widget(), el.style(), el.Key)
	for _, c := range el.Children {
		buildTree(s, id, c)
	}
	return id
}

// reconcile diffs decl against root, applies it and fails the test on error.
func reconcile(t *testing.T, s *Store, root NodeID, decl Element) (*Plan, Applied) {
	t.Helper()
	p := Diff(s, root, &decl)
	a, err := p.Apply(s)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return p, a
}

func childKeys(s *Store, id NodeID) []string {
	n := s.MustGet(id)
	keys := make([]string, len(n.children))
	for i, c := range n.children {
		keys[i] = s.MustGet(c).Key
	}
	return keys
}

func almostEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
