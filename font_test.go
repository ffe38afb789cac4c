package bramble

import (
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

// testFntData is a small BMFont descriptor: space, A through I, a euro sign
// on a second page and two kerning pairs.
const testFntData = `info face="TestFont" size=32 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=1 aa=1 padding=0,0,0,0 spacing=0,0
common lineHeight=40 base=30 scaleW=256 scaleH=256 pages=1 packed=0
page id=0 file="test font.png"
chars count=11
char id=32  x=0   y=0   width=0   height=0   xoffset=0   yoffset=0   xadvance=10  page=0
char id=65  x=0   y=0   width=20  height=30  xoffset=1   yoffset=2   xadvance=22  page=0
char id=66  x=20  y=0   width=18  height=30  xoffset=1   yoffset=2   xadvance=20  page=0
char id=67  x=38  y=0   width=19  height=30  xoffset=1   yoffset=2   xadvance=21  page=0
char id=68  x=57  y=0   width=20  height=30  xoffset=1   yoffset=2   xadvance=22  page=0
char id=69  x=77  y=0   width=16  height=30  xoffset=1   yoffset=2   xadvance=18  page=0
char id=70  x=93  y=0   width=15  height=30  xoffset=1   yoffset=2   xadvance=17  page=0
char id=71  x=108 y=0   width=20  height=30  xoffset=1   yoffset=2   xadvance=22  page=0
char id=72  x=128 y=0   width=20  height=30  xoffset=1   yoffset=2   xadvance=22  page=0
char id=73  x=148 y=0   width=8   height=30  xoffset=1   yoffset=2   xadvance=10  page=0
char id=8364 x=168 y=0  width=12  height=30  xoffset=0   yoffset=2   xadvance=14  page=1
kernings count=2
kerning first=65 second=66 amount=-2
kerning first=65 second=67 amount=-1
`

func loadTestFont(t *testing.T) *BitmapFont {
	t.Helper()
	f, err := LoadBitmapFont([]byte(testFntData))
	if err != nil {
		t.Fatalf("LoadBitmapFont: %v", err)
	}
	return f
}

func TestLoadBitmapFontHeader(t *testing.T) {
	f := loadTestFont(t)
	if f.Size() != 32 {
		t.Errorf("Size = %v, want 32", f.Size())
	}
	if f.LineHeight() != 40 {
		t.Errorf("LineHeight = %v, want 40", f.LineHeight())
	}
	if f.Ascent() != 30 {
		t.Errorf("Ascent = %v, want 30", f.Ascent())
	}
	if pages := f.Pages(); len(pages) != 1 || pages[0] != "test font.png" {
		t.Errorf("Pages = %q, want [\"test font.png\"]", pages)
	}
}

func TestLoadBitmapFontGlyphs(t *testing.T) {
	f := loadTestFont(t)

	g, ok := f.Glyph('A')
	if !ok {
		t.Fatal("Glyph('A') missing")
	}
	if g.Advance != 22 {
		t.Errorf("A advance = %v, want 22", g.Advance)
	}
	if want := (Rect{X: 1, Y: 2, Width: 20, Height: 30}); g.Bounds != want {
		t.Errorf("A bounds = %v, want %v", g.Bounds, want)
	}

	g, ok = f.Glyph('B')
	if !ok {
		t.Fatal("Glyph('B') missing")
	}
	if want := (Rect{X: 20, Y: 0, Width: 18, Height: 30}); g.Src != want {
		t.Errorf("B src = %v, want %v", g.Src, want)
	}

	g, ok = f.Glyph('€')
	if !ok {
		t.Fatal("Glyph('€') missing")
	}
	if g.Page != 1 || g.Advance != 14 {
		t.Errorf("€ page/advance = %d/%v, want 1/14", g.Page, g.Advance)
	}

	if _, ok := f.Glyph('Z'); ok {
		t.Error("Glyph('Z') should be missing")
	}
	if _, ok := f.Glyph('→'); ok {
		t.Error("Glyph('→') should be missing")
	}
}

func TestLoadBitmapFontKerning(t *testing.T) {
	f := loadTestFont(t)
	tests := []struct {
		a, b rune
		want float64
	}{
		{'A', 'B', -2},
		{'A', 'C', -1},
		{'B', 'A', 0},
		{'A', 'A', 0},
	}
	for _, tt := range tests {
		if got := f.Kern(tt.a, tt.b); got != tt.want {
			t.Errorf("Kern(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLoadBitmapFontErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"no line height", `info face="Bad" size=32
page id=0 file="test.png"
char id=65 x=0 y=0 width=10 height=10 xoffset=0 yoffset=0 xadvance=12 page=0
`, "lineHeight"},
		{"no chars", `info face="Bad" size=32
common lineHeight=40 base=30 scaleW=256 scaleH=256 pages=1 packed=0
page id=0 file="test.png"
`, "no char"},
		{"empty", "", "lineHeight"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBitmapFont([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadBitmapFontSizeDefaultsToLineHeight(t *testing.T) {
	f, err := LoadBitmapFont([]byte(`common lineHeight=16 base=12
char id=65 x=0 y=0 width=8 height=12 xoffset=0 yoffset=0 xadvance=9 page=0
`))
	if err != nil {
		t.Fatalf("LoadBitmapFont: %v", err)
	}
	if f.Size() != 16 {
		t.Errorf("Size = %v, want 16", f.Size())
	}
}

func TestParseFields(t *testing.T) {
	got := parseFields(`id=0 file="my page.png" size=-12`)
	want := map[string]string{"id": "0", "file": "my page.png", "size": "-12"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("fields[%q] = %q, want %q", k, got[k], v)
		}
	}
	if len(got) != len(want) {
		t.Errorf("len(fields) = %d, want %d", len(got), len(want))
	}
}

func TestBasicFont(t *testing.T) {
	f := BasicFont()
	if f.Size() != 13 {
		t.Errorf("Size = %v, want 13", f.Size())
	}
	g, ok := f.Glyph('x')
	if !ok {
		t.Fatal("Glyph('x') missing")
	}
	if g.Advance != 7 {
		t.Errorf("advance = %v, want 7", g.Advance)
	}
	if g.Bounds.Y < 0 || g.Bounds.Y+g.Bounds.Height > 13 {
		t.Errorf("bounds %v outside the line", g.Bounds)
	}
	// Cached lookups return the same metrics.
	if again, _ := f.Glyph('x'); again != g {
		t.Errorf("cached glyph = %v, want %v", again, g)
	}
	mask, rect, ok := f.GlyphMask('x')
	if !ok || mask == nil {
		t.Fatal("GlyphMask('x') failed")
	}
	if rect.Dx() != mask.Bounds().Dx() || rect.Dy() != mask.Bounds().Dy() {
		t.Errorf("mask size %v does not match rect %v", mask.Bounds(), rect)
	}
}

func TestLoadTTF(t *testing.T) {
	f, err := LoadTTF(goregular.TTF, 24)
	if err != nil {
		t.Fatalf("LoadTTF: %v", err)
	}
	if f.Size() != 24 {
		t.Errorf("Size = %v, want 24", f.Size())
	}
	if f.Ascent() <= 0 || f.Ascent() > 24 {
		t.Errorf("Ascent = %v, want within (0, 24]", f.Ascent())
	}
	g, ok := f.Glyph('M')
	if !ok || g.Advance <= 0 {
		t.Fatalf("Glyph('M') = %v, %v", g, ok)
	}
	if g.Bounds.Height <= 0 {
		t.Errorf("M bounds = %v, want positive height", g.Bounds)
	}
}

func TestLoadTTFInvalid(t *testing.T) {
	if _, err := LoadTTF([]byte("not a font"), 12); err == nil {
		t.Error("expected error for invalid font data")
	}
}
