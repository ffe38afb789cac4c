package bramble

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontMetrics is the font-metrics service text layout reads from. All values
// are in the font's native pixel size; layout scales them to the requested
// size.
type FontMetrics interface {
	// Size is the pixel size the metrics are expressed at.
	Size() float64
	// Ascent is the distance from the top of a line to the baseline.
	Ascent() float64
	// Glyph returns metrics for r, or false if the font has no glyph for it.
	Glyph(r rune) (GlyphMetrics, bool)
	// Kern returns the extra advance between a and b.
	Kern(a, b rune) float64
}

// GlyphMetrics describes one glyph. Bounds is relative to the pen position
// at the top of the line. Page and Src locate the glyph in a bitmap font's
// atlas pages and are zero for outline fonts.
type GlyphMetrics struct {
	Advance float64
	Bounds  Rect
	Page    int
	Src     Rect
}

// --- BitmapFont ---

type bmGlyph struct {
	id       rune
	x, y     uint16
	width    uint16
	height   uint16
	xOffset  int16
	yOffset  int16
	xAdvance int16
	page     uint16
}

const asciiGlyphCount = 128

// BitmapFont serves metrics from a BMFont text-format descriptor. The atlas
// page images are loaded by the host.
type BitmapFont struct {
	size       float64
	lineHeight float64
	base       float64
	pages      []string

	asciiGlyphs [asciiGlyphCount]bmGlyph
	asciiSet    [asciiGlyphCount]bool
	extGlyphs   map[rune]*bmGlyph

	kernings map[[2]rune]int16
}

// LoadBitmapFont parses BMFont .fnt text-format data.
func LoadBitmapFont(fntData []byte) (*BitmapFont, error) {
	f := &BitmapFont{}

	scanner := bufio.NewScanner(bytes.NewReader(fntData))
	var charCount int

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tag, rest := splitTag(line)
		fields := parseFields(rest)

		switch tag {
		case "info":
			f.size = math.Abs(fieldFloat(fields, "size"))
		case "common":
			f.lineHeight = fieldFloat(fields, "lineHeight")
			f.base = fieldFloat(fields, "base")
		case "page":
			id := fieldInt(fields, "id")
			for len(f.pages) <= id {
				f.pages = append(f.pages, "")
			}
			f.pages[id] = fields["file"]
		case "char":
			charCount++
			g := bmGlyph{
				id:       rune(fieldInt(fields, "id")),
				x:        uint16(fieldInt(fields, "x")),
				y:        uint16(fieldInt(fields, "y")),
				width:    uint16(fieldInt(fields, "width")),
				height:   uint16(fieldInt(fields, "height")),
				xOffset:  int16(fieldInt(fields, "xoffset")),
				yOffset:  int16(fieldInt(fields, "yoffset")),
				xAdvance: int16(fieldInt(fields, "xadvance")),
				page:     uint16(fieldInt(fields, "page")),
			}
			if g.id >= 0 && g.id < asciiGlyphCount {
				f.asciiGlyphs[g.id] = g
				f.asciiSet[g.id] = true
			} else {
				if f.extGlyphs == nil {
					f.extGlyphs = make(map[rune]*bmGlyph)
				}
				f.extGlyphs[g.id] = &g
			}
		case "kerning":
			if f.kernings == nil {
				f.kernings = make(map[[2]rune]int16)
			}
			pair := [2]rune{rune(fieldInt(fields, "first")), rune(fieldInt(fields, "second"))}
			f.kernings[pair] = int16(fieldInt(fields, "amount"))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bramble: error reading .fnt data: %w", err)
	}
	if f.lineHeight == 0 {
		return nil, fmt.Errorf("bramble: .fnt data missing common lineHeight")
	}
	if charCount == 0 {
		return nil, fmt.Errorf("bramble: .fnt data has no char definitions")
	}
	if f.size == 0 {
		f.size = f.lineHeight
	}
	return f, nil
}

func fieldInt(fields map[string]string, key string) int {
	v, _ := strconv.Atoi(fields[key])
	return v
}

func fieldFloat(fields map[string]string, key string) float64 {
	v, _ := strconv.ParseFloat(fields[key], 64)
	return v
}

// splitTag splits a BMFont line into its tag and the rest of the line.
func splitTag(line string) (string, string) {
	idx := strings.IndexByte(line, ' ')
	if idx == -1 {
		return line, ""
	}
	return line[:idx], line[idx+1:]
}

// parseFields parses "key=value key=value ..." into a map. Quoted values
// may contain spaces.
func parseFields(s string) map[string]string {
	fields := make(map[string]string)
	for len(s) > 0 {
		s = strings.TrimLeft(s, " \t")
		eq := strings.IndexByte(s, '=')
		if eq == -1 {
			break
		}
		key := s[:eq]
		s = s[eq+1:]
		var val string
		if strings.HasPrefix(s, `"`) {
			end := strings.IndexByte(s[1:], '"')
			if end == -1 {
				val, s = s[1:], ""
			} else {
				val, s = s[1:end+1], s[end+2:]
			}
		} else {
			end := strings.IndexAny(s, " \t")
			if end == -1 {
				val, s = s, ""
			} else {
				val, s = s[:end], s[end:]
			}
		}
		fields[key] = val
	}
	return fields
}

// Size implements FontMetrics.
func (f *BitmapFont) Size() float64 { return f.size }

// Ascent implements FontMetrics.
func (f *BitmapFont) Ascent() float64 { return f.base }

// LineHeight returns the descriptor's native line height.
func (f *BitmapFont) LineHeight() float64 { return f.lineHeight }

// Pages returns the atlas page file names indexed by page id.
func (f *BitmapFont) Pages() []string { return f.pages }

func (f *BitmapFont) glyph(r rune) *bmGlyph {
	if r >= 0 && r < asciiGlyphCount {
		if f.asciiSet[r] {
			return &f.asciiGlyphs[r]
		}
		return nil
	}
	return f.extGlyphs[r]
}

// Glyph implements FontMetrics.
func (f *BitmapFont) Glyph(r rune) (GlyphMetrics, bool) {
	g := f.glyph(r)
	if g == nil {
		return GlyphMetrics{}, false
	}
	return GlyphMetrics{
		Advance: float64(g.xAdvance),
		Bounds:  Rect{X: float64(g.xOffset), Y: float64(g.yOffset), Width: float64(g.width), Height: float64(g.height)},
		Page:    int(g.page),
		Src:     Rect{X: float64(g.x), Y: float64(g.y), Width: float64(g.width), Height: float64(g.height)},
	}, true
}

// Kern implements FontMetrics.
func (f *BitmapFont) Kern(a, b rune) float64 {
	if f.kernings == nil {
		return 0
	}
	return float64(f.kernings[[2]rune{a, b}])
}

// --- FaceMetrics ---

// FaceMetrics adapts a golang.org/x/image font.Face. font.Face is not safe
// for concurrent use, so every call into it is serialized and glyph metrics
// are cached.
type FaceMetrics struct {
	mu     sync.Mutex
	face   font.Face
	size   float64
	ascent float64
	glyphs map[rune]faceGlyph
}

type faceGlyph struct {
	m  GlyphMetrics
	ok bool
}

// NewFaceMetrics wraps face, whose glyphs are rasterized at size pixels.
func NewFaceMetrics(face font.Face, size float64) *FaceMetrics {
	return &FaceMetrics{
		face:   face,
		size:   size,
		ascent: fixedToFloat(face.Metrics().Ascent),
		glyphs: make(map[rune]faceGlyph),
	}
}

// BasicFont returns metrics for the built-in 7x13 bitmap face. It needs no
// font files and is always available.
func BasicFont() *FaceMetrics {
	return NewFaceMetrics(basicfont.Face7x13, 13)
}

// LoadTTF parses TrueType or OpenType data and returns metrics for a face
// rasterized at size pixels.
func LoadTTF(data []byte, size float64) (*FaceMetrics, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("bramble: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("bramble: create face: %w", err)
	}
	return NewFaceMetrics(face, size), nil
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// Size implements FontMetrics.
func (f *FaceMetrics) Size() float64 { return f.size }

// Ascent implements FontMetrics.
func (f *FaceMetrics) Ascent() float64 { return f.ascent }

// Glyph implements FontMetrics.
func (f *FaceMetrics) Glyph(r rune) (GlyphMetrics, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.glyphs[r]; ok {
		return g.m, g.ok
	}
	bounds, advance, ok := f.face.GlyphBounds(r)
	var m GlyphMetrics
	if ok {
		m = GlyphMetrics{
			Advance: fixedToFloat(advance),
			Bounds: Rect{
				X:      fixedToFloat(bounds.Min.X),
				Y:      f.ascent + fixedToFloat(bounds.Min.Y),
				Width:  fixedToFloat(bounds.Max.X - bounds.Min.X),
				Height: fixedToFloat(bounds.Max.Y - bounds.Min.Y),
			},
		}
	}
	f.glyphs[r] = faceGlyph{m: m, ok: ok}
	return m, ok
}

// Kern implements FontMetrics.
func (f *FaceMetrics) Kern(a, b rune) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fixedToFloat(f.face.Kern(a, b))
}

// GlyphMask rasterizes r into an alpha mask. rect is the mask's position
// relative to the pen at the top of the line, matching GlyphMetrics.Bounds
// up to pixel rounding.
func (f *FaceMetrics) GlyphMask(r rune) (mask *image.Alpha, rect image.Rectangle, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dot := fixed.Point26_6{X: 0, Y: fixed.Int26_6(math.Round(f.ascent * 64))}
	dr, src, sp, _, ok := f.face.Glyph(dot, r)
	if !ok || dr.Empty() {
		return nil, image.Rectangle{}, false
	}
	mask = image.NewAlpha(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	draw.Draw(mask, mask.Bounds(), src, sp, draw.Src)
	return mask, dr, true
}
