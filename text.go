package bramble

import (
	"strings"
	"unicode"
)

// DefaultLineHeightScale is the line height as a multiple of font size used
// when no Config overrides it.
const DefaultLineHeightScale = 1.2

// placedGlyph is one laid-out glyph. rect is relative to the text box origin
// and already scaled to the requested size.
type placedGlyph struct {
	r    rune
	rect Rect
	m    GlyphMetrics
}

// textLayout is the result of laying out a string.
type textLayout struct {
	glyphs []placedGlyph
	width  float64
	height float64
}

type textLine struct {
	runes []rune
	width float64
}

// textParams are the inputs layoutText needs besides the string.
type textParams struct {
	size       float64
	lineHeight float64
	wrap       float64 // wrap width; 0 disables wrapping
	align      TextAlign
	alignWidth float64 // width alignment is measured against; 0 uses the widest line
}

func lineHeightFor(size, override, scale float64) float64 {
	if override > 0 {
		return override
	}
	if scale <= 0 {
		scale = DefaultLineHeightScale
	}
	return size * scale
}

// runWidth measures runes at the given scale including kerning. Runes the
// font has no glyph for take no space.
func runWidth(m FontMetrics, runes []rune, scale float64) float64 {
	var w float64
	var prev rune
	hasPrev := false
	for _, r := range runes {
		g, ok := m.Glyph(r)
		if !ok {
			hasPrev = false
			continue
		}
		if hasPrev {
			w += m.Kern(prev, r) * scale
		}
		w += g.Advance * scale
		prev, hasPrev = r, true
	}
	return w
}

// breakLines splits s into lines at newlines and, when wrap > 0, at spaces so
// no line is wider than wrap. A single word wider than wrap keeps its own
// line.
func breakLines(m FontMetrics, s string, scale, wrap float64) []textLine {
	var lines []textLine
	for _, para := range strings.Split(s, "\n") {
		if wrap <= 0 {
			runes := []rune(para)
			lines = append(lines, textLine{runes: runes, width: runWidth(m, runes, scale)})
			continue
		}
		var cur []rune
		for i, word := range strings.Split(para, " ") {
			cand := cur
			if i > 0 {
				cand = append(append([]rune(nil), cur...), ' ')
			}
			cand = append(cand, []rune(word)...)
			if len(cur) > 0 && runWidth(m, cand, scale) > wrap {
				lines = append(lines, textLine{runes: cur, width: runWidth(m, cur, scale)})
				cur = []rune(word)
				continue
			}
			cur = cand
		}
		lines = append(lines, textLine{runes: cur, width: runWidth(m, cur, scale)})
	}
	return lines
}

// layoutText positions every glyph of s. Whitespace and glyphs with empty
// bounds advance the pen but produce no placed glyph.
func layoutText(m FontMetrics, s string, p textParams) textLayout {
	native := m.Size()
	if native <= 0 || p.size <= 0 {
		return textLayout{}
	}
	scale := p.size / native
	lines := breakLines(m, s, scale, p.wrap)

	var out textLayout
	for _, l := range lines {
		if l.width > out.width {
			out.width = l.width
		}
	}
	out.height = float64(len(lines)) * p.lineHeight

	alignW := p.alignWidth
	if alignW <= 0 {
		alignW = out.width
	}
	for li, l := range lines {
		var x float64
		switch p.align {
		case TextAlignCenter:
			x = (alignW - l.width) / 2
		case TextAlignRight:
			x = alignW - l.width
		}
		top := float64(li) * p.lineHeight
		var prev rune
		hasPrev := false
		for _, r := range l.runes {
			g, ok := m.Glyph(r)
			if !ok {
				hasPrev = false
				continue
			}
			if hasPrev {
				x += m.Kern(prev, r) * scale
			}
			if !unicode.IsSpace(r) && g.Bounds.Width > 0 && g.Bounds.Height > 0 {
				out.glyphs = append(out.glyphs, placedGlyph{
					r: r,
					rect: Rect{
						X:      x + g.Bounds.X*scale,
						Y:      top + g.Bounds.Y*scale,
						Width:  g.Bounds.Width * scale,
						Height: g.Bounds.Height * scale,
					},
					m: g,
				})
			}
			x += g.Advance * scale
			prev, hasPrev = r, true
		}
	}
	return out
}

// MeasureText returns the size s occupies at the given font size and line
// height. wrap > 0 wraps lines at spaces.
func MeasureText(m FontMetrics, s string, size, lineHeight, wrap float64) Size {
	l := layoutText(m, s, textParams{size: size, lineHeight: lineHeight, wrap: wrap})
	return Size{Width: l.width, Height: l.height}
}
