package bramble

// Color is a straight-alpha RGBA color with components in [0, 1]. Hosts
// premultiply when they submit vertices.
type Color struct {
	R, G, B, A float64
}

var (
	ColorWhite = Color{1, 1, 1, 1} // default text and tint color
	ColorBlack = Color{0, 0, 0, 1}
)

// Visible reports whether c has any alpha.
func (c Color) Visible() bool {
	return c.A > 0
}

// MulAlpha scales the alpha of c by a, leaving the color channels as is.
func (c Color) MulAlpha(a float64) Color {
	c.A *= a
	return c
}

// Vec2 is a point or offset in screen space.
type Vec2 struct {
	X, Y float64
}

// Size is a width and height. Layout never produces negative sizes.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle in screen space: origin top-left, Y
// grows downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) is inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

func (r Rect) Size() Size {
	return Size{r.Width, r.Height}
}

// Empty reports whether r has zero or negative area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// MouseButton identifies a pointer button. Touches report MouseButtonLeft.
type MouseButton uint8

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// KeyModifiers is a bitmask of held modifier keys.
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta // Command on macOS, Windows key elsewhere
)

// TextAlign is the horizontal alignment of each line in a text box.
type TextAlign uint8

const (
	TextAlignLeft TextAlign = iota // default
	TextAlignCenter
	TextAlignRight
)
