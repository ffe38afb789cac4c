package bramble

import "math"

// UnitKind selects how a Unit's Value is interpreted.
type UnitKind uint8

const (
	UnitAuto    UnitKind = iota // fit content (or the widget's intrinsic size)
	UnitPixels                  // fixed size in pixels
	UnitPercent                 // percentage of the parent content box on the same axis
	UnitStretch                 // share of the remaining space, proportional to Value
)

// Unit is a single layout length. The zero value is Auto.
type Unit struct {
	Kind  UnitKind
	Value float64
}

// Auto sizes to content.
var Auto = Unit{}

// Pixels returns a fixed length of v pixels.
func Pixels(v float64) Unit { return Unit{Kind: UnitPixels, Value: v} }

// Percent returns p percent of the parent content box.
func Percent(p float64) Unit { return Unit{Kind: UnitPercent, Value: p} }

// Stretch returns a stretch weight. Remaining space is divided among stretch
// siblings in proportion to their weights. Weights that are not positive
// and finite receive nothing.
func Stretch(w float64) Unit { return Unit{Kind: UnitStretch, Value: w} }

// IsStretch reports whether u takes a share of remaining space.
func (u Unit) IsStretch() bool { return u.Kind == UnitStretch }

// resolve returns the fixed length of u against a parent length. Auto and
// Stretch resolve to zero; callers handle them separately.
func (u Unit) resolve(parent float64) float64 {
	var v float64
	switch u.Kind {
	case UnitPixels:
		v = u.Value
	case UnitPercent:
		v = parent * u.Value / 100
	}
	return nonNegative(v)
}

// weight returns the stretch weight of u, or 0 if u is not a positive,
// finite stretch.
func (u Unit) weight() float64 {
	if u.Kind != UnitStretch || !(u.Value > 0) || math.IsInf(u.Value, 1) {
		return 0
	}
	return u.Value
}

// nonNegative returns v, or 0 when v is negative, NaN or infinite.
func nonNegative(v float64) float64 {
	if !(v >= 0) || math.IsInf(v, 1) {
		return 0
	}
	return v
}

// Edges holds per-side lengths for margins and padding.
type Edges struct {
	Top, Right, Bottom, Left Unit
}

// All returns Edges with u on every side.
func All(u Unit) Edges {
	return Edges{Top: u, Right: u, Bottom: u, Left: u}
}

// Symmetric returns Edges with v on top and bottom and h on left and right.
func Symmetric(v, h Unit) Edges {
	return Edges{Top: v, Right: h, Bottom: v, Left: h}
}

// Direction is the main axis children flow along.
type Direction uint8

const (
	Column Direction = iota // children stack top to bottom (default)
	Row                     // children stack left to right
)

// Position controls whether a node takes part in its parent's flow.
type Position uint8

const (
	// ParentDirected nodes are placed by the parent's flow (default).
	ParentDirected Position = iota
	// SelfDirected nodes are placed against the parent content box using
	// their own margins and do not take space from flow siblings.
	SelfDirected
)

// Border is a solid border drawn inside the node's bounds.
type Border struct {
	Width float64
	Color Color
}

// Style is the box model and paint style of a node. Style values are
// comparable; the diff engine compares them with ==.
type Style struct {
	Width, Height Unit
	Margin        Edges
	Padding       Edges
	Direction     Direction
	Position      Position

	// ZIndex, when non-zero, places the node and its descendants on an
	// overlay level. Zero inherits the parent's level.
	ZIndex int

	Background   Color
	Border       Border
	CornerRadius float64

	// Hidden removes the node and its subtree from layout flow, hit testing
	// and extraction.
	Hidden bool
}

// axis helpers

func (s *Style) mainSize(d Direction) Unit {
	if d == Row {
		return s.Width
	}
	return s.Height
}

func (s *Style) crossSize(d Direction) Unit {
	if d == Row {
		return s.Height
	}
	return s.Width
}

// along returns the start and end edges of e along d.
func (e Edges) along(d Direction) (start, end Unit) {
	if d == Row {
		return e.Left, e.Right
	}
	return e.Top, e.Bottom
}

// across returns the start and end edges of e perpendicular to d.
func (e Edges) across(d Direction) (start, end Unit) {
	if d == Row {
		return e.Top, e.Bottom
	}
	return e.Left, e.Right
}
