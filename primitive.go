package bramble

// PrimitiveKind identifies the shape a Primitive describes.
type PrimitiveKind uint8

const (
	PrimitiveQuad  PrimitiveKind = iota // solid rectangle
	PrimitiveGlyph                      // one text glyph
	PrimitiveImage                      // textured rectangle
	PrimitivePath                       // filled vector path
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveQuad:
		return "quad"
	case PrimitiveGlyph:
		return "glyph"
	case PrimitiveImage:
		return "image"
	case PrimitivePath:
		return "path"
	}
	return "unknown"
}

// GlyphRef identifies the glyph a Glyph primitive draws. Page and Src locate
// it in a bitmap font atlas; outline fonts are drawn from Font and Rune.
type GlyphRef struct {
	Font FontHandle
	Rune rune
	Size float64
	Page int
	Src  Rect
}

// ImageRef identifies the texture region an Image primitive draws.
type ImageRef struct {
	Handle  ImageHandle
	Texture ImageHandle
	Src     Rect
}

// PathOp is a vector path verb.
type PathOp uint8

const (
	PathMoveTo  PathOp = iota // start a new subpath at Points[0]
	PathLineTo                // line to Points[0]
	PathQuadTo                // quadratic curve through control Points[0] to Points[1]
	PathCubicTo               // cubic curve through Points[0] and Points[1] to Points[2]
	PathClose                 // close the current subpath
)

// PathCommand is one path verb with its points. Points in Path assets are
// local to the node's content box; extracted primitives carry them in
// screen space.
type PathCommand struct {
	Op     PathOp
	Points [3]Vec2
}

// pointCount returns how many of Points the op uses.
func (op PathOp) pointCount() int {
	switch op {
	case PathMoveTo, PathLineTo:
		return 1
	case PathQuadTo:
		return 2
	case PathCubicTo:
		return 3
	}
	return 0
}

// Primitive is one renderer-agnostic drawable. Every primitive references
// the committed node that produced it and carries absolute screen-space
// geometry. Primitives are rebuilt every frame.
type Primitive struct {
	Kind  PrimitiveKind
	Node  NodeID
	Rect  Rect
	Color Color

	// CornerRadius rounds a Quad's corners.
	CornerRadius float64

	Glyph GlyphRef
	Image ImageRef
	Path  []PathCommand

	ZIndex int

	order int // pre-order position of Node, for the paint sort
}
