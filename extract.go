package bramble

import (
	"fmt"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ExtractOptions configures an extraction pass.
type ExtractOptions struct {
	// State lets widgets render focus, hover and pressed feedback.
	State *UIState

	// LineHeightScale overrides DefaultLineHeightScale when > 0.
	LineHeightScale float64

	// Parallel extracts each child subtree of the root on its own goroutine.
	// Output is identical to the sequential path.
	Parallel bool
}

// ExtractStats counts what the last extraction produced and skipped.
type ExtractStats struct {
	Nodes       int
	Primitives  int
	Unavailable int // nodes skipped because an asset was not loaded
	Panics      int // nodes whose Render panicked
}

func (s *ExtractStats) add(o ExtractStats) {
	s.Nodes += o.Nodes
	s.Primitives += o.Primitives
	s.Unavailable += o.Unavailable
	s.Panics += o.Panics
}

// Extractor turns a laid-out tree into paint-ordered primitives. It keeps
// its buffers between frames; the returned slice is valid until the next
// call to Extract.
type Extractor struct {
	entries []paintEntry
	prims   []Primitive
	sortBuf []Primitive
	Stats   ExtractStats
}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract is a convenience wrapper that extracts with a fresh Extractor.
func Extract(store *Store, root NodeID, assets Assets, opts ExtractOptions) []Primitive {
	return NewExtractor().Extract(store, root, assets, opts)
}

// Extract walks the committed tree at root and returns its primitives in
// paint order: by effective z-index, ties broken by tree pre-order, and in
// emission order within a node. A node whose asset is not loaded or whose
// Render panics contributes nothing; the rest of the tree still renders.
func (e *Extractor) Extract(store *Store, root NodeID, assets Assets, opts ExtractOptions) []Primitive {
	if assets == nil {
		assets = noAssets{}
	}
	e.entries = collectPreorder(store, root, e.entries[:0])
	e.prims = e.prims[:0]
	e.Stats = ExtractStats{}
	if len(e.entries) == 0 {
		return e.prims
	}

	if opts.Parallel && len(e.entries) > 1 {
		e.extractParallel(assets, opts)
	} else {
		e.prims, e.Stats = extractRange(e.entries, 0, len(e.entries), assets, opts, e.prims)
	}

	e.sortBuf = mergeSort(e.prims, e.sortBuf, primitiveLessOrEqual)
	return e.prims
}

// extractParallel renders the root on the calling goroutine and every child
// subtree of the root into its own buffer, then concatenates the buffers in
// pre-order so the result matches the sequential path.
func (e *Extractor) extractParallel(assets Assets, opts ExtractOptions) {
	e.prims, e.Stats = extractRange(e.entries, 0, 1, assets, opts, e.prims)

	type part struct {
		prims []Primitive
		stats ExtractStats
	}
	var ranges [][2]int
	for i := 1; i < len(e.entries); i = e.entries[i].end {
		ranges = append(ranges, [2]int{i, e.entries[i].end})
	}
	parts := make([]part, len(ranges))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, r := range ranges {
		g.Go(func() error {
			parts[i].prims, parts[i].stats = extractRange(e.entries, r[0], r[1], assets, opts, nil)
			return nil
		})
	}
	_ = g.Wait()

	for _, p := range parts {
		e.prims = append(e.prims, p.prims...)
		e.Stats.add(p.stats)
	}
}

// extractRange renders entries[lo:hi] in pre-order, appending to dst.
func extractRange(entries []paintEntry, lo, hi int, assets Assets, opts ExtractOptions, dst []Primitive) ([]Primitive, ExtractStats) {
	var stats ExtractStats
	rc := RenderContext{
		Assets:          assets,
		State:           opts.State,
		lineHeightScale: opts.LineHeightScale,
	}
	for i := lo; i < hi; i++ {
		ent := &entries[i]
		start := len(dst)
		rc.reset(ent, dst)
		ok := renderNode(&rc)
		dst = rc.out
		stats.Nodes++
		switch {
		case !ok:
			dst = dst[:start]
			stats.Panics++
		case rc.unavailable:
			dst = dst[:start]
			stats.Unavailable++
		}
	}
	stats.Primitives = len(dst)
	return dst, stats
}

// renderNode runs the node's renderer and reports false if it panicked.
func renderNode(rc *RenderContext) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("bramble: render %v (%s) panicked: %v", rc.ID, rc.Node.Kind(), r)
			ok = false
		}
	}()
	if r, isRenderer := rc.Node.Widget.(Renderer); isRenderer {
		r.Render(rc)
	} else {
		rc.Background()
	}
	return true
}

func primitiveLessOrEqual(a, b *Primitive) bool {
	if a.ZIndex != b.ZIndex {
		return a.ZIndex < b.ZIndex
	}
	return a.order <= b.order
}

// RenderContext is passed to Renderer.Render. Its emit methods append
// primitives for the node being rendered, already in screen space.
type RenderContext struct {
	Node *Node
	ID   NodeID

	// Bounds is the node's absolute rectangle and Content its absolute
	// content box.
	Bounds  Rect
	Content Rect

	Assets Assets
	State  *UIState

	opacity         float64
	z, order        int
	lineHeightScale float64
	unavailable     bool
	out             []Primitive
}

func (rc *RenderContext) reset(ent *paintEntry, out []Primitive) {
	rc.Node = ent.node
	rc.ID = ent.node.ID
	rc.Bounds = ent.abs
	rc.Content = ent.content
	rc.opacity = ent.opacity
	rc.z = ent.z
	rc.order = ent.order
	rc.unavailable = false
	rc.out = out
}

// Opacity returns the effective opacity applied to emitted colors.
func (rc *RenderContext) Opacity() float64 { return rc.opacity }

// Focused reports whether the node being rendered has keyboard focus.
func (rc *RenderContext) Focused() bool { return rc.State != nil && rc.State.Focus == rc.ID }

// Hovered reports whether the pointer is over the node being rendered.
func (rc *RenderContext) Hovered() bool { return rc.State != nil && rc.State.Hover == rc.ID }

// Pressed reports whether the node being rendered is held down.
func (rc *RenderContext) Pressed() bool { return rc.State != nil && rc.State.Pressed == rc.ID }

// Unavailable marks the node as waiting on an asset. None of its primitives
// are kept this frame.
func (rc *RenderContext) Unavailable() { rc.unavailable = true }

// LineHeight returns the line height for text at size, honoring an explicit
// override > 0.
func (rc *RenderContext) LineHeight(size, override float64) float64 {
	return lineHeightFor(size, override, rc.lineHeightScale)
}

func (rc *RenderContext) emit(p Primitive) {
	p.Node = rc.ID
	p.ZIndex = rc.z
	p.order = rc.order
	p.Color = p.Color.MulAlpha(rc.opacity)
	if !p.Color.Visible() {
		return
	}
	rc.out = append(rc.out, p)
}

// Quad emits a solid rectangle.
func (rc *RenderContext) Quad(r Rect, c Color) {
	if !c.Visible() || r.Empty() {
		return
	}
	rc.emit(Primitive{Kind: PrimitiveQuad, Rect: r, Color: c})
}

// Background emits the node's style background and border.
func (rc *RenderContext) Background() {
	rc.BackgroundColor(rc.Node.Style.Background)
}

// BackgroundColor emits the node's background filled with c instead of the
// style background, followed by the style border.
func (rc *RenderContext) BackgroundColor(c Color) {
	st := &rc.Node.Style
	b := rc.Bounds
	if c.Visible() && !b.Empty() {
		rc.emit(Primitive{Kind: PrimitiveQuad, Rect: b, Color: c, CornerRadius: st.CornerRadius})
	}
	w := st.Border.Width
	if w <= 0 || !st.Border.Color.Visible() {
		return
	}
	w = min(w, b.Width/2, b.Height/2)
	bc := st.Border.Color
	rc.Quad(Rect{X: b.X, Y: b.Y, Width: b.Width, Height: w}, bc)
	rc.Quad(Rect{X: b.X, Y: b.Y + b.Height - w, Width: b.Width, Height: w}, bc)
	rc.Quad(Rect{X: b.X, Y: b.Y + w, Width: w, Height: b.Height - 2*w}, bc)
	rc.Quad(Rect{X: b.X + b.Width - w, Y: b.Y + w, Width: w, Height: b.Height - 2*w}, bc)
}

// TextOptions configures RenderContext.Text.
type TextOptions struct {
	Font       FontHandle
	Size       float64
	LineHeight float64 // 0 uses the configured scale
	Color      Color
	Align      TextAlign
	Wrap       bool
}

// Text emits one Glyph primitive per visible glyph of s laid out in box.
// It returns false and marks the node unavailable if the font is not
// loaded.
func (rc *RenderContext) Text(s string, box Rect, opts TextOptions) bool {
	m, ok := rc.Assets.Font(opts.Font)
	if !ok {
		rc.Unavailable()
		return false
	}
	p := textParams{
		size:       opts.Size,
		lineHeight: rc.LineHeight(opts.Size, opts.LineHeight),
		align:      opts.Align,
		alignWidth: box.Width,
	}
	if opts.Wrap {
		p.wrap = box.Width
	}
	l := layoutText(m, s, p)
	for _, g := range l.glyphs {
		rc.emit(Primitive{
			Kind:  PrimitiveGlyph,
			Rect:  g.rect.Translate(box.X, box.Y),
			Color: opts.Color,
			Glyph: GlyphRef{Font: opts.Font, Rune: g.r, Size: opts.Size, Page: g.m.Page, Src: g.m.Src},
		})
	}
	return true
}

// Image emits an Image primitive for h stretched over r. It returns false
// and marks the node unavailable if the image is not loaded.
func (rc *RenderContext) Image(h ImageHandle, r Rect, tint Color) bool {
	info, ok := rc.Assets.Image(h)
	if !ok {
		rc.Unavailable()
		return false
	}
	if r.Empty() {
		return true
	}
	rc.emit(Primitive{
		Kind:  PrimitiveImage,
		Rect:  r,
		Color: tint,
		Image: ImageRef{Handle: h, Texture: info.Texture, Src: info.Src},
	})
	return true
}

// Path emits a Path primitive with the points of h scaled by scale and
// translated to origin. It returns false and marks the node unavailable if
// the path is not loaded.
func (rc *RenderContext) Path(h PathHandle, origin Vec2, scale float64, fill Color) bool {
	cmds, ok := rc.Assets.Path(h)
	if !ok {
		rc.Unavailable()
		return false
	}
	if len(cmds) == 0 || !fill.Visible() {
		return true
	}
	if scale == 0 {
		scale = 1
	}
	abs := make([]PathCommand, len(cmds))
	bounds := pathBounds(cmds)
	for i, c := range cmds {
		abs[i].Op = c.Op
		for j := 0; j < c.Op.pointCount(); j++ {
			abs[i].Points[j] = Vec2{X: origin.X + c.Points[j].X*scale, Y: origin.Y + c.Points[j].Y*scale}
		}
	}
	rc.emit(Primitive{
		Kind: PrimitivePath,
		Rect: Rect{
			X:      origin.X + bounds.X*scale,
			Y:      origin.Y + bounds.Y*scale,
			Width:  bounds.Width * scale,
			Height: bounds.Height * scale,
		},
		Color: fill,
		Path:  abs,
	})
	return true
}

// pathBounds returns the bounding box of every point the commands use.
func pathBounds(cmds []PathCommand) Rect {
	first := true
	var minX, minY, maxX, maxY float64
	for _, c := range cmds {
		for j := 0; j < c.Op.pointCount(); j++ {
			p := c.Points[j]
			if first {
				minX, minY, maxX, maxY = p.X, p.Y, p.X, p.Y
				first = false
				continue
			}
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func (s ExtractStats) String() string {
	return fmt.Sprintf("nodes: %d | primitives: %d | unavailable: %d | panics: %d",
		s.Nodes, s.Primitives, s.Unavailable, s.Panics)
}
