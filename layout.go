package bramble

import (
	"errors"
	"math"
)

// MaxLayoutPasses bounds the measure passes spent on an Auto-sized node
// whose children are sized in percent of it. After the last pass the most
// recent result is accepted.
const MaxLayoutPasses = 4

// LayoutOptions configures Compute.
type LayoutOptions struct {
	Assets Assets

	// MaxPasses overrides MaxLayoutPasses when > 0.
	MaxPasses int

	// LineHeightScale is forwarded to Measurer widgets.
	LineHeightScale float64
}

// LayoutStats counts the work done by one Compute call.
type LayoutStats struct {
	Measured    int // measure calls not served from cache
	Placed      int // nodes whose box was recomputed
	Cached      int // clean subtrees reused as-is
	Passes      int // extra measure passes spent on percent cycles
	Unavailable int // measures that hit an unloaded asset
}

// layoutCache is the per-node memo of the last measure and placement.
type layoutCache struct {
	measureFrame uint64
	measureKey   Size // parent content box the measure resolved against
	measured     Size
	measuredOK   bool

	placedOK     bool
	placedParent Size
}

type layouter struct {
	store     *Store
	mc        MeasureContext
	maxPasses int
	frame     uint64
	stats     LayoutStats
	retry     []NodeID

	spans []span
	sizes []float64
}

// Compute lays out the tree at root inside available. Only dirty nodes and
// nodes whose incoming constraints changed are recomputed; clean subtrees
// keep their cached boxes. Dirty flags are cleared as nodes are placed.
// Nodes whose measure hit an unloaded asset are marked dirty again so the
// next Compute retries them.
func Compute(store *Store, root NodeID, available Size, opts LayoutOptions) LayoutStats {
	n := store.lookup(root)
	if n == nil {
		return LayoutStats{}
	}
	if opts.Assets == nil {
		opts.Assets = noAssets{}
	}
	store.layoutFrame++
	l := &layouter{
		store:     store,
		mc:        MeasureContext{Assets: opts.Assets, LineHeightScale: opts.LineHeightScale},
		maxPasses: opts.MaxPasses,
		frame:     store.layoutFrame,
	}
	if l.maxPasses <= 0 {
		l.maxPasses = MaxLayoutPasses
	}

	available.Width = nonNegative(available.Width)
	available.Height = nonNegative(available.Height)
	l.place(n, l.freeRect(n, available.Width, available.Height), available.Width, available.Height)

	for _, id := range l.retry {
		store.markDirty(id)
	}
	return l.stats
}

// --- distribution ---

// span is one item on an axis: a fixed length or a stretch weight.
type span struct {
	fixed   float64
	weight  float64
	stretch bool
}

// distribute resolves spans against avail. Fixed spans keep their length.
// The space left after fixed spans is divided among stretch spans by weight:
// each receives floor(floor(remaining) * w / total) except the last positive
// weight, which receives the rest so the stretch lengths sum to remaining
// exactly. Weights are scaled by the largest one before summing so huge
// weights cannot overflow the total. Weights that are not positive and
// finite receive 0. Results are never negative.
func distribute(avail float64, items []span, out []float64) []float64 {
	out = out[:0]
	var used, largest float64
	last := -1
	for i, it := range items {
		switch {
		case !it.stretch:
			used += nonNegative(it.fixed)
		case validWeight(it.weight):
			largest = max(largest, it.weight)
			last = i
		}
	}
	var total float64
	for _, it := range items {
		if it.stretch && validWeight(it.weight) {
			total += it.weight / largest
		}
	}
	remaining := nonNegative(nonNegative(avail) - used)
	base := math.Floor(remaining)
	var given float64
	for i, it := range items {
		v := nonNegative(it.fixed)
		if it.stretch {
			switch {
			case !validWeight(it.weight):
				v = 0
			case i == last:
				v = remaining - given
			default:
				v = math.Floor(base * (it.weight / largest) / total)
				given += v
			}
		}
		out = append(out, nonNegative(v))
	}
	return out
}

func validWeight(w float64) bool {
	return w > 0 && !math.IsInf(w, 1)
}

// unitSpan converts a size or margin unit to a span. Auto resolves to
// autoLen, Percent against parent.
func unitSpan(u Unit, parent, autoLen float64) span {
	switch u.Kind {
	case UnitStretch:
		return span{weight: u.weight(), stretch: true}
	case UnitAuto:
		return span{fixed: nonNegative(autoLen)}
	}
	return span{fixed: u.resolve(parent)}
}

// marginSpan is unitSpan for margins, where Auto means zero.
func marginSpan(u Unit, parent float64) span {
	return unitSpan(u, parent, 0)
}

// --- measure ---

func (l *layouter) measure(n *Node, pw, ph float64) Size {
	key := Size{pw, ph}
	c := &n.layoutCache
	if c.measuredOK && c.measureKey == key && (!n.dirty || c.measureFrame == l.frame) {
		return c.measured
	}
	l.stats.Measured++

	st := &n.Style
	pad := resolveEdges(st.Padding, pw, ph)
	padW, padH := pad.Left+pad.Right, pad.Top+pad.Bottom

	w, wFixed := fixedLength(st.Width, pw)
	h, hFixed := fixedLength(st.Height, ph)
	if !wFixed || !hFixed {
		content := l.measureContent(n, pw, ph, w-padW, h-padH, wFixed, hFixed, pad)
		if !wFixed {
			w = content.Width + padW
		}
		if !hFixed {
			h = content.Height + padH
		}
	}

	size := Size{Width: nonNegative(w), Height: nonNegative(h)}
	c.measureKey = key
	c.measured = size
	c.measuredOK = true
	c.measureFrame = l.frame
	return size
}

// fixedLength resolves Pixels and Percent units. It reports false for Auto
// and Stretch, which are sized from content while measuring.
func fixedLength(u Unit, parent float64) (float64, bool) {
	switch u.Kind {
	case UnitPixels, UnitPercent:
		return u.resolve(parent), true
	}
	return 0, false
}

// edgeLengths are resolved Edges.
type edgeLengths struct {
	Top, Right, Bottom, Left float64
}

// resolveEdges resolves fixed and percent edges; Auto and Stretch edges
// resolve to zero.
func resolveEdges(e Edges, pw, ph float64) (out edgeLengths) {
	out.Top = e.Top.resolve(ph)
	out.Bottom = e.Bottom.resolve(ph)
	out.Left = e.Left.resolve(pw)
	out.Right = e.Right.resolve(pw)
	return out
}

// measureContent returns the content size of n. cw and ch are the content
// extents when known; unknown extents that children size against in percent
// are found by iterating up to maxPasses times.
func (l *layouter) measureContent(n *Node, pw, ph, cw, ch float64, wKnown, hKnown bool, pad edgeLengths) Size {
	if m, ok := n.Widget.(Measurer); ok && len(n.children) == 0 {
		mc := l.mc
		switch {
		case wKnown:
			mc.Avail.Width = nonNegative(cw)
		default:
			mc.Avail.Width = nonNegative(pw-pad.Left-pad.Right)
		}
		if hKnown {
			mc.Avail.Height = nonNegative(ch)
		}
		size, err := m.Measure(mc)
		if err != nil {
			if errors.Is(err, ErrResourceUnavailable) {
				l.stats.Unavailable++
				l.retry = append(l.retry, n.ID)
			}
			return Size{}
		}
		return size
	}

	if !wKnown {
		cw = 0
	}
	if !hKnown {
		ch = 0
	}
	iterW := !wKnown && l.hasPercentChild(n, true)
	iterH := !hKnown && l.hasPercentChild(n, false)

	size := l.flowContent(n, cw, ch)
	for pass := 1; pass < l.maxPasses && (iterW || iterH); pass++ {
		nw, nh := cw, ch
		if iterW {
			nw = size.Width
		}
		if iterH {
			nh = size.Height
		}
		if nw == cw && nh == ch {
			break
		}
		cw, ch = nw, nh
		l.stats.Passes++
		size = l.flowContent(n, cw, ch)
	}
	return size
}

// hasPercentChild reports whether a flow child of n uses Percent for its
// size or margins on the horizontal (x) or vertical axis.
func (l *layouter) hasPercentChild(n *Node, x bool) bool {
	for _, id := range n.children {
		c := l.store.lookup(id)
		if c == nil || c.Style.Hidden || c.Style.Position == SelfDirected {
			continue
		}
		st := &c.Style
		var units [3]Unit
		if x {
			units = [3]Unit{st.Width, st.Margin.Left, st.Margin.Right}
		} else {
			units = [3]Unit{st.Height, st.Margin.Top, st.Margin.Bottom}
		}
		for _, u := range units {
			if u.Kind == UnitPercent {
				return true
			}
		}
	}
	return false
}

// flowContent sums flow children along the main axis and takes their maximum
// across it. SelfDirected children do not contribute.
func (l *layouter) flowContent(n *Node, cw, ch float64) Size {
	d := n.Style.Direction
	var main, cross float64
	for _, id := range n.children {
		c := l.store.lookup(id)
		if c == nil || c.Style.Hidden || c.Style.Position == SelfDirected {
			continue
		}
		cs := l.measure(c, cw, ch)
		m := resolveEdges(c.Style.Margin, cw, ch)
		if d == Row {
			main += m.Left + cs.Width + m.Right
			cross = max(cross, m.Top+cs.Height+m.Bottom)
		} else {
			main += m.Top + cs.Height + m.Bottom
			cross = max(cross, m.Left+cs.Width+m.Right)
		}
	}
	if d == Row {
		return Size{Width: main, Height: cross}
	}
	return Size{Width: cross, Height: main}
}

// --- place ---

// freeRect sizes and positions n independently of flow siblings inside a
// content box of cw x ch: stretch sizes and margins share the free space on
// each axis.
func (l *layouter) freeRect(n *Node, cw, ch float64) Rect {
	st := &n.Style
	var measured Size
	if st.Width.Kind == UnitAuto || st.Height.Kind == UnitAuto {
		measured = l.measure(n, cw, ch)
	}
	x := l.axis(cw, marginSpan(st.Margin.Left, cw), unitSpan(st.Width, cw, measured.Width), marginSpan(st.Margin.Right, cw))
	xs, w := x[0], x[1]
	y := l.axis(ch, marginSpan(st.Margin.Top, ch), unitSpan(st.Height, ch, measured.Height), marginSpan(st.Margin.Bottom, ch))
	return Rect{X: xs, Y: y[0], Width: w, Height: y[1]}
}

// axis distributes a start margin, a size and an end margin over avail.
func (l *layouter) axis(avail float64, start, size, end span) [3]float64 {
	l.spans = append(l.spans[:0], start, size, end)
	l.sizes = distribute(avail, l.spans, l.sizes)
	return [3]float64{l.sizes[0], l.sizes[1], l.sizes[2]}
}

func (l *layouter) place(n *Node, rect Rect, pw, ph float64) {
	c := &n.layoutCache
	parent := Size{pw, ph}
	if !n.dirty && !n.descendantDirty && c.placedOK && n.Layout.Rect == rect && c.placedParent == parent {
		l.stats.Cached++
		return
	}
	l.stats.Placed++

	pad := resolveEdges(n.Style.Padding, pw, ph)
	n.Layout.Rect = rect
	n.Layout.Content = Rect{
		X:      pad.Left,
		Y:      pad.Top,
		Width:  nonNegative(rect.Width-pad.Left-pad.Right),
		Height: nonNegative(rect.Height-pad.Top-pad.Bottom),
	}
	l.placeChildren(n)

	c.placedOK = true
	c.placedParent = parent
	n.dirty = false
	n.descendantDirty = false
}

func (l *layouter) placeChildren(n *Node) {
	if len(n.children) == 0 {
		return
	}
	cw, ch := n.Layout.Content.Width, n.Layout.Content.Height
	d := n.Style.Direction
	cmain, ccross := ch, cw
	if d == Row {
		cmain, ccross = cw, ch
	}

	type flowItem struct {
		node     *Node
		measured Size
	}
	var flow []flowItem
	var main []span
	for _, id := range n.children {
		c := l.store.lookup(id)
		if c == nil || c.Style.Hidden {
			continue
		}
		if c.Style.Position == SelfDirected {
			l.place(c, l.freeRect(c, cw, ch), cw, ch)
			continue
		}
		st := &c.Style
		var measured Size
		if st.Width.Kind == UnitAuto || st.Height.Kind == UnitAuto {
			measured = l.measure(c, cw, ch)
		}
		flow = append(flow, flowItem{node: c, measured: measured})

		ms, me := st.Margin.along(d)
		autoMain := measured.Height
		if d == Row {
			autoMain = measured.Width
		}
		main = append(main,
			marginSpan(ms, cmain),
			unitSpan(st.mainSize(d), cmain, autoMain),
			marginSpan(me, cmain))
	}
	if len(flow) == 0 {
		return
	}
	mainSizes := distribute(cmain, main, nil)

	var cursor float64
	for i, it := range flow {
		st := &it.node.Style
		mStart, size, mEnd := mainSizes[3*i], mainSizes[3*i+1], mainSizes[3*i+2]

		cs, ce := st.Margin.across(d)
		autoCross := it.measured.Width
		if d == Row {
			autoCross = it.measured.Height
		}
		cross := l.axis(ccross, marginSpan(cs, ccross), unitSpan(st.crossSize(d), ccross, autoCross), marginSpan(ce, ccross))

		var r Rect
		if d == Row {
			r = Rect{X: cursor + mStart, Y: cross[0], Width: size, Height: cross[1]}
		} else {
			r = Rect{X: cross[0], Y: cursor + mStart, Width: cross[1], Height: size}
		}
		cursor += mStart + size + mEnd
		l.place(it.node, r, cw, ch)
	}
}
