package bramble

// Kind names a widget type. Two widgets of different kinds are never updated
// in place; the diff engine replaces one with the other.
type Kind string

// Built-in widget kinds.
const (
	KindPanel     Kind = "panel"
	KindButton    Kind = "button"
	KindText      Kind = "text"
	KindImage     Kind = "image"
	KindVector    Kind = "vector"
	KindTextInput Kind = "text_input"
)

// Widget is the value stored on every node. Kind is the only required
// capability; the optional interfaces below add rendering, event handling,
// styling, focus, intrinsic sizing and custom equality.
type Widget interface {
	Kind() Kind
}

// Renderer is implemented by widgets that emit their own primitives. Widgets
// without it get a background quad from their Style.
type Renderer interface {
	Render(rc *RenderContext)
}

// EventHandler is implemented by widgets that take part in hit testing and
// bubbling. Handles declares interest in an event type; only interested
// widgets are hit or receive bubbled events.
type EventHandler interface {
	Handles(t EventType) bool
	HandleEvent(ctx *EventContext) EventResult
}

// Styler lets a widget adjust the declared style, for example to supply a
// default size. The returned style is the one stored and compared.
type Styler interface {
	Styles(declared Style) Style
}

// Focusable is implemented by widgets that can hold keyboard focus.
type Focusable interface {
	Focusable() bool
}

// Measurer reports the intrinsic content size of a leaf widget for Auto
// axes. Implementations return ErrResourceUnavailable when the asset they
// depend on is not loaded yet; the node is then sized as empty and measured
// again next frame.
type Measurer interface {
	Measure(mc MeasureContext) (Size, error)
}

// MeasureContext is passed to Measurer.
type MeasureContext struct {
	Assets Assets

	// Avail is the content space offered to the widget. Zero on an axis
	// means unconstrained.
	Avail Size

	// LineHeightScale multiplies the font size to get a line height.
	LineHeightScale float64
}

// Equaler overrides the reflect.DeepEqual comparison the diff engine uses to
// decide whether a widget changed. Widgets holding func fields implement it,
// since funcs never compare equal.
type Equaler interface {
	Equal(other Widget) bool
}

func isFocusable(w Widget) bool {
	f, ok := w.(Focusable)
	return ok && f.Focusable()
}

func handles(w Widget, t EventType) (EventHandler, bool) {
	h, ok := w.(EventHandler)
	if !ok || !h.Handles(t) {
		return nil, false
	}
	return h, true
}
