package bramble

import (
	"unicode"
	"unicode/utf8"
)

// --- Panel ---

// Panel is a plain container. It draws its style background and border and
// optionally reacts to clicks.
type Panel struct {
	OnClick func(ctx *EventContext)
}

func (Panel) Kind() Kind { return KindPanel }

// Equal ignores the click handler, which is rebound every frame.
func (Panel) Equal(other Widget) bool {
	_, ok := other.(Panel)
	return ok
}

func (p Panel) Handles(t EventType) bool {
	return t == EventClick && p.OnClick != nil
}

func (p Panel) HandleEvent(ctx *EventContext) EventResult {
	if ctx.Event.Type == EventClick && p.OnClick != nil {
		p.OnClick(ctx)
		return Consumed
	}
	return Ignored
}

// --- Text ---

// Text draws a string with a font from the Assets service. Under an Auto
// size it measures to its laid-out text.
type Text struct {
	Content    string
	Font       FontHandle
	Size       float64
	Color      Color
	Align      TextAlign
	LineHeight float64 // 0 uses the configured line height scale
	Wrap       bool    // wrap at spaces to the content width
}

func (Text) Kind() Kind { return KindText }

func (t Text) Measure(mc MeasureContext) (Size, error) {
	m, ok := mc.Assets.Font(t.Font)
	if !ok {
		return Size{}, ErrResourceUnavailable
	}
	var wrap float64
	if t.Wrap {
		wrap = mc.Avail.Width
	}
	return MeasureText(m, t.Content, t.Size, lineHeightFor(t.Size, t.LineHeight, mc.LineHeightScale), wrap), nil
}

func (t Text) Render(rc *RenderContext) {
	rc.Background()
	rc.Text(t.Content, rc.Content, TextOptions{
		Font:       t.Font,
		Size:       t.Size,
		LineHeight: t.LineHeight,
		Color:      t.Color,
		Align:      t.Align,
		Wrap:       t.Wrap,
	})
}

// --- Button ---

// Button is a focusable, clickable box with a centered label. Enter and
// Space activate a focused button.
type Button struct {
	Label     string
	Font      FontHandle
	FontSize  float64
	TextColor Color

	// HoverColor and PressedColor replace the style background while the
	// pointer is over or held on the button. Zero keeps the background.
	HoverColor   Color
	PressedColor Color

	Disabled bool
	OnClick  func(ctx *EventContext)
}

func (Button) Kind() Kind { return KindButton }

// Equal compares everything except the click handler.
func (b Button) Equal(other Widget) bool {
	o, ok := other.(Button)
	if !ok {
		return false
	}
	return b.Label == o.Label && b.Font == o.Font && b.FontSize == o.FontSize &&
		b.TextColor == o.TextColor && b.HoverColor == o.HoverColor &&
		b.PressedColor == o.PressedColor && b.Disabled == o.Disabled
}

func (b Button) Focusable() bool { return !b.Disabled }

func (b Button) Handles(t EventType) bool {
	if b.Disabled {
		return false
	}
	switch t {
	case EventClick, EventKeyDown, EventPointerEnter, EventPointerLeave, EventPointerDown:
		return true
	}
	return false
}

func (b Button) HandleEvent(ctx *EventContext) EventResult {
	switch ctx.Event.Type {
	case EventClick:
		if b.OnClick != nil {
			b.OnClick(ctx)
		}
		return Consumed
	case EventKeyDown:
		if ctx.Event.Key != KeyEnter && ctx.Event.Key != KeySpace {
			return Ignored
		}
		if b.OnClick != nil {
			b.OnClick(ctx)
		}
		return Consumed
	case EventPointerDown, EventPointerEnter, EventPointerLeave:
		return Consumed
	}
	return Ignored
}

func (b Button) Measure(mc MeasureContext) (Size, error) {
	if b.Label == "" {
		return Size{}, nil
	}
	m, ok := mc.Assets.Font(b.Font)
	if !ok {
		return Size{}, ErrResourceUnavailable
	}
	return MeasureText(m, b.Label, b.FontSize, lineHeightFor(b.FontSize, 0, mc.LineHeightScale), 0), nil
}

func (b Button) Render(rc *RenderContext) {
	bg := rc.Node.Style.Background
	switch {
	case rc.Pressed() && b.PressedColor.Visible():
		bg = b.PressedColor
	case rc.Hovered() && b.HoverColor.Visible():
		bg = b.HoverColor
	}
	rc.BackgroundColor(bg)
	if b.Label == "" {
		return
	}
	lh := rc.LineHeight(b.FontSize, 0)
	box := rc.Content
	box.Y += (box.Height - lh) / 2
	box.Height = lh
	rc.Text(b.Label, box, TextOptions{
		Font:  b.Font,
		Size:  b.FontSize,
		Color: b.TextColor,
		Align: TextAlignCenter,
	})
}

// --- Image ---

// Image draws an image or atlas region stretched over its content box.
// Under an Auto size it measures to the image's natural size.
type Image struct {
	Handle ImageHandle
	Tint   Color // zero means untinted
}

func (Image) Kind() Kind { return KindImage }

func (im Image) Measure(mc MeasureContext) (Size, error) {
	info, ok := mc.Assets.Image(im.Handle)
	if !ok {
		return Size{}, ErrResourceUnavailable
	}
	return Size{Width: info.Width, Height: info.Height}, nil
}

func (im Image) Render(rc *RenderContext) {
	tint := im.Tint
	if tint == (Color{}) {
		tint = ColorWhite
	}
	rc.Background()
	rc.Image(im.Handle, rc.Content, tint)
}

// --- Vector ---

// Vector fills a path asset. Path points are local to the content box and
// multiplied by Scale (0 means 1).
type Vector struct {
	Path  PathHandle
	Fill  Color
	Scale float64
}

func (Vector) Kind() Kind { return KindVector }

func (v Vector) scale() float64 {
	if v.Scale == 0 {
		return 1
	}
	return v.Scale
}

func (v Vector) Measure(mc MeasureContext) (Size, error) {
	cmds, ok := mc.Assets.Path(v.Path)
	if !ok {
		return Size{}, ErrResourceUnavailable
	}
	b := pathBounds(cmds)
	s := v.scale()
	return Size{Width: max(0, (b.X+b.Width)*s), Height: max(0, (b.Y+b.Height)*s)}, nil
}

func (v Vector) Render(rc *RenderContext) {
	rc.Background()
	rc.Path(v.Path, Vec2{X: rc.Content.X, Y: rc.Content.Y}, v.scale(), v.Fill)
}

// --- TextInput ---

// TextInput is a single-line editable text field. The application owns the
// value: OnChange reports edits and the next declaration carries the value
// forward. Edits within one frame accumulate on the committed widget.
type TextInput struct {
	Value       string
	Placeholder string
	Font        FontHandle
	Size        float64

	Color            Color
	PlaceholderColor Color
	CaretColor       Color

	OnChange func(value string)
	OnSubmit func(value string)
}

func (TextInput) Kind() Kind { return KindTextInput }

// Equal compares everything except the callbacks.
func (t TextInput) Equal(other Widget) bool {
	o, ok := other.(TextInput)
	if !ok {
		return false
	}
	return t.Value == o.Value && t.Placeholder == o.Placeholder &&
		t.Font == o.Font && t.Size == o.Size && t.Color == o.Color &&
		t.PlaceholderColor == o.PlaceholderColor && t.CaretColor == o.CaretColor
}

func (TextInput) Focusable() bool { return true }

func (TextInput) Handles(t EventType) bool {
	return t == EventChar || t == EventKeyDown
}

func (t TextInput) HandleEvent(ctx *EventContext) EventResult {
	next := t.Value
	switch ctx.Event.Type {
	case EventChar:
		r := ctx.Event.Char
		if !unicode.IsPrint(r) {
			return Ignored
		}
		next += string(r)
	case EventKeyDown:
		switch ctx.Event.Key {
		case KeyBackspace:
			if next == "" {
				return Consumed
			}
			_, size := utf8.DecodeLastRuneInString(next)
			next = next[:len(next)-size]
		case KeyEnter:
			if t.OnSubmit != nil {
				t.OnSubmit(t.Value)
			}
			return Consumed
		default:
			return Ignored
		}
	default:
		return Ignored
	}
	if n, err := ctx.Lookup(ctx.Node); err == nil {
		t.Value = next
		n.Widget = t
	}
	if t.OnChange != nil {
		t.OnChange(next)
	}
	return Consumed
}

func (t TextInput) Measure(mc MeasureContext) (Size, error) {
	m, ok := mc.Assets.Font(t.Font)
	if !ok {
		return Size{}, ErrResourceUnavailable
	}
	s := t.Value
	if s == "" {
		s = t.Placeholder
	}
	lh := lineHeightFor(t.Size, 0, mc.LineHeightScale)
	sz := MeasureText(m, s, t.Size, lh, 0)
	sz.Height = lh
	return sz, nil
}

func (t TextInput) Render(rc *RenderContext) {
	rc.Background()
	box := rc.Content
	s, c := t.Value, t.Color
	if s == "" {
		s, c = t.Placeholder, t.PlaceholderColor
	}
	if !rc.Text(s, box, TextOptions{Font: t.Font, Size: t.Size, Color: c}) {
		return
	}
	if !rc.Focused() {
		return
	}
	m, _ := rc.Assets.Font(t.Font)
	lh := rc.LineHeight(t.Size, 0)
	var w float64
	if t.Value != "" {
		w = MeasureText(m, t.Value, t.Size, lh, 0).Width
	}
	caret := t.CaretColor
	if !caret.Visible() {
		caret = t.Color
	}
	rc.Quad(Rect{X: box.X + w, Y: box.Y, Width: 1, Height: lh}, caret)
}
