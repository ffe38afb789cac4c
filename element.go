package bramble

// Element is one node of a declared tree. Applications build a fresh Element
// tree every frame; the diff engine reconciles it with the committed tree.
type Element struct {
	Widget   Widget
	Style    Style
	Key      string
	Entity   uint32
	Children []Element
}

// El declares an unkeyed element.
func El(w Widget, style Style, children ...Element) Element {
	return Element{Widget: w, Style: style, Children: children}
}

// Keyed declares an element matched by key among its siblings.
func Keyed(key string, w Widget, style Style, children ...Element) Element {
	return Element{Widget: w, Style: style, Key: key, Children: children}
}

// WithKey returns a copy of e with the given key.
func (e Element) WithKey(key string) Element {
	e.Key = key
	return e
}

// WithEntity returns a copy of e bound to an ECS entity. Interaction events
// on the node are forwarded to the UI's EntityStore.
func (e Element) WithEntity(id uint32) Element {
	e.Entity = id
	return e
}

// widget returns the element's widget, defaulting to an empty Panel.
func (e *Element) widget() Widget {
	if e.Widget == nil {
		return Panel{}
	}
	return e.Widget
}

// style returns the style that will be stored on the node.
func (e *Element) style() Style {
	if s, ok := e.widget().(Styler); ok {
		return s.Styles(e.Style)
	}
	return e.Style
}

func (e *Element) kind() Kind {
	return e.widget().Kind()
}
