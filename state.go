package bramble

// UIState is the interaction state the dispatcher owns: focus, hover and the
// node a pointer press started on. Widgets read it while rendering.
type UIState struct {
	Focus   NodeID
	Hover   NodeID
	Pressed NodeID

	// PressedButton is the button captured at press time.
	PressedButton MouseButton

	// Pointer is the last known pointer position in screen space.
	Pointer Vec2
}

// BeginFrame drops references to nodes that no longer exist. Losing the
// focused node clears focus silently.
func (s *UIState) BeginFrame(store *Store) {
	if !store.Contains(s.Focus) {
		s.Focus = NoNode
	}
	if !store.Contains(s.Hover) {
		s.Hover = NoNode
	}
	if !store.Contains(s.Pressed) {
		s.Pressed = NoNode
	}
}

// Focused reports whether id holds keyboard focus.
func (s *UIState) Focused(id NodeID) bool {
	return id != NoNode && s.Focus == id
}

// Hovered reports whether the pointer is over id.
func (s *UIState) Hovered(id NodeID) bool {
	return id != NoNode && s.Hover == id
}
