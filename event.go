package bramble

import "time"

// EventType identifies the kind of input or derived event.
type EventType uint8

const (
	EventPointerMove  EventType = iota // pointer moved
	EventPointerDown                   // mouse button or touch pressed
	EventPointerUp                     // mouse button or touch released
	EventKeyDown                       // key pressed
	EventKeyUp                         // key released
	EventChar                          // text input character
	EventClick                         // press and release over the same node
	EventPointerEnter                  // pointer started hovering a node (no bubbling)
	EventPointerLeave                  // pointer stopped hovering a node (no bubbling)
	EventFocus                         // node gained keyboard focus (no bubbling)
	EventBlur                          // node lost keyboard focus (no bubbling)
)

var eventTypeNames = [...]string{
	EventPointerMove:  "pointer_move",
	EventPointerDown:  "pointer_down",
	EventPointerUp:    "pointer_up",
	EventKeyDown:      "key_down",
	EventKeyUp:        "key_up",
	EventChar:         "char",
	EventClick:        "click",
	EventPointerEnter: "pointer_enter",
	EventPointerLeave: "pointer_leave",
	EventFocus:        "focus",
	EventBlur:         "blur",
}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

// bubbles reports whether t propagates to ancestors.
func (t EventType) bubbles() bool {
	switch t {
	case EventPointerEnter, EventPointerLeave, EventFocus, EventBlur:
		return false
	}
	return true
}

// Key identifies a keyboard key. Hosts map their native key codes onto it.
type Key uint8

const (
	KeyUnknown Key = iota
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyEscape
	KeySpace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
)

// Event is one host input event or one derived event. Coordinates are in
// screen space. Time is measured from host start.
type Event struct {
	Type      EventType
	X, Y      float64
	Button    MouseButton
	Key       Key
	Char      rune
	Modifiers KeyModifiers
	Time      time.Duration
}

// EventResult tells the dispatcher whether to keep bubbling.
type EventResult uint8

const (
	Ignored  EventResult = iota // keep bubbling to the next interested ancestor
	Consumed                    // stop propagation
)

// EventContext is passed to widget and scene handlers.
type EventContext struct {
	Event Event

	// Target is the node the event was routed to. Node is the node whose
	// handler is running; they differ while bubbling.
	Target NodeID
	Node   NodeID

	// Bounds is Node's absolute rectangle. LocalX and LocalY are the pointer
	// position relative to its top-left corner.
	Bounds         Rect
	LocalX, LocalY float64

	State *UIState

	store    *Store
	focus    NodeID
	setFocus bool
}

// RequestFocus moves keyboard focus to id once the current event finishes.
func (c *EventContext) RequestFocus(id NodeID) {
	c.focus = id
	c.setFocus = true
}

// Blur clears keyboard focus once the current event finishes.
func (c *EventContext) Blur() {
	c.RequestFocus(NoNode)
}

// Lookup returns the node for id from the committed tree.
func (c *EventContext) Lookup(id NodeID) (*Node, error) {
	return c.store.Get(id)
}
