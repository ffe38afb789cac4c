package bramble

// EntityStore is the interface for optional ECS integration. When set,
// interaction events on nodes carrying an EntityID are forwarded to it.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries interaction data for the ECS bridge.
type InteractionEvent struct {
	Type      EventType
	EntityID  uint32
	Node      NodeID
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	Key       Key
	Char      rune
	Modifiers KeyModifiers
}

// DispatchResult reports how one event, input or derived, was delivered.
type DispatchResult struct {
	Event    Event
	Target   NodeID
	Consumed bool

	// Path lists the nodes whose handlers ran, target first.
	Path []NodeID
}

// --- Handler registry ---

const eventTypeCount = int(EventBlur) + 1

type sceneHandler struct {
	id uint32
	fn func(ctx *EventContext) EventResult
}

type handlerRegistry struct {
	byType [eventTypeCount][]sceneHandler
	nextID uint32
}

// CallbackHandle allows removing a registered scene-level callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil || int(h.event) >= eventTypeCount {
		return
	}
	s := h.reg.byType[h.event]
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = sceneHandler{}
			h.reg.byType[h.event] = s[:len(s)-1]
			return
		}
	}
}

// --- Dispatcher ---

// Dispatcher routes events to nodes. Pointer events go to the topmost node
// under the pointer that handles the event type, in paint order (z-index,
// then tree pre-order, so the later of two overlapping same-z nodes wins).
// Key and char events go to the focused node, or the root. Unconsumed
// events bubble to each interested ancestor.
type Dispatcher struct {
	handlers handlerRegistry
	entities EntityStore

	store   *Store
	root    NodeID
	order   []paintEntry
	sortBuf []paintEntry
	byID    map[NodeID]int
	results []DispatchResult
}

// NewDispatcher creates a Dispatcher with no scene-level handlers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{byID: make(map[NodeID]int)}
}

// OnEvent registers a scene-level handler. Scene handlers run before any
// node handler, including when no node is hit; one returning Consumed stops
// delivery to nodes.
func (d *Dispatcher) OnEvent(t EventType, fn func(ctx *EventContext) EventResult) CallbackHandle {
	if int(t) >= eventTypeCount {
		return CallbackHandle{}
	}
	d.handlers.nextID++
	id := d.handlers.nextID
	d.handlers.byType[t] = append(d.handlers.byType[t], sceneHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &d.handlers, event: t}
}

// SetEntityStore sets the optional ECS bridge.
func (d *Dispatcher) SetEntityStore(es EntityStore) {
	d.entities = es
}

// Dispatch delivers a single event. See DispatchAll.
func (d *Dispatcher) Dispatch(store *Store, root NodeID, state *UIState, ev Event) []DispatchResult {
	return d.DispatchAll(store, root, state, []Event{ev})
}

// DispatchAll delivers events in receipt order against the laid-out tree at
// root and returns one result per delivered event, including derived clicks,
// hover changes and focus changes. The returned slice is reused by the next
// call.
func (d *Dispatcher) DispatchAll(store *Store, root NodeID, state *UIState, events []Event) []DispatchResult {
	d.store = store
	d.root = root
	d.results = d.results[:0]
	d.order = collectPreorder(store, root, d.order[:0])
	d.sortBuf = mergeSort(d.order, d.sortBuf, paintLessOrEqual)
	clear(d.byID)
	for i := range d.order {
		d.byID[d.order[i].node.ID] = i
	}

	for _, ev := range events {
		d.dispatchOne(state, ev)
	}
	return d.results
}

func (d *Dispatcher) dispatchOne(state *UIState, ev Event) {
	switch ev.Type {
	case EventPointerMove:
		state.Pointer = Vec2{ev.X, ev.Y}
		d.updateHover(state, ev)
		d.deliver(state, d.hit(ev.X, ev.Y, EventPointerMove), ev)

	case EventPointerDown:
		state.Pointer = Vec2{ev.X, ev.Y}
		d.updateHover(state, ev)
		d.setFocus(state, d.focusTarget(ev.X, ev.Y), ev)
		state.Pressed = d.hit(ev.X, ev.Y, EventClick)
		state.PressedButton = ev.Button
		d.deliver(state, d.hit(ev.X, ev.Y, EventPointerDown), ev)

	case EventPointerUp:
		state.Pointer = Vec2{ev.X, ev.Y}
		d.updateHover(state, ev)
		d.deliver(state, d.hit(ev.X, ev.Y, EventPointerUp), ev)
		pressed := state.Pressed
		state.Pressed = NoNode
		if pressed != NoNode && ev.Button == state.PressedButton && d.hit(ev.X, ev.Y, EventClick) == pressed {
			click := ev
			click.Type = EventClick
			d.deliver(state, pressed, click)
		}

	case EventKeyDown, EventKeyUp, EventChar:
		target := state.Focus
		if !d.store.Contains(target) {
			target = d.root
		}
		res := d.deliver(state, target, ev)
		if ev.Type == EventKeyDown && ev.Key == KeyTab && !res.Consumed {
			d.moveFocus(state, ev, ev.Modifiers&ModShift != 0)
		}

	default:
		// Derived events are injected as-is to their target.
		d.deliver(state, state.Focus, ev)
	}
}

// hit returns the topmost visible node containing (x, y) whose widget
// handles t, or NoNode.
func (d *Dispatcher) hit(x, y float64, t EventType) NodeID {
	for i := len(d.order) - 1; i >= 0; i-- {
		e := &d.order[i]
		if e.opacity <= 0 || !e.abs.Contains(x, y) {
			continue
		}
		if _, ok := handles(e.node.Widget, t); ok {
			return e.node.ID
		}
	}
	return NoNode
}

// focusTarget returns the nearest focusable ancestor-or-self of the topmost
// node under (x, y), or NoNode when that node has none.
func (d *Dispatcher) focusTarget(x, y float64) NodeID {
	for i := len(d.order) - 1; i >= 0; i-- {
		e := &d.order[i]
		if e.opacity <= 0 || !e.abs.Contains(x, y) {
			continue
		}
		for n := e.node; n != nil; n = d.store.lookup(n.Parent) {
			if isFocusable(n.Widget) {
				return n.ID
			}
		}
		return NoNode
	}
	return NoNode
}

func (d *Dispatcher) updateHover(state *UIState, ev Event) {
	h := d.hit(ev.X, ev.Y, EventPointerEnter)
	if h == state.Hover {
		return
	}
	old := state.Hover
	state.Hover = h
	if d.store.Contains(old) {
		leave := ev
		leave.Type = EventPointerLeave
		d.deliver(state, old, leave)
	}
	if h != NoNode {
		enter := ev
		enter.Type = EventPointerEnter
		d.deliver(state, h, enter)
	}
}

// setFocus moves focus to id and delivers Blur and Focus events.
func (d *Dispatcher) setFocus(state *UIState, id NodeID, cause Event) {
	if id == state.Focus {
		return
	}
	old := state.Focus
	state.Focus = id
	if d.store.Contains(old) {
		blur := cause
		blur.Type = EventBlur
		d.deliver(state, old, blur)
	}
	if id != NoNode {
		focus := cause
		focus.Type = EventFocus
		d.deliver(state, id, focus)
	}
}

// moveFocus advances focus to the next (or previous) focusable node in tree
// order, wrapping around.
func (d *Dispatcher) moveFocus(state *UIState, cause Event, backward bool) {
	var focusables []NodeID
	d.store.Walk(d.root, func(n *Node) bool {
		if n.Style.Hidden {
			return false
		}
		if isFocusable(n.Widget) {
			focusables = append(focusables, n.ID)
		}
		return true
	})
	if len(focusables) == 0 {
		return
	}
	cur := -1
	for i, id := range focusables {
		if id == state.Focus {
			cur = i
			break
		}
	}
	var next int
	switch {
	case cur < 0 && backward:
		next = len(focusables) - 1
	case cur < 0:
		next = 0
	case backward:
		next = (cur - 1 + len(focusables)) % len(focusables)
	default:
		next = (cur + 1) % len(focusables)
	}
	d.setFocus(state, focusables[next], cause)
}

// deliver runs scene handlers and then the node handlers from target up
// through interested ancestors.
func (d *Dispatcher) deliver(state *UIState, target NodeID, ev Event) DispatchResult {
	res := DispatchResult{Event: ev, Target: target}
	ctx := &EventContext{Event: ev, Target: target, State: state, store: d.store}

	for _, h := range d.handlers.byType[ev.Type] {
		d.bind(ctx, target)
		if h.fn(ctx) == Consumed {
			res.Consumed = true
		}
	}

	for id := target; !res.Consumed && id != NoNode; {
		n := d.store.lookup(id)
		if n == nil {
			break
		}
		if h, ok := handles(n.Widget, ev.Type); ok {
			d.bind(ctx, id)
			r := h.HandleEvent(ctx)
			res.Path = append(res.Path, id)
			d.emitInteraction(ctx, n)
			if r == Consumed {
				res.Consumed = true
			}
		}
		if !ev.Type.bubbles() {
			break
		}
		id = n.Parent
	}

	d.results = append(d.results, res)
	if ctx.setFocus {
		d.setFocus(state, ctx.focus, ev)
	}
	return res
}

// bind points ctx at node id.
func (d *Dispatcher) bind(ctx *EventContext, id NodeID) {
	ctx.Node = id
	ctx.Bounds = Rect{}
	if i, ok := d.byID[id]; ok {
		ctx.Bounds = d.order[i].abs
	}
	ctx.LocalX = ctx.Event.X - ctx.Bounds.X
	ctx.LocalY = ctx.Event.Y - ctx.Bounds.Y
}

func (d *Dispatcher) emitInteraction(ctx *EventContext, n *Node) {
	if d.entities == nil || n.EntityID == 0 {
		return
	}
	d.entities.EmitEvent(InteractionEvent{
		Type:      ctx.Event.Type,
		EntityID:  n.EntityID,
		Node:      n.ID,
		GlobalX:   ctx.Event.X,
		GlobalY:   ctx.Event.Y,
		LocalX:    ctx.LocalX,
		LocalY:    ctx.LocalY,
		Button:    ctx.Event.Button,
		Key:       ctx.Event.Key,
		Char:      ctx.Event.Char,
		Modifiers: ctx.Event.Modifiers,
	})
}
