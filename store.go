package bramble

import "fmt"

// NodeID addresses a node in a Store. Index is the arena slot and Gen the
// slot's generation when the node was created, so an ID kept past its node's
// removal never resolves to the slot's next occupant.
type NodeID struct {
	Index uint32
	Gen   uint32
}

// NoNode is the zero NodeID. It never refers to a node.
var NoNode NodeID

// IsValid reports whether id could refer to a node. It does not check that
// the node is still alive; use Store.Contains for that.
func (id NodeID) IsValid() bool {
	return id.Gen != 0
}

func (id NodeID) String() string {
	if !id.IsValid() {
		return "node(none)"
	}
	return fmt.Sprintf("node(%d/%d)", id.Index, id.Gen)
}

// Layout is a node's computed box. Rect is relative to the parent's content
// box; Content is the node's own content box relative to Rect's origin.
type Layout struct {
	Rect    Rect
	Content Rect
}

// Node is one committed widget in the tree.
type Node struct {
	ID       NodeID
	Widget   Widget
	Style    Style
	Key      string
	EntityID uint32
	Parent   NodeID

	// Layout is written by Compute.
	Layout Layout

	// Opacity and Offset are runtime modifiers that survive re-declaration.
	// Tweens drive them; they affect paint and hit testing but not layout.
	Opacity float64
	Offset  Vec2

	children []NodeID

	dirty           bool // node must be measured and placed again
	descendantDirty bool // some descendant is dirty
	layoutCache     layoutCache
}

// Children returns the node's ordered child IDs. The slice is owned by the
// store and must not be modified.
func (n *Node) Children() []NodeID {
	return n.children
}

// Dirty reports whether the node awaits layout.
func (n *Node) Dirty() bool {
	return n.dirty
}

// Kind returns the kind of the node's widget.
func (n *Node) Kind() Kind {
	return n.Widget.Kind()
}

type slot struct {
	gen  uint32
	node *Node
}

// Store is the arena holding every committed node. Slots freed by Remove are
// not reused until the next Commit, so IDs referenced by this frame's
// primitives and events never alias a new node.
type Store struct {
	slots   []slot
	free    []uint32
	pending []uint32
	version uint64
	live    int
	debug   bool

	layoutFrame uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	// Slot 0 is reserved; no live node has index 0.
	return &Store{slots: make([]slot, 1, 64)}
}

// Version returns a counter that changes on every structural mutation and
// every Commit. Plans record it to detect that they went stale.
func (s *Store) Version() uint64 {
	return s.version
}

// Len returns the number of live nodes.
func (s *Store) Len() int {
	return s.live
}

// Contains reports whether id refers to a live node.
func (s *Store) Contains(id NodeID) bool {
	return s.lookup(id) != nil
}

func (s *Store) lookup(id NodeID) *Node {
	if id.Gen == 0 || int(id.Index) >= len(s.slots) {
		return nil
	}
	sl := &s.slots[id.Index]
	if sl.node == nil || sl.gen != id.Gen {
		return nil
	}
	return sl.node
}

// Get returns the node for id. A removed or unknown id fails with an error
// wrapping ErrNotFound.
func (s *Store) Get(id NodeID) (*Node, error) {
	n := s.lookup(id)
	if n == nil {
		return nil, notFound("get", id)
	}
	return n, nil
}

// MustGet returns the node for id and panics if it does not exist.
// Referencing a stale ID is a caller bug that would corrupt the tree.
func (s *Store) MustGet(id NodeID) *Node {
	n := s.lookup(id)
	if n == nil {
		panic(fmt.Sprintf("bramble: %v not found", id))
	}
	return n
}

// Parent returns the parent of id, or NoNode for a root.
func (s *Store) Parent(id NodeID) (NodeID, error) {
	n := s.lookup(id)
	if n == nil {
		return NoNode, notFound("parent", id)
	}
	return n.Parent, nil
}

// Children returns the ordered children of id. The slice is owned by the
// store and must not be modified.
func (s *Store) Children(id NodeID) ([]NodeID, error) {
	n := s.lookup(id)
	if n == nil {
		return nil, notFound("children", id)
	}
	return n.children, nil
}

// Insert appends a new node under parent and returns its ID. Passing NoNode
// as parent creates a detached root.
func (s *Store) Insert(parent NodeID, w Widget, style Style, key string) NodeID {
	p := s.lookup(parent)
	index := 0
	if p != nil {
		index = len(p.children)
	}
	return s.InsertAt(parent, index, w, style, key)
}

// InsertAt inserts a new node as the index-th child of parent.
// It panics if parent is not NoNode and not live, or if index is out of range.
func (s *Store) InsertAt(parent NodeID, index int, w Widget, style Style, key string) NodeID {
	var p *Node
	if parent != NoNode {
		p = s.lookup(parent)
		if p == nil {
			panic(fmt.Sprintf("bramble: insert under missing parent %v", parent))
		}
		if index < 0 || index > len(p.children) {
			panic("bramble: child index out of range")
		}
	}
	n := s.create(parent, w, style, key)
	if p != nil {
		p.children = append(p.children, NoNode)
		copy(p.children[index+1:], p.children[index:])
		p.children[index] = n.ID
		s.markDirty(parent)
		if s.debug {
			debugCheckChildCount(p)
			debugCheckTreeDepth(s, n)
		}
	}
	return n.ID
}

// create allocates a dirty node whose parent link is set but which is not
// yet listed among the parent's children.
func (s *Store) create(parent NodeID, w Widget, style Style, key string) *Node {
	if w == nil {
		w = Panel{}
	}
	id := s.alloc()
	n := &Node{
		ID:      id,
		Widget:  w,
		Style:   style,
		Key:     key,
		Parent:  parent,
		Opacity: 1,
		dirty:   true,
	}
	s.slots[id.Index].node = n
	s.live++
	s.version++
	return n
}

func (s *Store) alloc() NodeID {
	if k := len(s.free); k > 0 {
		idx := s.free[k-1]
		s.free = s.free[:k-1]
		sl := &s.slots[idx]
		sl.gen++
		if sl.gen == 0 {
			sl.gen = 1
		}
		return NodeID{Index: idx, Gen: sl.gen}
	}
	s.slots = append(s.slots, slot{gen: 1})
	return NodeID{Index: uint32(len(s.slots) - 1), Gen: 1}
}

// Remove deletes id and its entire subtree and detaches it from its parent.
// The parent and its ancestors are marked dirty.
func (s *Store) Remove(id NodeID) error {
	_, err := s.remove(id, nil)
	return err
}

// remove deletes the subtree at id and appends every freed ID to removed.
func (s *Store) remove(id NodeID, removed []NodeID) ([]NodeID, error) {
	n := s.lookup(id)
	if n == nil {
		return removed, notFound("remove", id)
	}
	if p := s.lookup(n.Parent); p != nil {
		p.children = removeID(p.children, id)
		s.markDirty(n.Parent)
	}
	removed = s.freeSubtree(n, removed)
	s.version++
	return removed, nil
}

func (s *Store) freeSubtree(n *Node, removed []NodeID) []NodeID {
	for _, c := range n.children {
		if cn := s.lookup(c); cn != nil {
			removed = s.freeSubtree(cn, removed)
		}
	}
	id := n.ID
	s.slots[id.Index].node = nil
	s.pending = append(s.pending, id.Index)
	s.live--
	n.children = nil
	return append(removed, id)
}

func removeID(ids []NodeID, id NodeID) []NodeID {
	for i, c := range ids {
		if c == id {
			copy(ids[i:], ids[i+1:])
			ids[len(ids)-1] = NoNode
			return ids[:len(ids)-1]
		}
	}
	return ids
}

// Commit ends the frame. Slots freed since the previous Commit become
// available for reuse, and the store version advances.
func (s *Store) Commit() {
	s.free = append(s.free, s.pending...)
	s.pending = s.pending[:0]
	s.version++
}

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (s *Store) Walk(id NodeID, fn func(n *Node) bool) {
	n := s.lookup(id)
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		s.Walk(c, fn)
	}
}

// ancestorOf reports whether a is an ancestor of (or equal to) b.
func (s *Store) ancestorOf(a, b NodeID) bool {
	for id := b; id != NoNode; {
		if id == a {
			return true
		}
		n := s.lookup(id)
		if n == nil {
			return false
		}
		id = n.Parent
	}
	return false
}

// markDirty marks id and all of its ancestors for layout.
func (s *Store) markDirty(id NodeID) {
	for n := s.lookup(id); n != nil; n = s.lookup(n.Parent) {
		n.dirty = true
		n.descendantDirty = true
	}
}

// markOrderDirty marks id for layout without invalidating its ancestors'
// sizes. Used when only the order of id's children changed.
func (s *Store) markOrderDirty(id NodeID) {
	n := s.lookup(id)
	if n == nil {
		return
	}
	n.dirty = true
	for p := s.lookup(n.Parent); p != nil; p = s.lookup(p.Parent) {
		p.descendantDirty = true
	}
}

// AbsoluteRect returns the screen-space rectangle of id computed from the
// cached layouts and Offset modifiers of id and its ancestors.
func (s *Store) AbsoluteRect(id NodeID) (Rect, error) {
	n := s.lookup(id)
	if n == nil {
		return Rect{}, notFound("absolute rect", id)
	}
	r := n.Layout.Rect.Translate(n.Offset.X, n.Offset.Y)
	for p := s.lookup(n.Parent); p != nil; p = s.lookup(p.Parent) {
		r = r.Translate(p.Layout.Rect.X+p.Layout.Content.X+p.Offset.X,
			p.Layout.Rect.Y+p.Layout.Content.Y+p.Offset.Y)
	}
	return r, nil
}
