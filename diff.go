package bramble

import (
	"fmt"
	"reflect"
	"sort"
)

// OpKind identifies a plan operation.
type OpKind uint8

const (
	OpInsert OpKind = iota // create a declared subtree under Parent at Index
	OpUpdate               // change a matched node's widget, style, key or entity
	OpRemove               // delete Node and its subtree
	OpMove                 // reposition a matched child among its siblings
)

func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpRemove:
		return "remove"
	case OpMove:
		return "move"
	}
	return "unknown"
}

// Props are the declared properties of a node that an update replaces.
type Props struct {
	Widget Widget
	Style  Style
	Key    string
	Entity uint32
}

// Op is one reconciliation step.
type Op struct {
	Kind OpKind

	// Node is the affected committed node for Update, Remove and Move.
	Node NodeID

	// Parent is the parent for Insert and Move. An Insert with NoNode
	// parent replaces the root.
	Parent NodeID

	// Index is the final position among Parent's children for Insert and
	// Move; From is a Move's position in the previous child list.
	Index int
	From  int

	// Element is the declared subtree an Insert creates.
	Element *Element

	// Old and New are an Update's properties before and after.
	Old, New Props
}

// childSlot is one entry of a parent's final child order: either a matched
// node or a subtree to insert.
type childSlot struct {
	id     NodeID
	insert *Element
}

type childOrder struct {
	parent   NodeID
	slots    []childSlot
	inserted bool
	moved    bool
}

type rebind struct {
	id NodeID
	w  Widget
}

// Plan is the result of Diff: the operations that turn the committed tree
// into the declared one. A plan is built against one store version and is
// applied at most once.
type Plan struct {
	version  uint64
	root     NodeID
	rootDecl *Element

	ops     []Op
	rebinds []rebind
	orders  []childOrder

	mismatches int
	duplicates int
}

// Ops returns the plan's operations in depth-first order.
func (p *Plan) Ops() []Op {
	return p.ops
}

// Empty reports whether applying the plan would change nothing observable.
func (p *Plan) Empty() bool {
	return len(p.ops) == 0
}

// Counts returns the number of operations of each kind.
func (p *Plan) Counts() (inserts, updates, removes, moves int) {
	for i := range p.ops {
		switch p.ops[i].Kind {
		case OpInsert:
			inserts++
		case OpUpdate:
			updates++
		case OpRemove:
			removes++
		case OpMove:
			moves++
		}
	}
	return
}

// KindMismatches returns how many nodes changed widget kind at their key or
// position and were replaced by a remove and an insert.
func (p *Plan) KindMismatches() int {
	return p.mismatches
}

// DuplicateKeys returns how many declared elements repeated a sibling's key.
func (p *Plan) DuplicateKeys() int {
	return p.duplicates
}

// Diff reconciles the declared tree decl against the committed tree at root
// in store. It never mutates the store. Children are matched per parent:
// keyed elements by key, then unkeyed elements by position among unkeyed
// siblings of the same kind. Repeated keys match previous occurrences in
// order. decl must not be modified until the plan has been applied.
func Diff(store *Store, root NodeID, decl *Element) *Plan {
	p := &Plan{version: store.Version(), root: root}
	d := differ{store: store, plan: p}

	rn := store.lookup(root)
	switch {
	case rn == nil:
		p.insertRoot(decl)
	case rn.Kind() != decl.kind():
		p.mismatches++
		p.ops = append(p.ops, Op{Kind: OpRemove, Node: root})
		p.insertRoot(decl)
	default:
		d.matchNode(rn, decl)
	}
	return p
}

func (p *Plan) insertRoot(decl *Element) {
	p.rootDecl = decl
	p.ops = append(p.ops, Op{Kind: OpInsert, Parent: NoNode, Element: decl})
}

type differ struct {
	store *Store
	plan  *Plan
}

func declaredProps(el *Element) Props {
	return Props{Widget: el.widget(), Style: el.style(), Key: el.Key, Entity: el.Entity}
}

func nodeProps(n *Node) Props {
	return Props{Widget: n.Widget, Style: n.Style, Key: n.Key, Entity: n.EntityID}
}

// widgetEqual reports whether the declared widget next equals the committed
// widget prev.
func widgetEqual(next, prev Widget) bool {
	if e, ok := next.(Equaler); ok {
		return e.Equal(prev)
	}
	return reflect.DeepEqual(next, prev)
}

// matchNode diffs a matched pair and recurses into its children. An
// unchanged node is rebound to the fresh widget value so handler closures
// stay current without dirtying layout.
func (d *differ) matchNode(n *Node, el *Element) {
	next := declaredProps(el)
	if !widgetEqual(next.Widget, n.Widget) || next.Style != n.Style ||
		next.Key != n.Key || next.Entity != n.EntityID {
		d.plan.ops = append(d.plan.ops, Op{Kind: OpUpdate, Node: n.ID, Old: nodeProps(n), New: next})
	} else {
		d.plan.rebinds = append(d.plan.rebinds, rebind{id: n.ID, w: next.Widget})
	}
	d.diffChildren(n, el.Children)
}

func (d *differ) diffChildren(n *Node, decls []Element) {
	prev := n.children
	if len(prev) == 0 && len(decls) == 0 {
		return
	}

	var keyed map[string][]int
	var unkeyed map[Kind][]int
	var positional []int
	for i, id := range prev {
		c := d.store.lookup(id)
		if c.Key != "" {
			if keyed == nil {
				keyed = make(map[string][]int)
			}
			keyed[c.Key] = append(keyed[c.Key], i)
			continue
		}
		if unkeyed == nil {
			unkeyed = make(map[Kind][]int)
		}
		k := c.Kind()
		unkeyed[k] = append(unkeyed[k], i)
		positional = append(positional, i)
	}

	used := make([]bool, len(prev))
	match := make([]int, len(decls))
	var seen map[string]bool
	var replaced []int
	rank := 0
	for i := range decls {
		el := &decls[i]
		pi := -1
		if el.Key != "" {
			if seen == nil {
				seen = make(map[string]bool)
			}
			if seen[el.Key] {
				d.plan.duplicates++
			}
			seen[el.Key] = true
			if q := keyed[el.Key]; len(q) > 0 {
				pi, keyed[el.Key] = q[0], q[1:]
				if d.store.lookup(prev[pi]).Kind() != el.kind() {
					d.plan.mismatches++
					pi = -1
				}
			}
		} else {
			k := el.kind()
			if q := unkeyed[k]; len(q) > 0 {
				pi, unkeyed[k] = q[0], q[1:]
			} else if rank < len(positional) {
				replaced = append(replaced, positional[rank])
			}
			rank++
		}
		match[i] = pi
		if pi >= 0 {
			used[pi] = true
		}
	}
	// An unmatched unkeyed element whose positional counterpart is left
	// unmatched too is a kind change at that position.
	for _, pi := range replaced {
		if !used[pi] {
			d.plan.mismatches++
		}
	}

	order := childOrder{parent: n.ID, slots: make([]childSlot, len(decls))}
	removed := false
	for i, id := range prev {
		if !used[i] {
			d.plan.ops = append(d.plan.ops, Op{Kind: OpRemove, Node: id})
			removed = true
		}
	}

	var seq []int
	for _, pi := range match {
		if pi >= 0 {
			seq = append(seq, pi)
		}
	}
	stay := longestIncreasing(seq)

	k := 0
	for i := range decls {
		el := &decls[i]
		pi := match[i]
		if pi < 0 {
			d.plan.ops = append(d.plan.ops, Op{Kind: OpInsert, Parent: n.ID, Index: i, Element: el})
			order.slots[i] = childSlot{insert: el}
			order.inserted = true
			continue
		}
		id := prev[pi]
		order.slots[i] = childSlot{id: id}
		if !stay[k] {
			d.plan.ops = append(d.plan.ops, Op{Kind: OpMove, Node: id, Parent: n.ID, Index: i, From: pi})
			order.moved = true
		}
		k++
		d.matchNode(d.store.lookup(id), el)
	}

	if removed || order.inserted || order.moved {
		d.plan.orders = append(d.plan.orders, order)
	}
}

// longestIncreasing marks one longest strictly increasing subsequence of seq.
// Elements outside it are the minimum set that must move to reach seq's
// order from sorted order.
func longestIncreasing(seq []int) []bool {
	keep := make([]bool, len(seq))
	if len(seq) == 0 {
		return keep
	}
	tails := make([]int, 0, len(seq))
	prev := make([]int, len(seq))
	for i, v := range seq {
		j := sort.Search(len(tails), func(t int) bool { return seq[tails[t]] >= v })
		prev[i] = -1
		if j > 0 {
			prev[i] = tails[j-1]
		}
		if j == len(tails) {
			tails = append(tails, i)
		} else {
			tails[j] = i
		}
	}
	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		keep[i] = true
	}
	return keep
}

// Applied summarizes an applied plan.
type Applied struct {
	Root     NodeID
	Inserted []NodeID
	Removed  []NodeID
	Updated  int
	Moved    int
}

// Apply executes the plan against store. It fails with ErrStalePlan, leaving
// the store untouched, if the store changed since Diff. Otherwise every
// operation is applied before Apply returns: removals, then updates, then
// the rebuilt child order of every touched parent with inserted subtrees
// created in place. A plan that names a node missing from a store at the
// same version is corrupt, and Apply panics.
//
// Inserts and updates mark the node and its ancestors dirty, removals mark
// the former parent and its ancestors, and a pure reorder marks only the
// parent.
func (p *Plan) Apply(store *Store) (Applied, error) {
	if store.Version() != p.version {
		return Applied{}, ErrStalePlan
	}
	out := Applied{Root: p.root}

	for i := range p.ops {
		op := &p.ops[i]
		switch op.Kind {
		case OpRemove:
			var err error
			if out.Removed, err = store.remove(op.Node, out.Removed); err != nil {
				panic(fmt.Sprintf("bramble: plan removes missing node: %v", err))
			}
		case OpMove:
			out.Moved++
		}
	}
	for i := range p.ops {
		op := &p.ops[i]
		if op.Kind != OpUpdate {
			continue
		}
		n := store.MustGet(op.Node)
		n.Widget = op.New.Widget
		n.Style = op.New.Style
		n.Key = op.New.Key
		n.EntityID = op.New.Entity
		store.markDirty(n.ID)
		out.Updated++
	}
	for _, r := range p.rebinds {
		if n := store.lookup(r.id); n != nil {
			n.Widget = r.w
		}
	}

	if p.rootDecl != nil {
		out.Root = insertTree(store, NoNode, p.rootDecl, &out.Inserted)
	}
	for _, o := range p.orders {
		pn := store.MustGet(o.parent)
		children := make([]NodeID, len(o.slots))
		for i, s := range o.slots {
			if s.insert != nil {
				children[i] = insertTree(store, o.parent, s.insert, &out.Inserted)
			} else {
				children[i] = s.id
			}
		}
		pn.children = children
		if o.inserted {
			store.markDirty(o.parent)
		} else {
			store.markOrderDirty(o.parent)
		}
		if store.debug {
			debugCheckChildCount(pn)
		}
	}

	if len(p.ops) > 0 {
		store.version++
	}
	return out, nil
}

// insertTree creates el and its descendants under parent and returns the
// new subtree root. The caller links it into parent's child list.
func insertTree(store *Store, parent NodeID, el *Element, inserted *[]NodeID) NodeID {
	props := declaredProps(el)
	n := store.create(parent, props.Widget, props.Style, props.Key)
	n.EntityID = props.Entity
	*inserted = append(*inserted, n.ID)
	if len(el.Children) > 0 {
		n.children = make([]NodeID, len(el.Children))
		for i := range el.Children {
			n.children[i] = insertTree(store, n.ID, &el.Children[i], inserted)
		}
	}
	if store.debug {
		debugCheckChildCount(n)
		debugCheckTreeDepth(store, n)
	}
	return n.ID
}
