package bramble

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 2 runtime modifiers of one node simultaneously.
// Create one via TweenOpacity or TweenOffset and call Update(dt) each frame,
// or hand it to UI.Animate. The node is looked up by ID on every step, so
// identity preserved across re-declarations keeps the tween running, and the
// group stops as soon as the node is removed.
type TweenGroup struct {
	tweens [2]*gween.Tween
	count  int
	fields [2]func(n *Node) *float64
	store  *Store
	target NodeID
	Done   bool
}

// Target returns the animated node.
func (g *TweenGroup) Target() NodeID {
	return g.target
}

// Update advances all tweens by dt seconds and writes values to the target
// node. If the node no longer exists, Done is set and no writes occur.
// Modifiers affect paint only, so the node is not marked dirty.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	n := g.store.lookup(g.target)
	if n == nil {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i](n) = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// TweenOpacity creates a TweenGroup that animates the node's Opacity
// modifier from its current value to to.
func TweenOpacity(store *Store, id NodeID, to float64, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	n, err := store.Get(id)
	if err != nil {
		return nil, err
	}
	g := &TweenGroup{count: 1, store: store, target: id}
	g.tweens[0] = gween.New(float32(n.Opacity), float32(to), duration, fn)
	g.fields[0] = func(n *Node) *float64 { return &n.Opacity }
	return g, nil
}

// TweenOffset creates a TweenGroup that animates the node's Offset modifier
// from its current value to to.
func TweenOffset(store *Store, id NodeID, to Vec2, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	n, err := store.Get(id)
	if err != nil {
		return nil, err
	}
	g := &TweenGroup{count: 2, store: store, target: id}
	g.tweens[0] = gween.New(float32(n.Offset.X), float32(to.X), duration, fn)
	g.tweens[1] = gween.New(float32(n.Offset.Y), float32(to.Y), duration, fn)
	g.fields[0] = func(n *Node) *float64 { return &n.Offset.X }
	g.fields[1] = func(n *Node) *float64 { return &n.Offset.Y }
	return g, nil
}
