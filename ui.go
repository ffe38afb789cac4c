package bramble

import (
	"errors"
	"log"
	"time"

	"github.com/tanema/gween/ease"
)

// UI drives the per-frame pipeline over one committed tree: reconcile the
// latest declaration, lay out, dispatch input, extract primitives, commit.
type UI struct {
	cfg    Config
	store  *Store
	root   NodeID
	assets Assets
	state  UIState

	dispatcher *Dispatcher
	extractor  *Extractor

	viewport Size
	pending  *Element
	tweens   []*TweenGroup
	results  []DispatchResult
	stats    frameStats
}

// New creates a UI resolving assets through assets (which may be nil) and
// configured by cfg. Zero fields of cfg take their defaults.
func New(assets Assets, cfg Config) *UI {
	if assets == nil {
		assets = noAssets{}
	}
	u := &UI{
		cfg:        cfg.normalized(),
		store:      NewStore(),
		assets:     assets,
		dispatcher: NewDispatcher(),
		extractor:  NewExtractor(),
	}
	u.store.debug = u.cfg.Debug
	return u
}

// Store returns the committed node store.
func (u *UI) Store() *Store {
	return u.store
}

// Root returns the committed root node, or NoNode before the first frame.
func (u *UI) Root() NodeID {
	return u.root
}

// State returns the interaction state.
func (u *UI) State() *UIState {
	return &u.state
}

// Assets returns the asset service the UI resolves handles through.
func (u *UI) Assets() Assets {
	return u.assets
}

// Config returns the active configuration.
func (u *UI) Config() Config {
	return u.cfg
}

// SetViewport sets the space the root is laid out in.
func (u *UI) SetViewport(width, height float64) {
	u.viewport = Size{Width: max(0, width), Height: max(0, height)}
}

// Viewport returns the layout space.
func (u *UI) Viewport() Size {
	return u.viewport
}

// SetDebugMode enables or disables debug mode. When enabled, tree depth and
// child count warnings are printed and per-frame stats are logged to stderr.
func (u *UI) SetDebugMode(enabled bool) {
	u.cfg.Debug = enabled
	u.store.debug = enabled
}

// SetEntityStore sets the optional ECS bridge.
func (u *UI) SetEntityStore(es EntityStore) {
	u.dispatcher.SetEntityStore(es)
}

// OnEvent registers a scene-level handler. See Dispatcher.OnEvent.
func (u *UI) OnEvent(t EventType, fn func(ctx *EventContext) EventResult) CallbackHandle {
	return u.dispatcher.OnEvent(t, fn)
}

// Declare queues root as the tree the next Frame reconciles to. A later
// Declare before that Frame replaces it. Without a new declaration Frame
// keeps the committed tree.
func (u *UI) Declare(root Element) {
	u.pending = &root
}

// Results returns the dispatch results of the last frame.
func (u *UI) Results() []DispatchResult {
	return u.results
}

// LayoutStats returns the layout counters of the last frame.
func (u *UI) LayoutStats() LayoutStats {
	return u.stats.layout
}

// ExtractStats returns the extraction counters of the last frame.
func (u *UI) ExtractStats() ExtractStats {
	return u.stats.extract
}

// Frame runs one frame and returns its primitives in paint order. events are
// dispatched in order against the freshly laid-out tree. The returned slice
// is reused by the next Frame.
func (u *UI) Frame(events []Event) []Primitive {
	var stats frameStats
	var t0 time.Time

	if u.cfg.Debug {
		t0 = time.Now()
	}
	if u.pending != nil {
		u.reconcile(&stats)
	}
	if u.cfg.Debug {
		stats.diffTime = time.Since(t0)
		t0 = time.Now()
	}

	u.state.BeginFrame(u.store)
	stats.layout = Compute(u.store, u.root, u.viewport, LayoutOptions{
		Assets:          u.assets,
		MaxPasses:       u.cfg.MaxLayoutPasses,
		LineHeightScale: u.cfg.LineHeightScale,
	})

	if u.cfg.Debug {
		stats.layoutTime = time.Since(t0)
		t0 = time.Now()
	}

	u.results = u.dispatcher.DispatchAll(u.store, u.root, &u.state, events)
	stats.events = len(u.results)

	if u.cfg.Debug {
		stats.dispatchTime = time.Since(t0)
		t0 = time.Now()
	}

	prims := u.extractor.Extract(u.store, u.root, u.assets, ExtractOptions{
		State:           &u.state,
		LineHeightScale: u.cfg.LineHeightScale,
		Parallel:        u.cfg.ParallelExtract,
	})
	stats.extract = u.extractor.Stats

	if u.cfg.Debug {
		stats.extractTime = time.Since(t0)
	}

	u.store.Commit()
	u.stats = stats
	u.debugLog(stats)
	return prims
}

// reconcile diffs the pending declaration and applies it. A plan that went
// stale is discarded and rebuilt once against the current tree.
func (u *UI) reconcile(stats *frameStats) {
	decl := u.pending
	u.pending = nil

	plan := Diff(u.store, u.root, decl)
	applied, err := plan.Apply(u.store)
	if errors.Is(err, ErrStalePlan) {
		stats.stale = true
		plan = Diff(u.store, u.root, decl)
		applied, err = plan.Apply(u.store)
	}
	if err != nil {
		log.Printf("bramble: apply: %v", err)
		return
	}
	u.root = applied.Root
	stats.inserts, stats.updates, stats.removes, stats.moves = plan.Counts()
	stats.mismatches = plan.KindMismatches()
	stats.duplicates = plan.DuplicateKeys()

	if len(applied.Removed) > 0 {
		u.dropTweens()
	}
}

// dropTweens forgets tweens whose node is gone.
func (u *UI) dropTweens() {
	kept := u.tweens[:0]
	for _, g := range u.tweens {
		if u.store.Contains(g.Target()) {
			kept = append(kept, g)
		}
	}
	clear(u.tweens[len(kept):])
	u.tweens = kept
}

// Animate runs g on every Advance until it finishes or its node is removed.
func (u *UI) Animate(g *TweenGroup) {
	u.tweens = append(u.tweens, g)
}

// Animating returns the number of running tweens.
func (u *UI) Animating() int {
	return len(u.tweens)
}

// Advance steps every running tween by dt seconds.
func (u *UI) Advance(dt float32) {
	kept := u.tweens[:0]
	for _, g := range u.tweens {
		g.Update(dt)
		if !g.Done {
			kept = append(kept, g)
		}
	}
	clear(u.tweens[len(kept):])
	u.tweens = kept
}

// TweenOpacity starts animating id's opacity to to.
func (u *UI) TweenOpacity(id NodeID, to float64, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	g, err := TweenOpacity(u.store, id, to, duration, fn)
	if err != nil {
		return nil, err
	}
	u.Animate(g)
	return g, nil
}

// TweenOffset starts animating id's offset to to.
func (u *UI) TweenOffset(id NodeID, to Vec2, duration float32, fn ease.TweenFunc) (*TweenGroup, error) {
	g, err := TweenOffset(u.store, id, to, duration, fn)
	if err != nil {
		return nil, err
	}
	u.Animate(g)
	return g, nil
}

// Find follows a path of keys from the root through keyed children and
// returns the node it ends at, or NoNode. With no keys it returns the root.
func (u *UI) Find(keys ...string) NodeID {
	id := u.root
	if !u.store.Contains(id) {
		return NoNode
	}
	for _, k := range keys {
		next := NoNode
		for _, c := range u.store.lookup(id).children {
			if u.store.lookup(c).Key == k {
				next = c
				break
			}
		}
		if next == NoNode {
			return NoNode
		}
		id = next
	}
	return id
}
