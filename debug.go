package bramble

import (
	"fmt"
	"os"
	"time"
)

// frameStats holds per-frame timing and work counters.
// Only printed when the UI is in debug mode.
type frameStats struct {
	diffTime     time.Duration
	layoutTime   time.Duration
	dispatchTime time.Duration
	extractTime  time.Duration

	inserts, updates, removes, moves int
	mismatches, duplicates           int
	stale                            bool

	layout  LayoutStats
	extract ExtractStats
	events  int
}

func (s frameStats) total() time.Duration {
	return s.diffTime + s.layoutTime + s.dispatchTime + s.extractTime
}

// debugLog prints frame stats to stderr.
func (u *UI) debugLog(stats frameStats) {
	if !u.cfg.Debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[bramble] diff: %v | layout: %v | dispatch: %v | extract: %v | total: %v\n",
		stats.diffTime, stats.layoutTime, stats.dispatchTime, stats.extractTime, stats.total())
	_, _ = fmt.Fprintf(os.Stderr,
		"[bramble] ops: +%d ~%d -%d >%d | kind mismatches: %d | duplicate keys: %d | stale: %t\n",
		stats.inserts, stats.updates, stats.removes, stats.moves,
		stats.mismatches, stats.duplicates, stats.stale)
	_, _ = fmt.Fprintf(os.Stderr,
		"[bramble] layout measured: %d | placed: %d | cached: %d | passes: %d | events: %d | %v\n",
		stats.layout.Measured, stats.layout.Placed, stats.layout.Cached, stats.layout.Passes,
		stats.events, stats.extract)
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(s *Store, n *Node) {
	depth := 0
	for p := n; p != nil; p = s.lookup(p.Parent) {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[bramble] warning: tree depth %d exceeds %d (%v, %s)\n",
			depth, debugMaxTreeDepth, n.ID, n.Kind())
	}
}

// debugCheckChildCount warns on stderr if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[bramble] warning: %v (%s) has %d children (threshold %d)\n",
			n.ID, n.Kind(), len(n.children), debugMaxChildCount)
	}
}
