package bramble

// paintEntry is one visible node in paint order with its absolute geometry.
type paintEntry struct {
	node    *Node
	abs     Rect // absolute bounds, Offset applied
	content Rect // absolute content box
	z       int  // effective z-index
	order   int  // pre-order position
	opacity float64
	end     int // pre-order position one past the node's last descendant
}

// collectPreorder appends the visible subtree at root to dst in pre-order.
// Hidden nodes and their descendants are skipped.
func collectPreorder(store *Store, root NodeID, dst []paintEntry) []paintEntry {
	n := store.lookup(root)
	if n == nil {
		return dst
	}
	return appendEntries(store, n, 0, 0, 0, 1, dst)
}

func appendEntries(store *Store, n *Node, originX, originY float64, z int, opacity float64, dst []paintEntry) []paintEntry {
	if n.Style.Hidden {
		return dst
	}
	if n.Style.ZIndex != 0 {
		z = n.Style.ZIndex
	}
	opacity *= n.Opacity
	abs := n.Layout.Rect.Translate(originX+n.Offset.X, originY+n.Offset.Y)
	content := n.Layout.Content.Translate(abs.X, abs.Y)

	idx := len(dst)
	dst = append(dst, paintEntry{
		node:    n,
		abs:     abs,
		content: content,
		z:       z,
		order:   idx,
		opacity: opacity,
	})
	for _, c := range n.children {
		if cn := store.lookup(c); cn != nil {
			dst = appendEntries(store, cn, content.X, content.Y, z, opacity, dst)
		}
	}
	dst[idx].end = len(dst)
	return dst
}

// paintLessOrEqual orders by effective z-index, then by tree pre-order.
func paintLessOrEqual(a, b *paintEntry) bool {
	if a.z != b.z {
		return a.z < b.z
	}
	return a.order <= b.order
}

// mergeSort stably sorts items in place using buf as scratch space and
// returns buf, grown if needed, for reuse. Bottom-up merge sort: zero
// allocations once buf reaches the high-water mark.
func mergeSort[T any](items, buf []T, lessOrEqual func(a, b *T) bool) []T {
	n := len(items)
	if n <= 1 {
		return buf
	}
	if cap(buf) < n {
		buf = make([]T, n)
	}
	buf = buf[:n]

	a, b := items, buf
	swapped := false
	for width := 1; width < n; width *= 2 {
		for lo := 0; lo < n; lo += 2 * width {
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi, lessOrEqual)
		}
		a, b = b, a
		swapped = !swapped
	}
	if swapped {
		copy(items, buf)
	}
	return buf
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun[T any](src, dst []T, lo, mid, hi int, lessOrEqual func(a, b *T) bool) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if lessOrEqual(&src[i], &src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	k += copy(dst[k:], src[i:mid])
	copy(dst[k:], src[j:hi])
}
