package bramble

import (
	"errors"
	"strings"
	"testing"
)

// --- Rect.Contains ---

func TestRectContains(t *testing.T) {
	r := Rect{10, 20, 100, 50}
	tests := []struct {
		name   string
		x, y   float64
		expect bool
	}{
		{"inside", 50, 40, true},
		{"top-left corner", 10, 20, true},
		{"bottom-right corner", 110, 70, true},
		{"left edge", 10, 40, true},
		{"outside left", 9, 40, false},
		{"outside right", 111, 40, false},
		{"outside above", 50, 19, false},
		{"outside below", 50, 71, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Contains(tt.x, tt.y)
			if got != tt.expect {
				t.Errorf("Rect%v.Contains(%v, %v) = %v, want %v", r, tt.x, tt.y, got, tt.expect)
			}
		})
	}
}

func TestRectEmptyAndTranslate(t *testing.T) {
	if !(Rect{Width: 0, Height: 10}).Empty() {
		t.Error("zero width rect should be empty")
	}
	if (Rect{Width: 1, Height: 1}).Empty() {
		t.Error("1x1 rect should not be empty")
	}
	got := Rect{1, 2, 3, 4}.Translate(10, 20)
	if want := (Rect{11, 22, 3, 4}); got != want {
		t.Errorf("Translate = %v, want %v", got, want)
	}
}

func TestColorMulAlpha(t *testing.T) {
	c := Color{1, 0.5, 0.25, 0.8}.MulAlpha(0.5)
	if !almostEqual(c.A, 0.4) {
		t.Errorf("A = %v, want 0.4", c.A)
	}
	if c.R != 1 || c.G != 0.5 || c.B != 0.25 {
		t.Errorf("RGB changed: %v", c)
	}
	if (Color{1, 1, 1, 0}).Visible() {
		t.Error("zero alpha should not be visible")
	}
}

// --- Units ---

func TestUnitResolve(t *testing.T) {
	tests := []struct {
		name   string
		u      Unit
		parent float64
		want   float64
	}{
		{"auto", Auto, 100, 0},
		{"pixels", Pixels(30), 100, 30},
		{"negative pixels clamp", Pixels(-5), 100, 0},
		{"percent", Percent(25), 200, 50},
		{"stretch", Stretch(1), 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.u.resolve(tt.parent); got != tt.want {
				t.Errorf("resolve(%v) = %v, want %v", tt.parent, got, tt.want)
			}
		})
	}
}

// --- Errors ---

func TestNodeErrorWrapsSentinel(t *testing.T) {
	s := NewStore()
	_, err := s.Get(NodeID{Index: 3, Gen: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("errors.Is(err, ErrNotFound) = false for %v", err)
	}
	var ne *NodeError
	if !errors.As(err, &ne) {
		t.Fatalf("errors.As(*NodeError) failed for %T", err)
	}
	if ne.Op != "get" {
		t.Errorf("Op = %q, want %q", ne.Op, "get")
	}
	if !strings.HasPrefix(err.Error(), "bramble: ") {
		t.Errorf("Error() = %q, want bramble: prefix", err.Error())
	}
}

func TestNodeIDString(t *testing.T) {
	if got := NoNode.String(); got != "node(none)" {
		t.Errorf("NoNode.String() = %q", got)
	}
	if got := (NodeID{Index: 4, Gen: 2}).String(); got != "node(4/2)" {
		t.Errorf("String() = %q, want node(4/2)", got)
	}
}

func TestEventTypeString(t *testing.T) {
	if got := EventClick.String(); got != "click" {
		t.Errorf("EventClick.String() = %q", got)
	}
	if got := EventType(200).String(); got != "unknown" {
		t.Errorf("out of range String() = %q", got)
	}
	if EventPointerEnter.bubbles() || EventFocus.bubbles() {
		t.Error("enter and focus must not bubble")
	}
	if !EventClick.bubbles() || !EventChar.bubbles() {
		t.Error("click and char must bubble")
	}
}
