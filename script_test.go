package bramble

import (
	"strings"
	"testing"
)

func loadTestScript(t *testing.T, src string) *InputScript {
	t.Helper()
	s, err := LoadInputScript([]byte(src))
	if err != nil {
		t.Fatalf("LoadInputScript: %v", err)
	}
	return s
}

func eventTypes(evs []Event) []EventType {
	out := make([]EventType, len(evs))
	for i, e := range evs {
		out[i] = e.Type
	}
	return out
}

func TestInputScriptClick(t *testing.T) {
	s := loadTestScript(t, `
steps:
  - {action: click, x: 10, y: 20}
`)
	if s.Frames() != 2 {
		t.Fatalf("Frames = %d, want 2", s.Frames())
	}
	press := s.Next()
	if got := eventTypes(press); len(got) != 2 || got[0] != EventPointerMove || got[1] != EventPointerDown {
		t.Fatalf("press frame = %v, want [move down]", got)
	}
	if press[1].X != 10 || press[1].Y != 20 || press[1].Button != MouseButtonLeft {
		t.Errorf("down = %+v, want (10, 20) left", press[1])
	}
	release := s.Next()
	if len(release) != 1 || release[0].Type != EventPointerUp {
		t.Fatalf("release frame = %v, want [up]", eventTypes(release))
	}
	if release[0].Time != ScriptFrameInterval {
		t.Errorf("release time = %v, want %v", release[0].Time, ScriptFrameInterval)
	}
	if !s.Done() {
		t.Error("script should be done")
	}
	if s.Next() != nil {
		t.Error("Next after done should be nil")
	}
}

func TestInputScriptKeysAndText(t *testing.T) {
	s := loadTestScript(t, `
steps:
  - {action: key, key: Tab, mods: [shift]}
  - {action: text, text: "hé"}
`)
	keys := s.Next()
	if len(keys) != 2 || keys[0].Type != EventKeyDown || keys[1].Type != EventKeyUp {
		t.Fatalf("key frame = %v, want [keydown keyup]", eventTypes(keys))
	}
	if keys[0].Key != KeyTab || keys[0].Modifiers != ModShift {
		t.Errorf("key = %v mods %v, want tab shift", keys[0].Key, keys[0].Modifiers)
	}
	chars := s.Next()
	if len(chars) != 2 || chars[0].Char != 'h' || chars[1].Char != 'é' {
		t.Errorf("chars = %+v, want h é", chars)
	}
}

func TestInputScriptWaitAndDrag(t *testing.T) {
	s := loadTestScript(t, `
steps:
  - {action: wait, frames: 2}
  - {action: drag, fromX: 0, fromY: 0, toX: 30, toY: 0, frames: 4, button: right}
`)
	if s.Frames() != 6 {
		t.Fatalf("Frames = %d, want 6", s.Frames())
	}
	for i := 0; i < 2; i++ {
		evs := s.Next()
		if evs == nil || len(evs) != 0 {
			t.Fatalf("wait frame %d = %v, want empty non-nil", i, evs)
		}
	}
	press := s.Next()
	if press[1].Type != EventPointerDown || press[1].Button != MouseButtonRight {
		t.Errorf("press = %+v, want right down", press[1])
	}
	var xs []float64
	for i := 0; i < 2; i++ {
		xs = append(xs, s.Next()[0].X)
	}
	if !almostEqual(xs[0], 10) || !almostEqual(xs[1], 20) {
		t.Errorf("drag xs = %v, want [10 20]", xs)
	}
	end := s.Next()
	if len(end) != 2 || end[1].Type != EventPointerUp || end[1].X != 30 {
		t.Errorf("end frame = %+v, want up at 30", end)
	}
}

func TestInputScriptReset(t *testing.T) {
	s := loadTestScript(t, "steps:\n  - {action: move, x: 1, y: 1}\n")
	s.Next()
	if !s.Done() {
		t.Fatal("script should be done")
	}
	s.Reset()
	if s.Done() {
		t.Error("Reset should rewind the script")
	}
}

func TestInputScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bad yaml", "steps: [", "failed to parse input script"},
		{"empty", "steps: []\n", "no steps"},
		{"unknown action", "steps:\n  - {action: jump}\n", `step 0: unknown action "jump"`},
		{"unknown key", "steps:\n  - {action: key, key: f13}\n", `unknown key "f13"`},
		{"unknown mod", "steps:\n  - {action: key, key: tab, mods: [hyper]}\n", `unknown modifier "hyper"`},
		{"unknown button", "steps:\n  - {action: move}\n  - {action: click, button: fourth}\n", `step 1: unknown button "fourth"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadInputScript([]byte(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}
