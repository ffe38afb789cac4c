package bramble

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ScriptFrameInterval is the time between frames of a replayed script.
const ScriptFrameInterval = time.Second / 60

// scriptStep is a single action in an input script.
type scriptStep struct {
	Action string   `yaml:"action"`
	X      float64  `yaml:"x,omitempty"`
	Y      float64  `yaml:"y,omitempty"`
	FromX  float64  `yaml:"fromX,omitempty"`
	FromY  float64  `yaml:"fromY,omitempty"`
	ToX    float64  `yaml:"toX,omitempty"`
	ToY    float64  `yaml:"toY,omitempty"`
	Button string   `yaml:"button,omitempty"`
	Key    string   `yaml:"key,omitempty"`
	Text   string   `yaml:"text,omitempty"`
	Mods   []string `yaml:"mods,omitempty"`
	Frames int      `yaml:"frames,omitempty"`
}

type inputScriptFile struct {
	Steps []scriptStep `yaml:"steps"`
}

// InputScript replays a recorded sequence of input events, one batch per
// frame, for automated UI tests and demos. Feed Next() to UI.Frame.
type InputScript struct {
	frames [][]Event
	cursor int
}

var scriptKeys = map[string]Key{
	"enter":     KeyEnter,
	"tab":       KeyTab,
	"backspace": KeyBackspace,
	"delete":    KeyDelete,
	"escape":    KeyEscape,
	"space":     KeySpace,
	"left":      KeyLeft,
	"right":     KeyRight,
	"up":        KeyUp,
	"down":      KeyDown,
	"home":      KeyHome,
	"end":       KeyEnd,
}

var scriptMods = map[string]KeyModifiers{
	"shift": ModShift,
	"ctrl":  ModCtrl,
	"alt":   ModAlt,
	"meta":  ModMeta,
}

// LoadInputScript parses a YAML (or JSON) script of the form
//
//	steps:
//	  - {action: click, x: 10, y: 20}
//	  - {action: text, text: "hello"}
//	  - {action: key, key: tab, mods: [shift]}
//	  - {action: wait, frames: 3}
//	  - {action: drag, fromX: 0, fromY: 0, toX: 50, toY: 0, frames: 5}
//
// Other actions are move, down, up and char. A click takes two frames (press,
// release); key and char take one.
func LoadInputScript(data []byte) (*InputScript, error) {
	var file inputScriptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("bramble: failed to parse input script: %w", err)
	}
	if len(file.Steps) == 0 {
		return nil, fmt.Errorf("bramble: input script has no steps")
	}
	s := &InputScript{}
	for i, st := range file.Steps {
		if err := s.compile(st); err != nil {
			return nil, fmt.Errorf("bramble: input script step %d: %w", i, err)
		}
	}
	return s, nil
}

func (s *InputScript) push(evs ...Event) {
	s.frames = append(s.frames, evs)
}

func (s *InputScript) compile(st scriptStep) error {
	button, err := parseButton(st.Button)
	if err != nil {
		return err
	}
	var mods KeyModifiers
	for _, m := range st.Mods {
		mod, ok := scriptMods[strings.ToLower(m)]
		if !ok {
			return fmt.Errorf("unknown modifier %q", m)
		}
		mods |= mod
	}
	pointer := func(t EventType, x, y float64) Event {
		return Event{Type: t, X: x, Y: y, Button: button, Modifiers: mods}
	}

	switch strings.ToLower(st.Action) {
	case "move":
		s.push(pointer(EventPointerMove, st.X, st.Y))
	case "down":
		s.push(pointer(EventPointerMove, st.X, st.Y), pointer(EventPointerDown, st.X, st.Y))
	case "up":
		s.push(pointer(EventPointerUp, st.X, st.Y))
	case "click":
		s.push(pointer(EventPointerMove, st.X, st.Y), pointer(EventPointerDown, st.X, st.Y))
		s.push(pointer(EventPointerUp, st.X, st.Y))
	case "drag":
		frames := st.Frames
		if frames < 2 {
			frames = 2
		}
		s.push(pointer(EventPointerMove, st.FromX, st.FromY), pointer(EventPointerDown, st.FromX, st.FromY))
		steps := frames - 2
		for i := 1; i <= steps; i++ {
			t := float64(i) / float64(steps+1)
			s.push(pointer(EventPointerMove, st.FromX+(st.ToX-st.FromX)*t, st.FromY+(st.ToY-st.FromY)*t))
		}
		s.push(pointer(EventPointerMove, st.ToX, st.ToY), pointer(EventPointerUp, st.ToX, st.ToY))
	case "key":
		k, ok := scriptKeys[strings.ToLower(st.Key)]
		if !ok {
			return fmt.Errorf("unknown key %q", st.Key)
		}
		s.push(Event{Type: EventKeyDown, Key: k, Modifiers: mods}, Event{Type: EventKeyUp, Key: k, Modifiers: mods})
	case "char", "text":
		evs := make([]Event, 0, len(st.Text))
		for _, r := range st.Text {
			evs = append(evs, Event{Type: EventChar, Char: r, Modifiers: mods})
		}
		s.push(evs...)
	case "wait":
		for i := 0; i < st.Frames; i++ {
			s.push()
		}
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return nil
}

func parseButton(name string) (MouseButton, error) {
	switch strings.ToLower(name) {
	case "", "left":
		return MouseButtonLeft, nil
	case "right":
		return MouseButtonRight, nil
	case "middle":
		return MouseButtonMiddle, nil
	}
	return 0, fmt.Errorf("unknown button %q", name)
}

// Next returns the events of the next frame, stamped with the frame's time.
// It returns nil once the script is done.
func (s *InputScript) Next() []Event {
	if s.Done() {
		return nil
	}
	evs := s.frames[s.cursor]
	now := time.Duration(s.cursor) * ScriptFrameInterval
	for i := range evs {
		evs[i].Time = now
	}
	s.cursor++
	if evs == nil {
		evs = []Event{}
	}
	return evs
}

// Frames returns the total number of frames the script spans.
func (s *InputScript) Frames() int {
	return len(s.frames)
}

// Done reports whether every frame has been returned by Next.
func (s *InputScript) Done() bool {
	return s.cursor >= len(s.frames)
}

// Reset rewinds the script to its first frame.
func (s *InputScript) Reset() {
	s.cursor = 0
}
