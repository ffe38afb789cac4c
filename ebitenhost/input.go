package ebitenhost

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/bramble"
)

// inputSource is the slice of Ebitengine's input API the translator polls.
// Tests substitute a scripted source.
type inputSource interface {
	CursorPosition() (x, y int)
	MouseButtonJustPressed(b ebiten.MouseButton) bool
	MouseButtonJustReleased(b ebiten.MouseButton) bool
	KeyPressed(k ebiten.Key) bool
	AppendJustPressedKeys(keys []ebiten.Key) []ebiten.Key
	AppendJustReleasedKeys(keys []ebiten.Key) []ebiten.Key
	AppendInputChars(chars []rune) []rune
	AppendTouchIDs(ids []ebiten.TouchID) []ebiten.TouchID
	TouchPosition(id ebiten.TouchID) (x, y int)
}

// ebitenSource reads the live Ebitengine input state.
type ebitenSource struct{}

func (ebitenSource) CursorPosition() (int, int) { return ebiten.CursorPosition() }

func (ebitenSource) MouseButtonJustPressed(b ebiten.MouseButton) bool {
	return inpututil.IsMouseButtonJustPressed(b)
}

func (ebitenSource) MouseButtonJustReleased(b ebiten.MouseButton) bool {
	return inpututil.IsMouseButtonJustReleased(b)
}

func (ebitenSource) KeyPressed(k ebiten.Key) bool { return ebiten.IsKeyPressed(k) }

func (ebitenSource) AppendJustPressedKeys(keys []ebiten.Key) []ebiten.Key {
	return inpututil.AppendJustPressedKeys(keys)
}

func (ebitenSource) AppendJustReleasedKeys(keys []ebiten.Key) []ebiten.Key {
	return inpututil.AppendJustReleasedKeys(keys)
}

func (ebitenSource) AppendInputChars(chars []rune) []rune { return ebiten.AppendInputChars(chars) }

func (ebitenSource) AppendTouchIDs(ids []ebiten.TouchID) []ebiten.TouchID {
	return ebiten.AppendTouchIDs(ids)
}

func (ebitenSource) TouchPosition(id ebiten.TouchID) (int, int) { return ebiten.TouchPosition(id) }

// keyMap translates Ebitengine keys to bramble keys. Unmapped keys are not
// forwarded.
var keyMap = map[ebiten.Key]bramble.Key{
	ebiten.KeyEnter:       bramble.KeyEnter,
	ebiten.KeyNumpadEnter: bramble.KeyEnter,
	ebiten.KeyTab:         bramble.KeyTab,
	ebiten.KeyBackspace:   bramble.KeyBackspace,
	ebiten.KeyDelete:      bramble.KeyDelete,
	ebiten.KeyEscape:      bramble.KeyEscape,
	ebiten.KeySpace:       bramble.KeySpace,
	ebiten.KeyArrowLeft:   bramble.KeyLeft,
	ebiten.KeyArrowRight:  bramble.KeyRight,
	ebiten.KeyArrowUp:     bramble.KeyUp,
	ebiten.KeyArrowDown:   bramble.KeyDown,
	ebiten.KeyHome:        bramble.KeyHome,
	ebiten.KeyEnd:         bramble.KeyEnd,
}

var mouseButtons = [...]struct {
	ebiten  ebiten.MouseButton
	bramble bramble.MouseButton
}{
	{ebiten.MouseButtonLeft, bramble.MouseButtonLeft},
	{ebiten.MouseButtonRight, bramble.MouseButtonRight},
	{ebiten.MouseButtonMiddle, bramble.MouseButtonMiddle},
}

// Input turns one tick of Ebitengine input state into bramble events. The
// mouse and the first active touch both drive the pointer; a touch acts as
// the left button.
type Input struct {
	src   inputSource
	clock func() time.Duration

	started  bool
	lastX    float64
	lastY    float64
	touching bool
	touchID  ebiten.TouchID

	events  []bramble.Event
	keys    []ebiten.Key
	chars   []rune
	touches []ebiten.TouchID
}

// NewInput returns an Input polling the live Ebitengine state. Event times
// are measured from the call.
func NewInput() *Input {
	start := time.Now()
	return newInput(ebitenSource{}, func() time.Duration { return time.Since(start) })
}

func newInput(src inputSource, clock func() time.Duration) *Input {
	return &Input{src: src, clock: clock}
}

// readModifiers reads the current keyboard modifier state.
func (in *Input) readModifiers() bramble.KeyModifiers {
	var mods bramble.KeyModifiers
	if in.src.KeyPressed(ebiten.KeyShift) || in.src.KeyPressed(ebiten.KeyShiftLeft) || in.src.KeyPressed(ebiten.KeyShiftRight) {
		mods |= bramble.ModShift
	}
	if in.src.KeyPressed(ebiten.KeyControl) || in.src.KeyPressed(ebiten.KeyControlLeft) || in.src.KeyPressed(ebiten.KeyControlRight) {
		mods |= bramble.ModCtrl
	}
	if in.src.KeyPressed(ebiten.KeyAlt) || in.src.KeyPressed(ebiten.KeyAltLeft) || in.src.KeyPressed(ebiten.KeyAltRight) {
		mods |= bramble.ModAlt
	}
	if in.src.KeyPressed(ebiten.KeyMeta) || in.src.KeyPressed(ebiten.KeyMetaLeft) || in.src.KeyPressed(ebiten.KeyMetaRight) {
		mods |= bramble.ModMeta
	}
	return mods
}

// Poll returns this tick's events in the order pointer, keys, characters.
// The slice is reused by the next Poll.
func (in *Input) Poll() []bramble.Event {
	in.events = in.events[:0]
	now := in.clock()
	mods := in.readModifiers()

	if !in.pollTouch(now, mods) {
		in.pollMouse(now, mods)
	}

	in.keys = in.src.AppendJustPressedKeys(in.keys[:0])
	for _, k := range in.keys {
		if bk, ok := keyMap[k]; ok {
			in.push(bramble.Event{Type: bramble.EventKeyDown, Key: bk, Modifiers: mods, Time: now})
		}
	}
	in.keys = in.src.AppendJustReleasedKeys(in.keys[:0])
	for _, k := range in.keys {
		if bk, ok := keyMap[k]; ok {
			in.push(bramble.Event{Type: bramble.EventKeyUp, Key: bk, Modifiers: mods, Time: now})
		}
	}

	in.chars = in.src.AppendInputChars(in.chars[:0])
	for _, r := range in.chars {
		in.push(bramble.Event{Type: bramble.EventChar, Char: r, Modifiers: mods, Time: now})
	}
	return in.events
}

func (in *Input) push(ev bramble.Event) {
	in.events = append(in.events, ev)
}

func (in *Input) pointer(t bramble.EventType, x, y float64, b bramble.MouseButton, mods bramble.KeyModifiers, now time.Duration) {
	in.push(bramble.Event{Type: t, X: x, Y: y, Button: b, Modifiers: mods, Time: now})
}

// moveTo emits a move when the pointer position changed since the last
// event, and always for the first one.
func (in *Input) moveTo(x, y float64, mods bramble.KeyModifiers, now time.Duration) {
	if in.started && x == in.lastX && y == in.lastY {
		return
	}
	in.started = true
	in.lastX, in.lastY = x, y
	in.pointer(bramble.EventPointerMove, x, y, bramble.MouseButtonLeft, mods, now)
}

func (in *Input) pollMouse(now time.Duration, mods bramble.KeyModifiers) {
	mx, my := in.src.CursorPosition()
	x, y := float64(mx), float64(my)
	in.moveTo(x, y, mods, now)
	for _, b := range mouseButtons {
		if in.src.MouseButtonJustPressed(b.ebiten) {
			in.pointer(bramble.EventPointerDown, x, y, b.bramble, mods, now)
		}
	}
	for _, b := range mouseButtons {
		if in.src.MouseButtonJustReleased(b.ebiten) {
			in.pointer(bramble.EventPointerUp, x, y, b.bramble, mods, now)
		}
	}
}

// pollTouch tracks the first touch. It reports whether a touch drove the
// pointer this tick, in which case the mouse is not polled.
func (in *Input) pollTouch(now time.Duration, mods bramble.KeyModifiers) bool {
	in.touches = in.src.AppendTouchIDs(in.touches[:0])

	if in.touching {
		for _, id := range in.touches {
			if id == in.touchID {
				tx, ty := in.src.TouchPosition(id)
				in.moveTo(float64(tx), float64(ty), mods, now)
				return true
			}
		}
		// Released: finish at the last known position.
		in.touching = false
		in.pointer(bramble.EventPointerUp, in.lastX, in.lastY, bramble.MouseButtonLeft, mods, now)
		return true
	}

	if len(in.touches) == 0 {
		return false
	}
	in.touching = true
	in.touchID = in.touches[0]
	tx, ty := in.src.TouchPosition(in.touchID)
	x, y := float64(tx), float64(ty)
	in.moveTo(x, y, mods, now)
	in.pointer(bramble.EventPointerDown, x, y, bramble.MouseButtonLeft, mods, now)
	return true
}
