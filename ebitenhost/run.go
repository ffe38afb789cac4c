package ebitenhost

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/bramble"
)

// RunConfig configures a window for Run.
type RunConfig struct {
	// Title is the window title.
	Title string
	// Width and Height set the window size in device-independent pixels.
	// They default to 640x480.
	Width, Height int
	// ShowFPS draws the actual FPS and TPS in the top-left corner.
	ShowFPS bool
	// ClearColor fills the screen before each draw. The zero value leaves
	// the screen black.
	ClearColor bramble.Color
	// ScreenshotDir receives captures queued with Game.Screenshot. It
	// defaults to DefaultScreenshotDir.
	ScreenshotDir string
	// Renderer draws the primitives. When nil a renderer over the UI's
	// assets is created; pass one to bind textures and font pages.
	Renderer *Renderer
}

// Game is an ebiten.Game that redeclares and runs a bramble UI once per
// tick and draws the resulting primitives.
type Game struct {
	ui       *bramble.UI
	build    func() bramble.Element
	input    *Input
	renderer *Renderer
	cfg      RunConfig

	prims []bramble.Primitive
	shots []string
}

// NewGame wraps ui. build is called every tick to declare the tree; a nil
// build keeps whatever was last declared.
func NewGame(ui *bramble.UI, build func() bramble.Element, cfg RunConfig) *Game {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = DefaultScreenshotDir
	}
	r := cfg.Renderer
	if r == nil {
		r = NewRenderer(ui.Assets())
	}
	return &Game{
		ui:       ui,
		build:    build,
		input:    NewInput(),
		renderer: r,
		cfg:      cfg,
	}
}

// Renderer returns the renderer the game draws with.
func (g *Game) Renderer() *Renderer {
	return g.renderer
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.build != nil {
		g.ui.Declare(g.build())
	}
	g.ui.Advance(float32(1 / float64(ebiten.TPS())))
	g.prims = g.ui.Frame(g.input.Poll())
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.cfg.ClearColor.A > 0 {
		screen.Fill(toRGBA(g.cfg.ClearColor))
	}
	g.renderer.Draw(screen, g.prims)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	g.flushScreenshots(screen)
}

// Layout implements ebiten.Game. The UI viewport follows the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.ui.SetViewport(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Run opens a window and drives ui until the window closes.
func Run(ui *bramble.UI, build func() bramble.Element, cfg RunConfig) error {
	g := NewGame(ui, build, cfg)
	ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)
	if g.cfg.Title != "" {
		ebiten.SetWindowTitle(g.cfg.Title)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}
