// Package ebitenhost runs a bramble UI inside an Ebitengine game.
//
// [Input] translates each tick's mouse, touch, key and character input into
// bramble events. [Renderer] draws the primitives a frame produces, batching
// consecutive quads that share a source image into one DrawTriangles32 call.
// [Run] wires both into a window:
//
//	ui := bramble.New(assets, bramble.DefaultConfig())
//	err := ebitenhost.Run(ui, app.build, ebitenhost.RunConfig{
//		Title:   "Counter",
//		Width:   640,
//		Height:  480,
//		ShowFPS: true,
//	})
//
// Image primitives sample textures bound with [Renderer.SetTexture];
// bitmap font glyphs sample pages bound with [Renderer.SetFontPages].
// Glyphs of TTF faces bound with [Renderer.SetFontSource] are drawn by
// text/v2; other vector faces are rasterized on first use and cached.
package ebitenhost
