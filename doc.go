// Package bramble is a retained-mode widget layer for [Ebitengine].
//
// Applications describe their interface every frame as a tree of [Element]
// values. Bramble reconciles that declaration against the committed node
// tree it keeps in a [Store], lays out dirty subtrees, routes input to the
// widgets under the pointer or holding focus, and returns an ordered list of
// [Primitive] values for a host to draw. The core package never touches the
// GPU; the ebitenhost package draws primitives with Ebitengine.
//
// # Quick start
//
//	ui := bramble.New(assets, bramble.DefaultConfig())
//	ui.SetViewport(640, 480)
//
//	// each frame:
//	ui.Declare(bramble.El(bramble.Panel{}, bramble.Style{Direction: bramble.Row},
//		bramble.Keyed("ok", bramble.Button{Label: "OK", Font: font, OnClick: save},
//			bramble.Style{Width: bramble.Stretch(1)}),
//		bramble.Keyed("cancel", bramble.Button{Label: "Cancel", Font: font},
//			bramble.Style{Width: bramble.Stretch(1)}),
//	))
//	prims := ui.Frame(events)
//
// Or let ebitenhost.Run drive the loop:
//
//	ebitenhost.Run(ui, build, ebitenhost.RunConfig{Title: "Demo", Width: 640, Height: 480})
//
// # Identity
//
// Declared children are matched to committed nodes per parent: keyed
// children by key, the rest by position among unkeyed siblings of the same
// kind. A matched node keeps its [NodeID], so focus, hover and running
// tweens survive re-declaration. Reordering keyed children moves them
// without recreating them.
//
// # Layout
//
// Sizes and margins are [Pixels], [Percent] of the parent content box,
// [Stretch] shares of the remaining space, or Auto (fit content). Rows and
// columns lay out along their main axis; [SelfDirected] children are placed
// against the parent content box as overlays.
//
// # Assets
//
// Fonts, images and vector paths are reached through [Assets] handles and
// may not be loaded yet. Nodes whose assets are missing render nothing and
// are measured again on later frames. [LoadBitmapFont], [LoadTTF],
// [BasicFont] and [LoadAtlas] produce assets for an [AssetStore].
//
// [Ebitengine]: https://ebitengine.org
package bramble
