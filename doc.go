// Package blitcast replays pre-recorded UI-interaction captures as sprite-atlas
// animations for embedding in documentation.
//
// A capture is a [Timeline]: an ordered list of frames, each holding a delay
// and a list of [BlitOp] rectangle copies from a single sprite sheet (the
// [SpriteAtlas]) onto a fixed-size viewport. Playing it back reproduces the
// original screen recording without shipping a video.
//
// # Quick start
//
// The simplest way to get started is a page manifest plus a [Registry]:
//
//	clock := blitcast.NewClock()
//	reg := blitcast.NewRegistry(blitcast.RegistryConfig{
//		Fetcher:   blitcast.NewFetcher("docs/"),
//		Scheduler: clock,
//	})
//	reg.PrepareAll(page)
//	blitcast.RunViewer(blitcast.NewViewer(page, clock), blitcast.RunConfig{
//		Title: "Captures",
//	})
//
// For full control, build a [Controller] yourself:
//
//	atlas := blitcast.NewSpriteAtlas("inspect")
//	atlas.Load(img)
//	r := blitcast.SelectRenderer(blitcast.RendererAuto, atlas, tl.Width, tl.Height)
//	c := blitcast.NewController("inspect", tl, r, clock, blitcast.DefaultConfig())
//	c.Start()
//
// # Renderers
//
// Two [BlitRenderer] implementations exist. [PixelRenderer] keeps one
// persistent RGBA surface and copies pixel rectangles onto it. [NodeRenderer]
// represents each blit as a pooled [Node] that crops into the shared atlas
// image; after the first loop no further nodes are allocated.
// [SelectRenderer] picks one at construction time and the choice is never
// revisited.
//
// # Scheduling
//
// blitcast is single-threaded. All controller state is mutated from one
// goroutine, driven by a [Scheduler]: either a [Clock] advanced by the host's
// frame loop (the [Viewer] and the [Script] runner use this) or an
// [EventLoop] backed by wall-clock timers. Blocking work such as fetching data
// or decoding atlases runs on worker goroutines and posts its result back
// through [Scheduler.Go].
package blitcast
