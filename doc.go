// Package photon is a small 2D sprite renderer built around batching.
//
// # Overview
//
// Every drawable is a textured, tinted rectangle (a [Sprite]). Sprites that
// share a texture are packed into fixed-capacity [Batch]es; each batch owns
// one vertex buffer and costs one draw call per frame, so thousands of
// sprites render in a handful of draws.
//
//	dev, _ := soft.New(800, 600)
//	r, _ := photon.NewRenderer2D(dev, dev)
//	defer r.Shutdown()
//
//	tex, _ := r.LoadTexture("player.png", photon.LayoutRGBA)
//	s := photon.NewSprite(photon.V2(10, 10), photon.V2(20, 20), tex)
//	_ = r.AddSprite(s)
//
//	s.SetPosition(photon.V2(30, 10))
//	_ = s.Update()
//	_ = r.RenderFrame()
//
// # World units
//
// The camera is orthographic. The shorter side of the window always spans
// 100 world units with the origin at the bottom-left; the longer side spans
// 100 times the aspect ratio. Resizing the window changes how much of the
// world is visible along the long axis but never scales sprites.
//
// # Updates
//
// Sprite setters change only the sprite. [Sprite.Update] copies the state
// into its batch slot and marks the batch dirty; a dirty batch re-uploads
// its whole storage on the next [Renderer2D.RenderFrame].
//
// # Text
//
// [Text] lays a string out as one sprite per printable ASCII glyph using a
// [GlyphSource], normally a font atlas from package font. After changing a
// Text, call [Renderer2D.RefreshText] to replace its glyph sprites.
//
// # Devices
//
// Rendering goes through the [Device] interface. The backend packages
// provide a WebGPU HAL device, a CPU rasterizer and an Ebitengine device;
// backend.Open picks one by name or priority.
//
// # Logging
//
// photon is silent by default. [SetLogger] installs a *slog.Logger shared
// by the renderer, the backends and the wgpu HAL.
package photon
