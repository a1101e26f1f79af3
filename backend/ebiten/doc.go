// Package ebiten implements photon.Device on top of Ebitengine.
//
// Each batch draw becomes one DrawTriangles call on the target image. The
// target is an offscreen image until SetTarget points the device at the
// screen image handed to a Game's Draw method; Game does that for you:
//
//	dev, _ := ebiten.New(1280, 720)
//	r, _ := photon.NewRenderer2D(dev, dev)
//	game := &ebiten.Game{Device: dev, Render: r.RenderFrame}
//	err := ebiten.Run(game, "demo")
//
// Importing the package registers the "ebiten" backend with package backend.
package ebiten
