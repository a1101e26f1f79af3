package ebiten

import (
	eb "github.com/hajimehoshi/ebiten/v2"
)

// Game adapts a photon renderer to the ebiten game loop.
type Game struct {
	Device *Device

	// Update runs once per tick. Returning eb.Termination ends Run
	// without an error.
	Update func() error

	// Render draws one frame, usually Renderer2D.RenderFrame.
	Render func() error

	// TPS is the update rate; zero keeps ebiten's default of 60.
	TPS int

	// FixedSize disables window resizing.
	FixedSize bool

	err error
}

var _ eb.Game = (*gameLoop)(nil)

// gameLoop keeps the ebiten callbacks off Game's exported surface.
type gameLoop struct{ g *Game }

func (l gameLoop) Update() error {
	if l.g.err != nil {
		return l.g.err
	}
	if eb.IsKeyPressed(eb.KeyEscape) {
		return eb.Termination
	}
	if l.g.Update != nil {
		return l.g.Update()
	}
	return nil
}

func (l gameLoop) Draw(screen *eb.Image) {
	l.g.Device.SetTarget(screen)
	if l.g.Render != nil && l.g.err == nil {
		// Draw cannot fail; the error ends the loop on the next Update.
		l.g.err = l.g.Render()
	}
}

func (l gameLoop) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Run opens a window of the device's size and runs g until the
// window closes, Escape is pressed or a callback fails.
func Run(g *Game, title string) error {
	b := g.Device.offscreen.Bounds()
	eb.SetWindowTitle(title)
	eb.SetWindowSize(b.Dx(), b.Dy())
	if !g.FixedSize {
		eb.SetWindowResizingMode(eb.WindowResizingModeEnabled)
	}
	if g.TPS > 0 {
		eb.SetTPS(g.TPS)
	}
	return eb.RunGame(gameLoop{g: g})
}
