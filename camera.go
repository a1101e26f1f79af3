package photon

// WorldHeight is the height of the visible world along the shorter screen
// axis. The longer axis is extended to keep the aspect ratio.
const WorldHeight = 100

// Camera holds the view and projection transforms for one frame.
type Camera struct {
	Proj Mat4
	View Mat4
}

// NewCamera builds the camera for a viewport with the given width/height
// ratio. For aspect ≥ 1 the visible area is [0, 100·aspect]×[0, 100];
// otherwise it is [0, 100]×[0, 100/aspect]. Non-positive aspect ratios are
// treated as 1.
func NewCamera(aspect float32) Camera {
	if aspect <= 0 {
		aspect = 1
	}

	var proj Mat4
	if aspect >= 1 {
		proj = Ortho(0, WorldHeight*aspect, 0, WorldHeight, -1, 1)
	} else {
		proj = Ortho(0, WorldHeight, 0, WorldHeight/aspect, -1, 1)
	}

	view := LookAt([3]float32{0, 0, 0}, [3]float32{0, 0, -1}, [3]float32{0, 1, 0})
	return Camera{Proj: proj, View: view}
}

// ViewProj returns Proj × View.
func (c Camera) ViewProj() Mat4 {
	return c.Proj.Mul(c.View)
}

// ToScreen maps a world position to pixel coordinates in a w×h target with
// the origin at the top-left corner. Software backends use it in place of a
// vertex shader.
func (c Camera) ToScreen(x, y float32, w, h int) (float32, float32) {
	cx, cy := c.ViewProj().Transform(x, y)
	return (cx + 1) * 0.5 * float32(w), (1 - cy) * 0.5 * float32(h)
}

// Window supplies the aspect ratio of the render target once per frame.
type Window interface {
	AspectRatio() float32
}

// FixedAspect is a Window with a constant aspect ratio, used for offscreen
// rendering.
type FixedAspect float32

// AspectRatio implements Window.
func (a FixedAspect) AspectRatio() float32 { return float32(a) }
