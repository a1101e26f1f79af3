package soft

import (
	"image"
	"math"

	"github.com/gogpu/photon"
)

// sv is a vertex in screen space, y down.
type sv struct {
	x, y       float32
	r, g, b, a float32
	u, v       float32
}

// triangle is a screen-space triangle with positive area and its clipped
// bounding box.
type triangle struct {
	v              [3]sv
	area           float32
	x0, y0, x1, y1 int
	topLeft        [3]bool
}

func project(cam photon.Camera, v photon.Vertex, w, h int) sv {
	x, y := cam.ToScreen(v.X, v.Y, w, h)
	return sv{x: x, y: y, r: v.R, g: v.G, b: v.B, a: v.A, u: v.U, v: v.V}
}

// edge is the signed area of (a, b, p) times two. The endpoints are put in
// a fixed order first so that a shared edge yields exactly opposite values
// for the two triangles on either side.
func edge(a, b sv, px, py float32) float32 {
	if a.y > b.y || (a.y == b.y && a.x > b.x) {
		return -edgeRaw(b, a, px, py)
	}
	return edgeRaw(a, b, px, py)
}

func edgeRaw(a, b sv, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// isTopLeft reports whether a→b is a top or left edge of a triangle with
// positive area. Pixels centered exactly on such edges belong to the
// triangle, so quads sharing a diagonal never blend a pixel twice.
func isTopLeft(a, b sv) bool {
	return (a.y == b.y && b.x > a.x) || b.y < a.y
}

// setupTriangle projects a triangle. Degenerate and off-screen triangles,
// including the zeroed quads of hidden sprites, are rejected.
func setupTriangle(cam photon.Camera, a, b, c photon.Vertex, w, h int) (triangle, bool) {
	t := triangle{v: [3]sv{project(cam, a, w, h), project(cam, b, w, h), project(cam, c, w, h)}}
	t.area = edge(t.v[0], t.v[1], t.v[2].x, t.v[2].y)
	if t.area == 0 || math.IsNaN(float64(t.area)) {
		return t, false
	}
	if t.area < 0 {
		t.v[1], t.v[2] = t.v[2], t.v[1]
		t.area = -t.area
	}

	minX := min(t.v[0].x, t.v[1].x, t.v[2].x)
	maxX := max(t.v[0].x, t.v[1].x, t.v[2].x)
	minY := min(t.v[0].y, t.v[1].y, t.v[2].y)
	maxY := max(t.v[0].y, t.v[1].y, t.v[2].y)

	// Pixel centers sit at +0.5.
	t.x0 = max(int(math.Ceil(float64(minX-0.5))), 0)
	t.y0 = max(int(math.Ceil(float64(minY-0.5))), 0)
	t.x1 = min(int(math.Floor(float64(maxX-0.5))), w-1)
	t.y1 = min(int(math.Floor(float64(maxY-0.5))), h-1)
	if t.x0 > t.x1 || t.y0 > t.y1 {
		return t, false
	}

	for i := range 3 {
		t.topLeft[i] = isTopLeft(t.v[(i+1)%3], t.v[(i+2)%3])
	}
	return t, true
}

func inside(e float32, topLeft bool) bool {
	return e > 0 || (e == 0 && topLeft)
}

// raster shades the rows [yStart, yEnd) of the triangle into dst.
func (t *triangle) raster(dst *image.RGBA, tex *texture, yStart, yEnd int) {
	y0 := max(t.y0, yStart)
	y1 := min(t.y1, yEnd-1)
	inv := 1 / t.area
	v0, v1, v2 := t.v[0], t.v[1], t.v[2]

	for y := y0; y <= y1; y++ {
		py := float32(y) + 0.5
		row := dst.Pix[y*dst.Stride:]
		for x := t.x0; x <= t.x1; x++ {
			px := float32(x) + 0.5
			e0 := edge(v1, v2, px, py)
			e1 := edge(v2, v0, px, py)
			e2 := edge(v0, v1, px, py)
			if !inside(e0, t.topLeft[0]) || !inside(e1, t.topLeft[1]) || !inside(e2, t.topLeft[2]) {
				continue
			}
			l0, l1, l2 := e0*inv, e1*inv, e2*inv

			u := l0*v0.u + l1*v1.u + l2*v2.u
			v := l0*v0.v + l1*v1.v + l2*v2.v
			tr, tg, tb, ta := tex.texel(u, v)

			sr := (l0*v0.r + l1*v1.r + l2*v2.r) * tr
			sg := (l0*v0.g + l1*v1.g + l2*v2.g) * tg
			sb := (l0*v0.b + l1*v1.b + l2*v2.b) * tb
			sa := (l0*v0.a + l1*v1.a + l2*v2.a) * ta
			blendOver(row[x*4:x*4+4], sr, sg, sb, sa)
		}
	}
}

// blendOver applies straight-alpha blending:
// rgb = src·a + dst·(1−a), alpha = a + dst·(1−a).
func blendOver(dst []byte, r, g, b, a float32) {
	if a <= 0 {
		return
	}
	a = min(a, 1)
	k := 1 - a
	const inv = 1.0 / 255
	dst[0] = unorm8(r*a + float32(dst[0])*inv*k)
	dst[1] = unorm8(g*a + float32(dst[1])*inv*k)
	dst[2] = unorm8(b*a + float32(dst[2])*inv*k)
	dst[3] = unorm8(a + float32(dst[3])*inv*k)
}
