package ebiten

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"runtime"

	eb "github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/photon"
	"github.com/gogpu/photon/backend"
)

// Priority is the registry priority of the ebiten backend.
const Priority = 50

// Sprites per DrawTriangles call, bounded by 16-bit indices.
const maxSpritesPerCall = (1 << 16) / photon.VerticesPerSprite

func init() {
	backend.Register("ebiten", Priority, func(cfg backend.Config) (photon.Device, error) {
		return New(cfg.Width, cfg.Height)
	}, hasDisplay)
}

func hasDisplay() bool {
	if runtime.GOOS != "linux" && runtime.GOOS != "freebsd" {
		return true
	}
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// Errors returned by Device.
var (
	ErrFrameActive   = errors.New("ebiten: frame already begun")
	ErrNoFrame       = errors.New("ebiten: no frame in progress")
	ErrForeignObject = errors.New("ebiten: buffer or texture belongs to another device")
)

// Device is a photon.Device drawing into an ebiten image.
type Device struct {
	offscreen *eb.Image
	target    *eb.Image

	cam     photon.Camera
	inFrame bool

	vertices []eb.Vertex
	indices  []uint16
	opts     eb.DrawTrianglesOptions
}

var (
	_ photon.Device = (*Device)(nil)
	_ photon.Window = (*Device)(nil)
)

// New creates a device with a width×height offscreen target.
func New(width, height int) (*Device, error) {
	if width <= 0 || height <= 0 {
		return nil, &photon.ContextInitError{Backend: "ebiten", Err: fmt.Errorf("invalid size %dx%d", width, height)}
	}
	d := &Device{offscreen: eb.NewImage(width, height)}
	d.target = d.offscreen
	d.opts.ColorScaleMode = eb.ColorScaleModeStraightAlpha
	d.opts.Filter = eb.FilterNearest
	d.indices = quadIndices(maxSpritesPerCall)
	photon.Logger().Info("ebiten: device ready", "width", width, "height", height)
	return d, nil
}

// SetTarget makes the next frames render into img, usually the screen.
// A nil img switches back to the offscreen target.
func (d *Device) SetTarget(img *eb.Image) {
	if img == nil {
		img = d.offscreen
	}
	d.target = img
}

// Target returns the current render target.
func (d *Device) Target() *eb.Image { return d.target }

// AspectRatio implements photon.Window.
func (d *Device) AspectRatio() float32 {
	b := d.target.Bounds()
	if b.Dy() == 0 {
		return 1
	}
	return float32(b.Dx()) / float32(b.Dy())
}

// NewVertexBuffer implements photon.Device.
func (d *Device) NewVertexBuffer(sprites int) (photon.VertexBuffer, error) {
	if sprites <= 0 {
		return nil, fmt.Errorf("ebiten: invalid vertex buffer capacity %d", sprites)
	}
	return &vertexBuffer{dev: d, quads: make([]photon.Quad, 0, sprites), capacity: sprites}, nil
}

// NewTexture implements photon.Device.
func (d *Device) NewTexture(pixels []byte, w, h int, layout photon.PixelLayout) (photon.Texture, error) {
	rgba, err := photon.ExpandRGBA(pixels, w, h, layout)
	if err != nil {
		return nil, err
	}
	img := eb.NewImage(w, h)
	img.WritePixels(premultiply(rgba))
	return &texture{dev: d, img: img, w: w, h: h, layout: layout}, nil
}

// BeginFrame implements photon.Device.
func (d *Device) BeginFrame(clear photon.RGBA, cam photon.Camera) error {
	if d.inFrame {
		return ErrFrameActive
	}
	d.target.Fill(toNRGBA(clear))
	d.cam = cam
	d.inFrame = true
	return nil
}

// Draw implements photon.Device.
func (d *Device) Draw(buf photon.VertexBuffer, tex photon.Texture, vertexCount int) error {
	if !d.inFrame {
		return ErrNoFrame
	}
	vb, ok := buf.(*vertexBuffer)
	if !ok || vb.dev != d {
		return ErrForeignObject
	}
	t, ok := tex.(*texture)
	if !ok || t.dev != d || t.img == nil {
		return ErrForeignObject
	}
	sprites := vertexCount / photon.VerticesPerSprite
	if sprites > len(vb.quads) {
		return fmt.Errorf("ebiten: draw of %d vertices from a buffer holding %d", vertexCount, len(vb.quads)*photon.VerticesPerSprite)
	}

	b := d.target.Bounds()
	for start := 0; start < sprites; start += maxSpritesPerCall {
		end := min(start+maxSpritesPerCall, sprites)
		d.vertices = appendVertices(d.vertices[:0], vb.quads[start:end], d.cam, b.Dx(), b.Dy(), t.w, t.h)
		d.target.DrawTriangles(d.vertices, d.indices[:(end-start)*photon.VerticesPerSprite], t.img, &d.opts)
	}
	return nil
}

// EndFrame implements photon.Device. Ebiten presents the screen itself.
func (d *Device) EndFrame() error {
	if !d.inFrame {
		return ErrNoFrame
	}
	d.inFrame = false
	return nil
}

// Destroy releases the offscreen target.
func (d *Device) Destroy() {
	if d.offscreen != nil {
		d.offscreen.Deallocate()
		d.offscreen = nil
	}
}

// appendVertices converts quads to ebiten vertices in target pixels, with
// source coordinates in texels of a texW×texH texture.
func appendVertices(dst []eb.Vertex, quads []photon.Quad, cam photon.Camera, w, h, texW, texH int) []eb.Vertex {
	tw, th := float32(texW), float32(texH)
	for i := range quads {
		for _, v := range quads[i] {
			x, y := cam.ToScreen(v.X, v.Y, w, h)
			dst = append(dst, eb.Vertex{
				DstX: x, DstY: y,
				SrcX: v.U * tw, SrcY: v.V * th,
				ColorR: v.R, ColorG: v.G, ColorB: v.B, ColorA: v.A,
			})
		}
	}
	return dst
}

// quadIndices returns 0, 1, 2, … for n sprites. Vertices are already laid
// out as independent triangles.
func quadIndices(n int) []uint16 {
	idx := make([]uint16, n*photon.VerticesPerSprite)
	for i := range idx {
		idx[i] = uint16(i)
	}
	return idx
}

// premultiply converts straight-alpha RGBA to the premultiplied form
// ebiten images store.
func premultiply(pix []byte) []byte {
	out := make([]byte, len(pix))
	for i := 0; i+3 < len(pix); i += 4 {
		a := uint16(pix[i+3])
		out[i] = byte((uint16(pix[i])*a + 127) / 255)
		out[i+1] = byte((uint16(pix[i+1])*a + 127) / 255)
		out[i+2] = byte((uint16(pix[i+2])*a + 127) / 255)
		out[i+3] = pix[i+3]
	}
	return out
}

func toNRGBA(c photon.RGBA) color.NRGBA {
	return color.NRGBA{R: unorm8(c.R), G: unorm8(c.G), B: unorm8(c.B), A: unorm8(c.A)}
}

func unorm8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

type vertexBuffer struct {
	dev      *Device
	quads    []photon.Quad
	capacity int
}

// Upload implements photon.VertexBuffer.
func (b *vertexBuffer) Upload(quads []photon.Quad) error {
	if len(quads) > b.capacity {
		return fmt.Errorf("ebiten: upload of %d quads into a buffer of %d", len(quads), b.capacity)
	}
	b.quads = append(b.quads[:0], quads...)
	return nil
}

// Destroy implements photon.VertexBuffer.
func (b *vertexBuffer) Destroy() { b.quads = nil }

type texture struct {
	dev    *Device
	img    *eb.Image
	w, h   int
	layout photon.PixelLayout
}

func (t *texture) Width() int                 { return t.w }
func (t *texture) Height() int                { return t.h }
func (t *texture) Layout() photon.PixelLayout { return t.layout }

func (t *texture) Destroy() {
	if t.img != nil {
		t.img.Deallocate()
		t.img = nil
	}
}
