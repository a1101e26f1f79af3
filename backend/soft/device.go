package soft

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/gogpu/photon"
	"github.com/gogpu/photon/backend"
	"github.com/gogpu/photon/internal/imageio"
	"github.com/gogpu/photon/internal/parallel"
)

// Priority is the registry priority of the software backend.
const Priority = 10

// Rows below which a frame is not split into bands.
const minBandRows = 32

func init() {
	backend.Register("software", Priority, func(cfg backend.Config) (photon.Device, error) {
		return New(cfg.Width, cfg.Height)
	}, nil)
}

// Errors returned by Device.
var (
	ErrFrameActive   = errors.New("soft: frame already begun")
	ErrNoFrame       = errors.New("soft: no frame in progress")
	ErrForeignObject = errors.New("soft: buffer or texture belongs to another device")
)

// Option configures a Device.
type Option func(*Device)

// WithWorkers sets the number of rasterizer goroutines. Zero or less uses
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(d *Device) { d.workers = n }
}

// Device is a CPU photon.Device rendering into an RGBA image.
//
// Device is not safe for concurrent use.
type Device struct {
	target  *image.RGBA
	workers int
	pool    *parallel.WorkerPool

	cam     photon.Camera
	inFrame bool
	frames  uint64
	tris    []triangle
}

var (
	_ photon.Device = (*Device)(nil)
	_ photon.Window = (*Device)(nil)
)

// New creates a device with a width×height target.
func New(width, height int, opts ...Option) (*Device, error) {
	if width <= 0 || height <= 0 {
		return nil, &photon.ContextInitError{Backend: "software", Err: fmt.Errorf("invalid size %dx%d", width, height)}
	}
	d := &Device{target: image.NewRGBA(image.Rect(0, 0, width, height))}
	for _, opt := range opts {
		opt(d)
	}
	d.pool = parallel.NewWorkerPool(d.workers)
	photon.Logger().Info("soft: device ready", "width", width, "height", height, "workers", d.pool.Workers())
	return d, nil
}

// AspectRatio implements photon.Window.
func (d *Device) AspectRatio() float32 {
	b := d.target.Bounds()
	return float32(b.Dx()) / float32(b.Dy())
}

// Size returns the target size in pixels.
func (d *Device) Size() (int, int) {
	b := d.target.Bounds()
	return b.Dx(), b.Dy()
}

// Frames returns the number of completed frames.
func (d *Device) Frames() uint64 { return d.frames }

// Resize replaces the target with a cleared width×height image.
func (d *Device) Resize(width, height int) error {
	if d.inFrame {
		return ErrFrameActive
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("soft: invalid size %dx%d", width, height)
	}
	d.target = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

// Target returns the live render target. It is overwritten by the next
// frame; use Image for a snapshot.
func (d *Device) Target() *image.RGBA { return d.target }

// Image returns a copy of the last rendered frame.
func (d *Device) Image() *image.RGBA {
	img := image.NewRGBA(d.target.Bounds())
	copy(img.Pix, d.target.Pix)
	return img
}

// Thumbnail returns the last rendered frame scaled to w×h with Catmull-Rom
// filtering.
func (d *Device) Thumbnail(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(img, img.Bounds(), d.target, d.target.Bounds(), draw.Src, nil)
	return img
}

// SavePNG writes the last rendered frame to path.
func (d *Device) SavePNG(path string) error {
	return imageio.SavePNG(path, d.target)
}

// NewVertexBuffer implements photon.Device.
func (d *Device) NewVertexBuffer(sprites int) (photon.VertexBuffer, error) {
	if sprites <= 0 {
		return nil, fmt.Errorf("soft: invalid vertex buffer capacity %d", sprites)
	}
	return &vertexBuffer{dev: d, quads: make([]photon.Quad, 0, sprites), capacity: sprites}, nil
}

// NewTexture implements photon.Device.
func (d *Device) NewTexture(pixels []byte, w, h int, layout photon.PixelLayout) (photon.Texture, error) {
	rgba, err := photon.ExpandRGBA(pixels, w, h, layout)
	if err != nil {
		return nil, err
	}
	if layout == photon.LayoutRGBA {
		rgba = append([]byte(nil), rgba...)
	}
	return &texture{dev: d, pix: rgba, w: w, h: h, layout: layout}, nil
}

// BeginFrame implements photon.Device.
func (d *Device) BeginFrame(clear photon.RGBA, cam photon.Camera) error {
	if d.inFrame {
		return ErrFrameActive
	}
	c := toRGBA8(clear)
	pix := d.target.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
	d.cam = cam
	d.inFrame = true
	return nil
}

// Draw implements photon.Device. The triangles are rasterized before Draw
// returns.
func (d *Device) Draw(buf photon.VertexBuffer, tex photon.Texture, vertexCount int) error {
	if !d.inFrame {
		return ErrNoFrame
	}
	vb, ok := buf.(*vertexBuffer)
	if !ok || vb.dev != d {
		return ErrForeignObject
	}
	t, ok := tex.(*texture)
	if !ok || t.dev != d {
		return ErrForeignObject
	}
	if vertexCount > len(vb.quads)*photon.VerticesPerSprite {
		return fmt.Errorf("soft: draw of %d vertices from a buffer holding %d", vertexCount, len(vb.quads)*photon.VerticesPerSprite)
	}

	w, h := d.Size()
	d.tris = d.tris[:0]
	for v := 0; v+3 <= vertexCount; v += 3 {
		q := vb.quads[v/photon.VerticesPerSprite]
		i := v % photon.VerticesPerSprite
		if tri, ok := setupTriangle(d.cam, q[i], q[i+1], q[i+2], w, h); ok {
			d.tris = append(d.tris, tri)
		}
	}
	if len(d.tris) == 0 {
		return nil
	}

	d.pool.ForBands(parallel.Bands(h, d.pool.Workers(), minBandRows), func(b parallel.Band) {
		for i := range d.tris {
			d.tris[i].raster(d.target, t, b.Y0, b.Y1)
		}
	})
	return nil
}

// EndFrame implements photon.Device.
func (d *Device) EndFrame() error {
	if !d.inFrame {
		return ErrNoFrame
	}
	d.inFrame = false
	d.frames++
	return nil
}

// Destroy stops the rasterizer workers.
func (d *Device) Destroy() {
	d.pool.Close()
}

// At returns the target pixel at (x, y).
func (d *Device) At(x, y int) color.RGBA {
	return d.target.RGBAAt(x, y)
}

func toRGBA8(c photon.RGBA) color.RGBA {
	return color.RGBA{R: unorm8(c.R), G: unorm8(c.G), B: unorm8(c.B), A: unorm8(c.A)}
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
		return fmt.Errorf("soft: upload of %d quads into a buffer of %d", len(quads), b.capacity)
	}
	b.quads = append(b.quads[:0], quads...)
	return nil
}

// Destroy implements photon.VertexBuffer.
func (b *vertexBuffer) Destroy() { b.quads = nil }

type texture struct {
	dev    *Device
	pix    []byte
	w, h   int
	layout photon.PixelLayout
}

func (t *texture) Width() int                 { return t.w }
func (t *texture) Height() int                { return t.h }
func (t *texture) Layout() photon.PixelLayout { return t.layout }
func (t *texture) Destroy()                   { t.pix = nil }

// texel samples the nearest texel with clamp-to-edge addressing. Row 0 is
// the first row of the uploaded pixels, at t = 0.
func (t *texture) texel(u, v float32) (r, g, b, a float32) {
	if t.pix == nil {
		return 0, 0, 0, 0
	}
	x := clampIndex(u*float32(t.w), t.w)
	y := clampIndex(v*float32(t.h), t.h)
	i := (y*t.w + x) * 4
	const inv = 1.0 / 255
	return float32(t.pix[i]) * inv, float32(t.pix[i+1]) * inv, float32(t.pix[i+2]) * inv, float32(t.pix[i+3]) * inv
}

func clampIndex(f float32, n int) int {
	i := int(f)
	if f < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
