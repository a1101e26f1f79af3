package wgpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"math"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/photon"
)

// Errors returned by Device.
var (
	ErrFrameActive   = errors.New("wgpu: frame already begun")
	ErrNoFrame       = errors.New("wgpu: no frame in progress")
	ErrNoTarget      = errors.New("wgpu: no render target")
	ErrForeignObject = errors.New("wgpu: buffer or texture belongs to another device")
	ErrDestroyed     = errors.New("wgpu: device destroyed")
)

// Option configures a Device.
type Option func(*Device)

// WithFormat sets the color format of the render target. Use it when
// rendering into a surface whose format is not RGBA8.
func WithFormat(f gputypes.TextureFormat) Option {
	return func(d *Device) { d.format = f }
}

// WithShaderSource replaces the built-in sprite shader. The source must
// keep the vertex layout and bind group of the built-in shader.
func WithShaderSource(wgsl string) Option {
	return func(d *Device) { d.shaderSource = wgsl }
}

// Device is a photon.Device on a HAL device and queue.
//
// Device is not safe for concurrent use.
type Device struct {
	device hal.Device
	queue  hal.Queue

	width, height int
	format        gputypes.TextureFormat
	shaderSource  string

	pipeline *spritePipeline
	uniform  hal.Buffer

	// Offscreen target, nil when rendering into an external view.
	target     hal.Texture
	targetView hal.TextureView
	external   hal.TextureView

	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder

	release   func()
	destroyed bool
	frames    uint64
}

var (
	_ photon.Device = (*Device)(nil)
	_ photon.Window = (*Device)(nil)
)

// New creates a device drawing with device and queue into an offscreen
// width×height target.
func New(device hal.Device, queue hal.Queue, width, height int, opts ...Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, &photon.ContextInitError{Backend: "wgpu", Err: errors.New("nil hal device or queue")}
	}
	if width <= 0 || height <= 0 {
		return nil, &photon.ContextInitError{Backend: "wgpu", Err: fmt.Errorf("invalid size %dx%d", width, height)}
	}
	d := &Device{
		device:       device,
		queue:        queue,
		width:        width,
		height:       height,
		format:       gputypes.TextureFormatRGBA8Unorm,
		shaderSource: spriteShaderSource,
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.init(); err != nil {
		d.Destroy()
		return nil, err
	}
	photon.Logger().Info("wgpu: device ready", "width", width, "height", height, "format", d.format)
	return d, nil
}

func (d *Device) init() error {
	p, err := newSpritePipeline(d.device, d.format, d.shaderSource)
	if err != nil {
		return err
	}
	d.pipeline = p

	d.uniform, err = d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "photon_camera_uniform",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return &photon.ContextInitError{Backend: "wgpu", Err: fmt.Errorf("create camera uniform: %w", err)}
	}
	return d.createTarget()
}

func (d *Device) createTarget() error {
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "photon_target",
		Size:          hal.Extent3D{Width: uint32(d.width), Height: uint32(d.height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return &photon.ContextInitError{Backend: "wgpu", Err: fmt.Errorf("create render target: %w", err)}
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "photon_target_view",
		Format:        d.format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return &photon.ContextInitError{Backend: "wgpu", Err: fmt.Errorf("create render target view: %w", err)}
	}
	d.target, d.targetView = tex, view
	return nil
}

func (d *Device) destroyTarget() {
	if d.targetView != nil {
		d.device.DestroyTextureView(d.targetView)
		d.targetView = nil
	}
	if d.target != nil {
		d.device.DestroyTexture(d.target)
		d.target = nil
	}
}

// HalDevice returns the underlying HAL device.
func (d *Device) HalDevice() hal.Device { return d.device }

// Size returns the render target size in pixels.
func (d *Device) Size() (int, int) { return d.width, d.height }

// AspectRatio implements photon.Window.
func (d *Device) AspectRatio() float32 { return float32(d.width) / float32(d.height) }

// Frames returns the number of submitted frames.
func (d *Device) Frames() uint64 { return d.frames }

// SetTarget makes the following frames render into view, typically the
// current surface texture, of the given size. A nil view switches back to
// the offscreen target. The view must match the device format.
func (d *Device) SetTarget(view hal.TextureView, width, height int) error {
	if d.pass != nil {
		return ErrFrameActive
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("wgpu: invalid target size %dx%d", width, height)
	}
	d.external = view
	if view == nil && (width != d.width || height != d.height) {
		d.width, d.height = width, height
		d.destroyTarget()
		return d.createTarget()
	}
	d.width, d.height = width, height
	return nil
}

// Resize recreates the offscreen target.
func (d *Device) Resize(width, height int) error {
	return d.SetTarget(nil, width, height)
}

func (d *Device) colorView() hal.TextureView {
	if d.external != nil {
		return d.external
	}
	return d.targetView
}

// NewVertexBuffer implements photon.Device.
func (d *Device) NewVertexBuffer(sprites int) (photon.VertexBuffer, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}
	size := uint64(sprites) * photon.QuadStride
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "photon_batch_vertices",
		Size:  size,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create vertex buffer of %d bytes: %w", size, err)
	}
	return &vertexBuffer{dev: d, buf: buf, capacity: sprites, scratch: make([]byte, size)}, nil
}

// NewTexture implements photon.Device. Pixels are expanded to RGBA8 and
// uploaded with one queue write.
func (d *Device) NewTexture(pixels []byte, w, h int, layout photon.PixelLayout) (photon.Texture, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}
	rgba, err := photon.ExpandRGBA(pixels, w, h, layout)
	if err != nil {
		return nil, err
	}

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "photon_sprite_texture",
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %dx%d texture: %w", w, h, err)
	}
	t := &texture{dev: d, tex: tex, w: w, h: h, layout: layout}

	err = d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		rgba,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(w * 4), RowsPerImage: uint32(h)},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	if err != nil {
		t.Destroy()
		return nil, fmt.Errorf("wgpu: upload %dx%d texture: %w", w, h, err)
	}

	t.view, err = d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "photon_sprite_texture_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.Destroy()
		return nil, fmt.Errorf("wgpu: create texture view: %w", err)
	}
	t.group, err = d.pipeline.bindGroup("photon_sprite_bind_group", d.uniform, t.view)
	if err != nil {
		t.Destroy()
		return nil, fmt.Errorf("wgpu: create texture bind group: %w", err)
	}

	photon.Logger().Debug("wgpu: texture created", "width", w, "height", h, "layout", layout)
	return t, nil
}

// BeginFrame implements photon.Device. The camera is written to the
// uniform buffer and a render pass clearing to clear is opened.
func (d *Device) BeginFrame(clear photon.RGBA, cam photon.Camera) error {
	if d.destroyed {
		return ErrDestroyed
	}
	if d.pass != nil {
		return ErrFrameActive
	}
	view := d.colorView()
	if view == nil {
		return ErrNoTarget
	}

	if err := d.queue.WriteBuffer(d.uniform, 0, encodeCamera(cam)); err != nil {
		return fmt.Errorf("wgpu: write camera uniform: %w", err)
	}

	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "photon_frame"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("photon_frame"); err != nil {
		enc.Destroy()
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	d.encoder = enc

	d.pass = enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "photon_sprites",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: float64(clear.R), G: float64(clear.G), B: float64(clear.B), A: float64(clear.A)},
		}},
	})
	d.pass.SetPipeline(d.pipeline.pipeline)
	return nil
}

// Draw implements photon.Device.
func (d *Device) Draw(buf photon.VertexBuffer, tex photon.Texture, vertexCount int) error {
	if d.pass == nil {
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
	if vertexCount <= 0 {
		return nil
	}
	d.pass.SetBindGroup(0, t.group, nil)
	d.pass.SetVertexBuffer(0, vb.buf, 0)
	d.pass.Draw(uint32(vertexCount), 1, 0, 0)
	return nil
}

// EndFrame implements photon.Device. It submits the frame and waits for
// the GPU so that the next frame may rewrite vertex buffers.
func (d *Device) EndFrame() error {
	if d.pass == nil {
		return ErrNoFrame
	}
	d.pass.End()
	d.pass = nil
	enc := d.encoder
	d.encoder = nil
	defer enc.Destroy()

	cmd, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmd)

	if _, err := d.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait idle: %w", err)
	}
	d.frames++
	return nil
}

// Image reads the offscreen target back into an RGBA image.
func (d *Device) Image() (*image.RGBA, error) {
	if d.destroyed {
		return nil, ErrDestroyed
	}
	if d.target == nil || d.external != nil {
		return nil, ErrNoTarget
	}
	if d.pass != nil {
		return nil, ErrFrameActive
	}

	w, h := d.width, d.height
	// Copy rows must be 256-byte aligned.
	stride := (w*4 + 255) &^ 255
	size := uint64(stride * h)

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "photon_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create readback buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "photon_readback"})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	defer enc.Destroy()
	if err := enc.BeginEncoding("photon_readback"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	enc.CopyTextureToBuffer(d.target, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: uint32(stride), RowsPerImage: uint32(h)},
		TextureBase:  hal.ImageCopyTexture{Texture: d.target, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	}})
	cmd, err := enc.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmd)
	if _, err := d.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return nil, fmt.Errorf("wgpu: submit readback: %w", err)
	}
	if err := d.device.WaitIdle(); err != nil {
		return nil, fmt.Errorf("wgpu: wait idle: %w", err)
	}

	m, err := d.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("wgpu: map readback buffer: %w", err)
	}
	src := unsafe.Slice((*byte)(m.Ptr), size)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		copy(img.Pix[y*img.Stride:y*img.Stride+w*4], src[y*stride:])
	}
	if err := d.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("wgpu: unmap readback buffer: %w", err)
	}
	return img, nil
}

// Destroy releases the pipeline, uniform and target. Textures and vertex
// buffers must be destroyed first; photon.Renderer2D.Shutdown does that.
func (d *Device) Destroy() {
	if d.destroyed {
		return
	}
	if d.pass != nil {
		d.pass.End()
		d.pass = nil
	}
	if d.encoder != nil {
		d.encoder.DiscardEncoding()
		d.encoder.Destroy()
		d.encoder = nil
	}
	d.destroyTarget()
	if d.uniform != nil {
		d.device.DestroyBuffer(d.uniform)
		d.uniform = nil
	}
	if d.pipeline != nil {
		d.pipeline.destroy()
		d.pipeline = nil
	}
	if d.release != nil {
		d.release()
		d.release = nil
	}
	d.destroyed = true
	photon.Logger().Info("wgpu: device destroyed", "frames", d.frames)
}

// encodeCamera lays out proj then view as column-major f32 values.
func encodeCamera(cam photon.Camera) []byte {
	buf := make([]byte, uniformSize)
	for i, v := range cam.Proj {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range cam.View {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
	return buf
}
