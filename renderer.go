package photon

import (
	"errors"
	"fmt"
)

// ErrAlreadyAttached is returned by AddSprite for a sprite that already
// owns a slot.
var ErrAlreadyAttached = errors.New("photon: sprite already attached")

// FrameStats describes the last rendered frame.
type FrameStats struct {
	Batches   int
	Sprites   int
	DrawCalls int
	Uploads   int
}

type textureKey struct {
	path   string
	layout PixelLayout
}

// Renderer2D routes sprites into batches and renders them.
//
// Each sprite goes to the first batch, in creation order, whose texture is
// the sprite's texture and which still has a free slot; otherwise a new
// batch is created. Batches are never merged, rebalanced or reclaimed, and
// they render in creation order. Overlapping sprites on different textures
// therefore stack by batch age, not by insertion order.
//
// Renderer2D is not safe for concurrent use; call it from the goroutine
// that owns the device.
type Renderer2D struct {
	dev    Device
	window Window
	opts   options

	batches  []*Batch
	textures map[textureKey]Texture
	owned    []Texture
	stats    FrameStats
	closed   bool
}

// NewRenderer2D creates a renderer drawing through dev. win supplies the
// aspect ratio once per frame.
func NewRenderer2D(dev Device, win Window, opts ...Option) (*Renderer2D, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	if win == nil {
		win = FixedAspect(1)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	Logger().Info("photon: renderer created", "batch_capacity", o.batchCapacity)
	return &Renderer2D{
		dev:      dev,
		window:   win,
		opts:     o,
		textures: make(map[textureKey]Texture),
	}, nil
}

// Device returns the device the renderer draws through.
func (r *Renderer2D) Device() Device { return r.dev }

// SetClearColor sets the color each frame starts from.
func (r *Renderer2D) SetClearColor(c RGBA) { r.opts.clearColor = c }

// ClearColor returns the current clear color.
func (r *Renderer2D) ClearColor() RGBA { return r.opts.clearColor }

// Batches returns the batches in creation order.
func (r *Renderer2D) Batches() []*Batch {
	return append([]*Batch(nil), r.batches...)
}

// Stats returns statistics of the last RenderFrame.
func (r *Renderer2D) Stats() FrameStats { return r.stats }

// AddSprite attaches s to the first matching batch with space, creating a
// batch when none fits.
func (r *Renderer2D) AddSprite(s *Sprite) error {
	if r.closed {
		return ErrRendererClosed
	}
	if s.texture == nil {
		return ErrNilTexture
	}
	if s.Attached() {
		if _, err := s.Slot(); err == nil {
			return ErrAlreadyAttached
		}
		// The owning batch is gone; the sprite may be attached afresh.
		s.ref = slotRef{}
	}

	for _, b := range r.batches {
		if b.texture == s.texture && b.HasSpace() {
			_, err := b.insert(s)
			return err
		}
	}

	b, err := newBatch(r.dev, len(r.batches), s.texture, r.opts.batchCapacity)
	if err != nil {
		return err
	}
	r.batches = append(r.batches, b)
	_, err = b.insert(s)
	return err
}

// AddText attaches every glyph sprite of t. On failure the glyphs attached
// by this call are detached again, so the call can be retried.
func (r *Renderer2D) AddText(t *Text) error {
	for i, s := range t.sprites {
		if err := r.AddSprite(s); err != nil {
			for _, prev := range t.sprites[:i] {
				_ = prev.Remove()
			}
			return fmt.Errorf("photon: add glyph %d of text: %w", i, err)
		}
	}
	return nil
}

// RefreshText rebuilds t after its string, font, size, spacing, color or
// alignment changed. The previous glyph sprites are always released from
// their batches before the new ones are laid out and added.
func (r *Renderer2D) RefreshText(t *Text) error {
	if r.closed {
		return ErrRendererClosed
	}
	if err := t.rebuild(); err != nil {
		return err
	}
	return r.AddText(t)
}

// NewTexture uploads raw pixels. The texture is destroyed by Shutdown.
func (r *Renderer2D) NewTexture(pixels []byte, w, h int, layout PixelLayout) (Texture, error) {
	if r.closed {
		return nil, ErrRendererClosed
	}
	tex, err := r.dev.NewTexture(pixels, w, h, layout)
	if err != nil {
		return nil, err
	}
	r.owned = append(r.owned, tex)
	return tex, nil
}

// LoadTexture decodes and uploads an image file. Repeated loads of the same
// path and layout return the same texture, so sprites created from them
// share batches. The texture is destroyed by Shutdown.
func (r *Renderer2D) LoadTexture(path string, layout PixelLayout) (Texture, error) {
	if r.closed {
		return nil, ErrRendererClosed
	}
	key := textureKey{path: path, layout: layout}
	if tex, ok := r.textures[key]; ok {
		return tex, nil
	}
	tex, err := LoadTextureFile(r.dev, path, layout)
	if err != nil {
		return nil, err
	}
	r.textures[key] = tex
	r.owned = append(r.owned, tex)
	return tex, nil
}

// RenderFrame clears the target, recomputes the camera from the window's
// aspect ratio and draws every batch in creation order.
func (r *Renderer2D) RenderFrame() error {
	if r.closed {
		return ErrRendererClosed
	}

	cam := NewCamera(r.window.AspectRatio())
	if err := r.dev.BeginFrame(r.opts.clearColor, cam); err != nil {
		return fmt.Errorf("photon: begin frame: %w", err)
	}

	stats := FrameStats{Batches: len(r.batches)}
	var drawErr error
	for _, b := range r.batches {
		before := b.uploads
		if err := b.render(r.dev); err != nil {
			drawErr = err
			break
		}
		stats.Sprites += b.Count()
		stats.DrawCalls++
		stats.Uploads += b.uploads - before
	}

	if err := r.dev.EndFrame(); err != nil {
		return errors.Join(drawErr, fmt.Errorf("photon: end frame: %w", err))
	}
	r.stats = stats
	return drawErr
}

// Shutdown destroys every batch and every texture created through the
// renderer. Sprites still attached keep stale handles; their Update and
// Remove return ErrStaleHandle. The device is left to its owner.
func (r *Renderer2D) Shutdown() {
	if r.closed {
		return
	}
	for _, b := range r.batches {
		b.destroy()
	}
	for _, tex := range r.owned {
		tex.Destroy()
	}
	Logger().Info("photon: renderer shut down", "batches", len(r.batches), "textures", len(r.owned))
	r.batches = nil
	r.owned = nil
	clear(r.textures)
	r.closed = true
}
