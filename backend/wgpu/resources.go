package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/photon"
)

// vertexBuffer is a batch's device copy. Uploads always write the full
// range with one queue write.
type vertexBuffer struct {
	dev      *Device
	buf      hal.Buffer
	capacity int
	scratch  []byte
}

// Upload implements photon.VertexBuffer.
func (b *vertexBuffer) Upload(quads []photon.Quad) error {
	if b.buf == nil {
		return ErrDestroyed
	}
	if len(quads) > b.capacity {
		return fmt.Errorf("wgpu: upload of %d quads into a buffer of %d", len(quads), b.capacity)
	}
	data := encodeQuads(b.scratch[:len(quads)*photon.QuadStride], quads)
	if err := b.dev.queue.WriteBuffer(b.buf, 0, data); err != nil {
		return fmt.Errorf("wgpu: write vertex buffer: %w", err)
	}
	photon.Logger().Debug("wgpu: vertex buffer uploaded", "bytes", len(data))
	return nil
}

// Destroy implements photon.VertexBuffer.
func (b *vertexBuffer) Destroy() {
	if b.buf == nil {
		return
	}
	b.dev.device.DestroyBuffer(b.buf)
	b.buf = nil
	b.scratch = nil
}

// encodeQuads writes quads into dst as little-endian f32 vertices.
func encodeQuads(dst []byte, quads []photon.Quad) []byte {
	off := 0
	for i := range quads {
		for _, v := range quads[i] {
			for _, f := range v.Floats() {
				binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(f))
				off += 4
			}
		}
	}
	return dst[:off]
}

// texture is a sampled RGBA8 texture with its bind group.
type texture struct {
	dev    *Device
	tex    hal.Texture
	view   hal.TextureView
	group  hal.BindGroup
	w, h   int
	layout photon.PixelLayout
}

func (t *texture) Width() int                 { return t.w }
func (t *texture) Height() int                { return t.h }
func (t *texture) Layout() photon.PixelLayout { return t.layout }

// Destroy implements photon.Texture.
func (t *texture) Destroy() {
	if t.group != nil {
		t.dev.device.DestroyBindGroup(t.group)
		t.group = nil
	}
	if t.view != nil {
		t.dev.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.dev.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}
