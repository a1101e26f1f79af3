package photon

import (
	"errors"
	"fmt"

	"github.com/gogpu/photon/internal/dense"
)

// DefaultBatchCapacity is the number of sprites a batch holds unless
// WithBatchCapacity overrides it.
const DefaultBatchCapacity = 10000

// Batch is a fixed-capacity, texture-homogeneous set of sprite quads backed
// by one device vertex buffer.
//
// Live quads occupy slots [0, Count()) without gaps. Removal moves the last
// live quad into the hole and zeroes the vacated slot. Any change sets the
// dirty flag; the next render uploads the whole storage, not only the
// changed slots.
type Batch struct {
	id      int
	texture Texture
	slots   *dense.Set[Quad]
	buf     VertexBuffer
	dirty   bool

	// epoch changes when the batch is destroyed so that handles taken
	// before destruction are recognised as stale.
	epoch     uint32
	destroyed bool

	uploads int
}

// slotRef is the sprite side of the sprite/batch relation: which batch, in
// which epoch, and the handle resolved through the batch's indirection
// table. The zero value means detached.
type slotRef struct {
	batch  *Batch
	epoch  uint32
	handle dense.Handle
}

func newBatch(dev Device, id int, tex Texture, capacity int) (*Batch, error) {
	buf, err := dev.NewVertexBuffer(capacity)
	if err != nil {
		return nil, fmt.Errorf("photon: create vertex buffer for batch %d: %w", id, err)
	}
	Logger().Debug("photon: batch created", "batch", id, "capacity", capacity,
		"bytes", capacity*QuadStride)
	return &Batch{
		id:      id,
		texture: tex,
		slots:   dense.New[Quad](capacity),
		buf:     buf,
		epoch:   1,
	}, nil
}

// ID returns the batch's position in creation order.
func (b *Batch) ID() int { return b.id }

// Texture returns the texture shared by every sprite in the batch.
func (b *Batch) Texture() Texture { return b.texture }

// Count returns the number of live sprites.
func (b *Batch) Count() int { return b.slots.Len() }

// Capacity returns the fixed number of slots.
func (b *Batch) Capacity() int { return b.slots.Cap() }

// HasSpace reports whether another sprite fits.
func (b *Batch) HasSpace() bool { return !b.destroyed && !b.slots.Full() }

// Dirty reports whether CPU storage differs from the device copy.
func (b *Batch) Dirty() bool { return b.dirty }

// Uploads returns how many times the storage was sent to the device.
func (b *Batch) Uploads() int { return b.uploads }

// Slot returns a copy of the six vertices stored at slot i.
func (b *Batch) Slot(i int) Quad { return b.slots.At(i) }

// insert writes s at slot Count() and attaches s to the batch.
func (b *Batch) insert(s *Sprite) (int, error) {
	if b.destroyed {
		return -1, ErrStaleHandle
	}
	h, slot, err := b.slots.Insert(s.quad())
	if errors.Is(err, dense.ErrFull) {
		return -1, fmt.Errorf("%w: batch %d holds %d sprites", ErrCapacityExceeded, b.id, b.slots.Cap())
	}
	if err != nil {
		return -1, err
	}
	s.ref = slotRef{batch: b, epoch: b.epoch, handle: h}
	b.dirty = true
	return slot, nil
}

// update rewrites the slot owned by s from its current state.
func (b *Batch) update(s *Sprite) error {
	if err := b.check(s.ref); err != nil {
		return err
	}
	if _, err := b.slots.Put(s.ref.handle, s.quad()); err != nil {
		return fmt.Errorf("%w: %w", ErrStaleHandle, err)
	}
	b.dirty = true
	return nil
}

// removeAt releases the slot owned by s. The quad in the last live slot
// moves into the hole; its owner's handle is redirected by the indirection
// table, so the owner keeps addressing its own data.
func (b *Batch) removeAt(s *Sprite) error {
	if err := b.check(s.ref); err != nil {
		return err
	}
	if _, err := b.slots.Remove(s.ref.handle); err != nil {
		return fmt.Errorf("%w: %w", ErrStaleHandle, err)
	}
	s.ref = slotRef{}
	b.dirty = true
	return nil
}

// slotOf resolves ref to its current slot.
func (b *Batch) slotOf(ref slotRef) (int, error) {
	if err := b.check(ref); err != nil {
		return -1, err
	}
	slot, err := b.slots.Slot(ref.handle)
	if err != nil {
		return -1, fmt.Errorf("%w: %w", ErrStaleHandle, err)
	}
	return slot, nil
}

func (b *Batch) check(ref slotRef) error {
	if ref.batch != b || b.destroyed || ref.epoch != b.epoch {
		return ErrStaleHandle
	}
	return nil
}

// flushIfDirty uploads the full storage range when it changed.
func (b *Batch) flushIfDirty() error {
	if !b.dirty {
		return nil
	}
	if err := b.buf.Upload(b.slots.Storage()); err != nil {
		return fmt.Errorf("photon: upload batch %d: %w", b.id, err)
	}
	b.dirty = false
	b.uploads++
	return nil
}

// render flushes and issues one draw covering every live vertex. The camera
// was handed to dev by BeginFrame.
func (b *Batch) render(dev Device) error {
	if b.destroyed {
		return ErrStaleHandle
	}
	if err := b.flushIfDirty(); err != nil {
		return err
	}
	if err := dev.Draw(b.buf, b.texture, b.Count()*VerticesPerSprite); err != nil {
		return fmt.Errorf("photon: draw batch %d: %w", b.id, err)
	}
	return nil
}

// destroy releases the storage and the device buffer. Every sprite still
// attached holds a stale handle afterwards.
func (b *Batch) destroy() {
	if b.destroyed {
		return
	}
	b.buf.Destroy()
	b.slots.Reset()
	b.epoch++
	b.destroyed = true
	b.dirty = false
}
