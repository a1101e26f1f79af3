package photon

import (
	"errors"
	"math/rand"
	"testing"
)

func newTestBatch(t *testing.T, capacity int) (*Batch, *fakeDevice, Texture) {
	t.Helper()
	dev := &fakeDevice{}
	tex := newFakeTexture()
	b, err := newBatch(dev, 0, tex, capacity)
	if err != nil {
		t.Fatalf("newBatch: %v", err)
	}
	return b, dev, tex
}

func TestEncodeQuadVertexOrder(t *testing.T) {
	c := RGBA{0.1, 0.2, 0.3, 0.4}
	tc := TexRect{S0: 0.25, T0: 0.5, S1: 0.75, T1: 1}
	q := EncodeQuad(V2(1, 2), V2(3, 4), c, tc)

	want := [VerticesPerSprite][4]float32{
		{1, 2, 0.25, 1},
		{4, 2, 0.75, 1},
		{4, 6, 0.75, 0.5},
		{4, 6, 0.75, 0.5},
		{1, 6, 0.25, 0.5},
		{1, 2, 0.25, 1},
	}
	for i, v := range q {
		got := [4]float32{v.X, v.Y, v.U, v.V}
		if got != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, got, want[i])
		}
		if v.R != c.R || v.G != c.G || v.B != c.B || v.A != c.A {
			t.Errorf("vertex %d color = (%v,%v,%v,%v), want %v", i, v.R, v.G, v.B, v.A, c)
		}
	}
	if f := q[1].Floats(); f != [8]float32{4, 2, 0.1, 0.2, 0.3, 0.4, 0.75, 1} {
		t.Errorf("Floats() = %v", f)
	}
}

func TestBatchCapacityScenario(t *testing.T) {
	b, _, tex := newTestBatch(t, 2)

	a := NewSprite(V2(0, 0), V2(1, 1), tex)
	bs := NewSprite(V2(1, 0), V2(1, 1), tex)
	c := NewSprite(V2(2, 0), V2(1, 1), tex)

	if slot, err := b.insert(a); err != nil || slot != 0 {
		t.Fatalf("insert A = (%d, %v), want (0, nil)", slot, err)
	}
	if slot, err := b.insert(bs); err != nil || slot != 1 {
		t.Fatalf("insert B = (%d, %v), want (1, nil)", slot, err)
	}
	if b.Count() != 2 {
		t.Errorf("Count() = %d, want 2", b.Count())
	}
	if b.HasSpace() {
		t.Error("HasSpace() = true on a full batch")
	}
	if _, err := b.insert(c); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("insert C: err = %v, want ErrCapacityExceeded", err)
	}
	if c.Attached() {
		t.Error("C attached after a failed insert")
	}
}

func TestBatchRemoveCompactionScenario(t *testing.T) {
	b, _, tex := newTestBatch(t, 2)
	a := NewSprite(V2(0, 0), V2(1, 1), tex)
	bs := NewSprite(V2(1, 0), V2(1, 1), tex)
	_, _ = b.insert(a)
	_, _ = b.insert(bs)

	if err := a.Remove(); err != nil {
		t.Fatalf("Remove A: %v", err)
	}
	if b.Count() != 1 {
		t.Errorf("Count() = %d, want 1", b.Count())
	}
	if a.Attached() {
		t.Error("A still attached")
	}
	if got := b.Slot(0); got != bs.quad() {
		t.Errorf("slot 0 = %v, want B's data", got)
	}
	if slot, err := bs.Slot(); err != nil || slot != 0 {
		t.Errorf("B slot = (%d, %v), want (0, nil)", slot, err)
	}
	if got := b.Slot(1); got != (Quad{}) {
		t.Errorf("vacated slot 1 = %v, want zeroes", got)
	}

	bs.SetPosition(V2(5, 5))
	if err := bs.Update(); err != nil {
		t.Fatalf("Update B: %v", err)
	}
	if b.Slot(0)[0].X != 5 {
		t.Errorf("update went elsewhere: slot 0 x = %v", b.Slot(0)[0].X)
	}
	if got := b.Slot(1); got != (Quad{}) {
		t.Errorf("slot 1 written by update: %v", got)
	}
}

func TestBatchUpdateRoundTrip(t *testing.T) {
	b, _, tex := newTestBatch(t, 4)
	s := NewSprite(V2(0, 0), V2(2, 2), tex)
	_, _ = b.insert(s)

	s.SetColor(RGBA{1, 0, 0, 0.5})
	s.SetSize(V2(7, 3))
	s.SetTexCoords(TexRect{S0: 0.5, T0: 0.5, S1: 1, T1: 1})
	if b.Slot(0) == s.quad() {
		t.Fatal("setter propagated without Update")
	}
	if err := s.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	slot, _ := s.Slot()
	if got, want := b.Slot(slot), EncodeQuad(s.Position(), s.Size(), s.Color(), s.TexCoords()); got != want {
		t.Errorf("slot = %v, want %v", got, want)
	}
}

func TestInvisibilityToggleRestoresVertices(t *testing.T) {
	b, _, tex := newTestBatch(t, 4)
	s := NewSprite(V2(3, 4), V2(5, 6), tex)
	_, _ = b.insert(s)
	before := b.Slot(0)

	if err := s.ToggleInvisibility(); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if s.Visible() {
		t.Error("Visible() = true after hiding")
	}
	if b.Slot(0) != (Quad{}) {
		t.Errorf("hidden slot = %v, want zeroes", b.Slot(0))
	}
	if b.Count() != 1 {
		t.Errorf("hiding changed Count() to %d", b.Count())
	}

	if err := s.ToggleInvisibility(); err != nil {
		t.Fatalf("show: %v", err)
	}
	if b.Slot(0) != before {
		t.Errorf("slot after toggle pair = %v, want %v", b.Slot(0), before)
	}
}

func TestDetachedSpriteOperationsAreNoOps(t *testing.T) {
	s := NewSprite(V2(0, 0), V2(1, 1), newFakeTexture())
	if err := s.Update(); err != nil {
		t.Errorf("Update: %v", err)
	}
	if err := s.Remove(); err != nil {
		t.Errorf("Remove: %v", err)
	}
	if err := s.SetVisible(false); err != nil {
		t.Errorf("SetVisible: %v", err)
	}
	if slot, err := s.Slot(); slot != -1 || err != nil {
		t.Errorf("Slot() = (%d, %v), want (-1, nil)", slot, err)
	}
}

func TestDestroyedBatchHandlesAreStale(t *testing.T) {
	b, dev, tex := newTestBatch(t, 4)
	s := NewSprite(V2(0, 0), V2(1, 1), tex)
	_, _ = b.insert(s)
	b.destroy()

	if !dev.buffers[0].destroyed {
		t.Error("vertex buffer not destroyed")
	}
	if b.Count() != 0 || b.Slot(0) != (Quad{}) {
		t.Errorf("storage not cleared: Count() = %d, slot 0 = %v", b.Count(), b.Slot(0))
	}
	if err := s.Update(); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("Update: err = %v, want ErrStaleHandle", err)
	}
	if err := s.Remove(); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("Remove: err = %v, want ErrStaleHandle", err)
	}
	if _, err := b.insert(NewSprite(V2(0, 0), V2(1, 1), tex)); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("insert into destroyed batch: err = %v, want ErrStaleHandle", err)
	}
}

func TestFlushUploadsFullStorageOnlyWhenDirty(t *testing.T) {
	b, dev, tex := newTestBatch(t, 8)
	s := NewSprite(V2(0, 0), V2(1, 1), tex)
	_, _ = b.insert(s)
	if !b.Dirty() {
		t.Fatal("insert did not mark dirty")
	}

	if err := b.flushIfDirty(); err != nil {
		t.Fatalf("flushIfDirty: %v", err)
	}
	buf := dev.buffers[0]
	if buf.uploads != 1 || len(buf.data) != 8 {
		t.Errorf("uploads = %d, len = %d, want 1 upload of 8 quads", buf.uploads, len(buf.data))
	}
	if b.Dirty() {
		t.Error("still dirty after flush")
	}

	_ = b.flushIfDirty()
	if buf.uploads != 1 {
		t.Errorf("clean flush uploaded again: %d uploads", buf.uploads)
	}

	_ = s.Update()
	_ = b.flushIfDirty()
	if buf.uploads != 2 {
		t.Errorf("uploads = %d after update, want 2", buf.uploads)
	}
}

func TestBatchChurnNeverLeaksCapacity(t *testing.T) {
	const capacity = 16
	b, _, tex := newTestBatch(t, capacity)
	rng := rand.New(rand.NewSource(7))
	var live []*Sprite

	for step := range 2000 {
		if len(live) < capacity && (len(live) == 0 || rng.Intn(3) > 0) {
			s := NewSprite(V2(float32(step), 0), V2(1, 1), tex)
			if _, err := b.insert(s); err != nil {
				t.Fatalf("step %d: insert with %d live: %v", step, len(live), err)
			}
			live = append(live, s)
		} else {
			i := rng.Intn(len(live))
			if err := live[i].Remove(); err != nil {
				t.Fatalf("step %d: Remove: %v", step, err)
			}
			live = append(live[:i], live[i+1:]...)
		}

		if b.Count() != len(live) {
			t.Fatalf("step %d: Count() = %d, want %d", step, b.Count(), len(live))
		}
		used := make(map[int]bool, len(live))
		for _, s := range live {
			slot, err := s.Slot()
			if err != nil {
				t.Fatalf("step %d: Slot: %v", step, err)
			}
			if slot >= b.Count() || used[slot] {
				t.Fatalf("step %d: bad slot %d", step, slot)
			}
			used[slot] = true
			if b.Slot(slot) != s.quad() {
				t.Fatalf("step %d: slot %d holds foreign data", step, slot)
			}
		}
	}
}
