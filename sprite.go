package photon

// Sprite is a textured, tinted axis-aligned rectangle.
//
// Setters only change the sprite itself. Call Update to copy the new state
// into the batch slot; Update is a no-op while the sprite is detached. A
// sprite is attached by Renderer2D.AddSprite and detached by Remove.
type Sprite struct {
	pos       Vec2
	size      Vec2
	color     RGBA
	texture   Texture
	texCoords TexRect
	invisible bool

	ref slotRef
}

// NewSprite creates a detached, opaque white sprite that shows the whole
// texture.
func NewSprite(pos, size Vec2, tex Texture) *Sprite {
	return &Sprite{
		pos:       pos,
		size:      size,
		color:     White,
		texture:   tex,
		texCoords: FullTexRect,
	}
}

func (s *Sprite) Position() Vec2          { return s.pos }
func (s *Sprite) SetPosition(p Vec2)      { s.pos = p }
func (s *Sprite) Size() Vec2              { return s.size }
func (s *Sprite) SetSize(sz Vec2)         { s.size = sz }
func (s *Sprite) Color() RGBA             { return s.color }
func (s *Sprite) SetColor(c RGBA)         { s.color = c }
func (s *Sprite) TexCoords() TexRect      { return s.texCoords }
func (s *Sprite) SetTexCoords(tc TexRect) { s.texCoords = tc }
func (s *Sprite) Texture() Texture        { return s.texture }

// Visible reports whether the sprite draws real geometry.
func (s *Sprite) Visible() bool { return !s.invisible }

// Attached reports whether the sprite currently owns a batch slot. A sprite
// whose renderer was shut down still reports true; its next Update or
// Remove returns ErrStaleHandle.
func (s *Sprite) Attached() bool { return s.ref.batch != nil }

// Batch returns the batch holding the sprite, or nil when detached.
func (s *Sprite) Batch() *Batch { return s.ref.batch }

// Slot returns the sprite's current slot in its batch. The slot changes
// when another sprite of the same batch is removed.
func (s *Sprite) Slot() (int, error) {
	if s.ref.batch == nil {
		return -1, nil
	}
	return s.ref.batch.slotOf(s.ref)
}

// Update copies the sprite's current state into its batch slot.
func (s *Sprite) Update() error {
	if s.ref.batch == nil {
		return nil
	}
	return s.ref.batch.update(s)
}

// SetVisible shows or hides the sprite. A hidden sprite keeps its slot but
// its six vertices are zeroed; showing it again rewrites its geometry.
func (s *Sprite) SetVisible(v bool) error {
	if s.invisible == !v {
		return nil
	}
	s.invisible = !v
	return s.Update()
}

// ToggleInvisibility flips the visibility.
func (s *Sprite) ToggleInvisibility() error {
	return s.SetVisible(s.invisible)
}

// Remove detaches the sprite and frees its slot. Removing a detached sprite
// does nothing.
func (s *Sprite) Remove() error {
	if s.ref.batch == nil {
		return nil
	}
	return s.ref.batch.removeAt(s)
}

// quad encodes the sprite for its batch slot.
func (s *Sprite) quad() Quad {
	if s.invisible {
		return Quad{}
	}
	return EncodeQuad(s.pos, s.size, s.color, s.texCoords)
}
