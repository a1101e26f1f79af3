package photon

import (
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Printable glyph range covered by GlyphSource implementations.
const (
	FirstGlyph = ' '
	LastGlyph  = '~'
)

// Glyph is the placement of one character relative to the pen on the
// baseline, in atlas pixels with y growing downwards, plus its region in the
// atlas texture.
type Glyph struct {
	X0, Y0, X1, Y1 float32
	Tex            TexRect
}

// Width returns the horizontal extent of the glyph quad.
func (g Glyph) Width() float32 { return g.X1 - g.X0 }

// Height returns the vertical extent of the glyph quad.
func (g Glyph) Height() float32 { return g.Y1 - g.Y0 }

// GlyphSource is the font service used by Text.
type GlyphSource interface {
	// Glyph returns the quad for r, or false when r is not in the atlas.
	Glyph(r rune) (Glyph, bool)

	// Kern returns the extra advance, in atlas pixels, between left and a
	// following right.
	Kern(left, right rune) float32

	// Texture returns the atlas texture.
	Texture() Texture
}

// Text is a string laid out as one sprite per printable glyph.
//
// Setters record the new state only; Renderer2D.RefreshText re-lays the
// text out and swaps the glyph sprites in its batches.
type Text struct {
	font     GlyphSource
	str      string
	pos      Vec2
	size     float32
	spacing  float32
	color    RGBA
	centered bool
	fold     bool

	sprites []*Sprite
	width   float32
}

// NewText lays out s with its pen starting at pos. size scales atlas pixels
// to world units and spacing is added after every glyph.
func NewText(font GlyphSource, s string, pos Vec2, size, spacing float32) *Text {
	t := &Text{
		font:    font,
		str:     s,
		pos:     pos,
		size:    size,
		spacing: spacing,
		color:   White,
	}
	t.layout()
	return t
}

func (t *Text) String() string       { return t.str }
func (t *Text) SetString(s string)   { t.str = s }
func (t *Text) Position() Vec2       { return t.pos }
func (t *Text) SetPosition(p Vec2)   { t.pos = p }
func (t *Text) Size() float32        { return t.size }
func (t *Text) SetSize(s float32)    { t.size = s }
func (t *Text) Spacing() float32     { return t.spacing }
func (t *Text) SetSpacing(s float32) { t.spacing = s }
func (t *Text) Color() RGBA          { return t.color }
func (t *Text) SetColor(c RGBA)      { t.color = c }
func (t *Text) Centered() bool       { return t.centered }

// SetCentered centers the text horizontally on its position instead of
// starting there.
func (t *Text) SetCentered(c bool) { t.centered = c }

// Normalize reports whether compatibility folding is enabled.
func (t *Text) Normalize() bool { return t.fold }

// SetNormalize enables NFKC folding before layout, so full-width letters or
// a no-break space map to their ASCII forms instead of being skipped. It is
// off by default.
func (t *Text) SetNormalize(n bool) { t.fold = n }

// Font returns the glyph source.
func (t *Text) Font() GlyphSource { return t.font }

// SetFont replaces the glyph source.
func (t *Text) SetFont(f GlyphSource) { t.font = f }

// Sprites returns the glyph sprites of the current layout.
func (t *Text) Sprites() []*Sprite { return t.sprites }

// Width returns the pen advance of the current layout in world units.
func (t *Text) Width() float32 { return t.width }

// Remove detaches every glyph sprite. The layout is kept, so the text can
// be added again.
func (t *Text) Remove() error {
	var errs []error
	for _, s := range t.sprites {
		if err := s.Remove(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// rebuild releases the old glyph sprites and lays the text out again.
// Sprites whose batch is already gone are discarded as well.
func (t *Text) rebuild() error {
	for i, s := range t.sprites {
		if err := s.Remove(); err != nil && !errors.Is(err, ErrStaleHandle) {
			return fmt.Errorf("photon: release glyph %d: %w", i, err)
		}
	}
	t.layout()
	return nil
}

// layout regenerates the glyph sprites. Characters outside the glyph range
// emit nothing and do not move the pen.
func (t *Text) layout() {
	t.sprites = nil
	t.width = 0
	if t.font == nil {
		return
	}

	str := t.str
	if t.fold {
		str = norm.NFKC.String(str)
	}
	runes := []rune(str)
	tex := t.font.Texture()
	x, y := t.pos.X, t.pos.Y

	kern := func(left rune, i int) float32 {
		if i >= len(runes)-1 {
			return 0
		}
		return t.font.Kern(left, runes[i+1])
	}

	for i, c := range runes {
		switch {
		case c == ' ':
			dash, _ := t.font.Glyph('-')
			x += dash.Width()*t.size + t.spacing + kern('-', i)*t.size
		case c > FirstGlyph && c <= LastGlyph:
			g, ok := t.font.Glyph(c)
			if !ok {
				continue
			}
			s := NewSprite(
				V2(x, y-g.Y1*t.size),
				V2(g.Width()*t.size, g.Height()*t.size),
				tex,
			)
			s.texCoords = g.Tex
			s.color = t.color
			t.sprites = append(t.sprites, s)
			x += g.Width()*t.size + t.spacing + kern(c, i)*t.size
		}
	}

	t.width = x - t.pos.X
	if t.centered {
		shift := t.width / 2
		for _, s := range t.sprites {
			s.pos.X -= shift
		}
	}
}
