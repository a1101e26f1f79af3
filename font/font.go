package font

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/gogpu/photon"
	"github.com/gogpu/photon/internal/cache"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrAtlasFull is returned when the glyphs do not fit the atlas.
var ErrAtlasFull = errors.New("font: atlas too small for glyph range")

// TextureFactory uploads the atlas. Both photon.Device and
// *photon.Renderer2D satisfy it; the latter also takes ownership.
type TextureFactory interface {
	NewTexture(pixels []byte, w, h int, layout photon.PixelLayout) (photon.Texture, error)
}

const glyphCount = photon.LastGlyph - photon.FirstGlyph + 1

// Font is a rasterized glyph atlas for ' '..'~'.
type Font struct {
	name        string
	pixelHeight float64
	atlasSize   int

	glyphs    [glyphCount]photon.Glyph
	present   [glyphCount]bool
	maxHeight float32
	ascent    float32
	descent   float32

	tex   photon.Texture
	kerns *kerner
}

// Load reads and rasterizes the font file at path.
func Load(tf TextureFactory, path string, opts ...Option) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &photon.ResourceLoadError{Kind: "font", Path: path, Err: err}
	}
	f, err := New(tf, data, opts...)
	var rle *photon.ResourceLoadError
	if errors.As(err, &rle) && rle.Path == "" {
		rle.Path = path
	}
	return f, err
}

// New rasterizes the font in data, which holds a TrueType or OpenType file.
func New(tf TextureFactory, data []byte, opts ...Option) (*Font, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, &photon.ResourceLoadError{Kind: "font", Err: err}
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    o.pixelHeight,
		DPI:     72,
		Hinting: xfont.HintingFull,
	})
	if err != nil {
		return nil, &photon.ResourceLoadError{Kind: "font", Err: err}
	}
	defer func() {
		_ = face.Close()
	}()

	kerns, err := newKerner(data, o.pixelHeight, o.kernCache)
	if err != nil {
		return nil, &photon.ResourceLoadError{Kind: "font", Err: err}
	}

	f := &Font{
		name:        familyName(parsed),
		pixelHeight: o.pixelHeight,
		atlasSize:   o.atlasSize,
		kerns:       kerns,
	}
	m := face.Metrics()
	f.ascent = fixedToFloat(m.Ascent)
	f.descent = fixedToFloat(m.Descent)

	atlas, err := f.rasterize(face, o)
	if err != nil {
		return nil, &photon.ResourceLoadError{Kind: "font", Err: err}
	}

	tex, err := tf.NewTexture(expandCoverage(atlas), o.atlasSize, o.atlasSize, photon.LayoutRGBA)
	if err != nil {
		return nil, fmt.Errorf("font: upload atlas: %w", err)
	}
	f.tex = tex

	photon.Logger().Debug("font: atlas built", "font", f.name,
		"pixel_height", o.pixelHeight, "atlas", o.atlasSize)
	return f, nil
}

// rasterize draws every glyph of the range into one coverage atlas and
// records its quad and texture rectangle.
func (f *Font) rasterize(face xfont.Face, o options) (*image.Alpha, error) {
	size := o.atlasSize
	atlas := image.NewAlpha(image.Rect(0, 0, size, size))
	packer := newShelfPacker(size, size, o.padding)
	inv := 1 / float32(size)

	for r := rune(photon.FirstGlyph); r <= photon.LastGlyph; r++ {
		bounds, _, ok := face.GlyphBounds(r)
		if !ok {
			continue
		}
		minX := bounds.Min.X.Floor()
		minY := bounds.Min.Y.Floor()
		maxX := bounds.Max.X.Ceil()
		maxY := bounds.Max.Y.Ceil()
		w, h := max(maxX-minX, 0), max(maxY-minY, 0)

		x, y, ok := packer.place(w, h)
		if !ok {
			return nil, fmt.Errorf("%w: %q needs %dx%d in a %d atlas", ErrAtlasFull, r, w, h, size)
		}

		if w > 0 && h > 0 {
			d := &xfont.Drawer{
				Dst:  atlas,
				Src:  image.White,
				Face: face,
				Dot:  fixed.P(x-minX, y-minY),
			}
			d.DrawString(string(r))
		}

		i := r - photon.FirstGlyph
		f.present[i] = true
		f.glyphs[i] = photon.Glyph{
			X0: float32(minX),
			Y0: float32(minY),
			X1: float32(minX + w),
			Y1: float32(minY + h),
			Tex: photon.TexRect{
				S0: float32(x) * inv,
				T0: float32(y) * inv,
				S1: float32(x+w) * inv,
				T1: float32(y+h) * inv,
			},
		}
		f.maxHeight = max(f.maxHeight, float32(h))
	}
	photon.Logger().Debug("font: glyphs packed", "utilization", packer.utilization())
	return atlas, nil
}

// expandCoverage turns a coverage mask into RGBA texels. Coverage becomes
// the color channels and any coverage above 1 is fully opaque.
func expandCoverage(a *image.Alpha) []byte {
	out := make([]byte, len(a.Pix)*4)
	for i, v := range a.Pix {
		o := out[i*4 : i*4+4 : i*4+4]
		o[0], o[1], o[2] = v, v, v
		if v > 1 {
			o[3] = 255
		}
	}
	return out
}

// Glyph returns the quad for r.
func (f *Font) Glyph(r rune) (photon.Glyph, bool) {
	if r < photon.FirstGlyph || r > photon.LastGlyph {
		return photon.Glyph{}, false
	}
	i := r - photon.FirstGlyph
	return f.glyphs[i], f.present[i]
}

// Kern returns the pair adjustment between left and right in atlas pixels.
func (f *Font) Kern(left, right rune) float32 { return f.kerns.kern(left, right) }

// Texture returns the atlas texture.
func (f *Font) Texture() photon.Texture { return f.tex }

// Name returns the font family name, if the font carries one.
func (f *Font) Name() string { return f.name }

// PixelHeight returns the rasterization height.
func (f *Font) PixelHeight() float64 { return f.pixelHeight }

// AtlasSize returns the side length of the atlas texture.
func (f *Font) AtlasSize() int { return f.atlasSize }

// MaxHeight returns the tallest glyph quad in atlas pixels.
func (f *Font) MaxHeight() float32 { return f.maxHeight }

// Ascent returns the distance from the baseline to the top of the line.
func (f *Font) Ascent() float32 { return f.ascent }

// Descent returns the distance from the baseline to the bottom of the line.
func (f *Font) Descent() float32 { return f.descent }

// KernStats reports how often kerning pairs were served from memory.
func (f *Font) KernStats() cache.Stats { return f.kerns.cache.Stats() }

// Destroy releases the atlas texture. Fonts whose atlas was created
// through a Renderer2D are released by its Shutdown instead.
func (f *Font) Destroy() {
	if f.tex != nil {
		f.tex.Destroy()
		f.tex = nil
	}
}

func familyName(f *opentype.Font) string {
	name, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		return ""
	}
	return name
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
