package font

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/photon"
)

type uploadedTexture struct {
	w, h      int
	pixels    []byte
	destroyed bool
	destroys  int
}

func (t *uploadedTexture) Width() int                 { return t.w }
func (t *uploadedTexture) Height() int                { return t.h }
func (t *uploadedTexture) Layout() photon.PixelLayout { return photon.LayoutRGBA }

func (t *uploadedTexture) Destroy() {
	t.destroyed = true
	t.destroys++
}

type textureRecorder struct {
	last *uploadedTexture
}

func (r *textureRecorder) NewTexture(pixels []byte, w, h int, layout photon.PixelLayout) (photon.Texture, error) {
	r.last = &uploadedTexture{w: w, h: h, pixels: pixels}
	return r.last, nil
}

func newTestFont(t *testing.T, opts ...Option) (*Font, *textureRecorder) {
	t.Helper()
	rec := &textureRecorder{}
	opts = append([]Option{WithPixelHeight(32), WithAtlasSize(512)}, opts...)
	f, err := New(rec, goregular.TTF, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f, rec
}

func TestAtlasCoversPrintableRange(t *testing.T) {
	f, rec := newTestFont(t)
	if rec.last.w != 512 || len(rec.last.pixels) != 512*512*4 {
		t.Fatalf("atlas upload %dx%d with %d bytes", rec.last.w, rec.last.h, len(rec.last.pixels))
	}
	for r := rune(photon.FirstGlyph); r <= photon.LastGlyph; r++ {
		g, ok := f.Glyph(r)
		if !ok {
			t.Errorf("glyph %q missing", r)
			continue
		}
		if g.Tex.S0 < 0 || g.Tex.T0 < 0 || g.Tex.S1 > 1 || g.Tex.T1 > 1 {
			t.Errorf("glyph %q texture rect %v outside atlas", r, g.Tex)
		}
		if g.Width() < 0 || g.Height() < 0 {
			t.Errorf("glyph %q has negative extent", r)
		}
	}
	if _, ok := f.Glyph('é'); ok {
		t.Error("glyph outside range reported present")
	}
	if _, ok := f.Glyph('\n'); ok {
		t.Error("control glyph reported present")
	}
}

func TestGlyphMetrics(t *testing.T) {
	f, _ := newTestFont(t)

	space, _ := f.Glyph(' ')
	if space.Width() != 0 || space.Height() != 0 {
		t.Errorf("space quad = %+v, want empty", space)
	}

	x, _ := f.Glyph('x')
	if x.Y1 > 1 || x.Y0 >= 0 {
		t.Errorf("'x' should sit on the baseline: Y0=%v Y1=%v", x.Y0, x.Y1)
	}
	p, _ := f.Glyph('p')
	if p.Y1 <= 1 {
		t.Errorf("'p' should descend below the baseline: Y1=%v", p.Y1)
	}
	if h := f.MaxHeight(); h < x.Height() || h > 2*32 {
		t.Errorf("MaxHeight() = %v", h)
	}
	if f.Ascent() <= 0 || f.Descent() <= 0 {
		t.Errorf("Ascent/Descent = %v/%v", f.Ascent(), f.Descent())
	}
	if f.Name() != "Go" {
		t.Errorf("Name() = %q, want Go", f.Name())
	}
}

func TestAtlasTexelsMatchGlyphs(t *testing.T) {
	f, rec := newTestFont(t)
	g, _ := f.Glyph('M')
	size := float32(f.AtlasSize())
	rect := image.Rect(int(g.Tex.S0*size), int(g.Tex.T0*size), int(g.Tex.S1*size), int(g.Tex.T1*size))

	opaque := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			px := rec.last.pixels[(y*f.AtlasSize()+x)*4:]
			switch px[3] {
			case 255:
				opaque++
				if px[0] <= 1 {
					t.Fatalf("opaque texel at (%d,%d) with coverage %d", x, y, px[0])
				}
			case 0:
			default:
				t.Fatalf("alpha %d at (%d,%d), want 0 or 255", px[3], x, y)
			}
		}
	}
	if opaque == 0 {
		t.Error("'M' left no ink in the atlas")
	}
}

func TestKerning(t *testing.T) {
	f, _ := newTestFont(t)
	if k := f.Kern('A', '\n'); k != 0 {
		t.Errorf("Kern with control rune = %v, want 0", k)
	}
	k1 := f.Kern('A', 'V')
	k2 := f.Kern('A', 'V')
	if k1 != k2 {
		t.Errorf("Kern not stable: %v vs %v", k1, k2)
	}
	if k1 > 0 || k1 < -32 {
		t.Errorf("Kern('A','V') = %v, want a small non-positive value", k1)
	}
	if st := f.KernStats(); st.Hits != 1 || st.Misses != 1 {
		t.Errorf("KernStats() = %+v, want 1 hit and 1 miss", st)
	}
}

func TestTextLayoutWithFont(t *testing.T) {
	f, _ := newTestFont(t)
	text := photon.NewText(f, "Hello, Photon!", photon.V2(0, 50), 0.15, 0.5)
	// 14 runes, one space.
	if n := len(text.Sprites()); n != 13 {
		t.Errorf("len(Sprites()) = %d, want 13", n)
	}
	if text.Width() <= 0 {
		t.Errorf("Width() = %v", text.Width())
	}
	for _, s := range text.Sprites() {
		if s.Texture() != f.Texture() {
			t.Fatal("glyph sprite not on the atlas")
		}
	}
}

func TestAtlasTooSmall(t *testing.T) {
	_, err := New(&textureRecorder{}, goregular.TTF, WithAtlasSize(32))
	if !errors.Is(err, ErrAtlasFull) || !errors.Is(err, photon.ErrResourceLoad) {
		t.Errorf("err = %v, want ErrAtlasFull wrapped as a resource load error", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.ttf")
	if err := os.WriteFile(garbage, []byte("not a font"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.ttf")},
		{"malformed file", garbage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(&textureRecorder{}, tt.path)
			var rle *photon.ResourceLoadError
			if !errors.As(err, &rle) {
				t.Fatalf("err = %v, want *ResourceLoadError", err)
			}
			if rle.Kind != "font" || rle.Path != tt.path {
				t.Errorf("ResourceLoadError = %+v", rle)
			}
		})
	}
}

func TestDestroy(t *testing.T) {
	f, rec := newTestFont(t)
	f.Destroy()
	f.Destroy()
	if !rec.last.destroyed || f.Texture() != nil {
		t.Error("Destroy did not release the atlas")
	}
}

// atlasDevice is a photon.Device that only records texture uploads.
type atlasDevice struct {
	textureRecorder
}

type nopBuffer struct{}

func (nopBuffer) Upload([]photon.Quad) error { return nil }
func (nopBuffer) Destroy()                   {}

func (d *atlasDevice) NewVertexBuffer(int) (photon.VertexBuffer, error) { return nopBuffer{}, nil }
func (d *atlasDevice) BeginFrame(photon.RGBA, photon.Camera) error      { return nil }
func (d *atlasDevice) Draw(photon.VertexBuffer, photon.Texture, int) error {
	return nil
}
func (d *atlasDevice) EndFrame() error { return nil }
func (d *atlasDevice) Destroy()        {}

func TestRendererOwnsAtlas(t *testing.T) {
	dev := &atlasDevice{}
	r, err := photon.NewRenderer2D(dev, nil)
	if err != nil {
		t.Fatalf("NewRenderer2D: %v", err)
	}
	if _, err := New(r, goregular.TTF, WithPixelHeight(32), WithAtlasSize(512)); err != nil {
		t.Fatalf("New: %v", err)
	}
	r.Shutdown()
	if got := dev.last.destroys; got != 1 {
		t.Errorf("atlas destroyed %d times by Shutdown, want 1", got)
	}
}
