package photon

import "errors"

// fakeDevice records what the renderer asks of a device.
type fakeDevice struct {
	buffers  []*fakeBuffer
	textures []*fakeTexture
	frames   int
	clear    RGBA
	camera   Camera
	draws    []fakeDraw
	inFrame  bool
	failDraw bool

	destroyed bool

	// maxBuffers makes NewVertexBuffer fail once that many buffers exist.
	// Zero means unlimited.
	maxBuffers int
}

type fakeDraw struct {
	buf      *fakeBuffer
	tex      Texture
	vertices int
}

type fakeBuffer struct {
	capacity  int
	data      []Quad
	uploads   int
	destroyed bool
}

type fakeTexture struct {
	w, h      int
	layout    PixelLayout
	destroyed bool
}

func (t *fakeTexture) Width() int          { return t.w }
func (t *fakeTexture) Height() int         { return t.h }
func (t *fakeTexture) Layout() PixelLayout { return t.layout }
func (t *fakeTexture) Destroy()            { t.destroyed = true }

func (b *fakeBuffer) Upload(quads []Quad) error {
	b.data = append(b.data[:0], quads...)
	b.uploads++
	return nil
}

func (b *fakeBuffer) Destroy() { b.destroyed = true }

func (d *fakeDevice) NewVertexBuffer(sprites int) (VertexBuffer, error) {
	if d.maxBuffers > 0 && len(d.buffers) >= d.maxBuffers {
		return nil, errors.New("out of device memory")
	}
	b := &fakeBuffer{capacity: sprites}
	d.buffers = append(d.buffers, b)
	return b, nil
}

func (d *fakeDevice) NewTexture(pixels []byte, w, h int, layout PixelLayout) (Texture, error) {
	if _, err := ExpandRGBA(pixels, w, h, layout); err != nil {
		return nil, err
	}
	t := &fakeTexture{w: w, h: h, layout: layout}
	d.textures = append(d.textures, t)
	return t, nil
}

func (d *fakeDevice) BeginFrame(clear RGBA, cam Camera) error {
	d.frames++
	d.clear = clear
	d.camera = cam
	d.draws = d.draws[:0]
	d.inFrame = true
	return nil
}

func (d *fakeDevice) Draw(buf VertexBuffer, tex Texture, vertexCount int) error {
	if !d.inFrame {
		return errors.New("draw outside frame")
	}
	if d.failDraw {
		return errors.New("draw failed")
	}
	d.draws = append(d.draws, fakeDraw{buf: buf.(*fakeBuffer), tex: tex, vertices: vertexCount})
	return nil
}

func (d *fakeDevice) EndFrame() error {
	d.inFrame = false
	return nil
}

func (d *fakeDevice) Destroy() { d.destroyed = true }

func newFakeTexture() *fakeTexture { return &fakeTexture{w: 1, h: 1} }

// fakeGlyphs is a monospace-ish glyph source where every glyph is
// advance×10 with its baseline at y=8.
type fakeGlyphs struct {
	advance map[rune]float32
	kern    map[[2]rune]float32
	tex     Texture
}

func (f *fakeGlyphs) Glyph(r rune) (Glyph, bool) {
	a, ok := f.advance[r]
	if !ok {
		return Glyph{}, false
	}
	return Glyph{X0: 0, Y0: -8, X1: a, Y1: 2, Tex: TexRect{S0: 0.1, T0: 0.2, S1: 0.3, T1: 0.4}}, true
}

func (f *fakeGlyphs) Kern(l, r rune) float32 { return f.kern[[2]rune{l, r}] }

func (f *fakeGlyphs) Texture() Texture { return f.tex }
