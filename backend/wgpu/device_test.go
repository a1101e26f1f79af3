package wgpu

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/photon"
)

// createNoopDevice creates a noop HAL device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

func newTestDevice(t *testing.T) *Device {
	t.Helper()
	device, queue := createNoopDevice(t)
	d, err := New(device, queue, 160, 90)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(d.Destroy)
	return d
}

// readFloats maps a noop buffer and decodes its f32 contents.
func readFloats(t *testing.T, d *Device, buf hal.Buffer, n int) []float32 {
	t.Helper()
	m, err := d.device.MapBuffer(buf, 0, uint64(n*4))
	if err != nil {
		t.Fatalf("MapBuffer: %v", err)
	}
	defer func() { _ = d.device.UnmapBuffer(buf) }()
	raw := unsafe.Slice((*byte)(m.Ptr), n*4)
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out
}

func TestNewValidation(t *testing.T) {
	device, queue := createNoopDevice(t)
	tests := []struct {
		name   string
		device hal.Device
		queue  hal.Queue
		w, h   int
	}{
		{"nil device", nil, queue, 10, 10},
		{"nil queue", device, nil, 10, 10},
		{"zero width", device, queue, 0, 10},
		{"negative height", device, queue, 10, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.device, tt.queue, tt.w, tt.h)
			if !errors.Is(err, photon.ErrContextInit) {
				t.Errorf("err = %v, want ErrContextInit", err)
			}
		})
	}
}

func TestCheckShader(t *testing.T) {
	if err := checkShader(spriteShaderSource); err != nil {
		t.Fatalf("built-in shader rejected: %v", err)
	}
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"garbage", "this is not wgsl {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkShader(tt.src)
			if !errors.Is(err, photon.ErrCompile) {
				t.Errorf("err = %v, want ErrCompile", err)
			}
		})
	}
}

func TestNewRejectsBadShader(t *testing.T) {
	device, queue := createNoopDevice(t)
	_, err := New(device, queue, 8, 8, WithShaderSource("fn broken("))
	var ce *photon.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *CompileError", err)
	}
}

func TestAspectRatio(t *testing.T) {
	d := newTestDevice(t)
	if got := d.AspectRatio(); got != 160.0/90 {
		t.Errorf("AspectRatio() = %v", got)
	}
	if err := d.Resize(50, 100); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if got := d.AspectRatio(); got != 0.5 {
		t.Errorf("AspectRatio() after resize = %v, want 0.5", got)
	}
}

func TestVertexBufferUpload(t *testing.T) {
	d := newTestDevice(t)
	vb, err := d.NewVertexBuffer(2)
	if err != nil {
		t.Fatalf("NewVertexBuffer: %v", err)
	}
	defer vb.Destroy()

	q := photon.EncodeQuad(photon.V2(1, 2), photon.V2(3, 4), photon.RGBA{R: 0.5, G: 0.25, B: 1, A: 1}, photon.FullTexRect)
	if err := vb.Upload([]photon.Quad{q, {}}); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	got := readFloats(t, d, vb.(*vertexBuffer).buf, 2*photon.VerticesPerSprite*photon.FloatsPerVertex)
	for i, v := range q {
		want := v.Floats()
		for j := range want {
			if got[i*photon.FloatsPerVertex+j] != want[j] {
				t.Fatalf("vertex %d float %d = %v, want %v", i, j, got[i*photon.FloatsPerVertex+j], want[j])
			}
		}
	}
	if err := vb.Upload(make([]photon.Quad, 3)); err == nil {
		t.Error("oversized upload succeeded")
	}
}

func TestNewTextureLayouts(t *testing.T) {
	d := newTestDevice(t)
	tests := []struct {
		name   string
		pixels []byte
		layout photon.PixelLayout
	}{
		{"rgba", make([]byte, 2*2*4), photon.LayoutRGBA},
		{"rgb", make([]byte, 2*2*3), photon.LayoutRGB},
		{"red", make([]byte, 2*2), photon.LayoutRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := d.NewTexture(tt.pixels, 2, 2, tt.layout)
			if err != nil {
				t.Fatalf("NewTexture: %v", err)
			}
			defer tex.Destroy()
			if tex.Width() != 2 || tex.Height() != 2 || tex.Layout() != tt.layout {
				t.Errorf("texture = %dx%d %v", tex.Width(), tex.Height(), tex.Layout())
			}
			if tex.(*texture).group == nil {
				t.Error("texture has no bind group")
			}
		})
	}
	if _, err := d.NewTexture([]byte{1}, 2, 2, photon.LayoutRGBA); err == nil {
		t.Error("short pixel data accepted")
	}
}

func TestFrameLifecycle(t *testing.T) {
	d := newTestDevice(t)
	vb, _ := d.NewVertexBuffer(1)
	tex, _ := d.NewTexture(make([]byte, 4), 1, 1, photon.LayoutRGBA)

	if err := d.Draw(vb, tex, 6); !errors.Is(err, ErrNoFrame) {
		t.Errorf("Draw outside frame: err = %v, want ErrNoFrame", err)
	}
	if err := d.EndFrame(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("EndFrame outside frame: err = %v, want ErrNoFrame", err)
	}

	cam := photon.NewCamera(d.AspectRatio())
	if err := d.BeginFrame(photon.Black, cam); err != nil {
		t.Fatalf("BeginFrame: %v", err)
	}
	if err := d.BeginFrame(photon.Black, cam); !errors.Is(err, ErrFrameActive) {
		t.Errorf("nested BeginFrame: err = %v, want ErrFrameActive", err)
	}
	if err := d.Draw(vb, tex, 6); err != nil {
		t.Errorf("Draw: %v", err)
	}
	if err := d.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if d.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", d.Frames())
	}

	got := readFloats(t, d, d.uniform, 32)
	for i, v := range cam.Proj {
		if got[i] != v {
			t.Fatalf("uniform proj[%d] = %v, want %v", i, got[i], v)
		}
	}
	for i, v := range cam.View {
		if got[16+i] != v {
			t.Fatalf("uniform view[%d] = %v, want %v", i, got[16+i], v)
		}
	}
}

func TestDrawRejectsForeignObjects(t *testing.T) {
	a, b := newTestDevice(t), newTestDevice(t)
	vb, _ := b.NewVertexBuffer(1)
	tex, _ := b.NewTexture(make([]byte, 4), 1, 1, photon.LayoutRGBA)

	if err := a.BeginFrame(photon.Black, photon.NewCamera(1)); err != nil {
		t.Fatalf("BeginFrame: %v", err)
	}
	defer func() { _ = a.EndFrame() }()
	if err := a.Draw(vb, tex, 6); !errors.Is(err, ErrForeignObject) {
		t.Errorf("err = %v, want ErrForeignObject", err)
	}
}

func TestImageReadback(t *testing.T) {
	d := newTestDevice(t)
	img, err := d.Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 90 {
		t.Errorf("Image bounds = %v, want 160x90", b)
	}
}

func TestRendererOnWgpuDevice(t *testing.T) {
	d := newTestDevice(t)
	r, err := photon.NewRenderer2D(d, d)
	if err != nil {
		t.Fatalf("NewRenderer2D: %v", err)
	}
	tex, err := r.NewTexture([]byte{255, 0, 0}, 1, 1, photon.LayoutRGB)
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	s := photon.NewSprite(photon.V2(10, 10), photon.V2(20, 20), tex)
	if err := r.AddSprite(s); err != nil {
		t.Fatalf("AddSprite: %v", err)
	}
	if err := r.RenderFrame(); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if st := r.Stats(); st.DrawCalls != 1 || st.Uploads != 1 {
		t.Errorf("Stats() = %+v", st)
	}
	r.Shutdown()
}

func TestDestroyIsIdempotent(t *testing.T) {
	d := newTestDevice(t)
	d.Destroy()
	d.Destroy()
	if _, err := d.NewVertexBuffer(1); !errors.Is(err, ErrDestroyed) {
		t.Errorf("err = %v, want ErrDestroyed", err)
	}
}
