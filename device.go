package photon

// Device is the explicit graphics context. Every GPU resource the renderer
// uses is created through it and every draw goes through it, so a renderer
// never depends on thread-local or global graphics state.
//
// A Device is used from a single goroutine. Draw calls are only valid
// between BeginFrame and EndFrame.
//
// Implementations live in backend/soft, backend/wgpu and backend/ebiten.
type Device interface {
	// NewVertexBuffer allocates a buffer holding exactly sprites quads.
	NewVertexBuffer(sprites int) (VertexBuffer, error)

	// NewTexture uploads w×h pixels in the given layout.
	NewTexture(pixels []byte, w, h int, layout PixelLayout) (Texture, error)

	// BeginFrame clears the target and sets the camera used by every
	// following Draw.
	BeginFrame(clear RGBA, cam Camera) error

	// Draw renders the first vertexCount vertices of buf with tex bound to
	// texture unit 0.
	Draw(buf VertexBuffer, tex Texture, vertexCount int) error

	// EndFrame submits the frame.
	EndFrame() error

	// Destroy releases the pipeline and every resource owned by the device.
	Destroy()
}

// VertexBuffer is device-resident storage for one batch.
type VertexBuffer interface {
	// Upload replaces the whole buffer. len(quads) is the buffer capacity.
	Upload(quads []Quad) error
	Destroy()
}

// Texture is an opaque device texture. Sprites are grouped into batches by
// Texture identity, so implementations must be comparable pointers.
type Texture interface {
	Width() int
	Height() int
	Layout() PixelLayout
	Destroy()
}
