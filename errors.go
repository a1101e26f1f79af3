package photon

import (
	"errors"
	"fmt"
)

// Sentinel errors for the photon package.
var (
	// ErrCapacityExceeded is returned when a sprite is inserted into a batch
	// whose slots are all occupied.
	ErrCapacityExceeded = errors.New("photon: batch capacity exceeded")

	// ErrStaleHandle is returned when a sprite refers to a batch slot that no
	// longer exists, typically because the renderer was shut down.
	ErrStaleHandle = errors.New("photon: stale sprite handle")

	// ErrResourceLoad is matched by every *ResourceLoadError.
	ErrResourceLoad = errors.New("photon: resource load failed")

	// ErrCompile is matched by every *CompileError.
	ErrCompile = errors.New("photon: shader compile failed")

	// ErrContextInit is matched by every *ContextInitError.
	ErrContextInit = errors.New("photon: context init failed")

	// ErrNilTexture is returned when a sprite without a texture is added.
	ErrNilTexture = errors.New("photon: sprite has no texture")

	// ErrNilDevice is returned when a renderer is created without a device.
	ErrNilDevice = errors.New("photon: nil device")

	// ErrRendererClosed is returned by operations on a renderer after Shutdown.
	ErrRendererClosed = errors.New("photon: renderer is shut down")
)

// ResourceLoadError reports a texture, font or shader source that could not
// be read or decoded.
type ResourceLoadError struct {
	Kind string // "texture", "font", "shader"
	Path string // empty for in-memory sources
	Err  error
}

func (e *ResourceLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("photon: load %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("photon: load %s %q: %v", e.Kind, e.Path, e.Err)
}

func (e *ResourceLoadError) Unwrap() []error { return []error{ErrResourceLoad, e.Err} }

// CompileError reports shader source rejected by the shader compiler or the
// device.
type CompileError struct {
	Stage string // "vertex", "fragment" or "module"
	Log   string
	Err   error
}

func (e *CompileError) Error() string {
	if e.Log != "" {
		return fmt.Sprintf("photon: compile %s shader: %s", e.Stage, e.Log)
	}
	return fmt.Sprintf("photon: compile %s shader: %v", e.Stage, e.Err)
}

func (e *CompileError) Unwrap() []error { return []error{ErrCompile, e.Err} }

// ContextInitError reports a failure to bring up a window, adapter or device.
type ContextInitError struct {
	Backend string
	Err     error
}

func (e *ContextInitError) Error() string {
	return fmt.Sprintf("photon: init %s: %v", e.Backend, e.Err)
}

func (e *ContextInitError) Unwrap() []error { return []error{ErrContextInit, e.Err} }
