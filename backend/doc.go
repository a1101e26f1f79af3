// Package backend selects a photon.Device implementation by name.
//
// Device packages register themselves from init functions:
//
//	import _ "github.com/gogpu/photon/backend/soft"
//	import _ "github.com/gogpu/photon/backend/wgpu"
//
// Open creates a device from a named backend, OpenBest tries every
// available backend in priority order:
//
//	dev, err := backend.Open("software", backend.Config{Width: 800, Height: 600})
//	dev, err := backend.OpenBest(backend.Config{Width: 800, Height: 600})
//
// Standard priorities are 100 for GPU devices, 50 for windowed devices that
// need an external loop and 10 for the CPU rasterizer.
package backend
