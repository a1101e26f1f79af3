// Package wgpu implements photon.Device on the gogpu WebGPU HAL.
//
// A Device renders into an offscreen RGBA8 texture by default, which can be
// read back with Device.Image, or into a caller-provided texture view such
// as a surface image (see Device.SetTarget).
//
// Three constructors cover the common setups:
//
//   - New wraps an existing hal.Device and hal.Queue.
//   - NewFromProvider takes the device from a gpucontext.DeviceProvider,
//     e.g. a gogpu window.
//   - NewHeadless picks the best HAL backend on its own.
//
// Importing the package registers the "wgpu" backend with package backend.
package wgpu
