// Package soft implements photon.Device on the CPU.
//
// The device rasterizes the sprite triangles into an *image.RGBA with
// nearest-texel sampling and straight alpha blending, the same blend the GPU
// pipeline uses. Rows are split into bands that render concurrently; every
// band walks all triangles in submission order, so overlapping sprites
// composite exactly as on the GPU.
//
// It needs no window or GPU and is used for tests, headless export and as
// the last-resort backend. Importing the package registers it with package
// backend as "software".
package soft
