package font

// Defaults for atlas generation.
const (
	DefaultPixelHeight = 65
	DefaultAtlasSize   = 4096
	defaultKernCache   = 1024
)

// Option configures atlas generation.
type Option func(*options)

type options struct {
	pixelHeight float64
	atlasSize   int
	padding     int
	kernCache   int
}

func defaultOptions() options {
	return options{
		pixelHeight: DefaultPixelHeight,
		atlasSize:   DefaultAtlasSize,
		padding:     1,
		kernCache:   defaultKernCache,
	}
}

// WithPixelHeight sets the rasterization height in pixels.
func WithPixelHeight(px float64) Option {
	return func(o *options) {
		if px > 0 {
			o.pixelHeight = px
		}
	}
}

// WithAtlasSize sets the width and height of the square atlas.
func WithAtlasSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.atlasSize = n
		}
	}
}

// WithKernCacheSize bounds the number of memoized kerning pairs.
func WithKernCacheSize(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.kernCache = n
		}
	}
}
