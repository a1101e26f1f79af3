package photon

// Option configures a Renderer2D during creation.
//
// Example:
//
//	r, err := photon.NewRenderer2D(dev, win,
//	    photon.WithBatchCapacity(2048),
//	    photon.WithClearColor(photon.Hex("#202030")),
//	)
type Option func(*options)

type options struct {
	batchCapacity int
	clearColor    RGBA
}

func defaultOptions() options {
	return options{
		batchCapacity: DefaultBatchCapacity,
		clearColor:    Black,
	}
}

// WithBatchCapacity sets how many sprites each batch holds. Values below 1
// are ignored.
func WithBatchCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchCapacity = n
		}
	}
}

// WithClearColor sets the color the frame is cleared to.
func WithClearColor(c RGBA) Option {
	return func(o *options) {
		o.clearColor = c
	}
}
