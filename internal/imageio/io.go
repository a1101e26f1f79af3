// Package imageio decodes image files into tightly packed 8-bit pixel
// buffers with 1, 3 or 4 channels, and writes PNG snapshots.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp" // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// I/O errors.
var (
	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("image: empty data")

	// ErrUnsupportedChannels is returned for a channel count other than 1, 3 or 4.
	ErrUnsupportedChannels = errors.New("image: unsupported channel count")
)

// Pixels is a decoded image with rows stored top to bottom and no padding.
type Pixels struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// Load decodes the image file at path, auto-detecting the format, and
// converts it to the requested number of channels.
func Load(path string, channels int) (*Pixels, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("image: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return DecodeReader(f, channels)
}

// Decode decodes an encoded image held in memory.
func Decode(data []byte, channels int) (*Pixels, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return DecodeReader(bytes.NewReader(data), channels)
}

// DecodeReader decodes an image from r, auto-detecting the format.
func DecodeReader(r io.Reader, channels int) (*Pixels, error) {
	if channels != 1 && channels != 3 && channels != 4 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChannels, channels)
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("image: decode: %w", err)
	}
	return FromImage(img, channels), nil
}

// FromImage converts any image.Image to packed pixels. Color images reduced
// to one channel keep their red component.
func FromImage(img image.Image, channels int) *Pixels {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != w*4 || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}

	out := &Pixels{Width: w, Height: h, Channels: channels}
	if channels == 4 {
		out.Pix = append([]byte(nil), nrgba.Pix...)
		return out
	}

	out.Pix = make([]byte, w*h*channels)
	for i := range w * h {
		src := nrgba.Pix[i*4 : i*4+4]
		dst := out.Pix[i*channels : i*channels+channels]
		copy(dst, src[:channels])
	}
	return out
}

// SavePNG writes img as a PNG file.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("image: encode PNG: %w", err)
	}
	return f.Close()
}
