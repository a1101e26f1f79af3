package photon

import (
	"fmt"

	"github.com/gogpu/photon/internal/imageio"
)

// PixelLayout describes the channel layout of 8-bit texture data.
type PixelLayout uint8

// Supported pixel layouts.
const (
	LayoutRGBA PixelLayout = iota
	LayoutRGB
	LayoutRed
)

// Channels returns the number of bytes per pixel.
func (l PixelLayout) Channels() int {
	switch l {
	case LayoutRGB:
		return 3
	case LayoutRed:
		return 1
	default:
		return 4
	}
}

func (l PixelLayout) String() string {
	switch l {
	case LayoutRGBA:
		return "rgba"
	case LayoutRGB:
		return "rgb"
	case LayoutRed:
		return "red"
	}
	return fmt.Sprintf("PixelLayout(%d)", uint8(l))
}

// ParsePixelLayout converts "rgba", "rgb" or "red" to a PixelLayout.
func ParsePixelLayout(s string) (PixelLayout, error) {
	switch s {
	case "rgba", "RGBA", "":
		return LayoutRGBA, nil
	case "rgb", "RGB":
		return LayoutRGB, nil
	case "red", "RED", "r":
		return LayoutRed, nil
	}
	return LayoutRGBA, fmt.Errorf("photon: unknown pixel layout %q", s)
}

// ExpandRGBA converts w×h pixels in layout to tightly packed RGBA. RGB gets
// an opaque alpha; a red channel expands to (r, 0, 0, 255), matching how a
// single-channel texture samples in a shader. RGBA input is returned as is.
func ExpandRGBA(pixels []byte, w, h int, layout PixelLayout) ([]byte, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("photon: invalid texture size %dx%d", w, h)
	}
	n := w * h
	if want := n * layout.Channels(); len(pixels) != want {
		return nil, fmt.Errorf("photon: %s texture %dx%d needs %d bytes, got %d", layout, w, h, want, len(pixels))
	}

	switch layout {
	case LayoutRGB:
		out := make([]byte, n*4)
		for i := range n {
			out[i*4] = pixels[i*3]
			out[i*4+1] = pixels[i*3+1]
			out[i*4+2] = pixels[i*3+2]
			out[i*4+3] = 255
		}
		return out, nil
	case LayoutRed:
		out := make([]byte, n*4)
		for i := range n {
			out[i*4] = pixels[i]
			out[i*4+3] = 255
		}
		return out, nil
	default:
		return pixels, nil
	}
}

// LoadTextureFile decodes an image file (PNG, JPEG, GIF, BMP, TIFF or WebP)
// and uploads it to dev in the requested layout.
func LoadTextureFile(dev Device, path string, layout PixelLayout) (Texture, error) {
	img, err := imageio.Load(path, layout.Channels())
	if err != nil {
		return nil, &ResourceLoadError{Kind: "texture", Path: path, Err: err}
	}
	tex, err := dev.NewTexture(img.Pix, img.Width, img.Height, layout)
	if err != nil {
		return nil, fmt.Errorf("photon: upload texture %q: %w", path, err)
	}
	Logger().Debug("photon: texture loaded", "path", path, "width", img.Width, "height", img.Height, "layout", layout.String())
	return tex, nil
}

// LoadTextureBytes is like LoadTextureFile for an encoded image in memory.
func LoadTextureBytes(dev Device, data []byte, layout PixelLayout) (Texture, error) {
	img, err := imageio.Decode(data, layout.Channels())
	if err != nil {
		return nil, &ResourceLoadError{Kind: "texture", Err: err}
	}
	return dev.NewTexture(img.Pix, img.Width, img.Height, layout)
}
