package photon

import (
	"image/color"
	"testing"
)

// Verify at compile time that RGBA implements color.Color.
var _ color.Color = RGBA{}

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    RGBA
		wantErr bool
	}{
		{"short", "#fff", White, false},
		{"short alpha", "f008", RGBA{1, 0, 0, float32(0x88) / 255}, false},
		{"long", "#000000", Black, false},
		{"long alpha", "00ff0080", RGBA{0, 1, 0, float32(0x80) / 255}, false},
		{"bad length", "#12345", Black, true},
		{"bad digit", "#zzzzzz", Black, true},
		{"empty", "", Black, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if Hex(tt.in) != tt.want {
				t.Errorf("Hex(%q) = %+v, want %+v", tt.in, Hex(tt.in), tt.want)
			}
		})
	}
}

func TestRGBAColor(t *testing.T) {
	tests := []struct {
		name string
		c    RGBA
		want color.NRGBA
	}{
		{"white", White, color.NRGBA{255, 255, 255, 255}},
		{"clamped", RGBA{2, -1, 0.5, 1}, color.NRGBA{255, 0, 128, 255}},
		{"transparent", Transparent, color.NRGBA{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Color(); got != tt.want {
				t.Errorf("Color() = %v, want %v", got, tt.want)
			}
		})
	}
}
