// Package font builds glyph atlases from TrueType and OpenType fonts for
// photon text.
//
// Every printable ASCII character is rasterized once at a fixed pixel
// height into a single RGBA atlas texture. The resulting [Font] implements
// photon.GlyphSource: glyph quads are reported in atlas pixels relative to
// the pen on the baseline, and kerning comes from HarfBuzz pair shaping.
//
//	f, err := font.Load(renderer, "fonts/Roboto-Regular.ttf")
//	if err != nil {
//	    return err
//	}
//	t := photon.NewText(f, "Hello, Photon!", photon.V2(0, 50), 0.15, 0.5)
//	_ = renderer.AddText(t)
package font
