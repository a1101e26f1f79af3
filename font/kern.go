package font

import (
	"bytes"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/photon/internal/cache"
)

// kerner measures pair kerning by shaping "lr" with HarfBuzz and comparing
// the pair's advance with the advances of l and r shaped alone. That picks
// up GPOS pair adjustments as well as the legacy kern table.
type kerner struct {
	font   *gtfont.Font
	size   fixed.Int26_6
	shaper shaping.HarfbuzzShaper
	cache  *cache.Cache[[2]rune, float32]
}

func newKerner(data []byte, pixelHeight float64, cacheSize int) (*kerner, error) {
	face, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &kerner{
		font:  face.Font,
		size:  fixed.Int26_6(pixelHeight * 64),
		cache: cache.New[[2]rune, float32](cacheSize),
	}, nil
}

func (k *kerner) kern(l, r rune) float32 {
	if l < ' ' || r < ' ' {
		return 0
	}
	return k.cache.GetOrCreate([2]rune{l, r}, func() float32 {
		pair := k.advance([]rune{l, r})
		return float32(pair-k.advance([]rune{l})-k.advance([]rune{r})) / 64
	})
}

// advance returns the horizontal pen advance of the shaped runes.
func (k *kerner) advance(runes []rune) fixed.Int26_6 {
	out := k.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gtfont.NewFace(k.font),
		Size:      k.size,
		Script:    language.Latin,
		Language:  language.NewLanguage("en"),
	})
	var adv fixed.Int26_6
	for _, g := range out.Glyphs {
		adv += g.Advance
	}
	return adv
}
