package font

// shelfPacker places rectangles left to right on horizontal shelves. A shelf
// is as tall as the tallest rectangle on it; when a rectangle does not fit
// on any shelf, a new one opens below the last.
type shelfPacker struct {
	width, height int
	padding       int
	shelves       []shelf
	used          int
}

type shelf struct {
	y, height, x int
}

func newShelfPacker(width, height, padding int) *shelfPacker {
	return &shelfPacker{width: width, height: height, padding: padding}
}

// place returns the top-left corner for a w×h rectangle, or false when the
// atlas is full.
func (p *shelfPacker) place(w, h int) (x, y int, ok bool) {
	pw, ph := w+p.padding, h+p.padding

	for i := range p.shelves {
		s := &p.shelves[i]
		if s.x+pw > p.width {
			continue
		}
		if h > s.height {
			// Only the last shelf may grow.
			if i != len(p.shelves)-1 || s.y+ph > p.height {
				continue
			}
			s.height = h
		}
		x, y = s.x, s.y
		s.x += pw
		p.used += w * h
		return x, y, true
	}

	top := 0
	if n := len(p.shelves); n > 0 {
		last := p.shelves[n-1]
		top = last.y + last.height + p.padding
	}
	if pw > p.width || top+ph > p.height {
		return -1, -1, false
	}
	p.shelves = append(p.shelves, shelf{y: top, height: h, x: pw})
	p.used += w * h
	return 0, top, true
}

// utilization returns the covered fraction of the atlas.
func (p *shelfPacker) utilization() float64 {
	if p.width <= 0 || p.height <= 0 {
		return 0
	}
	return float64(p.used) / float64(p.width*p.height)
}
