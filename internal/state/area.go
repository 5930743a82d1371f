package state

// Area is an axis-aligned rectangle in logical coordinates.
type Area struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside a, edges included.
func (a Area) Contains(p Point) bool {
	return p.X >= a.X && p.X <= a.X+a.Width &&
		p.Y >= a.Y && p.Y <= a.Y+a.Height
}

// ClampInto moves a so it lies within bounds when it fits, keeping its size.
// An area larger than bounds is pinned to the bounds' top-left corner.
func (a Area) ClampInto(bounds Area) Area {
	if a.X+a.Width > bounds.X+bounds.Width {
		a.X = bounds.X + bounds.Width - a.Width
	}
	if a.Y+a.Height > bounds.Y+bounds.Height {
		a.Y = bounds.Y + bounds.Height - a.Height
	}
	if a.X < bounds.X {
		a.X = bounds.X
	}
	if a.Y < bounds.Y {
		a.Y = bounds.Y
	}
	return a
}
