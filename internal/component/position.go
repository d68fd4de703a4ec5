package component

// Position is a grid cell.
type Position struct {
	X int32
	Y int32
}

// Bounds is the world resource limiting movement. Min is inclusive, Max is
// exclusive.
type Bounds struct {
	MinX int32
	MinY int32
	MaxX int32
	MaxY int32
}

// Contains reports whether p lies inside b.
func (b Bounds) Contains(p Position) bool {
	return p.X >= b.MinX && p.X < b.MaxX && p.Y >= b.MinY && p.Y < b.MaxY
}

// Clamp pulls p back into b.
func (b Bounds) Clamp(p Position) Position {
	p.X = clamp(p.X, b.MinX, b.MaxX-1)
	p.Y = clamp(p.Y, b.MinY, b.MaxY-1)
	return p
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Frame is the world resource describing the current step.
type Frame struct {
	Step  uint64
	Delta float64 // simulated units
}
