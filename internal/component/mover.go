package component

import "fmt"

// Direction is a grid heading. The zero value means no direction.
type Direction uint8

const (
	DirNone Direction = iota
	DirLeft
	DirRight
	DirUp
	DirDown
)

// Directions lists the four real headings in a fixed order.
var Directions = [4]Direction{DirLeft, DirRight, DirUp, DirDown}

// Delta returns the unit grid step for d.
func (d Direction) Delta() (dx, dy int32) {
	switch d {
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	}
	return 0, 0
}

func (d Direction) String() string {
	switch d {
	case DirNone:
		return "none"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// ParseDirection is the inverse of Direction.String.
func ParseDirection(s string) (Direction, error) {
	for _, d := range append([]Direction{DirNone}, Directions[:]...) {
		if d.String() == s {
			return d, nil
		}
	}
	return DirNone, fmt.Errorf("unknown direction %q", s)
}

// Mover interpolates one grid step at a time. Pending is DirNone only while
// idle, and then Progress is 0.
type Mover struct {
	Progress  float32
	Speed     float32 // progress per simulated unit
	Pending   Direction
	Committed bool // Position already moved for the current step
}

// Idle reports whether no move is in progress.
func (m *Mover) Idle() bool { return m.Pending == DirNone }

// Request starts a move toward d. A move already in progress wins.
func (m *Mover) Request(d Direction) bool {
	if d == DirNone || !m.Idle() {
		return false
	}
	m.Pending = d
	m.Progress = 0
	m.Committed = false
	return true
}

// Brain drives an entity's Mover with a random walk.
type Brain struct {
	Last Direction
}
