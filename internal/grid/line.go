package grid

import "fmt"

// Direction is an (axis, sign) pair. Sign is +1 or -1.
type Direction struct {
	Axis int
	Sign int
}

// DirectionAt returns the direction with dense index i. Even indices point
// along +axis, odd ones along -axis.
func DirectionAt(i int) Direction {
	sign := 1
	if i%2 == 1 {
		sign = -1
	}
	return Direction{Axis: i / 2, Sign: sign}
}

// Directions enumerates all 2*rank directions in index order.
func Directions(rank int) []Direction {
	dirs := make([]Direction, 2*rank)
	for i := range dirs {
		dirs[i] = DirectionAt(i)
	}
	return dirs
}

// Index returns the dense index of d in 0..2N.
func (d Direction) Index() int {
	if d.Sign < 0 {
		return 2*d.Axis + 1
	}
	return 2 * d.Axis
}

func (d Direction) String() string {
	if d.Sign < 0 {
		return fmt.Sprintf("-%d", d.Axis)
	}
	return fmt.Sprintf("+%d", d.Axis)
}

// Line is one placement of a fixed-length window: a start cell, a direction
// and a length.
type Line struct {
	Start int
	Dir   Direction
	Len   int
}

func (l Line) String() string {
	return fmt.Sprintf("%d%s x%d", l.Start, l.Dir, l.Len)
}
