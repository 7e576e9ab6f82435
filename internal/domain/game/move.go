package game

import (
	"fmt"
	"strconv"

	"nogo/internal/errors"
)

// Position is a board coordinate. X is the column letter, Y the zero-based row.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoPosition marks an absent move.
var NoPosition = Position{X: -1, Y: -1}

func (p Position) IsValid(size int) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < size && p.Y < size
}

// String renders the position in column-letter/row-number form, e.g. "A1".
func (p Position) String() string {
	if p.X < 0 || p.Y < 0 {
		return ""
	}
	return string(rune('A'+p.X)) + strconv.Itoa(p.Y+1)
}

func ParsePosition(s string) (Position, error) {
	if len(s) < 2 || s[0] < 'A' || s[0] > 'Z' {
		return NoPosition, fmt.Errorf("%w: %q", errors.ErrInvalidPosition, s)
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil || row < 1 {
		return NoPosition, fmt.Errorf("%w: %q", errors.ErrInvalidPosition, s)
	}
	return Position{X: int(s[0] - 'A'), Y: row - 1}, nil
}

func (p Position) neighbors(size int, buf *[4]Position) []Position {
	n := 0
	for _, d := range [4]Position{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		q := Position{X: p.X + d.X, Y: p.Y + d.Y}
		if q.IsValid(size) {
			buf[n] = q
			n++
		}
	}
	return buf[:n]
}
