package game

// Role is the color of a stone or of the player to move.
type Role int8

const (
	White Role = -1
	None  Role = 0
	Black Role = 1
)

// Opposite swaps Black and White; None stays None.
func (r Role) Opposite() Role {
	return -r
}

func (r Role) String() string {
	switch r {
	case Black:
		return "BLACK"
	case White:
		return "WHITE"
	default:
		return "NONE"
	}
}

// Code is the wire form of the role: "b", "w" or "".
func (r Role) Code() string {
	switch r {
	case Black:
		return "b"
	case White:
		return "w"
	default:
		return ""
	}
}

// ParseRole never fails: anything other than "b" or "w" is None.
func ParseRole(s string) Role {
	switch s {
	case "b":
		return Black
	case "w":
		return White
	default:
		return None
	}
}
