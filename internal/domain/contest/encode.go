package contest

import (
	"fmt"
	"strings"

	"nogo/internal/domain/game"
)

// Encode renders the move list separated by spaces, followed by a
// terminator: "G" for a concession, "T" for a timeout, empty otherwise.
func (c *Contest) Encode() string {
	parts := make([]string, 0, len(c.moves)+1)
	for _, m := range c.moves {
		parts = append(parts, m.String())
	}
	switch c.result.WinType {
	case WinGiveup:
		parts = append(parts, "G")
	case WinTimeout:
		parts = append(parts, "T")
	default:
		parts = append(parts, "")
	}
	return strings.Join(parts, " ")
}

// Decode parses the output of Encode.
func Decode(encoded string) ([]game.Position, WinType, error) {
	fields := strings.Fields(encoded)
	winType := WinNone
	if n := len(fields); n > 0 {
		switch fields[n-1] {
		case "G":
			winType, fields = WinGiveup, fields[:n-1]
		case "T":
			winType, fields = WinTimeout, fields[:n-1]
		}
	}
	moves := make([]game.Position, 0, len(fields))
	for _, f := range fields {
		p, err := game.ParsePosition(f)
		if err != nil {
			return nil, WinNone, fmt.Errorf("decode move %d: %w", len(moves)+1, err)
		}
		moves = append(moves, p)
	}
	return moves, winType, nil
}

// Replay rebuilds a contest from an encoded game, stopping after upto
// moves (all of them when upto is negative or too large).
func Replay(opts Options, encoded string, upto int) (*Contest, error) {
	moves, winType, err := Decode(encoded)
	if err != nil {
		return nil, err
	}
	c, err := New(opts)
	if err != nil {
		return nil, err
	}
	black, _ := c.Enroll(Player{Name: "BLACK", Role: game.Black})
	white, _ := c.Enroll(Player{Name: "WHITE", Role: game.White})
	c.localRole = game.Black
	c.replaying = true

	if upto < 0 || upto > len(moves) {
		upto = len(moves)
	}
	for _, m := range moves[:upto] {
		mover := black
		if c.current.ToMove == game.White {
			mover = white
		}
		if err := c.Play(mover, m); err != nil {
			return nil, fmt.Errorf("replay %s: %w", m, err)
		}
	}
	if upto == len(moves) && c.status == OnGoing && winType != WinNone {
		c.finish(c.current.ToMove.Opposite(), winType)
	}
	return c, nil
}

func (c *Contest) IsReplaying() bool {
	return c.replaying
}
