package contest

import (
	"strconv"

	"nogo/internal/domain/game"
	"nogo/internal/domain/sgf"
)

// SGF exports the match record. Coordinates use SGF letters, so A1 is "aa".
func (c *Contest) SGF() *sgf.SGF {
	root := sgf.Node{Properties: map[string][]string{
		"FF": {"4"},
		"GM": {"1"},
		"SZ": {strconv.Itoa(c.opts.BoardSize)},
		"RU": {"NoGo"},
	}}
	if p, ok := c.players.Find(game.Black); ok {
		root.Properties["PB"] = []string{p.Name}
	}
	if p, ok := c.players.Find(game.White); ok {
		root.Properties["PW"] = []string{p.Name}
	}
	if !c.startTime.IsZero() {
		root.Properties["DT"] = []string{c.startTime.Format("2006-01-02")}
	}
	if c.status == GameOver {
		root.Properties["RE"] = []string{resultString(c.result)}
	}

	tree := &sgf.GameTree{Nodes: []sgf.Node{root}}
	role := game.Black
	for _, m := range c.moves {
		key := "B"
		if role == game.White {
			key = "W"
		}
		tree.Nodes = append(tree.Nodes, sgf.Node{Properties: map[string][]string{key: {sgfPoint(m)}}})
		role = role.Opposite()
	}
	return &sgf.SGF{Root: tree}
}

func sgfPoint(p game.Position) string {
	return string([]byte{byte('a' + p.X), byte('a' + p.Y)})
}

func resultString(r Result) string {
	winner := "B"
	if r.Winner == game.White {
		winner = "W"
	}
	switch r.WinType {
	case WinTimeout:
		return winner + "+T"
	case WinGiveup:
		return winner + "+R"
	default:
		return winner + "+F"
	}
}
