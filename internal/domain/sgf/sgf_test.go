package sgf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringOrdersAndEscapes(t *testing.T) {
	s := SGF{Root: &GameTree{
		Nodes: []Node{
			{Properties: map[string][]string{"SZ": {"9"}, "ZZ": {"x"}, "GM": {"1"}, "AB": {"aa", "bb"}}},
			{Properties: map[string][]string{"B": {"cc"}}},
		},
		Children: []*GameTree{
			{Nodes: []Node{{Properties: map[string][]string{"C": {`a]b\c`}}}}},
		},
	}}
	assert.Equal(t, `(;GM[1]SZ[9]AB[aa][bb]ZZ[x];B[cc](;C[a\]b\\c]))`, s.String())
	assert.Equal(t, "()", (&SGF{}).String())
}
