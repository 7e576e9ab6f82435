package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nogo/internal/errors"
)

func mustPos(t *testing.T, s string) Position {
	t.Helper()
	p, err := ParsePosition(s)
	require.NoError(t, err)
	return p
}

// floodLiberties counts distinct empty cells adjacent to the group at p.
func floodLiberties(b *Board, p Position) int {
	color := b.At(p)
	visited := map[Position]bool{p: true}
	libs := map[Position]bool{}
	stack := []Position{p}
	var buf [4]Position
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, q := range cur.neighbors(b.Size(), &buf) {
			switch b.At(q) {
			case None:
				libs[q] = true
			case color:
				if !visited[q] {
					visited[q] = true
					stack = append(stack, q)
				}
			}
		}
	}
	return len(libs)
}

func assertLibertyInvariant(t *testing.T, b *Board) {
	t.Helper()
	for _, p := range b.Positions() {
		if b.At(p) == None {
			continue
		}
		require.Equal(t, floodLiberties(b, p), b.Liberties(p), "liberties at %s\n%s", p, b)
	}
}

func TestNewBoardRejectsBadSize(t *testing.T) {
	_, err := NewBoard(1)
	require.ErrorIs(t, err, errors.ErrInvalidBoardSize)
	_, err = NewBoard(MaxBoardSize + 1)
	require.ErrorIs(t, err, errors.ErrInvalidBoardSize)
}

func TestPutRejectsOccupiedAndOutOfRange(t *testing.T) {
	b, err := NewBoard(9)
	require.NoError(t, err)

	_, err = b.Put(mustPos(t, "A1"), Black)
	require.NoError(t, err)
	_, err = b.Put(mustPos(t, "A1"), White)
	require.ErrorIs(t, err, errors.ErrPositionOccupied)
	_, err = b.Put(Position{X: 9, Y: 0}, White)
	require.ErrorIs(t, err, errors.ErrInvalidPosition)
}

func TestPutDetectsSelfCapture(t *testing.T) {
	b, _ := NewBoard(9)
	for _, s := range []string{"B1", "A2"} {
		capturing, err := b.Put(mustPos(t, s), White)
		require.NoError(t, err)
		require.False(t, capturing)
	}
	require.True(t, b.WouldCapture(mustPos(t, "A1"), Black))

	capturing, err := b.Put(mustPos(t, "A1"), Black)
	require.NoError(t, err)
	assert.True(t, capturing)
	assert.False(t, b.HasLiberties(mustPos(t, "A1")))
}

func TestPutDetectsOpponentCapture(t *testing.T) {
	b, _ := NewBoard(9)
	_, _ = b.Put(mustPos(t, "A1"), Black)
	_, _ = b.Put(mustPos(t, "B1"), White)
	require.Equal(t, 1, b.Liberties(mustPos(t, "A1")))
	require.True(t, b.WouldCapture(mustPos(t, "A2"), White))

	capturing, err := b.Put(mustPos(t, "A2"), White)
	require.NoError(t, err)
	assert.True(t, capturing)
	assert.Equal(t, 0, b.Liberties(mustPos(t, "A1")))
}

func TestMergedGroupCountsSharedLibertiesOnce(t *testing.T) {
	b, _ := NewBoard(9)
	// B2 and C3 share the liberties C2 and B3; C2 joins them.
	for _, s := range []string{"B2", "C3", "C2"} {
		_, err := b.Put(mustPos(t, s), Black)
		require.NoError(t, err)
	}
	assert.Equal(t, floodLiberties(b, mustPos(t, "B2")), b.Liberties(mustPos(t, "C3")))
	assertLibertyInvariant(t, b)
}

func TestLibertyInvariantRandomGames(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for game := 0; game < 30; game++ {
		b, _ := NewBoard(5 + game%5)
		role := Black
		empty := b.Positions()
		rng.Shuffle(len(empty), func(i, j int) { empty[i], empty[j] = empty[j], empty[i] })
		for _, p := range empty {
			_, err := b.Put(p, role)
			require.NoError(t, err)
			assertLibertyInvariant(t, b)
			role = role.Opposite()
		}
	}
}

func TestWouldCaptureAgreesWithPut(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	b, _ := NewBoard(7)
	role := Black
	for step := 0; step < 30; step++ {
		for _, p := range b.Positions() {
			if b.At(p) != None {
				continue
			}
			for _, r := range []Role{Black, White} {
				clone := b.Clone()
				capturing, err := clone.Put(p, r)
				require.NoError(t, err)
				require.Equal(t, capturing, b.WouldCapture(p, r), "%s at %s\n%s", r, p, b)
			}
		}
		free := make([]Position, 0)
		for _, p := range b.Positions() {
			if b.At(p) == None {
				free = append(free, p)
			}
		}
		_, err := b.Put(free[rng.Intn(len(free))], role)
		require.NoError(t, err)
		role = role.Opposite()
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	b, _ := NewBoard(9)
	_, _ = b.Put(mustPos(t, "E5"), Black)
	before := b.String()

	clone := b.Clone()
	for _, s := range []string{"E6", "D5", "F5", "E4"} {
		_, err := clone.Put(mustPos(t, s), White)
		require.NoError(t, err)
	}

	assert.Equal(t, before, b.String())
	assert.Equal(t, 4, b.Liberties(mustPos(t, "E5")))
	assert.Equal(t, 0, clone.Liberties(mustPos(t, "E5")))
}

func TestMatrixIndexedByColumnThenRow(t *testing.T) {
	b, _ := NewBoard(3)
	_, _ = b.Put(mustPos(t, "B1"), White)
	m := b.Matrix()
	assert.Equal(t, int(White), m[1][0])
	assert.Equal(t, "---\nW--\n---\n", b.String())
}
