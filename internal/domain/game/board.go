package game

import (
	"fmt"
	"strings"

	"nogo/internal/errors"
)

const (
	MinBoardSize = 2
	MaxBoardSize = 19
)

// Board is an N×N grid with a union-find forest over connected same-color
// stones. Every group representative carries the number of distinct empty
// cells adjacent to the group.
type Board struct {
	size      int
	cells     []Role
	parent    []int
	next      []int // circular member list of each group
	rank      []int
	liberties []int
}

func NewBoard(size int) (*Board, error) {
	if size < MinBoardSize || size > MaxBoardSize {
		return nil, fmt.Errorf("%w: %d", errors.ErrInvalidBoardSize, size)
	}
	n := size * size
	return &Board{
		size:      size,
		cells:     make([]Role, n),
		parent:    make([]int, n),
		next:      make([]int, n),
		rank:      make([]int, n),
		liberties: make([]int, n),
	}, nil
}

func (b *Board) Size() int {
	return b.size
}

func (b *Board) index(p Position) int {
	return p.X*b.size + p.Y
}

func (b *Board) At(p Position) Role {
	if !p.IsValid(b.size) {
		return None
	}
	return b.cells[b.index(p)]
}

// Put places a stone and reports whether the placement is capturing: the
// placed group, or an adjacent opposing group, is left without liberties.
func (b *Board) Put(p Position, r Role) (bool, error) {
	if !p.IsValid(b.size) {
		return false, fmt.Errorf("%w: %v", errors.ErrInvalidPosition, p)
	}
	if r == None {
		return false, errors.ErrInvalidRole
	}
	idx := b.index(p)
	if b.cells[idx] != None {
		return false, fmt.Errorf("%w: %s", errors.ErrPositionOccupied, p)
	}

	b.cells[idx] = r
	b.parent[idx] = idx
	b.next[idx] = idx
	b.rank[idx] = 0
	b.liberties[idx] = 0

	var buf [4]Position
	var opponents [4]int
	n := 0
	for _, q := range p.neighbors(b.size, &buf) {
		qi := b.index(q)
		switch b.cells[qi] {
		case None:
		case r:
			b.union(idx, qi)
		default:
			rep := b.find(qi)
			if !containsInt(opponents[:n], rep) {
				opponents[n] = rep
				n++
				b.liberties[rep]--
			}
		}
	}

	root := b.find(idx)
	b.liberties[root] = b.countLiberties(root)

	capturing := b.liberties[root] == 0
	for _, rep := range opponents[:n] {
		if b.liberties[rep] == 0 {
			capturing = true
		}
	}
	return capturing, nil
}

// WouldCapture answers what Put would return for an empty cell without
// mutating the board.
func (b *Board) WouldCapture(p Position, r Role) bool {
	var buf [4]Position
	hasEmpty, ownSafe := false, false
	for _, q := range p.neighbors(b.size, &buf) {
		qi := b.index(q)
		switch b.cells[qi] {
		case None:
			hasEmpty = true
		case r:
			if b.liberties[b.root(qi)] > 1 {
				ownSafe = true
			}
		default:
			if b.liberties[b.root(qi)] == 1 {
				return true
			}
		}
	}
	return !hasEmpty && !ownSafe
}

// HasLiberties reports whether the group at p touches an empty cell. Empty
// cells trivially have liberties.
func (b *Board) HasLiberties(p Position) bool {
	return b.Liberties(p) > 0 || b.At(p) == None
}

// Liberties returns the liberty count of the group at p, 0 for empty cells.
func (b *Board) Liberties(p Position) int {
	if b.At(p) == None {
		return 0
	}
	return b.liberties[b.root(b.index(p))]
}

func (b *Board) Clone() *Board {
	return &Board{
		size:      b.size,
		cells:     append([]Role(nil), b.cells...),
		parent:    append([]int(nil), b.parent...),
		next:      append([]int(nil), b.next...),
		rank:      append([]int(nil), b.rank...),
		liberties: append([]int(nil), b.liberties...),
	}
}

// Positions lists every cell in row-major order.
func (b *Board) Positions() []Position {
	res := make([]Position, 0, len(b.cells))
	for x := 0; x < b.size; x++ {
		for y := 0; y < b.size; y++ {
			res = append(res, Position{X: x, Y: y})
		}
	}
	return res
}

// Matrix exports the cells as role ids indexed [x][y].
func (b *Board) Matrix() [][]int {
	res := make([][]int, b.size)
	for x := range res {
		res[x] = make([]int, b.size)
		for y := range res[x] {
			res[x][y] = int(b.cells[x*b.size+y])
		}
	}
	return res
}

func (b *Board) String() string {
	var sb strings.Builder
	for x := 0; x < b.size; x++ {
		for y := 0; y < b.size; y++ {
			switch b.cells[x*b.size+y] {
			case Black:
				sb.WriteByte('B')
			case White:
				sb.WriteByte('W')
			default:
				sb.WriteByte('-')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (b *Board) find(i int) int {
	for b.parent[i] != i {
		b.parent[i] = b.parent[b.parent[i]]
		i = b.parent[i]
	}
	return i
}

// root is find without path compression, safe for read-only callers.
func (b *Board) root(i int) int {
	for b.parent[i] != i {
		i = b.parent[i]
	}
	return i
}

func (b *Board) union(i, j int) {
	ri, rj := b.find(i), b.find(j)
	if ri == rj {
		return
	}
	if b.rank[ri] < b.rank[rj] {
		ri, rj = rj, ri
	}
	b.parent[rj] = ri
	if b.rank[ri] == b.rank[rj] {
		b.rank[ri]++
	}
	b.next[ri], b.next[rj] = b.next[rj], b.next[ri]
}

func (b *Board) countLiberties(root int) int {
	seen := make(map[int]struct{}, 8)
	var buf [4]Position
	i := root
	for {
		p := Position{X: i / b.size, Y: i % b.size}
		for _, q := range p.neighbors(b.size, &buf) {
			qi := b.index(q)
			if b.cells[qi] == None {
				seen[qi] = struct{}{}
			}
		}
		i = b.next[i]
		if i == root {
			break
		}
	}
	return len(seen)
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
