package game

import (
	"fmt"

	"nogo/internal/errors"
)

// State is a snapshot of a game: the board, whose turn it is and the move
// that produced it. States are treated as immutable; Next returns a fresh
// state on a cloned board.
type State struct {
	Board    *Board
	ToMove   Role
	LastMove Position
	// capturing records whether LastMove was a capturing placement.
	capturing bool
}

func NewState(size int) (State, error) {
	board, err := NewBoard(size)
	if err != nil {
		return State{}, err
	}
	return State{Board: board, ToMove: Black, LastMove: NoPosition}, nil
}

// Next plays p for the role to move on a copy of the board.
func (s State) Next(p Position) (State, error) {
	board := s.Board.Clone()
	capturing, err := board.Put(p, s.ToMove)
	if err != nil {
		return State{}, fmt.Errorf("play %s for %s: %w", p, s.ToMove, err)
	}
	return State{Board: board, ToMove: s.ToMove.Opposite(), LastMove: p, capturing: capturing}, nil
}

func (s State) Clone() State {
	s.Board = s.Board.Clone()
	return s
}

// AvailableActions lists the empty cells where the role to move can play
// without capturing anything, its own stones included.
func (s State) AvailableActions() []Position {
	return s.actionsFor(s.ToMove)
}

// OpponentActions is AvailableActions for the role not to move.
func (s State) OpponentActions() []Position {
	return s.actionsFor(s.ToMove.Opposite())
}

func (s State) actionsFor(r Role) []Position {
	size := s.Board.Size()
	res := make([]Position, 0, size*size)
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			p := Position{X: x, Y: y}
			if s.Board.At(p) == None && !s.Board.WouldCapture(p, r) {
				res = append(res, p)
			}
		}
	}
	return res
}

// IsLegal reports whether p is among AvailableActions.
func (s State) IsLegal(p Position) bool {
	return p.IsValid(s.Board.Size()) && s.Board.At(p) == None && !s.Board.WouldCapture(p, s.ToMove)
}

// IsOver is true when the last placed move was capturing.
func (s State) IsOver() bool {
	return s.LastMove.IsValid(s.Board.Size()) && s.capturing
}

// Winner is the role credited when IsOver: the opponent of the player who
// made the capturing move, which is the role now to move.
func (s State) Winner() Role {
	if !s.IsOver() {
		return None
	}
	return s.ToMove
}

func (s State) Validate(p Position) error {
	if !p.IsValid(s.Board.Size()) {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPosition, p)
	}
	if s.Board.At(p) != None {
		return fmt.Errorf("%w: %s", errors.ErrPositionOccupied, p)
	}
	return nil
}
