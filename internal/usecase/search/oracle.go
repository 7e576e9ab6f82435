package search

import (
	"context"
	"fmt"
	"math"

	"github.com/samber/lo"
	"lukechampine.com/frand"

	"nogo/internal/domain/game"
	"nogo/internal/errors"
)

// Prior is the probability an oracle assigns to a move.
type Prior struct {
	Move game.Position `json:"move"`
	P    float64       `json:"p"`
}

// Evaluation is an oracle's judgement of a state, from the point of view of
// the role to move: Value in [-1, 1] and a prior per candidate move.
type Evaluation struct {
	Value  float64
	Priors []Prior
}

// Oracle evaluates non-terminal states for the search. Implementations may
// be heuristic, random playouts or a remote model.
type Oracle interface {
	Evaluate(ctx context.Context, s game.State) (Evaluation, error)
}

// uniform spreads probability evenly over moves.
func uniform(moves []game.Position) []Prior {
	if len(moves) == 0 {
		return nil
	}
	p := 1 / float64(len(moves))
	return lo.Map(moves, func(m game.Position, _ int) Prior {
		return Prior{Move: m, P: p}
	})
}

// legalPriors keeps the priors of legal moves and renormalizes them. When
// nothing usable is left every legal move gets the same weight.
func legalPriors(s game.State, priors []Prior) []Prior {
	kept := lo.UniqBy(lo.Filter(priors, func(p Prior, _ int) bool {
		return p.P > 0 && !math.IsNaN(p.P) && s.IsLegal(p.Move)
	}), func(p Prior) game.Position {
		return p.Move
	})
	sum := lo.SumBy(kept, func(p Prior) float64 { return p.P })
	if len(kept) == 0 || sum <= 0 || math.IsInf(sum, 0) {
		return uniform(s.AvailableActions())
	}
	for i := range kept {
		kept[i].P /= sum
	}
	return kept
}

func checkEvaluation(e Evaluation) error {
	if math.IsNaN(e.Value) || e.Value < -1 || e.Value > 1 {
		return fmt.Errorf("%w: value %v", errors.ErrInvalidEvaluation, e.Value)
	}
	return nil
}

// HeuristicOracle values a state by mobility: how many more legal moves the
// role to move has than its opponent, scaled by the board area.
type HeuristicOracle struct{}

func (HeuristicOracle) Evaluate(_ context.Context, s game.State) (Evaluation, error) {
	own := s.AvailableActions()
	theirs := s.OpponentActions()
	area := float64(s.Board.Size() * s.Board.Size())
	return Evaluation{
		Value:  float64(len(own)-len(theirs)) / area,
		Priors: uniform(own),
	}, nil
}

// RolloutOracle plays Playouts random games from the state and reports the
// average outcome for the role to move.
type RolloutOracle struct {
	Playouts int
}

func (o RolloutOracle) Evaluate(ctx context.Context, s game.State) (Evaluation, error) {
	n := max(o.Playouts, 1)
	score := 0
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return Evaluation{}, err
		}
		if rollout(s) == s.ToMove {
			score++
		} else {
			score--
		}
	}
	return Evaluation{
		Value:  float64(score) / float64(n),
		Priors: uniform(s.AvailableActions()),
	}, nil
}

// rollout plays uniformly random legal moves until the side to move is stuck
// and returns the winner.
func rollout(s game.State) game.Role {
	board := s.Board.Clone()
	toMove := s.ToMove
	cur := game.State{Board: board, ToMove: toMove, LastMove: s.LastMove}
	for {
		actions := cur.AvailableActions()
		if len(actions) == 0 {
			return cur.ToMove.Opposite()
		}
		move := actions[frand.Intn(len(actions))]
		if _, err := board.Put(move, cur.ToMove); err != nil {
			return cur.ToMove.Opposite()
		}
		cur.ToMove = cur.ToMove.Opposite()
		cur.LastMove = move
	}
}

// NewOracle builds one of the in-process oracles by name.
func NewOracle(name string, playouts int) (Oracle, error) {
	switch name {
	case "", "heuristic":
		return HeuristicOracle{}, nil
	case "rollout":
		return RolloutOracle{Playouts: playouts}, nil
	default:
		return nil, fmt.Errorf("unknown oracle %q", name)
	}
}
