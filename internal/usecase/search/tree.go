package search

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat/distuv"

	"nogo/internal/domain/game"
	"nogo/internal/errors"
)

type Config struct {
	// Iterations bounds the number of playouts; zero means Duration is used.
	Iterations int
	Duration   time.Duration
	C          float64
	// NoiseAlpha and NoiseWeight shape the Dirichlet noise mixed into
	// Distribution. A zero weight disables it.
	NoiseAlpha  float64
	NoiseWeight float64
}

func DefaultConfig() Config {
	return Config{
		Duration:   1500 * time.Millisecond,
		C:          1,
		NoiseAlpha: 0.3,
	}
}

type node struct {
	move     game.Position
	parent   *node
	children []*node
	visits   int
	total    float64
	prior    float64
}

func (n *node) mean() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.total / float64(n.visits)
}

func (n *node) score(c float64, parentVisits int) float64 {
	return n.mean() + c*n.prior*math.Sqrt(math.Log(1+2*float64(parentVisits))/float64(1+n.visits))
}

func (n *node) selectChild(c float64) *node {
	best := n.children[0]
	bestScore := best.score(c, n.visits)
	for _, child := range n.children[1:] {
		if s := child.score(c, n.visits); s > bestScore {
			best, bestScore = child, s
		}
	}
	return best
}

func (n *node) expand(priors []Prior) {
	n.children = lo.Map(priors, func(p Prior, _ int) *node {
		return &node{move: p.Move, parent: n, prior: p.P}
	})
}

// backup credits reward to n and alternates its sign on every step up.
func (n *node) backup(reward float64) {
	for cur := n; cur != nil; cur = cur.parent {
		cur.visits++
		cur.total += reward
		reward = -reward
	}
}

func (n *node) mostVisited() *node {
	return lo.MaxBy(n.children, func(a, b *node) bool {
		return a.visits > b.visits
	})
}

// Tree is a Monte-Carlo search tree rooted at a game state. A node's
// statistics are kept from the point of view of the role that played its
// move.
type Tree struct {
	cfg    Config
	oracle Oracle
	state  game.State
	root   *node
}

func NewTree(cfg Config, oracle Oracle, state game.State) *Tree {
	return &Tree{
		cfg:    cfg,
		oracle: oracle,
		state:  state.Clone(),
		root:   &node{move: state.LastMove, prior: 1},
	}
}

func (t *Tree) State() game.State {
	return t.state
}

func (t *Tree) Visits() int {
	return t.root.visits
}

// Value is the mean reward of the root for the role that moved into it.
func (t *Tree) Value() float64 {
	return t.root.mean()
}

func (t *Tree) playout(ctx context.Context) error {
	state := t.state
	n := t.root
	for len(n.children) > 0 {
		n = n.selectChild(t.cfg.C)
		next, err := state.Next(n.move)
		if err != nil {
			return err
		}
		state = next
	}

	var reward float64
	switch {
	case state.IsOver():
		// The mover into this state captured and lost.
		reward = 1
	case len(state.AvailableActions()) == 0:
		reward = -1
	default:
		eval, err := t.oracle.Evaluate(ctx, state)
		if err != nil {
			return fmt.Errorf("evaluate: %w", err)
		}
		if err := checkEvaluation(eval); err != nil {
			return err
		}
		reward = eval.Value
		n.expand(legalPriors(state, eval.Priors))
	}
	n.backup(-reward)
	return nil
}

// Search runs playouts until the budget is spent and returns the most
// visited move of the root. At least one playout is always run.
func (t *Tree) Search(ctx context.Context) (game.Position, error) {
	deadline := time.Now().Add(t.cfg.Duration)
	for i := 0; ; i++ {
		if err := t.playout(ctx); err != nil {
			return game.NoPosition, err
		}
		if t.cfg.Iterations > 0 {
			if i+1 >= t.cfg.Iterations {
				break
			}
		} else if !time.Now().Before(deadline) {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}
	if len(t.root.children) == 0 {
		return game.NoPosition, errors.ErrNoLegalMove
	}
	return t.root.mostVisited().move, nil
}

// Advance moves the root to the child reached by move, keeping its
// statistics, or starts over when the move was never explored.
func (t *Tree) Advance(move game.Position) error {
	next, err := t.state.Next(move)
	if err != nil {
		return err
	}
	t.state = next
	if child, ok := lo.Find(t.root.children, func(n *node) bool { return n.move == move }); ok {
		child.parent = nil
		t.root = child
		return nil
	}
	t.root = &node{move: move, prior: 1}
	return nil
}

// Distribution is the normalized visit count of each root move, mixed with
// Dirichlet noise when NoiseWeight is positive.
func (t *Tree) Distribution() []Prior {
	children := t.root.children
	if len(children) == 0 {
		return nil
	}
	sum := lo.SumBy(children, func(n *node) float64 { return float64(n.visits) })
	dist := lo.Map(children, func(n *node, _ int) Prior {
		return Prior{Move: n.move, P: float64(n.visits) / (sum + 1e-4)}
	})
	if t.cfg.NoiseWeight <= 0 || t.cfg.NoiseAlpha <= 0 {
		return dist
	}

	gamma := distuv.Gamma{Alpha: t.cfg.NoiseAlpha, Beta: 1}
	noise := make([]float64, len(dist))
	var total float64
	for i := range noise {
		noise[i] = gamma.Rand()
		total += noise[i]
	}
	w := t.cfg.NoiseWeight
	for i := range dist {
		dist[i].P = (1-w)*dist[i].P + w*noise[i]/(total+1e-4)
	}
	return dist
}
