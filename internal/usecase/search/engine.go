package search

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"nogo/internal/domain/game"
)

// Decision is the outcome of one search.
type Decision struct {
	Move         game.Position
	Value        float64
	Playouts     int
	Distribution []Prior
	Elapsed      time.Duration
}

// Engine runs searches one at a time for every bot of the process. It keeps
// the tree of its last search and reuses it when the next position extends
// the same game.
type Engine struct {
	mu     sync.Mutex
	cfg    Config
	oracle Oracle
	log    *zap.SugaredLogger

	tree    *Tree
	history []game.Position
}

func NewEngine(cfg Config, oracle Oracle, log *zap.SugaredLogger) *Engine {
	return &Engine{
		cfg:    cfg,
		oracle: oracle,
		log:    log,
	}
}

// Choose searches the position reached by playing history on an empty board
// of the given size.
func (e *Engine) Choose(ctx context.Context, size int, history []game.Position) (Decision, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	tree, err := e.treeFor(size, history)
	if err != nil {
		e.tree, e.history = nil, nil
		return Decision{}, err
	}
	before := tree.Visits()

	move, err := tree.Search(ctx)
	if err != nil {
		e.tree, e.history = nil, nil
		return Decision{}, err
	}
	d := Decision{
		Move:         move,
		Playouts:     tree.Visits() - before,
		Distribution: tree.Distribution(),
		Elapsed:      time.Since(start),
	}
	if err := tree.Advance(move); err != nil {
		e.tree, e.history = nil, nil
		return Decision{}, err
	}
	d.Value = tree.Value()
	e.tree = tree
	e.history = append(slices.Clone(history), move)

	e.log.Debugf("search: move %s value %.3f after %d playouts in %s (reused %d)",
		d.Move, d.Value, d.Playouts, d.Elapsed, before)
	return d, nil
}

func (e *Engine) treeFor(size int, history []game.Position) (*Tree, error) {
	if e.tree != nil && e.tree.State().Board.Size() == size &&
		len(history) >= len(e.history) && slices.Equal(history[:len(e.history)], e.history) {
		for _, m := range history[len(e.history):] {
			if err := e.tree.Advance(m); err != nil {
				return nil, err
			}
		}
		return e.tree, nil
	}

	state, err := game.NewState(size)
	if err != nil {
		return nil, err
	}
	for _, m := range history {
		if state, err = state.Next(m); err != nil {
			return nil, err
		}
	}
	return NewTree(e.cfg, e.oracle, state), nil
}
