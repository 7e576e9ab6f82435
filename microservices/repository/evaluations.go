package repository

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"nogo/internal/domain/game"
	"nogo/internal/usecase/search"
)

// EvaluationRepository answers evaluations from an oracle and remembers them
// per position. The cache is dropped whole once it holds limit entries.
type EvaluationRepository struct {
	log    *zap.SugaredLogger
	oracle search.Oracle
	limit  int

	mu      sync.Mutex
	entries map[uint64]search.Evaluation
	hits    int
	misses  int
}

func NewEvaluationRepository(oracle search.Oracle, limit int, log *zap.SugaredLogger) *EvaluationRepository {
	return &EvaluationRepository{
		log:     log,
		oracle:  oracle,
		limit:   limit,
		entries: make(map[uint64]search.Evaluation),
	}
}

// positionKey hashes the board and the role to move.
func positionKey(s game.State) uint64 {
	size := s.Board.Size()
	buf := make([]byte, 0, size*size+2)
	buf = append(buf, byte(size), byte(s.ToMove))
	for _, column := range s.Board.Matrix() {
		for _, v := range column {
			buf = append(buf, byte(int8(v)))
		}
	}
	return xxhash.Sum64(buf)
}

func (r *EvaluationRepository) Evaluate(ctx context.Context, s game.State) (search.Evaluation, error) {
	key := positionKey(s)

	r.mu.Lock()
	if e, ok := r.entries[key]; ok {
		r.hits++
		r.mu.Unlock()
		return e, nil
	}
	r.misses++
	r.mu.Unlock()

	e, err := r.oracle.Evaluate(ctx, s)
	if err != nil {
		return search.Evaluation{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limit > 0 && len(r.entries) >= r.limit {
		r.log.Infof("evaluation cache full (%d entries, %d hits, %d misses), dropping", len(r.entries), r.hits, r.misses)
		r.entries = make(map[uint64]search.Evaluation)
	}
	r.entries[key] = e
	return e, nil
}

// Stats reports cache hits and misses.
func (r *EvaluationRepository) Stats() (hits, misses int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits, r.misses
}
