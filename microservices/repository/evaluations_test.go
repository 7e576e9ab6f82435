package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"nogo/internal/domain/game"
	"nogo/internal/usecase/search"
)

type countingOracle struct {
	calls int
}

func (o *countingOracle) Evaluate(ctx context.Context, s game.State) (search.Evaluation, error) {
	o.calls++
	return search.HeuristicOracle{}.Evaluate(ctx, s)
}

func TestEvaluationCache(t *testing.T) {
	oracle := &countingOracle{}
	repo := NewEvaluationRepository(oracle, 2, zaptest.NewLogger(t).Sugar())

	empty, err := game.NewState(5)
	require.NoError(t, err)
	first, err := empty.Next(game.Position{X: 0, Y: 0})
	require.NoError(t, err)
	second, err := empty.Next(game.Position{X: 1, Y: 0})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := repo.Evaluate(context.Background(), empty)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, oracle.calls)

	_, err = repo.Evaluate(context.Background(), first)
	require.NoError(t, err)
	_, err = repo.Evaluate(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, 3, oracle.calls)

	// The cache was full when second arrived, so empty is evaluated again.
	_, err = repo.Evaluate(context.Background(), empty)
	require.NoError(t, err)
	assert.Equal(t, 4, oracle.calls)

	hits, misses := repo.Stats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 4, misses)
}

func TestPositionKeyDependsOnRoleToMove(t *testing.T) {
	s, err := game.NewState(5)
	require.NoError(t, err)
	other := s.Clone()
	other.ToMove = game.White
	assert.NotEqual(t, positionKey(s), positionKey(other))
	assert.Equal(t, positionKey(s), positionKey(s.Clone()))
}
