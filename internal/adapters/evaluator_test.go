package adapters

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"nogo/internal/bootstrap"
	"nogo/internal/domain/game"
	"nogo/internal/usecase/search"
	evaluatorRPC "nogo/microservices/proto"
	"nogo/microservices/repository"
	"nogo/microservices/usecase"
)

func startEvaluator(t *testing.T) (*AdapterEvaluator, *repository.EvaluationRepository) {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	lis := bufconn.Listen(1 << 20)

	repo := repository.NewEvaluationRepository(search.HeuristicOracle{}, 16, log)
	server := grpc.NewServer()
	evaluatorRPC.RegisterEvaluatorServer(server, usecase.NewEvaluatorUseCase(repo, log))
	go server.Serve(lis)
	t.Cleanup(server.Stop)

	cfg := &bootstrap.Config{EvaluatorAddr: "passthrough:///bufnet"}
	adapter := NewAdapterEvaluator(cfg, log, grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, adapter.Init(context.Background()))
	t.Cleanup(func() { adapter.Close(context.Background()) })
	return adapter, repo
}

func stateAfter(t *testing.T, size int, moves ...string) game.State {
	t.Helper()
	s, err := game.NewState(size)
	require.NoError(t, err)
	for _, m := range moves {
		p, err := game.ParsePosition(m)
		require.NoError(t, err)
		s, err = s.Next(p)
		require.NoError(t, err)
	}
	return s
}

func TestRemoteEvaluationMatchesLocal(t *testing.T) {
	adapter, repo := startEvaluator(t)
	s := stateAfter(t, 5, "B1", "E5", "A2", "C3")

	want, err := search.HeuristicOracle{}.Evaluate(context.Background(), s)
	require.NoError(t, err)

	got, err := adapter.Evaluate(context.Background(), s)
	require.NoError(t, err)
	assert.InDelta(t, want.Value, got.Value, 1e-9)
	assert.ElementsMatch(t, want.Priors, got.Priors)

	_, err = adapter.Evaluate(context.Background(), s)
	require.NoError(t, err)
	hits, misses := repo.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestRemoteOracleDrivesSearch(t *testing.T) {
	adapter, _ := startEvaluator(t)
	s := stateAfter(t, 4, "A1", "D4")

	tree := search.NewTree(search.Config{Iterations: 30, C: 1}, adapter, s)
	move, err := tree.Search(context.Background())
	require.NoError(t, err)
	assert.True(t, s.IsLegal(move))
}

func TestDecodedStateKeepsLiberties(t *testing.T) {
	s := stateAfter(t, 5, "B1", "E5", "A2", "C3", "B2")
	req, err := evaluatorRPC.EncodeState(s)
	require.NoError(t, err)

	decoded, err := evaluatorRPC.DecodeState(req)
	require.NoError(t, err)
	assert.Equal(t, s.ToMove, decoded.ToMove)
	assert.Equal(t, s.LastMove, decoded.LastMove)
	assert.Equal(t, s.Board.Matrix(), decoded.Board.Matrix())
	for _, p := range s.Board.Positions() {
		assert.Equal(t, s.Board.Liberties(p), decoded.Board.Liberties(p), p.String())
	}
	assert.Equal(t, s.AvailableActions(), decoded.AvailableActions())
}

func TestMalformedRequestIsRejected(t *testing.T) {
	adapter, _ := startEvaluator(t)
	bad, err := structpb.NewStruct(map[string]any{"size": 3, "board": []any{1, 0}, "to_move": 1})
	require.NoError(t, err)

	_, err = adapter.client.Evaluate(context.Background(), bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
