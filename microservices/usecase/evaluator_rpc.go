package usecase

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"nogo/internal/domain/game"
	"nogo/internal/usecase/search"
	evaluatorRPC "nogo/microservices/proto"
)

type EvaluationStore interface {
	Evaluate(ctx context.Context, s game.State) (search.Evaluation, error)
}

type EvaluatorUseCase struct {
	store EvaluationStore
	log   *zap.SugaredLogger
}

func NewEvaluatorUseCase(store EvaluationStore, log *zap.SugaredLogger) *EvaluatorUseCase {
	return &EvaluatorUseCase{
		store: store,
		log:   log,
	}
}

func (e *EvaluatorUseCase) Evaluate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	state, err := evaluatorRPC.DecodeState(in)
	if err != nil {
		e.log.Warnf("evaluate: bad request: %v", err)
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	eval, err := e.store.Evaluate(ctx, state)
	if err != nil {
		e.log.Errorf("evaluate: %v", err)
		return nil, status.Error(codes.Internal, err.Error())
	}

	out, err := evaluatorRPC.EncodeEvaluation(eval)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
