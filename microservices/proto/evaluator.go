// Package proto is the RPC contract of the evaluator microservice. Requests
// and responses travel as google.protobuf.Struct values:
//
//	request:  {size, board: [cells x-major], to_move, last_move}
//	response: {value, priors: [{move, p}]}
package proto

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"nogo/internal/domain/game"
	"nogo/internal/errors"
	"nogo/internal/usecase/search"
)

const (
	ServiceName    = "nogo.Evaluator"
	EvaluateMethod = "/nogo.Evaluator/Evaluate"
)

type EvaluatorServer interface {
	Evaluate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type EvaluatorClient interface {
	Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

var EvaluatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EvaluatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "evaluator.proto",
}

func RegisterEvaluatorServer(s grpc.ServiceRegistrar, srv EvaluatorServer) {
	s.RegisterService(&EvaluatorServiceDesc, srv)
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EvaluatorServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EvaluateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EvaluatorServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type evaluatorClient struct {
	cc grpc.ClientConnInterface
}

func NewEvaluatorClient(cc grpc.ClientConnInterface) EvaluatorClient {
	return &evaluatorClient{cc: cc}
}

func (c *evaluatorClient) Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, EvaluateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func EncodeState(s game.State) (*structpb.Struct, error) {
	size := s.Board.Size()
	cells := make([]any, 0, size*size)
	for _, column := range s.Board.Matrix() {
		for _, v := range column {
			cells = append(cells, v)
		}
	}
	return structpb.NewStruct(map[string]any{
		"size":      size,
		"board":     cells,
		"to_move":   int(s.ToMove),
		"last_move": s.LastMove.String(),
	})
}

// DecodeState rebuilds a state by placing the stones of the request on an
// empty board.
func DecodeState(in *structpb.Struct) (game.State, error) {
	fields := in.GetFields()
	size := int(fields["size"].GetNumberValue())
	board, err := game.NewBoard(size)
	if err != nil {
		return game.State{}, err
	}
	cells := fields["board"].GetListValue().GetValues()
	if len(cells) != size*size {
		return game.State{}, fmt.Errorf("%w: %d cells for size %d", errors.ErrMalformedMessage, len(cells), size)
	}
	for i, c := range cells {
		r := game.Role(c.GetNumberValue())
		if r == game.None {
			continue
		}
		if r != game.Black && r != game.White {
			return game.State{}, fmt.Errorf("%w: cell %d", errors.ErrInvalidRole, i)
		}
		if _, err := board.Put(game.Position{X: i / size, Y: i % size}, r); err != nil {
			return game.State{}, err
		}
	}

	toMove := game.Role(fields["to_move"].GetNumberValue())
	if toMove != game.Black && toMove != game.White {
		return game.State{}, fmt.Errorf("%w: to_move %v", errors.ErrInvalidRole, toMove)
	}
	last := game.NoPosition
	if s := fields["last_move"].GetStringValue(); s != "" {
		if last, err = game.ParsePosition(s); err != nil {
			return game.State{}, err
		}
	}
	return game.State{Board: board, ToMove: toMove, LastMove: last}, nil
}

func EncodeEvaluation(e search.Evaluation) (*structpb.Struct, error) {
	priors := make([]any, 0, len(e.Priors))
	for _, p := range e.Priors {
		priors = append(priors, map[string]any{"move": p.Move.String(), "p": p.P})
	}
	return structpb.NewStruct(map[string]any{
		"value":  e.Value,
		"priors": priors,
	})
}

func DecodeEvaluation(in *structpb.Struct) (search.Evaluation, error) {
	fields := in.GetFields()
	e := search.Evaluation{Value: fields["value"].GetNumberValue()}
	for _, v := range fields["priors"].GetListValue().GetValues() {
		prior := v.GetStructValue().GetFields()
		move, err := game.ParsePosition(prior["move"].GetStringValue())
		if err != nil {
			return search.Evaluation{}, fmt.Errorf("%w: prior move: %v", errors.ErrInvalidEvaluation, err)
		}
		e.Priors = append(e.Priors, search.Prior{Move: move, P: prior["p"].GetNumberValue()})
	}
	return e, nil
}
