package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"nogo/internal/bootstrap"
	"nogo/internal/domain/game"
	"nogo/internal/usecase/search"
	evaluatorRPC "nogo/microservices/proto"
)

// AdapterEvaluator is a search oracle served by the evaluator microservice.
type AdapterEvaluator struct {
	cfg      *bootstrap.Config
	log      *zap.SugaredLogger
	dialOpts []grpc.DialOption
	conn     *grpc.ClientConn
	client   evaluatorRPC.EvaluatorClient
}

func NewAdapterEvaluator(cfg *bootstrap.Config, log *zap.SugaredLogger, opts ...grpc.DialOption) *AdapterEvaluator {
	return &AdapterEvaluator{
		cfg:      cfg,
		log:      log,
		dialOpts: append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...),
	}
}

func (a *AdapterEvaluator) Init(ctx context.Context) error {
	conn, err := grpc.NewClient(a.cfg.EvaluatorAddr, a.dialOpts...)
	if err != nil {
		return fmt.Errorf("evaluator client %s: %w", a.cfg.EvaluatorAddr, err)
	}
	a.conn = conn
	a.client = evaluatorRPC.NewEvaluatorClient(conn)
	a.log.Infof("evaluator client ready for %s", a.cfg.EvaluatorAddr)
	return nil
}

func (a *AdapterEvaluator) Evaluate(ctx context.Context, s game.State) (search.Evaluation, error) {
	req, err := evaluatorRPC.EncodeState(s)
	if err != nil {
		return search.Evaluation{}, err
	}

	var eval search.Evaluation
	err = retry.Do(
		func() error {
			resp, err := a.client.Evaluate(ctx, req)
			if err != nil {
				if code := status.Code(err); code == codes.InvalidArgument || code == codes.Canceled {
					return retry.Unrecoverable(err)
				}
				return err
			}
			if eval, err = evaluatorRPC.DecodeEvaluation(resp); err != nil {
				return retry.Unrecoverable(err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(20*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			a.log.Warnf("evaluate: attempt %d failed: %v", n+1, err)
		}),
	)
	if err != nil {
		return search.Evaluation{}, fmt.Errorf("remote evaluate: %w", err)
	}
	return eval, nil
}

func (a *AdapterEvaluator) Close(ctx context.Context) error {
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
