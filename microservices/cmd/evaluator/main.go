package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"nogo/internal/bootstrap"
	"nogo/internal/usecase/search"
	evaluatorRPC "nogo/microservices/proto"
	"nogo/microservices/repository"
	"nogo/microservices/usecase"
)

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	oracle, err := search.NewOracle(cfg.Oracle, cfg.RolloutPlayouts)
	if err != nil {
		logger.Error("Failed to create oracle", zap.Error(err))
		return
	}

	addr := net.JoinHostPort("", strconv.Itoa(cfg.EvaluatorPort))
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatalf("cant listen port %s: %v", addr, err)
	}

	server := grpc.NewServer()
	storage := repository.NewEvaluationRepository(oracle, cfg.EvaluatorCache, logger.Named("cache"))
	evaluatorRPC.RegisterEvaluatorServer(server, usecase.NewEvaluatorUseCase(storage, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		hits, misses := storage.Stats()
		logger.Infof("stopping evaluator (cache hits %d, misses %d)", hits, misses)
		server.GracefulStop()
	}()

	logger.Infof("starting evaluator at %s", addr)
	if err := server.Serve(lis); err != nil {
		logger.Error("evaluator stopped", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	return logger.Sugar()
}
