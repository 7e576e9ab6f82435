package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"nogo/internal/adapters"
	"nogo/internal/bootstrap"
	"nogo/internal/delivery/server"
	"nogo/internal/delivery/transport"
	"nogo/internal/usecase/room"
	"nogo/internal/usecase/search"
)

func main() {
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to setup configuration:", err)
		os.Exit(1)
	}
	logger := NewLogger(cfg)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	oracle, closeOracle, err := initOracle(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize oracle", zap.Error(err))
		return
	}
	defer closeOracle()

	rm, err := room.New(room.Options{
		BoardSize:   cfg.BoardSize,
		TurnTimeout: cfg.TurnTimeout,
		Leniency:    cfg.TimeoutLeniency,
		WriterIdle:  cfg.WriterIdle,
		Dial: func(ctx context.Context, target string) (room.Conn, error) {
			return transport.Dial(ctx, target, cfg.DialTimeout)
		},
		Bot: search.NewEngine(cfg.Search(), oracle, logger.Named("search")),
	}, logger.Named("room"))
	if err != nil {
		logger.Error("Failed to create room", zap.Error(err))
		return
	}

	if err := run(ctx, cfg, logger, rm); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *bootstrap.Config, log *zap.SugaredLogger, rm *room.Room) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rm.Run(ctx) })

	listen := func(port int, kind room.Kind) error {
		ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
		if err != nil {
			return fmt.Errorf("listen %s port %d: %w", kind, port, err)
		}
		g.Go(func() error { return server.ServeTCP(ctx, ln, rm, kind, log) })
		return nil
	}
	if err := listen(cfg.LocalPort, room.Local); err != nil {
		return err
	}
	for _, port := range cfg.RemotePorts {
		if err := listen(port, room.Remote); err != nil {
			return err
		}
	}

	handler := server.NewRoomHandler(log.Named("http"), rm)
	srv := &http.Server{
		Addr:    net.JoinHostPort("", strconv.Itoa(cfg.HttpPort)),
		Handler: handler.Router(cfg.LocalCors),
	}
	g.Go(func() error {
		log.Infof("Server is running on port %d", cfg.HttpPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// initOracle picks the evaluation oracle the bot searches with.
func initOracle(ctx context.Context, cfg *bootstrap.Config, log *zap.SugaredLogger) (search.Oracle, func(), error) {
	if cfg.Oracle != "remote" {
		oracle, err := search.NewOracle(cfg.Oracle, cfg.RolloutPlayouts)
		return oracle, func() {}, err
	}
	evaluator := adapters.NewAdapterEvaluator(cfg, log.Named("evaluator"))
	if err := evaluator.Init(ctx); err != nil {
		return nil, nil, err
	}
	return evaluator, func() {
		if err := evaluator.Close(context.Background()); err != nil {
			log.Warnf("close evaluator: %v", err)
		}
	}, nil
}

func NewLogger(cfg *bootstrap.Config) *zap.SugaredLogger {
	zcfg := zap.NewProductionConfig()
	if cfg.LogDevelopment {
		zcfg = zap.NewDevelopmentConfig()
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := zcfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
}
