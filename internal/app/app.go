package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/12-9-1/Game-on/internal/config"
	"github.com/12-9-1/Game-on/internal/game"
	"github.com/12-9-1/Game-on/internal/logging"
	"github.com/12-9-1/Game-on/internal/question"
	"github.com/12-9-1/Game-on/internal/question/external"
	"github.com/12-9-1/Game-on/internal/ranking"
	"github.com/12-9-1/Game-on/internal/server"
	"github.com/12-9-1/Game-on/pkg/ws"
)

// Application aggregates shared infrastructure (cache, HTTP server, engine).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	redis *redis.Client
	http  *http.Server
}

// New bootstraps the logger, the optional Redis ranking store, the question
// supply chain and the HTTP/WebSocket server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	var redisClient *redis.Client
	var rankingSvc *ranking.Service
	var rankingsHandler http.HandlerFunc
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		rankingSvc = ranking.NewService(redisClient, logger, ranking.ServiceOptions{
			KeyPrefix: cfg.Ranking.KeyPrefix,
			TopN:      cfg.Ranking.TopN,
		})
		rankingsHandler = ranking.NewHTTPHandler(rankingSvc, logger).HandleTop
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("global ranking enabled")
	} else {
		logger.Warn().Msg("REDIS_ADDR not set; global ranking disabled")
	}

	opentdbClient := external.NewOpenTDBClient(cfg.Trivia.BaseURL, &http.Client{Timeout: cfg.Trivia.HTTPTimeout})
	supplier := question.NewOpenTDBSupplier(opentdbClient, logger, question.SupplierOptions{
		MaxRetries: cfg.Trivia.MaxRetries,
		RetryWait:  cfg.Trivia.RetryWait,
		BatchPace:  cfg.Trivia.BatchPace,
	})

	hub := ws.NewHub(logger)
	registry := game.NewRoomRegistry(logger)

	// A nil interface value, not a typed nil, when ranking is disabled.
	var recorder game.RoundRecorder
	if rankingSvc != nil {
		recorder = rankingSvc
	}

	engine := game.NewEngine(registry, supplier, hub, recorder, logger, game.Timings{
		QuestionSeconds:     cfg.Game.QuestionSeconds,
		TimerMargin:         cfg.Game.TimerMargin,
		StartDelay:          cfg.Game.StartDelay,
		TimeoutAdvanceDelay: cfg.Game.TimeoutAdvanceDelay,
		EarlyAdvanceDelay:   cfg.Game.EarlyAdvanceDelay,
		WinDelay:            cfg.Game.WinDelay,
		QueuePollInterval:   cfg.Game.QueuePollInterval,
		QueueLowWater:       cfg.Game.QueueLowWater,
		FetchTimeout:        cfg.Trivia.HTTPTimeout,
		WinScore:            cfg.Game.WinScore,
		NewRoundQuestions:   cfg.Game.NewRoundQuestions,
	})

	gameHandler := game.NewHandler(engine, hub, logger)

	apiServer := server.NewHTTPServer(cfg, logger, gameHandler.HandleWebSocket, engine.WaitingRooms, rankingsHandler)

	return &Application{
		cfg:    cfg,
		logger: logger,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
