package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"game-on"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Redis   Redis
	Game    Game
	Trivia  Trivia
	Ranking Ranking
}

// Redis holds ranking store configuration. Leaving Addr empty disables the
// global ranking; gameplay does not depend on it.
type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Game groups gameplay timing and scoring knobs. The defaults are the tuned
// production values; override only for load tests and local experiments.
type Game struct {
	QuestionSeconds     int           `env:"GAME_QUESTION_SECONDS" envDefault:"30"`
	TimerMargin         time.Duration `env:"GAME_TIMER_MARGIN" envDefault:"2s"`
	StartDelay          time.Duration `env:"GAME_START_DELAY" envDefault:"2s"`
	TimeoutAdvanceDelay time.Duration `env:"GAME_TIMEOUT_ADVANCE_DELAY" envDefault:"2s"`
	EarlyAdvanceDelay   time.Duration `env:"GAME_EARLY_ADVANCE_DELAY" envDefault:"3s"`
	WinDelay            time.Duration `env:"GAME_WIN_DELAY" envDefault:"2s"`
	QueuePollInterval   time.Duration `env:"GAME_QUEUE_POLL_INTERVAL" envDefault:"2s"`
	QueueLowWater       int           `env:"GAME_QUEUE_LOW_WATER" envDefault:"2"`
	WinScore            int           `env:"GAME_WIN_SCORE" envDefault:"10000"`
	NewRoundQuestions   int           `env:"GAME_NEW_ROUND_QUESTIONS" envDefault:"5"`
}

// Trivia configures the external question provider.
type Trivia struct {
	BaseURL     string        `env:"TRIVIA_BASE_URL"`
	HTTPTimeout time.Duration `env:"TRIVIA_HTTP_TIMEOUT" envDefault:"10s"`
	MaxRetries  int           `env:"TRIVIA_MAX_RETRIES" envDefault:"2"`
	RetryWait   time.Duration `env:"TRIVIA_RETRY_WAIT" envDefault:"2s"`
	BatchPace   time.Duration `env:"TRIVIA_BATCH_PACE" envDefault:"2s"`
}

// Ranking governs the Redis-backed global ranking surface.
type Ranking struct {
	KeyPrefix string `env:"RANKING_KEY_PREFIX" envDefault:"ranking"`
	TopN      int    `env:"RANKING_TOP_N" envDefault:"10"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
