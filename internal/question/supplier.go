package question

import (
	"context"
	"html"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/12-9-1/Game-on/internal/question/external"
)

// Supplier produces trivia questions on demand. Fetch returns nil when the
// upstream source could not deliver a question after exhausting its own
// retries; callers treat that as "no content", not as a fatal error.
type Supplier interface {
	Fetch(ctx context.Context, difficulty string) (*Question, error)
	FetchBatch(ctx context.Context, count int) []Question
}

// weighted pool used when no difficulty is requested
var randomDifficulties = []string{
	DifficultyEasy, DifficultyEasy,
	DifficultyMedium, DifficultyMedium,
	DifficultyHard,
}

type opentdbProvider interface {
	Fetch(ctx context.Context, amount int, difficulty, qType string) ([]external.OpenTDBQuestion, error)
}

// OpenTDBSupplier adapts the raw Open Trivia DB client into the engine-facing
// Supplier: it decodes HTML entities, shuffles the options once, and absorbs
// upstream rate limiting with a short linear backoff.
type OpenTDBSupplier struct {
	client     opentdbProvider
	logger     zerolog.Logger
	maxRetries int
	retryWait  time.Duration
	batchPace  time.Duration
}

// SupplierOptions tunes retry and batch pacing behavior. Zero values fall
// back to the production defaults.
type SupplierOptions struct {
	MaxRetries int
	RetryWait  time.Duration
	BatchPace  time.Duration
}

func NewOpenTDBSupplier(client opentdbProvider, logger zerolog.Logger, opts SupplierOptions) *OpenTDBSupplier {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 2
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 2 * time.Second
	}
	if opts.BatchPace <= 0 {
		opts.BatchPace = 2 * time.Second
	}
	return &OpenTDBSupplier{
		client:     client,
		logger:     logger.With().Str("component", "question_supplier").Logger(),
		maxRetries: opts.MaxRetries,
		retryWait:  opts.RetryWait,
		batchPace:  opts.BatchPace,
	}
}

var _ Supplier = (*OpenTDBSupplier)(nil)

// Fetch retrieves a single multiple-choice question. An empty difficulty
// picks from a pool weighted towards easy and medium.
func (s *OpenTDBSupplier) Fetch(ctx context.Context, difficulty string) (*Question, error) {
	if difficulty == "" {
		difficulty = randomDifficulties[rand.Intn(len(randomDifficulties))]
	}

	for attempt := 0; ; attempt++ {
		results, err := s.client.Fetch(ctx, 1, difficulty, "multiple")
		if err == nil && len(results) > 0 {
			q := normalize(results[0], difficulty)
			return &q, nil
		}
		if err != nil && external.RateLimited(err) && attempt < s.maxRetries {
			wait := s.retryWait * time.Duration(attempt+1)
			s.logger.Debug().Dur("wait", wait).Msg("opentdb rate limited, retrying")
			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if err == nil {
			return nil, nil
		}
		return nil, err
	}
}

// FetchBatch collects up to count questions with difficulty escalating from
// easy to hard across the batch. Calls are paced to respect upstream rate
// limits; individual failures are logged and skipped.
func (s *OpenTDBSupplier) FetchBatch(ctx context.Context, count int) []Question {
	questions := make([]Question, 0, count)
	for i := 0; i < count; i++ {
		if i > 0 {
			select {
			case <-time.After(s.batchPace):
			case <-ctx.Done():
				return questions
			}
		}

		q, err := s.Fetch(ctx, batchDifficulty(i))
		if err != nil || q == nil {
			s.logger.Warn().Err(err).Int("index", i).Msg("batch question fetch failed")
			continue
		}
		questions = append(questions, *q)
	}
	return questions
}

func batchDifficulty(i int) string {
	switch {
	case i < 2:
		return DifficultyEasy
	case i < 4:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

func normalize(raw external.OpenTDBQuestion, difficulty string) Question {
	correct := html.UnescapeString(raw.CorrectAnswer)

	options := make([]string, 0, len(raw.IncorrectAnswer)+1)
	options = append(options, correct)
	for _, opt := range raw.IncorrectAnswer {
		options = append(options, html.UnescapeString(opt))
	}
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	correctIndex := 0
	for i, opt := range options {
		if opt == correct {
			correctIndex = i
			break
		}
	}

	return Question{
		Prompt:       html.UnescapeString(raw.Question),
		Options:      options,
		CorrectIndex: correctIndex,
		Difficulty:   difficulty,
		Category:     html.UnescapeString(raw.Category),
		Explanation:  "The correct answer is: " + correct,
	}
}
