package game

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/12-9-1/Game-on/internal/question"
)

// QuestionQueue keeps a small buffer of pre-fetched questions topped up while
// a round is active. One instance lives per round; the refill loop runs on
// its own goroutine and only ever touches the queue's private buffer, never
// room state. A failed fetch is logged and retried on the next poll tick.
type QuestionQueue struct {
	supplier     question.Supplier
	logger       zerolog.Logger
	pollInterval time.Duration
	lowWater     int
	fetchTimeout time.Duration

	mu     sync.Mutex
	buffer []question.Question

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewQuestionQueue creates a stopped queue.
func NewQuestionQueue(supplier question.Supplier, logger zerolog.Logger, pollInterval time.Duration, lowWater int, fetchTimeout time.Duration) *QuestionQueue {
	if lowWater <= 0 {
		lowWater = 2
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &QuestionQueue{
		supplier:     supplier,
		logger:       logger.With().Str("component", "question_queue").Logger(),
		pollInterval: pollInterval,
		lowWater:     lowWater,
		fetchTimeout: fetchTimeout,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the background refill loop.
func (q *QuestionQueue) Start() {
	go q.run()
}

// Stop signals the loop to exit at its next wake-up. It does not interrupt
// an in-flight fetch. Idempotent.
func (q *QuestionQueue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stopCh)
	})
}

// Next pops the oldest buffered question, or nil when the buffer is empty.
// An empty buffer signals content exhaustion, not an error.
func (q *QuestionQueue) Next() *question.Question {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.buffer) == 0 {
		return nil
	}
	next := q.buffer[0]
	q.buffer = q.buffer[1:]
	return &next
}

// Push appends questions to the buffer, used to seed a round with a
// pre-fetched batch.
func (q *QuestionQueue) Push(questions ...question.Question) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.buffer = append(q.buffer, questions...)
}

// Len returns the buffered question count.
func (q *QuestionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buffer)
}

func (q *QuestionQueue) run() {
	q.logger.Debug().Msg("refill loop started")
	for {
		select {
		case <-q.stopCh:
			q.logger.Debug().Msg("refill loop stopped")
			return
		default:
		}

		if q.Len() < q.lowWater {
			ctx, cancel := context.WithTimeout(context.Background(), q.fetchTimeout)
			next, err := q.supplier.Fetch(ctx, "")
			cancel()
			switch {
			case err != nil:
				q.logger.Warn().Err(err).Msg("question fetch failed")
			case next == nil:
				q.logger.Warn().Msg("supplier returned no question")
			default:
				q.Push(*next)
			}
		}

		select {
		case <-q.stopCh:
			q.logger.Debug().Msg("refill loop stopped")
			return
		case <-time.After(q.pollInterval):
		}
	}
}
