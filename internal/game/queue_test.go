package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/12-9-1/Game-on/internal/question"
)

// scriptedSupplier hands out questions from a fixed list, then nothing.
type scriptedSupplier struct {
	mu        sync.Mutex
	questions []question.Question
	fetches   int
}

func (s *scriptedSupplier) Fetch(_ context.Context, _ string) (*question.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	if len(s.questions) == 0 {
		return nil, nil
	}
	next := s.questions[0]
	s.questions = s.questions[1:]
	return &next, nil
}

func (s *scriptedSupplier) FetchBatch(ctx context.Context, count int) []question.Question {
	batch := make([]question.Question, 0, count)
	for i := 0; i < count; i++ {
		q, err := s.Fetch(ctx, "")
		if err != nil || q == nil {
			break
		}
		batch = append(batch, *q)
	}
	return batch
}

func (s *scriptedSupplier) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func makeQuestions(prompts ...string) []question.Question {
	qs := make([]question.Question, len(prompts))
	for i, p := range prompts {
		qs[i] = question.Question{Prompt: p, Options: []string{"a", "b", "c", "d"}}
	}
	return qs
}

func TestQueuePopsInFIFOOrder(t *testing.T) {
	q := NewQuestionQueue(&scriptedSupplier{}, zerolog.Nop(), time.Minute, 2, time.Second)
	q.Push(makeQuestions("one", "two")...)

	first := q.Next()
	require.NotNil(t, first)
	assert.Equal(t, "one", first.Prompt)

	second := q.Next()
	require.NotNil(t, second)
	assert.Equal(t, "two", second.Prompt)

	assert.Nil(t, q.Next())
}

func TestQueueRefillsBelowLowWater(t *testing.T) {
	supplier := &scriptedSupplier{questions: makeQuestions("one", "two", "three")}
	q := NewQuestionQueue(supplier, zerolog.Nop(), 5*time.Millisecond, 2, time.Second)

	q.Start()
	defer q.Stop()

	require.Eventually(t, func() bool { return q.Len() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestQueueStopsRefilling(t *testing.T) {
	supplier := &scriptedSupplier{questions: makeQuestions("one", "two", "three")}
	q := NewQuestionQueue(supplier, zerolog.Nop(), 5*time.Millisecond, 5, time.Second)

	q.Start()
	require.Eventually(t, func() bool { return q.Len() >= 1 }, time.Second, 5*time.Millisecond)
	q.Stop()
	q.Stop() // idempotent

	time.Sleep(30 * time.Millisecond)
	settled := supplier.fetchCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, supplier.fetchCount())
}

func TestQueueToleratesExhaustedSupplier(t *testing.T) {
	supplier := &scriptedSupplier{}
	q := NewQuestionQueue(supplier, zerolog.Nop(), 5*time.Millisecond, 2, time.Second)

	q.Start()
	defer q.Stop()

	require.Eventually(t, func() bool { return supplier.fetchCount() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Nil(t, q.Next())
}
