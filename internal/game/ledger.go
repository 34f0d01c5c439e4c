package game

import (
	"time"

	"github.com/google/uuid"
)

// Scoring constants: a correct answer earns the base plus a time bonus that
// decays by 20 points per second, reaching zero at 25s elapsed.
const (
	basePoints       = 1000
	maxTimeBonus     = 500
	bonusDecayPerSec = 20
)

// timeoutAnswerIndex is the sentinel stored for players who never answered.
const timeoutAnswerIndex = -1

// AnswerRecord is one player's answer to one question. Created at most once
// per (player, question); a second submission is rejected, never overwritten.
type AnswerRecord struct {
	AnswerIndex  int     `json:"answer_index"`
	IsCorrect    bool    `json:"is_correct"`
	Points       int     `json:"points"`
	ResponseTime float64 `json:"response_time"`
}

// AnswerLedger records submitted answers for exactly one in-flight question
// and computes correctness and score. Not safe for concurrent use; the
// engine serializes access.
type AnswerLedger struct {
	open         bool
	correctIndex int
	openedAt     time.Time
	timeLimit    float64 // seconds, recorded as ResponseTime for timeouts
	records      map[uuid.UUID]AnswerRecord
}

// NewAnswerLedger creates a closed ledger for the given question time limit.
func NewAnswerLedger(timeLimitSeconds int) *AnswerLedger {
	return &AnswerLedger{
		timeLimit: float64(timeLimitSeconds),
		records:   make(map[uuid.UUID]AnswerRecord),
	}
}

// Open resets the ledger for a new question.
func (l *AnswerLedger) Open(correctIndex int, openedAt time.Time) {
	l.open = true
	l.correctIndex = correctIndex
	l.openedAt = openedAt
	l.records = make(map[uuid.UUID]AnswerRecord)
}

// Close marks the ledger inactive; subsequent submissions fail.
func (l *AnswerLedger) Close() {
	l.open = false
}

// CorrectIndex returns the zero-based index of the correct option.
func (l *AnswerLedger) CorrectIndex() int {
	return l.correctIndex
}

// Submit records a player's answer and computes its score.
func (l *AnswerLedger) Submit(playerID uuid.UUID, optionIndex int, now time.Time) (AnswerRecord, error) {
	if !l.open {
		return AnswerRecord{}, ErrNoActiveRound
	}
	if _, exists := l.records[playerID]; exists {
		return AnswerRecord{}, ErrAlreadyAnswered
	}

	elapsed := now.Sub(l.openedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	correct := optionIndex == l.correctIndex

	points := 0
	if correct {
		timeBonus := maxTimeBonus - int(elapsed*bonusDecayPerSec)
		if timeBonus < 0 {
			timeBonus = 0
		}
		points = basePoints + timeBonus
	}

	record := AnswerRecord{
		AnswerIndex:  optionIndex,
		IsCorrect:    correct,
		Points:       points,
		ResponseTime: elapsed,
	}
	l.records[playerID] = record
	return record, nil
}

// RecordTimeout inserts a zero-point timeout record for a single player if
// one does not already exist. Reports whether a record was inserted.
func (l *AnswerLedger) RecordTimeout(playerID uuid.UUID) bool {
	if !l.open {
		return false
	}
	if _, exists := l.records[playerID]; exists {
		return false
	}
	l.records[playerID] = AnswerRecord{
		AnswerIndex:  timeoutAnswerIndex,
		IsCorrect:    false,
		Points:       0,
		ResponseTime: l.timeLimit,
	}
	return true
}

// FillMissing inserts timeout records for every roster member without one.
func (l *AnswerLedger) FillMissing(rosterIDs []uuid.UUID) {
	for _, id := range rosterIDs {
		l.RecordTimeout(id)
	}
}

// AllAnswered reports whether every roster member has a record.
func (l *AnswerLedger) AllAnswered(rosterIDs []uuid.UUID) bool {
	for _, id := range rosterIDs {
		if _, exists := l.records[id]; !exists {
			return false
		}
	}
	return true
}

// Count returns the number of recorded answers, for progress broadcasts.
func (l *AnswerLedger) Count() int {
	return len(l.records)
}

// Record returns the stored record for a player, if any.
func (l *AnswerLedger) Record(playerID uuid.UUID) (AnswerRecord, bool) {
	rec, ok := l.records[playerID]
	return rec, ok
}
