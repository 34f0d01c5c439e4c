package game

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/12-9-1/Game-on/internal/question"
	"github.com/12-9-1/Game-on/pkg/ws"
)

// Emitter delivers engine output to the real-time channel. *ws.Hub satisfies
// it; tests substitute a recorder. The engine never performs network I/O
// itself.
type Emitter interface {
	EmitTo(connID uuid.UUID, msg ws.Message) error
	EmitToRoom(roomID string, msg ws.Message) error
	JoinRoom(roomID string, connID uuid.UUID)
	LeaveRoom(roomID string, connID uuid.UUID)
}

// RoundRecorder receives finished-round results, e.g. for a global ranking.
// Recording is best effort; failures are logged, never surfaced to players.
type RoundRecorder interface {
	RecordRound(ctx context.Context, results []ws.RoundResult) error
}

// Timings groups the fixed gameplay delays. The 2s timeout-advance and 3s
// early-advance values are distinct on purpose: the early path gives the last
// responder's feedback a moment on screen.
type Timings struct {
	QuestionSeconds     int
	TimerMargin         time.Duration
	StartDelay          time.Duration
	TimeoutAdvanceDelay time.Duration
	EarlyAdvanceDelay   time.Duration
	WinDelay            time.Duration
	QueuePollInterval   time.Duration
	QueueLowWater       int
	FetchTimeout        time.Duration
	WinScore            int
	NewRoundQuestions   int
}

// DefaultTimings returns production gameplay constants.
func DefaultTimings() Timings {
	return Timings{
		QuestionSeconds:     30,
		TimerMargin:         2 * time.Second,
		StartDelay:          2 * time.Second,
		TimeoutAdvanceDelay: 2 * time.Second,
		EarlyAdvanceDelay:   3 * time.Second,
		WinDelay:            2 * time.Second,
		QueuePollInterval:   2 * time.Second,
		QueueLowWater:       2,
		FetchTimeout:        10 * time.Second,
		WinScore:            10000,
		NewRoundQuestions:   5,
	}
}

func (t Timings) withDefaults() Timings {
	def := DefaultTimings()
	if t.QuestionSeconds <= 0 {
		t.QuestionSeconds = def.QuestionSeconds
	}
	if t.TimerMargin <= 0 {
		t.TimerMargin = def.TimerMargin
	}
	if t.StartDelay <= 0 {
		t.StartDelay = def.StartDelay
	}
	if t.TimeoutAdvanceDelay <= 0 {
		t.TimeoutAdvanceDelay = def.TimeoutAdvanceDelay
	}
	if t.EarlyAdvanceDelay <= 0 {
		t.EarlyAdvanceDelay = def.EarlyAdvanceDelay
	}
	if t.WinDelay <= 0 {
		t.WinDelay = def.WinDelay
	}
	if t.QueuePollInterval <= 0 {
		t.QueuePollInterval = def.QueuePollInterval
	}
	if t.QueueLowWater <= 0 {
		t.QueueLowWater = def.QueueLowWater
	}
	if t.FetchTimeout <= 0 {
		t.FetchTimeout = def.FetchTimeout
	}
	if t.WinScore <= 0 {
		t.WinScore = def.WinScore
	}
	if t.NewRoundQuestions <= 0 {
		t.NewRoundQuestions = def.NewRoundQuestions
	}
	return t
}

// Engine is the round state machine and the single dispatch point for all
// room-state mutation: every inbound command and every timer callback takes
// e.mu, so no two mutations of the same room ever interleave. Timer and
// delay callbacks additionally carry the per-question generation counter and
// no-op when stale, which makes duplicate fires and cancel races harmless.
type Engine struct {
	mu       sync.Mutex
	registry *RoomRegistry
	supplier question.Supplier
	emitter  Emitter
	recorder RoundRecorder // optional
	timings  Timings
	logger   zerolog.Logger
}

// NewEngine wires the session engine. recorder may be nil.
func NewEngine(registry *RoomRegistry, supplier question.Supplier, emitter Emitter, recorder RoundRecorder, logger zerolog.Logger, timings Timings) *Engine {
	return &Engine{
		registry: registry,
		supplier: supplier,
		emitter:  emitter,
		recorder: recorder,
		timings:  timings.withDefaults(),
		logger:   logger.With().Str("component", "game_engine").Logger(),
	}
}

// ---------------------------------------------------------------------------
// Lobby commands

// CreateLobby creates a room with the requestor as host.
func (e *Engine) CreateLobby(connID uuid.UUID, displayName string, maxPlayers int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.registry.Lookup(connID); ok {
		return ErrAlreadyInLobby
	}

	lobby, err := e.registry.CreateRoom(connID, displayName, maxPlayers)
	if err != nil {
		return err
	}

	e.emitter.JoinRoom(lobby.Code, connID)
	e.toConn(connID, ws.TypeLobbyCreated, ws.LobbyPayload{
		Lobby:   lobby.Snapshot(),
		Message: "Lobby " + lobby.Code + " created",
	})
	return nil
}

// JoinLobby adds the requestor to an existing waiting room.
func (e *Engine) JoinLobby(connID uuid.UUID, code, displayName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.registry.Lookup(connID); ok {
		return ErrAlreadyInLobby
	}

	lobby, err := e.registry.JoinRoom(code, connID, displayName)
	if err != nil {
		return err
	}

	joined := lobby.player(connID)

	// Broadcast before the joiner enters the group so they only receive
	// their own lobby_joined.
	e.toRoom(lobby, ws.TypePlayerJoined, ws.PlayerJoinedPayload{
		Lobby: lobby.Snapshot(),
		Player: ws.PlayerInfo{
			ConnectionID: joined.ConnectionID.String(),
			Name:         joined.Name,
		},
		PlayerCount: len(lobby.Players),
	})

	e.emitter.JoinRoom(lobby.Code, connID)
	e.toConn(connID, ws.TypeLobbyJoined, ws.LobbyPayload{
		Lobby:   lobby.Snapshot(),
		Message: "Joined lobby " + lobby.Code,
	})
	return nil
}

// LeaveLobby removes the requestor from its room. Idempotent: leaving while
// in no room is a silent no-op.
func (e *Engine) LeaveLobby(connID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.departLocked(connID)
	e.toConn(connID, ws.TypeLobbyLeft, ws.LobbyClosedPayload{Message: "You left the lobby"})
	return nil
}

// OnDisconnected handles an implicit departure when a connection drops.
func (e *Engine) OnDisconnected(connID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.departLocked(connID)
}

// ListLobbies sends the waiting-room list to the requestor.
func (e *Engine) ListLobbies(connID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.toConn(connID, ws.TypeLobbiesList, ws.LobbiesListPayload{Lobbies: e.waitingSummariesLocked()})
	return nil
}

// WaitingRooms lists browsable rooms for the HTTP surface.
func (e *Engine) WaitingRooms() []ws.LobbySummary {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.waitingSummariesLocked()
}

func (e *Engine) waitingSummariesLocked() []ws.LobbySummary {
	waiting := e.registry.ListWaiting()
	summaries := make([]ws.LobbySummary, 0, len(waiting))
	for _, lobby := range waiting {
		summaries = append(summaries, lobby.Summary())
	}
	return summaries
}

// ToggleReady flips the requestor's ready flag and broadcasts the roster.
func (e *Engine) ToggleReady(connID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	lobby, err := e.registry.ToggleReady(connID)
	if err != nil {
		return err
	}
	e.toRoom(lobby, ws.TypePlayerReadyChanged, ws.LobbyPayload{Lobby: lobby.Snapshot()})
	return nil
}

// SendChat relays a chat line to the requestor's room.
func (e *Engine) SendChat(connID uuid.UUID, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	lobby, ok := e.registry.Lookup(connID)
	if !ok {
		return ErrNotInLobby
	}
	player := lobby.player(connID)
	if player == nil {
		return ErrPlayerNotFound
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	e.toRoom(lobby, ws.TypeChatMessage, ws.ChatMessagePayload{
		ConnectionID: connID.String(),
		PlayerName:   player.Name,
		Message:      text,
		Timestamp:    time.Now().Format(time.RFC3339),
	})
	return nil
}

// SendLobbyUpdate pushes a fresh snapshot to the requestor only.
func (e *Engine) SendLobbyUpdate(connID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	lobby, ok := e.registry.Lookup(connID)
	if !ok {
		return nil
	}
	e.toConn(connID, ws.TypeLobbyUpdated, ws.LobbyPayload{Lobby: lobby.Snapshot()})
	return nil
}

// ---------------------------------------------------------------------------
// Round commands

// StartGame validates the host's start request, synchronously fetches the
// first question (blocking the call) and opens the round. The fetch happens
// outside the dispatch lock; the room is re-validated before commit, so a
// concurrent start or departure cannot corrupt state.
func (e *Engine) StartGame(connID uuid.UUID) error {
	e.mu.Lock()
	lobby, ok := e.registry.Lookup(connID)
	if !ok {
		e.mu.Unlock()
		return ErrNotInLobby
	}
	if err := validateStart(lobby, connID); err != nil {
		e.mu.Unlock()
		return err
	}
	code := lobby.Code
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), e.timings.FetchTimeout)
	first, err := e.supplier.Fetch(ctx, "")
	cancel()
	if err != nil || first == nil {
		e.logger.Warn().Err(err).Str("room_code", code).Msg("initial question fetch failed")
		return ErrNoQuestionsAvailable
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	lobby, ok = e.registry.Lookup(connID)
	if !ok || lobby.Code != code {
		return ErrNotInLobby
	}
	if err := validateStart(lobby, connID); err != nil {
		return err
	}

	e.beginRoundLocked(lobby, *first, nil)
	e.toRoom(lobby, ws.TypeGameStarted, ws.GameStartedPayload{
		Lobby:    lobby.Snapshot(),
		WinScore: lobby.WinScore,
		Message:  "First to reach the win score takes the round!",
	})
	e.broadcastLobbyLocked(lobby)

	e.logger.Info().Str("room_code", lobby.Code).Int("players", len(lobby.Players)).Msg("round started")
	return nil
}

func validateStart(l *Lobby, connID uuid.UUID) error {
	if l.Status != StatusWaiting {
		return ErrRoundInProgress
	}
	if l.Host != connID {
		return ErrNotHost
	}
	if !l.allNonHostReady() {
		return ErrPlayersNotReady
	}
	if len(l.Players) < MinPlayers {
		return ErrInsufficientPlayers
	}
	return nil
}

// SubmitAnswer records a player's answer, awards points and checks the two
// exit triggers: win threshold first, then all-answered early advance.
func (e *Engine) SubmitAnswer(connID uuid.UUID, optionIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	lobby, ok := e.registry.Lookup(connID)
	if !ok {
		return ErrNotInLobby
	}
	s := lobby.session
	if lobby.Status != StatusPlaying || s == nil {
		return ErrNoActiveRound
	}
	player := lobby.player(connID)
	if player == nil {
		return ErrPlayerNotFound
	}

	record, err := s.ledger.Submit(connID, optionIndex, time.Now())
	if err != nil {
		return err
	}
	player.Score += record.Points

	e.toConn(connID, ws.TypeAnswerResult, ws.AnswerResultPayload{
		IsCorrect:     record.IsCorrect,
		Points:        record.Points,
		TotalScore:    player.Score,
		CorrectAnswer: s.ledger.CorrectIndex(),
		Explanation:   s.current.Explanation,
	})
	e.toRoom(lobby, ws.TypePlayerAnswered, ws.PlayerAnsweredPayload{
		PlayerName:    player.Name,
		TotalAnswered: s.ledger.Count(),
		TotalPlayers:  len(lobby.Players),
	})
	e.broadcastLobbyLocked(lobby)

	// Once a win is pending the round end is already scheduled; late answers
	// are still recorded and acknowledged above, but nothing may reschedule
	// s.advance past the win.
	if s.winPending {
		return nil
	}

	if player.Score >= lobby.WinScore {
		e.logger.Info().Str("room_code", lobby.Code).Str("player", player.Name).Int("score", player.Score).Msg("win score reached")
		s.winPending = true
		s.deadline.Cancel()
		gen := s.generation
		s.advance.Schedule(e.timings.WinDelay, func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if lobby.session != s || s.generation != gen {
				return
			}
			e.endRoundLocked(lobby, s)
		})
		return nil
	}

	if s.ledger.AllAnswered(lobby.rosterIDs()) {
		s.deadline.Cancel()
		e.scheduleAdvanceLocked(lobby, s, e.timings.EarlyAdvanceDelay)
	}
	return nil
}

// TimeUp records a client-reported timeout for the requesting player only.
// It never advances the round; the server deadline handles that.
func (e *Engine) TimeUp(connID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	lobby, ok := e.registry.Lookup(connID)
	if !ok || lobby.session == nil {
		return nil
	}
	lobby.session.ledger.RecordTimeout(connID)
	return nil
}

// RequestNewRound moves a finished room into the ready-up phase.
func (e *Engine) RequestNewRound(connID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	lobby, ok := e.registry.Lookup(connID)
	if !ok {
		return ErrNotInLobby
	}
	if lobby.Host != connID {
		return ErrNotHost
	}
	if lobby.Status != StatusRoundFinished {
		return ErrNoActiveRound
	}

	lobby.Status = StatusWaitingNewRound
	for _, p := range lobby.Players {
		if !p.IsHost {
			p.Ready = false
		}
	}

	e.toRoom(lobby, ws.TypeWaitingNewRound, ws.LobbyPayload{
		Lobby:   lobby.Snapshot(),
		Message: "Waiting for everyone to ready up",
	})
	return nil
}

// ReadyForNewRound marks the requestor ready; once every non-host player is
// ready it synchronously generates a fresh question batch and opens the next
// round. A failed batch leaves the room in waiting_new_round.
func (e *Engine) ReadyForNewRound(connID uuid.UUID) error {
	e.mu.Lock()
	lobby, ok := e.registry.Lookup(connID)
	if !ok {
		e.mu.Unlock()
		return ErrNotInLobby
	}
	if lobby.Status != StatusWaitingNewRound {
		e.mu.Unlock()
		return ErrNoActiveRound
	}
	player := lobby.player(connID)
	if player == nil {
		e.mu.Unlock()
		return ErrPlayerNotFound
	}

	player.Ready = true
	e.toRoom(lobby, ws.TypePlayerReadyChanged, ws.LobbyPayload{Lobby: lobby.Snapshot()})

	if !lobby.allNonHostReady() {
		e.mu.Unlock()
		return nil
	}
	code := lobby.Code
	count := e.timings.NewRoundQuestions
	e.mu.Unlock()

	// Generous bound: per-question fetch plus the fixed inter-call pacing.
	budget := time.Duration(count) * (e.timings.FetchTimeout + e.timings.QueuePollInterval)
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	batch := e.supplier.FetchBatch(ctx, count)
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()

	lobby, ok = e.registry.Lookup(connID)
	if !ok || lobby.Code != code || lobby.Status != StatusWaitingNewRound {
		return nil // room changed while fetching; nothing to commit
	}
	if len(batch) == 0 {
		e.logger.Warn().Str("room_code", code).Msg("new round batch fetch failed")
		return ErrNoQuestionsAvailable
	}
	if !lobby.allNonHostReady() {
		return nil
	}

	e.beginRoundLocked(lobby, batch[0], batch[1:])
	e.toRoom(lobby, ws.TypeNewRoundStarted, ws.NewRoundStartedPayload{
		Lobby:          lobby.Snapshot(),
		TotalQuestions: len(batch),
		Message:        "New round starting!",
	})
	e.broadcastLobbyLocked(lobby)
	return nil
}

// BackToLobby aborts whatever round state exists and returns the room to
// waiting. Host only.
func (e *Engine) BackToLobby(connID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	lobby, ok := e.registry.Lookup(connID)
	if !ok {
		return ErrNotInLobby
	}
	if lobby.Host != connID {
		return ErrNotHost
	}
	if lobby.Status == StatusWaiting {
		return ErrNoActiveRound
	}

	e.discardSessionLocked(lobby)
	lobby.Status = StatusWaiting
	for _, p := range lobby.Players {
		p.Score = 0
		if !p.IsHost {
			p.Ready = false
		}
	}

	e.toRoom(lobby, ws.TypeReturnedToLobby, ws.LobbyPayload{
		Lobby:   lobby.Snapshot(),
		Message: "Back to the lobby",
	})
	return nil
}

// ---------------------------------------------------------------------------
// Round progression (all *Locked methods require e.mu)

// beginRoundLocked resets scores and opens a session at question #1. Any
// extra pre-fetched questions seed the queue buffer before the refill loop
// starts. The first question is dispatched after the start delay.
func (e *Engine) beginRoundLocked(l *Lobby, first question.Question, rest []question.Question) {
	for _, p := range l.Players {
		p.Score = 0
	}
	l.WinScore = e.timings.WinScore
	l.Status = StatusPlaying

	s := &session{
		current:  first,
		number:   1,
		ledger:   NewAnswerLedger(e.timings.QuestionSeconds),
		queue:    NewQuestionQueue(e.supplier, e.logger, e.timings.QueuePollInterval, e.timings.QueueLowWater, e.timings.FetchTimeout),
		deadline: NewRoundTimer(),
		advance:  NewRoundTimer(),
	}
	s.queue.Push(rest...)
	l.session = s
	s.queue.Start()

	gen := s.generation
	s.advance.Schedule(e.timings.StartDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if l.session != s || s.generation != gen {
			return
		}
		e.dispatchQuestionLocked(l, s)
	})
}

// dispatchQuestionLocked opens the ledger for the current question, bumps the
// generation, arms the deadline and broadcasts the question without its
// correct index.
func (e *Engine) dispatchQuestionLocked(l *Lobby, s *session) {
	if len(l.Players) == 0 {
		// Should be unreachable: departures tear empty rooms down. Treat as
		// fatal to this room only.
		e.logger.Error().Str("room_code", l.Code).Msg("dispatch with empty roster, tearing room down")
		e.discardSessionLocked(l)
		e.registry.Delete(l.Code)
		return
	}

	s.generation++
	gen := s.generation
	s.ledger.Open(s.current.CorrectIndex, time.Now())

	duration := time.Duration(e.timings.QuestionSeconds)*time.Second + e.timings.TimerMargin
	s.deadline.Schedule(duration, func() {
		e.onDeadline(l, s, gen)
	})

	e.toRoom(l, ws.TypeNewQuestion, ws.NewQuestionPayload{
		Question:       s.current.Prompt,
		Options:        s.current.Options,
		Difficulty:     s.current.Difficulty,
		Category:       s.current.Category,
		QuestionNumber: s.number,
		TimeLimit:      e.timings.QuestionSeconds,
	})
	e.broadcastLobbyLocked(l)

	e.logger.Info().Str("room_code", l.Code).Int("question", s.number).Msg("question dispatched")
}

// onDeadline runs when the question deadline fires: missing answers become
// timeouts, then the round advances after the timeout delay. A stale
// generation (the question already resolved) or a pending win makes this a
// no-op, so duplicate fires cannot double-advance or override a win.
func (e *Engine) onDeadline(l *Lobby, s *session, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if l.session != s || s.generation != gen || s.winPending {
		return
	}

	s.ledger.FillMissing(l.rosterIDs())
	e.logger.Info().Str("room_code", l.Code).Int("question", s.number).Msg("question timed out")
	e.scheduleAdvanceLocked(l, s, e.timings.TimeoutAdvanceDelay)
}

// scheduleAdvanceLocked arms the post-resolution delay before the next
// question, generation-guarded like every other callback.
func (e *Engine) scheduleAdvanceLocked(l *Lobby, s *session, delay time.Duration) {
	gen := s.generation
	s.advance.Schedule(delay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if l.session != s || s.generation != gen {
			return
		}
		e.advanceQuestionLocked(l, s)
	})
}

// advanceQuestionLocked pulls the next buffered question; an empty buffer
// ends the round, which is the normal terminal condition.
func (e *Engine) advanceQuestionLocked(l *Lobby, s *session) {
	next := s.queue.Next()
	if next == nil {
		e.logger.Info().Str("room_code", l.Code).Msg("question supply exhausted")
		e.endRoundLocked(l, s)
		return
	}
	s.current = *next
	s.number++
	e.dispatchQuestionLocked(l, s)
}

// endRoundLocked stops the session, ranks players (stable descending sort,
// ties keep join order) and broadcasts the result.
func (e *Engine) endRoundLocked(l *Lobby, s *session) {
	s.deadline.Cancel()
	s.advance.Cancel()
	s.queue.Stop()
	s.ledger.Close()
	l.session = nil
	l.Status = StatusRoundFinished

	results := rankPlayers(l.Players)
	var winner *ws.RoundResult
	if len(results) > 0 {
		winner = &results[0]
	}

	e.toRoom(l, ws.TypeRoundEnded, ws.RoundEndedPayload{Results: results, Winner: winner})
	e.broadcastLobbyLocked(l)

	e.logger.Info().Str("room_code", l.Code).Msg("round ended")

	if e.recorder != nil && len(results) > 0 {
		recorded := append([]ws.RoundResult(nil), results...)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := e.recorder.RecordRound(ctx, recorded); err != nil {
				e.logger.Warn().Err(err).Msg("failed to record round results")
			}
		}()
	}
}

func rankPlayers(players []*Player) []ws.RoundResult {
	ranked := append([]*Player(nil), players...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	results := make([]ws.RoundResult, len(ranked))
	for i, p := range ranked {
		results[i] = ws.RoundResult{Name: p.Name, Score: p.Score, Rank: i + 1}
	}
	return results
}

// ---------------------------------------------------------------------------
// Departures

// departLocked removes a player (explicit leave or disconnect). If a
// question is open the departing player's answer is recorded as a timeout
// first, and the departure itself can satisfy the all-answered exit.
func (e *Engine) departLocked(connID uuid.UUID) {
	lobby, ok := e.registry.Lookup(connID)
	if !ok {
		return
	}

	s := lobby.session
	if s != nil && lobby.Status == StatusPlaying {
		s.ledger.RecordTimeout(connID)
	}

	_, removed, closed := e.registry.Leave(connID)
	e.emitter.LeaveRoom(lobby.Code, connID)

	if closed {
		e.discardSessionLocked(lobby)
		e.toRoom(lobby, ws.TypeLobbyClosed, ws.LobbyClosedPayload{Message: "The lobby is empty"})
		return
	}

	name := "Player"
	if removed != nil {
		name = removed.Name
	}
	e.toRoom(lobby, ws.TypePlayerLeft, ws.PlayerLeftPayload{
		Lobby:       lobby.Snapshot(),
		PlayerName:  name,
		PlayerCount: len(lobby.Players),
		Message:     name + " left the lobby",
	})
	e.broadcastLobbyLocked(lobby)

	if s != nil && lobby.Status == StatusPlaying && !s.winPending && s.ledger.AllAnswered(lobby.rosterIDs()) {
		s.deadline.Cancel()
		e.scheduleAdvanceLocked(lobby, s, e.timings.EarlyAdvanceDelay)
	}
}

// discardSessionLocked cancels all pending callbacks and stops the refill
// loop. Cancelling an unfired timer prevents its callback entirely; a fire
// that already slipped past is neutralized by the generation/session guard.
func (e *Engine) discardSessionLocked(l *Lobby) {
	s := l.session
	if s == nil {
		return
	}
	s.deadline.Cancel()
	s.advance.Cancel()
	s.queue.Stop()
	s.ledger.Close()
	l.session = nil
}

// ---------------------------------------------------------------------------
// Emission helpers

func (e *Engine) toConn(connID uuid.UUID, msgType string, payload any) {
	if err := e.emitter.EmitTo(connID, ws.NewMessage(msgType, payload)); err != nil {
		e.logger.Debug().Err(err).Str("type", msgType).Msg("targeted emit failed")
	}
}

func (e *Engine) toRoom(l *Lobby, msgType string, payload any) {
	if err := e.emitter.EmitToRoom(l.Code, ws.NewMessage(msgType, payload)); err != nil {
		e.logger.Debug().Err(err).Str("type", msgType).Str("room_code", l.Code).Msg("room emit failed")
	}
}

func (e *Engine) broadcastLobbyLocked(l *Lobby) {
	e.toRoom(l, ws.TypeLobbyUpdated, ws.LobbyPayload{Lobby: l.Snapshot()})
}
