package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/12-9-1/Game-on/internal/question"
	"github.com/12-9-1/Game-on/pkg/ws"
)

// Lobby lifecycle states.
const (
	StatusWaiting         = "waiting"
	StatusPlaying         = "playing"
	StatusRoundFinished   = "round_finished"
	StatusWaitingNewRound = "waiting_new_round"
)

// Capacity bounds for a lobby roster.
const (
	MinPlayers        = 2
	MaxPlayers        = 8
	defaultMaxPlayers = 4
)

// Player is a roster member, keyed by its live connection id.
type Player struct {
	ConnectionID uuid.UUID
	Name         string
	IsHost       bool
	Ready        bool
	Score        int
}

// Lobby is a named group of players sharing one game session. Roster order is
// join order; the first remaining player inherits the host role when the host
// leaves. All mutation is serialized by the engine (see Engine.mu), so the
// struct itself carries no lock.
type Lobby struct {
	Code       string
	Host       uuid.UUID
	Players    []*Player
	MaxPlayers int
	Status     string
	WinScore   int
	CreatedAt  time.Time

	session *session
}

// session holds the state of one active round. It exists only while the
// lobby is playing (or a question resolution is still pending) and is
// discarded when the round ends.
type session struct {
	current    question.Question
	number     int
	generation uint64
	winPending bool // a win crossed the threshold; the round end is scheduled
	ledger     *AnswerLedger
	queue      *QuestionQueue
	deadline   *RoundTimer
	advance    *RoundTimer
}

func (l *Lobby) player(connID uuid.UUID) *Player {
	for _, p := range l.Players {
		if p.ConnectionID == connID {
			return p
		}
	}
	return nil
}

// removePlayer drops a player from the roster and reassigns the host role to
// the first remaining player if needed. Returns the removed player, or nil.
func (l *Lobby) removePlayer(connID uuid.UUID) *Player {
	for i, p := range l.Players {
		if p.ConnectionID == connID {
			l.Players = append(l.Players[:i], l.Players[i+1:]...)
			if p.IsHost && len(l.Players) > 0 {
				newHost := l.Players[0]
				newHost.IsHost = true
				newHost.Ready = false
				l.Host = newHost.ConnectionID
			}
			return p
		}
	}
	return nil
}

// rosterIDs returns the connection ids of the current roster, in join order.
func (l *Lobby) rosterIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(l.Players))
	for i, p := range l.Players {
		ids[i] = p.ConnectionID
	}
	return ids
}

// allNonHostReady reports whether every non-host player has readied up. The
// host's ready flag is ignored.
func (l *Lobby) allNonHostReady() bool {
	for _, p := range l.Players {
		if !p.IsHost && !p.Ready {
			return false
		}
	}
	return true
}

// Snapshot renders the lobby for client broadcasts.
func (l *Lobby) Snapshot() ws.LobbySnapshot {
	players := make([]ws.PlayerInfo, len(l.Players))
	for i, p := range l.Players {
		players[i] = ws.PlayerInfo{
			ConnectionID: p.ConnectionID.String(),
			Name:         p.Name,
			IsHost:       p.IsHost,
			Ready:        p.Ready,
			Score:        p.Score,
		}
	}
	return ws.LobbySnapshot{
		ID:          l.Code,
		Host:        l.Host.String(),
		Players:     players,
		PlayerCount: len(l.Players),
		MaxPlayers:  l.MaxPlayers,
		Status:      l.Status,
		WinScore:    l.WinScore,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
	}
}

// Summary renders the lobby for the browse list.
func (l *Lobby) Summary() ws.LobbySummary {
	hostName := "Unknown"
	if len(l.Players) > 0 {
		hostName = l.Players[0].Name
	}
	return ws.LobbySummary{
		ID:          l.Code,
		PlayerCount: len(l.Players),
		MaxPlayers:  l.MaxPlayers,
		Status:      l.Status,
		HostName:    hostName,
	}
}
