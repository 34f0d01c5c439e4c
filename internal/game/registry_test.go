package game

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *RoomRegistry {
	return NewRoomRegistry(zerolog.Nop())
}

func TestCreateRoomDefaults(t *testing.T) {
	reg := newTestRegistry()
	hostID := uuid.New()

	lobby, err := reg.CreateRoom(hostID, "alice", 0)
	require.NoError(t, err)

	assert.Len(t, lobby.Code, 8)
	assert.Equal(t, 4, lobby.MaxPlayers)
	assert.Equal(t, StatusWaiting, lobby.Status)
	assert.Equal(t, hostID, lobby.Host)
	require.Len(t, lobby.Players, 1)
	assert.True(t, lobby.Players[0].IsHost)

	found, ok := reg.Lookup(hostID)
	require.True(t, ok)
	assert.Same(t, lobby, found)
}

func TestCreateRoomRejectsBadCapacity(t *testing.T) {
	reg := newTestRegistry()

	for _, capacity := range []int{1, 9, -3} {
		_, err := reg.CreateRoom(uuid.New(), "alice", capacity)
		assert.Equal(t, ErrCapacityInvalid, err)
	}

	_, err := reg.CreateRoom(uuid.New(), "alice", 8)
	assert.NoError(t, err)
}

func TestJoinRoomCaseInsensitiveCode(t *testing.T) {
	reg := newTestRegistry()
	lobby, err := reg.CreateRoom(uuid.New(), "alice", 4)
	require.NoError(t, err)

	joined, err := reg.JoinRoom("  "+strings.ToLower(lobby.Code)+" ", uuid.New(), "bob")
	require.NoError(t, err)
	assert.Same(t, lobby, joined)
	assert.Len(t, lobby.Players, 2)
	assert.False(t, lobby.Players[1].IsHost)
}

func TestJoinRoomErrors(t *testing.T) {
	reg := newTestRegistry()

	_, err := reg.JoinRoom("NOPE1234", uuid.New(), "bob")
	assert.Equal(t, ErrRoomNotFound, err)

	lobby, err := reg.CreateRoom(uuid.New(), "alice", 2)
	require.NoError(t, err)
	_, err = reg.JoinRoom(lobby.Code, uuid.New(), "bob")
	require.NoError(t, err)

	_, err = reg.JoinRoom(lobby.Code, uuid.New(), "carol")
	assert.Equal(t, ErrRoomFull, err)

	lobby.Status = StatusPlaying
	_, err = reg.JoinRoom(lobby.Code, uuid.New(), "dave")
	assert.Equal(t, ErrRoundInProgress, err)
}

func TestLeaveMigratesHost(t *testing.T) {
	reg := newTestRegistry()
	hostID := uuid.New()
	bobID := uuid.New()

	lobby, err := reg.CreateRoom(hostID, "alice", 4)
	require.NoError(t, err)
	_, err = reg.JoinRoom(lobby.Code, bobID, "bob")
	require.NoError(t, err)
	_, err = reg.ToggleReady(bobID)
	require.NoError(t, err)

	left, removed, closed := reg.Leave(hostID)
	require.NotNil(t, removed)
	assert.Equal(t, "alice", removed.Name)
	assert.False(t, closed)

	assert.Equal(t, bobID, left.Host)
	require.Len(t, left.Players, 1)
	assert.True(t, left.Players[0].IsHost)
	// Promotion clears the ready flag so the new host starts from a clean state.
	assert.False(t, left.Players[0].Ready)

	_, ok := reg.Lookup(hostID)
	assert.False(t, ok)
}

func TestLeaveDeletesEmptyRoom(t *testing.T) {
	reg := newTestRegistry()
	hostID := uuid.New()
	lobby, err := reg.CreateRoom(hostID, "alice", 4)
	require.NoError(t, err)

	_, removed, closed := reg.Leave(hostID)
	require.NotNil(t, removed)
	assert.True(t, closed)

	_, err = reg.JoinRoom(lobby.Code, uuid.New(), "bob")
	assert.Equal(t, ErrRoomNotFound, err)
}

func TestLeaveIsIdempotent(t *testing.T) {
	reg := newTestRegistry()
	lobby, _, closed := reg.Leave(uuid.New())
	assert.Nil(t, lobby)
	assert.False(t, closed)
}

func TestToggleReadyFlips(t *testing.T) {
	reg := newTestRegistry()
	hostID := uuid.New()
	bobID := uuid.New()

	lobby, err := reg.CreateRoom(hostID, "alice", 4)
	require.NoError(t, err)
	_, err = reg.JoinRoom(lobby.Code, bobID, "bob")
	require.NoError(t, err)

	_, err = reg.ToggleReady(bobID)
	require.NoError(t, err)
	assert.True(t, lobby.player(bobID).Ready)

	_, err = reg.ToggleReady(bobID)
	require.NoError(t, err)
	assert.False(t, lobby.player(bobID).Ready)

	_, err = reg.ToggleReady(uuid.New())
	assert.Equal(t, ErrNotInLobby, err)
}

func TestListWaitingExcludesActiveRooms(t *testing.T) {
	reg := newTestRegistry()
	waiting, err := reg.CreateRoom(uuid.New(), "alice", 4)
	require.NoError(t, err)
	playing, err := reg.CreateRoom(uuid.New(), "bob", 4)
	require.NoError(t, err)
	playing.Status = StatusPlaying

	list := reg.ListWaiting()
	require.Len(t, list, 1)
	assert.Equal(t, waiting.Code, list[0].Code)
}

func TestDeleteDropsRoomAndIndex(t *testing.T) {
	reg := newTestRegistry()
	hostID := uuid.New()
	bobID := uuid.New()

	lobby, err := reg.CreateRoom(hostID, "alice", 4)
	require.NoError(t, err)
	_, err = reg.JoinRoom(lobby.Code, bobID, "bob")
	require.NoError(t, err)

	reg.Delete(lobby.Code)

	_, ok := reg.Lookup(hostID)
	assert.False(t, ok)
	_, ok = reg.Lookup(bobID)
	assert.False(t, ok)
}
