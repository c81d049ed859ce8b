package game

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priorities/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRooms_Create(t *testing.T) {
	rooms := NewRooms(newTestStore(t))

	room, host, err := rooms.Create("Alice")
	require.NoError(t, err)

	assert.Len(t, room.Code, RoomCodeLength)
	for _, ch := range room.Code {
		assert.Contains(t, RoomCodeAlphabet, string(ch))
	}
	assert.Equal(t, StatusLobby, room.Status)
	assert.Equal(t, host.ID, room.HostPlayerID)
	assert.True(t, host.IsHost)
	assert.True(t, host.IsConnected)
	assert.Equal(t, "Alice", host.DisplayName)
}

func TestRooms_Create_InvalidName(t *testing.T) {
	rooms := NewRooms(newTestStore(t))

	_, _, err := rooms.Create("A")
	assert.ErrorIs(t, err, ErrInvalidDisplayName)
}

func TestRooms_Create_ExhaustsOnPersistentCollision(t *testing.T) {
	rooms := NewRooms(newTestStore(t))

	orig := randomCode
	randomCode = func() string { return "SAME" }
	defer func() { randomCode = orig }()

	_, _, err := rooms.Create("Alice")
	require.NoError(t, err)

	_, _, err = rooms.Create("Bob")
	assert.ErrorIs(t, err, ErrCreationExhausted)
}

func TestRooms_Join(t *testing.T) {
	rooms := NewRooms(newTestStore(t))

	room, _, err := rooms.Create("Alice")
	require.NoError(t, err)

	joined, bob, players, err := rooms.Join(room.Code, "Bob", "")
	require.NoError(t, err)

	assert.Equal(t, room.ID, joined.ID)
	assert.False(t, bob.IsHost)
	assert.True(t, bob.IsConnected)
	require.Len(t, players, 2)
	assert.Equal(t, "Alice", players[0].DisplayName)
	assert.Equal(t, "Bob", players[1].DisplayName)
}

func TestRooms_Join_CodeNormalized(t *testing.T) {
	rooms := NewRooms(newTestStore(t))

	room, _, err := rooms.Create("Alice")
	require.NoError(t, err)

	_, _, _, err = rooms.Join("  "+strings.ToLower(room.Code)+" ", "Bob", "")
	assert.NoError(t, err)
}

func TestRooms_Join_UnknownCode(t *testing.T) {
	rooms := NewRooms(newTestStore(t))

	_, _, _, err := rooms.Join("ZZZZ", "Bob", "")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRooms_Join_FullRoom(t *testing.T) {
	rooms := NewRooms(newTestStore(t))

	room, _, err := rooms.Create("Alice")
	require.NoError(t, err)

	for i := 1; i < store.MaxConnectedPlayers; i++ {
		_, _, _, err := rooms.Join(room.Code, fmt.Sprintf("Player %d", i), "")
		require.NoError(t, err)
	}

	_, _, _, err = rooms.Join(room.Code, "Latecomer", "")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestRooms_Join_Reconnection(t *testing.T) {
	st := newTestStore(t)
	rooms := NewRooms(st)

	room, _, err := rooms.Create("Alice")
	require.NoError(t, err)
	_, bob, _, err := rooms.Join(room.Code, "Bob", "")
	require.NoError(t, err)

	require.NoError(t, rooms.Leave(bob.ID, room.ID))

	_, back, players, err := rooms.Join(room.Code, "Bobby", bob.ID)
	require.NoError(t, err)

	// Same row, flipped back to connected with the fresh name.
	assert.Equal(t, bob.ID, back.ID)
	assert.True(t, back.IsConnected)
	assert.Equal(t, "Bobby", back.DisplayName)
	assert.Len(t, players, 2)
}

func TestRooms_Leave_LastPlayerDeletesRoom(t *testing.T) {
	st := newTestStore(t)
	rooms := NewRooms(st)

	room, host, err := rooms.Create("Alice")
	require.NoError(t, err)

	require.NoError(t, rooms.Leave(host.ID, room.ID))

	gone, err := st.GetRoom(room.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// The shareable code no longer resolves either.
	_, err = rooms.GetByCode(room.Code)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRooms_Leave_HostTransfersToEarliestJoined(t *testing.T) {
	st := newTestStore(t)
	rooms := NewRooms(st)

	room, host, err := rooms.Create("Alice")
	require.NoError(t, err)
	_, bob, _, err := rooms.Join(room.Code, "Bob", "")
	require.NoError(t, err)
	_, _, _, err = rooms.Join(room.Code, "Carol", "")
	require.NoError(t, err)

	require.NoError(t, rooms.Leave(host.ID, room.ID))

	updated, err := st.GetRoom(room.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, updated.HostPlayerID)

	newHost, err := st.GetPlayer(bob.ID)
	require.NoError(t, err)
	assert.True(t, newHost.IsHost)

	old, err := st.GetPlayer(host.ID)
	require.NoError(t, err)
	assert.False(t, old.IsConnected)
}

func TestRooms_Leave_NonHostJustDisconnects(t *testing.T) {
	st := newTestStore(t)
	rooms := NewRooms(st)

	room, host, err := rooms.Create("Alice")
	require.NoError(t, err)
	_, bob, _, err := rooms.Join(room.Code, "Bob", "")
	require.NoError(t, err)

	require.NoError(t, rooms.Leave(bob.ID, room.ID))

	updated, err := st.GetRoom(room.ID)
	require.NoError(t, err)
	assert.Equal(t, host.ID, updated.HostPlayerID)

	p, err := st.GetPlayer(bob.ID)
	require.NoError(t, err)
	assert.False(t, p.IsConnected)
}

func TestRooms_Heartbeat(t *testing.T) {
	st := newTestStore(t)
	rooms := NewRooms(st)

	room, host, err := rooms.Create("Alice")
	require.NoError(t, err)

	before, err := st.GetPlayer(host.ID)
	require.NoError(t, err)

	require.NoError(t, rooms.Heartbeat(host.ID, room.ID))

	after, err := st.GetPlayer(host.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, after.LastSeenAt, before.LastSeenAt)
}
