package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priorities/deck"
	"priorities/store"
)

// setupGame creates a room with Alice (host) and Bob via the public flow.
func setupGame(t *testing.T) (store.Store, *Rooms, *Rounds, *Room, *Player, *Player) {
	t.Helper()

	st := newTestStore(t)
	rooms := NewRooms(st)
	rounds := NewRounds(st, deck.New())

	room, alice, err := rooms.Create("Alice")
	require.NoError(t, err)
	_, bob, _, err := rooms.Join(room.Code, "Bob", "")
	require.NoError(t, err)

	return st, rooms, rounds, room, alice, bob
}

// pinPicker forces AssignRoles to take the first eligible candidate.
func pinPicker(t *testing.T) {
	t.Helper()

	orig := pickerIndex
	pickerIndex = func(n int) int { return 0 }
	t.Cleanup(func() { pickerIndex = orig })
}

func completeRanking(cardIDs []string) []RankingEntry {
	out := make([]RankingEntry, len(cardIDs))
	for i, id := range cardIDs {
		out[i] = RankingEntry{ID: id, Position: i + 1}
	}
	return out
}

func TestAssignRoles_NotEnoughPlayers(t *testing.T) {
	_, _, rounds, _, alice, _ := setupGame(t)

	_, _, err := rounds.AssignRoles([]*Player{alice}, "")
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func TestAssignRoles_DisconnectedPlayersExcluded(t *testing.T) {
	_, _, rounds, _, alice, bob := setupGame(t)

	bob.IsConnected = false
	_, _, err := rounds.AssignRoles([]*Player{alice, bob}, "")
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func TestAssignRoles_PickerAndGuesserDistinct(t *testing.T) {
	_, _, rounds, _, alice, bob := setupGame(t)

	pickerID, guesserID, err := rounds.AssignRoles([]*Player{alice, bob}, "")
	require.NoError(t, err)
	assert.NotEqual(t, pickerID, guesserID)
	assert.Contains(t, []string{alice.ID, bob.ID}, pickerID)
	assert.Contains(t, []string{alice.ID, bob.ID}, guesserID)
}

func TestAssignRoles_RotatesAwayFromPreviousPicker(t *testing.T) {
	_, _, rounds, _, alice, bob := setupGame(t)

	pickerID, guesserID, err := rounds.AssignRoles([]*Player{alice, bob}, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, pickerID)
	assert.Equal(t, alice.ID, guesserID)
}

func TestAssignRoles_GuesserIsEarliestJoinedNonPicker(t *testing.T) {
	pinPicker(t)
	_, rooms, rounds, room, alice, bob := setupGame(t)

	_, carol, _, err := rooms.Join(room.Code, "Carol", "")
	require.NoError(t, err)

	// Previous picker alice excluded, pinned index selects bob; the guesser
	// is the earliest-joined of the rest, which is alice.
	pickerID, guesserID, err := rounds.AssignRoles([]*Player{alice, bob, carol}, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, pickerID)
	assert.Equal(t, alice.ID, guesserID)
}

func TestStart_CreatesRoundAndFlipsRoom(t *testing.T) {
	st, _, rounds, room, alice, bob := setupGame(t)

	round, err := rounds.Start(room.ID, 1, alice.ID, bob.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, round.RoundNumber)
	assert.Equal(t, PhasePicking, round.Phase)
	assert.Len(t, round.CardIDs, deck.RoundSize)
	assert.Equal(t, alice.ID, round.PickerID)
	assert.Equal(t, bob.ID, round.GuesserID)

	updated, err := st.GetRoom(room.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPlaying, updated.Status)
	assert.Equal(t, 1, updated.CurrentRound)
}

func TestStart_Idempotent(t *testing.T) {
	_, _, rounds, room, alice, bob := setupGame(t)

	first, err := rounds.Start(room.ID, 1, alice.ID, bob.ID)
	require.NoError(t, err)

	// A retry, even with swapped roles, returns the existing round.
	second, err := rounds.Start(room.ID, 1, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, alice.ID, second.PickerID)
}

func TestSubmitPickerRanking(t *testing.T) {
	st, _, rounds, room, alice, bob := setupGame(t)

	round, err := rounds.Start(room.ID, 1, alice.ID, bob.ID)
	require.NoError(t, err)

	err = rounds.SubmitPickerRanking(round.ID, completeRanking(round.CardIDs[:3]))
	assert.ErrorIs(t, err, ErrInvalidRanking)

	require.NoError(t, rounds.SubmitPickerRanking(round.ID, completeRanking(round.CardIDs)))

	stored, err := st.GetRound(round.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseGuessing, stored.Phase)
}

func TestUpdateCurrentGuess_OnlyWhileGuessing(t *testing.T) {
	_, _, rounds, room, alice, bob := setupGame(t)

	round, err := rounds.Start(room.ID, 1, alice.ID, bob.ID)
	require.NoError(t, err)

	err = rounds.UpdateCurrentGuess(round.ID, nil)
	assert.ErrorIs(t, err, ErrWrongPhase)

	require.NoError(t, rounds.SubmitPickerRanking(round.ID, completeRanking(round.CardIDs)))

	// Partial orderings are fine while guessing.
	partial := []RankingEntry{{ID: round.CardIDs[0], Position: 1}}
	assert.NoError(t, rounds.UpdateCurrentGuess(round.ID, partial))
}

func TestSubmitFinalGuess_PerfectRecall(t *testing.T) {
	st, _, rounds, room, alice, bob := setupGame(t)

	round, err := rounds.Start(room.ID, 1, alice.ID, bob.ID)
	require.NoError(t, err)

	actual := completeRanking(round.CardIDs)
	require.NoError(t, rounds.SubmitPickerRanking(round.ID, actual))

	playerScore, gameScore, err := rounds.SubmitFinalGuess(round.ID, room.ID, actual, actual)
	require.NoError(t, err)
	assert.Equal(t, deck.RoundSize, playerScore)
	assert.Equal(t, 0, gameScore)

	stored, err := st.GetRound(round.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseResults, stored.Phase)
	assert.NotEmpty(t, stored.SubmittedAt)

	updated, err := st.GetRoom(room.ID)
	require.NoError(t, err)
	assert.Equal(t, deck.RoundSize, updated.PlayerScore)
	assert.Equal(t, 0, updated.GameScore)
	assert.Equal(t, StatusPlaying, updated.Status)
	assert.Equal(t, WinnerNone, updated.Winner)
}

func TestSubmitFinalGuess_WrongPhase(t *testing.T) {
	_, _, rounds, room, alice, bob := setupGame(t)

	round, err := rounds.Start(room.ID, 1, alice.ID, bob.ID)
	require.NoError(t, err)

	actual := completeRanking(round.CardIDs)
	_, _, err = rounds.SubmitFinalGuess(round.ID, room.ID, actual, actual)
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestSubmitFinalGuess_RequiresReferenceRanking(t *testing.T) {
	_, _, rounds, room, alice, bob := setupGame(t)

	round, err := rounds.Start(room.ID, 1, alice.ID, bob.ID)
	require.NoError(t, err)

	actual := completeRanking(round.CardIDs)
	require.NoError(t, rounds.SubmitPickerRanking(round.ID, actual))

	_, _, err = rounds.SubmitFinalGuess(round.ID, room.ID, actual, nil)
	assert.ErrorIs(t, err, ErrNoRanking)
}

func TestSubmitFinalGuess_PlayersWinAtThreshold(t *testing.T) {
	st, _, rounds, room, alice, bob := setupGame(t)

	// One perfect round away from the players' threshold.
	require.NoError(t, st.ApplyRoomScores(room.ID, WinningScore-deck.RoundSize, 0, WinnerNone, StatusPlaying))

	round, err := rounds.Start(room.ID, 1, alice.ID, bob.ID)
	require.NoError(t, err)
	actual := completeRanking(round.CardIDs)
	require.NoError(t, rounds.SubmitPickerRanking(round.ID, actual))

	_, _, err = rounds.SubmitFinalGuess(round.ID, room.ID, actual, actual)
	require.NoError(t, err)

	updated, err := st.GetRoom(room.ID)
	require.NoError(t, err)
	assert.Equal(t, WinnerPlayers, updated.Winner)
	assert.Equal(t, StatusFinished, updated.Status)
}

func TestSubmitFinalGuess_GameWinsAtThreshold(t *testing.T) {
	st, _, rounds, room, alice, bob := setupGame(t)

	require.NoError(t, st.ApplyRoomScores(room.ID, 0, WinningScore-deck.RoundSize, WinnerNone, StatusPlaying))

	round, err := rounds.Start(room.ID, 1, alice.ID, bob.ID)
	require.NoError(t, err)
	actual := completeRanking(round.CardIDs)
	require.NoError(t, rounds.SubmitPickerRanking(round.ID, actual))

	// A fully shifted guess scores zero for the players.
	shifted := make([]RankingEntry, len(actual))
	for i, e := range actual {
		shifted[i] = RankingEntry{ID: e.ID, Position: (e.Position % deck.RoundSize) + 1}
	}
	_, _, err = rounds.SubmitFinalGuess(round.ID, room.ID, shifted, actual)
	require.NoError(t, err)

	updated, err := st.GetRoom(room.ID)
	require.NoError(t, err)
	assert.Equal(t, WinnerGame, updated.Winner)
	assert.Equal(t, StatusFinished, updated.Status)
}

func TestNext_AdvancesRoundNumber(t *testing.T) {
	pinPicker(t)
	_, rooms, rounds, room, alice, bob := setupGame(t)

	first, err := rounds.Start(room.ID, 1, alice.ID, bob.ID)
	require.NoError(t, err)
	actual := completeRanking(first.CardIDs)
	require.NoError(t, rounds.SubmitPickerRanking(first.ID, actual))
	_, _, err = rounds.SubmitFinalGuess(first.ID, room.ID, actual, actual)
	require.NoError(t, err)

	players, err := rooms.Players(room.ID)
	require.NoError(t, err)

	second, err := rounds.Next(room.ID, players, first.PickerID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.RoundNumber)
	assert.NotEqual(t, first.PickerID, second.PickerID)

	current, err := rounds.Current(room.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)
}

func TestCurrent_NilBeforeFirstRound(t *testing.T) {
	_, _, rounds, room, _, _ := setupGame(t)

	current, err := rounds.Current(room.ID)
	require.NoError(t, err)
	assert.Nil(t, current)
}
