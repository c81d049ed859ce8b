package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priorities/deck"
)

func soloRanking(g *SoloGame) []RankingEntry {
	return completeRanking(deck.CardIDs(g.SelectedCards))
}

func TestSoloGame_RoundFlow(t *testing.T) {
	g := NewSoloGame(deck.New())
	g.StartRound()

	assert.Equal(t, 1, g.CurrentRound)
	assert.Equal(t, SoloPhaseRanking, g.Phase)
	require.Len(t, g.SelectedCards, deck.RoundSize)

	ranking := soloRanking(g)
	require.NoError(t, g.SubmitRanking(ranking))
	assert.Equal(t, SoloPhaseGuessing, g.Phase)

	require.NoError(t, g.SubmitGuess(ranking))
	assert.Equal(t, SoloPhaseResults, g.Phase)
	assert.Equal(t, deck.RoundSize, g.PlayerRoundScore)
	assert.Equal(t, 0, g.GameRoundScore)
	assert.Equal(t, deck.RoundSize, g.PlayerScore)

	require.NoError(t, g.NextRound())
	assert.Equal(t, 2, g.CurrentRound)
	assert.Equal(t, SoloPhaseRanking, g.Phase)
	assert.Nil(t, g.Results)
	assert.Equal(t, deck.RoundSize, g.PlayerScore)
}

func TestSoloGame_PhaseGuards(t *testing.T) {
	g := NewSoloGame(deck.New())
	g.StartRound()

	assert.ErrorIs(t, g.SubmitGuess(soloRanking(g)), ErrWrongPhase)
	assert.ErrorIs(t, g.NextRound(), ErrWrongPhase)

	require.NoError(t, g.SubmitRanking(soloRanking(g)))
	assert.ErrorIs(t, g.SubmitRanking(soloRanking(g)), ErrWrongPhase)
}

func TestSoloGame_InvalidRankingRejected(t *testing.T) {
	g := NewSoloGame(deck.New())
	g.StartRound()

	err := g.SubmitRanking(soloRanking(g)[:2])
	assert.ErrorIs(t, err, ErrInvalidRanking)
	assert.Equal(t, SoloPhaseRanking, g.Phase)
}

func TestSoloGame_PlayerWins(t *testing.T) {
	g := NewSoloGame(deck.New())
	g.StartRound()

	// Two perfect rounds reach the threshold.
	for i := 0; i < 2; i++ {
		ranking := soloRanking(g)
		require.NoError(t, g.SubmitRanking(ranking))
		require.NoError(t, g.SubmitGuess(ranking))
		if g.Phase == SoloPhaseResults {
			require.NoError(t, g.NextRound())
		}
	}

	assert.Equal(t, SoloPhaseGameOver, g.Phase)
	assert.Equal(t, WinnerPlayers, g.Winner)
	assert.GreaterOrEqual(t, g.PlayerScore, WinningScore)
}

func TestSoloGame_GameWins(t *testing.T) {
	g := NewSoloGame(deck.New())
	g.StartRound()

	for i := 0; i < 2; i++ {
		ranking := soloRanking(g)
		require.NoError(t, g.SubmitRanking(ranking))

		// Shift every position by one so nothing lines up.
		shifted := make([]RankingEntry, len(ranking))
		for j, e := range ranking {
			shifted[j] = RankingEntry{ID: e.ID, Position: (e.Position % deck.RoundSize) + 1}
		}
		require.NoError(t, g.SubmitGuess(shifted))
		if g.Phase == SoloPhaseResults {
			require.NoError(t, g.NextRound())
		}
	}

	assert.Equal(t, SoloPhaseGameOver, g.Phase)
	assert.Equal(t, WinnerGame, g.Winner)
}

func TestSoloGame_Reset(t *testing.T) {
	g := NewSoloGame(deck.New())
	g.StartRound()

	ranking := soloRanking(g)
	require.NoError(t, g.SubmitRanking(ranking))
	require.NoError(t, g.SubmitGuess(ranking))

	g.Reset()

	assert.Equal(t, 1, g.CurrentRound)
	assert.Equal(t, 0, g.PlayerScore)
	assert.Equal(t, 0, g.GameScore)
	assert.Equal(t, SoloPhaseRanking, g.Phase)
	assert.Len(t, g.SelectedCards, deck.RoundSize)
	assert.Empty(t, g.Winner)
}
