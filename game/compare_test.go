package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priorities/deck"
)

func ranking(ids ...string) []RankingEntry {
	out := make([]RankingEntry, len(ids))
	for i, id := range ids {
		out[i] = RankingEntry{ID: id, Position: i + 1}
	}
	return out
}

func TestCompareRankings_PerfectGuess(t *testing.T) {
	actual := ranking("a", "b", "c", "d", "e")

	results := CompareRankings(actual, ranking("a", "b", "c", "d", "e"))

	require.Len(t, results, 5)
	for _, r := range results {
		assert.True(t, r.IsCorrect)
		assert.Equal(t, r.ActualPosition, r.GuessedPosition)
	}
	assert.Equal(t, 5, Score(results))
}

func TestCompareRankings_FullReversal(t *testing.T) {
	actual := ranking("a", "b", "c", "d", "e")

	results := CompareRankings(actual, ranking("e", "d", "c", "b", "a"))

	// Only the middle card keeps its position under a full reversal of five.
	assert.Equal(t, 1, Score(results))
	for _, r := range results {
		if r.CardID == "c" {
			assert.True(t, r.IsCorrect)
		} else {
			assert.False(t, r.IsCorrect)
		}
	}
}

func TestCompareRankings_MissingCardIsUnranked(t *testing.T) {
	actual := ranking("a", "b")

	results := CompareRankings(actual, []RankingEntry{{ID: "a", Position: 1}})

	require.Len(t, results, 2)
	assert.True(t, results[0].IsCorrect)
	assert.Equal(t, UnrankedPosition, results[1].GuessedPosition)
	assert.False(t, results[1].IsCorrect)
}

func TestCompareRankings_ResultsFollowActualOrder(t *testing.T) {
	actual := []RankingEntry{
		{ID: "x", Position: 2},
		{ID: "y", Position: 1},
	}

	results := CompareRankings(actual, ranking("y", "x"))

	require.Len(t, results, 2)
	assert.Equal(t, "x", results[0].CardID)
	assert.Equal(t, "y", results[1].CardID)
	assert.Equal(t, 2, Score(results))
}

func TestScore_ComplementSumsToRoundSize(t *testing.T) {
	actual := ranking("a", "b", "c", "d", "e")
	guesses := [][]RankingEntry{
		ranking("a", "b", "c", "d", "e"),
		ranking("b", "a", "c", "d", "e"),
		ranking("e", "d", "c", "b", "a"),
		ranking("b", "c", "d", "e", "a"),
	}

	for _, guess := range guesses {
		playerScore := Score(CompareRankings(actual, guess))
		gameScore := deck.RoundSize - playerScore
		assert.Equal(t, deck.RoundSize, playerScore+gameScore)
		assert.GreaterOrEqual(t, gameScore, 0)
	}
}

func TestValidateRanking(t *testing.T) {
	cardIDs := []string{"a", "b", "c"}

	tests := []struct {
		name    string
		ranking []RankingEntry
		wantErr error
	}{
		{
			name:    "valid permutation",
			ranking: []RankingEntry{{ID: "c", Position: 1}, {ID: "a", Position: 2}, {ID: "b", Position: 3}},
			wantErr: nil,
		},
		{
			name:    "incomplete",
			ranking: []RankingEntry{{ID: "a", Position: 1}},
			wantErr: ErrInvalidRanking,
		},
		{
			name:    "unknown card",
			ranking: []RankingEntry{{ID: "a", Position: 1}, {ID: "b", Position: 2}, {ID: "z", Position: 3}},
			wantErr: ErrInvalidRanking,
		},
		{
			name:    "duplicate card",
			ranking: []RankingEntry{{ID: "a", Position: 1}, {ID: "a", Position: 2}, {ID: "b", Position: 3}},
			wantErr: ErrInvalidRanking,
		},
		{
			name:    "duplicate position",
			ranking: []RankingEntry{{ID: "a", Position: 1}, {ID: "b", Position: 1}, {ID: "c", Position: 3}},
			wantErr: ErrInvalidRanking,
		},
		{
			name:    "position out of range",
			ranking: []RankingEntry{{ID: "a", Position: 0}, {ID: "b", Position: 2}, {ID: "c", Position: 3}},
			wantErr: ErrInvalidRanking,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRanking(cardIDs, tt.ranking)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
