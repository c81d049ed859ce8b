package game

// UnrankedPosition is the sentinel for a card absent from a guess; it never
// compares equal to a real position.
const UnrankedPosition = -1

// CompareRankings evaluates a guess against the actual ranking, one result
// per card in the actual ranking. Pure and deterministic so that client and
// server always agree on a round's outcome.
func CompareRankings(actual, guessed []RankingEntry) []CardResult {
	results := make([]CardResult, len(actual))
	for i, a := range actual {
		guessedPosition := UnrankedPosition
		for _, g := range guessed {
			if g.ID == a.ID {
				guessedPosition = g.Position
				break
			}
		}
		results[i] = CardResult{
			CardID:          a.ID,
			ActualPosition:  a.Position,
			GuessedPosition: guessedPosition,
			IsCorrect:       a.Position == guessedPosition,
		}
	}
	return results
}

// Score counts correct positions, one point each.
func Score(results []CardResult) int {
	score := 0
	for _, r := range results {
		if r.IsCorrect {
			score++
		}
	}
	return score
}

// ValidateRanking checks that ranking is a complete bijection of cardIDs
// onto positions 1..len(cardIDs).
func ValidateRanking(cardIDs []string, ranking []RankingEntry) error {
	if len(ranking) != len(cardIDs) {
		return ErrInvalidRanking
	}

	wantIDs := make(map[string]bool, len(cardIDs))
	for _, id := range cardIDs {
		wantIDs[id] = true
	}

	seenIDs := make(map[string]bool, len(ranking))
	seenPositions := make(map[int]bool, len(ranking))
	for _, entry := range ranking {
		if !wantIDs[entry.ID] || seenIDs[entry.ID] {
			return ErrInvalidRanking
		}
		if entry.Position < 1 || entry.Position > len(cardIDs) || seenPositions[entry.Position] {
			return ErrInvalidRanking
		}
		seenIDs[entry.ID] = true
		seenPositions[entry.Position] = true
	}
	return nil
}
