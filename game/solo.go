package game

import "priorities/deck"

// Solo-mode phases. Solo plays both roles in sequence, so the first phase
// is "ranking" rather than "picking".
const (
	SoloPhaseRanking  = "ranking"
	SoloPhaseGuessing = "guessing"
	SoloPhaseResults  = "results"
	SoloPhaseGameOver = "gameOver"
)

// SoloGame is the local single-session game: rank five cards, then recall
// the ranking from memory. No store involved; state lives and dies with the
// session.
type SoloGame struct {
	deck *deck.Deck

	CurrentRound     int
	PlayerScore      int
	GameScore        int
	PlayerRoundScore int
	GameRoundScore   int
	Phase            string
	SelectedCards    []deck.Card
	ActualRanking    []RankingEntry
	GuessedRanking   []RankingEntry
	Results          []CardResult
	Winner           string
}

func NewSoloGame(d *deck.Deck) *SoloGame {
	return &SoloGame{deck: d, Phase: SoloPhaseRanking}
}

// StartRound deals a fresh hand and clears per-round state.
func (g *SoloGame) StartRound() {
	g.CurrentRound++
	g.Phase = SoloPhaseRanking
	g.SelectedCards = g.deck.Draw(deck.RoundSize)
	g.ActualRanking = nil
	g.GuessedRanking = nil
	g.Results = nil
	g.PlayerRoundScore = 0
	g.GameRoundScore = 0
}

// SubmitRanking records the reference ranking and moves to guessing.
func (g *SoloGame) SubmitRanking(ranking []RankingEntry) error {
	if g.Phase != SoloPhaseRanking {
		return ErrWrongPhase
	}
	if err := ValidateRanking(deck.CardIDs(g.SelectedCards), ranking); err != nil {
		return err
	}
	g.ActualRanking = ranking
	g.Phase = SoloPhaseGuessing
	return nil
}

// SubmitGuess scores the recalled ranking, updates cumulative totals and
// decides the winner. Players' threshold is checked first.
func (g *SoloGame) SubmitGuess(guess []RankingEntry) error {
	if g.Phase != SoloPhaseGuessing {
		return ErrWrongPhase
	}
	if err := ValidateRanking(deck.CardIDs(g.SelectedCards), guess); err != nil {
		return err
	}

	g.GuessedRanking = guess
	g.Results = CompareRankings(g.ActualRanking, guess)
	g.PlayerRoundScore = Score(g.Results)
	g.GameRoundScore = deck.RoundSize - g.PlayerRoundScore
	g.PlayerScore += g.PlayerRoundScore
	g.GameScore += g.GameRoundScore

	g.Phase = SoloPhaseResults
	if g.PlayerScore >= WinningScore {
		g.Winner = WinnerPlayers
		g.Phase = SoloPhaseGameOver
	} else if g.GameScore >= WinningScore {
		g.Winner = WinnerGame
		g.Phase = SoloPhaseGameOver
	}
	return nil
}

// NextRound continues after results.
func (g *SoloGame) NextRound() error {
	if g.Phase != SoloPhaseResults {
		return ErrWrongPhase
	}
	g.StartRound()
	return nil
}

// Reset discards all progress and deals round one.
func (g *SoloGame) Reset() {
	d := g.deck
	*g = SoloGame{deck: d, Phase: SoloPhaseRanking}
	g.StartRound()
}
