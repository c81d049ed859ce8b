package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"priorities/deck"
	"priorities/store"
)

// pickerIndex is a hook so tests can pin role assignment.
var pickerIndex = func(n int) int { return rand.Intn(n) }

// Rounds coordinates the per-round state machine: role assignment, round
// creation, ranking and guess submissions, scoring and game-over detection.
//
// The coordinator trusts its caller to be authorized (the façade gates who
// may invoke picker/host-only operations before calling in).
type Rounds struct {
	store store.Store
	deck  *deck.Deck
}

func NewRounds(st store.Store, d *deck.Deck) *Rounds {
	return &Rounds{store: st, deck: d}
}

// AssignRoles picks a random picker from the connected players, excluding
// the previous picker when any other candidate exists, and the
// earliest-joined non-picker as guesser. Everyone else spectates.
func (r *Rounds) AssignRoles(players []*Player, previousPickerID string) (pickerID, guesserID string, err error) {
	var connected []*Player
	for _, p := range players {
		if p.IsConnected {
			connected = append(connected, p)
		}
	}
	if len(connected) < MinPlayersToStart {
		return "", "", ErrNotEnoughPlayers
	}

	eligible := connected
	if previousPickerID != "" {
		var others []*Player
		for _, p := range connected {
			if p.ID != previousPickerID {
				others = append(others, p)
			}
		}
		// Guard against an empty pool; unreachable with the 2-player
		// minimum but kept for robustness.
		if len(others) > 0 {
			eligible = others
		}
	}

	picker := eligible[pickerIndex(len(eligible))]

	var candidates []*Player
	for _, p := range connected {
		if p.ID != picker.ID {
			candidates = append(candidates, p)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].JoinedAt != candidates[j].JoinedAt {
			return candidates[i].JoinedAt < candidates[j].JoinedAt
		}
		return candidates[i].ID < candidates[j].ID
	})

	return picker.ID, candidates[0].ID, nil
}

// Start creates round roundNumber for the room in the picking phase and
// flips the room to playing. Idempotent: if the round already exists (a
// retried call, or a lost race with another client) the existing round is
// returned unchanged.
func (r *Rounds) Start(roomID string, roundNumber int, pickerID, guesserID string) (*Round, error) {
	existing, err := r.store.GetRoundByNumber(roomID, roundNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return RoundFromStore(existing), nil
	}

	cards := r.deck.Draw(deck.RoundSize)
	cardIDs, err := json.Marshal(deck.CardIDs(cards))
	if err != nil {
		return nil, fmt.Errorf("failed to encode card ids: %w", err)
	}

	round := &store.Round{
		ID:          uuid.NewString(),
		RoomID:      roomID,
		RoundNumber: roundNumber,
		PickerID:    pickerID,
		GuesserID:   guesserID,
		Phase:       PhasePicking,
		CardIDs:     cardIDs,
	}
	if err := r.store.CreateRound(round); err != nil {
		if errors.Is(err, store.ErrRoundExists) {
			existing, err := r.store.GetRoundByNumber(roomID, roundNumber)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return RoundFromStore(existing), nil
			}
		}
		return nil, fmt.Errorf("failed to create round: %w", err)
	}

	if err := r.store.StartRoomRound(roomID, roundNumber); err != nil {
		return nil, err
	}

	return RoundFromStore(round), nil
}

// SubmitPickerRanking stores the picker's reference ranking and moves the
// round to guessing. The ranking must be a complete permutation of the
// round's cards; phase only ever moves forward.
func (r *Rounds) SubmitPickerRanking(roundID string, ranking []RankingEntry) error {
	round, err := r.store.GetRound(roundID)
	if err != nil {
		return err
	}
	if round == nil {
		return ErrRoundNotFound
	}
	if round.Phase == PhaseResults {
		return ErrWrongPhase
	}

	var cardIDs []string
	if err := json.Unmarshal(round.CardIDs, &cardIDs); err != nil {
		return fmt.Errorf("failed to decode card ids: %w", err)
	}
	if err := ValidateRanking(cardIDs, ranking); err != nil {
		return err
	}

	data, err := json.Marshal(ranking)
	if err != nil {
		return fmt.Errorf("failed to encode ranking: %w", err)
	}
	return r.store.SetRoundRanking(roundID, data)
}

// UpdateCurrentGuess stores the guesser's work in progress for live
// spectation. Only a shape check: an incomplete or contradictory ordering is
// fine here, it is a view and not a commit.
func (r *Rounds) UpdateCurrentGuess(roundID string, guess []RankingEntry) error {
	round, err := r.store.GetRound(roundID)
	if err != nil {
		return err
	}
	if round == nil {
		return ErrRoundNotFound
	}
	if round.Phase != PhaseGuessing {
		return ErrWrongPhase
	}
	if len(guess) > deck.RoundSize {
		return ErrInvalidRanking
	}

	data, err := json.Marshal(guess)
	if err != nil {
		return fmt.Errorf("failed to encode guess: %w", err)
	}
	return r.store.SetRoundGuess(roundID, data)
}

// SubmitFinalGuess finalizes the guess: computes per-card results, persists
// them with the round scores, then rolls the scores into the room's
// cumulative totals. This is the single point where game-over is decided;
// the players' threshold is checked before the game's.
func (r *Rounds) SubmitFinalGuess(roundID, roomID string, guess, actual []RankingEntry) (playerRoundScore, gameRoundScore int, err error) {
	round, err := r.store.GetRound(roundID)
	if err != nil {
		return 0, 0, err
	}
	if round == nil {
		return 0, 0, ErrRoundNotFound
	}
	if round.Phase != PhaseGuessing {
		return 0, 0, ErrWrongPhase
	}
	if len(actual) == 0 {
		return 0, 0, ErrNoRanking
	}

	var cardIDs []string
	if err := json.Unmarshal(round.CardIDs, &cardIDs); err != nil {
		return 0, 0, fmt.Errorf("failed to decode card ids: %w", err)
	}
	if err := ValidateRanking(cardIDs, guess); err != nil {
		return 0, 0, err
	}

	results := CompareRankings(actual, guess)
	playerRoundScore = Score(results)
	gameRoundScore = deck.RoundSize - playerRoundScore

	guessData, err := json.Marshal(guess)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to encode guess: %w", err)
	}
	resultsData, err := json.Marshal(results)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to encode results: %w", err)
	}
	if err := r.store.FinishRound(roundID, guessData, resultsData, playerRoundScore, gameRoundScore); err != nil {
		return 0, 0, err
	}

	room, err := r.store.GetRoom(roomID)
	if err != nil {
		return 0, 0, err
	}
	if room == nil {
		return playerRoundScore, gameRoundScore, nil
	}

	newPlayerScore := room.PlayerScore + playerRoundScore
	newGameScore := room.GameScore + gameRoundScore

	winner := WinnerNone
	status := StatusPlaying
	if newPlayerScore >= WinningScore {
		winner = WinnerPlayers
		status = StatusFinished
	} else if newGameScore >= WinningScore {
		winner = WinnerGame
		status = StatusFinished
	}

	// Second write of the pair; a failure here leaves the round finished
	// and the room totals stale until the next reconciliation.
	if err := r.store.ApplyRoomScores(roomID, newPlayerScore, newGameScore, winner, status); err != nil {
		return playerRoundScore, gameRoundScore, err
	}

	return playerRoundScore, gameRoundScore, nil
}

// Next assigns roles for the following round, rotating the picker away from
// previousPickerID, and starts it. Host gating happens at the façade.
func (r *Rounds) Next(roomID string, players []*Player, previousPickerID string) (*Round, error) {
	room, err := r.store.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	pickerID, guesserID, err := r.AssignRoles(players, previousPickerID)
	if err != nil {
		return nil, err
	}

	return r.Start(roomID, room.CurrentRound+1, pickerID, guesserID)
}

// Current returns the room's current round, or nil before the first round.
func (r *Rounds) Current(roomID string) (*Round, error) {
	room, err := r.store.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	if room == nil || room.CurrentRound == 0 {
		return nil, nil
	}

	round, err := r.store.GetRoundByNumber(roomID, room.CurrentRound)
	if err != nil {
		return nil, err
	}
	return RoundFromStore(round), nil
}
