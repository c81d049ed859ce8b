package game

import (
	"encoding/json"
	"errors"

	"priorities/store"
)

const (
	StatusLobby    = "lobby"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

const (
	PhasePicking  = "picking"
	PhaseGuessing = "guessing"
	PhaseResults  = "results"
)

const (
	WinnerNone    = ""
	WinnerPlayers = "players"
	WinnerGame    = "game"
)

const (
	RolePicker    = "picker"
	RoleGuesser   = "guesser"
	RoleSpectator = "spectator"
)

const (
	MinPlayersToStart = 2
	WinningScore      = 10
	RoomCodeLength    = 4
	// I and O are excluded so codes are never confused with 1 and 0.
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"
)

var (
	ErrRoomNotFound       = errors.New("room not found, check the code and try again")
	ErrRoomFull           = errors.New("room is full (max 10 players)")
	ErrNotEnoughPlayers   = errors.New("need at least 2 players to assign roles")
	ErrCreationExhausted  = errors.New("failed to create room after multiple attempts")
	ErrInvalidDisplayName = errors.New("display name must be 2-20 characters")
	ErrInvalidRanking     = errors.New("ranking must place each of the round's cards in a distinct position 1-5")
	ErrRoundNotFound      = errors.New("round not found")
	ErrWrongPhase         = errors.New("operation not allowed in the current phase")
	ErrNoRanking          = errors.New("no ranking to compare against")
)

type Room struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	HostPlayerID   string `json:"hostPlayerId"`
	Status         string `json:"status"`
	PlayerScore    int    `json:"playerScore"`
	GameScore      int    `json:"gameScore"`
	CurrentRound   int    `json:"currentRound"`
	Winner         string `json:"winner,omitempty"`
	CreatedAt      string `json:"createdAt"`
	LastActivityAt string `json:"lastActivityAt"`
}

type Player struct {
	ID          string `json:"id"`
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
	IsHost      bool   `json:"isHost"`
	IsConnected bool   `json:"isConnected"`
	JoinedAt    string `json:"joinedAt"`
	LastSeenAt  string `json:"lastSeenAt"`
}

// RankingEntry pairs a card id with a position. A complete ranking is a
// bijection of the round's card ids onto 1..5.
type RankingEntry struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

type CardResult struct {
	CardID          string `json:"cardId"`
	ActualPosition  int    `json:"actualPosition"`
	GuessedPosition int    `json:"guessedPosition"`
	IsCorrect       bool   `json:"isCorrect"`
}

type Round struct {
	ID               string         `json:"id"`
	RoomID           string         `json:"roomId"`
	RoundNumber      int            `json:"roundNumber"`
	PickerID         string         `json:"pickerId"`
	GuesserID        string         `json:"guesserId"`
	Phase            string         `json:"phase"`
	CardIDs          []string       `json:"cardIds"`
	ActualRanking    []RankingEntry `json:"actualRanking,omitempty"`
	CurrentGuess     []RankingEntry `json:"currentGuess,omitempty"`
	FinalGuess       []RankingEntry `json:"finalGuess,omitempty"`
	Results          []CardResult   `json:"results,omitempty"`
	PlayerRoundScore int            `json:"playerRoundScore"`
	GameRoundScore   int            `json:"gameRoundScore"`
	CreatedAt        string         `json:"createdAt"`
	SubmittedAt      string         `json:"submittedAt,omitempty"`
}

func RoomFromStore(r *store.Room) *Room {
	if r == nil {
		return nil
	}
	return &Room{
		ID:             r.ID,
		Code:           r.Code,
		HostPlayerID:   r.HostPlayerID,
		Status:         r.Status,
		PlayerScore:    r.PlayerScore,
		GameScore:      r.GameScore,
		CurrentRound:   r.CurrentRound,
		Winner:         r.Winner,
		CreatedAt:      r.CreatedAt,
		LastActivityAt: r.LastActivityAt,
	}
}

func PlayerFromStore(p *store.Player) *Player {
	if p == nil {
		return nil
	}
	return &Player{
		ID:          p.ID,
		RoomID:      p.RoomID,
		DisplayName: p.DisplayName,
		IsHost:      p.IsHost,
		IsConnected: p.IsConnected,
		JoinedAt:    p.JoinedAt,
		LastSeenAt:  p.LastSeenAt,
	}
}

func PlayersFromStore(players []*store.Player) []*Player {
	out := make([]*Player, len(players))
	for i, p := range players {
		out[i] = PlayerFromStore(p)
	}
	return out
}

func RoundFromStore(rd *store.Round) *Round {
	if rd == nil {
		return nil
	}
	out := &Round{
		ID:               rd.ID,
		RoomID:           rd.RoomID,
		RoundNumber:      rd.RoundNumber,
		PickerID:         rd.PickerID,
		GuesserID:        rd.GuesserID,
		Phase:            rd.Phase,
		PlayerRoundScore: rd.PlayerRoundScore,
		GameRoundScore:   rd.GameRoundScore,
		CreatedAt:        rd.CreatedAt,
		SubmittedAt:      rd.SubmittedAt,
	}
	// Malformed JSON in a column degrades to an absent field rather than
	// failing the whole snapshot.
	_ = json.Unmarshal(rd.CardIDs, &out.CardIDs)
	_ = json.Unmarshal(rd.ActualRanking, &out.ActualRanking)
	_ = json.Unmarshal(rd.CurrentGuess, &out.CurrentGuess)
	_ = json.Unmarshal(rd.FinalGuess, &out.FinalGuess)
	_ = json.Unmarshal(rd.Results, &out.Results)
	return out
}
