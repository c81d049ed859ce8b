package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"priorities/game"
	"priorities/store"
	"priorities/ws"
)

type Handlers struct {
	rooms             *game.Rooms
	rounds            *game.Rounds
	store             store.Store
	wsManager         *ws.Manager
	heartbeatInterval time.Duration
}

func NewHandlers(rooms *game.Rooms, rounds *game.Rounds, st store.Store, wsManager *ws.Manager, heartbeatInterval time.Duration) *Handlers {
	return &Handlers{
		rooms:             rooms,
		rounds:            rounds,
		store:             st,
		wsManager:         wsManager,
		heartbeatInterval: heartbeatInterval,
	}
}

// GetClientConfig tells clients the cadence the server expects, so the
// heartbeat interval is tuned in one place.
func (h *Handlers) GetClientConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"heartbeatIntervalMs": h.heartbeatInterval.Milliseconds(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

// writeError surfaces a short human-readable reason; the client shows it
// and may retry, the session never dies on a failed operation.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "something went wrong, try again"

	switch {
	case errors.Is(err, game.ErrRoomNotFound), errors.Is(err, game.ErrRoundNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrNotEnoughPlayers),
		errors.Is(err, game.ErrWrongPhase):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, game.ErrInvalidDisplayName),
		errors.Is(err, game.ErrInvalidRanking),
		errors.Is(err, game.ErrNoRanking):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, game.ErrCreationExhausted):
		// Code-space pressure is the server's problem, not the caller's.
		status, msg = http.StatusServiceUnavailable, err.Error()
	default:
		log.Printf("internal error: %v", err)
	}

	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

// Room lifecycle

func (h *Handlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HostName string `json:"hostName"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	room, player, err := h.rooms.Create(req.HostName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"room":   room,
		"player": player,
	})
}

func (h *Handlers) JoinRoom(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req struct {
		DisplayName string `json:"displayName"`
		PlayerID    string `json:"playerId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	room, player, players, err := h.rooms.Join(code, req.DisplayName, req.PlayerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"room":    room,
		"player":  player,
		"players": players,
	})
}

func (h *Handlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.rooms.GetByCode(mux.Vars(r)["code"])
	if err != nil {
		writeError(w, err)
		return
	}

	players, err := h.rooms.Players(room.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	round, err := h.rounds.Current(room.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"room":    room,
		"players": players,
		"round":   round,
	})
}

// LeaveRoom serves both the explicit leave action and the fire-and-forget
// beacon on tab close; the underlying logic is idempotent either way.
func (h *Handlers) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"playerId"`
		RoomID   string `json:"roomId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PlayerID == "" || req.RoomID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing playerId or roomId"})
		return
	}

	if err := h.rooms.Leave(req.PlayerID, req.RoomID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "left room"})
}

func (h *Handlers) Heartbeat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"playerId"`
		RoomID   string `json:"roomId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.rooms.Heartbeat(req.PlayerID, req.RoomID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// Round flow. The game layer trusts its caller, so the claimed player id is
// checked against room/round state here, at the network boundary.

func (h *Handlers) requireHost(w http.ResponseWriter, roomID, playerID string) bool {
	players, err := h.rooms.Players(roomID)
	if err != nil {
		writeError(w, err)
		return false
	}
	for _, p := range players {
		if p.ID == playerID && p.IsHost && p.IsConnected {
			return true
		}
	}
	writeJSON(w, http.StatusForbidden, map[string]string{"error": "only the host can do that"})
	return false
}

func (h *Handlers) StartGame(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	var req struct {
		PlayerID string `json:"playerId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.requireHost(w, roomID, req.PlayerID) {
		return
	}

	players, err := h.rooms.Players(roomID)
	if err != nil {
		writeError(w, err)
		return
	}

	pickerID, guesserID, err := h.rounds.AssignRoles(players, "")
	if err != nil {
		writeError(w, err)
		return
	}

	round, err := h.rounds.Start(roomID, 1, pickerID, guesserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"round": round})
}

func (h *Handlers) NextRound(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	var req struct {
		PlayerID string `json:"playerId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !h.requireHost(w, roomID, req.PlayerID) {
		return
	}

	players, err := h.rooms.Players(roomID)
	if err != nil {
		writeError(w, err)
		return
	}

	previousPickerID := ""
	if current, err := h.rounds.Current(roomID); err == nil && current != nil {
		previousPickerID = current.PickerID
	}

	round, err := h.rounds.Next(roomID, players, previousPickerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"round": round})
}

func (h *Handlers) getRoundForCaller(w http.ResponseWriter, r *http.Request) (*game.Round, string, bool) {
	roundID := mux.Vars(r)["roundId"]

	round, err := h.store.GetRound(roundID)
	if err != nil {
		writeError(w, err)
		return nil, "", false
	}
	if round == nil {
		writeError(w, game.ErrRoundNotFound)
		return nil, "", false
	}
	return game.RoundFromStore(round), roundID, true
}

func (h *Handlers) SubmitRanking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string             `json:"playerId"`
		Ranking  []game.RankingEntry `json:"ranking"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	round, roundID, ok := h.getRoundForCaller(w, r)
	if !ok {
		return
	}
	if req.PlayerID != round.PickerID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only the picker can submit the ranking"})
		return
	}

	if err := h.rounds.SubmitPickerRanking(roundID, req.Ranking); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "ranking submitted"})
}

func (h *Handlers) UpdateGuess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string             `json:"playerId"`
		Guess    []game.RankingEntry `json:"guess"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	round, roundID, ok := h.getRoundForCaller(w, r)
	if !ok {
		return
	}
	if req.PlayerID != round.GuesserID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only the guesser can update the guess"})
		return
	}

	if err := h.rounds.UpdateCurrentGuess(roundID, req.Guess); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "guess updated"})
}

func (h *Handlers) SubmitFinalGuess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string             `json:"playerId"`
		Guess    []game.RankingEntry `json:"guess"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	round, roundID, ok := h.getRoundForCaller(w, r)
	if !ok {
		return
	}
	if req.PlayerID != round.GuesserID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only the guesser can submit the guess"})
		return
	}

	// The stored reference ranking is authoritative, never the caller's copy.
	playerScore, gameScore, err := h.rounds.SubmitFinalGuess(roundID, round.RoomID, req.Guess, round.ActualRanking)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"playerRoundScore": playerScore,
		"gameRoundScore":   gameScore,
	})
}

// WebSocket

var upgrader = ws.Upgrader()

func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	h.wsManager.HandleConnection(conn, roomID)
}
