package client

import (
	"errors"
	"log"
	"sync"
	"time"

	"priorities/deck"
	"priorities/game"
	"priorities/store"
)

type ConnectionStatus string

const (
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusError        ConnectionStatus = "error"
)

// Phase is the UI phase, a superset of the round phases.
type Phase string

const (
	PhaseLanding  Phase = "landing"
	PhaseCreating Phase = "creating"
	PhaseJoining  Phase = "joining"
	PhaseLobby    Phase = "lobby"
	PhasePicking  Phase = "picking"
	PhaseGuessing Phase = "guessing"
	PhaseResults  Phase = "results"
	PhaseGameOver Phase = "gameOver"
)

const DefaultHeartbeatInterval = 30 * time.Second

var (
	ErrNotHost    = errors.New("only the host can do that")
	ErrNotPicker  = errors.New("only the picker can submit the ranking")
	ErrNotGuesser = errors.New("only the guesser can submit the guess")
	ErrNotInRoom  = errors.New("not in a room")
)

// State is a point-in-time copy of the façade's view for UI rendering and
// tests.
type State struct {
	Status      ConnectionStatus
	Err         string
	PlayerID    string
	DisplayName string
	Room        *game.Room
	Players     []*game.Player
	Round       *game.Round
	Role        string
	Phase       Phase
	IsHost      bool
}

// Facade is the per-client coordination state machine. Local actions are
// applied optimistically; the store's change streams are authoritative and
// overwrite local state on arrival. The subscription and the heartbeat are
// owned resources: acquiring a new one always releases the previous one.
type Facade struct {
	store             store.Store
	rooms             *game.Rooms
	rounds            *game.Rounds
	deck              *deck.Deck
	identity          *IdentityFile
	heartbeatInterval time.Duration

	mu           sync.Mutex
	status       ConnectionStatus
	lastErr      string
	playerID     string
	displayName  string
	room         *game.Room
	players      []*game.Player
	round        *game.Round
	highestRound int
	role         string
	phase        Phase
	isHost       bool

	sub           *store.Subscription
	subStop       chan struct{}
	heartbeatStop chan struct{}
}

func NewFacade(st store.Store, d *deck.Deck, identity *IdentityFile, heartbeatInterval time.Duration) *Facade {
	if heartbeatInterval <= 0 {
		heartbeatInterval = DefaultHeartbeatInterval
	}
	return &Facade{
		store:             st,
		rooms:             game.NewRooms(st),
		rounds:            game.NewRounds(st, d),
		deck:              d,
		identity:          identity,
		heartbeatInterval: heartbeatInterval,
		status:            StatusDisconnected,
		phase:             PhaseLanding,
	}
}

func (f *Facade) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	players := make([]*game.Player, len(f.players))
	copy(players, f.players)
	return State{
		Status:      f.status,
		Err:         f.lastErr,
		PlayerID:    f.playerID,
		DisplayName: f.displayName,
		Room:        f.room,
		Players:     players,
		Round:       f.round,
		Role:        f.role,
		Phase:       f.phase,
		IsHost:      f.isHost,
	}
}

// Room management

func (f *Facade) CreateRoom(displayName string) error {
	f.setTransition(StatusConnecting, PhaseCreating)

	room, player, err := f.rooms.Create(displayName)
	if err != nil {
		f.fail(err)
		return err
	}

	f.saveIdentity(player.ID, displayName, room.Code)

	f.mu.Lock()
	f.status = StatusConnected
	f.lastErr = ""
	f.playerID = player.ID
	f.displayName = player.DisplayName
	f.room = room
	f.players = []*game.Player{player}
	f.isHost = true
	f.phase = PhaseLobby
	f.mu.Unlock()

	f.subscribeToRoom(room.ID)
	f.startHeartbeat()
	return nil
}

func (f *Facade) JoinRoom(code, displayName string) error {
	f.setTransition(StatusConnecting, PhaseJoining)

	existingPlayerID := ""
	if f.identity != nil {
		if id, err := f.identity.Load(); err == nil && id != nil {
			existingPlayerID = id.PlayerID
		}
	}

	room, player, players, err := f.rooms.Join(code, displayName, existingPlayerID)
	if err != nil {
		f.fail(err)
		return err
	}

	f.saveIdentity(player.ID, displayName, room.Code)

	// A joiner may land mid-game; derive phase and role from the room's
	// current round.
	phase := PhaseLobby
	var round *game.Round
	role := ""
	if room.Status == game.StatusPlaying {
		round, err = f.rounds.Current(room.ID)
		if err == nil && round != nil {
			phase = Phase(round.Phase)
			role = roleFor(round, player.ID)
		}
	} else if room.Status == game.StatusFinished {
		phase = PhaseGameOver
	}

	f.mu.Lock()
	f.status = StatusConnected
	f.lastErr = ""
	f.playerID = player.ID
	f.displayName = player.DisplayName
	f.room = room
	f.players = players
	f.isHost = player.IsHost
	f.phase = phase
	f.round = round
	if round != nil {
		f.highestRound = round.RoundNumber
	}
	f.role = role
	f.mu.Unlock()

	f.subscribeToRoom(room.ID)
	f.startHeartbeat()
	return nil
}

func (f *Facade) LeaveRoom() error {
	f.releaseSubscription()
	f.stopHeartbeat()

	f.mu.Lock()
	playerID := f.playerID
	room := f.room
	f.mu.Unlock()

	var err error
	if playerID != "" && room != nil {
		if err = f.rooms.Leave(playerID, room.ID); err != nil {
			log.Printf("leave room: %v", err)
		}
	}

	if f.identity != nil {
		if clearErr := f.identity.Clear(); clearErr != nil {
			log.Printf("clear identity: %v", clearErr)
		}
	}

	f.Reset()
	return err
}

// AttemptReconnect tries to rejoin the last room using the persisted
// identity. Stale identity data is cleared on failure.
func (f *Facade) AttemptReconnect() bool {
	if f.identity == nil {
		return false
	}
	id, err := f.identity.Load()
	if err != nil || id == nil || id.PlayerID == "" || id.RoomCode == "" || id.DisplayName == "" {
		return false
	}

	if err := f.JoinRoom(id.RoomCode, id.DisplayName); err != nil {
		if clearErr := f.identity.Clear(); clearErr != nil {
			log.Printf("clear identity: %v", clearErr)
		}
		return false
	}
	return true
}

// Reset releases owned resources and returns to the landing state.
func (f *Facade) Reset() {
	f.releaseSubscription()
	f.stopHeartbeat()

	f.mu.Lock()
	f.status = StatusDisconnected
	f.lastErr = ""
	f.playerID = ""
	f.displayName = ""
	f.room = nil
	f.players = nil
	f.round = nil
	f.highestRound = 0
	f.role = ""
	f.phase = PhaseLanding
	f.isHost = false
	f.mu.Unlock()
}

// Game flow

// StartGame begins round one. Host only, and only with enough connected
// players; both checks are this façade's responsibility, the coordinator
// trusts its caller.
func (f *Facade) StartGame() error {
	f.mu.Lock()
	room := f.room
	players := f.players
	isHost := f.isHost
	playerID := f.playerID
	f.mu.Unlock()

	if !isHost || room == nil {
		return ErrNotHost
	}

	connected := connectedPlayers(players)
	if len(connected) < game.MinPlayersToStart {
		return game.ErrNotEnoughPlayers
	}

	pickerID, guesserID, err := f.rounds.AssignRoles(connected, "")
	if err != nil {
		return err
	}

	round, err := f.rounds.Start(room.ID, 1, pickerID, guesserID)
	if err != nil {
		return err
	}

	f.applyRoundOptimistic(round, playerID)
	return nil
}

// NextRound starts the following round, rotating the picker. Host only.
func (f *Facade) NextRound() error {
	f.mu.Lock()
	room := f.room
	players := f.players
	isHost := f.isHost
	playerID := f.playerID
	previousPickerID := ""
	if f.round != nil {
		previousPickerID = f.round.PickerID
	}
	f.mu.Unlock()

	if !isHost || room == nil {
		return ErrNotHost
	}

	round, err := f.rounds.Next(room.ID, connectedPlayers(players), previousPickerID)
	if err != nil {
		return err
	}

	f.applyRoundOptimistic(round, playerID)
	return nil
}

// SubmitPicking submits the picker's reference ranking.
func (f *Facade) SubmitPicking(ranking []game.RankingEntry) error {
	f.mu.Lock()
	round := f.round
	role := f.role
	f.mu.Unlock()

	if round == nil || role != game.RolePicker {
		return ErrNotPicker
	}
	return f.rounds.SubmitPickerRanking(round.ID, ranking)
}

// UpdateGuess publishes the guesser's work in progress. Silently ignored
// for anyone who is not the guesser.
func (f *Facade) UpdateGuess(guess []game.RankingEntry) error {
	f.mu.Lock()
	round := f.round
	role := f.role
	f.mu.Unlock()

	if round == nil || role != game.RoleGuesser {
		return nil
	}
	return f.rounds.UpdateCurrentGuess(round.ID, guess)
}

// SubmitGuess finalizes the guess and scores the round.
func (f *Facade) SubmitGuess(guess []game.RankingEntry) error {
	f.mu.Lock()
	round := f.round
	room := f.room
	role := f.role
	f.mu.Unlock()

	if round == nil || room == nil || role != game.RoleGuesser {
		return ErrNotGuesser
	}
	if len(round.ActualRanking) == 0 {
		return game.ErrNoRanking
	}

	_, _, err := f.rounds.SubmitFinalGuess(round.ID, room.ID, guess, round.ActualRanking)
	return err
}

// Reconciliation

// subscribeToRoom acquires the room's change streams, releasing any prior
// subscription first, and starts one handler goroutine per topic.
func (f *Facade) subscribeToRoom(roomID string) {
	f.releaseSubscription()

	sub := f.store.Subscribe(roomID)
	stop := make(chan struct{})

	f.mu.Lock()
	f.sub = sub
	f.subStop = stop
	f.mu.Unlock()

	go func() {
		for {
			select {
			case <-stop:
				return
			case c := <-sub.Players:
				f.onPlayerChange(roomID, c)
			}
		}
	}()
	go func() {
		for {
			select {
			case <-stop:
				return
			case c := <-sub.Rooms:
				f.onRoomChange(c)
			}
		}
	}()
	go func() {
		for {
			select {
			case <-stop:
				return
			case c := <-sub.Rounds:
				f.onRoundChange(c)
			}
		}
	}()
}

func (f *Facade) releaseSubscription() {
	f.mu.Lock()
	sub := f.sub
	stop := f.subStop
	f.sub = nil
	f.subStop = nil
	f.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
	if stop != nil {
		close(stop)
	}
}

// onPlayerChange refetches the whole player list rather than patching the
// one row; simpler, and idempotent under duplicate or self-echoed events.
func (f *Facade) onPlayerChange(roomID string, _ store.Change) {
	players, err := f.rooms.Players(roomID)
	if err != nil {
		log.Printf("refetch players: %v", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.players = players
	f.isHost = false
	for _, p := range players {
		if p.ID == f.playerID {
			f.isHost = p.IsHost
			break
		}
	}
}

// onRoomChange replaces the room snapshot wholesale; a set winner forces
// the game-over phase.
func (f *Facade) onRoomChange(c store.Change) {
	if c.Kind == store.ChangeDelete || c.Room == nil {
		return
	}
	room := game.RoomFromStore(c.Room)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.room = room
	if room.Winner != game.WinnerNone {
		f.phase = PhaseGameOver
	}
}

// onRoundChange accepts a round snapshot only if it matches the room's
// recorded current round, is strictly newer than anything seen, or shares
// the identity of the round already tracked. The streams carry no ordering
// guarantee, so anything else is treated as stale.
func (f *Facade) onRoundChange(c store.Change) {
	if c.Kind == store.ChangeDelete || c.Round == nil {
		return
	}
	round := game.RoundFromStore(c.Round)

	f.mu.Lock()
	defer f.mu.Unlock()

	isCurrentRound := f.room != nil && round.RoundNumber == f.room.CurrentRound
	isNewRound := round.RoundNumber > f.highestRound
	isTrackedRound := f.round != nil && round.ID == f.round.ID
	if !isCurrentRound && !isNewRound && !isTrackedRound {
		return
	}

	f.round = round
	if round.RoundNumber > f.highestRound {
		f.highestRound = round.RoundNumber
	}
	f.role = roleFor(round, f.playerID)
	f.phase = Phase(round.Phase)
}

// Heartbeat

func (f *Facade) startHeartbeat() {
	f.stopHeartbeat()

	stop := make(chan struct{})
	f.mu.Lock()
	f.heartbeatStop = stop
	f.mu.Unlock()

	go func() {
		ticker := time.NewTicker(f.heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				f.mu.Lock()
				playerID := f.playerID
				room := f.room
				f.mu.Unlock()
				if playerID == "" || room == nil {
					continue
				}
				if err := f.rooms.Heartbeat(playerID, room.ID); err != nil {
					log.Printf("heartbeat: %v", err)
				}
			}
		}
	}()
}

func (f *Facade) stopHeartbeat() {
	f.mu.Lock()
	stop := f.heartbeatStop
	f.heartbeatStop = nil
	f.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

// Helpers

func (f *Facade) setTransition(status ConnectionStatus, phase Phase) {
	f.mu.Lock()
	f.status = status
	f.lastErr = ""
	f.phase = phase
	f.mu.Unlock()
}

func (f *Facade) fail(err error) {
	f.mu.Lock()
	f.status = StatusError
	f.lastErr = err.Error()
	f.phase = PhaseLanding
	f.mu.Unlock()
}

func (f *Facade) saveIdentity(playerID, displayName, roomCode string) {
	if f.identity == nil {
		return
	}
	err := f.identity.Save(&Identity{
		PlayerID:    playerID,
		DisplayName: displayName,
		RoomCode:    roomCode,
	})
	if err != nil {
		log.Printf("save identity: %v", err)
	}
}

// applyRoundOptimistic installs a just-started round locally before the
// change stream confirms it.
func (f *Facade) applyRoundOptimistic(round *game.Round, playerID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.round = round
	if round.RoundNumber > f.highestRound {
		f.highestRound = round.RoundNumber
	}
	f.role = roleFor(round, playerID)
	f.phase = Phase(round.Phase)
	if f.room != nil {
		f.room.Status = game.StatusPlaying
		f.room.CurrentRound = round.RoundNumber
	}
}

func roleFor(round *game.Round, playerID string) string {
	switch playerID {
	case round.PickerID:
		return game.RolePicker
	case round.GuesserID:
		return game.RoleGuesser
	default:
		return game.RoleSpectator
	}
}

func connectedPlayers(players []*game.Player) []*game.Player {
	var connected []*game.Player
	for _, p := range players {
		if p.IsConnected {
			connected = append(connected, p)
		}
	}
	return connected
}
