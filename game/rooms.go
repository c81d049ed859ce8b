package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"priorities/store"
)

const maxCreateAttempts = 5

// randomCode is a hook so tests can force code collisions.
var randomCode = func() string {
	var b strings.Builder
	for i := 0; i < RoomCodeLength; i++ {
		b.WriteByte(RoomCodeAlphabet[rand.Intn(len(RoomCodeAlphabet))])
	}
	return b.String()
}

// Rooms manages room lifecycle: creation, joining, leaving, host transfer.
type Rooms struct {
	store store.Store
}

func NewRooms(st store.Store) *Rooms {
	return &Rooms{store: st}
}

// Create makes a new room with the caller as host and sole connected
// player. Code collisions are retried with a fresh code up to
// maxCreateAttempts before giving up.
func (r *Rooms) Create(hostName string) (*Room, *Player, error) {
	name, err := ValidateDisplayName(hostName)
	if err != nil {
		return nil, nil, err
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		roomID := uuid.NewString()
		playerID := uuid.NewString()

		room := &store.Room{
			ID:           roomID,
			Code:         randomCode(),
			HostPlayerID: playerID,
			Status:       StatusLobby,
		}
		if err := r.store.CreateRoom(room); err != nil {
			if errors.Is(err, store.ErrCodeTaken) {
				continue
			}
			return nil, nil, fmt.Errorf("failed to create room: %w", err)
		}

		host := &store.Player{
			ID:          playerID,
			RoomID:      roomID,
			DisplayName: name,
			IsHost:      true,
			IsConnected: true,
		}
		if err := r.store.CreatePlayer(host); err != nil {
			// Don't leave a hostless room behind.
			if delErr := r.store.DeleteRoom(roomID); delErr != nil {
				return nil, nil, fmt.Errorf("failed to create host (cleanup also failed: %v): %w", delErr, err)
			}
			return nil, nil, fmt.Errorf("failed to create host: %w", err)
		}

		return RoomFromStore(room), PlayerFromStore(host), nil
	}

	return nil, nil, ErrCreationExhausted
}

// Join adds a player to the room identified by code. If existingPlayerID
// matches a player already recorded in the room this is a reconnection: the
// row is flipped back to connected (with a possible name update) instead of
// creating a new one.
func (r *Rooms) Join(code, displayName, existingPlayerID string) (*Room, *Player, []*Player, error) {
	name, err := ValidateDisplayName(displayName)
	if err != nil {
		return nil, nil, nil, err
	}

	room, err := r.store.GetRoomByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, nil, nil, err
	}
	if room == nil {
		return nil, nil, nil, ErrRoomNotFound
	}

	players, err := r.store.GetRoomPlayers(room.ID)
	if err != nil {
		return nil, nil, nil, err
	}

	connected := 0
	for _, p := range players {
		if p.IsConnected {
			connected++
		}
	}
	// Pre-check only; CreatePlayer re-checks authoritatively.
	if connected >= store.MaxConnectedPlayers {
		return nil, nil, nil, ErrRoomFull
	}

	if existingPlayerID != "" {
		for _, p := range players {
			if p.ID == existingPlayerID {
				reconnected, err := r.store.ReconnectPlayer(existingPlayerID, name)
				if err != nil {
					return nil, nil, nil, err
				}
				if err := r.store.TouchRoom(room.ID); err != nil {
					return nil, nil, nil, err
				}
				refreshed, err := r.store.GetRoomPlayers(room.ID)
				if err != nil {
					return nil, nil, nil, err
				}
				return RoomFromStore(room), PlayerFromStore(reconnected), PlayersFromStore(refreshed), nil
			}
		}
	}

	player := &store.Player{
		ID:          uuid.NewString(),
		RoomID:      room.ID,
		DisplayName: name,
		IsConnected: true,
	}
	if err := r.store.CreatePlayer(player); err != nil {
		if errors.Is(err, store.ErrRoomFull) {
			return nil, nil, nil, ErrRoomFull
		}
		return nil, nil, nil, fmt.Errorf("failed to join room: %w", err)
	}

	if err := r.store.TouchRoom(room.ID); err != nil {
		return nil, nil, nil, err
	}

	all := append(players, player)
	return RoomFromStore(room), PlayerFromStore(player), PlayersFromStore(all), nil
}

// Leave marks the player disconnected. The last connected player to leave
// takes the room with them; a departing host hands the role to the
// earliest-joined connected player. Safe to call more than once for the
// same player, which the beacon path relies on.
func (r *Rooms) Leave(playerID, roomID string) error {
	players, err := r.store.GetRoomPlayers(roomID)
	if err != nil {
		return err
	}

	var leaving *store.Player
	var remaining []*store.Player
	for _, p := range players {
		if p.ID == playerID {
			leaving = p
			continue
		}
		if p.IsConnected {
			remaining = append(remaining, p)
		}
	}

	if len(remaining) == 0 {
		return r.store.DeleteRoom(roomID)
	}

	if err := r.store.DisconnectPlayer(playerID); err != nil {
		return err
	}

	if leaving != nil && leaving.IsHost {
		// remaining is already in join order; two best-effort writes,
		// reconciliation covers a split (liveness, not atomicity).
		newHost := remaining[0]
		if err := r.store.SetPlayerHost(newHost.ID, true); err != nil {
			return err
		}
		if err := r.store.SetRoomHost(roomID, newHost.ID); err != nil {
			return err
		}
	}

	return nil
}

// Players returns the room's players in join order.
func (r *Rooms) Players(roomID string) ([]*Player, error) {
	players, err := r.store.GetRoomPlayers(roomID)
	if err != nil {
		return nil, err
	}
	return PlayersFromStore(players), nil
}

// GetByCode resolves a room by its shareable code.
func (r *Rooms) GetByCode(code string) (*Room, error) {
	room, err := r.store.GetRoomByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return RoomFromStore(room), nil
}

// Get resolves a room by id.
func (r *Rooms) Get(roomID string) (*Room, error) {
	room, err := r.store.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return RoomFromStore(room), nil
}

// Heartbeat refreshes the player's liveness timestamp and the room's
// last-activity timestamp.
func (r *Rooms) Heartbeat(playerID, roomID string) error {
	if err := r.store.TouchPlayer(playerID); err != nil {
		return err
	}
	return r.store.TouchRoom(roomID)
}
