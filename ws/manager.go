package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"priorities/game"
	"priorities/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Upgrader returns the websocket upgrader used by the HTTP layer.
func Upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
}

// Manager owns one Room per game room with at least one socket attached.
// Sockets are push-only: every mutation goes through the HTTP API, so the
// read pump exists solely to detect disconnects and answer pings.
type Manager struct {
	store store.Store
	rooms map[string]*Room
	mu    sync.Mutex
}

func NewManager(st store.Store) *Manager {
	return &Manager{
		store: st,
		rooms: make(map[string]*Room),
	}
}

// attach registers the client in the room under the manager lock. Holding
// m.mu across both the map lookup and AddClient means a client can never
// land on a room that releaseIfEmpty is tearing down: either the attach
// wins and the release re-check sees a non-empty room, or the release wins
// and the attach builds a fresh room with a live subscription.
func (m *Manager) attach(client *Client, roomID string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, exists := m.rooms[roomID]
	if !exists {
		room = newRoom(roomID, m.store.Subscribe(roomID))
		m.rooms[roomID] = room
		go m.relay(room)
	}
	room.AddClient(client)
	return room
}

// releaseIfEmpty tears the room down once the last client is gone.
func (m *Manager) releaseIfEmpty(room *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if room.ClientCount() > 0 {
		return
	}
	if m.rooms[room.roomID] == room {
		delete(m.rooms, room.roomID)
		close(room.stop)
		room.sub.Close()
	}
}

// relay forwards store change events to every socket in the room.
func (m *Manager) relay(room *Room) {
	for {
		select {
		case <-room.stop:
			return
		case c := <-room.sub.Rooms:
			room.Broadcast(OutgoingMessage{
				Type:    TypeRoomChange,
				Kind:    string(c.Kind),
				Payload: game.RoomFromStore(c.Room),
			})
		case c := <-room.sub.Players:
			room.Broadcast(OutgoingMessage{
				Type:    TypePlayerChange,
				Kind:    string(c.Kind),
				Payload: game.PlayerFromStore(c.Player),
			})
		case c := <-room.sub.Rounds:
			room.Broadcast(OutgoingMessage{
				Type:    TypeRoundChange,
				Kind:    string(c.Kind),
				Payload: game.RoundFromStore(c.Round),
			})
		}
	}
}

func (m *Manager) HandleConnection(conn *websocket.Conn, roomID string) {
	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
	}

	room := m.attach(client, roomID)

	go m.writePump(client)
	go m.readPump(client, room)
}

func (m *Manager) readPump(client *Client, room *Room) {
	defer func() {
		if room.RemoveClient(client) == 0 {
			m.releaseIfEmpty(room)
		}
		client.conn.Close()
	}()

	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		// No incoming message handling; mutations arrive over HTTP.
	}
}

func (m *Manager) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := client.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to current websocket message
			n := len(client.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-client.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
