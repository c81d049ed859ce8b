package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"priorities/store"
)

type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Room fans store change events for one game room out to its connected
// sockets. The subscription and relay goroutine live as long as the room has
// at least one client.
type Room struct {
	roomID  string
	sub     *store.Subscription
	stop    chan struct{}
	clients map[*Client]bool
	mu      sync.RWMutex
}

func newRoom(roomID string, sub *store.Subscription) *Room {
	return &Room{
		roomID:  roomID,
		sub:     sub,
		stop:    make(chan struct{}),
		clients: make(map[*Client]bool),
	}
}

func (r *Room) AddClient(client *Client) {
	r.mu.Lock()
	r.clients[client] = true
	r.mu.Unlock()
}

// RemoveClient detaches the client and reports how many remain.
func (r *Room) RemoveClient(client *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[client]; ok {
		delete(r.clients, client)
		close(client.send)
	}
	return len(r.clients)
}

func (r *Room) Broadcast(message OutgoingMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for client := range r.clients {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, skip
			log.Printf("Client send buffer full in room %s", r.roomID)
		}
	}
}

func (r *Room) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
