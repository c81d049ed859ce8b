package ws

// Change event types pushed to clients. Payloads are the JSON wire shapes
// from the game package.
const (
	TypeRoomChange   = "room_change"
	TypePlayerChange = "player_change"
	TypeRoundChange  = "round_change"
)

type OutgoingMessage struct {
	Type    string      `json:"type"`
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
}
