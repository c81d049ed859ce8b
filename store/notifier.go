package store

import "sync"

type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Change carries a row snapshot as it looked when the write landed. Exactly
// one of Room, Player, Round is set, matching the stream it arrived on.
type Change struct {
	Kind   ChangeKind
	Room   *Room
	Player *Player
	Round  *Round
}

const subscriptionBuffer = 64

// Subscription delivers a room's change events on three independent streams.
// There is no ordering guarantee across streams, and a slow consumer loses
// events rather than blocking writers; consumers reconcile by re-reading.
type Subscription struct {
	Players chan Change
	Rooms   chan Change
	Rounds  chan Change

	roomID   string
	notifier *Notifier
}

// Close unregisters the subscription. The channels are not closed; a
// receiver racing Close simply stops seeing events.
func (s *Subscription) Close() {
	s.notifier.unsubscribe(s)
}

// Notifier fans writes out to per-room subscribers.
type Notifier struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[*Subscription]struct{})}
}

func (n *Notifier) Subscribe(roomID string) *Subscription {
	sub := &Subscription{
		Players:  make(chan Change, subscriptionBuffer),
		Rooms:    make(chan Change, subscriptionBuffer),
		Rounds:   make(chan Change, subscriptionBuffer),
		roomID:   roomID,
		notifier: n,
	}

	n.mu.Lock()
	if n.subs[roomID] == nil {
		n.subs[roomID] = make(map[*Subscription]struct{})
	}
	n.subs[roomID][sub] = struct{}{}
	n.mu.Unlock()

	return sub
}

func (n *Notifier) unsubscribe(sub *Subscription) {
	n.mu.Lock()
	if set, ok := n.subs[sub.roomID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(n.subs, sub.roomID)
		}
	}
	n.mu.Unlock()
}

func (n *Notifier) publish(roomID string, pick func(*Subscription) chan Change, c Change) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for sub := range n.subs[roomID] {
		select {
		case pick(sub) <- c:
		default:
			// Subscriber buffer full, drop.
		}
	}
}

func (n *Notifier) publishRoom(kind ChangeKind, r *Room) {
	n.publish(r.ID, func(s *Subscription) chan Change { return s.Rooms }, Change{Kind: kind, Room: r})
}

func (n *Notifier) publishPlayer(kind ChangeKind, p *Player) {
	n.publish(p.RoomID, func(s *Subscription) chan Change { return s.Players }, Change{Kind: kind, Player: p})
}

func (n *Notifier) publishRound(kind ChangeKind, rd *Round) {
	n.publish(rd.RoomID, func(s *Subscription) chan Change { return s.Rounds }, Change{Kind: kind, Round: rd})
}
