package deck

import "math/rand"

type Card struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
}

// RoundSize is how many cards a round ranks.
const RoundSize = 5

// Deck is a static catalog of rankable items, primed at construction.
type Deck struct {
	cards []Card
	byID  map[string]Card
}

func New() *Deck {
	return newFromCards(builtinCards)
}

func newFromCards(cards []Card) *Deck {
	byID := make(map[string]Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}
	return &Deck{cards: cards, byID: byID}
}

func (d *Deck) Size() int {
	return len(d.cards)
}

func (d *Deck) Lookup(id string) (Card, bool) {
	c, ok := d.byID[id]
	return c, ok
}

// Resolve maps card ids back to cards. Unknown ids degrade to a placeholder
// so a missing catalog entry never blocks a round.
func (d *Deck) Resolve(ids []string) []Card {
	cards := make([]Card, len(ids))
	for i, id := range ids {
		if c, ok := d.byID[id]; ok {
			cards[i] = c
		} else {
			cards[i] = Card{ID: id, Text: id, Category: "unknown"}
		}
	}
	return cards
}

// Draw returns n distinct cards sampled uniformly at random.
func (d *Deck) Draw(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	shuffled := make([]Card, len(d.cards))
	copy(shuffled, d.cards)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

func CardIDs(cards []Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}
