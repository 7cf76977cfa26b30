// Package confirm implements two-phase confirmation for destructive
// commands. A request returns a token; the command runs only when the
// token is taken back.
package confirm

import (
	"errors"
	"sync"
	"time"

	"github.com/xraph/restro/id"
)

// ErrUnknownToken is returned when a token was never issued, was already
// taken, or was discarded.
var ErrUnknownToken = errors.New("confirm: unknown token")

// Action names the destructive command awaiting confirmation.
type Action string

const (
	ActionRejectOrder       Action = "order.reject"
	ActionRemoveOrder       Action = "order.remove"
	ActionCancelReservation Action = "table.cancel_reservation"
	ActionDeleteIngredient  Action = "ingredient.delete"
)

// Pending is an issued, not yet consumed confirmation.
type Pending struct {
	Token       id.ConfirmationID `json:"token"`
	Action      Action            `json:"action"`
	Target      id.ID             `json:"target"`
	RequestedAt time.Time         `json:"requested_at"`
}

// Book holds the pending confirmations of one session. A second request
// for the same action and target replaces the first.
type Book struct {
	mu      sync.Mutex
	pending map[id.ConfirmationID]Pending
}

// NewBook returns an empty book.
func NewBook() *Book {
	return &Book{pending: make(map[id.ConfirmationID]Pending)}
}

// Request issues a token for action on target.
func (b *Book) Request(action Action, target id.ID, now time.Time) Pending {
	b.mu.Lock()
	defer b.mu.Unlock()

	for tok, p := range b.pending {
		if p.Action == action && p.Target == target {
			delete(b.pending, tok)
		}
	}

	p := Pending{
		Token:       id.NewConfirmationID(),
		Action:      action,
		Target:      target,
		RequestedAt: now.UTC(),
	}
	b.pending[p.Token] = p
	return p
}

// Take consumes the token and returns what it confirms. A token can be
// taken once.
func (b *Book) Take(token id.ConfirmationID) (Pending, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.pending[token]
	if !ok {
		return Pending{}, ErrUnknownToken
	}
	delete(b.pending, token)
	return p, nil
}

// Peek returns the pending confirmation without consuming it.
func (b *Book) Peek(token id.ConfirmationID) (Pending, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pending[token]
	return p, ok
}

// Discard drops the token. It reports whether the token was pending.
func (b *Book) Discard(token id.ConfirmationID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.pending[token]
	delete(b.pending, token)
	return ok
}

// Len returns the number of pending confirmations.
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
