// Package realtime fans committed changes out to an account's live subscribers.
package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Change actions
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event describes one committed mutation
type Event struct {
	Collection string    `json:"collection"`
	Action     string    `json:"action"`
	ID         uuid.UUID `json:"id"`
	AccountID  uuid.UUID `json:"account_id"`
	At         time.Time `json:"at"`
}

// NewEvent creates an event stamped with the current time
func NewEvent(accountID uuid.UUID, collection, action string, id uuid.UUID) Event {
	return Event{
		Collection: collection,
		Action:     action,
		ID:         id,
		AccountID:  accountID,
		At:         time.Now().UTC(),
	}
}

// Broker publishes events and streams them to subscribers of the same account
type Broker interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe streams the account's events until ctx is done or cancel is called.
	Subscribe(ctx context.Context, accountID uuid.UUID) (events <-chan Event, cancel func(), err error)
	Close() error
}

const subscriberBuffer = 64
