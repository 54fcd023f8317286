package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/hisab-api/internal/domain/account"
	"github.com/sangkips/hisab-api/internal/infrastructure/realtime"
	"github.com/sangkips/hisab-api/pkg/apperror"
	"github.com/sirupsen/logrus"
)

// Collections named in change events
const (
	CollectionCustomers    = "customers"
	CollectionProducts     = "products"
	CollectionTransactions = "transactions"
	CollectionPersonal     = "personal"
	CollectionSettings     = "settings"
)

// notifier publishes committed changes. A nil broker disables publishing.
type notifier struct {
	broker realtime.Broker
	log    logrus.FieldLogger
}

func newNotifier(broker realtime.Broker, log logrus.FieldLogger) notifier {
	return notifier{broker: broker, log: log}
}

// notify runs after commit; a failed publish is logged and never fails the request.
func (n notifier) notify(ctx context.Context, accountID uuid.UUID, collection, action string, id uuid.UUID) {
	if n.broker == nil {
		return
	}
	ev := realtime.NewEvent(accountID, collection, action, id)
	if err := n.broker.Publish(ctx, ev); err != nil && n.log != nil {
		n.log.WithFields(logrus.Fields{
			"collection": collection,
			"action":     action,
			"id":         id,
		}).WithError(err).Warn("failed to publish change event")
	}
}

// EventService streams an account's committed changes
type EventService struct {
	broker realtime.Broker
}

// NewEventService creates a new change stream service
func NewEventService(broker realtime.Broker) *EventService {
	return &EventService{broker: broker}
}

// Subscribe streams the session account's events until ctx is done or cancel is called
func (s *EventService) Subscribe(ctx context.Context, sess *account.Session) (<-chan realtime.Event, func(), error) {
	if err := sess.Validate(); err != nil {
		return nil, nil, apperror.ErrUnauthorized
	}
	return s.broker.Subscribe(ctx, sess.AccountID)
}
