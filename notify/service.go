package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/realtime"
	"github.com/harborview/property_market_system/store"
)

// Service routes an event, persists the resulting records, and hands each
// one to the realtime dispatcher. Persistence failures are returned; the
// realtime push never fails the caller.
type Service struct {
	notifications store.NotificationStore
	dispatcher    *realtime.Dispatcher
	now           func() time.Time
}

func NewService(notifications store.NotificationStore, dispatcher *realtime.Dispatcher) *Service {
	return &Service{notifications: notifications, dispatcher: dispatcher, now: time.Now}
}

// Send fans one event out to its audiences. A retried call creates a second
// set of records for the same event; de-duplication is a read-side concern.
func (s *Service) Send(ctx context.Context, ev Event) ([]models.Notification, error) {
	records := Route(ev, s.now())
	for i := range records {
		if err := s.notifications.Insert(ctx, &records[i]); err != nil {
			return records[:i], fmt.Errorf("storing %s notification: %w", records[i].Target, err)
		}
		if s.dispatcher != nil {
			s.dispatcher.Dispatch(realtime.ChannelNewNotification, records[i])
		}
	}
	return records, nil
}
