package listener

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/matiasbn/Lucky7Bot/data"
)

// Subscription is a live stream of decoded records
type Subscription struct {
	ID uuid.UUID

	records chan data.Record
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
}

// Records is closed once the subscription has stopped
func (s *Subscription) Records() <-chan data.Record {
	return s.records
}

// Unsubscribe stops every watcher and waits for them to exit. It is safe to
// call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		log.Debug("unsubscribed", "id", s.ID.String())
	})
	<-s.done
}

// Done is closed after the records channel
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}
