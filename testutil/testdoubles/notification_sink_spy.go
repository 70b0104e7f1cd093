package testdoubles

import (
	"context"
	"sync"

	"github.com/mrcrpro/panaguas/internal/notification"
)

// NotificationSinkSpy records delivered notifications. It can also act as a synchronous
// notification.Notifier for components under test.
type NotificationSinkSpy struct {
	mu            sync.Mutex
	notifications []notification.Notification
	err           error
}

// NewNotificationSinkSpy creates a spy. A non-nil err is returned from every Send.
func NewNotificationSinkSpy(err error) *NotificationSinkSpy {
	return &NotificationSinkSpy{err: err}
}

func (s *NotificationSinkSpy) Send(_ context.Context, n notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = append(s.notifications, n)

	return s.err
}

// Enqueue records n immediately.
func (s *NotificationSinkSpy) Enqueue(n notification.Notification) bool {
	_ = s.Send(context.Background(), n)

	return true
}

// Notifications returns a copy of everything recorded.
func (s *NotificationSinkSpy) Notifications() []notification.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]notification.Notification(nil), s.notifications...)
}

// Kinds returns the kinds of the recorded notifications in order.
func (s *NotificationSinkSpy) Kinds() []notification.Kind {
	kinds := make([]notification.Kind, 0)
	for _, n := range s.Notifications() {
		kinds = append(kinds, n.Kind)
	}

	return kinds
}
