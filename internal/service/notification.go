package service

import (
	"context"
	"log"

	"staynest/internal/models"
)

// Notifier delivers user-facing notifications; delivery is best effort and
// never blocks a money path.
type Notifier interface {
	Notify(ctx context.Context, userID uint, typ, title, body string)
}

type NotificationService struct {
	store NotificationStore
}

func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

func (s *NotificationService) Notify(ctx context.Context, userID uint, typ, title, body string) {
	if s == nil || s.store == nil {
		return
	}
	err := s.store.Create(ctx, &models.Notification{
		UserID: userID,
		Type:   typ,
		Title:  title,
		Body:   body,
	})
	if err != nil {
		log.Printf("[notify] create failed user=%d type=%s: %v", userID, typ, err)
	}
}
