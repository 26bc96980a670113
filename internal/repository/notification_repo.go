package repository

import (
	"context"

	"staynest/internal/database"
	"staynest/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) dbFrom(ctx context.Context) *gorm.DB {
	return database.FromContext(ctx, r.db).WithContext(ctx)
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.dbFrom(ctx).Create(n).Error
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	var out []models.Notification
	err := r.dbFrom(ctx).Where("user_id = ?", userID).Order("id DESC").Limit(50).Find(&out).Error
	return out, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uint) error {
	return r.dbFrom(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true).Error
}
