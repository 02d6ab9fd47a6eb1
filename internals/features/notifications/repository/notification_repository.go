package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"thesis_backend/internals/features/notifications/model"
)

const insertBatchSize = 1000

func CreateNotifications(ctx context.Context, db *gorm.DB, rows []model.NotificationModel) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(&rows, insertBatchSize).Error
}

func ListForRecipient(ctx context.Context, db *gorm.DB, recipientID uuid.UUID, unreadOnly bool, offset, limit int) ([]model.NotificationModel, int64, error) {
	q := db.WithContext(ctx).Model(&model.NotificationModel{}).Where("notification_recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("notification_is_read = ?", false)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.NotificationModel
	err := q.Order("notification_created_at DESC, notification_id DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

func CountUnread(ctx context.Context, db *gorm.DB, recipientID uuid.UUID) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("notification_recipient_id = ? AND notification_is_read = ?", recipientID, false).
		Count(&n).Error
	return n, err
}

func MarkAllAsRead(ctx context.Context, db *gorm.DB, recipientID uuid.UUID, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("notification_recipient_id = ? AND notification_is_read = ?", recipientID, false).
		Updates(map[string]any{
			"notification_is_read": true,
			"notification_read_at": at,
		})
	return res.RowsAffected, res.Error
}

// MarkAsRead hanya menyentuh notifikasi milik recipient; 0 baris berarti tidak ditemukan.
func MarkAsRead(ctx context.Context, db *gorm.DB, recipientID, notificationID uuid.UUID, at time.Time) (int64, error) {
	var n model.NotificationModel
	if err := db.WithContext(ctx).
		Where("notification_id = ? AND notification_recipient_id = ?", notificationID, recipientID).
		First(&n).Error; err != nil {
		return 0, err
	}
	if n.NotificationIsRead {
		return 1, nil
	}
	res := db.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("notification_id = ?", notificationID).
		Updates(map[string]any{
			"notification_is_read": true,
			"notification_read_at": at,
		})
	return res.RowsAffected, res.Error
}
