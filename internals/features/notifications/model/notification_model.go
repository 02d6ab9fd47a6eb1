package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationModel struct {
	NotificationID          uuid.UUID      `gorm:"column:notification_id;type:uuid;primaryKey" json:"notification_id"`
	NotificationRecipientID uuid.UUID      `gorm:"column:notification_recipient_id;type:uuid;not null;index:idx_notifications_recipient_created,priority:1" json:"notification_recipient_id"`
	NotificationMessage     string         `gorm:"column:notification_message;type:text;not null" json:"notification_message"`
	NotificationPayload     datatypes.JSON `gorm:"column:notification_payload" json:"notification_payload,omitempty"`
	NotificationIsRead      bool           `gorm:"column:notification_is_read;not null" json:"notification_is_read"`
	NotificationReadAt      *time.Time     `gorm:"column:notification_read_at" json:"notification_read_at,omitempty"`
	NotificationCreatedAt   time.Time      `gorm:"column:notification_created_at;autoCreateTime;index:idx_notifications_recipient_created,priority:2" json:"notification_created_at"`
}

func (NotificationModel) TableName() string {
	return "notifications"
}

func (n *NotificationModel) BeforeCreate(tx *gorm.DB) error {
	if n.NotificationID == uuid.Nil {
		n.NotificationID = uuid.New()
	}
	return nil
}
