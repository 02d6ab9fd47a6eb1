package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"thesis_backend/internals/features/notifications/model"
)

type NotificationResponse struct {
	ID        uuid.UUID      `json:"id"`
	Message   string         `json:"message"`
	Payload   datatypes.JSON `json:"payload,omitempty"`
	IsRead    bool           `json:"is_read"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func ToNotificationResponse(m model.NotificationModel) NotificationResponse {
	resp := NotificationResponse{
		ID:        m.NotificationID,
		Message:   m.NotificationMessage,
		IsRead:    m.NotificationIsRead,
		ReadAt:    m.NotificationReadAt,
		CreatedAt: m.NotificationCreatedAt,
	}
	if len(m.NotificationPayload) > 0 && string(m.NotificationPayload) != "null" {
		resp.Payload = m.NotificationPayload
	}
	return resp
}

func ToNotificationResponseList(rows []model.NotificationModel) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToNotificationResponse(r))
	}
	return out
}
