package dto

import (
	"time"

	"github.com/google/uuid"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/discussions/model"
	"thesis_backend/internals/features/thesis/discussions/service"
)

type PostMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type MessageResponse struct {
	MessageID    uuid.UUID `json:"message_id"`
	DiscussionID uuid.UUID `json:"discussion_id"`
	UserID       uuid.UUID `json:"user_id"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToMessageResponse(m model.DiscussionMessageModel) MessageResponse {
	return MessageResponse{
		MessageID:    m.DiscussionMessageID,
		DiscussionID: m.DiscussionMessageDiscussionID,
		UserID:       m.DiscussionMessageUserID,
		Text:         m.DiscussionMessageText,
		CreatedAt:    m.DiscussionMessageCreatedAt,
	}
}

type DiscussionResponse struct {
	DiscussionID  uuid.UUID             `json:"discussion_id"`
	TopicID       uuid.UUID             `json:"topic_id"`
	TopicName     string                `json:"topic_name,omitempty"`
	TopicStatus   constants.TopicStatus `json:"topic_status,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	Messages      []MessageResponse     `json:"messages"`
	TotalMessages int64                 `json:"total_messages"`
}

func ToDiscussionResponse(d model.DiscussionModel) DiscussionResponse {
	return DiscussionResponse{
		DiscussionID: d.DiscussionID,
		TopicID:      d.DiscussionTopicID,
		CreatedAt:    d.DiscussionCreatedAt,
		Messages:     []MessageResponse{},
	}
}

func ToThreadResponseList(threads []service.Thread) []DiscussionResponse {
	out := make([]DiscussionResponse, 0, len(threads))
	for _, th := range threads {
		r := ToDiscussionResponse(th.Discussion)
		r.TopicName = th.Topic.TopicName
		r.TopicStatus = th.Topic.TopicStatus
		r.TotalMessages = th.Total
		for _, m := range th.Messages {
			r.Messages = append(r.Messages, ToMessageResponse(m))
		}
		out = append(out, r)
	}
	return out
}
