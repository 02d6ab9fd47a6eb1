package dto

import (
	"github.com/google/uuid"

	"thesis_backend/internals/constants"
	topicModel "thesis_backend/internals/features/thesis/topics/model"
)

type AdminDashboard struct {
	Topics              int64                             `json:"topics"`
	TopicsAwaitingAdmin int64                             `json:"topics_awaiting_admin"`
	StopRequests        int64                             `json:"stop_requests"`
	ReportsSubmitted    int64                             `json:"reports_submitted"`
	CouncilsByStatus    map[constants.CouncilStatus]int64 `json:"councils_by_status"`
	UnreadNotifications int64                             `json:"unread_notifications"`
}

type TeacherTopic struct {
	TopicID     uuid.UUID             `json:"topic_id"`
	TopicName   string                `json:"topic_name"`
	TopicStatus constants.TopicStatus `json:"topic_status"`
	MemberCount int                   `json:"member_count"`
}

type TeacherDashboard struct {
	ApprovedTopics      int64          `json:"approved_topics"`
	Students            int64          `json:"students"`
	UnreadNotifications int64          `json:"unread_notifications"`
	Topics              []TeacherTopic `json:"topics"`
}

func ToTeacherTopics(rows []topicModel.TopicModel) []TeacherTopic {
	out := make([]TeacherTopic, 0, len(rows))
	for _, t := range rows {
		out = append(out, TeacherTopic{
			TopicID:     t.TopicID,
			TopicName:   t.TopicName,
			TopicStatus: t.TopicStatus,
			MemberCount: len(t.Members),
		})
	}
	return out
}
