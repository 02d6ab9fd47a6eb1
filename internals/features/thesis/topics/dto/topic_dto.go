package dto

import (
	"time"

	"github.com/google/uuid"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/topics/model"
	userDTO "thesis_backend/internals/features/users/user/dto"
	userModel "thesis_backend/internals/features/users/user/model"
)

// RegisterTopicRequest: id diutamakan; nama hanya kemudahan dari form lama.
type RegisterTopicRequest struct {
	TopicName        string   `json:"topic_name" validate:"required,max=200"`
	TopicDescription string   `json:"topic_description" validate:"max=5000"`
	SupervisorID     string   `json:"supervisor_id" validate:"omitempty,uuid"`
	SupervisorName   string   `json:"supervisor_name" validate:"omitempty,max=100"`
	MemberIDs        []string `json:"member_ids" validate:"omitempty,max=3,dive,uuid"`
	MemberNames      []string `json:"member_names" validate:"omitempty,max=3,dive,max=100"`
}

// RegisterTopicInput adalah bentuk yang sudah di-resolve ke id.
type RegisterTopicInput struct {
	TopicName        string      `json:"topic_name" validate:"required,max=200"`
	TopicDescription string      `json:"topic_description" validate:"max=5000"`
	SupervisorID     uuid.UUID   `json:"supervisor_id" validate:"required"`
	MemberIDs        []uuid.UUID `json:"member_ids"`
}

type DecisionRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

func (r DecisionRequest) Approve() bool { return r.Action == "approve" }

type ListTopicsQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=pending-teacher teacher-approve teacher-reject pending approved rejected canceled stop-performing stopped"`
}

type TopicResponse struct {
	TopicID          uuid.UUID             `json:"topic_id"`
	TopicName        string                `json:"topic_name"`
	TopicDescription string                `json:"topic_description"`
	TopicStatus      constants.TopicStatus `json:"topic_status"`
	TopicIsActive    bool                  `json:"topic_is_active"`
	TopicIsTerminal  bool                  `json:"topic_is_terminal"`
	Supervisor       userDTO.UserBrief     `json:"supervisor"`
	Members          []userDTO.UserBrief   `json:"members"`
	TopicCouncilID   *uuid.UUID            `json:"topic_council_id,omitempty"`
	TopicCreatedAt   time.Time             `json:"topic_created_at"`
	TopicUpdatedAt   time.Time             `json:"topic_updated_at"`
}

// UserIDs mengumpulkan semua id user yang perlu di-resolve untuk response.
func UserIDs(topics []model.TopicModel) []uuid.UUID {
	var ids []uuid.UUID
	for i := range topics {
		ids = append(ids, topics[i].Participants()...)
	}
	return ids
}

func brief(id uuid.UUID, users map[uuid.UUID]userModel.UserModel) userDTO.UserBrief {
	if u, ok := users[id]; ok {
		return userDTO.ToUserBrief(u)
	}
	return userDTO.UserBrief{ID: id}
}

func ToTopicResponse(t model.TopicModel, users map[uuid.UUID]userModel.UserModel) TopicResponse {
	memberIDs := t.MemberIDs()
	members := make([]userDTO.UserBrief, 0, len(memberIDs))
	for _, id := range memberIDs {
		members = append(members, brief(id, users))
	}
	return TopicResponse{
		TopicID:          t.TopicID,
		TopicName:        t.TopicName,
		TopicDescription: t.TopicDescription,
		TopicStatus:      t.TopicStatus,
		TopicIsActive:    t.TopicStatus.IsActive(),
		TopicIsTerminal:  t.TopicStatus.IsTerminal(),
		Supervisor:       brief(t.TopicSupervisorID, users),
		Members:          members,
		TopicCouncilID:   t.TopicCouncilID,
		TopicCreatedAt:   t.TopicCreatedAt,
		TopicUpdatedAt:   t.TopicUpdatedAt,
	}
}

func ToTopicResponseList(topics []model.TopicModel, users map[uuid.UUID]userModel.UserModel) []TopicResponse {
	out := make([]TopicResponse, 0, len(topics))
	for _, t := range topics {
		out = append(out, ToTopicResponse(t, users))
	}
	return out
}
