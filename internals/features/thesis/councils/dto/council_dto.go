package dto

import (
	"time"

	"github.com/google/uuid"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/councils/model"
	reportDTO "thesis_backend/internals/features/thesis/reports/dto"
	reportModel "thesis_backend/internals/features/thesis/reports/model"
	userDTO "thesis_backend/internals/features/users/user/dto"
	userModel "thesis_backend/internals/features/users/user/model"
)

const MaxCouncilMembers = 5

// CreateCouncilRequest: id diutamakan, nama di-resolve ke teacher.
type CreateCouncilRequest struct {
	TopicID       string   `json:"topic_id" validate:"required,uuid"`
	ChairmanID    string   `json:"chairman_id" validate:"omitempty,uuid"`
	ChairmanName  string   `json:"chairman_name" validate:"omitempty,max=100"`
	SecretaryID   string   `json:"secretary_id" validate:"omitempty,uuid"`
	SecretaryName string   `json:"secretary_name" validate:"omitempty,max=100"`
	MemberIDs     []string `json:"member_ids" validate:"omitempty,max=5,dive,uuid"`
	MemberNames   []string `json:"member_names" validate:"omitempty,max=5,dive,max=100"`
}

type CouncilInput struct {
	TopicID     uuid.UUID   `validate:"required"`
	ChairmanID  uuid.UUID   `validate:"required"`
	SecretaryID uuid.UUID   `validate:"required"`
	MemberIDs   []uuid.UUID `validate:"max=5"`
}

// UpdateCouncilRequest: field kosong berarti tidak diubah.
type UpdateCouncilRequest struct {
	ChairmanID  string    `json:"chairman_id" validate:"omitempty,uuid"`
	SecretaryID string    `json:"secretary_id" validate:"omitempty,uuid"`
	MemberIDs   *[]string `json:"member_ids" validate:"omitempty,max=5,dive,uuid"`
	Status      string    `json:"status" validate:"omitempty,oneof=pending-creation uniadmin-approved uniadmin-rejected completed deleted"`
}

type UpdateCouncilInput struct {
	ChairmanID  *uuid.UUID
	SecretaryID *uuid.UUID
	MemberIDs   *[]uuid.UUID
	Status      *constants.CouncilStatus
}

type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

type ScoreRequest struct {
	Score   *int   `json:"score" validate:"required,min=0,max=100"`
	Comment string `json:"comment" validate:"max=2000"`
}

type ListCouncilsQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=pending-creation uniadmin-approved uniadmin-rejected completed deleted"`
}

type ScoreResponse struct {
	Grader   userDTO.UserBrief `json:"grader"`
	Score    int               `json:"score"`
	Comment  string            `json:"comment"`
	ScoredAt time.Time         `json:"scored_at"`
}

type HistoryResponse struct {
	Actor     userDTO.UserBrief `json:"actor"`
	Action    string            `json:"action"`
	Reason    *string           `json:"reason,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type CouncilResponse struct {
	CouncilID           uuid.UUID               `json:"council_id"`
	CouncilTopicID      uuid.UUID               `json:"council_topic_id"`
	CouncilStatus       constants.CouncilStatus `json:"council_status"`
	IsOpen              bool                    `json:"is_open"`
	Editable            bool                    `json:"editable"`
	Chairman            userDTO.UserBrief       `json:"chairman"`
	Secretary           userDTO.UserBrief       `json:"secretary"`
	Members             []userDTO.UserBrief     `json:"members"`
	Scores              []ScoreResponse         `json:"scores"`
	AverageScore        float64                 `json:"average_score"`
	RequiredScores      int                     `json:"required_scores"`
	ApprovalDocumentURL string                  `json:"approval_document_url,omitempty"`
	RejectReason        *string                 `json:"reject_reason,omitempty"`
	History             []HistoryResponse       `json:"history"`
	CreatedBy           uuid.UUID               `json:"created_by"`
	CreatedAt           time.Time               `json:"created_at"`
	UpdatedAt           time.Time               `json:"updated_at"`
}

// PublicCouncilResponse: council selesai beserta laporan yang sudah dikirim ke admin.
type PublicCouncilResponse struct {
	CouncilResponse
	TopicName string                     `json:"topic_name"`
	Reports   []reportDTO.ReportResponse `json:"reports"`
}

func UserIDs(councils []model.CouncilModel) []uuid.UUID {
	var ids []uuid.UUID
	for i := range councils {
		ids = append(ids, councils[i].Graders()...)
		for _, h := range councils[i].History {
			ids = append(ids, h.CouncilHistoryActorID)
		}
	}
	return ids
}

func brief(id uuid.UUID, users map[uuid.UUID]userModel.UserModel) userDTO.UserBrief {
	if u, ok := users[id]; ok {
		return userDTO.ToUserBrief(u)
	}
	return userDTO.UserBrief{ID: id}
}

func ToCouncilResponse(c model.CouncilModel, users map[uuid.UUID]userModel.UserModel) CouncilResponse {
	out := CouncilResponse{
		CouncilID:      c.CouncilID,
		CouncilTopicID: c.CouncilTopicID,
		CouncilStatus:  c.CouncilStatus,
		IsOpen:         c.CouncilStatus.IsOpen(),
		Editable:       c.CouncilStatus.Editable(),
		Chairman:       brief(c.CouncilChairmanID, users),
		Secretary:      brief(c.CouncilSecretaryID, users),
		Members:        make([]userDTO.UserBrief, 0, len(c.Members)),
		Scores:         make([]ScoreResponse, 0, len(c.Scores)),
		AverageScore:   c.AverageScore(),
		RequiredScores: c.RequiredScores(),
		RejectReason:   c.CouncilRejectReason,
		History:        make([]HistoryResponse, 0, len(c.History)),
		CreatedBy:      c.CouncilCreatedBy,
		CreatedAt:      c.CouncilCreatedAt,
		UpdatedAt:      c.CouncilUpdatedAt,
	}
	for _, id := range c.MemberIDs() {
		out.Members = append(out.Members, brief(id, users))
	}
	for _, s := range c.Scores {
		out.Scores = append(out.Scores, ScoreResponse{
			Grader:   brief(s.CouncilScoreUserID, users),
			Score:    s.CouncilScoreValue,
			Comment:  s.CouncilScoreComment,
			ScoredAt: s.CouncilScoreScoredAt,
		})
	}
	for _, h := range c.History {
		out.History = append(out.History, HistoryResponse{
			Actor:     brief(h.CouncilHistoryActorID, users),
			Action:    h.CouncilHistoryAction,
			Reason:    h.CouncilHistoryReason,
			CreatedAt: h.CouncilHistoryCreatedAt,
		})
	}
	if doc := c.Document(); doc != nil {
		out.ApprovalDocumentURL = doc.URL
	}
	return out
}

func ToCouncilResponseList(councils []model.CouncilModel, users map[uuid.UUID]userModel.UserModel) []CouncilResponse {
	out := make([]CouncilResponse, 0, len(councils))
	for _, c := range councils {
		out = append(out, ToCouncilResponse(c, users))
	}
	return out
}

func ToPublicCouncilResponse(c model.CouncilModel, topicName string, reports []reportModel.ReportModel, users map[uuid.UUID]userModel.UserModel) PublicCouncilResponse {
	return PublicCouncilResponse{
		CouncilResponse: ToCouncilResponse(c, users),
		TopicName:       topicName,
		Reports:         reportDTO.ToReportResponseList(reports),
	}
}
