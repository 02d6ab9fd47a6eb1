package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
)

type CouncilModel struct {
	CouncilID               uuid.UUID               `gorm:"column:council_id;type:uuid;primaryKey" json:"council_id"`
	CouncilTopicID          uuid.UUID               `gorm:"column:council_topic_id;type:uuid;not null;index" json:"council_topic_id"`
	CouncilChairmanID       uuid.UUID               `gorm:"column:council_chairman_id;type:uuid;not null" json:"council_chairman_id"`
	CouncilSecretaryID      uuid.UUID               `gorm:"column:council_secretary_id;type:uuid;not null" json:"council_secretary_id"`
	CouncilStatus           constants.CouncilStatus `gorm:"column:council_status;type:varchar(30);not null;index" json:"council_status"`
	CouncilApprovalDocument datatypes.JSON          `gorm:"column:council_approval_document" json:"council_approval_document,omitempty"`
	CouncilRejectReason     *string                 `gorm:"column:council_reject_reason;type:text" json:"council_reject_reason,omitempty"`
	CouncilCreatedBy        uuid.UUID               `gorm:"column:council_created_by;type:uuid;not null;index" json:"council_created_by"`
	CouncilCreatedAt        time.Time               `gorm:"column:council_created_at;autoCreateTime" json:"council_created_at"`
	CouncilUpdatedAt        time.Time               `gorm:"column:council_updated_at;autoUpdateTime" json:"council_updated_at"`

	Members []CouncilMemberModel          `gorm:"foreignKey:CouncilMemberCouncilID;references:CouncilID" json:"members,omitempty"`
	Scores  []CouncilScoreModel           `gorm:"foreignKey:CouncilScoreCouncilID;references:CouncilID" json:"scores,omitempty"`
	History []CouncilApprovalHistoryModel `gorm:"foreignKey:CouncilHistoryCouncilID;references:CouncilID" json:"history,omitempty"`
}

func (CouncilModel) TableName() string {
	return "councils"
}

func (c *CouncilModel) BeforeCreate(tx *gorm.DB) error {
	if c.CouncilID == uuid.Nil {
		c.CouncilID = uuid.New()
	}
	return nil
}

// ApprovalDocument: referensi file keputusan di object storage.
type ApprovalDocument struct {
	URL        string `json:"url"`
	ExternalID string `json:"external_id"`
}

func (d ApprovalDocument) JSON() datatypes.JSON {
	b, _ := json.Marshal(d)
	return datatypes.JSON(b)
}

// Document mengembalikan nil jika belum ada dokumen.
func (c *CouncilModel) Document() *ApprovalDocument {
	if len(c.CouncilApprovalDocument) == 0 || string(c.CouncilApprovalDocument) == "null" {
		return nil
	}
	var d ApprovalDocument
	if err := json.Unmarshal(c.CouncilApprovalDocument, &d); err != nil || d.URL == "" {
		return nil
	}
	return &d
}

func (c *CouncilModel) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Members))
	for _, m := range c.Members {
		ids = append(ids, m.CouncilMemberUserID)
	}
	return ids
}

// Graders: ketua, sekretaris, lalu anggota. Semuanya wajib memberi nilai.
func (c *CouncilModel) Graders() []uuid.UUID {
	return append([]uuid.UUID{c.CouncilChairmanID, c.CouncilSecretaryID}, c.MemberIDs()...)
}

func (c *CouncilModel) IsGrader(userID uuid.UUID) bool {
	for _, id := range c.Graders() {
		if id == userID {
			return true
		}
	}
	return false
}

// RequiredScores = 2 + jumlah anggota.
func (c *CouncilModel) RequiredScores() int {
	return 2 + len(c.Members)
}

func (c *CouncilModel) HasScoreFrom(userID uuid.UUID) bool {
	for _, s := range c.Scores {
		if s.CouncilScoreUserID == userID {
			return true
		}
	}
	return false
}

func (c *CouncilModel) AverageScore() float64 {
	if len(c.Scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range c.Scores {
		sum += s.CouncilScoreValue
	}
	return float64(sum) / float64(len(c.Scores))
}

type CouncilMemberModel struct {
	CouncilMemberID        uuid.UUID `gorm:"column:council_member_id;type:uuid;primaryKey" json:"-"`
	CouncilMemberCouncilID uuid.UUID `gorm:"column:council_member_council_id;type:uuid;not null;uniqueIndex:uq_council_members_council_user" json:"-"`
	CouncilMemberUserID    uuid.UUID `gorm:"column:council_member_user_id;type:uuid;not null;uniqueIndex:uq_council_members_council_user;index" json:"user_id"`
	CouncilMemberPosition  int       `gorm:"column:council_member_position;not null" json:"position"`
}

func (CouncilMemberModel) TableName() string {
	return "council_members"
}

func (m *CouncilMemberModel) BeforeCreate(tx *gorm.DB) error {
	if m.CouncilMemberID == uuid.Nil {
		m.CouncilMemberID = uuid.New()
	}
	return nil
}

type CouncilScoreModel struct {
	CouncilScoreID        uuid.UUID `gorm:"column:council_score_id;type:uuid;primaryKey" json:"-"`
	CouncilScoreCouncilID uuid.UUID `gorm:"column:council_score_council_id;type:uuid;not null;uniqueIndex:uq_council_scores_council_user" json:"-"`
	CouncilScoreUserID    uuid.UUID `gorm:"column:council_score_user_id;type:uuid;not null;uniqueIndex:uq_council_scores_council_user" json:"user_id"`
	CouncilScoreValue     int       `gorm:"column:council_score_value;not null" json:"score"`
	CouncilScoreComment   string    `gorm:"column:council_score_comment;type:text" json:"comment"`
	CouncilScoreScoredAt  time.Time `gorm:"column:council_score_scored_at;autoCreateTime" json:"scored_at"`
}

func (CouncilScoreModel) TableName() string {
	return "council_scores"
}

func (s *CouncilScoreModel) BeforeCreate(tx *gorm.DB) error {
	if s.CouncilScoreID == uuid.Nil {
		s.CouncilScoreID = uuid.New()
	}
	return nil
}

type CouncilApprovalHistoryModel struct {
	CouncilHistoryID        uuid.UUID `gorm:"column:council_history_id;type:uuid;primaryKey" json:"-"`
	CouncilHistoryCouncilID uuid.UUID `gorm:"column:council_history_council_id;type:uuid;not null;index" json:"-"`
	CouncilHistoryActorID   uuid.UUID `gorm:"column:council_history_actor_id;type:uuid;not null" json:"actor_id"`
	CouncilHistoryAction    string    `gorm:"column:council_history_action;type:varchar(20);not null" json:"action"`
	CouncilHistoryReason    *string   `gorm:"column:council_history_reason;type:text" json:"reason,omitempty"`
	CouncilHistoryCreatedAt time.Time `gorm:"column:council_history_created_at;autoCreateTime" json:"created_at"`
}

func (CouncilApprovalHistoryModel) TableName() string {
	return "council_approval_histories"
}

func (h *CouncilApprovalHistoryModel) BeforeCreate(tx *gorm.DB) error {
	if h.CouncilHistoryID == uuid.Nil {
		h.CouncilHistoryID = uuid.New()
	}
	return nil
}
