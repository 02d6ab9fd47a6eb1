package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
)

type TopicModel struct {
	TopicID           uuid.UUID             `gorm:"column:topic_id;type:uuid;primaryKey" json:"topic_id"`
	TopicName         string                `gorm:"column:topic_name;type:varchar(200);not null" json:"topic_name"`
	TopicDescription  string                `gorm:"column:topic_description;type:text" json:"topic_description"`
	TopicSupervisorID uuid.UUID             `gorm:"column:topic_supervisor_id;type:uuid;not null;index" json:"topic_supervisor_id"`
	TopicStatus       constants.TopicStatus `gorm:"column:topic_status;type:varchar(30);not null;index" json:"topic_status"`
	TopicCouncilID    *uuid.UUID            `gorm:"column:topic_council_id;type:uuid" json:"topic_council_id,omitempty"`
	TopicCreatedBy    uuid.UUID             `gorm:"column:topic_created_by;type:uuid;not null" json:"topic_created_by"`
	TopicCreatedAt    time.Time             `gorm:"column:topic_created_at;autoCreateTime" json:"topic_created_at"`
	TopicUpdatedAt    time.Time             `gorm:"column:topic_updated_at;autoUpdateTime" json:"topic_updated_at"`

	Members []TopicMemberModel `gorm:"foreignKey:TopicMemberTopicID;references:TopicID" json:"members,omitempty"`
}

func (TopicModel) TableName() string {
	return "topics"
}

func (t *TopicModel) BeforeCreate(tx *gorm.DB) error {
	if t.TopicID == uuid.Nil {
		t.TopicID = uuid.New()
	}
	return nil
}

// MemberIDs: urutan posisi; elemen pertama adalah ketua tim.
func (t *TopicModel) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(t.Members))
	for _, m := range t.Members {
		if m.TopicMemberPosition >= 0 && m.TopicMemberPosition < len(ids) {
			ids[m.TopicMemberPosition] = m.TopicMemberUserID
		}
	}
	out := ids[:0]
	for _, id := range ids {
		if id != uuid.Nil {
			out = append(out, id)
		}
	}
	return out
}

func (t *TopicModel) LeadID() uuid.UUID {
	ids := t.MemberIDs()
	if len(ids) == 0 {
		return uuid.Nil
	}
	return ids[0]
}

func (t *TopicModel) IsLead(userID uuid.UUID) bool {
	return userID != uuid.Nil && t.LeadID() == userID
}

func (t *TopicModel) IsMember(userID uuid.UUID) bool {
	for _, m := range t.Members {
		if m.TopicMemberUserID == userID {
			return true
		}
	}
	return false
}

func (t *TopicModel) IsSupervisor(userID uuid.UUID) bool {
	return t.TopicSupervisorID == userID
}

// Participants: pembimbing + anggota tim.
func (t *TopicModel) Participants() []uuid.UUID {
	return append([]uuid.UUID{t.TopicSupervisorID}, t.MemberIDs()...)
}

type TopicMemberModel struct {
	TopicMemberID       uuid.UUID `gorm:"column:topic_member_id;type:uuid;primaryKey" json:"-"`
	TopicMemberTopicID  uuid.UUID `gorm:"column:topic_member_topic_id;type:uuid;not null;uniqueIndex:uq_topic_members_topic_user" json:"-"`
	TopicMemberUserID   uuid.UUID `gorm:"column:topic_member_user_id;type:uuid;not null;uniqueIndex:uq_topic_members_topic_user;index" json:"user_id"`
	TopicMemberPosition int       `gorm:"column:topic_member_position;not null" json:"position"`
}

func (TopicMemberModel) TableName() string {
	return "topic_members"
}

func (m *TopicMemberModel) BeforeCreate(tx *gorm.DB) error {
	if m.TopicMemberID == uuid.Nil {
		m.TopicMemberID = uuid.New()
	}
	return nil
}
