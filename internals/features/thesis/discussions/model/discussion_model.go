package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DiscussionModel struct {
	DiscussionID        uuid.UUID `gorm:"column:discussion_id;type:uuid;primaryKey" json:"discussion_id"`
	DiscussionTopicID   uuid.UUID `gorm:"column:discussion_topic_id;type:uuid;not null;uniqueIndex" json:"discussion_topic_id"`
	DiscussionCreatedAt time.Time `gorm:"column:discussion_created_at;autoCreateTime" json:"discussion_created_at"`
}

func (DiscussionModel) TableName() string {
	return "discussions"
}

func (d *DiscussionModel) BeforeCreate(tx *gorm.DB) error {
	if d.DiscussionID == uuid.Nil {
		d.DiscussionID = uuid.New()
	}
	return nil
}

type DiscussionMessageModel struct {
	DiscussionMessageID           uuid.UUID `gorm:"column:discussion_message_id;type:uuid;primaryKey" json:"discussion_message_id"`
	DiscussionMessageDiscussionID uuid.UUID `gorm:"column:discussion_message_discussion_id;type:uuid;not null;index" json:"discussion_message_discussion_id"`
	DiscussionMessageUserID       uuid.UUID `gorm:"column:discussion_message_user_id;type:uuid;not null" json:"discussion_message_user_id"`
	DiscussionMessageText         string    `gorm:"column:discussion_message_text;type:text;not null" json:"discussion_message_text"`
	DiscussionMessageCreatedAt    time.Time `gorm:"column:discussion_message_created_at;autoCreateTime;index" json:"discussion_message_created_at"`
}

func (DiscussionMessageModel) TableName() string {
	return "discussion_messages"
}

func (m *DiscussionMessageModel) BeforeCreate(tx *gorm.DB) error {
	if m.DiscussionMessageID == uuid.Nil {
		m.DiscussionMessageID = uuid.New()
	}
	return nil
}
