package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"thesis_backend/internals/features/thesis/discussions/model"
)

// EnsureDiscussion: INSERT … ON CONFLICT DO NOTHING pada discussion_topic_id.
func EnsureDiscussion(ctx context.Context, db *gorm.DB, topicID uuid.UUID) error {
	d := model.DiscussionModel{DiscussionTopicID: topicID}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "discussion_topic_id"}}, DoNothing: true}).
		Create(&d).Error
}

func FindByTopic(ctx context.Context, db *gorm.DB, topicID uuid.UUID) (*model.DiscussionModel, error) {
	var d model.DiscussionModel
	if err := db.WithContext(ctx).First(&d, "discussion_topic_id = ?", topicID).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func FindByTopics(ctx context.Context, db *gorm.DB, topicIDs []uuid.UUID) ([]model.DiscussionModel, error) {
	var rows []model.DiscussionModel
	if len(topicIDs) == 0 {
		return rows, nil
	}
	err := db.WithContext(ctx).
		Where("discussion_topic_id IN ?", topicIDs).
		Order("discussion_created_at DESC").
		Find(&rows).Error
	return rows, err
}

func CreateMessage(ctx context.Context, db *gorm.DB, m *model.DiscussionMessageModel) error {
	return db.WithContext(ctx).Create(m).Error
}

func FindMessageByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.DiscussionMessageModel, error) {
	var m model.DiscussionMessageModel
	if err := db.WithContext(ctx).First(&m, "discussion_message_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func DeleteMessage(ctx context.Context, db *gorm.DB, id, authorID uuid.UUID) (bool, error) {
	res := db.WithContext(ctx).
		Where("discussion_message_id = ? AND discussion_message_user_id = ?", id, authorID).
		Delete(&model.DiscussionMessageModel{})
	return res.RowsAffected > 0, res.Error
}

// ListMessages: urutan lama → baru.
func ListMessages(ctx context.Context, db *gorm.DB, discussionID uuid.UUID, offset, limit int) ([]model.DiscussionMessageModel, int64, error) {
	q := db.WithContext(ctx).Model(&model.DiscussionMessageModel{}).Where("discussion_message_discussion_id = ?", discussionID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.DiscussionMessageModel
	q = db.WithContext(ctx).
		Where("discussion_message_discussion_id = ?", discussionID).
		Order("discussion_message_created_at ASC, discussion_message_id ASC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
