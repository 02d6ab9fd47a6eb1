package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/topics/model"
)

func preloadMembers(db *gorm.DB) *gorm.DB {
	return db.Preload("Members", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("topic_member_position ASC")
	})
}

func CreateTopic(ctx context.Context, tx *gorm.DB, topic *model.TopicModel) error {
	return tx.WithContext(ctx).Create(topic).Error
}

func FindTopicByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.TopicModel, error) {
	var topic model.TopicModel
	if err := preloadMembers(db.WithContext(ctx)).First(&topic, "topic_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func FindTopicsByIDs(ctx context.Context, db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]model.TopicModel, error) {
	out := make(map[uuid.UUID]model.TopicModel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var topics []model.TopicModel
	if err := preloadMembers(db.WithContext(ctx)).Where("topic_id IN ?", ids).Find(&topics).Error; err != nil {
		return nil, err
	}
	for _, t := range topics {
		out[t.TopicID] = t
	}
	return out, nil
}

// ActiveMemberIDs: user (dari daftar) yang sudah tergabung di topik aktif.
func ActiveMemberIDs(ctx context.Context, db *gorm.DB, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if len(userIDs) == 0 {
		return ids, nil
	}
	err := db.WithContext(ctx).
		Table("topic_members AS m").
		Joins("JOIN topics t ON t.topic_id = m.topic_member_topic_id").
		Where("m.topic_member_user_id IN ? AND t.topic_status IN ?", userIDs, constants.ActiveTopicStatusStrings()).
		Distinct().
		Pluck("m.topic_member_user_id", &ids).Error
	return ids, err
}

// TransitionStatus: compare-and-set; false berarti status sudah berubah lebih dulu.
func TransitionStatus(ctx context.Context, db *gorm.DB, topicID uuid.UUID, from, to constants.TopicStatus, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Model(&model.TopicModel{}).
		Where("topic_id = ? AND topic_status = ?", topicID, string(from)).
		Updates(map[string]any{"topic_status": string(to), "topic_updated_at": now})
	return res.RowsAffected > 0, res.Error
}

func SetCouncil(ctx context.Context, tx *gorm.DB, topicID, councilID uuid.UUID, now time.Time) error {
	return tx.WithContext(ctx).Model(&model.TopicModel{}).
		Where("topic_id = ?", topicID).
		Updates(map[string]any{"topic_council_id": councilID, "topic_updated_at": now}).Error
}

// ClearCouncilIf mengosongkan topic.council hanya bila masih menunjuk ke council tsb.
func ClearCouncilIf(ctx context.Context, tx *gorm.DB, topicID, councilID uuid.UUID, now time.Time) error {
	return tx.WithContext(ctx).Model(&model.TopicModel{}).
		Where("topic_id = ? AND topic_council_id = ?", topicID, councilID).
		Updates(map[string]any{"topic_council_id": nil, "topic_updated_at": now}).Error
}

type ListFilter struct {
	SupervisorID uuid.UUID
	MemberID     uuid.UUID
	Statuses     []constants.TopicStatus
}

func (f ListFilter) apply(db *gorm.DB) *gorm.DB {
	if f.SupervisorID != uuid.Nil {
		db = db.Where("topic_supervisor_id = ?", f.SupervisorID)
	}
	if f.MemberID != uuid.Nil {
		db = db.Where("topic_id IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Model(&model.TopicMemberModel{}).
			Select("topic_member_topic_id").
			Where("topic_member_user_id = ?", f.MemberID))
	}
	if len(f.Statuses) > 0 {
		ss := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			ss = append(ss, string(s))
		}
		db = db.Where("topic_status IN ?", ss)
	}
	return db
}

func ListTopics(ctx context.Context, db *gorm.DB, f ListFilter, offset, limit int) ([]model.TopicModel, int64, error) {
	var total int64
	if err := f.apply(db.WithContext(ctx).Model(&model.TopicModel{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var topics []model.TopicModel
	q := preloadMembers(f.apply(db.WithContext(ctx).Model(&model.TopicModel{}))).
		Order("topic_created_at DESC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&topics).Error; err != nil {
		return nil, 0, err
	}
	return topics, total, nil
}

func CountTopics(ctx context.Context, db *gorm.DB, f ListFilter) (int64, error) {
	var n int64
	err := f.apply(db.WithContext(ctx).Model(&model.TopicModel{})).Count(&n).Error
	return n, err
}

// CountDistinctMembers: jumlah mahasiswa berbeda di topik yang cocok filter.
func CountDistinctMembers(ctx context.Context, db *gorm.DB, f ListFilter) (int64, error) {
	var n int64
	sub := f.apply(db.Session(&gorm.Session{NewDB: true}).WithContext(ctx).Model(&model.TopicModel{})).Select("topic_id")
	err := db.WithContext(ctx).Model(&model.TopicMemberModel{}).
		Where("topic_member_topic_id IN (?)", sub).
		Distinct("topic_member_user_id").
		Count(&n).Error
	return n, err
}
