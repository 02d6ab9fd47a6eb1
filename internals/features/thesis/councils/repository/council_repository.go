package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/councils/model"
)

func preloadAll(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Members", func(tx *gorm.DB) *gorm.DB { return tx.Order("council_member_position ASC") }).
		Preload("Scores", func(tx *gorm.DB) *gorm.DB { return tx.Order("council_score_scored_at ASC") }).
		Preload("History", func(tx *gorm.DB) *gorm.DB { return tx.Order("council_history_created_at ASC") })
}

func CreateCouncil(ctx context.Context, tx *gorm.DB, c *model.CouncilModel) error {
	return tx.WithContext(ctx).Create(c).Error
}

func FindCouncilByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.CouncilModel, error) {
	var c model.CouncilModel
	if err := preloadAll(db.WithContext(ctx)).First(&c, "council_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// LockCouncil mengunci baris council (FOR UPDATE) di dalam transaksi.
func LockCouncil(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.CouncilModel, error) {
	var c model.CouncilModel
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, "council_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// LatestForTopic: council terbaru yang belum dihapus untuk topik.
func LatestForTopic(ctx context.Context, db *gorm.DB, topicID uuid.UUID) (*model.CouncilModel, error) {
	var c model.CouncilModel
	err := preloadAll(db.WithContext(ctx)).
		Where("council_topic_id = ? AND council_status <> ?", topicID, string(constants.CouncilDeleted)).
		Order("council_created_at DESC").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func HasOpenCouncil(ctx context.Context, db *gorm.DB, topicID uuid.UUID) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.CouncilModel{}).
		Where("council_topic_id = ? AND council_status IN ?", topicID, constants.OpenCouncilStatusStrings()).
		Count(&n).Error
	return n > 0, err
}

// UpdateIfStatus: compare-and-set pada status; false berarti status sudah berubah.
func UpdateIfStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, from constants.CouncilStatus, updates map[string]any) (bool, error) {
	res := db.WithContext(ctx).Model(&model.CouncilModel{}).
		Where("council_id = ? AND council_status = ?", id, string(from)).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func ReplaceMembers(ctx context.Context, tx *gorm.DB, councilID uuid.UUID, userIDs []uuid.UUID) error {
	if err := tx.WithContext(ctx).
		Where("council_member_council_id = ?", councilID).
		Delete(&model.CouncilMemberModel{}).Error; err != nil {
		return err
	}
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]model.CouncilMemberModel, 0, len(userIDs))
	for i, id := range userIDs {
		rows = append(rows, model.CouncilMemberModel{CouncilMemberCouncilID: councilID, CouncilMemberUserID: id, CouncilMemberPosition: i})
	}
	return tx.WithContext(ctx).Create(&rows).Error
}

func AddHistory(ctx context.Context, tx *gorm.DB, councilID, actorID uuid.UUID, action string, reason *string, at time.Time) error {
	return tx.WithContext(ctx).Create(&model.CouncilApprovalHistoryModel{
		CouncilHistoryCouncilID: councilID,
		CouncilHistoryActorID:   actorID,
		CouncilHistoryAction:    action,
		CouncilHistoryReason:    reason,
		CouncilHistoryCreatedAt: at,
	}).Error
}

func CreateScore(ctx context.Context, tx *gorm.DB, s *model.CouncilScoreModel) error {
	return tx.WithContext(ctx).Create(s).Error
}

func CountScores(ctx context.Context, tx *gorm.DB, councilID uuid.UUID) (int64, error) {
	var n int64
	err := tx.WithContext(ctx).Model(&model.CouncilScoreModel{}).
		Where("council_score_council_id = ?", councilID).
		Count(&n).Error
	return n, err
}

type ListFilter struct {
	CreatedBy      uuid.UUID
	GraderID       uuid.UUID
	Statuses       []constants.CouncilStatus
	IncludeDeleted bool // hanya berlaku bila Statuses kosong
}

func (f ListFilter) apply(db *gorm.DB) *gorm.DB {
	if f.CreatedBy != uuid.Nil {
		db = db.Where("council_created_by = ?", f.CreatedBy)
	}
	if f.GraderID != uuid.Nil {
		sub := db.Session(&gorm.Session{NewDB: true}).
			Model(&model.CouncilMemberModel{}).
			Select("council_member_council_id").
			Where("council_member_user_id = ?", f.GraderID)
		db = db.Where("(council_chairman_id = ? OR council_secretary_id = ? OR council_id IN (?))", f.GraderID, f.GraderID, sub)
	}
	switch {
	case len(f.Statuses) > 0:
		ss := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			ss = append(ss, string(s))
		}
		db = db.Where("council_status IN ?", ss)
	case !f.IncludeDeleted:
		db = db.Where("council_status <> ?", string(constants.CouncilDeleted))
	}
	return db
}

func ListCouncils(ctx context.Context, db *gorm.DB, f ListFilter, offset, limit int) ([]model.CouncilModel, int64, error) {
	var total int64
	if err := f.apply(db.WithContext(ctx).Model(&model.CouncilModel{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.CouncilModel
	q := preloadAll(f.apply(db.WithContext(ctx).Model(&model.CouncilModel{}))).
		Order("council_created_at DESC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountByStatus untuk dashboard admin.
func CountByStatus(ctx context.Context, db *gorm.DB) (map[constants.CouncilStatus]int64, error) {
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := db.WithContext(ctx).Model(&model.CouncilModel{}).
		Select("council_status AS status, COUNT(*) AS n").
		Group("council_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[constants.CouncilStatus]int64, len(rows))
	for _, r := range rows {
		out[constants.CouncilStatus(r.Status)] = r.N
	}
	return out, nil
}
