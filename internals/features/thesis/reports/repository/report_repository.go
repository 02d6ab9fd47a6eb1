package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/reports/model"
	topicModel "thesis_backend/internals/features/thesis/topics/model"
)

func CreateReport(ctx context.Context, db *gorm.DB, r *model.ReportModel) error {
	return db.WithContext(ctx).Create(r).Error
}

func FindReportByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.ReportModel, error) {
	var r model.ReportModel
	if err := db.WithContext(ctx).First(&r, "report_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// Guard: kondisi compare-and-set untuk UpdateIf.
type Guard struct {
	Status   constants.ReportStatus
	Deleted  *bool
	Editable *bool
}

func Bool(b bool) *bool { return &b }

// UpdateIf menerapkan updates hanya bila baris masih cocok guard. false = sudah berubah.
func UpdateIf(ctx context.Context, db *gorm.DB, id uuid.UUID, g Guard, updates map[string]any) (bool, error) {
	q := db.WithContext(ctx).Model(&model.ReportModel{}).Where("report_id = ?", id)
	if g.Status != "" {
		q = q.Where("report_status = ?", string(g.Status))
	}
	if g.Deleted != nil {
		q = q.Where("report_is_deleted = ?", *g.Deleted)
	}
	if g.Editable != nil {
		q = q.Where("report_is_editable = ?", *g.Editable)
	}
	res := q.Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// MarkSubmittedToAdmin: satu batch untuk semua laporan approved yang belum dikirim.
func MarkSubmittedToAdmin(ctx context.Context, db *gorm.DB, topicID uuid.UUID, updates map[string]any) (int64, error) {
	res := db.WithContext(ctx).Model(&model.ReportModel{}).
		Where("report_topic_id = ? AND report_status = ? AND report_is_deleted = ? AND report_submitted_to_admin = ?",
			topicID, string(constants.ReportApproved), false, false).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func CountApproved(ctx context.Context, db *gorm.DB, topicID uuid.UUID) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.ReportModel{}).
		Where("report_topic_id = ? AND report_status = ? AND report_is_deleted = ?",
			topicID, string(constants.ReportApproved), false).
		Count(&n).Error
	return n, err
}

// HasAdminSubmitted: ada laporan approved + submitted + tidak dihapus.
func HasAdminSubmitted(ctx context.Context, db *gorm.DB, topicID uuid.UUID) (bool, error) {
	var n int64
	err := adminVisible(db.WithContext(ctx).Model(&model.ReportModel{})).
		Where("report_topic_id = ?", topicID).
		Count(&n).Error
	return n > 0, err
}

func adminVisible(db *gorm.DB) *gorm.DB {
	return db.Where("report_status = ? AND report_submitted_to_admin = ? AND report_is_deleted = ?",
		string(constants.ReportApproved), true, false)
}

// AdminSubmittedByTopics mengelompokkan laporan approved+submitted per topik.
func AdminSubmittedByTopics(ctx context.Context, db *gorm.DB, topicIDs []uuid.UUID) (map[uuid.UUID][]model.ReportModel, error) {
	out := make(map[uuid.UUID][]model.ReportModel, len(topicIDs))
	if len(topicIDs) == 0 {
		return out, nil
	}
	var rows []model.ReportModel
	err := adminVisible(db.WithContext(ctx).Model(&model.ReportModel{})).
		Where("report_topic_id IN ?", topicIDs).
		Order("report_created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ReportTopicID] = append(out[r.ReportTopicID], r)
	}
	return out, nil
}

type ListFilter struct {
	StudentID     uuid.UUID
	SupervisorID  uuid.UUID
	TopicID       uuid.UUID
	Deleted       bool
	SubmittedOnly bool
}

func (f ListFilter) apply(db *gorm.DB) *gorm.DB {
	db = db.Where("report_is_deleted = ?", f.Deleted)
	if f.StudentID != uuid.Nil {
		db = db.Where("report_student_id = ?", f.StudentID)
	}
	if f.TopicID != uuid.Nil {
		db = db.Where("report_topic_id = ?", f.TopicID)
	}
	if f.SupervisorID != uuid.Nil {
		db = db.Where("report_topic_id IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Model(&topicModel.TopicModel{}).
			Select("topic_id").
			Where("topic_supervisor_id = ?", f.SupervisorID))
	}
	if f.SubmittedOnly {
		db = db.Where("report_submitted_to_admin = ?", true)
	}
	return db
}

func ListReports(ctx context.Context, db *gorm.DB, f ListFilter, offset, limit int) ([]model.ReportModel, int64, error) {
	var total int64
	if err := f.apply(db.WithContext(ctx).Model(&model.ReportModel{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.ReportModel
	q := f.apply(db.WithContext(ctx).Model(&model.ReportModel{})).
		Order("report_created_at DESC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func CountReports(ctx context.Context, db *gorm.DB, f ListFilter) (int64, error) {
	var n int64
	err := f.apply(db.WithContext(ctx).Model(&model.ReportModel{})).Count(&n).Error
	return n, err
}
