package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
)

type ReportModel struct {
	ReportID               uuid.UUID              `gorm:"column:report_id;type:uuid;primaryKey" json:"report_id"`
	ReportTopicID          uuid.UUID              `gorm:"column:report_topic_id;type:uuid;not null;index" json:"report_topic_id"`
	ReportStudentID        uuid.UUID              `gorm:"column:report_student_id;type:uuid;not null;index" json:"report_student_id"`
	ReportFileURL          string                 `gorm:"column:report_file_url;type:text;not null" json:"report_file_url"`
	ReportFileExternalID   string                 `gorm:"column:report_file_external_id;type:text;not null" json:"-"`
	ReportFileName         string                 `gorm:"column:report_file_name;type:varchar(255)" json:"report_file_name"`
	ReportFileMIME         string                 `gorm:"column:report_file_mime;type:varchar(120)" json:"report_file_mime"`
	ReportContent          string                 `gorm:"column:report_content;type:text;not null" json:"report_content"`
	ReportPeriod           string                 `gorm:"column:report_period;type:varchar(100);not null" json:"report_period"`
	ReportStatus           constants.ReportStatus `gorm:"column:report_status;type:varchar(20);not null;index" json:"report_status"`
	ReportIsEditable       bool                   `gorm:"column:report_is_editable;not null" json:"report_is_editable"`
	ReportIsDeleted        bool                   `gorm:"column:report_is_deleted;not null;index" json:"report_is_deleted"`
	ReportSubmittedToAdmin bool                   `gorm:"column:report_submitted_to_admin;not null" json:"report_submitted_to_admin"`
	ReportReviewedBy       *uuid.UUID             `gorm:"column:report_reviewed_by;type:uuid" json:"report_reviewed_by,omitempty"`
	ReportReviewedAt       *time.Time             `gorm:"column:report_reviewed_at" json:"report_reviewed_at,omitempty"`
	ReportCreatedAt        time.Time              `gorm:"column:report_created_at;autoCreateTime" json:"report_created_at"`
	ReportUpdatedAt        time.Time              `gorm:"column:report_updated_at;autoUpdateTime" json:"report_updated_at"`
}

func (ReportModel) TableName() string {
	return "reports"
}

func (r *ReportModel) BeforeCreate(tx *gorm.DB) error {
	if r.ReportID == uuid.Nil {
		r.ReportID = uuid.New()
	}
	return nil
}
