package dto

import (
	"time"

	"github.com/google/uuid"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/reports/model"
	"thesis_backend/internals/helpers/oss"
)

// SubmitReportRequest: field form multipart (file dibaca terpisah).
type SubmitReportRequest struct {
	TopicID string `form:"topic_id" json:"topic_id" validate:"required,uuid"`
	Content string `form:"content" json:"content" validate:"required,max=10000"`
	Period  string `form:"period" json:"period" validate:"required,max=100"`
}

type EditReportRequest struct {
	Content string `form:"content" json:"content" validate:"required,max=10000"`
}

type SubmitReportInput struct {
	TopicID uuid.UUID
	Content string `validate:"required,max=10000"`
	Period  string `validate:"required,max=100"`
	File    oss.StoreInput
}

type EditReportInput struct {
	Content string `validate:"required,max=10000"`
	File    *oss.StoreInput
}

type ReviewRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

func (r ReviewRequest) Approve() bool { return r.Action == "approve" }

type ReportResponse struct {
	ReportID               uuid.UUID              `json:"report_id"`
	ReportTopicID          uuid.UUID              `json:"report_topic_id"`
	ReportStudentID        uuid.UUID              `json:"report_student_id"`
	ReportFileURL          string                 `json:"report_file_url"`
	ReportFileName         string                 `json:"report_file_name"`
	ReportFileMIME         string                 `json:"report_file_mime"`
	ReportContent          string                 `json:"report_content"`
	ReportPeriod           string                 `json:"report_period"`
	ReportStatus           constants.ReportStatus `json:"report_status"`
	ReportIsEditable       bool                   `json:"report_is_editable"`
	ReportIsDeleted        bool                   `json:"report_is_deleted"`
	ReportSubmittedToAdmin bool                   `json:"report_submitted_to_admin"`
	ReportReviewedAt       *time.Time             `json:"report_reviewed_at,omitempty"`
	ReportCreatedAt        time.Time              `json:"report_created_at"`
	ReportUpdatedAt        time.Time              `json:"report_updated_at"`
}

func ToReportResponse(r model.ReportModel) ReportResponse {
	return ReportResponse{
		ReportID:               r.ReportID,
		ReportTopicID:          r.ReportTopicID,
		ReportStudentID:        r.ReportStudentID,
		ReportFileURL:          r.ReportFileURL,
		ReportFileName:         r.ReportFileName,
		ReportFileMIME:         r.ReportFileMIME,
		ReportContent:          r.ReportContent,
		ReportPeriod:           r.ReportPeriod,
		ReportStatus:           r.ReportStatus,
		ReportIsEditable:       r.ReportIsEditable,
		ReportIsDeleted:        r.ReportIsDeleted,
		ReportSubmittedToAdmin: r.ReportSubmittedToAdmin,
		ReportReviewedAt:       r.ReportReviewedAt,
		ReportCreatedAt:        r.ReportCreatedAt,
		ReportUpdatedAt:        r.ReportUpdatedAt,
	}
}

func ToReportResponseList(rows []model.ReportModel) []ReportResponse {
	out := make([]ReportResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToReportResponse(r))
	}
	return out
}

type SubmitToAdminResponse struct {
	TopicID   uuid.UUID `json:"topic_id"`
	Submitted int64     `json:"submitted"`
}
