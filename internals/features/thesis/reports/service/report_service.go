package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
	notifService "thesis_backend/internals/features/notifications/service"
	"thesis_backend/internals/features/thesis/reports/dto"
	"thesis_backend/internals/features/thesis/reports/model"
	"thesis_backend/internals/features/thesis/reports/repository"
	topicModel "thesis_backend/internals/features/thesis/topics/model"
	topicRepo "thesis_backend/internals/features/thesis/topics/repository"
	userRepo "thesis_backend/internals/features/users/user/repository"
	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
	"thesis_backend/internals/helpers/oss"
)

const Folder = "reports"

type Service struct {
	DB       *gorm.DB
	Notifier notifService.Notifier
	Files    oss.FileStore
	Now      func() time.Time
}

func New(db *gorm.DB, notifier notifService.Notifier, files oss.FileStore) *Service {
	return &Service{DB: db, Notifier: notifier, Files: files}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*model.ReportModel, error) {
	r, err := repository.FindReportByID(ctx, s.DB, id)
	if err != nil {
		return nil, helper.MapStoreError(err, "report not found", "", "failed to load report")
	}
	return r, nil
}

func (s *Service) loadTopic(ctx context.Context, id uuid.UUID) (*topicModel.TopicModel, error) {
	t, err := topicRepo.FindTopicByID(ctx, s.DB, id)
	if err != nil {
		return nil, helper.MapStoreError(err, "topic not found", "", "failed to load topic")
	}
	return t, nil
}

// store: gambar dinormalisasi ke webp lebih dulu.
func (s *Service) store(ctx context.Context, in oss.StoreInput) (oss.StoreInput, oss.StoredFile, error) {
	in.Folder = Folder
	norm, err := oss.NormalizeImage(in)
	if err != nil {
		return in, oss.StoredFile{}, apperr.ValidationFields("image could not be processed", map[string][]string{"file": {"image"}})
	}
	stored, err := s.Files.Store(ctx, norm)
	if err != nil {
		return norm, oss.StoredFile{}, apperr.Internal("failed to store file", err)
	}
	return norm, stored, nil
}

// release: kegagalan hanya dicatat.
func (s *Service) release(ctx context.Context, externalID string) {
	if externalID == "" {
		return
	}
	if err := s.Files.Delete(ctx, externalID); err != nil && !errors.Is(err, oss.ErrNotFound) {
		log.Printf("[WARN] failed to release file %s: %v", externalID, err)
	}
}

/* =========================
   Submit / Edit
========================= */

func (s *Service) Submit(ctx context.Context, actor helpersAuth.Identity, in dto.SubmitReportInput) (*model.ReportModel, error) {
	if !actor.Can(constants.CapSubmitReport) {
		return nil, apperr.Forbidden(constants.RoleErrorStudent("report submission"))
	}
	in.Content = strings.TrimSpace(in.Content)
	in.Period = strings.TrimSpace(in.Period)
	if err := helper.ValidateStruct(in); err != nil {
		return nil, err
	}
	if len(in.File.Data) == 0 {
		return nil, apperr.ValidationFields("file is required", map[string][]string{"file": {"required"}})
	}

	topic, err := s.loadTopic(ctx, in.TopicID)
	if err != nil {
		return nil, err
	}
	if !topic.IsMember(actor.UserID) {
		return nil, apperr.Forbidden("you are not a member of this topic")
	}

	file, stored, err := s.store(ctx, in.File)
	if err != nil {
		return nil, err
	}
	r := &model.ReportModel{
		ReportTopicID:        topic.TopicID,
		ReportStudentID:      actor.UserID,
		ReportFileURL:        stored.URL,
		ReportFileExternalID: stored.ExternalID,
		ReportFileName:       file.Filename,
		ReportFileMIME:       file.ContentType,
		ReportContent:        in.Content,
		ReportPeriod:         in.Period,
		ReportStatus:         constants.ReportPending,
		ReportIsEditable:     true,
	}
	if err := repository.CreateReport(ctx, s.DB, r); err != nil {
		s.release(ctx, stored.ExternalID)
		return nil, apperr.Internal("failed to save report", err)
	}

	s.Notifier.Emit(ctx, notifService.Notice{
		RecipientID: topic.TopicSupervisorID,
		Message:     fmt.Sprintf("%s submitted a report (%s) for topic %q.", actor.Name, r.ReportPeriod, topic.TopicName),
		Payload:     map[string]any{"topic_id": topic.TopicID, "report_id": r.ReportID},
	})
	return r, nil
}

func requireSubmitter(actor helpersAuth.Identity, r *model.ReportModel) error {
	if r.ReportStudentID != actor.UserID {
		return apperr.Forbidden("only the submitter can change this report")
	}
	return nil
}

func (s *Service) Edit(ctx context.Context, actor helpersAuth.Identity, reportID uuid.UUID, in dto.EditReportInput) (*model.ReportModel, error) {
	if !actor.Can(constants.CapSubmitReport) {
		return nil, apperr.Forbidden(constants.RoleErrorStudent("report editing"))
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := helper.ValidateStruct(in); err != nil {
		return nil, err
	}
	r, err := s.load(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := requireSubmitter(actor, r); err != nil {
		return nil, err
	}
	if r.ReportIsDeleted || r.ReportStatus != constants.ReportPending || !r.ReportIsEditable {
		return nil, apperr.Conflict("report can no longer be edited")
	}

	updates := map[string]any{"report_content": in.Content, "report_updated_at": s.now()}
	var stored oss.StoredFile
	if in.File != nil {
		file, st, err := s.store(ctx, *in.File)
		if err != nil {
			return nil, err
		}
		stored = st
		updates["report_file_url"] = st.URL
		updates["report_file_external_id"] = st.ExternalID
		updates["report_file_name"] = file.Filename
		updates["report_file_mime"] = file.ContentType
	}

	ok, err := repository.UpdateIf(ctx, s.DB, reportID, repository.Guard{
		Status:   constants.ReportPending,
		Deleted:  repository.Bool(false),
		Editable: repository.Bool(true),
	}, updates)
	if err != nil || !ok {
		s.release(ctx, stored.ExternalID)
		if err != nil {
			return nil, apperr.Internal("failed to update report", err)
		}
		return nil, apperr.Conflict("report can no longer be edited")
	}
	if stored.ExternalID != "" {
		s.release(ctx, r.ReportFileExternalID)
	}
	return s.load(ctx, reportID)
}

/* =========================
   Soft delete / restore
========================= */

func (s *Service) SoftDelete(ctx context.Context, actor helpersAuth.Identity, reportID uuid.UUID) (*model.ReportModel, error) {
	if !actor.Can(constants.CapSubmitReport) {
		return nil, apperr.Forbidden(constants.RoleErrorStudent("report deletion"))
	}
	r, err := s.load(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := requireSubmitter(actor, r); err != nil {
		return nil, err
	}
	if r.ReportIsDeleted {
		return nil, apperr.Conflict("report is already deleted")
	}
	if r.ReportStatus != constants.ReportPending {
		return nil, apperr.Conflict("only pending reports can be deleted")
	}
	ok, err := repository.UpdateIf(ctx, s.DB, reportID,
		repository.Guard{Status: constants.ReportPending, Deleted: repository.Bool(false)},
		map[string]any{"report_is_deleted": true, "report_updated_at": s.now()})
	if err != nil {
		return nil, apperr.Internal("failed to delete report", err)
	}
	if !ok {
		return nil, apperr.Conflict("report changed, try again")
	}
	r.ReportIsDeleted = true
	return r, nil
}

func (s *Service) Restore(ctx context.Context, actor helpersAuth.Identity, reportID uuid.UUID) (*model.ReportModel, error) {
	if !actor.Can(constants.CapSubmitReport) {
		return nil, apperr.Forbidden(constants.RoleErrorStudent("report restore"))
	}
	r, err := s.load(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := requireSubmitter(actor, r); err != nil {
		return nil, err
	}
	if !r.ReportIsDeleted {
		return nil, apperr.Conflict("report is not deleted")
	}
	if r.ReportStatus != constants.ReportPending {
		return nil, apperr.Conflict("only pending reports can be restored")
	}
	ok, err := repository.UpdateIf(ctx, s.DB, reportID,
		repository.Guard{Status: constants.ReportPending, Deleted: repository.Bool(true)},
		map[string]any{
			"report_is_deleted": false,
			"report_status":     string(constants.ReportPending),
			"report_updated_at": s.now(),
		})
	if err != nil {
		return nil, apperr.Internal("failed to restore report", err)
	}
	if !ok {
		return nil, apperr.Conflict("report changed, try again")
	}
	r.ReportIsDeleted = false
	r.ReportStatus = constants.ReportPending
	return r, nil
}

/* =========================
   Review
========================= */

// Review: approve/reject oleh pembimbing; setelah ini laporan tidak bisa diedit lagi.
func (s *Service) Review(ctx context.Context, actor helpersAuth.Identity, reportID uuid.UUID, approve bool) (*model.ReportModel, error) {
	if !actor.Can(constants.CapReviewReport) {
		return nil, apperr.Forbidden(constants.RoleErrorTeacher("report review"))
	}
	r, err := s.load(ctx, reportID)
	if err != nil {
		return nil, err
	}
	topic, err := s.loadTopic(ctx, r.ReportTopicID)
	if err != nil {
		return nil, err
	}
	if !topic.IsSupervisor(actor.UserID) {
		return nil, apperr.Forbidden("you are not the supervisor of this topic")
	}
	if r.ReportIsDeleted || r.ReportStatus != constants.ReportPending {
		return nil, apperr.Conflict("report is not waiting for review")
	}

	to := constants.ReportRejected
	if approve {
		to = constants.ReportApproved
	}
	now := s.now()
	ok, err := repository.UpdateIf(ctx, s.DB, reportID,
		repository.Guard{Status: constants.ReportPending, Deleted: repository.Bool(false)},
		map[string]any{
			"report_status":      string(to),
			"report_is_editable": false,
			"report_reviewed_by": actor.UserID,
			"report_reviewed_at": now,
			"report_updated_at":  now,
		})
	if err != nil {
		return nil, apperr.Internal("failed to review report", err)
	}
	if !ok {
		return nil, apperr.Conflict("report is not waiting for review")
	}
	r.ReportStatus = to
	r.ReportIsEditable = false
	r.ReportReviewedBy = &actor.UserID
	r.ReportReviewedAt = &now

	recipients := topic.MemberIDs()
	if len(recipients) == 0 {
		recipients = []uuid.UUID{r.ReportStudentID}
	}
	msg := fmt.Sprintf("Report %q for topic %q was %s by the supervisor.", r.ReportPeriod, topic.TopicName, to)
	s.Notifier.Emit(ctx, notifService.ToAll(recipients, msg, map[string]any{"topic_id": topic.TopicID, "report_id": r.ReportID})...)
	return r, nil
}

/* =========================
   Submit to admin
========================= */

// SubmitToAdmin menandai semua laporan approved yang belum dikirim dalam satu batch.
func (s *Service) SubmitToAdmin(ctx context.Context, actor helpersAuth.Identity, topicID uuid.UUID) (int64, error) {
	if !actor.Can(constants.CapSubmitReport) {
		return 0, apperr.Forbidden(constants.RoleErrorStudent("report submission"))
	}
	topic, err := s.loadTopic(ctx, topicID)
	if err != nil {
		return 0, err
	}
	if !topic.IsLead(actor.UserID) {
		return 0, apperr.Forbidden("only the team lead can submit reports to the admin")
	}
	if topic.TopicStatus != constants.TopicApproved {
		return 0, apperr.Conflict("topic is not approved")
	}

	n, err := repository.MarkSubmittedToAdmin(ctx, s.DB, topicID, map[string]any{
		"report_submitted_to_admin": true,
		"report_updated_at":         s.now(),
	})
	if err != nil {
		return 0, apperr.Internal("failed to submit reports", err)
	}
	if n == 0 {
		approved, err := repository.CountApproved(ctx, s.DB, topicID)
		if err != nil {
			return 0, apperr.Internal("failed to count reports", err)
		}
		if approved == 0 {
			return 0, apperr.Conflict("topic has no approved reports")
		}
		return 0, apperr.Conflict("all approved reports were already submitted")
	}

	admins, err := userRepo.ListUserIDsByRole(ctx, s.DB, constants.RoleAdmin)
	if err != nil {
		log.Printf("[WARN] submit-to-admin for topic %s: admin lookup failed: %v", topicID, err)
		return n, nil
	}
	msg := fmt.Sprintf("Topic %q submitted %d approved report(s) for review.", topic.TopicName, n)
	s.Notifier.Emit(ctx, notifService.ToAll(admins, msg, map[string]any{"topic_id": topicID})...)
	return n, nil
}

/* =========================
   Queries
========================= */

func (s *Service) list(ctx context.Context, f repository.ListFilter, offset, limit int) ([]model.ReportModel, int64, error) {
	rows, total, err := repository.ListReports(ctx, s.DB, f, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list reports", err)
	}
	return rows, total, nil
}

// List: student miliknya, teacher topik bimbingan, admin yang sudah dikirim.
func (s *Service) List(ctx context.Context, actor helpersAuth.Identity, offset, limit int) ([]model.ReportModel, int64, error) {
	var f repository.ListFilter
	switch actor.Role {
	case constants.RoleStudent:
		f.StudentID = actor.UserID
	case constants.RoleTeacher:
		f.SupervisorID = actor.UserID
	case constants.RoleAdmin:
		f.SubmittedOnly = true
	default:
		return nil, 0, apperr.Forbidden("you cannot list reports")
	}
	return s.list(ctx, f, offset, limit)
}

func (s *Service) ListDeleted(ctx context.Context, actor helpersAuth.Identity, offset, limit int) ([]model.ReportModel, int64, error) {
	f := repository.ListFilter{Deleted: true}
	switch actor.Role {
	case constants.RoleStudent:
		f.StudentID = actor.UserID
	case constants.RoleTeacher:
		f.SupervisorID = actor.UserID
	default:
		return nil, 0, apperr.Forbidden("you cannot list deleted reports")
	}
	return s.list(ctx, f, offset, limit)
}

func (s *Service) Get(ctx context.Context, actor helpersAuth.Identity, reportID uuid.UUID) (*model.ReportModel, error) {
	r, err := s.load(ctx, reportID)
	if err != nil {
		return nil, err
	}
	topic, err := s.loadTopic(ctx, r.ReportTopicID)
	if err != nil {
		return nil, err
	}
	switch {
	case r.ReportStudentID == actor.UserID, topic.IsMember(actor.UserID), topic.IsSupervisor(actor.UserID):
	case actor.Role == constants.RoleAdmin && r.ReportSubmittedToAdmin && !r.ReportIsDeleted:
	default:
		return nil, apperr.Forbidden("you cannot view this report")
	}
	return r, nil
}

// DownloadURL: hanya laporan approved yang sudah dikirim ke admin.
func (s *Service) DownloadURL(ctx context.Context, actor helpersAuth.Identity, reportID uuid.UUID) (string, error) {
	if !actor.Can(constants.CapDownloadStudentReport) {
		return "", apperr.Forbidden(constants.RoleErrorStudent("report downloads"))
	}
	r, err := s.load(ctx, reportID)
	if err != nil {
		return "", err
	}
	if r.ReportIsDeleted || r.ReportStatus != constants.ReportApproved || !r.ReportSubmittedToAdmin {
		return "", apperr.NotFound("report is not available for download")
	}
	return r.ReportFileURL, nil
}
