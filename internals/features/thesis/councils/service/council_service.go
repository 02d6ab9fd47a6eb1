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
	"thesis_backend/internals/features/thesis/councils/dto"
	"thesis_backend/internals/features/thesis/councils/model"
	"thesis_backend/internals/features/thesis/councils/repository"
	reportRepo "thesis_backend/internals/features/thesis/reports/repository"
	topicModel "thesis_backend/internals/features/thesis/topics/model"
	topicRepo "thesis_backend/internals/features/thesis/topics/repository"
	userModel "thesis_backend/internals/features/users/user/model"
	userRepo "thesis_backend/internals/features/users/user/repository"
	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
	"thesis_backend/internals/helpers/docgen"
	"thesis_backend/internals/helpers/oss"
)

const ApprovalFolder = "council_approvals"

type Service struct {
	DB       *gorm.DB
	Notifier notifService.Notifier
	Files    oss.FileStore

	// Render membuat dokumen keputusan; default PDF.
	Render func(docgen.CouncilApprovalData) ([]byte, error)
	Now    func() time.Time
}

func New(db *gorm.DB, notifier notifService.Notifier, files oss.FileStore) *Service {
	return &Service{DB: db, Notifier: notifier, Files: files, Render: docgen.RenderCouncilApproval}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) Load(ctx context.Context, id uuid.UUID) (*model.CouncilModel, error) {
	c, err := repository.FindCouncilByID(ctx, s.DB, id)
	if err != nil {
		return nil, helper.MapStoreError(err, "council not found", "", "failed to load council")
	}
	return c, nil
}

func (s *Service) loadTopic(ctx context.Context, id uuid.UUID) (*topicModel.TopicModel, error) {
	t, err := topicRepo.FindTopicByID(ctx, s.DB, id)
	if err != nil {
		return nil, helper.MapStoreError(err, "topic not found", "", "failed to load topic")
	}
	return t, nil
}

func (s *Service) release(ctx context.Context, externalID string) {
	if externalID == "" {
		return
	}
	if err := s.Files.Delete(ctx, externalID); err != nil && !errors.Is(err, oss.ErrNotFound) {
		log.Printf("[WARN] failed to release approval document %s: %v", externalID, err)
	}
}

// notifyFirst mengirim ke user paling awal dari role tsb; tidak ada user hanya dicatat.
func (s *Service) notifyFirst(ctx context.Context, role constants.Role, msg string, payload map[string]any) {
	u, err := userRepo.FirstUserByRole(ctx, s.DB, role)
	if err != nil {
		log.Printf("[WARN] no %s to notify: %v", role, err)
		return
	}
	s.Notifier.Emit(ctx, notifService.Notice{RecipientID: u.ID, Message: msg, Payload: payload})
}

/* =========================
   Committee rules
========================= */

// checkCommittee: ketua, sekretaris, anggota saling lepas; anggota maks 5.
func checkCommittee(chair, secretary uuid.UUID, members []uuid.UUID) error {
	if len(members) > dto.MaxCouncilMembers {
		return apperr.ValidationFields(
			fmt.Sprintf("a council has at most %d members", dto.MaxCouncilMembers),
			map[string][]string{"member_ids": {fmt.Sprintf("max=%d", dto.MaxCouncilMembers)}},
		)
	}
	if chair == uuid.Nil || secretary == uuid.Nil {
		return apperr.ValidationFields("chairman and secretary are required", map[string][]string{"chairman_id": {"required"}})
	}
	seen := map[uuid.UUID]bool{chair: true}
	if seen[secretary] {
		return apperr.ValidationFields("chairman and secretary must be different people", map[string][]string{"secretary_id": {"distinct"}})
	}
	seen[secretary] = true
	for _, m := range members {
		if m == uuid.Nil || seen[m] {
			return apperr.ValidationFields("council members must be distinct from each other, the chairman and the secretary",
				map[string][]string{"member_ids": {"distinct"}})
		}
		seen[m] = true
	}
	return nil
}

func ensureTeachers(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	users, err := userRepo.FindUsersByIDs(ctx, tx, ids)
	if err != nil {
		return apperr.Internal("failed to load council members", err)
	}
	var bad []string
	for _, id := range ids {
		if u, ok := users[id]; !ok || u.Role != constants.RoleTeacher {
			bad = append(bad, id.String())
		}
	}
	if len(bad) > 0 {
		return apperr.ValidationFields("council members must be existing teachers", map[string][]string{"member_ids": bad})
	}
	return nil
}

func storeErr(err error, conflictMsg, internalMsg string) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if helper.IsUniqueViolation(err) {
		return apperr.Conflict(conflictMsg)
	}
	return apperr.Internal(internalMsg, err)
}

/* =========================
   Request / decide
========================= */

func (s *Service) RequestCreate(ctx context.Context, actor helpersAuth.Identity, in dto.CouncilInput) (*model.CouncilModel, error) {
	if !actor.Can(constants.CapRequestCouncil) {
		return nil, apperr.Forbidden(constants.RoleErrorAdmin("council requests"))
	}
	if err := helper.ValidateStruct(in); err != nil {
		return nil, err
	}
	if err := checkCommittee(in.ChairmanID, in.SecretaryID, in.MemberIDs); err != nil {
		return nil, err
	}

	topic, err := s.loadTopic(ctx, in.TopicID)
	if err != nil {
		return nil, err
	}
	if topic.TopicStatus != constants.TopicApproved {
		return nil, apperr.Conflict("topic is not approved")
	}
	ok, err := reportRepo.HasAdminSubmitted(ctx, s.DB, topic.TopicID)
	if err != nil {
		return nil, apperr.Internal("failed to check reports", err)
	}
	if !ok {
		return nil, apperr.Conflict("topic has no approved reports submitted to the admin")
	}

	c := &model.CouncilModel{
		CouncilTopicID:     topic.TopicID,
		CouncilChairmanID:  in.ChairmanID,
		CouncilSecretaryID: in.SecretaryID,
		CouncilStatus:      constants.CouncilPendingCreation,
		CouncilCreatedBy:   actor.UserID,
	}
	for i, id := range in.MemberIDs {
		c.Members = append(c.Members, model.CouncilMemberModel{CouncilMemberUserID: id, CouncilMemberPosition: i})
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureTeachers(ctx, tx, c.Graders()); err != nil {
			return err
		}
		open, err := repository.HasOpenCouncil(ctx, tx, topic.TopicID)
		if err != nil {
			return apperr.Internal("failed to check open councils", err)
		}
		if open {
			return apperr.Conflict("topic already has an open council request")
		}
		return repository.CreateCouncil(ctx, tx, c)
	})
	if err != nil {
		return nil, storeErr(err, "topic already has an open council request", "failed to create council")
	}

	s.notifyFirst(ctx, constants.RoleUniAdmin,
		fmt.Sprintf("Council request for topic %q awaits your approval.", topic.TopicName),
		map[string]any{"council_id": c.CouncilID, "topic_id": topic.TopicID})
	return s.Load(ctx, c.CouncilID)
}

func names(ids []uuid.UUID, users map[uuid.UUID]userModel.UserModel) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, u.Name)
		}
	}
	return out
}

func (s *Service) approvalData(ctx context.Context, actor helpersAuth.Identity, c *model.CouncilModel, topic *topicModel.TopicModel, at time.Time) (docgen.CouncilApprovalData, error) {
	users, err := userRepo.FindUsersByIDs(ctx, s.DB, append(c.Graders(), topic.Participants()...))
	if err != nil {
		return docgen.CouncilApprovalData{}, apperr.Internal("failed to load council members", err)
	}
	return docgen.CouncilApprovalData{
		TopicName:   topic.TopicName,
		Students:    names(topic.MemberIDs(), users),
		Supervisor:  users[topic.TopicSupervisorID].Name,
		Chairman:    users[c.CouncilChairmanID].Name,
		Secretary:   users[c.CouncilSecretaryID].Name,
		Members:     names(c.MemberIDs(), users),
		ApprovedBy:  actor.Name,
		ApprovedAt:  at,
		ReferenceNo: fmt.Sprintf("CNC/%s/%s", at.Format("20060102"), strings.ToUpper(c.CouncilID.String()[:8])),
	}, nil
}

// ExternalApprove: render dokumen, simpan, lalu commit status + history + topic.council.
// Dokumen yang sudah tersimpan dihapus lagi bila commit gagal.
func (s *Service) ExternalApprove(ctx context.Context, actor helpersAuth.Identity, councilID uuid.UUID) (*model.CouncilModel, error) {
	if !actor.Can(constants.CapDecideCouncil) {
		return nil, apperr.Forbidden(constants.RoleErrorUniAdmin("council approval"))
	}
	c, err := s.Load(ctx, councilID)
	if err != nil {
		return nil, err
	}
	if c.CouncilStatus != constants.CouncilPendingCreation {
		return nil, apperr.Conflict("council request is not pending")
	}
	topic, err := s.loadTopic(ctx, c.CouncilTopicID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	data, err := s.approvalData(ctx, actor, c, topic, now)
	if err != nil {
		return nil, err
	}
	pdf, err := s.Render(data)
	if err != nil {
		return nil, apperr.Internal("failed to render approval document", err)
	}
	stored, err := s.Files.Store(ctx, oss.StoreInput{
		Folder:      ApprovalFolder,
		Filename:    "council-approval.pdf",
		ContentType: "application/pdf",
		Data:        pdf,
	})
	if err != nil {
		return nil, apperr.Internal("failed to store approval document", err)
	}
	doc := model.ApprovalDocument{URL: stored.URL, ExternalID: stored.ExternalID}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := repository.UpdateIfStatus(ctx, tx, councilID, constants.CouncilPendingCreation, map[string]any{
			"council_status":            string(constants.CouncilUniAdminApproved),
			"council_approval_document": doc.JSON(),
			"council_reject_reason":     nil,
			"council_updated_at":        now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("council request is not pending")
		}
		if err := repository.AddHistory(ctx, tx, councilID, actor.UserID, constants.CouncilActionApproved, nil, now); err != nil {
			return err
		}
		return topicRepo.SetCouncil(ctx, tx, topic.TopicID, councilID, now)
	})
	if err != nil {
		s.release(ctx, stored.ExternalID)
		return nil, storeErr(err, "council changed, try again", "failed to approve council")
	}

	recipients := append(c.Graders(), c.CouncilCreatedBy)
	msg := fmt.Sprintf("Council for topic %q was approved. Decision document: %s", topic.TopicName, doc.URL)
	s.Notifier.Emit(ctx, notifService.ToAll(recipients, msg, map[string]any{
		"council_id": councilID, "topic_id": topic.TopicID, "document_url": doc.URL,
	})...)
	return s.Load(ctx, councilID)
}

func (s *Service) ExternalReject(ctx context.Context, actor helpersAuth.Identity, councilID uuid.UUID, reason string) (*model.CouncilModel, error) {
	if !actor.Can(constants.CapDecideCouncil) {
		return nil, apperr.Forbidden(constants.RoleErrorUniAdmin("council approval"))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.ValidationFields("reason is required", map[string][]string{"reason": {"required"}})
	}
	c, err := s.Load(ctx, councilID)
	if err != nil {
		return nil, err
	}
	if c.CouncilStatus != constants.CouncilPendingCreation {
		return nil, apperr.Conflict("council request is not pending")
	}

	now := s.now()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := repository.UpdateIfStatus(ctx, tx, councilID, constants.CouncilPendingCreation, map[string]any{
			"council_status":        string(constants.CouncilUniAdminRejected),
			"council_reject_reason": reason,
			"council_updated_at":    now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("council request is not pending")
		}
		return repository.AddHistory(ctx, tx, councilID, actor.UserID, constants.CouncilActionRejected, &reason, now)
	})
	if err != nil {
		return nil, storeErr(err, "council changed, try again", "failed to reject council")
	}

	topicName := c.CouncilTopicID.String()
	if topic, err := s.loadTopic(ctx, c.CouncilTopicID); err == nil {
		topicName = topic.TopicName
	}
	s.Notifier.Emit(ctx, notifService.Notice{
		RecipientID: c.CouncilCreatedBy,
		Message:     fmt.Sprintf("Council request for topic %q was rejected: %s", topicName, reason),
		Payload:     map[string]any{"council_id": councilID},
	})
	return s.Load(ctx, councilID)
}

/* =========================
   Update / delete
========================= */

func (s *Service) Update(ctx context.Context, actor helpersAuth.Identity, councilID uuid.UUID, in dto.UpdateCouncilInput) (*model.CouncilModel, error) {
	if !actor.Can(constants.CapRequestCouncil) {
		return nil, apperr.Forbidden(constants.RoleErrorAdmin("council updates"))
	}
	c, err := s.Load(ctx, councilID)
	if err != nil {
		return nil, err
	}
	if !c.CouncilStatus.Editable() {
		return nil, apperr.Conflict("council can no longer be changed")
	}
	if in.Status != nil && *in.Status != constants.CouncilPendingCreation {
		return nil, apperr.ValidationFields("status can only be set back to pending-creation",
			map[string][]string{"status": {"oneof=pending-creation"}})
	}

	chair, secretary, members := c.CouncilChairmanID, c.CouncilSecretaryID, c.MemberIDs()
	if in.ChairmanID != nil {
		chair = *in.ChairmanID
	}
	if in.SecretaryID != nil {
		secretary = *in.SecretaryID
	}
	if in.MemberIDs != nil {
		members = *in.MemberIDs
	}
	if err := checkCommittee(chair, secretary, members); err != nil {
		return nil, err
	}

	now := s.now()
	updates := map[string]any{
		"council_chairman_id":  chair,
		"council_secretary_id": secretary,
		"council_updated_at":   now,
	}
	if in.Status != nil {
		updates["council_status"] = string(constants.CouncilPendingCreation)
		updates["council_reject_reason"] = nil
	}

	graders := append([]uuid.UUID{chair, secretary}, members...)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureTeachers(ctx, tx, graders); err != nil {
			return err
		}
		ok, err := repository.UpdateIfStatus(ctx, tx, councilID, c.CouncilStatus, updates)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("council changed, try again")
		}
		if in.MemberIDs != nil {
			return repository.ReplaceMembers(ctx, tx, councilID, members)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "topic already has an open council request", "failed to update council")
	}

	topicName := c.CouncilTopicID.String()
	if topic, err := s.loadTopic(ctx, c.CouncilTopicID); err == nil {
		topicName = topic.TopicName
	}
	payload := map[string]any{"council_id": councilID}
	affected := append(c.Graders(), graders...)
	s.Notifier.Emit(ctx, notifService.ToAll(affected, fmt.Sprintf("Council for topic %q was updated.", topicName), payload)...)
	if in.Status != nil {
		s.notifyFirst(ctx, constants.RoleUniAdmin,
			fmt.Sprintf("Council request for topic %q was resubmitted for approval.", topicName), payload)
	}
	return s.Load(ctx, councilID)
}

// Delete: status apa pun selain deleted → deleted; topic.council dikosongkan bila menunjuk ke sini.
func (s *Service) Delete(ctx context.Context, actor helpersAuth.Identity, councilID uuid.UUID) (*model.CouncilModel, error) {
	if !actor.Can(constants.CapRequestCouncil) {
		return nil, apperr.Forbidden(constants.RoleErrorAdmin("council deletion"))
	}
	c, err := s.Load(ctx, councilID)
	if err != nil {
		return nil, err
	}
	if c.CouncilStatus == constants.CouncilDeleted {
		return nil, apperr.Conflict("council is already deleted")
	}

	now := s.now()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := repository.UpdateIfStatus(ctx, tx, councilID, c.CouncilStatus, map[string]any{
			"council_status":     string(constants.CouncilDeleted),
			"council_updated_at": now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("council changed, try again")
		}
		return topicRepo.ClearCouncilIf(ctx, tx, c.CouncilTopicID, councilID, now)
	})
	if err != nil {
		return nil, storeErr(err, "council changed, try again", "failed to delete council")
	}

	topicName := c.CouncilTopicID.String()
	if topic, err := s.loadTopic(ctx, c.CouncilTopicID); err == nil {
		topicName = topic.TopicName
	}
	s.Notifier.Emit(ctx, notifService.ToAll(c.Graders(),
		fmt.Sprintf("Council for topic %q was deleted.", topicName),
		map[string]any{"council_id": councilID})...)
	c.CouncilStatus = constants.CouncilDeleted
	return c, nil
}

/* =========================
   Score
========================= */

// Score: satu nilai per penguji; nilai terakhir menutup council dalam transaksi yang sama.
func (s *Service) Score(ctx context.Context, actor helpersAuth.Identity, councilID uuid.UUID, value int, comment string) (*model.CouncilModel, error) {
	if !actor.Can(constants.CapScoreCouncil) {
		return nil, apperr.Forbidden(constants.RoleErrorTeacher("council scoring"))
	}
	if value < 0 || value > 100 {
		return nil, apperr.ValidationFields("score must be between 0 and 100", map[string][]string{"score": {"min=0", "max=100"}})
	}
	c, err := s.Load(ctx, councilID)
	if err != nil {
		return nil, err
	}
	if !c.IsGrader(actor.UserID) {
		return nil, apperr.Forbidden("you are not part of this council")
	}
	if c.CouncilStatus != constants.CouncilUniAdminApproved {
		return nil, apperr.Conflict("council is not open for scoring")
	}
	if c.HasScoreFrom(actor.UserID) {
		return nil, apperr.Conflict("you already scored this council")
	}

	required := int64(c.RequiredScores())
	var scored int64
	completed := false
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := repository.LockCouncil(ctx, tx, councilID)
		if err != nil {
			return err
		}
		if locked.CouncilStatus != constants.CouncilUniAdminApproved {
			return apperr.Conflict("council is not open for scoring")
		}
		if err := repository.CreateScore(ctx, tx, &model.CouncilScoreModel{
			CouncilScoreCouncilID: councilID,
			CouncilScoreUserID:    actor.UserID,
			CouncilScoreValue:     value,
			CouncilScoreComment:   strings.TrimSpace(comment),
			CouncilScoreScoredAt:  s.now(),
		}); err != nil {
			return err
		}
		scored, err = repository.CountScores(ctx, tx, councilID)
		if err != nil {
			return err
		}
		if scored < required {
			return nil
		}
		ok, err := repository.UpdateIfStatus(ctx, tx, councilID, constants.CouncilUniAdminApproved, map[string]any{
			"council_status":     string(constants.CouncilCompleted),
			"council_updated_at": s.now(),
		})
		if err != nil {
			return err
		}
		completed = ok
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "you already scored this council", "failed to save score")
	}

	out, err := s.Load(ctx, councilID)
	if err != nil {
		return nil, err
	}
	if topic, err := s.loadTopic(ctx, c.CouncilTopicID); err == nil {
		msg := fmt.Sprintf("%s scored the council of topic %q (%d/%d).", actor.Name, topic.TopicName, scored, required)
		s.Notifier.Emit(ctx, notifService.ToAll(topic.Participants(), msg, map[string]any{"council_id": councilID})...)
		if completed {
			s.Notifier.Emit(ctx, notifService.Notice{
				RecipientID: c.CouncilCreatedBy,
				Message:     fmt.Sprintf("Council for topic %q is completed with an average score of %.2f.", topic.TopicName, out.AverageScore()),
				Payload:     map[string]any{"council_id": councilID},
			})
		}
	} else {
		log.Printf("[WARN] score notification for council %s skipped: %v", councilID, err)
	}
	return out, nil
}
