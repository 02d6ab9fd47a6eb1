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
	"thesis_backend/internals/features/thesis/topics/dto"
	"thesis_backend/internals/features/thesis/topics/model"
	"thesis_backend/internals/features/thesis/topics/repository"
	userRepo "thesis_backend/internals/features/users/user/repository"
	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
)

const MaxTeamSize = 3

// ApprovedHook dijalankan setelah topik berstatus approved (di luar transaksi).
type ApprovedHook func(ctx context.Context, topicID uuid.UUID) error

type Service struct {
	DB       *gorm.DB
	Notifier notifService.Notifier

	// OnApproved, mis. membuat ruang diskusi.
	OnApproved []ApprovedHook

	Now func() time.Time
}

func New(db *gorm.DB, notifier notifService.Notifier, hooks ...ApprovedHook) *Service {
	return &Service{DB: db, Notifier: notifier, OnApproved: hooks}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Load memuat topik atau NotFound.
func (s *Service) Load(ctx context.Context, id uuid.UUID) (*model.TopicModel, error) {
	t, err := repository.FindTopicByID(ctx, s.DB, id)
	if err != nil {
		return nil, helper.MapStoreError(err, "topic not found", "", "failed to load topic")
	}
	return t, nil
}

/* =========================
   Register
========================= */

func teamOf(lead uuid.UUID, others []uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]bool{lead: true}
	out := []uuid.UUID{lead}
	for _, id := range others {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (s *Service) Register(ctx context.Context, actor helpersAuth.Identity, in dto.RegisterTopicInput) (*model.TopicModel, error) {
	if !actor.Can(constants.CapRegisterTopic) {
		return nil, apperr.Forbidden(constants.RoleErrorStudent("topic registration"))
	}
	in.TopicName = strings.TrimSpace(in.TopicName)
	in.TopicDescription = strings.TrimSpace(in.TopicDescription)
	if err := helper.ValidateStruct(in); err != nil {
		return nil, err
	}

	team := teamOf(actor.UserID, in.MemberIDs)
	if len(team) > MaxTeamSize {
		return nil, apperr.ValidationFields(
			fmt.Sprintf("a team has at most %d members", MaxTeamSize),
			map[string][]string{"member_ids": {fmt.Sprintf("max=%d", MaxTeamSize)}},
		)
	}

	topic := &model.TopicModel{
		TopicName:         in.TopicName,
		TopicDescription:  in.TopicDescription,
		TopicSupervisorID: in.SupervisorID,
		TopicStatus:       constants.TopicPendingTeacher,
		TopicCreatedBy:    actor.UserID,
	}
	for i, id := range team {
		topic.Members = append(topic.Members, model.TopicMemberModel{TopicMemberUserID: id, TopicMemberPosition: i})
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// kunci baris user tim dulu supaya dua registrasi paralel tidak lolos cek aktif bersamaan
		locked, err := userRepo.LockUsers(ctx, tx, team)
		if err != nil {
			return apperr.Internal("failed to lock team", err)
		}
		var bad []string
		for _, id := range team {
			u, ok := locked[id]
			if !ok || u.Role != constants.RoleStudent {
				bad = append(bad, id.String())
			}
		}
		if len(bad) > 0 {
			return apperr.ValidationFields("team members must be existing students", map[string][]string{"member_ids": bad})
		}

		sup, err := userRepo.FindUsersByIDs(ctx, tx, []uuid.UUID{in.SupervisorID})
		if err != nil {
			return apperr.Internal("failed to load supervisor", err)
		}
		if u, ok := sup[in.SupervisorID]; !ok || u.Role != constants.RoleTeacher {
			return apperr.ValidationFields("supervisor must be an existing teacher", map[string][]string{"supervisor_id": {"teacher"}})
		}

		busy, err := repository.ActiveMemberIDs(ctx, tx, team)
		if err != nil {
			return apperr.Internal("failed to check active topics", err)
		}
		if len(busy) > 0 {
			names := make([]string, 0, len(busy))
			for _, id := range busy {
				names = append(names, locked[id].Name)
			}
			return apperr.Conflict("already working on an active topic: " + strings.Join(names, ", "))
		}

		if err := repository.CreateTopic(ctx, tx, topic); err != nil {
			return apperr.Internal("failed to create topic", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Emit(ctx, notifService.Notice{
		RecipientID: topic.TopicSupervisorID,
		Message:     fmt.Sprintf("Topic %q has been registered and awaits your review.", topic.TopicName),
		Payload:     map[string]any{"topic_id": topic.TopicID},
	})
	return topic, nil
}

/* =========================
   Transitions
========================= */

// transition: load → relasi → status → CAS. Cek role dilakukan pemanggil.
func (s *Service) transition(
	ctx context.Context,
	topicID uuid.UUID,
	allowed func(t *model.TopicModel) error,
	from, to constants.TopicStatus,
	conflictMsg string,
) (*model.TopicModel, error) {
	topic, err := s.Load(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if allowed != nil {
		if err := allowed(topic); err != nil {
			return nil, err
		}
	}
	if topic.TopicStatus != from || !from.CanTransitionTo(to) {
		return nil, apperr.Conflict(conflictMsg)
	}
	ok, err := repository.TransitionStatus(ctx, s.DB, topicID, from, to, s.now())
	if err != nil {
		return nil, apperr.Internal("failed to update topic", err)
	}
	if !ok {
		return nil, apperr.Conflict(conflictMsg)
	}
	topic.TopicStatus = to
	return topic, nil
}

func (s *Service) TeacherDecision(ctx context.Context, actor helpersAuth.Identity, topicID uuid.UUID, approve bool) (*model.TopicModel, error) {
	if !actor.Can(constants.CapDecideTopicAsSupervisor) {
		return nil, apperr.Forbidden(constants.RoleErrorTeacher("supervisor decisions"))
	}
	to := constants.TopicTeacherReject
	if approve {
		to = constants.TopicTeacherApprove
	}
	topic, err := s.transition(ctx, topicID, func(t *model.TopicModel) error {
		if !t.IsSupervisor(actor.UserID) {
			return apperr.Forbidden("you are not the supervisor of this topic")
		}
		return nil
	}, constants.TopicPendingTeacher, to, "topic is no longer waiting for the supervisor")
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Your supervisor rejected topic %q.", topic.TopicName)
	if approve {
		msg = fmt.Sprintf("Your supervisor accepted topic %q. It now awaits admin approval.", topic.TopicName)
	}
	s.Notifier.Emit(ctx, notifService.ToAll(topic.MemberIDs(), msg, map[string]any{"topic_id": topic.TopicID})...)
	return topic, nil
}

func (s *Service) AdminDecision(ctx context.Context, actor helpersAuth.Identity, topicID uuid.UUID, approve bool) (*model.TopicModel, error) {
	if !actor.Can(constants.CapDecideTopicAsAdmin) {
		return nil, apperr.Forbidden(constants.RoleErrorAdmin("topic approval"))
	}
	to := constants.TopicRejected
	if approve {
		to = constants.TopicApproved
	}
	topic, err := s.transition(ctx, topicID, nil, constants.TopicTeacherApprove, to,
		"topic has not been accepted by its supervisor or was already decided")
	if err != nil {
		return nil, err
	}

	if approve {
		s.runApprovedHooks(ctx, topic.TopicID)
	}
	msg := fmt.Sprintf("Topic %q was rejected by the admin.", topic.TopicName)
	if approve {
		msg = fmt.Sprintf("Topic %q was approved by the admin.", topic.TopicName)
	}
	s.Notifier.Emit(ctx, notifService.ToAll(topic.Participants(), msg, map[string]any{"topic_id": topic.TopicID})...)
	return topic, nil
}

func (s *Service) runApprovedHooks(ctx context.Context, topicID uuid.UUID) {
	for _, hook := range s.OnApproved {
		if err := hook(ctx, topicID); err != nil {
			log.Printf("[WARN] topic %s approved hook failed: %v", topicID, err)
		}
	}
}

func requireLead(actor helpersAuth.Identity) func(t *model.TopicModel) error {
	return func(t *model.TopicModel) error {
		if !t.IsLead(actor.UserID) {
			return apperr.Forbidden("only the team lead can do this")
		}
		return nil
	}
}

func (s *Service) StudentCancel(ctx context.Context, actor helpersAuth.Identity, topicID uuid.UUID) (*model.TopicModel, error) {
	if !actor.Can(constants.CapRegisterTopic) {
		return nil, apperr.Forbidden(constants.RoleErrorStudent("topic cancellation"))
	}
	topic, err := s.transition(ctx, topicID, requireLead(actor), constants.TopicPendingTeacher, constants.TopicCanceled,
		"topic can no longer be canceled")
	if err != nil {
		return nil, err
	}
	s.Notifier.Emit(ctx, notifService.Notice{
		RecipientID: topic.TopicSupervisorID,
		Message:     fmt.Sprintf("Topic %q was canceled by the team.", topic.TopicName),
		Payload:     map[string]any{"topic_id": topic.TopicID},
	})
	return topic, nil
}

func (s *Service) RequestStop(ctx context.Context, actor helpersAuth.Identity, topicID uuid.UUID) (*model.TopicModel, error) {
	if !actor.Can(constants.CapRegisterTopic) {
		return nil, apperr.Forbidden(constants.RoleErrorStudent("stop requests"))
	}
	topic, err := s.transition(ctx, topicID, requireLead(actor), constants.TopicApproved, constants.TopicStopPerforming,
		"only approved topics can be stopped")
	if err != nil {
		return nil, err
	}

	admin, err := userRepo.FirstUserByRole(ctx, s.DB, constants.RoleAdmin)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		log.Printf("[WARN] stop request for topic %s: no admin to notify", topic.TopicID)
	case err != nil:
		log.Printf("[WARN] stop request for topic %s: admin lookup failed: %v", topic.TopicID, err)
	default:
		s.Notifier.Emit(ctx, notifService.Notice{
			RecipientID: admin.ID,
			Message:     fmt.Sprintf("Topic %q requests to stop.", topic.TopicName),
			Payload:     map[string]any{"topic_id": topic.TopicID},
		})
	}
	return topic, nil
}

func (s *Service) ApproveStop(ctx context.Context, actor helpersAuth.Identity, topicID uuid.UUID) (*model.TopicModel, error) {
	if !actor.Can(constants.CapDecideTopicAsAdmin) {
		return nil, apperr.Forbidden(constants.RoleErrorAdmin("stop approval"))
	}
	topic, err := s.transition(ctx, topicID, nil, constants.TopicStopPerforming, constants.TopicStopped,
		"topic has no pending stop request")
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Topic %q has been stopped.", topic.TopicName)
	s.Notifier.Emit(ctx, notifService.ToAll(topic.Participants(), msg, map[string]any{"topic_id": topic.TopicID})...)
	return topic, nil
}

/* =========================
   Queries
========================= */

// CanView: admin/uniadmin, pembimbing, atau anggota.
func CanView(actor helpersAuth.Identity, t *model.TopicModel) bool {
	switch actor.Role {
	case constants.RoleAdmin, constants.RoleUniAdmin:
		return true
	}
	return t.IsSupervisor(actor.UserID) || t.IsMember(actor.UserID)
}

func (s *Service) Get(ctx context.Context, actor helpersAuth.Identity, topicID uuid.UUID) (*model.TopicModel, error) {
	topic, err := s.Load(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if !CanView(actor, topic) {
		return nil, apperr.Forbidden("you cannot view this topic")
	}
	return topic, nil
}

// FilterFor: admin semua, teacher yang dibimbing, student yang diikuti, uniadmin yang approved.
// ok=false berarti filter status tidak mungkin cocok untuk role tsb.
func FilterFor(actor helpersAuth.Identity, status constants.TopicStatus) (f repository.ListFilter, ok bool) {
	switch actor.Role {
	case constants.RoleTeacher:
		f.SupervisorID = actor.UserID
	case constants.RoleStudent:
		f.MemberID = actor.UserID
	case constants.RoleUniAdmin:
		if status != "" && status != constants.TopicApproved {
			return f, false
		}
		f.Statuses = []constants.TopicStatus{constants.TopicApproved}
	}
	if status != "" {
		f.Statuses = []constants.TopicStatus{status}
	}
	return f, true
}

func (s *Service) List(ctx context.Context, actor helpersAuth.Identity, status constants.TopicStatus, offset, limit int) ([]model.TopicModel, int64, error) {
	f, ok := FilterFor(actor, status)
	if !ok {
		return []model.TopicModel{}, 0, nil
	}
	topics, total, err := repository.ListTopics(ctx, s.DB, f, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list topics", err)
	}
	return topics, total, nil
}
