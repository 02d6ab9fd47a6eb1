package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/discussions/model"
	"thesis_backend/internals/features/thesis/discussions/repository"
	topicModel "thesis_backend/internals/features/thesis/topics/model"
	topicRepo "thesis_backend/internals/features/thesis/topics/repository"
	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
)

const MaxMessageLength = 2000

type Service struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// EnsureForTopic idempotent; dipasang sebagai hook setelah topik approved.
func (s *Service) EnsureForTopic(ctx context.Context, topicID uuid.UUID) error {
	return repository.EnsureDiscussion(ctx, s.DB, topicID)
}

// participantTopic: load topik, cek pembimbing/anggota, lalu status approved.
func (s *Service) participantTopic(ctx context.Context, actor helpersAuth.Identity, topicID uuid.UUID) (*topicModel.TopicModel, error) {
	if !actor.Can(constants.CapJoinDiscussion) {
		return nil, apperr.Forbidden("Only students and teachers may join discussions.")
	}
	topic, err := topicRepo.FindTopicByID(ctx, s.DB, topicID)
	if err != nil {
		return nil, helper.MapStoreError(err, "topic not found", "", "failed to load topic")
	}
	if !topic.IsSupervisor(actor.UserID) && !topic.IsMember(actor.UserID) {
		return nil, apperr.Forbidden("you are not part of this topic")
	}
	if topic.TopicStatus != constants.TopicApproved {
		return nil, apperr.Conflict("discussions are only open for approved topics")
	}
	return topic, nil
}

func (s *Service) Start(ctx context.Context, actor helpersAuth.Identity, topicID uuid.UUID) (*model.DiscussionModel, error) {
	if _, err := s.participantTopic(ctx, actor, topicID); err != nil {
		return nil, err
	}
	return s.ensure(ctx, topicID)
}

func (s *Service) ensure(ctx context.Context, topicID uuid.UUID) (*model.DiscussionModel, error) {
	if err := repository.EnsureDiscussion(ctx, s.DB, topicID); err != nil {
		return nil, apperr.Internal("failed to open discussion", err)
	}
	d, err := repository.FindByTopic(ctx, s.DB, topicID)
	if err != nil {
		return nil, apperr.Internal("failed to load discussion", err)
	}
	return d, nil
}

func (s *Service) PostMessage(ctx context.Context, actor helpersAuth.Identity, topicID uuid.UUID, text string) (*model.DiscussionMessageModel, error) {
	text = strings.TrimSpace(text)
	if text == "" || len([]rune(text)) > MaxMessageLength {
		return nil, apperr.ValidationFields(
			fmt.Sprintf("message must be 1-%d characters", MaxMessageLength),
			map[string][]string{"text": {"required", fmt.Sprintf("max=%d", MaxMessageLength)}},
		)
	}
	if _, err := s.participantTopic(ctx, actor, topicID); err != nil {
		return nil, err
	}
	d, err := s.ensure(ctx, topicID)
	if err != nil {
		return nil, err
	}
	m := &model.DiscussionMessageModel{
		DiscussionMessageDiscussionID: d.DiscussionID,
		DiscussionMessageUserID:       actor.UserID,
		DiscussionMessageText:         text,
	}
	if err := repository.CreateMessage(ctx, s.DB, m); err != nil {
		return nil, apperr.Internal("failed to post message", err)
	}
	return m, nil
}

// DeleteMessage: hanya penulisnya.
func (s *Service) DeleteMessage(ctx context.Context, actor helpersAuth.Identity, messageID uuid.UUID) error {
	m, err := repository.FindMessageByID(ctx, s.DB, messageID)
	if err != nil {
		return helper.MapStoreError(err, "message not found", "", "failed to load message")
	}
	if m.DiscussionMessageUserID != actor.UserID {
		return apperr.Forbidden("you can only delete your own messages")
	}
	ok, err := repository.DeleteMessage(ctx, s.DB, messageID, actor.UserID)
	if err != nil {
		return apperr.Internal("failed to delete message", err)
	}
	if !ok {
		return apperr.NotFound("message not found")
	}
	return nil
}

type Thread struct {
	Discussion model.DiscussionModel
	Topic      topicModel.TopicModel
	Messages   []model.DiscussionMessageModel
	Total      int64
}

// List: teacher topik bimbingan yang approved, student topik miliknya.
func (s *Service) List(ctx context.Context, actor helpersAuth.Identity, offset, limit int) ([]Thread, error) {
	var f topicRepo.ListFilter
	switch actor.Role {
	case constants.RoleTeacher:
		f.SupervisorID = actor.UserID
		f.Statuses = []constants.TopicStatus{constants.TopicApproved}
	case constants.RoleStudent:
		f.MemberID = actor.UserID
	default:
		return nil, apperr.Forbidden("Only students and teachers may join discussions.")
	}
	topics, _, err := topicRepo.ListTopics(ctx, s.DB, f, 0, 0)
	if err != nil {
		return nil, apperr.Internal("failed to list topics", err)
	}
	byID := make(map[uuid.UUID]topicModel.TopicModel, len(topics))
	ids := make([]uuid.UUID, 0, len(topics))
	for _, t := range topics {
		byID[t.TopicID] = t
		ids = append(ids, t.TopicID)
	}

	discussions, err := repository.FindByTopics(ctx, s.DB, ids)
	if err != nil {
		return nil, apperr.Internal("failed to list discussions", err)
	}
	out := make([]Thread, 0, len(discussions))
	for _, d := range discussions {
		msgs, total, err := repository.ListMessages(ctx, s.DB, d.DiscussionID, offset, limit)
		if err != nil {
			return nil, apperr.Internal("failed to list messages", err)
		}
		out = append(out, Thread{Discussion: d, Topic: byID[d.DiscussionTopicID], Messages: msgs, Total: total})
	}
	return out, nil
}
