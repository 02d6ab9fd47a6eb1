package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/councils/model"
	"thesis_backend/internals/features/thesis/councils/repository"
	reportModel "thesis_backend/internals/features/thesis/reports/model"
	reportRepo "thesis_backend/internals/features/thesis/reports/repository"
	topicModel "thesis_backend/internals/features/thesis/topics/model"
	topicRepo "thesis_backend/internals/features/thesis/topics/repository"
	topicService "thesis_backend/internals/features/thesis/topics/service"
	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
)

// PublicThreshold: rata-rata nilai minimal (eksklusif) agar council tampil publik.
const PublicThreshold = 80.0

type PublicCouncil struct {
	Council   model.CouncilModel
	TopicName string
	Reports   []reportModel.ReportModel
}

// List: admin miliknya, uniadmin semua, teacher sebagai penguji.
func (s *Service) List(ctx context.Context, actor helpersAuth.Identity, status constants.CouncilStatus, offset, limit int) ([]model.CouncilModel, int64, error) {
	var f repository.ListFilter
	switch actor.Role {
	case constants.RoleAdmin:
		f.CreatedBy = actor.UserID
	case constants.RoleUniAdmin:
	case constants.RoleTeacher:
		f.GraderID = actor.UserID
	default:
		return nil, 0, apperr.Forbidden("you cannot list councils")
	}
	if status != "" {
		f.Statuses = []constants.CouncilStatus{status}
	}
	rows, total, err := repository.ListCouncils(ctx, s.DB, f, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list councils", err)
	}
	return rows, total, nil
}

func (s *Service) Pending(ctx context.Context, actor helpersAuth.Identity, offset, limit int) ([]model.CouncilModel, int64, error) {
	if !actor.Can(constants.CapDecideCouncil) {
		return nil, 0, apperr.Forbidden(constants.RoleErrorUniAdmin("pending council requests"))
	}
	rows, total, err := repository.ListCouncils(ctx, s.DB, repository.ListFilter{
		Statuses: []constants.CouncilStatus{constants.CouncilPendingCreation},
	}, offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list councils", err)
	}
	return rows, total, nil
}

// Public: council completed dengan rata-rata > 80, digabung dengan laporan yang sudah dikirim ke admin.
func (s *Service) Public(ctx context.Context, actor helpersAuth.Identity) ([]PublicCouncil, error) {
	if !actor.Can(constants.CapViewPublicCouncils) {
		return nil, apperr.Forbidden(constants.RoleErrorStudent("public councils"))
	}
	rows, _, err := repository.ListCouncils(ctx, s.DB, repository.ListFilter{
		Statuses: []constants.CouncilStatus{constants.CouncilCompleted},
	}, 0, 0)
	if err != nil {
		return nil, apperr.Internal("failed to list councils", err)
	}

	var kept []model.CouncilModel
	var topicIDs []uuid.UUID
	for _, c := range rows {
		if c.AverageScore() > PublicThreshold {
			kept = append(kept, c)
			topicIDs = append(topicIDs, c.CouncilTopicID)
		}
	}
	if len(kept) == 0 {
		return []PublicCouncil{}, nil
	}

	var (
		topics  map[uuid.UUID]topicModel.TopicModel
		reports map[uuid.UUID][]reportModel.ReportModel
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		topics, err = topicRepo.FindTopicsByIDs(gctx, s.DB, topicIDs)
		return err
	})
	g.Go(func() error {
		var err error
		reports, err = reportRepo.AdminSubmittedByTopics(gctx, s.DB, topicIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal("failed to load public councils", err)
	}

	out := make([]PublicCouncil, 0, len(kept))
	for _, c := range kept {
		out = append(out, PublicCouncil{
			Council:   c,
			TopicName: topics[c.CouncilTopicID].TopicName,
			Reports:   reports[c.CouncilTopicID],
		})
	}
	return out, nil
}

func canView(actor helpersAuth.Identity, c *model.CouncilModel, topic *topicModel.TopicModel) bool {
	switch actor.Role {
	case constants.RoleAdmin, constants.RoleUniAdmin:
		return true
	}
	return c.IsGrader(actor.UserID) || topicService.CanView(actor, topic)
}

func (s *Service) Get(ctx context.Context, actor helpersAuth.Identity, councilID uuid.UUID) (*model.CouncilModel, error) {
	c, err := s.Load(ctx, councilID)
	if err != nil {
		return nil, err
	}
	topic, err := s.loadTopic(ctx, c.CouncilTopicID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, c, topic) {
		return nil, apperr.Forbidden("you cannot view this council")
	}
	return c, nil
}

// ForTopic: council yang ditunjuk topic.council, atau yang terbaru bila belum ada.
func (s *Service) ForTopic(ctx context.Context, actor helpersAuth.Identity, topicID uuid.UUID) (*model.CouncilModel, error) {
	topic, err := s.loadTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	var c *model.CouncilModel
	if topic.TopicCouncilID != nil {
		c, err = repository.FindCouncilByID(ctx, s.DB, *topic.TopicCouncilID)
	} else {
		c, err = repository.LatestForTopic(ctx, s.DB, topicID)
	}
	if err != nil {
		return nil, helper.MapStoreError(err, "topic has no council", "", "failed to load council")
	}
	if !canView(actor, c, topic) {
		return nil, apperr.Forbidden("you cannot view this council")
	}
	return c, nil
}

func (s *Service) ApprovalDocumentURL(ctx context.Context, actor helpersAuth.Identity, councilID uuid.UUID) (string, error) {
	if !actor.Can(constants.CapDownloadApprovalDocument) {
		return "", apperr.Forbidden("Only admins may access approval documents.")
	}
	c, err := s.Load(ctx, councilID)
	if err != nil {
		return "", err
	}
	doc := c.Document()
	if doc == nil {
		return "", apperr.NotFound("council has no approval document")
	}
	return doc.URL, nil
}
