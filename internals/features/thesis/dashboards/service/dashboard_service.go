package service

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
	notifRepo "thesis_backend/internals/features/notifications/repository"
	councilRepo "thesis_backend/internals/features/thesis/councils/repository"
	"thesis_backend/internals/features/thesis/dashboards/dto"
	reportRepo "thesis_backend/internals/features/thesis/reports/repository"
	topicRepo "thesis_backend/internals/features/thesis/topics/repository"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
)

type Service struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// count menjalankan satu COUNT ke dalam *dst.
func count(g *errgroup.Group, dst *int64, fn func() (int64, error)) {
	g.Go(func() error {
		n, err := fn()
		*dst = n
		return err
	})
}

func (s *Service) Admin(ctx context.Context, actor helpersAuth.Identity) (*dto.AdminDashboard, error) {
	if !actor.Can(constants.CapViewAdminDashboard) {
		return nil, apperr.Forbidden(constants.RoleErrorAdmin("the admin dashboard"))
	}
	out := &dto.AdminDashboard{}
	g, gctx := errgroup.WithContext(ctx)

	count(g, &out.Topics, func() (int64, error) {
		return topicRepo.CountTopics(gctx, s.DB, topicRepo.ListFilter{})
	})
	count(g, &out.TopicsAwaitingAdmin, func() (int64, error) {
		return topicRepo.CountTopics(gctx, s.DB, topicRepo.ListFilter{Statuses: []constants.TopicStatus{constants.TopicTeacherApprove}})
	})
	count(g, &out.StopRequests, func() (int64, error) {
		return topicRepo.CountTopics(gctx, s.DB, topicRepo.ListFilter{Statuses: []constants.TopicStatus{constants.TopicStopPerforming}})
	})
	count(g, &out.ReportsSubmitted, func() (int64, error) {
		return reportRepo.CountReports(gctx, s.DB, reportRepo.ListFilter{SubmittedOnly: true})
	})
	count(g, &out.UnreadNotifications, func() (int64, error) {
		return notifRepo.CountUnread(gctx, s.DB, actor.UserID)
	})
	g.Go(func() error {
		m, err := councilRepo.CountByStatus(gctx, s.DB)
		out.CouncilsByStatus = m
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, apperr.Internal("failed to load dashboard", err)
	}
	return out, nil
}

// Teacher: topik bimbingan (paged) plus ringkasan.
func (s *Service) Teacher(ctx context.Context, actor helpersAuth.Identity, offset, limit int) (*dto.TeacherDashboard, int64, error) {
	if !actor.Can(constants.CapViewTeacherDashboard) {
		return nil, 0, apperr.Forbidden(constants.RoleErrorTeacher("the teacher dashboard"))
	}
	approved := topicRepo.ListFilter{
		SupervisorID: actor.UserID,
		Statuses:     []constants.TopicStatus{constants.TopicApproved},
	}
	out := &dto.TeacherDashboard{}
	var total int64
	g, gctx := errgroup.WithContext(ctx)

	count(g, &out.ApprovedTopics, func() (int64, error) {
		return topicRepo.CountTopics(gctx, s.DB, approved)
	})
	count(g, &out.Students, func() (int64, error) {
		return topicRepo.CountDistinctMembers(gctx, s.DB, approved)
	})
	count(g, &out.UnreadNotifications, func() (int64, error) {
		return notifRepo.CountUnread(gctx, s.DB, actor.UserID)
	})
	g.Go(func() error {
		rows, n, err := topicRepo.ListTopics(gctx, s.DB, topicRepo.ListFilter{SupervisorID: actor.UserID}, offset, limit)
		out.Topics = dto.ToTeacherTopics(rows)
		total = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, 0, apperr.Internal("failed to load dashboard", err)
	}
	return out, total, nil
}
