package controller

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/topics/dto"
	"thesis_backend/internals/features/thesis/topics/model"
	"thesis_backend/internals/features/thesis/topics/service"
	userRepo "thesis_backend/internals/features/users/user/repository"
	userService "thesis_backend/internals/features/users/user/service"
	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
)

type TopicController struct {
	DB  *gorm.DB
	Svc *service.Service
}

func NewTopicController(db *gorm.DB, svc *service.Service) *TopicController {
	return &TopicController{DB: db, Svc: svc}
}

// ParseID membaca path param uuid.
func ParseID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.ValidationFields("invalid id", map[string][]string{name: {"uuid"}})
	}
	return id, nil
}

func (tc *TopicController) respond(ctx context.Context, topics []model.TopicModel) ([]dto.TopicResponse, error) {
	users, err := userRepo.FindUsersByIDs(ctx, tc.DB, dto.UserIDs(topics))
	if err != nil {
		return nil, apperr.Internal("failed to load users", err)
	}
	return dto.ToTopicResponseList(topics, users), nil
}

func (tc *TopicController) respondOne(c *fiber.Ctx, msg string, topic *model.TopicModel, created bool) error {
	out, err := tc.respond(c.UserContext(), []model.TopicModel{*topic})
	if err != nil {
		return helper.FromError(c, err)
	}
	if created {
		return helper.JsonCreated(c, msg, out[0])
	}
	return helper.JsonOK(c, msg, out[0])
}

// resolveRegister: id diutamakan, nama di-resolve lewat direktori user.
func (tc *TopicController) resolveRegister(ctx context.Context, req dto.RegisterTopicRequest) (dto.RegisterTopicInput, error) {
	in := dto.RegisterTopicInput{TopicName: req.TopicName, TopicDescription: req.TopicDescription}

	switch {
	case req.SupervisorID != "":
		in.SupervisorID = uuid.MustParse(req.SupervisorID)
	case req.SupervisorName != "":
		ids, err := userService.ResolveUniqueNames(ctx, tc.DB, "supervisor_name", []string{req.SupervisorName}, constants.RoleTeacher)
		if err != nil {
			return in, err
		}
		in.SupervisorID = ids[0]
	default:
		return in, apperr.ValidationFields("supervisor is required", map[string][]string{"supervisor_id": {"required"}})
	}

	for _, s := range req.MemberIDs {
		in.MemberIDs = append(in.MemberIDs, uuid.MustParse(s))
	}
	if len(req.MemberNames) > 0 {
		ids, err := userService.ResolveUniqueNames(ctx, tc.DB, "member_names", req.MemberNames, constants.RoleStudent)
		if err != nil {
			return in, err
		}
		in.MemberIDs = append(in.MemberIDs, ids...)
	}
	return in, nil
}

// POST /api/topics
func (tc *TopicController) Register(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.RegisterTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.FromError(c, apperr.Validation("invalid request body"))
	}
	if err := helper.ValidateStruct(req); err != nil {
		return helper.FromError(c, err)
	}
	in, err := tc.resolveRegister(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, err)
	}
	topic, err := tc.Svc.Register(c.UserContext(), actor, in)
	if err != nil {
		return helper.FromError(c, err)
	}
	return tc.respondOne(c, "topic registered, waiting for supervisor review", topic, true)
}

type transitionFn func(ctx context.Context, actor helpersAuth.Identity, topicID uuid.UUID) (*model.TopicModel, error)

func (tc *TopicController) simple(fn transitionFn, msg string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := helpersAuth.IdentityFromCtx(c)
		if err != nil {
			return helper.FromError(c, err)
		}
		id, err := ParseID(c, "id")
		if err != nil {
			return helper.FromError(c, err)
		}
		topic, err := fn(c.UserContext(), actor, id)
		if err != nil {
			return helper.FromError(c, err)
		}
		return tc.respondOne(c, msg, topic, false)
	}
}

type decisionFn func(ctx context.Context, actor helpersAuth.Identity, topicID uuid.UUID, approve bool) (*model.TopicModel, error)

func (tc *TopicController) decision(fn decisionFn) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := helpersAuth.IdentityFromCtx(c)
		if err != nil {
			return helper.FromError(c, err)
		}
		id, err := ParseID(c, "id")
		if err != nil {
			return helper.FromError(c, err)
		}
		var req dto.DecisionRequest
		if err := c.BodyParser(&req); err != nil {
			return helper.FromError(c, apperr.Validation("invalid request body"))
		}
		if err := helper.ValidateStruct(req); err != nil {
			return helper.FromError(c, err)
		}
		topic, err := fn(c.UserContext(), actor, id, req.Approve())
		if err != nil {
			return helper.FromError(c, err)
		}
		return tc.respondOne(c, "topic "+string(topic.TopicStatus), topic, false)
	}
}

// POST /api/topics/:id/teacher-decision
func (tc *TopicController) TeacherDecision(c *fiber.Ctx) error {
	return tc.decision(tc.Svc.TeacherDecision)(c)
}

// POST /api/topics/:id/admin-decision
func (tc *TopicController) AdminDecision(c *fiber.Ctx) error {
	return tc.decision(tc.Svc.AdminDecision)(c)
}

// POST /api/topics/:id/cancel
func (tc *TopicController) Cancel(c *fiber.Ctx) error {
	return tc.simple(tc.Svc.StudentCancel, "topic canceled")(c)
}

// POST /api/topics/:id/request-stop
func (tc *TopicController) RequestStop(c *fiber.Ctx) error {
	return tc.simple(tc.Svc.RequestStop, "stop request sent to admin")(c)
}

// POST /api/topics/:id/approve-stop
func (tc *TopicController) ApproveStop(c *fiber.Ctx) error {
	return tc.simple(tc.Svc.ApproveStop, "topic stopped")(c)
}

// GET /api/topics/:id
func (tc *TopicController) Get(c *fiber.Ctx) error {
	return tc.simple(tc.Svc.Get, "ok")(c)
}

// GET /api/topics?status=
func (tc *TopicController) List(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var q dto.ListTopicsQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.FromError(c, apperr.Validation("invalid query"))
	}
	if err := helper.ValidateStruct(q); err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	topics, total, err := tc.Svc.List(c.UserContext(), actor, constants.TopicStatus(q.Status), p.Offset, p.Limit)
	if err != nil {
		return helper.FromError(c, err)
	}
	out, err := tc.respond(c.UserContext(), topics)
	if err != nil {
		return helper.FromError(c, err)
	}
	pg := helper.BuildPagination(total, p, len(out))
	return helper.JsonList(c, "ok", out, &pg, nil)
}
