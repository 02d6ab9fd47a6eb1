package controller

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/councils/dto"
	"thesis_backend/internals/features/thesis/councils/model"
	"thesis_backend/internals/features/thesis/councils/service"
	topicController "thesis_backend/internals/features/thesis/topics/controller"
	userRepo "thesis_backend/internals/features/users/user/repository"
	userService "thesis_backend/internals/features/users/user/service"
	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
)

type CouncilController struct {
	DB  *gorm.DB
	Svc *service.Service
}

func NewCouncilController(db *gorm.DB, svc *service.Service) *CouncilController {
	return &CouncilController{DB: db, Svc: svc}
}

func (cc *CouncilController) respond(ctx context.Context, councils []model.CouncilModel) ([]dto.CouncilResponse, error) {
	users, err := userRepo.FindUsersByIDs(ctx, cc.DB, dto.UserIDs(councils))
	if err != nil {
		return nil, apperr.Internal("failed to load users", err)
	}
	return dto.ToCouncilResponseList(councils, users), nil
}

func (cc *CouncilController) respondOne(c *fiber.Ctx, msg string, council *model.CouncilModel, created bool) error {
	out, err := cc.respond(c.UserContext(), []model.CouncilModel{*council})
	if err != nil {
		return helper.FromError(c, err)
	}
	if created {
		return helper.JsonCreated(c, msg, out[0])
	}
	return helper.JsonOK(c, msg, out[0])
}

func (cc *CouncilController) resolveOne(ctx context.Context, id, name, field string) (uuid.UUID, error) {
	switch {
	case id != "":
		return uuid.MustParse(id), nil
	case name != "":
		ids, err := userService.ResolveUniqueNames(ctx, cc.DB, field, []string{name}, constants.RoleTeacher)
		if err != nil {
			return uuid.Nil, err
		}
		return ids[0], nil
	}
	return uuid.Nil, apperr.ValidationFields(field+" is required", map[string][]string{field: {"required"}})
}

func (cc *CouncilController) resolveCreate(ctx context.Context, req dto.CreateCouncilRequest) (dto.CouncilInput, error) {
	in := dto.CouncilInput{TopicID: uuid.MustParse(req.TopicID)}
	var err error
	if in.ChairmanID, err = cc.resolveOne(ctx, req.ChairmanID, req.ChairmanName, "chairman_id"); err != nil {
		return in, err
	}
	if in.SecretaryID, err = cc.resolveOne(ctx, req.SecretaryID, req.SecretaryName, "secretary_id"); err != nil {
		return in, err
	}
	for _, s := range req.MemberIDs {
		in.MemberIDs = append(in.MemberIDs, uuid.MustParse(s))
	}
	if len(req.MemberNames) > 0 {
		ids, err := userService.ResolveUniqueNames(ctx, cc.DB, "member_names", req.MemberNames, constants.RoleTeacher)
		if err != nil {
			return in, err
		}
		in.MemberIDs = append(in.MemberIDs, ids...)
	}
	return in, nil
}

// POST /api/councils
func (cc *CouncilController) RequestCreate(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.CreateCouncilRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.FromError(c, apperr.Validation("invalid request body"))
	}
	if err := helper.ValidateStruct(req); err != nil {
		return helper.FromError(c, err)
	}
	in, err := cc.resolveCreate(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, err)
	}
	council, err := cc.Svc.RequestCreate(c.UserContext(), actor, in)
	if err != nil {
		return helper.FromError(c, err)
	}
	return cc.respondOne(c, "council request sent for approval", council, true)
}

type councilFn func(ctx context.Context, actor helpersAuth.Identity, councilID uuid.UUID) (*model.CouncilModel, error)

func (cc *CouncilController) simple(fn councilFn, msg string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := helpersAuth.IdentityFromCtx(c)
		if err != nil {
			return helper.FromError(c, err)
		}
		id, err := topicController.ParseID(c, "id")
		if err != nil {
			return helper.FromError(c, err)
		}
		council, err := fn(c.UserContext(), actor, id)
		if err != nil {
			return helper.FromError(c, err)
		}
		return cc.respondOne(c, msg, council, false)
	}
}

// POST /api/councils/:id/approve
func (cc *CouncilController) Approve(c *fiber.Ctx) error {
	return cc.simple(cc.Svc.ExternalApprove, "council approved")(c)
}

// POST /api/councils/:id/reject {reason}
func (cc *CouncilController) Reject(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := topicController.ParseID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.FromError(c, apperr.Validation("invalid request body"))
	}
	if err := helper.ValidateStruct(req); err != nil {
		return helper.FromError(c, err)
	}
	council, err := cc.Svc.ExternalReject(c.UserContext(), actor, id, req.Reason)
	if err != nil {
		return helper.FromError(c, err)
	}
	return cc.respondOne(c, "council rejected", council, false)
}

// PATCH /api/councils/:id
func (cc *CouncilController) Update(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := topicController.ParseID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateCouncilRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.FromError(c, apperr.Validation("invalid request body"))
	}
	if err := helper.ValidateStruct(req); err != nil {
		return helper.FromError(c, err)
	}

	var in dto.UpdateCouncilInput
	if req.ChairmanID != "" {
		v := uuid.MustParse(req.ChairmanID)
		in.ChairmanID = &v
	}
	if req.SecretaryID != "" {
		v := uuid.MustParse(req.SecretaryID)
		in.SecretaryID = &v
	}
	if req.MemberIDs != nil {
		ids := make([]uuid.UUID, 0, len(*req.MemberIDs))
		for _, s := range *req.MemberIDs {
			ids = append(ids, uuid.MustParse(s))
		}
		in.MemberIDs = &ids
	}
	if req.Status != "" {
		st := constants.CouncilStatus(req.Status)
		in.Status = &st
	}

	council, err := cc.Svc.Update(c.UserContext(), actor, id, in)
	if err != nil {
		return helper.FromError(c, err)
	}
	return cc.respondOne(c, "council updated", council, false)
}

// DELETE /api/councils/:id
func (cc *CouncilController) Delete(c *fiber.Ctx) error {
	return cc.simple(cc.Svc.Delete, "council deleted")(c)
}

// POST /api/councils/:id/score {score, comment}
func (cc *CouncilController) Score(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := topicController.ParseID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.ScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.FromError(c, apperr.Validation("invalid request body"))
	}
	if err := helper.ValidateStruct(req); err != nil {
		return helper.FromError(c, err)
	}
	council, err := cc.Svc.Score(c.UserContext(), actor, id, *req.Score, req.Comment)
	if err != nil {
		return helper.FromError(c, err)
	}
	return cc.respondOne(c, "score saved", council, false)
}

// GET /api/councils/:id
func (cc *CouncilController) Get(c *fiber.Ctx) error {
	return cc.simple(cc.Svc.Get, "ok")(c)
}

// GET /api/topics/:id/council
func (cc *CouncilController) ForTopic(c *fiber.Ctx) error {
	return cc.simple(cc.Svc.ForTopic, "ok")(c)
}

// GET /api/councils?status=
func (cc *CouncilController) List(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var q dto.ListCouncilsQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.FromError(c, apperr.Validation("invalid query"))
	}
	if err := helper.ValidateStruct(q); err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := cc.Svc.List(c.UserContext(), actor, constants.CouncilStatus(q.Status), p.Offset, p.Limit)
	if err != nil {
		return helper.FromError(c, err)
	}
	return cc.list(c, rows, total, p)
}

// GET /api/councils/pending
func (cc *CouncilController) Pending(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := cc.Svc.Pending(c.UserContext(), actor, p.Offset, p.Limit)
	if err != nil {
		return helper.FromError(c, err)
	}
	return cc.list(c, rows, total, p)
}

func (cc *CouncilController) list(c *fiber.Ctx, rows []model.CouncilModel, total int64, p helper.Paging) error {
	out, err := cc.respond(c.UserContext(), rows)
	if err != nil {
		return helper.FromError(c, err)
	}
	pg := helper.BuildPagination(total, p, len(out))
	return helper.JsonList(c, "ok", out, &pg, nil)
}

// GET /api/councils/public
func (cc *CouncilController) Public(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	rows, err := cc.Svc.Public(c.UserContext(), actor)
	if err != nil {
		return helper.FromError(c, err)
	}
	councils := make([]model.CouncilModel, 0, len(rows))
	for _, r := range rows {
		councils = append(councils, r.Council)
	}
	users, err := userRepo.FindUsersByIDs(c.UserContext(), cc.DB, dto.UserIDs(councils))
	if err != nil {
		return helper.FromError(c, apperr.Internal("failed to load users", err))
	}
	out := make([]dto.PublicCouncilResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ToPublicCouncilResponse(r.Council, r.TopicName, r.Reports, users))
	}
	return helper.JsonOK(c, "ok", out)
}

// GET /api/councils/:id/approval-document
func (cc *CouncilController) ApprovalDocument(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := topicController.ParseID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	url, err := cc.Svc.ApprovalDocumentURL(c.UserContext(), actor, id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return c.Redirect(url, fiber.StatusFound)
}
