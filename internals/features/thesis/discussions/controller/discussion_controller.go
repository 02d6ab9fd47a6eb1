package controller

import (
	"github.com/gofiber/fiber/v2"

	"thesis_backend/internals/features/thesis/discussions/dto"
	"thesis_backend/internals/features/thesis/discussions/service"
	topicController "thesis_backend/internals/features/thesis/topics/controller"
	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
)

type DiscussionController struct {
	Svc *service.Service
}

func NewDiscussionController(svc *service.Service) *DiscussionController {
	return &DiscussionController{Svc: svc}
}

// POST /api/discussions/:topicId/start
func (dc *DiscussionController) Start(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	topicID, err := topicController.ParseID(c, "topicId")
	if err != nil {
		return helper.FromError(c, err)
	}
	d, err := dc.Svc.Start(c.UserContext(), actor, topicID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "discussion ready", dto.ToDiscussionResponse(*d))
}

// GET /api/discussions?page=&per_page= (paging berlaku untuk pesan per diskusi)
func (dc *DiscussionController) List(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ResolvePaging(c, 50, 200)
	threads, err := dc.Svc.List(c.UserContext(), actor, p.Offset, p.Limit)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToThreadResponseList(threads))
}

// POST /api/discussions/:topicId/messages {text}
func (dc *DiscussionController) PostMessage(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	topicID, err := topicController.ParseID(c, "topicId")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.PostMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.FromError(c, apperr.Validation("invalid request body"))
	}
	m, err := dc.Svc.PostMessage(c.UserContext(), actor, topicID, req.Text)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "message posted", dto.ToMessageResponse(*m))
}

// DELETE /api/discussions/messages/:messageId
func (dc *DiscussionController) DeleteMessage(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := topicController.ParseID(c, "messageId")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := dc.Svc.DeleteMessage(c.UserContext(), actor, id); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "message deleted", fiber.Map{"message_id": id})
}
