package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"thesis_backend/internals/features/notifications/dto"
	"thesis_backend/internals/features/notifications/repository"
	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GET /api/notifications?unread=true&page=&per_page=
func (ctrl *NotificationController) List(c *fiber.Ctx) error {
	me, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	unreadOnly := c.QueryBool("unread", false)

	rows, total, err := repository.ListForRecipient(c.UserContext(), ctrl.DB, me.UserID, unreadOnly, p.Offset, p.Limit)
	if err != nil {
		return helper.FromError(c, apperr.Internal("failed to load notifications", err))
	}
	unread, err := repository.CountUnread(c.UserContext(), ctrl.DB, me.UserID)
	if err != nil {
		return helper.FromError(c, apperr.Internal("failed to count notifications", err))
	}

	pg := helper.BuildPagination(total, p, len(rows))
	return helper.JsonList(c, "notifications", dto.ToNotificationResponseList(rows), &pg, fiber.Map{"unread_count": unread})
}

// PUT /api/notifications/mark-all-read
func (ctrl *NotificationController) MarkAllAsRead(c *fiber.Ctx) error {
	me, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	n, err := repository.MarkAllAsRead(c.UserContext(), ctrl.DB, me.UserID, time.Now().UTC())
	if err != nil {
		return helper.FromError(c, apperr.Internal("failed to update notifications", err))
	}
	return helper.JsonUpdated(c, "all notifications marked as read", fiber.Map{"updated": n})
}

// PUT /api/notifications/:id/read
func (ctrl *NotificationController) MarkAsRead(c *fiber.Ctx) error {
	me, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.FromError(c, apperr.Validation("invalid notification id"))
	}
	if _, err := repository.MarkAsRead(c.UserContext(), ctrl.DB, me.UserID, id, time.Now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.FromError(c, apperr.NotFound("notification not found"))
		}
		return helper.FromError(c, apperr.Internal("failed to update notification", err))
	}
	return helper.JsonUpdated(c, "notification marked as read", fiber.Map{"id": id})
}
