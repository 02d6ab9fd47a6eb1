package route

import (
	"github.com/gofiber/fiber/v2"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/discussions/controller"
	"thesis_backend/internals/features/thesis/discussions/service"
	authMiddleware "thesis_backend/internals/middlewares/auth"
)

// DiscussionRoutes: /api/discussions (router sudah melewati AuthMiddleware).
func DiscussionRoutes(api fiber.Router, svc *service.Service) {
	ctrl := controller.NewDiscussionController(svc)

	participants := authMiddleware.RequireCapability(constants.CapJoinDiscussion, "Only students and teachers may join discussions.")

	g := api.Group("/discussions", participants)
	g.Get("/", ctrl.List)
	g.Delete("/messages/:messageId", ctrl.DeleteMessage)
	g.Post("/:topicId/start", ctrl.Start)
	g.Post("/:topicId/messages", ctrl.PostMessage)
}
