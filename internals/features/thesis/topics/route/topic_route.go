package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/topics/controller"
	"thesis_backend/internals/features/thesis/topics/service"
	authMiddleware "thesis_backend/internals/middlewares/auth"
)

// TopicRoutes: /api/topics (router sudah melewati AuthMiddleware).
func TopicRoutes(api fiber.Router, db *gorm.DB, svc *service.Service) {
	ctrl := controller.NewTopicController(db, svc)

	onlyStudent := authMiddleware.RequireCapability(constants.CapRegisterTopic, constants.RoleErrorStudent("this topic action"))
	onlyTeacher := authMiddleware.RequireCapability(constants.CapDecideTopicAsSupervisor, constants.RoleErrorTeacher("supervisor decisions"))
	onlyAdmin := authMiddleware.RequireCapability(constants.CapDecideTopicAsAdmin, constants.RoleErrorAdmin("topic approval"))

	topics := api.Group("/topics")
	topics.Get("/", ctrl.List)
	topics.Get("/:id", ctrl.Get)

	topics.Post("/", onlyStudent, ctrl.Register)
	topics.Post("/:id/cancel", onlyStudent, ctrl.Cancel)
	topics.Post("/:id/request-stop", onlyStudent, ctrl.RequestStop)

	topics.Post("/:id/teacher-decision", onlyTeacher, ctrl.TeacherDecision)

	topics.Post("/:id/admin-decision", onlyAdmin, ctrl.AdminDecision)
	topics.Post("/:id/approve-stop", onlyAdmin, ctrl.ApproveStop)
}
