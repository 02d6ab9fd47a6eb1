package route

import (
	"github.com/gofiber/fiber/v2"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/dashboards/controller"
	"thesis_backend/internals/features/thesis/dashboards/service"
	authMiddleware "thesis_backend/internals/middlewares/auth"
)

// DashboardRoutes: /api/dashboard (router sudah melewati AuthMiddleware).
func DashboardRoutes(api fiber.Router, svc *service.Service) {
	ctrl := controller.NewDashboardController(svc)

	g := api.Group("/dashboard")
	g.Get("/admin",
		authMiddleware.RequireCapability(constants.CapViewAdminDashboard, constants.RoleErrorAdmin("the admin dashboard")),
		ctrl.Admin)
	g.Get("/teacher",
		authMiddleware.RequireCapability(constants.CapViewTeacherDashboard, constants.RoleErrorTeacher("the teacher dashboard")),
		ctrl.Teacher)
}
