package route

import (
	"github.com/gofiber/fiber/v2"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/reports/controller"
	"thesis_backend/internals/features/thesis/reports/service"
	"thesis_backend/internals/middlewares"
	authMiddleware "thesis_backend/internals/middlewares/auth"
)

// ReportRoutes: /api/reports (router sudah melewati AuthMiddleware).
func ReportRoutes(api fiber.Router, svc *service.Service) {
	ctrl := controller.NewReportController(svc)

	onlyStudent := authMiddleware.RequireCapability(constants.CapSubmitReport, constants.RoleErrorStudent("this report action"))
	onlyTeacher := authMiddleware.RequireCapability(constants.CapReviewReport, constants.RoleErrorTeacher("report review"))
	upload := middlewares.UploadRateLimiter()

	reports := api.Group("/reports")
	reports.Get("/", ctrl.List)
	reports.Get("/deleted", ctrl.ListDeleted)
	reports.Get("/:id", ctrl.Get)
	reports.Get("/:id/download", onlyStudent, ctrl.Download)

	reports.Post("/", onlyStudent, upload, ctrl.Submit)
	reports.Put("/:id", onlyStudent, upload, ctrl.Edit)
	reports.Delete("/:id", onlyStudent, ctrl.Delete)
	reports.Post("/:id/restore", onlyStudent, ctrl.Restore)
	reports.Post("/topics/:topicId/submit-to-admin", onlyStudent, ctrl.SubmitToAdmin)

	reports.Post("/:id/review", onlyTeacher, ctrl.Review)
}
