package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/councils/controller"
	"thesis_backend/internals/features/thesis/councils/service"
	authMiddleware "thesis_backend/internals/middlewares/auth"
)

// CouncilRoutes: /api/councils dan /api/topics/:id/council (router sudah melewati AuthMiddleware).
func CouncilRoutes(api fiber.Router, db *gorm.DB, svc *service.Service) {
	ctrl := controller.NewCouncilController(db, svc)

	onlyAdmin := authMiddleware.RequireCapability(constants.CapRequestCouncil, constants.RoleErrorAdmin("council management"))
	onlyUniAdmin := authMiddleware.RequireCapability(constants.CapDecideCouncil, constants.RoleErrorUniAdmin("council approval"))
	onlyTeacher := authMiddleware.RequireCapability(constants.CapScoreCouncil, constants.RoleErrorTeacher("council scoring"))
	onlyStudent := authMiddleware.RequireCapability(constants.CapViewPublicCouncils, constants.RoleErrorStudent("public councils"))
	docReaders := authMiddleware.RequireCapability(constants.CapDownloadApprovalDocument, "Only admins may access approval documents.")

	api.Get("/topics/:id/council", ctrl.ForTopic)

	councils := api.Group("/councils")
	councils.Get("/", ctrl.List)
	councils.Get("/pending", onlyUniAdmin, ctrl.Pending)
	councils.Get("/public", onlyStudent, ctrl.Public)
	councils.Get("/:id", ctrl.Get)
	councils.Get("/:id/approval-document", docReaders, ctrl.ApprovalDocument)

	councils.Post("/", onlyAdmin, ctrl.RequestCreate)
	councils.Patch("/:id", onlyAdmin, ctrl.Update)
	councils.Delete("/:id", onlyAdmin, ctrl.Delete)

	councils.Post("/:id/approve", onlyUniAdmin, ctrl.Approve)
	councils.Post("/:id/reject", onlyUniAdmin, ctrl.Reject)

	councils.Post("/:id/score", onlyTeacher, ctrl.Score)
}
