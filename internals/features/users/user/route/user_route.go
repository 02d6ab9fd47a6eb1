package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/users/user/controller"
	authMiddleware "thesis_backend/internals/middlewares/auth"
)

// UserRoutes: /api/users (router sudah melewati AuthMiddleware).
func UserRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewUserController(db)

	users := api.Group("/users")
	users.Get("/", authMiddleware.RequireCapability(constants.CapManageUsers, constants.RoleErrorAdmin("the user list")), ctrl.List)
	users.Get("/teachers", ctrl.Teachers)
	users.Get("/check", ctrl.Check)
}
