package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"thesis_backend/internals/features/notifications/controller"
)

// NotificationRoutes dipasang di group yang sudah melewati AuthMiddleware.
func NotificationRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := controller.NewNotificationController(db)

	g := r.Group("/notifications")
	g.Get("/", ctrl.List)
	g.Put("/mark-all-read", ctrl.MarkAllAsRead)
	g.Put("/:id/read", ctrl.MarkAsRead)
}
