package route

import (
	"github.com/gofiber/fiber/v2"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/users/auth/controller"
	"thesis_backend/internals/features/users/auth/service"
	rateLimiter "thesis_backend/internals/middlewares"
	authMiddleware "thesis_backend/internals/middlewares/auth"
)

// AuthRoutes: /api/auth. authMw dipasang hanya untuk endpoint yang butuh login.
func AuthRoutes(api fiber.Router, svc *service.AuthService, authMw fiber.Handler) {
	ctrl := controller.NewAuthController(svc)

	auth := api.Group("/auth")
	auth.Post("/register", rateLimiter.RegisterRateLimiter(), ctrl.Register)
	auth.Post("/login", rateLimiter.LoginRateLimiter(), ctrl.Login)
	auth.Post("/login-google", rateLimiter.LoginRateLimiter(), ctrl.LoginGoogle)

	auth.Post("/logout", authMw, ctrl.Logout)
	auth.Get("/me", authMw, ctrl.Me)

	// register publik hanya student/teacher; akun admin & uniadmin lewat sini
	auth.Post("/users", authMw,
		authMiddleware.RequireCapability(constants.CapManageUsers, constants.RoleErrorAdmin("user creation")),
		ctrl.CreateUser)
}
