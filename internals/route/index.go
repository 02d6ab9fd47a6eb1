package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	notifRoute "thesis_backend/internals/features/notifications/route"
	councilRoute "thesis_backend/internals/features/thesis/councils/route"
	councilService "thesis_backend/internals/features/thesis/councils/service"
	dashboardRoute "thesis_backend/internals/features/thesis/dashboards/route"
	dashboardService "thesis_backend/internals/features/thesis/dashboards/service"
	discussionRoute "thesis_backend/internals/features/thesis/discussions/route"
	discussionService "thesis_backend/internals/features/thesis/discussions/service"
	reportRoute "thesis_backend/internals/features/thesis/reports/route"
	reportService "thesis_backend/internals/features/thesis/reports/service"
	topicRoute "thesis_backend/internals/features/thesis/topics/route"
	topicService "thesis_backend/internals/features/thesis/topics/service"
	authRoute "thesis_backend/internals/features/users/auth/route"
	authService "thesis_backend/internals/features/users/auth/service"
	userRoute "thesis_backend/internals/features/users/user/route"
	authMiddleware "thesis_backend/internals/middlewares/auth"
)

var startTime time.Time

// Deps: service yang sudah dirakit di main.
type Deps struct {
	DB          *gorm.DB
	Auth        *authService.AuthService
	Topics      *topicService.Service
	Reports     *reportService.Service
	Councils    *councilService.Service
	Discussions *discussionService.Service
	Dashboards  *dashboardService.Service
}

func SetupRoutes(app *fiber.App, d Deps) {
	startTime = time.Now()

	BaseRoutes(app, d.DB)

	api := app.Group("/api")
	authMw := authMiddleware.AuthMiddleware(d.Auth)

	// ===================== AUTH (public + logout/me) =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	authRoute.AuthRoutes(api, d.Auth, authMw)

	// ===================== PRIVATE =====================
	log.Println("[INFO] Setting up PRIVATE group...")
	private := api.Group("", authMw)

	userRoute.UserRoutes(private, d.DB)
	notifRoute.NotificationRoutes(private, d.DB)

	log.Println("[INFO] Setting up thesis routes...")
	topicRoute.TopicRoutes(private, d.DB, d.Topics)
	reportRoute.ReportRoutes(private, d.Reports)
	councilRoute.CouncilRoutes(private, d.DB, d.Councils)
	discussionRoute.DiscussionRoutes(private, d.Discussions)
	dashboardRoute.DashboardRoutes(private, d.Dashboards)

	log.Println("[INFO] routes ready")
}
