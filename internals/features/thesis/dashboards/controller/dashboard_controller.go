package controller

import (
	"github.com/gofiber/fiber/v2"

	"thesis_backend/internals/features/thesis/dashboards/service"
	helper "thesis_backend/internals/helpers"
	helpersAuth "thesis_backend/internals/helpers/auth"
)

type DashboardController struct {
	Svc *service.Service
}

func NewDashboardController(svc *service.Service) *DashboardController {
	return &DashboardController{Svc: svc}
}

// GET /api/dashboard/admin
func (dc *DashboardController) Admin(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	out, err := dc.Svc.Admin(c.UserContext(), actor)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// GET /api/dashboard/teacher?page=&per_page=
func (dc *DashboardController) Teacher(c *fiber.Ctx) error {
	actor, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	p := helper.ResolvePaging(c, 10, 50)
	out, total, err := dc.Svc.Teacher(c.UserContext(), actor, p.Offset, p.Limit)
	if err != nil {
		return helper.FromError(c, err)
	}
	pg := helper.BuildPagination(total, p, len(out.Topics))
	return helper.JsonList(c, "ok", out, &pg, nil)
}
