package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/users/user/dto"
	"thesis_backend/internals/features/users/user/repository"
	"thesis_backend/internals/features/users/user/service"
	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/apperr"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// GET /api/users?role=&page=&per_page= (admin)
func (uc *UserController) List(c *fiber.Ctx) error {
	var q dto.ListUsersQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.FromError(c, apperr.Validation("invalid query"))
	}
	if err := helper.ValidateStruct(q); err != nil {
		return helper.FromError(c, err)
	}
	role, _ := constants.ParseRole(q.Role)

	p := helper.ResolvePaging(c, 20, 100)
	users, total, err := repository.ListUsers(c.UserContext(), uc.DB, role, p.Offset, p.Limit)
	if err != nil {
		return helper.FromError(c, apperr.Internal("failed to list users", err))
	}
	pg := helper.BuildPagination(total, p, len(users))
	return helper.JsonList(c, "ok", dto.ToUserResponseList(users), &pg, nil)
}

// GET /api/users/teachers
func (uc *UserController) Teachers(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 50, 200)
	users, total, err := repository.ListUsers(c.UserContext(), uc.DB, constants.RoleTeacher, p.Offset, p.Limit)
	if err != nil {
		return helper.FromError(c, apperr.Internal("failed to list teachers", err))
	}
	briefs := make([]dto.UserBrief, 0, len(users))
	for _, u := range users {
		briefs = append(briefs, dto.ToUserBrief(u))
	}
	pg := helper.BuildPagination(total, p, len(briefs))
	return helper.JsonList(c, "ok", briefs, &pg, nil)
}

// GET /api/users/check?name=a,b&role=student
func (uc *UserController) Check(c *fiber.Ctx) error {
	var names []string
	for _, n := range strings.Split(c.Query("name"), ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	q := dto.CheckUsersQuery{Names: names}
	if err := helper.ValidateStruct(q); err != nil {
		return helper.FromError(c, err)
	}
	var role constants.Role
	if raw := c.Query("role"); raw != "" {
		r, ok := constants.ParseRole(raw)
		if !ok {
			return helper.FromError(c, apperr.ValidationFields("invalid role", map[string][]string{"role": {"oneof"}}))
		}
		role = r
	}

	matches, err := service.CheckNames(c.UserContext(), uc.DB, q.Names, role)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", matches)
}
