package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"

	authDTO "thesis_backend/internals/features/users/auth/dto"
	"thesis_backend/internals/features/users/auth/service"
	userDTO "thesis_backend/internals/features/users/user/dto"
	helper "thesis_backend/internals/helpers"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
)

type AuthController struct {
	Svc *service.AuthService
}

func NewAuthController(svc *service.AuthService) *AuthController {
	return &AuthController{Svc: svc}
}

func setAccessCookie(c *fiber.Ctx, token string, exp time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// POST /api/auth/register
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req authDTO.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.FromError(c, apperr.Validation("invalid request body"))
	}
	user, err := ac.Svc.Register(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "registration successful", userDTO.ToUserResponse(*user))
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req authDTO.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.FromError(c, apperr.Validation("invalid request body"))
	}
	res, err := ac.Svc.Login(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, err)
	}
	setAccessCookie(c, res.AccessToken, res.ExpiresAt)
	return helper.JsonOK(c, "login successful", res)
}

// POST /api/auth/login-google
func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	var req authDTO.GoogleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.FromError(c, apperr.Validation("invalid request body"))
	}
	res, err := ac.Svc.LoginGoogle(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, err)
	}
	setAccessCookie(c, res.AccessToken, res.ExpiresAt)
	return helper.JsonOK(c, "login successful", res)
}

// POST /api/auth/logout (auth)
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	raw, _ := c.Locals(helpersAuth.LocalToken).(string)
	exp, _ := c.Locals(helpersAuth.LocalTokenExp).(time.Time)
	if err := ac.Svc.Logout(c.UserContext(), raw, exp); err != nil {
		return helper.FromError(c, err)
	}
	c.ClearCookie("access_token")
	return helper.JsonOK(c, "logout successful", nil)
}

// GET /api/auth/me (auth)
func (ac *AuthController) Me(c *fiber.Ctx) error {
	id, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	user, err := ac.Svc.Me(c.UserContext(), id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", userDTO.ToUserResponse(*user))
}

// POST /api/auth/users (auth, admin)
func (ac *AuthController) CreateUser(c *fiber.Ctx) error {
	id, err := helpersAuth.IdentityFromCtx(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var req authDTO.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.FromError(c, apperr.Validation("invalid request body"))
	}
	user, err := ac.Svc.CreateUser(c.UserContext(), id, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "user created", userDTO.ToUserResponse(*user))
}
