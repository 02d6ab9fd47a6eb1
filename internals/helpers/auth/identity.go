package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/helpers/apperr"
)

const (
	LocalUserID   = "user_id"
	LocalUserRole = "userRole"
	LocalUserName = "user_name"
	LocalToken    = "access_token"
	LocalTokenExp = "access_token_exp"
)

// Identity adalah aktor terautentikasi yang diteruskan ke workflow.
type Identity struct {
	UserID uuid.UUID
	Role   constants.Role
	Name   string
}

func (i Identity) Can(c constants.Capability) bool { return i.Role.Can(c) }

func SetIdentity(c *fiber.Ctx, id Identity) {
	c.Locals(LocalUserID, id.UserID)
	c.Locals(LocalUserRole, id.Role)
	c.Locals(LocalUserName, id.Name)
}

// IdentityFromCtx membaca identitas yang dipasang middleware auth.
func IdentityFromCtx(c *fiber.Ctx) (Identity, error) {
	userID, ok := c.Locals(LocalUserID).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return Identity{}, apperr.Unauthenticated("login required")
	}
	role, ok := c.Locals(LocalUserRole).(constants.Role)
	if !ok || !role.Valid() {
		return Identity{}, apperr.Unauthenticated("login required")
	}
	name, _ := c.Locals(LocalUserName).(string)
	return Identity{UserID: userID, Role: role, Name: name}, nil
}
