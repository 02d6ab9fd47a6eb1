package dto

import (
	"github.com/google/uuid"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/users/user/model"
)

type UserResponse struct {
	ID       uuid.UUID      `json:"id"`
	Name     string         `json:"name"`
	UserName string         `json:"user_name"`
	Email    *string        `json:"email,omitempty"`
	Role     constants.Role `json:"role"`
}

// UserBrief dipakai saat user disisipkan di response entitas lain.
type UserBrief struct {
	ID   uuid.UUID      `json:"id"`
	Name string         `json:"name"`
	Role constants.Role `json:"role,omitempty"`
}

func ToUserResponse(u model.UserModel) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, UserName: u.UserName, Email: u.Email, Role: u.Role}
}

func ToUserResponseList(users []model.UserModel) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out
}

func ToUserBrief(u model.UserModel) UserBrief {
	return UserBrief{ID: u.ID, Name: u.Name, Role: u.Role}
}

type ListUsersQuery struct {
	Role string `query:"role" validate:"omitempty,oneof=student teacher admin uniadmin"`
}

type CheckUsersQuery struct {
	Names []string `validate:"required,min=1,max=10,dive,required,max=100"`
}

// NameMatch: hasil resolusi nama → id (bisa lebih dari satu kalau nama kembar).
type NameMatch struct {
	Name    string      `json:"name"`
	Matches []UserBrief `json:"matches"`
}
