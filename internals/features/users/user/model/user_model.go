package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
)

// UserModel merepresentasikan tabel users di database
type UserModel struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;type:varchar(100);not null;index" json:"name"`
	UserName  string         `gorm:"column:user_name;type:varchar(50);not null;uniqueIndex" json:"user_name"`
	Email     *string        `gorm:"column:email;type:varchar(255);uniqueIndex" json:"email,omitempty"`
	GoogleID  *string        `gorm:"column:google_id;type:varchar(255);uniqueIndex" json:"-"`
	Password  string         `gorm:"column:password;not null" json:"-"`
	Role      constants.Role `gorm:"column:role;type:varchar(20);not null;index" json:"role"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UserModel) TableName() string {
	return "users"
}

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
