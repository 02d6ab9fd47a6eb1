package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/users/user/model"
)

func FindUserByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.UserModel, error) {
	var user model.UserModel
	if err := db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByUserName(ctx context.Context, db *gorm.DB, userName string) (*model.UserModel, error) {
	var user model.UserModel
	if err := db.WithContext(ctx).Where("user_name = ?", strings.TrimSpace(userName)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUserByGoogleOrEmail: akun yang sudah ditautkan google_id, atau email yang sama.
func FindUserByGoogleOrEmail(ctx context.Context, db *gorm.DB, googleID, email string) (*model.UserModel, error) {
	var user model.UserModel
	q := db.WithContext(ctx).Where("google_id = ?", googleID)
	if email != "" {
		q = q.Or("LOWER(email) = ?", strings.ToLower(email))
	}
	if err := q.Order("created_at ASC").First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func CreateUser(ctx context.Context, db *gorm.DB, user *model.UserModel) error {
	return db.WithContext(ctx).Create(user).Error
}

func LinkGoogleID(ctx context.Context, db *gorm.DB, userID uuid.UUID, googleID string) error {
	return db.WithContext(ctx).Model(&model.UserModel{}).
		Where("id = ? AND google_id IS NULL", userID).
		Update("google_id", googleID).Error
}

// FindUsersByIDs mengembalikan map id → user; id yang tidak ada tidak muncul di map.
func FindUsersByIDs(ctx context.Context, db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]model.UserModel, error) {
	out := make(map[uuid.UUID]model.UserModel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []model.UserModel
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// LockUsers mengunci baris user (FOR UPDATE) di dalam transaksi.
func LockUsers(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]model.UserModel, error) {
	out := make(map[uuid.UUID]model.UserModel, len(ids))
	var users []model.UserModel
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// FindUsersByNames: pencocokan nama case-insensitive, opsional dibatasi role.
func FindUsersByNames(ctx context.Context, db *gorm.DB, names []string, role constants.Role) ([]model.UserModel, error) {
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			lowered = append(lowered, n)
		}
	}
	var users []model.UserModel
	if len(lowered) == 0 {
		return users, nil
	}
	q := db.WithContext(ctx).Where("LOWER(name) IN ?", lowered)
	if role != "" {
		q = q.Where("role = ?", role)
	}
	err := q.Order("name ASC, created_at ASC").Find(&users).Error
	return users, err
}

func ListUsers(ctx context.Context, db *gorm.DB, role constants.Role, offset, limit int) ([]model.UserModel, int64, error) {
	q := db.WithContext(ctx).Model(&model.UserModel{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []model.UserModel
	if err := q.Order("name ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// FirstUserByRole: user paling awal terdaftar untuk suatu role (mis. admin penerima notifikasi).
func FirstUserByRole(ctx context.Context, db *gorm.DB, role constants.Role) (*model.UserModel, error) {
	var user model.UserModel
	if err := db.WithContext(ctx).Where("role = ?", role).Order("created_at ASC, id ASC").First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func ListUserIDsByRole(ctx context.Context, db *gorm.DB, role constants.Role) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.WithContext(ctx).Model(&model.UserModel{}).
		Where("role = ?", role).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}
