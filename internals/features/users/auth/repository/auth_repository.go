package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authModel "thesis_backend/internals/features/users/auth/model"
)

// BlacklistToken menyimpan hash token; upsert supaya logout ganda tidak error.
func BlacklistToken(ctx context.Context, db *gorm.DB, tokenHash string, expiredAt time.Time) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"expired_at"}),
	}).Create(&authModel.TokenBlacklist{Token: tokenHash, ExpiredAt: expiredAt}).Error
}

func IsTokenBlacklisted(ctx context.Context, db *gorm.DB, tokenHash string) (bool, error) {
	var row authModel.TokenBlacklist
	err := db.WithContext(ctx).Select("id").Where("token = ?", tokenHash).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CleanupExpiredBlacklist menghapus baris yang exp-nya sebelum `before`.
func CleanupExpiredBlacklist(ctx context.Context, db *gorm.DB, before time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expired_at < ?", before).Delete(&authModel.TokenBlacklist{})
	return res.RowsAffected, res.Error
}
