package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"thesis_backend/internals/configs"
	authRepo "thesis_backend/internals/features/users/auth/repository"
)

// RunBlacklistCleanup menghapus token blacklist yang exp-nya lebih tua dari ttlDays.
func RunBlacklistCleanup(ctx context.Context, db *gorm.DB, now time.Time, ttlDays int) (int64, error) {
	before := now.Add(-time.Duration(ttlDays) * 24 * time.Hour)
	return authRepo.CleanupExpiredBlacklist(ctx, db, before)
}

// StartBlacklistCleanupScheduler menjalankan pembersihan token_blacklist tiap hari.
func StartBlacklistCleanupScheduler(db *gorm.DB) (*cron.Cron, error) {
	ttlDays := configs.GetEnvInt("TOKEN_BLACKLIST_TTL_DAYS", 7)

	c := cron.New()
	_, err := c.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := RunBlacklistCleanup(ctx, db, time.Now().UTC(), ttlDays)
		if err != nil {
			log.Printf("[CRON] token_blacklist cleanup failed: %v", err)
			return
		}
		log.Printf("[CRON] token_blacklist cleanup removed %d rows", n)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
