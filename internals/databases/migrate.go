package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"thesis_backend/internals/constants"
	notificationModel "thesis_backend/internals/features/notifications/model"
	councilModel "thesis_backend/internals/features/thesis/councils/model"
	discussionModel "thesis_backend/internals/features/thesis/discussions/model"
	reportModel "thesis_backend/internals/features/thesis/reports/model"
	topicModel "thesis_backend/internals/features/thesis/topics/model"
	authModel "thesis_backend/internals/features/users/auth/model"
	userModel "thesis_backend/internals/features/users/user/model"
)

func Models() []any {
	return []any{
		&userModel.UserModel{},
		&authModel.TokenBlacklist{},
		&notificationModel.NotificationModel{},
		&topicModel.TopicModel{},
		&topicModel.TopicMemberModel{},
		&reportModel.ReportModel{},
		&councilModel.CouncilModel{},
		&councilModel.CouncilMemberModel{},
		&councilModel.CouncilScoreModel{},
		&councilModel.CouncilApprovalHistoryModel{},
		&discussionModel.DiscussionModel{},
		&discussionModel.DiscussionMessageModel{},
	}
}

// Migrate menjalankan AutoMigrate lalu index yang tidak bisa diekspresikan lewat tag gorm.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range partialIndexes() {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func partialIndexes() []string {
	open := make([]string, 0, len(constants.OpenCouncilStatuses))
	for _, s := range constants.OpenCouncilStatuses {
		open = append(open, "'"+string(s)+"'")
	}
	return []string{
		// satu council terbuka per topic
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS uq_councils_topic_open
			ON councils (council_topic_id) WHERE council_status IN (%s)`, strings.Join(open, ",")),
		`CREATE INDEX IF NOT EXISTS idx_reports_topic_live
			ON reports (report_topic_id, report_status) WHERE report_is_deleted = false`,
	}
}
