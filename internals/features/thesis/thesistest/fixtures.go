// Package thesistest berisi fixture bersama untuk test workflow thesis.
package thesistest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/databases/dbtest"
	notifModel "thesis_backend/internals/features/notifications/model"
	notifService "thesis_backend/internals/features/notifications/service"
	reportModel "thesis_backend/internals/features/thesis/reports/model"
	topicModel "thesis_backend/internals/features/thesis/topics/model"
	userModel "thesis_backend/internals/features/users/user/model"
	helpersAuth "thesis_backend/internals/helpers/auth"
	"thesis_backend/internals/helpers/oss"
)

type Env struct {
	DB       *gorm.DB
	Notifier *notifService.Dispatcher
	Files    *oss.MemoryFileStore
}

func New(t *testing.T) *Env {
	t.Helper()
	db := dbtest.Open(t)
	return &Env{
		DB:       db,
		Notifier: notifService.NewDispatcher(db, notifService.WithRetry(1, 0)),
		Files:    oss.NewMemoryFileStore(),
	}
}

// User membuat akun dan mengembalikan identitasnya sebagai aktor.
func (e *Env) User(t *testing.T, role constants.Role, name string) helpersAuth.Identity {
	t.Helper()
	u := userModel.UserModel{
		Name:     name,
		UserName: fmt.Sprintf("%s-%s", role, uuid.NewString()[:8]),
		Password: "x",
		Role:     role,
	}
	require.NoError(t, e.DB.Create(&u).Error)
	return helpersAuth.Identity{UserID: u.ID, Role: role, Name: name}
}

// Topic menyisipkan topik langsung dengan status tertentu; anggota pertama adalah ketua.
func (e *Env) Topic(t *testing.T, status constants.TopicStatus, supervisor helpersAuth.Identity, members ...helpersAuth.Identity) *topicModel.TopicModel {
	t.Helper()
	topic := &topicModel.TopicModel{
		TopicName:         "Topic " + uuid.NewString()[:6],
		TopicSupervisorID: supervisor.UserID,
		TopicStatus:       status,
	}
	if len(members) > 0 {
		topic.TopicCreatedBy = members[0].UserID
	}
	for i, m := range members {
		topic.Members = append(topic.Members, topicModel.TopicMemberModel{TopicMemberUserID: m.UserID, TopicMemberPosition: i})
	}
	require.NoError(t, e.DB.Create(topic).Error)
	return topic
}

// Report menyisipkan laporan; approved=true juga menandai tidak bisa diedit.
func (e *Env) Report(t *testing.T, topic *topicModel.TopicModel, student helpersAuth.Identity, status constants.ReportStatus, submitted bool) *reportModel.ReportModel {
	t.Helper()
	r := &reportModel.ReportModel{
		ReportTopicID:          topic.TopicID,
		ReportStudentID:        student.UserID,
		ReportFileURL:          "memory://reports/seed.pdf",
		ReportFileExternalID:   "reports/seed.pdf",
		ReportFileName:         "seed.pdf",
		ReportFileMIME:         "application/pdf",
		ReportContent:          "progress",
		ReportPeriod:           "P1",
		ReportStatus:           status,
		ReportIsEditable:       status == constants.ReportPending,
		ReportSubmittedToAdmin: submitted,
	}
	require.NoError(t, e.DB.Create(r).Error)
	return r
}

// Messages mengembalikan isi notifikasi penerima, terlama dulu.
func (e *Env) Messages(t *testing.T, userID uuid.UUID) []string {
	t.Helper()
	var rows []notifModel.NotificationModel
	require.NoError(t, e.DB.WithContext(context.Background()).
		Where("notification_recipient_id = ?", userID).
		Order("notification_created_at ASC").
		Find(&rows).Error)
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.NotificationMessage)
	}
	return out
}
