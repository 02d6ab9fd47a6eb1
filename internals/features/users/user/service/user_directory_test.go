package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/databases/dbtest"
	"thesis_backend/internals/features/users/user/model"
	"thesis_backend/internals/features/users/user/repository"
	"thesis_backend/internals/helpers/apperr"
)

func seedUser(t *testing.T, db *gorm.DB, name, userName string, role constants.Role) model.UserModel {
	t.Helper()
	u := model.UserModel{Name: name, UserName: userName, Password: "x", Role: role}
	require.NoError(t, repository.CreateUser(context.Background(), db, &u))
	return u
}

func TestResolveUniqueNames(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	budi := seedUser(t, db, "Budi", "budi", constants.RoleStudent)
	seedUser(t, db, "Sari", "sari1", constants.RoleStudent)
	seedUser(t, db, "Sari", "sari2", constants.RoleStudent)
	seedUser(t, db, "Dewi", "dewi", constants.RoleTeacher)

	ids, err := ResolveUniqueNames(ctx, db, "member_names", []string{" budi "}, constants.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, budi.ID, ids[0])

	_, err = ResolveUniqueNames(ctx, db, "member_names", []string{"Sari"}, constants.RoleStudent)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = ResolveUniqueNames(ctx, db, "member_names", []string{"Dewi"}, constants.RoleStudent)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	matches, err := CheckNames(ctx, db, []string{"Sari", "sari", "Nobody"}, "")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Len(t, matches[0].Matches, 2)
	assert.Empty(t, matches[1].Matches)
}
