package database_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesis_backend/internals/constants"
	database "thesis_backend/internals/databases"
	"thesis_backend/internals/databases/dbtest"
	councilModel "thesis_backend/internals/features/thesis/councils/model"
	helper "thesis_backend/internals/helpers"
)

func TestMigrateEnforcesOneOpenCouncilPerTopic(t *testing.T) {
	db := dbtest.Open(t)
	topicID := uuid.New()

	newCouncil := func(status constants.CouncilStatus) *councilModel.CouncilModel {
		return &councilModel.CouncilModel{
			CouncilTopicID:     topicID,
			CouncilChairmanID:  uuid.New(),
			CouncilSecretaryID: uuid.New(),
			CouncilStatus:      status,
			CouncilCreatedBy:   uuid.New(),
		}
	}

	require.NoError(t, db.Create(newCouncil(constants.CouncilUniAdminRejected)).Error)
	require.NoError(t, db.Create(newCouncil(constants.CouncilPendingCreation)).Error)

	err := db.Create(newCouncil(constants.CouncilUniAdminApproved)).Error
	require.Error(t, err)
	assert.True(t, helper.IsUniqueViolation(err))

	require.NoError(t, db.Create(newCouncil(constants.CouncilDeleted)).Error)
}

func TestMigrateIsIdempotentAndPingWorks(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, database.Migrate(db))
	assert.NoError(t, database.Ping(context.Background(), db))
	assert.Error(t, database.Ping(context.Background(), nil))
}
