package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/discussions/model"
	"thesis_backend/internals/features/thesis/discussions/repository"
	"thesis_backend/internals/features/thesis/thesistest"
	topicDTO "thesis_backend/internals/features/thesis/topics/dto"
	topicService "thesis_backend/internals/features/thesis/topics/service"
	"thesis_backend/internals/helpers/apperr"
)

func TestApprovedTopicGetsDiscussion(t *testing.T) {
	ctx := context.Background()
	env := thesistest.New(t)
	svc := New(env.DB)
	topics := topicService.New(env.DB, env.Notifier, svc.EnsureForTopic)

	sup := env.User(t, constants.RoleTeacher, "Dr. Sup")
	admin := env.User(t, constants.RoleAdmin, "Admin")
	lead := env.User(t, constants.RoleStudent, "Lead")

	topic, err := topics.Register(ctx, lead, topicDTO.RegisterTopicInput{TopicName: "Drones", SupervisorID: sup.UserID})
	require.NoError(t, err)
	_, err = repository.FindByTopic(ctx, env.DB, topic.TopicID)
	require.Error(t, err)

	_, err = topics.TeacherDecision(ctx, sup, topic.TopicID, true)
	require.NoError(t, err)
	_, err = topics.AdminDecision(ctx, admin, topic.TopicID, true)
	require.NoError(t, err)

	d, err := repository.FindByTopic(ctx, env.DB, topic.TopicID)
	require.NoError(t, err)

	// Start idempotent: diskusi yang sama
	again, err := svc.Start(ctx, lead, topic.TopicID)
	require.NoError(t, err)
	assert.Equal(t, d.DiscussionID, again.DiscussionID)
	require.NoError(t, svc.EnsureForTopic(ctx, topic.TopicID))
	var n int64
	require.NoError(t, env.DB.Model(&model.DiscussionModel{}).Where("discussion_topic_id = ?", topic.TopicID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestStartRequiresParticipantOfApprovedTopic(t *testing.T) {
	ctx := context.Background()
	env := thesistest.New(t)
	svc := New(env.DB)

	sup := env.User(t, constants.RoleTeacher, "Dr. Sup")
	other := env.User(t, constants.RoleTeacher, "Dr. Other")
	admin := env.User(t, constants.RoleAdmin, "Admin")
	lead := env.User(t, constants.RoleStudent, "Lead")

	pending := env.Topic(t, constants.TopicPendingTeacher, sup, lead)
	approved := env.Topic(t, constants.TopicApproved, sup, lead)

	_, err := svc.Start(ctx, admin, approved.TopicID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = svc.Start(ctx, other, approved.TopicID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = svc.Start(ctx, lead, pending.TopicID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.Start(ctx, sup, approved.TopicID)
	assert.NoError(t, err)
}

func TestMessagesPostListDelete(t *testing.T) {
	ctx := context.Background()
	env := thesistest.New(t)
	svc := New(env.DB)

	sup := env.User(t, constants.RoleTeacher, "Dr. Sup")
	lead := env.User(t, constants.RoleStudent, "Lead")
	member := env.User(t, constants.RoleStudent, "Member")
	outsider := env.User(t, constants.RoleStudent, "Outsider")
	topic := env.Topic(t, constants.TopicApproved, sup, lead, member)
	env.Topic(t, constants.TopicApproved, sup, outsider)

	_, err := svc.PostMessage(ctx, lead, topic.TopicID, "   ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.PostMessage(ctx, lead, topic.TopicID, strings.Repeat("x", MaxMessageLength+1))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.PostMessage(ctx, outsider, topic.TopicID, "hi")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	first, err := svc.PostMessage(ctx, lead, topic.TopicID, "hello")
	require.NoError(t, err)
	_, err = svc.PostMessage(ctx, sup, topic.TopicID, strings.Repeat("y", MaxMessageLength))
	require.NoError(t, err)

	threads, err := svc.List(ctx, member, 0, 50)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, topic.TopicID, threads[0].Topic.TopicID)
	assert.EqualValues(t, 2, threads[0].Total)
	assert.Equal(t, "hello", threads[0].Messages[0].DiscussionMessageText)

	threads, err = svc.List(ctx, sup, 0, 50)
	require.NoError(t, err)
	assert.Len(t, threads, 1)

	err = svc.DeleteMessage(ctx, member, first.DiscussionMessageID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	require.NoError(t, svc.DeleteMessage(ctx, lead, first.DiscussionMessageID))
	err = svc.DeleteMessage(ctx, lead, first.DiscussionMessageID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	threads, err = svc.List(ctx, lead, 0, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 1, threads[0].Total)
}
