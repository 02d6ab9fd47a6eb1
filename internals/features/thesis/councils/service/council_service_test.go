package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesis_backend/internals/constants"
	"thesis_backend/internals/features/thesis/councils/dto"
	"thesis_backend/internals/features/thesis/councils/model"
	"thesis_backend/internals/features/thesis/thesistest"
	topicModel "thesis_backend/internals/features/thesis/topics/model"
	topicRepo "thesis_backend/internals/features/thesis/topics/repository"
	"thesis_backend/internals/helpers/apperr"
	helpersAuth "thesis_backend/internals/helpers/auth"
	"thesis_backend/internals/helpers/docgen"
)

type fixture struct {
	env     *thesistest.Env
	svc     *Service
	admin   helpersAuth.Identity
	uni     helpersAuth.Identity
	sup     helpersAuth.Identity
	lead    helpersAuth.Identity
	chair   helpersAuth.Identity
	sec     helpersAuth.Identity
	m1      helpersAuth.Identity
	m2      helpersAuth.Identity
	topic   *topicModel.TopicModel
	renders int
}

func newFixture(t *testing.T) *fixture {
	env := thesistest.New(t)
	f := &fixture{
		env:   env,
		svc:   New(env.DB, env.Notifier, env.Files),
		admin: env.User(t, constants.RoleAdmin, "Admin"),
		uni:   env.User(t, constants.RoleUniAdmin, "Uni Admin"),
		sup:   env.User(t, constants.RoleTeacher, "Dr. Sup"),
		lead:  env.User(t, constants.RoleStudent, "Lead"),
		chair: env.User(t, constants.RoleTeacher, "Chair"),
		sec:   env.User(t, constants.RoleTeacher, "Secretary"),
		m1:    env.User(t, constants.RoleTeacher, "Member One"),
		m2:    env.User(t, constants.RoleTeacher, "Member Two"),
	}
	f.svc.Render = func(d docgen.CouncilApprovalData) ([]byte, error) {
		f.renders++
		return []byte("%PDF-1.3 " + d.TopicName), nil
	}
	f.topic = env.Topic(t, constants.TopicApproved, f.sup, f.lead)
	env.Report(t, f.topic, f.lead, constants.ReportApproved, true)
	return f
}

func (f *fixture) input() dto.CouncilInput {
	return dto.CouncilInput{
		TopicID:     f.topic.TopicID,
		ChairmanID:  f.chair.UserID,
		SecretaryID: f.sec.UserID,
		MemberIDs:   []uuid.UUID{f.m1.UserID, f.m2.UserID},
	}
}

func (f *fixture) request(t *testing.T) *model.CouncilModel {
	t.Helper()
	c, err := f.svc.RequestCreate(context.Background(), f.admin, f.input())
	require.NoError(t, err)
	return c
}

func (f *fixture) approved(t *testing.T) *model.CouncilModel {
	t.Helper()
	c, err := f.svc.ExternalApprove(context.Background(), f.uni, f.request(t).CouncilID)
	require.NoError(t, err)
	return c
}

func TestRequestCreatePreconditions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.RequestCreate(ctx, f.uni, f.input())
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	in := f.input()
	in.SecretaryID = f.chair.UserID
	_, err = f.svc.RequestCreate(ctx, f.admin, in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	in = f.input()
	in.MemberIDs = []uuid.UUID{f.m1.UserID, f.sec.UserID}
	_, err = f.svc.RequestCreate(ctx, f.admin, in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	in = f.input()
	for i := 0; i < 4; i++ {
		in.MemberIDs = append(in.MemberIDs, uuid.New())
	}
	_, err = f.svc.RequestCreate(ctx, f.admin, in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	in = f.input()
	in.MemberIDs = []uuid.UUID{f.lead.UserID}
	_, err = f.svc.RequestCreate(ctx, f.admin, in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	// topik tanpa laporan yang dikirim ke admin
	bare := f.env.Topic(t, constants.TopicApproved, f.sup, f.env.User(t, constants.RoleStudent, "Solo"))
	in = f.input()
	in.TopicID = bare.TopicID
	_, err = f.svc.RequestCreate(ctx, f.admin, in)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	pendingTopic := f.env.Topic(t, constants.TopicTeacherApprove, f.sup)
	in.TopicID = pendingTopic.TopicID
	_, err = f.svc.RequestCreate(ctx, f.admin, in)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	in.TopicID = uuid.New()
	_, err = f.svc.RequestCreate(ctx, f.admin, in)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	c := f.request(t)
	assert.Equal(t, constants.CouncilPendingCreation, c.CouncilStatus)
	assert.Equal(t, []uuid.UUID{f.m1.UserID, f.m2.UserID}, c.MemberIDs())
	assert.Len(t, f.env.Messages(t, f.uni.UserID), 1)
}

func TestDuplicateOpenRequestIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.request(t)

	_, err := f.svc.RequestCreate(ctx, f.admin, f.input())
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = f.svc.ExternalReject(ctx, f.uni, first.CouncilID, "  ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	rejected, err := f.svc.ExternalReject(ctx, f.uni, first.CouncilID, "chairman unavailable")
	require.NoError(t, err)
	assert.Equal(t, constants.CouncilUniAdminRejected, rejected.CouncilStatus)
	require.Len(t, rejected.History, 1)
	assert.Equal(t, constants.CouncilActionRejected, rejected.History[0].CouncilHistoryAction)
	assert.Contains(t, f.env.Messages(t, f.admin.UserID)[0], "chairman unavailable")

	// setelah ditolak boleh mengajukan lagi
	_, err = f.svc.RequestCreate(ctx, f.admin, f.input())
	require.NoError(t, err)

	// permintaan lama tidak bisa dibuka lagi selama ada yang terbuka
	st := constants.CouncilPendingCreation
	_, err = f.svc.Update(ctx, f.admin, first.CouncilID, dto.UpdateCouncilInput{Status: &st})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestExternalApproveStoresDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	req := f.request(t)

	_, err := f.svc.ExternalApprove(ctx, f.admin, req.CouncilID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	c, err := f.svc.ExternalApprove(ctx, f.uni, req.CouncilID)
	require.NoError(t, err)
	assert.Equal(t, constants.CouncilUniAdminApproved, c.CouncilStatus)
	doc := c.Document()
	require.NotNil(t, doc)
	assert.True(t, strings.Contains(doc.ExternalID, ApprovalFolder))
	stored, ok := f.env.Files.Get(doc.ExternalID)
	require.True(t, ok)
	assert.True(t, bytes.HasPrefix(stored.Data, []byte("%PDF")))
	require.Len(t, c.History, 1)
	assert.Equal(t, f.uni.UserID, c.History[0].CouncilHistoryActorID)

	topic, err := topicRepo.FindTopicByID(ctx, f.env.DB, f.topic.TopicID)
	require.NoError(t, err)
	require.NotNil(t, topic.TopicCouncilID)
	assert.Equal(t, c.CouncilID, *topic.TopicCouncilID)

	for _, id := range []uuid.UUID{f.chair.UserID, f.sec.UserID, f.m1.UserID, f.m2.UserID, f.admin.UserID} {
		msgs := f.env.Messages(t, id)
		require.NotEmpty(t, msgs)
		assert.Contains(t, msgs[len(msgs)-1], doc.URL)
	}

	url, err := f.svc.ApprovalDocumentURL(ctx, f.admin, c.CouncilID)
	require.NoError(t, err)
	assert.Equal(t, doc.URL, url)
	_, err = f.svc.ApprovalDocumentURL(ctx, f.chair, c.CouncilID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = f.svc.ExternalApprove(ctx, f.uni, req.CouncilID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	_, err = f.svc.ExternalReject(ctx, f.uni, req.CouncilID, "late")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestExternalApproveReleasesDocumentWhenCommitLoses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	req := f.request(t)

	// keputusan lain masuk di antara render dan commit
	f.svc.Render = func(d docgen.CouncilApprovalData) ([]byte, error) {
		require.NoError(t, f.env.DB.Model(&model.CouncilModel{}).
			Where("council_id = ?", req.CouncilID).
			Update("council_status", string(constants.CouncilUniAdminRejected)).Error)
		return []byte("%PDF-1.3"), nil
	}
	_, err := f.svc.ExternalApprove(ctx, f.uni, req.CouncilID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, 0, f.env.Files.Len())

	topic, err := topicRepo.FindTopicByID(ctx, f.env.DB, f.topic.TopicID)
	require.NoError(t, err)
	assert.Nil(t, topic.TopicCouncilID)
}

func TestExternalApproveFailsCleanlyWhenRenderFails(t *testing.T) {
	f := newFixture(t)
	req := f.request(t)
	f.svc.Render = func(docgen.CouncilApprovalData) ([]byte, error) { return nil, errors.New("font missing") }

	_, err := f.svc.ExternalApprove(context.Background(), f.uni, req.CouncilID)
	assert.True(t, apperr.Is(err, apperr.KindInternal))
	assert.Equal(t, 0, f.env.Files.Len())

	c, err := f.svc.Load(context.Background(), req.CouncilID)
	require.NoError(t, err)
	assert.Equal(t, constants.CouncilPendingCreation, c.CouncilStatus)
}

func TestScoringCompletesCouncil(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pending := f.request(t)

	_, err := f.svc.Score(ctx, f.chair, pending.CouncilID, 90, "")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	c, err := f.svc.ExternalApprove(ctx, f.uni, pending.CouncilID)
	require.NoError(t, err)
	assert.Equal(t, 4, c.RequiredScores())

	_, err = f.svc.Score(ctx, f.sup, c.CouncilID, 90, "")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	_, err = f.svc.Score(ctx, f.chair, c.CouncilID, 101, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	for i, grader := range []helpersAuth.Identity{f.chair, f.sec, f.m1} {
		out, err := f.svc.Score(ctx, grader, c.CouncilID, 85, "ok")
		require.NoError(t, err)
		assert.Equal(t, constants.CouncilUniAdminApproved, out.CouncilStatus)
		assert.Len(t, out.Scores, i+1)
	}

	_, err = f.svc.Score(ctx, f.chair, c.CouncilID, 70, "again")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	out, err := f.svc.Score(ctx, f.m2, c.CouncilID, 95, "great")
	require.NoError(t, err)
	assert.Equal(t, constants.CouncilCompleted, out.CouncilStatus)
	assert.InDelta(t, 87.5, out.AverageScore(), 0.001)

	_, err = f.svc.Score(ctx, f.m2, c.CouncilID, 95, "")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	assert.Len(t, f.env.Messages(t, f.sup.UserID), 4)
	assert.Len(t, f.env.Messages(t, f.lead.UserID), 4)
	adminMsgs := f.env.Messages(t, f.admin.UserID)
	assert.Contains(t, adminMsgs[len(adminMsgs)-1], "completed with an average score of 87.50")

	// completed tidak bisa diubah, tapi boleh dihapus
	st := constants.CouncilPendingCreation
	_, err = f.svc.Update(ctx, f.admin, c.CouncilID, dto.UpdateCouncilInput{Status: &st})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestUpdateRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.request(t)
	other := f.env.User(t, constants.RoleTeacher, "Other")

	bad := constants.CouncilCompleted
	_, err := f.svc.Update(ctx, f.admin, c.CouncilID, dto.UpdateCouncilInput{Status: &bad})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Update(ctx, f.admin, c.CouncilID, dto.UpdateCouncilInput{SecretaryID: &f.chair.UserID})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	members := []uuid.UUID{other.UserID}
	out, err := f.svc.Update(ctx, f.admin, c.CouncilID, dto.UpdateCouncilInput{MemberIDs: &members})
	require.NoError(t, err)
	assert.Equal(t, members, out.MemberIDs())
	assert.NotEmpty(t, f.env.Messages(t, f.m1.UserID))
	assert.NotEmpty(t, f.env.Messages(t, other.UserID))

	_, err = f.svc.ExternalReject(ctx, f.uni, c.CouncilID, "needs another member")
	require.NoError(t, err)
	uniBefore := len(f.env.Messages(t, f.uni.UserID))

	st := constants.CouncilPendingCreation
	out, err = f.svc.Update(ctx, f.admin, c.CouncilID, dto.UpdateCouncilInput{Status: &st})
	require.NoError(t, err)
	assert.Equal(t, constants.CouncilPendingCreation, out.CouncilStatus)
	assert.Nil(t, out.CouncilRejectReason)
	assert.Len(t, f.env.Messages(t, f.uni.UserID), uniBefore+1)

	_, err = f.svc.ExternalApprove(ctx, f.uni, c.CouncilID)
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, f.admin, c.CouncilID, dto.UpdateCouncilInput{MemberIDs: &members})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestDeleteClearsTopicCouncil(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.approved(t)

	_, err := f.svc.Delete(ctx, f.uni, c.CouncilID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	out, err := f.svc.Delete(ctx, f.admin, c.CouncilID)
	require.NoError(t, err)
	assert.Equal(t, constants.CouncilDeleted, out.CouncilStatus)

	topic, err := topicRepo.FindTopicByID(ctx, f.env.DB, f.topic.TopicID)
	require.NoError(t, err)
	assert.Nil(t, topic.TopicCouncilID)

	_, err = f.svc.Delete(ctx, f.admin, c.CouncilID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	_, err = f.svc.Score(ctx, f.chair, c.CouncilID, 90, "")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	// slot terbuka lagi setelah dihapus
	_, err = f.svc.RequestCreate(ctx, f.admin, f.input())
	require.NoError(t, err)
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.approved(t)
	for _, g := range []helpersAuth.Identity{f.chair, f.sec, f.m1, f.m2} {
		_, err := f.svc.Score(ctx, g, c.CouncilID, 90, "")
		require.NoError(t, err)
	}

	// council kedua dengan rata-rata rendah tidak tampil publik
	lowTopic := f.env.Topic(t, constants.TopicApproved, f.sup, f.env.User(t, constants.RoleStudent, "Low"))
	f.env.Report(t, lowTopic, f.lead, constants.ReportApproved, true)
	in := f.input()
	in.TopicID = lowTopic.TopicID
	in.MemberIDs = nil
	low, err := f.svc.RequestCreate(ctx, f.admin, in)
	require.NoError(t, err)
	_, err = f.svc.ExternalApprove(ctx, f.uni, low.CouncilID)
	require.NoError(t, err)
	for _, g := range []helpersAuth.Identity{f.chair, f.sec} {
		_, err := f.svc.Score(ctx, g, low.CouncilID, 80, "")
		require.NoError(t, err)
	}

	public, err := f.svc.Public(ctx, f.lead)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, c.CouncilID, public[0].Council.CouncilID)
	assert.Equal(t, f.topic.TopicName, public[0].TopicName)
	assert.Len(t, public[0].Reports, 1)

	_, err = f.svc.Public(ctx, f.admin)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, total, err := f.svc.List(ctx, f.m1, "", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	_, total, err = f.svc.List(ctx, f.chair, "", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	_, total, err = f.svc.List(ctx, f.admin, constants.CouncilCompleted, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	_, _, err = f.svc.List(ctx, f.lead, "", 0, 10)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, total, err = f.svc.Pending(ctx, f.uni, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	got, err := f.svc.ForTopic(ctx, f.lead, f.topic.TopicID)
	require.NoError(t, err)
	assert.Equal(t, c.CouncilID, got.CouncilID)
	outsider := f.env.User(t, constants.RoleStudent, "Outsider")
	_, err = f.svc.ForTopic(ctx, outsider, f.topic.TopicID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	_, err = f.svc.Get(ctx, f.m2, c.CouncilID)
	require.NoError(t, err)
}
