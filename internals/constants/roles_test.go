package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Teacher ")
	require.True(t, ok)
	assert.Equal(t, RoleTeacher, r)

	_, ok = ParseRole("owner")
	assert.False(t, ok)
	assert.False(t, Role("").Valid())
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleStudent.Can(CapRegisterTopic))
	assert.False(t, RoleTeacher.Can(CapRegisterTopic))
	assert.True(t, RoleUniAdmin.Can(CapDecideCouncil))
	assert.False(t, RoleAdmin.Can(CapDecideCouncil))
	assert.True(t, RoleAdmin.Can(CapDownloadApprovalDocument))
	assert.True(t, RoleUniAdmin.Can(CapDownloadApprovalDocument))
	assert.False(t, Role("ghost").Can(CapJoinDiscussion))
	assert.ElementsMatch(t, []Role{RoleStudent, RoleTeacher}, RolesWith(CapJoinDiscussion))
}

func TestRoleScanAndValue(t *testing.T) {
	var r Role
	require.NoError(t, r.Scan([]byte("uniadmin")))
	assert.Equal(t, RoleUniAdmin, r)
	assert.Error(t, r.Scan("owner"))

	v, err := RoleAdmin.Value()
	require.NoError(t, err)
	assert.Equal(t, "admin", v)
	_, err = Role("x").Value()
	assert.Error(t, err)
}

func TestTopicTransitions(t *testing.T) {
	assert.True(t, TopicPendingTeacher.CanTransitionTo(TopicCanceled))
	assert.False(t, TopicApproved.CanTransitionTo(TopicCanceled))
	assert.True(t, TopicTeacherApprove.CanTransitionTo(TopicRejected))
	assert.True(t, TopicStopped.IsTerminal())
	assert.False(t, TopicApproved.IsTerminal())
	assert.True(t, TopicPending.IsActive())
	assert.False(t, TopicStopPerforming.IsActive())
}

func TestCouncilStatus(t *testing.T) {
	assert.True(t, CouncilPendingCreation.IsOpen())
	assert.False(t, CouncilDeleted.IsOpen())
	assert.True(t, CouncilUniAdminRejected.Editable())
	assert.False(t, CouncilCompleted.Editable())
	assert.False(t, CouncilDeleted.Editable())
}

func TestDetectReportFileKind(t *testing.T) {
	assert.Equal(t, FileKindPDF, DetectReportFileKind("application/pdf"))
	assert.Equal(t, FileKindImage, DetectReportFileKind("image/png; charset=binary"))
	assert.Equal(t, FileKindUnknown, DetectReportFileKind("application/zip"))
	assert.Equal(t, FileKindDoc, DetectFileKindFromExt("bab1.DOCX"))
}
