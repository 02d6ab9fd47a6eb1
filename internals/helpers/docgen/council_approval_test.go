package docgen

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCouncilApproval(t *testing.T) {
	out, err := RenderCouncilApproval(CouncilApprovalData{
		TopicName:   "Sistem informasi tugas akhir",
		Students:    []string{"Ana", "Budi"},
		Supervisor:  "Dr. Citra",
		Chairman:    "Dr. Dedi",
		Secretary:   "Dr. Eka",
		Members:     []string{"Dr. Fajar"},
		ApprovedBy:  "Uni Admin",
		ApprovedAt:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		ReferenceNo: "C-001",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderCouncilApprovalRequiresCommittee(t *testing.T) {
	_, err := RenderCouncilApproval(CouncilApprovalData{TopicName: "x"})
	assert.Error(t, err)
}
