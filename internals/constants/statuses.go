package constants

// ===================== TOPIC =====================

type TopicStatus string

const (
	TopicPendingTeacher TopicStatus = "pending-teacher"
	TopicTeacherApprove TopicStatus = "teacher-approve"
	TopicTeacherReject  TopicStatus = "teacher-reject"
	TopicPending        TopicStatus = "pending" // legacy value, still counts as active
	TopicApproved       TopicStatus = "approved"
	TopicRejected       TopicStatus = "rejected"
	TopicCanceled       TopicStatus = "canceled"
	TopicStopPerforming TopicStatus = "stop-performing"
	TopicStopped        TopicStatus = "stopped"
)

// ActiveTopicStatuses: a user may be a member of at most one topic in these states.
var ActiveTopicStatuses = []TopicStatus{
	TopicPendingTeacher,
	TopicTeacherApprove,
	TopicPending,
	TopicApproved,
}

var topicTransitions = map[TopicStatus][]TopicStatus{
	TopicPendingTeacher: {TopicTeacherApprove, TopicTeacherReject, TopicCanceled},
	TopicTeacherApprove: {TopicApproved, TopicRejected},
	TopicApproved:       {TopicStopPerforming},
	TopicStopPerforming: {TopicStopped},
}

func (s TopicStatus) IsActive() bool {
	for _, a := range ActiveTopicStatuses {
		if a == s {
			return true
		}
	}
	return false
}

func (s TopicStatus) IsTerminal() bool {
	return len(topicTransitions[s]) == 0 && s != TopicPending
}

func (s TopicStatus) CanTransitionTo(next TopicStatus) bool {
	for _, n := range topicTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

func ActiveTopicStatusStrings() []string {
	out := make([]string, 0, len(ActiveTopicStatuses))
	for _, s := range ActiveTopicStatuses {
		out = append(out, string(s))
	}
	return out
}

// ===================== REPORT =====================

type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportApproved ReportStatus = "approved"
	ReportRejected ReportStatus = "rejected"
)

// ===================== COUNCIL =====================

type CouncilStatus string

const (
	CouncilPendingCreation  CouncilStatus = "pending-creation"
	CouncilUniAdminApproved CouncilStatus = "uniadmin-approved"
	CouncilUniAdminRejected CouncilStatus = "uniadmin-rejected"
	CouncilCompleted        CouncilStatus = "completed"
	CouncilDeleted          CouncilStatus = "deleted"
)

// OpenCouncilStatuses: at most one council per topic may be in these states.
var OpenCouncilStatuses = []CouncilStatus{CouncilPendingCreation, CouncilUniAdminApproved}

func (s CouncilStatus) IsOpen() bool {
	return s == CouncilPendingCreation || s == CouncilUniAdminApproved
}

// Editable: admin may still reassign the committee.
func (s CouncilStatus) Editable() bool {
	return s == CouncilPendingCreation || s == CouncilUniAdminRejected
}

func OpenCouncilStatusStrings() []string {
	return []string{string(CouncilPendingCreation), string(CouncilUniAdminApproved)}
}

// Approval history actions
const (
	CouncilActionApproved = "approved"
	CouncilActionRejected = "rejected"
)
