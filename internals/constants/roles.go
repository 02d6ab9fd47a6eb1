package constants

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Role is the closed set of account roles. The zero value is not a valid role.
type Role string

const (
	RoleStudent  Role = "student"
	RoleTeacher  Role = "teacher"
	RoleAdmin    Role = "admin"
	RoleUniAdmin Role = "uniadmin"
)

var AllRoles = []Role{RoleStudent, RoleTeacher, RoleAdmin, RoleUniAdmin}

// ParseRole accepts the stored/textual form of a role.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleTeacher:
		return RoleTeacher, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUniAdmin:
		return RoleUniAdmin, true
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// SelfRegistrable: role yang boleh dipilih lewat register publik.
// Admin & uniadmin hanya dibuat oleh admin (CapManageUsers) atau bootstrap env.
func (r Role) SelfRegistrable() bool {
	return r == RoleStudent || r == RoleTeacher
}

func (r Role) String() string { return string(r) }

func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %q", string(r))
	}
	return string(r), nil
}

func (r *Role) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
	parsed, ok := ParseRole(s)
	if !ok {
		return fmt.Errorf("invalid role %q", s)
	}
	*r = parsed
	return nil
}

// Capability is a permission checked against the actor's role.
type Capability int

const (
	CapRegisterTopic Capability = iota + 1
	CapDecideTopicAsSupervisor
	CapDecideTopicAsAdmin
	CapSubmitReport
	CapReviewReport
	CapRequestCouncil
	CapDecideCouncil
	CapScoreCouncil
	CapViewPublicCouncils
	CapManageUsers
	CapDownloadStudentReport
	CapDownloadApprovalDocument
	CapViewAdminDashboard
	CapViewTeacherDashboard
	CapJoinDiscussion
)

var capabilities = map[Capability][]Role{
	CapRegisterTopic:            {RoleStudent},
	CapDecideTopicAsSupervisor:  {RoleTeacher},
	CapDecideTopicAsAdmin:       {RoleAdmin},
	CapSubmitReport:             {RoleStudent},
	CapReviewReport:             {RoleTeacher},
	CapRequestCouncil:           {RoleAdmin},
	CapDecideCouncil:            {RoleUniAdmin},
	CapScoreCouncil:             {RoleTeacher},
	CapViewPublicCouncils:       {RoleStudent},
	CapManageUsers:              {RoleAdmin},
	CapDownloadStudentReport:    {RoleStudent},
	CapDownloadApprovalDocument: {RoleAdmin, RoleUniAdmin},
	CapViewAdminDashboard:       {RoleAdmin},
	CapViewTeacherDashboard:     {RoleTeacher},
	CapJoinDiscussion:           {RoleStudent, RoleTeacher},
}

// Can reports whether the role holds the capability.
func (r Role) Can(c Capability) bool {
	for _, allowed := range capabilities[c] {
		if allowed == r {
			return true
		}
	}
	return false
}

// RolesWith lists the roles holding a capability, used by route-level gates.
func RolesWith(c Capability) []Role {
	return append([]Role(nil), capabilities[c]...)
}

// Template pesan error role
const (
	ErrOnlyStudentsCanAccess  = "Only students may access %s."
	ErrOnlyTeachersCanAccess  = "Only teachers may access %s."
	ErrOnlyAdminsCanAccess    = "Only admins may access %s."
	ErrOnlyUniAdminsCanAccess = "Only university admins may access %s."
)

func RoleErrorStudent(feature string) string {
	return fmt.Sprintf(ErrOnlyStudentsCanAccess, feature)
}

func RoleErrorTeacher(feature string) string {
	return fmt.Sprintf(ErrOnlyTeachersCanAccess, feature)
}

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorUniAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyUniAdminsCanAccess, feature)
}
