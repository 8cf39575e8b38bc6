package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionMediaUpload allows uploading media files.
	PermissionMediaUpload Permission = "media:upload"

	// PermissionAssignmentsRead allows viewing assignment lists and details with answer keys.
	PermissionAssignmentsRead Permission = "assignments:read"

	// PermissionAssignmentsWrite allows creating, editing and deleting assignments and their questions.
	PermissionAssignmentsWrite Permission = "assignments:write"

	// PermissionAssignmentsPublish allows publishing and archiving assignments.
	PermissionAssignmentsPublish Permission = "assignments:publish"

	// PermissionSubmissionsRead allows viewing every student's submissions.
	PermissionSubmissionsRead Permission = "submissions:read"

	// PermissionSubmissionsGrade allows grading submissions.
	PermissionSubmissionsGrade Permission = "submissions:grade"

	// PermissionLinksWrite allows issuing, deactivating and deleting share links.
	PermissionLinksWrite Permission = "links:write"

	// PermissionClassesWrite allows creating, updating, and deleting classes.
	PermissionClassesWrite Permission = "classes:write"

	// PermissionSubjectsWrite allows creating, updating, and deleting subjects.
	PermissionSubjectsWrite Permission = "subjects:write"

	// PermissionUsersWrite allows creating accounts.
	PermissionUsersWrite Permission = "users:write"

	// PermissionDashboardRead allows viewing the staff dashboard.
	PermissionDashboardRead Permission = "dashboard:read"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionMediaUpload,
	PermissionAssignmentsRead,
	PermissionAssignmentsWrite,
	PermissionAssignmentsPublish,
	PermissionSubmissionsRead,
	PermissionSubmissionsGrade,
	PermissionLinksWrite,
	PermissionClassesWrite,
	PermissionSubjectsWrite,
	PermissionUsersWrite,
	PermissionDashboardRead,
}

// RolePermissions is the fixed grant table per role.
var RolePermissions = map[Role][]Permission{
	RoleAdmin: AllPermissions,
	RoleTeacher: {
		PermissionMediaUpload,
		PermissionAssignmentsRead,
		PermissionAssignmentsWrite,
		PermissionAssignmentsPublish,
		PermissionSubmissionsRead,
		PermissionSubmissionsGrade,
		PermissionLinksWrite,
		PermissionDashboardRead,
	},
	RoleStudent: {},
	RoleParent:  {},
}

// PermissionsFor returns the permission codes granted to role.
func PermissionsFor(role Role) []string {
	perms := RolePermissions[role]
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
