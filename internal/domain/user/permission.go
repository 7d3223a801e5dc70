package user

type Permission string

const (
	// Time tracking
	PermissionAttendanceClock   Permission = "attendance.clock"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceCorrect Permission = "attendance.correct"

	// Schedules and absences
	PermissionScheduleView   Permission = "schedule.view"
	PermissionScheduleManage Permission = "schedule.manage"
	PermissionAbsenceManage  Permission = "absence.manage"

	// Time bank
	PermissionTimeBankViewOwn Permission = "time_bank.view_own"
	PermissionTimeBankManage  Permission = "time_bank.manage"

	// Expenses
	PermissionExpenseCreate Permission = "expense.create"
	PermissionExpenseReview Permission = "expense.review"

	// Reports
	PermissionReportsView Permission = "reports.view"

	// User Management
	PermissionUserManage Permission = "user.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionAttendanceClock,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceCorrect,
		PermissionScheduleView,
		PermissionScheduleManage,
		PermissionAbsenceManage,
		PermissionTimeBankViewOwn,
		PermissionTimeBankManage,
		PermissionExpenseCreate,
		PermissionExpenseReview,
		PermissionReportsView,
		PermissionUserManage,
	},
	RoleManager: {
		PermissionAttendanceClock,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceCorrect,
		PermissionScheduleView,
		PermissionScheduleManage,
		PermissionAbsenceManage,
		PermissionTimeBankViewOwn,
		PermissionTimeBankManage,
		PermissionExpenseCreate,
		PermissionExpenseReview,
		PermissionReportsView,
	},
	RoleEmployee: {
		PermissionAttendanceClock,
		PermissionAttendanceViewOwn,
		PermissionScheduleView,
		PermissionTimeBankViewOwn,
		PermissionExpenseCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
