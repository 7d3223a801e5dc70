package schedule

import "errors"

var (
	// Template errors
	ErrTemplateNotFound    = errors.New("schedule template not found")
	ErrTemplateNameExists  = errors.New("schedule template with this name already exists")
	ErrTemplateInUse       = errors.New("schedule template is assigned to employees")
	ErrPeriodNotFound      = errors.New("schedule period not found")
	ErrDayPatternNotFound  = errors.New("work day pattern not found")
	ErrInvalidDayOfWeek    = errors.New("day of week must be between 1 (Monday) and 7 (Sunday)")
	ErrInvalidTemplateFile = errors.New("invalid schedule template file")

	// Assignment errors
	ErrAssignmentNotFound    = errors.New("schedule assignment not found")
	ErrOverlappingAssignment = errors.New("overlapping schedule assignment detected")

	// Validation Errors
	ErrEmployeeIDRequired = errors.New("employee ID is required")
	ErrInvalidDateFormat  = errors.New("invalid date format, use YYYY-MM-DD")
)
