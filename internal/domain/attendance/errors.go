package attendance

import "errors"

// Attendance domain errors
var (
	// Clock transition errors
	ErrAlreadyClockedIn = errors.New("you are already clocked in")
	ErrNotClockedIn     = errors.New("you are not clocked in")
	ErrAlreadyOnBreak   = errors.New("you are already on a break")
	ErrNotOnBreak       = errors.New("you are not on a break")

	// General errors
	ErrEntryNotFound          = errors.New("time entry not found")
	ErrEntryAlreadyCancelled  = errors.New("time entry is already cancelled")
	ErrInvalidCorrection      = errors.New("the correction leaves the day in an inconsistent state")
	ErrNoOpenSession          = errors.New("the referenced entry does not start an open session")
	ErrInvalidResolution      = errors.New("invalid open session resolution")
	ErrRegularizationNotFound = errors.New("regularization request not found")
	ErrRegularizationPending  = errors.New("a regularization request is already pending for this session")
	ErrRegularizationHandled  = errors.New("regularization request has already been processed")
	ErrUnauthorized           = errors.New("unauthorized to access this time entry")
)
