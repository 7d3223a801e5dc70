package notification

import "errors"

// Notification domain errors
var (
	ErrAlertNotDismissible = errors.New("alert kind cannot be dismissed")
	ErrQueueFull           = errors.New("notification queue is full")
)
