package timebank

import "errors"

var (
	ErrDayStillOpen   = errors.New("the day has an open session and cannot be posted")
	ErrFutureDate     = errors.New("days in the future cannot be posted")
	ErrZeroAdjustment = errors.New("adjustment minutes must not be zero")
)
