package absence

import "errors"

var (
	ErrAbsenceNotFound    = errors.New("absence not found")
	ErrOverlappingAbsence = errors.New("absence overlaps an existing absence")
)
