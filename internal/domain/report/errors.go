package report

import "errors"

var (
	ErrInvalidPeriod          = errors.New("period must be one of: daily, weekly, monthly, yearly")
	ErrInvalidFormat          = errors.New("format must be one of: csv, xlsx")
	ErrReportGenerationFailed = errors.New("failed to generate report")
)
