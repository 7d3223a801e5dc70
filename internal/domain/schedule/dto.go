package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

// TimeSlotRequest accepts either minutes from midnight or "HH:MM" strings. The
// string form is convenient for YAML template files.
type TimeSlotRequest struct {
	StartMinutes *int   `json:"start_minutes,omitempty" yaml:"start_minutes,omitempty"`
	EndMinutes   *int   `json:"end_minutes,omitempty" yaml:"end_minutes,omitempty"`
	Start        string `json:"start,omitempty" yaml:"start,omitempty"`
	End          string `json:"end,omitempty" yaml:"end,omitempty"`
	SlotType     string `json:"slot_type" yaml:"type"`
	IsAutomatic  bool   `json:"is_automatic" yaml:"automatic"`
}

func (r TimeSlotRequest) toSlot(field string, errs *validator.ValidationErrors) TimeSlot {
	slot := TimeSlot{SlotType: SlotType(strings.ToUpper(r.SlotType)), IsAutomatic: r.IsAutomatic}

	switch {
	case r.StartMinutes != nil:
		slot.StartMinutes = *r.StartMinutes
	case r.Start != "":
		m, ok := validator.IsValidTime(r.Start)
		if !ok {
			errs.Add(field+".start", "start must be a valid time in HH:MM format")
		}
		slot.StartMinutes = m
	default:
		errs.Add(field+".start_minutes", "start_minutes is required")
	}

	switch {
	case r.EndMinutes != nil:
		slot.EndMinutes = *r.EndMinutes
	case r.End != "":
		m, ok := validator.IsValidTime(r.End)
		if !ok {
			errs.Add(field+".end", "end must be a valid time in HH:MM format")
		}
		slot.EndMinutes = m
	default:
		errs.Add(field+".end_minutes", "end_minutes is required")
	}
	return slot
}

type DayPatternRequest struct {
	DayOfWeek    int               `json:"day_of_week" yaml:"day"`
	IsWorkingDay *bool             `json:"is_working_day" yaml:"working"`
	TimeSlots    []TimeSlotRequest `json:"time_slots" yaml:"slots"`
}

// ToPattern validates the request and converts it. The field prefix locates
// errors inside nested requests.
func (r DayPatternRequest) ToPattern(prefix string) (WorkDayPattern, error) {
	var errs validator.ValidationErrors

	if r.DayOfWeek < 1 || r.DayOfWeek > 7 {
		errs.Add(prefix+"day_of_week", "day_of_week must be between 1 (Monday) and 7 (Sunday)")
	}

	pattern := WorkDayPattern{DayOfWeek: r.DayOfWeek, IsWorkingDay: len(r.TimeSlots) > 0}
	if r.IsWorkingDay != nil {
		pattern.IsWorkingDay = *r.IsWorkingDay
	}

	for i, s := range r.TimeSlots {
		pattern.TimeSlots = append(pattern.TimeSlots, s.toSlot(fmt.Sprintf("%stime_slots[%d]", prefix, i), &errs))
	}
	if len(errs) > 0 {
		return WorkDayPattern{}, errs
	}

	if err := ValidateTimeSlots(pattern.TimeSlots); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, e := range verrs {
				errs.Add(prefix+e.Field, e.Message)
			}
			return WorkDayPattern{}, errs
		}
		return WorkDayPattern{}, err
	}
	if pattern.IsWorkingDay && pattern.ExpectedMinutes() == 0 {
		errs.Add(prefix+"time_slots", "a working day needs at least one WORK slot")
		return WorkDayPattern{}, errs
	}
	return pattern, nil
}

type CreatePeriodRequest struct {
	TemplateID string              `json:"-" yaml:"-"`
	Name       string              `json:"name" yaml:"name"`
	PeriodType string              `json:"period_type" yaml:"type"`
	ValidFrom  *string             `json:"valid_from" yaml:"valid_from"`
	ValidTo    *string             `json:"valid_to" yaml:"valid_to"`
	Patterns   []DayPatternRequest `json:"patterns" yaml:"days"`
}

func (r *CreatePeriodRequest) ToPeriod(prefix string) (SchedulePeriod, error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add(prefix+"name", "name is required")
	}
	r.PeriodType = strings.ToUpper(strings.TrimSpace(r.PeriodType))
	if r.PeriodType == "" {
		r.PeriodType = string(PeriodRegular)
	}
	if !validator.IsInSlice(r.PeriodType, PeriodTypes) {
		errs.Add(prefix+"period_type", "period_type must be one of: "+strings.Join(PeriodTypes, ", "))
	}

	period := SchedulePeriod{TemplateID: r.TemplateID, Name: strings.TrimSpace(r.Name), PeriodType: PeriodType(r.PeriodType)}
	period.ValidFrom = parseOptionalDate(r.ValidFrom, prefix+"valid_from", &errs)
	period.ValidTo = parseOptionalDate(r.ValidTo, prefix+"valid_to", &errs)
	if period.ValidFrom != nil && period.ValidTo != nil && period.ValidTo.Before(*period.ValidFrom) {
		errs.Add(prefix+"valid_to", "valid_to must not be before valid_from")
	}

	seen := map[int]bool{}
	for i, p := range r.Patterns {
		pattern, err := p.ToPattern(fmt.Sprintf("%spatterns[%d].", prefix, i))
		if err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok {
				errs = append(errs, verrs...)
				continue
			}
			return SchedulePeriod{}, err
		}
		if seen[pattern.DayOfWeek] {
			errs.Add(fmt.Sprintf("%spatterns[%d].day_of_week", prefix, i), "day_of_week is configured twice")
		}
		seen[pattern.DayOfWeek] = true
		period.Patterns = append(period.Patterns, pattern)
	}

	if len(errs) > 0 {
		return SchedulePeriod{}, errs
	}
	return period, nil
}

type UpdatePeriodRequest struct {
	ID         string  `json:"-"`
	Name       *string `json:"name"`
	PeriodType *string `json:"period_type"`
	// An empty string clears the bound.
	ValidFrom *string `json:"valid_from"`
	ValidTo   *string `json:"valid_to"`
}

// Apply validates the request and merges it into the stored period.
func (r *UpdatePeriodRequest) Apply(p SchedulePeriod) (SchedulePeriod, error) {
	var errs validator.ValidationErrors

	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs.Add("name", "name cannot be empty")
		}
		p.Name = strings.TrimSpace(*r.Name)
	}
	if r.PeriodType != nil {
		pt := strings.ToUpper(*r.PeriodType)
		if !validator.IsInSlice(pt, PeriodTypes) {
			errs.Add("period_type", "period_type must be one of: "+strings.Join(PeriodTypes, ", "))
		}
		p.PeriodType = PeriodType(pt)
	}
	if r.ValidFrom != nil {
		p.ValidFrom = parseOptionalDate(r.ValidFrom, "valid_from", &errs)
	}
	if r.ValidTo != nil {
		p.ValidTo = parseOptionalDate(r.ValidTo, "valid_to", &errs)
	}
	if p.ValidFrom != nil && p.ValidTo != nil && p.ValidTo.Before(*p.ValidFrom) {
		errs.Add("valid_to", "valid_to must not be before valid_from")
	}

	if len(errs) > 0 {
		return SchedulePeriod{}, errs
	}
	return p, nil
}

type CreateTemplateRequest struct {
	OrganizationID string                `json:"-" yaml:"-"`
	Name           string                `json:"name" yaml:"name"`
	Description    *string               `json:"description" yaml:"description"`
	IsActive       *bool                 `json:"is_active" yaml:"active"`
	Periods        []CreatePeriodRequest `json:"periods" yaml:"periods"`
}

func (r *CreateTemplateRequest) ToTemplate() (ScheduleTemplate, error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}

	tmpl := ScheduleTemplate{
		OrganizationID: r.OrganizationID,
		Name:           strings.TrimSpace(r.Name),
		Description:    r.Description,
		IsActive:       true,
	}
	if r.IsActive != nil {
		tmpl.IsActive = *r.IsActive
	}

	for i := range r.Periods {
		period, err := r.Periods[i].ToPeriod(fmt.Sprintf("periods[%d].", i))
		if err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok {
				errs = append(errs, verrs...)
				continue
			}
			return ScheduleTemplate{}, err
		}
		tmpl.Periods = append(tmpl.Periods, period)
	}

	if len(errs) > 0 {
		return ScheduleTemplate{}, errs
	}
	return tmpl, nil
}

type UpdateTemplateRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (r *UpdateTemplateRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name cannot be empty")
	}
	return errs.OrNil()
}

type CreateAssignmentRequest struct {
	EmployeeID string  `json:"employee_id"`
	TemplateID string  `json:"template_id"`
	ValidFrom  string  `json:"valid_from"`
	ValidTo    *string `json:"valid_to"`
}

func (r *CreateAssignmentRequest) ToAssignment(organizationID string) (TemplateAssignment, error) {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs.Add("employee_id", "employee_id is required")
	}
	if validator.IsEmpty(r.TemplateID) {
		errs.Add("template_id", "template_id is required")
	}

	a := TemplateAssignment{OrganizationID: organizationID, EmployeeID: r.EmployeeID, TemplateID: r.TemplateID}
	if from, ok := validator.IsValidDate(r.ValidFrom); ok {
		a.ValidFrom = from
	} else {
		errs.Add("valid_from", "valid_from must be a valid date in YYYY-MM-DD format")
	}
	a.ValidTo = parseOptionalDate(r.ValidTo, "valid_to", &errs)
	if a.ValidTo != nil && a.ValidTo.Before(a.ValidFrom) {
		errs.Add("valid_to", "valid_to must not be before valid_from")
	}

	if len(errs) > 0 {
		return TemplateAssignment{}, errs
	}
	return a, nil
}

func parseOptionalDate(s *string, field string, errs *validator.ValidationErrors) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	d, ok := validator.IsValidDate(strings.TrimSpace(*s))
	if !ok {
		errs.Add(field, field+" must be a valid date in YYYY-MM-DD format")
		return nil
	}
	return &d
}

type TimeSlotResponse struct {
	ID              string `json:"id,omitempty"`
	StartMinutes    int    `json:"start_minutes"`
	EndMinutes      int    `json:"end_minutes"`
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"duration_minutes"`
	SlotType        string `json:"slot_type"`
	IsAutomatic     bool   `json:"is_automatic"`
}

type DayPatternResponse struct {
	ID              string             `json:"id"`
	DayOfWeek       int                `json:"day_of_week"`
	IsWorkingDay    bool               `json:"is_working_day"`
	ExpectedMinutes int                `json:"expected_minutes"`
	TimeSlots       []TimeSlotResponse `json:"time_slots"`
}

type PeriodResponse struct {
	ID         string               `json:"id"`
	TemplateID string               `json:"template_id"`
	Name       string               `json:"name"`
	PeriodType string               `json:"period_type"`
	ValidFrom  *string              `json:"valid_from"`
	ValidTo    *string              `json:"valid_to"`
	Patterns   []DayPatternResponse `json:"patterns"`
}

type TemplateResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	IsActive    bool             `json:"is_active"`
	Periods     []PeriodResponse `json:"periods,omitempty"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}

type AssignmentResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	TemplateID   string  `json:"template_id"`
	TemplateName string  `json:"template_name,omitempty"`
	ValidFrom    string  `json:"valid_from"`
	ValidTo      *string `json:"valid_to"`
}

type AbsenceInfoResponse struct {
	ID          string  `json:"id"`
	AbsenceType string  `json:"absence_type"`
	Reason      *string `json:"reason,omitempty"`
}

type EffectiveScheduleResponse struct {
	Source          string               `json:"source"`
	Date            string               `json:"date"`
	IsWorkingDay    bool                 `json:"is_working_day"`
	ExpectedMinutes int                  `json:"expected_minutes"`
	TimeSlots       []TimeSlotResponse   `json:"time_slots"`
	TemplateID      *string              `json:"template_id,omitempty"`
	TemplateName    *string              `json:"template_name,omitempty"`
	PeriodID        *string              `json:"period_id,omitempty"`
	PeriodType      *string              `json:"period_type,omitempty"`
	Absence         *AbsenceInfoResponse `json:"absence,omitempty"`
}

func NewTimeSlotResponse(s TimeSlot) TimeSlotResponse {
	return TimeSlotResponse{
		ID:              s.ID,
		StartMinutes:    s.StartMinutes,
		EndMinutes:      s.EndMinutes,
		Start:           validator.FormatMinutes(s.StartMinutes),
		End:             validator.FormatMinutes(s.EndMinutes),
		DurationMinutes: s.Duration(),
		SlotType:        string(s.SlotType),
		IsAutomatic:     s.IsAutomatic,
	}
}

func NewPeriodResponse(p SchedulePeriod) PeriodResponse {
	resp := PeriodResponse{
		ID:         p.ID,
		TemplateID: p.TemplateID,
		Name:       p.Name,
		PeriodType: string(p.PeriodType),
		ValidFrom:  formatOptionalDate(p.ValidFrom),
		ValidTo:    formatOptionalDate(p.ValidTo),
		Patterns:   make([]DayPatternResponse, 0, len(p.Patterns)),
	}
	for _, pattern := range p.Patterns {
		dp := DayPatternResponse{
			ID:              pattern.ID,
			DayOfWeek:       pattern.DayOfWeek,
			IsWorkingDay:    pattern.IsWorkingDay,
			ExpectedMinutes: pattern.ExpectedMinutes(),
			TimeSlots:       make([]TimeSlotResponse, 0, len(pattern.TimeSlots)),
		}
		for _, s := range sortedSlots(pattern.TimeSlots) {
			dp.TimeSlots = append(dp.TimeSlots, NewTimeSlotResponse(s))
		}
		resp.Patterns = append(resp.Patterns, dp)
	}
	return resp
}

func NewTemplateResponse(t ScheduleTemplate) TemplateResponse {
	resp := TemplateResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
	for _, p := range t.Periods {
		resp.Periods = append(resp.Periods, NewPeriodResponse(p))
	}
	return resp
}

func NewAssignmentResponse(a TemplateAssignment) AssignmentResponse {
	return AssignmentResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		TemplateID:   a.TemplateID,
		TemplateName: a.TemplateName,
		ValidFrom:    a.ValidFrom.Format(dateLayout),
		ValidTo:      formatOptionalDate(a.ValidTo),
	}
}

func NewEffectiveScheduleResponse(e EffectiveSchedule) EffectiveScheduleResponse {
	resp := EffectiveScheduleResponse{
		Source:          string(e.Source),
		Date:            e.Date.Format(dateLayout),
		IsWorkingDay:    e.IsWorkingDay,
		ExpectedMinutes: e.ExpectedMinutes,
		TimeSlots:       make([]TimeSlotResponse, 0, len(e.TimeSlots)),
		TemplateID:      e.TemplateID,
		TemplateName:    e.TemplateName,
		PeriodID:        e.PeriodID,
	}
	for _, s := range e.TimeSlots {
		resp.TimeSlots = append(resp.TimeSlots, NewTimeSlotResponse(s))
	}
	if e.PeriodType != nil {
		pt := string(*e.PeriodType)
		resp.PeriodType = &pt
	}
	if e.Absence != nil {
		resp.Absence = &AbsenceInfoResponse{
			ID:          e.Absence.ID,
			AbsenceType: e.Absence.AbsenceType,
			Reason:      e.Absence.Reason,
		}
	}
	return resp
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
