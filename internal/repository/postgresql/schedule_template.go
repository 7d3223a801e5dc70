package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/schedule"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type templateRepositoryImpl struct {
	db *database.DB
}

func NewTemplateRepository(db *database.DB) schedule.TemplateRepository {
	return &templateRepositoryImpl{db: db}
}

// Create implements schedule.TemplateRepository. Call it inside a transaction
// so a failing child row leaves nothing behind.
func (r *templateRepositoryImpl) Create(ctx context.Context, t schedule.ScheduleTemplate) (schedule.ScheduleTemplate, error) {
	q := GetQuerier(ctx, r.db)

	if t.ID == "" {
		id, err := newID()
		if err != nil {
			return schedule.ScheduleTemplate{}, err
		}
		t.ID = id
	}

	err := q.QueryRow(ctx, `
		INSERT INTO schedule_templates (id, organization_id, name, description, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, t.ID, t.OrganizationID, t.Name, t.Description, t.IsActive).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return schedule.ScheduleTemplate{}, fmt.Errorf("create template: %w", err)
	}

	for i := range t.Periods {
		t.Periods[i].TemplateID = t.ID
		p, err := r.CreatePeriod(ctx, t.Periods[i])
		if err != nil {
			return schedule.ScheduleTemplate{}, err
		}
		t.Periods[i] = p
	}

	return t, nil
}

const templateColumns = `id, organization_id, name, description, is_active, created_at, updated_at`

func scanTemplate(row pgx.Row) (schedule.ScheduleTemplate, error) {
	var t schedule.ScheduleTemplate
	err := row.Scan(&t.ID, &t.OrganizationID, &t.Name, &t.Description, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *templateRepositoryImpl) GetByID(ctx context.Context, id, organizationID string) (schedule.ScheduleTemplate, error) {
	q := GetQuerier(ctx, r.db)
	t, err := scanTemplate(q.QueryRow(ctx, `
		SELECT `+templateColumns+` FROM schedule_templates WHERE id = $1 AND organization_id = $2
	`, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.ScheduleTemplate{}, schedule.ErrTemplateNotFound
		}
		return schedule.ScheduleTemplate{}, err
	}

	periods, err := r.loadPeriods(ctx, []string{t.ID})
	if err != nil {
		return schedule.ScheduleTemplate{}, err
	}
	t.Periods = periods[t.ID]
	return t, nil
}

func (r *templateRepositoryImpl) List(ctx context.Context, organizationID string) ([]schedule.ScheduleTemplate, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `
		SELECT `+templateColumns+` FROM schedule_templates WHERE organization_id = $1 ORDER BY name
	`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var (
		templates []schedule.ScheduleTemplate
		ids       []string
	)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	periods, err := r.loadPeriods(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range templates {
		templates[i].Periods = periods[templates[i].ID]
	}
	return templates, nil
}

// loadPeriods fetches periods, patterns and slots of several templates and
// assembles them by template ID.
func (r *templateRepositoryImpl) loadPeriods(ctx context.Context, templateIDs []string) (map[string][]schedule.SchedulePeriod, error) {
	out := make(map[string][]schedule.SchedulePeriod)
	if len(templateIDs) == 0 {
		return out, nil
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, template_id, name, period_type, valid_from, valid_to
		FROM schedule_periods
		WHERE template_id = ANY($1)
		ORDER BY valid_from NULLS FIRST, id
	`, templateIDs)
	if err != nil {
		return nil, fmt.Errorf("load periods: %w", err)
	}
	periods, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (schedule.SchedulePeriod, error) {
		var p schedule.SchedulePeriod
		err := row.Scan(&p.ID, &p.TemplateID, &p.Name, &p.PeriodType, &p.ValidFrom, &p.ValidTo)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("load periods: %w", err)
	}

	periodIDs := make([]string, 0, len(periods))
	for _, p := range periods {
		periodIDs = append(periodIDs, p.ID)
	}
	patterns, err := r.loadPatterns(ctx, periodIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range periods {
		p.Patterns = patterns[p.ID]
		out[p.TemplateID] = append(out[p.TemplateID], p)
	}
	return out, nil
}

// loadPatterns reads the day patterns of the periods and their slots in one
// batch round trip.
func (r *templateRepositoryImpl) loadPatterns(ctx context.Context, periodIDs []string) (map[string][]schedule.WorkDayPattern, error) {
	out := make(map[string][]schedule.WorkDayPattern)
	if len(periodIDs) == 0 {
		return out, nil
	}
	q := GetQuerier(ctx, r.db)

	batch := &pgx.Batch{}
	batch.Queue(`
		SELECT id, period_id, day_of_week, is_working_day
		FROM work_day_patterns
		WHERE period_id = ANY($1)
		ORDER BY day_of_week
	`, periodIDs)
	batch.Queue(`
		SELECT s.id, s.pattern_id, s.start_minutes, s.end_minutes, s.slot_type, s.is_automatic
		FROM time_slots s
		JOIN work_day_patterns w ON w.id = s.pattern_id
		WHERE w.period_id = ANY($1)
		ORDER BY s.start_minutes, s.slot_type DESC
	`, periodIDs)

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	rows, err := results.Query()
	if err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}
	patterns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (schedule.WorkDayPattern, error) {
		var p schedule.WorkDayPattern
		err := row.Scan(&p.ID, &p.PeriodID, &p.DayOfWeek, &p.IsWorkingDay)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}

	rows, err = results.Query()
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}
	slots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (schedule.TimeSlot, error) {
		var s schedule.TimeSlot
		err := row.Scan(&s.ID, &s.PatternID, &s.StartMinutes, &s.EndMinutes, &s.SlotType, &s.IsAutomatic)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}

	byPattern := make(map[string][]schedule.TimeSlot)
	for _, s := range slots {
		byPattern[s.PatternID] = append(byPattern[s.PatternID], s)
	}
	for _, p := range patterns {
		p.TimeSlots = byPattern[p.ID]
		out[p.PeriodID] = append(out[p.PeriodID], p)
	}
	return out, nil
}

func (r *templateRepositoryImpl) ExistsByName(ctx context.Context, organizationID, name string) (bool, error) {
	q := GetQuerier(ctx, r.db)
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM schedule_templates WHERE organization_id = $1 AND LOWER(name) = LOWER($2))
	`, organizationID, name).Scan(&exists)
	return exists, err
}

func (r *templateRepositoryImpl) Update(ctx context.Context, t schedule.ScheduleTemplate) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE schedule_templates
		SET name = $1, description = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4 AND organization_id = $5
	`, t.Name, t.Description, t.IsActive, t.ID, t.OrganizationID)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrTemplateNotFound
	}
	return nil
}

func (r *templateRepositoryImpl) Delete(ctx context.Context, id, organizationID string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM schedule_templates WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrTemplateNotFound
	}
	return nil
}

func (r *templateRepositoryImpl) CreatePeriod(ctx context.Context, p schedule.SchedulePeriod) (schedule.SchedulePeriod, error) {
	q := GetQuerier(ctx, r.db)
	if p.ID == "" {
		id, err := newID()
		if err != nil {
			return schedule.SchedulePeriod{}, err
		}
		p.ID = id
	}

	_, err := q.Exec(ctx, `
		INSERT INTO schedule_periods (id, template_id, name, period_type, valid_from, valid_to)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.TemplateID, p.Name, p.PeriodType, p.ValidFrom, p.ValidTo)
	if err != nil {
		return schedule.SchedulePeriod{}, fmt.Errorf("create period: %w", err)
	}

	for i := range p.Patterns {
		pattern, err := r.insertPattern(ctx, p.ID, p.Patterns[i])
		if err != nil {
			return schedule.SchedulePeriod{}, err
		}
		p.Patterns[i] = pattern
	}
	return p, nil
}

func (r *templateRepositoryImpl) insertPattern(ctx context.Context, periodID string, p schedule.WorkDayPattern) (schedule.WorkDayPattern, error) {
	q := GetQuerier(ctx, r.db)
	id, err := newID()
	if err != nil {
		return schedule.WorkDayPattern{}, err
	}
	p.ID = id
	p.PeriodID = periodID

	_, err = q.Exec(ctx, `
		INSERT INTO work_day_patterns (id, period_id, day_of_week, is_working_day)
		VALUES ($1, $2, $3, $4)
	`, p.ID, p.PeriodID, p.DayOfWeek, p.IsWorkingDay)
	if err != nil {
		return schedule.WorkDayPattern{}, fmt.Errorf("create day pattern: %w", err)
	}

	for i := range p.TimeSlots {
		slotID, err := newID()
		if err != nil {
			return schedule.WorkDayPattern{}, err
		}
		s := &p.TimeSlots[i]
		s.ID = slotID
		s.PatternID = p.ID
		_, err = q.Exec(ctx, `
			INSERT INTO time_slots (id, pattern_id, start_minutes, end_minutes, slot_type, is_automatic)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, s.ID, s.PatternID, s.StartMinutes, s.EndMinutes, s.SlotType, s.IsAutomatic)
		if err != nil {
			return schedule.WorkDayPattern{}, fmt.Errorf("create time slot: %w", err)
		}
	}
	return p, nil
}

// GetPeriod loads a period with its patterns, scoped to the organization
// through its template.
func (r *templateRepositoryImpl) GetPeriod(ctx context.Context, id, organizationID string) (schedule.SchedulePeriod, error) {
	q := GetQuerier(ctx, r.db)
	var p schedule.SchedulePeriod
	err := q.QueryRow(ctx, `
		SELECT p.id, p.template_id, p.name, p.period_type, p.valid_from, p.valid_to
		FROM schedule_periods p
		JOIN schedule_templates t ON t.id = p.template_id
		WHERE p.id = $1 AND t.organization_id = $2
	`, id, organizationID).Scan(&p.ID, &p.TemplateID, &p.Name, &p.PeriodType, &p.ValidFrom, &p.ValidTo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.SchedulePeriod{}, schedule.ErrPeriodNotFound
		}
		return schedule.SchedulePeriod{}, err
	}

	patterns, err := r.loadPatterns(ctx, []string{p.ID})
	if err != nil {
		return schedule.SchedulePeriod{}, err
	}
	p.Patterns = patterns[p.ID]
	return p, nil
}

func (r *templateRepositoryImpl) UpdatePeriod(ctx context.Context, p schedule.SchedulePeriod) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `
		UPDATE schedule_periods
		SET name = $1, period_type = $2, valid_from = $3, valid_to = $4
		WHERE id = $5
	`, p.Name, p.PeriodType, p.ValidFrom, p.ValidTo, p.ID)
	if err != nil {
		return fmt.Errorf("update period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrPeriodNotFound
	}
	return nil
}

func (r *templateRepositoryImpl) DeletePeriod(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM schedule_periods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrPeriodNotFound
	}
	return nil
}

// ReplacePattern deletes the weekday's pattern (slots cascade) and inserts the
// new one.
func (r *templateRepositoryImpl) ReplacePattern(ctx context.Context, periodID string, pattern schedule.WorkDayPattern) (schedule.WorkDayPattern, error) {
	q := GetQuerier(ctx, r.db)
	_, err := q.Exec(ctx, `
		DELETE FROM work_day_patterns WHERE period_id = $1 AND day_of_week = $2
	`, periodID, pattern.DayOfWeek)
	if err != nil {
		return schedule.WorkDayPattern{}, fmt.Errorf("delete day pattern: %w", err)
	}
	return r.insertPattern(ctx, periodID, pattern)
}
