package expense

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var currencies = []string{"EUR", "USD", "GBP"}

type CreateExpenseRequest struct {
	ExpenseDate string          `json:"expense_date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Merchant    *string         `json:"merchant"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`

	ParsedDate time.Time `json:"-"`
}

func (r *CreateExpenseRequest) Validate() error {
	var errs validator.ValidationErrors

	if d, ok := validator.IsValidDate(r.ExpenseDate); ok {
		r.ParsedDate = d
	} else {
		errs.Add("expense_date", "expense_date must be a valid date in YYYY-MM-DD format")
	}
	r.Category = strings.ToUpper(strings.TrimSpace(r.Category))
	if !validator.IsInSlice(r.Category, Categories) {
		errs.Add("category", "category must be one of: "+strings.Join(Categories, ", "))
	}
	if validator.IsEmpty(r.Description) {
		errs.Add("description", "description is required")
	}
	validateAmount(&errs, r.Amount)
	if r.Currency == "" {
		r.Currency = "EUR"
	}
	r.Currency = strings.ToUpper(r.Currency)
	if !validator.IsInSlice(r.Currency, currencies) {
		errs.Add("currency", "currency must be one of: "+strings.Join(currencies, ", "))
	}

	return errs.OrNil()
}

func validateAmount(errs *validator.ValidationErrors, amount decimal.Decimal) {
	if !amount.IsPositive() {
		errs.Add("amount", "amount must be greater than zero")
		return
	}
	if !amount.Equal(amount.Round(2)) {
		errs.Add("amount", "amount must have at most 2 decimal places")
	}
}

// UpdateExpenseRequest is a partial update. Only non-nil fields are applied.
type UpdateExpenseRequest struct {
	ID          string           `json:"-"`
	ExpenseDate *string          `json:"expense_date"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	Merchant    *string          `json:"merchant"`
	Amount      *decimal.Decimal `json:"amount"`
	Currency    *string          `json:"currency"`
}

func (r *UpdateExpenseRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ExpenseDate != nil {
		if _, ok := validator.IsValidDate(*r.ExpenseDate); !ok {
			errs.Add("expense_date", "expense_date must be a valid date in YYYY-MM-DD format")
		}
	}
	if r.Category != nil {
		c := strings.ToUpper(strings.TrimSpace(*r.Category))
		r.Category = &c
		if !validator.IsInSlice(c, Categories) {
			errs.Add("category", "category must be one of: "+strings.Join(Categories, ", "))
		}
	}
	if r.Description != nil && validator.IsEmpty(*r.Description) {
		errs.Add("description", "description cannot be empty")
	}
	if r.Amount != nil {
		validateAmount(&errs, *r.Amount)
	}
	if r.Currency != nil {
		c := strings.ToUpper(*r.Currency)
		r.Currency = &c
		if !validator.IsInSlice(c, currencies) {
			errs.Add("currency", "currency must be one of: "+strings.Join(currencies, ", "))
		}
	}

	return errs.OrNil()
}

// Apply copies the set fields onto e. Validate must have succeeded first.
func (r UpdateExpenseRequest) Apply(e *Expense) {
	if r.ExpenseDate != nil {
		d, _ := validator.IsValidDate(*r.ExpenseDate)
		e.ExpenseDate = d
	}
	if r.Category != nil {
		e.Category = Category(*r.Category)
	}
	if r.Description != nil {
		e.Description = strings.TrimSpace(*r.Description)
	}
	if r.Merchant != nil {
		e.Merchant = r.Merchant
	}
	if r.Amount != nil {
		e.Amount = r.Amount.Round(2)
	}
	if r.Currency != nil {
		e.Currency = *r.Currency
	}
}

type RejectExpenseRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectExpenseRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}
	return errs.OrNil()
}

type ExpenseFilter struct {
	OrganizationID string  `json:"-"`
	EmployeeID     *string `json:"employee_id"`
	Status         *string `json:"status"`
	From           *string `json:"from"`
	To             *string `json:"to"`
	Page           int     `json:"page"`
	Limit          int     `json:"limit"`
}

func (f *ExpenseFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil {
		s := strings.ToUpper(*f.Status)
		f.Status = &s
		if !validator.IsInSlice(s, []string{
			string(StatusDraft), string(StatusSubmitted), string(StatusApproved),
			string(StatusRejected), string(StatusReimbursed),
		}) {
			errs.Add("status", "invalid status")
		}
	}
	if f.From != nil {
		if _, ok := validator.IsValidDate(*f.From); !ok {
			errs.Add("from", "from must be a valid date in YYYY-MM-DD format")
		}
	}
	if f.To != nil {
		if _, ok := validator.IsValidDate(*f.To); !ok {
			errs.Add("to", "to must be a valid date in YYYY-MM-DD format")
		}
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	return errs.OrNil()
}

type ExpenseResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	ExpenseDate     string  `json:"expense_date"`
	Category        string  `json:"category"`
	Description     string  `json:"description"`
	Merchant        *string `json:"merchant,omitempty"`
	Amount          string  `json:"amount"`
	Currency        string  `json:"currency"`
	Status          string  `json:"status"`
	SubmittedAt     *string `json:"submitted_at,omitempty"`
	ReviewedBy      *string `json:"reviewed_by,omitempty"`
	ReviewedAt      *string `json:"reviewed_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	ReimbursedAt    *string `json:"reimbursed_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type ListExpenseResponse struct {
	TotalCount  int64             `json:"total_count"`
	Page        int               `json:"page"`
	Limit       int               `json:"limit"`
	TotalAmount string            `json:"total_amount"`
	Expenses    []ExpenseResponse `json:"expenses"`
}

func NewExpenseResponse(e Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:              e.ID,
		EmployeeID:      e.EmployeeID,
		ExpenseDate:     e.ExpenseDate.Format("2006-01-02"),
		Category:        string(e.Category),
		Description:     e.Description,
		Merchant:        e.Merchant,
		Amount:          e.Amount.StringFixed(2),
		Currency:        e.Currency,
		Status:          string(e.Status),
		SubmittedAt:     formatTime(e.SubmittedAt),
		ReviewedBy:      e.ReviewedBy,
		ReviewedAt:      formatTime(e.ReviewedAt),
		RejectionReason: e.RejectionReason,
		ReimbursedAt:    formatTime(e.ReimbursedAt),
		CreatedAt:       e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
