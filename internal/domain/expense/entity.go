package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusSubmitted  Status = "SUBMITTED"
	StatusApproved   Status = "APPROVED"
	StatusRejected   Status = "REJECTED"
	StatusReimbursed Status = "REIMBURSED"
)

type Category string

const (
	CategoryTravel        Category = "TRAVEL"
	CategoryMeals         Category = "MEALS"
	CategoryAccommodation Category = "ACCOMMODATION"
	CategoryMileage       Category = "MILEAGE"
	CategorySupplies      Category = "SUPPLIES"
	CategoryOther         Category = "OTHER"
)

var Categories = []string{
	string(CategoryTravel),
	string(CategoryMeals),
	string(CategoryAccommodation),
	string(CategoryMileage),
	string(CategorySupplies),
	string(CategoryOther),
}

type Expense struct {
	ID              string
	OrganizationID  string
	EmployeeID      string
	ExpenseDate     time.Time
	Category        Category
	Description     string
	Merchant        *string
	Amount          decimal.Decimal
	Currency        string
	Status          Status
	SubmittedAt     *time.Time
	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string
	ReimbursedAt    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// transitions lists the allowed linear status progression.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusRejected},
	StatusRejected:  {StatusDraft},
	StatusApproved:  {StatusReimbursed},
}

// CanTransition reports whether an expense may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsEditable is true while the owner may still change the expense.
func (e Expense) IsEditable() bool {
	return e.Status == StatusDraft || e.Status == StatusRejected
}
