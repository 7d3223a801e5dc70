package notification

import (
	"strings"

	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/validator"
)

type DismissAlertRequest struct {
	Kind        string `json:"kind"`
	ReferenceID string `json:"reference_id"`
}

func (r *DismissAlertRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.Kind, DismissibleKinds) {
		errs.Add("kind", "kind must be one of: "+strings.Join(DismissibleKinds, ", "))
	}
	if validator.IsEmpty(r.ReferenceID) {
		errs.Add("reference_id", "reference_id is required")
	}

	return errs.OrNil()
}

type AlertResponse struct {
	Kind        string `json:"kind"`
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ReferenceID string `json:"reference_id,omitempty"`
}

func NewAlertResponses(alerts []Alert) []AlertResponse {
	out := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, AlertResponse{
			Kind:        string(a.Kind),
			Severity:    string(a.Severity),
			Title:       a.Title,
			Description: a.Description,
			ReferenceID: a.ReferenceID,
		})
	}
	return out
}
