package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Wizard steps, in order.
const (
	StepDomainSubmission = 1
	StepDomainExtraction = 2
	StepIntentPhrases    = 3
	StepAIQueryResults   = 4
	StepReport           = 5
)

var stepNames = map[int]string{
	StepDomainSubmission: "domain-submission",
	StepDomainExtraction: "domain-extraction",
	StepIntentPhrases:    "intent-phrases",
	StepAIQueryResults:   "ai-query-results",
	StepReport:           "report",
}

// StepName returns the stable name of a wizard step, or "" if unknown.
func StepName(step int) string {
	return stepNames[step]
}

// ValidateStep returns an error unless step is one of the five wizard steps.
func ValidateStep(step int) error {
	if step < StepDomainSubmission || step > StepReport {
		return fmt.Errorf("step must be between %d and %d", StepDomainSubmission, StepReport)
	}
	return nil
}

// WizardProgress records where a user is in the wizard for one domain.
// MaxStep is the furthest step ever reached and never decreases.
type WizardProgress struct {
	DomainID  uuid.UUID `json:"domain_id"`
	Step      int       `json:"step"`
	StepName  string    `json:"step_name"`
	MaxStep   int       `json:"max_step"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveProgressRequest is the body of PUT /api/wizard/:domainId.
type SaveProgressRequest struct {
	Step int `json:"step"`
}
