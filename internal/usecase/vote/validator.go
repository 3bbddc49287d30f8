package vote

import (
	"strconv"
	"strings"

	"votegate/internal/domain/entity"
)

// maxChoiceLen bounds nomination values so a single submission cannot write
// unbounded data into the ledger.
const maxChoiceLen = 200

// Input is a decoded but not yet validated submission, plus the honeypot
// field from the form.
type Input struct {
	Email       string
	Nominations map[string]string
	Honeypot    string
}

// Validator performs shape checks on an incoming submission. Categories are
// validated against a fixed allow-list so a client cannot inject arbitrary
// ledger columns.
type Validator struct {
	// allowed maps category name to its ledger column label.
	allowed map[string]string
}

// NewValidator creates a Validator for the configured category allow-list.
func NewValidator(allowed map[string]string) *Validator {
	return &Validator{allowed: allowed}
}

// Validate checks in and returns a validated Submission.
// The email check is minimal and syntactic: the address must contain an "@".
// The honeypot field is not this method's concern; the pipeline handles it
// before validation runs.
func (v *Validator) Validate(in Input) (entity.Submission, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return entity.Submission{}, &entity.ValidationError{
			Field: "email", Message: "must be a valid email address",
		}
	}

	if len(in.Nominations) == 0 {
		return entity.Submission{}, &entity.ValidationError{
			Field: "nominations", Message: "at least one category is required",
		}
	}

	nominations := make(map[string]string, len(in.Nominations))
	for category, choice := range in.Nominations {
		if _, ok := v.allowed[category]; !ok {
			return entity.Submission{}, &entity.ValidationError{
				Field: "nominations", Message: "unknown category " + strconv.Quote(category),
			}
		}
		choice = strings.TrimSpace(choice)
		if choice == "" {
			return entity.Submission{}, &entity.ValidationError{
				Field: "nominations", Message: "empty choice for category " + strconv.Quote(category),
			}
		}
		if len(choice) > maxChoiceLen {
			return entity.Submission{}, &entity.ValidationError{
				Field: "nominations", Message: "choice too long for category " + strconv.Quote(category),
			}
		}
		nominations[category] = choice
	}

	return entity.Submission{Email: email, Nominations: nominations}, nil
}
