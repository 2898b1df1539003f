package normalizer

import (
	"apdados/internal/models"
	"apdados/pkg/utils"
)

// Issue reasons.
const (
	ReasonBlank     = "blank"
	ReasonMalformed = "malformed"
)

// Issue is a soft data quality problem in one raw field. Issues are reported,
// never fatal.
type Issue struct {
	Field  string
	Value  string
	Reason string
}

// Validator inspects raw rows for blank and malformed fields.
type Validator struct {
	strings *utils.StringHelper
}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{strings: utils.NewStringHelper()}
}

// Inspect lists the issues found in raw, in field order.
func (v *Validator) Inspect(raw models.RawRecord) []Issue {
	var issues []Issue

	for _, fv := range raw.Fields() {
		if v.strings.IsBlank(fv.Value) {
			issues = append(issues, Issue{Field: fv.Name, Value: fv.Value, Reason: ReasonBlank})
			continue
		}

		switch fv.Name {
		case models.FieldDate:
			if !ParseDate(fv.Value).Valid {
				issues = append(issues, Issue{Field: fv.Name, Value: fv.Value, Reason: ReasonMalformed})
			}
		case models.FieldValue:
			if ParseCurrency(fv.Value) == nil {
				issues = append(issues, Issue{Field: fv.Name, Value: fv.Value, Reason: ReasonMalformed})
			}
		}
	}

	return issues
}
