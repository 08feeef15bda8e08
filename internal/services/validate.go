package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nathanchica/life-event-logger/types"
)

// validateName checks the shared naming rules for events and labels:
// required, and at most types.MaxNameLength characters.
func validateName(name string) types.FieldErrors {
	var errs types.FieldErrors
	if strings.TrimSpace(name) == "" {
		errs = append(errs, types.Invalid("name", "name is required"))
	} else if utf8.RuneCountInString(name) > types.MaxNameLength {
		errs = append(errs, types.Invalid("name", fmt.Sprintf("name must be at most %d characters", types.MaxNameLength)))
	}
	return errs
}

// validateEventInput checks a create/update event payload. Label ownership
// is checked separately against the store.
func validateEventInput(input EventInput) types.FieldErrors {
	errs := validateName(input.Name)
	if input.WarningThresholdInDays < 0 {
		errs = append(errs, types.Invalid("warningThresholdInDays", "warning threshold must not be negative"))
	}
	return errs
}
