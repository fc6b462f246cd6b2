package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Options controls numeric validation. When LocalizedNumbers is on, values
// must use the locale's decimal separator and failures are reported as
// format errors.
type Options struct {
	LocalizedNumbers bool
	DecimalSeparator string
}

// FieldError is one decorated validation failure on a calculator field
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// Error renders the decorated message attached to the parent record.
// The label replaces the raw preferred_* attribute name so the raw form
// never surfaces to users.
func (e FieldError) Error() string {
	return fmt.Sprintf("Calculator %s: %s", e.Label, e.Message)
}

// Messages flattens field errors into their decorated strings, in field
// declaration order.
func Messages(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}

// Validate checks the fields of the calculator's selected variant only.
// Errors from non-selected variants never surface, and no composite
// "Calculator is invalid" error is produced. Errors come back in the
// variant's field declaration order.
func (r *Registry) Validate(calc Calculator, opts Options) ([]FieldError, error) {
	variant, ok := r.Lookup(calc.Tag)
	if !ok {
		return nil, fmt.Errorf("unknown calculator type %q", calc.Tag)
	}

	var errs []FieldError
	for _, field := range variant.Fields {
		raw, present := calc.Values[field.Name]
		if !present || raw == "" {
			continue
		}
		if msg := validateNumber(raw, opts); msg != "" {
			errs = append(errs, FieldError{
				Field:   field.Name,
				Label:   field.Label,
				Message: msg,
			})
		}
	}
	return errs, nil
}

// validateNumber returns an empty string for valid input, otherwise the
// message to attach.
func validateNumber(raw string, opts Options) string {
	if opts.LocalizedNumbers {
		sep := opts.DecimalSeparator
		if sep == "" {
			sep = "."
		}
		normalized := raw
		if sep != "." {
			if strings.Contains(raw, ".") {
				return "has an invalid format."
			}
			normalized = strings.Replace(raw, sep, ".", 1)
		}
		value, err := decimal.NewFromString(normalized)
		if err != nil {
			return "has an invalid format."
		}
		if value.IsNegative() {
			return "must be greater than or equal to 0."
		}
		return ""
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return "Invalid input."
	}
	if value.IsNegative() {
		return "must be greater than or equal to 0."
	}
	return ""
}
