package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-friendly labels
var FieldLabels = map[string]string{
	// Candidate form
	"FullName":               "Full name",
	"Email":                  "Email",
	"Phone":                  "Phone",
	"Age":                    "Age",
	"City":                   "City",
	"Hobbies":                "Hobbies",
	"PerfectCandidateReason": "Why you are the perfect candidate",

	// Admin login
	"Password": "Password",
	"OTP":      "One-time code",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", label)

	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at least %s", label, param)

	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at most %s", label, param)

	case "len":
		return fmt.Sprintf("%s: must be exactly %s characters", label, param)

	case "numeric":
		return fmt.Sprintf("%s: digits only", label)

	case "email":
		return fmt.Sprintf("%s: invalid email format", label)

	case "full_name":
		if FullNameError(fmt.Sprint(e.Value())) == "atLeastTwoParts" {
			return fmt.Sprintf("%s: enter at least a first and a last name", label)
		}
		return fmt.Sprintf("%s: letters only (Hebrew or English), parts may be joined by - or '", label)

	case "il_phone":
		return fmt.Sprintf("%s: must be a valid Israeli number (e.g. 0501234567)", label)

	case "no_emoji":
		return fmt.Sprintf("%s: must not contain emoji or special symbols", label)

	default:
		return fmt.Sprintf("%s: validation failed (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
