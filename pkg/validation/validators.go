package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

// Regex patterns
var (
	// One name part: Latin or Hebrew letters, optionally joined by - or '
	namePartRegex = regexp.MustCompile(`^[\p{Hebrew}\p{Latin}]+(?:[-'][\p{Hebrew}\p{Latin}]+)*$`)

	// Israeli numbers: landline 0X + 7 digits, mobile 05 + 8 digits
	ilPhoneRegex = regexp.MustCompile(`^0(?:[23489]\d{7}|5\d{8})$`)
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("full_name", FullName)
	_ = v.RegisterValidation("il_phone", ILPhone)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
}

// New returns a validator with the custom tags registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// NormalizeFullName trims, collapses inner whitespace and applies NFC so
// composed and decomposed Hebrew/Latin input compare equal.
func NormalizeFullName(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// FullNameError returns "" for a valid full name, "atLeastTwoParts" or
// "lettersOnly" otherwise. Empty input is valid; pair with required.
func FullNameError(s string) string {
	normalized := NormalizeFullName(s)
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, " ")
	if len(parts) < 2 {
		return "atLeastTwoParts"
	}
	for _, p := range parts {
		if !namePartRegex.MatchString(p) {
			return "lettersOnly"
		}
	}
	return ""
}

// FullName validates at least two space-separated parts made of letters
func FullName(fl validator.FieldLevel) bool {
	return FullNameError(fl.Field().String()) == ""
}

// ILPhone validates a local Israeli phone number (digits only, leading 0)
func ILPhone(fl validator.FieldLevel) bool {
	val := strings.TrimSpace(fl.Field().String())
	if val == "" {
		return true
	}
	return ilPhoneRegex.MatchString(val)
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		// Supplementary planes are mostly emoji/symbols
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}
