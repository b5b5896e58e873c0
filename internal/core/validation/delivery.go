package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// ValidationError carries the first failed delivery-info check. The
// reason strings are stable; callers show them to the customer as-is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ValidateDeliveryInfo checks the collected delivery fields in a fixed
// order so the reported reason is deterministic. Entries other than
// phone, name and address pass through unvalidated.
func ValidateDeliveryInfo(info map[string]string) error {
	if info == nil {
		return &ValidationError{Reason: "Delivery Info cannot be null"}
	}
	if len(info) == 0 {
		return &ValidationError{Reason: "Delivery Info cannot be empty"}
	}

	phone, ok := info["phone"]
	if !ok {
		return &ValidationError{Reason: "Phone number is required"}
	}
	if !ValidPhoneNumber(phone) {
		return &ValidationError{Reason: "Invalid phone number format"}
	}

	name, ok := info["name"]
	if !ok {
		return &ValidationError{Reason: "Name is required"}
	}
	if !ValidName(name) {
		return &ValidationError{Reason: "Invalid name format"}
	}

	address, ok := info["address"]
	if !ok {
		return &ValidationError{Reason: "Address is required"}
	}
	if !ValidAddress(address) {
		return &ValidationError{Reason: "Invalid address format"}
	}

	log.Debug().Msg("delivery info validation successful")
	return nil
}

// ValidPhoneNumber accepts Vietnamese mobile numbers: exactly 10
// digits starting with 03, 05, 07, 08 or 09.
func ValidPhoneNumber(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	for i := 0; i < len(phone); i++ {
		if phone[i] < '0' || phone[i] > '9' {
			return false
		}
	}
	switch phone[:2] {
	case "03", "05", "07", "08", "09":
		return true
	}
	return false
}

// ValidName accepts names of 2-50 characters made of Unicode letters
// and single spaces, with no leading, trailing or consecutive spaces.
// Explicit rune checks instead of a regex keep the letter class exact
// for Vietnamese script.
func ValidName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return false
	}
	if strings.HasPrefix(name, " ") || strings.HasSuffix(name, " ") {
		return false
	}
	if strings.Contains(name, "  ") {
		return false
	}
	for _, r := range name {
		if r != ' ' && !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// ValidAddress accepts addresses of 5-200 characters made of Unicode
// letters, digits, spaces and the punctuation ,./()- with no leading,
// trailing or consecutive spaces.
func ValidAddress(address string) bool {
	if strings.TrimSpace(address) == "" {
		return false
	}
	if n := utf8.RuneCountInString(address); n < 5 || n > 200 {
		return false
	}
	if strings.HasPrefix(address, " ") || strings.HasSuffix(address, " ") {
		return false
	}
	if strings.Contains(address, "  ") {
		return false
	}
	for _, r := range address {
		if r == ' ' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			continue
		}
		switch r {
		case ',', '.', '/', '(', ')', '-':
		default:
			return false
		}
	}
	return true
}
