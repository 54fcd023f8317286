// Package phone validates customer phone numbers.
package phone

import (
	"errors"
	"strings"

	"github.com/ttacon/libphonenumber"
)

// Placeholder is the value stored when a customer's phone is unknown.
const Placeholder = "N/A"

// ErrInvalid is returned for numbers that do not parse or are not dialable in the region.
var ErrInvalid = errors.New("phone number is not valid")

// Validator checks numbers against a default region such as "BD".
type Validator struct {
	region string
}

// NewValidator creates a validator for the given ISO 3166 region code
func NewValidator(region string) *Validator {
	if region == "" {
		region = "BD"
	}
	return &Validator{region: strings.ToUpper(region)}
}

// Region returns the default region
func (v *Validator) Region() string {
	return v.region
}

// Validate returns ErrInvalid unless raw is empty, the placeholder, or a valid number.
func (v *Validator) Validate(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, Placeholder) {
		return nil
	}

	num, err := libphonenumber.Parse(raw, v.region)
	if err != nil {
		return ErrInvalid
	}
	if !libphonenumber.IsValidNumber(num) {
		return ErrInvalid
	}
	return nil
}
