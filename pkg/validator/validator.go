// Package validator checks the wizard fields before a step change.
package validator

import (
	"regexp"
	"strings"

	"github.com/aretw0/paddock/pkg/domain"
)

// Messages shown next to the offending field.
// A missing and a malformed email share one message.
const (
	NameRequired   = "Name is required"
	EmailRequired  = "Email is required"
	DriverRequired = "Driver selection required"
)

// DriverSelectionStep is the only step where a selected driver is mandatory.
const DriverSelectionStep = 2

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Result is the outcome of one validation pass.
type Result struct {
	// Errors is the caller's existing errors with this pass layered on top.
	Errors domain.ValidationErrors
	// IsValid only reflects the rules evaluated in this pass.
	IsValid bool
}

// ValidEmail reports whether s looks like local@domain.tld.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate runs every rule applicable to step. No rule short-circuits another.
// Keys not produced by this pass keep whatever value existing holds.
func Validate(step int, details domain.UserDetails, existing domain.ValidationErrors) Result {
	found := domain.ValidationErrors{}

	if strings.TrimSpace(details.Name) == "" {
		found[domain.FieldName] = NameRequired
	}
	if details.Email == "" || !ValidEmail(details.Email) {
		found[domain.FieldEmail] = EmailRequired
	}
	if step == DriverSelectionStep && !hasDriver(details.SelectedDriver) {
		found[domain.FieldSelectDriver] = DriverRequired
	}

	return Result{
		Errors:  existing.Merge(found),
		IsValid: len(found) == 0,
	}
}

func hasDriver(d *domain.Driver) bool {
	return d != nil && strings.TrimSpace(d.DriverID) != ""
}
