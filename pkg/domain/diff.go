package domain

import (
	"reflect"
)

// StateDiff represents the changes between two form states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Step        *int         `json:"step,omitempty"`
	UserDetails *UserDetails `json:"userDetails,omitempty"`
	Loading     *bool        `json:"loading,omitempty"`

	// Error is "" when a previous error was cleared.
	Error *string `json:"error,omitempty"`

	// ValidationError carries only changed keys. A cleared key maps to "".
	ValidationError ValidationErrors `json:"validationError,omitempty"`

	DriversList     []Driver         `json:"driversList,omitempty"`
	DriverStandings []DriverStanding `json:"driverStandings,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(sessionID string, oldState, newState *FormState) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{SessionID: sessionID}

	if oldState == nil || oldState.Step != newState.Step {
		diff.Step = &newState.Step
	}
	if oldState == nil || !reflect.DeepEqual(oldState.UserDetails, newState.UserDetails) {
		ud := newState.UserDetails.Clone()
		diff.UserDetails = &ud
	}
	if oldState == nil || oldState.Loading != newState.Loading {
		diff.Loading = &newState.Loading
	}
	if oldState == nil {
		if newState.Error != nil {
			msg := *newState.Error
			diff.Error = &msg
		}
	} else if oldState.ErrorMessage() != newState.ErrorMessage() {
		msg := newState.ErrorMessage()
		diff.Error = &msg
	}

	diff.ValidationError = diffValidation(oldState, newState)

	if oldState == nil || !reflect.DeepEqual(oldState.DriversList, newState.DriversList) {
		if len(newState.DriversList) > 0 {
			diff.DriversList = newState.DriversList
		}
	}
	if oldState == nil || !reflect.DeepEqual(oldState.DriverStandings, newState.DriverStandings) {
		if len(newState.DriverStandings) > 0 {
			diff.DriverStandings = newState.DriverStandings
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffValidation(old, new *FormState) ValidationErrors {
	delta := make(ValidationErrors)

	if old == nil {
		for k, v := range new.ValidationError {
			if v != "" {
				delta[k] = v
			}
		}
	} else {
		for k, v := range new.ValidationError {
			if old.ValidationError[k] != v {
				delta[k] = v
			}
		}
		for k, v := range old.ValidationError {
			if _, exists := new.ValidationError[k]; !exists && v != "" {
				delta[k] = ""
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Step == nil &&
		d.UserDetails == nil &&
		d.Loading == nil &&
		d.Error == nil &&
		len(d.ValidationError) == 0 &&
		len(d.DriversList) == 0 &&
		len(d.DriverStandings) == 0
}
