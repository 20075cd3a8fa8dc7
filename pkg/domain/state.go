package domain

import "maps"

// UserDetails holds what the user entered across the wizard.
type UserDetails struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	SelectedDriver *Driver `json:"selectedDriver"`
}

// BlankUserDetails returns the defaults used at start and after a clear.
// SelectedDriver is a placeholder with an empty ID, never nil.
func BlankUserDetails() UserDetails {
	return UserDetails{SelectedDriver: &Driver{DriverID: ""}}
}

// Clone copies the details, including the selected driver.
func (u UserDetails) Clone() UserDetails {
	out := u
	if u.SelectedDriver != nil {
		d := *u.SelectedDriver
		out.SelectedDriver = &d
	}
	return out
}

// HasSelectedDriver reports whether a real driver (non-empty ID) is selected.
func (u UserDetails) HasSelectedDriver() bool {
	return u.SelectedDriver != nil && u.SelectedDriver.DriverID != ""
}

// BasicInfo is a partial update of the basic-info fields.
// A nil pointer means "key absent": the current value is kept.
type BasicInfo struct {
	Name  *string `json:"name,omitempty" mapstructure:"name"`
	Email *string `json:"email,omitempty" mapstructure:"email"`
}

// ValidationErrors maps a field key to its message. Missing or "" means valid.
type ValidationErrors map[string]string

// Merge returns a new map with other's keys layered over v.
func (v ValidationErrors) Merge(other ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, len(v)+len(other))
	maps.Copy(out, v)
	maps.Copy(out, other)
	return out
}

// Has reports whether key carries a non-empty message.
func (v ValidationErrors) Has(key string) bool {
	return v[key] != ""
}

// Clone returns a copy that never aliases v.
func (v ValidationErrors) Clone() ValidationErrors {
	out := make(ValidationErrors, len(v))
	maps.Copy(out, v)
	return out
}

// FormState is the aggregate root of a wizard session.
type FormState struct {
	Step            int              `json:"step"`
	UserDetails     UserDetails      `json:"userDetails"`
	DriversList     []Driver         `json:"driversList"`
	DriverStandings []DriverStanding `json:"driverStandings"`
	Loading         bool             `json:"loading"`
	Error           *string          `json:"error"`
	ValidationError ValidationErrors `json:"validationError"`
}

// NewFormState returns the state of a fresh session.
func NewFormState() FormState {
	return FormState{
		Step:            1,
		UserDetails:     BlankUserDetails(),
		DriversList:     []Driver{},
		DriverStandings: []DriverStanding{},
		ValidationError: ValidationErrors{},
	}
}

// Clone deep-copies the state so callers cannot mutate a store through it.
func (s FormState) Clone() FormState {
	out := s
	out.UserDetails = s.UserDetails.Clone()
	out.DriversList = append([]Driver{}, s.DriversList...)
	out.DriverStandings = make([]DriverStanding, len(s.DriverStandings))
	for i, st := range s.DriverStandings {
		st.Constructors = append([]Constructor(nil), st.Constructors...)
		out.DriverStandings[i] = st
	}
	if s.Error != nil {
		msg := *s.Error
		out.Error = &msg
	}
	out.ValidationError = s.ValidationError.Clone()
	return out
}

// ErrorMessage returns the session-level error or "".
func (s FormState) ErrorMessage() string {
	if s.Error == nil {
		return ""
	}
	return *s.Error
}

// NavState is the transient state attached to a navigation.
// It travels with the navigation event, never in the URL.
type NavState struct {
	UserDetails UserDetails `json:"userDetails"`
}

// Session is the unit persisted by a StateStore.
type Session struct {
	ID   string    `json:"id"`
	Form FormState `json:"form"`

	// Pending is applied once by the next page load, then dropped.
	Pending *NavState `json:"pending,omitempty"`

	// Sealed holds the encrypted session when the store encrypts at rest.
	// Form and Pending are blank in a sealed envelope, except Form.Step.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewSession creates a session with a fresh form.
func NewSession(id string) *Session {
	return &Session{ID: id, Form: NewFormState()}
}

// Clone deep-copies the session.
func (s *Session) Clone() *Session {
	out := &Session{ID: s.ID, Form: s.Form.Clone()}
	if s.Pending != nil {
		out.Pending = &NavState{UserDetails: s.Pending.UserDetails.Clone()}
	}
	if s.Sealed != nil {
		out.Sealed = append([]byte(nil), s.Sealed...)
	}
	return out
}
