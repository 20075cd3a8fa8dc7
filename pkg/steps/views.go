package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/paddock/pkg/domain"
	"github.com/aretw0/paddock/pkg/validator"
)

// Store is the part of the form store the views read and write.
type Store interface {
	State() domain.FormState
	SetBasicInfo(p domain.BasicInfo)
	SelectDriver(d *domain.Driver)
	SetValidationErrors(p domain.ValidationErrors)
	FetchDrivers(ctx context.Context)
	FetchDriverStandings(ctx context.Context)
}

// Step numbers of the views.
const (
	BasicInfoStep       = 1
	DriverSelectionStep = validator.DriverSelectionStep
	SummaryStep         = 3
)

// ErrUnknownField is returned when an edit names a field the step does not have.
var ErrUnknownField = errors.New("unknown field")

// BasicInfoModel is what the Basic Info step displays.
type BasicInfoModel struct {
	Name       string
	Email      string
	NameError  string
	EmailError string
}

// BasicInfo is the first step: free-text name and email.
type BasicInfo struct {
	store Store
}

// NewBasicInfo binds the Basic Info view to store.
func NewBasicInfo(store Store) *BasicInfo {
	return &BasicInfo{store: store}
}

// Model reads the fields and their errors.
func (v *BasicInfo) Model() BasicInfoModel {
	st := v.store.State()
	return BasicInfoModel{
		Name:       st.UserDetails.Name,
		Email:      st.UserDetails.Email,
		NameError:  st.ValidationError[domain.FieldName],
		EmailError: st.ValidationError[domain.FieldEmail],
	}
}

// UpdateField stores value and clears the field's previous error.
func (v *BasicInfo) UpdateField(field, value string) error {
	var p domain.BasicInfo
	switch field {
	case domain.FieldName:
		p.Name = &value
	case domain.FieldEmail:
		p.Email = &value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	v.store.SetValidationErrors(domain.ValidationErrors{field: ""})
	v.store.SetBasicInfo(p)
	return nil
}

// DriverOption is one entry of the driver picker.
type DriverOption struct {
	ID       string
	Label    string
	Selected bool
}

// DriverSelectionModel is what the Driver Selection step displays.
type DriverSelectionModel struct {
	Loading    bool
	Error      string
	Options    []DriverOption
	SelectedID string
	FieldError string
}

// DriverSelection is the second step: pick one driver from the remote list.
type DriverSelection struct {
	store Store
	guard *Guard
}

// NewDriverSelection binds the Driver Selection view to store.
// A nil guard gets a private one.
func NewDriverSelection(store Store, guard *Guard) *DriverSelection {
	if guard == nil {
		guard = NewGuard()
	}
	return &DriverSelection{store: store, guard: guard}
}

// Enter fetches the drivers list when the view needs it and has not asked yet.
// It reports whether a fetch ran.
func (v *DriverSelection) Enter(ctx context.Context) bool {
	st := v.store.State()
	if len(st.DriversList) != 0 || st.Loading || st.Step != DriverSelectionStep {
		return false
	}
	if !v.guard.mark(domain.ResourceDrivers) {
		return false
	}
	v.store.FetchDrivers(ctx)
	return true
}

// Model reads the picker. Options are empty until the list arrives.
func (v *DriverSelection) Model() DriverSelectionModel {
	st := v.store.State()
	m := DriverSelectionModel{
		Loading:    st.Loading,
		Error:      st.ErrorMessage(),
		FieldError: st.ValidationError[domain.FieldSelectDriver],
	}
	if st.UserDetails.SelectedDriver != nil {
		m.SelectedID = st.UserDetails.SelectedDriver.DriverID
	}
	for _, d := range st.DriversList {
		m.Options = append(m.Options, DriverOption{
			ID:       d.DriverID,
			Label:    d.FullName(),
			Selected: d.DriverID == m.SelectedID,
		})
	}
	return m
}

// Choose selects the driver with id from the fetched list.
// An id that is not in the list clears the selection and flags the field.
func (v *DriverSelection) Choose(id string) bool {
	st := v.store.State()
	d, ok := domain.FindDriver(st.DriversList, id)
	if !ok {
		v.store.SetValidationErrors(domain.ValidationErrors{domain.FieldSelectDriver: validator.DriverRequired})
		v.store.SelectDriver(nil)
		return false
	}
	v.store.SetValidationErrors(domain.ValidationErrors{domain.FieldSelectDriver: ""})
	v.store.SelectDriver(d)
	return true
}

// DriverDetails is the driver block of the summary.
type DriverDetails struct {
	Name        string
	Number      string
	Code        string
	HasStanding bool
	Position    string
	Points      string
	Wins        string
	Team        string
}

// SummaryModel is what the Summary step displays.
type SummaryModel struct {
	Name    string
	Email   string
	Loading bool
	Error   string
	// Driver is nil while loading or when no driver was chosen.
	Driver *DriverDetails
}

// Summary is the last step: a read-only recap enriched with standings.
type Summary struct {
	store Store
	guard *Guard
}

// NewSummary binds the Summary view to store.
// A nil guard gets a private one.
func NewSummary(store Store, guard *Guard) *Summary {
	if guard == nil {
		guard = NewGuard()
	}
	return &Summary{store: store, guard: guard}
}

// Enter fetches the standings when the view needs them and has not asked yet.
// It reports whether a fetch ran.
func (v *Summary) Enter(ctx context.Context) bool {
	st := v.store.State()
	if len(st.DriverStandings) != 0 || st.Loading || st.Step != SummaryStep {
		return false
	}
	if !v.guard.mark(domain.ResourceStandings) {
		return false
	}
	v.store.FetchDriverStandings(ctx)
	return true
}

// Model reads the recap.
func (v *Summary) Model() SummaryModel {
	st := v.store.State()
	m := SummaryModel{
		Name:    st.UserDetails.Name,
		Email:   st.UserDetails.Email,
		Loading: st.Loading,
		Error:   st.ErrorMessage(),
	}
	if st.Loading || !st.UserDetails.HasSelectedDriver() {
		return m
	}

	d := st.UserDetails.SelectedDriver
	details := &DriverDetails{
		Name:   d.FullName(),
		Number: d.PermanentNumber,
		Code:   d.Code,
	}
	if s, ok := domain.FindStanding(st.DriverStandings, d.DriverID); ok {
		details.HasStanding = true
		details.Position = s.Position
		details.Points = s.Points
		details.Wins = s.Wins
		if len(s.Constructors) > 0 {
			details.Team = s.Constructors[0].Name
		}
	}
	m.Driver = details
	return m
}
