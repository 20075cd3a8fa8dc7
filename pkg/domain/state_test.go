package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormState_CloneIsolation(t *testing.T) {
	s := NewFormState()
	s.UserDetails.SelectedDriver = &Driver{DriverID: "alonso"}
	s.DriversList = []Driver{{DriverID: "alonso"}}
	s.ValidationError["name"] = "Name is required"

	c := s.Clone()
	c.UserDetails.SelectedDriver.DriverID = "changed"
	c.DriversList[0].DriverID = "changed"
	c.ValidationError["name"] = ""

	assert.Equal(t, "alonso", s.UserDetails.SelectedDriver.DriverID)
	assert.Equal(t, "alonso", s.DriversList[0].DriverID)
	assert.Equal(t, "Name is required", s.ValidationError["name"])
}

func TestValidationErrors_Merge(t *testing.T) {
	base := ValidationErrors{"name": "Name is required", "email": "Email is required"}
	merged := base.Merge(ValidationErrors{"email": ""})

	assert.Equal(t, "Name is required", merged["name"])
	assert.False(t, merged.Has("email"))
	assert.True(t, base.Has("email"), "Merge must not mutate the receiver")
}

type detailErr struct{ msg string }

func (e *detailErr) Error() string       { return "detail: " + e.msg }
func (e *detailErr) UserMessage() string { return e.msg }

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", ErrorMessage(nil))
	assert.Equal(t, FallbackErrorMessage, ErrorMessage(errors.New("dial tcp: refused")))
	assert.Equal(t, "Rate limited", ErrorMessage(fmt.Errorf("wrapped: %w", &detailErr{msg: "Rate limited"})))
	assert.Equal(t, FallbackErrorMessage, ErrorMessage(&detailErr{}))
}

func TestFindStanding(t *testing.T) {
	standings := []DriverStanding{
		{Position: "1", Points: "400", Driver: Driver{DriverID: "max_verstappen"}},
		{Position: "2", Points: "300", Driver: Driver{DriverID: "norris"}},
	}

	st, ok := FindStanding(standings, "norris")
	assert.True(t, ok)
	assert.Equal(t, "2", st.Position)

	_, ok = FindStanding(standings, "ghost")
	assert.False(t, ok)
}
