package validator

import (
	"testing"

	"github.com/aretw0/paddock/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		step      int
		details   domain.UserDetails
		existing  domain.ValidationErrors
		wantValid bool
		want      domain.ValidationErrors
	}{
		{
			name:      "Empty basic info",
			step:      1,
			details:   domain.BlankUserDetails(),
			wantValid: false,
			want: domain.ValidationErrors{
				domain.FieldName:  NameRequired,
				domain.FieldEmail: EmailRequired,
			},
		},
		{
			name:      "Malformed email only",
			step:      1,
			details:   domain.UserDetails{Name: "John Doe", Email: "invalid-email"},
			existing:  domain.ValidationErrors{domain.FieldName: ""},
			wantValid: false,
			want: domain.ValidationErrors{
				domain.FieldName:  "",
				domain.FieldEmail: EmailRequired,
			},
		},
		{
			name:      "Whitespace name",
			step:      1,
			details:   domain.UserDetails{Name: "   ", Email: "a@b.co"},
			wantValid: false,
			want:      domain.ValidationErrors{domain.FieldName: NameRequired},
		},
		{
			name:      "Driver required on step 2",
			step:      2,
			details:   domain.UserDetails{Name: "Ada", Email: "ada@example.com"},
			wantValid: false,
			want:      domain.ValidationErrors{domain.FieldSelectDriver: DriverRequired},
		},
		{
			name: "Placeholder driver counts as missing",
			step: 2,
			details: domain.UserDetails{
				Name: "Ada", Email: "ada@example.com",
				SelectedDriver: &domain.Driver{DriverID: "  "},
			},
			wantValid: false,
			want:      domain.ValidationErrors{domain.FieldSelectDriver: DriverRequired},
		},
		{
			name:      "Driver not required outside step 2",
			step:      3,
			details:   domain.UserDetails{Name: "Ada", Email: "ada@example.com"},
			wantValid: true,
			want:      domain.ValidationErrors{},
		},
		{
			name: "Stale errors survive a valid pass",
			step: 1,
			details: domain.UserDetails{
				Name: "Ada", Email: "ada@example.com",
			},
			existing:  domain.ValidationErrors{domain.FieldSelectDriver: DriverRequired},
			wantValid: true,
			want:      domain.ValidationErrors{domain.FieldSelectDriver: DriverRequired},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.step, tt.details, tt.existing)
			assert.Equal(t, tt.wantValid, res.IsValid)
			assert.Equal(t, tt.want, res.Errors)
		})
	}
}

func TestValidate_Idempotent(t *testing.T) {
	details := domain.UserDetails{Name: "", Email: "nope"}
	first := Validate(2, details, nil)
	second := Validate(2, details, first.Errors)

	assert.Equal(t, first, second)
}

func TestValidate_DoesNotMutateExisting(t *testing.T) {
	existing := domain.ValidationErrors{domain.FieldName: ""}
	_ = Validate(1, domain.BlankUserDetails(), existing)

	assert.Equal(t, domain.ValidationErrors{domain.FieldName: ""}, existing)
}

func TestValidEmail(t *testing.T) {
	valid := []string{"john@example.com", "a.b@c.d.e", "x+y@host.io"}
	invalid := []string{"", "invalid-email", "a@b", "a @b.com", "a@@b.com", "@b.com", "a@b.", "a@.com "}

	for _, e := range valid {
		assert.True(t, ValidEmail(e), e)
	}
	for _, e := range invalid {
		assert.False(t, ValidEmail(e), e)
	}
}
