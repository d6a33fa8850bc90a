package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "pillpal-backend/internal/errors"
)

type sample struct {
	Name      string `json:"name" validate:"required,max=10"`
	Frequency string `json:"frequency" validate:"omitempty,oneof=once_daily weekly"`
	Timing    int    `json:"timing" validate:"gte=0,lte=120,step=5"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(sample{Name: "Aspirin", Frequency: "weekly", Timing: 15}))
}

func TestValidate_FieldErrorsUseJSONNames(t *testing.T) {
	v := New()

	err := v.Validate(sample{Frequency: "hourly", Timing: 200})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be one of: once_daily weekly", details["frequency"])
	assert.Equal(t, "must be less than or equal to 120", details["timing"])
}

func TestValidate_Step(t *testing.T) {
	v := New()

	for _, timing := range []int{0, 5, 60, 120} {
		assert.NoError(t, v.Validate(sample{Name: "Aspirin", Timing: timing}), "timing %d", timing)
	}

	err := v.Validate(sample{Name: "Aspirin", Timing: 7})
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, map[string]string{"timing": "must be a multiple of 5"}, domainErr.Details)
}
