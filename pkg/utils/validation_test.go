package utils

import (
	"testing"

	apperrors "okr-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name string `validate:"required,max=5"`
	Kind string `validate:"omitempty,oneof=PERSON TEAM"`
}

func TestValidateStructPasses(t *testing.T) {
	assert.NoError(t, ValidateStruct(sampleRequest{Name: "ok"}))
}

func TestValidateStructReportsFieldDetails(t *testing.T) {
	err := ValidateStruct(sampleRequest{Kind: "ROBOT"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "name is required", appErr.Details["name"])
	assert.Equal(t, "kind must be one of: PERSON TEAM", appErr.Details["kind"])
}
