package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/albumatlas/albumatlas-server/internal/errors"
	"github.com/albumatlas/albumatlas-server/internal/validation"
)

type testRequest struct {
	Tag       string  `json:"tag" validate:"required,min=2"`
	Threshold float64 `json:"threshold" validate:"gte=0,lte=1"`
	Reviewer  string  `json:"reviewer" validate:"required"`
}

func TestValidate_Valid(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{Tag: "black metal", Threshold: 0.5, Reviewer: "alex"})
	assert.NoError(t, err)
}

func TestValidate_MissingFields(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{Threshold: 0.5})
	assert.Error(t, err)

	var domainErr *domainerrors.Error
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestValidate_RangeViolation(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{Tag: "jazz", Threshold: 1.5, Reviewer: "alex"})
	assert.Error(t, err)
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{Tag: "x", Threshold: 0.5, Reviewer: "alex"})
	assert.Error(t, err)

	var domainErr *domainerrors.Error
	if assert.True(t, errors.As(err, &domainErr)) {
		details, ok := domainErr.Details.(map[string]string)
		if assert.True(t, ok) {
			// JSON tag name "tag", not struct field name "Tag".
			assert.Contains(t, details, "tag")
			assert.NotContains(t, details, "Tag")
		}
	}
}
