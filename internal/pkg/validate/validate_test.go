package validate

import (
	"testing"

	"github.com/campus-otp/internal/domain"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(&sample{Email: "a@sggs.ac.in", OTP: "123456"}))
}

func TestStruct_MissingFieldsUseJSONNames(t *testing.T) {
	err := Struct(&sample{})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.ErrorContains(t, err, "field 'email' failed 'required'")
	assert.ErrorContains(t, err, "field 'otp' failed 'required'")
}
