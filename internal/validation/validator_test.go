package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email    string   `json:"email" validate:"required,email"`
	Link     string   `json:"applyLink" validate:"required,url"`
	Status   string   `json:"status" validate:"omitempty,oneof=pending approved rejected"`
	Password string   `json:"password" validate:"min=6"`
	Skills   []string `json:"skills" validate:"max=3"`
}

func TestValidateStructOK(t *testing.T) {
	s := sample{Email: "a@example.com", Link: "https://x.example", Status: "approved", Password: "secret1"}
	assert.NoError(t, ValidateStruct(&s))
}

func TestValidateStructReportsJSONNames(t *testing.T) {
	s := sample{Email: "nope", Status: "archived", Password: "abc", Skills: []string{"a", "b", "c", "d"}}
	err := ValidateStruct(&s)
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))

	byField := map[string]FieldError{}
	for _, f := range verr.Fields {
		byField[f.Field] = f
	}
	assert.Equal(t, "email must be a valid email address", byField["email"].Message)
	assert.Equal(t, "applyLink is required", byField["applyLink"].Message)
	assert.Equal(t, "status must be one of: pending approved rejected", byField["status"].Message)
	assert.Equal(t, "password must be at least 6 characters", byField["password"].Message)
	assert.Equal(t, "skills must be at most 3", byField["skills"].Message)
	assert.Contains(t, err.Error(), "; ")
}
