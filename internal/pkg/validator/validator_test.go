package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"full_name" validate:"notblank"`
	Adults int    `json:"adults" validate:"gte=1"`
}

func TestValidate_OK(t *testing.T) {
	errs := Validate(sample{Email: "a@b.co", Name: "Ann", Adults: 2})
	assert.Nil(t, errs)
}

func TestValidate_UsesJSONNames(t *testing.T) {
	errs := Validate(sample{Email: "nope", Name: "   ", Adults: 0})
	assert.Equal(t, map[string]string{
		"email":     "email",
		"full_name": "notblank",
		"adults":    "gte",
	}, errs)
}

func TestFirst_IsDeterministic(t *testing.T) {
	field, tag := First(map[string]string{"email": "email", "adults": "gte"})
	assert.Equal(t, "adults", field)
	assert.Equal(t, "gte", tag)

	field, tag = First(nil)
	assert.Empty(t, field)
	assert.Empty(t, tag)
}
