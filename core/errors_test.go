package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	cause := errors.New("a user with this username already exists")

	err := NewValidationError(cause, FieldError{Field: "username", Error: cause.Error()})
	assert.Equal(t, cause.Error(), err.Error())
	assert.True(t, errors.Is(err, cause))

	var vErr *ValidationError
	if assert.True(t, errors.As(err, &vErr)) {
		assert.Equal(t, map[string]string{"username": cause.Error()}, vErr.FieldMap())
	}

	bare := &ValidationError{}
	assert.Equal(t, "invalid input", bare.Error())
	assert.Nil(t, bare.FieldMap())
}

func TestCleanString(t *testing.T) {
	tests := []struct {
		in    string
		lower bool
		want  string
	}{
		{in: "  Gates ", want: "Gates"},
		{in: "  PigLet\t", lower: true, want: "piglet"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanString(tt.in, tt.lower))
	}
}
