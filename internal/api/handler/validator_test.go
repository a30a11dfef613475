package handler

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientdesk/clientdesk/internal/core/domain"
)

func TestValidator_RegisterRequest(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name   string
		req    registerRequest
		fields []string
	}{
		{
			name: "valid",
			req:  registerRequest{Username: "alice", Password: "abcd", ConfirmPassword: "abcd"},
		},
		{
			name:   "blank username",
			req:    registerRequest{Username: "   ", Password: "abcd", ConfirmPassword: "abcd"},
			fields: []string{"username"},
		},
		{
			name:   "padded username",
			req:    registerRequest{Username: " alice", Password: "abcd", ConfirmPassword: "abcd"},
			fields: []string{"username"},
		},
		{
			name:   "short password",
			req:    registerRequest{Username: "alice", Password: "abc", ConfirmPassword: "abc"},
			fields: []string{"password"},
		},
		{
			name:   "long password",
			req:    registerRequest{Username: "alice", Password: strings.Repeat("p", 101), ConfirmPassword: "x"},
			fields: []string{"password"},
		},
		{
			name:   "blank password",
			req:    registerRequest{Username: "alice", Password: "     ", ConfirmPassword: "     "},
			fields: []string{"password"},
		},
		{
			name:   "everything missing",
			req:    registerRequest{},
			fields: []string{"username", "password", "confirmPassword"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			for _, f := range tt.fields {
				assert.Contains(t, verr.Fields, f)
				assert.NotEmpty(t, verr.Fields[f])
			}
			assert.Len(t, verr.Fields, len(tt.fields))
		})
	}
}

func TestValidator_TranslatedMessages(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	err = v.Validate(registerRequest{Username: " bob ", Password: "ab", ConfirmPassword: "ab"})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))

	assert.Equal(t, "username must not start or end with whitespace", verr.Fields["username"])
	assert.Equal(t, "password must be at least 4 characters in length", verr.Fields["password"])
}
