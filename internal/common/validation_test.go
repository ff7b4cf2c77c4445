package common_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/b2breeze/internal/common"
)

func TestValidator(t *testing.T) {
	t.Parallel()

	v := common.NewValidator().
		Field("name", "  ", common.Required).
		Field("email", "ann@x.io", common.Email).
		Field("phone", "555-0101", common.Phone).
		Field("category", "lead", common.Category).
		Field("id", "nope", common.UUID).
		Field("title", "abcdef", common.MaxLength(3))

	require.True(t, v.HasErrors())
	fields := make([]string, 0)
	for _, e := range v.Errors() {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{"name", "phone", "id", "title"}, fields)
	assert.True(t, common.IsValidation(v.Error()))

	st, ok := status.FromError(common.ValidateAndReturnError(v))
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
}

func TestValidationRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rule  common.ValidationRule
		value any
		ok    bool
	}{
		{"email empty", common.Email, "", true},
		{"email display name", common.Email, "Ann <ann@x.io>", false},
		{"email bad", common.Email, "ann.x.io", false},
		{"phone e164", common.Phone, "+14155550199", true},
		{"phone no plus", common.Phone, "14155550199", false},
		{"phone too short", common.Phone, "+12345", false},
		{"category unknown", common.Category, "alien", false},
		{"category known", common.Category, "Vendor", true},
		{"required pointer nil", common.Required, (*string)(nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.rule("f", tt.value)
			assert.Equal(t, tt.ok, got == nil)
		})
	}
}

func TestToStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		code codes.Code
	}{
		{fmt.Errorf("get contact: %w", common.ErrNotFound), codes.NotFound},
		{common.NewAppError("BAD", "bad", common.ErrInvalidInput), codes.InvalidArgument},
		{common.ErrUnavailable, codes.Unavailable},
		{errors.New("boom"), codes.Internal},
		{common.NotFoundError("x"), codes.NotFound},
	}
	for _, tt := range tests {
		st, ok := status.FromError(common.ToStatus(tt.err))
		require.True(t, ok)
		assert.Equal(t, tt.code, st.Code(), tt.err.Error())
	}
	assert.NoError(t, common.ToStatus(nil))
}
