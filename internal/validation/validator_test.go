package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/figureshelf/figureshelf-server/internal/errors"
	"github.com/figureshelf/figureshelf-server/internal/validation"
)

type itemRequest struct {
	Name   string   `json:"name" validate:"required,notblank,max=200"`
	Tags   []string `json:"tags" validate:"max=3,dive,notblank"`
	Status string   `json:"status,omitempty" validate:"omitempty,oneof=published draft"`
	Email  string   `json:"email,omitempty" validate:"omitempty,email"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	err := v.Validate(itemRequest{Name: "Hatsune Miku Racing 2024", Tags: []string{"goodsmile"}})
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       itemRequest
		wantField string
		wantMsg   string
	}{
		{"missing name", itemRequest{}, "name", "is required"},
		{"blank name", itemRequest{Name: "   "}, "name", "must not be blank"},
		{"too many tags", itemRequest{Name: "x", Tags: []string{"a", "b", "c", "d"}}, "tags", "must contain at most 3 entries"},
		{"blank tag", itemRequest{Name: "x", Tags: []string{"ok", " "}}, "tags[1]", "must not be blank"},
		{"bad status", itemRequest{Name: "x", Status: "archived"}, "status", "must be one of: published draft"},
		{"bad email", itemRequest{Name: "x", Email: "nope"}, "email", "must be a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}
