package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhibayda/bootcamp-service/internal/apperr"
)

func TestStatusByKind(t *testing.T) {
	cases := []struct {
		err  *apperr.Error
		want int
	}{
		{apperr.Validation("bad"), http.StatusBadRequest},
		{apperr.Duplicate("dup"), http.StatusBadRequest},
		{apperr.Upload("file"), http.StatusBadRequest},
		{apperr.BadID("xyz"), http.StatusNotFound},
		{apperr.NotFound("nope"), http.StatusNotFound},
		{apperr.Unauthorized("who"), http.StatusUnauthorized},
		{apperr.Forbidden("no"), http.StatusForbidden},
		{apperr.Internal(errors.New("boom"), "Server Error"), http.StatusInternalServerError},
		{&apperr.Error{Kind: "weird"}, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.err.Status(), c.err.Message)
	}
}

func TestAsThroughWrap(t *testing.T) {
	err := fmt.Errorf("load bootcamp: %w", apperr.NotFound("No bootcamp with the id of %s", "42"))

	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "No bootcamp with the id of 42", ae.Message)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.False(t, apperr.Is(err, apperr.KindForbidden))
	assert.False(t, apperr.Is(errors.New("plain"), apperr.KindNotFound))
}

func TestValidationFields(t *testing.T) {
	e := apperr.ValidationFields(map[string]string{
		"name":  "Please add a name",
		"email": "Please add a valid email",
	}, []string{"name", "email"})
	assert.Equal(t, "Please add a name, Please add a valid email", e.Message)
	assert.Len(t, e.Fields, 2)
}

func TestInternalHidesCauseInMessage(t *testing.T) {
	cause := errors.New("connection refused")
	e := apperr.Internal(cause, "Server Error")
	assert.Equal(t, "Server Error", e.Message)
	assert.ErrorIs(t, e, cause)
}
