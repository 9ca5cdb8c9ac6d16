package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{InvalidInput, http.StatusBadRequest},
		{InvalidReference, http.StatusBadRequest},
		{IncompleteSchedulingWindow, http.StatusBadRequest},
		{ExpiredToken, http.StatusBadRequest},
		{IdentityConflict, http.StatusBadRequest},
		{SchedulingConflict, http.StatusConflict},
		{AlreadyFinalized, http.StatusConflict},
		{Unauthorized, http.StatusUnauthorized},
		{NotFound, http.StatusNotFound},
		{StoreFailure, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HTTPStatus(New(c.kind, "x")), "kind %d", c.kind)
	}
}

func TestUnknownErrorIsStoreFailure(t *testing.T) {
	err := errors.New("pq: connection reset")
	assert.Equal(t, StoreFailure, KindOf(err))
	assert.Equal(t, "internal error", MessageOf(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(NotFound, "Entry not found", cause)
	assert.Equal(t, NotFound, KindOf(err))
	assert.Equal(t, "Entry not found", MessageOf(err))
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, fmt.Errorf("outer: %w", err), cause)
}
