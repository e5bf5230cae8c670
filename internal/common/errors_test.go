package common

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrUnsupportedMedia, http.StatusUnsupportedMediaType},
		{ErrDecodeFailure, http.StatusBadRequest},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrCollaboratorUnavailable, http.StatusServiceUnavailable},
		{ErrNotFound, http.StatusNotFound},
		{ErrStageDegraded, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), "err=%v", tc.err)
	}
}

func TestHTTPStatus_WrappedAppError(t *testing.T) {
	err := NewAppError("DECODE_FAILURE", "bad bytes", ErrDecodeFailure)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "DECODE_FAILURE", appErr.Code)
	assert.ErrorIs(t, err, ErrDecodeFailure)
}
