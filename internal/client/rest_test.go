package client

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/mesto/internal/apperror"
	"github.com/sakif/mesto/internal/model"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestDecodeResponse_Success(t *testing.T) {
	var env model.UserEnvelope
	err := decodeResponse(response(200, `{"user":{"_id":"u1","email":"a@b.com"}}`), &env)

	require.NoError(t, err)
	assert.Equal(t, "u1", env.User.ID)
}

func TestDecodeResponse_BareUser(t *testing.T) {
	var env model.UserEnvelope
	err := decodeResponse(response(200, `{"_id":"u1","email":"a@b.com"}`), &env)

	require.NoError(t, err)
	assert.Equal(t, "a@b.com", env.User.Email)
}

func TestDecodeResponse_EmptyBodyLeavesTarget(t *testing.T) {
	msg := model.Message{Message: "untouched"}
	err := decodeResponse(response(204, ``), &msg)

	require.NoError(t, err)
	assert.Equal(t, "untouched", msg.Message)
}

func TestDecodeResponse_NilTarget(t *testing.T) {
	assert.NoError(t, decodeResponse(response(200, `{"message":"ok"}`), nil))
}

func TestDecodeResponse_BadJSON(t *testing.T) {
	var msg model.Message
	err := decodeResponse(response(200, `{"message":`), &msg)

	require.Error(t, err)
	var apiErr *apperror.APIError
	assert.False(t, errors.As(err, &apiErr), "a 2xx decode failure is not an API error")
}

func TestDecodeResponse_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    string
		wantMessage string
		wantIs      error
	}{
		{
			name:        "json error body",
			status:      401,
			body:        `{"error":"unauthorized","message":"authorization required"}`,
			wantKind:    "unauthorized",
			wantMessage: "authorization required",
			wantIs:      apperror.ErrUnauthorized,
		},
		{
			name:        "message only",
			status:      409,
			body:        `{"message":"already registered"}`,
			wantMessage: "already registered",
			wantIs:      apperror.ErrConflict,
		},
		{
			name:        "html body falls back to status text",
			status:      502,
			body:        `<html>Bad Gateway</html>`,
			wantMessage: "Bad Gateway",
			wantIs:      apperror.ErrRemote,
		},
		{
			name:        "empty body",
			status:      404,
			wantMessage: "Not Found",
			wantIs:      apperror.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeResponse(response(tt.status, tt.body), &model.Message{})

			var apiErr *apperror.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantKind, apiErr.Kind)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.body, string(apiErr.Body))
			assert.ErrorIs(t, err, tt.wantIs)
		})
	}
}

func TestPathEscape(t *testing.T) {
	assert.Equal(t, "a%2Fb", pathEscape("a/b"))
	assert.Equal(t, "abc123", pathEscape("abc123"))
}
