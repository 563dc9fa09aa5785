// Package client talks to the places API.
//
// Two clients share one transport helper:
//   - Auth: sign-up, sign-in and token checks (auth.go)
//   - API: the feed and the profile, authorised by the stored token (api.go)
//
// Every response, from either client, goes through decodeResponse: a 2xx body
// is decoded into the caller's value, anything else becomes an
// *apperror.APIError that unwraps to the matching apperror sentinel. There
// are no retries.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/sakif/mesto/internal/apperror"
)

// maxErrorBody caps how much of a failed response is kept on the APIError.
const maxErrorBody = 64 << 10

// rest is the request plumbing both clients embed.
type rest struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func newRest(baseURL string, httpClient *http.Client, logger *slog.Logger) rest {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return rest{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// do sends one JSON request and decodes the reply into out (which may be nil).
func (r rest) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: building %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := decodeResponse(resp, out); err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	return nil
}

// decodeResponse maps a response to either a decoded value or an
// *apperror.APIError.
//
//   - 2xx with a body: JSON is decoded into out. A nil out discards the body.
//   - 2xx with an empty body: out is left untouched.
//   - anything else: the body is parsed as {"error", "message"}; when it is not
//     JSON the message falls back to the status text.
func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		err := json.NewDecoder(resp.Body).Decode(out)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &apperror.APIError{
		Status: resp.StatusCode,
		Body:   raw,
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		apiErr.Kind = payload.Error
		apiErr.Message = payload.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// pathEscape escapes one path segment, e.g. a card id.
func pathEscape(s string) string {
	return url.PathEscape(s)
}
