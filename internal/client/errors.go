package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/vaultpass/zkvault/internal/service"
)

var ErrNotLoggedIn = errors.New("not logged in")

// knownErrors are the server sentinels the API reports by message.
var knownErrors = []error{
	service.ErrInvalidCredential,
	service.ErrIncompleteReencryption,
	service.ErrInvalidToken,
	service.ErrNotFound,
	service.ErrUsernameRequired,
	service.ErrPasswordRequired,
	service.ErrUsernameTaken,
	service.ErrEntryIDNotAllowed,
}

// APIError is a non-2xx response. It unwraps to the matching service sentinel
// when there is one, so callers can use errors.Is against the service errors.
type APIError struct {
	StatusCode int
	Message    string
	sentinel   error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.sentinel
}

func decodeAPIError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	for _, s := range knownErrors {
		if s.Error() == body.Error {
			apiErr.sentinel = s
			return apiErr
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		apiErr.sentinel = service.ErrInvalidToken
	case http.StatusNotFound:
		apiErr.sentinel = service.ErrNotFound
	}
	return apiErr
}
