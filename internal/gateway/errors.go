package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"moneyboard/internal/core"
)

// ErrRequestFailed matches every gateway failure.
var ErrRequestFailed = errors.New("request failed")

// RequestFailedError describes a failed gateway call. Status is zero when
// the request never got a response.
type RequestFailedError struct {
	Op     string
	Status int
	Err    error
}

func (e *RequestFailedError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
}

func (e *RequestFailedError) Unwrap() error { return e.Err }

// Is reports ErrRequestFailed for every failure and core.ErrNotFound for 404s.
func (e *RequestFailedError) Is(target error) bool {
	switch target {
	case ErrRequestFailed:
		return true
	case core.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// decodeAPIError extracts the backend's {"error": "..."} message.
func decodeAPIError(r io.Reader) error {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return fmt.Errorf("read error body: %w", err)
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Error != "" {
			return errors.New(body.Error)
		}
		if body.Message != "" {
			return errors.New(body.Message)
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return errors.New(text)
	}
	return errors.New("empty response")
}
