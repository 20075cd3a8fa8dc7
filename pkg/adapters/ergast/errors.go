package ergast

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/paddock/pkg/domain"
)

// APIError is the single error shape returned by the client.
// Message is always set: the body's detail when present, else the fallback.
type APIError struct {
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ergast: GET %s: status %d: %s", e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("ergast: GET %s: %v", e.URL, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// UserMessage implements domain.UserMessager.
func (e *APIError) UserMessage() string { return e.Message }

// errorBody covers both shapes seen in the wild: a bare {"detail": ...} and
// the client-library style {"response": {"data": {"detail": ...}}}.
type errorBody struct {
	Detail   string `json:"detail"`
	Response struct {
		Data struct {
			Detail string `json:"detail"`
		} `json:"data"`
	} `json:"response"`
}

func detailOrFallback(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Response.Data.Detail != "" {
			return eb.Response.Data.Detail
		}
		if eb.Detail != "" {
			return eb.Detail
		}
	}
	return domain.FallbackErrorMessage
}
