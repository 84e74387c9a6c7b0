// internal/utils/response.go
package utils

import (
	"encoding/json"
)

// ErrorEnvelope is the error body the API returns on non-2xx responses.
// Most handlers send an object, a few send a bare string.
type ErrorEnvelope struct {
	Error json.RawMessage `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

const (
	MessageNetworkError  = "Network error"
	MessageRequestFailed = "Request failed"
)

// ParseErrorBody extracts code and message from an error response body.
// An unparseable body yields "Network error"; a body without a message
// yields "Request failed".
func ParseErrorBody(body []byte) (code, message string) {
	var env ErrorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", MessageNetworkError
	}
	if len(env.Error) == 0 {
		return "", MessageRequestFailed
	}

	var text string
	if err := json.Unmarshal(env.Error, &text); err == nil {
		if text == "" {
			return "", MessageRequestFailed
		}
		return "", text
	}

	var errBody ErrorBody
	if err := json.Unmarshal(env.Error, &errBody); err != nil || errBody.Message == "" {
		return errBody.Code, MessageRequestFailed
	}
	return errBody.Code, errBody.Message
}
