package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const unknownError = "unknown error"

// ErrAuthRequired is returned when the backend rejected the caller's
// credentials. The forced-logout signal has already been raised by the time
// a caller sees it, so callers should not report it again.
var ErrAuthRequired = errors.New("authentication required")

// defaultAuthPatterns are matched case-insensitively against error messages
var defaultAuthPatterns = []string{"not authorized", "unauthorized"}

// ErrorEnvelope is the canonical error body: {"error": "..."}
type ErrorEnvelope struct {
	Error string `json:"error"`
}

// APIError is a non-2xx response that is not an authorization failure
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return e.Message
}

// IsAuthFailure reports whether err is, or wraps, ErrAuthRequired
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrAuthRequired)
}

// ErrorMessage reduces an error value of any known shape to one displayable
// string. Accepted shapes: plain or JSON-encoded strings, byte slices, errors,
// ErrorEnvelope, and decoded JSON objects carrying response.data, message or
// error. Only ErrorEnvelope is canonical; the rest is a compatibility shim for
// inconsistent backends and proxies.
func ErrorMessage(v any) string {
	switch e := v.(type) {
	case nil:
		return unknownError
	case string:
		return messageFromText(e)
	case []byte:
		return messageFromText(string(e))
	case ErrorEnvelope:
		if e.Error != "" {
			return e.Error
		}
		return unknownError
	case error:
		return messageFromText(e.Error())
	case map[string]any:
		if msg := messageFromMap(e); msg != "" {
			return msg
		}
		return unknownError
	default:
		return fmt.Sprint(v)
	}
}

// bodyMessage extracts the message of a failed response body
func bodyMessage(body []byte, statusCode int) string {
	text := strings.TrimSpace(string(body))

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil && obj != nil {
		if msg := envelopeError(obj); msg != "" {
			return msg
		}
		if msg := messageFromMap(obj); msg != "" {
			return msg
		}
	}

	if text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status code %d", statusCode)
}

func messageFromText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return unknownError
	}

	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(s), &obj); err == nil {
			if msg := envelopeError(obj); msg != "" {
				return msg
			}
			if msg := messageFromMap(obj); msg != "" {
				return msg
			}
		}
	}

	return s
}

// messageFromMap checks response.data, message and error, in that order
func messageFromMap(obj map[string]any) string {
	if resp, ok := obj["response"].(map[string]any); ok {
		if data, ok := resp["data"]; ok {
			switch d := data.(type) {
			case string:
				return messageFromText(d)
			case map[string]any:
				if msg := envelopeError(d); msg != "" {
					return msg
				}
				return "server error"
			}
		}
	}

	if msg, ok := obj["message"].(string); ok && msg != "" {
		return msg
	}

	return envelopeError(obj)
}

// envelopeError reads {"error": "..."} and the nested {"error": {"message": "..."}}
func envelopeError(obj map[string]any) string {
	switch e := obj["error"].(type) {
	case string:
		return e
	case map[string]any:
		if msg, ok := e["message"].(string); ok {
			return msg
		}
	}
	return ""
}

func matchesAuthPattern(message string, patterns []string) bool {
	lower := strings.ToLower(message)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
