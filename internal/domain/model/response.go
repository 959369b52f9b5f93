package model

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Response describes a failed panel call: the HTTP status and the raw body.
type Response struct {
	Status int
	Body   []byte
}

// errorBody is the JSON shape the panel uses for 400/403/404/401 responses.
type errorBody struct {
	Message string `json:"message"`
}

// Message returns the "message" field of a JSON error body, or "" when the
// body is empty, not JSON, or carries no message.
func (r Response) Message() string {
	if len(r.Body) == 0 {
		return ""
	}
	var body errorBody
	if err := json.Unmarshal(r.Body, &body); err != nil {
		return ""
	}
	return body.Message
}

// APIError is returned by the panel client for every non-2xx response.
type APIError struct {
	Method   string
	Path     string
	Response Response
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Response.Status, http.StatusText(e.Response.Status))
}
