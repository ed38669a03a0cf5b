package invocation

import (
	"encoding/json"
	"net/http"
)

// Response is what the function returns to its trigger.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body,omitempty"`
}

// OK acknowledges a drained queue batch.
func OK() Response {
	return Response{StatusCode: http.StatusOK}
}

// JSON wraps an already encoded JSON document.
func JSON(body []byte) Response {
	return Response{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func MethodNotAllowed() Response {
	return Response{StatusCode: http.StatusMethodNotAllowed}
}

func InternalError() Response {
	return Response{StatusCode: http.StatusInternalServerError, Body: "Internal Server Error"}
}

func BadRequest() Response {
	return Response{StatusCode: http.StatusBadRequest, Body: "Bad Request"}
}

// Marshal encodes r in the trigger's wire shape.
func (r Response) Marshal() []byte {
	b, _ := json.Marshal(r)
	return b
}
