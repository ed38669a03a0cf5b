// Package invocation decodes the payloads a trigger hands to the function and
// encodes the result it returns.
package invocation

import (
	"encoding/json"
	"errors"
	"fmt"

	"docbridge/internal/model"
)

// ErrInvalidPayload is returned by Parse when the payload is not a JSON object
// or carries fields of the wrong type.
var ErrInvalidPayload = errors.New("invalid invocation payload")

// Invocation is either an HTTP or a Queue invocation.
type Invocation interface {
	isInvocation()
}

// HTTP is a synchronous request forwarded by an API gateway.
type HTTP struct {
	Method string
	Path   string
	Query  map[string]string
}

// Queue is a batch of message queue envelopes, in delivery order.
type Queue struct {
	Messages []Message
}

// Message is one queue envelope reduced to what the ingestion pipeline needs.
type Message struct {
	ID   string
	Body string
}

func (HTTP) isInvocation()  {}
func (Queue) isInvocation() {}

type rawEnvelope struct {
	Details struct {
		Message struct {
			MessageID string `json:"message_id"`
			Body      string `json:"body"`
		} `json:"message"`
	} `json:"details"`
}

// Parse classifies raw once. A payload carrying an httpMethod key is HTTP,
// whatever the key's value; a method that is not a string is kept empty and
// so never matches a supported one. Anything else is a Queue whose messages
// may be absent. Envelopes that fail to decode are kept with an empty body so
// the batch itself still succeeds.
func Parse(raw []byte) (Invocation, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: payload is null", ErrInvalidPayload)
	}

	if rawMethod, ok := fields["httpMethod"]; ok {
		req := HTTP{}
		_ = json.Unmarshal(rawMethod, &req.Method)
		if rawPath, ok := fields["path"]; ok {
			_ = json.Unmarshal(rawPath, &req.Path)
		}
		if rawQuery, ok := fields["queryStringParameters"]; ok {
			_ = json.Unmarshal(rawQuery, &req.Query)
		}
		return req, nil
	}

	var envelopes []json.RawMessage
	if rawMessages, ok := fields["messages"]; ok {
		if err := json.Unmarshal(rawMessages, &envelopes); err != nil {
			return nil, fmt.Errorf("%w: messages must be an array", ErrInvalidPayload)
		}
	}

	q := Queue{Messages: make([]Message, 0, len(envelopes))}
	for _, rawEnv := range envelopes {
		var env rawEnvelope
		if err := json.Unmarshal(rawEnv, &env); err != nil {
			q.Messages = append(q.Messages, Message{})
			continue
		}
		q.Messages = append(q.Messages, Message{
			ID:   env.Details.Message.MessageID,
			Body: env.Details.Message.Body,
		})
	}
	return q, nil
}

// Request is the validated content of a queue message body.
type Request struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ParseBody decodes a message body. Both fields must be non-empty strings.
// The name is returned as sent; it becomes the suffix of the object key.
func ParseBody(body string) (Request, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return Request{}, fmt.Errorf("%w: %w", model.ErrMalformedMessage, err)
	}

	name, err := stringField(fields, "name")
	if err != nil {
		return Request{}, err
	}
	url, err := stringField(fields, "url")
	if err != nil {
		return Request{}, err
	}

	return Request{Name: name, URL: url}, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", model.ErrMalformedMessage, key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %q must be a string", model.ErrMalformedMessage, key)
	}
	if s == "" {
		return "", fmt.Errorf("%w: %q is empty", model.ErrMalformedMessage, key)
	}
	return s, nil
}
