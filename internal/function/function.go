// Package function registers the serverless entry points with the Functions
// Framework. Importing it for side effects is enough to expose them.
package function

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"go.uber.org/zap"

	"docbridge/internal/app"
	"docbridge/internal/config"
	"docbridge/internal/invocation"
	"docbridge/internal/logging"
)

const maxPayloadBytes = 10 << 20

// Invoker is the part of the dispatcher the entry points need.
type Invoker interface {
	Handle(ctx context.Context, raw []byte) invocation.Response
	Dispatch(ctx context.Context, inv invocation.Invocation) invocation.Response
}

// resolve returns the process-wide invoker. Tests replace it.
var resolve = func(ctx context.Context) (Invoker, *zap.Logger, error) {
	a, err := app.Ensure(ctx)
	if err != nil {
		return nil, fallbackLogger(), err
	}
	return a.Dispatcher, a.Logger, nil
}

// fallbackLogger reports failures that happen before an App exists.
var fallbackLogger = sync.OnceValue(func() *zap.Logger {
	logger, err := logging.New(config.Load().Logging.Development)
	if err != nil {
		return zap.L()
	}
	return logger.With(zap.String("component", "function"))
})

func init() {
	functions.HTTP("Handler", Handler)
	functions.CloudEvent("HandleEvent", HandleEvent)
}

// Handler serves both invocation shapes over plain HTTP. A POST with a JSON
// object body is taken as an invocation payload; any other request is an HTTP
// invocation carrying the request's own method.
func Handler(w http.ResponseWriter, r *http.Request) {
	inv, logger, err := resolve(r.Context())
	if err != nil {
		logger.Error("initialization failed", zap.Error(err))
		writeResponse(w, invocation.InternalError())
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		writeResponse(w, invocation.BadRequest())
		return
	}

	trimmed := bytes.TrimSpace(raw)
	if r.Method == http.MethodPost && len(trimmed) > 0 && trimmed[0] == '{' {
		writeResponse(w, inv.Handle(r.Context(), trimmed))
		return
	}

	query := make(map[string]string, len(r.URL.Query()))
	for k := range r.URL.Query() {
		query[k] = r.URL.Query().Get(k)
	}
	writeResponse(w, inv.Dispatch(r.Context(), invocation.HTTP{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  query,
	}))
}

// pubsubData is the payload of a google.cloud.pubsub.topic.v1.messagePublished event.
type pubsubData struct {
	Message struct {
		Data      []byte `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
}

// HandleEvent accepts a CloudEvent. Pub/Sub events become a one-message queue
// batch; any other data is parsed as an invocation payload. It never returns
// an error so the platform does not redeliver.
func HandleEvent(ctx context.Context, e cloudevents.Event) error {
	inv, logger, err := resolve(ctx)
	if err != nil {
		logger.Error("initialization failed", zap.Error(err))
		return nil
	}

	var ps pubsubData
	if err := json.Unmarshal(e.Data(), &ps); err == nil && len(ps.Message.Data) > 0 {
		inv.Dispatch(ctx, invocation.Queue{Messages: []invocation.Message{{
			ID:   ps.Message.MessageID,
			Body: string(ps.Message.Data),
		}}})
		return nil
	}

	resp := inv.Handle(ctx, e.Data())
	if resp.StatusCode != http.StatusOK {
		logger.Warn("event not processed",
			zap.String("event_id", e.ID()),
			zap.String("event_type", e.Type()),
			zap.Int("status", resp.StatusCode))
	}
	return nil
}

func writeResponse(w http.ResponseWriter, resp invocation.Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	if resp.Body != "" {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}
