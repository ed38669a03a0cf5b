// Package dispatcher routes one invocation to the query responder or to the
// ingestion pipeline.
package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"docbridge/internal/invocation"
	"docbridge/internal/model"
	"docbridge/internal/service"
)

// Dispatcher handles invocations. It holds no per-invocation state and is safe
// for concurrent use.
type Dispatcher struct {
	ingestor service.Ingestor
	lister   service.Lister
	logger   *zap.Logger
}

// New constructs a Dispatcher. A nil logger disables logging.
func New(ingestor service.Ingestor, lister service.Lister, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		ingestor: ingestor,
		lister:   lister,
		logger:   logger.With(zap.String("component", "dispatcher")),
	}
}

// Handle decodes raw and dispatches it. It never panics.
func (d *Dispatcher) Handle(ctx context.Context, raw []byte) (resp invocation.Response) {
	defer d.recoverInto(&resp)

	inv, err := invocation.Parse(raw)
	if err != nil {
		d.logger.Warn("rejected invocation payload", zap.String("event", "invocation_invalid"), zap.Error(err))
		return invocation.BadRequest()
	}
	return d.Dispatch(ctx, inv)
}

// Dispatch runs an already classified invocation.
func (d *Dispatcher) Dispatch(ctx context.Context, inv invocation.Invocation) (resp invocation.Response) {
	defer d.recoverInto(&resp)

	switch v := inv.(type) {
	case invocation.HTTP:
		return d.serveHTTP(ctx, v)
	case invocation.Queue:
		d.drain(ctx, v)
		return invocation.OK()
	default:
		d.logger.Error("unknown invocation kind", zap.String("type", fmt.Sprintf("%T", inv)))
		return invocation.InternalError()
	}
}

func (d *Dispatcher) serveHTTP(ctx context.Context, req invocation.HTTP) invocation.Response {
	if req.Method != http.MethodGet {
		d.logger.Debug("method not allowed",
			zap.String("method", req.Method),
			zap.Error(model.ErrUnsupportedMethod))
		return invocation.MethodNotAllowed()
	}

	docs, err := d.lister.List(ctx)
	if err != nil {
		d.logger.Error("list documents failed", zap.String("event", "list_failed"), zap.Error(err))
		return invocation.InternalError()
	}
	body, err := json.Marshal(docs)
	if err != nil {
		d.logger.Error("encode documents failed", zap.String("event", "list_failed"), zap.Error(err))
		return invocation.InternalError()
	}
	return invocation.JSON(body)
}

// drain processes messages one at a time in delivery order. A failed or
// panicking message is logged and dropped; it never stops the batch.
func (d *Dispatcher) drain(ctx context.Context, q invocation.Queue) {
	var done, skipped int
	for i, msg := range q.Messages {
		out := d.ingestOne(ctx, msg)
		fields := []zap.Field{
			zap.Int("index", i),
			zap.String("message_id", msg.ID),
			zap.String("stage", string(out.Stage)),
			zap.String("document_name", out.Name),
			zap.String("url", out.URL),
		}
		if out.Err != nil {
			skipped++
			d.logger.Error("message skipped", append(fields, zap.String("event", "message_skipped"), zap.Error(out.Err))...)
			continue
		}
		done++
		d.logger.Info("document stored", append(fields,
			zap.String("event", "message_done"),
			zap.String("document_id", out.ID),
			zap.String("object_key", out.Key))...)
	}
	d.logger.Info("batch drained",
		zap.String("event", "batch_done"),
		zap.Int("messages", len(q.Messages)),
		zap.Int("done", done),
		zap.Int("skipped", skipped))
}

func (d *Dispatcher) ingestOne(ctx context.Context, msg invocation.Message) (out service.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = service.Outcome{Err: fmt.Errorf("panic: %v", r)}
			d.logger.Error("panic while ingesting message", zap.ByteString("stack", debug.Stack()))
		}
	}()
	return d.ingestor.Ingest(ctx, msg)
}

func (d *Dispatcher) recoverInto(resp *invocation.Response) {
	if r := recover(); r != nil {
		d.logger.Error("panic while dispatching",
			zap.Any("panic", r),
			zap.ByteString("stack", debug.Stack()))
		*resp = invocation.InternalError()
	}
}
