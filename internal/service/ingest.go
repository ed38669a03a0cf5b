package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docbridge/internal/fetcher"
	"docbridge/internal/invocation"
	"docbridge/internal/metrics"
	"docbridge/internal/model"
	"docbridge/internal/repository"
	"docbridge/internal/storage"
)

// Stage is a step of the per-message ingestion pipeline.
type Stage string

const (
	StageParsing   Stage = "parsing"
	StageFetching  Stage = "fetching"
	StageUploading Stage = "uploading"
	StageRecording Stage = "recording"
	StageDone      Stage = "done"
)

// Outcome is the result of one message. When Err is set, Stage is where the
// pipeline stopped and the message was skipped; earlier stages are not undone.
type Outcome struct {
	Stage Stage
	ID    string
	Key   string
	Name  string
	URL   string
	Err   error
}

// Done reports whether the message was fully ingested.
func (o Outcome) Done() bool { return o.Err == nil && o.Stage == StageDone }

// Ingestor runs queue messages through fetch, upload and record.
type Ingestor interface {
	// Ingest never returns an error directly; failures are carried in the Outcome.
	Ingest(ctx context.Context, msg invocation.Message) Outcome
}

type ingestor struct {
	fetcher fetcher.Fetcher
	store   storage.Storage
	repo    repository.DocumentRepository
	metrics *metrics.Ingestion
	tracer  trace.Tracer
	newID   func() string
}

// NewIngestor constructs an Ingestor. m may be nil.
func NewIngestor(f fetcher.Fetcher, store storage.Storage, repo repository.DocumentRepository, m *metrics.Ingestion) Ingestor {
	return &ingestor{
		fetcher: f,
		store:   store,
		repo:    repo,
		metrics: m,
		tracer:  otel.Tracer("docbridge/service"),
		newID:   uuid.NewString,
	}
}

func (s *ingestor) Ingest(ctx context.Context, msg invocation.Message) (out Outcome) {
	ctx, span := s.tracer.Start(ctx, "ingest.message",
		trace.WithAttributes(attribute.String("messaging.message.id", msg.ID)))
	defer func() {
		span.SetAttributes(attribute.String("ingest.stage", string(out.Stage)))
		if out.Err != nil {
			span.RecordError(out.Err)
			span.SetStatus(codes.Error, string(out.Stage))
			s.metrics.Outcome("skipped", string(out.Stage))
		} else {
			s.metrics.Outcome("done", string(out.Stage))
		}
		span.End()
	}()

	out.Stage = StageParsing
	req, err := invocation.ParseBody(msg.Body)
	if err != nil {
		out.Err = err
		return out
	}
	out.Name, out.URL = req.Name, req.URL
	span.SetAttributes(attribute.String("document.name", req.Name), attribute.String("url.full", req.URL))

	out.Stage = StageFetching
	var data []byte
	err = s.stage(ctx, StageFetching, func(ctx context.Context) error {
		var ferr error
		data, ferr = s.fetcher.Fetch(ctx, req.URL)
		if ferr != nil && !errors.Is(ferr, model.ErrFetch) {
			ferr = fmt.Errorf("%w: %w", model.ErrFetch, ferr)
		}
		return ferr
	})
	if err != nil {
		out.Err = err
		return out
	}
	s.metrics.Fetched(len(data))

	out.ID = s.newID()
	out.Key = model.ObjectKey(out.ID, req.Name)

	out.Stage = StageUploading
	err = s.stage(ctx, StageUploading, func(ctx context.Context) error {
		_, perr := s.store.Put(ctx, out.Key, bytes.NewReader(data), storage.PutObjectOptions{
			Size:        int64(len(data)),
			ContentType: http.DetectContentType(data),
			Metadata:    map[string]string{"source-url": req.URL},
		})
		if perr != nil {
			return fmt.Errorf("%w: %w", model.ErrStorageWrite, perr)
		}
		return nil
	})
	if err != nil {
		out.Err = err
		return out
	}

	out.Stage = StageRecording
	err = s.stage(ctx, StageRecording, func(ctx context.Context) error {
		doc := &model.Document{ID: out.ID, Name: out.Key, URL: req.URL}
		if rerr := s.repo.Upsert(ctx, doc); rerr != nil {
			return fmt.Errorf("%w: %w", model.ErrRecordWrite, rerr)
		}
		return nil
	})
	if err != nil {
		out.Err = err
		return out
	}

	out.Stage = StageDone
	return out
}

// stage runs fn inside a child span and records its duration.
func (s *ingestor) stage(ctx context.Context, st Stage, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "ingest."+string(st))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	s.metrics.Stage(string(st), time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
