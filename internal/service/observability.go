package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/alexanderramin/csrdash/internal/budget"
	"github.com/alexanderramin/csrdash/internal/repository"
)

// UseCaseEvent describes one finished service call.
type UseCaseEvent struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
}

// Rejected reports whether the call failed on user input (validation, an
// unknown id, an over-allocated budget) rather than on the store.
func (e UseCaseEvent) Rejected() bool {
	return e.Err != nil && (errors.Is(e.Err, ErrValidation) ||
		errors.Is(e.Err, repository.ErrNotFound) ||
		errors.Is(e.Err, ErrNotAssigned) ||
		errors.Is(e.Err, budget.ErrAllocationExceedsBudget) ||
		errors.Is(e.Err, budget.ErrAllocationExceedsParent))
}

type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

// NewLogUseCaseObserver writes one text line per use case to w.
func NewLogUseCaseObserver(w io.Writer) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	return NewSlogUseCaseObserver(slog.New(slog.NewTextHandler(w, nil)))
}

// NewSlogUseCaseObserver logs successes at Info, rejected input at Warn and
// store failures at Error.
func NewSlogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return NoopUseCaseObserver{}
	}
	return slogObserver{logger: logger}
}

type slogObserver struct {
	logger *slog.Logger
}

func (o slogObserver) ObserveUseCase(ctx context.Context, e UseCaseEvent) {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	attrs := []slog.Attr{
		slog.String("use_case", e.Name),
		slog.Int64("duration_ms", e.Duration.Milliseconds()),
		slog.Bool("success", e.Success),
	}
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, e.Fields[k]))
	}

	level := slog.LevelInfo
	switch {
	case e.Rejected():
		level = slog.LevelWarn
	case e.Err != nil:
		level = slog.LevelError
	}
	if e.Err != nil {
		attrs = append(attrs, slog.String("error", e.Err.Error()))
	}
	o.logger.LogAttrs(ctx, level, "service_use_case", attrs...)
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}

// observe is deferred by every mutating use case with a pointer to its
// named error result.
func observe(ctx context.Context, obs UseCaseObserver, name string, startedAt time.Time, fields map[string]any, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
	})
}
