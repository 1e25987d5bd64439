package shared

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OperationRunner wraps service operations with tracing, metrics, logging
// and panic recovery.
type OperationRunner struct {
	Service string
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics ServiceMetrics

	// Expected reports errors that are normal outcomes (not found, invalid
	// input). They are logged at Warn and do not count as failures.
	Expected func(error) bool
}

// Run executes op as operationName. Methods cannot have type parameters, so
// this is a function over the runner.
func Run[T any](
	ctx context.Context,
	r *OperationRunner,
	operationName string,
	identifier string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var span trace.Span
	if r.Tracer != nil {
		ctx, span = r.Tracer.Start(ctx, r.Service+"."+operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if r.Metrics != nil {
		r.Metrics.RecordOperationAttempt(operationName, r.Service)
	}

	startTime := time.Now()
	defer func() {
		if r.Metrics != nil {
			r.Metrics.RecordOperationDuration(operationName, r.Service, time.Since(startTime))
		}
	}()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, rec)
			logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("operation", operationName),
				slog.String("identifier", identifier),
				slog.Any("error", err),
			)
			if r.Metrics != nil {
				r.Metrics.RecordOperationFailure(operationName, r.Service)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)

	if err != nil {
		if r.Expected != nil && r.Expected(err) {
			logger.WarnContext(ctx, "Operation returned failure result",
				slog.String("operation", operationName),
				slog.String("identifier", identifier),
				slog.Any("error", err),
			)
			return result, err
		}

		logger.ErrorContext(ctx, "Operation failed with error",
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("error", err),
		)
		if r.Metrics != nil {
			r.Metrics.RecordOperationFailure(operationName, r.Service)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, fmt.Errorf("%s: %w", operationName, err)
	}

	logger.DebugContext(ctx, "Operation completed successfully",
		slog.String("operation", operationName),
		slog.String("identifier", identifier),
	)
	if r.Metrics != nil {
		r.Metrics.RecordOperationSuccess(operationName, r.Service)
	}

	return result, nil
}

// RunInTx runs fn inside a transaction on db. With a nil db, fn is called
// with a nil handle and repositories fall back to their own connection.
func RunInTx[T any](
	ctx context.Context,
	db *bun.DB,
	fn func(ctx context.Context, db bun.IDB) (T, error),
) (T, error) {
	if db == nil {
		return fn(ctx, nil)
	}

	var result T
	err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}
