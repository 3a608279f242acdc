package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roleplayhq/reports-mcp/internal/core/domain"
	"github.com/roleplayhq/reports-mcp/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type toolNameKey struct{}

// WithToolName returns a context carrying the MCP tool name for audit logging.
func WithToolName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, toolNameKey{}, name)
}

func toolNameFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(toolNameKey{}).(string); ok {
		return v
	}
	return ""
}

// QueryResult is the outcome of an executed query: the SQL that actually ran
// (after row-limit enforcement), the rows it returned, and how long it took.
type QueryResult struct {
	Query      string
	Rows       []map[string]any
	DurationMS int64
}

// QueryService orchestrates SQL validation and row-limit enforcement (domain)
// and execution (infrastructure).
type QueryService struct {
	validator port.QueryValidator
	executor  port.QueryExecutor
	auditor   port.QueryAuditor
	logger    *slog.Logger
	tracer    trace.Tracer
	inst      port.Instrumentation
}

func NewQueryService(validator port.QueryValidator, executor port.QueryExecutor, auditor port.QueryAuditor, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *QueryService {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}
	return &QueryService{
		validator: validator,
		executor:  executor,
		auditor:   auditor,
		logger:    logger,
		tracer:    tracer,
		inst:      inst,
	}
}

// Execute validates the SQL statement and, if allowed, enforces the row limit
// and delegates to the executor. rowLimit is clamped to [1, MaxRowLimit];
// callers pass domain.DefaultRowLimit when the client did not ask for one.
func (s *QueryService) Execute(ctx context.Context, sql string, rowLimit int) (*QueryResult, error) {
	ctx, span := s.tracer.Start(ctx, "QueryService.Execute",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation.name", "query"),
			attribute.String("db.statement", sql),
		),
	)
	defer span.End()

	if err := s.validator.Validate(sql); err != nil {
		s.logger.WarnContext(ctx, "query validation rejected",
			slog.String("db.operation.name", "query"),
			slog.String("db.statement", sql),
			slog.String("error.type", "validation_error"),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.inst.IncrementQueryErrors(ctx)
		return nil, fmt.Errorf("validation: %w", err)
	}

	limit := domain.ClampRowLimit(rowLimit)
	enforced := domain.EnforceRowLimit(sql, limit)
	span.SetAttributes(attribute.Int("db.query.row_limit", limit))

	start := time.Now()
	rows, err := s.executor.Execute(ctx, enforced)
	durationMS := time.Since(start).Milliseconds()

	s.inst.RecordQueryDuration(ctx, float64(durationMS))

	s.auditor.Record(ctx, port.AuditEntry{
		Tool:         toolNameFromCtx(ctx),
		SQL:          enforced,
		RowLimit:     limit,
		RowsReturned: len(rows),
		DurationMS:   durationMS,
		Err:          err,
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.inst.IncrementQueryErrors(ctx)
		return nil, err
	}

	s.inst.IncrementQueryCount(ctx)
	span.SetAttributes(attribute.Int("db.response.rows", len(rows)))

	return &QueryResult{Query: enforced, Rows: rows, DurationMS: durationMS}, nil
}
