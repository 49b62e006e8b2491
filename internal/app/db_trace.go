package app

import (
	"context"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/icl-ladder/internal/infrastructure/repository/postgres"
)

const maxTracedQueryLength = 512

var queryWhitespaceRegex = regexp.MustCompile(`\s+`)

var dbTracer = otel.Tracer("icl-ladder/internal/app/db")

func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}

// newDBQueryTracer opens one span per ledger repository operation, only under an
// already sampled parent. Driver level statement spans from otelsql nest below it.
func newDBQueryTracer(dbName string) postgres.QueryTracer {
	return func(ctx context.Context, operation, query string) (context.Context, func(error)) {
		if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
			return ctx, func(error) {}
		}

		ctx, span := dbTracer.Start(ctx, operation,
			trace.WithAttributes(
				attribute.String("db.system", "postgresql"),
				attribute.String("db.name", dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.statement", formatDBQueryForTrace(query)),
			),
		)
		return ctx, func(err error) {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			span.End()
		}
	}
}
