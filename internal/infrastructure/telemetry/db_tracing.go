package telemetry

import (
	"errors"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// RegisterDBTracing installs the otelgorm plugin so every query becomes a
// child span of the request. Query variables are never recorded; readings
// and amounts stay out of the trace backend.
func RegisterDBTracing(db *gorm.DB, dbName string) error {
	if err := db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName(dbName),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return err
	}
	return registerErrorCallbacks(db)
}

// registerErrorCallbacks tags the request span with the table touched and
// marks it failed on database errors. Record-not-found is a normal outcome.
func registerErrorCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().After("gorm:create").Register("portal:trace_create", markSpan); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("portal:trace_query", markSpan); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("portal:trace_update", markSpan); err != nil {
		return err
	}
	return cb.Row().After("gorm:row").Register("portal:trace_row", markSpan)
}

func markSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
	}
}
