package telemetry

import (
	"errors"
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnableDBTracing registers the otelgorm plugin on a GORM instance so each
// query becomes a child span of the request span. Query variables are
// always excluded from the recorded statement. An after callback annotates
// the span with the table, rows affected, and any error other than
// record-not-found, which repositories treat as a normal miss.
func EnableDBTracing(db *gorm.DB, dbName string, log *zap.Logger) error {
	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName(dbName),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return fmt.Errorf("failed to register database tracing plugin: %w", err)
	}
	if err := registerSpanAnnotations(db); err != nil {
		return fmt.Errorf("failed to register database span annotations: %w", err)
	}

	log.Info("database tracing enabled", zap.String("db_name", dbName))
	return nil
}

func registerSpanAnnotations(db *gorm.DB) error {
	after := func(tx *gorm.DB) {
		if tx.Statement == nil || tx.Statement.Context == nil {
			return
		}
		span := trace.SpanFromContext(tx.Statement.Context)
		if !span.IsRecording() {
			return
		}
		if tx.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
		}
		if tx.Statement.RowsAffected >= 0 {
			span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
		}
		if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, tx.Error.Error())
			span.RecordError(tx.Error)
		}
	}

	if err := db.Callback().Create().After("gorm:create").Register("tracing:after_create", after); err != nil {
		return err
	}
	if err := db.Callback().Query().After("gorm:query").Register("tracing:after_query", after); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").Register("tracing:after_update", after); err != nil {
		return err
	}
	if err := db.Callback().Delete().After("gorm:delete").Register("tracing:after_delete", after); err != nil {
		return err
	}
	if err := db.Callback().Row().After("gorm:row").Register("tracing:after_row", after); err != nil {
		return err
	}
	return db.Callback().Raw().After("gorm:raw").Register("tracing:after_raw", after)
}
