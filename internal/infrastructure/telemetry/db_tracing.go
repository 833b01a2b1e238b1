package telemetry

import (
	"errors"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing
type DBTracingConfig struct {
	Enabled bool
	// DBName is reported as db.name on every span
	DBName string
	// WithQueryVariables includes bound values in db.statement. Licence data
	// is sensitive so this stays off outside development.
	WithQueryVariables bool
}

// DBTracingPlugins returns the gorm plugins that trace every query: otelgorm
// for the spans and an annotator adding row counts and table names. The
// annotator is registered first so its callbacks run before otelgorm ends the
// span. It returns nil when tracing is disabled.
func DBTracingPlugins(cfg DBTracingConfig, provider trace.TracerProvider) []gorm.Plugin {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(cfg.DBName),
		otelgorm.WithTracerProvider(provider),
	}
	if !cfg.WithQueryVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	return []gorm.Plugin{spanAnnotator{}, otelgorm.NewPlugin(opts...)}
}

// spanAnnotator adds the affected row count and table name to the query span
type spanAnnotator struct{}

func (spanAnnotator) Name() string { return "wrls:span_annotator" }

func (a spanAnnotator) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().After("gorm:create").Register(a.Name()+":create", annotateSpan),
		cb.Query().After("gorm:query").Register(a.Name()+":query", annotateSpan),
		cb.Update().After("gorm:update").Register(a.Name()+":update", annotateSpan),
		cb.Delete().After("gorm:delete").Register(a.Name()+":delete", annotateSpan),
		cb.Row().After("gorm:row").Register(a.Name()+":row", annotateSpan),
		cb.Raw().After("gorm:raw").Register(a.Name()+":raw", annotateSpan),
	)
}

func annotateSpan(db *gorm.DB) {
	if db.Statement == nil || db.Statement.Context == nil {
		return
	}

	span := trace.SpanFromContext(db.Statement.Context)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
}
