package datastore

import (
	"context"
	"fmt"

	"github.com/pitabwire/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pitabwire/multilingual"
	"github.com/pitabwire/multilingual/telemetry"
)

const (
	defaultConvertBatchSize = 500
	telemetryPackage        = "multilingual/datastore"
)

//nolint:gochecknoglobals // instruments are created once per process
var (
	tracer         = telemetry.NewTracer(telemetryPackage)
	convertedCount = telemetry.DimensionlessMeasure(telemetryPackage, "/converted_rows",
		"Number of legacy documents rewritten")
)

// ConvertOption configures ConvertLegacy.
type ConvertOption func(*convertOptions)

type convertOptions struct {
	keyColumn string
	batchSize int
}

// WithKeyColumn sets the unique, ordered column rows are paged by. Defaults to "id".
func WithKeyColumn(name string) ConvertOption {
	return func(o *convertOptions) {
		o.keyColumn = name
	}
}

// WithBatchSize sets how many rows are read and rewritten per transaction.
func WithBatchSize(n int) ConvertOption {
	return func(o *convertOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// ConvertLegacy rewrites the documents of table.column, read with from, into format to. Rows
// are processed in key order, one transaction per batch. NULL documents and documents from
// does not read any content from are left untouched, so running it twice is harmless.
// It returns the number of rewritten rows.
func ConvertLegacy(
	ctx context.Context,
	db *gorm.DB,
	from *multilingual.Codec,
	table, column string,
	to multilingual.Format,
	opts ...ConvertOption,
) (converted int64, err error) {
	ctx, span := tracer.Start(ctx, "ConvertLegacy")
	defer func() {
		tracer.End(ctx, span, err)
	}()

	o := &convertOptions{keyColumn: "id", batchSize: defaultConvertBatchSize}
	for _, opt := range opts {
		opt(o)
	}

	log := util.Log(ctx).WithField("table", table).WithField("column", column)
	target := multilingual.NewCodec(from.Languages(), multilingual.WithFormat(to))

	var lastKey any
	for {
		rows, err := readBatch(ctx, db, table, column, o, lastKey)
		if err != nil {
			return converted, err
		}
		if len(rows) == 0 {
			break
		}
		lastKey = rows[len(rows)-1][o.keyColumn]

		n, err := convertBatch(ctx, db, from, target, table, column, o.keyColumn, rows)
		converted += n
		convertedCount.Add(ctx, n)
		if err != nil {
			log.WithError(err).WithField("converted", converted).Error("legacy conversion stopped")
			return converted, err
		}

		if len(rows) < o.batchSize {
			break
		}
	}

	log.WithField("converted", converted).Info("legacy conversion finished")
	return converted, nil
}

func readBatch(
	ctx context.Context,
	db *gorm.DB,
	table, column string,
	o *convertOptions,
	after any,
) ([]map[string]any, error) {
	key := clause.Column{Name: o.keyColumn}

	query := db.WithContext(ctx).Table(table).
		Select([]string{o.keyColumn, column}).
		Order(clause.OrderByColumn{Column: key}).
		Limit(o.batchSize)
	if after != nil {
		query = query.Where(clause.Expr{SQL: "? > ?", Vars: []any{key, after}})
	}

	var rows []map[string]any
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("datastore: read %s.%s: %w", table, column, err)
	}
	return rows, nil
}

func convertBatch(
	ctx context.Context,
	db *gorm.DB,
	from, target *multilingual.Codec,
	table, column, keyColumn string,
	rows []map[string]any,
) (int64, error) {
	var converted int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			doc, ok := documentOf(row[column])
			if !ok {
				continue
			}

			values, err := from.Decode(doc)
			if err != nil {
				return fmt.Errorf("datastore: %s %s=%v: %w", table, keyColumn, row[keyColumn], err)
			}
			if allEmpty(values) {
				continue
			}

			out, err := target.Encode(values)
			if err != nil {
				return err
			}
			if out == doc {
				continue
			}

			err = tx.Table(table).
				Where(clause.Eq{Column: clause.Column{Name: keyColumn}, Value: row[keyColumn]}).
				Update(column, out).Error
			if err != nil {
				return fmt.Errorf("datastore: update %s %s=%v: %w", table, keyColumn, row[keyColumn], err)
			}
			converted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return converted, nil
}

func documentOf(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

func allEmpty(values map[string]string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}
