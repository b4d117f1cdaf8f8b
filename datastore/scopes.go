package datastore

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoColumns is reported by the translation scopes when no column is given.
var ErrNoColumns = errors.New("datastore: at least one multilingual column is required")

// MissingTranslation selects rows where at least one of columns has no content for code.
// NULL documents count as missing.
func MissingTranslation(code string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(columns) == 0 {
			_ = db.AddError(ErrNoColumns)
			return db
		}

		present, empty := translationPatterns(code)
		exprs := make([]clause.Expression, len(columns))
		for i, col := range columns {
			c := clause.Column{Name: col}
			exprs[i] = clause.Expr{
				SQL:  "(? IS NULL OR ? NOT LIKE ? ESCAPE '!' OR ? LIKE ? ESCAPE '!')",
				Vars: []any{c, c, present, c, empty},
			}
		}
		return db.Where(clause.Or(exprs...))
	}
}

// HasTranslation selects rows where every one of columns has content for code.
func HasTranslation(code string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(columns) == 0 {
			_ = db.AddError(ErrNoColumns)
			return db
		}

		present, empty := translationPatterns(code)
		exprs := make([]clause.Expression, len(columns))
		for i, col := range columns {
			c := clause.Column{Name: col}
			exprs[i] = clause.Expr{
				SQL:  "(? LIKE ? ESCAPE '!' AND ? NOT LIKE ? ESCAPE '!')",
				Vars: []any{c, present, c, empty},
			}
		}
		return db.Where(clause.And(exprs...))
	}
}

//nolint:gochecknoglobals // replacer is immutable
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// translationPatterns match a canonical record for code and an empty canonical record for code.
// Both are meant for LIKE with ESCAPE '!'.
func translationPatterns(code string) (string, string) {
	var attr strings.Builder
	_ = xml.EscapeText(&attr, []byte(code))
	literal := likeEscaper.Replace(attr.String())

	return fmt.Sprintf(`%%<language code="%s">%%`, literal),
		fmt.Sprintf(`%%<language code="%s"></language>%%`, literal)
}

// MissingKeys returns the keyColumn values of the rows of table that miss content for code in
// any of columns, in key order.
func MissingKeys(
	ctx context.Context,
	db *gorm.DB,
	table, keyColumn, code string,
	columns ...string,
) (keys []string, err error) {
	ctx, span := tracer.Start(ctx, "MissingKeys")
	defer func() {
		tracer.End(ctx, span, err)
	}()

	err = db.WithContext(ctx).Table(table).
		Scopes(MissingTranslation(code, columns...)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: keyColumn}}).
		Pluck(keyColumn, &keys).Error
	if err != nil {
		return nil, fmt.Errorf("datastore: missing %s translations in %s: %w", code, table, err)
	}
	return keys, nil
}
