package datastore

import (
	"gorm.io/gorm"

	"github.com/pitabwire/multilingual"
)

// Fields returns the columns of model that hold multilingual documents, in declaration order.
func Fields(db *gorm.DB, model any) ([]string, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, err
	}

	var columns []string
	for _, field := range stmt.Schema.Fields {
		if field.DBName != "" && multilingual.IsMultilingualField(field) {
			columns = append(columns, field.DBName)
		}
	}
	return columns, nil
}
