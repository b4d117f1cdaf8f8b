package multilingual

import (
	"context"
	"fmt"
	"reflect"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// SerializerName is the name RegisterSerializer uses when none is given.
const SerializerName = "multilingual"

//nolint:gochecknoglobals //reflect types are resolved once
var (
	textType    = reflect.TypeOf(Text{})
	textPtrType = reflect.TypeOf(&Text{})
	fileType    = reflect.TypeOf(File{})
	filePtrType = reflect.TypeOf(&File{})
)

// GormDataType returns the common GORM data type.
func (Text) GormDataType() string {
	return "multilingual"
}

// GormDBDataType returns the dialect-specific column type. Documents grow with every added
// language, so the column is always unbounded text whatever the per-input max length.
func (Text) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return textColumnType(db)
}

// GormDataType returns the common GORM data type.
func (File) GormDataType() string {
	return "multilingual"
}

// GormDBDataType returns the dialect-specific column type.
func (File) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return textColumnType(db)
}

func textColumnType(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "LONGTEXT"
	case "sqlserver":
		return "NVARCHAR(MAX)"
	default:
		return "TEXT"
	}
}

// Serializer is a gorm serializer reading and writing Text, *Text, File and *File fields with
// a codec, so models only carry a struct tag:
//
//	Title multilingual.Text `gorm:"serializer:multilingual"`
type Serializer struct {
	codec *Codec
}

var _ schema.SerializerInterface = (*Serializer)(nil)

// NewSerializer creates a serializer for codec.
func NewSerializer(codec *Codec) *Serializer {
	return &Serializer{codec: codec}
}

// RegisterSerializer registers codec with gorm under name, SerializerName when name is "".
func RegisterSerializer(name string, codec *Codec) {
	if name == "" {
		name = SerializerName
	}
	schema.RegisterSerializer(name, NewSerializer(codec))
}

// Scan implements schema.SerializerInterface. NULL columns decode to empty aggregates.
func (s *Serializer) Scan(ctx context.Context, field *schema.Field, dst reflect.Value, dbValue any) error {
	doc, err := documentFromDB(dbValue)
	if err != nil {
		return err
	}

	var value reflect.Value
	switch field.FieldType {
	case textType, textPtrType:
		t, decodeErr := s.codec.DecodeText(doc)
		if decodeErr != nil {
			return fmt.Errorf("multilingual: field %s: %w", field.Name, decodeErr)
		}
		value = reflect.ValueOf(t)
	case fileType, filePtrType:
		f, decodeErr := s.codec.DecodeFile(doc)
		if decodeErr != nil {
			return fmt.Errorf("multilingual: field %s: %w", field.Name, decodeErr)
		}
		value = reflect.ValueOf(f)
	default:
		return fmt.Errorf("multilingual: field %s has unsupported type %s", field.Name, field.FieldType)
	}

	if field.FieldType.Kind() != reflect.Ptr {
		value = value.Elem()
	}
	field.ReflectValueOf(ctx, dst).Set(value)
	return nil
}

// Value implements schema.SerializerValuerInterface.
func (s *Serializer) Value(_ context.Context, field *schema.Field, _ reflect.Value, fieldValue any) (any, error) {
	switch v := fieldValue.(type) {
	case Text:
		return s.codec.EncodeText(&v)
	case *Text:
		if v == nil {
			return nil, nil //nolint:nilnil //nil pointers are stored as NULL
		}
		return s.codec.EncodeText(v)
	case File:
		return s.codec.EncodeFile(&v)
	case *File:
		if v == nil {
			return nil, nil //nolint:nilnil //nil pointers are stored as NULL
		}
		return s.codec.EncodeFile(v)
	default:
		return nil, fmt.Errorf("multilingual: field %s has unsupported type %T", field.Name, fieldValue)
	}
}

// IsMultilingualField reports whether a parsed gorm field holds a multilingual aggregate.
func IsMultilingualField(field *schema.Field) bool {
	switch field.FieldType {
	case textType, textPtrType, fileType, filePtrType:
		return true
	default:
		return false
	}
}
