package multilingual_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"gocloud.dev/blob/memblob"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/pitabwire/multilingual"
	"github.com/pitabwire/multilingual/languages"
	"github.com/pitabwire/multilingual/storage"
)

type article struct {
	ID      uint `gorm:"primaryKey"`
	Slug    string
	Title   multilingual.Text  `gorm:"serializer:multilingual_test"`
	Summary *multilingual.Text `gorm:"serializer:multilingual_test"`
	Manual  *multilingual.File `gorm:"serializer:multilingual_test"`
}

type legacyArticle struct {
	ID    uint              `gorm:"primaryKey"`
	Title multilingual.Text `gorm:"serializer:multilingual_test_legacy"`
}

func (legacyArticle) TableName() string {
	return "legacy_articles"
}

type GormSuite struct {
	suite.Suite
	langs *languages.List
	store *storage.BlobStorage
	db    *gorm.DB
}

func TestGormSuite(t *testing.T) {
	suite.Run(t, new(GormSuite))
}

func (s *GormSuite) SetupTest() {
	s.langs = languages.MustNew(
		languages.Language{Code: "en", Name: "English"},
		languages.Language{Code: "es", Name: "Spanish"},
	)
	s.store = storage.New(memblob.OpenBucket(nil))

	multilingual.RegisterSerializer("multilingual_test",
		multilingual.NewCodec(s.langs, multilingual.WithStorage(s.store)))
	multilingual.RegisterSerializer("multilingual_test_legacy",
		multilingual.NewCodec(s.langs, multilingual.WithFormat(multilingual.FormatNested)))

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)

	// Every connection to :memory: opens its own database.
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	s.Require().NoError(db.AutoMigrate(&article{}, &legacyArticle{}))
	s.db = db
}

func (s *GormSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	s.Require().NoError(sqlDB.Close())
	s.Require().NoError(s.store.Close())
}

func (s *GormSuite) TestRoundTrip() {
	ctx := context.Background()

	title, err := multilingual.TextFromMap(s.langs, map[string]string{"en": "Hello", "es": "Hola"})
	s.Require().NoError(err)
	summary, err := multilingual.TextFromMap(s.langs, map[string]string{"es": "Resumen"})
	s.Require().NoError(err)
	manual := multilingual.NewFile(s.langs)
	s.Require().NoError(manual.Set("en", multilingual.NewFieldFile(s.store, "manual.pdf")))

	row := article{Slug: "hello", Title: *title, Summary: summary, Manual: manual}
	s.Require().NoError(s.db.WithContext(ctx).Create(&row).Error)

	var stored string
	s.Require().NoError(s.db.Raw("SELECT title FROM articles WHERE id = ?", row.ID).Scan(&stored).Error)
	s.Equal(`<languages><language code="en">Hello</language><language code="es">Hola</language></languages>`, stored)

	var got article
	s.Require().NoError(s.db.WithContext(ctx).First(&got, row.ID).Error)
	s.True(title.Equal(&got.Title))
	s.True(summary.Equal(got.Summary))
	s.True(manual.Equal(got.Manual))
	s.Equal("manual.pdf", got.Manual.ForLanguage("en").Name())
	s.Nil(got.Manual.ForLanguage("es"))
}

func (s *GormSuite) TestNullColumnsDecodeEmpty() {
	s.Require().NoError(s.db.Exec("INSERT INTO articles (slug, title) VALUES (?, ?)", "empty", nil).Error)

	var got article
	s.Require().NoError(s.db.Where("slug = ?", "empty").First(&got).Error)
	s.True(got.Title.IsEmpty())
	s.Equal(s.langs, got.Title.Languages())
	s.True(got.Summary == nil || got.Summary.IsEmpty())
}

func (s *GormSuite) TestMalformedColumn() {
	s.Require().NoError(s.db.Exec("INSERT INTO articles (slug, title) VALUES (?, ?)", "broken", "<not-xml").Error)

	var got article
	err := s.db.Where("slug = ?", "broken").First(&got).Error
	s.Require().ErrorIs(err, multilingual.ErrMalformedDocument)
}

func (s *GormSuite) TestLegacySerializer() {
	legacy := `<languages><language><code>es</code><language_text>Hola</language_text></language></languages>`
	s.Require().NoError(s.db.Exec("INSERT INTO legacy_articles (title) VALUES (?)", legacy).Error)

	var got legacyArticle
	s.Require().NoError(s.db.First(&got).Error)
	s.Equal("Hola", got.Title.ForLanguage("es"))
	s.Empty(got.Title.ForLanguage("en"))
}

func (s *GormSuite) TestColumnType() {
	s.Equal("TEXT", multilingual.Text{}.GormDBDataType(s.db, nil))
	s.Equal("TEXT", multilingual.File{}.GormDBDataType(s.db, nil))
	s.Equal("multilingual", multilingual.Text{}.GormDataType())
}

func (s *GormSuite) TestIsMultilingualField() {
	parsed, err := schema.Parse(&article{}, &sync.Map{}, schema.NamingStrategy{})
	s.Require().NoError(err)

	var names []string
	for _, field := range parsed.Fields {
		if multilingual.IsMultilingualField(field) {
			names = append(names, field.DBName)
		}
	}
	s.ElementsMatch([]string{"title", "summary", "manual"}, names)
}
