package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/multilingual/languages"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestContextHelpersAndKeyString() {
	ctx := context.Background()
	cfg := ConfigurationDefault{Languages: "en,es"}

	s.Equal("multilingual/config/configurationKey", ctxKeyConfiguration.String())

	ctx = ToContext(ctx, cfg)
	fromCtx := FromContext[ConfigurationDefault](ctx)
	s.Equal("en,es", fromCtx.Languages)

	missing := FromContext[*ConfigurationDefault](context.Background())
	s.Nil(missing)
}

func (s *ConfigSuite) TestFromEnvAndFillEnv() {
	type envCfg struct {
		Value string `env:"MULTILINGUAL_TEST_VALUE"`
	}

	s.T().Setenv("MULTILINGUAL_TEST_VALUE", "abc")

	fromEnv, err := FromEnv[envCfg]()
	s.Require().NoError(err)
	s.Equal("abc", fromEnv.Value)

	var target envCfg
	s.Require().NoError(FillEnv(&target))
	s.Equal("abc", target.Value)
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := FromEnv[ConfigurationDefault]()
	s.Require().NoError(err)

	s.Equal("info", cfg.LoggingLevel())
	s.Equal("en:English", cfg.GetLanguages())
	s.Empty(cfg.GetLanguagesReplacement())
	s.Equal("every", cfg.GetRequiredPolicy())
	s.Equal("attribute", cfg.GetDocumentFormat())
	s.Equal("mem://", cfg.GetStorageURL())
	s.Equal("uploads", cfg.GetStorageUploadPrefix())
	s.Equal(DefaultSlowQueryThreshold, cfg.GetDatabaseSlowQueryLogThreshold())
	s.Equal([]string{"en"}, cfg.GetTranslationsLanguages())
	s.Equal(300*time.Second, cfg.GetMaxConnectionLifeTimeInSeconds())
}

func (s *ConfigSuite) TestFromEnvValues() {
	s.T().Setenv("LANGUAGES", "en:English,es:Spanish,fr")
	s.T().Setenv("LANGUAGES_REPLACEMENT", "es,fr")
	s.T().Setenv("REQUIRED_POLICY", " First ")
	s.T().Setenv("DATABASE_URL", "postgres://a,postgres://b")
	s.T().Setenv("DATABASE_LOG_QUERIES", "true")
	s.T().Setenv("DATABASE_SLOW_QUERY_THRESHOLD", "1s")
	s.T().Setenv("LOG_LEVEL", "debug")

	cfg, err := FromEnv[ConfigurationDefault]()
	s.Require().NoError(err)

	s.Equal([]string{"es", "fr"}, cfg.GetLanguagesReplacement())
	s.Equal("first", cfg.GetRequiredPolicy())
	s.Equal([]string{"postgres://a", "postgres://b"}, cfg.GetDatabasePrimaryHostURL())
	s.True(cfg.CanDatabaseTraceQueries())
	s.Equal(time.Second, cfg.GetDatabaseSlowQueryLogThreshold())
	s.True(cfg.LoggingLevelIsDebug())

	list, err := LoadLanguages(&cfg)
	s.Require().NoError(err)
	s.Equal([]string{"en", "es", "fr"}, list.Codes())
	s.Equal("French", list.Name("fr"))
}

func (s *ConfigSuite) TestSlowQueryThresholdFallback() {
	cfg := &ConfigurationDefault{DatabaseSlowQueryLogThreshold: "soon"}
	s.Equal(DefaultSlowQueryThreshold, cfg.GetDatabaseSlowQueryLogThreshold())
}

func (s *ConfigSuite) TestLoadLanguagesFromFile() {
	path := filepath.Join(s.T().TempDir(), "languages.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(`languages:
  - code: sw
    name: Kiswahili
  - code: en
    name: English
`), 0o600))

	cfg := &ConfigurationDefault{Languages: "fr", LanguagesFile: path}
	list, err := LoadLanguages(cfg)
	s.Require().NoError(err)
	s.Equal([]string{"sw", "en"}, list.Codes())
	s.Equal("sw", list.Default().Code)
}

func (s *ConfigSuite) TestLoadLanguagesEmpty() {
	_, err := LoadLanguages(&ConfigurationDefault{Languages: "  "})
	s.Require().ErrorIs(err, languages.ErrNoLanguages)

	_, err = LoadLanguages(&ConfigurationDefault{LanguagesFile: "missing.toml"})
	s.Require().Error(err)
}
