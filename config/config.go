package config

import (
	"context"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/pitabwire/multilingual/languages"
)

type contextKey string

func (c contextKey) String() string {
	return "multilingual/config/" + string(c)
}

const (
	ctxKeyConfiguration = contextKey("configurationKey")

	DefaultSlowQueryThreshold = 200 * time.Millisecond
)

// ToContext adds service configuration to the current supplied context.
func ToContext(ctx context.Context, config any) context.Context {
	return context.WithValue(ctx, ctxKeyConfiguration, config)
}

// FromContext extracts service configuration from the supplied context if any exist.
func FromContext[T any](ctx context.Context) T {
	if cfg, ok := ctx.Value(ctxKeyConfiguration).(T); ok {
		return cfg
	}
	var zero T
	return zero
}

// FromEnv convenience method to process configs.
func FromEnv[T any]() (T, error) {
	return env.ParseAs[T]()
}

// FillEnv convenience method to fill a config object with environment data.
func FillEnv(v any) error {
	return env.Parse(v)
}

type ConfigurationDefault struct {
	LogLevel      string `envDefault:"info"                      env:"LOG_LEVEL"       yaml:"log_level"`
	LogFormat     string `envDefault:"info"                      env:"LOG_FORMAT"      yaml:"log_format"`
	LogTimeFormat string `envDefault:"2006-01-02T15:04:05Z07:00" env:"LOG_TIME_FORMAT" yaml:"log_time_format"`
	LogColored    bool   `envDefault:"true"                      env:"LOG_COLORED"     yaml:"log_colored"`

	LogShowStackTrace bool `envDefault:"false" env:"LOG_SHOW_STACK_TRACE" yaml:"log_show_stack_trace"`

	// Languages is a comma separated list of code[:name] entries, e.g. "en:English,es:Spanish".
	Languages            string   `env:"LANGUAGES"             yaml:"languages"             envDefault:"en:English"`
	LanguagesFile        string   `env:"LANGUAGES_FILE"        yaml:"languages_file"`
	LanguagesReplacement []string `env:"LANGUAGES_REPLACEMENT" yaml:"languages_replacement"`
	RequiredPolicy       string   `env:"REQUIRED_POLICY"       yaml:"required_policy"       envDefault:"every"`
	DocumentFormat       string   `env:"DOCUMENT_FORMAT"       yaml:"document_format"       envDefault:"attribute"`

	StorageURL          string `envDefault:"mem://"  env:"STORAGE_URL"           yaml:"storage_url"`
	StorageBaseURL      string `envDefault:"/media"  env:"STORAGE_BASE_URL"      yaml:"storage_base_url"`
	StorageUploadPrefix string `envDefault:"uploads" env:"STORAGE_UPLOAD_PREFIX" yaml:"storage_upload_prefix"`

	DatabasePrimaryURL             []string `env:"DATABASE_URL"             yaml:"database_url"`
	DatabaseSkipDefaultTransaction bool     `env:"SKIP_DEFAULT_TRANSACTION" yaml:"skip_default_transaction" envDefault:"true"`
	DatabasePreferSimpleProtocol   bool     `env:"PREFER_SIMPLE_PROTOCOL"   yaml:"prefer_simple_protocol"   envDefault:"true"`

	DatabaseMaxIdleConnections           int `envDefault:"2"   env:"DATABASE_MAX_IDLE_CONNECTIONS"                yaml:"database_max_idle_connections"`
	DatabaseMaxOpenConnections           int `envDefault:"5"   env:"DATABASE_MAX_OPEN_CONNECTIONS"                yaml:"database_max_open_connections"`
	DatabaseMaxConnectionLifeTimeSeconds int `envDefault:"300" env:"DATABASE_MAX_CONNECTION_LIFE_TIME_IN_SECONDS" yaml:"database_max_connection_life_time_seconds"`

	DatabaseTraceQueries          bool   `envDefault:"false" env:"DATABASE_LOG_QUERIES"          yaml:"database_log_queries"`
	DatabaseSlowQueryLogThreshold string `envDefault:"200ms" env:"DATABASE_SLOW_QUERY_THRESHOLD" yaml:"database_slow_query_threshold"`

	TranslationsFolder    string   `envDefault:"localization" env:"TRANSLATIONS_FOLDER"    yaml:"translations_folder"`
	TranslationsLanguages []string `envDefault:"en"           env:"TRANSLATIONS_LANGUAGES" yaml:"translations_languages"`
}

type ConfigurationLogLevel interface {
	LoggingLevel() string
	LoggingFormat() string
	LoggingTimeFormat() string
	LoggingShowStackTrace() bool
	LoggingColored() bool
	LoggingLevelIsDebug() bool
}

var _ ConfigurationLogLevel = new(ConfigurationDefault)

func (c *ConfigurationDefault) LoggingLevel() string {
	return c.LogLevel
}

func (c *ConfigurationDefault) LoggingTimeFormat() string {
	return c.LogTimeFormat
}

func (c *ConfigurationDefault) LoggingFormat() string {
	return c.LogFormat
}

func (c *ConfigurationDefault) LoggingColored() bool {
	return c.LogColored
}

func (c *ConfigurationDefault) LoggingShowStackTrace() bool {
	return c.LogShowStackTrace
}

func (c *ConfigurationDefault) LoggingLevelIsDebug() bool {
	return c.LoggingLevel() == "debug" || c.LoggingLevel() == "trace"
}

// ConfigurationLanguages describes the language list multilingual fields are stored in.
type ConfigurationLanguages interface {
	GetLanguages() string
	GetLanguagesFile() string
	// GetLanguagesReplacement lists the codes that may stay empty on required fields.
	GetLanguagesReplacement() []string
	GetRequiredPolicy() string
	GetDocumentFormat() string
}

var _ ConfigurationLanguages = new(ConfigurationDefault)

func (c *ConfigurationDefault) GetLanguages() string {
	return c.Languages
}

func (c *ConfigurationDefault) GetLanguagesFile() string {
	return c.LanguagesFile
}

func (c *ConfigurationDefault) GetLanguagesReplacement() []string {
	return c.LanguagesReplacement
}

func (c *ConfigurationDefault) GetRequiredPolicy() string {
	return strings.ToLower(strings.TrimSpace(c.RequiredPolicy))
}

func (c *ConfigurationDefault) GetDocumentFormat() string {
	return c.DocumentFormat
}

type ConfigurationStorage interface {
	GetStorageURL() string
	GetStorageBaseURL() string
	GetStorageUploadPrefix() string
}

var _ ConfigurationStorage = new(ConfigurationDefault)

func (c *ConfigurationDefault) GetStorageURL() string {
	return c.StorageURL
}

func (c *ConfigurationDefault) GetStorageBaseURL() string {
	return c.StorageBaseURL
}

func (c *ConfigurationDefault) GetStorageUploadPrefix() string {
	return c.StorageUploadPrefix
}

type ConfigurationDatabase interface {
	GetDatabasePrimaryHostURL() []string
	SkipDefaultTransaction() bool
	PreferSimpleProtocol() bool
	GetMaxIdleConnections() int
	GetMaxOpenConnections() int
	GetMaxConnectionLifeTimeInSeconds() time.Duration
}

type ConfigurationDatabaseTracing interface {
	CanDatabaseTraceQueries() bool
	GetDatabaseSlowQueryLogThreshold() time.Duration
}

var _ ConfigurationDatabase = new(ConfigurationDefault)

func (c *ConfigurationDefault) GetDatabasePrimaryHostURL() []string {
	return c.DatabasePrimaryURL
}

func (c *ConfigurationDefault) PreferSimpleProtocol() bool {
	return c.DatabasePreferSimpleProtocol
}

func (c *ConfigurationDefault) SkipDefaultTransaction() bool {
	return c.DatabaseSkipDefaultTransaction
}

func (c *ConfigurationDefault) GetMaxIdleConnections() int {
	return c.DatabaseMaxIdleConnections
}

func (c *ConfigurationDefault) GetMaxOpenConnections() int {
	return c.DatabaseMaxOpenConnections
}

func (c *ConfigurationDefault) GetMaxConnectionLifeTimeInSeconds() time.Duration {
	return time.Duration(c.DatabaseMaxConnectionLifeTimeSeconds) * time.Second
}

var _ ConfigurationDatabaseTracing = new(ConfigurationDefault)

func (c *ConfigurationDefault) CanDatabaseTraceQueries() bool {
	return c.DatabaseTraceQueries
}
func (c *ConfigurationDefault) GetDatabaseSlowQueryLogThreshold() time.Duration {
	threshold, err := time.ParseDuration(c.DatabaseSlowQueryLogThreshold)
	if err != nil {
		threshold = DefaultSlowQueryThreshold
	}
	return threshold
}

type ConfigurationLocalization interface {
	GetTranslationsFolder() string
	GetTranslationsLanguages() []string
}

var _ ConfigurationLocalization = new(ConfigurationDefault)

func (c *ConfigurationDefault) GetTranslationsFolder() string {
	return c.TranslationsFolder
}

func (c *ConfigurationDefault) GetTranslationsLanguages() []string {
	return c.TranslationsLanguages
}

// LoadLanguages builds the language list from the languages file when one is set and from
// the inline value otherwise.
func LoadLanguages(cfg ConfigurationLanguages) (*languages.List, error) {
	if path := strings.TrimSpace(cfg.GetLanguagesFile()); path != "" {
		return languages.Load(path)
	}
	if strings.TrimSpace(cfg.GetLanguages()) == "" {
		return nil, languages.ErrNoLanguages
	}
	return languages.Parse(cfg.GetLanguages())
}
