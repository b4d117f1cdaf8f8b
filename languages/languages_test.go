package languages_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/multilingual/languages"
)

type LanguagesSuite struct {
	suite.Suite
}

func TestLanguagesSuite(t *testing.T) {
	suite.Run(t, new(LanguagesSuite))
}

func (s *LanguagesSuite) TestNewKeepsOrder() {
	l, err := languages.New(
		languages.Language{Code: "es", Name: "Spanish"},
		languages.Language{Code: "en", Name: "English"},
		languages.Language{Code: "sw", Name: "Swahili"},
	)
	s.Require().NoError(err)

	s.Equal(3, l.Len())
	s.Equal([]string{"es", "en", "sw"}, l.Codes())
	s.Equal([]string{"Spanish", "English", "Swahili"}, l.Names())
	s.Equal(1, l.Index("en"))
	s.Equal(-1, l.Index("fr"))
	s.Equal("es", l.Default().Code)
	s.True(l.Contains("sw"))
	s.False(l.Contains("fr"))
}

func (s *LanguagesSuite) TestNewRejectsInvalidLists() {
	testCases := []struct {
		name  string
		langs []languages.Language
		want  error
	}{
		{name: "empty", langs: nil, want: languages.ErrNoLanguages},
		{name: "blank code", langs: []languages.Language{{Code: " "}}, want: languages.ErrInvalidLanguage},
		{
			name:  "duplicate",
			langs: []languages.Language{{Code: "en"}, {Code: "en"}},
			want:  languages.ErrInvalidLanguage,
		},
		{name: "malformed tag", langs: []languages.Language{{Code: "not a tag"}}, want: languages.ErrInvalidLanguage},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := languages.New(tc.langs...)
			s.Require().ErrorIs(err, tc.want)
		})
	}
}

func (s *LanguagesSuite) TestDisplayNameFallback() {
	l, err := languages.New(languages.Language{Code: "fr"}, languages.Language{Code: "de", Name: "Deutsch"})
	s.Require().NoError(err)

	s.Equal("French", l.Name("fr"))
	s.Equal("Deutsch", l.Name("de"))
	s.Equal("xx", l.Name("xx"))
}

func (s *LanguagesSuite) TestLookupUnknown() {
	l := languages.MustNew(languages.Language{Code: "en", Name: "English"})

	_, err := l.Lookup("es")
	s.Require().ErrorIs(err, languages.ErrUnknownLanguage)

	var unknown *languages.UnknownLanguageError
	s.Require().True(errors.As(err, &unknown))
	s.Equal("es", unknown.Code)
}

func (s *LanguagesSuite) TestResolve() {
	l := languages.MustNew(
		languages.Language{Code: "en", Name: "English"},
		languages.Language{Code: "pt-BR", Name: "Portuguese"},
	)

	testCases := []struct {
		name    string
		prefs   []string
		want    string
		wantErr bool
	}{
		{name: "no preference uses default", prefs: nil, want: "en"},
		{name: "blank preferences use default", prefs: []string{"", " "}, want: "en"},
		{name: "exact code", prefs: []string{"pt-BR"}, want: "pt-BR"},
		{name: "quality values are ignored", prefs: []string{"pt-BR;q=0.9"}, want: "pt-BR"},
		{name: "base language", prefs: []string{"en-US"}, want: "en"},
		{name: "base of configured regional code", prefs: []string{"pt"}, want: "pt-BR"},
		{name: "first matching preference wins", prefs: []string{"fr", "en"}, want: "en"},
		{name: "nothing matches", prefs: []string{"fr", "de"}, wantErr: true},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			lang, err := l.Resolve(tc.prefs)
			if tc.wantErr {
				s.Require().ErrorIs(err, languages.ErrUnknownLanguage)
				return
			}
			s.Require().NoError(err)
			s.Equal(tc.want, lang.Code)
		})
	}
}

func (s *LanguagesSuite) TestExempt() {
	l := languages.MustNew(
		languages.Language{Code: "en", Name: "English"},
		languages.Language{Code: "es", Name: "Spanish"},
		languages.Language{Code: "sw", Name: "Swahili"},
	)

	exempt := languages.NewExempt("es", "")
	s.True(exempt.Has("es"))
	s.False(exempt.Has(""))
	s.Equal([]string{"English", "Swahili"}, l.RequiredNames(exempt))
	s.Equal([]string{"English", "Spanish", "Swahili"}, l.RequiredNames(nil))

	merged := exempt.Union(languages.NewExempt("sw"))
	s.Equal([]string{"English"}, l.RequiredNames(merged))
}

func (s *LanguagesSuite) TestParse() {
	l, err := languages.Parse("en:English, es:Spanish ,fr")
	s.Require().NoError(err)
	s.Equal([]string{"en", "es", "fr"}, l.Codes())
	s.Equal([]string{"English", "Spanish", "French"}, l.Names())

	_, err = languages.Parse(" , ")
	s.Require().ErrorIs(err, languages.ErrNoLanguages)
}

func (s *LanguagesSuite) TestLoadFiles() {
	dir := s.T().TempDir()

	tomlPath := filepath.Join(dir, "languages.toml")
	s.Require().NoError(os.WriteFile(tomlPath, []byte(`
[[languages]]
code = "en"
name = "English"

[[languages]]
code = "sw"
name = "Kiswahili"
`), 0o600))

	yamlPath := filepath.Join(dir, "languages.yaml")
	s.Require().NoError(os.WriteFile(yamlPath, []byte(`
languages:
  - code: es
    name: Español
  - code: en
`), 0o600))

	fromTOML, err := languages.Load(tomlPath)
	s.Require().NoError(err)
	s.Equal([]string{"en", "sw"}, fromTOML.Codes())
	s.Equal("Kiswahili", fromTOML.Name("sw"))

	fromYAML, err := languages.Load(yamlPath)
	s.Require().NoError(err)
	s.Equal([]string{"es", "en"}, fromYAML.Codes())
	s.Equal([]string{"Español", "English"}, fromYAML.Names())

	_, err = languages.Load(filepath.Join(dir, "languages.json"))
	s.Require().Error(err)
}
