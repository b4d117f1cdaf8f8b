package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/multilingual"
	"github.com/pitabwire/multilingual/config"
	"github.com/pitabwire/multilingual/datastore"
)

type CommandSuite struct {
	suite.Suite
	cfg *config.ConfigurationDefault
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, new(CommandSuite))
}

func (s *CommandSuite) SetupTest() {
	s.cfg = &config.ConfigurationDefault{
		Languages:      "en:English,es:Spanish",
		DocumentFormat: "attribute",
		DatabasePrimaryURL: []string{
			"sqlite://" + filepath.Join(s.T().TempDir(), "cli.db"),
		},
		DatabaseMaxOpenConnections: 1,
	}
}

func (s *CommandSuite) run(stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	err := run(context.Background(), s.cfg, args, strings.NewReader(stdin), &out)
	return out.String(), err
}

func (s *CommandSuite) TestLanguages() {
	out, err := s.run("", "languages")
	s.Require().NoError(err)
	s.Equal("en\tEnglish\nes\tSpanish\n", out)
}

func (s *CommandSuite) TestDecode() {
	out, err := s.run(`<languages><language code="es">Hola</language></languages>`, "decode")
	s.Require().NoError(err)
	s.Equal("en\t\nes\tHola\n", out)

	_, err = s.run(`<languages>`, "decode", "-")
	s.Require().ErrorIs(err, multilingual.ErrMalformedDocument)
}

func (s *CommandSuite) TestCanonicalize() {
	legacy := `<languages><language><code>en</code><language_text>Hi</language_text></language></languages>`

	out, err := s.run(legacy, "canonicalize", "--from", "nested")
	s.Require().NoError(err)
	s.Equal(`<languages><language code="en">Hi</language><language code="es"></language></languages>`+"\n", out)
}

func (s *CommandSuite) TestDatabaseCommands() {
	ctx := context.Background()
	db, err := datastore.Open(ctx, s.cfg.DatabasePrimaryURL[0], datastore.WithMaxOpen(1))
	s.Require().NoError(err)
	s.Require().NoError(db.Exec("CREATE TABLE posts (id INTEGER PRIMARY KEY, title TEXT)").Error)
	s.Require().NoError(db.Exec("INSERT INTO posts (id, title) VALUES (1, ?), (2, ?)",
		`<languages><language><code>en</code><language_text>Hi</language_text></language></languages>`,
		`<languages><language><code>en</code><language_text>Hi</language_text></language>`+
			`<language><code>es</code><language_text>Hola</language_text></language></languages>`,
	).Error)
	s.Require().NoError(datastore.Close(db))

	out, err := s.run("", "convert-legacy", "--table", "posts", "--column", "title")
	s.Require().NoError(err)
	s.Equal("converted 2 rows\n", out)

	out, err = s.run("", "missing", "--table", "posts", "--columns", "title", "--lang", "es")
	s.Require().NoError(err)
	s.Equal("1\n", out)

	_, err = s.run("", "missing", "--table", "posts", "--columns", "title", "--lang", "fr")
	s.Require().ErrorIs(err, multilingual.ErrUnknownLanguage)
}

func (s *CommandSuite) TestUsageErrors() {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"explode"}},
		{name: "convert without table", args: []string{"convert-legacy", "--column", "title"}},
		{name: "missing without lang", args: []string{"missing", "--table", "t", "--columns", "c"}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.run("", tc.args...)
			s.Require().ErrorIs(err, errUsage)
		})
	}
}

func (s *CommandSuite) TestVersion() {
	out, err := s.run("", "version")
	s.Require().NoError(err)
	s.Contains(out, "github.com/pitabwire/multilingual")
}
