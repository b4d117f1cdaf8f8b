package languages

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Parse builds a list from a comma separated value such as "en:English,es:Spanish".
// The display name is optional: "en,es" uses the English names of the languages.
func Parse(value string) (*List, error) {
	var langs []Language
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		code, name, _ := strings.Cut(entry, ":")
		langs = append(langs, Language{Code: strings.TrimSpace(code), Name: strings.TrimSpace(name)})
	}

	return New(langs...)
}

type fileList struct {
	Languages []Language `toml:"languages" yaml:"languages"`
}

// Load reads a list from a TOML or YAML file shaped like:
//
//	[[languages]]
//	code = "en"
//	name = "English"
func Load(path string) (*List, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("languages: read %s: %w", path, err)
	}

	var fl fileList
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(content, &fl)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &fl)
	default:
		return nil, fmt.Errorf("languages: unsupported file type %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("languages: decode %s: %w", path, err)
	}

	return New(fl.Languages...)
}
