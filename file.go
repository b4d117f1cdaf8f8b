package multilingual

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/pitabwire/multilingual/languages"
	"github.com/pitabwire/multilingual/localization"
	"github.com/pitabwire/multilingual/storage"
)

// FieldFile is a lazy handle on a stored file. Nothing is read from storage until Open or Size.
type FieldFile struct {
	name    string
	storage storage.Storage
}

// NewFieldFile returns a handle for name in s.
func NewFieldFile(s storage.Storage, name string) *FieldFile {
	return &FieldFile{name: name, storage: s}
}

// Name is the storage relative path kept in documents.
func (f *FieldFile) Name() string {
	return f.name
}

// Storage is where the file lives.
func (f *FieldFile) Storage() storage.Storage {
	return f.storage
}

// Path is the location of the file inside its storage.
func (f *FieldFile) Path() string {
	return f.storage.Path(f.name)
}

// URL is the public address of the file.
func (f *FieldFile) URL() string {
	return f.storage.URL(f.name)
}

// Open reads the file from storage.
func (f *FieldFile) Open(ctx context.Context) (io.ReadCloser, error) {
	return f.storage.Open(ctx, f.name)
}

// Size asks the storage for the file size.
func (f *FieldFile) Size(ctx context.Context) (int64, error) {
	return f.storage.Size(ctx, f.name)
}

func (f *FieldFile) String() string {
	if f == nil {
		return ""
	}
	return f.name
}

// File aggregates one optional file per configured language.
type File struct {
	langs *languages.List
	files []*FieldFile
}

// NewFile returns a File without any file.
func NewFile(langs *languages.List) *File {
	return &File{langs: langs, files: make([]*FieldFile, langs.Len())}
}

// FileFromValues builds a File from handles given in list order, nil meaning no file.
func FileFromValues(langs *languages.List, files []*FieldFile) (*File, error) {
	if len(files) != langs.Len() {
		return nil, fmt.Errorf("multilingual: got %d files for %d languages", len(files), langs.Len())
	}
	return &File{langs: langs, files: slices.Clone(files)}, nil
}

// Languages is the list the File is bound to.
func (f *File) Languages() *languages.List {
	return f.langs
}

// Get returns the file for code, nil when there is none.
func (f *File) Get(code string) (*FieldFile, error) {
	if f.langs == nil {
		return nil, ErrUnboundText
	}
	i := f.langs.Index(code)
	if i < 0 {
		return nil, &UnknownLanguageError{Code: code}
	}
	return f.files[i], nil
}

// Set replaces the file for code; nil clears it.
func (f *File) Set(code string, file *FieldFile) error {
	if f.langs == nil {
		return ErrUnboundText
	}
	i := f.langs.Index(code)
	if i < 0 {
		return &UnknownLanguageError{Code: code}
	}
	f.files[i] = file
	return nil
}

// ForLanguage is the display lookup: unknown codes give nil.
func (f *File) ForLanguage(code string) *FieldFile {
	file, err := f.Get(code)
	if err != nil {
		return nil
	}
	return file
}

// ForContext returns the file for the request language carried by ctx.
func (f *File) ForContext(ctx context.Context) (*FieldFile, error) {
	if f.langs == nil {
		return nil, ErrUnboundText
	}
	lang, err := f.langs.Resolve(localization.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	return f.Get(lang.Code)
}

// Files returns the handles in list order.
func (f *File) Files() []*FieldFile {
	return slices.Clone(f.files)
}

// Names returns the stored names keyed by code, "" for no file.
func (f *File) Names() map[string]string {
	m := make(map[string]string, len(f.files))
	for i, file := range f.files {
		m[f.langs.At(i).Code] = file.String()
	}
	return m
}

// Equal compares the stored names of both files.
func (f *File) Equal(other *File) bool {
	if f == nil || other == nil {
		return f == other
	}
	if len(f.files) != len(other.files) {
		return false
	}
	for i := range f.files {
		if f.files[i].String() != other.files[i].String() {
			return false
		}
	}
	return true
}
