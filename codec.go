package multilingual

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/pitabwire/multilingual/languages"
	"github.com/pitabwire/multilingual/storage"
)

// Format is a version of the XML wire format.
//
// The formats are incompatible and never auto-detected: a malformed legacy document and a
// valid current one can look alike, so readers of legacy data pick FormatNested explicitly.
type Format int

const (
	// FormatAttribute is the canonical format:
	//
	//	<languages><language code="en">Hello</language></languages>
	FormatAttribute Format = iota
	// FormatNested is the legacy format:
	//
	//	<languages><language><code>en</code><language_text>Hello</language_text></language></languages>
	FormatNested
)

func (f Format) String() string {
	switch f {
	case FormatAttribute:
		return "attribute"
	case FormatNested:
		return "nested"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat is the inverse of Format.String.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "attribute", "":
		return FormatAttribute, nil
	case "nested", "legacy":
		return FormatNested, nil
	default:
		return 0, fmt.Errorf("multilingual: unknown document format %q", s)
	}
}

const rootElement = "languages"

type attributeDocument struct {
	XMLName xml.Name
	Records []attributeRecord `xml:"language"`
}

type attributeRecord struct {
	Code string `xml:"code,attr"`
	Text string `xml:",chardata"`
}

type nestedDocument struct {
	XMLName xml.Name
	Records []nestedRecord `xml:"language"`
}

type nestedRecord struct {
	Code string `xml:"code"`
	Text string `xml:"language_text"`
}

// Codec converts between aggregates and their XML documents for one language list.
type Codec struct {
	langs   *languages.List
	format  Format
	storage storage.Storage
}

// Option configures a Codec.
type Option func(*Codec)

// WithFormat selects the wire format read and written by the codec.
func WithFormat(f Format) Option {
	return func(c *Codec) {
		c.format = f
	}
}

// WithStorage sets the storage file documents are resolved against.
func WithStorage(s storage.Storage) Option {
	return func(c *Codec) {
		c.storage = s
	}
}

// NewCodec creates a codec for langs, which must not be nil.
func NewCodec(langs *languages.List, opts ...Option) *Codec {
	if langs == nil {
		panic(languages.ErrNoLanguages)
	}

	c := &Codec{langs: langs, format: FormatAttribute}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Languages is the list the codec orders documents by.
func (c *Codec) Languages() *languages.List {
	return c.langs
}

// Format is the wire format of the codec.
func (c *Codec) Format() Format {
	return c.format
}

// Storage is the storage file documents resolve against, possibly nil.
func (c *Codec) Storage() storage.Storage {
	return c.storage
}

// Decode parses doc and returns a value for every configured code. Records are looked up by
// code: their order does not matter, unknown codes are ignored and missing ones give "".
func (c *Codec) Decode(doc string) (map[string]string, error) {
	records, err := c.records(doc)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, c.langs.Len())
	for _, code := range c.langs.Codes() {
		out[code] = records[code]
	}
	return out, nil
}

// Encode writes one record per configured code, in list order. Codes that are not configured
// are rejected.
func (c *Codec) Encode(values map[string]string) (string, error) {
	for code := range values {
		if !c.langs.Contains(code) {
			return "", &UnknownLanguageError{Code: code}
		}
	}
	return c.encode(orderedValues(c.langs, values))
}

// DecodeText parses doc into a Text.
func (c *Codec) DecodeText(doc string) (*Text, error) {
	records, err := c.records(doc)
	if err != nil {
		return nil, err
	}
	return &Text{langs: c.langs, values: orderedValues(c.langs, records)}, nil
}

// EncodeText writes t as a document. t must be bound to a list with the same codes.
func (c *Codec) EncodeText(t *Text) (string, error) {
	if t == nil || t.langs == nil {
		return c.encode(make([]string, c.langs.Len()))
	}
	if t.langs != c.langs {
		return c.Encode(t.Map())
	}
	return c.encode(t.values)
}

// DecodeFile parses doc into a File whose non-empty paths are lazy handles on the codec storage.
func (c *Codec) DecodeFile(doc string) (*File, error) {
	if c.storage == nil {
		return nil, ErrNoStorage
	}

	records, err := c.records(doc)
	if err != nil {
		return nil, err
	}

	f := NewFile(c.langs)
	for i, name := range orderedValues(c.langs, records) {
		if name != "" {
			f.files[i] = NewFieldFile(c.storage, name)
		}
	}
	return f, nil
}

// EncodeFile writes f as a document of storage relative paths, "" standing for no file.
func (c *Codec) EncodeFile(f *File) (string, error) {
	if f == nil || f.langs == nil {
		return c.encode(make([]string, c.langs.Len()))
	}
	names := f.Names()
	if f.langs != c.langs {
		return c.Encode(names)
	}
	return c.encode(orderedValues(c.langs, names))
}

// Convert re-encodes doc, read in the codec format, into format to.
func (c *Codec) Convert(doc string, to Format) (string, error) {
	records, err := c.records(doc)
	if err != nil {
		return "", err
	}
	return NewCodec(c.langs, WithFormat(to)).encode(orderedValues(c.langs, records))
}

func (c *Codec) records(doc string) (map[string]string, error) {
	if c.format == FormatNested {
		return decodeNested(doc)
	}
	return decodeAttribute(doc)
}

func (c *Codec) encode(values []string) (string, error) {
	for i, code := range c.langs.Codes() {
		if err := CheckValue(code, values[i]); err != nil {
			return "", err
		}
	}
	if c.format == FormatNested {
		return encodeNested(c.langs.Codes(), values)
	}
	return encodeAttribute(c.langs.Codes(), values)
}

func encodeAttribute(codes, values []string) (string, error) {
	doc := attributeDocument{
		XMLName: xml.Name{Local: rootElement},
		Records: make([]attributeRecord, len(codes)),
	}
	for i, code := range codes {
		doc.Records[i] = attributeRecord{Code: code, Text: values[i]}
	}
	return marshal(doc)
}

func encodeNested(codes, values []string) (string, error) {
	doc := nestedDocument{
		XMLName: xml.Name{Local: rootElement},
		Records: make([]nestedRecord, len(codes)),
	}
	for i, code := range codes {
		doc.Records[i] = nestedRecord{Code: code, Text: values[i]}
	}
	return marshal(doc)
}

func marshal(doc any) (string, error) {
	out, err := xml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("multilingual: encode document: %w", err)
	}
	return string(out), nil
}

func decodeAttribute(doc string) (map[string]string, error) {
	var parsed attributeDocument
	if err := parseDocument(doc, &parsed); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(parsed.Records))
	for _, r := range parsed.Records {
		if r.Code != "" {
			out[r.Code] = r.Text
		}
	}
	return out, nil
}

func decodeNested(doc string) (map[string]string, error) {
	var parsed nestedDocument
	if err := parseDocument(doc, &parsed); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(parsed.Records))
	for _, r := range parsed.Records {
		code := strings.TrimSpace(r.Code)
		if code != "" {
			out[code] = r.Text
		}
	}
	return out, nil
}

// charsetReader decodes documents declaring an IANA registered charset other than UTF-8.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

// parseDocument decodes the single root element of doc into v. A blank doc decodes to nothing.
// Anything that is not one well-formed element, apart from surrounding whitespace, comments
// and processing instructions, is a MalformedDocumentError.
func parseDocument(doc string, v any) error {
	if strings.TrimSpace(doc) == "" {
		return nil
	}

	malformed := func(err error) error {
		return &MalformedDocumentError{Document: doc, Err: err}
	}

	d := xml.NewDecoder(strings.NewReader(doc))
	d.CharsetReader = charsetReader
	seenRoot := false
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return malformed(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if seenRoot {
				return malformed(errors.New("more than one root element"))
			}
			seenRoot = true
			if err = d.DecodeElement(v, &t); err != nil {
				return malformed(err)
			}
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return malformed(errors.New("text outside the root element"))
			}
		}
	}

	if !seenRoot {
		return malformed(errors.New("no root element"))
	}
	return nil
}
