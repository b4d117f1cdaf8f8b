package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pitabwire/util"
	"gorm.io/gorm"

	"github.com/pitabwire/multilingual"
	"github.com/pitabwire/multilingual/config"
	"github.com/pitabwire/multilingual/datastore"
	"github.com/pitabwire/multilingual/version"
)

const minArgsCommand = 1

var errUsage = errors.New("invalid usage")

func main() {
	cfg, err := config.FromEnv[config.ConfigurationDefault]()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	ctx = util.ContextWithLogger(ctx, newLogger(ctx, &cfg))
	ctx = config.ToContext(ctx, &cfg)

	if err = run(ctx, &cfg, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			util.Log(ctx).WithError(err).Error("command failed")
		}
		os.Exit(1)
	}
}

func newLogger(ctx context.Context, cfg config.ConfigurationLogLevel) *util.LogEntry {
	var opts []util.Option
	if logLevel, err := util.ParseLevel(cfg.LoggingLevel()); err == nil {
		opts = append(opts, util.WithLogLevel(logLevel))
	}
	opts = append(opts,
		util.WithLogTimeFormat(cfg.LoggingTimeFormat()),
		util.WithLogNoColor(!cfg.LoggingColored()),
		util.WithLogOutput(os.Stderr),
	)
	if cfg.LoggingShowStackTrace() {
		opts = append(opts, util.WithLogStackTrace())
	}
	return util.NewLogger(ctx, opts...)
}

func run(ctx context.Context, cfg *config.ConfigurationDefault, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) < minArgsCommand {
		usage(stdout)
		return errUsage
	}

	switch args[0] {
	case "languages":
		return cmdLanguages(cfg, stdout)
	case "decode":
		return cmdDecode(cfg, args[1:], stdin, stdout)
	case "canonicalize":
		return cmdCanonicalize(cfg, args[1:], stdin, stdout)
	case "convert-legacy":
		return cmdConvertLegacy(ctx, cfg, args[1:], stdout)
	case "missing":
		return cmdMissing(ctx, cfg, args[1:], stdout)
	case "version":
		fmt.Fprintln(stdout, version.String())
		return nil
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	default:
		// #nosec G705 -- CLI output is not rendered in an HTML context.
		fmt.Fprintf(stdout, "unknown command: %q\n", args[0])
		usage(stdout)
		return errUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "multilingual <command> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  languages")
	fmt.Fprintln(w, "  decode [--format attribute|nested] [FILE]")
	fmt.Fprintln(w, "  canonicalize [--from attribute|nested] [FILE]")
	fmt.Fprintln(w, "  convert-legacy --table NAME --column NAME [--key id] [--batch 500] [--from nested]")
	fmt.Fprintln(w, "  missing --table NAME --columns a,b --lang CODE [--key id]")
	fmt.Fprintln(w, "  version")
}

func cmdLanguages(cfg *config.ConfigurationDefault, stdout io.Writer) error {
	langs, err := config.LoadLanguages(cfg)
	if err != nil {
		return err
	}
	for _, l := range langs.All() {
		fmt.Fprintf(stdout, "%s\t%s\n", l.Code, l.Name)
	}
	return nil
}

func cmdDecode(cfg *config.ConfigurationDefault, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	format := fs.String("format", cfg.GetDocumentFormat(), "document format")
	if err := fs.Parse(args); err != nil {
		return err
	}

	codec, err := codecFor(cfg, *format)
	if err != nil {
		return err
	}
	doc, err := readDocument(fs.Arg(0), stdin)
	if err != nil {
		return err
	}

	values, err := codec.Decode(doc)
	if err != nil {
		return err
	}
	for _, code := range codec.Languages().Codes() {
		fmt.Fprintf(stdout, "%s\t%s\n", code, values[code])
	}
	return nil
}

func cmdCanonicalize(cfg *config.ConfigurationDefault, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("canonicalize", flag.ContinueOnError)
	from := fs.String("from", cfg.GetDocumentFormat(), "format of the input document")
	if err := fs.Parse(args); err != nil {
		return err
	}

	codec, err := codecFor(cfg, *from)
	if err != nil {
		return err
	}
	doc, err := readDocument(fs.Arg(0), stdin)
	if err != nil {
		return err
	}

	out, err := codec.Convert(doc, multilingual.FormatAttribute)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, out)
	return nil
}

func cmdConvertLegacy(ctx context.Context, cfg *config.ConfigurationDefault, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("convert-legacy", flag.ContinueOnError)
	table := fs.String("table", "", "table holding the documents")
	column := fs.String("column", "", "column holding the documents")
	key := fs.String("key", "id", "unique ordered key column")
	batch := fs.Int("batch", 0, "rows per transaction")
	from := fs.String("from", multilingual.FormatNested.String(), "format of the stored documents")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *table == "" || *column == "" {
		return fmt.Errorf("%w: --table and --column are required", errUsage)
	}

	codec, err := codecFor(cfg, *from)
	if err != nil {
		return err
	}
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = datastore.Close(db)
	}()

	converted, err := datastore.ConvertLegacy(ctx, db, codec, *table, *column, multilingual.FormatAttribute,
		datastore.WithKeyColumn(*key), datastore.WithBatchSize(*batch))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "converted %d rows\n", converted)
	return nil
}

func cmdMissing(ctx context.Context, cfg *config.ConfigurationDefault, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("missing", flag.ContinueOnError)
	table := fs.String("table", "", "table holding the documents")
	columns := fs.String("columns", "", "comma separated multilingual columns")
	lang := fs.String("lang", "", "language code to look for")
	key := fs.String("key", "id", "key column to report")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *table == "" || *columns == "" || *lang == "" {
		return fmt.Errorf("%w: --table, --columns and --lang are required", errUsage)
	}

	langs, err := config.LoadLanguages(cfg)
	if err != nil {
		return err
	}
	if !langs.Contains(*lang) {
		return fmt.Errorf("%w: %s", multilingual.ErrUnknownLanguage, *lang)
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = datastore.Close(db)
	}()

	keys, err := datastore.MissingKeys(ctx, db, *table, *key, *lang, splitList(*columns)...)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintln(stdout, k)
	}
	return nil
}

func codecFor(cfg *config.ConfigurationDefault, format string) (*multilingual.Codec, error) {
	langs, err := config.LoadLanguages(cfg)
	if err != nil {
		return nil, err
	}
	f, err := multilingual.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return multilingual.NewCodec(langs, multilingual.WithFormat(f)), nil
}

func openDatabase(ctx context.Context, cfg *config.ConfigurationDefault) (*gorm.DB, error) {
	urls := cfg.GetDatabasePrimaryHostURL()
	if len(urls) == 0 || strings.TrimSpace(urls[0]) == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	return datastore.Open(ctx, urls[0], datastore.WithConfig(cfg))
}

func readDocument(path string, stdin io.Reader) (string, error) {
	var (
		content []byte
		err     error
	)
	if path == "" || path == "-" {
		content, err = io.ReadAll(stdin)
	} else {
		content, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(content)), nil
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
