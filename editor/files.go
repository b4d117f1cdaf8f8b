package editor

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/pitabwire/util"
	"github.com/rs/xid"

	"github.com/pitabwire/multilingual"
	"github.com/pitabwire/multilingual/storage"
)

// FileInput is what one language input of a file editor submitted.
type FileInput struct {
	// Upload is the content of a newly uploaded file, nil when nothing was uploaded.
	Upload io.Reader
	// Filename is the client side name of Upload.
	Filename string
	// Initial is the stored name of the file the editor was rendered with.
	Initial string
	// Clear asks to remove the file.
	Clear bool
}

func (in FileInput) present() bool {
	return in.Upload != nil || (!in.Clear && in.Initial != "")
}

// JoinFiles validates inputs, given in list order, saves the uploads and returns the resulting
// File. Nothing is saved when validation fails, and uploads saved by this call are deleted
// again when a later one fails. Uploads implementing io.Closer are closed.
func (a *Adapter) JoinFiles(ctx context.Context, inputs []FileInput, req Requirement) (*multilingual.File, error) {
	defer closeUploads(inputs)

	store := a.codec.Storage()
	if store == nil {
		return nil, multilingual.ErrNoStorage
	}

	langs := a.Languages()
	if len(inputs) > langs.Len() {
		return nil, fmt.Errorf("%w: got %d for %d", ErrTooManyValues, len(inputs), langs.Len())
	}

	padded := make([]FileInput, langs.Len())
	copy(padded, inputs)

	for i, in := range padded {
		if in.Upload != nil && in.Clear {
			return nil, fmt.Errorf("%w: %s", ErrContradiction, langs.At(i).Name)
		}
	}

	err := a.checkRequired(req, func(i int) bool { return !padded[i].present() })
	if err != nil {
		return nil, err
	}

	var saved []string
	file := multilingual.NewFile(langs)
	for i, in := range padded {
		code := langs.At(i).Code

		switch {
		case in.Upload != nil:
			name, saveErr := store.Save(ctx, a.uploadName(in.Filename), in.Upload)
			if saveErr != nil {
				util.Log(ctx).WithError(saveErr).WithField("language", code).Error("could not store upload")
				discardUploads(ctx, store, saved)
				return nil, saveErr
			}
			saved = append(saved, name)
			err = file.Set(code, multilingual.NewFieldFile(store, name))
		case in.Clear || in.Initial == "":
			err = file.Set(code, nil)
		default:
			err = file.Set(code, multilingual.NewFieldFile(store, in.Initial))
		}
		if err != nil {
			discardUploads(ctx, store, saved)
			return nil, err
		}
	}

	return file, nil
}

// JoinFilesDocument is JoinFiles returning the canonical document.
func (a *Adapter) JoinFilesDocument(ctx context.Context, inputs []FileInput, req Requirement) (string, error) {
	file, err := a.JoinFiles(ctx, inputs, req)
	if err != nil {
		return "", err
	}
	return a.codec.EncodeFile(file)
}

func (a *Adapter) uploadName(filename string) string {
	base := path.Base(filename)
	if base == "." || base == "/" {
		base = xid.New().String()
	}
	if a.uploadPrefix == "" {
		return base
	}
	return a.uploadPrefix + "/" + base
}

func discardUploads(ctx context.Context, store storage.Storage, names []string) {
	for _, name := range names {
		if err := store.Delete(ctx, name); err != nil {
			util.Log(ctx).WithError(err).WithField("name", name).Warn("could not delete orphaned upload")
		}
	}
}

func closeUploads(inputs []FileInput) {
	for _, in := range inputs {
		if c, ok := in.Upload.(io.Closer); ok {
			_ = c.Close()
		}
	}
}
