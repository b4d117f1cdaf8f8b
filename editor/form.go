package editor

import (
	"errors"
	"fmt"
	"net/http"
)

const maxUploadMemory = 32 << 20

// InputName is the form name of the input for the language at index.
func InputName(name string, index int) string {
	return fmt.Sprintf("%s_%d", name, index)
}

// ValuesFromForm reads the text inputs of the editor called name, in list order.
func (a *Adapter) ValuesFromForm(r *http.Request, name string) []string {
	values := make([]string, a.Languages().Len())
	for i := range values {
		values[i] = r.FormValue(InputName(name, i))
	}
	return values
}

// FileInputsFromForm reads the file inputs of the editor called name, in list order. Every
// language submits the upload <name>_<i>, the hidden <name>_<i>-initial and the checkbox
// <name>_<i>-clear.
func (a *Adapter) FileInputsFromForm(r *http.Request, name string) ([]FileInput, error) {
	err := r.ParseMultipartForm(maxUploadMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("editor: parse form: %w", err)
	}

	inputs := make([]FileInput, a.Languages().Len())
	for i := range inputs {
		key := InputName(name, i)
		in := FileInput{
			Initial: r.FormValue(key + "-initial"),
			Clear:   r.FormValue(key+"-clear") != "",
		}

		if r.MultipartForm != nil {
			if headers := r.MultipartForm.File[key]; len(headers) > 0 && headers[0].Size > 0 {
				f, openErr := headers[0].Open()
				if openErr != nil {
					closeUploads(inputs[:i])
					return nil, fmt.Errorf("editor: open upload %s: %w", key, openErr)
				}
				in.Upload = f
				in.Filename = headers[0].Filename
			}
		}
		inputs[i] = in
	}
	return inputs, nil
}
