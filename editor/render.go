package editor

import (
	"fmt"
	"html/template"
	"io"

	"github.com/pitabwire/multilingual"
	"github.com/pitabwire/multilingual/languages"
)

// Widget is the input rendered for every language.
type Widget int

const (
	// WidgetTextarea renders a textarea per language.
	WidgetTextarea Widget = iota
	// WidgetText renders a single line text input per language.
	WidgetText
	// WidgetFile renders a clearable file input per language.
	WidgetFile
	// WidgetAdminTextarea is WidgetTextarea styled for admin pages.
	WidgetAdminTextarea
	// WidgetAdminText is WidgetText styled for admin pages.
	WidgetAdminText
)

// AdminStylesheet is linked by the admin widgets.
const AdminStylesheet = "/static/multilingual/css/multilingual-admin.css"

func (w Widget) String() string {
	switch w {
	case WidgetTextarea:
		return "multilingual-textarea"
	case WidgetText:
		return "multilingual-text"
	case WidgetFile:
		return "multilingual-file"
	case WidgetAdminTextarea:
		return "multilingual-textarea-admin"
	case WidgetAdminText:
		return "multilingual-text-admin"
	default:
		return fmt.Sprintf("Widget(%d)", int(w))
	}
}

func (w Widget) input() string {
	switch w {
	case WidgetText, WidgetAdminText:
		return "text"
	case WidgetFile:
		return "file"
	default:
		return "textarea"
	}
}

func (w Widget) admin() bool {
	return w == WidgetAdminTextarea || w == WidgetAdminText
}

//nolint:gochecknoglobals //parsed once
var widgetTemplate = template.Must(template.New("multilingual").Parse(
	`{{- if .Admin}}<link href="{{.Stylesheet}}" type="text/css" media="all" rel="stylesheet">{{end -}}
<div class="multilingual-mod {{.Class}}">
{{- range .Inputs}}<div class="input-prepend tab_element tab_link_{{.Code}}"><span class="add-on control-label">{{.Label}}</span>
{{- if eq $.Input "textarea"}}<textarea name="{{.Name}}" id="id_{{.Name}}" cols="40" rows="10"{{with $.MaxLength}} maxlength="{{.}}"{{end}}>{{.Value}}</textarea>
{{- else if eq $.Input "text"}}<input type="text" name="{{.Name}}" id="id_{{.Name}}" value="{{.Value}}"{{with $.MaxLength}} maxlength="{{.}}"{{end}}>
{{- else}}
{{- with .File}}<input type="hidden" name="{{.Input}}-initial" id="{{.Input}}-initial" value="{{.Name}}"> Currently: <a href="{{.URL}}">{{.Name}}</a>
{{- if not .Required}} <span class="clearable-file-input"><input type="checkbox" name="{{.Input}}-clear" id="{{.Input}}-clear_id"><label for="{{.Input}}-clear_id">Clear</label></span>{{end -}}
<br>Change: {{end -}}
<input type="file" name="{{.Name}}" id="id_{{.Name}}">
{{- end}}</div>
{{- end}}</div>`))

type widgetData struct {
	Admin      bool
	Stylesheet string
	Class      string
	Input      string
	MaxLength  int
	Inputs     []inputData
}

type inputData struct {
	Code  string
	Label string
	Name  string
	Value string
	File  *fileData
}

type fileData struct {
	Input    string
	Name     string
	URL      string
	Required bool
}

// Render writes the composite editor called name for value. Text widgets accept whatever
// Split accepts. The file widget accepts a *File, a File or nil and offers to clear the
// languages req does not require.
func (a *Adapter) Render(w io.Writer, name string, value any, req Requirement) error {
	data := widgetData{
		Admin:      a.widget.admin(),
		Stylesheet: AdminStylesheet,
		Class:      a.widget.String(),
		Input:      a.widget.input(),
		MaxLength:  a.maxLength,
	}

	langs := a.Languages()
	data.Inputs = make([]inputData, langs.Len())
	for i, lang := range langs.All() {
		data.Inputs[i] = inputData{Code: lang.Code, Label: lang.Name, Name: InputName(name, i)}
	}

	if data.Input == "file" {
		files, err := filesOf(value)
		if err != nil {
			return err
		}
		required := a.requiredLanguages(req)
		for i, f := range a.SplitFiles(files) {
			if f == nil {
				continue
			}
			data.Inputs[i].File = &fileData{
				Input:    data.Inputs[i].Name,
				Name:     f.Name(),
				URL:      f.URL(),
				Required: required[i],
			}
		}
	} else {
		values, err := a.Split(value)
		if err != nil {
			return err
		}
		for i, v := range values {
			data.Inputs[i].Value = v
		}
	}

	return widgetTemplate.Execute(w, data)
}

func filesOf(value any) (*multilingual.File, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil //nolint:nilnil //no files renders empty inputs
	case *multilingual.File:
		return v, nil
	case multilingual.File:
		return &v, nil
	default:
		return nil, fmt.Errorf("editor: cannot render a %T as files", value)
	}
}

// requiredLanguages reports, per index, whether req makes the language mandatory.
func (a *Adapter) requiredLanguages(req Requirement) []bool {
	langs := a.Languages()
	out := make([]bool, langs.Len())
	if !req.Required {
		return out
	}

	exempt := a.exempt.Union(languages.NewExempt(req.Exempt...))
	for i, lang := range langs.All() {
		if a.policy == PolicyFirstLanguage && i > 0 {
			break
		}
		out[i] = !exempt.Has(lang.Code)
	}
	return out
}
