package editor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"gocloud.dev/blob/memblob"

	"github.com/pitabwire/multilingual"
	"github.com/pitabwire/multilingual/editor"
	"github.com/pitabwire/multilingual/languages"
	"github.com/pitabwire/multilingual/storage"
)

type RenderSuite struct {
	suite.Suite
	langs *languages.List
	store *storage.BlobStorage
	codec *multilingual.Codec
}

func TestRenderSuite(t *testing.T) {
	suite.Run(t, new(RenderSuite))
}

func (s *RenderSuite) SetupTest() {
	s.langs = languages.MustNew(
		languages.Language{Code: "en", Name: "English"},
		languages.Language{Code: "es", Name: "Spanish"},
	)
	s.store = storage.New(memblob.OpenBucket(nil), storage.WithBaseURL("/media"))
	s.codec = multilingual.NewCodec(s.langs, multilingual.WithStorage(s.store))
}

func (s *RenderSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *RenderSuite) render(adapter *editor.Adapter, name string, value any, req editor.Requirement) string {
	var out strings.Builder
	s.Require().NoError(adapter.Render(&out, name, value, req))
	return out.String()
}

func (s *RenderSuite) TestTextInputs() {
	text, err := multilingual.TextFromMap(s.langs, map[string]string{"en": `Fish & "chips"`, "es": "Hola"})
	s.Require().NoError(err)

	adapter := editor.NewAdapter(s.codec, editor.WithWidget(editor.WidgetText), editor.WithMaxLength(20))
	html := s.render(adapter, "title", text, editor.Requirement{})

	s.Equal(`<div class="multilingual-mod multilingual-text">`+
		`<div class="input-prepend tab_element tab_link_en"><span class="add-on control-label">English</span>`+
		`<input type="text" name="title_0" id="id_title_0" value="Fish &amp; &#34;chips&#34;" maxlength="20"></div>`+
		`<div class="input-prepend tab_element tab_link_es"><span class="add-on control-label">Spanish</span>`+
		`<input type="text" name="title_1" id="id_title_1" value="Hola" maxlength="20"></div>`+
		`</div>`, html)
}

func (s *RenderSuite) TestTextareaFromDocument() {
	adapter := editor.NewAdapter(s.codec)
	html := s.render(adapter, "body",
		`<languages><language code="es">&lt;p&gt;Hola&lt;/p&gt;</language></languages>`, editor.Requirement{})

	s.True(strings.HasPrefix(html, `<div class="multilingual-mod multilingual-textarea">`))
	s.Contains(html, `<textarea name="body_0" id="id_body_0" cols="40" rows="10"></textarea>`)
	s.Contains(html, `<textarea name="body_1" id="id_body_1" cols="40" rows="10">&lt;p&gt;Hola&lt;/p&gt;</textarea>`)
	s.NotContains(html, "maxlength")
	s.NotContains(html, "stylesheet")
}

func (s *RenderSuite) TestAdminWidget() {
	adapter := editor.NewAdapter(s.codec, editor.WithWidget(editor.WidgetAdminText))
	html := s.render(adapter, "title", nil, editor.Requirement{})

	s.True(strings.HasPrefix(html, `<link href="`+editor.AdminStylesheet+`"`))
	s.Contains(html, `<div class="multilingual-mod multilingual-text-admin">`)
	s.Contains(html, `<input type="text" name="title_1" id="id_title_1" value="">`)
}

func (s *RenderSuite) TestFileInputs() {
	manual := multilingual.NewFile(s.langs)
	s.Require().NoError(manual.Set("en", multilingual.NewFieldFile(s.store, "uploads/guide.pdf")))
	s.Require().NoError(manual.Set("es", multilingual.NewFieldFile(s.store, "uploads/guia.pdf")))

	adapter := editor.NewAdapter(s.codec, editor.WithWidget(editor.WidgetFile))
	html := s.render(adapter, "manual", manual, editor.Requirement{Required: true, Exempt: []string{"es"}})

	s.Contains(html, `<div class="multilingual-mod multilingual-file">`)
	s.Contains(html, `<input type="hidden" name="manual_0-initial" id="manual_0-initial" value="uploads/guide.pdf">`)
	s.Contains(html, `<a href="/media/uploads/guide.pdf">uploads/guide.pdf</a>`)
	s.Contains(html, `<input type="file" name="manual_0" id="id_manual_0">`)
	s.NotContains(html, `name="manual_0-clear"`, "required languages cannot be cleared")
	s.Contains(html, `<input type="checkbox" name="manual_1-clear" id="manual_1-clear_id">`)

	empty := s.render(adapter, "manual", nil, editor.Requirement{})
	s.NotContains(empty, "-initial")
	s.Contains(empty, `<input type="file" name="manual_1" id="id_manual_1">`)
}

func (s *RenderSuite) TestRenderErrors() {
	var out strings.Builder

	files := editor.NewAdapter(s.codec, editor.WithWidget(editor.WidgetFile))
	s.Require().Error(files.Render(&out, "manual", "not a file", editor.Requirement{}))

	text := editor.NewAdapter(s.codec)
	s.Require().ErrorIs(text.Render(&out, "title", "<broken", editor.Requirement{}), multilingual.ErrMalformedDocument)
}
