package routehandlers_test

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/mailcraft/models"
	"github.com/coreybb/mailcraft/processing"
	"github.com/coreybb/mailcraft/render"
	"github.com/coreybb/mailcraft/webutil"
)

const sampleContent = `{"blocks":[
	{"id":"1","type":"text","content":"<p>Hi</p>"},
	{"id":"2","type":"image","src":"","alt":""},
	{"id":"3","type":"button","text":"Go","href":"https://x.com"},
	{"id":"4","type":"divider"}
]}`

func templatePath(tpl models.Template) string {
	return templatesPath(tpl.UserID) + "/" + tpl.ID
}

func newSampleTemplate(t *testing.T, s *testServer) models.Template {
	t.Helper()
	return s.createTemplate(t, userA, `{"title":"Café Launch","content":`+sampleContent+`}`)
}

func TestExport_HTML(t *testing.T) {
	s := newTestServer(t)
	tpl := newSampleTemplate(t, s)

	rr := s.do(t, http.MethodGet, templatePath(tpl)+"/export", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Equal(t, render.ExportHTML(tpl.Content, tpl.Title), rr.Body.String())
	assert.Equal(t, webutil.ContentTypeHTMLUTF8, rr.Header().Get(webutil.HeaderContentType))
	assert.Equal(t, `attachment; filename="Cafe Launch.html"`, rr.Header().Get(webutil.HeaderContentDisposition))

	hash, err := webutil.GenerateHash(rr.Body.Bytes())
	require.NoError(t, err)
	etag := rr.Header().Get(webutil.HeaderETag)
	assert.Equal(t, `"`+hash+`"`, etag)

	again := s.do(t, http.MethodGet, templatePath(tpl)+"/export", nil)
	assert.Equal(t, rr.Body.String(), again.Body.String(), "export is deterministic")
	assert.Equal(t, etag, again.Header().Get(webutil.HeaderETag))
}

func TestExport_NotModified(t *testing.T) {
	s := newTestServer(t)
	tpl := newSampleTemplate(t, s)

	first := s.do(t, http.MethodGet, templatePath(tpl)+"/export", nil)
	require.Equal(t, http.StatusOK, first.Code)

	req := first.Header().Get(webutil.HeaderETag)
	rr := httpGetWithHeader(t, s, templatePath(tpl)+"/export", webutil.HeaderIfNoneMatch, req)
	assert.Equal(t, http.StatusNotModified, rr.Code)
}

func TestExport_Text(t *testing.T) {
	s := newTestServer(t)
	tpl := newSampleTemplate(t, s)

	rr := s.do(t, http.MethodGet, templatePath(tpl)+"/export?format=text", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Equal(t, webutil.ContentTypeTextPlainUTF8, rr.Header().Get(webutil.HeaderContentType))
	assert.Contains(t, rr.Header().Get(webutil.HeaderContentDisposition), "Cafe Launch.txt")
	assert.Contains(t, rr.Body.String(), "Hi")
	assert.Contains(t, rr.Body.String(), "https://x.com")
	assert.NotContains(t, rr.Body.String(), "<div")
}

func TestExport_Errors(t *testing.T) {
	s := newTestServer(t)
	tpl := newSampleTemplate(t, s)

	rr := s.do(t, http.MethodGet, templatePath(tpl)+"/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodGet, templatesPath(userB)+"/"+tpl.ID+"/export", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestExport_Store(t *testing.T) {
	s := newTestServer(t)
	tpl := newSampleTemplate(t, s)

	rr := s.do(t, http.MethodPost, templatePath(tpl)+"/export/store", nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	stored := decode[processing.StoredExport](t, rr)
	assert.Equal(t, filepath.Join("exports", userA, tpl.ID+".html"), stored.Path)
	assert.Equal(t, "Cafe Launch.html", stored.Filename)

	data, err := os.ReadFile(filepath.Join(s.baseDir, stored.Path))
	require.NoError(t, err)
	assert.Equal(t, render.ExportHTML(tpl.Content, tpl.Title), string(data))

	rr = s.do(t, http.MethodPost, templatesPath(userB)+"/"+tpl.ID+"/export/store", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPreview(t *testing.T) {
	s := newTestServer(t)
	tpl := newSampleTemplate(t, s)

	rr := s.do(t, http.MethodGet, templatePath(tpl)+"/preview?viewport=mobile", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	root := decode[render.Node](t, rr)
	assert.Equal(t, render.KindFrame, root.Kind)
	assert.Equal(t, "384px", root.Style["max-width"])
	assert.Equal(t, "mobile", root.Attrs["data-viewport"])

	rr = s.do(t, http.MethodGet, templatePath(tpl)+"/preview?viewport=smartwatch", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "896px", decode[render.Node](t, rr).Style["max-width"])

	rr = s.do(t, http.MethodGet, templatePath(tpl)+"/preview.html?viewport=tablet", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, webutil.ContentTypeHTMLUTF8, rr.Header().Get(webutil.HeaderContentType))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "<!DOCTYPE html>"))
	assert.Contains(t, rr.Body.String(), "/placeholder.svg?height=120", "preview applies image fallbacks")
}

func TestTestSend(t *testing.T) {
	s := newTestServer(t)
	tpl := newSampleTemplate(t, s)

	rr := s.do(t, http.MethodPost, templatePath(tpl)+"/test-send", `{"to":"reviewer@example.com"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	record := decode[models.TestSend](t, rr)
	assert.Equal(t, models.TestSendStatusSent, record.Status)
	assert.Equal(t, tpl.ID, record.TemplateID)

	require.Len(t, s.provider.sent, 1)
	msg := s.provider.sent[0]
	assert.Equal(t, "reviewer@example.com", msg.To)
	assert.Equal(t, tpl.Title, msg.Subject)
	assert.Equal(t, render.ExportHTML(tpl.Content, tpl.Title), msg.HTMLBody)
	assert.Contains(t, msg.TextBody, "https://x.com")
	require.Len(t, s.recorder.sends, 1)
}

func TestTestSend_Failures(t *testing.T) {
	s := newTestServer(t)
	tpl := newSampleTemplate(t, s)

	rr := s.do(t, http.MethodPost, templatePath(tpl)+"/test-send", `{"to":"not-an-address"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, s.provider.sent)

	s.provider.err = errors.New("inactive recipient")
	rr = s.do(t, http.MethodPost, templatePath(tpl)+"/test-send", `{"to":"reviewer@example.com"}`)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	require.Len(t, s.recorder.sends, 1)
	assert.Equal(t, models.TestSendStatusFailed, s.recorder.sends[0].Status)
}
