package routehandlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/mailcraft/document"
	"github.com/coreybb/mailcraft/models"
)

func blocksPath(tpl models.Template) string {
	return templatesPath(tpl.UserID) + "/" + tpl.ID + "/blocks"
}

func TestBlockOperations(t *testing.T) {
	s := newTestServer(t)
	tpl := s.createTemplate(t, userA, nil)

	rr := s.do(t, http.MethodPost, blocksPath(tpl), `{"type":"text"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = s.do(t, http.MethodPost, blocksPath(tpl), `{"type":"button"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	doc := decode[models.Template](t, rr).Content
	require.Equal(t, []string{"blk-1", "blk-2"}, doc.IDs())
	assert.Equal(t, document.TextBlock{ID: "blk-1", Content: document.DefaultTextContent}, doc.Blocks[0])
	assert.Equal(t, document.ButtonBlock{ID: "blk-2", Text: "Click me", Href: "#"}, doc.Blocks[1])

	rr = s.do(t, http.MethodPatch, blocksPath(tpl)+"/blk-2", `{"text":"Shop now","href":"https://shop.example.com","content":"ignored"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	doc = decode[models.Template](t, rr).Content
	assert.Equal(t, document.ButtonBlock{ID: "blk-2", Text: "Shop now", Href: "https://shop.example.com"}, doc.Blocks[1])

	rr = s.do(t, http.MethodPost, blocksPath(tpl)+"/reorder", `{"source":1,"destination":0}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, []string{"blk-2", "blk-1"}, decode[models.Template](t, rr).Content.IDs())

	rr = s.do(t, http.MethodDelete, blocksPath(tpl)+"/blk-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"blk-2"}, decode[models.Template](t, rr).Content.IDs())

	stored := s.store.templates[tpl.ID].Content
	assert.Equal(t, []string{"blk-2"}, stored.IDs(), "every operation is persisted")
}

func TestBlockOperations_NoOps(t *testing.T) {
	s := newTestServer(t)
	tpl := s.createTemplate(t, userA, `{"content":{"blocks":[{"id":"a","type":"text","content":"A"},{"id":"b","type":"divider"}]}}`)
	want := []string{"a", "b"}
	updatedAt := s.store.templates[tpl.ID].UpdatedAt

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "update missing block", method: http.MethodPatch, path: "/missing", body: `{"content":"x"}`},
		{name: "delete missing block", method: http.MethodDelete, path: "/missing"},
		{name: "cancelled drag", method: http.MethodPost, path: "/reorder", body: `{"source":0,"destination":null}`},
		{name: "destination omitted", method: http.MethodPost, path: "/reorder", body: `{"source":0}`},
		{name: "source out of range", method: http.MethodPost, path: "/reorder", body: `{"source":5,"destination":0}`},
		{name: "negative destination", method: http.MethodPost, path: "/reorder", body: `{"source":0,"destination":-1}`},
		{name: "same position", method: http.MethodPost, path: "/reorder", body: `{"source":1,"destination":1}`},
		{name: "update with current value", method: http.MethodPatch, path: "/a", body: `{"content":"A"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body any
			if tt.body != "" {
				body = tt.body
			}
			rr := s.do(t, tt.method, blocksPath(tpl)+tt.path, body)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, want, decode[models.Template](t, rr).Content.IDs())
			assert.Equal(t, updatedAt, s.store.templates[tpl.ID].UpdatedAt, "a no-op must not touch updated_at")
		})
	}
}

func TestBlockOperations_Validation(t *testing.T) {
	s := newTestServer(t)
	tpl := s.createTemplate(t, userA, nil)

	rr := s.do(t, http.MethodPost, blocksPath(tpl), `{"type":"video"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, blocksPath(tpl)+"/reorder", `{"destination":1}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, templatesPath(userA)+"/33333333-3333-4333-8333-333333333333/blocks", `{"type":"text"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.True(t, s.store.templates[tpl.ID].Content.IsEmpty())
}
