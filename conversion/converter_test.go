package conversion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/mailcraft/conversion"
	"github.com/coreybb/mailcraft/document"
	"github.com/coreybb/mailcraft/render"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want conversion.Format
		ok   bool
	}{
		{in: "", want: conversion.FormatHTML, ok: true},
		{in: "HTML", want: conversion.FormatHTML, ok: true},
		{in: "text", want: conversion.FormatText, ok: true},
		{in: "txt", want: conversion.FormatText, ok: true},
		{in: "pdf", ok: false},
	}
	for _, tt := range tests {
		got, ok := conversion.ParseFormat(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormat_Metadata(t *testing.T) {
	assert.Equal(t, "html", conversion.FormatHTML.Extension())
	assert.Equal(t, "txt", conversion.FormatText.Extension())
	assert.Equal(t, "text/plain; charset=utf-8", conversion.FormatText.ContentType())
	assert.Equal(t, "text/html; charset=utf-8", conversion.FormatHTML.ContentType())
}

func TestConverter_ToText(t *testing.T) {
	doc := document.Document{Blocks: []document.Block{
		document.TextBlock{ID: "1", Content: "<p>Hello <b>world</b></p>"},
		document.ButtonBlock{ID: "2", Text: "Go", Href: "https://x.com"},
	}}
	htmlDoc := render.ExportHTML(doc, "T")

	text, err := conversion.NewConverter().ToText(htmlDoc)
	require.NoError(t, err)

	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "world")
	assert.Contains(t, text, "Go")
	assert.Contains(t, text, "https://x.com")
	assert.NotContains(t, text, "<p>")
}

func TestConverter_Convert(t *testing.T) {
	c := conversion.NewConverter()

	out, err := c.Convert("<p>x</p>", conversion.FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", out)

	_, err = c.Convert("<p>x</p>", conversion.Format("pdf"))
	assert.Error(t, err)
}
