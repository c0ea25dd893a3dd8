package conversion

import (
	"fmt"
	"log"
	"strings"

	"github.com/jaytaylor/html2text"
)

// Format is an output format the converter can produce from exported HTML.
type Format string

const (
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// ParseFormat checks if the provided string is a supported export format.
// An empty string selects HTML.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatHTML:
		return FormatHTML, true
	case FormatText, "txt":
		return FormatText, true
	default:
		return "", false
	}
}

// Extension returns the file extension used for downloads in format f.
func (f Format) Extension() string {
	if f == FormatText {
		return "txt"
	}
	return "html"
}

// ContentType returns the HTTP content type for format f.
func (f Format) ContentType() string {
	if f == FormatText {
		return "text/plain; charset=utf-8"
	}
	return "text/html; charset=utf-8"
}

// Converter produces alternative representations of exported templates.
type Converter struct {
	options html2text.Options
}

// NewConverter creates a Converter. Links are kept in the text output as
// "label ( url )" so call-to-action targets survive in plain-text mail.
func NewConverter() *Converter {
	return &Converter{
		options: html2text.Options{PrettyTables: true},
	}
}

// ToText converts an HTML document into a plain-text alternative.
func (c *Converter) ToText(htmlDoc string) (string, error) {
	text, err := html2text.FromString(htmlDoc, c.options)
	if err != nil {
		log.Printf("ERROR (Converter): Failed to convert HTML to text: %v", err)
		return "", fmt.Errorf("html to text conversion failed: %w", err)
	}
	return text, nil
}

// Convert returns htmlDoc in the requested format.
func (c *Converter) Convert(htmlDoc string, f Format) (string, error) {
	switch f {
	case FormatHTML:
		return htmlDoc, nil
	case FormatText:
		return c.ToText(htmlDoc)
	default:
		return "", fmt.Errorf("unsupported export format: %s", f)
	}
}
