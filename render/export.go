package render

import (
	"html"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/coreybb/mailcraft/document"
)

// ExportContentType is the MIME type of ExportHTML output.
const ExportContentType = "text/html"

// ExportHTML renders doc as a standalone HTML document for email clients.
// Styling is inline only. Block fields are written verbatim: text markup is
// trusted, and empty image or button fields are passed through as-is rather
// than replaced with the preview fallbacks. The title is HTML-escaped.
func ExportHTML(doc document.Document, title string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	sb.WriteString("  <meta charset=\"utf-8\">\n")
	sb.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	sb.WriteString("  <title>")
	sb.WriteString(html.EscapeString(title))
	sb.WriteString("</title>\n</head>\n")
	sb.WriteString("<body style=\"margin: 0; padding: 0; background-color: #f9fafb;\">\n")
	sb.WriteString("  <div style=\"max-width: 600px; margin: 0 auto; background-color: white;\">\n    ")
	for _, b := range doc.Blocks {
		writeExportBlock(&sb, b)
	}
	sb.WriteString("\n  </div>\n</body>\n</html>")
	return sb.String()
}

func writeExportBlock(sb *strings.Builder, b document.Block) {
	switch v := b.(type) {
	case document.TextBlock:
		sb.WriteString(`<div style="padding: 16px; font-family: Arial, sans-serif;">`)
		sb.WriteString(v.Content)
		sb.WriteString(`</div>`)
	case document.ImageBlock:
		sb.WriteString(`<div style="padding: 16px; text-align: center;"><img src="`)
		sb.WriteString(v.Src)
		sb.WriteString(`" alt="`)
		sb.WriteString(v.Alt)
		sb.WriteString(`" style="max-width: 100%; height: auto;" /></div>`)
	case document.ButtonBlock:
		sb.WriteString(`<div style="padding: 16px; text-align: center;"><a href="`)
		sb.WriteString(v.Href)
		sb.WriteString(`" style="background-color: #3b82f6; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">`)
		sb.WriteString(v.Text)
		sb.WriteString(`</a></div>`)
	case document.DividerBlock:
		sb.WriteString(`<div style="padding: 16px;"><hr style="border: none; border-top: 1px solid #e5e7eb;" /></div>`)
	}
}

// defaultExportName is used when a title has no usable characters.
const defaultExportName = "template"

// ExportFilename derives a download filename from a template title. Accents
// are folded to ASCII and characters that are unsafe in filenames are
// replaced, so the result can go straight into a Content-Disposition header.
func ExportFilename(title, ext string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}

	var sb strings.Builder
	lastDash := false
	for _, r := range folded {
		switch {
		case r > unicode.MaxASCII || unicode.IsControl(r) || strings.ContainsRune(`\/:*?"<>|`, r):
			if !lastDash {
				sb.WriteRune('-')
				lastDash = true
			}
		default:
			sb.WriteRune(r)
			lastDash = r == '-'
		}
	}

	name := strings.TrimFunc(sb.String(), func(r rune) bool {
		return unicode.IsSpace(r) || r == '.' || r == '-'
	})
	if name == "" {
		name = defaultExportName
	}
	if ext == "" {
		return name
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}
