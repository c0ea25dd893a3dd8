package render

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/coreybb/mailcraft/document"
)

// PreviewHTML renders the preview tree for doc at viewport v as a complete
// HTML page.
func PreviewHTML(doc document.Document, v Viewport, title string) (string, error) {
	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	htmlEl := element(atom.Html)
	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
	head.AppendChild(element(atom.Meta,
		html.Attribute{Key: "name", Val: "viewport"},
		html.Attribute{Key: "content", Val: "width=device-width, initial-scale=1"},
	))
	titleEl := element(atom.Title)
	titleEl.AppendChild(&html.Node{Type: html.TextNode, Data: title})
	head.AppendChild(titleEl)
	htmlEl.AppendChild(head)

	body := element(atom.Body, html.Attribute{
		Key: "style",
		Val: "margin: 0; padding: 24px; background: linear-gradient(to bottom right, #dcfce7, #bbf7d0); font-family: Arial, sans-serif;",
	})
	body.AppendChild(ToHTML(Preview(doc, v)))
	htmlEl.AppendChild(body)
	root.AppendChild(htmlEl)

	var sb strings.Builder
	if err := html.Render(&sb, root); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ToHTML converts a display tree into an x/net/html node tree. Markup nodes
// become raw nodes so their content is written verbatim.
func ToHTML(n Node) *html.Node {
	var el *html.Node
	switch n.Kind {
	case KindImage:
		el = element(atom.Img)
	case KindLink:
		el = element(atom.A)
	case KindHeading:
		el = element(atom.H3)
	case KindParagraph:
		el = element(atom.P)
	default:
		el = element(atom.Div)
	}

	if n.Key != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: "data-block-id", Val: n.Key})
	}
	el.Attr = append(el.Attr, sortedAttrs(n.Attrs)...)
	if css := StyleString(n.Style); css != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: "style", Val: css})
	}

	switch {
	case n.Kind == KindMarkup:
		el.AppendChild(&html.Node{Type: html.RawNode, Data: n.Markup})
	case n.Text != "":
		el.AppendChild(&html.Node{Type: html.TextNode, Data: n.Text})
	}

	for _, c := range n.Children {
		el.AppendChild(ToHTML(c))
	}
	return el
}

// StyleString serializes a Style as inline CSS with keys in sorted order.
func StyleString(s Style) string {
	if len(s) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(s[k])
		sb.WriteString(";")
	}
	return sb.String()
}

func sortedAttrs(m map[string]string) []html.Attribute {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]html.Attribute, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, html.Attribute{Key: k, Val: m[k]})
	}
	return attrs
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}
