// Package render turns a document.Document into output: a display tree for
// the interactive preview and a standalone HTML string for export.
//
// Every function in this package is pure. The same input always produces the
// same output and the input document is never modified.
package render

import (
	"github.com/coreybb/mailcraft/document"
)

// Kind names a display primitive in the preview tree.
type Kind string

const (
	KindFrame     Kind = "frame"     // viewport-sized outer container
	KindContainer Kind = "container" // generic box
	KindBlock     Kind = "block"     // wrapper around one document block
	KindMarkup    Kind = "markup"    // trusted raw markup, emitted unescaped
	KindImage     Kind = "image"
	KindLink      Kind = "link"
	KindRule      Kind = "rule"
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindSkeleton  Kind = "skeleton" // placeholder bar in the empty state
)

// Preview fallbacks for empty fields.
const (
	PlaceholderImageSrc = "/placeholder.svg?height=120&width=120"
	PlaceholderImageAlt = "Image"
	FallbackButtonHref  = "#"
	FallbackButtonText  = "Click me"
)

// Style is a set of CSS declarations. Map keys serialize in sorted order, so
// the JSON and HTML forms are deterministic.
type Style map[string]string

// Node is one display primitive. Key carries the block id for block wrappers.
type Node struct {
	Kind     Kind              `json:"kind"`
	Key      string            `json:"key,omitempty"`
	Style    Style             `json:"style,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Markup   string            `json:"markup,omitempty"`
	Children []Node            `json:"children,omitempty"`
}

// Preview maps doc to a display tree sized for viewport v. An empty document
// yields an empty-state placeholder; the placeholder is display-only.
func Preview(doc document.Document, v Viewport) Node {
	l := LayoutFor(v)

	frame := Node{
		Kind:  KindFrame,
		Attrs: map[string]string{"data-viewport": string(ParseViewport(string(v)))},
		Style: Style{
			"width":            "100%",
			"max-width":        l.FrameMaxWidth,
			"margin":           "0 auto",
			"background-color": "#ffffff",
			"border-radius":    "16px",
			"overflow":         "hidden",
			"min-height":       "400px",
		},
	}

	if doc.IsEmpty() {
		frame.Children = []Node{emptyState(l)}
		return frame
	}

	blocks := make([]Node, 0, doc.Len())
	for _, b := range doc.Blocks {
		blocks = append(blocks, previewBlock(b, l))
	}

	frame.Children = []Node{{
		Kind:  KindContainer,
		Style: Style{"padding": l.ContentPadding},
		Children: []Node{{
			Kind:     KindContainer,
			Style:    Style{"max-width": l.ContentMaxWidth, "margin": "0 auto"},
			Children: blocks,
		}},
	}}
	return frame
}

func previewBlock(b document.Block, l Layout) Node {
	wrap := func(marginBottom string, child Node) Node {
		return Node{
			Kind:     KindBlock,
			Key:      b.BlockID(),
			Attrs:    map[string]string{"data-block-type": string(b.Type())},
			Style:    Style{"margin-bottom": marginBottom},
			Children: []Node{child},
		}
	}

	switch v := b.(type) {
	case document.TextBlock:
		return wrap("16px", Node{
			Kind:   KindMarkup,
			Markup: v.Content,
			Style: Style{
				"color":       "#1f2937",
				"line-height": "1.625",
				"font-size":   l.TextFontSize,
			},
		})

	case document.ImageBlock:
		return wrap("24px", Node{
			Kind: KindContainer,
			Style: Style{
				"background":      "linear-gradient(to bottom right, #fdba74, #fb923c)",
				"border-radius":   "12px",
				"padding":         l.ImagePadding,
				"display":         "flex",
				"align-items":     "center",
				"justify-content": "center",
			},
			Children: []Node{{
				Kind: KindImage,
				Attrs: map[string]string{
					"src": orDefault(v.Src, PlaceholderImageSrc),
					"alt": orDefault(v.Alt, PlaceholderImageAlt),
				},
				Style: Style{
					"max-width":  "100%",
					"height":     "auto",
					"max-height": l.ImageMaxHeight,
					"object-fit": "contain",
				},
			}},
		})

	case document.ButtonBlock:
		return wrap("24px", Node{
			Kind:  KindLink,
			Attrs: map[string]string{"href": orDefault(v.Href, FallbackButtonHref)},
			Text:  orDefault(v.Text, FallbackButtonText),
			Style: Style{
				"display":          "inline-block",
				"background-color": "#22c55e",
				"color":            "#ffffff",
				"padding":          l.ButtonPadding,
				"font-size":        l.ButtonFontSize,
				"font-weight":      "500",
				"border-radius":    "9999px",
				"text-decoration":  "none",
			},
		})

	default:
		return wrap("24px", Node{
			Kind:  KindRule,
			Style: Style{"height": "1px", "background-color": "#e5e7eb"},
		})
	}
}

func emptyState(l Layout) Node {
	bar := func(width, height, color string) Node {
		return Node{
			Kind: KindSkeleton,
			Style: Style{
				"height":           height,
				"width":            width,
				"background-color": color,
				"border-radius":    "4px",
				"margin":           "0 auto 16px",
			},
		}
	}

	return Node{
		Kind:  KindContainer,
		Attrs: map[string]string{"data-empty": "true"},
		Style: Style{"padding": l.ContentPadding, "text-align": "center"},
		Children: []Node{
			{
				Kind: KindContainer,
				Style: Style{
					"width":            l.EmptyIconSize,
					"height":           l.EmptyIconSize,
					"background-color": "#f3f4f6",
					"border-radius":    "12px",
					"margin":           "0 auto 16px",
				},
			},
			{
				Kind:  KindHeading,
				Text:  "Email Preview",
				Style: Style{"font-size": l.HeadingFontSize, "font-weight": "500", "color": "#111827"},
			},
			{
				Kind:  KindParagraph,
				Text:  "Your email template will appear here",
				Style: Style{"font-size": l.TextFontSize, "color": "#6b7280"},
			},
			{
				Kind:  KindContainer,
				Style: Style{"max-width": l.ContentMaxWidth, "margin": "0 auto"},
				Children: []Node{
					bar("100%", "16px", "#e5e7eb"),
					bar("75%", "16px", "#e5e7eb"),
					bar("50%", "16px", "#e5e7eb"),
				},
			},
		},
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
