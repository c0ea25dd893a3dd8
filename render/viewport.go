package render

import "strings"

// Viewport is the preview width class. It controls preview sizing only and is
// never stored with a template.
type Viewport string

const (
	ViewportDesktop Viewport = "desktop"
	ViewportTablet  Viewport = "tablet"
	ViewportMobile  Viewport = "mobile"
)

// ParseViewport maps a query value to a Viewport, falling back to desktop.
func ParseViewport(s string) Viewport {
	switch v := Viewport(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewportDesktop, ViewportTablet, ViewportMobile:
		return v
	default:
		return ViewportDesktop
	}
}

// Layout holds the preview sizing for one viewport.
type Layout struct {
	FrameMaxWidth   string
	ContentPadding  string
	ContentMaxWidth string
	TextFontSize    string
	ImagePadding    string
	ImageMaxHeight  string
	ButtonPadding   string
	ButtonFontSize  string
	HeadingFontSize string
	EmptyIconSize   string
}

var layouts = map[Viewport]Layout{
	ViewportDesktop: {
		FrameMaxWidth:   "896px",
		ContentPadding:  "32px",
		ContentMaxWidth: "448px",
		TextFontSize:    "16px",
		ImagePadding:    "32px",
		ImageMaxHeight:  "128px",
		ButtonPadding:   "12px 32px",
		ButtonFontSize:  "16px",
		HeadingFontSize: "18px",
		EmptyIconSize:   "64px",
	},
	ViewportTablet: {
		FrameMaxWidth:   "672px",
		ContentPadding:  "24px",
		ContentMaxWidth: "384px",
		TextFontSize:    "16px",
		ImagePadding:    "32px",
		ImageMaxHeight:  "128px",
		ButtonPadding:   "12px 32px",
		ButtonFontSize:  "16px",
		HeadingFontSize: "18px",
		EmptyIconSize:   "64px",
	},
	ViewportMobile: {
		FrameMaxWidth:   "384px",
		ContentPadding:  "16px",
		ContentMaxWidth: "100%",
		TextFontSize:    "14px",
		ImagePadding:    "24px",
		ImageMaxHeight:  "96px",
		ButtonPadding:   "8px 24px",
		ButtonFontSize:  "14px",
		HeadingFontSize: "16px",
		EmptyIconSize:   "48px",
	},
}

// LayoutFor returns the sizing for v. Unknown values get the desktop layout.
func LayoutFor(v Viewport) Layout {
	if l, ok := layouts[v]; ok {
		return l
	}
	return layouts[ViewportDesktop]
}
