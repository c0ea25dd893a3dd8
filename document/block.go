package document

import (
	"errors"
	"strings"
)

// BlockType is the variant tag of a Block.
type BlockType string

const (
	BlockTypeText    BlockType = "text"
	BlockTypeImage   BlockType = "image"
	BlockTypeButton  BlockType = "button"
	BlockTypeDivider BlockType = "divider"
)

// Default field values for newly added blocks.
const (
	DefaultTextContent = "Enter your text here..."
	DefaultImageSrc    = "/placeholder.svg?height=200&width=400"
	DefaultImageAlt    = "Image"
	DefaultButtonText  = "Click me"
	DefaultButtonHref  = "#"
)

// ErrUnknownBlockType is returned when a block of an unsupported variant is requested.
var ErrUnknownBlockType = errors.New("unknown block type")

// ErrIDExhausted is returned when an id generator keeps producing empty or
// already used ids.
var ErrIDExhausted = errors.New("no unused block id available")

// ParseBlockType checks if the provided string names a supported variant.
// It returns the typed BlockType and true if valid, otherwise an empty BlockType and false.
func ParseBlockType(s string) (BlockType, bool) {
	bt := BlockType(strings.ToLower(strings.TrimSpace(s)))
	switch bt {
	case BlockTypeText, BlockTypeImage, BlockTypeButton, BlockTypeDivider:
		return bt, true
	default:
		return "", false
	}
}

// Block is one content unit of a Document. The concrete type is one of
// TextBlock, ImageBlock, ButtonBlock or DividerBlock; the set is closed.
type Block interface {
	BlockID() string
	Type() BlockType
	// apply returns a copy with the variant's fields from p merged in.
	apply(p Patch) Block
}

// TextBlock holds author-provided markup. Content is trusted and rendered unescaped.
type TextBlock struct {
	ID      string
	Content string
}

// ImageBlock points at an image by URL.
type ImageBlock struct {
	ID  string
	Src string
	Alt string
}

// ButtonBlock is a call-to-action link.
type ButtonBlock struct {
	ID   string
	Text string
	Href string
}

// DividerBlock is a horizontal rule with no fields of its own.
type DividerBlock struct {
	ID string
}

func (b TextBlock) BlockID() string    { return b.ID }
func (b ImageBlock) BlockID() string   { return b.ID }
func (b ButtonBlock) BlockID() string  { return b.ID }
func (b DividerBlock) BlockID() string { return b.ID }

func (TextBlock) Type() BlockType    { return BlockTypeText }
func (ImageBlock) Type() BlockType   { return BlockTypeImage }
func (ButtonBlock) Type() BlockType  { return BlockTypeButton }
func (DividerBlock) Type() BlockType { return BlockTypeDivider }

// Patch carries a partial field update. Nil fields are left untouched and
// fields that do not belong to the target variant are ignored.
type Patch struct {
	Content *string `json:"content,omitempty"`
	Src     *string `json:"src,omitempty"`
	Alt     *string `json:"alt,omitempty"`
	Text    *string `json:"text,omitempty"`
	Href    *string `json:"href,omitempty"`
}

// IsEmpty reports whether the patch carries no fields at all.
func (p Patch) IsEmpty() bool {
	return p.Content == nil && p.Src == nil && p.Alt == nil && p.Text == nil && p.Href == nil
}

func (b TextBlock) apply(p Patch) Block {
	if p.Content != nil {
		b.Content = *p.Content
	}
	return b
}

func (b ImageBlock) apply(p Patch) Block {
	if p.Src != nil {
		b.Src = *p.Src
	}
	if p.Alt != nil {
		b.Alt = *p.Alt
	}
	return b
}

func (b ButtonBlock) apply(p Patch) Block {
	if p.Text != nil {
		b.Text = *p.Text
	}
	if p.Href != nil {
		b.Href = *p.Href
	}
	return b
}

func (b DividerBlock) apply(Patch) Block { return b }

// newBlock builds a block of type t with the editor's default field values.
func newBlock(t BlockType, id string) (Block, error) {
	switch t {
	case BlockTypeText:
		return TextBlock{ID: id, Content: DefaultTextContent}, nil
	case BlockTypeImage:
		return ImageBlock{ID: id, Src: DefaultImageSrc, Alt: DefaultImageAlt}, nil
	case BlockTypeButton:
		return ButtonBlock{ID: id, Text: DefaultButtonText, Href: DefaultButtonHref}, nil
	case BlockTypeDivider:
		return DividerBlock{ID: id}, nil
	default:
		return nil, ErrUnknownBlockType
	}
}
