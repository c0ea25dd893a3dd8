package document

import (
	"bytes"
	"encoding/json"
)

// wireBlock is the stored shape of a block: a flat object tagged by "type".
type wireBlock struct {
	ID      string    `json:"id"`
	Type    BlockType `json:"type"`
	Content *string   `json:"content,omitempty"`
	Src     *string   `json:"src,omitempty"`
	Alt     *string   `json:"alt,omitempty"`
	Text    *string   `json:"text,omitempty"`
	Href    *string   `json:"href,omitempty"`
}

type wireDocument struct {
	Blocks []wireBlock `json:"blocks"`
}

func toWire(b Block) wireBlock {
	switch v := b.(type) {
	case TextBlock:
		return wireBlock{ID: v.ID, Type: BlockTypeText, Content: &v.Content}
	case ImageBlock:
		return wireBlock{ID: v.ID, Type: BlockTypeImage, Src: &v.Src, Alt: &v.Alt}
	case ButtonBlock:
		return wireBlock{ID: v.ID, Type: BlockTypeButton, Text: &v.Text, Href: &v.Href}
	default:
		return wireBlock{ID: b.BlockID(), Type: b.Type()}
	}
}

func fromWire(w wireBlock) (Block, bool) {
	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	switch w.Type {
	case BlockTypeText:
		return TextBlock{ID: w.ID, Content: str(w.Content)}, true
	case BlockTypeImage:
		return ImageBlock{ID: w.ID, Src: str(w.Src), Alt: str(w.Alt)}, true
	case BlockTypeButton:
		return ButtonBlock{ID: w.ID, Text: str(w.Text), Href: str(w.Href)}, true
	case BlockTypeDivider:
		return DividerBlock{ID: w.ID}, true
	default:
		return nil, false
	}
}

// MarshalJSON encodes the document as {"blocks": [...]}. An empty document
// encodes its blocks as [] rather than null.
func (d Document) MarshalJSON() ([]byte, error) {
	wd := wireDocument{Blocks: make([]wireBlock, 0, len(d.Blocks))}
	for _, b := range d.Blocks {
		wd.Blocks = append(wd.Blocks, toWire(b))
	}
	return json.Marshal(wd)
}

// UnmarshalJSON decodes leniently, see Decode. It never returns an error for
// well-formed JSON.
func (d *Document) UnmarshalJSON(data []byte) error {
	*d = Decode(data)
	return nil
}

// Decode turns stored content into a Document. It is total: a missing or
// null body, a missing "blocks" key, or a "blocks" value that is not an array
// all yield an empty document. Entries that are not objects, or whose "type"
// is not a known variant name, are dropped. Entries with an empty, non-string
// or duplicate id are given a fresh one so the id invariant holds on the
// result. Variant fields that are missing or not strings decode as "".
func Decode(data []byte) Document {
	doc := New()

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return doc
	}

	var envelope struct {
		Blocks json.RawMessage `json:"blocks"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || len(envelope.Blocks) == 0 {
		return doc
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(envelope.Blocks, &entries); err != nil {
		return doc
	}

	seen := make(map[string]struct{}, len(entries))
	for _, raw := range entries {
		var fields rawFields
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			continue
		}
		w := fields.wireBlock()
		if _, dup := seen[w.ID]; w.ID == "" || dup {
			w.ID = NewID()
		}
		b, ok := fromWire(w)
		if !ok {
			continue
		}
		seen[w.ID] = struct{}{}
		doc.Blocks = append(doc.Blocks, b)
	}
	return doc
}

// rawFields is one stored block with each field left undecoded, so a single
// field of the wrong JSON type does not take the rest of the block with it.
type rawFields map[string]json.RawMessage

// str returns the field as a string. Missing, null and non-string values
// yield "".
func (f rawFields) str(key string) string {
	v, ok := f[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

func (f rawFields) wireBlock() wireBlock {
	content, src, alt := f.str("content"), f.str("src"), f.str("alt")
	text, href := f.str("text"), f.str("href")
	return wireBlock{
		ID:      f.str("id"),
		Type:    BlockType(f.str("type")),
		Content: &content,
		Src:     &src,
		Alt:     &alt,
		Text:    &text,
		Href:    &href,
	}
}

// Encode is the inverse of Decode.
func Encode(d Document) ([]byte, error) {
	return d.MarshalJSON()
}
