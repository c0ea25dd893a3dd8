// Package document holds the block model behind an email template: an ordered
// list of typed blocks with stable ids.
//
// A Document is a value. Every mutation returns a new Document and leaves the
// receiver untouched, so callers can detect changes by comparing the old and
// new values. A Document is owned by a single editing session and is not safe
// for concurrent mutation through shared pointers.
package document

// Document is the content of one template. Block order is render order.
type Document struct {
	Blocks []Block
}

// New returns an empty document.
func New() Document {
	return Document{Blocks: []Block{}}
}

// Len returns the number of blocks.
func (d Document) Len() int {
	return len(d.Blocks)
}

// IsEmpty reports whether the document has no blocks.
func (d Document) IsEmpty() bool {
	return len(d.Blocks) == 0
}

// Index returns the position of the block with the given id, or -1.
func (d Document) Index(id string) int {
	for i, b := range d.Blocks {
		if b.BlockID() == id {
			return i
		}
	}
	return -1
}

// Block returns the block with the given id.
func (d Document) Block(id string) (Block, bool) {
	if i := d.Index(id); i >= 0 {
		return d.Blocks[i], true
	}
	return nil, false
}

// IDs returns the block ids in document order.
func (d Document) IDs() []string {
	ids := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		ids[i] = b.BlockID()
	}
	return ids
}

// AddBlock appends a new block of type t with default field values and a
// freshly generated id.
func (d Document) AddBlock(t BlockType) (Document, error) {
	return d.AddBlockWithIDs(t, NewID)
}

// maxIDAttempts bounds how often a generator is asked for an unused id.
const maxIDAttempts = 16

// AddBlockWithIDs is AddBlock with an explicit id generator. Generated ids
// that are empty or collide with an existing block are discarded and drawn
// again, up to maxIDAttempts times.
func (d Document) AddBlockWithIDs(t BlockType, next IDGenerator) (Document, error) {
	if next == nil {
		next = NewID
	}
	id, ok := d.unusedID(next)
	if !ok {
		return d, ErrIDExhausted
	}

	b, err := newBlock(t, id)
	if err != nil {
		return d, err
	}

	blocks := make([]Block, len(d.Blocks), len(d.Blocks)+1)
	copy(blocks, d.Blocks)
	return Document{Blocks: append(blocks, b)}, nil
}

func (d Document) unusedID(next IDGenerator) (string, bool) {
	for i := 0; i < maxIDAttempts; i++ {
		if id := next(); id != "" && d.Index(id) < 0 {
			return id, true
		}
	}
	return "", false
}

// Equal reports whether d and o hold the same blocks in the same order.
func (d Document) Equal(o Document) bool {
	if len(d.Blocks) != len(o.Blocks) {
		return false
	}
	for i := range d.Blocks {
		if d.Blocks[i] != o.Blocks[i] {
			return false
		}
	}
	return true
}

// UpdateBlock merges p into the block with the given id. The variant tag never
// changes. A missing id leaves the document unchanged.
func (d Document) UpdateBlock(id string, p Patch) Document {
	i := d.Index(id)
	if i < 0 {
		return d
	}
	blocks := make([]Block, len(d.Blocks))
	copy(blocks, d.Blocks)
	blocks[i] = blocks[i].apply(p)
	return Document{Blocks: blocks}
}

// DeleteBlock removes the block with the given id. A missing id leaves the
// document unchanged, which makes repeated deletes idempotent.
func (d Document) DeleteBlock(id string) Document {
	i := d.Index(id)
	if i < 0 {
		return d
	}
	blocks := make([]Block, 0, len(d.Blocks)-1)
	blocks = append(blocks, d.Blocks[:i]...)
	blocks = append(blocks, d.Blocks[i+1:]...)
	return Document{Blocks: blocks}
}

// Reorder moves the block at source so that it ends up at destination.
// source indexes the sequence before removal and destination the sequence
// after removal, matching drag-and-drop list semantics. Out-of-range indices
// and source == destination return the receiver unchanged.
func (d Document) Reorder(source, destination int) Document {
	n := len(d.Blocks)
	if source < 0 || source >= n || destination < 0 || destination >= n || source == destination {
		return d
	}

	moved := d.Blocks[source]
	rest := make([]Block, 0, n)
	rest = append(rest, d.Blocks[:source]...)
	rest = append(rest, d.Blocks[source+1:]...)

	blocks := make([]Block, 0, n)
	blocks = append(blocks, rest[:destination]...)
	blocks = append(blocks, moved)
	blocks = append(blocks, rest[destination:]...)
	return Document{Blocks: blocks}
}

// MapText returns a document in which every text block's content has been
// passed through fn. Other blocks are kept as they are.
func (d Document) MapText(fn func(string) string) Document {
	blocks := make([]Block, len(d.Blocks))
	for i, b := range d.Blocks {
		if tb, ok := b.(TextBlock); ok {
			tb.Content = fn(tb.Content)
			b = tb
		}
		blocks[i] = b
	}
	return Document{Blocks: blocks}
}

// MapURLs returns a document in which every image source and button target
// has been passed through fn.
func (d Document) MapURLs(fn func(string) string) Document {
	blocks := make([]Block, len(d.Blocks))
	for i, b := range d.Blocks {
		switch v := b.(type) {
		case ImageBlock:
			v.Src = fn(v.Src)
			b = v
		case ButtonBlock:
			v.Href = fn(v.Href)
			b = v
		}
		blocks[i] = b
	}
	return Document{Blocks: blocks}
}
