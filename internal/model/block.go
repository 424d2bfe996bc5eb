package model

import (
	"encoding/json"
	"fmt"
)

// BlockKind is the CMS `_type` discriminator of a content block.
type BlockKind string

// Known block kinds. Anything else decodes to a RawBlock.
const (
	KindText  BlockKind = "block"
	KindImage BlockKind = "image"
	KindEmbed BlockKind = "youtubeEmbed"
)

// Block is one CMS content block.
type Block interface {
	Kind() BlockKind
}

// TextBlock is a portable-text paragraph.
type TextBlock struct {
	Key   string `json:"_key,omitempty"`
	Style string `json:"style,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Kind implements Block.
func (*TextBlock) Kind() BlockKind { return KindText }

// ImageBlock is an inline photo.
type ImageBlock struct {
	Key     string `json:"_key,omitempty"`
	URL     string `json:"url,omitempty"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// Kind implements Block.
func (*ImageBlock) Kind() BlockKind { return KindImage }

// EmbedBlock references a video, either by id or as a "latest" request.
// PublishedAt set by an editor always wins over a discovered date.
type EmbedBlock struct {
	Key         string `json:"_key,omitempty"`
	VideoID     string `json:"videoId,omitempty"`
	UseLatest   bool   `json:"useLatestVideo,omitempty"`
	Title       string `json:"title,omitempty"`
	Caption     string `json:"caption,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

// Kind implements Block.
func (*EmbedBlock) Kind() BlockKind { return KindEmbed }

// WantsLatest reports whether the block asks for the channel's latest video.
func (e *EmbedBlock) WantsLatest() bool {
	return e.UseLatest || e.VideoID == LatestSentinel
}

// HasCuratedDate reports whether an editor set the publish date by hand.
func (e *EmbedBlock) HasCuratedDate() bool {
	return e.PublishedAt != ""
}

// RawBlock carries a block of a kind this service does not interpret.
// Its JSON is passed through untouched.
type RawBlock struct {
	Type BlockKind
	Raw  json.RawMessage
}

// Kind implements Block.
func (r *RawBlock) Kind() BlockKind { return r.Type }

type blockHeader struct {
	Type BlockKind `json:"_type"`
}

// DecodeBlock decodes one block by its `_type`.
func DecodeBlock(data []byte) (Block, error) {
	var h blockHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode block header: %w", err)
	}

	var b Block
	switch h.Type {
	case KindText:
		b = &TextBlock{}
	case KindImage:
		b = &ImageBlock{}
	case KindEmbed:
		b = &EmbedBlock{}
	default:
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return &RawBlock{Type: h.Type, Raw: raw}, nil
	}
	if err := json.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("decode %s block: %w", h.Type, err)
	}
	return b, nil
}

// DecodeBlocks decodes a JSON array of blocks, preserving order.
func DecodeBlocks(data []byte) ([]Block, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}
	blocks := make([]Block, 0, len(raws))
	for i, raw := range raws {
		b, err := DecodeBlock(raw)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// EncodeBlock encodes a block with its `_type` discriminator.
func EncodeBlock(b Block) (json.RawMessage, error) {
	if raw, ok := b.(*RawBlock); ok {
		return raw.Raw, nil
	}

	body, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode %s block: %w", b.Kind(), err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("encode %s block: %w", b.Kind(), err)
	}
	typ, err := json.Marshal(b.Kind())
	if err != nil {
		return nil, err
	}
	fields["_type"] = typ
	return json.Marshal(fields)
}

// EncodeBlocks encodes blocks as a JSON array, preserving order.
func EncodeBlocks(blocks []Block) ([]byte, error) {
	out := make([]json.RawMessage, 0, len(blocks))
	for i, b := range blocks {
		raw, err := EncodeBlock(b)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}
