package artifact

import (
	"fmt"
	"path"
	"strings"

	"github.com/vango-dev/splice/internal/errors"
)

// Codec is the serialization of a table.
type Codec uint8

const (
	CodecJSON Codec = iota
	CodecCBOR
	CodecMsgpack
)

// String returns the codec name.
func (c Codec) String() string {
	switch c {
	case CodecJSON:
		return "json"
	case CodecCBOR:
		return "cbor"
	case CodecMsgpack:
		return "msgpack"
	default:
		return fmt.Sprintf("codec(%d)", c)
	}
}

// Compression is the compression applied on top of the codec.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

// String returns the compression name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("compression(%d)", c)
	}
}

// Format is a codec plus an optional compression.
type Format struct {
	Codec       Codec
	Compression Compression
}

// String returns the format as "codec" or "codec+compression".
func (f Format) String() string {
	if f.Compression == CompressionNone {
		return f.Codec.String()
	}
	return f.Codec.String() + "+" + f.Compression.String()
}

// Ext returns the file extension for f, ie ".cbor.zst".
func (f Format) Ext() string {
	ext := "." + f.Codec.String()
	switch f.Compression {
	case CompressionZstd:
		ext += ".zst"
	case CompressionLZ4:
		ext += ".lz4"
	}
	return ext
}

var codecNames = map[string]Codec{
	"json":    CodecJSON,
	"cbor":    CodecCBOR,
	"msgpack": CodecMsgpack,
	"mp":      CodecMsgpack,
}

var compressionNames = map[string]Compression{
	"":     CompressionNone,
	"none": CompressionNone,
	"zst":  CompressionZstd,
	"zstd": CompressionZstd,
	"lz4":  CompressionLZ4,
}

// ParseFormat parses "codec" or "codec+compression", ie "cbor+zstd".
func ParseFormat(s string) (Format, error) {
	name, comp, _ := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "+")
	codec, ok := codecNames[name]
	if !ok {
		return Format{}, errors.New("E130").WithDetailf("unknown codec %q", name)
	}
	compression, ok := compressionNames[comp]
	if !ok {
		return Format{}, errors.New("E130").WithDetailf("unknown compression %q", comp)
	}
	return Format{Codec: codec, Compression: compression}, nil
}

// DetectFormat derives the format from a file name or object key.
func DetectFormat(name string) (Format, error) {
	base := strings.ToLower(path.Base(strings.ReplaceAll(name, `\`, "/")))

	var f Format
	ext := path.Ext(base)
	if c, ok := compressionNames[strings.TrimPrefix(ext, ".")]; ok && ext != "" {
		f.Compression = c
		base = strings.TrimSuffix(base, ext)
		ext = path.Ext(base)
	}

	codec, ok := codecNames[strings.TrimPrefix(ext, ".")]
	if !ok {
		return Format{}, errors.New("E130").
			WithDetailf("cannot infer the format of %q", name).
			WithSuggestion("Name the table like templates.json, templates.cbor.zst or templates.msgpack.lz4")
	}
	f.Codec = codec
	return f, nil
}
