package artifact

import (
	"fmt"
	"os"

	"github.com/zeebo/blake3"

	"github.com/vango-dev/splice/internal/errors"
	"github.com/vango-dev/splice/pkg/template"
)

// Info describes a loaded table.
type Info struct {
	Source    string
	Format    Format
	Digest    string
	Size      int
	Templates int
}

// Encode serializes t in format f.
func Encode(t *template.Table, f Format) ([]byte, error) {
	data, _, err := encodeDigest(t, f)
	return data, err
}

func encodeDigest(t *template.Table, f Format) ([]byte, string, error) {
	raw, err := marshal(f.Codec, t)
	if err != nil {
		return nil, "", errors.New("E132").WithDetailf("%s encoding", f.Codec).Wrap(err)
	}
	out, err := compress(f.Compression, raw)
	if err != nil {
		return nil, "", errors.New("E132").Wrap(err)
	}
	return out, Digest(raw), nil
}

// Decode deserializes a table from data in format f. The returned digest
// covers the uncompressed encoding.
func Decode(data []byte, f Format) (*template.Table, string, error) {
	raw, err := decompress(f.Compression, data)
	if err != nil {
		return nil, "", errors.New("E131").Wrap(err)
	}

	var t template.Table
	if err := unmarshal(f.Codec, raw, &t); err != nil {
		return nil, "", errors.New("E131").WithDetailf("%s decoding", f.Codec).Wrap(err)
	}
	if t.Version != template.TableVersion {
		return nil, "", errors.New("E134").
			WithDetailf("table version %d, supported version %d", t.Version, template.TableVersion).
			WithSuggestion("Regenerate the template table")
	}
	return &t, Digest(raw), nil
}

// Digest returns the hex BLAKE3 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return fmt.Sprintf("%x", sum[:])
}

// ReadFile loads a table from path, inferring the format from its name.
func ReadFile(path string) (*template.Table, Info, error) {
	f, err := DetectFormat(path)
	if err != nil {
		return nil, Info{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Info{}, errors.New("E133").WithDetailf("reading %s", path).Wrap(err)
	}
	return decodeInfo(path, data, f)
}

// WriteFile writes t to path, inferring the format from its name.
func WriteFile(path string, t *template.Table) (Info, error) {
	f, err := DetectFormat(path)
	if err != nil {
		return Info{}, err
	}
	data, digest, err := encodeDigest(t, f)
	if err != nil {
		return Info{}, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return Info{}, errors.New("E132").WithDetailf("writing %s", path).Wrap(err)
	}
	return Info{
		Source:    path,
		Format:    f,
		Digest:    digest,
		Size:      len(data),
		Templates: len(t.Templates),
	}, nil
}

func decodeInfo(source string, data []byte, f Format) (*template.Table, Info, error) {
	t, digest, err := Decode(data, f)
	if err != nil {
		return nil, Info{}, fmt.Errorf("%s: %w", source, err)
	}
	return t, Info{
		Source:    source,
		Format:    f,
		Digest:    digest,
		Size:      len(data),
		Templates: len(t.Templates),
	}, nil
}
