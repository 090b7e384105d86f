package batch

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding records how an input was stored so the output can match it.
type Encoding uint8

const (
	EncodingUTF8 Encoding = iota
	EncodingUTF8BOM
	EncodingUTF16LE
	EncodingUTF16BE
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8BOM:
		return "utf-8-bom"
	case EncodingUTF16LE:
		return "utf-16le"
	case EncodingUTF16BE:
		return "utf-16be"
	default:
		return "utf-8"
	}
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// document is a decoded plugin source.
type document struct {
	Path     string
	Text     string
	Encoding Encoding
	Mode     os.FileMode
}

func sniffEncoding(raw []byte) Encoding {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return EncodingUTF8BOM
	case bytes.HasPrefix(raw, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(raw, bomUTF16BE):
		return EncodingUTF16BE
	default:
		return EncodingUTF8
	}
}

// decodeDocument strips a byte order mark and transcodes UTF-16 to UTF-8.
func decodeDocument(path string, raw []byte) (*document, error) {
	enc := sniffEncoding(raw)
	if (enc == EncodingUTF8 || enc == EncodingUTF8BOM) && !utf8.Valid(raw) {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidUTF8)
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: decode %s: %w", path, enc, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidUTF8)
	}
	return &document{Path: path, Text: string(data), Encoding: enc, Mode: 0o644}, nil
}

func readDocument(path string) (*document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("failed to read %s: is a directory", path)
	}
	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := decodeDocument(path, raw)
	if err != nil {
		return nil, err
	}
	doc.Mode = info.Mode().Perm()
	return doc, nil
}

// encodeText converts text back to enc.
func encodeText(text string, enc Encoding) ([]byte, error) {
	var encoder *encoding.Encoder
	switch enc {
	case EncodingUTF8BOM:
		return append(append([]byte(nil), bomUTF8...), text...), nil
	case EncodingUTF16LE:
		encoder = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	case EncodingUTF16BE:
		encoder = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	default:
		return []byte(text), nil
	}
	data, _, err := transform.Bytes(encoder, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", enc, err)
	}
	return data, nil
}

func writeFile(path string, data []byte, mode os.FileMode) error {
	if mode == 0 {
		mode = 0o644
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
