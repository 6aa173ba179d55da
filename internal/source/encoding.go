package source

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// EncodingError reports content that could not be decoded into valid text.
// The affected file is skipped; the run continues with the remaining files.
type EncodingError struct {
	Path   string
	Offset int // byte offset of the first invalid sequence, -1 if unknown
	Cause  error
}

func (e *EncodingError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: invalid text encoding at byte %d", e.Path, e.Offset)
	}
	return fmt.Sprintf("%s: invalid text encoding", e.Path)
}

func (e *EncodingError) Unwrap() error { return e.Cause }

// NormalizeText decodes raw file bytes into normalized UTF-8 content:
// UTF-16 (detected by BOM) is transcoded, a UTF-8 BOM is stripped and
// CRLF terminators are collapsed to \n. Invalid sequences yield an
// *EncodingError.
func NormalizeText(path string, raw []byte) ([]byte, FileFlags, error) {
	var flags FileFlags

	if decoded, ok, err := decodeUTF16(raw); err != nil {
		return nil, 0, &EncodingError{Path: path, Offset: -1, Cause: err}
	} else if ok {
		raw = decoded
		flags |= FileDecodedUTF16 | FileHadBOM
	} else {
		var hadBOM bool
		raw, hadBOM = removeBOM(raw)
		if hadBOM {
			flags |= FileHadBOM
		}
	}

	if off := firstInvalidUTF8(raw); off >= 0 {
		return nil, 0, &EncodingError{Path: path, Offset: off}
	}
	// NUL в тексте — почти всегда бинарник, а не исходник
	if off := bytes.IndexByte(raw, 0); off >= 0 {
		return nil, 0, &EncodingError{Path: path, Offset: off}
	}

	raw, hadCRLF := normalizeCRLF(raw)
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return raw, flags, nil
}

// decodeUTF16 transcodes UTF-16 content into UTF-8 when a UTF-16 BOM is present.
func decodeUTF16(raw []byte) ([]byte, bool, error) {
	if len(raw) < 2 {
		return nil, false, nil
	}
	le := raw[0] == 0xFF && raw[1] == 0xFE
	be := raw[0] == 0xFE && raw[1] == 0xFF
	if !le && !be {
		return nil, false, nil
	}

	endian := unicode.LittleEndian
	if be {
		endian = unicode.BigEndian
	}
	dec := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder()
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return nil, true, err
	}
	return out, true, nil
}

func firstInvalidUTF8(content []byte) int {
	if utf8.Valid(content) {
		return -1
	}
	off := 0
	for len(content) > 0 {
		r, size := utf8.DecodeRune(content)
		if r == utf8.RuneError && size == 1 {
			return off
		}
		content = content[size:]
		off += size
	}
	return -1
}
