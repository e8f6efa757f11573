package core

// encoding.go implements the encoding-detection step of the CSV Reader (C2).
//
// Detection looks only at the first 4 KiB of a file:
//  1. BOM check: EF BB BF -> UTF-8; FF FE -> UTF-16 LE; FE FF -> UTF-16 BE.
//  2. Else, if the buffer round-trips cleanly through UTF-8 decode->encode, assume UTF-8.
//  3. Otherwise fall back to Windows-1252.

import (
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const sniffLen = 4096

// DetectEncoding inspects up to the first 4 KiB read from r and returns a new
// io.Reader that yields the file's content transcoded to UTF-8, along with
// the name of the encoding it chose ("utf-8", "utf-16le", "utf-16be", "windows-1252").
func DetectEncoding(r io.Reader) (io.Reader, string, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, "", err
	}
	sniff := buf[:n]
	rest := io.MultiReader(bytes.NewReader(sniff), r)

	switch {
	case bytes.HasPrefix(sniff, []byte{0xEF, 0xBB, 0xBF}):
		return io.MultiReader(bytes.NewReader(sniff[3:]), r), "utf-8", nil
	case bytes.HasPrefix(sniff, []byte{0xFF, 0xFE}):
		return transformReader(rest, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)), "utf-16le", nil
	case bytes.HasPrefix(sniff, []byte{0xFE, 0xFF}):
		return transformReader(rest, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)), "utf-16be", nil
	}

	if utf8RoundTrips(sniff) {
		return rest, "utf-8", nil
	}

	return transformReader(rest, charmap.Windows1252), "windows-1252", nil
}

// utf8RoundTrips reports whether data decodes cleanly as UTF-8: every byte
// sequence is valid and re-encoding it reproduces the same bytes.
func utf8RoundTrips(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	return bytes.Equal(data, []byte(string(data)))
}

func transformReader(r io.Reader, enc encoding.Encoding) io.Reader {
	return enc.NewDecoder().Reader(r)
}
