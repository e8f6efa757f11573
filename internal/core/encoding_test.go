package core

import (
	"bytes"
	"io"
	"testing"
)

func TestDetectEncoding_UTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,age\nAda,30\n")...)
	r, enc, err := DetectEncoding(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DetectEncoding() error = %v", err)
	}
	if enc != "utf-8" {
		t.Errorf("encoding = %q, want %q", enc, "utf-8")
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if bytes.Contains(out, []byte{0xEF, 0xBB, 0xBF}) {
		t.Error("BOM was not stripped")
	}
	if !bytes.Equal(out, []byte("name,age\nAda,30\n")) {
		t.Errorf("output = %q, want %q", out, "name,age\nAda,30\n")
	}
}

func TestDetectEncoding_UTF16LE(t *testing.T) {
	data := []byte{0xFF, 0xFE, 'A', 0, ',', 0, 'B', 0, '\n', 0}
	r, enc, err := DetectEncoding(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DetectEncoding() error = %v", err)
	}
	if enc != "utf-16le" {
		t.Errorf("encoding = %q, want %q", enc, "utf-16le")
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(out) != "A,B\n" {
		t.Errorf("output = %q, want %q", out, "A,B\n")
	}
}

func TestDetectEncoding_PlainUTF8(t *testing.T) {
	data := []byte("name,city\nJos\xc3\xa9,S\xc3\xa3o Paulo\n")
	r, enc, err := DetectEncoding(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DetectEncoding() error = %v", err)
	}
	if enc != "utf-8" {
		t.Errorf("encoding = %q, want %q", enc, "utf-8")
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("output = %q, want %q", out, data)
	}
}

func TestDetectEncoding_Windows1252Fallback(t *testing.T) {
	// 0x93/0x94 are curly quotes in windows-1252 and invalid as a UTF-8 lead byte here.
	data := []byte{'n', 'a', 'm', 'e', '\n', 0x93, 'h', 'i', 0x94, '\n'}
	r, enc, err := DetectEncoding(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DetectEncoding() error = %v", err)
	}
	if enc != "windows-1252" {
		t.Errorf("encoding = %q, want %q", enc, "windows-1252")
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Contains(out, []byte("“hi”")) {
		t.Errorf("output = %q, want curly-quoted hi", out)
	}
}

func TestUtf8RoundTrips(t *testing.T) {
	if !utf8RoundTrips([]byte("hello")) {
		t.Error("plain ASCII should round-trip")
	}
	if utf8RoundTrips([]byte{0xFF, 0xFE, 0x00, 0x01}) {
		t.Error("invalid UTF-8 sequence should not round-trip")
	}
}
