package core

// csvreader.go implements the CSV Reader (C2): encoding/delimiter detection,
// header read, and streaming row iteration with per-line error isolation.
//
// Quoting/escaping beyond trim is deliberately not interpreted: fields are
// split on the chosen delimiter and trimmed, nothing more. This mirrors the
// source system's behaviour and is documented as an open simplification.

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

const maxLineBufferBytes = 16 * 1024 * 1024

// RowHandler receives one data row's fields and its 1-based line number
// (the header is line 1, so the first data row is line 2).
type RowHandler func(fields []string, lineNo int)

// ErrorHandler receives a per-line error that does not abort the file.
type ErrorHandler func(msg string, lineNo int, path string)

// CSVSource wraps one CSV file on disk, detecting its encoding and delimiter
// lazily on first use and reusing that choice for subsequent passes.
type CSVSource struct {
	Path string

	delimiter string
	header    []string
	detected  bool
}

// NewCSVSource returns a reader bound to path. No file I/O happens until
// Header, Sample, or Stream is called.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Header returns the CSV header, detecting encoding and delimiter on first call.
func (c *CSVSource) Header() ([]string, error) {
	if c.detected {
		return c.header, nil
	}
	if err := c.detect(); err != nil {
		return nil, err
	}
	return c.header, nil
}

// Delimiter returns the detected delimiter, detecting it first if necessary.
func (c *CSVSource) Delimiter() (string, error) {
	if !c.detected {
		if err := c.detect(); err != nil {
			return "", err
		}
	}
	return c.delimiter, nil
}

func (c *CSVSource) detect() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return &StructuralError{Path: c.Path, Message: fmt.Sprintf("cannot open file: %v", err)}
	}
	defer f.Close()

	decoded, _, err := DetectEncoding(f)
	if err != nil {
		return &StructuralError{Path: c.Path, Message: fmt.Sprintf("encoding detection failed: %v", err)}
	}

	scanner := newLineScanner(decoded)

	headerLine, ok := firstNonEmptyLine(scanner)
	if !ok {
		return &StructuralError{Path: c.Path, Message: "empty or missing header"}
	}

	var sampleLines []string
	for len(sampleLines) < 10 && scanner.Scan() {
		sampleLines = append(sampleLines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return &StructuralError{Path: c.Path, Message: fmt.Sprintf("reading sample lines: %v", err)}
	}

	// The delimiter must be detected from data rows, but when the file has no
	// data rows yet we still need a delimiter to split the header; fall back
	// to detecting against the header line itself in that case.
	detectionSample := sampleLines
	if len(detectionSample) == 0 {
		detectionSample = []string{headerLine}
	}
	delim, err := DetectDelimiter(detectionSample)
	if err != nil {
		return &StructuralError{Path: c.Path, Message: "could not detect a consistent delimiter"}
	}

	header := splitTrim(headerLine, delim)
	if len(header) == 0 {
		return &StructuralError{Path: c.Path, Message: "empty column count"}
	}
	for i, h := range header {
		header[i] = CleanCell(h)
	}

	c.delimiter = delim
	c.header = header
	c.detected = true
	return nil
}

// Sample reads up to maxRows data rows (after the header) for type inference.
// It reopens the file independently of Stream so callers may sample and
// stream the same source without interference.
func (c *CSVSource) Sample(maxRows int) ([][]string, error) {
	if _, err := c.Header(); err != nil {
		return nil, err
	}

	f, err := os.Open(c.Path)
	if err != nil {
		return nil, &StructuralError{Path: c.Path, Message: fmt.Sprintf("cannot open file: %v", err)}
	}
	defer f.Close()

	decoded, _, err := DetectEncoding(f)
	if err != nil {
		return nil, &StructuralError{Path: c.Path, Message: fmt.Sprintf("encoding detection failed: %v", err)}
	}
	scanner := newLineScanner(decoded)

	if _, ok := firstNonEmptyLine(scanner); !ok {
		return nil, &StructuralError{Path: c.Path, Message: "empty or missing header"}
	}

	var rows [][]string
	for len(rows) < maxRows && scanner.Scan() {
		line := scanner.Text()
		if isBlankLine(line) {
			continue
		}
		fields := splitTrim(line, c.delimiter)
		for i, f := range fields {
			fields[i] = CleanCell(f)
		}
		rows = append(rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, &StructuralError{Path: c.Path, Message: fmt.Sprintf("reading sample rows: %v", err)}
	}
	return rows, nil
}

// Stream reads the full file and invokes onRow for each well-formed data row
// and onErr for each row whose column count does not match the header. It
// never materialises the whole file in memory. Cancellation is polled before
// each line.
func (c *CSVSource) Stream(ctx context.Context, onRow RowHandler, onErr ErrorHandler) error {
	if _, err := c.Header(); err != nil {
		return err
	}

	f, err := os.Open(c.Path)
	if err != nil {
		return &StructuralError{Path: c.Path, Message: fmt.Sprintf("cannot open file: %v", err)}
	}
	defer f.Close()

	decoded, _, err := DetectEncoding(f)
	if err != nil {
		return &StructuralError{Path: c.Path, Message: fmt.Sprintf("encoding detection failed: %v", err)}
	}
	scanner := newLineScanner(decoded)

	if _, ok := firstNonEmptyLine(scanner); !ok {
		return &StructuralError{Path: c.Path, Message: "empty or missing header"}
	}

	lineNo := 1
	wantCols := len(c.header)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lineNo++
		line := scanner.Text()
		if isBlankLine(line) {
			continue
		}

		fields := splitTrim(line, c.delimiter)
		for i, f := range fields {
			fields[i] = CleanCell(f)
		}
		if len(fields) != wantCols {
			onErr(fmt.Sprintf("expected %d columns, got %d", wantCols, len(fields)), lineNo, c.Path)
			continue
		}
		onRow(fields, lineNo)
	}
	if err := scanner.Err(); err != nil {
		return &StructuralError{Path: c.Path, Message: fmt.Sprintf("reading rows: %v", err)}
	}
	return nil
}

// StructuralError represents an unrecoverable defect in a file's shape:
// missing, unreadable, headerless, or with an undetectable delimiter. It
// aborts processing of that file only.
type StructuralError struct {
	Path    string
	Message string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func isBlankLine(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\r' {
			return false
		}
	}
	return true
}

func firstNonEmptyLine(scanner *bufio.Scanner) (string, bool) {
	for scanner.Scan() {
		line := scanner.Text()
		if !isBlankLine(line) {
			return line, true
		}
	}
	return "", false
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBufferBytes)
	return scanner
}

var errCancelled = errors.New("core: operation cancelled")
