package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCSVSource_Header(t *testing.T) {
	path := writeTempCSV(t, "name,age,city\nAda,30,London\nAlan,40,Manchester\n")
	src := NewCSVSource(path)

	header, err := src.Header()
	if err != nil {
		t.Fatalf("Header() error = %v", err)
	}
	want := []string{"name", "age", "city"}
	if len(header) != len(want) {
		t.Fatalf("Header() = %v, want %v", header, want)
	}
	for i := range want {
		if header[i] != want[i] {
			t.Errorf("Header()[%d] = %q, want %q", i, header[i], want[i])
		}
	}
}

func TestCSVSource_Header_MissingFile(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "missing.csv"))
	if _, err := src.Header(); err == nil {
		t.Fatal("Header() expected error for missing file")
	} else if _, ok := err.(*StructuralError); !ok {
		t.Errorf("Header() error type = %T, want *StructuralError", err)
	}
}

func TestCSVSource_Header_EmptyFile(t *testing.T) {
	path := writeTempCSV(t, "")
	src := NewCSVSource(path)
	if _, err := src.Header(); err == nil {
		t.Fatal("Header() expected error for empty file")
	}
}

func TestCSVSource_Delimiter(t *testing.T) {
	path := writeTempCSV(t, "a;b;c\n1;2;3\n4;5;6\n")
	src := NewCSVSource(path)

	delim, err := src.Delimiter()
	if err != nil {
		t.Fatalf("Delimiter() error = %v", err)
	}
	if delim != ";" {
		t.Errorf("Delimiter() = %q, want %q", delim, ";")
	}
}

func TestCSVSource_Sample(t *testing.T) {
	path := writeTempCSV(t, "name,age\nAda,30\nAlan,40\nGrace,35\n")
	src := NewCSVSource(path)

	rows, err := src.Sample(2)
	if err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Sample(2) returned %d rows, want 2", len(rows))
	}
	if rows[0][0] != "Ada" || rows[1][0] != "Alan" {
		t.Errorf("Sample() = %v, want first two data rows in order", rows)
	}
}

func TestCSVSource_Stream(t *testing.T) {
	path := writeTempCSV(t, "name,age\nAda,30\nAlan,extra,40\nGrace,35\n")
	src := NewCSVSource(path)

	var rows [][]string
	var lineNos []int
	var errs []string
	err := src.Stream(context.Background(),
		func(fields []string, lineNo int) {
			rows = append(rows, fields)
			lineNos = append(lineNos, lineNo)
		},
		func(msg string, lineNo int, path string) {
			errs = append(errs, msg)
		})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Stream() delivered %d good rows, want 2: %v", len(rows), rows)
	}
	if len(errs) != 1 {
		t.Fatalf("Stream() delivered %d errors, want 1: %v", len(errs), errs)
	}
	if lineNos[0] != 2 || lineNos[1] != 4 {
		t.Errorf("Stream() line numbers = %v, want [2 4]", lineNos)
	}
}

func TestCSVSource_Stream_CancelledContext(t *testing.T) {
	path := writeTempCSV(t, "name,age\nAda,30\nAlan,40\n")
	src := NewCSVSource(path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := src.Stream(ctx, func(fields []string, lineNo int) {}, func(msg string, lineNo int, path string) {})
	if err == nil {
		t.Fatal("Stream() expected error for cancelled context")
	}
}

func TestIsBlankLine(t *testing.T) {
	if !isBlankLine("   \t \r") {
		t.Error("isBlankLine(whitespace) = false, want true")
	}
	if isBlankLine("a") {
		t.Error("isBlankLine(a) = true, want false")
	}
}
