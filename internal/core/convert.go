package core

// convert.go converts raw CSV string values into the Go value the bulk
// loader (C6) hands to the SQL Server driver for one inferred column type.
//
// Conversion failures never reject the row; they degrade to NULL. Empty or
// whitespace-only values always convert to NULL.

import (
	"strconv"
	"strings"
	"time"
)

var bitTrue = map[string]bool{"true": true, "1": true, "sim": true, "yes": true}
var bitFalse = map[string]bool{"false": true, "0": true, "não": true, "no": true}

// ConvertValue converts a raw cell value according to columnType, returning
// nil for NULL.
func ConvertValue(raw string, columnType SqlColumnType) any {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}

	switch columnType.TypeName {
	case TypeBit:
		lower := strings.ToLower(v)
		if bitTrue[lower] {
			return true
		}
		if bitFalse[lower] {
			return false
		}
		return nil
	case TypeInt:
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil
		}
		return int32(n)
	case TypeBigInt:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil
		}
		return n
	case TypeDecimal:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		return n
	case TypeDate, TypeDateTime:
		t := parseFlexibleTimestamp(v)
		if t.IsZero() {
			return nil
		}
		return t
	default: // TypeNVarChar and unknown
		return v
	}
}

// parseFlexibleTimestamp tries every date and datetime layout the Type
// Inferencer recognises and returns the zero Time if none match.
func parseFlexibleTimestamp(v string) time.Time {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// CleanCell removes common CSV artefacts from a cell value: trims
// whitespace, strips an Excel formula prefix (="..."), strips surrounding
// quotes, and strips a leading "netsuite:" prefix some exports carry. The
// CSV Reader applies this to every header and data field before the rest of
// the pipeline ever sees it.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	s = strings.TrimPrefix(s, "netsuite:")

	return s
}
