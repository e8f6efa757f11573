package core

// typeinfer.go implements the Type Inferencer (C3): deterministic, sampled
// evaluation of candidate SQL types with priority tie-breaks.

import (
	"strconv"
	"strings"
	"time"
)

const maxSampleValues = 5000

var bitValues = map[string]bool{
	"0": false, "1": true,
	"true": true, "false": false,
	"sim": true, "não": false,
	"yes": true, "no": false,
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "01/02/2006"}

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
}

type candidateStat struct {
	name     SqlColumnTypeName
	valid    int
	maxInt   int
	maxFrac  int
	maxLen   int
}

// InferColumnType inspects up to 5,000 raw string values for one column and
// returns the SqlColumnType the Schema Service should use.
func InferColumnType(values []string) SqlColumnType {
	if len(values) > maxSampleValues {
		values = values[:maxSampleValues]
	}

	stats := map[SqlColumnTypeName]*candidateStat{
		TypeBit:      {name: TypeBit},
		TypeInt:      {name: TypeInt},
		TypeBigInt:   {name: TypeBigInt},
		TypeDecimal:  {name: TypeDecimal},
		TypeDate:     {name: TypeDate},
		TypeDateTime: {name: TypeDateTime},
		TypeNVarChar: {name: TypeNVarChar},
	}

	nonEmpty := 0
	for _, raw := range values {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		nonEmpty++

		isAnyOther := false

		if _, ok := bitValues[strings.ToLower(v)]; ok {
			stats[TypeBit].valid++
			isAnyOther = true
		}
		if _, ok := parseInt32(v); ok {
			stats[TypeInt].valid++
			isAnyOther = true
		}
		if n, ok := parseInt64(v); ok {
			if n < minInt32 || n > maxInt32 {
				stats[TypeBigInt].valid++
			}
			isAnyOther = true
		}
		if intDigits, fracDigits, ok := parseDecimal(v); ok {
			st := stats[TypeDecimal]
			st.valid++
			if intDigits > st.maxInt {
				st.maxInt = intDigits
			}
			if fracDigits > st.maxFrac {
				st.maxFrac = fracDigits
			}
			isAnyOther = true
		}
		if ok, zeroTime := parseDate(v); ok && zeroTime {
			stats[TypeDate].valid++
			isAnyOther = true
		}
		if parseDatetime(v) {
			stats[TypeDateTime].valid++
			isAnyOther = true
		}

		if !isAnyOther {
			stats[TypeNVarChar].valid++
		}
		if len(v) > stats[TypeNVarChar].maxLen {
			stats[TypeNVarChar].maxLen = len(v)
		}
	}

	if nonEmpty == 0 {
		return SqlColumnType{TypeName: TypeNVarChar, Precision: intPtr(255), Reliable: false}
	}

	thresholds := map[SqlColumnTypeName]float64{
		TypeBit:      0.90,
		TypeInt:      0.80,
		TypeBigInt:   0.80,
		TypeDecimal:  0.80,
		TypeDate:     0.80,
		TypeDateTime: 0.80,
		TypeNVarChar: 0.90,
	}

	type scored struct {
		name        SqlColumnTypeName
		reliability float64
	}
	var qualifying []scored
	for name, st := range stats {
		rel := float64(st.valid) / float64(nonEmpty)
		if rel >= thresholds[name] {
			qualifying = append(qualifying, scored{name: name, reliability: rel})
		}
	}

	// No candidate reaching its own threshold falls straight through to
	// nvarchar, e.g. ["true","0","sim","maybe","1"] lands bit at 4/5=0.80,
	// short of bit's 0.90.
	if len(qualifying) == 0 {
		return SqlColumnType{TypeName: TypeNVarChar, Precision: nvarcharPrecision(stats[TypeNVarChar]), Reliable: false}
	}

	best := qualifying[0]
	for _, c := range qualifying[1:] {
		if c.reliability > best.reliability ||
			(c.reliability == best.reliability && c.name.priority() < best.name.priority()) {
			best = c
		}
	}

	return buildType(best, stats[best.name])
}

func buildType(s struct {
	name        SqlColumnTypeName
	reliability float64
}, st *candidateStat) SqlColumnType {
	result := SqlColumnType{TypeName: s.name, Reliable: true}
	if s.name == TypeDecimal {
		precision := st.maxInt + st.maxFrac
		if precision < 1 {
			precision = 1
		}
		scale := st.maxFrac
		if scale > precision {
			scale = precision
		}
		result.Precision = intPtr(precision)
		result.Scale = intPtr(scale)
	}
	if s.name == TypeNVarChar {
		result.Precision = nvarcharPrecision(st)
	}
	return result
}

func nvarcharPrecision(st *candidateStat) *int {
	if st.maxLen > 255 {
		return nil
	}
	return intPtr(255)
}

const (
	minInt32 = -2147483648
	maxInt32 = 2147483647
)

func parseInt32(v string) (int32, bool) {
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

func parseInt64(v string) (int64, bool) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseDecimal reports whether v parses as a decimal number, and returns the
// number of integer and fractional digits observed.
func parseDecimal(v string) (intDigits, fracDigits int, ok bool) {
	s := v
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return 0, 0, false
	}
	if _, err := strconv.ParseFloat(v, 64); err != nil {
		return 0, 0, false
	}
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return len(s), 0, true
	}
	return len(s[:dot]), len(s[dot+1:]), true
}

// parseDate reports whether v parses exactly as one of the date-only layouts
// with a zero time-of-day component.
func parseDate(v string) (ok bool, zeroTime bool) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return true, t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
		}
	}
	return false, false
}

func parseDatetime(v string) bool {
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

func intPtr(n int) *int {
	return &n
}
