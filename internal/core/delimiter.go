package core

// delimiter.go implements the delimiter-detection step of the CSV Reader (C2).

import (
	"errors"
	"strings"
)

// ErrDelimiterUndetectable is returned when no delimiter candidate qualifies.
var ErrDelimiterUndetectable = errors.New("core: could not detect a consistent delimiter")

// multiCharDelimiters are tried first, in order, before the single-character candidates.
var multiCharDelimiters = []string{"||", ";;"}

// singleCharDelimiters lists the single-character candidates in priority order,
// used both to filter qualifying candidates and to break reliability ties.
var singleCharDelimiters = []string{";", ",", "\t", "|", ":", " "}

// DetectDelimiter inspects up to 10 non-blank sample lines (taken after the
// header) and returns the delimiter the reader should use.
func DetectDelimiter(sampleLines []string) (string, error) {
	lines := make([]string, 0, len(sampleLines))
	for _, l := range sampleLines {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return "", ErrDelimiterUndetectable
	}
	if len(lines) > 10 {
		lines = lines[:10]
	}

	for _, d := range multiCharDelimiters {
		if multiCharQualifies(lines, d) {
			return d, nil
		}
	}

	type scored struct {
		delim string
		score float64
	}
	var candidates []scored
	for _, d := range singleCharDelimiters {
		counts := make([]int, 0, len(lines))
		ok := true
		for _, l := range lines {
			fields := splitTrim(l, d)
			if len(fields) < 2 {
				ok = false
				break
			}
			counts = append(counts, len(fields))
		}
		if !ok {
			continue
		}
		candidates = append(candidates, scored{delim: d, score: consistencyScore(counts)})
	}

	if len(candidates) == 0 {
		return "", ErrDelimiterUndetectable
	}

	best := candidates[0]
	bestPriority := priorityOf(best.delim)
	for _, c := range candidates[1:] {
		if c.score > best.score || (c.score == best.score && priorityOf(c.delim) < bestPriority) {
			best = c
			bestPriority = priorityOf(c.delim)
		}
	}
	return best.delim, nil
}

func multiCharQualifies(lines []string, delim string) bool {
	var want = -1
	for _, l := range lines {
		fields := strings.Split(l, delim)
		if want == -1 {
			want = len(fields)
			if want <= 1 {
				return false
			}
			continue
		}
		if len(fields) != want {
			return false
		}
	}
	return want > 1
}

func priorityOf(delim string) int {
	for i, d := range singleCharDelimiters {
		if d == delim {
			return i
		}
	}
	return len(singleCharDelimiters)
}

// consistencyScore is 1 / (1 + variance(counts)).
func consistencyScore(counts []int) float64 {
	if len(counts) == 0 {
		return 0
	}
	var sum int
	for _, c := range counts {
		sum += c
	}
	mean := float64(sum) / float64(len(counts))

	var variance float64
	for _, c := range counts {
		d := float64(c) - mean
		variance += d * d
	}
	variance /= float64(len(counts))

	return 1 / (1 + variance)
}

// splitTrim splits s by delim and trims whitespace from each field.
func splitTrim(s, delim string) []string {
	parts := strings.Split(s, delim)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}
