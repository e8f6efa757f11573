package core

import "testing"

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			name:  "comma",
			lines: []string{"a,b,c", "1,2,3", "4,5,6"},
			want:  ",",
		},
		{
			name:  "semicolon",
			lines: []string{"a;b;c", "1;2;3"},
			want:  ";",
		},
		{
			name:  "tab",
			lines: []string{"a\tb\tc", "1\t2\t3"},
			want:  "\t",
		},
		{
			name:  "pipe",
			lines: []string{"a|b|c", "1|2|3"},
			want:  "|",
		},
		{
			name:  "double pipe multi-char",
			lines: []string{"a||b||c", "1||2||3"},
			want:  "||",
		},
		{
			name:  "semicolon preferred over comma when both are consistent",
			lines: []string{"a;b,x;c", "1;2,y;3"},
			want:  ";",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectDelimiter(tt.lines)
			if err != nil {
				t.Fatalf("DetectDelimiter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectDelimiter() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectDelimiter_Undetectable(t *testing.T) {
	_, err := DetectDelimiter([]string{"justoneword", "anotherword"})
	if err != ErrDelimiterUndetectable {
		t.Fatalf("DetectDelimiter() error = %v, want ErrDelimiterUndetectable", err)
	}
}

func TestDetectDelimiter_EmptyInput(t *testing.T) {
	_, err := DetectDelimiter([]string{"", "   "})
	if err != ErrDelimiterUndetectable {
		t.Fatalf("DetectDelimiter() error = %v, want ErrDelimiterUndetectable", err)
	}
}

func TestConsistencyScore(t *testing.T) {
	if got := consistencyScore([]int{3, 3, 3}); got != 1.0 {
		t.Errorf("consistencyScore(all equal) = %v, want 1.0", got)
	}
	if got := consistencyScore(nil); got != 0 {
		t.Errorf("consistencyScore(nil) = %v, want 0", got)
	}
	variable := consistencyScore([]int{1, 5, 9})
	uniform := consistencyScore([]int{5, 5, 5})
	if variable >= uniform {
		t.Errorf("consistencyScore(variable)=%v should be less than consistencyScore(uniform)=%v", variable, uniform)
	}
}

func TestSplitTrim(t *testing.T) {
	got := splitTrim(" a , b ,c", ",")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("splitTrim() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitTrim()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
