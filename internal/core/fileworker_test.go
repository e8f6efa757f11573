package core

import "testing"

// run and process drive the Repository, Schema Service, and Bulk Loader
// end to end against a live destination database; baseName and
// sliceRowSource are the pure pieces covered here.

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/data/in/customers.csv", "customers.csv"},
		{`C:\data\in\customers.csv`, "customers.csv"},
		{"customers.csv", "customers.csv"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := baseName(tt.in); got != tt.want {
			t.Errorf("baseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSliceRowSource(t *testing.T) {
	src := &sliceRowSource{rows: [][]string{{"a", "1"}, {"b", "2"}}}

	var got [][]string
	var indexes []int
	for src.Next() {
		row, idx := src.Row()
		got = append(got, row)
		indexes = append(indexes, idx)
	}
	if src.Err() != nil {
		t.Fatalf("Err() = %v, want nil", src.Err())
	}
	if len(got) != 2 || indexes[0] != 0 || indexes[1] != 1 {
		t.Errorf("rows = %v, indexes = %v", got, indexes)
	}
}

func TestSliceRowSource_Empty(t *testing.T) {
	src := &sliceRowSource{}
	if src.Next() {
		t.Error("Next() on empty source = true, want false")
	}
}
