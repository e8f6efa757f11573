package core

import "testing"

func TestInferColumnType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   SqlColumnTypeName
	}{
		{"bit column", []string{"1", "0", "1", "1", "0"}, TypeBit},
		{"int column", []string{"1", "2", "3", "42", "-7"}, TypeInt},
		{"bigint column", []string{"9999999999", "10000000000", "20000000000"}, TypeBigInt},
		{"decimal column", []string{"1.5", "2.25", "3.0", "-4.125"}, TypeDecimal},
		{"date column", []string{"2024-01-02", "2024-03-04"}, TypeDate},
		{"datetime column", []string{"2024-01-02 15:04:05", "2024-03-04 10:00:00"}, TypeDateTime},
		{"free text column", []string{"Ada Lovelace", "Alan Turing", "Grace Hopper"}, TypeNVarChar},
		{"mixed, falls back to nvarchar", []string{"hello", "world", "42", "foo"}, TypeNVarChar},
		{"all empty values", []string{"", "  ", ""}, TypeNVarChar},
		{"bit-like majority below threshold falls back to nvarchar", []string{"true", "0", "sim", "maybe", "1"}, TypeNVarChar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferColumnType(tt.values)
			if got.TypeName != tt.want {
				t.Errorf("InferColumnType(%v) = %v, want %v", tt.values, got.TypeName, tt.want)
			}
		})
	}
}

func TestInferColumnType_BitMajorityBelowThresholdIsUnreliable(t *testing.T) {
	got := InferColumnType([]string{"true", "0", "sim", "maybe", "1"})
	if got.TypeName != TypeNVarChar {
		t.Fatalf("TypeName = %v, want TypeNVarChar", got.TypeName)
	}
	if got.Reliable {
		t.Error("Reliable = true, want false")
	}
	if got.Precision == nil || *got.Precision != 255 {
		t.Errorf("Precision = %v, want 255", got.Precision)
	}
}

func TestInferColumnType_DecimalPrecisionAndScale(t *testing.T) {
	got := InferColumnType([]string{"12.5", "1234.125", "9.0"})
	if got.TypeName != TypeDecimal {
		t.Fatalf("TypeName = %v, want TypeDecimal", got.TypeName)
	}
	if got.Precision == nil || got.Scale == nil {
		t.Fatal("expected Precision and Scale to be set for decimal")
	}
	if *got.Scale != 3 {
		t.Errorf("Scale = %d, want 3", *got.Scale)
	}
}

func TestInferColumnType_NVarcharLengthRule(t *testing.T) {
	short := InferColumnType([]string{"hello", "world"})
	if short.Precision == nil || *short.Precision != 255 {
		t.Errorf("short nvarchar Precision = %v, want 255", short.Precision)
	}

	long := make([]string, 0, 1)
	longVal := ""
	for i := 0; i < 300; i++ {
		longVal += "x"
	}
	long = append(long, longVal)
	got := InferColumnType(long)
	if got.Precision != nil {
		t.Errorf("long nvarchar Precision = %v, want nil (max)", got.Precision)
	}
}

func TestInferColumnType_SampleCapped(t *testing.T) {
	values := make([]string, 6000)
	for i := range values {
		values[i] = "1"
	}
	got := InferColumnType(values)
	if got.TypeName != TypeBit {
		t.Errorf("TypeName = %v, want TypeBit", got.TypeName)
	}
}

func TestParseDecimal(t *testing.T) {
	intDigits, fracDigits, ok := parseDecimal("123.45")
	if !ok || intDigits != 3 || fracDigits != 2 {
		t.Errorf("parseDecimal(123.45) = (%d, %d, %v), want (3, 2, true)", intDigits, fracDigits, ok)
	}
	if _, _, ok := parseDecimal("not-a-number"); ok {
		t.Error("parseDecimal(not-a-number) should fail")
	}
}

func TestParseDate(t *testing.T) {
	ok, zeroTime := parseDate("2024-05-06")
	if !ok || !zeroTime {
		t.Errorf("parseDate(2024-05-06) = (%v, %v), want (true, true)", ok, zeroTime)
	}
	if ok, _ := parseDate("not-a-date"); ok {
		t.Error("parseDate(not-a-date) should fail")
	}
}
