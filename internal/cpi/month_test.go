package cpi

import (
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Month
		wantErr bool
	}{
		{"2023-01", NewMonth(2023, time.January), false},
		{" 2024-12 ", NewMonth(2024, time.December), false},
		{"2023-13", Month{}, true},
		{"2023/01", Month{}, true},
		{"January 2023", Month{}, true},
		{"", Month{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseMonth(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMonth(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseMonth(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestMonth_Formatting(t *testing.T) {
	t.Parallel()
	m := NewMonth(2023, time.February)
	if m.String() != "2023-02" {
		t.Errorf("String() = %q", m.String())
	}
	if m.Compact() != "202302" {
		t.Errorf("Compact() = %q", m.Compact())
	}
	if m.Name() != "February" {
		t.Errorf("Name() = %q", m.Name())
	}
	if m.YearString() != "2023" {
		t.Errorf("YearString() = %q", m.YearString())
	}
	if (Month{}).String() != "" {
		t.Error("zero month should format as empty string")
	}
}

func TestMonth_Arithmetic(t *testing.T) {
	t.Parallel()
	jan := MustParseMonth("2024-01")
	if got := jan.AddMonths(1); got.String() != "2024-02" {
		t.Errorf("AddMonths(1) = %s", got)
	}
	if got := jan.AddMonths(-1); got.String() != "2023-12" {
		t.Errorf("AddMonths(-1) = %s", got)
	}
	if got := jan.AddMonths(13); got.String() != "2025-02" {
		t.Errorf("AddMonths(13) = %s", got)
	}
	if d := MustParseMonth("2024-02").DaysUntil(MustParseMonth("2024-03")); d != 29 {
		t.Errorf("leap February has %d days, want 29", d)
	}
	if !jan.Before(jan.AddMonths(1)) || jan.After(jan.AddMonths(1)) {
		t.Error("ordering is inconsistent")
	}
	if !jan.Between(jan, jan) {
		t.Error("Between should be inclusive on both ends")
	}
	if jan.Between(jan.AddMonths(1), jan.AddMonths(2)) {
		t.Error("month before range reported as inside")
	}
}

func TestMonth_TextRoundTrip(t *testing.T) {
	t.Parallel()
	var m Month
	if err := m.UnmarshalText([]byte("2022-07")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	b, _ := m.MarshalText()
	if string(b) != "2022-07" {
		t.Errorf("MarshalText = %q", b)
	}
	if err := m.UnmarshalText([]byte("07-2022")); err == nil {
		t.Error("expected error for malformed month")
	}
}
