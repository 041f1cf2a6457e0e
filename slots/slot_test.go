package slots

import (
	"testing"
	"time"
)

func TestSlotString(t *testing.T) {
	s := Slot{Date: "2025-01-01", Quarter: 37}
	expected := "2025-01-01 09:15"
	if got := s.String(); got != expected {
		t.Errorf("String() expected %q, got %q", expected, got)
	}
}

func TestSlotIsoString(t *testing.T) {
	s := Slot{Date: "2025-01-01", Quarter: 61}
	expected := "2025-01-01T15:15:00Z"
	if got := s.IsoString(); got != expected {
		t.Errorf("IsoString() expected %q, got %q", expected, got)
	}
}

func TestSlotFromTime(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected Slot
	}{
		{
			name:     "exact quarter boundary",
			input:    time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC),
			expected: Slot{Date: "2025-01-01", Quarter: 42},
		},
		{
			name:     "floors within quarter",
			input:    time.Date(2025, 1, 1, 10, 44, 59, 0, time.UTC),
			expected: Slot{Date: "2025-01-01", Quarter: 42},
		},
		{
			name:     "converts to UTC first",
			input:    time.Date(2025, 1, 1, 0, 15, 0, 0, time.FixedZone("CET", 3600)),
			expected: Slot{Date: "2024-12-31", Quarter: 93},
		},
		{
			name:     "zero time",
			input:    time.Time{},
			expected: Slot{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromTime(tt.input); got != tt.expected {
				t.Errorf("FromTime() expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSlotAdd(t *testing.T) {
	tests := []struct {
		name        string
		input       Slot
		addQuarters int
		expected    Slot
	}{
		{
			name:        "add within same day",
			input:       Slot{Date: "2025-01-01", Quarter: 40},
			addQuarters: 2,
			expected:    Slot{Date: "2025-01-01", Quarter: 42},
		},
		{
			name:        "add crossing midnight",
			input:       Slot{Date: "2025-01-01", Quarter: 95},
			addQuarters: 2,
			expected:    Slot{Date: "2025-01-02", Quarter: 1},
		},
		{
			name:        "add negative quarters (subtract)",
			input:       Slot{Date: "2025-01-01", Quarter: 1},
			addQuarters: -2,
			expected:    Slot{Date: "2024-12-31", Quarter: 95},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.Add(tt.addQuarters); got != tt.expected {
				t.Errorf("Add(%d) expected %v, got %v", tt.addQuarters, tt.expected, got)
			}
		})
	}
}

func TestSlotCompare(t *testing.T) {
	a := Slot{Date: "2025-01-01", Quarter: 10}
	b := Slot{Date: "2025-01-01", Quarter: 11}
	c := Slot{Date: "2025-01-02", Quarter: 0}

	if a.Compare(a) != 0 {
		t.Error("expected equal slots to compare 0")
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 {
		t.Error("expected quarter ordering within a day")
	}
	if b.Compare(c) != -1 {
		t.Error("expected date ordering to win over quarter")
	}
}

func TestSlotTimeRoundTrip(t *testing.T) {
	s := Slot{Date: "2025-06-15", Quarter: 55}
	if got := FromTime(s.Time()); got != s {
		t.Errorf("round trip expected %v, got %v", s, got)
	}
}
