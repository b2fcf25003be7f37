package datetime

import "testing"

func TestOffsetDate(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		months   int
		expected string
	}{
		{name: "forward within year", date: "2024-01", months: 3, expected: "2024-04"},
		{name: "forward across year", date: "2024-11", months: 3, expected: "2025-02"},
		{name: "full loan term", date: "2024-01", months: 359, expected: "2053-12"},
		{name: "zero offset", date: "2024-06", months: 0, expected: "2024-06"},
		{name: "backward", date: "2024-01", months: -2, expected: "2023-11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OffsetDate(tt.date, DateTimeLayout, tt.months)
			if err != nil {
				t.Fatalf("OffsetDate() unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("OffsetDate(%s, %d) = %s, want %s", tt.date, tt.months, got, tt.expected)
			}
		})
	}

	if _, err := OffsetDate("January 2024", DateTimeLayout, 1); err == nil {
		t.Error("OffsetDate() with a malformed date should fail")
	}
}

func TestDateBeforeDate(t *testing.T) {
	tests := []struct {
		name     string
		first    string
		second   string
		expected bool
	}{
		{name: "strictly before", first: "2024-01", second: "2024-02", expected: true},
		{name: "equal", first: "2024-01", second: "2024-01", expected: false},
		{name: "after", first: "2024-03", second: "2024-02", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DateBeforeDate(tt.first, tt.second)
			if err != nil {
				t.Fatalf("DateBeforeDate() unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("DateBeforeDate(%s, %s) = %v, want %v", tt.first, tt.second, got, tt.expected)
			}
		})
	}

	if _, err := DateBeforeDate("bad", "2024-01"); err == nil {
		t.Error("DateBeforeDate() with a malformed date should fail")
	}
}

func TestMustParseTime(t *testing.T) {
	got := MustParseTime(DateTimeLayout, "2024-06")
	if got.Year() != 2024 || got.Month() != 6 {
		t.Errorf("MustParseTime() = %v", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustParseTime() with a malformed date should panic")
		}
	}()
	MustParseTime(DateTimeLayout, "not a date")
}
