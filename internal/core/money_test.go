package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"8000", 800000, true}, // whole-amount currencies
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1000}
	b := Money{Cents: 1500}
	if a.Add(b).Cents != 2500 {
		t.Fatalf("add = %d", a.Add(b).Cents)
	}
	if a.Sub(b).Cents != -500 {
		t.Fatalf("sub = %d", a.Sub(b).Cents)
	}
	if (Money{Cents: 250}).Units() != 2.5 {
		t.Fatalf("units = %v", (Money{Cents: 250}).Units())
	}
}

func TestProfileDefaults(t *testing.T) {
	p := DefaultProfile()
	if err := p.Validate(); err != nil {
		t.Fatalf("default profile invalid: %v", err)
	}
	if len(p.SelectedPlatforms()) != 3 {
		t.Fatalf("expected 3 selected platforms, got %d", len(p.SelectedPlatforms()))
	}
	p.DriverType = "boat"
	if err := p.Validate(); err == nil {
		t.Fatalf("expected error for bad driver type")
	}
}
