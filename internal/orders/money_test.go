package orders

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseCents(t *testing.T) {
	tests := []struct {
		in      string
		want    Cents
		wantErr bool
	}{
		{"5", 500, false},
		{"45.00", 4500, false},
		{"45.5", 4550, false},
		{"45.05", 4505, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{"-3.25", -325, false},
		{".5", 50, false},
		{"5.999", 0, true},
		{"", 0, true},
		{"abc", 0, true},
		{"1.-5", 0, true},
		{"1.+5", 0, true},
		{"--1", 0, true},
		{"1 2", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCents(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestCentsString(t *testing.T) {
	tests := []struct {
		in   Cents
		want string
	}{
		{500, "5.00"},
		{4505, "45.05"},
		{0, "0.00"},
		{-325, "-3.25"},
		{7, "0.07"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Cents(%d).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCentsJSON(t *testing.T) {
	// totals must survive JSON without drifting
	var it LineItem
	if err := json.Unmarshal([]byte(`{"id":5,"name":"Water","price":5,"quantity":2}`), &it); err != nil {
		t.Fatal(err)
	}
	if it.Price != 500 {
		t.Fatalf("price = %d cents, want 500", it.Price)
	}
	b, err := json.Marshal(it)
	if err != nil {
		t.Fatal(err)
	}
	if want := `"price":5.00`; !strings.Contains(string(b), want) {
		t.Errorf("marshal = %s, want it to contain %s", b, want)
	}
}
