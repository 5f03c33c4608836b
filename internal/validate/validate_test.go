package validate_test

import (
	"strings"
	"testing"

	"telegram-merchant-pay/internal/validate"
)

func TestAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1", "1", true},
		{"50000", "50000", true},
		{"250", "250", true},
		{"99.99", "99.99", true},
		{" 250 ", "250", true},
		{"0.99", "", false},
		{"50000.01", "", false},
		{"0", "", false},
		{"-5", "", false},
		{"1.999", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := validate.Amount(tc.in)
			if ok != tc.ok {
				t.Fatalf("Amount(%q): ok=%v, want %v", tc.in, ok, tc.ok)
			}
			if ok && got.String() != tc.want {
				t.Errorf("Amount(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestPhone(t *testing.T) {
	valid := []string{
		"+966501234567",
		"966501234567",
		"+12",
		"123456789012345", // 15 digits, upper bound
	}
	for _, s := range valid {
		if !validate.Phone(s) {
			t.Errorf("Phone(%q) = false, want true", s)
		}
	}

	invalid := []string{
		"",
		"1",                  // below minimum length
		"1234567890123456",   // 16 digits
		"0501234567",         // leading zero
		"+0501234567",        // leading zero after plus
		"+966-50-123",        // separators
		"abc",
		"+",
	}
	for _, s := range invalid {
		if validate.Phone(s) {
			t.Errorf("Phone(%q) = true, want false", s)
		}
	}
}

func TestBusinessName(t *testing.T) {
	if !validate.BusinessName("Acme Foods") {
		t.Error("expected a normal name to pass")
	}
	if !validate.BusinessName("مطعم") {
		t.Error("expected a non-latin name to pass")
	}
	if !validate.BusinessName(strings.Repeat("a", 100)) {
		t.Error("expected a 100-rune name to pass")
	}
	if validate.BusinessName("A") {
		t.Error("expected a single-rune name to fail")
	}
	if validate.BusinessName("  x  ") {
		t.Error("expected a trimmed single-rune name to fail")
	}
	if validate.BusinessName(strings.Repeat("a", 101)) {
		t.Error("expected a 101-rune name to fail")
	}
}
