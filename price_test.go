package paygate

import (
	"errors"
	"testing"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"0.01", "10000", false},
		{"$0.01", "10000", false},
		{" $1.50 ", "1500000", false},
		{"0.001", "1000", false},
		{"0.000001", "1", false},
		{"0", "0", false},
		{"100", "100000000", false},
		{"0.0000001", "0", false}, // below smallest unit rounds down
		{"-0.01", "", true},
		{"abc", "", true},
		{"", "", true},
		{"$", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePrice(%q) = %q, want error", tt.in, got)
				}
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("error %v does not wrap ErrInvalidAmount", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePrice(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParsePrice(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParsePriceFloat(t *testing.T) {
	got, err := ParsePriceFloat(0.01)
	if err != nil {
		t.Fatal(err)
	}
	if got != "10000" {
		t.Errorf("got %q, want 10000", got)
	}

	for _, bad := range []float64{-1} {
		if _, err := ParsePriceFloat(bad); err == nil {
			t.Errorf("ParsePriceFloat(%g) should fail", bad)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		smallest string
		opts     FormatOptions
		want     string
	}{
		{"10000", FormatOptions{}, "0.01"},
		{"10000", FormatOptions{Symbol: true}, "$0.01"},
		{"1500000", FormatOptions{}, "1.50"},
		{"1", FormatOptions{Decimals: 6}, "0.000001"},
		{"1", FormatOptions{}, "0.00"}, // truncated at 2 decimals
		{"123456789", FormatOptions{Decimals: 6}, "123.456789"},
		{"123456789", FormatOptions{Decimals: 10}, "123.456789"}, // capped at 6
	}

	for _, tt := range tests {
		got, err := FormatPrice(tt.smallest, tt.opts)
		if err != nil {
			t.Fatalf("FormatPrice(%q): %v", tt.smallest, err)
		}
		if got != tt.want {
			t.Errorf("FormatPrice(%q, %+v) = %q, want %q", tt.smallest, tt.opts, got, tt.want)
		}
	}

	if _, err := FormatPrice("abc", FormatOptions{}); err == nil {
		t.Error("expected error for malformed amount")
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, price := range []string{"0.01", "1.50", "0.001", "123.456789"} {
		smallest, err := ParsePrice(price)
		if err != nil {
			t.Fatal(err)
		}
		back, err := FormatPrice(smallest, FormatOptions{Decimals: 6})
		if err != nil {
			t.Fatal(err)
		}
		reparsed, err := ParsePrice(back)
		if err != nil {
			t.Fatal(err)
		}
		if reparsed != smallest {
			t.Errorf("round trip %q: %q -> %q -> %q", price, smallest, back, reparsed)
		}
	}
}

func TestValidatePrice(t *testing.T) {
	if _, err := ValidatePrice("0.001"); err != nil {
		t.Errorf("floor price rejected: %v", err)
	}
	if _, err := ValidatePrice("0.0009"); err == nil {
		t.Error("sub-floor price accepted")
	}
}

func TestCompareAndAddAmounts(t *testing.T) {
	cmp, err := CompareAmounts("100", "200")
	if err != nil || cmp != -1 {
		t.Errorf("CompareAmounts = %d, %v", cmp, err)
	}
	sum, err := AddAmounts("100", "200")
	if err != nil || sum != "300" {
		t.Errorf("AddAmounts = %q, %v", sum, err)
	}
	if _, err := AddAmounts("x", "1"); err == nil {
		t.Error("expected error for malformed amount")
	}
}
