package usecase

import "testing"

func TestParsePriceStrict(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"$19.99", 19.99, true},
		{"USD 20", 20, true},
		{"0.0123 BTC", 0.0123, true},
		{".50", 0.5, true},
		{"21.5", 21.5, true},
		{"12.", 12, true},
		{"-5", 5, true},
		{"1,200.50", 1, true},
		{"price on request", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParsePriceStrict(tt.raw)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParsePriceStrict(%q) = %v, %v, want %v, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	if got := ParsePrice("free"); got != 0 {
		t.Errorf("ParsePrice(free) = %v, want 0", got)
	}
	if got := ParsePrice("$500.00"); got != 500 {
		t.Errorf("ParsePrice($500.00) = %v, want 500", got)
	}
}
