package money

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{amount: "0", want: "R$ 0,00"},
		{amount: "29.9", want: "R$ 29,90"},
		{amount: "74.8", want: "R$ 74,80"},
		{amount: "1234.56", want: "R$ 1.234,56"},
	}
	for _, tt := range cases {
		got := FormatBRL(decimal.RequireFromString(tt.amount))
		if got != tt.want {
			t.Fatalf("FormatBRL(%s) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2026, time.March, 7, 14, 30, 0, 0, time.UTC)
	if got := FormatDate(ts); got != "07/03/2026" {
		t.Fatalf("unexpected date: %q", got)
	}
	if got := FormatDate(time.Time{}); got != "" {
		t.Fatalf("zero time should render empty, got %q", got)
	}
}

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2026, time.March, 7, 14, 30, 0, 0, time.UTC)
	if got := FormatDateTime(ts); got != "07/03/2026 14:30" {
		t.Fatalf("unexpected datetime: %q", got)
	}
	if got := FormatDateTime(time.Time{}); got != "" {
		t.Fatalf("zero time should render empty, got %q", got)
	}
}
