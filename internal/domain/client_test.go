package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("  Acme  ", decimal.NewFromInt(50))
	if c.Name != "Acme" {
		t.Fatalf("expected trimmed name, got %q", c.Name)
	}
	if c.Currency != "INR" {
		t.Fatalf("expected default currency INR, got %s", c.Currency)
	}
	if !c.ConversionRate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected conversion rate 1, got %s", c.ConversionRate)
	}
	if !c.IsActive {
		t.Fatal("expected new client to be active")
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected valid client, got %v", err)
	}
}

func TestClientValidate_CollectsFields(t *testing.T) {
	c := &Client{
		Name:           strings.Repeat("x", 101),
		HourlyRate:     decimal.Zero,
		Email:          "not-an-email",
		Phone:          "123456789012345678901",
		Currency:       "XYZ",
		ConversionRate: decimal.Zero,
	}

	err := c.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	for _, field := range []string{"name", "hourly_rate", "email", "phone", "currency", "conversion_rate"} {
		if !verr.Has(field) {
			t.Errorf("expected %s to be reported, got %v", field, verr.Fields)
		}
	}
}

func TestClientValidate_RateBounds(t *testing.T) {
	tests := []struct {
		rate  string
		valid bool
	}{
		{"0", false},
		{"0.01", true},
		{"10000", true},
		{"10000.01", false},
		{"-5", false},
	}
	for _, tt := range tests {
		c := NewClient("Acme", decimal.RequireFromString(tt.rate))
		err := c.Validate()
		if (err == nil) != tt.valid {
			t.Errorf("rate %s: expected valid=%v, got err=%v", tt.rate, tt.valid, err)
		}
	}
}

func TestClientBaseIncome(t *testing.T) {
	native := decimal.NewFromInt(800)

	usd := NewClient("Globex", decimal.NewFromInt(100))
	usd.Currency = CurrencyUSD
	usd.ConversionRate = decimal.NewFromInt(83)
	if got := usd.BaseIncome(native); !got.Equal(decimal.NewFromInt(66400)) {
		t.Fatalf("expected USD income converted to 66400, got %s", got)
	}

	eur := NewClient("Initech", decimal.NewFromInt(100))
	eur.Currency = CurrencyEUR
	eur.ConversionRate = decimal.NewFromInt(90)
	if got := eur.BaseIncome(native); !got.Equal(native) {
		t.Fatalf("expected non-USD income to pass through, got %s", got)
	}
}
