package domain

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Supported currency codes.
const (
	CurrencyINR = "INR"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyGBP = "GBP"

	DefaultCurrency = CurrencyINR
)

var currencies = map[string]bool{
	CurrencyINR: true,
	CurrencyUSD: true,
	CurrencyEUR: true,
	CurrencyGBP: true,
}

var (
	minHourlyRate = decimal.RequireFromString("0.01")
	maxHourlyRate = decimal.NewFromInt(10000)

	phonePattern = regexp.MustCompile(`^\+?[0-9 ().-]{3,}$`)
)

type Client struct {
	ID             int64
	Name           string
	HourlyRate     decimal.Decimal
	Description    string
	Email          string
	Phone          string
	Currency       string
	ConversionRate decimal.Decimal // to base currency, applied for USD only
	IsActive       bool
	CreatedAt      time.Time
}

// NewClient creates an active client billed in the default currency
func NewClient(name string, hourlyRate decimal.Decimal) *Client {
	return &Client{
		Name:           strings.TrimSpace(name),
		HourlyRate:     hourlyRate,
		Currency:       DefaultCurrency,
		ConversionRate: decimal.NewFromInt(1),
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
}

// IsSupportedCurrency reports whether code is a known currency code
func IsSupportedCurrency(code string) bool {
	return currencies[code]
}

// BaseIncome converts an amount in the client's currency into the base currency.
// Only USD is converted; every other currency passes through unchanged.
func (c *Client) BaseIncome(native decimal.Decimal) decimal.Decimal {
	if c.Currency == CurrencyUSD {
		return native.Mul(c.ConversionRate)
	}
	return native
}

// Validate returns a *ValidationError listing every invalid field
func (c *Client) Validate() error {
	v := &validator{}

	name := strings.TrimSpace(c.Name)
	v.check(name != "", "name", "client name is required")
	v.check(utf8.RuneCountInString(name) <= 100, "name", "client name cannot exceed 100 characters")

	v.check(c.HourlyRate.GreaterThanOrEqual(minHourlyRate) && c.HourlyRate.LessThanOrEqual(maxHourlyRate),
		"hourly_rate", "hourly rate must be between 0.01 and 10,000")

	v.check(utf8.RuneCountInString(c.Description) <= 500, "description", "description cannot exceed 500 characters")

	if c.Email != "" {
		_, err := mail.ParseAddress(c.Email)
		v.check(err == nil && utf8.RuneCountInString(c.Email) <= 100, "email", "invalid email address")
	}
	if c.Phone != "" {
		v.check(utf8.RuneCountInString(c.Phone) <= 20 && phonePattern.MatchString(c.Phone), "phone", "invalid phone number")
	}

	v.check(IsSupportedCurrency(c.Currency), "currency", "unsupported currency")
	v.check(c.ConversionRate.IsPositive(), "conversion_rate", "conversion rate must be greater than zero")

	return v.err()
}
