package repository

import (
	"context"
	"fmt"

	"github.com/andy/billing/internal/domain"
	"github.com/shopspring/decimal"
)

var sampleClients = []struct {
	name        string
	rate        int64
	email       string
	description string
}{
	{"Tech Solutions Inc.", 75, "contact@techsolutions.com", "Software development client"},
	{"Digital Marketing Pro", 50, "info@digitalmarketingpro.com", "Marketing automation project"},
	{"StartUp Ventures", 100, "team@startupventures.io", "MVP development"},
}

// Seed inserts the sample clients into an empty store. It reports how many
// clients were created.
func Seed(ctx context.Context, clients ClientRepository) (int, error) {
	existing, err := clients.List(ctx, false)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i, s := range sampleClients {
		c := domain.NewClient(s.name, decimal.NewFromInt(s.rate))
		c.Email = s.email
		c.Description = s.description
		if err := clients.Create(ctx, c); err != nil {
			return i, fmt.Errorf("failed to seed client %q: %w", s.name, err)
		}
	}
	return len(sampleClients), nil
}
