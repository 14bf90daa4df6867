package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/andy/billing/internal/config"
	"github.com/andy/billing/internal/domain"
	"github.com/andy/billing/internal/log"
)

func sqliteConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "data", "billing.db")
	cfg.Log.Level = "error"
	return cfg
}

func TestNewWithConfig_SeedsOnce(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig(t)

	a, err := NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	clients, err := a.ClientRepo.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(clients) != 3 {
		t.Fatalf("expected 3 seeded clients, got %d", len(clients))
	}
	a.Close()

	// Reopening the same file does not seed again.
	a, err = NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer a.Close()
	clients, _ = a.ClientRepo.List(ctx, false)
	if len(clients) != 3 {
		t.Fatalf("expected 3 clients after reopen, got %d", len(clients))
	}

	d, err := a.ReportService.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.TotalClients != 3 || d.AverageHourlyRate.String() != "75" {
		t.Errorf("unexpected dashboard %+v", d)
	}
}

func TestNewWithConfig_NoSeed(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Database.Seed = false

	a, err := NewWithConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	defer a.Close()

	if _, err := a.ClientRepo.GetByID(context.Background(), 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected an empty store, got %v", err)
	}
}

func TestNewWithConfig_InvalidConfig(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Database.Driver = "oracle"
	if _, err := NewWithConfig(context.Background(), cfg); err == nil {
		t.Fatal("expected a config error")
	}
}

type stubKeyring struct {
	key    string
	getErr error
}

func (s *stubKeyring) GetKey() (string, error) { return s.key, s.getErr }
func (s *stubKeyring) SetKey(string) error     { return nil }
func (s *stubKeyring) DeleteKey() error        { return nil }
func (s *stubKeyring) IsAvailable() bool       { return true }

func TestDatabaseKey(t *testing.T) {
	key, err := databaseKey(&stubKeyring{key: "secret"}, log.Discard())
	if err != nil || key != "secret" {
		t.Fatalf("expected stored key, got %q, %v", key, err)
	}

	boom := errors.New("keychain locked")
	if _, err := databaseKey(&stubKeyring{getErr: boom}, log.Discard()); !errors.Is(err, boom) {
		t.Fatalf("expected keyring failure to surface, got %v", err)
	}
}
