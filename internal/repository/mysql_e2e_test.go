//go:build e2e

package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/andy/billing/internal/db"
	"github.com/andy/billing/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestMySQLStore_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_DATABASE":      "billing",
			"MYSQL_ROOT_PASSWORD": "secret",
			"MYSQL_USER":          "billing",
			"MYSQL_PASSWORD":      "billing",
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(90 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}
	t.Cleanup(func() { _ = mysqlC.Terminate(context.Background()) })

	host, err := mysqlC.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := mysqlC.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	dsn := fmt.Sprintf("billing:billing@tcp(%s:%s)/billing", host, port.Port())

	// The port opens before the server accepts logins.
	var database *db.DB
	deadline := time.Now().Add(60 * time.Second)
	for {
		database, err = db.Open(ctx, db.Options{Driver: db.DriverMySQL, DSN: dsn})
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.RunMigrations(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	clients := NewClientRepo(database)
	tasks := NewTaskRepo(database)

	c := domain.NewClient("Globex", decimal.NewFromInt(100))
	c.Currency = domain.CurrencyUSD
	c.ConversionRate = decimal.NewFromInt(83)
	if err := clients.Create(ctx, c); err != nil {
		t.Fatalf("create client: %v", err)
	}

	day, _ := domain.ParseDate("2024-01-10")
	task := domain.NewWorkTask(c.ID, day, "Integration", decimal.NewFromInt(8))
	if err := tasks.Create(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := tasks.List(ctx, domain.TaskFilter{Year: 2024, Month: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || !got[0].TotalAmount().Equal(decimal.NewFromInt(800)) {
		t.Fatalf("expected one task worth 800, got %+v", got)
	}

	// An update that changes nothing still finds the row.
	if err := clients.Update(ctx, c); err != nil {
		t.Fatalf("no-op update: %v", err)
	}

	if err := clients.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := tasks.Update(ctx, task); err == nil {
		t.Fatal("expected updating an orphaned task to fail")
	}
	if err := clients.Update(ctx, c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	remaining, err := tasks.List(ctx, domain.TaskFilter{})
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected cascade delete, %d tasks remain", len(remaining))
	}
}
