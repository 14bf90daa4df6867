package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andy/billing/internal/db"
	"github.com/andy/billing/internal/domain"
	"github.com/shopspring/decimal"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.OpenMemory(context.Background())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func createClient(t *testing.T, repo *ClientRepo, name string, rate int64) *domain.Client {
	t.Helper()
	c := domain.NewClient(name, decimal.NewFromInt(rate))
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("create client %s: %v", name, err)
	}
	return c
}

func createTask(t *testing.T, repo *TaskRepo, clientID int64, day string, hours string) *domain.WorkTask {
	t.Helper()
	task := domain.NewWorkTask(clientID, mustDate(t, day), "work on "+day, decimal.RequireFromString(hours))
	if err := repo.Create(context.Background(), task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestClientRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepo(newTestDB(t))

	c := domain.NewClient("Globex", decimal.RequireFromString("100.50"))
	c.Currency = domain.CurrencyUSD
	c.ConversionRate = decimal.NewFromInt(83)
	c.Email = "billing@globex.com"
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}

	got, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Globex" || got.Currency != "USD" || !got.HourlyRate.Equal(c.HourlyRate) || !got.ConversionRate.Equal(c.ConversionRate) {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	got.IsActive = false
	got.HourlyRate = decimal.NewFromInt(120)
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}

	active, err := repo.List(ctx, true)
	if err != nil {
		t.Fatalf("List active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active clients, got %d", len(active))
	}
	all, err := repo.List(ctx, false)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 1 || !all[0].HourlyRate.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected updated client in full list, got %+v", all)
	}

	if err := repo.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestClientRepo_CreateRejectsInvalid(t *testing.T) {
	repo := NewClientRepo(newTestDB(t))
	err := repo.Create(context.Background(), domain.NewClient("", decimal.Zero))

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !verr.Has("name") || !verr.Has("hourly_rate") {
		t.Fatalf("expected name and hourly_rate failures, got %v", verr.Fields)
	}
}

func TestClientRepo_UpdateVanished(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepo(newTestDB(t))
	c := createClient(t, repo, "Acme", 50)

	if err := repo.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	err := repo.Update(ctx, c)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Fatal("conflict must be distinct from not found")
	}
}

func TestClientRepo_DeleteMissing(t *testing.T) {
	repo := NewClientRepo(newTestDB(t))
	if err := repo.Delete(context.Background(), 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientRepo_DeleteCascadesTasks(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	clients := NewClientRepo(database)
	tasks := NewTaskRepo(database)

	a := createClient(t, clients, "Acme", 50)
	b := createClient(t, clients, "Globex", 80)
	createTask(t, tasks, a.ID, "2024-01-05", "4")
	createTask(t, tasks, a.ID, "2024-01-06", "2")
	createTask(t, tasks, b.ID, "2024-01-07", "1")

	if err := clients.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	remaining, err := tasks.List(ctx, domain.TaskFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ClientID != b.ID {
		t.Fatalf("expected only Globex task to remain, got %d tasks", len(remaining))
	}
}

func TestTaskRepo_ListFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	clients := NewClientRepo(database)
	tasks := NewTaskRepo(database)

	a := createClient(t, clients, "Acme", 50)
	b := createClient(t, clients, "Globex", 100)
	createTask(t, tasks, a.ID, "2024-01-05", "4")
	createTask(t, tasks, a.ID, "2024-01-20", "2")
	createTask(t, tasks, b.ID, "2024-01-10", "8")
	createTask(t, tasks, b.ID, "2024-02-01", "1")

	start := mustDate(t, "2024-01-05")
	end := mustDate(t, "2024-01-20")
	got, err := tasks.List(ctx, domain.TaskFilter{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 tasks in inclusive range, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].TaskDate.After(got[i-1].TaskDate) {
			t.Fatalf("expected task date descending, got %v before %v", got[i-1].TaskDate, got[i].TaskDate)
		}
	}
	if got[0].Client == nil || got[0].Client.Name != "Acme" {
		t.Fatalf("expected joined client on newest task, got %+v", got[0].Client)
	}

	byMonth, err := tasks.List(ctx, domain.TaskFilter{Year: 2024, Month: 2})
	if err != nil {
		t.Fatalf("List month: %v", err)
	}
	if len(byMonth) != 1 {
		t.Fatalf("expected 1 task in February, got %d", len(byMonth))
	}

	byClient, err := tasks.List(ctx, domain.TaskFilter{ClientID: b.ID})
	if err != nil {
		t.Fatalf("List client: %v", err)
	}
	if len(byClient) != 2 {
		t.Fatalf("expected 2 Globex tasks, got %d", len(byClient))
	}
}

func TestTaskRepo_AmountFollowsCurrentRate(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	clients := NewClientRepo(database)
	tasks := NewTaskRepo(database)

	c := createClient(t, clients, "Acme", 50)
	task := createTask(t, tasks, c.ID, "2024-01-05", "4")

	c.HourlyRate = decimal.NewFromInt(75)
	if err := clients.Update(ctx, c); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.TotalAmount().Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected amount at current rate 300, got %s", got.TotalAmount())
	}
}

func TestTaskRepo_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	clients := NewClientRepo(database)
	tasks := NewTaskRepo(database)

	c := createClient(t, clients, "Acme", 50)
	task := createTask(t, tasks, c.ID, "2024-01-05", "4")

	task.HoursWorked = decimal.RequireFromString("5.5")
	task.TaskLink = "https://tracker.example.com/42"
	if err := tasks.Update(ctx, task); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := tasks.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.HoursWorked.Equal(decimal.RequireFromString("5.5")) || got.TaskLink != task.TaskLink {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := tasks.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := tasks.Update(ctx, task); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict updating a deleted task, got %v", err)
	}
	if err := tasks.Delete(ctx, task.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestTaskRepo_UpdateAfterClientDeleted(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	clients := NewClientRepo(database)
	tasks := NewTaskRepo(database)

	c := createClient(t, clients, "Acme", 50)
	created := createTask(t, tasks, c.ID, "2024-01-05", "4")

	task, err := tasks.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if err := clients.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete client: %v", err)
	}

	task.Description = "edited after the client was removed"
	err = tasks.Update(ctx, task)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

func TestTaskRepo_UpdateToUnknownClient(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	tasks := NewTaskRepo(database)

	c := createClient(t, NewClientRepo(database), "Acme", 50)
	task := createTask(t, tasks, c.ID, "2024-01-05", "4")

	task.ClientID = 99
	var verr *domain.ValidationError
	if err := tasks.Update(ctx, task); !errors.As(err, &verr) || !verr.Has("client_id") {
		t.Fatalf("expected client_id validation failure, got %v", err)
	}
}

func TestTaskRepo_CreateUnknownClient(t *testing.T) {
	tasks := NewTaskRepo(newTestDB(t))
	task := domain.NewWorkTask(99, mustDate(t, "2024-01-05"), "orphan", decimal.NewFromInt(1))

	var verr *domain.ValidationError
	if err := tasks.Create(context.Background(), task); !errors.As(err, &verr) || !verr.Has("client_id") {
		t.Fatalf("expected client_id validation failure, got %v", err)
	}
}

func TestTaskRepo_Years(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	clients := NewClientRepo(database)
	tasks := NewTaskRepo(database)

	c := createClient(t, clients, "Acme", 50)
	createTask(t, tasks, c.ID, "2022-06-01", "1")
	createTask(t, tasks, c.ID, "2024-01-05", "1")
	createTask(t, tasks, c.ID, "2024-03-05", "1")

	years, err := tasks.Years(ctx)
	if err != nil {
		t.Fatalf("Years: %v", err)
	}
	if len(years) != 2 || years[0] != 2024 || years[1] != 2022 {
		t.Fatalf("expected [2024 2022], got %v", years)
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	clients := NewClientRepo(newTestDB(t))

	n, err := Seed(ctx, clients)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 seeded clients, got %d", n)
	}

	n, err = Seed(ctx, clients)
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected seeding a non-empty store to be a no-op, got %d", n)
	}

	c, err := clients.GetByName(ctx, "StartUp Ventures")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if !c.HourlyRate.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected rate 100, got %s", c.HourlyRate)
	}
}
