package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/billing/internal/clock"
	"github.com/andy/billing/internal/domain"
	"github.com/andy/billing/internal/report"
	"github.com/andy/billing/internal/repository"
	"golang.org/x/sync/errgroup"
)

// ReportService loads tasks from the store and aggregates them
type ReportService interface {
	// ClientReport groups the tasks selected by filter per client. A filter
	// with neither a range nor a year covers the current month to date.
	ClientReport(ctx context.Context, filter domain.TaskFilter) (*report.ClientSummary, error)
	// ClientDetail lists one client's tasks within the optional range.
	ClientDetail(ctx context.Context, clientID int64, start, end *time.Time) (*report.ClientDetail, error)
	// MonthlyBreakdown reports year month by month; zero means the current year.
	MonthlyBreakdown(ctx context.Context, year int) (*report.MonthlyReport, error)
	Dashboard(ctx context.Context) (*report.Dashboard, error)
}

type reportService struct {
	clientRepo repository.ClientRepository
	taskRepo   repository.TaskRepository
	clock      clock.Clock
	topN       int
	recentN    int
}

// NewReportService creates a new report service. Non-positive list sizes
// fall back to the dashboard defaults.
func NewReportService(
	clientRepo repository.ClientRepository,
	taskRepo repository.TaskRepository,
	clk clock.Clock,
	topN, recentN int,
) ReportService {
	if clk == nil {
		clk = clock.System
	}
	if topN <= 0 {
		topN = report.DefaultTopClients
	}
	if recentN <= 0 {
		recentN = report.DefaultRecentTasks
	}
	return &reportService{
		clientRepo: clientRepo,
		taskRepo:   taskRepo,
		clock:      clk,
		topN:       topN,
		recentN:    recentN,
	}
}

func (s *reportService) ClientReport(ctx context.Context, filter domain.TaskFilter) (*report.ClientSummary, error) {
	filter = report.ResolveFilter(filter, s.clock.Now())

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	summary := report.ClientReport(tasks)
	return &summary, nil
}

func (s *reportService) ClientDetail(ctx context.Context, clientID int64, start, end *time.Time) (*report.ClientDetail, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.List(ctx, domain.TaskFilter{ClientID: clientID, Start: start, End: end})
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	detail := report.Detail(client, tasks)
	return &detail, nil
}

func (s *reportService) MonthlyBreakdown(ctx context.Context, year int) (*report.MonthlyReport, error) {
	if year <= 0 {
		year = s.clock.Now().Year()
	}

	var (
		tasks []*domain.WorkTask
		years []int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.taskRepo.List(gctx, domain.TaskFilter{Year: year})
		return err
	})
	g.Go(func() error {
		var err error
		years, err = s.taskRepo.Years(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load monthly data: %w", err)
	}

	monthly := report.Monthly(year, tasks, years)
	return &monthly, nil
}

func (s *reportService) Dashboard(ctx context.Context) (*report.Dashboard, error) {
	var (
		clients []*domain.Client
		tasks   []*domain.WorkTask
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = s.clientRepo.List(gctx, false)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = s.taskRepo.List(gctx, domain.TaskFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard data: %w", err)
	}

	dashboard := report.BuildDashboard(clients, tasks, s.topN, s.recentN)
	return &dashboard, nil
}
