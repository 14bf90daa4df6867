package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/billing/internal/clock"
	"github.com/andy/billing/internal/domain"
	"github.com/andy/billing/internal/export"
	"github.com/andy/billing/internal/report"
	"github.com/andy/billing/internal/repository"
)

// ExportService renders reports as downloadable documents. Date ranges are
// used exactly as given; open bounds print as "All time" and "Present".
type ExportService interface {
	ClientsExcel(ctx context.Context, clientID int64, start, end *time.Time) (*export.File, error)
	ClientsPDF(ctx context.Context, clientID int64, start, end *time.Time) (*export.File, error)
	ClientDetailExcel(ctx context.Context, clientID int64, start, end *time.Time) (*export.File, error)
	ClientDetailPDF(ctx context.Context, clientID int64, start, end *time.Time) (*export.File, error)

	// Summary and ClientDetail render in the given format.
	Summary(ctx context.Context, format export.Format, clientID int64, start, end *time.Time) (*export.File, error)
	ClientDetail(ctx context.Context, format export.Format, clientID int64, start, end *time.Time) (*export.File, error)
}

type exportService struct {
	clientRepo repository.ClientRepository
	taskRepo   repository.TaskRepository
	clock      clock.Clock
}

// NewExportService creates a new export service
func NewExportService(
	clientRepo repository.ClientRepository,
	taskRepo repository.TaskRepository,
	clk clock.Clock,
) ExportService {
	if clk == nil {
		clk = clock.System
	}
	return &exportService{
		clientRepo: clientRepo,
		taskRepo:   taskRepo,
		clock:      clk,
	}
}

func (s *exportService) ClientsExcel(ctx context.Context, clientID int64, start, end *time.Time) (*export.File, error) {
	return s.Summary(ctx, export.FormatXLSX, clientID, start, end)
}

func (s *exportService) ClientsPDF(ctx context.Context, clientID int64, start, end *time.Time) (*export.File, error) {
	return s.Summary(ctx, export.FormatPDF, clientID, start, end)
}

func (s *exportService) ClientDetailExcel(ctx context.Context, clientID int64, start, end *time.Time) (*export.File, error) {
	return s.ClientDetail(ctx, export.FormatXLSX, clientID, start, end)
}

func (s *exportService) ClientDetailPDF(ctx context.Context, clientID int64, start, end *time.Time) (*export.File, error) {
	return s.ClientDetail(ctx, export.FormatPDF, clientID, start, end)
}

func (s *exportService) Summary(ctx context.Context, format export.Format, clientID int64, start, end *time.Time) (*export.File, error) {
	tasks, err := s.taskRepo.List(ctx, domain.TaskFilter{ClientID: clientID, Start: start, End: end})
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	now := s.clock.Now()
	summary := report.ClientReport(tasks)
	period := export.Period{Start: start, End: end}

	var data []byte
	switch format {
	case export.FormatXLSX:
		data, err = export.ClientSummaryXLSX(summary, period)
	case export.FormatPDF:
		data, err = export.ClientSummaryPDF(summary, period, now)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, err
	}

	return &export.File{
		Name:     export.FileName("", "Report", format, now),
		MIMEType: format.MIMEType(),
		Data:     data,
	}, nil
}

func (s *exportService) ClientDetail(ctx context.Context, format export.Format, clientID int64, start, end *time.Time) (*export.File, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.List(ctx, domain.TaskFilter{ClientID: clientID, Start: start, End: end})
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	now := s.clock.Now()
	detail := report.Detail(client, tasks)
	period := export.Period{Start: start, End: end}

	var data []byte
	switch format {
	case export.FormatXLSX:
		data, err = export.ClientDetailXLSX(detail, period)
	case export.FormatPDF:
		data, err = export.ClientDetailPDF(detail, period, now)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, err
	}

	return &export.File{
		Name:     export.FileName(client.Name, "Report", format, now),
		MIMEType: format.MIMEType(),
		Data:     data,
	}, nil
}
