package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andy/billing/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	totalStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func printHeader(format string, a ...any) {
	line := fmt.Sprintf(format, a...)
	fmt.Println(headerStyle.Render(line))
	fmt.Println(ruleStyle.Render(strings.Repeat("-", len(line))))
}

func printSuccess(format string, a ...any) {
	fmt.Println(successStyle.Render("✓ " + fmt.Sprintf(format, a...)))
}

// parseDate accepts YYYY-MM-DD, "today" or "yesterday"
func parseDate(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return domain.DateOf(now), nil
	case "yesterday":
		return domain.DateOf(now.AddDate(0, 0, -1)), nil
	default:
		t, err := domain.ParseDate(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("expected format: YYYY-MM-DD, 'today', or 'yesterday'")
		}
		return t, nil
	}
}

// dateFlag reads an optional date flag; an unset flag yields nil.
func dateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, _ := cmd.Flags().GetString(name)
	t, err := parseDate(v, appInstance.Clock.Now())
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return &t, nil
}

func rangeFlags(cmd *cobra.Command) (start, end *time.Time, err error) {
	if start, err = dateFlag(cmd, "start"); err != nil {
		return nil, nil, err
	}
	if end, err = dateFlag(cmd, "end"); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "Start date (YYYY-MM-DD, 'today' or 'yesterday')")
	cmd.Flags().String("end", "", "End date (YYYY-MM-DD, 'today' or 'yesterday')")
}

func parseDecimal(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", name, s)
	}
	return d, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q", s)
	}
	return id, nil
}

// resolveClient finds a client by numeric ID or exact name.
func resolveClient(ctx context.Context, idOrName string) (*domain.Client, error) {
	if id, err := strconv.ParseInt(idOrName, 10, 64); err == nil {
		client, err := appInstance.ClientRepo.GetByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("client with ID %d not found", id)
		}
		return client, err
	}

	client, err := appInstance.ClientRepo.GetByName(ctx, idOrName)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("client named '%s' not found", idOrName)
	}
	return client, err
}

// describeError expands validation failures into one line per field.
func describeError(action string, err error) error {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	lines := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		lines = append(lines, fmt.Sprintf("  %s: %s", f.Field, f.Message))
	}
	return fmt.Errorf("failed to %s:\n%s", action, strings.Join(lines, "\n"))
}
