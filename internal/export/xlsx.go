package export

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/andy/billing/internal/format"
	"github.com/andy/billing/internal/report"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

var (
	summaryHeaders = []string{"Client Name", "Email", "Phone", "Hourly Rate", "Total Hours", "Task Count", "Total Income"}
	detailHeaders  = []string{"Task Date", "Description", "Task Link", "Hours Worked", "Amount"}
)

// sheet writes cells on one worksheet and tracks the widest text per column.
type sheet struct {
	f      *excelize.File
	name   string
	styles *styleCache
	widths map[int]int
	err    error
}

func newSheet(name string) *sheet {
	f := excelize.NewFile()
	s := &sheet{f: f, name: name, styles: newStyleCache(f), widths: make(map[int]int)}
	s.err = f.SetSheetName(f.GetSheetName(0), name)
	return s
}

// set writes v at (col, row) with style. text is the rendered form used for
// column sizing; an empty text leaves the width alone.
func (s *sheet) set(col, row int, v any, text string, style cellStyle) {
	if s.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		s.err = err
		return
	}
	if v != nil {
		if s.err = s.f.SetCellValue(s.name, cell, v); s.err != nil {
			return
		}
	}
	id, err := s.styles.id(style)
	if err != nil {
		s.err = err
		return
	}
	if s.err = s.f.SetCellStyle(s.name, cell, cell, id); s.err != nil {
		return
	}
	if n := utf8.RuneCountInString(text); n > s.widths[col] {
		s.widths[col] = n
	}
}

func (s *sheet) merge(fromCol, toCol, row int) {
	if s.err != nil {
		return
	}
	from, _ := excelize.CoordinatesToCellName(fromCol, row)
	to, _ := excelize.CoordinatesToCellName(toCol, row)
	s.err = s.f.MergeCell(s.name, from, to)
}

func (s *sheet) header(row int, labels []string) {
	style := cellStyle{bold: true, fill: colorHeader, fontColor: colorWhite, border: true, center: true}
	for i, label := range labels {
		s.set(i+1, row, label, label, style)
	}
}

// autoFit sizes each used column to its widest rendered value.
func (s *sheet) autoFit(cols int) {
	for col := 1; col <= cols && s.err == nil; col++ {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			s.err = err
			return
		}
		width := float64(s.widths[col]) + 2
		if width < 8 {
			width = 8
		}
		if width > 100 {
			width = 100
		}
		s.err = s.f.SetColWidth(s.name, name, name, width)
	}
}

func (s *sheet) bytes() ([]byte, error) {
	defer s.f.Close()
	if s.err != nil {
		return nil, fmt.Errorf("failed to build spreadsheet: %w", s.err)
	}
	buf, err := s.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}

// dataStyle is the style of a body cell on row, striped on even rows.
func dataStyle(row int, numFmt string) cellStyle {
	s := cellStyle{border: true, numFmt: numFmt}
	if row%2 == 0 {
		s.fill = colorStripe
	}
	return s
}

func totalStyle(numFmt string) cellStyle {
	return cellStyle{bold: true, fill: colorTotal, fontColor: colorWhite, border: true, numFmt: numFmt}
}

func num(d decimal.Decimal) float64 { return d.InexactFloat64() }

// ClientSummaryXLSX renders the per-client report as a spreadsheet. Income
// columns are in each client's own currency.
func ClientSummaryXLSX(summary report.ClientSummary, period Period) ([]byte, error) {
	s := newSheet("Client Report")
	cols := len(summaryHeaders)

	s.set(1, 1, "Client Report", "", cellStyle{bold: true, size: 16, center: true})
	s.merge(1, cols, 1)
	s.set(1, 2, "Period: "+period.String(), "", cellStyle{center: true})
	s.merge(1, cols, 2)

	s.header(4, summaryHeaders)

	row := 5
	for _, r := range summary.Rows {
		s.set(1, row, r.Name, r.Name, dataStyle(row, ""))
		s.set(2, row, r.Email, r.Email, dataStyle(row, ""))
		s.set(3, row, r.Phone, r.Phone, dataStyle(row, ""))
		s.set(4, row, num(r.HourlyRate), format.Money(r.HourlyRate), dataStyle(row, moneyFormat))
		s.set(5, row, num(r.TotalHours), format.Number(r.TotalHours), dataStyle(row, hoursFormat))
		s.set(6, row, r.TaskCount, fmt.Sprint(r.TaskCount), dataStyle(row, ""))
		s.set(7, row, num(r.NativeIncome), format.Money(r.NativeIncome), dataStyle(row, moneyFormat))
		row++
	}

	s.set(1, row, "TOTAL", "TOTAL", totalStyle(""))
	for col := 2; col <= 4; col++ {
		s.set(col, row, nil, "", totalStyle(""))
	}
	s.merge(1, 4, row)
	s.set(5, row, num(summary.TotalHours), format.Number(summary.TotalHours), totalStyle(hoursFormat))
	s.set(6, row, summary.TotalTasks, fmt.Sprint(summary.TotalTasks), totalStyle(""))
	s.set(7, row, num(summary.TotalNativeIncome), format.Money(summary.TotalNativeIncome), totalStyle(moneyFormat))

	s.autoFit(cols)
	return s.bytes()
}

// ClientDetailXLSX renders one client's tasks as a spreadsheet.
func ClientDetailXLSX(detail report.ClientDetail, period Period) ([]byte, error) {
	c := detail.Client
	s := newSheet(SheetName(c.Name + " - Tasks"))
	cols := len(detailHeaders)

	s.set(1, 1, c.Name, "", cellStyle{bold: true, size: 18})
	s.merge(1, cols, 1)
	s.set(1, 2, fmt.Sprintf("Email: %s | Phone: %s | Rate: %s/hr",
		orDefault(c.Email, "N/A"), orDefault(c.Phone, "N/A"), format.Money(c.HourlyRate)), "", cellStyle{})
	s.merge(1, cols, 2)
	s.set(1, 3, "Period: "+period.String(), "", cellStyle{})
	s.merge(1, cols, 3)

	s.header(5, detailHeaders)

	row := 6
	for _, t := range detail.Tasks {
		date := t.TaskDate.Format(format.ShortDate)
		amount := t.TotalAmount()
		s.set(1, row, date, date, dataStyle(row, ""))
		s.set(2, row, t.Description, t.Description, dataStyle(row, ""))
		s.set(3, row, t.TaskLink, t.TaskLink, dataStyle(row, ""))
		s.set(4, row, num(t.HoursWorked), format.Number(t.HoursWorked), dataStyle(row, hoursFormat))
		s.set(5, row, num(amount), format.Money(amount), dataStyle(row, moneyFormat))
		row++
	}

	s.set(1, row, "TOTAL", "TOTAL", totalStyle(""))
	for col := 2; col <= 3; col++ {
		s.set(col, row, nil, "", totalStyle(""))
	}
	s.merge(1, 3, row)
	s.set(4, row, num(detail.TotalHours), format.Number(detail.TotalHours), totalStyle(hoursFormat))
	s.set(5, row, num(detail.TotalAmount), format.Money(detail.TotalAmount), totalStyle(moneyFormat))

	s.autoFit(cols)
	return s.bytes()
}

// SheetName strips characters Excel forbids in sheet names and truncates to 31 runes.
func SheetName(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	clean = strings.Trim(clean, "'")
	if r := []rune(clean); len(r) > maxSheetName {
		clean = string(r[:maxSheetName])
	}
	if strings.TrimSpace(clean) == "" {
		return "Tasks"
	}
	return clean
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
