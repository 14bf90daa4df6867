package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/andy/billing/internal/format"
	"github.com/andy/billing/internal/report"
	"github.com/go-pdf/fpdf"
)

type rgb struct{ r, g, b int }

var (
	indigoMedium  = rgb{63, 81, 181}
	indigoDarken2 = rgb{48, 63, 159}
	indigoDarken3 = rgb{40, 53, 147}
	greyLighten4  = rgb{245, 245, 245}
	greyLighten2  = rgb{224, 224, 224}
	greyDarken1   = rgb{117, 117, 117}
	white         = rgb{255, 255, 255}
	black         = rgb{0, 0, 0}
)

const (
	pdfFont       = "Helvetica"
	pdfMargin     = 30.0
	pdfFontSize   = 10.0
	pdfLineHeight = 12.0
	pdfFooterRoom = 24.0
	headPadding   = 8.0
	cellPadding   = 6.0
)

// compressPDF is switched off in tests so page content can be inspected.
var compressPDF = true

type pdfColumn struct {
	label  string
	weight float64
	right  bool
}

var (
	summaryColumns = []pdfColumn{
		{"Client Name", 3, false},
		{"Email", 3, false},
		{"Phone", 2, false},
		{"Rate", 1.5, true},
		{"Hours", 1.5, true},
		{"Tasks", 1, true},
		{"Total Income", 2, true},
	}
	detailColumns = []pdfColumn{
		{"Date", 2, false},
		{"Description", 5, false},
		{"Hours", 1.5, true},
		{"Amount", 2, true},
	}
)

// pdfTable lays out a paginated table under a repeating page header.
type pdfTable struct {
	pdf       *fpdf.Fpdf
	tr        func(string) string
	cols      []pdfColumn
	widths    []float64
	pageTitle func(t *pdfTable)
	stripe    bool
}

func newPDFTable(orientation string, cols []pdfColumn, generatedAt time.Time, pageTitle func(t *pdfTable)) *pdfTable {
	pdf := fpdf.New(orientation, "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetCompression(compressPDF)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	pdf.AliasNbPages("{nb}")

	t := &pdfTable{
		pdf:       pdf,
		tr:        pdf.UnicodeTranslatorFromDescriptor(""),
		cols:      cols,
		pageTitle: pageTitle,
	}

	pageW, _ := pdf.GetPageSize()
	content := pageW - 2*pdfMargin
	var total float64
	for _, c := range cols {
		total += c.weight
	}
	for _, c := range cols {
		t.widths = append(t.widths, content*c.weight/total)
	}

	stamp := generatedAt.Format(format.LongStamp)
	pdf.SetFooterFunc(func() {
		t.footer(stamp)
	})
	return t
}

func (t *pdfTable) color(c rgb) { t.pdf.SetTextColor(c.r, c.g, c.b) }
func (t *pdfTable) fill(c rgb)  { t.pdf.SetFillColor(c.r, c.g, c.b) }

func (t *pdfTable) text(size float64, bold bool, c rgb, s string) {
	style := ""
	if bold {
		style = "B"
	}
	t.pdf.SetFont(pdfFont, style, size)
	t.color(c)
	t.pdf.CellFormat(0, size*1.2, t.tr(s), "", 1, "L", false, 0, "")
}

// rule draws the horizontal line closing the page header.
func (t *pdfTable) rule() {
	pageW, _ := t.pdf.GetPageSize()
	y := t.pdf.GetY() + 10
	t.pdf.SetDrawColor(greyLighten2.r, greyLighten2.g, greyLighten2.b)
	t.pdf.SetLineWidth(1)
	t.pdf.Line(pdfMargin, y, pageW-pdfMargin, y)
	t.pdf.SetY(y + 20)
}

func (t *pdfTable) footer(stamp string) {
	parts := []struct {
		s    string
		bold bool
	}{
		{"Generated on ", false},
		{stamp, true},
		{fmt.Sprintf(" | Page %d of {nb}", t.pdf.PageNo()), false},
	}

	// {nb} is substituted after layout, so measure it as a page number.
	measure := func(s string, bold bool) float64 {
		style := ""
		if bold {
			style = "B"
		}
		t.pdf.SetFont(pdfFont, style, pdfFontSize)
		return t.pdf.GetStringWidth(s)
	}
	var total float64
	for _, p := range parts {
		total += measure(p.s, p.bold)
	}

	pageW, pageH := t.pdf.GetPageSize()
	t.pdf.SetXY((pageW-total)/2, pageH-pdfMargin-pdfLineHeight)
	t.color(black)
	for _, p := range parts {
		w := measure(p.s, p.bold)
		t.pdf.CellFormat(w, pdfLineHeight, t.tr(p.s), "", 0, "L", false, 0, "")
	}
}

func (t *pdfTable) newPage() {
	t.pdf.AddPage()
	t.pageTitle(t)
	t.headerRow()
	t.stripe = false
}

func (t *pdfTable) headerRow() {
	labels := make([]string, len(t.cols))
	for i, c := range t.cols {
		labels[i] = c.label
	}
	t.row(labels, nil, indigoMedium, white, true, headPadding, false)
}

// dataRow draws one body row, alternating the background. boldCol is the
// column index rendered bold, or -1.
func (t *pdfTable) dataRow(values []string, boldCol int) {
	bg := white
	if t.stripe {
		bg = greyLighten4
	}
	t.stripe = !t.stripe

	bold := make([]bool, len(values))
	if boldCol >= 0 {
		bold[boldCol] = true
	}
	t.row(values, bold, bg, black, false, cellPadding, true)
}

// totalRow draws the label across the first span columns followed by values.
func (t *pdfTable) totalRow(span int, label string, values []string) {
	cells := append([]string{label}, values...)
	widths := make([]float64, 0, len(cells))
	var spanW float64
	for _, w := range t.widths[:span] {
		spanW += w
	}
	widths = append(widths, spanW)
	widths = append(widths, t.widths[span:]...)

	right := make([]bool, len(cells))
	for i := 1; i < len(cells); i++ {
		right[i] = true
	}
	t.drawRow(cells, widths, right, nil, indigoDarken2, white, true, headPadding, true)
}

func (t *pdfTable) row(values []string, bold []bool, bg, fg rgb, allBold bool, pad float64, breakable bool) {
	right := make([]bool, len(t.cols))
	for i, c := range t.cols {
		right[i] = c.right
	}
	t.drawRow(values, t.widths, right, bold, bg, fg, allBold, pad, breakable)
}

func (t *pdfTable) drawRow(values []string, widths []float64, right, bold []bool, bg, fg rgb, allBold bool, pad float64, breakable bool) {
	isBold := func(i int) bool { return allBold || (bold != nil && bold[i]) }
	setFont := func(i int) {
		style := ""
		if isBold(i) {
			style = "B"
		}
		t.pdf.SetFont(pdfFont, style, pdfFontSize)
	}

	lines := make([][]string, len(values))
	maxLines := 1
	for i, v := range values {
		setFont(i)
		lines[i] = t.wrap(v, widths[i]-2*pad)
		if len(lines[i]) == 0 {
			lines[i] = []string{""}
		}
		if len(lines[i]) > maxLines {
			maxLines = len(lines[i])
		}
	}
	height := float64(maxLines)*pdfLineHeight + 2*pad

	_, pageH := t.pdf.GetPageSize()
	if breakable && t.pdf.GetY()+height > pageH-pdfMargin-pdfFooterRoom {
		t.newPage()
	}

	x, y := pdfMargin, t.pdf.GetY()
	t.fill(bg)
	for i := range values {
		t.pdf.Rect(x, y, widths[i], height, "F")
		setFont(i)
		t.color(fg)
		align := "L"
		if right[i] {
			align = "R"
		}
		for n, line := range lines[i] {
			t.pdf.SetXY(x+pad, y+pad+float64(n)*pdfLineHeight)
			t.pdf.CellFormat(widths[i]-2*pad, pdfLineHeight, line, "", 0, align, false, 0, "")
		}
		x += widths[i]
	}
	t.pdf.SetXY(pdfMargin, y+height)
}

// wrap splits s into lines no wider than w. Lines come back as cp1252
// bytes ready for CellFormat. SplitText indexes a 256-entry width table by
// rune, so each encoded byte is widened to its own rune before splitting.
func (t *pdfTable) wrap(s string, w float64) []string {
	enc := t.tr(s)
	runes := make([]rune, len(enc))
	for i := 0; i < len(enc); i++ {
		runes[i] = rune(enc[i])
	}

	split := t.pdf.SplitText(string(runes), w)
	lines := make([]string, len(split))
	for i, line := range split {
		b := make([]byte, 0, len(line))
		for _, r := range line {
			b = append(b, byte(r))
		}
		lines[i] = string(b)
	}
	return lines
}

func (t *pdfTable) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ClientSummaryPDF renders the per-client report as an A4 landscape document.
func ClientSummaryPDF(summary report.ClientSummary, period Period, generatedAt time.Time) ([]byte, error) {
	t := newPDFTable("L", summaryColumns, generatedAt, func(t *pdfTable) {
		t.text(24, true, indigoDarken3, "Client Report")
		t.pdf.Ln(5)
		t.text(12, false, greyDarken1, period.String())
		t.rule()
	})
	t.newPage()

	for _, r := range summary.Rows {
		t.dataRow([]string{
			r.Name,
			orDash(r.Email),
			orDash(r.Phone),
			format.Money(r.HourlyRate),
			format.Number(r.TotalHours),
			fmt.Sprint(r.TaskCount),
			format.Money(r.NativeIncome),
		}, 6)
	}

	t.totalRow(4, "TOTAL", []string{
		format.Number(summary.TotalHours),
		fmt.Sprint(summary.TotalTasks),
		format.Money(summary.TotalNativeIncome),
	})
	return t.bytes()
}

// ClientDetailPDF renders one client's tasks as an A4 portrait document.
func ClientDetailPDF(detail report.ClientDetail, period Period, generatedAt time.Time) ([]byte, error) {
	c := detail.Client
	t := newPDFTable("P", detailColumns, generatedAt, func(t *pdfTable) {
		t.text(24, true, indigoDarken3, c.Name)
		t.pdf.Ln(5)
		t.contactLine(c.Email, c.Phone, format.Money(c.HourlyRate)+"/hr")
		t.pdf.Ln(3)
		t.text(11, false, greyDarken1, period.String())
		t.rule()
	})
	t.newPage()

	for _, task := range detail.Tasks {
		t.dataRow([]string{
			task.TaskDate.Format(format.ShortDate),
			task.Description,
			format.Number(task.HoursWorked),
			format.Money(task.TotalAmount()),
		}, -1)
	}

	t.totalRow(2, "TOTAL", []string{
		format.Number(detail.TotalHours),
		format.Money(detail.TotalAmount),
	})
	return t.bytes()
}

// contactLine writes the optional email and phone followed by the bold rate.
func (t *pdfTable) contactLine(email, phone, rate string) {
	t.color(black)
	t.pdf.SetFont(pdfFont, "", pdfFontSize)
	if email != "" {
		s := t.tr("Email: " + email + "   ")
		t.pdf.CellFormat(t.pdf.GetStringWidth(s), pdfLineHeight, s, "", 0, "L", false, 0, "")
	}
	if phone != "" {
		s := t.tr("Phone: " + phone + "   ")
		t.pdf.CellFormat(t.pdf.GetStringWidth(s), pdfLineHeight, s, "", 0, "L", false, 0, "")
	}
	t.pdf.SetFont(pdfFont, "B", pdfFontSize)
	t.pdf.CellFormat(0, pdfLineHeight, t.tr("Rate: "+rate), "", 1, "L", false, 0, "")
}
