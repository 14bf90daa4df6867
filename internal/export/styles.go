package export

import (
	"github.com/xuri/excelize/v2"
)

// Spreadsheet palette.
const (
	colorHeader = "667EEA"
	colorStripe = "F8F9FA"
	colorTotal  = "764BA2"
	colorWhite  = "FFFFFF"
	colorBorder = "000000"

	moneyFormat = "$#,##0.00"
	hoursFormat = "#,##0.00"
)

// cellStyle describes one combination of cell formatting.
type cellStyle struct {
	bold      bool
	size      float64
	fontColor string
	fill      string
	numFmt    string
	center    bool
	border    bool
}

// styleCache registers each distinct cellStyle once per workbook.
type styleCache struct {
	f   *excelize.File
	ids map[cellStyle]int
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{f: f, ids: make(map[cellStyle]int)}
}

func (c *styleCache) id(s cellStyle) (int, error) {
	if id, ok := c.ids[s]; ok {
		return id, nil
	}

	size := s.size
	if size == 0 {
		size = 11
	}
	style := &excelize.Style{
		Font: &excelize.Font{Bold: s.bold, Size: size, Color: s.fontColor},
	}
	if s.fill != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{s.fill}}
	}
	if s.numFmt != "" {
		numFmt := s.numFmt
		style.CustomNumFmt = &numFmt
	}
	if s.center {
		style.Alignment = &excelize.Alignment{Horizontal: "center"}
	}
	if s.border {
		style.Border = []excelize.Border{
			{Type: "left", Color: colorBorder, Style: 1},
			{Type: "top", Color: colorBorder, Style: 1},
			{Type: "right", Color: colorBorder, Style: 1},
			{Type: "bottom", Color: colorBorder, Style: 1},
		}
	}

	id, err := c.f.NewStyle(style)
	if err != nil {
		return 0, err
	}
	c.ids[s] = id
	return id, nil
}
