package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/andy/billing/internal/format"
)

// MIME types of rendered documents.
const (
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEPDF  = "application/pdf"
)

// Format is a document type.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts "xlsx", "excel" or "pdf"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// MIMEType returns the content type of the format
func (f Format) MIMEType() string {
	if f == FormatPDF {
		return MIMEPDF
	}
	return MIMEXLSX
}

// File is a rendered document ready to be written or served.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Period is the reporting window shown on a document. Either bound may be nil.
type Period struct {
	Start *time.Time
	End   *time.Time
}

// String renders the window as "Jan 02, 2006 - Jan 31, 2006", using
// "All time" and "Present" for open bounds.
func (p Period) String() string {
	return format.Date(p.Start, "All time") + " - " + format.Date(p.End, "Present")
}

// FileName builds "{entity}_{kind}_{yyyyMMdd_HHmmss}.{ext}". Spaces in entity
// become underscores; an empty entity is omitted.
func FileName(entity, kind string, f Format, now time.Time) string {
	name := kind + "_" + now.Format(format.FileStamp) + "." + string(f)
	if entity == "" {
		return name
	}
	return strings.ReplaceAll(entity, " ", "_") + "_" + name
}
