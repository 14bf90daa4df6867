package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/andy/billing/internal/export"
	"github.com/andy/billing/internal/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.reports.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, dashboard)
}

func (s *Server) handleClientReport(w http.ResponseWriter, r *http.Request) {
	filter, err := queryFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := s.reports.ClientReport(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		writeError(w, r, err)
		return
	}

	monthly, err := s.reports.MonthlyBreakdown(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, monthly)
}

func (s *Server) handleClientDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := queryRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	detail, err := s.reports.ClientDetail(r.Context(), id, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, newClientDetailResponse(detail))
}

func (s *Server) handleExportSummary(w http.ResponseWriter, r *http.Request) {
	format, err := pathFormat(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := queryRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	clientID, err := queryInt(r, "clientId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	file, err := s.exports.Summary(r.Context(), format, int64(clientID), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeFile(w, r, file)
}

func (s *Server) handleExportClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	format, err := pathFormat(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := queryRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	file, err := s.exports.ClientDetail(r.Context(), format, id, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeFile(w, r, file)
}

func pathFormat(r *http.Request) (export.Format, error) {
	f, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		return "", badRequest(err.Error())
	}
	return f, nil
}

// writeFile sends a rendered document as an attachment.
func writeFile(w http.ResponseWriter, r *http.Request, file *export.File) {
	w.Header().Set("Content-Type", file.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(file.Data); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "export write failed", log.FieldFile, file.Name, log.FieldError, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "export sent", log.FieldFile, file.Name, log.FieldBytes, len(file.Data))
}
