package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sagipero/admin-console/internal/console/api/response"
	"github.com/sagipero/admin-console/internal/console/session"
	"github.com/sagipero/admin-console/internal/report"
	"github.com/sagipero/admin-console/internal/sagipero"
)

type Report struct {
	archiver *report.Archiver
}

// NewReport builds the report handler. A nil archiver disables archiving.
func NewReport(archiver *report.Archiver) *Report {
	return &Report{archiver: archiver}
}

func reportQuery(r *http.Request) (sagipero.ReportQuery, error) {
	q := r.URL.Query()
	rq := sagipero.ReportQuery{
		Period: q.Get("period"),
		Date:   q.Get("date"),
		Format: strings.ToLower(q.Get("format")),
	}
	if rq.Period == "" {
		rq.Period = sagipero.PeriodDaily
	}
	if !sagipero.ValidPeriod(rq.Period) {
		return rq, fmt.Errorf("invalid period %q", rq.Period)
	}
	if rq.Format == "" {
		rq.Format = sagipero.FormatJSON
	}
	switch rq.Format {
	case sagipero.FormatJSON, sagipero.FormatCSV, sagipero.FormatPDF:
	default:
		return rq, fmt.Errorf("invalid format %q", rq.Format)
	}
	return rq, nil
}

type summaryResponse struct {
	Period  string          `json:"period"`
	Date    string          `json:"date,omitempty"`
	Metrics *report.Metrics `json:"metrics"`
}

// Summary returns report metrics as JSON, or the csv/pdf export.
func (h *Report) Summary(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	q, err := reportQuery(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.Format != sagipero.FormatJSON {
		h.export(w, r, sess, q)
		return
	}

	body, err := sess.Client.ReportSummary(r.Context(), q)
	if err != nil {
		fail(w, r, sess, "Failed to fetch report", err)
		return
	}
	m, err := report.ComputeMetrics(body)
	if err != nil {
		fail(w, r, sess, "Failed to fetch report", err)
		return
	}
	response.WriteJSON(w, http.StatusOK, summaryResponse{Period: q.Period, Date: q.Date, Metrics: m})
}

type exportLink struct {
	URL string `json:"url"`
}

func (h *Report) export(w http.ResponseWriter, r *http.Request, sess *session.Session, q sagipero.ReportQuery) {
	exp, err := sess.Client.ExportReport(r.Context(), q)
	if err != nil {
		fail(w, r, sess, "Failed to fetch report", err)
		return
	}
	if exp.URL != "" {
		response.WriteJSON(w, http.StatusOK, exportLink{URL: exp.URL})
		return
	}

	if key, err := h.archiver.Archive(r.Context(), q.Period, q.Date, q.Format, exp.ContentType, exp.Data); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("report archive failed")
	} else if key != "" {
		w.Header().Set("X-Report-Archive-Key", key)
	}

	done(sess, strings.ToUpper(q.Format)+" ready")
	writeAttachment(w, report.Filename(q.Period, q.Date, q.Format), exp.ContentType, exp.Data)
}

// VisibleCSV exports the rows behind the metrics as CSV.
func (h *Report) VisibleCSV(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "csv")
}

// RawJSON exports the report body as a JSON file.
func (h *Report) RawJSON(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "json")
}

func (h *Report) download(w http.ResponseWriter, r *http.Request, ext string) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	q, err := reportQuery(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	body, err := sess.Client.ReportSummary(r.Context(), q)
	if err != nil {
		fail(w, r, sess, "Failed to fetch report", err)
		return
	}
	m, err := report.ComputeMetrics(body)
	if err != nil {
		noData(w, sess)
		return
	}

	name := report.Filename(q.Period, q.Date, ext)
	if ext == "json" {
		writeAttachment(w, name, "application/json", body)
		return
	}
	if !m.IsList() || len(m.Rows) == 0 {
		noData(w, sess)
		return
	}
	writeAttachment(w, name, "text/csv", report.VisibleCSV(m.Rows))
}

func noData(w http.ResponseWriter, sess *session.Session) {
	sess.Toasts.Info("", "No data to export")
	response.WriteError(w, http.StatusUnprocessableEntity, "No data to export")
}

func writeAttachment(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
