package sagipero

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Report periods.
const (
	PeriodDaily     = "daily"
	PeriodWeekly    = "weekly"
	PeriodQuarterly = "quarterly"
	PeriodAnnual    = "annual"
)

// Report formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// ValidPeriod reports whether p is a known report period.
func ValidPeriod(p string) bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodQuarterly, PeriodAnnual:
		return true
	}
	return false
}

// ReportQuery selects a report.
type ReportQuery struct {
	Period string
	Date   string
	Format string
}

func (q ReportQuery) values() url.Values {
	v := url.Values{}
	if q.Period != "" {
		v.Set("period", q.Period)
	}
	if q.Date != "" {
		v.Set("date", q.Date)
	}
	if q.Format != "" {
		v.Set("format", q.Format)
	}
	return v
}

// Export is a downloadable report. The backend either returns a link or the
// file itself.
type Export struct {
	URL         string
	Data        []byte
	ContentType string
}

// ReportSummary fetches the JSON report body for the query.
func (c *Client) ReportSummary(ctx context.Context, q ReportQuery) (json.RawMessage, error) {
	q.Format = ""
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/reports/summary", Query: q.values()})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body), nil
}

// ExportReport downloads a csv or pdf report.
func (c *Client) ExportReport(ctx context.Context, q ReportQuery) (*Export, error) {
	if q.Format != FormatCSV && q.Format != FormatPDF {
		return nil, fmt.Errorf("unsupported export format %q", q.Format)
	}
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/reports/summary", Query: q.values()})
	if err != nil {
		return nil, err
	}
	ct := resp.ContentType()
	if strings.Contains(ct, "json") {
		var env struct {
			URL string `json:"url"`
		}
		if err := resp.Decode(&env); err != nil {
			return nil, err
		}
		if env.URL != "" {
			return &Export{URL: env.URL, ContentType: ct}, nil
		}
	}
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &Export{Data: resp.Body, ContentType: ct}, nil
}
