package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sagipero/admin-console/internal/report"
	"github.com/sagipero/admin-console/internal/sagipero"
)

// ErrNoReportData is returned when a report has no emergencies to export.
var ErrNoReportData = errors.New("no data to export")

// Report prints report metrics for the JSON format, or downloads a csv or
// pdf export into dir.
func (a *App) Report(ctx context.Context, q sagipero.ReportQuery, dir string) error {
	if q.Period == "" {
		q.Period = sagipero.PeriodDaily
	}
	if !sagipero.ValidPeriod(q.Period) {
		return fmt.Errorf("unknown period %q", q.Period)
	}
	if q.Date == "" {
		q.Date = a.now().In(a.Loc).Format("2006-01-02")
	}
	c, err := a.authed()
	if err != nil {
		return err
	}

	switch q.Format {
	case "", sagipero.FormatJSON:
		return a.reportMetrics(ctx, c, q)
	case sagipero.FormatCSV, sagipero.FormatPDF:
		return a.reportExport(ctx, c, q, dir)
	default:
		return fmt.Errorf("unknown format %q", q.Format)
	}
}

func (a *App) reportMetrics(ctx context.Context, c *sagipero.Client, q sagipero.ReportQuery) error {
	body, err := c.ReportSummary(ctx, q)
	if err != nil {
		return a.check(ctx, "Failed to load report", err)
	}
	m, err := report.ComputeMetrics(body)
	if err != nil {
		return err
	}
	if !m.IsList() {
		fmt.Fprintln(a.out, string(m.Raw))
		return nil
	}

	fmt.Fprintf(a.out, "Report %s %s: %d emergencies\n", q.Period, q.Date, m.Total)
	printCounts(a, "By priority", m.ByPriority)
	printCounts(a, "By status", m.ByStatus)
	printRanked(a, "Top barangays", m.TopBarangays)
	printRanked(a, "Top reporters", m.TopReporters)
	printCounts(a, "Timeline", m.Timeline)
	return nil
}

func (a *App) reportExport(ctx context.Context, c *sagipero.Client, q sagipero.ReportQuery, dir string) error {
	exp, err := c.ExportReport(ctx, q)
	if err != nil {
		return a.check(ctx, "Export failed", err)
	}
	if exp.URL != "" {
		fmt.Fprintln(a.out, exp.URL)
		a.Toasts.Success("", "Report link ready")
		return nil
	}
	if len(exp.Data) == 0 {
		a.Toasts.Info("", "No data to export")
		return ErrNoReportData
	}

	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, report.Filename(q.Period, q.Date, q.Format))
	if err := os.WriteFile(path, exp.Data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintln(a.out, path)
	a.Toasts.Success("", fmt.Sprintf("%s ready", formatLabel(q.Format)))
	return nil
}

func formatLabel(format string) string {
	if format == sagipero.FormatPDF {
		return "PDF"
	}
	return "CSV"
}

func printCounts(a *App, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(a.out, "\n%s\n", title)
	for _, k := range keys {
		fmt.Fprintf(a.out, "  %-24s %d\n", k, counts[k])
	}
}

func printRanked(a *App, title string, counts []report.Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(a.out, "\n%s\n", title)
	for _, c := range counts {
		fmt.Fprintf(a.out, "  %-24s %d\n", c.Name, c.Count)
	}
}
