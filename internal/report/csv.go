package report

import (
	"sort"
	"strings"
)

// VisibleCSV renders rows with one column per key seen in any row. Keys are
// sorted, every cell is quoted and missing values are empty.
func VisibleCSV(rows []map[string]any) []byte {
	if len(rows) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var keys []string
	for _, r := range rows {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(strings.Join(keys, ","))
	for _, r := range rows {
		b.WriteByte('\n')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(text(r[k]), `"`, `""`))
			b.WriteByte('"')
		}
	}
	return []byte(b.String())
}

// Filename names an exported report.
func Filename(period, date, ext string) string {
	if date == "" {
		date = "all"
	}
	return "report-" + period + "-" + date + "." + ext
}
