package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const ReportDateLayout = "20060102"

// ParseReportDate parses the YYYYMMDD reporting date used throughout file
// names and input paths.
func ParseReportDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(ReportDateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid report date %q: %w", dateStr, err)
	}
	return t, nil
}

// PriorMonthEnd returns the last calendar day of the month before t.
// Reporting dates are month-end snapshots, so "one period back" always means
// the previous month-end regardless of how many days the months have.
func PriorMonthEnd(t time.Time) time.Time {
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return firstOfMonth.AddDate(0, 0, -1)
}

// FormatReportLabel renders a date the way upstream spreadsheets embed it in
// column headers: M/D/YY without zero padding, e.g. "11/30/25".
func FormatReportLabel(t time.Time) string {
	return fmt.Sprintf("%d/%d/%02d", int(t.Month()), t.Day(), t.Year()%100)
}

// ReportDateLabels resolves a YYYYMMDD date to the current and prior-month
// header labels.
func ReportDateLabels(dateStr string) (current string, prior string, err error) {
	t, err := ParseReportDate(dateStr)
	if err != nil {
		return "", "", err
	}
	return FormatReportLabel(t), FormatReportLabel(PriorMonthEnd(t)), nil
}

// CopyFile copies src to dst, creating parent directories as needed.
// Used for the best-effort versioned archival copies.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
