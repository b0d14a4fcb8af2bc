package domain

import "time"

// Report is a rendered dashboard view ready for text output.
type Report struct {
	Title    string
	Source   string
	LoadedAt time.Time
	Sections []ReportSection
	Notes    []string
}

// ReportSection is one table of a report.
type ReportSection struct {
	Title   string
	Columns []string
	Rows    [][]string
	// Empty is printed instead of the table when there are no rows.
	Empty string
}
