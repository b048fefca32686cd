package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"collegeattendance/internal/roster"
	"collegeattendance/internal/validate"
)

// ReportFilter selects records for the records view and exports. Start and End are
// inclusive ISO dates; an empty Section or roster.AllSections disables the section filter.
type ReportFilter struct {
	Start   string
	End     string
	Section string
}

// ExportColumns are the header cells of an exported report, in order.
var ExportColumns = []string{"Date", "Roll Number", "Name", "Year", "Section", "Status", "Type"}

// ExportRow is one flattened report line.
type ExportRow struct {
	Date       string
	RollNumber string
	Name       string
	Year       string
	Section    string
	Status     string
	Type       string
}

// Values returns the cells in ExportColumns order.
func (r ExportRow) Values() []string {
	return []string{r.Date, r.RollNumber, r.Name, r.Year, r.Section, r.Status, r.Type}
}

// Records returns the records between Start and End, filtered by section after retrieval.
func (s *Service) Records(ctx context.Context, f ReportFilter) ([]ReportRecord, error) {
	if _, err := validate.Date("start", f.Start); err != nil {
		return nil, err
	}
	if _, err := validate.Date("end", f.End); err != nil {
		return nil, err
	}
	records, err := s.repo.ListRange(ctx, f.Start, f.End)
	if err != nil {
		return nil, err
	}
	return FilterSection(records, f.Section), nil
}

// FilterSection keeps records whose student is in section. The sentinel and "" keep all.
func FilterSection(records []ReportRecord, section string) []ReportRecord {
	if section == "" || section == roster.AllSections {
		return records
	}
	out := make([]ReportRecord, 0, len(records))
	for _, rec := range records {
		if rec.Student.Section == section {
			out = append(out, rec)
		}
	}
	return out
}

// ExportRows flattens records one to one into export lines.
func ExportRows(records []ReportRecord) []ExportRow {
	rows := make([]ExportRow, 0, len(records))
	for _, rec := range records {
		kind := "Face Recognition"
		if rec.IsManual {
			kind = "Manual"
		}
		rows = append(rows, ExportRow{
			Date:       displayDate(rec.Date),
			RollNumber: rec.Student.RollNumber,
			Name:       rec.Student.Name,
			Year:       rec.Student.Class,
			Section:    rec.Student.Section,
			Status:     strings.ToUpper(string(rec.Status)),
			Type:       kind,
		})
	}
	return rows
}

// ExportFilename names a report covering start..end, e.g. attendance_2024-01-01_to_2024-01-31.xlsx.
func ExportFilename(start, end, ext string) string {
	return fmt.Sprintf("attendance_%s_to_%s.%s", start, end, ext)
}

func displayDate(iso string) string {
	d, err := time.Parse(validate.DateLayout, iso)
	if err != nil {
		return iso
	}
	return d.Format("02/01/2006")
}
