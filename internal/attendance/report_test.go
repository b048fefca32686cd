package attendance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collegeattendance/internal/roster"
	"collegeattendance/internal/validate"
)

func sampleReport() []ReportRecord {
	one := 1
	return []ReportRecord{
		{ID: "a1", Date: "2024-01-10", Status: StatusPresent, IsManual: true,
			Student: StudentRef{RollNumber: "101", Name: "Asha", Class: "2nd Year", Section: "CSE-A"}},
		{ID: "a2", Date: "2024-01-10", Period: &one, Status: StatusPresent, IsManual: false,
			Student: StudentRef{RollNumber: "102", Name: "Ravi", Class: "2nd Year", Section: "CSE-B"}},
		{ID: "a3", Date: "2024-01-09", Status: StatusAbsent, IsManual: true,
			Student: StudentRef{RollNumber: "103", Name: "Meena", Class: "1st Year", Section: "CSE-A"}},
	}
}

func TestFilterSection(t *testing.T) {
	records := sampleReport()

	assert.Len(t, FilterSection(records, roster.AllSections), 3)
	assert.Len(t, FilterSection(records, ""), 3)

	cseA := FilterSection(records, "CSE-A")
	require.Len(t, cseA, 2)
	for _, rec := range cseA {
		assert.Equal(t, "CSE-A", rec.Student.Section)
	}
	assert.Empty(t, FilterSection(records, "Mech"))
}

func TestExportRows(t *testing.T) {
	rows := ExportRows(sampleReport())
	require.Len(t, rows, 3)

	assert.Equal(t, ExportRow{
		Date: "10/01/2024", RollNumber: "101", Name: "Asha", Year: "2nd Year",
		Section: "CSE-A", Status: "PRESENT", Type: "Manual",
	}, rows[0])
	assert.Equal(t, "Face Recognition", rows[1].Type)
	assert.Equal(t, "ABSENT", rows[2].Status)
	assert.Len(t, rows[0].Values(), len(ExportColumns))
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "attendance_2024-01-01_to_2024-01-31.xlsx", ExportFilename("2024-01-01", "2024-01-31", "xlsx"))
}

func TestRecordsFiltersAfterRetrieval(t *testing.T) {
	svc, _, _ := newTestService(t, rosterOf()...)
	ctx := context.Background()

	_, err := svc.SaveManual(ctx, "2024-01-05", map[string]Status{r1: StatusPresent, r2: StatusAbsent}, "")
	require.NoError(t, err)
	_, err = svc.SaveManual(ctx, "2024-01-10", map[string]Status{r1: StatusAbsent}, "")
	require.NoError(t, err)

	all, err := svc.Records(ctx, ReportFilter{Start: "2024-01-05", End: "2024-01-10", Section: roster.AllSections})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	cseB, err := svc.Records(ctx, ReportFilter{Start: "2024-01-01", End: "2024-01-31", Section: "CSE-B"})
	require.NoError(t, err)
	require.Len(t, cseB, 1)
	assert.Equal(t, "102", cseB[0].Student.RollNumber)

	inverted, err := svc.Records(ctx, ReportFilter{Start: "2024-01-31", End: "2024-01-01"})
	require.NoError(t, err)
	assert.Empty(t, inverted)

	_, err = svc.Records(ctx, ReportFilter{Start: "", End: "2024-01-01"})
	assert.ErrorIs(t, err, validate.ErrInvalid)
}
