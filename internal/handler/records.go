package handler

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"collegeattendance/internal/attendance"
	"collegeattendance/internal/export"
	"collegeattendance/internal/metrics"
	"collegeattendance/internal/validate"
)

// filter reads start, end and section. The range defaults to the current month so far.
func (h *Handler) filter(c *gin.Context) attendance.ReportFilter {
	today := h.attendance.Today()
	start := today
	if d, err := time.Parse(validate.DateLayout, today); err == nil {
		start = d.AddDate(0, 0, 1-d.Day()).Format(validate.DateLayout)
	}
	return attendance.ReportFilter{
		Start:   c.DefaultQuery("start", start),
		End:     c.DefaultQuery("end", today),
		Section: c.Query("section"),
	}
}

func (h *Handler) Records(c *gin.Context) {
	f := h.filter(c)
	records, err := h.attendance.Records(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"start": f.Start, "end": f.End, "section": f.Section, "records": records})
}

// Export downloads the filtered records as xlsx (default) or csv.
func (h *Handler) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", export.FormatXLSX))
	if format != export.FormatXLSX && format != export.FormatCSV {
		badRequest(c, "format must be xlsx or csv")
		return
	}
	f := h.filter(c)
	records, err := h.attendance.Records(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}

	exportRows := attendance.ExportRows(records)
	rows := make([][]string, len(exportRows))
	for i, r := range exportRows {
		rows[i] = r.Values()
	}

	var buf bytes.Buffer
	if format == export.FormatCSV {
		err = export.WriteCSV(&buf, attendance.ExportColumns, rows)
	} else {
		err = export.WriteXLSX(&buf, attendance.ExportColumns, rows)
	}
	if err != nil {
		fail(c, err)
		return
	}
	metrics.Exports.WithLabelValues(format).Inc()

	c.Header("Content-Disposition", `attachment; filename="`+attendance.ExportFilename(f.Start, f.End, format)+`"`)
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}
