package attendance

import (
	"context"
	"log/slog"
	"math"
)

// DashboardStats are the headline counts of the admin dashboard.
type DashboardStats struct {
	Date          string `json:"date"`
	TotalStudents int    `json:"total_students"`
	PresentToday  int    `json:"present_today"`
	AbsentToday   int    `json:"absent_today"`
	TotalHolidays int    `json:"total_holidays"`
}

// StudentReport is a student's attendance history with its summary.
type StudentReport struct {
	StudentID            string   `json:"student_id"`
	Records              []Record `json:"records"`
	TotalPresent         int      `json:"total_present"`
	TotalAbsent          int      `json:"total_absent"`
	AttendancePercentage float64  `json:"attendance_percentage"`
}

// Percentage is present / (present + absent) * 100 rounded to one decimal, or 0 when
// nothing has been recorded.
func Percentage(present, absent int) float64 {
	total := present + absent
	if total <= 0 {
		return 0
	}
	return math.Round(float64(present)/float64(total)*1000) / 10
}

// Summarize counts statuses in records.
func Summarize(records []Record) (present, absent int) {
	for _, rec := range records {
		switch rec.Status {
		case StatusPresent:
			present++
		case StatusAbsent:
			absent++
		}
	}
	return present, absent
}

// Dashboard returns today's present/absent record counts together with the roster and
// holiday totals, which do not depend on the date.
func (s *Service) Dashboard(ctx context.Context) (DashboardStats, error) {
	date := s.Today()
	counts, err := s.DayCounts(ctx, date)
	if err != nil {
		return DashboardStats{}, err
	}
	students, err := s.roster.Count(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	holidays, err := s.holidays.Count(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	return DashboardStats{
		Date:          date,
		TotalStudents: students,
		PresentToday:  counts.Present,
		AbsentToday:   counts.Absent,
		TotalHolidays: holidays,
	}, nil
}

// DayCounts returns the status counts of date, served from the cache when possible.
func (s *Service) DayCounts(ctx context.Context, date string) (DayCounts, error) {
	if counts, ok, err := s.cache.Get(ctx, date); err != nil {
		slog.Warn("read day counts cache failed", "date", date, "error", err)
	} else if ok {
		return counts, nil
	}
	return s.RefreshDayCounts(ctx, date)
}

// RefreshDayCounts recomputes the counts of date from storage and caches them.
func (s *Service) RefreshDayCounts(ctx context.Context, date string) (DayCounts, error) {
	counts, err := s.repo.CountByStatus(ctx, date)
	if err != nil {
		return DayCounts{}, err
	}
	if err := s.cache.Set(ctx, date, counts); err != nil {
		slog.Warn("write day counts cache failed", "date", date, "error", err)
	}
	return counts, nil
}

// StudentStats returns the full history and attendance percentage of a student.
func (s *Service) StudentStats(ctx context.Context, studentID string) (StudentReport, error) {
	if _, err := s.roster.Get(ctx, studentID); err != nil {
		return StudentReport{}, err
	}
	records, err := s.repo.ListForStudent(ctx, studentID)
	if err != nil {
		return StudentReport{}, err
	}
	present, absent := Summarize(records)
	return StudentReport{
		StudentID:            studentID,
		Records:              records,
		TotalPresent:         present,
		TotalAbsent:          absent,
		AttendancePercentage: Percentage(present, absent),
	}, nil
}
