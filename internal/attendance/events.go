package attendance

import (
	"context"
	"log/slog"

	"collegeattendance/internal/queue"
	"collegeattendance/internal/validate"
)

// Apply rebuilds the cached counts named by an attendance.changed event. Other event
// types are ignored.
func (s *Service) Apply(ctx context.Context, msg queue.Message) {
	if msg.Type != queue.TopicAttendanceChanged {
		slog.Debug("ignoring message", "type", msg.Type)
		return
	}
	date := string(msg.Body)
	if _, err := validate.Date("date", date); err != nil {
		slog.Warn("bad attendance.changed body", "body", date)
		return
	}
	counts, err := s.RefreshDayCounts(ctx, date)
	if err != nil {
		slog.Error("refresh day counts failed", "date", date, "error", err)
		return
	}
	slog.Info("day counts refreshed", "date", date, "present", counts.Present, "absent", counts.Absent)
}

// Drain applies messages until ch is closed.
func (s *Service) Drain(ctx context.Context, ch <-chan queue.Message) {
	for msg := range ch {
		s.Apply(ctx, msg)
	}
}

// StudentRemoved drops today's cached counts after a student and their attendance were
// deleted. The dashboard only reads today's counts from the cache.
func (s *Service) StudentRemoved(ctx context.Context, studentID string) {
	slog.Info("student removed, refreshing today's counts", "student_id", studentID)
	s.changed(ctx, s.Today())
}
