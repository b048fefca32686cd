package attendance

import (
	"context"
	"sort"
	"sync"

	"collegeattendance/internal/queue"
	"collegeattendance/internal/roster"
)

// memStore mirrors the table's uniqueness rules in memory.
type memStore struct {
	mu        sync.Mutex
	records   []Record
	students  map[string]roster.Student
	failNext  error
	countErr  error
	countHits int
}

func newMemStore(students ...roster.Student) *memStore {
	m := &memStore{students: map[string]roster.Student{}}
	for _, st := range students {
		m.students[st.ID] = st
	}
	return m
}

func (m *memStore) ReplaceDay(ctx context.Context, date string, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	for _, rec := range records {
		if _, ok := m.students[rec.StudentID]; !ok {
			return ErrUnknownStudent
		}
	}
	kept := m.records[:0:0]
	for _, rec := range m.records {
		if rec.Date != date {
			kept = append(kept, rec)
		}
	}
	m.records = append(kept, records...)
	return nil
}

func samePeriod(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (m *memStore) Insert(ctx context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[rec.StudentID]; !ok {
		return Record{}, ErrUnknownStudent
	}
	for _, existing := range m.records {
		if existing.StudentID == rec.StudentID && existing.Date == rec.Date && samePeriod(existing.Period, rec.Period) {
			return Record{}, ErrAlreadyRecorded
		}
	}
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *memStore) ListForDate(ctx context.Context, date string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, rec := range m.records {
		if rec.Date == date {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memStore) ListForStudent(ctx context.Context, studentID string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Record{}
	for _, rec := range m.records {
		if rec.StudentID == studentID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *memStore) CountByStatus(ctx context.Context, date string) (DayCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countHits++
	if m.countErr != nil {
		return DayCounts{}, m.countErr
	}
	var c DayCounts
	for _, rec := range m.records {
		if rec.Date != date {
			continue
		}
		switch rec.Status {
		case StatusPresent:
			c.Present++
		case StatusAbsent:
			c.Absent++
		}
	}
	return c, nil
}

func (m *memStore) ListRange(ctx context.Context, start, end string) ([]ReportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []ReportRecord{}
	for _, rec := range m.records {
		if rec.Date < start || rec.Date > end {
			continue
		}
		st := m.students[rec.StudentID]
		out = append(out, ReportRecord{
			ID: rec.ID, Date: rec.Date, Period: rec.Period, Status: rec.Status, IsManual: rec.IsManual,
			Student: StudentRef{RollNumber: st.RollNumber, Name: st.Name, Class: st.Class, Section: st.SectionName()},
		})
	}
	return out, nil
}

// stored returns (student, status) pairs of date for comparisons.
func (m *memStore) stored(date string) map[string]Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]Status{}
	for _, rec := range m.records {
		if rec.Date == date {
			out[rec.StudentID] = rec.Status
		}
	}
	return out
}

// removeStudent deletes a student and cascades their records.
func (m *memStore) removeStudent(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.students, id)
	kept := m.records[:0:0]
	for _, rec := range m.records {
		if rec.StudentID != id {
			kept = append(kept, rec)
		}
	}
	m.records = kept
}

type memRoster struct{ store *memStore }

func (r memRoster) Get(ctx context.Context, id string) (roster.Student, error) {
	st, ok := r.store.students[id]
	if !ok {
		return roster.Student{}, roster.ErrStudentNotFound
	}
	return st, nil
}

func (r memRoster) List(ctx context.Context, withPhotoOnly bool) ([]roster.Student, error) {
	var out []roster.Student
	for _, st := range r.store.students {
		if withPhotoOnly && !st.HasPhoto() {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

func (r memRoster) Count(ctx context.Context) (int, error) { return len(r.store.students), nil }

type holidayCount int

func (h holidayCount) Count(ctx context.Context) (int, error) { return int(h), nil }

type recordingPublisher struct {
	msgs []queue.Message
}

func (p *recordingPublisher) Publish(ctx context.Context, msg queue.Message) error {
	p.msgs = append(p.msgs, msg)
	return nil
}
