// Package store is the authoritative in-memory home of students, monitors and
// classes. Entities are addressed by id only; every value handed out is a copy.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/padel-board-api/internal/models"
)

// ErrNotFound is returned when an id is not present in the store.
var ErrNotFound = errors.New("store: entity not found")

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides id generation, mainly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		if fn != nil {
			s.now = fn
		}
	}
}

// Store holds the three entity collections behind a single lock.
type Store struct {
	mu       sync.RWMutex
	students map[string]models.Student
	monitors map[string]models.Monitor
	classes  map[string]models.Class

	newID func() string
	now   func() time.Time
}

// New builds an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		students: make(map[string]models.Student),
		monitors: make(map[string]models.Monitor),
		classes:  make(map[string]models.Class),
		newID:    NewID,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// NewID returns a UUIDv7: a millisecond timestamp followed by random bits.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ReplaceAll swaps the whole dataset, as done after a load.
func (s *Store) ReplaceAll(ds models.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.students = make(map[string]models.Student, len(ds.Students))
	for _, st := range ds.Students {
		s.students[st.ID] = st
	}
	s.monitors = make(map[string]models.Monitor, len(ds.Monitors))
	for _, m := range ds.Monitors {
		s.monitors[m.ID] = m
	}
	s.classes = make(map[string]models.Class, len(ds.Classes))
	for _, c := range ds.Classes {
		if c.Students == nil {
			c.Students = []string{}
		}
		s.classes[c.ID] = c.Clone()
	}
}

// Snapshot returns a deep copy of the current dataset in stable order.
func (s *Store) Snapshot() models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Dataset{
		Students: s.listStudentsLocked(),
		Classes:  s.listClassesLocked(),
		Monitors: s.listMonitorsLocked(),
	}
}

// Students

// AddStudent assigns an id and registration date and stores the student.
func (s *Store) AddStudent(st models.Student) models.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.ID = s.newID()
	st.RegisteredDate = s.now().UTC()
	s.students[st.ID] = st
	return st
}

// GetStudent looks a student up by id.
func (s *Store) GetStudent(id string) (models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.students[id]
	if !ok {
		return models.Student{}, ErrNotFound
	}
	return st, nil
}

// HasStudent reports whether id is a known student.
func (s *Store) HasStudent(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.students[id]
	return ok
}

// ListStudents returns students ordered by name.
func (s *Store) ListStudents() []models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listStudentsLocked()
}

// UpdateStudent shallow-merges the non-nil patch fields.
func (s *Store) UpdateStudent(id string, patch models.StudentPatch) (models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[id]
	if !ok {
		return models.Student{}, ErrNotFound
	}
	if patch.Name != nil {
		st.Name = *patch.Name
	}
	if patch.Email != nil {
		st.Email = patch.Email
	}
	if patch.Phone != nil {
		st.Phone = patch.Phone
	}
	if patch.Level != nil {
		st.Level = patch.Level
	}
	s.students[id] = st
	return st, nil
}

// DeleteStudent removes the student and prunes it from every class roster.
// It returns how many classes were touched.
func (s *Store) DeleteStudent(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[id]; !ok {
		return 0, ErrNotFound
	}
	delete(s.students, id)

	touched := 0
	for cid, c := range s.classes {
		kept := c.Students[:0:0]
		for _, sid := range c.Students {
			if sid != id {
				kept = append(kept, sid)
			}
		}
		if len(kept) != len(c.Students) {
			c.Students = kept
			s.classes[cid] = c
			touched++
		}
	}
	return touched, nil
}

// StudentClassCount counts the classes a student is enrolled in.
func (s *Store) StudentClassCount(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, c := range s.classes {
		for _, sid := range c.Students {
			if sid == id {
				count++
				break
			}
		}
	}
	return count
}

// Monitors

// AddMonitor assigns an id and creation date and stores the monitor.
func (s *Store) AddMonitor(m models.Monitor) models.Monitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.newID()
	m.Role = models.MonitorRole
	m.CreatedDate = s.now().UTC()
	s.monitors[m.ID] = m
	return m
}

// GetMonitor looks a monitor up by id.
func (s *Store) GetMonitor(id string) (models.Monitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.monitors[id]
	if !ok {
		return models.Monitor{}, ErrNotFound
	}
	return m, nil
}

// ListMonitors returns monitors ordered by name.
func (s *Store) ListMonitors() []models.Monitor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listMonitorsLocked()
}

// UpdateMonitor merges the patch and keeps the denormalised monitorName of its classes in step.
func (s *Store) UpdateMonitor(id string, patch models.MonitorPatch) (models.Monitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.monitors[id]
	if !ok {
		return models.Monitor{}, ErrNotFound
	}
	if patch.Name != nil {
		m.Name = *patch.Name
		for cid, c := range s.classes {
			if c.HasMonitor(id) {
				name := m.Name
				c.MonitorName = &name
				s.classes[cid] = c
			}
		}
	}
	if patch.Email != nil {
		m.Email = patch.Email
	}
	if patch.Phone != nil {
		m.Phone = patch.Phone
	}
	s.monitors[id] = m
	return m, nil
}

// DeleteMonitor removes the monitor and every class assigned to it.
// It returns the number of classes removed.
func (s *Store) DeleteMonitor(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.monitors[id]; !ok {
		return 0, ErrNotFound
	}
	delete(s.monitors, id)
	removed := 0
	for cid, c := range s.classes {
		if c.HasMonitor(id) {
			delete(s.classes, cid)
			removed++
		}
	}
	return removed, nil
}

// StatsForMonitor counts the monitor's classes and the distinct students across them.
func (s *Store) StatsForMonitor(id string) models.MonitorStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	stats := models.MonitorStats{}
	for _, c := range s.classes {
		if !c.HasMonitor(id) {
			continue
		}
		stats.TotalClasses++
		for _, sid := range c.Students {
			seen[sid] = struct{}{}
		}
	}
	stats.TotalStudents = len(seen)
	return stats
}

// ClassesByMonitor lists the classes assigned to a monitor.
func (s *Store) ClassesByMonitor(id string) []models.Class {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Class
	for _, c := range s.listClassesLocked() {
		if c.HasMonitor(id) {
			out = append(out, c)
		}
	}
	return out
}

// Classes

// AddClass stores a class, generating an id when absent.
func (s *Store) AddClass(c models.Class) models.Class {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = s.newID()
	}
	if c.Students == nil {
		c.Students = []string{}
	}
	c = c.Clone()
	s.classes[c.ID] = c
	return c.Clone()
}

// GetClass looks a class up by id.
func (s *Store) GetClass(id string) (models.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.classes[id]
	if !ok {
		return models.Class{}, ErrNotFound
	}
	return c.Clone(), nil
}

// ListClasses returns every class ordered by date then start time.
func (s *Store) ListClasses() []models.Class {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listClassesLocked()
}

// UpdateClass applies mutate to a copy of the class and stores the result.
func (s *Store) UpdateClass(id string, mutate func(*models.Class)) (models.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.classes[id]
	if !ok {
		return models.Class{}, ErrNotFound
	}
	c = c.Clone()
	if mutate != nil {
		mutate(&c)
	}
	s.classes[id] = c
	return c.Clone(), nil
}

// DeleteClass removes a class.
func (s *Store) DeleteClass(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.classes[id]; !ok {
		return ErrNotFound
	}
	delete(s.classes, id)
	return nil
}

func (s *Store) listStudentsLocked() []models.Student {
	out := make([]models.Student, 0, len(s.students))
	for _, st := range s.students {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *Store) listMonitorsLocked() []models.Monitor {
	out := make([]models.Monitor, 0, len(s.monitors))
	for _, m := range s.monitors {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (s *Store) listClassesLocked() []models.Class {
	out := make([]models.Class, 0, len(s.classes))
	for _, c := range s.classes {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}
