package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/padel-board-api/internal/models"
	"github.com/noah-isme/padel-board-api/pkg/timeutil"
)

// PostgresRepository is the remote relational backend. Columns are snake_case;
// the mapping to the camelCase models happens here.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository constructs a PostgresRepository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type monitorRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Email       *string   `db:"email"`
	Phone       *string   `db:"phone"`
	Role        string    `db:"role"`
	CreatedDate time.Time `db:"created_date"`
}

type studentRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	Email          *string   `db:"email"`
	Phone          *string   `db:"phone"`
	Level          *int      `db:"level"`
	RegisteredDate time.Time `db:"registered_date"`
}

type classRow struct {
	ID          string         `db:"id"`
	Day         string         `db:"day"`
	Date        time.Time      `db:"date"`
	StartTime   string         `db:"start_time"`
	EndTime     string         `db:"end_time"`
	Students    pq.StringArray `db:"students"`
	MaxCapacity int            `db:"max_capacity"`
	Status      string         `db:"status"`
	IsCompleted bool           `db:"is_completed"`
	MonitorID   *string        `db:"monitor_id"`
	MonitorName *string        `db:"monitor_name"`
}

// Name identifies the backend in logs and metrics.
func (r *PostgresRepository) Name() string { return "postgres" }

// Ping checks connectivity.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Load reads the three collections.
func (r *PostgresRepository) Load(ctx context.Context) (models.Dataset, error) {
	var monitors []monitorRow
	if err := r.db.SelectContext(ctx, &monitors, `SELECT id, name, email, phone, role, created_date FROM monitors ORDER BY name`); err != nil {
		return models.Dataset{}, fmt.Errorf("load monitors: %w", err)
	}
	var students []studentRow
	if err := r.db.SelectContext(ctx, &students, `SELECT id, name, email, phone, level, registered_date FROM students ORDER BY name`); err != nil {
		return models.Dataset{}, fmt.Errorf("load students: %w", err)
	}
	var classes []classRow
	if err := r.db.SelectContext(ctx, &classes, `SELECT id, day, date, start_time, end_time, students, max_capacity, status, is_completed, monitor_id, monitor_name
        FROM classes ORDER BY date, start_time`); err != nil {
		return models.Dataset{}, fmt.Errorf("load classes: %w", err)
	}

	ds := models.Dataset{
		Students: make([]models.Student, 0, len(students)),
		Classes:  make([]models.Class, 0, len(classes)),
		Monitors: make([]models.Monitor, 0, len(monitors)),
	}
	for _, m := range monitors {
		ds.Monitors = append(ds.Monitors, models.Monitor{
			ID: m.ID, Name: m.Name, Email: m.Email, Phone: m.Phone, Role: m.Role, CreatedDate: m.CreatedDate,
		})
	}
	for _, s := range students {
		ds.Students = append(ds.Students, models.Student{
			ID: s.ID, Name: s.Name, Email: s.Email, Phone: s.Phone, Level: s.Level, RegisteredDate: s.RegisteredDate,
		})
	}
	for _, c := range classes {
		ds.Classes = append(ds.Classes, classFromRow(c))
	}
	return ds, nil
}

// SaveAll writes the dataset in one transaction: every entity is upserted
// and rows no longer present are removed.
func (r *PostgresRepository) SaveAll(ctx context.Context, ds models.Dataset) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}

	const monitorQuery = `INSERT INTO monitors (id, name, email, phone, role, created_date)
VALUES (:id, :name, :email, :phone, :role, :created_date)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone, role = EXCLUDED.role`
	for _, m := range ds.Monitors {
		row := monitorRow{ID: m.ID, Name: m.Name, Email: m.Email, Phone: m.Phone, Role: m.Role, CreatedDate: m.CreatedDate}
		if _, err := tx.NamedExecContext(ctx, monitorQuery, row); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert monitor %s: %w", m.ID, err)
		}
	}

	const studentQuery = `INSERT INTO students (id, name, email, phone, level, registered_date)
VALUES (:id, :name, :email, :phone, :level, :registered_date)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone, level = EXCLUDED.level`
	for _, s := range ds.Students {
		row := studentRow{ID: s.ID, Name: s.Name, Email: s.Email, Phone: s.Phone, Level: s.Level, RegisteredDate: s.RegisteredDate}
		if _, err := tx.NamedExecContext(ctx, studentQuery, row); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert student %s: %w", s.ID, err)
		}
	}

	const classQuery = `INSERT INTO classes (id, day, date, start_time, end_time, students, max_capacity, status, is_completed, monitor_id, monitor_name)
VALUES (:id, :day, :date, :start_time, :end_time, :students, :max_capacity, :status, :is_completed, :monitor_id, :monitor_name)
ON CONFLICT (id) DO UPDATE SET day = EXCLUDED.day, date = EXCLUDED.date, start_time = EXCLUDED.start_time,
              end_time = EXCLUDED.end_time, students = EXCLUDED.students, max_capacity = EXCLUDED.max_capacity,
              status = EXCLUDED.status, is_completed = EXCLUDED.is_completed, monitor_id = EXCLUDED.monitor_id,
              monitor_name = EXCLUDED.monitor_name`
	for _, c := range ds.Classes {
		row, err := classToRow(c)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.NamedExecContext(ctx, classQuery, row); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert class %s: %w", c.ID, err)
		}
	}

	prunes := []struct {
		table string
		ids   []string
	}{
		{"classes", classIDs(ds.Classes)},
		{"students", studentIDs(ds.Students)},
		{"monitors", monitorIDs(ds.Monitors)},
	}
	for _, p := range prunes {
		query := fmt.Sprintf("DELETE FROM %s WHERE NOT (id = ANY($1))", p.table)
		if _, err := tx.ExecContext(ctx, query, pq.Array(p.ids)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("prune %s: %w", p.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	return nil
}

func classFromRow(c classRow) models.Class {
	students := []string(c.Students)
	if students == nil {
		students = []string{}
	}
	return models.Class{
		ID:          c.ID,
		Day:         c.Day,
		Date:        timeutil.FormatDate(c.Date),
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
		Students:    students,
		MaxCapacity: c.MaxCapacity,
		Status:      models.ClassStatus(c.Status),
		IsCompleted: c.IsCompleted,
		MonitorID:   c.MonitorID,
		MonitorName: c.MonitorName,
	}
}

func classToRow(c models.Class) (classRow, error) {
	date, err := timeutil.ParseDate(c.Date)
	if err != nil {
		return classRow{}, fmt.Errorf("class %s: %w", c.ID, err)
	}
	status := string(c.Status)
	if status == "" {
		status = string(models.ClassStatusActive)
	}
	return classRow{
		ID:          c.ID,
		Day:         c.Day,
		Date:        date,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
		Students:    pq.StringArray(append([]string{}, c.Students...)),
		MaxCapacity: c.MaxCapacity,
		Status:      status,
		IsCompleted: c.IsCompleted,
		MonitorID:   c.MonitorID,
		MonitorName: c.MonitorName,
	}, nil
}

func classIDs(classes []models.Class) []string {
	ids := make([]string, 0, len(classes))
	for _, c := range classes {
		ids = append(ids, c.ID)
	}
	return ids
}

func studentIDs(students []models.Student) []string {
	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	return ids
}

func monitorIDs(monitors []models.Monitor) []string {
	ids := make([]string, 0, len(monitors))
	for _, m := range monitors {
		ids = append(ids, m.ID)
	}
	return ids
}
