package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/padel-board-api/internal/models"
	"github.com/noah-isme/padel-board-api/internal/store"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
	"github.com/noah-isme/padel-board-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var weekExportHeaders = []string{"Fecha", "Día", "Inicio", "Fin", "Monitor", "Alumnos", "Ocupación", "Estado", "Completada"}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
}

type visibleClasses interface {
	Visible(ctx context.Context, weekStart time.Time) ([]models.Class, time.Time, error)
}

// ExportResult is a rendered week ready to be sent as an attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the week the viewer sees into CSV or PDF.
type ExportService struct {
	calendar visibleClasses
	store    boardStore
	session  sessionContext
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(calendar visibleClasses, st boardStore, session sessionContext, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		calendar: calendar,
		store:    st,
		session:  session,
		csv:      csv,
		pdf:      pdf,
		logger:   logger,
	}
}

// Week renders the classes visible in the week starting at weekStart.
func (s *ExportService) Week(ctx context.Context, weekStart time.Time, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	classes, weekStart, err := s.calendar.Visible(ctx, weekStart)
	if err != nil {
		return nil, err
	}
	sortByDateAndStart(classes)
	dataset := s.buildDataset(classes)

	var body []byte
	contentType := "text/csv; charset=utf-8"
	switch format {
	case ExportFormatPDF:
		contentType = "application/pdf"
		body, err = s.pdf.Render(dataset, store.WeekTitle(weekStart), s.subtitle())
	default:
		body, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("semana-%s.%s", weekStart.Format("2006-01-02"), format)
	s.logger.Info("week exported", zap.String("file", filename), zap.Int("classes", len(classes)))
	return &ExportResult{Filename: filename, ContentType: contentType, Body: body}, nil
}

func (s *ExportService) buildDataset(classes []models.Class) export.Dataset {
	names := make(map[string]string)
	for _, st := range s.store.ListStudents() {
		names[st.ID] = st.Name
	}
	rows := make([]map[string]string, 0, len(classes))
	for _, c := range classes {
		students := make([]string, 0, len(c.Students))
		for _, id := range c.Students {
			if name, ok := names[id]; ok {
				students = append(students, name)
			}
		}
		monitor := ""
		if c.MonitorName != nil {
			monitor = *c.MonitorName
		}
		completed := "No"
		if c.IsCompleted {
			completed = "Sí"
		}
		rows = append(rows, map[string]string{
			"Fecha":      c.Date,
			"Día":        c.Day,
			"Inicio":     c.StartTime,
			"Fin":        c.EndTime,
			"Monitor":    monitor,
			"Alumnos":    strings.Join(students, "; "),
			"Ocupación":  strconv.Itoa(len(c.Students)) + "/" + strconv.Itoa(c.MaxCapacity),
			"Estado":     string(c.Status),
			"Completada": completed,
		})
	}
	return export.Dataset{Headers: weekExportHeaders, Rows: rows}
}

func (s *ExportService) subtitle() string {
	user := s.session.CurrentUser()
	if user == nil {
		return ""
	}
	if user.IsMonitor() {
		return "Monitor: " + user.Name
	}
	if focus := s.session.FocusMonitorID(); focus != "" {
		if m, err := s.store.GetMonitor(focus); err == nil {
			return "Monitor: " + m.Name
		}
	}
	return "Coordinador"
}

func sortByDateAndStart(classes []models.Class) {
	sort.SliceStable(classes, func(i, j int) bool {
		if classes[i].Date != classes[j].Date {
			return classes[i].Date < classes[j].Date
		}
		if classes[i].StartTime != classes[j].StartTime {
			return classes[i].StartTime < classes[j].StartTime
		}
		return classes[i].ID < classes[j].ID
	})
}
