package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/padel-board-api/internal/models"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
)

// CreateStudentRequest holds payload for registering students.
type CreateStudentRequest struct {
	Name  string  `json:"name" validate:"required,max=120"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=50"`
	Level *int    `json:"level" validate:"omitempty,min=0,max=5"`
}

// StudentService handles student use-cases.
type StudentService struct {
	store     boardStore
	persist   persister
	notices   *Notices
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(st boardStore, persist persister, notices *Notices, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{store: st, persist: persist, notices: notices, validator: validate, logger: logger}
}

// List returns every student with the number of classes they attend.
func (s *StudentService) List(ctx context.Context, actor *models.CurrentUser) ([]models.StudentSummary, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	students := s.store.ListStudents()
	out := make([]models.StudentSummary, 0, len(students))
	for _, st := range students {
		out = append(out, models.StudentSummary{Student: st, ClassCount: s.store.StudentClassCount(st.ID)})
	}
	return out, nil
}

// Get returns one student with its class count.
func (s *StudentService) Get(ctx context.Context, actor *models.CurrentUser, id string) (*models.StudentSummary, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	st, err := s.store.GetStudent(id)
	if err != nil {
		return nil, notFound(err, "student not found")
	}
	return &models.StudentSummary{Student: st, ClassCount: s.store.StudentClassCount(id)}, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, actor *models.CurrentUser, req CreateStudentRequest) (*models.Student, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student := s.store.AddStudent(models.Student{
		Name:  req.Name,
		Email: trimmedPtr(req.Email),
		Phone: trimmedPtr(req.Phone),
		Level: req.Level,
	})
	persistSnapshot(ctx, s.store, s.persist, s.logger, "student.create")
	s.notices.Success("Alumno agregado correctamente")
	s.logger.Info("student created", zap.String("student_id", student.ID))
	return &student, nil
}

// Update merges the provided fields into a student.
func (s *StudentService) Update(ctx context.Context, actor *models.CurrentUser, id string, patch models.StudentPatch) (*models.Student, error) {
	if err := requireSession(actor); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if err := s.validator.Struct(patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.store.UpdateStudent(id, patch)
	if err != nil {
		return nil, notFound(err, "student not found")
	}
	persistSnapshot(ctx, s.store, s.persist, s.logger, "student.update")
	s.notices.Success("Alumno actualizado")
	return &student, nil
}

// Delete removes a student and prunes it from every class roster.
func (s *StudentService) Delete(ctx context.Context, actor *models.CurrentUser, id string) error {
	if err := requireSession(actor); err != nil {
		return err
	}
	touched, err := s.store.DeleteStudent(id)
	if err != nil {
		return notFound(err, "student not found")
	}
	persistSnapshot(ctx, s.store, s.persist, s.logger, "student.delete")
	s.notices.Success("Alumno eliminado")
	s.logger.Info("student deleted", zap.String("student_id", id), zap.Int("classes_pruned", touched))
	return nil
}
