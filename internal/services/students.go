package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/maxaizer/placement-portal/internal/access"
	"github.com/maxaizer/placement-portal/internal/entities"
	"github.com/maxaizer/placement-portal/internal/failures"
	log "github.com/sirupsen/logrus"
)

type studentRepository interface {
	Add(ctx context.Context, student *entities.Student) error
	GetByID(ctx context.Context, id uint) (*entities.Student, error)
	GetByEmail(ctx context.Context, email string) (*entities.Student, error)
	UpdateProfile(ctx context.Context, student entities.Student) error
	SetActive(ctx context.Context, id uint, active bool) error
	GetActive(ctx context.Context) ([]entities.Student, error)
	Search(ctx context.Context, text string) ([]entities.Student, error)
}

type RegisterStudentInput struct {
	Name       string `validate:"required"`
	Email      string `validate:"required,email"`
	Password   string `validate:"required,min=6"`
	Department string
}

type ProfileInput struct {
	Name           string `validate:"required"`
	Department     string
	CGPA           *float64
	Resume         string
	TelegramChatID *int64
}

type Students struct {
	students studentRepository
	hasher   access.PasswordHasher
	tokens   tokenIssuer
	throttle *LoginThrottle
	validate *validator.Validate
}

func NewStudents(students studentRepository, hasher access.PasswordHasher, tokens tokenIssuer,
	throttle *LoginThrottle) *Students {
	return &Students{
		students: students,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
		validate: validator.New(),
	}
}

func (s *Students) Register(ctx context.Context, input RegisterStudentInput) (*entities.Student, error) {
	if err := validateInput(s.validate, input); err != nil {
		return nil, settle("register student", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, settle("register student", err)
	}

	student := entities.NewStudent(input.Name, input.Email, hash)
	student.Department = strings.TrimSpace(input.Department)
	if err := s.students.Add(ctx, &student); err != nil {
		return nil, settle("register student", err)
	}

	log.Infof("student registered, id: %d", student.ID)
	return &student, nil
}

// Login refuses deactivated accounts with Forbidden once the password matched.
func (s *Students) Login(ctx context.Context, email, password string) (*access.Session, error) {
	email = entities.NormalizeEmail(email)
	if err := s.throttle.Allow("student:" + email); err != nil {
		return nil, settle("student login", err)
	}

	student, err := s.students.GetByEmail(ctx, email)
	if failures.Is(err, failures.KindNotFound) {
		return nil, settle("student login", failures.New(failures.KindInvalidCredentials, "invalid email or password"))
	}
	if err != nil {
		return nil, settle("student login", err)
	}

	if !s.hasher.Verify(student.PasswordHash, password) {
		return nil, settle("student login", failures.New(failures.KindInvalidCredentials, "invalid email or password"))
	}
	if !student.Active {
		return nil, settle("student login", failures.New(failures.KindForbidden, "student account is deactivated"))
	}

	session, err := s.tokens.Issue(access.Student(student.ID))
	if err != nil {
		return nil, settle("student login", err)
	}
	return &session, nil
}

func (s *Students) UpdateProfile(ctx context.Context, principal access.Principal, studentID uint,
	input ProfileInput) (*entities.Student, error) {

	if err := access.Authorize(principal, access.OpUpdateStudentProfile, access.StudentTarget(studentID)); err != nil {
		return nil, settle("update student profile", err)
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(s.validate, input); err != nil {
		return nil, settle("update student profile", err)
	}
	if input.CGPA != nil && !entities.ValidCGPA(*input.CGPA) {
		return nil, settle("update student profile", failures.Validation("invalid input", map[string]string{
			"cgpa": "must be between " + strconv.FormatFloat(entities.MinCGPA, 'f', 1, 64) +
				" and " + strconv.FormatFloat(entities.MaxCGPA, 'f', 1, 64),
		}))
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, settle("update student profile", err)
	}
	student.Name = input.Name
	student.Department = strings.TrimSpace(input.Department)
	student.CGPA = input.CGPA
	student.Resume = strings.TrimSpace(input.Resume)
	student.TelegramChatID = input.TelegramChatID

	if err := s.students.UpdateProfile(ctx, *student); err != nil {
		return nil, settle("update student profile", err)
	}
	return student, nil
}

func (s *Students) SetActive(ctx context.Context, principal access.Principal, studentID uint, active bool) error {
	if err := access.Authorize(principal, access.OpSetStudentActive, access.StudentTarget(studentID)); err != nil {
		return settle("set student active", err)
	}
	if err := s.students.SetActive(ctx, studentID, active); err != nil {
		return settle("set student active", err)
	}

	log.Infof("student %d active: %v, changed by %s", studentID, active, principal)
	return nil
}

// Get is open to the student, admins and any company.
func (s *Students) Get(ctx context.Context, principal access.Principal, studentID uint) (*entities.Student, error) {
	if err := access.Authorize(principal, access.OpViewStudentProfile, access.StudentTarget(studentID)); err != nil {
		return nil, settle("get student", err)
	}
	student, err := s.students.GetByID(ctx, studentID)
	return student, settle("get student", err)
}

func (s *Students) ListActive(ctx context.Context, principal access.Principal) ([]entities.Student, error) {
	if err := access.Authorize(principal, access.OpListActiveStudents, access.Target{}); err != nil {
		return nil, settle("list students", err)
	}
	students, err := s.students.GetActive(ctx)
	return students, settle("list students", err)
}

func (s *Students) Search(ctx context.Context, principal access.Principal, text string) ([]entities.Student, error) {
	if err := access.Authorize(principal, access.OpSearchStudents, access.Target{}); err != nil {
		return nil, settle("search students", err)
	}
	students, err := s.students.Search(ctx, text)
	return students, settle("search students", err)
}
