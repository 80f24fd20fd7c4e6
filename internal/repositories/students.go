package repositories

import (
	"context"
	"strings"

	"github.com/maxaizer/placement-portal/internal/entities"
	"github.com/maxaizer/placement-portal/internal/failures"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Students struct {
	db *gorm.DB
}

func NewStudentsRepository(db *gorm.DB) *Students {
	return &Students{db: db}
}

func (repo *Students) Add(ctx context.Context, student *entities.Student) error {
	student.Email = entities.NormalizeEmail(student.Email)
	err := repo.db.WithContext(ctx).Create(student).Error
	if isUniqueViolation(err) {
		return failures.Wrap(failures.KindDuplicateEmail, "student email already registered", err)
	}
	return errors.Wrap(err, "create student")
}

func (repo *Students) GetByID(ctx context.Context, id uint) (*entities.Student, error) {
	var student entities.Student
	if err := repo.db.WithContext(ctx).First(&student, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, failures.NotFound("student")
		}
		return nil, errors.Wrap(err, "get student")
	}
	return &student, nil
}

func (repo *Students) GetByEmail(ctx context.Context, email string) (*entities.Student, error) {
	var student entities.Student
	err := repo.db.WithContext(ctx).First(&student, "email = ?", entities.NormalizeEmail(email)).Error
	if err != nil {
		if isNotFound(err) {
			return nil, failures.NotFound("student")
		}
		return nil, errors.Wrap(err, "get student by email")
	}
	return &student, nil
}

// UpdateProfile writes the self-service fields only; email, password and the
// active flag are left untouched.
func (repo *Students) UpdateProfile(ctx context.Context, student entities.Student) error {
	res := repo.db.WithContext(ctx).Model(&entities.Student{}).Where("id = ?", student.ID).
		Updates(map[string]any{
			"name":             student.Name,
			"department":       student.Department,
			"cgpa":             student.CGPA,
			"resume":           student.Resume,
			"telegram_chat_id": student.TelegramChatID,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update student profile")
	}
	if res.RowsAffected == 0 {
		return failures.NotFound("student")
	}
	return nil
}

func (repo *Students) SetActive(ctx context.Context, id uint, active bool) error {
	res := repo.db.WithContext(ctx).Model(&entities.Student{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update student active flag")
	}
	if res.RowsAffected == 0 {
		return failures.NotFound("student")
	}
	return nil
}

func (repo *Students) GetActive(ctx context.Context) ([]entities.Student, error) {
	var students []entities.Student
	if err := repo.db.WithContext(ctx).Where("active = ?", true).Order("name").Find(&students).Error; err != nil {
		return nil, errors.Wrap(err, "list active students")
	}
	return students, nil
}

func (repo *Students) Search(ctx context.Context, text string) ([]entities.Student, error) {
	var students []entities.Student
	query := repo.db.WithContext(ctx).Order("name")
	if text = strings.TrimSpace(text); text != "" {
		like := "%" + strings.ToLower(text) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
	}
	if err := query.Find(&students).Error; err != nil {
		return nil, errors.Wrap(err, "search students")
	}
	return students, nil
}
