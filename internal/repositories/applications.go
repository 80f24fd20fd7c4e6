package repositories

import (
	"context"
	"time"

	"github.com/maxaizer/placement-portal/internal/entities"
	"github.com/maxaizer/placement-portal/internal/failures"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Applications struct {
	db *gorm.DB
}

func NewApplicationsRepository(db *gorm.DB) *Applications {
	return &Applications{db: db}
}

// Add inserts a new application. The (student, job) unique index decides races:
// the losing insert gets DuplicateApplication.
func (repo *Applications) Add(ctx context.Context, application *entities.Application) error {
	err := repo.db.WithContext(ctx).Omit(clause.Associations).Create(application).Error
	if isUniqueViolation(err) {
		return failures.Wrap(failures.KindDuplicateApplication, "student already applied to this job", err)
	}
	if isForeignKeyViolation(err) {
		return failures.Wrap(failures.KindNotFound, "student or job posting not found", err)
	}
	return errors.Wrap(err, "create application")
}

// GetByID loads the application with its job posting.
func (repo *Applications) GetByID(ctx context.Context, id uint) (*entities.Application, error) {
	var application entities.Application
	if err := repo.db.WithContext(ctx).Joins("JobPosting").First(&application, "applications.id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, failures.NotFound("application")
		}
		return nil, errors.Wrap(err, "get application")
	}
	return &application, nil
}

// UpdateStatus moves a non-final application to status. When status is
// StatusPlaced the placement row is written in the same transaction. A concurrent
// caller that loses the race sees AlreadyFinalized.
func (repo *Applications) UpdateStatus(ctx context.Context, id uint,
	status entities.ApplicationStatus) (*entities.Application, *entities.Placement, error) {

	var updated entities.Application
	var placement *entities.Placement

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entities.Application{}).
			Where("id = ? AND status NOT IN ?", id, entities.FinalStatuses()).
			Updates(map[string]any{"status": status, "updated_at": time.Now()})
		if res.Error != nil {
			return errors.Wrap(res.Error, "update application status")
		}

		if res.RowsAffected == 0 {
			var current entities.Application
			if err := tx.First(&current, "id = ?", id).Error; err != nil {
				if isNotFound(err) {
					return failures.NotFound("application")
				}
				return errors.Wrap(err, "get application")
			}
			return failures.New(failures.KindAlreadyFinalized, "application status is final: "+string(current.Status))
		}

		if err := tx.Joins("JobPosting").First(&updated, "applications.id = ?", id).Error; err != nil {
			return errors.Wrap(err, "reload application")
		}

		if status != entities.StatusPlaced {
			return nil
		}

		placement = &entities.Placement{
			ApplicationID: updated.ID,
			StudentID:     updated.StudentID,
			CompanyID:     updated.JobPosting.CompanyID,
			JobTitle:      updated.JobPosting.Title,
		}
		if err := tx.Create(placement).Error; err != nil {
			if isUniqueViolation(err) {
				return failures.Wrap(failures.KindAlreadyPlaced, "placement already recorded", err)
			}
			return errors.Wrap(err, "create placement")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &updated, placement, nil
}

func (repo *Applications) GetByStudent(ctx context.Context, studentID uint) ([]entities.Application, error) {
	var applications []entities.Application
	if err := repo.db.WithContext(ctx).Joins("JobPosting").
		Where("applications.student_id = ?", studentID).
		Order("applications.id").
		Find(&applications).Error; err != nil {
		return nil, errors.Wrap(err, "list student applications")
	}
	return applications, nil
}

func (repo *Applications) GetByCompany(ctx context.Context, companyID uint) ([]entities.Application, error) {
	var applications []entities.Application
	if err := repo.db.WithContext(ctx).Joins("JobPosting").Joins("Student").
		Where("`JobPosting`.company_id = ?", companyID).
		Order("applications.id").
		Find(&applications).Error; err != nil {
		return nil, errors.Wrap(err, "list company applications")
	}
	return applications, nil
}

func (repo *Applications) GetAll(ctx context.Context) ([]entities.Application, error) {
	var applications []entities.Application
	if err := repo.db.WithContext(ctx).Joins("JobPosting").Joins("Student").
		Order("applications.id").
		Find(&applications).Error; err != nil {
		return nil, errors.Wrap(err, "list applications")
	}
	return applications, nil
}

type Placements struct {
	db *gorm.DB
}

func NewPlacementsRepository(db *gorm.DB) *Placements {
	return &Placements{db: db}
}

func (repo *Placements) GetByApplication(ctx context.Context, applicationID uint) (*entities.Placement, error) {
	var placement entities.Placement
	if err := repo.db.WithContext(ctx).First(&placement, "application_id = ?", applicationID).Error; err != nil {
		if isNotFound(err) {
			return nil, failures.NotFound("placement")
		}
		return nil, errors.Wrap(err, "get placement")
	}
	return &placement, nil
}

func (repo *Placements) GetAll(ctx context.Context) ([]entities.Placement, error) {
	var placements []entities.Placement
	if err := repo.db.WithContext(ctx).Order("placed_at DESC").Order("id DESC").Find(&placements).Error; err != nil {
		return nil, errors.Wrap(err, "list placements")
	}
	return placements, nil
}
