package repositories

import (
	"context"
	"strings"

	"github.com/maxaizer/placement-portal/internal/entities"
	"github.com/maxaizer/placement-portal/internal/failures"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Companies struct {
	db *gorm.DB
}

func NewCompaniesRepository(db *gorm.DB) *Companies {
	return &Companies{db: db}
}

func (repo *Companies) Add(ctx context.Context, company *entities.Company) error {
	company.Email = entities.NormalizeEmail(company.Email)
	err := repo.db.WithContext(ctx).Create(company).Error
	if isUniqueViolation(err) {
		return failures.Wrap(failures.KindDuplicateEmail, "company email already registered", err)
	}
	return errors.Wrap(err, "create company")
}

func (repo *Companies) GetByID(ctx context.Context, id uint) (*entities.Company, error) {
	var company entities.Company
	if err := repo.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, failures.NotFound("company")
		}
		return nil, errors.Wrap(err, "get company")
	}
	return &company, nil
}

func (repo *Companies) GetByEmail(ctx context.Context, email string) (*entities.Company, error) {
	var company entities.Company
	err := repo.db.WithContext(ctx).First(&company, "email = ?", entities.NormalizeEmail(email)).Error
	if err != nil {
		if isNotFound(err) {
			return nil, failures.NotFound("company")
		}
		return nil, errors.Wrap(err, "get company by email")
	}
	return &company, nil
}

func (repo *Companies) SetApprovalState(ctx context.Context, id uint, state entities.ApprovalState) error {
	return repo.updateColumn(ctx, id, "approval_state", state)
}

func (repo *Companies) SetBlacklisted(ctx context.Context, id uint, blacklisted bool) error {
	return repo.updateColumn(ctx, id, "blacklisted", blacklisted)
}

func (repo *Companies) updateColumn(ctx context.Context, id uint, column string, value any) error {
	res := repo.db.WithContext(ctx).Model(&entities.Company{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update company %s", column)
	}
	if res.RowsAffected == 0 {
		return failures.NotFound("company")
	}
	return nil
}

// RemoveWithPostings deletes the company, its job postings and their applications
// in one transaction. Placements are kept.
func (repo *Companies) RemoveWithPostings(ctx context.Context, id uint) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		jobIDs := tx.Model(&entities.JobPosting{}).Select("id").Where("company_id = ?", id)
		if err := tx.Where("job_posting_id IN (?)", jobIDs).Delete(&entities.Application{}).Error; err != nil {
			return errors.Wrap(err, "delete company applications")
		}
		if err := tx.Where("company_id = ?", id).Delete(&entities.JobPosting{}).Error; err != nil {
			return errors.Wrap(err, "delete company job postings")
		}

		res := tx.Delete(&entities.Company{}, "id = ?", id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete company")
		}
		if res.RowsAffected == 0 {
			return failures.NotFound("company")
		}
		return nil
	})
}

// GetListed returns approved, non-blacklisted companies.
func (repo *Companies) GetListed(ctx context.Context) ([]entities.Company, error) {
	var companies []entities.Company
	if err := repo.db.WithContext(ctx).
		Where("approval_state = ? AND blacklisted = ?", entities.ApprovalApproved, false).
		Order("name").
		Find(&companies).Error; err != nil {
		return nil, errors.Wrap(err, "list companies")
	}
	return companies, nil
}

func (repo *Companies) GetByApprovalState(ctx context.Context, state entities.ApprovalState) ([]entities.Company, error) {
	var companies []entities.Company
	if err := repo.db.WithContext(ctx).
		Where("approval_state = ?", state).
		Order("created_at").
		Find(&companies).Error; err != nil {
		return nil, errors.Wrap(err, "list companies by approval state")
	}
	return companies, nil
}

func (repo *Companies) SearchByName(ctx context.Context, text string) ([]entities.Company, error) {
	var companies []entities.Company
	query := repo.db.WithContext(ctx).Order("name")
	if text = strings.TrimSpace(text); text != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(text)+"%")
	}
	if err := query.Find(&companies).Error; err != nil {
		return nil, errors.Wrap(err, "search companies")
	}
	return companies, nil
}
