package repositories

import (
	"context"
	"strings"

	"github.com/maxaizer/placement-portal/internal/entities"
	"github.com/maxaizer/placement-portal/internal/failures"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Jobs struct {
	db *gorm.DB
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db}
}

func (repo *Jobs) Add(ctx context.Context, job *entities.JobPosting) error {
	err := repo.db.WithContext(ctx).Omit(clause.Associations).Create(job).Error
	if isForeignKeyViolation(err) {
		return failures.Wrap(failures.KindNotFound, "company not found", err)
	}
	return errors.Wrap(err, "create job posting")
}

// GetByID loads the posting together with its company.
func (repo *Jobs) GetByID(ctx context.Context, id uint) (*entities.JobPosting, error) {
	var job entities.JobPosting
	if err := repo.db.WithContext(ctx).Joins("Company").First(&job, "job_postings.id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, failures.NotFound("job posting")
		}
		return nil, errors.Wrap(err, "get job posting")
	}
	return &job, nil
}

func (repo *Jobs) SetReviewState(ctx context.Context, id uint, state entities.ReviewState) error {
	res := repo.db.WithContext(ctx).Model(&entities.JobPosting{}).Where("id = ?", id).Update("review_state", state)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update job review state")
	}
	if res.RowsAffected == 0 {
		return failures.NotFound("job posting")
	}
	return nil
}

// Update writes the editable posting fields. Owner and review state are never
// changed here.
func (repo *Jobs) Update(ctx context.Context, job entities.JobPosting) error {
	res := repo.db.WithContext(ctx).Model(&entities.JobPosting{}).Where("id = ?", job.ID).
		Updates(map[string]any{
			"title":       job.Title,
			"description": job.Description,
			"eligibility": job.Eligibility,
			"deadline":    job.Deadline,
			"skills":      job.Skills,
			"experience":  job.Experience,
			"salary":      job.Salary,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update job posting")
	}
	if res.RowsAffected == 0 {
		return failures.NotFound("job posting")
	}
	return nil
}

// RemoveWithApplications deletes the posting and its applications in one transaction.
func (repo *Jobs) RemoveWithApplications(ctx context.Context, id uint) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_posting_id = ?", id).Delete(&entities.Application{}).Error; err != nil {
			return errors.Wrap(err, "delete job applications")
		}
		res := tx.Delete(&entities.JobPosting{}, "id = ?", id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete job posting")
		}
		if res.RowsAffected == 0 {
			return failures.NotFound("job posting")
		}
		return nil
	})
}

// GetCatalog returns postings visible to students: approved postings of approved,
// non-blacklisted companies. A non-empty filter matches title, company name or
// skills, case-insensitively.
func (repo *Jobs) GetCatalog(ctx context.Context, filter string) ([]entities.JobPosting, error) {
	var jobs []entities.JobPosting
	query := repo.db.WithContext(ctx).Joins("Company").
		Where("job_postings.review_state = ?", entities.ReviewApproved).
		Where("`Company`.approval_state = ? AND `Company`.blacklisted = ?", entities.ApprovalApproved, false)

	if filter = strings.TrimSpace(filter); filter != "" {
		like := "%" + strings.ToLower(filter) + "%"
		query = query.Where("(LOWER(job_postings.title) LIKE ? OR LOWER(`Company`.name) LIKE ? OR LOWER(job_postings.skills) LIKE ?)",
			like, like, like)
	}

	if err := query.Order("job_postings.created_at DESC").Order("job_postings.id DESC").Find(&jobs).Error; err != nil {
		return nil, errors.Wrap(err, "list job catalog")
	}
	return jobs, nil
}

func (repo *Jobs) GetByCompany(ctx context.Context, companyID uint) ([]entities.JobPosting, error) {
	var jobs []entities.JobPosting
	if err := repo.db.WithContext(ctx).Joins("Company").
		Where("job_postings.company_id = ?", companyID).
		Order("job_postings.id").
		Find(&jobs).Error; err != nil {
		return nil, errors.Wrap(err, "list company job postings")
	}
	return jobs, nil
}

func (repo *Jobs) GetAll(ctx context.Context) ([]entities.JobPosting, error) {
	var jobs []entities.JobPosting
	if err := repo.db.WithContext(ctx).Joins("Company").Order("job_postings.id").Find(&jobs).Error; err != nil {
		return nil, errors.Wrap(err, "list job postings")
	}
	return jobs, nil
}
