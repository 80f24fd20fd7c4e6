package repositories

import (
	"context"

	"github.com/maxaizer/placement-portal/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Stats struct {
	Companies        int64
	PendingCompanies int64
	Students         int64
	Jobs             int64
	PendingJobs      int64
	CatalogJobs      int64
	Applications     int64
	Placements       int64
}

type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (repo *StatsRepository) Get(ctx context.Context) (Stats, error) {
	var stats Stats
	db := repo.db.WithContext(ctx)

	counts := []struct {
		name  string
		query *gorm.DB
		dest  *int64
	}{
		{"companies", db.Model(&entities.Company{}), &stats.Companies},
		{"pending companies", db.Model(&entities.Company{}).Where("approval_state = ?", entities.ApprovalPending), &stats.PendingCompanies},
		{"students", db.Model(&entities.Student{}), &stats.Students},
		{"jobs", db.Model(&entities.JobPosting{}), &stats.Jobs},
		{"pending jobs", db.Model(&entities.JobPosting{}).Where("review_state = ?", entities.ReviewPending), &stats.PendingJobs},
		{"catalog jobs", db.Model(&entities.JobPosting{}).
			Joins("JOIN companies ON companies.id = job_postings.company_id").
			Where("job_postings.review_state = ?", entities.ReviewApproved).
			Where("companies.approval_state = ? AND companies.blacklisted = ?", entities.ApprovalApproved, false),
			&stats.CatalogJobs},
		{"applications", db.Model(&entities.Application{}), &stats.Applications},
		{"placements", db.Model(&entities.Placement{}), &stats.Placements},
	}

	for _, count := range counts {
		if err := count.query.Count(count.dest).Error; err != nil {
			return Stats{}, errors.Wrapf(err, "count %s", count.name)
		}
	}
	return stats, nil
}
