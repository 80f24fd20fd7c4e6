package repositories

import (
	"context"

	"github.com/maxaizer/placement-portal/internal/entities"
	"github.com/maxaizer/placement-portal/internal/failures"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Admins struct {
	db *gorm.DB
}

func NewAdminsRepository(db *gorm.DB) *Admins {
	return &Admins{db: db}
}

// AddIfMissing inserts the admin unless the username is already taken. It reports
// whether a row was created.
func (repo *Admins) AddIfMissing(ctx context.Context, admin *entities.Admin) (bool, error) {
	_, err := repo.GetByUsername(ctx, admin.Username)
	if err == nil {
		return false, nil
	}
	if !failures.Is(err, failures.KindNotFound) {
		return false, err
	}

	err = repo.db.WithContext(ctx).Create(admin).Error
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "create admin")
	}
	return true, nil
}

func (repo *Admins) GetByUsername(ctx context.Context, username string) (*entities.Admin, error) {
	var admin entities.Admin
	if err := repo.db.WithContext(ctx).First(&admin, "username = ?", username).Error; err != nil {
		if isNotFound(err) {
			return nil, failures.NotFound("admin")
		}
		return nil, errors.Wrap(err, "get admin")
	}
	return &admin, nil
}
