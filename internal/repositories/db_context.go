package repositories

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/maxaizer/placement-portal/internal/entities"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

var sqlitePragmas = []string{"foreign_keys(1)", "busy_timeout(5000)"}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(withPragmas(connectionString)), &gorm.Config{
		Logger:         gormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// one connection: writers queue in database/sql
	sqlDB.SetMaxOpenConns(1)

	return &DbContext{DB: db}, nil
}

// gormLogger writes store errors through logrus. Lookups of missing rows are
// expected outcomes and stay silent.
func gormLogger() logger.Interface {
	return logger.New(log.StandardLogger(), logger.Config{
		LogLevel:                  logger.Error,
		IgnoreRecordNotFoundError: true,
	})
}

func withPragmas(connectionString string) string {
	var params []string
	for _, pragma := range sqlitePragmas {
		if !strings.Contains(connectionString, pragma) {
			params = append(params, "_pragma="+pragma)
		}
	}
	if len(params) == 0 {
		return connectionString
	}

	separator := "?"
	if strings.Contains(connectionString, "?") {
		separator = "&"
	}
	return connectionString + separator + strings.Join(params, "&")
}

func (c *DbContext) Migrate() error {
	err := c.DB.AutoMigrate(entities.Admin{})
	if err != nil {
		return fmt.Errorf("failed to migrate Admin entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Company{})
	if err != nil {
		return fmt.Errorf("failed to migrate Company entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Student{})
	if err != nil {
		return fmt.Errorf("failed to migrate Student entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.JobPosting{})
	if err != nil {
		return fmt.Errorf("failed to migrate JobPosting entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Application{})
	if err != nil {
		return fmt.Errorf("failed to migrate Application entity: %w", err)
	}

	err = c.DB.AutoMigrate(entities.Placement{})
	if err != nil {
		return fmt.Errorf("failed to migrate Placement entity: %w", err)
	}

	if err = c.DB.Exec("CREATE INDEX IF NOT EXISTS idx_job_catalog ON job_postings (review_state, company_id)").
		Error; err != nil {
		return fmt.Errorf("failed to create catalog index: %w", err)
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
