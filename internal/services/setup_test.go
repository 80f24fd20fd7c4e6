package services

import (
	"context"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/placement-portal/internal/access"
	"github.com/maxaizer/placement-portal/internal/entities"
	"github.com/maxaizer/placement-portal/internal/repositories"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// testToday pins the clock of date-sensitive checks.
var testToday = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

type testPortal struct {
	db           *repositories.DbContext
	bus          EventBus.Bus
	tokens       *access.TokenIssuer
	companies    *Companies
	students     *Students
	admins       *Admins
	jobs         *Jobs
	applications *Applications
	placements   *repositories.Placements
	admin        access.Principal
}

func newTestPortal(t *testing.T) *testPortal {
	t.Helper()

	dbContext, err := repositories.NewDbContext("file::memory:")
	require.NoError(t, err)
	require.NoError(t, dbContext.Migrate())
	t.Cleanup(func() { _ = dbContext.Close() })

	bus := EventBus.New()
	hasher := access.NewBcryptHasher(bcrypt.MinCost)
	tokens := access.NewTokenIssuer("test-secret", time.Hour)

	companies := repositories.NewCompaniesRepository(dbContext.DB)
	students := repositories.NewStudentsRepository(dbContext.DB)
	jobs := repositories.NewJobsRepository(dbContext.DB)
	placements := repositories.NewPlacementsRepository(dbContext.DB)
	stats := repositories.NewCachedStats(repositories.NewStatsRepository(dbContext.DB), time.Millisecond)

	p := &testPortal{
		db:           dbContext,
		bus:          bus,
		tokens:       tokens,
		companies:    NewCompanies(companies, hasher, tokens, nil, bus),
		students:     NewStudents(students, hasher, tokens, nil),
		admins:       NewAdmins(repositories.NewAdminsRepository(dbContext.DB), stats, hasher, tokens, nil),
		jobs:         NewJobs(jobs, companies, bus),
		applications: NewApplications(repositories.NewApplicationsRepository(dbContext.DB), placements, students, jobs, bus),
		placements:   placements,
	}
	p.jobs.now = func() time.Time { return testToday }

	ctx := context.Background()
	require.NoError(t, p.admins.EnsureDefault(ctx, "admin", "admin123"))
	session, err := p.admins.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	p.admin = session.Principal
	return p
}

func (p *testPortal) approvedCompany(t *testing.T, name, email string) (*entities.Company, access.Principal) {
	t.Helper()
	ctx := context.Background()

	company, err := p.companies.Register(ctx, RegisterCompanyInput{Name: name, Email: email, Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, p.companies.ReviewRegistration(ctx, p.admin, company.ID, Approve))

	session, err := p.companies.Login(ctx, email, "secret1")
	require.NoError(t, err)
	return company, session.Principal
}

func (p *testPortal) student(t *testing.T, name, email string) (*entities.Student, access.Principal) {
	t.Helper()
	ctx := context.Background()

	student, err := p.students.Register(ctx, RegisterStudentInput{Name: name, Email: email, Password: "secret1"})
	require.NoError(t, err)

	session, err := p.students.Login(ctx, email, "secret1")
	require.NoError(t, err)
	return student, session.Principal
}

// openJob creates a posting for the company and has the admin approve it.
func (p *testPortal) openJob(t *testing.T, company access.Principal, input JobInput) *entities.JobPosting {
	t.Helper()
	ctx := context.Background()

	job, err := p.jobs.Create(ctx, company, company.AccountID, input)
	require.NoError(t, err)
	require.NoError(t, p.jobs.Review(ctx, p.admin, job.ID, Approve))
	job.ReviewState = entities.ReviewApproved
	return job
}

func catalogIDs(t *testing.T, p *testPortal, filter string) []uint {
	t.Helper()
	jobs, err := p.jobs.ListApproved(context.Background(), filter)
	require.NoError(t, err)

	return lo.Map(jobs, func(job entities.JobPosting, _ int) uint { return job.ID })
}

func (p *testPortal) placementCount(t *testing.T, applicationID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, p.db.DB.Model(&entities.Placement{}).Where("application_id = ?", applicationID).Count(&count).Error)
	return count
}
