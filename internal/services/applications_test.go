package services

import (
	"context"
	"sync"
	"testing"

	"github.com/maxaizer/placement-portal/internal/access"
	"github.com/maxaizer/placement-portal/internal/domain/events"
	"github.com/maxaizer/placement-portal/internal/entities"
	"github.com/maxaizer/placement-portal/internal/failures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Apply_WhenJobOpen_ShouldCreateAppliedApplication(t *testing.T) {
	assert := assert.New(t)
	p := newTestPortal(t)
	_, companyPrincipal := p.approvedCompany(t, "Acme", "hr@acme.io")
	job := p.openJob(t, companyPrincipal, JobInput{Title: "Backend Intern"})
	student, studentPrincipal := p.student(t, "Ann", "ann@uni.edu")

	var submitted []events.ApplicationSubmitted
	require.NoError(t, p.bus.Subscribe(events.ApplicationSubmittedTopic, func(e events.ApplicationSubmitted) {
		submitted = append(submitted, e)
	}))

	application, err := p.applications.Apply(context.Background(), studentPrincipal, student.ID, job.ID)

	require.NoError(t, err)
	assert.Equal(entities.StatusApplied, application.Status)
	assert.Equal(student.ID, application.StudentID)
	assert.Equal(job.ID, application.JobPostingID)
	assert.Equal([]events.ApplicationSubmitted{{ApplicationID: application.ID, StudentID: student.ID, JobID: job.ID}}, submitted)
}

func Test_Apply_WhenJobNotInCatalog_ShouldFailWithJobNotOpen(t *testing.T) {
	assert := assert.New(t)
	p := newTestPortal(t)
	ctx := context.Background()
	company, companyPrincipal := p.approvedCompany(t, "Acme", "hr@acme.io")
	student, studentPrincipal := p.student(t, "Ann", "ann@uni.edu")

	pending, err := p.jobs.Create(ctx, companyPrincipal, company.ID, JobInput{Title: "Pending"})
	require.NoError(t, err)
	_, err = p.applications.Apply(ctx, studentPrincipal, student.ID, pending.ID)
	assert.ErrorIs(err, failures.ErrJobNotOpen)

	closed := p.openJob(t, companyPrincipal, JobInput{Title: "Closed"})
	_, err = p.jobs.SetStatus(ctx, companyPrincipal, closed.ID, "Closed")
	require.NoError(t, err)
	_, err = p.applications.Apply(ctx, studentPrincipal, student.ID, closed.ID)
	assert.ErrorIs(err, failures.ErrJobNotOpen)

	open := p.openJob(t, companyPrincipal, JobInput{Title: "Open"})
	require.NoError(t, p.companies.SetBlacklist(ctx, p.admin, company.ID, true))
	_, err = p.applications.Apply(ctx, studentPrincipal, student.ID, open.ID)
	assert.ErrorIs(err, failures.ErrJobNotOpen)
}

func Test_Apply_WhenJobMissing_ShouldFailWithNotFound(t *testing.T) {
	p := newTestPortal(t)
	student, studentPrincipal := p.student(t, "Ann", "ann@uni.edu")

	_, err := p.applications.Apply(context.Background(), studentPrincipal, student.ID, 404)

	assert.ErrorIs(t, err, failures.ErrNotFound)
}

func Test_Apply_WhenAlreadyApplied_ShouldFailWithDuplicateApplication(t *testing.T) {
	p := newTestPortal(t)
	ctx := context.Background()
	_, companyPrincipal := p.approvedCompany(t, "Acme", "hr@acme.io")
	job := p.openJob(t, companyPrincipal, JobInput{Title: "Backend Intern"})
	student, studentPrincipal := p.student(t, "Ann", "ann@uni.edu")
	_, err := p.applications.Apply(ctx, studentPrincipal, student.ID, job.ID)
	require.NoError(t, err)

	_, err = p.applications.Apply(ctx, studentPrincipal, student.ID, job.ID)

	assert.ErrorIs(t, err, failures.ErrDuplicateApplication)
}

func Test_Apply_WhenCallerIsNotThatStudent_ShouldFail(t *testing.T) {
	assert := assert.New(t)
	p := newTestPortal(t)
	ctx := context.Background()
	_, companyPrincipal := p.approvedCompany(t, "Acme", "hr@acme.io")
	job := p.openJob(t, companyPrincipal, JobInput{Title: "Backend Intern"})
	ann, _ := p.student(t, "Ann", "ann@uni.edu")
	_, bobPrincipal := p.student(t, "Bob", "bob@uni.edu")

	_, err := p.applications.Apply(ctx, bobPrincipal, ann.ID, job.ID)
	assert.ErrorIs(err, failures.ErrForbidden)
	_, err = p.applications.Apply(ctx, access.Anonymous(), ann.ID, job.ID)
	assert.ErrorIs(err, failures.ErrUnauthorized)
	_, err = p.applications.Apply(ctx, p.admin, ann.ID, job.ID)
	assert.ErrorIs(err, failures.ErrForbidden)
}

func Test_Apply_WhenStudentDeactivated_ShouldFailWithForbidden(t *testing.T) {
	p := newTestPortal(t)
	ctx := context.Background()
	_, companyPrincipal := p.approvedCompany(t, "Acme", "hr@acme.io")
	job := p.openJob(t, companyPrincipal, JobInput{Title: "Backend Intern"})
	student, studentPrincipal := p.student(t, "Ann", "ann@uni.edu")
	require.NoError(t, p.students.SetActive(ctx, p.admin, student.ID, false))

	_, err := p.applications.Apply(ctx, studentPrincipal, student.ID, job.ID)

	assert.ErrorIs(t, err, failures.ErrForbidden)
}

func Test_Apply_WhenConcurrentDuplicates_ShouldAcceptExactlyOne(t *testing.T) {
	assert := assert.New(t)
	p := newTestPortal(t)
	_, companyPrincipal := p.approvedCompany(t, "Acme", "hr@acme.io")
	job := p.openJob(t, companyPrincipal, JobInput{Title: "Backend Intern"})
	student, studentPrincipal := p.student(t, "Ann", "ann@uni.edu")

	const attempts = 10
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.applications.Apply(context.Background(), studentPrincipal, student.ID, job.ID)
		}(i)
	}
	wg.Wait()

	succeeded, duplicates := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case failures.Is(err, failures.KindDuplicateApplication):
			duplicates++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(1, succeeded)
	assert.Equal(attempts-1, duplicates)

	applications, err := p.applications.ListForStudent(context.Background(), studentPrincipal, student.ID)
	assert.NoError(err)
	assert.Len(applications, 1)
}

func Test_UpdateStatus_WhenSkippingAhead_ShouldBeAccepted(t *testing.T) {
	p := newTestPortal(t)
	ctx := context.Background()
	_, companyPrincipal := p.approvedCompany(t, "Acme", "hr@acme.io")
	job := p.openJob(t, companyPrincipal, JobInput{Title: "Backend Intern"})
	student, studentPrincipal := p.student(t, "Ann", "ann@uni.edu")
	application, err := p.applications.Apply(ctx, studentPrincipal, student.ID, job.ID)
	require.NoError(t, err)

	updated, err := p.applications.UpdateStatus(ctx, companyPrincipal, application.ID, "selected")

	require.NoError(t, err)
	assert.Equal(t, entities.StatusSelected, updated.Status)
}

func Test_UpdateStatus_WhenPlaced_ShouldRecordOnePlacementAndFinalize(t *testing.T) {
	assert := assert.New(t)
	p := newTestPortal(t)
	ctx := context.Background()
	company, companyPrincipal := p.approvedCompany(t, "Acme", "hr@acme.io")
	job := p.openJob(t, companyPrincipal, JobInput{Title: "Backend Intern"})
	student, studentPrincipal := p.student(t, "Ann", "ann@uni.edu")
	application, err := p.applications.Apply(ctx, studentPrincipal, student.ID, job.ID)
	require.NoError(t, err)

	var placed []events.PlacementCreated
	require.NoError(t, p.bus.Subscribe(events.PlacementCreatedTopic, func(e events.PlacementCreated) {
		placed = append(placed, e)
	}))

	updated, err := p.applications.UpdateStatus(ctx, companyPrincipal, application.ID, "Placed")
	require.NoError(t, err)
	assert.Equal(entities.StatusPlaced, updated.Status)

	placement, err := p.placements.GetByApplication(ctx, application.ID)
	require.NoError(t, err)
	assert.Equal(student.ID, placement.StudentID)
	assert.Equal(company.ID, placement.CompanyID)
	assert.Equal("Backend Intern", placement.JobTitle)
	if assert.Len(placed, 1) {
		assert.Equal(placement.ID, placed[0].PlacementID)
	}

	for _, target := range []string{"Placed", "Interview", "Rejected", "Bogus", ""} {
		_, err = p.applications.UpdateStatus(ctx, companyPrincipal, application.ID, target)
		assert.ErrorIs(err, failures.ErrAlreadyFinalized, target)
	}

	assert.Equal(int64(1), p.placementCount(t, application.ID))
}

func Test_UpdateStatus_WhenRejected_ShouldBeFinalWithoutPlacement(t *testing.T) {
	assert := assert.New(t)
	p := newTestPortal(t)
	ctx := context.Background()
	_, companyPrincipal := p.approvedCompany(t, "Acme", "hr@acme.io")
	job := p.openJob(t, companyPrincipal, JobInput{Title: "Backend Intern"})
	student, studentPrincipal := p.student(t, "Ann", "ann@uni.edu")
	application, err := p.applications.Apply(ctx, studentPrincipal, student.ID, job.ID)
	require.NoError(t, err)

	_, err = p.applications.UpdateStatus(ctx, companyPrincipal, application.ID, "Rejected")
	require.NoError(t, err)

	_, err = p.applications.UpdateStatus(ctx, companyPrincipal, application.ID, "Placed")
	assert.ErrorIs(err, failures.ErrAlreadyFinalized)
	_, err = p.placements.GetByApplication(ctx, application.ID)
	assert.ErrorIs(err, failures.ErrNotFound)
}

func Test_UpdateStatus_WhenConcurrentPlacements_ShouldPlaceOnce(t *testing.T) {
	assert := assert.New(t)
	p := newTestPortal(t)
	ctx := context.Background()
	_, companyPrincipal := p.approvedCompany(t, "Acme", "hr@acme.io")
	job := p.openJob(t, companyPrincipal, JobInput{Title: "Backend Intern"})
	student, studentPrincipal := p.student(t, "Ann", "ann@uni.edu")
	application, err := p.applications.Apply(ctx, studentPrincipal, student.ID, job.ID)
	require.NoError(t, err)

	const attempts = 5
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.applications.UpdateStatus(ctx, companyPrincipal, application.ID, "Placed")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(err, failures.ErrAlreadyFinalized)
	}
	assert.Equal(1, succeeded)

	assert.Equal(int64(1), p.placementCount(t, application.ID))
}

func Test_UpdateStatus_WhenCallerDoesNotOwnJob_ShouldFail(t *testing.T) {
	assert := assert.New(t)
	p := newTestPortal(t)
	ctx := context.Background()
	_, ownerPrincipal := p.approvedCompany(t, "Acme", "hr@acme.io")
	_, otherPrincipal := p.approvedCompany(t, "Beta", "hr@beta.io")
	job := p.openJob(t, ownerPrincipal, JobInput{Title: "Backend Intern"})
	student, studentPrincipal := p.student(t, "Ann", "ann@uni.edu")
	application, err := p.applications.Apply(ctx, studentPrincipal, student.ID, job.ID)
	require.NoError(t, err)

	_, err = p.applications.UpdateStatus(ctx, otherPrincipal, application.ID, "Shortlisted")
	assert.ErrorIs(err, failures.ErrForbidden)
	_, err = p.applications.UpdateStatus(ctx, studentPrincipal, application.ID, "Shortlisted")
	assert.ErrorIs(err, failures.ErrForbidden)
	_, err = p.applications.UpdateStatus(ctx, p.admin, application.ID, "Shortlisted")
	assert.ErrorIs(err, failures.ErrForbidden)
	_, err = p.applications.UpdateStatus(ctx, ownerPrincipal, application.ID+100, "Shortlisted")
	assert.ErrorIs(err, failures.ErrNotFound)
}

func Test_UpdateStatus_WhenTargetUnknown_ShouldFailWithInvalidTransition(t *testing.T) {
	p := newTestPortal(t)
	ctx := context.Background()
	_, companyPrincipal := p.approvedCompany(t, "Acme", "hr@acme.io")
	job := p.openJob(t, companyPrincipal, JobInput{Title: "Backend Intern"})
	student, studentPrincipal := p.student(t, "Ann", "ann@uni.edu")
	application, err := p.applications.Apply(ctx, studentPrincipal, student.ID, job.ID)
	require.NoError(t, err)

	_, err = p.applications.UpdateStatus(ctx, companyPrincipal, application.ID, "Hired")

	assert.ErrorIs(t, err, failures.ErrInvalidTransition)
}

func Test_ListApplications_ShouldBeScopedToOwners(t *testing.T) {
	assert := assert.New(t)
	p := newTestPortal(t)
	ctx := context.Background()
	acme, acmePrincipal := p.approvedCompany(t, "Acme", "hr@acme.io")
	beta, betaPrincipal := p.approvedCompany(t, "Beta", "hr@beta.io")
	acmeJob := p.openJob(t, acmePrincipal, JobInput{Title: "Backend Intern"})
	betaJob := p.openJob(t, betaPrincipal, JobInput{Title: "Data Analyst"})
	ann, annPrincipal := p.student(t, "Ann", "ann@uni.edu")
	bob, bobPrincipal := p.student(t, "Bob", "bob@uni.edu")
	_, err := p.applications.Apply(ctx, annPrincipal, ann.ID, acmeJob.ID)
	require.NoError(t, err)
	_, err = p.applications.Apply(ctx, annPrincipal, ann.ID, betaJob.ID)
	require.NoError(t, err)
	_, err = p.applications.Apply(ctx, bobPrincipal, bob.ID, acmeJob.ID)
	require.NoError(t, err)

	annApplications, err := p.applications.ListForStudent(ctx, annPrincipal, ann.ID)
	assert.NoError(err)
	assert.Len(annApplications, 2)

	acmeApplications, err := p.applications.ListForCompany(ctx, acmePrincipal, acme.ID)
	assert.NoError(err)
	assert.Len(acmeApplications, 2)

	betaApplications, err := p.applications.ListForCompany(ctx, p.admin, beta.ID)
	assert.NoError(err)
	assert.Len(betaApplications, 1)

	_, err = p.applications.ListForStudent(ctx, bobPrincipal, ann.ID)
	assert.ErrorIs(err, failures.ErrForbidden)
	_, err = p.applications.ListForCompany(ctx, betaPrincipal, acme.ID)
	assert.ErrorIs(err, failures.ErrForbidden)
	_, err = p.applications.ListAll(ctx, annPrincipal)
	assert.ErrorIs(err, failures.ErrForbidden)

	all, err := p.applications.ListAll(ctx, p.admin)
	assert.NoError(err)
	assert.Len(all, 3)
}

func Test_Workflow_EndToEnd(t *testing.T) {
	assert := assert.New(t)
	p := newTestPortal(t)
	ctx := context.Background()

	company, err := p.companies.Register(ctx, RegisterCompanyInput{Name: "Acme", Email: "hr@acme.io", Password: "secret1"})
	require.NoError(t, err)
	_, err = p.companies.Login(ctx, "hr@acme.io", "secret1")
	assert.ErrorIs(err, failures.ErrNotApproved)

	require.NoError(t, p.companies.ReviewRegistration(ctx, p.admin, company.ID, Approve))
	session, err := p.companies.Login(ctx, "hr@acme.io", "secret1")
	require.NoError(t, err)
	companyPrincipal := session.Principal

	job, err := p.jobs.Create(ctx, companyPrincipal, company.ID, JobInput{Title: "Backend Intern", Deadline: "2030-01-31"})
	require.NoError(t, err)
	assert.Empty(catalogIDs(t, p, ""))
	require.NoError(t, p.jobs.Review(ctx, p.admin, job.ID, Approve))
	assert.Equal([]uint{job.ID}, catalogIDs(t, p, "backend"))

	student, studentPrincipal := p.student(t, "Ann", "ann@uni.edu")
	application, err := p.applications.Apply(ctx, studentPrincipal, student.ID, job.ID)
	require.NoError(t, err)

	for _, status := range []string{"Shortlisted", "Interview", "Selected", "Placed"} {
		updated, err := p.applications.UpdateStatus(ctx, companyPrincipal, application.ID, status)
		require.NoError(t, err, status)
		assert.Equal(status, string(updated.Status))
	}

	placements, err := p.applications.ListPlacements(ctx, p.admin)
	require.NoError(t, err)
	if assert.Len(placements, 1) {
		assert.Equal(student.ID, placements[0].StudentID)
		assert.Equal(company.ID, placements[0].CompanyID)
	}

	stats, err := p.admins.Dashboard(ctx, p.admin)
	require.NoError(t, err)
	assert.Equal(int64(1), stats.Companies)
	assert.Equal(int64(1), stats.Students)
	assert.Equal(int64(1), stats.CatalogJobs)
	assert.Equal(int64(1), stats.Applications)
	assert.Equal(int64(1), stats.Placements)
}

func Test_UpdateStatus_WhenFinalAndTargetUnknown_ShouldFailWithAlreadyFinalized(t *testing.T) {
	p := newTestPortal(t)
	ctx := context.Background()
	_, companyPrincipal := p.approvedCompany(t, "Acme", "hr@acme.io")
	job := p.openJob(t, companyPrincipal, JobInput{Title: "Backend Intern"})
	student, studentPrincipal := p.student(t, "Ann", "ann@uni.edu")
	application, err := p.applications.Apply(ctx, studentPrincipal, student.ID, job.ID)
	require.NoError(t, err)
	_, err = p.applications.UpdateStatus(ctx, companyPrincipal, application.ID, "Placed")
	require.NoError(t, err)

	_, err = p.applications.UpdateStatus(ctx, companyPrincipal, application.ID, "Bogus")

	assert.ErrorIs(t, err, failures.ErrAlreadyFinalized)
}

func Test_Placement_ShouldBeVisibleToItsStudentCompanyAndAdmins(t *testing.T) {
	assert := assert.New(t)
	p := newTestPortal(t)
	ctx := context.Background()
	company, companyPrincipal := p.approvedCompany(t, "Acme", "hr@acme.io")
	_, otherCompany := p.approvedCompany(t, "Beta", "hr@beta.io")
	job := p.openJob(t, companyPrincipal, JobInput{Title: "Backend Intern"})
	student, studentPrincipal := p.student(t, "Ann", "ann@uni.edu")
	_, otherStudent := p.student(t, "Bob", "bob@uni.edu")
	application, err := p.applications.Apply(ctx, studentPrincipal, student.ID, job.ID)
	require.NoError(t, err)

	_, err = p.applications.Placement(ctx, studentPrincipal, application.ID)
	assert.ErrorIs(err, failures.ErrNotFound)

	_, err = p.applications.UpdateStatus(ctx, companyPrincipal, application.ID, "Placed")
	require.NoError(t, err)

	for _, principal := range []access.Principal{studentPrincipal, companyPrincipal, p.admin} {
		placement, err := p.applications.Placement(ctx, principal, application.ID)
		if assert.NoError(err, principal.String()) {
			assert.Equal(student.ID, placement.StudentID)
			assert.Equal(company.ID, placement.CompanyID)
		}
	}

	for _, principal := range []access.Principal{otherStudent, otherCompany} {
		_, err = p.applications.Placement(ctx, principal, application.ID)
		assert.ErrorIs(err, failures.ErrForbidden, principal.String())
	}
	_, err = p.applications.Placement(ctx, access.Anonymous(), application.ID)
	assert.ErrorIs(err, failures.ErrUnauthorized)
}
