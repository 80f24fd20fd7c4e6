package services

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/placement-portal/internal/access"
	"github.com/maxaizer/placement-portal/internal/domain/events"
	"github.com/maxaizer/placement-portal/internal/entities"
	"github.com/maxaizer/placement-portal/internal/failures"
	"github.com/maxaizer/placement-portal/internal/metrics"
	log "github.com/sirupsen/logrus"
)

type applicationRepository interface {
	Add(ctx context.Context, application *entities.Application) error
	GetByID(ctx context.Context, id uint) (*entities.Application, error)
	UpdateStatus(ctx context.Context, id uint, status entities.ApplicationStatus) (*entities.Application, *entities.Placement, error)
	GetByStudent(ctx context.Context, studentID uint) ([]entities.Application, error)
	GetByCompany(ctx context.Context, companyID uint) ([]entities.Application, error)
	GetAll(ctx context.Context) ([]entities.Application, error)
}

type placementRepository interface {
	GetByApplication(ctx context.Context, applicationID uint) (*entities.Placement, error)
	GetAll(ctx context.Context) ([]entities.Placement, error)
}

type studentReader interface {
	GetByID(ctx context.Context, id uint) (*entities.Student, error)
}

type jobReader interface {
	GetByID(ctx context.Context, id uint) (*entities.JobPosting, error)
}

// Applications runs the student application workflow and records placements.
type Applications struct {
	applications applicationRepository
	placements   placementRepository
	students     studentReader
	jobs         jobReader
	bus          EventBus.Bus
}

func NewApplications(applications applicationRepository, placements placementRepository,
	students studentReader, jobs jobReader, bus EventBus.Bus) *Applications {
	return &Applications{
		applications: applications,
		placements:   placements,
		students:     students,
		jobs:         jobs,
		bus:          bus,
	}
}

// Apply files an application for a catalog posting. Concurrent duplicates are
// settled by the store: exactly one succeeds, the rest get DuplicateApplication.
func (s *Applications) Apply(ctx context.Context, principal access.Principal, studentID,
	jobID uint) (*entities.Application, error) {

	if err := access.Authorize(principal, access.OpApply, access.StudentTarget(studentID)); err != nil {
		return nil, settle("apply", err)
	}

	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, settle("apply", err)
	}
	if !student.Active {
		return nil, settle("apply", failures.New(failures.KindForbidden, "student account is deactivated"))
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, settle("apply", err)
	}
	if job.ReviewState != entities.ReviewApproved || !job.Company.IsListed() {
		return nil, settle("apply", failures.New(failures.KindJobNotOpen, "job is not open for applications"))
	}

	application := entities.NewApplication(studentID, jobID)
	if err := s.applications.Add(ctx, &application); err != nil {
		return nil, settle("apply", err)
	}

	countTransition("application", application.Status)
	log.Infof("student %d applied to job %d, application: %d", studentID, jobID, application.ID)
	publish(s.bus, events.ApplicationSubmittedTopic, events.ApplicationSubmitted{
		ApplicationID: application.ID,
		StudentID:     studentID,
		JobID:         jobID,
	})
	return &application, nil
}

// UpdateStatus moves an application to target. Any non-final status may move to
// any status; Placed and Rejected are terminal. Reaching Placed records exactly
// one placement.
func (s *Applications) UpdateStatus(ctx context.Context, principal access.Principal, applicationID uint,
	target string) (*entities.Application, error) {

	if err := access.AuthorizeRole(principal, access.OpUpdateApplicationStatus); err != nil {
		return nil, settle("update application status", err)
	}

	application, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, settle("update application status", err)
	}
	owner := access.CompanyTarget(application.JobPosting.CompanyID)
	if err := access.Authorize(principal, access.OpUpdateApplicationStatus, owner); err != nil {
		return nil, settle("update application status", err)
	}

	if application.Status.IsFinal() {
		return nil, settle("update application status", failures.New(failures.KindAlreadyFinalized,
			"application status is final: "+string(application.Status)))
	}
	status, err := entities.ParseApplicationStatus(target)
	if err != nil {
		return nil, settle("update application status", failures.Wrap(failures.KindInvalidTransition,
			"unknown application status", err))
	}

	updated, placement, err := s.applications.UpdateStatus(ctx, applicationID, status)
	if err != nil {
		return nil, settle("update application status", err)
	}

	countTransition("application", status)
	publish(s.bus, events.ApplicationStatusChangedTopic, events.ApplicationStatusChanged{
		ApplicationID: updated.ID,
		StudentID:     updated.StudentID,
		JobID:         updated.JobPostingID,
		JobTitle:      updated.JobPosting.Title,
		Status:        updated.Status,
	})

	if placement != nil {
		metrics.PlacementsCounter.Inc()
		log.Infof("student %d placed at company %d, application: %d", placement.StudentID, placement.CompanyID, updated.ID)
		publish(s.bus, events.PlacementCreatedTopic, events.PlacementCreated{
			PlacementID:   placement.ID,
			ApplicationID: placement.ApplicationID,
			StudentID:     placement.StudentID,
			CompanyID:     placement.CompanyID,
			JobTitle:      placement.JobTitle,
			PlacedAt:      placement.PlacedAt,
		})
	}
	return updated, nil
}

func (s *Applications) ListForStudent(ctx context.Context, principal access.Principal,
	studentID uint) ([]entities.Application, error) {

	if err := access.Authorize(principal, access.OpListStudentApplications, access.StudentTarget(studentID)); err != nil {
		return nil, settle("list student applications", err)
	}
	applications, err := s.applications.GetByStudent(ctx, studentID)
	return applications, settle("list student applications", err)
}

func (s *Applications) ListForCompany(ctx context.Context, principal access.Principal,
	companyID uint) ([]entities.Application, error) {

	if err := access.Authorize(principal, access.OpListCompanyApplications, access.CompanyTarget(companyID)); err != nil {
		return nil, settle("list company applications", err)
	}
	applications, err := s.applications.GetByCompany(ctx, companyID)
	return applications, settle("list company applications", err)
}

func (s *Applications) ListAll(ctx context.Context, principal access.Principal) ([]entities.Application, error) {
	if err := access.Authorize(principal, access.OpListAllApplications, access.Target{}); err != nil {
		return nil, settle("list applications", err)
	}
	applications, err := s.applications.GetAll(ctx)
	return applications, settle("list applications", err)
}

func (s *Applications) ListPlacements(ctx context.Context, principal access.Principal) ([]entities.Placement, error) {
	if err := access.Authorize(principal, access.OpListPlacements, access.Target{}); err != nil {
		return nil, settle("list placements", err)
	}
	placements, err := s.placements.GetAll(ctx)
	return placements, settle("list placements", err)
}

// Placement returns the placement recorded for an application. The placed student,
// the hiring company and admins may read it.
func (s *Applications) Placement(ctx context.Context, principal access.Principal,
	applicationID uint) (*entities.Placement, error) {

	if err := access.AuthorizeRole(principal, access.OpViewPlacement); err != nil {
		return nil, settle("get placement", err)
	}

	placement, err := s.placements.GetByApplication(ctx, applicationID)
	if err != nil {
		return nil, settle("get placement", err)
	}
	owners := access.Target{CompanyID: placement.CompanyID, StudentID: placement.StudentID}
	if err := access.Authorize(principal, access.OpViewPlacement, owners); err != nil {
		return nil, settle("get placement", err)
	}
	return placement, nil
}
