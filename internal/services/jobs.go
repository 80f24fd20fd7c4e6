package services

import (
	"context"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/go-playground/validator/v10"
	"github.com/maxaizer/placement-portal/internal/access"
	"github.com/maxaizer/placement-portal/internal/domain/events"
	"github.com/maxaizer/placement-portal/internal/entities"
	"github.com/maxaizer/placement-portal/internal/failures"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

type jobRepository interface {
	Add(ctx context.Context, job *entities.JobPosting) error
	GetByID(ctx context.Context, id uint) (*entities.JobPosting, error)
	SetReviewState(ctx context.Context, id uint, state entities.ReviewState) error
	Update(ctx context.Context, job entities.JobPosting) error
	RemoveWithApplications(ctx context.Context, id uint) error
	GetCatalog(ctx context.Context, filter string) ([]entities.JobPosting, error)
	GetByCompany(ctx context.Context, companyID uint) ([]entities.JobPosting, error)
	GetAll(ctx context.Context) ([]entities.JobPosting, error)
}

type companyReader interface {
	GetByID(ctx context.Context, id uint) (*entities.Company, error)
}

// JobInput carries the editable fields of a posting. Deadline uses
// entities.DeadlineLayout.
type JobInput struct {
	Title       string `validate:"required"`
	Description string
	Eligibility string
	Deadline    string
	Skills      string
	Experience  string
	Salary      string
}

var companyStatusTargets = []entities.ReviewState{entities.ReviewApproved, entities.ReviewClosed, entities.ReviewActive}

var companyStatusSources = []entities.ReviewState{entities.ReviewApproved, entities.ReviewClosed}

type Jobs struct {
	jobs      jobRepository
	companies companyReader
	bus       EventBus.Bus
	validate  *validator.Validate
	now       func() time.Time
}

func NewJobs(jobs jobRepository, companies companyReader, bus EventBus.Bus) *Jobs {
	return &Jobs{jobs: jobs, companies: companies, bus: bus, validate: validator.New(), now: time.Now}
}

// Create stores a new posting in review. Only approved companies may post.
func (s *Jobs) Create(ctx context.Context, principal access.Principal, companyID uint,
	input JobInput) (*entities.JobPosting, error) {

	if err := access.Authorize(principal, access.OpCreateJob, access.CompanyTarget(companyID)); err != nil {
		return nil, settle("create job", err)
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, settle("create job", err)
	}
	if company.ApprovalState != entities.ApprovalApproved {
		return nil, settle("create job", failures.New(failures.KindNotApproved, "company is not approved to post jobs"))
	}

	job, err := s.fromInput(input)
	if err != nil {
		return nil, settle("create job", err)
	}
	job.CompanyID = companyID
	job.ReviewState = entities.ReviewPending

	if err := s.jobs.Add(ctx, &job); err != nil {
		return nil, settle("create job", err)
	}

	countTransition("job", job.ReviewState)
	log.Infof("job %d created by company %d, awaiting review", job.ID, companyID)
	return &job, nil
}

func (s *Jobs) fromInput(input JobInput) (entities.JobPosting, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(s.validate, input); err != nil {
		return entities.JobPosting{}, err
	}

	deadline, ok := entities.ParseDeadline(input.Deadline)
	if !ok {
		log.Warnf("ignoring malformed job deadline %q, expected %s", input.Deadline, entities.DeadlineLayout)
	}
	if deadline != nil && entities.DeadlinePassed(*deadline, s.now()) {
		return entities.JobPosting{}, failures.Validation("invalid input", map[string]string{
			"deadline": "must not be in the past",
		})
	}

	return entities.JobPosting{
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		Eligibility: strings.TrimSpace(input.Eligibility),
		Deadline:    deadline,
		Skills:      strings.TrimSpace(input.Skills),
		Experience:  strings.TrimSpace(input.Experience),
		Salary:      strings.TrimSpace(input.Salary),
	}, nil
}

// Review applies an admin decision. The latest decision wins whatever the
// current state is.
func (s *Jobs) Review(ctx context.Context, principal access.Principal, jobID uint, decision Decision) error {
	if err := access.Authorize(principal, access.OpReviewJob, access.Target{}); err != nil {
		return settle("review job", err)
	}

	decision, err := ParseDecision(string(decision))
	if err != nil {
		return settle("review job", err)
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return settle("review job", err)
	}

	state := entities.ReviewRejected
	if decision == Approve {
		state = entities.ReviewApproved
	}
	if err := s.jobs.SetReviewState(ctx, jobID, state); err != nil {
		return settle("review job", err)
	}

	countTransition("job", state)
	log.Infof("job %d reviewed by %s: %s", jobID, principal, state)
	publish(s.bus, events.JobReviewedTopic, events.JobReviewed{JobID: jobID, CompanyID: job.CompanyID, State: state})
	return nil
}

// SetStatus lets the owning company close an approved posting or reopen a
// closed one. Active is stored as Approved.
func (s *Jobs) SetStatus(ctx context.Context, principal access.Principal, jobID uint,
	target string) (*entities.JobPosting, error) {

	job, err := s.ownedJob(ctx, principal, access.OpSetJobStatus, jobID)
	if err != nil {
		return nil, settle("set job status", err)
	}

	state, err := entities.ParseReviewState(target)
	if err != nil || !lo.Contains(companyStatusTargets, state) {
		return nil, settle("set job status", failures.New(failures.KindInvalidTransition,
			"job status can only be set to Approved, Active or Closed"))
	}
	if state == entities.ReviewActive {
		state = entities.ReviewApproved
	}

	if !lo.Contains(companyStatusSources, job.ReviewState) {
		return nil, settle("set job status", failures.New(failures.KindInvalidTransition,
			"job in state "+string(job.ReviewState)+" cannot be opened or closed"))
	}
	if job.ReviewState == state {
		return job, nil
	}

	if err := s.jobs.SetReviewState(ctx, jobID, state); err != nil {
		return nil, settle("set job status", err)
	}

	from := job.ReviewState
	job.ReviewState = state
	countTransition("job", state)
	publish(s.bus, events.JobStatusChangedTopic, events.JobStatusChanged{
		JobID:     jobID,
		CompanyID: job.CompanyID,
		From:      from,
		To:        state,
	})
	return job, nil
}

// ownedJob loads the posting and checks that principal may run op on it.
func (s *Jobs) ownedJob(ctx context.Context, principal access.Principal, op access.Operation,
	jobID uint) (*entities.JobPosting, error) {

	if err := access.AuthorizeRole(principal, op); err != nil {
		return nil, err
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(principal, op, access.CompanyTarget(job.CompanyID)); err != nil {
		return nil, err
	}
	return job, nil
}

// ListApproved returns the catalog. filter matches title, company name or
// skills.
func (s *Jobs) ListApproved(ctx context.Context, filter string) ([]entities.JobPosting, error) {
	jobs, err := s.jobs.GetCatalog(ctx, filter)
	return jobs, settle("list catalog", err)
}

// Get returns catalog postings to anyone. Owners and admins also see postings
// outside the catalog; everyone else gets NotFound for them.
func (s *Jobs) Get(ctx context.Context, principal access.Principal, jobID uint) (*entities.JobPosting, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, settle("get job", err)
	}

	visible := job.ReviewState == entities.ReviewApproved && job.Company.IsListed()
	if visible || access.CanPerform(principal, access.OpViewJob, access.CompanyTarget(job.CompanyID)).Allowed {
		return job, nil
	}
	return nil, settle("get job", failures.NotFound("job posting"))
}

// Update rewrites the editable fields. Owner and review state stay as they are.
func (s *Jobs) Update(ctx context.Context, principal access.Principal, jobID uint,
	input JobInput) (*entities.JobPosting, error) {

	job, err := s.ownedJob(ctx, principal, access.OpUpdateJob, jobID)
	if err != nil {
		return nil, settle("update job", err)
	}

	edited, err := s.fromInput(input)
	if err != nil {
		return nil, settle("update job", err)
	}
	edited.ID = job.ID
	edited.CompanyID = job.CompanyID
	edited.Company = job.Company
	edited.ReviewState = job.ReviewState
	edited.CreatedAt = job.CreatedAt

	if err := s.jobs.Update(ctx, edited); err != nil {
		return nil, settle("update job", err)
	}
	return &edited, nil
}

// Delete removes the posting and its applications.
func (s *Jobs) Delete(ctx context.Context, principal access.Principal, jobID uint) error {
	if _, err := s.ownedJob(ctx, principal, access.OpDeleteJob, jobID); err != nil {
		return settle("delete job", err)
	}
	if err := s.jobs.RemoveWithApplications(ctx, jobID); err != nil {
		return settle("delete job", err)
	}
	log.Infof("job %d deleted by %s", jobID, principal)
	return nil
}

func (s *Jobs) ListForCompany(ctx context.Context, principal access.Principal,
	companyID uint) ([]entities.JobPosting, error) {

	if err := access.Authorize(principal, access.OpListCompanyJob, access.CompanyTarget(companyID)); err != nil {
		return nil, settle("list company jobs", err)
	}
	jobs, err := s.jobs.GetByCompany(ctx, companyID)
	return jobs, settle("list company jobs", err)
}

func (s *Jobs) ListAll(ctx context.Context, principal access.Principal) ([]entities.JobPosting, error) {
	if err := access.Authorize(principal, access.OpListAllJobs, access.Target{}); err != nil {
		return nil, settle("list jobs", err)
	}
	jobs, err := s.jobs.GetAll(ctx)
	return jobs, settle("list jobs", err)
}
