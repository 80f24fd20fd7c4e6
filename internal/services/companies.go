package services

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/go-playground/validator/v10"
	"github.com/maxaizer/placement-portal/internal/access"
	"github.com/maxaizer/placement-portal/internal/domain/events"
	"github.com/maxaizer/placement-portal/internal/entities"
	"github.com/maxaizer/placement-portal/internal/failures"
	log "github.com/sirupsen/logrus"
)

type companyRepository interface {
	Add(ctx context.Context, company *entities.Company) error
	GetByID(ctx context.Context, id uint) (*entities.Company, error)
	GetByEmail(ctx context.Context, email string) (*entities.Company, error)
	SetApprovalState(ctx context.Context, id uint, state entities.ApprovalState) error
	SetBlacklisted(ctx context.Context, id uint, blacklisted bool) error
	RemoveWithPostings(ctx context.Context, id uint) error
	GetListed(ctx context.Context) ([]entities.Company, error)
	GetByApprovalState(ctx context.Context, state entities.ApprovalState) ([]entities.Company, error)
	SearchByName(ctx context.Context, text string) ([]entities.Company, error)
}

type tokenIssuer interface {
	Issue(p access.Principal) (access.Session, error)
}

type RegisterCompanyInput struct {
	Name      string `validate:"required"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=6"`
	Website   string
	HRContact string
}

// Companies drives the company approval and blacklist lifecycle.
type Companies struct {
	companies companyRepository
	hasher    access.PasswordHasher
	tokens    tokenIssuer
	throttle  *LoginThrottle
	bus       EventBus.Bus
	validate  *validator.Validate
}

func NewCompanies(companies companyRepository, hasher access.PasswordHasher, tokens tokenIssuer,
	throttle *LoginThrottle, bus EventBus.Bus) *Companies {
	return &Companies{
		companies: companies,
		hasher:    hasher,
		tokens:    tokens,
		throttle:  throttle,
		bus:       bus,
		validate:  validator.New(),
	}
}

func (s *Companies) Register(ctx context.Context, input RegisterCompanyInput) (*entities.Company, error) {
	if err := validateInput(s.validate, input); err != nil {
		return nil, settle("register company", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, settle("register company", err)
	}

	company := entities.NewCompany(input.Name, input.Email, hash, input.Website, input.HRContact)
	if err := s.companies.Add(ctx, &company); err != nil {
		return nil, settle("register company", err)
	}

	countTransition("company", company.ApprovalState)
	log.Infof("company registered, id: %d, awaiting review", company.ID)
	return &company, nil
}

// ReviewRegistration approves the company or removes it together with its
// postings and their applications.
func (s *Companies) ReviewRegistration(ctx context.Context, principal access.Principal, companyID uint,
	decision Decision) error {

	if err := access.Authorize(principal, access.OpReviewCompany, access.CompanyTarget(companyID)); err != nil {
		return settle("review company", err)
	}

	decision, err := ParseDecision(string(decision))
	if err != nil {
		return settle("review company", err)
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return settle("review company", err)
	}

	if decision == Approve {
		err = s.companies.SetApprovalState(ctx, companyID, entities.ApprovalApproved)
	} else {
		err = s.companies.RemoveWithPostings(ctx, companyID)
	}
	if err != nil {
		return settle("review company", err)
	}

	approved := decision == Approve
	if approved {
		countTransition("company", entities.ApprovalApproved)
	} else {
		countTransition("company", entities.ApprovalRejected)
	}
	log.Infof("company %d reviewed by %s, approved: %v", companyID, principal, approved)
	publish(s.bus, events.CompanyReviewedTopic, events.CompanyReviewed{
		CompanyID: companyID,
		Name:      company.Name,
		Approved:  approved,
	})
	return nil
}

// SetBlacklist hides or restores a company's postings without touching them.
func (s *Companies) SetBlacklist(ctx context.Context, principal access.Principal, companyID uint, blacklisted bool) error {
	if err := access.Authorize(principal, access.OpBlacklistCompany, access.CompanyTarget(companyID)); err != nil {
		return settle("blacklist company", err)
	}

	if err := s.companies.SetBlacklisted(ctx, companyID, blacklisted); err != nil {
		return settle("blacklist company", err)
	}

	if blacklisted {
		countTransition("company", "Blacklisted")
	} else {
		countTransition("company", "Unblacklisted")
	}
	publish(s.bus, events.CompanyBlacklistedTopic, events.CompanyBlacklisted{CompanyID: companyID, Blacklisted: blacklisted})
	return nil
}

// Login reports NotApproved before checking the password. Blacklisted companies
// get Forbidden.
func (s *Companies) Login(ctx context.Context, email, password string) (*access.Session, error) {
	email = entities.NormalizeEmail(email)
	if err := s.throttle.Allow("company:" + email); err != nil {
		return nil, settle("company login", err)
	}

	company, err := s.companies.GetByEmail(ctx, email)
	if failures.Is(err, failures.KindNotFound) {
		return nil, settle("company login", failures.New(failures.KindInvalidCredentials, "invalid email or password"))
	}
	if err != nil {
		return nil, settle("company login", err)
	}

	if company.ApprovalState != entities.ApprovalApproved {
		return nil, settle("company login", failures.New(failures.KindNotApproved, "company registration is not approved yet"))
	}
	if !s.hasher.Verify(company.PasswordHash, password) {
		return nil, settle("company login", failures.New(failures.KindInvalidCredentials, "invalid email or password"))
	}
	if company.Blacklisted {
		return nil, settle("company login", failures.New(failures.KindForbidden, "company is blacklisted"))
	}

	session, err := s.tokens.Issue(access.Company(company.ID))
	if err != nil {
		return nil, settle("company login", err)
	}
	return &session, nil
}

func (s *Companies) Get(ctx context.Context, companyID uint) (*entities.Company, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	return company, settle("get company", err)
}

// ListApproved is the public company directory.
func (s *Companies) ListApproved(ctx context.Context) ([]entities.Company, error) {
	companies, err := s.companies.GetListed(ctx)
	return companies, settle("list companies", err)
}

func (s *Companies) Search(ctx context.Context, principal access.Principal, text string) ([]entities.Company, error) {
	if err := access.Authorize(principal, access.OpSearchCompanies, access.Target{}); err != nil {
		return nil, settle("search companies", err)
	}
	companies, err := s.companies.SearchByName(ctx, text)
	return companies, settle("search companies", err)
}

func (s *Companies) ListPending(ctx context.Context, principal access.Principal) ([]entities.Company, error) {
	if err := access.Authorize(principal, access.OpListPendingCompanies, access.Target{}); err != nil {
		return nil, settle("list pending companies", err)
	}
	companies, err := s.companies.GetByApprovalState(ctx, entities.ApprovalPending)
	return companies, settle("list pending companies", err)
}
