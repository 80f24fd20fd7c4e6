package services

import (
	"context"

	"github.com/maxaizer/placement-portal/internal/access"
	"github.com/maxaizer/placement-portal/internal/entities"
	"github.com/maxaizer/placement-portal/internal/failures"
	"github.com/maxaizer/placement-portal/internal/repositories"
	log "github.com/sirupsen/logrus"
)

type adminRepository interface {
	AddIfMissing(ctx context.Context, admin *entities.Admin) (bool, error)
	GetByUsername(ctx context.Context, username string) (*entities.Admin, error)
}

type statsReader interface {
	Get(ctx context.Context) (repositories.Stats, error)
}

type Admins struct {
	admins   adminRepository
	stats    statsReader
	hasher   access.PasswordHasher
	tokens   tokenIssuer
	throttle *LoginThrottle
}

func NewAdmins(admins adminRepository, stats statsReader, hasher access.PasswordHasher, tokens tokenIssuer,
	throttle *LoginThrottle) *Admins {
	return &Admins{admins: admins, stats: stats, hasher: hasher, tokens: tokens, throttle: throttle}
}

// EnsureDefault seeds the configured admin account. An existing account keeps
// its password.
func (s *Admins) EnsureDefault(ctx context.Context, username, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return settle("seed admin", err)
	}

	created, err := s.admins.AddIfMissing(ctx, &entities.Admin{Username: username, PasswordHash: hash})
	if err != nil {
		return settle("seed admin", err)
	}
	if created {
		log.Infof("default admin %q created", username)
	}
	return nil
}

func (s *Admins) Login(ctx context.Context, username, password string) (*access.Session, error) {
	if err := s.throttle.Allow("admin:" + username); err != nil {
		return nil, settle("admin login", err)
	}

	admin, err := s.admins.GetByUsername(ctx, username)
	if failures.Is(err, failures.KindNotFound) {
		return nil, settle("admin login", failures.New(failures.KindInvalidCredentials, "invalid username or password"))
	}
	if err != nil {
		return nil, settle("admin login", err)
	}
	if !s.hasher.Verify(admin.PasswordHash, password) {
		return nil, settle("admin login", failures.New(failures.KindInvalidCredentials, "invalid username or password"))
	}

	session, err := s.tokens.Issue(access.Admin(admin.ID))
	if err != nil {
		return nil, settle("admin login", err)
	}
	return &session, nil
}

// Dashboard returns portal counts. They may lag writes by the stats cache TTL.
func (s *Admins) Dashboard(ctx context.Context, principal access.Principal) (repositories.Stats, error) {
	if err := access.Authorize(principal, access.OpViewDashboard, access.Target{}); err != nil {
		return repositories.Stats{}, settle("dashboard", err)
	}
	stats, err := s.stats.Get(ctx)
	return stats, settle("dashboard", err)
}
