package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/placement-portal/internal/access"
	"github.com/maxaizer/placement-portal/internal/config"
	"github.com/maxaizer/placement-portal/internal/domain/events"
	"github.com/maxaizer/placement-portal/internal/logger"
	"github.com/maxaizer/placement-portal/internal/metrics"
	"github.com/maxaizer/placement-portal/internal/notifier"
	"github.com/maxaizer/placement-portal/internal/repositories"
	"github.com/maxaizer/placement-portal/internal/services"
	log "github.com/sirupsen/logrus"
)

const loginThrottleIdle = 15 * time.Minute

// Portal is the assembled workflow engine handed to a transport layer.
type Portal struct {
	Tokens       *access.TokenIssuer
	Companies    *services.Companies
	Students     *services.Students
	Admins       *services.Admins
	Jobs         *services.Jobs
	Applications *services.Applications
}

func buildPortal(cfg *config.Config, dbContext *repositories.DbContext, bus EventBus.Bus,
	stats *repositories.CachedStats) *Portal {

	companies := repositories.NewCompaniesRepository(dbContext.DB)
	students := repositories.NewStudentsRepository(dbContext.DB)
	jobs := repositories.NewJobsRepository(dbContext.DB)

	hasher := access.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := access.NewTokenIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	throttle := services.NewLoginThrottle(cfg.Auth.LoginAttemptsPerMinute, cfg.Auth.LoginBurst, loginThrottleIdle)

	admins := services.NewAdmins(repositories.NewAdminsRepository(dbContext.DB), stats, hasher, tokens, throttle)
	applications := services.NewApplications(repositories.NewApplicationsRepository(dbContext.DB),
		repositories.NewPlacementsRepository(dbContext.DB), students, jobs, bus)

	return &Portal{
		Tokens:       tokens,
		Companies:    services.NewCompanies(companies, hasher, tokens, throttle, bus),
		Students:     services.NewStudents(students, hasher, tokens, throttle),
		Admins:       admins,
		Jobs:         services.NewJobs(jobs, companies, bus),
		Applications: applications,
	}
}

func runNotifier(cfg *config.Config, dbContext *repositories.DbContext, bus EventBus.Bus) *notifier.Notifier {
	if !cfg.Notifier.Enabled() {
		log.Info("telegram token not set, student notifications disabled")
		return nil
	}

	tgNotifier, err := notifier.NewNotifier(cfg.Notifier.Token, bus, repositories.NewStudentsRepository(dbContext.DB))
	if err != nil {
		log.Fatalf("can't create notifier: %v", err)
	}
	go tgNotifier.Run()
	return tgNotifier
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.Metrics.Address)

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	err = dbContext.Migrate()
	if err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	bus := EventBus.New()
	stats := repositories.NewCachedStats(repositories.NewStatsRepository(dbContext.DB), cfg.Metrics.StatsCacheTTL)
	err = bus.Subscribe(events.PlacementCreatedTopic, func(events.PlacementCreated) { stats.Invalidate() })
	if err != nil {
		log.Fatalf("can't subscribe stats cache: %v", err)
	}
	portal := buildPortal(cfg, dbContext, bus, stats)

	if err := portal.Admins.EnsureDefault(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		log.Fatalf("can't seed admin: %v", err)
	}

	reporter, err := services.NewStatsReporter(stats, cfg.Metrics.StatsSchedule)
	if err != nil {
		log.Fatalf("can't create stats reporter: %v", err)
	}

	tgNotifier := runNotifier(cfg, dbContext, bus)

	log.Info("placement portal started")
	<-ctx.Done()

	log.Info("Shutting down services...")
	reporter.Stop()
	if tgNotifier != nil {
		tgNotifier.Stop()
	}
	log.Info("Services stopped.")
}
