package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-service/internal/dto"
)

// Health states.
const (
	StatusUp       = "UP"
	StatusDown     = "DOWN"
	StatusDisabled = "DISABLED"
)

const checkTimeout = 2 * time.Second

type databaseChecker interface {
	Ping(ctx context.Context) error
	Version(ctx context.Context) (string, error)
}

type cacheChecker interface {
	Ping(ctx context.Context) error
}

// HealthService reports liveness and dependency status. Check failures are
// reported in the payload and never returned as errors.
type HealthService struct {
	service string
	dbURL   string
	db      databaseChecker
	cache   cacheChecker
	cacheOn bool
	logger  *zap.Logger
	now     func() time.Time
}

// NewHealthService constructs the health service. cache may be nil when caching is off.
func NewHealthService(service, dbURL string, db databaseChecker, cache cacheChecker, cacheEnabled bool, logger *zap.Logger) *HealthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthService{service: service, dbURL: dbURL, db: db, cache: cache, cacheOn: cacheEnabled, logger: logger, now: time.Now}
}

// Basic reports that the process is serving requests.
func (s *HealthService) Basic() dto.HealthStatus {
	return dto.HealthStatus{Status: StatusUp, Service: s.service, Timestamp: s.now().UTC()}
}

// Detailed checks the database and cache.
func (s *HealthService) Detailed(ctx context.Context) dto.DetailedHealth {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	report := dto.DetailedHealth{Status: StatusUp, Service: s.service, Timestamp: s.now().UTC()}

	report.Database = s.checkDatabase(ctx)
	if report.Database.Status != StatusUp {
		report.Status = StatusDown
	}

	report.Cache = dto.ComponentHealth{Status: StatusDisabled}
	if s.cacheOn && s.cache != nil {
		report.Cache.Status = StatusUp
		if err := s.cache.Ping(ctx); err != nil {
			s.logger.Warn("cache health check failed", zap.Error(err))
			report.Cache = dto.ComponentHealth{Status: StatusDown, Error: err.Error()}
		}
	}
	return report
}

func (s *HealthService) checkDatabase(ctx context.Context) dto.ComponentHealth {
	if s.db == nil {
		return dto.ComponentHealth{Status: StatusDown, Error: "database not configured"}
	}
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn("database health check failed", zap.Error(err))
		return dto.ComponentHealth{Status: StatusDown, Error: err.Error()}
	}
	version, err := s.db.Version(ctx)
	if err != nil {
		s.logger.Warn("database version check failed", zap.Error(err))
		return dto.ComponentHealth{Status: StatusDown, Error: err.Error()}
	}
	return dto.ComponentHealth{Status: StatusUp, Database: version, URL: s.dbURL}
}
