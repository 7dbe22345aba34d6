package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/quizbank/admin-service/internal/cache"
	"github.com/quizbank/admin-service/internal/events"
	"github.com/quizbank/admin-service/internal/repositories"
	"github.com/quizbank/admin-service/internal/storage"
)

// ServiceManagerDeps holds everything the services are built from.
type ServiceManagerDeps struct {
	Repo      repositories.Repository
	Store     storage.BlobStore
	Publisher events.EventPublisher
	CacheMgr  *cache.CacheManager
	Runner    TaskRunner
	Logger    *slog.Logger
}

// serviceManager implements ServiceManager
type serviceManager struct {
	deps ServiceManagerDeps

	quizService      QuizService
	taxonomyService  TaxonomyService
	exportService    ExportService
	dashboardService DashboardService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager wires all services from deps.
func NewServiceManager(deps ServiceManagerDeps) ServiceManager {
	sm := &serviceManager{deps: deps}
	sm.initialize()
	return sm
}

func (sm *serviceManager) initialize() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return
	}

	d := sm.deps
	sm.quizService = NewQuizService(d.Repo, d.Store, d.Publisher, d.CacheMgr, d.Runner, d.Logger)
	sm.taxonomyService = NewTaxonomyService(d.Repo, d.CacheMgr, d.Logger)
	sm.exportService = NewExportService(d.Repo, d.Logger)
	sm.dashboardService = NewDashboardService(d.Repo, d.CacheMgr, d.Logger)

	sm.initialized = true
	d.Logger.Info("Service manager initialized")
}

// Service getters
func (sm *serviceManager) Quiz() QuizService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.quizService
}

func (sm *serviceManager) Taxonomy() TaxonomyService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.taxonomyService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.exportService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.dashboardService
}

// HealthCheck verifies the document store; the cache is optional and only
// degrades performance when down, so its state is logged, not fatal.
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("document store health check failed: %w", err)
	}

	if err := sm.deps.CacheMgr.HealthCheck(ctx); err != nil {
		sm.deps.Logger.Warn("cache unavailable, serving without it", "error", err)
	}

	return nil
}

// Shutdown drains background work, then closes the publisher and the store.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if err := sm.deps.Runner.Shutdown(ctx); err != nil {
		sm.deps.Logger.Error("background runner drain failed", "error", err)
	}

	if err := sm.deps.Publisher.Close(); err != nil {
		sm.deps.Logger.Error("event publisher close failed", "error", err)
	}

	if err := sm.deps.Repo.Close(ctx); err != nil {
		sm.deps.Logger.Error("document store close failed", "error", err)
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")

	return nil
}
