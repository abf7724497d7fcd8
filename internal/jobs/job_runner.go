package jobs

import (
	"context"

	"aurum-backend/internal/config"
	"aurum-backend/internal/logger"
	"aurum-backend/internal/notify"
	"aurum-backend/internal/repository"
	"aurum-backend/internal/service"
)

// Locker is the cross-replica mutual exclusion for sweep passes. Satisfied by
// redisx.Mutex.
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	orders   repository.OrderRepository
	users    repository.UserRepository
	orderSvc service.OrderService
	push     notify.PushChannel
	lock     Locker
	config   *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(
	orders repository.OrderRepository,
	users repository.UserRepository,
	orderSvc service.OrderService,
	push notify.PushChannel,
	lock Locker,
	cfg *config.Config,
) *JobRunner {
	return &JobRunner{
		orders:   orders,
		users:    users,
		orderSvc: orderSvc,
		push:     push,
		lock:     lock,
		config:   cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}
