package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sahilchouksey/partner-hub/model"
	"github.com/sahilchouksey/partner-hub/services/notify"
	"github.com/sahilchouksey/partner-hub/utils"
	"github.com/sahilchouksey/partner-hub/utils/metrics"
)

// Schedules use six fields (seconds first).
const (
	ExpiryDigestSchedule = "0 0 7 * * *"
	WeeklyReportSchedule = "0 0 6 * * MON"
)

// PartnershipSource lists partnership records for a college.
type PartnershipSource interface {
	ListPartnerships(ctx context.Context, college string) ([]model.Partnership, error)
}

// Uploader stores a generated report.
type Uploader interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Deps are the collaborators of the scheduled jobs. Mailer and Uploader are
// optional; the job that needs a missing one only logs its result.
type Deps struct {
	Source     PartnershipSource
	Mailer     notify.Sender
	Recipients []string
	Uploader   Uploader
	Now        func() time.Time
	Logger     *zap.Logger
}

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron *cron.Cron
	deps Deps
	log  *zap.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(deps Deps) *CronManager {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = utils.Log
	}

	return &CronManager{
		cron: cron.New(cron.WithSeconds()),
		deps: deps,
		log:  logger.Named("cron"),
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	m.log.Info("starting cron jobs")

	if err := m.registerJobs(); err != nil {
		return err
	}
	m.cron.Start()

	m.log.Info("cron jobs started", zap.Int("jobs", len(m.cron.Entries())))
	return nil
}

// Stop stops all cron jobs and waits for running ones to finish.
func (m *CronManager) Stop() {
	m.log.Info("stopping cron jobs")
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.log.Info("cron jobs stopped")
}

func (m *CronManager) registerJobs() error {
	// Daily at 7 AM: email partnerships that expire within 30 days
	if _, err := m.cron.AddFunc(ExpiryDigestSchedule, func() {
		m.run(JobExpiryDigest, m.SendExpiryDigest)
	}); err != nil {
		return err
	}

	// Mondays at 6 AM: upload the dashboard workbook
	if _, err := m.cron.AddFunc(WeeklyReportSchedule, func() {
		m.run(JobWeeklyReport, m.UploadWeeklyReport)
	}); err != nil {
		return err
	}

	m.log.Info("all cron jobs registered")
	return nil
}

// run executes one job with a bounded context and records its outcome.
func (m *CronManager) run(jobName string, job func(context.Context) (string, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	m.logJobStart(jobName)
	message, err := job(ctx)
	if err != nil {
		m.logJobError(jobName, err)
		return
	}
	m.logJobComplete(jobName, message)
}

func (m *CronManager) logJobStart(jobName string) {
	m.log.Info("starting job", zap.String("job", jobName), zap.Time("at", m.deps.Now()))
}

func (m *CronManager) logJobComplete(jobName string, message string) {
	metrics.IncrementCronJob(jobName, "completed")
	m.log.Info("completed job", zap.String("job", jobName), zap.String("result", message))
}

func (m *CronManager) logJobError(jobName string, err error) {
	metrics.IncrementCronJob(jobName, "failed")
	m.log.Error("job failed", zap.String("job", jobName), zap.Error(err))
}
