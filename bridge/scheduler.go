package bridge

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of scheduled background work.
type Job interface {
	Run() error
	Name() string
}

// Scheduler runs jobs on cron expressions. Expressions use the six-field
// form with a leading seconds field: "0 0 22 * * *" is ten at night.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// NewScheduler returns a stopped scheduler.
func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins running registered jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop cancels the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}

// AddJob registers a job. A failed run is logged and the schedule keeps
// going.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug().Str("job", job.Name()).Msg("running job")
		if err := job.Run(); err != nil {
			s.log.Error().Err(err).Str("job", job.Name()).Msg("job failed")
			return
		}
		s.log.Debug().Str("job", job.Name()).Msg("job completed")
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("schedule", schedule).Str("job", job.Name()).Msg("job registered")
	return nil
}

// RefreshJob refreshes the history files unattended, on the cron expression
// from FOLIO_REFRESH_CRON.
type RefreshJob struct {
	Pipeline Pipeline
}

func (j RefreshJob) Name() string { return "refresh" }

func (j RefreshJob) Run() error {
	_, err := j.Pipeline.Refresh()
	return err
}
