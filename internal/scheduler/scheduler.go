package scheduler

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/robfig/cron/v3"
)

// window is an hour range with historically good engagement.
type window struct {
	startHour int
	endHour   int
}

// Upload slots follow audience activity: early afternoon, after-school,
// and two evening peaks.
var windows = []window{
	{13, 15},
	{15, 17},
	{19, 21},
	{20, 22},
}

// Trigger requests one pipeline run.
type Trigger interface {
	TriggerNow() bool
}

// Scheduler fires the runner at random minutes inside the engagement
// windows, videosPerDay times a day.
type Scheduler struct {
	cron    *cron.Cron
	trigger Trigger
	entries []string
	logger  *slog.Logger
}

func New(trigger Trigger, videosPerDay int, logger *slog.Logger) (*Scheduler, error) {
	if videosPerDay <= 0 {
		videosPerDay = 3
	}
	if videosPerDay > len(windows) {
		videosPerDay = len(windows)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		cron:    cron.New(),
		trigger: trigger,
		logger:  logger,
	}

	for _, spec := range DailySpecs(videosPerDay) {
		if _, err := s.cron.AddFunc(spec, s.fire); err != nil {
			return nil, fmt.Errorf("add cron entry %q: %w", spec, err)
		}
		s.entries = append(s.entries, spec)
	}

	return s, nil
}

// DailySpecs builds n cron expressions, one per engagement window, at
// a random hour and minute inside each window.
func DailySpecs(n int) []string {
	specs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		w := windows[i%len(windows)]
		hour := w.startHour + rand.Intn(w.endHour-w.startHour)
		minute := rand.Intn(60)
		specs = append(specs, fmt.Sprintf("%d %d * * *", minute, hour))
	}
	return specs
}

// Entries exposes the generated cron expressions for logging.
func (s *Scheduler) Entries() []string {
	return s.entries
}

func (s *Scheduler) Start() {
	s.logger.Info("scheduler started", "entries", s.entries)
	s.cron.Start()
}

// Stop waits for an in-flight trigger callback, not for the pipeline.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) fire() {
	if !s.trigger.TriggerNow() {
		s.logger.Warn("scheduled run skipped, pipeline busy")
	}
}
