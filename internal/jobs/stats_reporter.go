package jobs

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"chatrelay/internal/chat"
	"chatrelay/internal/metrics"
)

// StatsReporter periodically logs registry totals and refreshes the room
// gauges. Counts are pulled on a schedule rather than pushed from the hot
// path so broadcast latency is unaffected.
type StatsReporter struct {
	log      *zap.Logger
	registry *chat.Registry
	schedule string
	cron     *cron.Cron
}

func NewStatsReporter(log *zap.Logger, registry *chat.Registry) *StatsReporter {
	return &StatsReporter{
		log:      log,
		registry: registry,
		schedule: "@every 1m",
		cron:     cron.New(),
	}
}

func (s *StatsReporter) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.Report); err != nil {
		return fmt.Errorf("failed to schedule stats reporter: %w", err)
	}
	s.cron.Start()
	return nil
}

func (s *StatsReporter) Stop() {
	s.cron.Stop()
}

// Report snapshots the registry into logs and gauges.
func (s *StatsReporter) Report() {
	rooms, members := s.registry.Stats()
	metrics.RoomsOpen.Set(float64(rooms))
	metrics.RoomMembers.Set(float64(members))
	s.log.Info("registry stats",
		zap.Int("rooms", rooms),
		zap.Int("members", members))
}
