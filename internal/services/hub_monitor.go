package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/taskboard/backend/pkg/logger"
)

// HubMonitor periodically logs fan-out statistics.
type HubMonitor struct {
	hub       *EventHub
	scheduler *cron.Cron
	entryID   cron.EntryID
}

// StartHubMonitor schedules the stats job with a cron spec such as
// "@every 1m". An empty spec disables the monitor and returns nil.
func StartHubMonitor(hub *EventHub, spec string) (*HubMonitor, error) {
	if spec == "" {
		return nil, nil
	}

	m := &HubMonitor{hub: hub, scheduler: cron.New()}
	entryID, err := m.scheduler.AddFunc(spec, m.report)
	if err != nil {
		return nil, err
	}
	m.entryID = entryID
	m.scheduler.Start()

	logger.Info().Str("schedule", spec).Msg("Hub monitor started")
	return m, nil
}

func (m *HubMonitor) report() {
	stats := m.hub.Stats()
	logger.Info().
		Int("subscribers", stats.Subscribers).
		Int("task_streams", stats.ByTopic[TopicTaskUpdated]).
		Int("comment_streams", stats.ByTopic[TopicCommentAdded]).
		Int("max_backlog", stats.MaxBacklog).
		Msg("event hub stats")
}

// NextRun returns when the next report is due, or the zero time when disabled.
func (m *HubMonitor) NextRun() time.Time {
	if m == nil {
		return time.Time{}
	}
	return m.scheduler.Entry(m.entryID).Next
}

// Stop halts the scheduler and waits for a running report to finish.
func (m *HubMonitor) Stop() {
	if m == nil {
		return
	}
	ctx := m.scheduler.Stop()
	<-ctx.Done()
}
