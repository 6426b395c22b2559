package services

import (
	"time"

	"github.com/go-co-op/gocron"

	"university-rag-assistant/internal/logger"
)

// SessionSweeper periodically evicts sessions that have been idle longer
// than the configured TTL. Disabled when ttl is zero.
type SessionSweeper struct {
	scheduler *gocron.Scheduler
	sessions  *SessionStore
	ttl       time.Duration
}

func NewSessionSweeper(sessions *SessionStore, ttl time.Duration) *SessionSweeper {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &SessionSweeper{
		scheduler: s,
		sessions:  sessions,
		ttl:       ttl,
	}
}

// Start schedules the sweep. Sweeps run at one quarter of the TTL so an
// idle session is evicted within ttl + ttl/4 of its last activity.
func (s *SessionSweeper) Start() error {
	if s.ttl <= 0 {
		return nil
	}

	interval := s.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}

	_, err := s.scheduler.Every(interval).Tag("session-sweep").Do(func() {
		evicted := s.sessions.EvictIdle(s.ttl)
		if evicted > 0 {
			logger.Info("Evicted idle sessions", "count", evicted, "ttl", s.ttl.String())
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	logger.Info("Session sweeper started", "interval", interval.String(), "ttl", s.ttl.String())
	return nil
}

// Stop halts the sweep loop.
func (s *SessionSweeper) Stop() {
	s.scheduler.Stop()
}
