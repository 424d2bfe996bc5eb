// Package scheduler keeps the feed cache warm in the background.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"video_resolver/internal/model"
)

// LatestResolver resolves the channel's latest video.
type LatestResolver interface {
	Latest(ctx context.Context) *model.ResolvedVideo
}

// Purger drops expired cache entries.
type Purger interface {
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// Scheduler periodically resolves the latest video so the render path
// rarely meets a cold feed cache.
type Scheduler struct {
	resolver LatestResolver
	purger   Purger
	log      *slog.Logger
	tick     time.Duration
	now      func() time.Time
}

// New creates a Scheduler that warms every tick.
func New(resolver LatestResolver, tick time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		resolver: resolver,
		log:      log,
		tick:     tick,
		now:      time.Now,
	}
}

// SetPurger makes every warm-up also drop expired entries from p.
func (s *Scheduler) SetPurger(p Purger) {
	s.purger = p
}

// Run starts the warm-up loop, blocking until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.warm(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.warm(ctx)
		}
	}
}

func (s *Scheduler) warm(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	v := s.resolver.Latest(ctx)
	if v == nil {
		s.log.Warn("warm feed cache: no latest video")
	} else {
		s.log.Debug("warm feed cache", "video_id", v.ID, "published_at", v.PublishedAt)
	}

	if s.purger == nil {
		return
	}
	n, err := s.purger.Purge(ctx, s.now())
	if err != nil {
		s.log.Error("purge cache", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("purged expired cache entries", "count", n)
	}
}
