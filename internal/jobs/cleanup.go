package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/studiofit/gym-assistant-go/internal/repository"
)

// CleanupJob periodically prunes sessions whose date has passed and
// canceled bookings past the retention window. Past sessions cascade to
// their bookings, so confirmed history is dropped together with the
// session it belongs to.
type CleanupJob struct {
	scheduleRepo repository.ScheduleRepository
	bookingRepo  repository.BookingRepository
	retention    time.Duration
	interval     time.Duration
	done         chan struct{}
}

func NewCleanupJob(
	scheduleRepo repository.ScheduleRepository,
	bookingRepo repository.BookingRepository,
	retention time.Duration,
	interval time.Duration,
) *CleanupJob {
	return &CleanupJob{
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		retention:    retention,
		interval:     interval,
		done:         make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-j.retention)
	j.runCleanup(ctx, "past sessions", func(ctx context.Context) (int64, error) {
		return j.scheduleRepo.DeletePastSessions(ctx, cutoff)
	})
	j.runCleanup(ctx, "canceled bookings", func(ctx context.Context) (int64, error) {
		return j.bookingRepo.DeleteCanceledBefore(ctx, cutoff)
	})
}

func (j *CleanupJob) runCleanup(ctx context.Context, name string, fn func(context.Context) (int64, error)) {
	count, err := fn(ctx)
	if err != nil {
		log.Error().Err(err).Msgf("failed to cleanup %s", name)
	} else if count > 0 {
		log.Info().Int64("count", count).Msgf("cleaned up %s", name)
	}
}
