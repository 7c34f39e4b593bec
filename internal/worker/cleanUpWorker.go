package worker

import (
	"context"
	"time"

	"github.com/ds124wfegd/zip-renamer/internal/service"

	"github.com/sirupsen/logrus"
)

// ResultCleanupWorker removes stored archives whose callers never came back for them.
type ResultCleanupWorker struct {
	archiveService service.ArchiveService
	interval       time.Duration
}

func NewResultCleanupWorker(archiveService service.ArchiveService, interval time.Duration) *ResultCleanupWorker {
	return &ResultCleanupWorker{
		archiveService: archiveService,
		interval:       interval,
	}
}

func (w *ResultCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Result cleanup worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Result cleanup worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(time.Now())
		}
	}
}

// RunOnce sweeps expired results as of now.
func (w *ResultCleanupWorker) RunOnce(now time.Time) int {
	removed, err := w.archiveService.CleanupExpired(now)
	if err != nil {
		logrus.Errorf("Failed to clean up expired results: %v", err)
		return 0
	}

	if removed > 0 {
		logrus.Infof("Removed %d expired results", removed)
	} else {
		logrus.Debug("No expired results found for cleanup")
	}
	return removed
}
