package services

import (
	"context"
	"time"

	"github.com/vnkhanh/e-course-backend/logger"
)

const reindexBatch = 50

// DrainReindexQueue rebuilds up to one batch of queued courses. Failed ids go back on
// the queue.
func DrainReindexQueue(ctx context.Context, indexer CourseIndexer, queue ReindexQueue, log *logger.Logger) (int, error) {
	ids, err := queue.Pop(ctx, reindexBatch)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, id := range ids {
		if err := indexer.Rebuild(ctx, id); err != nil {
			log.Warn("reindex failed, requeueing", "course_id", id, "error", err)
			if perr := queue.Push(ctx, id); perr != nil {
				log.Error("requeue course", "course_id", id, "error", perr)
			}
			continue
		}
		done++
	}
	return done, nil
}

// StartReindexJob drains the queue once right away and then on every tick until ctx
// is cancelled.
func StartReindexJob(ctx context.Context, indexer CourseIndexer, queue ReindexQueue, every time.Duration, baseLog *logger.Logger) {
	log := baseLog.With("job", "reindex")
	if every <= 0 {
		every = time.Minute
	}

	run := func() {
		n, err := DrainReindexQueue(ctx, indexer, queue, log)
		if err != nil {
			log.Error("reindex job", "error", err)
			return
		}
		if n > 0 {
			log.Info("reindexed courses", "count", n)
		}
	}

	go func() {
		run()
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run()
			}
		}
	}()

	log.Info("reindex job started", "every", every.String())
}
