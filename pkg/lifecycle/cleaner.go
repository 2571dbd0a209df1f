package lifecycle

import (
	"context"
	"sync"
	"time"

	"electron-shop/api/pkg/storage"
	"electron-shop/api/pkg/util"

	"go.uber.org/zap"
)

// Cleaner deletes files that no live document references anymore.
// Failures are logged and never returned.
type Cleaner interface {
	Discard(ctx context.Context, reason string, urls ...string)
}

// SyncCleaner deletes files inline.
type SyncCleaner struct {
	storage storage.FileStorage
}

func NewSyncCleaner(store storage.FileStorage) *SyncCleaner {
	return &SyncCleaner{storage: store}
}

func (c *SyncCleaner) Discard(ctx context.Context, reason string, urls ...string) {
	for _, url := range urls {
		_ = purge(ctx, c.storage, reason, url)
	}
}

// purge removes one file. Foreign and already missing files are skipped.
func purge(ctx context.Context, store storage.FileStorage, reason, url string) error {
	if url == "" || !store.Owns(url) {
		return nil
	}
	found, err := store.Exists(ctx, url)
	if err != nil {
		util.LogWarning("could not check file before delete", zap.String("url", url), zap.String("reason", reason), zap.Error(err))
	} else if !found {
		util.LogInfo("file already absent", zap.String("url", url), zap.String("reason", reason))
		return nil
	}
	if err := store.Delete(ctx, url); err != nil {
		util.LogWarning("could not delete file", zap.String("url", url), zap.String("reason", reason), zap.Error(err))
		return err
	}
	util.LogInfo("file deleted", zap.String("url", url), zap.String("reason", reason))
	return nil
}

type cleanupJob struct {
	reason string
	url    string
}

// Janitor deletes files on a pool of background workers.
type Janitor struct {
	storage  storage.FileStorage
	jobs     chan cleanupJob
	workers  int
	attempts int
	backoff  time.Duration
	timeout  time.Duration

	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

func NewJanitor(store storage.FileStorage, workers, queue int) *Janitor {
	if workers < 1 {
		workers = 1
	}
	if queue < workers {
		queue = workers
	}
	return &Janitor{
		storage:  store,
		jobs:     make(chan cleanupJob, queue),
		workers:  workers,
		attempts: 3,
		backoff:  200 * time.Millisecond,
		timeout:  30 * time.Second,
	}
}

func (j *Janitor) Start() {
	for id := 0; id < j.workers; id++ {
		j.wg.Add(1)
		go j.work(id)
	}
	util.LogInfo("image janitor started", zap.Int("workers", j.workers))
}

// Stop stops accepting jobs and waits until the queue is drained.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() {
		j.mu.Lock()
		j.stopped = true
		close(j.jobs)
		j.mu.Unlock()
		j.wg.Wait()
		util.LogInfo("image janitor stopped")
	})
}

// Discard queues urls for deletion. Once the janitor is stopped, or when the
// queue is full, files are deleted on the caller's goroutine.
func (j *Janitor) Discard(ctx context.Context, reason string, urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		j.mu.RLock()
		queued := false
		if !j.stopped {
			select {
			case j.jobs <- cleanupJob{reason: reason, url: url}:
				queued = true
			default:
			}
		}
		j.mu.RUnlock()
		if !queued {
			_ = purge(context.WithoutCancel(ctx), j.storage, reason, url)
		}
	}
}

func (j *Janitor) work(id int) {
	defer j.wg.Done()
	for job := range j.jobs {
		for attempt := 1; attempt <= j.attempts; attempt++ {
			ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
			err := purge(ctx, j.storage, job.reason, job.url)
			cancel()
			if err == nil {
				break
			}
			if attempt == j.attempts {
				util.LogError("giving up on file delete", err, zap.Int("worker", id), zap.String("url", job.url))
				break
			}
			time.Sleep(j.backoff * time.Duration(attempt))
		}
	}
}
