package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/condominio/portal/internal/api/metrics"
	"github.com/condominio/portal/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
	logoutTimeout  = 5 * time.Second
)

// Logouter is the slice of the backend the dispatcher needs.
type Logouter interface {
	Logout(ctx context.Context, accessToken string) error
}

// LogoutDispatcher performs best-effort backend logouts on a fixed set of
// workers, sharded by session id. Local session clearing never waits on it.
type LogoutDispatcher struct {
	workers []chan ports.LogoutJob
	backend Logouter
	log     zerolog.Logger
}

var _ ports.LogoutQueue = (*LogoutDispatcher)(nil)

// NewLogoutDispatcher creates a dispatcher with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewLogoutDispatcher(numWorkers int, backend Logouter, log zerolog.Logger) *LogoutDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &LogoutDispatcher{
		workers: make([]chan ports.LogoutJob, numWorkers),
		backend: backend,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.LogoutJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *LogoutDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a job to its worker. When that worker's buffer is full the job
// is dropped: the local session is already gone and the token will expire.
func (d *LogoutDispatcher) Enqueue(job ports.LogoutJob) {
	idx := d.shardIndex(job.SessionID)
	select {
	case d.workers[idx] <- job:
		metrics.LogoutQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.LogoutsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("session_id", job.SessionID).Int("worker_id", idx).Msg("logout queue full, dropping backend logout")
	}
}

func (d *LogoutDispatcher) shardIndex(sessionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *LogoutDispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.LogoutJob) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.LogoutQueueDepth.WithLabelValues(label).Dec()
			d.process(ctx, id, job)
		}
	}
}

func (d *LogoutDispatcher) process(ctx context.Context, id int, job ports.LogoutJob) {
	callCtx, cancel := context.WithTimeout(ctx, logoutTimeout)
	defer cancel()

	if err := d.backend.Logout(callCtx, job.AccessToken); err != nil {
		metrics.LogoutsTotal.WithLabelValues("failed").Inc()
		d.log.Warn().Err(err).
			Str("session_id", job.SessionID).
			Int("worker_id", id).
			Msg("backend logout failed")
		return
	}
	metrics.LogoutsTotal.WithLabelValues("ok").Inc()
}
