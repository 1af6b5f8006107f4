package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/socialfeed/gateway/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Job is a unit of background work. Jobs sharing a Key run on the same
// worker in enqueue order.
type Job struct {
	Key  string
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher routes jobs to a fixed set of workers using consistent hashing
// on the job key. Enqueue never blocks; a job whose worker queue is full is
// dropped and counted.
type Dispatcher struct {
	workers []chan Job
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers each
// holding up to buffer pending jobs. Non-positive values use the defaults.
func NewDispatcher(numWorkers, buffer int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = channelBuffer
	}
	d := &Dispatcher{
		workers: make([]chan Job, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan Job, buffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain what is already queued
// and stop once ctx is cancelled; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands job to the worker responsible for its key and reports
// whether it was accepted.
func (d *Dispatcher) Enqueue(job Job) bool {
	idx := d.shardIndex(job.Key)
	select {
	case d.workers[idx] <- job:
		metrics.JobQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return true
	default:
		metrics.JobsDroppedTotal.WithLabelValues(job.Name).Inc()
		d.log.Warn().
			Str("job", job.Name).
			Str("key", job.Key).
			Int("worker_id", idx).
			Msg("worker queue full, job dropped")
		return false
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan Job) {
	defer d.wg.Done()
	depth := metrics.JobQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch, depth)
			return
		case job := <-ch:
			depth.Dec()
			d.run(ctx, id, job)
		}
	}
}

// drain runs jobs still queued at shutdown with a context that is no longer
// cancelled, so accepted work is not silently lost.
func (d *Dispatcher) drain(id int, ch <-chan Job, depth interface{ Dec() }) {
	ctx := context.Background()
	for {
		select {
		case job := <-ch:
			depth.Dec()
			d.run(ctx, id, job)
		default:
			return
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Interface("panic", r).
				Str("job", job.Name).
				Int("worker_id", id).
				Msg("job panicked")
		}
	}()
	if err := job.Run(ctx); err != nil {
		d.log.Error().Err(err).
			Str("job", job.Name).
			Str("key", job.Key).
			Int("worker_id", id).
			Msg("job failed")
	}
}
