package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/dietinsights/internal/dataset"
	"github.com/persistorai/dietinsights/internal/metrics"
	"github.com/persistorai/dietinsights/internal/models"
)

// drainTimeout bounds each job processed after shutdown begins.
const drainTimeout = 30 * time.Second

// IngestJob asks the worker to ingest one source.
type IngestJob struct {
	Source dataset.Source
	Reason string
}

// SourceIngester ingests a dataset source.
type SourceIngester interface {
	IngestSource(ctx context.Context, src dataset.Source) (*models.IngestReport, error)
}

// IngestWorker runs ingestion jobs one at a time from a bounded queue.
type IngestWorker struct {
	ingester SourceIngester
	log      *logrus.Logger
	jobs     chan IngestJob
}

// NewIngestWorker creates an IngestWorker with the given queue capacity.
func NewIngestWorker(ingester SourceIngester, log *logrus.Logger, queueSize int) *IngestWorker {
	if queueSize <= 0 {
		queueSize = 16
	}

	return &IngestWorker{
		ingester: ingester,
		log:      log,
		jobs:     make(chan IngestJob, queueSize),
	}
}

// Enqueue adds a job. Non-blocking; drops the job and returns false if the
// queue is full.
func (w *IngestWorker) Enqueue(job IngestJob) bool {
	select {
	case w.jobs <- job:
		metrics.IngestQueueDepth.Set(float64(len(w.jobs)))
		return true
	default:
		w.log.WithField("reason", job.Reason).Warn("ingest queue full, dropping job")
		return false
	}
}

// Run processes jobs until the context is cancelled, then drains remaining jobs.
func (w *IngestWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case job := <-w.jobs:
			w.process(ctx, job)
		}
	}
}

func (w *IngestWorker) drain() {
	for {
		select {
		case job := <-w.jobs:
			ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			w.process(ctx, job)
			cancel()
		default:
			return
		}
	}
}

func (w *IngestWorker) process(ctx context.Context, job IngestJob) {
	metrics.IngestQueueDepth.Set(float64(len(w.jobs)))

	report, err := w.ingester.IngestSource(ctx, job.Source)
	if err != nil {
		w.log.WithError(err).WithField("reason", job.Reason).Warn("queued ingestion failed")
		return
	}

	w.log.WithFields(logrus.Fields{
		"reason":    job.Reason,
		"ingest_id": report.IngestID,
		"rows":      report.Rows,
	}).Debug("queued ingestion finished")
}
