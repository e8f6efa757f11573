package core

// queue.go implements the Job Queue (C9): a single background consumer
// draining a FIFO of (jobId, connectionString) tuples and dispatching each
// to a fresh Orchestrator.Process call. Submission never blocks; jobs run
// concurrently with no inter-job serialization.

import (
	"context"
	"database/sql"
	"log/slog"
)

type queueItem struct {
	jobID            string
	connectionString string
}

// JobQueue is the single background consumer that turns submitted jobs into
// running Orchestrator tasks.
type JobQueue struct {
	orchestrator *Orchestrator
	openDB       func(connectionString string) (*sql.DB, error)
	log          *slog.Logger

	items chan queueItem
	done  chan struct{}
}

// NewJobQueue creates a queue bound to orchestrator. openDB opens a fresh
// *sql.DB for one job's connection string; the queue closes it when that
// job finishes. capacity<=0 defaults to 256.
func NewJobQueue(orchestrator *Orchestrator, openDB func(string) (*sql.DB, error), capacity int, log *slog.Logger) *JobQueue {
	if capacity <= 0 {
		capacity = 256
	}
	if log == nil {
		log = slog.Default()
	}
	return &JobQueue{
		orchestrator: orchestrator,
		openDB:       openDB,
		log:          log,
		items:        make(chan queueItem, capacity),
		done:         make(chan struct{}),
	}
}

// Submit enqueues jobID for processing. It never blocks the caller beyond
// the bounds of the queue's buffer; a full queue returns false rather than
// stalling the submitter.
func (q *JobQueue) Submit(jobID, connectionString string) bool {
	select {
	case q.items <- queueItem{jobID: jobID, connectionString: connectionString}:
		return true
	default:
		return false
	}
}

// Run drains the queue until ctx is cancelled, dispatching each item to its
// own goroutine so jobs proceed concurrently. In-flight jobs observe ctx's
// cancellation through the context threaded into Orchestrator.Process.
func (q *JobQueue) Run(ctx context.Context) {
	defer close(q.done)
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-q.items:
			go q.dispatch(ctx, item)
		}
	}
}

// WaitForShutdown blocks until Run has observed cancellation and returned.
func (q *JobQueue) WaitForShutdown() {
	<-q.done
}

func (q *JobQueue) dispatch(ctx context.Context, item queueItem) {
	log := q.log.With("jobId", item.jobID)

	db, err := q.openDB(item.connectionString)
	if err != nil {
		log.Error("queue: cannot open connection for job", "error", err)
		return
	}
	defer db.Close()

	q.orchestrator.Process(ctx, item.jobID, db)
}
