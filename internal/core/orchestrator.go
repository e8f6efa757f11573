package core

// orchestrator.go implements the Job Orchestrator (C8): Job/JobFile state
// transitions, per-file worker coordination bounded by a FileWorkerLimiter,
// and end-of-job metrics.

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Orchestrator owns every Job state transition. Workers it spawns own their
// file's lifecycle end-to-end and write their own JobFile, JobError and
// per-file metric rows through the Repository.
type Orchestrator struct {
	repo       *Repository
	workerPool int
	batchSize  int
	sampleSize int
	log        *slog.Logger
	limiter    *FileWorkerLimiter
}

// NewOrchestrator wires an Orchestrator against repo. workerPool<=0 uses
// DefaultWorkerPoolSize; batchSize<=0 uses the Bulk Loader's default;
// sampleSize<=0 uses the Type Inferencer's default of 5000. The file-worker
// limiter is shared across every Process call so Drain can wait for
// in-flight files across every concurrently running job.
func NewOrchestrator(repo *Repository, workerPool, batchSize, sampleSize int, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	if sampleSize <= 0 {
		sampleSize = maxSampleValues
	}
	return &Orchestrator{
		repo:       repo,
		workerPool: workerPool,
		batchSize:  batchSize,
		sampleSize: sampleSize,
		log:        log,
		limiter:    NewFileWorkerLimiter(workerPool, 0),
	}
}

// Drain blocks until every in-flight file worker across every running job
// finishes or ctx is cancelled. Called during shutdown so a terminating
// process does not abandon files mid-load.
func (o *Orchestrator) Drain(ctx context.Context) error {
	return o.limiter.WaitForDrain(ctx)
}

// CreateJob discovers CSV files under rootFolder and persists a new Job plus
// one Pending JobFile per discovered file.
func (o *Orchestrator) CreateJob(ctx context.Context, rootFolder, connectionString string) (string, error) {
	paths, err := DiscoverCSVFiles(rootFolder)
	if err != nil {
		return "", err
	}

	job, err := o.repo.CreateJob(ctx, rootFolder, connectionString)
	if err != nil {
		return "", err
	}
	job.TotalFiles = len(paths)
	if err := o.repo.UpdateJob(ctx, job); err != nil {
		return "", err
	}

	for _, p := range paths {
		if _, err := o.repo.CreateJobFile(ctx, job.ID, p); err != nil {
			return "", err
		}
	}
	return job.ID, nil
}

// CreateReprocessJob creates a fresh Job over the same rootFolder as
// origJobID, rediscovering files exactly like CreateJob.
func (o *Orchestrator) CreateReprocessJob(ctx context.Context, origJobID, connectionString string) (string, error) {
	orig, err := o.repo.GetJob(ctx, origJobID)
	if err != nil {
		return "", err
	}
	return o.CreateJob(ctx, orig.RootFolder, connectionString)
}

// CreateReprocessFileJob creates a new Job containing a single Pending
// JobFile cloned from fileID, having already dropped that file's destination
// table so the rerun starts clean.
func (o *Orchestrator) CreateReprocessFileJob(ctx context.Context, origJobID, fileID, connectionString string, schema *SchemaService) (string, error) {
	origFile, err := o.repo.GetJobFile(ctx, fileID)
	if err != nil {
		return "", err
	}
	orig, err := o.repo.GetJob(ctx, origJobID)
	if err != nil {
		return "", err
	}

	if origFile.TableName != "" {
		if err := schema.DropTable(ctx, origFile.TableName); err != nil {
			return "", fmt.Errorf("core: dropping table %q before reprocess: %w", origFile.TableName, err)
		}
	}

	job, err := o.repo.CreateJob(ctx, orig.RootFolder, connectionString)
	if err != nil {
		return "", err
	}
	job.TotalFiles = 1
	if err := o.repo.UpdateJob(ctx, job); err != nil {
		return "", err
	}

	if _, err := o.repo.CloneJobFileForReprocess(ctx, job.ID, origFile); err != nil {
		return "", err
	}
	return job.ID, nil
}

// Process runs jobID to completion: Created -> Running -> Completed/Failed,
// fanning its Pending JobFiles out across a bounded worker pool. cancel
// propagates to every in-flight file; observed cancellation marks the job
// Cancelled rather than Failed.
func (o *Orchestrator) Process(ctx context.Context, jobID string, db *sql.DB) {
	log := o.log.With("jobId", jobID)

	job, err := o.repo.GetJob(ctx, jobID)
	if err != nil {
		log.Error("orchestrator: cannot load job", "error", err)
		return
	}

	now := time.Now().UTC()
	job.StartedAt = &now
	job.Status = JobRunning
	if err := o.repo.UpdateJob(ctx, job); err != nil {
		log.Error("orchestrator: cannot mark job running", "error", err)
		return
	}

	files, err := o.repo.ListJobFiles(ctx, jobID)
	if err != nil {
		o.failJob(ctx, job, err)
		return
	}

	var pending []JobFile
	for _, f := range files {
		if f.Status == FilePending {
			pending = append(pending, f)
		}
	}

	limiter := o.limiter
	schema := NewSchemaService(db)
	loader := NewBulkLoader(db, o.batchSize)

	var mu sync.Mutex
	existingTables, err := schema.ExistingTableNames(ctx)
	if err != nil {
		existingTables = make(map[string]bool)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range pending {
		jf := pending[i]

		err := limiter.Acquire(gctx)
		for err == ErrTooManyFileWorkers {
			err = limiter.Acquire(gctx)
		}
		if err != nil {
			log.Warn("orchestrator: worker slot unavailable, skipping file", "file", jf.FilePath, "error", err)
			continue
		}

		g.Go(func() error {
			defer limiter.Release()

			w := &fileWorker{
				repo:           o.repo,
				schema:         schema,
				loader:         loader,
				log:            log.With("file", jf.FilePath),
				sampleSize:     o.sampleSize,
				existingTables: existingTables,
				tablesMu:       &mu,
			}
			w.run(gctx, job, &jf)
			return nil
		})
	}

	// Every fileWorker absorbs its own errors into JobErrors, so g.Wait
	// never returns non-nil; it only blocks for the fan-out to drain.
	_ = g.Wait()

	select {
	case <-ctx.Done():
		job.Status = JobCancelled
		finished := time.Now().UTC()
		job.FinishedAt = &finished
		_ = o.repo.UpdateJob(context.WithoutCancel(ctx), job)
		return
	default:
	}

	o.finishJob(context.WithoutCancel(ctx), job)
}

func (o *Orchestrator) failJob(ctx context.Context, job *Job, cause error) {
	job.Status = JobFailed
	finished := time.Now().UTC()
	job.FinishedAt = &finished
	_ = o.repo.UpdateJob(ctx, job)
	_ = o.repo.InsertJobError(ctx, &JobError{
		JobID:     job.ID,
		ErrorType: OtherError,
		Message:   FormatUserError(cause),
	})
}

// finishJob reloads processedFiles/linesRead/linesInserted from the
// JobFiles recorded so far, marks the job Completed, and records the two
// end-of-job metrics.
func (o *Orchestrator) finishJob(ctx context.Context, job *Job) {
	files, err := o.repo.ListJobFiles(ctx, job.ID)
	if err != nil {
		o.failJob(ctx, job, err)
		return
	}

	var totalRead, totalInserted int64
	processed := 0
	for _, f := range files {
		if f.Status == FileCompleted || f.Status == FileFailed {
			processed++
		}
		totalRead += f.LinesRead
		totalInserted += f.LinesInserted
	}

	job.ProcessedFiles = processed
	job.Status = JobCompleted
	finished := time.Now().UTC()
	job.FinishedAt = &finished
	if err := o.repo.UpdateJob(ctx, job); err != nil {
		o.log.Error("orchestrator: cannot mark job completed", "jobId", job.ID, "error", err)
		return
	}

	utilization := 0.0
	if totalRead > 0 {
		utilization = 100 * float64(totalInserted) / float64(totalRead)
	}
	_ = o.repo.InsertJobMetric(ctx, job.ID, "UtilizationPercentage", utilization)

	execSeconds := 0.0
	if job.StartedAt != nil && job.FinishedAt != nil {
		execSeconds = job.FinishedAt.Sub(*job.StartedAt).Seconds()
	}
	_ = o.repo.InsertJobMetric(ctx, job.ID, "TotalExecutionTime", execSeconds)
}
