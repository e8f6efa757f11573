package core

// service.go is the single entry point external collaborators (a CLI, a
// UI, a test) call into: testConnection, submitJob, submitReprocessJob,
// submitReprocessFile, plus the Read APIs for jobs/files/errors/metrics.
// It owns nothing itself; it wires Repository, Orchestrator, and JobQueue
// together behind one set of named operations.

import (
	"context"
	"database/sql"
	"fmt"
)

// Service is the façade external collaborators call.
type Service struct {
	repo         *Repository
	orchestrator *Orchestrator
	queue        *JobQueue
	openDB       func(connectionString string) (*sql.DB, error)
}

// NewService wires repo, orchestrator, and queue behind the external entry
// points. openDB opens a fresh destination *sql.DB for a connection string,
// used both by TestConnection and by the queue's per-job dispatch.
func NewService(repo *Repository, orchestrator *Orchestrator, queue *JobQueue, openDB func(string) (*sql.DB, error)) *Service {
	return &Service{repo: repo, orchestrator: orchestrator, queue: queue, openDB: openDB}
}

// TestConnection opens a short-lived connection to connectionString and
// classifies any failure against the connection error catalog.
func (s *Service) TestConnection(ctx context.Context, connectionString string) TestConnectionResult {
	db, err := s.openDB(connectionString)
	if err != nil {
		class, msg := ClassifyConnectionError(err)
		return TestConnectionResult{OK: false, Class: class, Message: msg}
	}
	defer db.Close()

	return NewSchemaService(db).TestConnection(ctx)
}

// SubmitJob creates a Job over rootFolder and enqueues it for processing,
// returning its id immediately without waiting for processing to start.
func (s *Service) SubmitJob(ctx context.Context, rootFolder, connectionString string) (string, error) {
	jobID, err := s.orchestrator.CreateJob(ctx, rootFolder, connectionString)
	if err != nil {
		return "", err
	}
	if !s.queue.Submit(jobID, connectionString) {
		return "", fmt.Errorf("core: job queue is full, job %s was created but not enqueued", jobID)
	}
	return jobID, nil
}

// SubmitReprocessJob creates a fresh Job over the same rootFolder as
// jobID, rediscovering files, and enqueues it.
func (s *Service) SubmitReprocessJob(ctx context.Context, jobID string) (string, error) {
	orig, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return "", err
	}
	newJobID, err := s.orchestrator.CreateReprocessJob(ctx, jobID, orig.ConnectionString)
	if err != nil {
		return "", err
	}
	if !s.queue.Submit(newJobID, orig.ConnectionString) {
		return "", fmt.Errorf("core: job queue is full, job %s was created but not enqueued", newJobID)
	}
	return newJobID, nil
}

// SubmitReprocessFile creates a new Job containing a single cloned JobFile
// for fileID, dropping its destination table first, and enqueues it.
func (s *Service) SubmitReprocessFile(ctx context.Context, jobID, fileID string) (string, error) {
	orig, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		return "", err
	}

	db, err := s.openDB(orig.ConnectionString)
	if err != nil {
		return "", err
	}
	defer db.Close()

	newJobID, err := s.orchestrator.CreateReprocessFileJob(ctx, jobID, fileID, orig.ConnectionString, NewSchemaService(db))
	if err != nil {
		return "", err
	}
	if !s.queue.Submit(newJobID, orig.ConnectionString) {
		return "", fmt.Errorf("core: job queue is full, job %s was created but not enqueued", newJobID)
	}
	return newJobID, nil
}

// ListJobs returns every Job, newest first.
func (s *Service) ListJobs(ctx context.Context) ([]Job, error) {
	return s.repo.ListJobs(ctx)
}

// GetJob returns one Job by id.
func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.GetJob(ctx, id)
}

// ListJobFiles returns every JobFile belonging to jobID.
func (s *Service) ListJobFiles(ctx context.Context, jobID string) ([]JobFile, error) {
	return s.repo.ListJobFiles(ctx, jobID)
}

// GetJobFile returns one JobFile by id.
func (s *Service) GetJobFile(ctx context.Context, id string) (*JobFile, error) {
	return s.repo.GetJobFile(ctx, id)
}

// ListJobErrors returns every JobError belonging to jobID.
func (s *Service) ListJobErrors(ctx context.Context, jobID string) ([]JobError, error) {
	return s.repo.ListJobErrors(ctx, jobID)
}

// ListJobMetrics returns every JobMetric belonging to jobID.
func (s *Service) ListJobMetrics(ctx context.Context, jobID string) ([]JobMetric, error) {
	return s.repo.ListJobMetrics(ctx, jobID)
}
