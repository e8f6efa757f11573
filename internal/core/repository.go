package core

// repository.go implements the Job Repository (C7): CRUD for Job, JobFile,
// JobError, and JobMetric, plus the one-time schema bootstrap for the four
// control tables. Each call opens its own connection from the pool; the
// repository is reentrant and requires no cross-call transactions.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository is the sole gateway to durable Job/JobFile/JobError/JobMetric storage.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps an already-open *sql.DB for the mssql driver.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: sqlx.NewDb(db, "sqlserver")}
}

// InitializeSchema creates the four control tables if absent, with the FKs
// JobFiles.JobId -> Jobs.Id, JobErrors.JobId -> Jobs.Id,
// JobErrors.JobFileId -> JobFiles.Id, JobMetrics.JobId -> Jobs.Id.
func (r *Repository) InitializeSchema(ctx context.Context) error {
	statements := []string{
		`IF NOT EXISTS (SELECT 1 FROM sys.objects WHERE object_id = OBJECT_ID(N'[dbo].[Jobs]') AND type = N'U')
		 CREATE TABLE [dbo].[Jobs] (
			Id nvarchar(64) NOT NULL PRIMARY KEY,
			CreatedAt datetime NOT NULL,
			StartedAt datetime NULL,
			FinishedAt datetime NULL,
			Status int NOT NULL,
			RootFolder nvarchar(1024) NOT NULL,
			ConnectionString nvarchar(1024) NOT NULL,
			TotalFiles int NOT NULL,
			ProcessedFiles int NOT NULL
		 )`,
		`IF NOT EXISTS (SELECT 1 FROM sys.objects WHERE object_id = OBJECT_ID(N'[dbo].[JobFiles]') AND type = N'U')
		 CREATE TABLE [dbo].[JobFiles] (
			Id nvarchar(64) NOT NULL PRIMARY KEY,
			JobId nvarchar(64) NOT NULL,
			FilePath nvarchar(1024) NOT NULL,
			Status int NOT NULL,
			StartedAt datetime NULL,
			FinishedAt datetime NULL,
			LinesRead bigint NOT NULL,
			LinesInserted bigint NOT NULL,
			LinesRejected bigint NOT NULL,
			TableName nvarchar(128) NOT NULL,
			CONSTRAINT FK_JobFiles_Jobs FOREIGN KEY (JobId) REFERENCES [dbo].[Jobs](Id)
		 )`,
		`IF NOT EXISTS (SELECT 1 FROM sys.objects WHERE object_id = OBJECT_ID(N'[dbo].[JobErrors]') AND type = N'U')
		 CREATE TABLE [dbo].[JobErrors] (
			Id nvarchar(64) NOT NULL PRIMARY KEY,
			JobId nvarchar(64) NOT NULL,
			JobFileId nvarchar(64) NULL,
			LineNumber int NULL,
			ColumnName nvarchar(128) NULL,
			ErrorType int NOT NULL,
			Message nvarchar(max) NOT NULL,
			CreatedAt datetime NOT NULL,
			CONSTRAINT FK_JobErrors_Jobs FOREIGN KEY (JobId) REFERENCES [dbo].[Jobs](Id),
			CONSTRAINT FK_JobErrors_JobFiles FOREIGN KEY (JobFileId) REFERENCES [dbo].[JobFiles](Id)
		 )`,
		`IF NOT EXISTS (SELECT 1 FROM sys.objects WHERE object_id = OBJECT_ID(N'[dbo].[JobMetrics]') AND type = N'U')
		 CREATE TABLE [dbo].[JobMetrics] (
			Id nvarchar(64) NOT NULL PRIMARY KEY,
			JobId nvarchar(64) NOT NULL,
			MetricName nvarchar(256) NOT NULL,
			MetricValue decimal(18,4) NOT NULL,
			RecordedAt datetime NOT NULL,
			CONSTRAINT FK_JobMetrics_Jobs FOREIGN KEY (JobId) REFERENCES [dbo].[Jobs](Id)
		 )`,
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("core: initializing schema: %w", err)
		}
	}
	return nil
}

type jobRow struct {
	ID               string     `db:"Id"`
	CreatedAt        time.Time  `db:"CreatedAt"`
	StartedAt        *time.Time `db:"StartedAt"`
	FinishedAt       *time.Time `db:"FinishedAt"`
	Status           int        `db:"Status"`
	RootFolder       string     `db:"RootFolder"`
	ConnectionString string     `db:"ConnectionString"`
	TotalFiles       int        `db:"TotalFiles"`
	ProcessedFiles   int        `db:"ProcessedFiles"`
}

func (row jobRow) toJob() Job {
	return Job{
		ID:               row.ID,
		CreatedAt:        row.CreatedAt,
		StartedAt:        row.StartedAt,
		FinishedAt:       row.FinishedAt,
		Status:           JobStatus(row.Status),
		RootFolder:       row.RootFolder,
		ConnectionString: row.ConnectionString,
		TotalFiles:       row.TotalFiles,
		ProcessedFiles:   row.ProcessedFiles,
	}
}

// CreateJob inserts a new Job in the Created state.
func (r *Repository) CreateJob(ctx context.Context, rootFolder, connectionString string) (*Job, error) {
	job := &Job{
		ID:               uuid.NewString(),
		CreatedAt:        time.Now().UTC(),
		Status:           JobCreated,
		RootFolder:       rootFolder,
		ConnectionString: connectionString,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO [dbo].[Jobs] (Id, CreatedAt, Status, RootFolder, ConnectionString, TotalFiles, ProcessedFiles)
		 VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7)`,
		job.ID, job.CreatedAt, int(job.Status), job.RootFolder, job.ConnectionString, job.TotalFiles, job.ProcessedFiles)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateJob persists every mutable field of job.
func (r *Repository) UpdateJob(ctx context.Context, job *Job) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE [dbo].[Jobs] SET StartedAt=@p1, FinishedAt=@p2, Status=@p3, TotalFiles=@p4, ProcessedFiles=@p5 WHERE Id=@p6`,
		job.StartedAt, job.FinishedAt, int(job.Status), job.TotalFiles, job.ProcessedFiles, job.ID)
	return err
}

// GetJob returns one Job by id.
func (r *Repository) GetJob(ctx context.Context, id string) (*Job, error) {
	var row jobRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM [dbo].[Jobs] WHERE Id=@p1`, id)
	if err != nil {
		return nil, err
	}
	job := row.toJob()
	return &job, nil
}

// ListJobs returns every Job, newest first.
func (r *Repository) ListJobs(ctx context.Context) ([]Job, error) {
	var rows []jobRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM [dbo].[Jobs] ORDER BY CreatedAt DESC`); err != nil {
		return nil, err
	}
	jobs := make([]Job, len(rows))
	for i, row := range rows {
		jobs[i] = row.toJob()
	}
	return jobs, nil
}

type jobFileRow struct {
	ID            string     `db:"Id"`
	JobID         string     `db:"JobId"`
	FilePath      string     `db:"FilePath"`
	Status        int        `db:"Status"`
	StartedAt     *time.Time `db:"StartedAt"`
	FinishedAt    *time.Time `db:"FinishedAt"`
	LinesRead     int64      `db:"LinesRead"`
	LinesInserted int64      `db:"LinesInserted"`
	LinesRejected int64      `db:"LinesRejected"`
	TableName     string     `db:"TableName"`
}

func (row jobFileRow) toJobFile() JobFile {
	return JobFile{
		ID:            row.ID,
		JobID:         row.JobID,
		FilePath:      row.FilePath,
		Status:        JobFileStatus(row.Status),
		StartedAt:     row.StartedAt,
		FinishedAt:    row.FinishedAt,
		LinesRead:     row.LinesRead,
		LinesInserted: row.LinesInserted,
		LinesRejected: row.LinesRejected,
		TableName:     row.TableName,
	}
}

// CreateJobFile inserts a new JobFile in the Pending state.
func (r *Repository) CreateJobFile(ctx context.Context, jobID, filePath string) (*JobFile, error) {
	jf := &JobFile{
		ID:       uuid.NewString(),
		JobID:    jobID,
		FilePath: filePath,
		Status:   FilePending,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO [dbo].[JobFiles] (Id, JobId, FilePath, Status, LinesRead, LinesInserted, LinesRejected, TableName)
		 VALUES (@p1, @p2, @p3, @p4, 0, 0, 0, '')`,
		jf.ID, jf.JobID, jf.FilePath, int(jf.Status))
	if err != nil {
		return nil, err
	}
	return jf, nil
}

// CloneJobFileForReprocess inserts a new Pending JobFile copying src's
// FilePath and TableName into a different job, used by createReprocessFileJob.
func (r *Repository) CloneJobFileForReprocess(ctx context.Context, newJobID string, src *JobFile) (*JobFile, error) {
	jf := &JobFile{
		ID:        uuid.NewString(),
		JobID:     newJobID,
		FilePath:  src.FilePath,
		Status:    FilePending,
		TableName: src.TableName,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO [dbo].[JobFiles] (Id, JobId, FilePath, Status, LinesRead, LinesInserted, LinesRejected, TableName)
		 VALUES (@p1, @p2, @p3, @p4, 0, 0, 0, @p5)`,
		jf.ID, jf.JobID, jf.FilePath, int(jf.Status), jf.TableName)
	if err != nil {
		return nil, err
	}
	return jf, nil
}

// UpdateJobFile persists every mutable field of jf.
func (r *Repository) UpdateJobFile(ctx context.Context, jf *JobFile) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE [dbo].[JobFiles] SET Status=@p1, StartedAt=@p2, FinishedAt=@p3, LinesRead=@p4,
		 LinesInserted=@p5, LinesRejected=@p6, TableName=@p7 WHERE Id=@p8`,
		int(jf.Status), jf.StartedAt, jf.FinishedAt, jf.LinesRead, jf.LinesInserted, jf.LinesRejected, jf.TableName, jf.ID)
	return err
}

// GetJobFile returns one JobFile by id.
func (r *Repository) GetJobFile(ctx context.Context, id string) (*JobFile, error) {
	var row jobFileRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM [dbo].[JobFiles] WHERE Id=@p1`, id)
	if err != nil {
		return nil, err
	}
	jf := row.toJobFile()
	return &jf, nil
}

// ListJobFiles returns every JobFile belonging to jobID.
func (r *Repository) ListJobFiles(ctx context.Context, jobID string) ([]JobFile, error) {
	var rows []jobFileRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM [dbo].[JobFiles] WHERE JobId=@p1`, jobID); err != nil {
		return nil, err
	}
	files := make([]JobFile, len(rows))
	for i, row := range rows {
		files[i] = row.toJobFile()
	}
	return files, nil
}

type jobErrorRow struct {
	ID         string    `db:"Id"`
	JobID      string    `db:"JobId"`
	JobFileID  *string   `db:"JobFileId"`
	LineNumber *int      `db:"LineNumber"`
	ColumnName *string   `db:"ColumnName"`
	ErrorType  int       `db:"ErrorType"`
	Message    string    `db:"Message"`
	CreatedAt  time.Time `db:"CreatedAt"`
}

func (row jobErrorRow) toJobError() JobError {
	return JobError{
		ID:         row.ID,
		JobID:      row.JobID,
		JobFileID:  row.JobFileID,
		LineNumber: row.LineNumber,
		ColumnName: row.ColumnName,
		ErrorType:  JobErrorType(row.ErrorType),
		Message:    row.Message,
		CreatedAt:  row.CreatedAt,
	}
}

// InsertJobError appends one JobError. Append-only: JobErrors are never updated or deleted.
func (r *Repository) InsertJobError(ctx context.Context, je *JobError) error {
	je.ID = uuid.NewString()
	je.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO [dbo].[JobErrors] (Id, JobId, JobFileId, LineNumber, ColumnName, ErrorType, Message, CreatedAt)
		 VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8)`,
		je.ID, je.JobID, je.JobFileID, je.LineNumber, je.ColumnName, int(je.ErrorType), je.Message, je.CreatedAt)
	return err
}

// ListJobErrors returns every JobError belonging to jobID.
func (r *Repository) ListJobErrors(ctx context.Context, jobID string) ([]JobError, error) {
	var rows []jobErrorRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM [dbo].[JobErrors] WHERE JobId=@p1 ORDER BY CreatedAt`, jobID); err != nil {
		return nil, err
	}
	errs := make([]JobError, len(rows))
	for i, row := range rows {
		errs[i] = row.toJobError()
	}
	return errs, nil
}

type jobMetricRow struct {
	ID          string    `db:"Id"`
	JobID       string    `db:"JobId"`
	MetricName  string    `db:"MetricName"`
	MetricValue float64   `db:"MetricValue"`
	RecordedAt  time.Time `db:"RecordedAt"`
}

func (row jobMetricRow) toJobMetric() JobMetric {
	return JobMetric{
		ID:          row.ID,
		JobID:       row.JobID,
		MetricName:  row.MetricName,
		MetricValue: row.MetricValue,
		RecordedAt:  row.RecordedAt,
	}
}

// InsertJobMetric records one time-stamped measurement for jobID.
func (r *Repository) InsertJobMetric(ctx context.Context, jobID, metricName string, metricValue float64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO [dbo].[JobMetrics] (Id, JobId, MetricName, MetricValue, RecordedAt) VALUES (@p1, @p2, @p3, @p4, @p5)`,
		uuid.NewString(), jobID, metricName, metricValue, time.Now().UTC())
	return err
}

// ListJobMetrics returns every JobMetric belonging to jobID.
func (r *Repository) ListJobMetrics(ctx context.Context, jobID string) ([]JobMetric, error) {
	var rows []jobMetricRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM [dbo].[JobMetrics] WHERE JobId=@p1 ORDER BY RecordedAt`, jobID); err != nil {
		return nil, err
	}
	metrics := make([]JobMetric, len(rows))
	for i, row := range rows {
		metrics[i] = row.toJobMetric()
	}
	return metrics, nil
}
