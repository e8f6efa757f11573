package core

// fileworker.go implements the per-file processing sequence: header read,
// sampling, identifier sanitization, table creation, streaming, and bulk
// load, with per-line and per-row error accounting funnelled into the Job
// Repository.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type fileWorker struct {
	repo           *Repository
	schema         *SchemaService
	loader         *BulkLoader
	log            *slog.Logger
	sampleSize     int
	existingTables map[string]bool
	tablesMu       *sync.Mutex
}

// run executes the 8-step file processing sequence for jf against job.
// Failures are recorded as JobErrors and leave jf in the Failed state; they
// never propagate to the caller, since one file's failure must not abort
// its siblings.
func (w *fileWorker) run(ctx context.Context, job *Job, jf *JobFile) {
	started := time.Now().UTC()
	jf.StartedAt = &started
	jf.Status = FileProcessing
	if err := w.repo.UpdateJobFile(ctx, jf); err != nil {
		w.log.Error("fileworker: cannot mark file processing", "error", err)
		return
	}

	if err := w.process(ctx, job, jf); err != nil {
		w.fail(context.WithoutCancel(ctx), job, jf, err)
		return
	}

	finished := time.Now().UTC()
	jf.FinishedAt = &finished
	jf.Status = FileCompleted
	if err := w.repo.UpdateJobFile(ctx, jf); err != nil {
		w.log.Error("fileworker: cannot mark file completed", "error", err)
		return
	}

	_ = w.repo.InsertJobMetric(ctx, job.ID,
		fmt.Sprintf("FileProcessingTime_%s", baseName(jf.FilePath)),
		finished.Sub(started).Seconds())
}

func (w *fileWorker) process(ctx context.Context, job *Job, jf *JobFile) error {
	source := NewCSVSource(jf.FilePath)

	header, err := source.Header()
	if err != nil {
		return err
	}

	sample, err := source.Sample(w.sampleSize)
	if err != nil {
		return err
	}

	columns := make([]ColumnDef, len(header))
	columnNames := make([]string, 0, len(header))
	for i, h := range header {
		values := make([]string, 0, len(sample))
		for _, row := range sample {
			if i < len(row) {
				values = append(values, row[i])
			}
		}
		colType := InferColumnType(values)
		colName := SanitizeColumnName(h, columnNames)
		columnNames = append(columnNames, colName)
		columns[i] = ColumnDef{Name: colName, Type: colType}
	}

	w.tablesMu.Lock()
	tableName := SanitizeTableName(jf.FilePath, w.existingTables)
	w.tablesMu.Unlock()

	if err := w.schema.CreateTable(ctx, tableName, columns); err != nil {
		return fmt.Errorf("creating table %q: %w", tableName, err)
	}

	jf.TableName = tableName
	if err := w.repo.UpdateJobFile(ctx, jf); err != nil {
		return err
	}

	var rows [][]string
	var lineNos []int
	err = source.Stream(ctx, func(fields []string, lineNo int) {
		rows = append(rows, fields)
		lineNos = append(lineNos, lineNo)
		jf.LinesRead++
	}, func(msg string, lineNo int, path string) {
		jf.LinesRead++
		jf.LinesRejected++
		ln := lineNo
		_ = w.repo.InsertJobError(ctx, &JobError{
			JobID:      job.ID,
			JobFileID:  &jf.ID,
			LineNumber: &ln,
			ErrorType:  LineError,
			Message:    FormatUserError(errors.New(msg)),
		})
	})
	if err != nil {
		return err
	}

	columnTypes := make([]SqlColumnType, len(columns))
	for i, c := range columns {
		columnTypes[i] = c.Type
	}

	src := &sliceRowSource{rows: rows}
	inserted, err := w.loader.BulkInsert(ctx, tableName, columnNames, columnTypes, src, func(row []string, absoluteRowIndex int, reason string) {
		jf.LinesRejected++
		ln := lineNos[absoluteRowIndex] // source line of the buffered row
		_ = w.repo.InsertJobError(ctx, &JobError{
			JobID:      job.ID,
			JobFileID:  &jf.ID,
			LineNumber: &ln,
			ErrorType:  DatabaseError,
			Message:    FormatUserError(errors.New(reason)),
		})
	})
	if err != nil {
		return err
	}

	jf.LinesInserted = inserted
	return w.repo.UpdateJobFile(ctx, jf)
}

func (w *fileWorker) fail(ctx context.Context, job *Job, jf *JobFile, cause error) {
	errType := OtherError
	if _, ok := cause.(*StructuralError); ok {
		errType = StructuralFailure
	}

	finished := time.Now().UTC()
	jf.FinishedAt = &finished
	jf.Status = FileFailed
	_ = w.repo.UpdateJobFile(ctx, jf)

	if IsUserFacing(cause) {
		w.log.Warn("fileworker: file failed", "error", cause)
	} else {
		w.log.Error("fileworker: file failed", "error", cause)
	}

	_ = w.repo.InsertJobError(ctx, &JobError{
		JobID:     job.ID,
		JobFileID: &jf.ID,
		ErrorType: errType,
		Message:   FormatUserError(cause),
	})
}

// sliceRowSource adapts an already-buffered [][]string to the RowSource
// interface the Bulk Loader expects.
type sliceRowSource struct {
	rows []([]string)
	idx  int
}

func (s *sliceRowSource) Next() bool {
	if s.idx >= len(s.rows) {
		return false
	}
	s.idx++
	return true
}

func (s *sliceRowSource) Row() ([]string, int) {
	return s.rows[s.idx-1], s.idx - 1
}

func (s *sliceRowSource) Err() error {
	return nil
}

func baseName(path string) string {
	i := len(path) - 1
	for i >= 0 && path[i] != '/' && path[i] != '\\' {
		i--
	}
	return path[i+1:]
}
