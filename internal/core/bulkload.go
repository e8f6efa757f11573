package core

// bulkload.go implements the Bulk Loader (C6): batched row insertion via
// SQL Server bulk-copy, with typed marshalling and row-level error accounting.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
)

const defaultBatchSize = 1000
const bulkCopyTimeout = 300 * time.Second

// RowSource is a lazy row iterator: Next advances to the next row and
// returns false when exhausted or on error (check Err after Next is false).
type RowSource interface {
	Next() bool
	Row() (fields []string, absoluteIndex int)
	Err() error
}

// RowErrorFunc is invoked for a row dropped from a batch, with the absolute
// index its RowSource reported for it (0-based, counted across batches) and
// the reason.
type RowErrorFunc func(row []string, absoluteRowIndex int, reason string)

// BulkLoader drives bulk-copy inserts against one destination table.
type BulkLoader struct {
	db        *sql.DB
	BatchSize int
}

// NewBulkLoader wraps db. batchSize<=0 uses the default of 1000.
func NewBulkLoader(db *sql.DB, batchSize int) *BulkLoader {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &BulkLoader{db: db, BatchSize: batchSize}
}

// BulkInsert streams rows from source, converting each value per
// columnTypes and submitting batches of BatchSize rows via mssql.CopyIn.
// Conversion failures degrade the cell to NULL; a row is dropped when
// marshalling it or queuing it on the bulk-copy statement fails, and every
// row of a batch is reported when the batch itself fails to prepare, flush
// or commit. onRowError is called for every dropped row.
// Returns the running count of successfully loaded rows.
func (l *BulkLoader) BulkInsert(
	ctx context.Context,
	table string,
	columnNames []string,
	columnTypes []SqlColumnType,
	source RowSource,
	onRowError RowErrorFunc,
) (int64, error) {
	var inserted int64

	batchRows := make([][]string, 0, l.BatchSize)
	batchIndexes := make([]int, 0, l.BatchSize)

	flush := func() error {
		if len(batchRows) == 0 {
			return nil
		}
		n, err := l.insertBatch(ctx, table, columnNames, columnTypes, batchRows, batchIndexes, onRowError)
		inserted += n
		batchRows = batchRows[:0]
		batchIndexes = batchIndexes[:0]
		return err
	}

	for source.Next() {
		select {
		case <-ctx.Done():
			return inserted, ctx.Err()
		default:
		}

		fields, idx := source.Row()
		batchRows = append(batchRows, fields)
		batchIndexes = append(batchIndexes, idx)

		if len(batchRows) >= l.BatchSize {
			if err := flush(); err != nil {
				return inserted, err
			}
		}
	}
	if err := source.Err(); err != nil {
		return inserted, err
	}
	if err := flush(); err != nil {
		return inserted, err
	}

	return inserted, nil
}

func (l *BulkLoader) insertBatch(
	ctx context.Context,
	table string,
	columnNames []string,
	columnTypes []SqlColumnType,
	rows [][]string,
	indexes []int,
	onRowError RowErrorFunc,
) (int64, error) {
	batchCtx, cancel := context.WithTimeout(ctx, bulkCopyTimeout)
	defer cancel()

	tx, err := l.db.BeginTx(batchCtx, nil)
	if err != nil {
		return l.failBatch(rows, indexes, err, onRowError)
	}

	stmt, err := tx.PrepareContext(batchCtx, mssql.CopyIn(table, mssql.BulkOptions{}, columnNames...))
	if err != nil {
		_ = tx.Rollback()
		return l.failBatch(rows, indexes, err, onRowError)
	}

	var loaded int64
	for i, row := range rows {
		values, err := marshalRow(row, columnTypes)
		if err != nil {
			onRowError(row, indexes[i], err.Error())
			continue
		}
		if _, err := stmt.ExecContext(batchCtx, values...); err != nil {
			onRowError(row, indexes[i], err.Error())
			continue
		}
		loaded++
	}

	if _, err := stmt.ExecContext(batchCtx); err != nil {
		_ = tx.Rollback()
		return l.failBatch(rows, indexes, err, onRowError)
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return l.failBatch(rows, indexes, err, onRowError)
	}
	if err := tx.Commit(); err != nil {
		return l.failBatch(rows, indexes, err, onRowError)
	}

	return loaded, nil
}

// failBatch reports every row in a batch as errored after a batch-level
// failure (e.g. the bulk-copy statement itself could not be prepared or
// committed) and returns zero inserted for that batch.
func (l *BulkLoader) failBatch(rows [][]string, indexes []int, reason error, onRowError RowErrorFunc) (int64, error) {
	msg := reason.Error()
	for i, row := range rows {
		onRowError(row, indexes[i], msg)
	}
	return 0, nil
}

// marshalRow converts each field per its column's inferred type. It only
// returns an error for genuine internal-consistency failures (column count
// mismatch); individual value-parse failures degrade to NULL rather than
// rejecting the row.
func marshalRow(row []string, columnTypes []SqlColumnType) ([]any, error) {
	if len(row) != len(columnTypes) {
		return nil, fmt.Errorf("core: row has %d fields, expected %d", len(row), len(columnTypes))
	}
	values := make([]any, len(row))
	for i, raw := range row {
		values[i] = ConvertValue(raw, columnTypes[i])
	}
	return values, nil
}
