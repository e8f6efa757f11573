// Package core provides the business logic for the CSV bulk migration engine.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"strconv"
	"time"
)

// JobStatus is the lifecycle state of a Job.
type JobStatus int

const (
	JobCreated JobStatus = iota
	JobRunning
	JobCompleted
	JobFailed
	JobCancelled
)

func (s JobStatus) String() string {
	switch s {
	case JobCreated:
		return "Created"
	case JobRunning:
		return "Running"
	case JobCompleted:
		return "Completed"
	case JobFailed:
		return "Failed"
	case JobCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// JobFileStatus is the lifecycle state of a JobFile.
type JobFileStatus int

const (
	FilePending JobFileStatus = iota
	FileProcessing
	FileCompleted
	FileFailed
)

func (s JobFileStatus) String() string {
	switch s {
	case FilePending:
		return "Pending"
	case FileProcessing:
		return "Processing"
	case FileCompleted:
		return "Completed"
	case FileFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// JobErrorType classifies a JobError row.
type JobErrorType int

const (
	StructuralFailure JobErrorType = iota
	LineError
	ColumnError
	DatabaseError
	OtherError
)

func (t JobErrorType) String() string {
	switch t {
	case StructuralFailure:
		return "StructuralFailure"
	case LineError:
		return "LineError"
	case ColumnError:
		return "ColumnError"
	case DatabaseError:
		return "DatabaseError"
	case OtherError:
		return "Other"
	default:
		return "Unknown"
	}
}

// Job is one migration run over a root folder. Created when submitted, mutated only
// by the Orchestrator, never deleted.
type Job struct {
	ID             string
	CreatedAt      time.Time
	StartedAt      *time.Time
	FinishedAt     *time.Time
	Status         JobStatus
	RootFolder     string
	ConnectionString string
	TotalFiles     int
	ProcessedFiles int
}

// JobFile is one source file within a Job.
type JobFile struct {
	ID            string
	JobID         string
	FilePath      string
	Status        JobFileStatus
	StartedAt     *time.Time
	FinishedAt    *time.Time
	LinesRead     int64
	LinesInserted int64
	LinesRejected int64
	TableName     string
}

// JobError is one append-only failure event.
type JobError struct {
	ID         string
	JobID      string
	JobFileID  *string
	LineNumber *int
	ColumnName *string
	ErrorType  JobErrorType
	Message    string
	CreatedAt  time.Time
}

// JobMetric is one time-stamped measurement attached to a Job.
type JobMetric struct {
	ID          string
	JobID       string
	MetricName  string
	MetricValue float64
	RecordedAt  time.Time
}

// SqlColumnTypeName enumerates the SQL Server column types the Type
// Inferencer can choose between.
type SqlColumnTypeName int

const (
	TypeBit SqlColumnTypeName = iota
	TypeInt
	TypeBigInt
	TypeDecimal
	TypeDate
	TypeDateTime
	TypeNVarChar
)

func (t SqlColumnTypeName) String() string {
	switch t {
	case TypeBit:
		return "bit"
	case TypeInt:
		return "int"
	case TypeBigInt:
		return "bigint"
	case TypeDecimal:
		return "decimal"
	case TypeDate:
		return "date"
	case TypeDateTime:
		return "datetime"
	case TypeNVarChar:
		return "nvarchar"
	default:
		return "unknown"
	}
}

// priority returns the tie-break ordering used when two candidates have equal
// reliability: specific types sort before nvarchar.
func (t SqlColumnTypeName) priority() int {
	switch t {
	case TypeBit:
		return 1
	case TypeInt:
		return 2
	case TypeBigInt:
		return 3
	case TypeDecimal:
		return 4
	case TypeDate:
		return 5
	case TypeDateTime:
		return 6
	case TypeNVarChar:
		return 99
	default:
		return 100
	}
}

// SqlColumnType is a value object describing one inferred column type.
type SqlColumnType struct {
	TypeName  SqlColumnTypeName
	Precision *int // nil means "max" for nvarchar, or unset for non-decimal types
	Scale     *int
	Reliable  bool
}

// ToSqlDefinition renders the SQL Server column type fragment, e.g. "decimal(12,3)",
// "nvarchar(255)", "nvarchar(max)".
func (t SqlColumnType) ToSqlDefinition() string {
	switch t.TypeName {
	case TypeDecimal:
		precision, scale := 18, 0
		if t.Precision != nil {
			precision = *t.Precision
		}
		if t.Scale != nil {
			scale = *t.Scale
		}
		return "decimal(" + strconv.Itoa(precision) + "," + strconv.Itoa(scale) + ")"
	case TypeNVarChar:
		if t.Precision == nil {
			return "nvarchar(max)"
		}
		return "nvarchar(" + strconv.Itoa(*t.Precision) + ")"
	default:
		return t.TypeName.String()
	}
}
