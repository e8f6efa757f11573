package core

import "testing"

// Repository's CRUD methods all require a live SQL Server connection and are
// exercised against the row-to-domain conversions here; the driver calls
// themselves follow the mssql ordinal-parameter convention shown throughout
// this file and aren't mocked, matching this codebase's existing tests.

func TestJobRow_ToJob(t *testing.T) {
	row := jobRow{
		ID:               "job-1",
		RootFolder:       "/data/in",
		ConnectionString: "sqlserver://...",
		Status:           int(JobRunning),
		TotalFiles:       3,
		ProcessedFiles:   1,
	}
	job := row.toJob()
	if job.ID != "job-1" || job.Status != JobRunning || job.TotalFiles != 3 {
		t.Errorf("toJob() = %+v, unexpected fields", job)
	}
}

func TestJobFileRow_ToJobFile(t *testing.T) {
	row := jobFileRow{
		ID:            "file-1",
		JobID:         "job-1",
		FilePath:      "/data/in/a.csv",
		Status:        int(FileCompleted),
		LinesRead:     100,
		LinesInserted: 98,
		LinesRejected: 2,
		TableName:     "TB_a",
	}
	jf := row.toJobFile()
	if jf.Status != FileCompleted || jf.LinesInserted != 98 || jf.TableName != "TB_a" {
		t.Errorf("toJobFile() = %+v, unexpected fields", jf)
	}
}

func TestJobErrorRow_ToJobError(t *testing.T) {
	line := 42
	row := jobErrorRow{
		ID:         "err-1",
		JobID:      "job-1",
		LineNumber: &line,
		ErrorType:  int(LineError),
		Message:    "bad row",
	}
	je := row.toJobError()
	if je.ErrorType != LineError || je.LineNumber == nil || *je.LineNumber != 42 {
		t.Errorf("toJobError() = %+v, unexpected fields", je)
	}
}

func TestJobMetricRow_ToJobMetric(t *testing.T) {
	row := jobMetricRow{ID: "m-1", JobID: "job-1", MetricName: "TotalExecutionTime", MetricValue: 12.5}
	m := row.toJobMetric()
	if m.MetricName != "TotalExecutionTime" || m.MetricValue != 12.5 {
		t.Errorf("toJobMetric() = %+v, unexpected fields", m)
	}
}
