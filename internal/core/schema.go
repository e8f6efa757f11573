package core

// schema.go implements the Schema Service (C5): create/drop/exists of
// destination tables, and the connection test used by submitJob callers.

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const defaultConnectTestTimeout = 5 * time.Second

// SchemaService owns DDL against the destination database.
type SchemaService struct {
	db *sql.DB
}

// NewSchemaService wraps an open *sql.DB for schema operations.
func NewSchemaService(db *sql.DB) *SchemaService {
	return &SchemaService{db: db}
}

// TestConnectionResult distinguishes the outcome of TestConnection.
type TestConnectionResult struct {
	OK      bool
	Class   ConnectionErrorClass
	Message string
}

// TestConnection opens a short-lived connection and pings the destination,
// classifying any failure against the connection error catalog.
func (s *SchemaService) TestConnection(ctx context.Context) TestConnectionResult {
	ctx, cancel := context.WithTimeout(ctx, defaultConnectTestTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		class, msg := ClassifyConnectionError(err)
		return TestConnectionResult{OK: false, Class: class, Message: msg}
	}
	return TestConnectionResult{OK: true}
}

// ColumnDef is one ordered column for CreateTable.
type ColumnDef struct {
	Name string
	Type SqlColumnType
}

// CreateTable issues an idempotent CREATE TABLE for name using columnsOrdered,
// with every column nullable. Identifier substitutions escape ']' by doubling it.
func (s *SchemaService) CreateTable(ctx context.Context, name string, columnsOrdered []ColumnDef) error {
	if len(columnsOrdered) == 0 {
		return fmt.Errorf("core: createTable requires at least one column")
	}

	var cols strings.Builder
	for i, c := range columnsOrdered {
		if i > 0 {
			cols.WriteString(", ")
		}
		cols.WriteString("[")
		cols.WriteString(escapeBracket(c.Name))
		cols.WriteString("] ")
		cols.WriteString(c.Type.ToSqlDefinition())
		cols.WriteString(" NULL")
	}

	stmt := fmt.Sprintf(
		"IF NOT EXISTS (SELECT 1 FROM sys.objects WHERE object_id = OBJECT_ID(N'[dbo].[%s]') AND type = N'U') "+
			"CREATE TABLE [dbo].[%s] (%s)",
		escapeBracket(name), escapeBracket(name), cols.String(),
	)
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

// DropTable drops name if it exists.
func (s *SchemaService) DropTable(ctx context.Context, name string) error {
	stmt := fmt.Sprintf("IF EXISTS (SELECT 1 FROM sys.objects WHERE object_id = OBJECT_ID(N'[dbo].[%s]') AND type = N'U') DROP TABLE [dbo].[%s]",
		escapeBracket(name), escapeBracket(name))
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

// TableExists reports whether name exists in schema dbo.
func (s *SchemaService) TableExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	row := s.db.QueryRowContext(ctx,
		"SELECT CASE WHEN OBJECT_ID(N'[dbo].['+@p1+']', N'U') IS NOT NULL THEN 1 ELSE 0 END", name)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ExistingTableNames queries sys.objects for every user table currently in
// dbo, so the Identifier Sanitizer's collision check can include tables that
// predate this Job.
func (s *SchemaService) ExistingTableNames(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM sys.objects WHERE type = N'U' AND schema_id = SCHEMA_ID('dbo')")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names[name] = true
	}
	return names, rows.Err()
}

func escapeBracket(s string) string {
	return strings.ReplaceAll(s, "]", "]]")
}
