// schema.go builds the schema description handed to SQL generation.
//
// The description gathers, for every table in scope:
//   - Column definitions (name, type, nullable)
//   - Human descriptions merged from config (cryptic warehouse column
//     names are unusable for generation without them)
//
// The output is a text block suitable for injection into the
// generation system prompt. It is cached and refreshable; the warehouse
// schema changes rarely compared to chat traffic.
package db

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/DachengChen/paiChat/config"
)

// SchemaColumn describes a single column in a table.
type SchemaColumn struct {
	Name        string
	DataType    string
	IsNullable  bool
	Description string
}

// TableSchema holds schema information for one table.
type TableSchema struct {
	Name    string
	Columns []SchemaColumn
}

// SchemaCatalog introspects and caches the warehouse schema description.
type SchemaCatalog struct {
	db  *DB
	cfg config.SchemaConfig

	mu     sync.RWMutex
	tables []TableSchema
	text   string
}

// NewSchemaCatalog creates a catalog; call Refresh before first use.
func NewSchemaCatalog(db *DB, cfg config.SchemaConfig) *SchemaCatalog {
	if cfg.Schema == "" {
		cfg.Schema = "public"
	}
	return &SchemaCatalog{db: db, cfg: cfg}
}

// Refresh re-introspects the warehouse and rebuilds the description.
func (c *SchemaCatalog) Refresh(ctx context.Context) error {
	names := c.cfg.Tables
	if len(names) == 0 {
		var err error
		names, err = c.listTables(ctx)
		if err != nil {
			return fmt.Errorf("list tables: %w", err)
		}
	}

	tables := make([]TableSchema, 0, len(names))
	for _, name := range names {
		ts, err := c.describeTable(ctx, name)
		if err != nil {
			return fmt.Errorf("describe %s: %w", name, err)
		}
		tables = append(tables, ts)
	}

	text := formatSchemaText(tables)

	c.mu.Lock()
	c.tables = tables
	c.text = text
	c.mu.Unlock()
	return nil
}

// Description returns the cached schema text block.
func (c *SchemaCatalog) Description() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.text
}

// Tables returns the cached table names.
func (c *SchemaCatalog) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.tables))
	for i, t := range c.tables {
		names[i] = t.Name
	}
	return names
}

func (c *SchemaCatalog) listTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`
	rows, err := c.db.Pool.Query(ctx, query, c.cfg.Schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (c *SchemaCatalog) describeTable(ctx context.Context, table string) (TableSchema, error) {
	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`
	rows, err := c.db.Pool.Query(ctx, query, c.cfg.Schema, table)
	if err != nil {
		return TableSchema{}, err
	}
	defer rows.Close()

	ts := TableSchema{Name: table}
	for rows.Next() {
		var col SchemaColumn
		var nullable string
		if err := rows.Scan(&col.Name, &col.DataType, &nullable); err != nil {
			return TableSchema{}, err
		}
		col.IsNullable = nullable == "YES"
		col.Description = c.cfg.ColumnDescriptions[table+"."+col.Name]
		ts.Columns = append(ts.Columns, col)
	}
	return ts, rows.Err()
}

// formatSchemaText builds the text block injected into the generation prompt.
func formatSchemaText(tables []TableSchema) string {
	var sb strings.Builder
	for _, t := range tables {
		sb.WriteString(fmt.Sprintf("Table %s:\n", t.Name))
		for _, col := range t.Columns {
			nullable := "NULL"
			if !col.IsNullable {
				nullable = "NOT NULL"
			}
			sb.WriteString(fmt.Sprintf("  - %s %s %s", col.Name, col.DataType, nullable))
			if col.Description != "" {
				sb.WriteString(" — " + col.Description)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
