package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/llmfetch"
)

// Compile-time interface verification.
var _ llmfetch.JobService = (*JobService)(nil)

const jobCounterKey = "job"

// JobService implements llmfetch.JobService using SQLite. Every job gets its
// own table; display names and column names are joined only through the
// job_fields metadata table.
type JobService struct {
	db *DB
}

// NewJobService creates a new JobService.
func NewJobService(db *DB) *JobService {
	return &JobService{db: db}
}

// column maps a display field name to its storage column.
type column struct {
	name  string
	ident string
}

// jobTable is the resolved storage layout of a job.
type jobTable struct {
	name    string
	columns []column
}

// CreateJob allocates the next job ID and creates the job's table.
func (s *JobService) CreateJob(ctx context.Context, job *llmfetch.Job) error {
	if err := llmfetch.ValidateFields(job.Fields); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create job: %w", err)
	}
	defer tx.Rollback()

	// A single upsert reads and bumps the counter so no two jobs share an ID.
	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO counters (key, value) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET value = value + 1
		RETURNING value
	`, jobCounterKey).Scan(&id)
	if err != nil {
		return fmt.Errorf("allocate job id: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	table := tableName(id, now)

	columns := make([]column, len(job.Fields))
	defs := make([]string, 0, len(job.Fields)+1)
	defs = append(defs, quoteIdent(llmfetch.ReservedColumn)+" INTEGER PRIMARY KEY AUTOINCREMENT")
	for i, f := range job.Fields {
		columns[i] = column{name: f, ident: llmfetch.ColumnName(f)}
		defs = append(defs, quoteIdent(columns[i].ident)+" TEXT")
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create job table: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO jobs (id, table_name, source_url, created_at)
		VALUES (?, ?, ?, ?)
	`, id, table, job.SourceURL, now.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}

	for i, c := range columns {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO job_fields (job_id, position, name, column_name)
			VALUES (?, ?, ?, ?)
		`, id, i, c.name, c.ident); err != nil {
			return fmt.Errorf("insert job field: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create job: %w", err)
	}

	job.ID = id
	job.CreatedAt = now
	job.Stats = nil
	return nil
}

// FindJobByID retrieves a job by ID.
func (s *JobService) FindJobByID(ctx context.Context, id int64) (*llmfetch.Job, error) {
	var job llmfetch.Job
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, source_url, created_at
		FROM jobs
		WHERE id = ?
	`, id).Scan(&job.ID, &job.SourceURL, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, llmfetch.Errorf(llmfetch.ENOTFOUND, "job %d not found", id)
	}
	if err != nil {
		return nil, err
	}

	if job.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}

	columns, err := findColumns(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	job.Fields = fieldNames(columns)

	return &job, nil
}

// FindJobs retrieves all jobs, most recently created first, with row stats.
func (s *JobService) FindJobs(ctx context.Context) ([]*llmfetch.Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, table_name, source_url, created_at
		FROM jobs
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}

	var jobs []*llmfetch.Job
	var tables []string
	for rows.Next() {
		var job llmfetch.Job
		var table, createdAt string
		if err := rows.Scan(&job.ID, &table, &job.SourceURL, &createdAt); err != nil {
			rows.Close()
			return nil, err
		}
		if job.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			rows.Close()
			return nil, err
		}
		jobs = append(jobs, &job)
		tables = append(tables, table)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// The pool holds a single connection, so follow-up queries run only
	// after the job cursor above is closed.
	for i, job := range jobs {
		columns, err := findColumns(ctx, s.db, job.ID)
		if err != nil {
			return nil, err
		}
		job.Fields = fieldNames(columns)

		stats, err := tableStats(ctx, s.db, jobTable{name: tables[i], columns: columns})
		if err != nil {
			return nil, err
		}
		job.Stats = stats
	}

	return jobs, nil
}

// DeleteJob drops the job's table and removes its metadata in one transaction.
func (s *JobService) DeleteJob(ctx context.Context, id int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete job: %w", err)
	}
	defer tx.Rollback()

	var table string
	err = tx.QueryRowContext(ctx, "SELECT table_name FROM jobs WHERE id = ?", id).Scan(&table)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return false, fmt.Errorf("drop job table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM jobs WHERE id = ?", id); err != nil {
		return false, fmt.Errorf("delete job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete job: %w", err)
	}
	return true, nil
}

// InsertRow writes data as a new row in the job's table.
func (s *JobService) InsertRow(ctx context.Context, jobID int64, data map[string]any) (int64, error) {
	table, err := findTable(ctx, s.db, jobID)
	if err != nil {
		return 0, err
	}

	var idents, placeholders []string
	var args []any
	for _, c := range table.columns {
		v, ok := data[c.name]
		if !ok {
			continue
		}
		encoded, err := encodeValue(c.name, v)
		if err != nil {
			return 0, err
		}
		idents = append(idents, quoteIdent(c.ident))
		placeholders = append(placeholders, "?")
		args = append(args, encoded)
	}
	if len(args) != len(data) {
		for f := range data {
			if !hasColumn(table.columns, f) {
				return 0, llmfetch.Errorf(llmfetch.EINVALID, "job %d has no field %q", jobID, f)
			}
		}
	}

	var stmt string
	if len(idents) == 0 {
		stmt = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", quoteIdent(table.name))
	} else {
		stmt = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(table.name), strings.Join(idents, ", "), strings.Join(placeholders, ", "))
	}

	result, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("insert row: %w", err)
	}
	return result.LastInsertId()
}

// FindRows returns the job's rows, or the single row matching filter.ID.
func (s *JobService) FindRows(ctx context.Context, jobID int64, filter llmfetch.RowFilter) ([]*llmfetch.Row, error) {
	table, err := findTable(ctx, s.db, jobID)
	if llmfetch.ErrorCode(err) == llmfetch.ENOTFOUND {
		return []*llmfetch.Row{}, nil
	}
	if err != nil {
		return nil, err
	}

	selects := []string{quoteIdent(llmfetch.ReservedColumn)}
	for _, c := range table.columns {
		selects = append(selects, quoteIdent(c.ident))
	}

	var query strings.Builder
	var args []any
	fmt.Fprintf(&query, "SELECT %s FROM %s", strings.Join(selects, ", "), quoteIdent(table.name))
	if filter.ID != nil {
		query.WriteString(" WHERE " + quoteIdent(llmfetch.ReservedColumn) + " = ?")
		args = append(args, *filter.ID)
	}
	query.WriteString(" ORDER BY " + quoteIdent(llmfetch.ReservedColumn))

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := fieldNames(table.columns)
	result := []*llmfetch.Row{}
	for rows.Next() {
		row := &llmfetch.Row{
			Fields: fields,
			Values: make(map[string]any, len(fields)),
		}
		raw := make([]sql.NullString, len(table.columns))
		dest := make([]any, 0, len(raw)+1)
		dest = append(dest, &row.ID)
		for i := range raw {
			dest = append(dest, &raw[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, c := range table.columns {
			row.Values[c.name] = decodeValue(raw[i])
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// DeleteRow removes one row from the job's table.
func (s *JobService) DeleteRow(ctx context.Context, jobID, rowID int64) (bool, error) {
	table, err := findTable(ctx, s.db, jobID)
	if llmfetch.ErrorCode(err) == llmfetch.ENOTFOUND {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", quoteIdent(table.name), quoteIdent(llmfetch.ReservedColumn))
	result, err := s.db.ExecContext(ctx, stmt, rowID)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// findTable resolves the storage layout of a job.
// Returns ENOTFOUND if the job does not exist.
func findTable(ctx context.Context, q querier, jobID int64) (jobTable, error) {
	var table jobTable
	err := q.QueryRowContext(ctx, "SELECT table_name FROM jobs WHERE id = ?", jobID).Scan(&table.name)
	if errors.Is(err, sql.ErrNoRows) {
		return table, llmfetch.Errorf(llmfetch.ENOTFOUND, "job %d not found", jobID)
	}
	if err != nil {
		return table, err
	}

	table.columns, err = findColumns(ctx, q, jobID)
	return table, err
}

// findColumns returns the job's columns in declared order.
func findColumns(ctx context.Context, q querier, jobID int64) ([]column, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT name, column_name
		FROM job_fields
		WHERE job_id = ?
		ORDER BY position
	`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []column
	for rows.Next() {
		var c column
		if err := rows.Scan(&c.name, &c.ident); err != nil {
			return nil, err
		}
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

// blankChars are the characters trimmed before a value counts as filled.
const blankChars = `' ' || char(9, 10, 13)`

// filledExpr is true when the column holds at least one non-blank string,
// either a JSON string or a list element. Text that is not JSON is checked
// as is.
func filledExpr(ident string) string {
	return fmt.Sprintf(`CASE WHEN json_valid(%[1]s) THEN EXISTS (
		SELECT 1 FROM json_each(%[1]s) WHERE trim(json_each.value, %[2]s) <> ''
	) ELSE trim(%[1]s, %[2]s) <> '' END`, ident, blankChars)
}

// tableStats counts the table's rows and its non-blank values per field.
func tableStats(ctx context.Context, q querier, table jobTable) (*llmfetch.JobStats, error) {
	selects := []string{"COUNT(*)"}
	for _, c := range table.columns {
		ident := quoteIdent(c.ident)
		selects = append(selects, fmt.Sprintf("COUNT(CASE WHEN %s IS NOT NULL AND (%s) THEN 1 END)", ident, filledExpr(ident)))
	}

	counts := make([]int, len(selects))
	dest := make([]any, len(counts))
	for i := range counts {
		dest[i] = &counts[i]
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), quoteIdent(table.name))
	if err := q.QueryRowContext(ctx, query).Scan(dest...); err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}

	stats := &llmfetch.JobStats{
		Rows:   counts[0],
		Filled: make(map[string]int, len(table.columns)),
	}
	for i, c := range table.columns {
		stats.Filled[c.name] = counts[i+1]
	}
	return stats, nil
}

func fieldNames(columns []column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return names
}

func hasColumn(columns []column, name string) bool {
	for _, c := range columns {
		if c.name == name {
			return true
		}
	}
	return false
}

// encodeValue serializes a field value as JSON text. Strings and string
// lists are accepted; nil becomes NULL.
func encodeValue(field string, v any) (any, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case []string:
		if v == nil {
			return nil, nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case string:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case []any:
		list := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, llmfetch.Errorf(llmfetch.EINVALID, "field %q: list items must be strings", field)
			}
			list[i] = s
		}
		return encodeValue(field, list)
	default:
		return nil, llmfetch.Errorf(llmfetch.EINVALID, "field %q: unsupported value type %T", field, v)
	}
}

// decodeValue reverses encodeValue. Text that is not JSON is returned as is.
func decodeValue(raw sql.NullString) any {
	if !raw.Valid || raw.String == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw.String), &list); err == nil {
		if list == nil {
			list = []string{}
		}
		return list
	}
	var s string
	if err := json.Unmarshal([]byte(raw.String), &s); err == nil {
		return s
	}
	return raw.String
}
